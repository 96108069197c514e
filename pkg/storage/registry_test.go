package storage

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()

	reg := NewRegistry(WithThemeLocator(ThemeLocatorFunc(func() (Location, error) {
		return Location{Dir: "/themes/active", URL: "https://site/themes/active"}, nil
	})))
	reg.SetBaseDir("/plugins/test/").SetBaseURL("https://site/test/")
	if err := reg.RegisterThemeOverride("layouts", "my-plugin"); err != nil {
		t.Fatalf("register theme override: %v", err)
	}
	return reg
}

func TestRegistry_AddDuplicateFails(t *testing.T) {
	reg := newTestRegistry(t)

	if err := reg.Add("test", "tmp/test"); err != nil {
		t.Fatalf("first add: %v", err)
	}
	err := reg.Add("test", "tmp/other")
	if err == nil {
		t.Fatalf("expected duplicate error")
	}
	if !errors.Is(err, ErrDuplicateStorage) {
		t.Fatalf("expected ErrDuplicateStorage, got %v", err)
	}
	var dup *DuplicateStorageError
	if !errors.As(err, &dup) || dup.Name != "test" {
		t.Fatalf("expected DuplicateStorageError for test, got %#v", err)
	}

	path, err := reg.Path("test")
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if path != "/plugins/test/tmp/test" {
		t.Fatalf("first registration changed: %s", path)
	}
}

func TestRegistry_UnknownStorage(t *testing.T) {
	reg := newTestRegistry(t)

	if _, err := reg.Path("doesntexist"); !errors.Is(err, ErrUnknownStorage) {
		t.Fatalf("Path: expected ErrUnknownStorage, got %v", err)
	}
	if _, err := reg.URL("doesntexist"); !errors.Is(err, ErrUnknownStorage) {
		t.Fatalf("URL: expected ErrUnknownStorage, got %v", err)
	}
	if reg.Exists("doesntexist") {
		t.Fatalf("unregistered storage reported as existing")
	}
}

func TestRegistry_AddAndGet(t *testing.T) {
	reg := newTestRegistry(t)
	reg.MustAdd("test", "tmp/test")

	path, err := reg.Path("test")
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	if path != "/plugins/test/tmp/test" {
		t.Fatalf("path mismatch: %s", path)
	}

	url, err := reg.URL("test")
	if err != nil {
		t.Fatalf("url: %v", err)
	}
	if url != "https://site/test/tmp/test" {
		t.Fatalf("url mismatch: %s", url)
	}
}

func TestRegistry_ThemeOverride(t *testing.T) {
	reg := newTestRegistry(t)

	want := map[string]Entry{
		TemplatesStorage: {Path: "/plugins/test/layouts", URL: "https://site/test/layouts"},
		ThemeStorage:     {Path: "/themes/active/my-plugin", URL: "https://site/themes/active/my-plugin"},
	}
	got := map[string]Entry{}
	for _, name := range reg.List() {
		entry, err := reg.Entry(name)
		if err != nil {
			t.Fatalf("entry %s: %v", name, err)
		}
		got[name] = entry
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("theme override entries mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_ThemeOverrideIsRepeatable(t *testing.T) {
	reg := newTestRegistry(t)

	if err := reg.RegisterThemeOverride("layouts", "my-plugin"); err != nil {
		t.Fatalf("second override: %v", err)
	}
	if err := reg.RegisterThemeOverride("views", "other"); err != nil {
		t.Fatalf("third override: %v", err)
	}

	if diff := cmp.Diff([]string{TemplatesStorage, ThemeStorage}, reg.List()); diff != "" {
		t.Fatalf("unexpected storages (-want +got):\n%s", diff)
	}
	path, _ := reg.Path(TemplatesStorage)
	if path != "/plugins/test/views" {
		t.Fatalf("templates storage not overwritten: %s", path)
	}
	path, _ = reg.Path(ThemeStorage)
	if path != "/themes/active/other" {
		t.Fatalf("theme storage not overwritten: %s", path)
	}
}

func TestRegistry_ThemeOverrideRequiresLocator(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterThemeOverride("layouts", "my-plugin"); !errors.Is(err, ErrNoThemeLocator) {
		t.Fatalf("expected ErrNoThemeLocator, got %v", err)
	}

	boom := errors.New("no theme")
	reg.SetThemeLocator(ThemeLocatorFunc(func() (Location, error) {
		return Location{}, boom
	}))
	if err := reg.RegisterThemeOverride("layouts", "my-plugin"); !errors.Is(err, boom) {
		t.Fatalf("expected locator error to be wrapped, got %v", err)
	}
	if reg.Exists(TemplatesStorage) {
		t.Fatalf("failed override must not register storages")
	}
}

func TestRegistry_BaseNormalisation(t *testing.T) {
	reg := NewRegistry()
	reg.SetBaseDir(`C:\www\plugins\test\\`).SetBaseURL("https://site/test//")

	if got := reg.BaseDir(); got != "C:/www/plugins/test/" {
		t.Fatalf("base dir mismatch: %s", got)
	}
	if got := reg.BaseURL(); got != "https://site/test/" {
		t.Fatalf("base url mismatch: %s", got)
	}
}

func TestDefaultReturnsSingleInstance(t *testing.T) {
	if Default() != Default() {
		t.Fatalf("Default must return the same registry")
	}
}
