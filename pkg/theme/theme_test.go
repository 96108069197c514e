package theme

import (
	"errors"
	"testing"

	gotheme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-tplkit/pkg/storage"
)

func testManifest(name string) *gotheme.Manifest {
	return &gotheme.Manifest{
		Name:    name,
		Version: "1.0.0",
		Tokens: map[string]string{
			"brand": "#123456",
		},
		Templates: map[string]string{
			"widgets.card": "widgets/card.php",
		},
		Variants: map[string]gotheme.Variant{
			"dark": {
				Tokens: map[string]string{"brand": "#654321"},
			},
		},
	}
}

func TestStatic_ActiveTheme(t *testing.T) {
	loc, err := Static{Dir: "/themes/active", URL: "https://site/themes/active"}.ActiveTheme()
	if err != nil {
		t.Fatalf("active theme: %v", err)
	}
	if loc.Dir != "/themes/active" || loc.URL != "https://site/themes/active" {
		t.Fatalf("unexpected location: %+v", loc)
	}

	if _, err := (Static{}).ActiveTheme(); err == nil {
		t.Fatalf("expected error for empty static dir")
	}
}

func TestSelector_SelectFallsBackToFirstTheme(t *testing.T) {
	selector, err := NewSelector(testManifest("acme"), testManifest("zen"))
	if err != nil {
		t.Fatalf("new selector: %v", err)
	}

	selection, err := selector.Select("", "dark")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if selection.Theme != "acme" || selection.Variant != "dark" {
		t.Fatalf("unexpected selection: %+v", selection)
	}

	selection, err = selector.Select("zen", "missing")
	if err != nil {
		t.Fatalf("select zen: %v", err)
	}
	if selection.Theme != "zen" || selection.Variant != "" {
		t.Fatalf("unknown variant should resolve to base theme, got %+v", selection)
	}
}

func TestSelector_Errors(t *testing.T) {
	empty, err := NewSelector()
	if err != nil {
		t.Fatalf("new selector: %v", err)
	}
	if _, err := empty.Select("", ""); !errors.Is(err, ErrNoThemes) {
		t.Fatalf("expected ErrNoThemes, got %v", err)
	}

	selector, err := NewSelector(testManifest("acme"))
	if err != nil {
		t.Fatalf("new selector: %v", err)
	}
	if _, err := selector.Select("nope", ""); !errors.Is(err, ErrUnknownTheme) {
		t.Fatalf("expected ErrUnknownTheme, got %v", err)
	}
	if err := selector.Register(testManifest("acme")); err == nil {
		t.Fatalf("expected duplicate manifest to be rejected")
	}
	if err := selector.Register(nil); err == nil {
		t.Fatalf("expected nil manifest to be rejected")
	}
}

func TestProvider_ActiveTheme(t *testing.T) {
	selector, err := NewSelector(testManifest("acme"))
	if err != nil {
		t.Fatalf("new selector: %v", err)
	}

	provider := NewProvider(selector,
		WithRoot(`/var/www/themes\`, "https://site/themes"),
		WithDefaults("acme", ""),
	)
	loc, err := provider.ActiveTheme()
	if err != nil {
		t.Fatalf("active theme: %v", err)
	}
	if loc.Dir != "/var/www/themes/acme" {
		t.Fatalf("dir mismatch: %s", loc.Dir)
	}
	if loc.URL != "https://site/themes/acme" {
		t.Fatalf("url mismatch: %s", loc.URL)
	}
}

func TestProvider_UsesAssetPrefix(t *testing.T) {
	stub := &stubSelector{selection: &gotheme.Selection{
		Theme: "acme",
		Manifest: &gotheme.Manifest{
			Name:   "acme",
			Assets: gotheme.Assets{Prefix: "https://cdn.site/acme/"},
		},
	}}

	provider := NewProvider(stub, WithRoot("/themes", "https://site/themes"), WithDefaults("acme", "dark"))
	loc, err := provider.ActiveTheme()
	if err != nil {
		t.Fatalf("active theme: %v", err)
	}
	if loc.URL != "https://cdn.site/acme" {
		t.Fatalf("expected asset prefix url, got %s", loc.URL)
	}
	if stub.name != "acme" || stub.variant != "dark" {
		t.Fatalf("unexpected selector args: %s/%s", stub.name, stub.variant)
	}
}

func TestProvider_FeedsRegistry(t *testing.T) {
	selector, err := NewSelector(testManifest("acme"))
	if err != nil {
		t.Fatalf("new selector: %v", err)
	}

	reg := storage.NewRegistry(storage.WithThemeLocator(NewProvider(selector, WithRoot("/themes", "https://site/themes"))))
	reg.SetBaseDir("/plugins/test").SetBaseURL("https://site/test")
	if err := reg.RegisterThemeOverride("layouts", "my-plugin"); err != nil {
		t.Fatalf("register theme override: %v", err)
	}

	path, err := reg.Path(storage.ThemeStorage)
	if err != nil {
		t.Fatalf("theme path: %v", err)
	}
	if path != "/themes/acme/my-plugin" {
		t.Fatalf("theme path mismatch: %s", path)
	}
}

func TestProvider_SelectorErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")
	provider := NewProvider(&stubSelector{err: boom}, WithRoot("/themes", ""))
	if _, err := provider.ActiveTheme(); !errors.Is(err, boom) {
		t.Fatalf("expected selector error, got %v", err)
	}

	if _, err := NewProvider(&stubSelector{}).ActiveTheme(); err == nil {
		t.Fatalf("expected error without themes root")
	}
}

type stubSelector struct {
	selection *gotheme.Selection
	err       error
	name      string
	variant   string
}

func (s *stubSelector) Select(name, variant string, _ ...gotheme.QueryOption) (*gotheme.Selection, error) {
	s.name = name
	s.variant = variant
	return s.selection, s.err
}
