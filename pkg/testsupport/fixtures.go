package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-tplkit/pkg/render"
	"github.com/goliatone/go-tplkit/pkg/storage"
)

// WriteTree writes files (relative path to content) under a fresh temporary
// directory and returns its path.
func WriteTree(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir fixture dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
	}
	return root
}

// ThemeFixture is a plugin/theme layout on disk with a registry pointing at it.
type ThemeFixture struct {
	Root     string
	Registry *storage.Registry
}

// PluginDir is where plugin templates live in the fixture.
func (f ThemeFixture) PluginDir() string {
	return filepath.Join(f.Root, "plugins", "test", "layouts")
}

// ThemeDir is where theme overrides live in the fixture.
func (f ThemeFixture) ThemeDir() string {
	return filepath.Join(f.Root, "themes", "active", "my-plugin")
}

// NewThemeFixture writes plugin templates under plugins/test/layouts and theme
// templates under themes/active/my-plugin, then registers the "templates" and
// "theme" storages for them.
func NewThemeFixture(t *testing.T, plugin, theme map[string]string) ThemeFixture {
	t.Helper()

	files := make(map[string]string, len(plugin)+len(theme))
	for rel, content := range plugin {
		files["plugins/test/layouts/"+rel] = content
	}
	for rel, content := range theme {
		files["themes/active/my-plugin/"+rel] = content
	}
	root := WriteTree(t, files)

	reg := storage.NewRegistry(storage.WithThemeLocator(storage.ThemeLocatorFunc(func() (storage.Location, error) {
		return storage.Location{
			Dir: filepath.Join(root, "themes", "active"),
			URL: "https://site/themes/active",
		}, nil
	})))
	reg.SetBaseDir(filepath.Join(root, "plugins", "test")).SetBaseURL("https://site/test/")
	if err := reg.RegisterThemeOverride("layouts", "my-plugin"); err != nil {
		t.Fatalf("register theme override: %v", err)
	}
	return ThemeFixture{Root: root, Registry: reg}
}

// NewSink returns a sink writing to the returned buffer.
func NewSink() (*render.Sink, *bytes.Buffer) {
	var buf bytes.Buffer
	return render.NewSink(&buf), &buf
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}
