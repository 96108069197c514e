package storage

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/goliatone/go-tplkit/pkg/pathutil"
)

const (
	// TemplatesStorage is the plugin-side storage written by
	// RegisterThemeOverride. Bindings on this storage search the theme first.
	TemplatesStorage = "templates"
	// ThemeStorage is the theme-side storage written by RegisterThemeOverride.
	ThemeStorage = "theme"
)

// Entry is a registered storage: an absolute directory and its public URL.
type Entry struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}

// Location describes where the active presentation theme lives.
type Location struct {
	Dir string
	URL string
}

// ThemeLocator reports the active theme directory and URL.
type ThemeLocator interface {
	ActiveTheme() (Location, error)
}

// ThemeLocatorFunc adapts a plain function to ThemeLocator.
type ThemeLocatorFunc func() (Location, error)

// ActiveTheme calls f.
func (f ThemeLocatorFunc) ActiveTheme() (Location, error) {
	return f()
}

// Option customises a Registry.
type Option func(*Registry)

// WithThemeLocator sets the provider consulted by RegisterThemeOverride.
func WithThemeLocator(locator ThemeLocator) Option {
	return func(r *Registry) {
		r.themes = locator
	}
}

// WithLogger attaches a logger for registration events.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Registry maps storage names to directories and URLs. Base directory and URL
// are applied when an entry is added, so they must be configured first.
// Registration is expected at startup; lookups are safe from any goroutine.
type Registry struct {
	mu      sync.RWMutex
	baseDir string
	baseURL string
	entries map[string]Entry
	themes  ThemeLocator
	logger  *slog.Logger
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry, creating it on first use.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates an empty registry.
func NewRegistry(options ...Option) *Registry {
	r := &Registry{
		entries: make(map[string]Entry),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// SetThemeLocator replaces the theme locator. Useful for the default registry,
// which is created without options.
func (r *Registry) SetThemeLocator(locator ThemeLocator) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.themes = locator
	return r
}

// SetBaseDir normalises dir and stores it with a single trailing slash.
func (r *Registry) SetBaseDir(dir string) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.baseDir = pathutil.TrailingSlash(pathutil.Normalize(dir))
	return r
}

// SetBaseURL stores url with a single trailing slash.
func (r *Registry) SetBaseURL(url string) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.baseURL = pathutil.TrailingSlash(url)
	return r
}

// BaseDir returns the configured base directory.
func (r *Registry) BaseDir() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.baseDir
}

// BaseURL returns the configured base URL.
func (r *Registry) BaseURL() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.baseURL
}

// RegisterThemeOverride registers the "templates" storage under the base
// directory and the "theme" storage under the active theme directory. Both
// entries are replaced on every call; this is the only way to overwrite a
// storage.
func (r *Registry) RegisterThemeOverride(pluginFolder, themeFolder string) error {
	r.mu.RLock()
	locator := r.themes
	r.mu.RUnlock()
	if locator == nil {
		return ErrNoThemeLocator
	}

	active, err := locator.ActiveTheme()
	if err != nil {
		return fmt.Errorf("storage: resolve active theme: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[TemplatesStorage] = Entry{
		Path: r.baseDir + pluginFolder,
		URL:  r.baseURL + pluginFolder,
	}
	r.entries[ThemeStorage] = Entry{
		Path: pathutil.TrailingSlash(active.Dir) + themeFolder,
		URL:  pathutil.TrailingSlash(active.URL) + themeFolder,
	}

	r.logger.Debug("theme override registered",
		"templates", r.entries[TemplatesStorage].Path,
		"theme", r.entries[ThemeStorage].Path,
	)
	return nil
}

// Add registers folder, relative to the base directory and URL, under name.
// Names are unique; adding an existing name returns a DuplicateStorageError.
func (r *Registry) Add(name, folder string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[name]; exists {
		return &DuplicateStorageError{Name: name}
	}

	r.entries[name] = Entry{
		Path: r.baseDir + folder,
		URL:  r.baseURL + folder,
	}
	r.logger.Debug("storage registered", "name", name, "path", r.entries[name].Path)
	return nil
}

// MustAdd panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustAdd(name, folder string) *Registry {
	if err := r.Add(name, folder); err != nil {
		panic(err)
	}
	return r
}

// Exists reports whether name is registered.
func (r *Registry) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.entries[name]
	return ok
}

// Entry returns the registered entry for name.
func (r *Registry) Entry(name string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[name]
	if !ok {
		return Entry{}, &UnknownStorageError{Name: name}
	}
	return entry, nil
}

// Path returns the directory registered for name.
func (r *Registry) Path(name string) (string, error) {
	entry, err := r.Entry(name)
	if err != nil {
		return "", err
	}
	return entry.Path, nil
}

// URL returns the public URL registered for name.
func (r *Registry) URL(name string) (string, error) {
	entry, err := r.Entry(name)
	if err != nil {
		return "", err
	}
	return entry.URL, nil
}

// List returns the registered storage names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
