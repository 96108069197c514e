// Package theme resolves the active presentation theme used by
// storage.Registry.RegisterThemeOverride. Themes are described with
// go-theme manifests; the directory of a theme is its name under a themes
// root.
package theme

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	gotheme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-tplkit/pkg/pathutil"
	"github.com/goliatone/go-tplkit/pkg/storage"
)

var (
	// ErrUnknownTheme is returned when a selector has no manifest for the
	// requested theme.
	ErrUnknownTheme = errors.New("theme: unknown theme")
	// ErrNoThemes is returned when a selector has nothing registered.
	ErrNoThemes = errors.New("theme: no themes registered")
)

// Static is a fixed theme location.
type Static storage.Location

// ActiveTheme returns the static location.
func (s Static) ActiveTheme() (storage.Location, error) {
	if strings.TrimSpace(s.Dir) == "" {
		return storage.Location{}, errors.New("theme: static theme dir is required")
	}
	return storage.Location(s), nil
}

var _ storage.ThemeLocator = Static{}

// Option customises a Provider.
type Option func(*Provider)

// WithRoot sets the directory and URL holding one folder per theme.
func WithRoot(dir, url string) Option {
	return func(p *Provider) {
		p.rootDir = strings.TrimSpace(dir)
		p.rootURL = strings.TrimSpace(url)
	}
}

// WithDefaults sets the theme and variant requested from the selector.
func WithDefaults(name, variant string) Option {
	return func(p *Provider) {
		p.name = strings.TrimSpace(name)
		p.variant = strings.TrimSpace(variant)
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Provider asks a go-theme selector for the active theme and maps the
// selection onto the themes root.
type Provider struct {
	selector gotheme.ThemeSelector
	rootDir  string
	rootURL  string
	name     string
	variant  string
	logger   *slog.Logger
}

var _ storage.ThemeLocator = (*Provider)(nil)

// NewProvider constructs a Provider around selector.
func NewProvider(selector gotheme.ThemeSelector, options ...Option) *Provider {
	p := &Provider{
		selector: selector,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(p)
	}
	return p
}

// ActiveTheme resolves the selection. The directory is the theme name under
// the root dir. The URL is the manifest asset prefix when one is declared,
// otherwise the theme name under the root URL.
func (p *Provider) ActiveTheme() (storage.Location, error) {
	if p == nil || p.selector == nil {
		return storage.Location{}, errors.New("theme: selector is required")
	}
	if p.rootDir == "" {
		return storage.Location{}, errors.New("theme: themes root dir is required")
	}

	selection, err := p.selector.Select(p.name, p.variant)
	if err != nil {
		return storage.Location{}, fmt.Errorf("theme: select %q: %w", p.name, err)
	}
	if selection == nil {
		return storage.Location{}, fmt.Errorf("theme: select %q: empty selection", p.name)
	}

	name := selection.Theme
	if name == "" && selection.Manifest != nil {
		name = selection.Manifest.Name
	}
	if name == "" {
		return storage.Location{}, fmt.Errorf("theme: select %q: selection has no theme name", p.name)
	}

	loc := storage.Location{
		Dir: pathutil.TrailingSlash(pathutil.Normalize(p.rootDir)) + name,
		URL: pathutil.TrailingSlash(p.rootURL) + name,
	}
	if selection.Manifest != nil && strings.TrimSpace(selection.Manifest.Assets.Prefix) != "" {
		loc.URL = strings.TrimRight(selection.Manifest.Assets.Prefix, "/")
	}

	p.logger.Debug("active theme resolved", "theme", name, "variant", selection.Variant, "dir", loc.Dir)
	return loc, nil
}
