package theme

import (
	"fmt"
	"strings"
	"sync"

	gotheme "github.com/goliatone/go-theme"
)

// Selector is an in-memory go-theme selector. Manifests are validated by a
// go-theme registry on registration; the first registered theme is the
// fallback when a request names none.
type Selector struct {
	mu        sync.RWMutex
	register  func(*gotheme.Manifest) error
	manifests map[string]*gotheme.Manifest
	fallback  string
}

var _ gotheme.ThemeSelector = (*Selector)(nil)

// NewSelector registers the given manifests.
func NewSelector(manifests ...*gotheme.Manifest) (*Selector, error) {
	registry := gotheme.NewRegistry()
	s := &Selector{
		register: func(manifest *gotheme.Manifest) error {
			return registry.Register(manifest)
		},
		manifests: make(map[string]*gotheme.Manifest),
	}
	for _, manifest := range manifests {
		if err := s.Register(manifest); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Register adds a manifest. Duplicate or invalid manifests are rejected by
// the underlying go-theme registry.
func (s *Selector) Register(manifest *gotheme.Manifest) error {
	if manifest == nil {
		return fmt.Errorf("theme: manifest is required")
	}
	name := strings.TrimSpace(manifest.Name)
	if name == "" {
		return fmt.Errorf("theme: manifest name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.manifests[name]; exists {
		return fmt.Errorf("theme: theme %q already registered", name)
	}
	if err := s.register(manifest); err != nil {
		return fmt.Errorf("theme: register %q: %w", name, err)
	}
	s.manifests[name] = manifest
	if s.fallback == "" {
		s.fallback = name
	}
	return nil
}

// Select returns the named theme, or the fallback theme when name is empty.
// Unknown variants resolve to the base theme.
func (s *Selector) Select(name, variant string, _ ...gotheme.QueryOption) (*gotheme.Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name = strings.TrimSpace(name)
	if name == "" {
		name = s.fallback
	}
	if name == "" {
		return nil, ErrNoThemes
	}

	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTheme, name)
	}

	variant = strings.TrimSpace(variant)
	if _, ok := manifest.Variants[variant]; !ok {
		variant = ""
	}

	return &gotheme.Selection{
		Theme:    manifest.Name,
		Variant:  variant,
		Manifest: manifest,
	}, nil
}
