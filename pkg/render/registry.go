package render

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ErrDuplicateEngine is matched by Register when an extension is taken.
var ErrDuplicateEngine = errors.New("render: engine already registered")

// Engines maps template file extensions to engines, so a binding can pick the
// engine from the resolved path.
type Engines struct {
	mu      sync.RWMutex
	engines map[string]Engine
}

// NewEngines creates an empty registry.
func NewEngines() *Engines {
	return &Engines{
		engines: make(map[string]Engine),
	}
}

// Register binds ext (with or without the leading dot) to engine. Duplicate
// extensions return an error.
func (r *Engines) Register(ext string, engine Engine) error {
	if engine == nil {
		return fmt.Errorf("render: engine is required")
	}
	ext = normalizeExt(ext)
	if ext == "" {
		return fmt.Errorf("render: extension is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.engines[ext]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateEngine, ext)
	}
	r.engines[ext] = engine
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Engines) MustRegister(ext string, engine Engine) *Engines {
	if err := r.Register(ext, engine); err != nil {
		panic(err)
	}
	return r
}

// For returns the engine registered for the extension of path.
func (r *Engines) For(path string) (Engine, bool) {
	if r == nil {
		return nil, false
	}
	ext := normalizeExt(filepath.Ext(path))

	r.mu.RLock()
	defer r.mu.RUnlock()

	engine, ok := r.engines[ext]
	return engine, ok
}

// Extensions returns the registered extensions in sorted order.
func (r *Engines) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.engines))
	for ext := range r.engines {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
