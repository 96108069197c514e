// Package pongo executes template files with pongo2. A template body reaches
// its bound variables through two functions placed in its context:
//
//	{{ get("title", "Untitled") }}   the raw value, subject to autoescape
//	{{ the("title") }}               the text form, written as-is
//
// Files are loaded on every Execute call with a set rooted at the file's
// directory, so {% include %} resolves sibling fragments.
package pongo

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-tplkit/pkg/render"
)

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	globals map[string]any
	filters map[string]func(input any, param any) (any, error)
}

// WithGlobalData seeds values available to every template.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) == 0 {
			return
		}
		if cfg.globals == nil {
			cfg.globals = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globals[strings.TrimSpace(key)] = value
		}
	}
}

// WithFilter registers a template filter when the engine is built. Names
// already known to pongo2 are left alone.
func WithFilter(name string, fn func(input any, param any) (any, error)) Option {
	return func(cfg *config) {
		name = strings.TrimSpace(name)
		if name == "" || fn == nil {
			return
		}
		if cfg.filters == nil {
			cfg.filters = make(map[string]func(any, any) (any, error))
		}
		cfg.filters[name] = fn
	}
}

// Engine satisfies render.Engine using pongo2.
type Engine struct {
	mu      sync.RWMutex
	globals pongo2.Context
}

var _ render.Engine = (*Engine)(nil)

var (
	defaultOnce   sync.Once
	defaultEngine *Engine
)

// Default returns a shared engine with the built-in filters.
func Default() *Engine {
	defaultOnce.Do(func() {
		engine, err := New()
		if err != nil {
			panic(err)
		}
		defaultEngine = engine
	})
	return defaultEngine
}

// New constructs an Engine using the provided configuration options.
func New(options ...Option) (*Engine, error) {
	cfg := &config{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	registerDefaultFilters()

	engine := &Engine{
		globals: make(pongo2.Context),
	}
	if err := engine.GlobalContext(cfg.globals); err != nil {
		return nil, fmt.Errorf("pongo: apply global data: %w", err)
	}
	for name, fn := range cfg.filters {
		if pongo2.FilterExists(name) {
			continue
		}
		if err := RegisterFilter(name, fn); err != nil {
			return nil, err
		}
	}
	return engine, nil
}

// Name identifies the engine.
func (e *Engine) Name() string {
	return "pongo2"
}

// GlobalContext merges data into the values shared by every template.
func (e *Engine) GlobalContext(data map[string]any) error {
	if e == nil {
		return errors.New("pongo: engine is nil")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for key, value := range data {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if key == "get" || key == "the" {
			return fmt.Errorf("pongo: global %q is reserved", key)
		}
		e.globals[key] = value
	}
	return nil
}

// Execute loads the file at path and renders it to out. Nothing is written
// when the template fails.
func (e *Engine) Execute(path string, scope render.Scope, out io.Writer) error {
	if e == nil {
		return errors.New("pongo: engine is nil")
	}
	if scope == nil {
		return errors.New("pongo: scope is required")
	}

	dir, file := filepath.Split(path)
	loader, err := pongo2.NewLocalFileSystemLoader(dir)
	if err != nil {
		return fmt.Errorf("pongo: create loader for %q: %w", dir, err)
	}

	set := pongo2.NewSet("tplkit", loader)
	e.mu.RLock()
	set.Globals = make(pongo2.Context, len(e.globals))
	set.Globals.Update(e.globals)
	e.mu.RUnlock()

	tmpl, err := set.FromFile(file)
	if err != nil {
		return fmt.Errorf("pongo: load template %q: %w", path, err)
	}

	if err := tmpl.ExecuteWriter(scopeContext(scope), out); err != nil {
		return fmt.Errorf("pongo: execute template %q: %w", path, err)
	}
	return nil
}

func scopeContext(scope render.Scope) pongo2.Context {
	return pongo2.Context{
		"get": func(key string, def ...any) any {
			return scope.Get(key, def...)
		},
		"the": func(key string, def ...any) *pongo2.Value {
			return pongo2.AsSafeValue(scope.Text(key, def...))
		},
	}
}

// RegisterFilter registers fn as a pongo2 filter. Filters are global to
// pongo2, so an existing name is an error.
func RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	if strings.TrimSpace(name) == "" || fn == nil {
		return errors.New("pongo: filter name and function required")
	}
	if pongo2.FilterExists(name) {
		return fmt.Errorf("pongo: filter %q already exists", name)
	}

	filter := func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var paramVal any
		if param != nil {
			paramVal = param.Interface()
		}
		result, err := fn(in.Interface(), paramVal)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	}
	return pongo2.RegisterFilter(name, filter)
}
