// Package scriggo executes template files with the Scriggo template engine.
// Templates call get and the like any other global function; Markdown
// sources are converted with goldmark.
package scriggo

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	scriggopkg "github.com/open2b/scriggo"
	"github.com/open2b/scriggo/native"
	"github.com/yuin/goldmark"

	"github.com/goliatone/go-tplkit/pkg/render"
)

// Option configures the engine.
type Option func(*Engine)

// WithGlobals declares extra globals (constants, functions, packages)
// available to every template. The names get and the are reserved.
func WithGlobals(globals native.Declarations) Option {
	return func(e *Engine) {
		for name, decl := range globals {
			e.globals[strings.TrimSpace(name)] = decl
		}
	}
}

// WithMarkdown replaces the goldmark converter used for Markdown sources.
func WithMarkdown(md goldmark.Markdown) Option {
	return func(e *Engine) {
		if md != nil {
			e.markdown = md
		}
	}
}

// Engine satisfies render.Engine using Scriggo. Templates are built on every
// Execute call.
type Engine struct {
	globals  native.Declarations
	markdown goldmark.Markdown
}

var _ render.Engine = (*Engine)(nil)

// New constructs an Engine.
func New(options ...Option) (*Engine, error) {
	e := &Engine{
		globals:  native.Declarations{},
		markdown: goldmark.New(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	for _, reserved := range []string{"get", "the"} {
		if _, ok := e.globals[reserved]; ok {
			return nil, fmt.Errorf("scriggo: global %q is reserved", reserved)
		}
	}
	return e, nil
}

// Name identifies the engine.
func (e *Engine) Name() string {
	return "scriggo"
}

// Execute builds the file at path and runs it, writing to out.
func (e *Engine) Execute(path string, scope render.Scope, out io.Writer) error {
	if e == nil {
		return errors.New("scriggo: engine is nil")
	}
	if scope == nil {
		return errors.New("scriggo: scope is required")
	}

	dir, file := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	globals := make(native.Declarations, len(e.globals)+2)
	for name, decl := range e.globals {
		globals[name] = decl
	}
	globals["get"] = func(key string, def ...interface{}) interface{} {
		return scope.Get(key, def...)
	}
	globals["the"] = func(key string, def ...interface{}) string {
		return scope.Text(key, def...)
	}

	md := e.markdown
	tmpl, err := scriggopkg.BuildTemplate(os.DirFS(dir), file, &scriggopkg.BuildOptions{
		Globals: globals,
		MarkdownConverter: func(src []byte, w io.Writer) error {
			return md.Convert(src, w)
		},
	})
	if err != nil {
		return fmt.Errorf("scriggo: build template %q: %w", path, err)
	}

	if err := tmpl.Run(out, nil, nil); err != nil {
		return fmt.Errorf("scriggo: run template %q: %w", path, err)
	}
	return nil
}
