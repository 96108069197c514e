// Package tplkit locates plugin template files, binds variables to them and
// renders them, letting the active theme override any plugin template.
//
// The functions here use the process-wide storage registry and output sink.
// Applications that need isolation build their own storage.Registry and pass
// it to template.New along with a render.Sink.
package tplkit

import (
	"github.com/goliatone/go-tplkit/pkg/render"
	"github.com/goliatone/go-tplkit/pkg/storage"
	"github.com/goliatone/go-tplkit/pkg/template"
)

// Template aliases template.Template for callers that only import the root
// package.
type Template = template.Template

// Vars aliases template.Vars.
type Vars = template.Vars

// Storage returns the process-wide storage registry.
func Storage() *storage.Registry {
	return storage.Default()
}

// Sink returns the process-wide output sink.
func Sink() *render.Sink {
	return render.DefaultSink()
}

// New binds a template in the default registry.
func New(storageName, name string, vars any, options ...template.Option) (*Template, error) {
	return template.New(storage.Default(), storageName, name, vars, options...)
}

// Render binds and renders a template to the default sink in one call.
func Render(storageName, name string, vars any) error {
	tpl, err := New(storageName, name, vars)
	if err != nil {
		return err
	}
	return tpl.Render()
}

// Capture binds and renders a template, returning its output.
func Capture(storageName, name string, vars any) (string, error) {
	tpl, err := New(storageName, name, vars)
	if err != nil {
		return "", err
	}
	return tpl.Capture()
}
