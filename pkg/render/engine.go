// Package render defines how a resolved template file is executed: the Engine
// contract implemented by the pongo2 and scriggo adapters, the Scope handed to
// a template body, the redirectable output Sink and a registry mapping file
// extensions to engines.
package render

import "io"

// Scope is what a template body can reach while it executes. Get and Text
// look up bound variables, falling back to the optional default. Print
// writes the text form to the writer the engine was given, for engines that
// stream output as they go; pongo2 and scriggo use Text through their "the"
// helper instead.
type Scope interface {
	Get(key string, def ...any) any
	Text(key string, def ...any) string
	Print(key string, def ...any) error
}

// Engine executes a template file, writing its output to out.
type Engine interface {
	Name() string
	Execute(path string, scope Scope, out io.Writer) error
}

// EngineFunc adapts a function to Engine. Mostly useful in tests.
type EngineFunc func(path string, scope Scope, out io.Writer) error

// Name returns "func".
func (f EngineFunc) Name() string {
	return "func"
}

// Execute calls f.
func (f EngineFunc) Execute(path string, scope Scope, out io.Writer) error {
	return f(path, scope, out)
}
