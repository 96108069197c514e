// Package template binds a named template file within a storage to a set of
// variables and renders it through a render.Engine.
//
// Bindings on the "templates" storage search the theme storage first and fall
// back to the plugin copy, so a theme can override any plugin template by
// shipping a file with the same name.
package template

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"sort"
	"strings"

	"github.com/goliatone/go-tplkit/pkg/pathutil"
	"github.com/goliatone/go-tplkit/pkg/render"
	"github.com/goliatone/go-tplkit/pkg/render/pongo"
	"github.com/goliatone/go-tplkit/pkg/storage"
)

// DefaultExtension is appended to template names when resolving files.
const DefaultExtension = ".php"

// Option customises a Template.
type Option func(*Template)

// WithEngine forces the engine used by Render regardless of file extension.
func WithEngine(engine render.Engine) Option {
	return func(t *Template) {
		t.engine = engine
	}
}

// WithEngines selects engines by the resolved file's extension.
func WithEngines(engines *render.Engines) Option {
	return func(t *Template) {
		t.engines = engines
	}
}

// WithSink sets the output sink. Defaults to render.DefaultSink().
func WithSink(sink *render.Sink) Option {
	return func(t *Template) {
		if sink != nil {
			t.sink = sink
		}
	}
}

// WithLocator replaces the candidate search used for theme-aware bindings.
// The function returns the first usable candidate or "".
func WithLocator(locate func(candidates []string) string) Option {
	return func(t *Template) {
		if locate != nil {
			t.locate = locate
		}
	}
}

// WithExtension changes the file extension appended to the template name.
func WithExtension(ext string) Option {
	return func(t *Template) {
		ext = strings.TrimSpace(ext)
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		t.ext = ext
	}
}

// WithLogger attaches a logger for resolution events.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Template) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// Template is a template file bound to variables. A Template is not safe for
// concurrent mutation; build one per render.
type Template struct {
	registry  *storage.Registry
	storage   string
	name      string
	vars      Vars
	themeMode bool

	engine  render.Engine
	engines *render.Engines
	sink    *render.Sink
	locate  func([]string) string
	ext     string
	logger  *slog.Logger
}

// IsThemeAware reports whether bindings on the storage search the theme
// storage before their own. Only the "templates" storage does.
func IsThemeAware(storageName string) bool {
	return storageName == storage.TemplatesStorage
}

// New binds name within storageName to vars. vars may be nil, a Vars, or any
// map with string keys whose values ValueOf accepts.
func New(reg *storage.Registry, storageName, name string, vars any, options ...Option) (*Template, error) {
	if reg == nil {
		reg = storage.Default()
	}
	if !reg.Exists(storageName) {
		return nil, &storage.UnknownStorageError{Name: storageName}
	}

	bound, err := toVars(vars)
	if err != nil {
		return nil, err
	}

	t := &Template{
		registry:  reg,
		storage:   storageName,
		name:      name,
		vars:      bound,
		themeMode: IsThemeAware(storageName),
		sink:      render.DefaultSink(),
		locate:    pathutil.Locate,
		ext:       DefaultExtension,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(t)
	}
	return t, nil
}

// Name returns the template name as given.
func (t *Template) Name() string {
	return t.name
}

// Storage returns the storage the template is bound to.
func (t *Template) Storage() string {
	return t.storage
}

// ResolvePath returns the template file path. Theme-aware bindings return the
// first existing candidate, or "" when neither exists; other bindings return
// the joined path without checking it.
func (t *Template) ResolvePath() (string, error) {
	if !t.themeMode {
		dir, err := t.registry.Path(t.storage)
		if err != nil {
			return "", err
		}
		return t.file(dir), nil
	}

	candidates := make([]string, 0, 2)
	if themeDir, err := t.registry.Path(storage.ThemeStorage); err == nil {
		candidates = append(candidates, t.file(themeDir))
	} else {
		t.logger.Debug("theme storage not registered, using plugin templates only", "template", t.name)
	}
	pluginDir, err := t.registry.Path(t.storage)
	if err != nil {
		return "", err
	}
	candidates = append(candidates, t.file(pluginDir))

	found := t.locate(candidates)
	t.logger.Debug("resolved theme-aware template", "template", t.name, "candidates", candidates, "path", found)
	return found, nil
}

// Exists reports whether the resolved file exists.
func (t *Template) Exists() bool {
	path, err := t.ResolvePath()
	if err != nil || path == "" {
		return false
	}
	return pathutil.FileExists(path)
}

// Get returns the bound value for key. A missing or Null value yields the
// first default, or Null.
func (t *Template) Get(key string, def ...Value) Value {
	if v, ok := t.vars[key]; ok && !v.IsNull() {
		return v
	}
	if len(def) > 0 {
		return def[0]
	}
	return Null()
}

// Print writes the text form of Get(key, def...) to the sink.
func (t *Template) Print(key string, def ...Value) error {
	_, err := t.sink.WriteString(t.Get(key, def...).String())
	return err
}

func (t *Template) printTo(out io.Writer, key string, def ...Value) error {
	_, err := io.WriteString(out, t.Get(key, def...).String())
	return err
}

// Set binds key to v.
func (t *Template) Set(key string, v Value) *Template {
	if t.vars == nil {
		t.vars = make(Vars)
	}
	t.vars[key] = v
	return t
}

// SetAny converts v with ValueOf and binds it.
func (t *Template) SetAny(key string, v any) error {
	value, err := ValueOf(v)
	if err != nil {
		return fmt.Errorf("template: set %q: %w", key, err)
	}
	t.Set(key, value)
	return nil
}

// Remove unbinds key. Removing an unbound key is a no-op.
func (t *Template) Remove(key string) *Template {
	delete(t.vars, key)
	return t
}

// Vars returns a copy of the bound variables.
func (t *Template) Vars() Vars {
	out := make(Vars, len(t.vars))
	for k, v := range t.vars {
		out[k] = v
	}
	return out
}

// Keys returns the bound variable names in sorted order.
func (t *Template) Keys() []string {
	keys := make([]string, 0, len(t.vars))
	for k := range t.vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ClearVars unbinds every variable.
func (t *Template) ClearVars() *Template {
	t.vars = make(Vars)
	return t
}

// Render executes the template file, writing to the sink's current writer.
func (t *Template) Render() error {
	return t.renderTo(t.sink.Current())
}

// Capture renders into a string. Output goes to a buffer owned by this call,
// so the sink is never redirected.
func (t *Template) Capture() (string, error) {
	return render.Capture(t.renderTo)
}

func (t *Template) renderTo(out io.Writer) error {
	path, err := t.ResolvePath()
	if err != nil {
		return err
	}
	if path == "" || !pathutil.FileExists(path) {
		return &NotFoundError{Name: t.name, Path: path}
	}

	engine := t.engineFor(path)
	if err := engine.Execute(path, scope{t: t, out: out}, out); err != nil {
		return fmt.Errorf("template: render %q with %s: %w", t.name, engine.Name(), err)
	}
	return nil
}

// String renders the template to text. A missing template yields the error
// message instead of output. String panics on any other render failure,
// since it has no way to report it.
func (t *Template) String() string {
	out, err := t.Capture()
	if err == nil {
		return out
	}
	if errors.Is(err, ErrTemplateNotFound) {
		return err.Error()
	}
	panic(err)
}

func (t *Template) file(dir string) string {
	return pathutil.Join(dir, t.name) + t.ext
}

func (t *Template) engineFor(path string) render.Engine {
	if t.engine != nil {
		return t.engine
	}
	if engine, ok := t.engines.For(path); ok {
		return engine
	}
	return pongo.Default()
}

// scope exposes a binding to template engines.
type scope struct {
	t   *Template
	out io.Writer
}

var _ render.Scope = scope{}

func (s scope) Get(key string, def ...any) any {
	v := s.t.Get(key, defaults(def)...)
	if v.Kind() == KindRenderable {
		return v.String()
	}
	return v.Interface()
}

func (s scope) Text(key string, def ...any) string {
	return s.t.Get(key, defaults(def)...).String()
}

func (s scope) Print(key string, def ...any) error {
	return s.t.printTo(s.out, key, defaults(def)...)
}

func defaults(def []any) []Value {
	if len(def) == 0 {
		return nil
	}
	v, err := ValueOf(def[0])
	if err != nil {
		v = String(fmt.Sprint(def[0]))
	}
	return []Value{v}
}

func toVars(vars any) (Vars, error) {
	switch typed := vars.(type) {
	case nil:
		return make(Vars), nil
	case Vars:
		return copyVars(typed), nil
	case map[string]Value:
		return copyVars(typed), nil
	case map[string]string:
		out := make(Vars, len(typed))
		for k, v := range typed {
			out[k] = String(v)
		}
		return out, nil
	case map[string]any:
		out := make(Vars, len(typed))
		for k, v := range typed {
			value, err := ValueOf(v)
			if err != nil {
				return nil, fmt.Errorf("template: var %q: %w", k, err)
			}
			out[k] = value
		}
		return out, nil
	}

	rv := reflect.ValueOf(vars)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("%w: expected a string-keyed map, got %T", ErrInvalidVars, vars)
	}
	out := make(Vars, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k := iter.Key().String()
		value, err := ValueOf(iter.Value().Interface())
		if err != nil {
			return nil, fmt.Errorf("template: var %q: %w", k, err)
		}
		out[k] = value
	}
	return out, nil
}

func copyVars(in map[string]Value) Vars {
	out := make(Vars, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
