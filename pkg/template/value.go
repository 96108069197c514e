package template

import (
	"fmt"
	"reflect"
	"strconv"
)

// Kind enumerates the shapes a bound variable can take.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindRenderable
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindRenderable:
		return "renderable"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a template variable. The zero Value is Null.
type Value struct {
	kind Kind
	s    string
	i    int64
	f    float64
	b    bool
	r    fmt.Stringer
}

// Vars maps variable names to values.
type Vars map[string]Value

// Null returns the absent value.
func Null() Value { return Value{} }

// String wraps text.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Int wraps an integer.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float wraps a float.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Renderable wraps content that renders itself to text, such as another
// *Template or a pre-rendered fragment. A nil stringer yields Null.
func Renderable(r fmt.Stringer) Value {
	if r == nil {
		return Null()
	}
	if rv := reflect.ValueOf(r); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return Null()
	}
	return Value{kind: KindRenderable, r: r}
}

// ValueOf converts a native Go value. Values already of type Value pass
// through; unsupported types fail with ErrInvalidVars.
func ValueOf(v any) (Value, error) {
	switch typed := v.(type) {
	case nil:
		return Null(), nil
	case Value:
		return typed, nil
	case string:
		return String(typed), nil
	case bool:
		return Bool(typed), nil
	case int:
		return Int(int64(typed)), nil
	case int8:
		return Int(int64(typed)), nil
	case int16:
		return Int(int64(typed)), nil
	case int32:
		return Int(int64(typed)), nil
	case int64:
		return Int(typed), nil
	case uint8:
		return Int(int64(typed)), nil
	case uint16:
		return Int(int64(typed)), nil
	case uint32:
		return Int(int64(typed)), nil
	case float32:
		return Float(float64(typed)), nil
	case float64:
		return Float(typed), nil
	case fmt.Stringer:
		return Renderable(typed), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > 1<<63-1 {
			return Value{}, fmt.Errorf("%w: %d overflows int64", ErrInvalidVars, u)
		}
		return Int(int64(u)), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.Pointer:
		if rv.IsNil() {
			return Null(), nil
		}
		return ValueOf(rv.Elem().Interface())
	}
	return Value{}, fmt.Errorf("%w: unsupported value of type %T", ErrInvalidVars, v)
}

// Kind reports the value's shape.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the absent value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// String renders the value as text. Null renders as the empty string,
// booleans as true/false and floats in their shortest form.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindRenderable:
		return v.r.String()
	default:
		return ""
	}
}

// Interface returns the underlying Go value: nil, string, int64, float64,
// bool or the fmt.Stringer.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.s
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindBool:
		return v.b
	case KindRenderable:
		return v.r
	default:
		return nil
	}
}

// Equal reports whether two values hold the same kind and payload.
// Renderables compare with == when their dynamic type is comparable and are
// unequal otherwise.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.s == other.s
	case KindInt:
		return v.i == other.i
	case KindFloat:
		return v.f == other.f
	case KindBool:
		return v.b == other.b
	case KindRenderable:
		a, b := reflect.ValueOf(v.r), reflect.ValueOf(other.r)
		if a.Type() == b.Type() && a.Comparable() {
			return a.Equal(b)
		}
		return false
	}
	return false
}

// GoString supports %#v in test failures.
func (v Value) GoString() string {
	if v.kind == KindString {
		return "template.String(" + strconv.Quote(v.s) + ")"
	}
	return "template." + v.kind.String() + "(" + v.String() + ")"
}
