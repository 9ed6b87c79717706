package mustache

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Kind classifies a view value for rendering.
type Kind int

const (
	KindNull Kind = iota
	KindScalar
	KindString
	KindSequence
	KindMapping
	KindLambda
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindScalar:
		return "scalar"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	case KindLambda:
		return "lambda"
	default:
		return "unknown"
	}
}

// RenderFunc renders a template against the context a lambda was called in.
type RenderFunc func(template string) (string, error)

// Lambda is a section value that takes over rendering of its section. It
// receives the unrendered text between the section tags and a RenderFunc bound
// to the current context and partials. The returned text is written as is.
type Lambda func(text string, render RenderFunc) (string, error)

// Computed is a value that is recomputed on every lookup. It receives the view
// of the frame the lookup started from.
type Computed func(view any) any

// KindOf returns the kind of v. Computed values are not invoked.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case Lambda, func(string, RenderFunc) (string, error):
		return KindLambda
	case string:
		return KindString
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return KindScalar
	case []any:
		return KindSequence
	case map[string]any:
		return KindMapping
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return KindNull
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.String:
		return KindString
	case reflect.Slice, reflect.Array:
		return KindSequence
	case reflect.Map, reflect.Struct:
		return KindMapping
	case reflect.Func, reflect.Chan:
		if rv.IsNil() {
			return KindNull
		}
	}
	return KindScalar
}

// isNil reports whether v counts as absent. Typed nil pointers, funcs and
// interfaces are absent; nil maps and slices are present but empty.
func isNil(v any) bool {
	return KindOf(v) == KindNull
}

// isTruthy mirrors the loose truthiness of the template language: nil, false,
// zero, NaN and the empty string are falsy. Empty sequences and mappings are
// truthy.
func isTruthy(v any) bool {
	if isNil(v) {
		return false
	}

	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val != ""
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return !reflect.ValueOf(val).IsZero()
	case float32:
		return val != 0 && !math.IsNaN(float64(val))
	case float64:
		return val != 0 && !math.IsNaN(val)
	}

	rv := reflect.Indirect(reflect.ValueOf(v))
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.Len() > 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	}
	return true
}

// isEmptySequence reports whether v is a sequence with no elements.
func isEmptySequence(v any) bool {
	if KindOf(v) != KindSequence {
		return false
	}
	return sequenceLen(v) == 0
}

func sequenceLen(v any) int {
	if s, ok := v.([]any); ok {
		return len(s)
	}
	return reflect.Indirect(reflect.ValueOf(v)).Len()
}

// eachElement calls fn for every element of a sequence, stopping at the first
// error.
func eachElement(v any, fn func(elem any) error) error {
	if s, ok := v.([]any); ok {
		for _, elem := range s {
			if err := fn(elem); err != nil {
				return err
			}
		}
		return nil
	}

	rv := reflect.Indirect(reflect.ValueOf(v))
	for i := 0; i < rv.Len(); i++ {
		if err := fn(rv.Index(i).Interface()); err != nil {
			return err
		}
	}
	return nil
}

// asLambda returns v as a Lambda if it is one.
func asLambda(v any) (Lambda, bool) {
	switch fn := v.(type) {
	case Lambda:
		return fn, true
	case func(string, RenderFunc) (string, error):
		return Lambda(fn), true
	}
	return nil, false
}

// invokeComputed calls computed values with view and returns their result.
// Any other value is returned unchanged.
func invokeComputed(v any, view any) any {
	switch fn := v.(type) {
	case Computed:
		return fn(view)
	case func(any) any:
		return fn(view)
	case func() any:
		return fn()
	case func() string:
		return fn()
	}
	return v
}

// property resolves one key against a view value. Maps are indexed by key,
// structs by exported field or niladic method, and sequences by decimal index.
func property(v any, key string) any {
	if isNil(v) {
		return nil
	}

	if m, ok := v.(map[string]any); ok {
		return m[key]
	}

	rv := reflect.ValueOf(v)
	if val, ok := callMethod(rv, key); ok {
		return val
	}

	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil
		}
		mv := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if mv.IsValid() && mv.CanInterface() {
			return mv.Interface()
		}
	case reflect.Struct:
		fv := rv.FieldByName(key)
		if !fv.IsValid() {
			fv = rv.FieldByNameFunc(func(n string) bool {
				return strings.EqualFold(n, key)
			})
		}
		if fv.IsValid() && fv.CanInterface() {
			return fv.Interface()
		}
	case reflect.Slice, reflect.Array:
		idx, err := strconv.Atoi(key)
		if err == nil && idx >= 0 && idx < rv.Len() {
			return rv.Index(idx).Interface()
		}
	}
	return nil
}

// callMethod calls the exported method named key if it takes no arguments
// and returns a single value.
func callMethod(rv reflect.Value, key string) (any, bool) {
	if !rv.IsValid() || key == "" {
		return nil, false
	}
	name := strings.ToUpper(key[:1]) + key[1:]
	m := rv.MethodByName(name)
	if !m.IsValid() {
		return nil, false
	}
	if m.Type().NumIn() != 0 || m.Type().NumOut() != 1 {
		return nil, false
	}
	return m.Call(nil)[0].Interface(), true
}

// formatFloat prints the shortest text that reads back as f. Whole numbers
// below 1e21 never use an exponent.
func formatFloat(f float64, bitSize int) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, bitSize)
	}
	return strconv.FormatFloat(f, 'g', -1, bitSize)
}

// FormatValue converts a value to its text form for output
func FormatValue(value interface{}) string {
	if isNil(value) {
		return ""
	}

	switch v := value.(type) {
	case string:
		return v
	case int, int8, int16, int32, int64:
		return fmt.Sprintf("%d", v)
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float32:
		return formatFloat(float64(v), 32)
	case float64:
		return formatFloat(v, 64)
	case bool:
		return strconv.FormatBool(v)
	case fmt.Stringer:
		return v.String()
	case []any:
		parts := make([]string, len(v))
		for i, elem := range v {
			parts[i] = FormatValue(elem)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprintf("%v", v)
	}
}
