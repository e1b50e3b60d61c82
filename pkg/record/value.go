/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: value.go
Description: Closed tagged-value variant for parsed message data. Models the dynamic
scalar/array/object values produced by the format parsers so that every downstream
type switch is exhaustive and compiler-checked.
*/

package record

import (
	"fmt"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
)

// Kind identifies the variant held by a Value
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindArray
	KindObject
)

// String returns the lowercase kind name
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
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a tagged union over the types a parser can produce:
// String, Int, Float, Bool, Null, Array and Object. The zero Value is Null.
type Value struct {
	kind Kind
	str  string
	num  int64
	flt  float64
	boo  bool
	arr  []Value
	obj  map[string]Value
}

// Record is one parsed message: a mapping from field name to Value
type Record map[string]Value

// Null returns the null Value
func Null() Value { return Value{kind: KindNull} }

// String wraps a string scalar
func String(s string) Value { return Value{kind: KindString, str: s} }

// Int wraps an integer scalar
func Int(i int64) Value { return Value{kind: KindInt, num: i} }

// Float wraps a floating point scalar
func Float(f float64) Value { return Value{kind: KindFloat, flt: f} }

// Bool wraps a boolean scalar
func Bool(b bool) Value { return Value{kind: KindBool, boo: b} }

// Array wraps a list of values
func Array(elems ...Value) Value { return Value{kind: KindArray, arr: elems} }

// Object wraps a nested mapping
func Object(fields map[string]Value) Value { return Value{kind: KindObject, obj: fields} }

// Kind reports which variant the value holds
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is the null variant
func (v Value) IsNull() bool { return v.kind == KindNull }

// Str returns the string payload (valid for KindString)
func (v Value) Str() string { return v.str }

// Int64 returns the integer payload (valid for KindInt)
func (v Value) Int64() int64 { return v.num }

// Float64 returns the float payload (valid for KindFloat)
func (v Value) Float64() float64 { return v.flt }

// BoolVal returns the boolean payload (valid for KindBool)
func (v Value) BoolVal() bool { return v.boo }

// Elems returns the element slice (valid for KindArray)
func (v Value) Elems() []Value { return v.arr }

// Fields returns the nested mapping (valid for KindObject)
func (v Value) Fields() map[string]Value { return v.obj }

// Native converts the value back to plain Go data, suitable for JSON encoding
func (v Value) Native() interface{} {
	switch v.kind {
	case KindNull:
		return nil
	case KindString:
		return v.str
	case KindInt:
		return v.num
	case KindFloat:
		return v.flt
	case KindBool:
		return v.boo
	case KindArray:
		out := make([]interface{}, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Native()
		}
		return out
	case KindObject:
		out := make(map[string]interface{}, len(v.obj))
		for k, e := range v.obj {
			out[k] = e.Native()
		}
		return out
	default:
		return nil
	}
}

// Preview projects the value into a documentation example. Scalars pass
// through as-is; arrays and objects become a textual preview truncated to
// their first 3 entries (objects by sorted key, so the preview is stable).
func (v Value) Preview() interface{} {
	switch v.kind {
	case KindNull:
		return nil
	case KindString:
		return v.str
	case KindInt:
		return v.num
	case KindFloat:
		return v.flt
	case KindBool:
		return v.boo
	case KindArray:
		parts := make([]string, 0, 3)
		for i, e := range v.arr {
			if i >= 3 {
				break
			}
			parts = append(parts, previewText(e))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindObject:
		keys := make([]string, 0, len(v.obj))
		for k := range v.obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		if len(keys) > 3 {
			keys = keys[:3]
		}
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s: %s", k, previewText(v.obj[k])))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return nil
	}
}

// previewText renders a single value for inclusion in a composite preview
func previewText(v Value) string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindString:
		return v.str
	case KindInt:
		return fmt.Sprintf("%d", v.num)
	case KindFloat:
		return fmt.Sprintf("%v", v.flt)
	case KindBool:
		return fmt.Sprintf("%t", v.boo)
	default:
		return fmt.Sprintf("%v", v.Preview())
	}
}

// FromInterface converts decoded JSON data (interface{} trees as produced by
// a JSON decoder with UseNumber) into the closed Value variant. Unknown types
// fall back to their string rendering.
func FromInterface(v interface{}) Value {
	switch val := v.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(val)
	case string:
		return String(val)
	case int:
		return Int(int64(val))
	case int64:
		return Int(val)
	case float64:
		return Float(val)
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return Int(i)
		}
		if f, err := val.Float64(); err == nil {
			return Float(f)
		}
		return String(val.String())
	case []interface{}:
		elems := make([]Value, len(val))
		for i, e := range val {
			elems[i] = FromInterface(e)
		}
		return Value{kind: KindArray, arr: elems}
	case map[string]interface{}:
		fields := make(map[string]Value, len(val))
		for k, e := range val {
			fields[k] = FromInterface(e)
		}
		return Value{kind: KindObject, obj: fields}
	default:
		return String(fmt.Sprintf("%v", val))
	}
}

// IsBinary reports whether a record is the raw-text parser's binary fallback
// shape (is_binary flag set true).
func (r Record) IsBinary() bool {
	v, ok := r["is_binary"]
	return ok && v.Kind() == KindBool && v.BoolVal()
}
