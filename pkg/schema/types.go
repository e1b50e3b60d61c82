/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: types.go
Description: Core schema model for the StreamSchema inference pipeline. Defines field
types with their canonical textual identifiers, schema fields keyed by dotted path,
and the immutable inferred schema handed to the generators.
*/

package schema

import (
	"strings"

	json "github.com/goccy/go-json"
)

// Type kind names used across inference and generation
const (
	KindString  = "string"
	KindInt     = "int"
	KindFloat   = "float"
	KindBoolean = "boolean"
	KindNull    = "null"
	KindObject  = "object"
	KindArray   = "array"
	KindUnion   = "union"
)

// FieldType describes the unified type of one field. Kind is the canonical
// kind name; composite element kinds (from nested array unification) are
// carried verbatim so the textual identifier round-trips.
type FieldType struct {
	Kind     string `json:"kind"`
	Nullable bool   `json:"nullable"`
	Array    bool   `json:"array"`
}

// String composes the canonical textual type identifier, wrapping the kind in
// array<...> and nullable<...> as needed. Generators re-parse this form.
func (t FieldType) String() string {
	result := t.Kind
	if t.Array {
		result = "array<" + result + ">"
	}
	if t.Nullable {
		result = "nullable<" + result + ">"
	}
	return result
}

// ParseFieldType reverses String: it unwraps nullable<...> and array<...>
// layers and returns the structural FieldType.
func ParseFieldType(s string) FieldType {
	t := FieldType{Kind: s}
	if strings.HasPrefix(t.Kind, "nullable<") && strings.HasSuffix(t.Kind, ">") {
		t.Nullable = true
		t.Kind = t.Kind[len("nullable<") : len(t.Kind)-1]
	}
	if strings.HasPrefix(t.Kind, "array<") && strings.HasSuffix(t.Kind, ">") {
		t.Array = true
		t.Kind = t.Kind[len("array<") : len(t.Kind)-1]
	}
	return t
}

// SchemaField is one unified field in the inferred schema. Path locates the
// field in the aggregate record shape: nested objects append ".key", arrays
// of objects append "[]" per nesting level (e.g. items[].id, matrix[][]).
type SchemaField struct {
	Path         string        `json:"name"`
	Type         FieldType     `json:"-"`
	TypeName     string        `json:"type"`
	Required     bool          `json:"required"`
	DefaultValue interface{}   `json:"default_value"`
	Description  string        `json:"description,omitempty"`
	Examples     []interface{} `json:"examples,omitempty"`
}

// InferredSchema is the sole artifact crossing from inference into
// generation. Fields are sorted by path and own all their data.
type InferredSchema struct {
	Name        string        `json:"name"`
	Namespace   string        `json:"namespace"`
	Description string        `json:"description"`
	Fields      []SchemaField `json:"fields"`
}

// JSON renders the schema as an indented JSON document, with each field's
// type in its canonical textual form.
func (s *InferredSchema) JSON() ([]byte, error) {
	out := *s
	out.Fields = make([]SchemaField, len(s.Fields))
	for i, f := range s.Fields {
		f.TypeName = f.Type.String()
		out.Fields[i] = f
	}
	return json.MarshalIndent(&out, "", "  ")
}
