/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: jsonschema.go
Description: JSON Schema (draft-07) generator for the StreamSchema pipeline. Re-nests
the flat inferred field list into object property trees, renders nullability as
[T, "null"] type arrays, and emits canonical indented JSON.
*/

package generators

import (
	json "github.com/goccy/go-json"

	"github.com/kleascm/streamschema/pkg/schema"
)

// jsonSchemaTypes maps internal kinds to JSON Schema type names. Union has no
// single JSON Schema type, so it degrades to string; object and array are
// handled structurally.
var jsonSchemaTypes = map[string]string{
	schema.KindString:  "string",
	schema.KindInt:     "integer",
	schema.KindFloat:   "number",
	schema.KindBoolean: "boolean",
	schema.KindNull:    "null",
	schema.KindUnion:   "string",
}

// JSONSchemaGenerator emits draft-07 JSON Schema documents
type JSONSchemaGenerator struct{}

// NewJSONSchemaGenerator creates a JSON Schema generator
func NewJSONSchemaGenerator() *JSONSchemaGenerator {
	return &JSONSchemaGenerator{}
}

// Generate renders the schema as a draft-07 document
func (g *JSONSchemaGenerator) Generate(s *schema.InferredSchema) (string, error) {
	description := s.Description
	if description == "" {
		description = "Auto-generated JSON Schema for " + s.Name
	}

	root := map[string]interface{}{
		"$schema":     "http://json-schema.org/draft-07/schema#",
		"title":       s.Name,
		"description": description,
		"type":        "object",
	}
	if s.Namespace != "" {
		root["$id"] = "https://" + s.Namespace + "/" + s.Name + ".json"
	}

	properties, required := g.objectSchema(groupFields(s.Fields))
	root["properties"] = properties
	if len(required) > 0 {
		root["required"] = required
	}

	out, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// FileExtension returns the JSON Schema extension
func (g *JSONSchemaGenerator) FileExtension() string {
	return "json"
}

// objectSchema converts one tree level into a properties map and the list of
// required property names. Nodes with children become nested object schemas;
// a nested object is required when any of its own leaves is required.
func (g *JSONSchemaGenerator) objectSchema(node *fieldNode) (map[string]interface{}, []string) {
	properties := make(map[string]interface{}, len(node.order))
	var required []string

	node.walk(func(child *fieldNode) {
		if child.hasChildren() {
			nestedProps, nestedRequired := g.objectSchema(child)
			nested := map[string]interface{}{
				"type":        "object",
				"description": "Nested object for " + child.name,
				"properties":  nestedProps,
			}
			if len(nestedRequired) > 0 {
				nested["required"] = nestedRequired
				required = append(required, child.name)
			}
			properties[child.name] = nested
			return
		}

		properties[child.name] = g.leafSchema(child.leaf)
		if child.leaf.Required {
			required = append(required, child.name)
		}
	})

	return properties, required
}

// leafSchema converts one flat field into its property schema
func (g *JSONSchemaGenerator) leafSchema(field *schema.SchemaField) map[string]interface{} {
	description := field.Description
	if description == "" {
		description = "Field " + field.Path
	}

	prop := map[string]interface{}{
		"type":        jsonSchemaType(field.Type),
		"description": description,
	}
	if field.DefaultValue != nil {
		prop["default"] = field.DefaultValue
	}
	if len(field.Examples) > 0 {
		prop["examples"] = field.Examples
	}

	return prop
}

// jsonSchemaType maps a FieldType to its "type" value. Arrays nest their
// element type under items; nullable fields become a [T, "null"] type array.
func jsonSchemaType(t schema.FieldType) interface{} {
	base, ok := jsonSchemaTypes[t.Kind]
	if !ok {
		base = "string"
	}
	if t.Kind == schema.KindArray {
		// Empty arrays never revealed an element kind
		base = "string"
		t.Array = true
	}

	if t.Array {
		items := map[string]interface{}{"type": base}
		arr := map[string]interface{}{
			"type":  "array",
			"items": items,
		}
		return arr
	}

	if t.Nullable && base != "null" {
		return []interface{}{base, "null"}
	}
	return base
}
