/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: avro.go
Description: Avro schema generator for the StreamSchema pipeline. Re-nests the flat
inferred field list into Avro record types, wraps optional fields in ["null", T]
unions with null defaults, and emits canonical indented JSON.
*/

package generators

import (
	json "github.com/goccy/go-json"

	"github.com/kleascm/streamschema/pkg/schema"
)

// avroMaxNameLength is Avro's practical identifier length limit
const avroMaxNameLength = 64

// avroTypes maps internal kinds to Avro primitive types. Kinds without a
// valid Avro primitive (object, array, union) fall back to string; the
// nested-record path handles real structure.
var avroTypes = map[string]string{
	schema.KindString:  "string",
	schema.KindInt:     "int",
	schema.KindFloat:   "double",
	schema.KindBoolean: "boolean",
	schema.KindNull:    "null",
}

// AvroGenerator emits .avsc record schemas
type AvroGenerator struct{}

// NewAvroGenerator creates an Avro generator
func NewAvroGenerator() *AvroGenerator {
	return &AvroGenerator{}
}

// Generate renders the schema as an Avro record definition
func (g *AvroGenerator) Generate(s *schema.InferredSchema) (string, error) {
	namespace := s.Namespace
	if namespace == "" {
		namespace = schema.DefaultNamespace
	}
	doc := s.Description
	if doc == "" {
		doc = "Auto-generated Avro schema for " + s.Name
	}

	root := map[string]interface{}{
		"type":      "record",
		"name":      sanitizeAvroName(s.Name),
		"namespace": namespace,
		"doc":       doc,
		"fields":    g.recordFields(groupFields(s.Fields)),
	}

	out, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// FileExtension returns the Avro schema extension
func (g *AvroGenerator) FileExtension() string {
	return "avsc"
}

// recordFields converts one tree level into an Avro field list. Nodes with
// children become nested record types named <segment>_record.
func (g *AvroGenerator) recordFields(node *fieldNode) []interface{} {
	fields := make([]interface{}, 0, len(node.order))
	node.walk(func(child *fieldNode) {
		if child.hasChildren() {
			fields = append(fields, map[string]interface{}{
				"name": sanitizeAvroName(child.name),
				"type": map[string]interface{}{
					"type":   "record",
					"name":   sanitizeAvroName(child.name + "_record"),
					"fields": g.recordFields(child),
				},
				"doc": "Nested record for " + child.name,
			})
			return
		}
		fields = append(fields, g.leafField(child.leaf))
	})
	return fields
}

// leafField converts one flat field into its Avro declaration
func (g *AvroGenerator) leafField(field *schema.SchemaField) map[string]interface{} {
	doc := field.Description
	if doc == "" {
		doc = "Field " + field.Path
	}

	avroField := map[string]interface{}{
		"name": sanitizeAvroName(field.Path),
		"type": avroType(field.Type),
		"doc":  doc,
	}

	if field.DefaultValue != nil {
		avroField["default"] = field.DefaultValue
	} else if !field.Required {
		// Optional fields become a ["null", T] union with a null default
		if t, ok := avroField["type"].(string); ok && t != "null" {
			avroField["type"] = []interface{}{"null", t}
			avroField["default"] = nil
		}
	}

	return avroField
}

// avroType maps a FieldType to its Avro representation. Arrays carry their
// element type in items; elements without a valid Avro primitive degrade to
// string.
func avroType(t schema.FieldType) interface{} {
	base, ok := avroTypes[t.Kind]
	if !ok {
		base = "string"
	}
	if t.Array {
		return map[string]interface{}{
			"type":  "array",
			"items": base,
		}
	}
	return base
}

// sanitizeAvroName produces a valid Avro name: [A-Za-z_][A-Za-z0-9_]*,
// truncated to Avro's practical 64 character limit.
func sanitizeAvroName(name string) string {
	sanitized := sanitizeName(name, "record_")
	if len(sanitized) > avroMaxNameLength {
		sanitized = sanitized[:avroMaxNameLength]
	}
	return sanitized
}
