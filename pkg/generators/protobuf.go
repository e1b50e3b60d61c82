/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: protobuf.go
Description: Protocol Buffers schema generator for the StreamSchema pipeline. Re-nests
the flat inferred field list into proto3 message blocks with sequential field numbers
assigned depth-first across the whole generation run.
*/

package generators

import (
	"fmt"
	"strings"

	"github.com/kleascm/streamschema/pkg/schema"
)

// protobufTypes maps internal kinds to proto3 scalar types. Proto has no
// null representation, so null and union degrade to string; objects are
// handled by the nested-message path.
var protobufTypes = map[string]string{
	schema.KindString:  "string",
	schema.KindInt:     "int32",
	schema.KindFloat:   "double",
	schema.KindBoolean: "bool",
	schema.KindNull:    "string",
	schema.KindObject:  "string",
	schema.KindUnion:   "string",
}

// ProtobufGenerator emits .proto message definitions
type ProtobufGenerator struct{}

// NewProtobufGenerator creates a Protobuf generator
func NewProtobufGenerator() *ProtobufGenerator {
	return &ProtobufGenerator{}
}

// Generate renders the schema as proto3 text. Field numbers start at 1 and
// stay unique and contiguous across the run: root leaves first, then each
// nested message's fields in depth-first order.
func (g *ProtobufGenerator) Generate(s *schema.InferredSchema) (string, error) {
	lines := []string{`syntax = "proto3";`, ""}

	if s.Namespace != "" {
		pkg := strings.ToLower(strings.ReplaceAll(s.Namespace, ".", "_"))
		lines = append(lines, fmt.Sprintf("package %s;", pkg), "")
	}

	lines = append(lines, fmt.Sprintf("message %s {", sanitizeProtobufName(s.Name)))
	if s.Description != "" {
		lines = append(lines, "  // "+s.Description)
	}

	fieldNumber := 1
	lines, _ = g.appendFields(lines, groupFields(s.Fields), fieldNumber, "  ")
	lines = append(lines, "}")

	return strings.Join(lines, "\n"), nil
}

// FileExtension returns the Protobuf schema extension
func (g *ProtobufGenerator) FileExtension() string {
	return "proto"
}

// appendFields emits one tree level: leaf fields first, then a field plus a
// nested message block for every child that defines structure. Returns the
// next free field number.
func (g *ProtobufGenerator) appendFields(lines []string, node *fieldNode, fieldNumber int, indent string) ([]string, int) {
	node.walk(func(child *fieldNode) {
		if child.hasChildren() {
			return
		}
		lines = append(lines, indent+g.leafField(child.leaf, child.name, fieldNumber))
		fieldNumber++
	})

	node.walk(func(child *fieldNode) {
		if !child.hasChildren() {
			return
		}
		messageName := sanitizeProtobufName(child.name + "_message")
		fieldName := sanitizeProtobufFieldName(child.name)
		lines = append(lines, fmt.Sprintf("%s%s %s = %d; // Nested message for %s",
			indent, messageName, fieldName, fieldNumber, child.name))
		fieldNumber++

		lines = append(lines, fmt.Sprintf("%smessage %s {", indent, messageName))
		lines, fieldNumber = g.appendFields(lines, child, fieldNumber, indent+"  ")
		lines = append(lines, indent+"}")
	})

	return lines, fieldNumber
}

// leafField renders one "type name = N;" declaration
func (g *ProtobufGenerator) leafField(field *schema.SchemaField, name string, fieldNumber int) string {
	comment := ""
	if field.Description != "" {
		comment = " // " + field.Description
	}
	return fmt.Sprintf("%s %s = %d;%s",
		protobufType(field.Type), sanitizeProtobufFieldName(name), fieldNumber, comment)
}

// protobufType maps a FieldType to its proto3 declaration. Array-flagged
// fields become repeated; an indefinite element kind degrades to string.
func protobufType(t schema.FieldType) string {
	base, ok := protobufTypes[t.Kind]
	if !ok {
		base = "string"
	}
	if t.Kind == schema.KindArray {
		// Empty arrays never revealed an element kind
		base = "string"
		t.Array = true
	}
	if t.Array {
		return "repeated " + base
	}
	return base
}

// sanitizeProtobufName produces a valid message identifier
func sanitizeProtobufName(name string) string {
	return sanitizeName(name, "message_")
}

// sanitizeProtobufFieldName lowercases a field name and strips characters
// proto identifiers cannot carry.
func sanitizeProtobufFieldName(name string) string {
	return sanitizeName(strings.ReplaceAll(strings.ToLower(name), " ", "_"), "field_")
}
