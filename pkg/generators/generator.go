/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: generator.go
Description: Schema generator contract and factory for the StreamSchema pipeline.
Maps target format names to their generator implementations and holds the shared
identifier sanitization used by every output dialect.
*/

package generators

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/kleascm/streamschema/pkg/schema"
)

// ErrUnsupportedFormat is returned when a generator is requested for an
// unknown schema format name.
var ErrUnsupportedFormat = errors.New("unsupported schema format")

// Target schema format names
const (
	FormatAvro       = "avro"
	FormatProtobuf   = "protobuf"
	FormatJSONSchema = "json-schema"
)

// Generator renders an inferred schema into one target dialect
type Generator interface {
	// Generate serializes the schema as text in the target format
	Generate(s *schema.InferredSchema) (string, error)

	// FileExtension returns the conventional extension, without dot
	FileExtension() string
}

// NewGenerator creates the generator for the named schema format. The format
// set is closed; unknown names are a surfaced error, never substituted.
func NewGenerator(format string) (Generator, error) {
	switch format {
	case FormatAvro:
		return NewAvroGenerator(), nil
	case FormatProtobuf:
		return NewProtobufGenerator(), nil
	case FormatJSONSchema:
		return NewJSONSchemaGenerator(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// SupportedFormats lists the schema formats the factory can build
func SupportedFormats() []string {
	return []string{FormatAvro, FormatProtobuf, FormatJSONSchema}
}

var invalidIdentChars = regexp.MustCompile(`[^A-Za-z0-9_]`)
var startsWithLetter = regexp.MustCompile(`^[A-Za-z_]`)

// sanitizeName makes a name a valid identifier for the target dialects:
// invalid characters become underscores, names not starting with a letter or
// underscore get the given prefix, and an empty result falls back to the
// prefix trimmed of its trailing underscore.
func sanitizeName(name, prefix string) string {
	sanitized := invalidIdentChars.ReplaceAllString(name, "_")
	if sanitized != "" && !startsWithLetter.MatchString(sanitized) {
		sanitized = prefix + sanitized
	}
	if sanitized == "" {
		sanitized = trimTrailingUnderscore(prefix)
	}
	return sanitized
}

func trimTrailingUnderscore(s string) string {
	if len(s) > 0 && s[len(s)-1] == '_' {
		return s[:len(s)-1]
	}
	return s
}
