/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: interfaces.go
Description: Shared interfaces for the StreamSchema pipeline. Defines the message
source and schema registry contracts used across packages to break import cycles
and keep transports pluggable.
*/

package interfaces

import (
	"context"
)

// MessageSource supplies raw message samples for one topic. Implementations
// wrap whatever transport the samples come from (files, captures, brokers);
// the pipeline only ever sees opaque byte slices.
type MessageSource interface {
	// Topics lists the topic names this source can sample
	Topics(ctx context.Context) ([]string, error)

	// Sample returns up to max raw messages from the named topic. Fewer
	// messages than requested is not an error; an empty topic returns an
	// empty slice.
	Sample(ctx context.Context, topic string, max int) ([][]byte, error)
}

// SchemaRegistry publishes generated schema text under a subject name
type SchemaRegistry interface {
	// Register stores schema text under the subject and returns the
	// registry-assigned version identifier.
	Register(ctx context.Context, subject string, schemaText string, schemaFormat string) (int, error)

	// Latest fetches the most recent schema text registered under the
	// subject.
	Latest(ctx context.Context, subject string) (string, error)
}

// SubjectFor derives the registry subject for a topic's value schema,
// following the TopicNameStrategy convention.
func SubjectFor(topic string) string {
	return topic + "-value"
}
