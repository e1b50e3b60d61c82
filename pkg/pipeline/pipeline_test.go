/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: pipeline_test.go
Description: Unit tests for the inference pipeline. Covers the full chain from raw
messages to generated schema text, the raw-text fallback, deterministic output,
filesystem sources, and parallel topic processing.
*/

package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kleascm/streamschema/pkg/config"
	"github.com/kleascm/streamschema/pkg/formats"
	"github.com/kleascm/streamschema/pkg/pipeline"
	"github.com/kleascm/streamschema/pkg/schema"
)

func newPipeline() *pipeline.Pipeline {
	return pipeline.New(config.Default().Inference, nil)
}

func TestInferSchemaFromJSON(t *testing.T) {
	messages := [][]byte{
		[]byte(`{"user_id": 42, "name": "Alice", "active": true}`),
		[]byte(`{"user_id": 43, "name": "Bob", "active": false}`),
	}

	inferred, meta, err := newPipeline().InferSchema(messages, "users")
	require.NoError(t, err)
	require.NotNil(t, meta)

	assert.Equal(t, formats.FormatJSON, meta.Format)
	assert.Equal(t, 2, meta.MessageCount)
	assert.Equal(t, 2, meta.ParsedCount)

	require.Len(t, inferred.Fields, 3)
	assert.Equal(t, "active", inferred.Fields[0].Path)
	assert.Equal(t, schema.KindBoolean, inferred.Fields[0].Type.Kind)
	assert.Equal(t, "name", inferred.Fields[1].Path)
	assert.Equal(t, "user_id", inferred.Fields[2].Path)
	assert.Equal(t, schema.KindInt, inferred.Fields[2].Type.Kind)
}

func TestInferSchemaFromCSV(t *testing.T) {
	messages := [][]byte{
		[]byte("name,age,city"),
		[]byte("John,30,New York"),
		[]byte("Jane,25,Boston"),
	}

	inferred, meta, err := newPipeline().InferSchema(messages, "people")
	require.NoError(t, err)
	assert.Equal(t, formats.FormatCSV, meta.Format)
	assert.Equal(t, 2, meta.ParsedCount)

	require.Len(t, inferred.Fields, 3)
	assert.Equal(t, "age", inferred.Fields[0].Path)
	assert.Equal(t, schema.KindString, inferred.Fields[0].Type.Kind)
}

func TestInferSchemaEmptySample(t *testing.T) {
	_, _, err := newPipeline().InferSchema(nil, "empty")
	assert.ErrorIs(t, err, pipeline.ErrNoMessages)
}

func TestInferSchemaAllBinaryAborts(t *testing.T) {
	messages := [][]byte{
		{0xde, 0xad, 0xbe, 0xef},
		{0xca, 0xfe, 0xba, 0xbe},
	}

	_, _, err := newPipeline().InferSchema(messages, "binary")
	assert.ErrorIs(t, err, pipeline.ErrBinaryData)
}

func TestInferSchemaFallsBackToRawText(t *testing.T) {
	// Looks like JSON but never parses as it, so the pipeline retries the
	// whole sample through the raw-text parser.
	messages := [][]byte{
		[]byte(`{invalid json}`),
		[]byte(`{more broken input}`),
	}

	inferred, meta, err := newPipeline().InferSchema(messages, "broken")
	require.NoError(t, err)
	assert.Equal(t, formats.FormatRawText, meta.Format)
	assert.Equal(t, 0.1, meta.Confidence)

	paths := make([]string, 0, len(inferred.Fields))
	for _, f := range inferred.Fields {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{"is_binary", "message_length", "raw_content"}, paths)
}

func TestInferSchemaForcedFormat(t *testing.T) {
	cfg := config.Default().Inference
	cfg.AutoDetectFormat = false
	cfg.ForcedFormat = formats.FormatRawText
	p := pipeline.New(cfg, nil)

	_, meta, err := p.InferSchema([][]byte{[]byte(`{"a": 1}`)}, "forced")
	require.NoError(t, err)
	assert.Equal(t, formats.FormatRawText, meta.Format)
	assert.Equal(t, 1.0, meta.Confidence)
}

func TestInferSchemaMaxMessagesCap(t *testing.T) {
	cfg := config.Default().Inference
	cfg.MaxMessages = 2
	p := pipeline.New(cfg, nil)

	messages := [][]byte{
		[]byte(`{"a": 1}`),
		[]byte(`{"a": 2}`),
		[]byte(`{"a": 3}`),
	}
	_, meta, err := p.InferSchema(messages, "capped")
	require.NoError(t, err)
	assert.Equal(t, 2, meta.MessageCount)
}

func TestPipelineDeterministic(t *testing.T) {
	messages := [][]byte{
		[]byte(`{"a": 1, "b": "x", "c": [1, 2]}`),
		[]byte(`{"a": null, "b": "y", "d": {"e": 2.5}}`),
	}

	var outputs []string
	for i := 0; i < 2; i++ {
		inferred, _, err := newPipeline().InferSchema(messages, "stable")
		require.NoError(t, err)
		text, _, err := pipeline.Generate(inferred, "avro")
		require.NoError(t, err)
		outputs = append(outputs, text)
	}
	assert.Equal(t, outputs[0], outputs[1])
}

func TestGenerateAllFormats(t *testing.T) {
	inferred, _, err := newPipeline().InferSchema([][]byte{[]byte(`{"a": 1}`)}, "g")
	require.NoError(t, err)

	extensions := map[string]string{
		"avro":        "avsc",
		"protobuf":    "proto",
		"json-schema": "json",
	}
	for format, wantExt := range extensions {
		text, ext, err := pipeline.Generate(inferred, format)
		require.NoError(t, err, format)
		assert.NotEmpty(t, text)
		assert.Equal(t, wantExt, ext)
	}

	_, _, err = pipeline.Generate(inferred, "thrift")
	assert.Error(t, err)
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "events.jsonl")
	content := "{\"a\": 1}\n\n{\"a\": 2}\n{\"a\": 3}\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	source := pipeline.NewFileSource(path)
	topics, err := source.Topics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"events"}, topics)

	messages, err := source.Sample(context.Background(), "events", 0)
	require.NoError(t, err)
	assert.Len(t, messages, 3)

	capped, err := source.Sample(context.Background(), "events", 2)
	require.NoError(t, err)
	assert.Len(t, capped, 2)
}

func TestDirSource(t *testing.T) {
	root := t.TempDir()
	for _, topic := range []string{"orders", "users"} {
		dir := filepath.Join(root, topic)
		require.NoError(t, os.MkdirAll(dir, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "0001.json"), []byte(`{"a": 1}`), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "0002.json"), []byte(`{"a": 2}`), 0644))
	}

	source := pipeline.NewDirSource(root)
	topics, err := source.Topics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "users"}, topics)

	messages, err := source.Sample(context.Background(), "orders", 0)
	require.NoError(t, err)
	assert.Len(t, messages, 2)
	assert.Equal(t, `{"a": 1}`, string(messages[0]))
}

func TestProcessTopics(t *testing.T) {
	root := t.TempDir()
	samples := map[string]string{
		"orders": `{"order_id": 7, "total": 19.99}`,
		"users":  `{"user_id": 1, "name": "Alice"}`,
	}
	for topic, msg := range samples {
		dir := filepath.Join(root, topic)
		require.NoError(t, os.MkdirAll(dir, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "msg.json"), []byte(msg), 0644))
	}

	cfg := config.Default()
	p := pipeline.New(cfg.Inference, nil)
	results, err := p.ProcessTopics(context.Background(), pipeline.NewDirSource(root), nil, nil, "avro", cfg.Performance)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Results come back sorted by topic regardless of completion order
	assert.Equal(t, "orders", results[0].Topic)
	assert.Equal(t, "users", results[1].Topic)

	for _, result := range results {
		require.NoError(t, result.Err, result.Topic)
		assert.NotEmpty(t, result.SchemaText)
		assert.Equal(t, "avsc", result.Extension)
		assert.Equal(t, 1, result.MessageCount)
		assert.NotEqual(t, results[0].ID, results[1].ID)
	}
}

func TestProcessTopicsExplicitList(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "only")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "msg.json"), []byte(`{"a": 1}`), 0644))

	cfg := config.Default()
	p := pipeline.New(cfg.Inference, nil)
	results, err := p.ProcessTopics(context.Background(), pipeline.NewDirSource(root), nil, []string{"only"}, "protobuf", cfg.Performance)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "only", results[0].Topic)
	assert.Equal(t, "proto", results[0].Extension)
}
