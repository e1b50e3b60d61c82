/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: pipeline.go
Description: Schema inference pipeline for StreamSchema. Chains format detection,
parsing, schema inference and generation over one topic's message sample, with a
raw-text fallback so heterogeneous samples still produce a schema.
*/

package pipeline

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/kleascm/streamschema/pkg/config"
	"github.com/kleascm/streamschema/pkg/formats"
	"github.com/kleascm/streamschema/pkg/generators"
	"github.com/kleascm/streamschema/pkg/record"
	"github.com/kleascm/streamschema/pkg/schema"
)

// ErrNoMessages is returned when inference is requested on an empty sample
var ErrNoMessages = errors.New("no messages provided")

// ErrNothingParsed is returned when no message in the sample could be parsed,
// not even by the raw-text fallback.
var ErrNothingParsed = errors.New("no messages could be parsed")

// ErrBinaryData is returned when every parsed record is the raw-text parser's
// binary fallback shape; a schema inferred from hex blobs would be meaningless.
var ErrBinaryData = errors.New("cannot infer schema from binary data")

// sniffSampleSize bounds how many messages parser construction inspects when
// choosing delimiters and separators.
const sniffSampleSize = 10

// Metadata describes how one sample was processed
type Metadata struct {
	// Format is the detected (or forced) input format
	Format string `json:"format"`

	// Confidence is the detection confidence; 1.0 for forced formats
	Confidence float64 `json:"confidence"`

	// MessageCount is the sample size handed to the pipeline
	MessageCount int `json:"message_count"`

	// ParsedCount is how many messages survived parsing
	ParsedCount int `json:"parsed_count"`
}

// Pipeline runs the full inference chain for one topic at a time
type Pipeline struct {
	cfg      config.InferenceConfig
	detector *formats.Detector
	inferrer *schema.Inferrer
	logger   *logrus.Logger
}

// New creates a pipeline from the inference configuration. A nil logger falls
// back to the process-wide logrus logger.
func New(cfg config.InferenceConfig, logger *logrus.Logger) *Pipeline {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Pipeline{
		cfg:      cfg,
		detector: formats.NewDetector(cfg.ConfidenceThreshold, cfg.SampleSize, logger),
		inferrer: schema.NewInferrer(schema.Config{
			ConfidenceThreshold: cfg.ConfidenceThreshold,
			MaxDepth:            cfg.MaxDepth,
			ArrayHandling:       cfg.ArrayHandling,
			NullHandling:        cfg.NullHandling,
		}, logger),
		logger: logger,
	}
}

// InferSchema runs detection, parsing and inference over one message sample.
// When parsing yields nothing under the detected format the sample is re-run
// through the raw-text parser, so only a sample of entirely empty messages
// fails.
func (p *Pipeline) InferSchema(messages [][]byte, name string) (*schema.InferredSchema, *Metadata, error) {
	if len(messages) == 0 {
		return nil, nil, ErrNoMessages
	}

	if p.cfg.MaxMessages > 0 && len(messages) > p.cfg.MaxMessages {
		messages = messages[:p.cfg.MaxMessages]
	}

	format := p.cfg.ForcedFormat
	confidence := 1.0
	if p.cfg.AutoDetectFormat && format == "" {
		format, confidence = p.detector.Detect(messages)
	}

	p.logger.WithFields(logrus.Fields{
		"schema":     name,
		"format":     format,
		"confidence": confidence,
		"messages":   len(messages),
	}).Info("Format detected")

	parser, err := p.newParser(format, messages)
	if err != nil {
		return nil, nil, err
	}

	records := parser.ParseBatch(messages)
	if len(records) == 0 && format != formats.FormatRawText {
		p.logger.WithField("format", format).Warn("No messages parsed, falling back to raw text")
		format = formats.FormatRawText
		confidence = 0.1
		records = formats.NewRawTextParser().ParseBatch(messages)
	}
	if len(records) == 0 {
		return nil, nil, ErrNothingParsed
	}
	if allBinary(records) {
		return nil, nil, ErrBinaryData
	}

	p.logger.WithFields(logrus.Fields{
		"schema":   name,
		"format":   format,
		"messages": len(messages),
		"parsed":   len(records),
	}).Info("Messages parsed")

	inferred, err := p.inferrer.Infer(records, name)
	if err != nil {
		return nil, nil, fmt.Errorf("schema inference failed: %w", err)
	}

	meta := &Metadata{
		Format:       format,
		Confidence:   confidence,
		MessageCount: len(messages),
		ParsedCount:  len(records),
	}
	return inferred, meta, nil
}

// newParser builds the parser for the detected format, sniffing delimiters
// and separators from the head of the sample.
func (p *Pipeline) newParser(format string, messages [][]byte) (formats.Parser, error) {
	switch format {
	case formats.FormatCSV:
		texts := sniffTexts(messages, sniffSampleSize)
		if delimiter, ok := p.detector.DetectDelimiter(texts); ok && delimiter != ',' {
			if delimiter == '\t' {
				return formats.NewTSVParser(true), nil
			}
			return formats.NewDelimitedParser(string(delimiter), true), nil
		}
		return formats.NewCSVParser(',', true), nil
	case formats.FormatKeyValue:
		separator := formats.SniffKeyValueSeparator(sniffTexts(messages, 5))
		return formats.NewKeyValueParser(",", separator), nil
	default:
		return formats.NewParser(format)
	}
}

// allBinary reports whether every record is the binary fallback shape
func allBinary(records []record.Record) bool {
	for _, rec := range records {
		if !rec.IsBinary() {
			return false
		}
	}
	return true
}

// sniffTexts lossily decodes up to max messages for delimiter sniffing
func sniffTexts(messages [][]byte, max int) []string {
	if len(messages) < max {
		max = len(messages)
	}
	texts := make([]string, 0, max)
	for _, raw := range messages[:max] {
		texts = append(texts, formats.DecodeLossy(raw))
	}
	return texts
}

// Generate renders an inferred schema in the named target format, returning
// the schema text and its conventional file extension.
func Generate(s *schema.InferredSchema, format string) (string, string, error) {
	gen, err := generators.NewGenerator(format)
	if err != nil {
		return "", "", err
	}
	text, err := gen.Generate(s)
	if err != nil {
		return "", "", fmt.Errorf("schema generation failed: %w", err)
	}
	return text, gen.FileExtension(), nil
}

// SupportedInputFormats lists the input formats the pipeline can parse
func SupportedInputFormats() []string {
	return []string{
		formats.FormatJSON,
		formats.FormatCSV,
		formats.FormatTSV,
		formats.FormatKeyValue,
		formats.FormatRawText,
	}
}

// SupportedSchemaFormats lists the target schema formats
func SupportedSchemaFormats() []string {
	return generators.SupportedFormats()
}
