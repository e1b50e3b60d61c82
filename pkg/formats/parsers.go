/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: parsers.go
Description: Data format parsers for the StreamSchema inference pipeline. Each parser
turns one raw byte message into a semi-structured record or signals that the message
is unparseable; batches silently skip failures so one bad message never aborts a sample.
*/

package formats

import (
	"bytes"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/kleascm/streamschema/pkg/record"
)

// ErrUnsupportedFormat is returned when a parser is requested for an unknown
// format name.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Parser converts raw messages into records
type Parser interface {
	// Parse converts a single raw message. ok is false when the message
	// cannot be represented in this format.
	Parse(raw []byte) (record.Record, bool)

	// ParseBatch applies Parse per message and returns whatever subset
	// parsed, never failing for partial input.
	ParseBatch(raws [][]byte) []record.Record
}

// NewParser creates a parser with default settings for the named format
func NewParser(format string) (Parser, error) {
	switch format {
	case FormatJSON:
		return NewJSONParser(), nil
	case FormatCSV:
		return NewCSVParser(',', true), nil
	case FormatTSV:
		return NewTSVParser(true), nil
	case FormatKeyValue:
		return NewKeyValueParser(",", "="), nil
	case FormatRawText:
		return NewRawTextParser(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// parseBatch is the shared batch loop: failures are logged at debug level and
// dropped from the result.
func parseBatch(parse func([]byte) (record.Record, bool), raws [][]byte, logger *logrus.Logger) []record.Record {
	parsed := make([]record.Record, 0, len(raws))
	for _, raw := range raws {
		rec, ok := parse(raw)
		if !ok {
			logger.WithField("bytes", len(raw)).Debug("Failed to parse message")
			continue
		}
		parsed = append(parsed, rec)
	}
	return parsed
}

// decodeText decodes a message as UTF-8 and trims surrounding whitespace.
// ok is false for undecodable bytes or empty text.
func decodeText(raw []byte) (string, bool) {
	if !utf8.Valid(raw) {
		return "", false
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return "", false
	}
	return text, true
}

// JSONParser parses JSON messages
type JSONParser struct {
	logger *logrus.Logger
}

// NewJSONParser creates a JSON parser
func NewJSONParser() *JSONParser {
	return &JSONParser{logger: logrus.StandardLogger()}
}

// Parse decodes a JSON message. A top-level array of objects is shallow-merged
// into one record, an array of non-objects is wrapped under "array", and a
// bare scalar is wrapped under "value".
func (p *JSONParser) Parse(raw []byte) (record.Record, bool) {
	text, ok := decodeText(raw)
	if !ok {
		return nil, false
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var data interface{}
	if err := dec.Decode(&data); err != nil {
		p.logger.WithError(err).Debug("JSON parsing failed")
		return nil, false
	}
	// One value per message: anything after the first document is a reject
	var trailing interface{}
	if err := dec.Decode(&trailing); err != io.EOF {
		p.logger.Debug("JSON message has trailing data")
		return nil, false
	}

	value := record.FromInterface(data)
	switch value.Kind() {
	case record.KindObject:
		return record.Record(value.Fields()), true
	case record.KindArray:
		elems := value.Elems()
		if len(elems) > 0 && elems[0].Kind() == record.KindObject {
			// Merge all objects in the list; later keys overwrite earlier
			merged := record.Record{}
			for _, elem := range elems {
				if elem.Kind() != record.KindObject {
					continue
				}
				for k, v := range elem.Fields() {
					merged[k] = v
				}
			}
			return merged, true
		}
		return record.Record{"array": value}, true
	default:
		return record.Record{"value": value}, true
	}
}

// ParseBatch parses a batch of JSON messages
func (p *JSONParser) ParseBatch(raws [][]byte) []record.Record {
	return parseBatch(p.Parse, raws, p.logger)
}

// CSVParser parses delimiter-separated messages. The parser is stateful: with
// header mode enabled the first message's first line becomes the header row,
// and later messages are zipped against it. One instance per batch; never
// share an instance across concurrently-running batches.
type CSVParser struct {
	delimiter rune
	hasHeader bool
	headers   []string
	logger    *logrus.Logger
}

// NewCSVParser creates a CSV parser with the given delimiter
func NewCSVParser(delimiter rune, hasHeader bool) *CSVParser {
	return &CSVParser{
		delimiter: delimiter,
		hasHeader: hasHeader,
		logger:    logrus.StandardLogger(),
	}
}

// NewTSVParser creates a tab-separated parser
func NewTSVParser(hasHeader bool) *CSVParser {
	return NewCSVParser('\t', hasHeader)
}

// Parse converts one CSV message into a record keyed by the header row.
// The first call in header mode consumes the header; if that message also
// carries a data line it is returned immediately, otherwise nothing is
// returned for that call. Short rows are padded with empty strings and long
// rows truncated to the header width.
func (p *CSVParser) Parse(raw []byte) (record.Record, bool) {
	text, ok := decodeText(raw)
	if !ok {
		return nil, false
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = p.delimiter
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil || len(rows) == 0 {
		p.logger.WithError(err).Debug("CSV parsing failed")
		return nil, false
	}

	var dataRow []string
	if p.hasHeader && p.headers == nil {
		p.headers = rows[0]
		if len(rows) < 2 {
			return nil, false
		}
		dataRow = rows[1]
	} else {
		dataRow = rows[0]
		if p.headers == nil {
			// Synthetic headers from the first observed row's width
			p.headers = make([]string, len(dataRow))
			for i := range dataRow {
				p.headers[i] = fmt.Sprintf("column_%d", i)
			}
		}
	}

	return zipRow(p.headers, dataRow), true
}

// ParseBatch parses a batch of CSV messages
func (p *CSVParser) ParseBatch(raws [][]byte) []record.Record {
	return parseBatch(p.Parse, raws, p.logger)
}

// zipRow pairs headers with row values, padding short rows and truncating
// long ones.
func zipRow(headers, row []string) record.Record {
	rec := make(record.Record, len(headers))
	for i, header := range headers {
		if i < len(row) {
			rec[header] = record.String(row[i])
		} else {
			rec[header] = record.String("")
		}
	}
	return rec
}

// KeyValueParser parses pair-separated key/value messages like
// "host=db1,port=5432".
type KeyValueParser struct {
	pairSeparator     string
	keyValueSeparator string
	logger            *logrus.Logger
}

// NewKeyValueParser creates a key-value parser. The pair separator defaults
// to "," and the key/value separator to "=" when empty.
func NewKeyValueParser(pairSeparator, keyValueSeparator string) *KeyValueParser {
	if pairSeparator == "" {
		pairSeparator = ","
	}
	if keyValueSeparator == "" {
		keyValueSeparator = "="
	}
	return &KeyValueParser{
		pairSeparator:     pairSeparator,
		keyValueSeparator: keyValueSeparator,
		logger:            logrus.StandardLogger(),
	}
}

// Parse splits the message into pairs and converts each value to its most
// specific scalar type. Messages without the key/value separator, or with
// more than 10% control characters, are rejected.
func (p *KeyValueParser) Parse(raw []byte) (record.Record, bool) {
	text, ok := decodeText(raw)
	if !ok {
		return nil, false
	}
	if !p.looksLikeKeyValue(text) {
		return nil, false
	}

	rec := record.Record{}
	for _, pair := range strings.Split(text, p.pairSeparator) {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		idx := strings.Index(pair, p.keyValueSeparator)
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(pair[:idx])
		value := strings.TrimSpace(pair[idx+len(p.keyValueSeparator):])
		if key == "" || value == "" || len(key) > 100 || len(value) > 1000 {
			continue
		}
		rec[key] = convertScalar(stripQuotes(value))
	}

	if len(rec) == 0 {
		return nil, false
	}
	return rec, true
}

// ParseBatch parses a batch of key-value messages
func (p *KeyValueParser) ParseBatch(raws [][]byte) []record.Record {
	return parseBatch(p.Parse, raws, p.logger)
}

// looksLikeKeyValue rejects text without the separator or with a control
// character share above 10% (tab, newline and CR excluded).
func (p *KeyValueParser) looksLikeKeyValue(text string) bool {
	if !strings.Contains(text, p.keyValueSeparator) {
		return false
	}
	control := 0
	for _, r := range text {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			control++
		}
	}
	return float64(control) <= float64(len(text))*0.1
}

// stripQuotes removes one matching pair of surrounding single or double
// quotes.
func stripQuotes(value string) string {
	if len(value) >= 2 {
		if (value[0] == '"' && value[len(value)-1] == '"') ||
			(value[0] == '\'' && value[len(value)-1] == '\'') {
			return value[1 : len(value)-1]
		}
	}
	return value
}

// convertScalar converts a textual value to bool, int, float or string, in
// that order. An empty value (possible after quote stripping) becomes null.
func convertScalar(value string) record.Value {
	if value == "" {
		return record.Null()
	}
	switch strings.ToLower(value) {
	case "true":
		return record.Bool(true)
	case "false":
		return record.Bool(false)
	}
	if i, err := strconv.ParseInt(value, 10, 64); err == nil {
		return record.Int(i)
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return record.Float(f)
	}
	return record.String(value)
}

// RawTextParser is the total fallback: every non-empty message yields a
// record. Decodable text is carried verbatim; undecodable bytes are hex
// encoded and flagged is_binary.
type RawTextParser struct {
	logger *logrus.Logger
}

// NewRawTextParser creates a raw text parser
func NewRawTextParser() *RawTextParser {
	return &RawTextParser{logger: logrus.StandardLogger()}
}

// Parse wraps the message as a raw content record
func (p *RawTextParser) Parse(raw []byte) (record.Record, bool) {
	if utf8.Valid(raw) {
		text := strings.TrimSpace(string(raw))
		if text == "" {
			return nil, false
		}
		return record.Record{
			"raw_content":    record.String(text),
			"message_length": record.Int(int64(len(text))),
			"is_binary":      record.Bool(false),
		}, true
	}
	return record.Record{
		"raw_content":    record.String(hex.EncodeToString(raw)),
		"message_length": record.Int(int64(len(raw))),
		"is_binary":      record.Bool(true),
	}, true
}

// ParseBatch parses a batch of raw messages
func (p *RawTextParser) ParseBatch(raws [][]byte) []record.Record {
	return parseBatch(p.Parse, raws, p.logger)
}

// DelimitedParser handles custom single-byte delimiters outside the standard
// CSV/TSV set. It keeps the same stateful header contract as CSVParser but
// splits without quote handling and names synthetic columns field_N.
type DelimitedParser struct {
	delimiter string
	hasHeader bool
	headers   []string
	logger    *logrus.Logger
}

// NewDelimitedParser creates a parser for a custom delimiter
func NewDelimitedParser(delimiter string, hasHeader bool) *DelimitedParser {
	return &DelimitedParser{
		delimiter: delimiter,
		hasHeader: hasHeader,
		logger:    logrus.StandardLogger(),
	}
}

// Parse splits one message on the configured delimiter
func (p *DelimitedParser) Parse(raw []byte) (record.Record, bool) {
	text, ok := decodeText(raw)
	if !ok {
		return nil, false
	}

	parts := strings.Split(text, p.delimiter)
	if p.hasHeader && p.headers == nil {
		p.headers = parts
		return nil, false // header row carries no data
	}
	if p.headers == nil {
		p.headers = make([]string, len(parts))
		for i := range parts {
			p.headers[i] = fmt.Sprintf("field_%d", i)
		}
	}
	return zipRow(p.headers, parts), true
}

// ParseBatch parses a batch of delimited messages
func (p *DelimitedParser) ParseBatch(raws [][]byte) []record.Record {
	return parseBatch(p.Parse, raws, p.logger)
}

// SniffKeyValueSeparator picks "=" when any of the first sample texts contain
// it, otherwise ":". Mirrors how parser construction chooses separators from
// a message sample.
func SniffKeyValueSeparator(texts []string) string {
	for _, text := range texts {
		if strings.Contains(text, "=") {
			return "="
		}
	}
	return ":"
}

// DecodeLossy converts raw bytes to text for sniffing, dropping invalid
// UTF-8 sequences instead of failing.
func DecodeLossy(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	var buf bytes.Buffer
	for len(raw) > 0 {
		r, size := utf8.DecodeRune(raw)
		if r != utf8.RuneError || size > 1 {
			buf.WriteRune(r)
		}
		raw = raw[size:]
	}
	return buf.String()
}
