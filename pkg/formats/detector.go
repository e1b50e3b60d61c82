/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: detector.go
Description: Data format detection for the StreamSchema inference pipeline. Classifies
a sample of raw byte messages into json, csv, tsv, key-value or raw-text with a
confidence score, and detects delimiters and encodings for structured data.
*/

package formats

import (
	"bytes"
	"regexp"
	"strings"
	"unicode/utf8"

	json "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/unicode"
)

// Format names recognized by the detector and the parser factory
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatTSV      = "tsv"
	FormatKeyValue = "key-value"
	FormatRawText  = "raw-text"
)

// rawTextConfidence is the confidence reported whenever detection falls back
// to the raw-text format.
const rawTextConfidence = 0.1

// absoluteFloor is the score below which a detection result is downgraded to
// raw-text instead of being kept as a low-confidence warning.
const absoluteFloor = 0.3

// detectionOrder fixes the scoring iteration so that ties between formats
// always resolve the same way.
var detectionOrder = []string{FormatJSON, FormatCSV, FormatTSV, FormatKeyValue}

// formatPatterns holds the structural regexes per format. All patterns are
// whole-message anchored; (?s) lets them span embedded newlines.
var formatPatterns = map[string][]*regexp.Regexp{
	FormatJSON: {
		regexp.MustCompile(`(?s)^\s*\{.*\}\s*$`),
		regexp.MustCompile(`(?s)^\s*\[.*\]\s*$`),
	},
	FormatCSV: {
		regexp.MustCompile(`(?s)^[^,]+(,[^,]+)+$`),
	},
	FormatTSV: {
		regexp.MustCompile(`(?s)^[^\t]+(\t[^\t]+)+$`),
	},
	FormatKeyValue: {
		regexp.MustCompile(`(?s)^[^=]+=[^=]+(,[^=]+=[^=]+)*$`),
		regexp.MustCompile(`(?s)^[^:]+:[^:]+(,[^:]+:[^:]+)*$`),
	},
}

// Detector classifies raw message samples into a data format
type Detector struct {
	confidenceThreshold float64
	sampleSize          int
	logger              *logrus.Logger
}

// NewDetector creates a format detector. A nil logger falls back to the
// process-wide logrus logger.
func NewDetector(confidenceThreshold float64, sampleSize int, logger *logrus.Logger) *Detector {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Detector{
		confidenceThreshold: confidenceThreshold,
		sampleSize:          sampleSize,
		logger:              logger,
	}
}

// Detect classifies a sample of raw byte messages and returns the best format
// name with its confidence score. Detection never fails outward: binary or
// unrecognizable input degrades to raw-text, which always parses.
func (d *Detector) Detect(messages [][]byte) (string, float64) {
	sample := messages
	if len(sample) > d.sampleSize {
		sample = sample[:d.sampleSize]
	}

	texts := decodeSample(sample)
	if len(texts) == 0 {
		d.logger.Warn("No valid text messages found - treating as binary/raw-text format")
		return FormatRawText, rawTextConfidence
	}

	bestFormat := FormatRawText
	bestScore := -1.0
	for _, name := range detectionOrder {
		score := d.formatScore(name, texts)
		if score > bestScore {
			bestFormat = name
			bestScore = score
		}
	}

	d.logger.WithFields(logrus.Fields{
		"format":     bestFormat,
		"confidence": bestScore,
	}).Info("Format detected")

	if bestScore < d.confidenceThreshold {
		d.logger.WithFields(logrus.Fields{
			"confidence": bestScore,
			"threshold":  d.confidenceThreshold,
		}).Warn("Low confidence format detection")
		if bestScore < absoluteFloor {
			d.logger.Warn("Very low confidence - treating as raw-text format")
			return FormatRawText, rawTextConfidence
		}
	}

	return bestFormat, bestScore
}

// decodeSample decodes messages as UTF-8, discarding messages that fail to
// decode or that are empty/whitespace-only after trimming.
func decodeSample(messages [][]byte) []string {
	texts := make([]string, 0, len(messages))
	for _, msg := range messages {
		if !utf8.Valid(msg) {
			continue
		}
		text := strings.TrimSpace(string(msg))
		if text == "" {
			continue
		}
		texts = append(texts, text)
	}
	return texts
}

// formatScore combines the structural pattern match rate with the deeper
// per-format validation: finalScore = min(1, 0.7*pattern + 0.3*validation).
func (d *Detector) formatScore(format string, texts []string) float64 {
	matching := 0
	for _, text := range texts {
		for _, pattern := range formatPatterns[format] {
			if pattern.MatchString(text) {
				matching++
				break
			}
		}
	}
	patternScore := float64(matching) / float64(len(texts))
	validationScore := d.validate(format, texts)

	final := patternScore*0.7 + validationScore*0.3
	if final > 1.0 {
		final = 1.0
	}
	return final
}

// validate runs the deeper structural check for a format. Formats without a
// dedicated check score a neutral 0.5.
func (d *Detector) validate(format string, texts []string) float64 {
	switch format {
	case FormatJSON:
		return validateJSON(texts)
	case FormatCSV:
		return validateCSV(texts)
	case FormatKeyValue:
		return validateKeyValue(texts)
	default:
		return 0.5
	}
}

// validateJSON is the full-parse success rate across the sample
func validateJSON(texts []string) float64 {
	valid := 0
	for _, text := range texts {
		var v interface{}
		if err := json.Unmarshal([]byte(text), &v); err == nil {
			valid++
		}
	}
	return float64(valid) / float64(len(texts))
}

// validateCSV measures how consistent the comma count is across messages:
// the share of messages carrying the most common column count.
func validateCSV(texts []string) float64 {
	counts := make(map[int]int)
	for _, text := range texts {
		counts[strings.Count(text, ",")+1]++
	}

	best := 0
	bestColumns := 0
	for columns, n := range counts {
		if n > best || (n == best && columns < bestColumns) {
			best = n
			bestColumns = columns
		}
	}
	return float64(best) / float64(len(texts))
}

// validateKeyValue is the fraction of messages whose pair split is fully
// well-formed for either the = or : separator.
func validateKeyValue(texts []string) float64 {
	valid := 0
	for _, text := range texts {
		if strings.Contains(text, "=") {
			if allPairsWellFormed(text, "=") {
				valid++
			}
		} else if strings.Contains(text, ":") {
			if allPairsWellFormed(text, ":") {
				valid++
			}
		}
	}
	return float64(valid) / float64(len(texts))
}

// allPairsWellFormed checks that every comma-separated pair splits into
// exactly one key and one value on the given separator.
func allPairsWellFormed(text, sep string) bool {
	for _, pair := range strings.Split(text, ",") {
		if strings.Count(pair, sep) != 1 {
			return false
		}
	}
	return true
}

// delimiterCandidates fixes both the set and the tie-break order for
// delimiter detection.
var delimiterCandidates = []byte{',', '\t', '|', ';', ' '}

// DetectDelimiter scores each candidate delimiter over the sample texts by
// split-count consistency (1/(1+variance)) weighted by how many messages the
// delimiter actually splits. Returns ok=false when no candidate clears 0.5.
func (d *Detector) DetectDelimiter(texts []string) (byte, bool) {
	if len(texts) == 0 {
		return 0, false
	}

	var bestDelim byte
	bestScore := 0.0
	for _, delim := range delimiterCandidates {
		counts := make([]int, 0, len(texts))
		for _, text := range texts {
			if !strings.Contains(text, string(delim)) {
				continue
			}
			if parts := strings.Split(text, string(delim)); len(parts) > 1 {
				counts = append(counts, len(parts))
			}
		}
		if len(counts) == 0 {
			continue
		}

		mean := 0.0
		for _, c := range counts {
			mean += float64(c)
		}
		mean /= float64(len(counts))

		variance := 0.0
		for _, c := range counts {
			diff := float64(c) - mean
			variance += diff * diff
		}
		variance /= float64(len(counts))

		consistency := 1.0 / (1.0 + variance)
		score := consistency * float64(len(counts)) / float64(len(texts))
		if score > bestScore {
			bestScore = score
			bestDelim = delim
		}
	}

	if bestScore > 0.5 {
		return bestDelim, true
	}
	return 0, false
}

// DetectEncoding tries utf-8, utf-16 and latin-1 in order against the first
// 10 messages and returns the first encoding that decodes all of them. latin-1
// accepts any byte sequence, so the probe always resolves; an empty sample
// defaults to utf-8.
func (d *Detector) DetectEncoding(messages [][]byte) string {
	sample := messages
	if len(sample) > 10 {
		sample = sample[:10]
	}

	allUTF8 := true
	for _, msg := range sample {
		if !utf8.Valid(msg) {
			allUTF8 = false
			break
		}
	}
	if allUTF8 {
		return "utf-8"
	}

	if decodesAsUTF16(sample) {
		return "utf-16"
	}
	return "latin-1"
}

// decodesAsUTF16 reports whether every message decodes cleanly as UTF-16,
// BOM-aware with a little-endian default. Odd lengths and payloads whose
// decode needs replacement characters (unpaired surrogates) are rejected.
func decodesAsUTF16(messages [][]byte) bool {
	for _, msg := range messages {
		if len(msg)%2 != 0 {
			return false
		}
		decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		decoded, err := decoder.Bytes(msg)
		if err != nil || bytes.ContainsRune(decoded, utf8.RuneError) {
			return false
		}
	}
	return true
}
