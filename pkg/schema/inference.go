/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: inference.go
Description: Schema inference engine for the StreamSchema pipeline. Walks a batch of
parsed records, accumulates per-path type statistics, unifies conflicting observations
under a confidence threshold, and emits a deterministic flat field list.
*/

package schema

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/kleascm/streamschema/pkg/record"
)

// ErrNoRecords is returned when inference is attempted on an empty batch
var ErrNoRecords = errors.New("no records provided for schema inference")

// Array handling strategies
const (
	ArrayHandlingUnion = "union"
	ArrayHandlingFirst = "first"
	ArrayHandlingAll   = "all"
)

// Null handling strategies
const (
	NullHandlingOptional = "optional"
	NullHandlingRequired = "required"
	NullHandlingIgnore   = "ignore"
)

// DefaultNamespace is stamped on every inferred schema
const DefaultNamespace = "com.streamschema.infer"

// maxExamples caps the example values retained per field
const maxExamples = 5

// requiredNullRatio is the null share above which a field stops being
// required.
const requiredNullRatio = 0.1

// Config controls how records are unified into a schema
type Config struct {
	// ConfidenceThreshold is the minimum share of type agreement among
	// non-null observations needed to assign a single concrete kind.
	ConfidenceThreshold float64

	// MaxDepth is the nesting ceiling; objects at the ceiling are truncated
	// to string instead of recursed.
	MaxDepth int

	// ArrayHandling selects the element-type unification policy: union,
	// first or all.
	ArrayHandling string

	// NullHandling is accepted for configuration compatibility. The
	// required-field decision below always applies the fixed 10% null-ratio
	// rule and does not branch on this value.
	NullHandling string
}

// Inferrer unifies batches of records into an InferredSchema
type Inferrer struct {
	cfg    Config
	logger *logrus.Logger
}

// NewInferrer creates an inference engine. A nil logger falls back to the
// process-wide logrus logger.
func NewInferrer(cfg Config, logger *logrus.Logger) *Inferrer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Inferrer{cfg: cfg, logger: logger}
}

// fieldAnalysis accumulates observations for one path during a single
// inference pass.
type fieldAnalysis struct {
	typeCounts map[string]int
	nullCount  int
	totalCount int
	examples   []interface{}
}

// Infer walks all records and produces the unified schema. Fields are sorted
// lexicographically by path so identical input always yields identical
// output.
func (in *Inferrer) Infer(records []record.Record, name string) (*InferredSchema, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	in.logger.WithFields(logrus.Fields{
		"records": len(records),
		"schema":  name,
	}).Info("Inferring schema")

	analysis := make(map[string]*fieldAnalysis)
	for _, rec := range records {
		in.analyzeRecord(rec, analysis, 0, "")
	}

	paths := make([]string, 0, len(analysis))
	for path := range analysis {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	fields := make([]SchemaField, 0, len(paths))
	for _, path := range paths {
		fields = append(fields, in.emitField(path, analysis[path]))
	}

	return &InferredSchema{
		Name:        name,
		Namespace:   DefaultNamespace,
		Description: fmt.Sprintf("Auto-generated schema for %s", name),
		Fields:      fields,
	}, nil
}

// analyzeRecord visits one record's key/value pairs, updating the per-path
// accumulators and recursing into nested objects and arrays of objects.
func (in *Inferrer) analyzeRecord(rec record.Record, analysis map[string]*fieldAnalysis, depth int, prefix string) {
	if depth > in.cfg.MaxDepth {
		in.logger.WithField("max_depth", in.cfg.MaxDepth).Warn("Maximum depth reached, truncating analysis")
		return
	}

	for key, value := range rec {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		fa := analysis[path]
		if fa == nil {
			fa = &fieldAnalysis{typeCounts: make(map[string]int)}
			analysis[path] = fa
		}
		fa.totalCount++

		if value.IsNull() {
			fa.nullCount++
			fa.typeCounts[KindNull]++
			continue
		}

		// Tally the full textual identifier so array composition survives
		// through to emission.
		t := in.valueType(value, depth)
		fa.typeCounts[t.String()]++
		fa.addExample(value.Preview())

		switch value.Kind() {
		case record.KindObject:
			if depth < in.cfg.MaxDepth {
				in.analyzeRecord(record.Record(value.Fields()), analysis, depth+1, path)
			}
		case record.KindArray:
			if depth < in.cfg.MaxDepth {
				in.analyzeArrayElements(value.Elems(), analysis, depth, path)
			}
		}
	}
}

// analyzeArrayElements pools statistics from object elements into the base[]
// path, adding one [] per extra array nesting level. Scalar elements are not
// recursed; the array's own FieldType already carries their unified kind.
func (in *Inferrer) analyzeArrayElements(elems []record.Value, analysis map[string]*fieldAnalysis, depth int, base string) {
	path := base + "[]"
	for _, elem := range elems {
		switch elem.Kind() {
		case record.KindObject:
			in.analyzeRecord(record.Record(elem.Fields()), analysis, depth+1, path)
		case record.KindArray:
			in.analyzeArrayElements(elem.Elems(), analysis, depth, path)
		}
	}
}

// addExample retains up to maxExamples distinct example projections in
// first-seen order.
func (fa *fieldAnalysis) addExample(example interface{}) {
	if len(fa.examples) >= maxExamples {
		return
	}
	for _, ex := range fa.examples {
		if ex == example {
			return
		}
	}
	fa.examples = append(fa.examples, example)
}

// valueType classifies one value. The order matters: boolean before integer,
// then integer before float, so booleans and ints are never widened early.
// Objects at the depth ceiling truncate to string.
func (in *Inferrer) valueType(v record.Value, depth int) FieldType {
	switch v.Kind() {
	case record.KindBool:
		return FieldType{Kind: KindBoolean}
	case record.KindInt:
		return FieldType{Kind: KindInt}
	case record.KindFloat:
		return FieldType{Kind: KindFloat}
	case record.KindString:
		return FieldType{Kind: KindString}
	case record.KindArray:
		return in.arrayType(v.Elems(), depth)
	case record.KindObject:
		if depth >= in.cfg.MaxDepth {
			return FieldType{Kind: KindString}
		}
		return FieldType{Kind: KindObject}
	default:
		return FieldType{Kind: KindString}
	}
}

// arrayType unifies an array's element types under the configured handling
// policy. An empty array has no definite element kind.
func (in *Inferrer) arrayType(elems []record.Value, depth int) FieldType {
	if len(elems) == 0 {
		return FieldType{Kind: KindArray, Array: true}
	}

	elemTypes := make([]string, len(elems))
	for i, elem := range elems {
		elemTypes[i] = in.valueType(elem, depth+1).String()
	}

	switch in.cfg.ArrayHandling {
	case ArrayHandlingFirst:
		return FieldType{Kind: elemTypes[0], Array: true}
	case ArrayHandlingAll:
		unique := make(map[string]struct{}, len(elemTypes))
		for _, t := range elemTypes {
			unique[t] = struct{}{}
		}
		if len(unique) == 1 {
			return FieldType{Kind: elemTypes[0], Array: true}
		}
		return FieldType{Kind: KindUnion, Array: true}
	default: // union
		counts := make(map[string]int, len(elemTypes))
		for _, t := range elemTypes {
			counts[t]++
		}
		return FieldType{Kind: mostFrequent(counts), Array: true}
	}
}

// mostFrequent returns the key with the highest count. Ties break toward the
// lexicographically smallest key so unification is stable across runs.
func mostFrequent(counts map[string]int) string {
	best := ""
	bestCount := -1
	for k, n := range counts {
		if n > bestCount || (n == bestCount && k < best) {
			best = k
			bestCount = n
		}
	}
	return best
}

// emitField folds one path's accumulated statistics into a SchemaField
func (in *Inferrer) emitField(path string, fa *fieldAnalysis) SchemaField {
	nullable := fa.nullCount > 0

	nonNull := make(map[string]int, len(fa.typeCounts))
	nonNullTotal := 0
	for kind, n := range fa.typeCounts {
		if kind == KindNull {
			continue
		}
		nonNull[kind] += n
		nonNullTotal += n
	}

	var fieldType FieldType
	if nonNullTotal == 0 {
		fieldType = FieldType{Kind: KindString, Nullable: true}
	} else {
		winner := mostFrequent(nonNull)
		confidence := float64(nonNull[winner]) / float64(nonNullTotal)
		if confidence < in.cfg.ConfidenceThreshold && len(nonNull) > 1 {
			winner = KindUnion
		}
		fieldType = ParseFieldType(winner)
		fieldType.Nullable = nullable
	}

	// Fixed rule: a field stays required while nulls are under 10% of its
	// observations. null_handling intentionally does not alter this.
	required := fa.nullCount == 0 ||
		float64(fa.nullCount)/float64(fa.totalCount) < requiredNullRatio

	return SchemaField{
		Path:        path,
		Type:        fieldType,
		Required:    required,
		Description: fmt.Sprintf("Field %s with type %s", path, fieldType),
		Examples:    fa.examples,
	}
}
