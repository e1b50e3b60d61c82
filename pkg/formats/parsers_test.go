/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: parsers_test.go
Description: Unit tests for the format parsers. Covers JSON shape handling, stateful
CSV header capture, key-value scalar conversion, the raw-text fallback, custom
delimiters, and batch-level failure skipping.
*/

package formats_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kleascm/streamschema/pkg/formats"
	"github.com/kleascm/streamschema/pkg/record"
)

func TestJSONParserObject(t *testing.T) {
	p := formats.NewJSONParser()
	rec, ok := p.Parse([]byte(`{"id": 1, "name": "Alice"}`))
	require.True(t, ok)
	assert.Equal(t, int64(1), rec["id"].Int64())
	assert.Equal(t, "Alice", rec["name"].Str())
}

func TestJSONParserScalarWrapped(t *testing.T) {
	p := formats.NewJSONParser()
	rec, ok := p.Parse([]byte(`42`))
	require.True(t, ok)
	assert.Equal(t, int64(42), rec["value"].Int64())
}

func TestJSONParserArrayOfObjectsMerged(t *testing.T) {
	p := formats.NewJSONParser()
	rec, ok := p.Parse([]byte(`[{"a": 1}, {"b": 2}, {"a": 3}]`))
	require.True(t, ok)
	// Later keys overwrite earlier ones
	assert.Equal(t, int64(3), rec["a"].Int64())
	assert.Equal(t, int64(2), rec["b"].Int64())
}

func TestJSONParserScalarArrayWrapped(t *testing.T) {
	p := formats.NewJSONParser()
	rec, ok := p.Parse([]byte(`[1, 2, 3]`))
	require.True(t, ok)
	require.Equal(t, record.KindArray, rec["array"].Kind())
	assert.Len(t, rec["array"].Elems(), 3)
}

func TestJSONParserRejectsInvalid(t *testing.T) {
	p := formats.NewJSONParser()
	_, ok := p.Parse([]byte(`{"broken": `))
	assert.False(t, ok)
	_, ok = p.Parse([]byte{0xff, 0xfe})
	assert.False(t, ok)
}

func TestJSONParserRejectsTrailingData(t *testing.T) {
	p := formats.NewJSONParser()

	_, ok := p.Parse([]byte(`{"a": 1} trailing junk`))
	assert.False(t, ok)

	// A second document counts as trailing data too
	_, ok = p.Parse([]byte(`{"a": 1} {"b": 2}`))
	assert.False(t, ok)

	// Surrounding whitespace is not trailing data
	rec, ok := p.Parse([]byte("  {\"a\": 1}\n"))
	require.True(t, ok)
	assert.Equal(t, int64(1), rec["a"].Int64())
}

func TestJSONParserBatchSkipsFailures(t *testing.T) {
	p := formats.NewJSONParser()
	records := p.ParseBatch([][]byte{
		[]byte(`{"a": 1}`),
		[]byte(`not json`),
		[]byte(`{"a": 2}`),
	})
	// "not json" decodes as a bare scalar failure, the others survive
	assert.Len(t, records, 2)
}

func TestCSVParserHeaderAndData(t *testing.T) {
	p := formats.NewCSVParser(',', true)

	// One message carrying header and data yields one record
	rec, ok := p.Parse([]byte("name,age,city\nJohn,30,New York"))
	require.True(t, ok)
	assert.Equal(t, "John", rec["name"].Str())
	assert.Equal(t, "30", rec["age"].Str())
	assert.Equal(t, "New York", rec["city"].Str())

	// Later messages zip against the captured header
	rec, ok = p.Parse([]byte("Jane,25,Boston"))
	require.True(t, ok)
	assert.Equal(t, "Jane", rec["name"].Str())
}

func TestCSVParserHeaderOnlyMessage(t *testing.T) {
	p := formats.NewCSVParser(',', true)
	_, ok := p.Parse([]byte("name,age,city"))
	assert.False(t, ok)

	rec, ok := p.Parse([]byte("John,30,New York"))
	require.True(t, ok)
	assert.Equal(t, "John", rec["name"].Str())
}

func TestCSVParserSyntheticHeaders(t *testing.T) {
	p := formats.NewCSVParser(',', false)
	rec, ok := p.Parse([]byte("John,30"))
	require.True(t, ok)
	assert.Equal(t, "John", rec["column_0"].Str())
	assert.Equal(t, "30", rec["column_1"].Str())
}

func TestCSVParserPadsAndTruncates(t *testing.T) {
	p := formats.NewCSVParser(',', true)
	_, ok := p.Parse([]byte("a,b,c"))
	require.False(t, ok)

	short, ok := p.Parse([]byte("1,2"))
	require.True(t, ok)
	assert.Equal(t, "", short["c"].Str())

	long, ok := p.Parse([]byte("1,2,3,4"))
	require.True(t, ok)
	assert.Len(t, long, 3)
}

func TestTSVParser(t *testing.T) {
	p := formats.NewTSVParser(true)
	rec, ok := p.Parse([]byte("name\tage\nJohn\t30"))
	require.True(t, ok)
	assert.Equal(t, "John", rec["name"].Str())
	assert.Equal(t, "30", rec["age"].Str())
}

func TestKeyValueParserScalarConversion(t *testing.T) {
	p := formats.NewKeyValueParser(",", "=")
	rec, ok := p.Parse([]byte(`host=db1,port=5432,rate=0.5,active=true,label="x"`))
	require.True(t, ok)

	assert.Equal(t, record.KindString, rec["host"].Kind())
	assert.Equal(t, int64(5432), rec["port"].Int64())
	assert.Equal(t, 0.5, rec["rate"].Float64())
	assert.True(t, rec["active"].BoolVal())
	assert.Equal(t, "x", rec["label"].Str())
}

func TestKeyValueParserColonSeparator(t *testing.T) {
	p := formats.NewKeyValueParser(",", ":")
	rec, ok := p.Parse([]byte("level:info,service:auth"))
	require.True(t, ok)
	assert.Equal(t, "info", rec["level"].Str())
	assert.Equal(t, "auth", rec["service"].Str())
}

func TestKeyValueParserRejects(t *testing.T) {
	p := formats.NewKeyValueParser(",", "=")

	_, ok := p.Parse([]byte("no separators here"))
	assert.False(t, ok)

	// Control-character share above 10% is rejected
	_, ok = p.Parse([]byte("a=b\x00\x01\x02\x03"))
	assert.False(t, ok)
}

func TestRawTextParserText(t *testing.T) {
	p := formats.NewRawTextParser()
	rec, ok := p.Parse([]byte("  some log line  "))
	require.True(t, ok)
	assert.Equal(t, "some log line", rec["raw_content"].Str())
	assert.Equal(t, int64(13), rec["message_length"].Int64())
	assert.False(t, rec.IsBinary())
}

func TestRawTextParserBinary(t *testing.T) {
	p := formats.NewRawTextParser()
	rec, ok := p.Parse([]byte{0xde, 0xad, 0xbe, 0xef, 0xff})
	require.True(t, ok)
	assert.Equal(t, "deadbeefff", rec["raw_content"].Str())
	assert.True(t, rec.IsBinary())
}

func TestRawTextParserRejectsEmptyText(t *testing.T) {
	p := formats.NewRawTextParser()
	_, ok := p.Parse([]byte("   "))
	assert.False(t, ok)
}

func TestDelimitedParser(t *testing.T) {
	p := formats.NewDelimitedParser("|", true)

	// The header row carries no data
	_, ok := p.Parse([]byte("name|age"))
	require.False(t, ok)

	rec, ok := p.Parse([]byte("John|30"))
	require.True(t, ok)
	assert.Equal(t, "John", rec["name"].Str())

	headerless := formats.NewDelimitedParser("|", false)
	rec, ok = headerless.Parse([]byte("a|b"))
	require.True(t, ok)
	assert.Equal(t, "a", rec["field_0"].Str())
	assert.Equal(t, "b", rec["field_1"].Str())
}

func TestNewParserFactory(t *testing.T) {
	for _, format := range []string{
		formats.FormatJSON, formats.FormatCSV, formats.FormatTSV,
		formats.FormatKeyValue, formats.FormatRawText,
	} {
		p, err := formats.NewParser(format)
		require.NoError(t, err, format)
		assert.NotNil(t, p)
	}

	_, err := formats.NewParser("xml")
	assert.ErrorIs(t, err, formats.ErrUnsupportedFormat)
}

func TestSniffKeyValueSeparator(t *testing.T) {
	assert.Equal(t, "=", formats.SniffKeyValueSeparator([]string{"a=b"}))
	assert.Equal(t, ":", formats.SniffKeyValueSeparator([]string{"a:b"}))
	assert.Equal(t, ":", formats.SniffKeyValueSeparator(nil))
}

func TestDecodeLossy(t *testing.T) {
	assert.Equal(t, "plain", formats.DecodeLossy([]byte("plain")))
	// Invalid bytes are dropped rather than failing
	assert.Equal(t, "ab", formats.DecodeLossy([]byte{'a', 0xff, 'b'}))
}
