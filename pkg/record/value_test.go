/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: value_test.go
Description: Unit tests for the tagged value variant. Covers construction from decoded
JSON data, native round trips, preview projection, and the binary record flag.
*/

package record_test

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kleascm/streamschema/pkg/record"
)

func TestFromInterfaceScalars(t *testing.T) {
	assert.Equal(t, record.KindNull, record.FromInterface(nil).Kind())
	assert.Equal(t, record.KindBool, record.FromInterface(true).Kind())
	assert.Equal(t, record.KindString, record.FromInterface("hi").Kind())
	assert.Equal(t, record.KindFloat, record.FromInterface(3.5).Kind())

	v := record.FromInterface(int64(42))
	assert.Equal(t, record.KindInt, v.Kind())
	assert.Equal(t, int64(42), v.Int64())
}

func TestFromInterfaceJSONNumber(t *testing.T) {
	// Integers stay integers, fractions become floats
	i := record.FromInterface(json.Number("7"))
	assert.Equal(t, record.KindInt, i.Kind())
	assert.Equal(t, int64(7), i.Int64())

	f := record.FromInterface(json.Number("7.25"))
	assert.Equal(t, record.KindFloat, f.Kind())
	assert.Equal(t, 7.25, f.Float64())
}

func TestFromInterfaceComposite(t *testing.T) {
	v := record.FromInterface(map[string]interface{}{
		"tags": []interface{}{"a", "b"},
		"nested": map[string]interface{}{
			"ok": true,
		},
	})
	require.Equal(t, record.KindObject, v.Kind())

	fields := v.Fields()
	require.Equal(t, record.KindArray, fields["tags"].Kind())
	assert.Len(t, fields["tags"].Elems(), 2)
	require.Equal(t, record.KindObject, fields["nested"].Kind())
	assert.True(t, fields["nested"].Fields()["ok"].BoolVal())
}

func TestNativeRoundTrip(t *testing.T) {
	v := record.Object(map[string]record.Value{
		"id":   record.Int(1),
		"tags": record.Array(record.String("x")),
	})
	native, ok := v.Native().(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, int64(1), native["id"])
	assert.Equal(t, []interface{}{"x"}, native["tags"])
}

func TestPreviewScalarsPassThrough(t *testing.T) {
	assert.Equal(t, int64(5), record.Int(5).Preview())
	assert.Equal(t, "text", record.String("text").Preview())
	assert.Nil(t, record.Null().Preview())
}

func TestPreviewTruncatesComposites(t *testing.T) {
	arr := record.Array(
		record.Int(1), record.Int(2), record.Int(3), record.Int(4),
	)
	assert.Equal(t, "[1, 2, 3]", arr.Preview())

	obj := record.Object(map[string]record.Value{
		"d": record.Int(4),
		"a": record.Int(1),
		"c": record.Int(3),
		"b": record.Int(2),
	})
	// Keys are sorted before truncation so the preview is stable
	assert.Equal(t, "{a: 1, b: 2, c: 3}", obj.Preview())
}

func TestRecordIsBinary(t *testing.T) {
	binary := record.Record{"is_binary": record.Bool(true)}
	text := record.Record{"is_binary": record.Bool(false)}
	plain := record.Record{"value": record.Int(1)}

	assert.True(t, binary.IsBinary())
	assert.False(t, text.IsBinary())
	assert.False(t, plain.IsBinary())
}
