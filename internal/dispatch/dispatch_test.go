package dispatch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qschema/internal/schema"
)

type shape interface{ kind() string }

type circle struct {
	Radius float64 `json:"radius"`
}

type square struct {
	Side float64 `json:"side"`
}

type hexagon struct{}

func (circle) kind() string  { return "circle" }
func (square) kind() string  { return "square" }
func (hexagon) kind() string { return "hexagon" }

func decodeAs[T shape](check func(T) error) Constructor[shape] {
	return func(raw json.RawMessage) (shape, error) {
		var v T
		if err := schema.Decode("", raw, &v); err != nil {
			return nil, err
		}
		if err := check(v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

func shapeKey(s shape) string { return s.kind() }

func newShapes(t *testing.T) *Table[shape] {
	t.Helper()
	table, err := New("shape", "type", shapeKey,
		Entry[shape]{Key: "circle", New: decodeAs(func(c circle) error { return schema.Finite("radius", c.Radius) })},
		Entry[shape]{Key: "square", New: decodeAs(func(s square) error { return schema.Finite("side", s.Side) })},
	)
	require.NoError(t, err)
	return table
}

func TestDecodeSelectsVariant(t *testing.T) {
	table := newShapes(t)

	v, err := table.Decode("shapes[0]", json.RawMessage(`{"type":"circle","radius":2}`))
	require.NoError(t, err)
	assert.Equal(t, circle{Radius: 2}, v)

	v, err = table.Decode("shapes[1]", json.RawMessage(`{"side":3,"type":"square"}`))
	require.NoError(t, err)
	assert.Equal(t, square{Side: 3}, v)
}

func TestDecodeUnknownVariant(t *testing.T) {
	table := newShapes(t)
	tests := []struct {
		name  string
		raw   string
		field string
		value any
	}{
		{"unknown type", `{"type":"triangle"}`, "shapes[0].type", "triangle"},
		{"missing type", `{"radius":1}`, "shapes[0].type", nil},
		{"null type", `{"type":null}`, "shapes[0].type", nil},
		{"null item", `null`, "shapes[0]", nil},
		{"not an object", `"circle"`, "shapes[0]", `"circle"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := table.Decode("shapes[0]", json.RawMessage(tt.raw))
			var se *schema.Error
			require.ErrorAs(t, err, &se)
			assert.Equal(t, schema.ErrUnknownVariant, se.Code)
			assert.Equal(t, tt.field, se.Field)
			assert.Equal(t, tt.value, se.Value)
		})
	}
}

func TestDecodeNonStringDiscriminant(t *testing.T) {
	_, err := newShapes(t).Decode("shapes[0]", json.RawMessage(`{"type":7}`))
	var se *schema.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, schema.ErrFieldConstraint, se.Code)
	assert.Equal(t, "shapes[0].type", se.Field)
}

func TestDecodeConstructorErrorIsRooted(t *testing.T) {
	_, err := newShapes(t).Decode("shapes[4]", json.RawMessage(`{"type":"circle","radius":"big"}`))
	var se *schema.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, schema.ErrFieldConstraint, se.Code)
	assert.Equal(t, "shapes[4].radius", se.Field)
}

func TestNewRejectsDuplicates(t *testing.T) {
	ctor := decodeAs(func(circle) error { return nil })
	_, err := New("shape", "type", shapeKey,
		Entry[shape]{Key: "circle", New: ctor},
		Entry[shape]{Key: "circle", New: ctor},
	)
	assert.True(t, schema.HasCode(err, schema.ErrDuplicateVariant))

	assert.Panics(t, func() {
		Must(New("shape", "type", shapeKey,
			Entry[shape]{Key: "circle", New: ctor},
			Entry[shape]{Key: "circle", New: ctor},
		))
	})
}

func TestNewRejectsMissingConstructor(t *testing.T) {
	_, err := New("shape", "type", shapeKey, Entry[shape]{Key: "circle"})
	assert.Error(t, err)
}

func TestCheck(t *testing.T) {
	table := newShapes(t)
	assert.NoError(t, table.Check("s", circle{Radius: 1}))

	err := table.Check("s", hexagon{})
	var se *schema.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, schema.ErrUnknownVariant, se.Code)
	assert.Equal(t, "hexagon", se.Value)

	assert.True(t, schema.HasCode(table.Check("s", nil), schema.ErrUnknownVariant))
	assert.True(t, schema.HasCode(table.Check("s", (*circle)(nil)), schema.ErrUnknownVariant))
	assert.NotPanics(t, func() { _ = table.CheckList("s", []shape{circle{}, (*square)(nil)}) })
	assert.True(t, schema.HasCode(table.CheckList("s", []shape{circle{}, hexagon{}}), schema.ErrUnknownVariant))
}

func TestDecodeList(t *testing.T) {
	table := newShapes(t)

	got, err := table.DecodeList("shapes", json.RawMessage(`[{"type":"square","side":1},{"type":"circle","radius":2}]`))
	require.NoError(t, err)
	assert.Equal(t, []shape{square{Side: 1}, circle{Radius: 2}}, got)

	got, err = table.DecodeList("shapes", nil)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = table.DecodeList("shapes", json.RawMessage(`[]`))
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = table.DecodeList("shapes", json.RawMessage(`[{"type":"square","side":1},{"type":"blob"}]`))
	var se *schema.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "shapes[1].type", se.Field)

	_, err = table.DecodeList("shapes", json.RawMessage(`{"type":"square"}`))
	assert.True(t, schema.HasCode(err, schema.ErrFieldConstraint))
}

func TestKeysAndKeyedTables(t *testing.T) {
	assert.Equal(t, []string{"circle", "square"}, newShapes(t).Keys())

	byName := func(obj map[string]json.RawMessage) (string, bool, error) {
		var meta struct {
			Name string `json:"name"`
		}
		raw, ok := obj["meta"]
		if !ok {
			return "", false, nil
		}
		if err := json.Unmarshal(raw, &meta); err != nil {
			return "", true, err
		}
		return meta.Name, true, nil
	}
	table, err := NewKeyed("shape", "meta.name", byName, shapeKey,
		Entry[shape]{Key: "circle", New: decodeAs(func(circle) error { return nil })},
	)
	require.NoError(t, err)

	v, err := table.Decode("x", json.RawMessage(`{"meta":{"name":"circle"},"radius":4}`))
	require.NoError(t, err)
	assert.Equal(t, circle{Radius: 4}, v)

	_, err = table.Decode("x", json.RawMessage(`{"radius":4}`))
	assert.True(t, schema.HasCode(err, schema.ErrUnknownVariant))
}
