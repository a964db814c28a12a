package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleHeader = MustHeader("qschema.test.sample", "1")

// sample is a minimal fixed-header payload used to exercise the helpers.
type sample struct {
	Header Header  `json:"schemaHeader"`
	Label  string  `json:"label"`
	Weight float64 `json:"weight"`
}

func (s sample) SchemaHeader() Header { return s.Header }

func (s sample) Validate() error {
	return First(
		CheckFixed(sampleHeader, s.Header),
		NotEmpty("label", s.Label),
		Finite("weight", s.Weight),
	)
}

func TestParseEnvelope(t *testing.T) {
	env, err := ParseEnvelope([]byte(`{"schemaHeader":{"name":"a.b","version":"2.1"},"x":1}`))
	require.NoError(t, err)
	assert.Equal(t, Header{Name: "a.b", Version: "2.1"}, env.Header)
	assert.JSONEq(t, `{"schemaHeader":{"name":"a.b","version":"2.1"},"x":1}`, string(env.Raw))
}

func TestParseEnvelopeFailures(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		code  ErrorCode
		field string
	}{
		{"not an object", `[1,2]`, ErrFieldConstraint, ""},
		{"no header", `{"x":1}`, ErrInvalidHeader, "schemaHeader"},
		{"null header", `{"schemaHeader":null}`, ErrInvalidHeader, "schemaHeader"},
		{"empty name", `{"schemaHeader":{"name":"","version":"1"}}`, ErrInvalidHeader, "schemaHeader.name"},
		{"missing version", `{"schemaHeader":{"name":"a"}}`, ErrInvalidHeader, "schemaHeader.version"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEnvelope([]byte(tt.raw))
			require.Error(t, err)
			var se *Error
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.code, se.Code)
			assert.Equal(t, tt.field, se.Field)
		})
	}
}

func TestFixedHeader(t *testing.T) {
	h, err := FixedHeader(sampleHeader, nil)
	require.NoError(t, err)
	assert.Equal(t, sampleHeader, h)

	h, err = FixedHeader(sampleHeader, json.RawMessage(`null`))
	require.NoError(t, err)
	assert.Equal(t, sampleHeader, h)

	h, err = FixedHeader(sampleHeader, json.RawMessage(`{"name":"qschema.test.sample","version":"1"}`))
	require.NoError(t, err)
	assert.Equal(t, sampleHeader, h)

	_, err = FixedHeader(sampleHeader, json.RawMessage(`{"name":"qschema.test.sample","version":"2"}`))
	assert.True(t, HasCode(err, ErrHeaderMismatch))

	_, err = FixedHeader(sampleHeader, json.RawMessage(`{"name":"","version":"1"}`))
	assert.True(t, HasCode(err, ErrInvalidHeader))
}

func TestRequireKeys(t *testing.T) {
	obj, err := Object("", []byte(`{"a":1,"b":null}`))
	require.NoError(t, err)

	assert.NoError(t, RequireKeys("root", obj, "a"))

	err = RequireKeys("root", obj, "a", "b")
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ErrFieldConstraint, se.Code)
	assert.Equal(t, "root.b", se.Field)
}

func TestDecodeTypeMismatch(t *testing.T) {
	var v struct {
		Target int `json:"target"`
	}
	err := Decode("instructions[0]", []byte(`{"target":"zero"}`), &v)
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ErrFieldConstraint, se.Code)
	assert.Equal(t, "instructions[0].target", se.Field)
}

type rotation struct {
	Angle float64 `json:"angle"`
}

type Qubits struct {
	Targets []int `json:"targets"`
}

type rotationGate struct {
	rotation
	*Qubits
	Type   string `json:"type"`
	Nested struct {
		rotation
	} `json:"nested"`
}

func TestDecodeTypeMismatchEmbedded(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		field string
	}{
		{"promoted field", `{"angle":"pi"}`, "instructions[0].angle"},
		{"embedded pointer", `{"targets":["a"]}`, "instructions[0].targets"},
		{"own field", `{"type":1}`, "instructions[0].type"},
		{"nested embedded", `{"nested":{"angle":true}}`, "instructions[0].nested.angle"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v rotationGate
			err := Decode("instructions[0]", []byte(tt.raw), &v)
			var se *Error
			require.ErrorAs(t, err, &se)
			assert.Equal(t, ErrFieldConstraint, se.Code)
			assert.Equal(t, tt.field, se.Field)
		})
	}
}

func TestArray(t *testing.T) {
	elems, err := Array("xs", []byte(` [1, {"a":2}] `))
	require.NoError(t, err)
	require.Len(t, elems, 2)
	assert.JSONEq(t, `{"a":2}`, string(elems[1]))

	_, err = Array("xs", []byte(`{"a":2}`))
	assert.True(t, HasCode(err, ErrFieldConstraint))
}

func TestIsAbsent(t *testing.T) {
	assert.True(t, IsAbsent(nil))
	assert.True(t, IsAbsent(json.RawMessage(" null ")))
	assert.False(t, IsAbsent(json.RawMessage("[]")))
	assert.False(t, IsAbsent(json.RawMessage("0")))
}

func TestDecodeFixed(t *testing.T) {
	type wire sample
	var body wire
	h, err := DecodeFixed(sampleHeader, []byte(`{"label":"x","weight":2}`), &body, "label")
	require.NoError(t, err)
	assert.Equal(t, sampleHeader, h)
	assert.Equal(t, "x", body.Label)

	_, err = DecodeFixed(sampleHeader, []byte(`{"schemaHeader":null,"label":"x"}`), &body, "label")
	require.NoError(t, err, "a null header takes the fixed value")

	_, err = DecodeFixed(sampleHeader, []byte(`{"weight":2}`), &body, "label")
	assert.True(t, HasCode(err, ErrFieldConstraint))

	_, err = DecodeFixed(sampleHeader, []byte(`{"schemaHeader":{"name":"other","version":"1"},"label":"x"}`), &body, "label")
	assert.True(t, HasCode(err, ErrHeaderMismatch))
}
