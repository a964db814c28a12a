package openqasm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qschema/internal/schema"
)

func TestModifiersDispatch(t *testing.T) {
	two := 2
	tests := []struct {
		raw  string
		want Modifier
	}{
		{`{"name":"ctrl"}`, Control{}},
		{`{"name":"ctrl","max_qubits":2}`, Control{MaxQubits: &two}},
		{`{"name":"negctrl"}`, NegControl{}},
		{`{"name":"pow","exponent_types":["int","float"]}`, Power{ExponentTypes: []ExponentType{ExponentInt, ExponentFloat}}},
		{`{"name":"inv"}`, Inverse{}},
	}
	for _, tt := range tests {
		got, err := Modifiers.Decode("supportedModifiers[0]", json.RawMessage(tt.raw))
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got)

		out, err := json.Marshal(got)
		require.NoError(t, err)
		assert.JSONEq(t, tt.raw, string(out))
	}
	assert.Equal(t, []string{"ctrl", "inv", "negctrl", "pow"}, Modifiers.Keys())
}

func TestModifierFailures(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		code  schema.ErrorCode
		field string
	}{
		{"unknown", `{"name":"sqrt"}`, schema.ErrUnknownVariant, "m.name"},
		{"type instead of name", `{"type":"ctrl"}`, schema.ErrUnknownVariant, "m.name"},
		{"pow without exponents", `{"name":"pow"}`, schema.ErrFieldConstraint, "m.exponent_types"},
		{"bad exponent", `{"name":"pow","exponent_types":["complex"]}`, schema.ErrFieldConstraint, "m.exponent_types[0]"},
		{"negative max qubits", `{"name":"negctrl","max_qubits":-1}`, schema.ErrFieldConstraint, "m.max_qubits"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Modifiers.Decode("m", json.RawMessage(tt.raw))
			var se *schema.Error
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.code, se.Code)
			assert.Equal(t, tt.field, se.Field)
		})
	}
}
