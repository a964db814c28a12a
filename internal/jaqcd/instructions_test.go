package jaqcd

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qschema/internal/schema"
)

// validFields holds a minimal valid body for every instruction type.
var validFields = map[InstructionType]string{
	TypeH: `"target":0`, TypeI: `"target":0`, TypeX: `"target":0`, TypeY: `"target":0`,
	TypeZ: `"target":0`, TypeS: `"target":0`, TypeSi: `"target":0`, TypeT: `"target":0`,
	TypeTi: `"target":0`, TypeV: `"target":0`, TypeVi: `"target":0`,
	TypeRx:            `"target":0,"angle":0.15`,
	TypeRy:            `"target":0,"angle":0.15`,
	TypeRz:            `"target":0,"angle":0.15`,
	TypePhaseShift:    `"target":0,"angle":0.15`,
	TypeSwap:          `"targets":[0,1]`,
	TypeISwap:         `"targets":[0,1]`,
	TypePSwap:         `"targets":[0,1],"angle":0.15`,
	TypeXY:            `"targets":[0,1],"angle":0.15`,
	TypeXX:            `"targets":[0,1],"angle":0.15`,
	TypeYY:            `"targets":[0,1],"angle":0.15`,
	TypeZZ:            `"targets":[0,1],"angle":0.15`,
	TypeCSwap:         `"control":0,"targets":[1,2]`,
	TypeCNot:          `"control":0,"target":1`,
	TypeCY:            `"control":0,"target":1`,
	TypeCZ:            `"control":0,"target":1`,
	TypeCPhaseShift:   `"control":0,"target":1,"angle":0.15`,
	TypeCPhaseShift00: `"control":0,"target":1,"angle":0.15`,
	TypeCPhaseShift01: `"control":0,"target":1,"angle":0.15`,
	TypeCPhaseShift10: `"control":0,"target":1,"angle":0.15`,
	TypeCCNot:         `"controls":[0,1],"target":2`,
	TypeUnitary:       `"targets":[0],"matrix":[[[0,0],[1,0]],[[1,0],[0,0]]]`,
}

func TestInstructionSetIsComplete(t *testing.T) {
	keys := Instructions.Keys()
	assert.Len(t, keys, 32)
	assert.Len(t, validFields, len(keys))
	for _, k := range keys {
		assert.Contains(t, validFields, InstructionType(k))
	}
}

func TestEveryInstructionDispatches(t *testing.T) {
	for typ, fields := range validFields {
		t.Run(string(typ), func(t *testing.T) {
			raw := json.RawMessage(`{"type":"` + string(typ) + `",` + fields + `}`)
			in, err := Instructions.Decode("instructions[0]", raw)
			require.NoError(t, err)
			assert.Equal(t, typ, in.InstructionType())
			require.NoError(t, Instructions.Check("instructions[0]", in))

			// Re-encoding carries the discriminant and decodes to the same value.
			out, err := json.Marshal(in)
			require.NoError(t, err)
			assert.JSONEq(t, string(raw), string(out))
			back, err := Instructions.Decode("instructions[0]", out)
			require.NoError(t, err)
			assert.Equal(t, in, back)
		})
	}
}

func TestInstructionMarshalIncludesType(t *testing.T) {
	out, err := json.Marshal(CPhaseShift01{SingleControl{Control: 2}, SingleTarget{Target: 3}, Rotation{Angle: -0.5}})
	require.NoError(t, err)
	assert.Equal(t, `{"angle":-0.5,"control":2,"target":3,"type":"cphaseshift01"}`, string(out))
}

func TestAnglesMustBeFinite(t *testing.T) {
	for _, angle := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		gates := []Instruction{
			Rx{SingleTarget{Target: 0}, Rotation{Angle: angle}},
			XX{DoubleTarget{Targets: []int{0, 1}}, Rotation{Angle: angle}},
			CPhaseShift{SingleControl{Control: 0}, SingleTarget{Target: 1}, Rotation{Angle: angle}},
		}
		for _, g := range gates {
			err := g.Validate()
			var se *schema.Error
			require.ErrorAs(t, err, &se, "%T with %v", g, angle)
			assert.Equal(t, schema.ErrFieldConstraint, se.Code)
			assert.Equal(t, "angle", se.Field)
		}
	}
}

func TestFieldGroupConstraints(t *testing.T) {
	tests := []struct {
		name  string
		in    Instruction
		field string
	}{
		{"negative target", H{SingleTarget{Target: -1}}, "target"},
		{"one swap target", Swap{DoubleTarget{Targets: []int{0}}}, "targets"},
		{"negative swap target", Swap{DoubleTarget{Targets: []int{0, -2}}}, "targets[1]"},
		{"negative control", CNot{SingleControl{Control: -1}, SingleTarget{Target: 0}}, "control"},
		{"three controls", CCNot{DoubleControl{Controls: []int{0, 1, 2}}, SingleTarget{Target: 3}}, "controls"},
		{"no unitary targets", Unitary{TwoDimensionalMatrix{Matrix: [][][]float64{{{1, 0}}}}, MultiTarget{}}, "targets"},
		{"empty matrix", Unitary{TwoDimensionalMatrix{}, MultiTarget{Targets: []int{0}}}, "matrix"},
		{"empty row", Unitary{TwoDimensionalMatrix{Matrix: [][][]float64{{}}}, MultiTarget{Targets: []int{0}}}, "matrix[0]"},
		{"short pair", Unitary{TwoDimensionalMatrix{Matrix: [][][]float64{{{1}}}}, MultiTarget{Targets: []int{0}}}, "matrix[0][0]"},
		{"nan entry", Unitary{TwoDimensionalMatrix{Matrix: [][][]float64{{{1, math.NaN()}}}}, MultiTarget{Targets: []int{0}}}, "matrix[0][0][1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var se *schema.Error
			require.ErrorAs(t, tt.in.Validate(), &se)
			assert.Equal(t, schema.ErrFieldConstraint, se.Code)
			assert.Equal(t, tt.field, se.Field)
		})
	}
}

func TestResultsDispatch(t *testing.T) {
	tests := []struct {
		raw  string
		want Result
	}{
		{`{"type":"amplitude","states":["01","10"]}`, Amplitude{MultiState{States: []string{"01", "10"}}}},
		{`{"type":"probability"}`, Probability{}},
		{`{"type":"probability","targets":[1]}`, Probability{OptionalMultiTarget{Targets: []int{1}}}},
		{`{"type":"statevector"}`, StateVector{}},
		{`{"type":"variance","observable":["x","y"],"targets":[0,1]}`, Variance{
			OptionalMultiTarget{Targets: []int{0, 1}},
			ObservableSpec{Observable: []ObservableFactor{{Name: "x"}, {Name: "y"}}},
		}},
	}
	for _, tt := range tests {
		got, err := Results.Decode("results[0]", json.RawMessage(tt.raw))
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got)
	}
	assert.Len(t, Results.Keys(), 6)
}

func TestResultConstraints(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		field string
	}{
		{"bad state", `{"type":"amplitude","states":["012"]}`, "results[0].states[0]"},
		{"no states", `{"type":"amplitude","states":[]}`, "results[0].states"},
		{"empty targets", `{"type":"probability","targets":[]}`, "results[0].targets"},
		{"missing observable", `{"type":"sample"}`, "results[0].observable"},
		{"empty observable", `{"type":"sample","observable":[]}`, "results[0].observable"},
		{"1x1 matrix", `{"type":"sample","observable":[[[1,0]]]}`, "results[0].observable[0]"},
		{"number factor", `{"type":"sample","observable":[3]}`, "results[0].observable[0]"},
		{"ragged matrix factor", `{"type":"sample","observable":["x",[[1,0]]]}`, "results[0].observable[1]"},
		{"observable not a list", `{"type":"sample","observable":"x"}`, "results[0].observable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Results.Decode("results[0]", json.RawMessage(tt.raw))
			var se *schema.Error
			require.ErrorAs(t, err, &se)
			assert.Equal(t, schema.ErrFieldConstraint, se.Code)
			assert.Equal(t, tt.field, se.Field)
		})
	}
}

func TestObservableFactorJSON(t *testing.T) {
	var f ObservableFactor
	require.NoError(t, json.Unmarshal([]byte(`"h"`), &f))
	assert.Equal(t, ObservableFactor{Name: "h"}, f)

	require.NoError(t, json.Unmarshal([]byte(`[[[1,0],[0,0]],[[0,0],[1,0]]]`), &f))
	assert.Equal(t, ObservableFactor{Matrix: [][][]float64{{{1, 0}, {0, 0}}, {{0, 0}, {1, 0}}}}, f)

	out, err := json.Marshal(ObservableFactor{Name: "i"})
	require.NoError(t, err)
	assert.Equal(t, `"i"`, string(out))

	both := ObservableFactor{Name: "x", Matrix: [][][]float64{{{1, 0}, {0, 0}}, {{0, 0}, {1, 0}}}}
	assert.True(t, schema.HasCode(both.check(), schema.ErrFieldConstraint))
}
