package jaqcd

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qschema/internal/schema"
)

func bellProgram(t *testing.T) Program {
	t.Helper()
	p, err := NewProgram(
		[]Instruction{
			H{SingleTarget{Target: 0}},
			CNot{SingleControl{Control: 0}, SingleTarget{Target: 1}},
		},
		[]Result{
			Probability{},
			Expectation{
				OptionalMultiTarget{Targets: []int{0}},
				ObservableSpec{Observable: []ObservableFactor{{Name: "z"}}},
			},
		},
		nil,
	)
	require.NoError(t, err)
	return p
}

func TestProgramSerializeGolden(t *testing.T) {
	out, err := schema.Serialize(bellProgram(t))
	require.NoError(t, err)

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "bell_program", out)
}

func TestProgramRoundTrip(t *testing.T) {
	programs := []Program{
		bellProgram(t),
		{
			Header: ProgramHeader,
			Instructions: []Instruction{
				Rx{SingleTarget{Target: 2}, Rotation{Angle: 0.15}},
				CCNot{DoubleControl{Controls: []int{0, 1}}, SingleTarget{Target: 2}},
				Unitary{
					TwoDimensionalMatrix{Matrix: [][][]float64{{{0, 0}, {1, 0}}, {{1, 0}, {0, 0}}}},
					MultiTarget{Targets: []int{0}},
				},
			},
			Results: []Result{
				Amplitude{MultiState{States: []string{"000", "111"}}},
				StateVector{},
				Sample{
					OptionalMultiTarget{Targets: []int{0, 1}},
					ObservableSpec{Observable: []ObservableFactor{
						{Name: "x"},
						{Matrix: [][][]float64{{{1, 0}, {0, 0}}, {{0, 0}, {-1, 0}}}},
					}},
				},
			},
			BasisRotationInstructions: []Instruction{H{SingleTarget{Target: 0}}},
		},
		{Header: ProgramHeader},
	}
	for _, p := range programs {
		out, err := schema.Serialize(p)
		require.NoError(t, err)

		back, diags, err := ParseProgram(out)
		require.NoError(t, err)
		assert.Empty(t, diags)
		assert.Equal(t, p, back)
	}
}

func TestNewProgramEmptyListsRoundTrip(t *testing.T) {
	p, err := NewProgram([]Instruction{}, []Result{}, []Instruction{})
	require.NoError(t, err)
	assert.Nil(t, p.Instructions)
	assert.Nil(t, p.Results)
	assert.Nil(t, p.BasisRotationInstructions)

	out, err := schema.Serialize(p)
	require.NoError(t, err)
	back, _, err := ParseProgram(out)
	require.NoError(t, err)
	assert.Equal(t, p, back)
}

func TestParseProgramFillsAbsentHeader(t *testing.T) {
	p, _, err := ParseProgram([]byte(`{"instructions":[{"type":"x","target":3}]}`))
	require.NoError(t, err)
	assert.Equal(t, ProgramHeader, p.Header)
	assert.Equal(t, []Instruction{X{SingleTarget{Target: 3}}}, p.Instructions)
}

func TestParseProgramFailures(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		code  schema.ErrorCode
		field string
	}{
		{
			name:  "wrong header version",
			raw:   `{"schemaHeader":{"name":"qschema.ir.jaqcd.program","version":"2"},"instructions":[]}`,
			code:  schema.ErrHeaderMismatch,
			field: "schemaHeader",
		},
		{
			name:  "invalid header",
			raw:   `{"schemaHeader":{"name":"","version":"1"},"instructions":[]}`,
			code:  schema.ErrInvalidHeader,
			field: "schemaHeader.name",
		},
		{
			name:  "missing instructions",
			raw:   `{"results":[]}`,
			code:  schema.ErrFieldConstraint,
			field: "instructions",
		},
		{
			name:  "unknown instruction",
			raw:   `{"instructions":[{"type":"h","target":0},{"type":"warp","target":1}]}`,
			code:  schema.ErrUnknownVariant,
			field: "instructions[1].type",
		},
		{
			name:  "instruction missing type",
			raw:   `{"instructions":[{"target":1}]}`,
			code:  schema.ErrUnknownVariant,
			field: "instructions[0].type",
		},
		{
			name:  "null instruction",
			raw:   `{"instructions":[null]}`,
			code:  schema.ErrUnknownVariant,
			field: "instructions[0]",
		},
		{
			name:  "negative target",
			raw:   `{"instructions":[{"type":"h","target":-1}]}`,
			code:  schema.ErrFieldConstraint,
			field: "instructions[0].target",
		},
		{
			name:  "missing angle",
			raw:   `{"instructions":[{"type":"rx","target":0}]}`,
			code:  schema.ErrFieldConstraint,
			field: "instructions[0].angle",
		},
		{
			name:  "three swap targets",
			raw:   `{"instructions":[{"type":"swap","targets":[0,1,2]}]}`,
			code:  schema.ErrFieldConstraint,
			field: "instructions[0].targets",
		},
		{
			name:  "unknown result",
			raw:   `{"instructions":[],"results":[{"type":"density_matrix"}]}`,
			code:  schema.ErrUnknownVariant,
			field: "results[0].type",
		},
		{
			name:  "bad observable name",
			raw:   `{"instructions":[],"results":[{"type":"expectation","observable":["q"]}]}`,
			code:  schema.ErrFieldConstraint,
			field: "results[0].observable[0]",
		},
		{
			name:  "bad basis rotation",
			raw:   `{"instructions":[],"basis_rotation_instructions":[{"type":"h"}]}`,
			code:  schema.ErrFieldConstraint,
			field: "basis_rotation_instructions[0].target",
		},
		{
			name:  "angle as string",
			raw:   `{"instructions":[{"type":"rz","target":0,"angle":"pi"}]}`,
			code:  schema.ErrFieldConstraint,
			field: "instructions[0].angle",
		},
		{
			name:  "not an object",
			raw:   `[]`,
			code:  schema.ErrFieldConstraint,
			field: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _, err := ParseProgram([]byte(tt.raw))
			var se *schema.Error
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.code, se.Code, se.Error())
			assert.Equal(t, tt.field, se.Field)
			assert.Equal(t, Program{}, p, "failed parse must not return a partial program")
		})
	}
}

func TestNewProgramValidates(t *testing.T) {
	_, err := NewProgram([]Instruction{Rz{SingleTarget{Target: 0}, Rotation{Angle: math.Inf(1)}}}, nil, nil)
	assert.True(t, schema.HasCode(err, schema.ErrFieldConstraint))

	_, err = NewProgram([]Instruction{nil}, nil, nil)
	assert.True(t, schema.HasCode(err, schema.ErrUnknownVariant))
}

func TestProgramValidateRejectsWrongHeader(t *testing.T) {
	p := bellProgram(t)
	p.Header = schema.MustHeader("qschema.ir.jaqcd.program", "1.1")
	assert.True(t, schema.HasCode(p.Validate(), schema.ErrHeaderMismatch))

	_, err := schema.Serialize(p)
	assert.True(t, schema.HasCode(err, schema.ErrHeaderMismatch))
}

func TestProgramUnmarshalJSONDirect(t *testing.T) {
	var p Program
	err := json.Unmarshal([]byte(`{"instructions":[{"type":"cz","control":1,"target":0}]}`), &p)
	require.NoError(t, err)
	assert.Equal(t, []Instruction{CZ{SingleControl{Control: 1}, SingleTarget{Target: 0}}}, p.Instructions)
}

func TestQubitCount(t *testing.T) {
	assert.Equal(t, 2, bellProgram(t).QubitCount())
	assert.Equal(t, 0, Program{Header: ProgramHeader}.QubitCount())

	p := Program{
		Header:       ProgramHeader,
		Instructions: []Instruction{CSwap{SingleControl{Control: 4}, DoubleTarget{Targets: []int{0, 1}}}},
		Results:      []Result{Probability{OptionalMultiTarget{Targets: []int{6}}}},
	}
	assert.Equal(t, 7, p.QubitCount())
	assert.Equal(t, []int{4, 0, 1}, Qubits(p.Instructions[0]))
}
