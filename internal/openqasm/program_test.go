package openqasm

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qschema/internal/schema"
)

const (
	rxSource = "OPENQASM 3.0; input float theta; qubit q; rx(theta) q;"
	hSource  = "OPENQASM 3.0; qubit q; h q;"
)

func TestProgramRoundTrip(t *testing.T) {
	p, err := NewProgram(rxSource, map[string]any{"theta": 0.5})
	require.NoError(t, err)

	out, err := schema.Serialize(p)
	require.NoError(t, err)
	assert.Equal(t, `{"inputs":{"theta":0.5},"schemaHeader":{"name":"qschema.ir.openqasm.program","version":"1"},"source":"OPENQASM 3.0; input float theta; qubit q; rx(theta) q;"}`, string(out))

	back, _, err := ParseProgram(out)
	require.NoError(t, err)
	assert.Equal(t, p, back)
}

func TestConstructorsRoundTripEmptyCollections(t *testing.T) {
	p, err := NewProgram(hSource, map[string]any{})
	require.NoError(t, err)
	assert.Nil(t, p.Inputs)

	out, err := schema.Serialize(p)
	require.NoError(t, err)
	back, _, err := ParseProgram(out)
	require.NoError(t, err)
	assert.Equal(t, p, back)

	set, err := NewProgramSet([]Program{p}...)
	require.NoError(t, err)
	out, err = schema.Serialize(set)
	require.NoError(t, err)
	backSet, _, err := ParseProgramSet(out)
	require.NoError(t, err)
	assert.Equal(t, set, backSet)
}

func TestProgramValidation(t *testing.T) {
	_, err := NewProgram("", nil)
	assert.True(t, schema.HasCode(err, schema.ErrFieldConstraint))

	_, _, err = ParseProgram([]byte(`{"inputs":{}}`))
	var se *schema.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "source", se.Field)

	_, _, err = ParseProgram([]byte(`{"schemaHeader":{"name":"qschema.ir.openqasm.program_set","version":"1"},"source":"x"}`))
	assert.True(t, schema.HasCode(err, schema.ErrHeaderMismatch))

	_, _, err = ParseProgram([]byte(`{"source":42}`))
	require.ErrorAs(t, err, &se)
	assert.Equal(t, schema.ErrFieldConstraint, se.Code)
	assert.Equal(t, "source", se.Field)
}

func TestProgramSetGolden(t *testing.T) {
	set, err := NewProgramSet(
		Program{Header: ProgramHeader, Source: rxSource, Inputs: map[string]any{"theta": []any{0.1, 0.2}}},
		Program{Header: ProgramHeader, Source: hSource},
	)
	require.NoError(t, err)

	out, err := schema.Serialize(set)
	require.NoError(t, err)

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "program_set", out)

	back, _, err := ParseProgramSet(out)
	require.NoError(t, err)
	assert.Equal(t, set, back)
}

func TestProgramSetExecutionCounts(t *testing.T) {
	raw := []byte(`{
		"programs": [
			{"source": "a", "inputs": {"a": [1, 2], "b": [3, 4]}},
			{"source": "b", "inputs": {}}
		]
	}`)
	set, _, err := ParseProgramSet(raw)
	require.NoError(t, err)

	counts, err := set.ExecutablesPerProgram()
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, counts)

	total, err := set.TotalExecutables()
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, 2, set.NumPrograms())
}

func TestProgramSetRejectsUnequalInputs(t *testing.T) {
	raw := []byte(`{"programs":[{"source":"a","inputs":{"a":[1,2],"b":[3]}}]}`)
	set, _, err := ParseProgramSet(raw)
	var se *schema.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, schema.ErrUnequalInputLength, se.Code)
	assert.Equal(t, "programs[0].inputs", se.Field)
	assert.Equal(t, ProgramSet{}, set)
}

func TestProgramSetRejectsNonListInputs(t *testing.T) {
	raw := []byte(`{"programs":[{"source":"a"},{"source":"b","inputs":{"a":0.5}}]}`)
	_, _, err := ParseProgramSet(raw)
	var se *schema.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, schema.ErrNonListInput, se.Code)
	assert.Equal(t, "programs[1].inputs.a", se.Field)
}

func TestProgramSetRejectsEmpty(t *testing.T) {
	_, _, err := ParseProgramSet([]byte(`{"programs":[]}`))
	var se *schema.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, schema.ErrFieldConstraint, se.Code)
	assert.Equal(t, "programs", se.Field)

	_, err = NewProgramSet()
	assert.True(t, schema.HasCode(err, schema.ErrFieldConstraint))
}

func TestProgramSetNestedErrorsAreRooted(t *testing.T) {
	_, _, err := ParseProgramSet([]byte(`{"programs":[{"source":"a"},{"inputs":{}}]}`))
	var se *schema.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "programs[1].source", se.Field)

	_, _, err = ParseProgramSet([]byte(`{"programs":[{"schemaHeader":{"name":"qschema.ir.openqasm.program","version":"9"},"source":"a"}]}`))
	require.ErrorAs(t, err, &se)
	assert.Equal(t, schema.ErrHeaderMismatch, se.Code)
	assert.Equal(t, "programs[0].schemaHeader", se.Field)
}

func TestProgramSetValidateOnConstruction(t *testing.T) {
	set := ProgramSet{
		Header: ProgramSetHeader,
		Programs: []Program{
			{Header: ProgramHeader, Source: "a", Inputs: map[string]any{"x": []float64{1, 2}, "y": []float64{1}}},
		},
	}
	assert.True(t, schema.HasCode(set.Validate(), schema.ErrUnequalInputLength))
	_, err := schema.Serialize(set)
	assert.True(t, schema.HasCode(err, schema.ErrUnequalInputLength))
}
