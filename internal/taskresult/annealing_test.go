package taskresult

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qschema/internal/annealing"
	"github.com/roach88/qschema/internal/schema"
)

func isingResult() AnnealingTaskResult {
	return AnnealingTaskResult{
		Header:             AnnealingTaskResultHeader,
		Solutions:          [][]int{{1, -1, 3}, {-1, 1, 3}},
		SolutionCounts:     []int{3, 1},
		Values:             []float64{-1.5, 0.5},
		VariableCount:      3,
		ProblemType:        annealing.Ising,
		TaskMetadata:       TaskMetadata{Header: TaskMetadataHeader, ID: "task-3", Shots: 4, DeviceID: "device-1"},
		AdditionalMetadata: map[string]any{"activeVariables": []any{0.0, 1.0}},
	}
}

func TestAnnealingTaskResultGolden(t *testing.T) {
	r := isingResult()
	out, err := schema.Serialize(r)
	require.NoError(t, err)

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "annealing_task_result", out)

	back, _, err := ParseAnnealingTaskResult(out)
	require.NoError(t, err)
	assert.Equal(t, r, back)
	assert.Equal(t, 0, back.Lowest())
}

func TestAnnealingTaskResultEmpty(t *testing.T) {
	r, _, err := ParseAnnealingTaskResult([]byte(`{"solutions":[],"values":[],"variableCount":0,"problemType":"QUBO","taskMetadata":{"id":"t","shots":0,"deviceId":"d"},"additionalMetadata":{}}`))
	require.NoError(t, err)
	assert.Nil(t, r.Solutions)
	assert.Nil(t, r.Values)
	assert.Equal(t, -1, r.Lowest())

	out, err := schema.Serialize(r)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"solutions":[]`)
	back, _, err := ParseAnnealingTaskResult(out)
	require.NoError(t, err)
	assert.Equal(t, r, back)
}

func TestAnnealingTaskResultFailures(t *testing.T) {
	const meta = `"taskMetadata":{"id":"t","shots":1,"deviceId":"d"},"additionalMetadata":{}`
	tests := []struct {
		name  string
		raw   string
		field string
	}{
		{"solution out of range", `{"solutions":[[1,4]],"values":[0],"variableCount":2,"problemType":"ISING",` + meta + `}`, "solutions[0][1]"},
		{"empty solution", `{"solutions":[[]],"values":[0],"variableCount":0,"problemType":"ISING",` + meta + `}`, "solutions[0]"},
		{"negative count", `{"solutions":[[1],[0]],"solutionCounts":[1,-2],"values":[0,1],"variableCount":1,"problemType":"QUBO",` + meta + `}`, "solutionCounts[1]"},
		{"negative variable count", `{"solutions":[],"values":[],"variableCount":-1,"problemType":"QUBO",` + meta + `}`, "variableCount"},
		{"unknown problem type", `{"solutions":[],"values":[],"variableCount":0,"problemType":"MAXCUT",` + meta + `}`, "problemType"},
		{"missing values", `{"solutions":[],"variableCount":0,"problemType":"QUBO",` + meta + `}`, "values"},
		{"value not a number", `{"solutions":[[1]],"values":["low"],"variableCount":1,"problemType":"QUBO",` + meta + `}`, "values"},
		{"bad metadata", `{"solutions":[],"values":[],"variableCount":0,"problemType":"QUBO","taskMetadata":{"id":"t","shots":-1,"deviceId":"d"},"additionalMetadata":{}}`, "taskMetadata.shots"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseAnnealingTaskResult([]byte(tt.raw))
			var se *schema.Error
			require.ErrorAs(t, err, &se)
			assert.Equal(t, schema.ErrFieldConstraint, se.Code)
			assert.Equal(t, tt.field, se.Field)
		})
	}
}
