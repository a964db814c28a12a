package taskresult

import (
	"encoding/json"
	"slices"

	"github.com/roach88/qschema/internal/annealing"
	"github.com/roach88/qschema/internal/lenient"
	"github.com/roach88/qschema/internal/schema"
)

var AnnealingTaskResultHeader = schema.MustHeader("qschema.task_result.annealing_task_result", "1")

// Solution entries are spins or bits; 3 marks a variable the device left
// inactive.
const (
	minSolutionValue = -1
	maxSolutionValue = 3
)

// AnnealingTaskResult is the output of an annealing task. Solutions[i] has
// energy Values[i] and, when SolutionCounts is set, was read
// SolutionCounts[i] times.
type AnnealingTaskResult struct {
	Header             schema.Header         `json:"schemaHeader"`
	Solutions          [][]int               `json:"solutions"`
	SolutionCounts     []int                 `json:"solutionCounts,omitempty"`
	Values             []float64             `json:"values"`
	VariableCount      int                   `json:"variableCount"`
	ProblemType        annealing.ProblemType `json:"problemType"`
	TaskMetadata       TaskMetadata          `json:"taskMetadata"`
	AdditionalMetadata map[string]any        `json:"additionalMetadata"`
}

func (r AnnealingTaskResult) SchemaHeader() schema.Header { return r.Header }

func (r AnnealingTaskResult) Validate() error {
	return schema.First(
		schema.CheckFixed(AnnealingTaskResultHeader, r.Header),
		schema.Each("solutions", r.Solutions, checkSolution),
		schema.NonNegativeAll("solutionCounts", r.SolutionCounts),
		schema.NonNegative("variableCount", r.VariableCount),
		schema.OneOf("problemType", r.ProblemType, annealing.QUBO, annealing.Ising),
		schema.At("taskMetadata", r.TaskMetadata.Validate()),
	)
}

func checkSolution(s []int) error {
	if err := schema.MinItems("", len(s), 1); err != nil {
		return err
	}
	return schema.Each("", s, func(v int) error {
		return schema.Between("", float64(v), minSolutionValue, maxSolutionValue)
	})
}

// Lowest returns the index of the solution with the smallest value, or -1
// when there are none.
func (r AnnealingTaskResult) Lowest() int {
	if len(r.Values) == 0 {
		return -1
	}
	return slices.Index(r.Values, slices.Min(r.Values))
}

func (r AnnealingTaskResult) MarshalJSON() ([]byte, error) {
	type wire AnnealingTaskResult
	body := wire(r)
	if body.Solutions == nil {
		body.Solutions = [][]int{}
	}
	if body.Values == nil {
		body.Values = []float64{}
	}
	if body.AdditionalMetadata == nil {
		body.AdditionalMetadata = map[string]any{}
	}
	return json.Marshal(body)
}

func (r *AnnealingTaskResult) UnmarshalJSON(data []byte) error {
	type wire AnnealingTaskResult
	var body struct {
		wire
		TaskMetadata json.RawMessage `json:"taskMetadata"`
	}
	header, err := schema.DecodeFixed(AnnealingTaskResultHeader, data, &body,
		"solutions", "values", "variableCount", "problemType", "taskMetadata", "additionalMetadata")
	if err != nil {
		return err
	}
	var meta TaskMetadata
	if err := schema.Decode("taskMetadata", body.TaskMetadata, &meta); err != nil {
		return err
	}
	decoded := AnnealingTaskResult(body.wire)
	decoded.Header = header
	decoded.Solutions = schema.NilIfEmpty(decoded.Solutions)
	decoded.SolutionCounts = schema.NilIfEmpty(decoded.SolutionCounts)
	decoded.Values = schema.NilIfEmpty(decoded.Values)
	decoded.TaskMetadata = meta
	decoded.AdditionalMetadata = schema.NilIfEmptyMap(decoded.AdditionalMetadata)
	if err := decoded.Validate(); err != nil {
		return err
	}
	*r = decoded
	return nil
}

func ParseAnnealingTaskResult(raw []byte) (AnnealingTaskResult, lenient.Diagnostics, error) {
	var r AnnealingTaskResult
	if err := schema.Decode("", raw, &r); err != nil {
		return AnnealingTaskResult{}, nil, err
	}
	return r, nil, nil
}
