// Package batch enforces the parameter-length invariant of batched,
// parameterized programs and derives how many executions a batch expands to.
//
// A program with no inputs executes once. A program with inputs executes
// once per index into its value lists, so every list must have the same
// length N and the program contributes N executions.
package batch

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/roach88/qschema/internal/schema"
)

// Parameterized is a program that may carry per-execution input lists.
type Parameterized interface {
	ParameterValues() map[string]any
}

// ExecutionCount returns the number of executions inputs describe. name
// identifies the program in errors.
func ExecutionCount(name string, inputs map[string]any) (int, error) {
	if len(inputs) == 0 {
		return 1, nil
	}
	params := make([]string, 0, len(inputs))
	for k := range inputs {
		params = append(params, k)
	}
	slices.Sort(params)

	lengths := make(map[string]int, len(params))
	for _, p := range params {
		n, ok := listLen(inputs[p])
		if !ok {
			return 0, schema.NewError(schema.ErrNonListInput, schema.JoinPath(name, "inputs."+p), inputs[p],
				"all program inputs must be lists when batching; %q is %T", p, inputs[p])
		}
		lengths[p] = n
	}
	first := lengths[params[0]]
	for _, p := range params[1:] {
		if lengths[p] != first {
			return 0, schema.NewError(schema.ErrUnequalInputLength, schema.JoinPath(name, "inputs"), lengths,
				"all input lists of %s must have the same length: %s", describe(name), formatLengths(params, lengths))
		}
	}
	return first, nil
}

// ExecutionCounts returns the per-program counts of a batch in order.
// A batch must contain at least one program.
func ExecutionCounts[P Parameterized](field string, programs []P) ([]int, error) {
	if err := schema.MinItems(field, len(programs), 1); err != nil {
		return nil, err
	}
	counts := make([]int, len(programs))
	for i, p := range programs {
		n, err := ExecutionCount(schema.Index(field, i), p.ParameterValues())
		if err != nil {
			return nil, err
		}
		counts[i] = n
	}
	return counts, nil
}

// TotalExecutionCount is the sum of ExecutionCounts.
func TotalExecutionCount[P Parameterized](field string, programs []P) (int, error) {
	counts, err := ExecutionCounts(field, programs)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	return total, nil
}

// Batched reports whether inputs describe a batch: at least one input and
// every value a list. Scalar inputs bind a single execution.
func Batched(inputs map[string]any) bool {
	if len(inputs) == 0 {
		return false
	}
	for _, v := range inputs {
		if _, ok := listLen(v); !ok {
			return false
		}
	}
	return true
}

// listLen reports the length of any slice or array value. Parsed JSON
// yields []any; programmatic callers often pass typed slices.
func listLen(v any) (int, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Len(), true
	default:
		return 0, false
	}
}

func describe(name string) string {
	if name == "" {
		return "the program"
	}
	return name
}

func formatLengths(params []string, lengths map[string]int) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = fmt.Sprintf("%s=%d", p, lengths[p])
	}
	return strings.Join(parts, ", ")
}
