package catalog

import (
	"errors"
	"fmt"

	"github.com/roach88/qschema/internal/annealing"
	"github.com/roach88/qschema/internal/batch"
	"github.com/roach88/qschema/internal/jaqcd"
	"github.com/roach88/qschema/internal/openqasm"
	"github.com/roach88/qschema/internal/schema"
)

// ErrNotCountable is returned by ExecutionCounts for payloads that are not
// programs.
var ErrNotCountable = errors.New("payload has no execution count")

// ExecutionCounts returns per-program execution counts and their total.
// Single programs count as a batch of one. A standalone OpenQASM program
// expands only when all of its inputs are lists; scalar inputs bind one
// execution.
func ExecutionCounts(v schema.Schema) ([]int, int, error) {
	switch p := v.(type) {
	case openqasm.ProgramSet:
		counts, err := p.ExecutablesPerProgram()
		if err != nil {
			return nil, 0, err
		}
		total := 0
		for _, n := range counts {
			total += n
		}
		return counts, total, nil
	case openqasm.Program:
		if !batch.Batched(p.Inputs) {
			return []int{1}, 1, nil
		}
		n, err := batch.ExecutionCount("", p.Inputs)
		if err != nil {
			return nil, 0, err
		}
		return []int{n}, n, nil
	case jaqcd.Program, annealing.Problem:
		return []int{1}, 1, nil
	}
	return nil, 0, fmt.Errorf("%w: %T", ErrNotCountable, v)
}
