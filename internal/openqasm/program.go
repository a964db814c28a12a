// Package openqasm holds OpenQASM 3 program payloads, program sets that
// batch several parameterized programs into one task, and the gate
// modifiers a device may advertise.
package openqasm

import (
	"encoding/json"

	"github.com/roach88/qschema/internal/batch"
	"github.com/roach88/qschema/internal/lenient"
	"github.com/roach88/qschema/internal/schema"
)

var (
	ProgramHeader    = schema.MustHeader("qschema.ir.openqasm.program", "1")
	ProgramSetHeader = schema.MustHeader("qschema.ir.openqasm.program_set", "1")
)

// Program is OpenQASM source plus optional input values. In a program set
// every input value is a list with one entry per execution.
type Program struct {
	Header schema.Header  `json:"schemaHeader"`
	Source string         `json:"source"`
	Inputs map[string]any `json:"inputs,omitempty"`
}

// NewProgram builds and validates a program with the fixed header.
func NewProgram(source string, inputs map[string]any) (Program, error) {
	p := Program{Header: ProgramHeader, Source: source, Inputs: schema.NilIfEmptyMap(inputs)}
	if err := p.Validate(); err != nil {
		return Program{}, err
	}
	return p, nil
}

func (p Program) SchemaHeader() schema.Header { return p.Header }

func (p Program) Validate() error {
	return schema.First(
		schema.CheckFixed(ProgramHeader, p.Header),
		schema.NotEmpty("source", p.Source),
	)
}

// ParameterValues exposes the inputs to batch counting.
func (p Program) ParameterValues() map[string]any { return p.Inputs }

func (p *Program) UnmarshalJSON(data []byte) error {
	obj, err := schema.Object("", data)
	if err != nil {
		return err
	}
	header, err := schema.FixedHeader(ProgramHeader, obj[schema.HeaderField])
	if err != nil {
		return err
	}
	if err := schema.RequireKeys("", obj, "source"); err != nil {
		return err
	}
	var body struct {
		Source string         `json:"source"`
		Inputs map[string]any `json:"inputs"`
	}
	if err := schema.Decode("", data, &body); err != nil {
		return err
	}
	decoded := Program{Header: header, Source: body.Source, Inputs: body.Inputs}
	if len(decoded.Inputs) == 0 {
		decoded.Inputs = nil
	}
	if err := decoded.Validate(); err != nil {
		return err
	}
	*p = decoded
	return nil
}

// ParseProgram parses and validates a program payload.
func ParseProgram(raw []byte) (Program, lenient.Diagnostics, error) {
	var p Program
	if err := schema.Decode("", raw, &p); err != nil {
		return Program{}, nil, err
	}
	return p, nil, nil
}

// ProgramSet is a batch of programs submitted as one task. Each program
// contributes one execution per index into its input lists.
type ProgramSet struct {
	Header   schema.Header `json:"schemaHeader"`
	Programs []Program     `json:"programs"`
}

// NewProgramSet builds and validates a program set with the fixed header.
func NewProgramSet(programs ...Program) (ProgramSet, error) {
	s := ProgramSet{Header: ProgramSetHeader, Programs: schema.NilIfEmpty(programs)}
	if err := s.Validate(); err != nil {
		return ProgramSet{}, err
	}
	return s, nil
}

func (s ProgramSet) SchemaHeader() schema.Header { return s.Header }

// Validate checks the header, every program, and the input-length
// invariant of every program.
func (s ProgramSet) Validate() error {
	if err := schema.CheckFixed(ProgramSetHeader, s.Header); err != nil {
		return err
	}
	if err := schema.Each("programs", s.Programs, Program.Validate); err != nil {
		return err
	}
	_, err := batch.ExecutionCounts("programs", s.Programs)
	return err
}

// NumPrograms is the number of programs in the set.
func (s ProgramSet) NumPrograms() int { return len(s.Programs) }

// ExecutablesPerProgram returns each program's execution count.
func (s ProgramSet) ExecutablesPerProgram() ([]int, error) {
	return batch.ExecutionCounts("programs", s.Programs)
}

// TotalExecutables is the number of executions the whole set expands to.
func (s ProgramSet) TotalExecutables() (int, error) {
	return batch.TotalExecutionCount("programs", s.Programs)
}

func (s *ProgramSet) UnmarshalJSON(data []byte) error {
	obj, err := schema.Object("", data)
	if err != nil {
		return err
	}
	header, err := schema.FixedHeader(ProgramSetHeader, obj[schema.HeaderField])
	if err != nil {
		return err
	}
	if err := schema.RequireKeys("", obj, "programs"); err != nil {
		return err
	}
	programs, err := schema.DecodeList[Program]("programs", obj["programs"])
	if err != nil {
		return err
	}
	decoded := ProgramSet{Header: header, Programs: programs}
	if err := decoded.Validate(); err != nil {
		return err
	}
	*s = decoded
	return nil
}

// ParseProgramSet parses a program set and enforces the batch invariant.
func ParseProgramSet(raw []byte) (ProgramSet, lenient.Diagnostics, error) {
	var s ProgramSet
	if err := schema.Decode("", raw, &s); err != nil {
		return ProgramSet{}, nil, err
	}
	return s, nil, nil
}

var _ json.Unmarshaler = (*ProgramSet)(nil)
