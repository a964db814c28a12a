// Package jaqcd is the JSON gate-model program format: a flat list of gate
// instructions, optional requested results, and optional basis rotations
// applied before measurement.
//
// Instructions and results are closed tagged unions dispatched on "type"
// through the Instructions and Results tables. An unknown instruction fails
// the whole program: every instruction must be executable.
package jaqcd

import (
	"encoding/json"

	"github.com/roach88/qschema/internal/lenient"
	"github.com/roach88/qschema/internal/schema"
)

// ProgramHeader is the only header a Program accepts.
var ProgramHeader = schema.MustHeader("qschema.ir.jaqcd.program", "1")

// Program is a gate-model circuit.
type Program struct {
	Header                    schema.Header
	Instructions              []Instruction
	Results                   []Result
	BasisRotationInstructions []Instruction
}

// NewProgram builds and validates a program with the fixed header.
func NewProgram(instructions []Instruction, results []Result, basisRotations []Instruction) (Program, error) {
	p := Program{
		Header:                    ProgramHeader,
		Instructions:              schema.NilIfEmpty(instructions),
		Results:                   schema.NilIfEmpty(results),
		BasisRotationInstructions: schema.NilIfEmpty(basisRotations),
	}
	if err := p.Validate(); err != nil {
		return Program{}, err
	}
	return p, nil
}

func (p Program) SchemaHeader() schema.Header { return p.Header }

func (p Program) Validate() error {
	if err := schema.CheckFixed(ProgramHeader, p.Header); err != nil {
		return err
	}
	if err := checkInstructions("instructions", p.Instructions); err != nil {
		return err
	}
	if err := Results.CheckList("results", p.Results); err != nil {
		return err
	}
	if err := schema.Each("results", p.Results, Result.Validate); err != nil {
		return err
	}
	return checkInstructions("basis_rotation_instructions", p.BasisRotationInstructions)
}

func checkInstructions(field string, instructions []Instruction) error {
	if err := Instructions.CheckList(field, instructions); err != nil {
		return err
	}
	return schema.Each(field, instructions, Instruction.Validate)
}

// QubitCount is one more than the highest qubit index any instruction or
// result touches, or 0 for an empty program.
func (p Program) QubitCount() int {
	highest := -1
	for _, in := range append(append([]Instruction{}, p.Instructions...), p.BasisRotationInstructions...) {
		for _, q := range Qubits(in) {
			highest = max(highest, q)
		}
	}
	for _, r := range p.Results {
		for _, g := range r.groups() {
			if t, ok := g.(OptionalMultiTarget); ok {
				for _, q := range t.Targets {
					highest = max(highest, q)
				}
			}
		}
	}
	return highest + 1
}

// Qubits lists the control and target qubits of an instruction in field
// order: controls before targets.
func Qubits(in Instruction) []int {
	var qubits []int
	for _, g := range in.groups() {
		switch g := g.(type) {
		case SingleControl:
			qubits = append(qubits, g.Control)
		case DoubleControl:
			qubits = append(qubits, g.Controls...)
		case SingleTarget:
			qubits = append(qubits, g.Target)
		case DoubleTarget:
			qubits = append(qubits, g.Targets...)
		case MultiTarget:
			qubits = append(qubits, g.Targets...)
		}
	}
	return qubits
}

type programWire struct {
	Header                    schema.Header `json:"schemaHeader"`
	Instructions              []Instruction `json:"instructions"`
	Results                   []Result      `json:"results,omitempty"`
	BasisRotationInstructions []Instruction `json:"basis_rotation_instructions,omitempty"`
}

func (p Program) MarshalJSON() ([]byte, error) {
	w := programWire{
		Header:                    p.Header,
		Instructions:              p.Instructions,
		Results:                   p.Results,
		BasisRotationInstructions: p.BasisRotationInstructions,
	}
	if w.Instructions == nil {
		w.Instructions = []Instruction{}
	}
	return json.Marshal(w)
}

func (p *Program) UnmarshalJSON(data []byte) error {
	obj, err := schema.Object("", data)
	if err != nil {
		return err
	}
	header, err := schema.FixedHeader(ProgramHeader, obj[schema.HeaderField])
	if err != nil {
		return err
	}
	if err := schema.RequireKeys("", obj, "instructions"); err != nil {
		return err
	}
	instructions, err := Instructions.DecodeList("instructions", obj["instructions"])
	if err != nil {
		return err
	}
	results, err := Results.DecodeList("results", obj["results"])
	if err != nil {
		return err
	}
	basis, err := Instructions.DecodeList("basis_rotation_instructions", obj["basis_rotation_instructions"])
	if err != nil {
		return err
	}
	*p = Program{
		Header:                    header,
		Instructions:              instructions,
		Results:                   results,
		BasisRotationInstructions: basis,
	}
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
