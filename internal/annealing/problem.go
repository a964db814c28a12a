// Package annealing holds quantum annealing problems: a QUBO or Ising
// model given as linear biases per qubit and quadratic couplings between
// qubit pairs.
package annealing

import (
	"encoding/json"
	"maps"
	"slices"
	"strconv"

	"github.com/roach88/qschema/internal/lenient"
	"github.com/roach88/qschema/internal/schema"
)

var ProblemHeader = schema.MustHeader("qschema.ir.annealing.problem", "1")

// ProblemType selects the variable domain: {0,1} for QUBO, {-1,+1} for Ising.
type ProblemType string

const (
	QUBO  ProblemType = "QUBO"
	Ising ProblemType = "ISING"
)

type Problem struct {
	Header    schema.Header           `json:"schemaHeader"`
	Type      ProblemType             `json:"type"`
	Linear    map[int]float64         `json:"linear"`
	Quadratic map[int]map[int]float64 `json:"quadratic"`
}

// NewProblem builds and validates a problem with the fixed header.
func NewProblem(typ ProblemType, linear map[int]float64, quadratic map[int]map[int]float64) (Problem, error) {
	p := Problem{
		Header:    ProblemHeader,
		Type:      typ,
		Linear:    schema.NilIfEmptyMap(linear),
		Quadratic: schema.NilIfEmptyMap(quadratic),
	}
	if err := p.Validate(); err != nil {
		return Problem{}, err
	}
	return p, nil
}

func (p Problem) SchemaHeader() schema.Header { return p.Header }

func (p Problem) Validate() error {
	if err := schema.First(
		schema.CheckFixed(ProblemHeader, p.Header),
		schema.OneOf("type", p.Type, QUBO, Ising),
	); err != nil {
		return err
	}
	for _, q := range slices.Sorted(maps.Keys(p.Linear)) {
		bias := p.Linear[q]
		field := schema.Key("linear", strconv.Itoa(q))
		if err := schema.First(schema.NonNegative(field, q), schema.Finite(field, bias)); err != nil {
			return err
		}
	}
	for _, a := range slices.Sorted(maps.Keys(p.Quadratic)) {
		row := p.Quadratic[a]
		for _, b := range slices.Sorted(maps.Keys(row)) {
			coupling := row[b]
			field := schema.Key(schema.Key("quadratic", strconv.Itoa(a)), strconv.Itoa(b))
			if err := schema.First(
				schema.NonNegative(field, a),
				schema.NonNegative(field, b),
				schema.Finite(field, coupling),
			); err != nil {
				return err
			}
		}
	}
	return nil
}

// Qubits lists every qubit index the problem mentions, without duplicates.
func (p Problem) Qubits() []int {
	seen := make(map[int]bool)
	var out []int
	add := func(q int) {
		if !seen[q] {
			seen[q] = true
			out = append(out, q)
		}
	}
	for q := range p.Linear {
		add(q)
	}
	for a, row := range p.Quadratic {
		add(a)
		for b := range row {
			add(b)
		}
	}
	return out
}

func (p Problem) MarshalJSON() ([]byte, error) {
	type wire Problem
	w := wire(p)
	if w.Linear == nil {
		w.Linear = map[int]float64{}
	}
	if w.Quadratic == nil {
		w.Quadratic = map[int]map[int]float64{}
	}
	return json.Marshal(w)
}

func (p *Problem) UnmarshalJSON(data []byte) error {
	obj, err := schema.Object("", data)
	if err != nil {
		return err
	}
	header, err := schema.FixedHeader(ProblemHeader, obj[schema.HeaderField])
	if err != nil {
		return err
	}
	if err := schema.RequireKeys("", obj, "type", "linear", "quadratic"); err != nil {
		return err
	}
	var body struct {
		Type      ProblemType             `json:"type"`
		Linear    map[int]float64         `json:"linear"`
		Quadratic map[int]map[int]float64 `json:"quadratic"`
	}
	if err := schema.Decode("", data, &body); err != nil {
		return err
	}
	decoded := Problem{Header: header, Type: body.Type}
	if len(body.Linear) > 0 {
		decoded.Linear = body.Linear
	}
	if len(body.Quadratic) > 0 {
		decoded.Quadratic = body.Quadratic
	}
	if err := decoded.Validate(); err != nil {
		return err
	}
	*p = decoded
	return nil
}

// ParseProblem parses and validates a problem payload.
func ParseProblem(raw []byte) (Problem, lenient.Diagnostics, error) {
	var p Problem
	if err := schema.Decode("", raw, &p); err != nil {
		return Problem{}, nil, err
	}
	return p, nil, nil
}
