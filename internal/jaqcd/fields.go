package jaqcd

import (
	"encoding/json"
	"maps"
	"regexp"

	"github.com/roach88/qschema/internal/schema"
)

// Field groups. Each instruction and result type is a struct embedding the
// groups that make up its shape; encoding/json flattens them into one
// object alongside the "type" discriminant.

type fieldGroup interface {
	requiredKeys() []string
	check() error
}

// SingleTarget is one target qubit.
type SingleTarget struct {
	Target int `json:"target"`
}

func (SingleTarget) requiredKeys() []string { return []string{"target"} }
func (g SingleTarget) check() error         { return schema.NonNegative("target", g.Target) }

// DoubleTarget is exactly two target qubits.
type DoubleTarget struct {
	Targets []int `json:"targets"`
}

func (DoubleTarget) requiredKeys() []string { return []string{"targets"} }
func (g DoubleTarget) check() error {
	return schema.First(
		schema.ExactItems("targets", len(g.Targets), 2),
		schema.NonNegativeAll("targets", g.Targets),
	)
}

// MultiTarget is one or more target qubits.
type MultiTarget struct {
	Targets []int `json:"targets"`
}

func (MultiTarget) requiredKeys() []string { return []string{"targets"} }
func (g MultiTarget) check() error {
	return schema.First(
		schema.MinItems("targets", len(g.Targets), 1),
		schema.NonNegativeAll("targets", g.Targets),
	)
}

// OptionalMultiTarget is absent (all qubits) or one or more target qubits.
type OptionalMultiTarget struct {
	Targets []int `json:"targets,omitempty"`
}

func (OptionalMultiTarget) requiredKeys() []string { return nil }
func (g OptionalMultiTarget) check() error {
	if g.Targets == nil {
		return nil
	}
	return MultiTarget(g).check()
}

// SingleControl is one control qubit.
type SingleControl struct {
	Control int `json:"control"`
}

func (SingleControl) requiredKeys() []string { return []string{"control"} }
func (g SingleControl) check() error         { return schema.NonNegative("control", g.Control) }

// DoubleControl is exactly two control qubits.
type DoubleControl struct {
	Controls []int `json:"controls"`
}

func (DoubleControl) requiredKeys() []string { return []string{"controls"} }
func (g DoubleControl) check() error {
	return schema.First(
		schema.ExactItems("controls", len(g.Controls), 2),
		schema.NonNegativeAll("controls", g.Controls),
	)
}

// Rotation is a finite angle in radians.
type Rotation struct {
	Angle float64 `json:"angle"`
}

func (Rotation) requiredKeys() []string { return []string{"angle"} }
func (g Rotation) check() error         { return schema.Finite("angle", g.Angle) }

// TwoDimensionalMatrix is a complex matrix; each entry is a [real, imag] pair.
type TwoDimensionalMatrix struct {
	Matrix [][][]float64 `json:"matrix"`
}

func (TwoDimensionalMatrix) requiredKeys() []string { return []string{"matrix"} }
func (g TwoDimensionalMatrix) check() error         { return checkMatrix("matrix", g.Matrix, 1) }

// checkMatrix requires at least minDim rows, each with at least minDim
// finite complex pairs.
func checkMatrix(field string, m [][][]float64, minDim int) error {
	if err := schema.MinItems(field, len(m), minDim); err != nil {
		return err
	}
	for i, row := range m {
		rowField := schema.Index(field, i)
		if err := schema.MinItems(rowField, len(row), minDim); err != nil {
			return err
		}
		for j, pair := range row {
			pairField := schema.Index(rowField, j)
			if err := schema.ExactItems(pairField, len(pair), 2); err != nil {
				return err
			}
			for k, x := range pair {
				if err := schema.Finite(schema.Index(pairField, k), x); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// ObservableSpec is the observable a result is measured against: a tensor
// product of one or more factors.
type ObservableSpec struct {
	Observable Observable `json:"observable"`
}

func (ObservableSpec) requiredKeys() []string { return []string{"observable"} }
func (g ObservableSpec) check() error {
	if err := schema.MinItems("observable", len(g.Observable), 1); err != nil {
		return err
	}
	return schema.Each("observable", g.Observable, ObservableFactor.check)
}

// MultiState is one or more computational basis states, e.g. "0110".
type MultiState struct {
	States []string `json:"states"`
}

var basisState = regexp.MustCompile(`^[01]+$`)

func (MultiState) requiredKeys() []string { return []string{"states"} }
func (g MultiState) check() error {
	if err := schema.MinItems("states", len(g.States), 1); err != nil {
		return err
	}
	return schema.Each("states", g.States, func(s string) error {
		return schema.Matches("", s, basisState)
	})
}

func requiredKeys(groups []fieldGroup) []string {
	var keys []string
	for _, g := range groups {
		keys = append(keys, g.requiredKeys()...)
	}
	return keys
}

func checkGroups(groups []fieldGroup) error {
	for _, g := range groups {
		if err := g.check(); err != nil {
			return err
		}
	}
	return nil
}

// encodeTagged renders the groups as one flat object with the discriminant
// under "type".
func encodeTagged(typ string, groups []fieldGroup) ([]byte, error) {
	tag, err := json.Marshal(typ)
	if err != nil {
		return nil, err
	}
	obj := map[string]json.RawMessage{"type": tag}
	for _, g := range groups {
		raw, err := json.Marshal(g)
		if err != nil {
			return nil, err
		}
		var members map[string]json.RawMessage
		if err := json.Unmarshal(raw, &members); err != nil {
			return nil, err
		}
		maps.Copy(obj, members)
	}
	return json.Marshal(obj)
}

// tagged is a variant built from field groups.
type tagged interface {
	groups() []fieldGroup
	Validate() error
}

// decodeTagged requires the groups' keys, decodes the flattened object into
// an M and validates it.
func decodeTagged[M tagged](raw json.RawMessage) (M, error) {
	var v M
	obj, err := schema.Object("", raw)
	if err != nil {
		return v, err
	}
	if err := schema.RequireKeys("", obj, requiredKeys(v.groups())...); err != nil {
		return v, err
	}
	if err := schema.Decode("", raw, &v); err != nil {
		return v, err
	}
	if err := v.Validate(); err != nil {
		return v, err
	}
	return v, nil
}
