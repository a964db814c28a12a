package openqasm

import (
	"encoding/json"

	"github.com/roach88/qschema/internal/dispatch"
	"github.com/roach88/qschema/internal/schema"
)

// ModifierName is the "name" discriminant of a gate modifier.
type ModifierName string

const (
	ModifierControl    ModifierName = "ctrl"
	ModifierNegControl ModifierName = "negctrl"
	ModifierPower      ModifierName = "pow"
	ModifierInverse    ModifierName = "inv"
)

// Modifier describes a gate modifier a device supports.
type Modifier interface {
	ModifierName() ModifierName
	Validate() error
	modifier()
}

// Control is the ctrl @ modifier. MaxQubits bounds the number of added
// controls when set.
type Control struct {
	MaxQubits *int `json:"max_qubits,omitempty"`
}

// NegControl is the negctrl @ modifier.
type NegControl struct {
	MaxQubits *int `json:"max_qubits,omitempty"`
}

// ExponentType is a numeric kind a pow @ modifier accepts.
type ExponentType string

const (
	ExponentInt   ExponentType = "int"
	ExponentFloat ExponentType = "float"
)

// Power is the pow(k) @ modifier.
type Power struct {
	ExponentTypes []ExponentType `json:"exponent_types"`
}

// Inverse is the inv @ modifier.
type Inverse struct{}

func (Control) ModifierName() ModifierName    { return ModifierControl }
func (NegControl) ModifierName() ModifierName { return ModifierNegControl }
func (Power) ModifierName() ModifierName      { return ModifierPower }
func (Inverse) ModifierName() ModifierName    { return ModifierInverse }

func (Control) modifier()    {}
func (NegControl) modifier() {}
func (Power) modifier()      {}
func (Inverse) modifier()    {}

func (m Control) Validate() error    { return checkMaxQubits(m.MaxQubits) }
func (m NegControl) Validate() error { return checkMaxQubits(m.MaxQubits) }
func (Inverse) Validate() error      { return nil }

func (m Power) Validate() error {
	if err := schema.MinItems("exponent_types", len(m.ExponentTypes), 1); err != nil {
		return err
	}
	return schema.Each("exponent_types", m.ExponentTypes, func(e ExponentType) error {
		return schema.OneOf("", e, ExponentInt, ExponentFloat)
	})
}

func checkMaxQubits(n *int) error {
	if n == nil {
		return nil
	}
	return schema.NonNegative("max_qubits", *n)
}

func (m Control) MarshalJSON() ([]byte, error) {
	type body Control
	return marshalNamed(ModifierControl, body(m))
}

func (m NegControl) MarshalJSON() ([]byte, error) {
	type body NegControl
	return marshalNamed(ModifierNegControl, body(m))
}

func (m Power) MarshalJSON() ([]byte, error) {
	type body Power
	return marshalNamed(ModifierPower, body(m))
}

func (Inverse) MarshalJSON() ([]byte, error) {
	return marshalNamed(ModifierInverse, struct{}{})
}

// marshalNamed renders body with the "name" discriminant added.
func marshalNamed(name ModifierName, body any) ([]byte, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	obj["name"], _ = json.Marshal(name)
	return json.Marshal(obj)
}

func modifierEntry[M Modifier](name ModifierName, required ...string) dispatch.Entry[Modifier] {
	return dispatch.Entry[Modifier]{
		Key: string(name),
		New: func(raw json.RawMessage) (Modifier, error) {
			obj, err := schema.Object("", raw)
			if err != nil {
				return nil, err
			}
			if err := schema.RequireKeys("", obj, required...); err != nil {
				return nil, err
			}
			var m M
			if err := schema.Decode("", raw, &m); err != nil {
				return nil, err
			}
			if err := m.Validate(); err != nil {
				return nil, err
			}
			return m, nil
		},
	}
}

// Modifiers dispatches on "name" across the known gate modifiers.
var Modifiers = dispatch.Must(dispatch.New("modifier", "name",
	func(m Modifier) string { return string(m.ModifierName()) },
	modifierEntry[Control](ModifierControl),
	modifierEntry[NegControl](ModifierNegControl),
	modifierEntry[Power](ModifierPower, "exponent_types"),
	modifierEntry[Inverse](ModifierInverse),
))
