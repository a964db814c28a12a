package device

import (
	"encoding/json"

	"github.com/roach88/qschema/internal/jaqcd"
	"github.com/roach88/qschema/internal/lenient"
	"github.com/roach88/qschema/internal/schema"
)

var JaqcdActionPropertiesHeader = schema.MustHeader("qschema.device_schema.jaqcd_device_action_properties", "1")

// JaqcdActionProperties advertises which jaqcd instructions and result
// types a device runs.
type JaqcdActionProperties struct {
	Header               schema.Header       `json:"schemaHeader"`
	Version              []string            `json:"version"`
	ActionType           ActionType          `json:"actionType"`
	SupportedOperations  []string            `json:"supportedOperations"`
	SupportedResultTypes []ResultTypeSupport `json:"supportedResultTypes,omitempty"`
}

func (a JaqcdActionProperties) SchemaHeader() schema.Header { return a.Header }
func (a JaqcdActionProperties) Type() ActionType            { return a.ActionType }
func (JaqcdActionProperties) action()                       {}

func (a JaqcdActionProperties) Validate() error {
	return schema.First(
		schema.CheckFixed(JaqcdActionPropertiesHeader, a.Header),
		checkVersions(a.Version),
		checkActionType(ActionJaqcd, a.ActionType),
		schema.Each("supportedOperations", a.SupportedOperations, func(op string) error {
			if !jaqcd.Instructions.Has(op) {
				return schema.UnknownVariant(jaqcd.Instructions.Set(), "", op)
			}
			return nil
		}),
		schema.Each("supportedResultTypes", a.SupportedResultTypes, ResultTypeSupport.Validate),
	)
}

// Supports reports whether every instruction and result of p is advertised.
func (a JaqcdActionProperties) Supports(p jaqcd.Program) error {
	ops := make(map[string]bool, len(a.SupportedOperations))
	for _, op := range a.SupportedOperations {
		ops[op] = true
	}
	check := func(field string, instructions []jaqcd.Instruction) error {
		return schema.Each(field, instructions, func(in jaqcd.Instruction) error {
			if !ops[string(in.InstructionType())] {
				return schema.FieldConstraint("type", string(in.InstructionType()), "instruction not supported by device")
			}
			return nil
		})
	}
	if err := check("instructions", p.Instructions); err != nil {
		return err
	}
	if err := check("basis_rotation_instructions", p.BasisRotationInstructions); err != nil {
		return err
	}
	results := make(map[string]bool, len(a.SupportedResultTypes))
	for _, r := range a.SupportedResultTypes {
		results[r.Name] = true
	}
	return schema.Each("results", p.Results, func(r jaqcd.Result) error {
		if !results[string(r.ResultType())] {
			return schema.FieldConstraint("type", string(r.ResultType()), "result type not supported by device")
		}
		return nil
	})
}

func decodeJaqcdActionProperties(data []byte) (JaqcdActionProperties, lenient.Diagnostics, error) {
	var body struct {
		Version              []string        `json:"version"`
		ActionType           ActionType      `json:"actionType"`
		SupportedOperations  []string        `json:"supportedOperations"`
		SupportedResultTypes json.RawMessage `json:"supportedResultTypes"`
	}
	header, err := schema.DecodeFixed(JaqcdActionPropertiesHeader, data, &body, "version", "actionType", "supportedOperations")
	if err != nil {
		return JaqcdActionProperties{}, nil, err
	}
	results, diags, err := lenient.List("supportedResultTypes", body.SupportedResultTypes, decodeResultTypeSupport)
	if err != nil {
		return JaqcdActionProperties{}, nil, err
	}
	a := JaqcdActionProperties{
		Header:               header,
		Version:              body.Version,
		ActionType:           body.ActionType,
		SupportedOperations:  schema.NilIfEmpty(body.SupportedOperations),
		SupportedResultTypes: results,
	}
	if err := a.Validate(); err != nil {
		return JaqcdActionProperties{}, nil, err
	}
	return a, diags, nil
}

func (a JaqcdActionProperties) MarshalJSON() ([]byte, error) {
	type wire JaqcdActionProperties
	body := wire(a)
	if body.SupportedOperations == nil {
		body.SupportedOperations = []string{}
	}
	return json.Marshal(body)
}

func (a *JaqcdActionProperties) UnmarshalJSON(data []byte) error {
	decoded, _, err := decodeJaqcdActionProperties(data)
	if err != nil {
		return err
	}
	*a = decoded
	return nil
}

// ParseJaqcdActionProperties parses the properties and reports dropped
// result types.
func ParseJaqcdActionProperties(raw []byte) (JaqcdActionProperties, lenient.Diagnostics, error) {
	return decodeJaqcdActionProperties(raw)
}
