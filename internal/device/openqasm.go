package device

import (
	"encoding/json"

	"github.com/roach88/qschema/internal/lenient"
	"github.com/roach88/qschema/internal/openqasm"
	"github.com/roach88/qschema/internal/schema"
)

var (
	OpenQASMActionPropertiesHeader           = schema.MustHeader("qschema.device_schema.openqasm_device_action_properties", "1")
	OpenQASMProgramSetActionPropertiesHeader = schema.MustHeader("qschema.device_schema.openqasm_program_set_device_action_properties", "1")
)

// OpenQASMActionProperties advertises the OpenQASM features a device runs.
// Modifiers and result types are read leniently.
type OpenQASMActionProperties struct {
	Header                    schema.Header       `json:"schemaHeader"`
	Version                   []string            `json:"version"`
	ActionType                ActionType          `json:"actionType"`
	SupportedOperations       []string            `json:"supportedOperations"`
	SupportedModifiers        []openqasm.Modifier `json:"supportedModifiers,omitempty"`
	SupportedPragmas          []string            `json:"supportedPragmas,omitempty"`
	ForbiddenPragmas          []string            `json:"forbiddenPragmas,omitempty"`
	SupportedResultTypes      []ResultTypeSupport `json:"supportedResultTypes,omitempty"`
	RequiresAllQubitsMeasured bool                `json:"requiresAllQubitsMeasured"`
	SupportPhysicalQubits     bool                `json:"supportPhysicalQubits"`
}

func (a OpenQASMActionProperties) SchemaHeader() schema.Header { return a.Header }
func (a OpenQASMActionProperties) Type() ActionType            { return a.ActionType }
func (OpenQASMActionProperties) action()                       {}

func (a OpenQASMActionProperties) Validate() error {
	return schema.First(
		schema.CheckFixed(OpenQASMActionPropertiesHeader, a.Header),
		checkVersions(a.Version),
		checkActionType(ActionOpenQASM, a.ActionType),
		schema.Each("supportedOperations", a.SupportedOperations, func(op string) error { return schema.NotEmpty("", op) }),
		openqasm.Modifiers.CheckList("supportedModifiers", a.SupportedModifiers),
		schema.Each("supportedPragmas", a.SupportedPragmas, func(p string) error { return schema.NotEmpty("", p) }),
		schema.Each("forbiddenPragmas", a.ForbiddenPragmas, func(p string) error { return schema.NotEmpty("", p) }),
		schema.Each("supportedResultTypes", a.SupportedResultTypes, ResultTypeSupport.Validate),
	)
}

// SupportsModifier reports whether a modifier of the given kind is advertised.
func (a OpenQASMActionProperties) SupportsModifier(name openqasm.ModifierName) bool {
	for _, m := range a.SupportedModifiers {
		if m.ModifierName() == name {
			return true
		}
	}
	return false
}

func decodeOpenQASMActionProperties(data []byte) (OpenQASMActionProperties, lenient.Diagnostics, error) {
	var body struct {
		Version                   []string        `json:"version"`
		ActionType                ActionType      `json:"actionType"`
		SupportedOperations       []string        `json:"supportedOperations"`
		SupportedModifiers        json.RawMessage `json:"supportedModifiers"`
		SupportedPragmas          []string        `json:"supportedPragmas"`
		ForbiddenPragmas          []string        `json:"forbiddenPragmas"`
		SupportedResultTypes      json.RawMessage `json:"supportedResultTypes"`
		RequiresAllQubitsMeasured bool            `json:"requiresAllQubitsMeasured"`
		SupportPhysicalQubits     bool            `json:"supportPhysicalQubits"`
	}
	header, err := schema.DecodeFixed(OpenQASMActionPropertiesHeader, data, &body, "version", "actionType", "supportedOperations")
	if err != nil {
		return OpenQASMActionProperties{}, nil, err
	}
	modifiers, diags, err := lenient.List("supportedModifiers", body.SupportedModifiers, openqasm.Modifiers.Element)
	if err != nil {
		return OpenQASMActionProperties{}, nil, err
	}
	results, resultDiags, err := lenient.List("supportedResultTypes", body.SupportedResultTypes, decodeResultTypeSupport)
	if err != nil {
		return OpenQASMActionProperties{}, nil, err
	}
	a := OpenQASMActionProperties{
		Header:                    header,
		Version:                   body.Version,
		ActionType:                body.ActionType,
		SupportedOperations:       schema.NilIfEmpty(body.SupportedOperations),
		SupportedModifiers:        modifiers,
		SupportedPragmas:          schema.NilIfEmpty(body.SupportedPragmas),
		ForbiddenPragmas:          schema.NilIfEmpty(body.ForbiddenPragmas),
		SupportedResultTypes:      results,
		RequiresAllQubitsMeasured: body.RequiresAllQubitsMeasured,
		SupportPhysicalQubits:     body.SupportPhysicalQubits,
	}
	if err := a.Validate(); err != nil {
		return OpenQASMActionProperties{}, nil, err
	}
	return a, diags.Merge("", resultDiags), nil
}

func (a OpenQASMActionProperties) MarshalJSON() ([]byte, error) {
	type wire OpenQASMActionProperties
	body := wire(a)
	if body.SupportedOperations == nil {
		body.SupportedOperations = []string{}
	}
	return json.Marshal(body)
}

func (a *OpenQASMActionProperties) UnmarshalJSON(data []byte) error {
	decoded, _, err := decodeOpenQASMActionProperties(data)
	if err != nil {
		return err
	}
	*a = decoded
	return nil
}

// ParseOpenQASMActionProperties parses the properties and reports dropped
// modifiers and result types.
func ParseOpenQASMActionProperties(raw []byte) (OpenQASMActionProperties, lenient.Diagnostics, error) {
	return decodeOpenQASMActionProperties(raw)
}

// OpenQASMProgramSetActionProperties bounds the program sets a device
// accepts.
type OpenQASMProgramSetActionProperties struct {
	Header             schema.Header `json:"schemaHeader"`
	Version            []string      `json:"version"`
	ActionType         ActionType    `json:"actionType"`
	MaximumExecutables int           `json:"maximumExecutables"`
	MaximumTotalShots  int           `json:"maximumTotalShots"`
}

func (a OpenQASMProgramSetActionProperties) SchemaHeader() schema.Header { return a.Header }
func (a OpenQASMProgramSetActionProperties) Type() ActionType            { return a.ActionType }
func (OpenQASMProgramSetActionProperties) action()                       {}

func (a OpenQASMProgramSetActionProperties) Validate() error {
	return schema.First(
		schema.CheckFixed(OpenQASMProgramSetActionPropertiesHeader, a.Header),
		checkVersions(a.Version),
		checkActionType(ActionProgramSet, a.ActionType),
		schema.NonNegative("maximumExecutables", a.MaximumExecutables),
		schema.NonNegative("maximumTotalShots", a.MaximumTotalShots),
	)
}

// Admit checks set against the device limits when every executable runs
// shotsPerExecutable shots.
func (a OpenQASMProgramSetActionProperties) Admit(set openqasm.ProgramSet, shotsPerExecutable int) error {
	if err := schema.NonNegative("shots", shotsPerExecutable); err != nil {
		return err
	}
	total, err := set.TotalExecutables()
	if err != nil {
		return err
	}
	if total > a.MaximumExecutables {
		return schema.FieldConstraint("programs", total, "%d executables exceed the device maximum of %d", total, a.MaximumExecutables)
	}
	if total > 0 && shotsPerExecutable > a.MaximumTotalShots/total {
		return schema.FieldConstraint("shots", shotsPerExecutable,
			"%d executables at %d shots each exceed the device maximum of %d total shots", total, shotsPerExecutable, a.MaximumTotalShots)
	}
	return nil
}

func (a *OpenQASMProgramSetActionProperties) UnmarshalJSON(data []byte) error {
	type wire OpenQASMProgramSetActionProperties
	var body wire
	header, err := schema.DecodeFixed(OpenQASMProgramSetActionPropertiesHeader, data, &body,
		"version", "actionType", "maximumExecutables", "maximumTotalShots")
	if err != nil {
		return err
	}
	decoded := OpenQASMProgramSetActionProperties(body)
	decoded.Header = header
	if err := decoded.Validate(); err != nil {
		return err
	}
	*a = decoded
	return nil
}

func ParseOpenQASMProgramSetActionProperties(raw []byte) (OpenQASMProgramSetActionProperties, lenient.Diagnostics, error) {
	var a OpenQASMProgramSetActionProperties
	if err := schema.Decode("", raw, &a); err != nil {
		return OpenQASMProgramSetActionProperties{}, nil, err
	}
	return a, nil, nil
}
