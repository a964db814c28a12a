package device

import (
	"encoding/json"

	"github.com/roach88/qschema/internal/dispatch"
	"github.com/roach88/qschema/internal/jaqcd"
	"github.com/roach88/qschema/internal/lenient"
	"github.com/roach88/qschema/internal/schema"
)

// ActionType names a program format a device accepts. It doubles as the
// key of Capabilities.Action and as the discriminant of action properties.
type ActionType string

const (
	ActionJaqcd      ActionType = "qschema.ir.jaqcd.program"
	ActionOpenQASM   ActionType = "qschema.ir.openqasm.program"
	ActionProgramSet ActionType = "qschema.ir.openqasm.program_set"
	ActionAnnealing  ActionType = "qschema.ir.annealing.problem"
)

// Action is the properties of one action a device supports.
type Action interface {
	schema.Schema
	Type() ActionType
	action()
}

var ActionPropertiesHeader = schema.MustHeader("qschema.device_schema.device_action_properties", "1")

// ActionProperties is the base action shape: the supported format versions.
// Formats with nothing further to advertise use it directly.
type ActionProperties struct {
	Header     schema.Header `json:"schemaHeader"`
	Version    []string      `json:"version"`
	ActionType ActionType    `json:"actionType"`
}

func (a ActionProperties) SchemaHeader() schema.Header { return a.Header }
func (a ActionProperties) Type() ActionType            { return a.ActionType }
func (ActionProperties) action()                       {}

func (a ActionProperties) Validate() error {
	return schema.First(
		schema.CheckFixed(ActionPropertiesHeader, a.Header),
		checkVersions(a.Version),
		schema.NotEmpty("actionType", string(a.ActionType)),
	)
}

func (a *ActionProperties) UnmarshalJSON(data []byte) error {
	type wire ActionProperties
	var body wire
	header, err := schema.DecodeFixed(ActionPropertiesHeader, data, &body, "version", "actionType")
	if err != nil {
		return err
	}
	decoded := ActionProperties(body)
	decoded.Header = header
	if err := decoded.Validate(); err != nil {
		return err
	}
	*a = decoded
	return nil
}

func checkVersions(versions []string) error {
	if err := schema.MinItems("version", len(versions), 1); err != nil {
		return err
	}
	return schema.Each("version", versions, func(v string) error { return schema.NotEmpty("", v) })
}

func checkActionType(want, got ActionType) error {
	if got != want {
		return schema.FieldConstraint("actionType", string(got), "must be %s", want)
	}
	return nil
}

// ResultTypeSupport advertises one requestable result type and the shot
// range it is available in. Name is a jaqcd result type.
type ResultTypeSupport struct {
	Name        string   `json:"name"`
	Observables []string `json:"observables,omitempty"`
	MinShots    *int     `json:"minShots,omitempty"`
	MaxShots    *int     `json:"maxShots,omitempty"`
}

var observableNames = []string{"x", "y", "z", "h", "i"}

func (r ResultTypeSupport) Validate() error {
	if !jaqcd.Results.Has(r.Name) {
		return schema.UnknownVariant(jaqcd.Results.Set(), "name", r.Name)
	}
	if err := schema.Each("observables", r.Observables, func(o string) error {
		return schema.OneOf("", o, observableNames...)
	}); err != nil {
		return err
	}
	if r.MinShots != nil {
		if err := schema.NonNegative("minShots", *r.MinShots); err != nil {
			return err
		}
	}
	if r.MaxShots != nil {
		if err := schema.NonNegative("maxShots", *r.MaxShots); err != nil {
			return err
		}
	}
	if r.MinShots != nil && r.MaxShots != nil && *r.MinShots > *r.MaxShots {
		return schema.FieldConstraint("maxShots", *r.MaxShots, "must be >= minShots (%d)", *r.MinShots)
	}
	return nil
}

func decodeResultTypeSupport(raw json.RawMessage) (ResultTypeSupport, error) {
	obj, err := schema.Object("", raw)
	if err != nil {
		return ResultTypeSupport{}, err
	}
	if err := schema.RequireKeys("", obj, "name"); err != nil {
		return ResultTypeSupport{}, err
	}
	var r ResultTypeSupport
	if err := schema.Decode("", raw, &r); err != nil {
		return ResultTypeSupport{}, err
	}
	r.Observables = schema.NilIfEmpty(r.Observables)
	return r, r.Validate()
}

// parsedAction carries an action's own lenient diagnostics out of the
// dispatch table, since Capabilities merges them into its own.
type parsedAction struct {
	Action
	diags lenient.Diagnostics
}

func actionEntry[A Action](typ ActionType, parse func([]byte) (A, lenient.Diagnostics, error)) dispatch.Entry[parsedAction] {
	return dispatch.Entry[parsedAction]{
		Key: string(typ),
		New: func(raw json.RawMessage) (parsedAction, error) {
			v, diags, err := parse(raw)
			if err != nil {
				return parsedAction{}, err
			}
			return parsedAction{Action: v, diags: diags}, nil
		},
	}
}

// actions dispatches action properties on "actionType".
var actions = dispatch.Must(dispatch.New("device action", "actionType",
	func(p parsedAction) string { return string(p.Type()) },
	actionEntry(ActionJaqcd, ParseJaqcdActionProperties),
	actionEntry(ActionOpenQASM, ParseOpenQASMActionProperties),
	actionEntry(ActionProgramSet, ParseOpenQASMProgramSetActionProperties),
	actionEntry(ActionAnnealing, ParseActionProperties),
))

// ParseActionProperties parses the base action shape.
func ParseActionProperties(raw []byte) (ActionProperties, lenient.Diagnostics, error) {
	var a ActionProperties
	if err := schema.Decode("", raw, &a); err != nil {
		return ActionProperties{}, nil, err
	}
	return a, nil, nil
}

// ActionTypes lists the action types this catalog understands. Capabilities
// drop actions of any other type.
func ActionTypes() []string { return actions.Keys() }
