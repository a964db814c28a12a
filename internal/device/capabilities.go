package device

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/roach88/qschema/internal/lenient"
	"github.com/roach88/qschema/internal/schema"
)

var CapabilitiesHeader = schema.MustHeader("qschema.device_schema.device_capabilities", "1")

// Capabilities is the full description of a device: its service terms and
// the actions it accepts, keyed by action type. Actions of a type this
// catalog does not know, or with an invalid body, are dropped on parse.
type Capabilities struct {
	Header           schema.Header         `json:"schemaHeader"`
	Service          ServiceProperties     `json:"service"`
	Action           map[ActionType]Action `json:"action"`
	DeviceParameters map[string]any        `json:"deviceParameters,omitempty"`
	Paradigm         map[string]any        `json:"paradigm,omitempty"`
}

func (c Capabilities) SchemaHeader() schema.Header { return c.Header }

func (c Capabilities) Validate() error {
	if err := schema.CheckFixed(CapabilitiesHeader, c.Header); err != nil {
		return err
	}
	if err := schema.At("service", c.Service.Validate()); err != nil {
		return err
	}
	for _, typ := range c.ActionTypes() {
		field := schema.Key("action", string(typ))
		a := c.Action[typ]
		if a == nil || !actions.Has(string(a.Type())) {
			return schema.UnknownVariant(actions.Set(), field, typ)
		}
		if a.Type() != typ {
			return schema.FieldConstraint(field, string(a.Type()), "action keyed %s has actionType %s", typ, a.Type())
		}
		if err := schema.At(field, a.Validate()); err != nil {
			return err
		}
	}
	return nil
}

// ActionTypes lists the supported action types in sorted order.
func (c Capabilities) ActionTypes() []ActionType {
	return slices.Sorted(maps.Keys(c.Action))
}

// Supports reports whether the device accepts actions of typ.
func (c Capabilities) Supports(typ ActionType) bool {
	_, ok := c.Action[typ]
	return ok
}

// ProgramSetLimits returns the device's program-set action, if it has one.
func (c Capabilities) ProgramSetLimits() (OpenQASMProgramSetActionProperties, bool) {
	a, ok := c.Action[ActionProgramSet].(OpenQASMProgramSetActionProperties)
	return a, ok
}

func (c Capabilities) MarshalJSON() ([]byte, error) {
	type wire Capabilities
	body := wire(c)
	if body.Action == nil {
		body.Action = map[ActionType]Action{}
	}
	return json.Marshal(body)
}

func decodeCapabilities(data []byte) (Capabilities, lenient.Diagnostics, error) {
	var body struct {
		Service          json.RawMessage `json:"service"`
		Action           json.RawMessage `json:"action"`
		DeviceParameters map[string]any  `json:"deviceParameters"`
		Paradigm         map[string]any  `json:"paradigm"`
	}
	header, err := schema.DecodeFixed(CapabilitiesHeader, data, &body, "service", "action")
	if err != nil {
		return Capabilities{}, nil, err
	}
	var service ServiceProperties
	if err := schema.Decode("service", body.Service, &service); err != nil {
		return Capabilities{}, nil, err
	}
	parsed, diags, err := lenient.Map("action", body.Action, matchesKey, func(raw json.RawMessage) (parsedAction, error) {
		return actions.Decode("", raw)
	})
	if err != nil {
		return Capabilities{}, nil, err
	}
	c := Capabilities{
		Header:           header,
		Service:          service,
		DeviceParameters: schema.NilIfEmptyMap(body.DeviceParameters),
		Paradigm:         schema.NilIfEmptyMap(body.Paradigm),
	}
	if len(parsed) > 0 {
		c.Action = make(map[ActionType]Action, len(parsed))
	}
	for _, k := range slices.Sorted(maps.Keys(parsed)) {
		c.Action[ActionType(k)] = parsed[k].Action
		diags = diags.Merge(schema.Key("action", k), parsed[k].diags)
	}
	if err := c.Validate(); err != nil {
		return Capabilities{}, nil, err
	}
	return c, diags, nil
}

func matchesKey(k string, p parsedAction) error {
	if k != string(p.Type()) {
		return schema.FieldConstraint("actionType", string(p.Type()), "does not match its key %s", k)
	}
	return nil
}

func (c *Capabilities) UnmarshalJSON(data []byte) error {
	decoded, _, err := decodeCapabilities(data)
	if err != nil {
		return err
	}
	*c = decoded
	return nil
}

// ParseCapabilities parses device capabilities. Dropped actions, and
// elements dropped inside kept actions, are reported as diagnostics.
func ParseCapabilities(raw []byte) (Capabilities, lenient.Diagnostics, error) {
	return decodeCapabilities(raw)
}
