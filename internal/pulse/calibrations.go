// Package pulse holds the native gate calibration catalog: how each native
// gate on each qubit is realized as pulse instructions, and the waveforms
// those instructions play.
package pulse

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/roach88/qschema/internal/dispatch"
	"github.com/roach88/qschema/internal/lenient"
	"github.com/roach88/qschema/internal/schema"
)

var NativeGateCalibrationsHeader = schema.MustHeader("qschema.device_schema.pulse.native_gate_calibrations", "1")

// Argument is a named, typed value passed to a waveform template or a
// calibration instruction.
type Argument struct {
	Name     string `json:"name"`
	Value    any    `json:"value"`
	Type     string `json:"type"`
	Optional bool   `json:"optional"`
}

func (a Argument) Validate() error {
	return schema.First(
		schema.NotEmpty("name", a.Name),
		schema.NotEmpty("type", a.Type),
	)
}

// Calibration is one pulse instruction or pulse function call.
type Calibration struct {
	Name      string     `json:"name"`
	Arguments []Argument `json:"arguments,omitempty"`
}

func (c Calibration) Validate() error {
	return schema.First(
		schema.NotEmpty("name", c.Name),
		schema.Each("arguments", c.Arguments, Argument.Validate),
	)
}

// NativeGate is the calibrated realization of one gate on a qubit tuple.
type NativeGate struct {
	Name         string        `json:"name"`
	Qubits       []string      `json:"qubits"`
	Arguments    []string      `json:"arguments"`
	Calibrations []Calibration `json:"calibrations"`
}

func (g NativeGate) Validate() error {
	return schema.First(
		schema.NotEmpty("name", g.Name),
		schema.MinItems("qubits", len(g.Qubits), 1),
		schema.Each("qubits", g.Qubits, func(q string) error { return schema.NotEmpty("", q) }),
		schema.Each("calibrations", g.Calibrations, Calibration.Validate),
	)
}

func (g NativeGate) MarshalJSON() ([]byte, error) {
	type wire NativeGate
	body := wire(g)
	if body.Qubits == nil {
		body.Qubits = []string{}
	}
	if body.Arguments == nil {
		body.Arguments = []string{}
	}
	if body.Calibrations == nil {
		body.Calibrations = []Calibration{}
	}
	return json.Marshal(body)
}

func (g *NativeGate) UnmarshalJSON(data []byte) error {
	type wire NativeGate
	obj, err := schema.Object("", data)
	if err != nil {
		return err
	}
	if err := schema.RequireKeys("", obj, "name", "qubits", "arguments", "calibrations"); err != nil {
		return err
	}
	var body wire
	if err := schema.Decode("", data, &body); err != nil {
		return err
	}
	decoded := NativeGate(body)
	if len(decoded.Arguments) == 0 {
		decoded.Arguments = nil
	}
	if len(decoded.Calibrations) == 0 {
		decoded.Calibrations = nil
	}
	for i := range decoded.Calibrations {
		if len(decoded.Calibrations[i].Arguments) == 0 {
			decoded.Calibrations[i].Arguments = nil
		}
	}
	if err := decoded.Validate(); err != nil {
		return err
	}
	*g = decoded
	return nil
}

// WaveformType is the "type" discriminant of a waveform.
type WaveformType string

const (
	WaveformTemplate  WaveformType = "template"
	WaveformArbitrary WaveformType = "arbitrary"
)

// Waveform is a pulse envelope referenced by calibrations through its id.
type Waveform interface {
	WaveformType() WaveformType
	ID() string
	Validate() error
	waveform()
}

// TemplateWaveform is a parameterized library waveform, e.g. a gaussian.
type TemplateWaveform struct {
	WaveformID string     `json:"waveformId"`
	Name       string     `json:"name"`
	Arguments  []Argument `json:"arguments"`
}

// ArbitraryWaveform lists its complex amplitudes as (re, im) pairs.
type ArbitraryWaveform struct {
	WaveformID string       `json:"waveformId"`
	Amplitudes [][2]float64 `json:"amplitudes"`
}

func (TemplateWaveform) WaveformType() WaveformType  { return WaveformTemplate }
func (ArbitraryWaveform) WaveformType() WaveformType { return WaveformArbitrary }
func (w TemplateWaveform) ID() string                { return w.WaveformID }
func (w ArbitraryWaveform) ID() string               { return w.WaveformID }
func (TemplateWaveform) waveform()                   {}
func (ArbitraryWaveform) waveform()                  {}

func (w TemplateWaveform) Validate() error {
	return schema.First(
		schema.NotEmpty("waveformId", w.WaveformID),
		schema.NotEmpty("name", w.Name),
		schema.Each("arguments", w.Arguments, Argument.Validate),
	)
}

func (w ArbitraryWaveform) Validate() error {
	if err := schema.NotEmpty("waveformId", w.WaveformID); err != nil {
		return err
	}
	return schema.Each("amplitudes", w.Amplitudes, func(a [2]float64) error {
		return schema.First(schema.Finite("[0]", a[0]), schema.Finite("[1]", a[1]))
	})
}

func (w TemplateWaveform) MarshalJSON() ([]byte, error) {
	type wire TemplateWaveform
	body := wire(w)
	if body.Arguments == nil {
		body.Arguments = []Argument{}
	}
	return json.Marshal(struct {
		Type WaveformType `json:"type"`
		wire
	}{WaveformTemplate, body})
}

func (w ArbitraryWaveform) MarshalJSON() ([]byte, error) {
	type wire ArbitraryWaveform
	body := wire(w)
	if body.Amplitudes == nil {
		body.Amplitudes = [][2]float64{}
	}
	return json.Marshal(struct {
		Type WaveformType `json:"type"`
		wire
	}{WaveformArbitrary, body})
}

func waveformEntry[W Waveform](typ WaveformType, required ...string) dispatch.Entry[Waveform] {
	return dispatch.Entry[Waveform]{
		Key: string(typ),
		New: func(raw json.RawMessage) (Waveform, error) {
			obj, err := schema.Object("", raw)
			if err != nil {
				return nil, err
			}
			if err := schema.RequireKeys("", obj, required...); err != nil {
				return nil, err
			}
			var w W
			if err := schema.Decode("", raw, &w); err != nil {
				return nil, err
			}
			w = normalize(w).(W)
			if err := w.Validate(); err != nil {
				return nil, err
			}
			return w, nil
		},
	}
}

func normalize(w Waveform) Waveform {
	switch v := w.(type) {
	case TemplateWaveform:
		if len(v.Arguments) == 0 {
			v.Arguments = nil
		}
		return v
	case ArbitraryWaveform:
		if len(v.Amplitudes) == 0 {
			v.Amplitudes = nil
		}
		return v
	}
	return w
}

// Waveforms dispatches on "type".
var Waveforms = dispatch.Must(dispatch.New("waveform", "type",
	func(w Waveform) string { return string(w.WaveformType()) },
	waveformEntry[TemplateWaveform](WaveformTemplate, "waveformId", "name", "arguments"),
	waveformEntry[ArbitraryWaveform](WaveformArbitrary, "waveformId", "amplitudes"),
))

// NativeGateCalibrations maps qubit → gate name → calibrated gates, plus
// the waveform library. Waveforms are read leniently: an entry of an
// unknown type, or whose id differs from its key, is dropped.
type NativeGateCalibrations struct {
	Header    schema.Header                      `json:"schemaHeader"`
	Gates     map[string]map[string][]NativeGate `json:"gates"`
	Waveforms map[string]Waveform                `json:"waveforms"`
}

func (c NativeGateCalibrations) SchemaHeader() schema.Header { return c.Header }

func (c NativeGateCalibrations) Validate() error {
	if err := schema.CheckFixed(NativeGateCalibrationsHeader, c.Header); err != nil {
		return err
	}
	for _, qubit := range slices.Sorted(maps.Keys(c.Gates)) {
		byName := c.Gates[qubit]
		for _, name := range slices.Sorted(maps.Keys(byName)) {
			field := schema.Key(schema.Key("gates", qubit), name)
			if err := schema.Each(field, byName[name], NativeGate.Validate); err != nil {
				return err
			}
		}
	}
	for _, id := range slices.Sorted(maps.Keys(c.Waveforms)) {
		field := schema.Key("waveforms", id)
		w := c.Waveforms[id]
		if err := Waveforms.Check(field, w); err != nil {
			return err
		}
		if err := matchesID(id, w); err != nil {
			return schema.At(field, err)
		}
		if err := schema.At(field, w.Validate()); err != nil {
			return err
		}
	}
	return nil
}

// Gate returns the calibrations of gate name on qubit.
func (c NativeGateCalibrations) Gate(qubit, name string) ([]NativeGate, bool) {
	g, ok := c.Gates[qubit][name]
	return g, ok
}

// UnresolvedWaveforms lists waveform ids referenced by calibration
// arguments of type "waveform" that are absent from the library.
func (c NativeGateCalibrations) UnresolvedWaveforms() []string {
	seen := map[string]bool{}
	var missing []string
	for _, byName := range c.Gates {
		for _, gates := range byName {
			for _, g := range gates {
				for _, cal := range g.Calibrations {
					for _, arg := range cal.Arguments {
						id, ok := arg.Value.(string)
						if arg.Type != "waveform" || !ok || seen[id] {
							continue
						}
						seen[id] = true
						if _, found := c.Waveforms[id]; !found {
							missing = append(missing, id)
						}
					}
				}
			}
		}
	}
	slices.Sort(missing)
	return missing
}

func matchesID(key string, w Waveform) error {
	if w.ID() != key {
		return schema.FieldConstraint("waveformId", w.ID(), "does not match its key %s", key)
	}
	return nil
}

func (c NativeGateCalibrations) MarshalJSON() ([]byte, error) {
	type wire NativeGateCalibrations
	body := wire(c)
	if body.Gates == nil {
		body.Gates = map[string]map[string][]NativeGate{}
	}
	if body.Waveforms == nil {
		body.Waveforms = map[string]Waveform{}
	}
	return json.Marshal(body)
}

func decodeNativeGateCalibrations(data []byte) (NativeGateCalibrations, lenient.Diagnostics, error) {
	var body struct {
		Gates     json.RawMessage `json:"gates"`
		Waveforms json.RawMessage `json:"waveforms"`
	}
	header, err := schema.DecodeFixed(NativeGateCalibrationsHeader, data, &body, "gates", "waveforms")
	if err != nil {
		return NativeGateCalibrations{}, nil, err
	}
	gates, err := decodeGates(body.Gates)
	if err != nil {
		return NativeGateCalibrations{}, nil, err
	}
	waveforms, diags, err := lenient.Map("waveforms", body.Waveforms, matchesID, Waveforms.Element)
	if err != nil {
		return NativeGateCalibrations{}, nil, err
	}
	c := NativeGateCalibrations{Header: header, Gates: gates, Waveforms: waveforms}
	if err := c.Validate(); err != nil {
		return NativeGateCalibrations{}, nil, err
	}
	return c, diags, nil
}

func decodeGates(raw json.RawMessage) (map[string]map[string][]NativeGate, error) {
	var byQubit map[string]map[string]json.RawMessage
	if err := schema.Decode("gates", raw, &byQubit); err != nil {
		return nil, err
	}
	if len(byQubit) == 0 {
		return nil, nil
	}
	gates := make(map[string]map[string][]NativeGate, len(byQubit))
	for _, qubit := range slices.Sorted(maps.Keys(byQubit)) {
		byName := byQubit[qubit]
		gates[qubit] = make(map[string][]NativeGate, len(byName))
		for _, name := range slices.Sorted(maps.Keys(byName)) {
			decoded, err := schema.DecodeList[NativeGate](schema.Key(schema.Key("gates", qubit), name), byName[name])
			if err != nil {
				return nil, err
			}
			if decoded == nil {
				decoded = []NativeGate{}
			}
			gates[qubit][name] = decoded
		}
	}
	return gates, nil
}

func (c *NativeGateCalibrations) UnmarshalJSON(data []byte) error {
	decoded, _, err := decodeNativeGateCalibrations(data)
	if err != nil {
		return err
	}
	*c = decoded
	return nil
}

// ParseNativeGateCalibrations parses calibrations and reports dropped
// waveforms.
func ParseNativeGateCalibrations(raw []byte) (NativeGateCalibrations, lenient.Diagnostics, error) {
	return decodeNativeGateCalibrations(raw)
}
