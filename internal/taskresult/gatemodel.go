package taskresult

import (
	"encoding/json"
	"reflect"

	"github.com/roach88/qschema/internal/jaqcd"
	"github.com/roach88/qschema/internal/lenient"
	"github.com/roach88/qschema/internal/schema"
)

var GateModelTaskResultHeader = schema.MustHeader("qschema.task_result.gate_model_task_result", "1")

// ResultValue pairs a requested result type with the value computed for
// it: a number, a list or an object, depending on the type.
type ResultValue struct {
	Type  jaqcd.Result
	Value any
}

type resultValueWire struct {
	Type  jaqcd.Result `json:"type"`
	Value any          `json:"value"`
}

func (r ResultValue) Validate() error {
	if err := jaqcd.Results.Check("type", r.Type); err != nil {
		return err
	}
	if err := schema.At("type", r.Type.Validate()); err != nil {
		return err
	}
	return checkResultValue(r.Value)
}

func checkResultValue(v any) error {
	if v == nil {
		return schema.Required("value")
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Slice, reflect.Array, reflect.Map:
		return nil
	}
	return schema.FieldConstraint("value", v, "must be a number, list or object, got %T", v)
}

func (r ResultValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(resultValueWire(r))
}

func (r *ResultValue) UnmarshalJSON(data []byte) error {
	obj, err := schema.Object("", data)
	if err != nil {
		return err
	}
	if err := schema.RequireKeys("", obj, "type", "value"); err != nil {
		return err
	}
	typ, err := jaqcd.Results.Decode("type", obj["type"])
	if err != nil {
		return err
	}
	var value any
	if err := schema.Decode("value", obj["value"], &value); err != nil {
		return err
	}
	decoded := ResultValue{Type: typ, Value: value}
	if err := decoded.Validate(); err != nil {
		return err
	}
	*r = decoded
	return nil
}

// GateModelTaskResult is the output of a gate-model task: raw shots,
// their probabilities, the values of requested result types, or any mix.
type GateModelTaskResult struct {
	Header                   schema.Header      `json:"schemaHeader"`
	Measurements             [][]int            `json:"measurements,omitempty"`
	MeasurementProbabilities map[string]float64 `json:"measurementProbabilities,omitempty"`
	ResultTypes              []ResultValue      `json:"resultTypes,omitempty"`
	MeasuredQubits           []int              `json:"measuredQubits,omitempty"`
	TaskMetadata             TaskMetadata       `json:"taskMetadata"`
	AdditionalMetadata       map[string]any     `json:"additionalMetadata"`
}

func (r GateModelTaskResult) SchemaHeader() schema.Header { return r.Header }

func (r GateModelTaskResult) Validate() error {
	return schema.First(
		schema.CheckFixed(GateModelTaskResultHeader, r.Header),
		checkMeasured(r.Measurements, r.MeasurementProbabilities, r.MeasuredQubits),
		schema.Each("resultTypes", r.ResultTypes, ResultValue.Validate),
		schema.At("taskMetadata", r.TaskMetadata.Validate()),
	)
}

// Counts tallies the measured bit strings.
func (r GateModelTaskResult) Counts() map[string]int { return tally(r.Measurements) }

// Value returns the value computed for the first result type equal to want.
func (r GateModelTaskResult) Value(want jaqcd.Result) (any, bool) {
	for _, rt := range r.ResultTypes {
		if reflect.DeepEqual(rt.Type, want) {
			return rt.Value, true
		}
	}
	return nil, false
}

func (r GateModelTaskResult) MarshalJSON() ([]byte, error) {
	type wire GateModelTaskResult
	body := wire(r)
	if body.AdditionalMetadata == nil {
		body.AdditionalMetadata = map[string]any{}
	}
	return json.Marshal(body)
}

func (r *GateModelTaskResult) UnmarshalJSON(data []byte) error {
	var body struct {
		Measurements             [][]int            `json:"measurements"`
		MeasurementProbabilities map[string]float64 `json:"measurementProbabilities"`
		ResultTypes              json.RawMessage    `json:"resultTypes"`
		MeasuredQubits           []int              `json:"measuredQubits"`
		TaskMetadata             json.RawMessage    `json:"taskMetadata"`
		AdditionalMetadata       map[string]any     `json:"additionalMetadata"`
	}
	header, err := schema.DecodeFixed(GateModelTaskResultHeader, data, &body, "taskMetadata", "additionalMetadata")
	if err != nil {
		return err
	}
	resultTypes, err := schema.DecodeList[ResultValue]("resultTypes", body.ResultTypes)
	if err != nil {
		return err
	}
	var meta TaskMetadata
	if err := schema.Decode("taskMetadata", body.TaskMetadata, &meta); err != nil {
		return err
	}
	decoded := GateModelTaskResult{
		Header:                   header,
		Measurements:             body.Measurements,
		MeasurementProbabilities: schema.NilIfEmptyMap(body.MeasurementProbabilities),
		ResultTypes:              resultTypes,
		MeasuredQubits:           body.MeasuredQubits,
		TaskMetadata:             meta,
		AdditionalMetadata:       schema.NilIfEmptyMap(body.AdditionalMetadata),
	}
	if err := decoded.Validate(); err != nil {
		return err
	}
	*r = decoded
	return nil
}

func ParseGateModelTaskResult(raw []byte) (GateModelTaskResult, lenient.Diagnostics, error) {
	var r GateModelTaskResult
	if err := schema.Decode("", raw, &r); err != nil {
		return GateModelTaskResult{}, nil, err
	}
	return r, nil, nil
}
