package taskresult

import (
	"encoding/json"
	"maps"
	"regexp"
	"slices"

	"github.com/roach88/qschema/internal/dispatch"
	"github.com/roach88/qschema/internal/lenient"
	"github.com/roach88/qschema/internal/schema"
)

var (
	ExecutableResultHeader  = schema.MustHeader("qschema.task_result.program_set_executable_result", "1")
	ExecutableFailureHeader = schema.MustHeader("qschema.task_result.program_set_executable_failure", "1")
)

var bitString = regexp.MustCompile(`^[01]+$`)

// Outcome is what one executable of a program set produced: a result or a
// failure. Outcomes are told apart by their schema header.
type Outcome interface {
	schema.Schema
	Index() int
	outcome()
}

// ExecutableResult is the output of a successful executable. Measurements
// hold one row per shot and one column per measured qubit.
type ExecutableResult struct {
	Header                   schema.Header      `json:"schemaHeader"`
	InputsIndex              int                `json:"inputsIndex"`
	Measurements             [][]int            `json:"measurements,omitempty"`
	MeasurementProbabilities map[string]float64 `json:"measurementProbabilities,omitempty"`
	MeasuredQubits           []int              `json:"measuredQubits,omitempty"`
}

func (r ExecutableResult) SchemaHeader() schema.Header { return r.Header }
func (r ExecutableResult) Index() int                  { return r.InputsIndex }
func (ExecutableResult) outcome()                      {}

func (r ExecutableResult) Validate() error {
	if err := schema.First(
		schema.CheckFixed(ExecutableResultHeader, r.Header),
		schema.NonNegative("inputsIndex", r.InputsIndex),
	); err != nil {
		return err
	}
	return checkMeasured(r.Measurements, r.MeasurementProbabilities, r.MeasuredQubits)
}

// checkMeasured validates the optional measurement fields shared by
// executable and gate-model results.
func checkMeasured(measurements [][]int, probabilities map[string]float64, qubits []int) error {
	if measurements != nil {
		if err := schema.MinItems("measurements", len(measurements), 1); err != nil {
			return err
		}
		if err := schema.Each("measurements", measurements, checkShot); err != nil {
			return err
		}
	}
	for _, k := range slices.Sorted(maps.Keys(probabilities)) {
		field := schema.Key("measurementProbabilities", k)
		if err := schema.Matches(field, k, bitString); err != nil {
			return err
		}
		if err := schema.Between(field, probabilities[k], 0, 1); err != nil {
			return err
		}
	}
	if qubits != nil {
		if err := schema.MinItems("measuredQubits", len(qubits), 1); err != nil {
			return err
		}
		if err := schema.NonNegativeAll("measuredQubits", qubits); err != nil {
			return err
		}
	}
	return nil
}

func checkShot(bits []int) error {
	if err := schema.MinItems("", len(bits), 1); err != nil {
		return err
	}
	return schema.Each("", bits, func(b int) error {
		if b != 0 && b != 1 {
			return schema.FieldConstraint("", b, "measurement must be 0 or 1")
		}
		return nil
	})
}

// Counts tallies the measured bit strings.
func (r ExecutableResult) Counts() map[string]int { return tally(r.Measurements) }

func tally(measurements [][]int) map[string]int {
	if len(measurements) == 0 {
		return nil
	}
	counts := make(map[string]int)
	buf := make([]byte, 0, len(measurements[0]))
	for _, shot := range measurements {
		buf = buf[:0]
		for _, b := range shot {
			buf = append(buf, byte('0'+b))
		}
		counts[string(buf)]++
	}
	return counts
}

func (r *ExecutableResult) UnmarshalJSON(data []byte) error {
	type wire ExecutableResult
	var body wire
	header, err := schema.DecodeFixed(ExecutableResultHeader, data, &body, "inputsIndex")
	if err != nil {
		return err
	}
	decoded := ExecutableResult(body)
	decoded.Header = header
	if err := decoded.Validate(); err != nil {
		return err
	}
	*r = decoded
	return nil
}

func ParseExecutableResult(raw []byte) (ExecutableResult, lenient.Diagnostics, error) {
	var r ExecutableResult
	if err := schema.Decode("", raw, &r); err != nil {
		return ExecutableResult{}, nil, err
	}
	return r, nil, nil
}

// FailureCategory is where an executable failed.
type FailureCategory string

const (
	FailureCompilation FailureCategory = "COMPILATION"
	FailureDevice      FailureCategory = "DEVICE"
	FailureService     FailureCategory = "SERVICE"
)

type FailureMetadata struct {
	FailureReason string          `json:"failureReason"`
	Retryable     bool            `json:"retryable"`
	Category      FailureCategory `json:"category"`
}

func (f FailureMetadata) Validate() error {
	return schema.OneOf("category", f.Category, FailureCompilation, FailureDevice, FailureService)
}

func (f *FailureMetadata) UnmarshalJSON(data []byte) error {
	type wire FailureMetadata
	obj, err := schema.Object("", data)
	if err != nil {
		return err
	}
	if err := schema.RequireKeys("", obj, "failureReason", "retryable", "category"); err != nil {
		return err
	}
	var body wire
	if err := schema.Decode("", data, &body); err != nil {
		return err
	}
	decoded := FailureMetadata(body)
	if err := decoded.Validate(); err != nil {
		return err
	}
	*f = decoded
	return nil
}

// ExecutableFailure records an executable that did not produce a result.
type ExecutableFailure struct {
	Header          schema.Header   `json:"schemaHeader"`
	InputsIndex     int             `json:"inputsIndex"`
	FailureMetadata FailureMetadata `json:"failureMetadata"`
}

func (f ExecutableFailure) SchemaHeader() schema.Header { return f.Header }
func (f ExecutableFailure) Index() int                  { return f.InputsIndex }
func (ExecutableFailure) outcome()                      {}

func (f ExecutableFailure) Validate() error {
	return schema.First(
		schema.CheckFixed(ExecutableFailureHeader, f.Header),
		schema.NonNegative("inputsIndex", f.InputsIndex),
		schema.At("failureMetadata", f.FailureMetadata.Validate()),
	)
}

func (f *ExecutableFailure) UnmarshalJSON(data []byte) error {
	var body struct {
		InputsIndex     int             `json:"inputsIndex"`
		FailureMetadata json.RawMessage `json:"failureMetadata"`
	}
	header, err := schema.DecodeFixed(ExecutableFailureHeader, data, &body, "inputsIndex", "failureMetadata")
	if err != nil {
		return err
	}
	var meta FailureMetadata
	if err := schema.Decode("failureMetadata", body.FailureMetadata, &meta); err != nil {
		return err
	}
	decoded := ExecutableFailure{Header: header, InputsIndex: body.InputsIndex, FailureMetadata: meta}
	if err := decoded.Validate(); err != nil {
		return err
	}
	*f = decoded
	return nil
}

func ParseExecutableFailure(raw []byte) (ExecutableFailure, lenient.Diagnostics, error) {
	var f ExecutableFailure
	if err := schema.Decode("", raw, &f); err != nil {
		return ExecutableFailure{}, nil, err
	}
	return f, nil, nil
}

// headerName extracts the schema header name as the discriminant.
func headerName(obj map[string]json.RawMessage) (string, bool, error) {
	raw, ok := obj[schema.HeaderField]
	if !ok || schema.IsAbsent(raw) {
		return "", false, nil
	}
	var h schema.Header
	if err := json.Unmarshal(raw, &h); err != nil {
		return "", false, schema.At(schema.HeaderField, err)
	}
	return h.Name, true, nil
}

func outcomeEntry[O Outcome](h schema.Header) dispatch.Entry[Outcome] {
	return dispatch.Entry[Outcome]{
		Key: h.Name,
		New: func(raw json.RawMessage) (Outcome, error) {
			var o O
			if err := schema.Decode("", raw, &o); err != nil {
				return nil, err
			}
			return o, nil
		},
	}
}

// Outcomes dispatches executable outcomes on their header name.
var Outcomes = dispatch.Must(dispatch.NewKeyed("executable outcome", schema.HeaderField, headerName,
	func(o Outcome) string { return o.SchemaHeader().Name },
	outcomeEntry[ExecutableResult](ExecutableResultHeader),
	outcomeEntry[ExecutableFailure](ExecutableFailureHeader),
))
