package jaqcd

import (
	"bytes"
	"encoding/json"

	"github.com/roach88/qschema/internal/dispatch"
	"github.com/roach88/qschema/internal/schema"
)

// ResultType is the "type" discriminant of a requested result.
type ResultType string

const (
	ResultAmplitude   ResultType = "amplitude"
	ResultExpectation ResultType = "expectation"
	ResultProbability ResultType = "probability"
	ResultSample      ResultType = "sample"
	ResultStateVector ResultType = "statevector"
	ResultVariance    ResultType = "variance"
)

// Result is a result requested from a program run.
type Result interface {
	ResultType() ResultType
	Validate() error
	groups() []fieldGroup
}

// Amplitude requests the amplitudes of the given basis states.
type Amplitude struct {
	MultiState
}

// Expectation requests the expectation value of an observable.
// Without targets the observable applies to all qubits.
type Expectation struct {
	OptionalMultiTarget
	ObservableSpec
}

// Probability requests the probability of each basis state of the targets.
type Probability struct {
	OptionalMultiTarget
}

type Sample struct {
	OptionalMultiTarget
	ObservableSpec
}

type StateVector struct{}

type Variance struct {
	OptionalMultiTarget
	ObservableSpec
}

func (Amplitude) ResultType() ResultType         { return ResultAmplitude }
func (g Amplitude) groups() []fieldGroup         { return []fieldGroup{g.MultiState} }
func (g Amplitude) Validate() error              { return checkGroups(g.groups()) }
func (g Amplitude) MarshalJSON() ([]byte, error) { return encodeTagged(string(ResultAmplitude), g.groups()) }

func (Expectation) ResultType() ResultType { return ResultExpectation }
func (g Expectation) groups() []fieldGroup {
	return []fieldGroup{g.OptionalMultiTarget, g.ObservableSpec}
}
func (g Expectation) Validate() error { return checkGroups(g.groups()) }
func (g Expectation) MarshalJSON() ([]byte, error) {
	return encodeTagged(string(ResultExpectation), g.groups())
}

func (Probability) ResultType() ResultType { return ResultProbability }
func (g Probability) groups() []fieldGroup { return []fieldGroup{g.OptionalMultiTarget} }
func (g Probability) Validate() error      { return checkGroups(g.groups()) }
func (g Probability) MarshalJSON() ([]byte, error) {
	return encodeTagged(string(ResultProbability), g.groups())
}

func (Sample) ResultType() ResultType { return ResultSample }
func (g Sample) groups() []fieldGroup {
	return []fieldGroup{g.OptionalMultiTarget, g.ObservableSpec}
}
func (g Sample) Validate() error              { return checkGroups(g.groups()) }
func (g Sample) MarshalJSON() ([]byte, error) { return encodeTagged(string(ResultSample), g.groups()) }

func (StateVector) ResultType() ResultType       { return ResultStateVector }
func (StateVector) groups() []fieldGroup         { return nil }
func (StateVector) Validate() error              { return nil }
func (StateVector) MarshalJSON() ([]byte, error) { return encodeTagged(string(ResultStateVector), nil) }

func (Variance) ResultType() ResultType { return ResultVariance }
func (g Variance) groups() []fieldGroup {
	return []fieldGroup{g.OptionalMultiTarget, g.ObservableSpec}
}
func (g Variance) Validate() error { return checkGroups(g.groups()) }
func (g Variance) MarshalJSON() ([]byte, error) {
	return encodeTagged(string(ResultVariance), g.groups())
}

func resultKey(r Result) string { return string(r.ResultType()) }

func resultEntry[R Result](typ ResultType) dispatch.Entry[Result] {
	return dispatch.Entry[Result]{
		Key: string(typ),
		New: func(raw json.RawMessage) (Result, error) {
			v, err := decodeTagged[R](raw)
			if err != nil {
				return nil, err
			}
			return v, nil
		},
	}
}

// Results dispatches on "type" across every requested result type.
var Results = dispatch.Must(dispatch.New("result type", "type", resultKey,
	resultEntry[Amplitude](ResultAmplitude),
	resultEntry[Expectation](ResultExpectation),
	resultEntry[Probability](ResultProbability),
	resultEntry[Sample](ResultSample),
	resultEntry[StateVector](ResultStateVector),
	resultEntry[Variance](ResultVariance),
))

// Observable is a tensor product of factors. It decodes factor by factor
// so a malformed factor is reported at its index.
type Observable []ObservableFactor

func (o *Observable) UnmarshalJSON(data []byte) error {
	factors, err := schema.DecodeList[ObservableFactor]("observable", data)
	if err != nil {
		return err
	}
	*o = factors
	return nil
}

// ObservableFactor is one factor of a tensor-product observable: either a
// named single-qubit observable or an explicit Hermitian matrix of at least
// 2x2 complex entries. Exactly one of Name and Matrix is set.
type ObservableFactor struct {
	Name   string
	Matrix [][][]float64
}

// Named single-qubit observables.
var observableNames = []string{"x", "y", "z", "h", "i"}

func (f ObservableFactor) check() error {
	switch {
	case f.Name != "" && f.Matrix != nil:
		return schema.FieldConstraint("", f.Name, "observable factor is either a name or a matrix, not both")
	case f.Matrix != nil:
		return checkMatrix("", f.Matrix, 2)
	default:
		return schema.OneOf("", f.Name, observableNames...)
	}
}

func (f ObservableFactor) MarshalJSON() ([]byte, error) {
	if f.Matrix != nil {
		return json.Marshal(f.Matrix)
	}
	return json.Marshal(f.Name)
}

func (f *ObservableFactor) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var m [][][]float64
		if err := json.Unmarshal(trimmed, &m); err != nil {
			return schema.FieldConstraint("", string(trimmed), "observable matrix must be rows of [real, imag] pairs")
		}
		*f = ObservableFactor{Matrix: m}
		return nil
	}
	var name string
	if err := json.Unmarshal(trimmed, &name); err != nil {
		return schema.FieldConstraint("", string(trimmed), "observable factor must be a name or a matrix")
	}
	*f = ObservableFactor{Name: name}
	return nil
}
