package harness

import (
	"fmt"
	"reflect"
	"slices"
	"time"

	"github.com/roach88/qschema/internal/catalog"
	"github.com/roach88/qschema/internal/device"
	"github.com/roach88/qschema/internal/openqasm"
	"github.com/roach88/qschema/internal/schema"
)

// AssertionError provides detailed context for assertion failures.
type AssertionError struct {
	Type     string
	Expected any
	Actual   any
	Trace    []TraceEvent
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s assertion failed: expected %v, got %v", e.Type, e.Expected, e.Actual)
}

// EvaluateAssertions checks every assertion against the step outcomes and
// returns one message per failure.
func EvaluateAssertions(assertions []Assertion, outcomes map[string]outcome, trace []TraceEvent) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(a, outcomes, trace); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}
	return errs
}

func evaluateAssertion(a Assertion, outcomes map[string]outcome, trace []TraceEvent) error {
	switch a.Type {
	case AssertDropped:
		return assertDropped(a, outcomes, trace)
	case AssertExecutions:
		return assertExecutions(a, outcomes, trace)
	case AssertSameFingerprint:
		return assertSameFingerprint(a, outcomes, trace)
	case AssertRoundTrip:
		return assertRoundTrip(a, outcomes)
	case AssertAdmitted:
		return assertAdmitted(a, outcomes, trace)
	case AssertAvailable:
		return assertAvailable(a, outcomes, trace)
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
}

// resolved returns the parsed value of a step that must have succeeded.
func resolved(outcomes map[string]outcome, step string) (schema.Schema, outcome, error) {
	o, ok := outcomes[step]
	if !ok {
		return nil, o, fmt.Errorf("step %q did not run", step)
	}
	if o.err != nil {
		return nil, o, fmt.Errorf("step %q failed: %w", step, o.err)
	}
	return o.res.Value, o, nil
}

// assertDropped compares the step's dropped element paths in order.
func assertDropped(a Assertion, outcomes map[string]outcome, trace []TraceEvent) error {
	_, o, err := resolved(outcomes, a.Step)
	if err != nil {
		return err
	}
	got := make([]string, 0, len(o.res.Diagnostics))
	for _, d := range o.res.Diagnostics {
		got = append(got, d.Path())
	}
	want := a.Paths
	if want == nil {
		want = []string{}
	}
	if !slices.Equal(want, got) {
		return &AssertionError{Type: a.Type, Expected: want, Actual: got, Trace: trace}
	}
	return nil
}

// assertExecutions checks per-program and total execution counts.
func assertExecutions(a Assertion, outcomes map[string]outcome, trace []TraceEvent) error {
	v, _, err := resolved(outcomes, a.Step)
	if err != nil {
		return err
	}
	counts, total, err := catalog.ExecutionCounts(v)
	if err != nil {
		return err
	}
	if a.Counts != nil && !slices.Equal(a.Counts, counts) {
		return &AssertionError{Type: a.Type, Expected: a.Counts, Actual: counts, Trace: trace}
	}
	if total != a.Total {
		return &AssertionError{Type: a.Type, Expected: a.Total, Actual: total, Trace: trace}
	}
	return nil
}

// assertSameFingerprint checks that every listed step serializes to the
// same canonical bytes.
func assertSameFingerprint(a Assertion, outcomes map[string]outcome, trace []TraceEvent) error {
	var first string
	for i, step := range a.Steps {
		v, _, err := resolved(outcomes, step)
		if err != nil {
			return err
		}
		fp, err := schema.Fingerprint(v)
		if err != nil {
			return err
		}
		if i == 0 {
			first = fp
			continue
		}
		if fp != first {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%s=%s", a.Steps[0], first),
				Actual:   fmt.Sprintf("%s=%s", step, fp),
				Trace:    trace,
			}
		}
	}
	return nil
}

// assertRoundTrip re-parses the step's serialization and compares values.
func assertRoundTrip(a Assertion, outcomes map[string]outcome) error {
	v, o, err := resolved(outcomes, a.Step)
	if err != nil {
		return err
	}
	out, err := schema.Serialize(v)
	if err != nil {
		return err
	}
	back, _, err := o.res.Descriptor.Parse(out)
	if err != nil {
		return fmt.Errorf("re-parse: %w", err)
	}
	if !reflect.DeepEqual(v, back) {
		return &AssertionError{Type: a.Type, Expected: v, Actual: back}
	}
	return nil
}

// assertAdmitted checks a program set against a device's program-set limits.
func assertAdmitted(a Assertion, outcomes map[string]outcome, trace []TraceEvent) error {
	v, _, err := resolved(outcomes, a.Step)
	if err != nil {
		return err
	}
	set, ok := v.(openqasm.ProgramSet)
	if !ok {
		return fmt.Errorf("step %q is %T, not a program set", a.Step, v)
	}
	limits, err := programSetLimits(outcomes, a.Device)
	if err != nil {
		return err
	}

	admitErr := limits.Admit(set, a.Shots)
	want := a.Expect == nil || *a.Expect
	switch {
	case want && admitErr != nil:
		return &AssertionError{Type: a.Type, Expected: "admitted", Actual: admitErr.Error(), Trace: trace}
	case !want && admitErr == nil:
		return &AssertionError{Type: a.Type, Expected: "rejected", Actual: "admitted", Trace: trace}
	case !want && a.Error != "" && string(schema.CodeOf(admitErr)) != a.Error:
		return &AssertionError{Type: a.Type, Expected: a.Error, Actual: admitErr.Error(), Trace: trace}
	}
	return nil
}

func capabilities(outcomes map[string]outcome, step string) (device.Capabilities, error) {
	v, _, err := resolved(outcomes, step)
	if err != nil {
		return device.Capabilities{}, err
	}
	caps, ok := v.(device.Capabilities)
	if !ok {
		return device.Capabilities{}, fmt.Errorf("step %q is %T, not device capabilities", step, v)
	}
	return caps, nil
}

func programSetLimits(outcomes map[string]outcome, step string) (device.OpenQASMProgramSetActionProperties, error) {
	caps, err := capabilities(outcomes, step)
	if err != nil {
		return device.OpenQASMProgramSetActionProperties{}, err
	}
	limits, ok := caps.ProgramSetLimits()
	if !ok {
		return device.OpenQASMProgramSetActionProperties{}, fmt.Errorf("device %q has no program set action", step)
	}
	return limits, nil
}

// assertAvailable checks the device's execution windows at an instant.
func assertAvailable(a Assertion, outcomes map[string]outcome, trace []TraceEvent) error {
	caps, err := capabilities(outcomes, a.Step)
	if err != nil {
		return err
	}
	at, err := time.Parse(time.RFC3339, a.At)
	if err != nil {
		return fmt.Errorf("invalid at %q: %w", a.At, err)
	}
	if got := caps.Service.Available(at); got != *a.Expect {
		return &AssertionError{Type: a.Type, Expected: *a.Expect, Actual: got, Trace: trace}
	}
	return nil
}
