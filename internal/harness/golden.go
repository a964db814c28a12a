package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/qschema/internal/schema"
)

// TraceSnapshot is the golden form of a scenario run. Canonical payloads
// are left out; they are covered by the per-package golden files.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Pass         bool         `json:"pass"`
	Trace        []TraceEvent `json:"trace"`
}

func newSnapshot(name string, result *Result) TraceSnapshot {
	trace := make([]TraceEvent, len(result.Trace))
	for i, ev := range result.Trace {
		ev.Payload = nil
		trace[i] = ev
	}
	return TraceSnapshot{ScenarioName: name, Pass: result.Pass, Trace: trace}
}

// Snapshot renders a result as the canonical JSON stored in golden files.
func Snapshot(name string, result *Result) ([]byte, error) {
	return schema.MarshalCanonical(newSnapshot(name, result))
}

// RunWithGolden executes a scenario and compares the trace against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result's trace against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)
	return nil
}
