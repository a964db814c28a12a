package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/qschema/internal/payload"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Steps resolve one payload each, in order.
	Steps []Step `yaml:"steps"`

	// Assertions relate steps after all of them ran.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step resolves a single payload. Exactly one of Payload and Document is set.
type Step struct {
	// Name identifies the step in assertions.
	Name string `yaml:"name"`

	// Payload is a payload file path, resolved relative to the scenario
	// file by LoadScenario.
	Payload string `yaml:"payload,omitempty"`

	// Document is an inline payload.
	Document any `yaml:"document,omitempty"`

	// Expect validates the resolution outcome. If nil the step must resolve
	// without error.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies a step's expected outcome.
type Expect struct {
	// Type is the resolved Go type, e.g. "jaqcd.Program".
	Type string `yaml:"type,omitempty"`

	// Error is the expected schema error code, e.g. "FIELD_CONSTRAINT".
	// Empty means the step must succeed.
	Error string `yaml:"error,omitempty"`

	// Field is the expected error path (with Error only).
	Field string `yaml:"field,omitempty"`
}

// Assertion relates one or more steps.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Step names the step under test.
	Step string `yaml:"step,omitempty"`

	// Steps lists steps for same_fingerprint.
	Steps []string `yaml:"steps,omitempty"`

	// Paths are the expected dropped element paths (dropped). An empty
	// list asserts nothing was dropped.
	Paths []string `yaml:"paths,omitempty"`

	// Counts and Total are the expected execution counts (executions).
	Counts []int `yaml:"counts,omitempty"`
	Total  int   `yaml:"total,omitempty"`

	// Device names the capabilities step; Shots is per execution (admitted).
	Device string `yaml:"device,omitempty"`
	Shots  int    `yaml:"shots,omitempty"`

	// At is an RFC 3339 instant (available).
	At string `yaml:"at,omitempty"`

	// Expect is the expected boolean outcome (admitted, available).
	Expect *bool `yaml:"expect,omitempty"`

	// Error is the expected schema error code when admission fails.
	Error string `yaml:"error,omitempty"`
}

// Assertion type constants.
const (
	AssertDropped         = "dropped"
	AssertExecutions      = "executions"
	AssertSameFingerprint = "same_fingerprint"
	AssertRoundTrip       = "round_trip"
	AssertAdmitted        = "admitted"
	AssertAvailable       = "available"
)

var assertionTypes = []string{
	AssertDropped, AssertExecutions, AssertSameFingerprint,
	AssertRoundTrip, AssertAdmitted, AssertAvailable,
}

// LoadScenario reads and parses a scenario YAML file. Step payload paths
// are resolved relative to the scenario file. Unknown fields (typos) and
// missing required fields are errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Dir(path)
	for i := range scenario.Steps {
		p := scenario.Steps[i].Payload
		if p != "" && !filepath.IsAbs(p) {
			scenario.Steps[i].Payload = filepath.Join(base, p)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &scenario, nil
}

// LoadScenarios loads every .yaml scenario in dir, ordered by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenarios found in %s", dir)
	}
	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	names := make(map[string]bool, len(s.Steps))
	for i, step := range s.Steps {
		if step.Name == "" {
			return fmt.Errorf("steps[%d]: name is required", i)
		}
		if names[step.Name] {
			return fmt.Errorf("steps[%d]: duplicate step name %q", i, step.Name)
		}
		names[step.Name] = true

		switch {
		case step.Payload == "" && step.Document == nil:
			return fmt.Errorf("steps[%d]: one of payload or document is required", i)
		case step.Payload != "" && step.Document != nil:
			return fmt.Errorf("steps[%d]: payload and document are mutually exclusive", i)
		}
		if step.Payload != "" {
			if _, ok := payload.FormatOf(step.Payload); !ok {
				return fmt.Errorf("steps[%d]: unsupported payload file %s", i, step.Payload)
			}
			if _, err := os.Stat(step.Payload); err != nil {
				return fmt.Errorf("steps[%d]: payload file not found: %s", i, step.Payload)
			}
		}
		if e := step.Expect; e != nil && e.Field != "" && e.Error == "" {
			return fmt.Errorf("steps[%d].expect: field requires error", i)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i], names); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, steps map[string]bool) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if !slices.Contains(assertionTypes, a.Type) {
		return fmt.Errorf("assertions[%d]: unknown type %q (want one of %v)", index, a.Type, assertionTypes)
	}

	known := func(field, name string) error {
		if name == "" {
			return fmt.Errorf("assertions[%d]: %s is required for %s", index, field, a.Type)
		}
		if !steps[name] {
			return fmt.Errorf("assertions[%d]: %s references unknown step %q", index, field, name)
		}
		return nil
	}

	switch a.Type {
	case AssertSameFingerprint:
		if len(a.Steps) < 2 {
			return fmt.Errorf("assertions[%d]: same_fingerprint needs at least 2 steps", index)
		}
		for _, name := range a.Steps {
			if err := known("steps", name); err != nil {
				return err
			}
		}
		return nil
	case AssertAdmitted:
		if err := known("device", a.Device); err != nil {
			return err
		}
	case AssertAvailable:
		if a.At == "" || a.Expect == nil {
			return fmt.Errorf("assertions[%d]: available requires at and expect", index)
		}
	}
	return known("step", a.Step)
}
