// Package harness runs conformance scenarios against the payload catalog.
//
// A scenario resolves a series of payloads, checks each against an expected
// outcome, then evaluates assertions that relate steps to one another.
//
// # Scenario Format
//
//	name: scenario_name
//	description: "What this scenario validates"
//	steps:
//	  - name: bell
//	    payload: ../payloads/bell.json   # relative to the scenario file
//	    expect:
//	      type: jaqcd.Program
//	  - name: negative_target
//	    document:                       # inline payload, any YAML
//	      schemaHeader: {name: qschema.ir.jaqcd.program, version: "1"}
//	      instructions: [{type: h, target: -1}]
//	    expect:
//	      error: FIELD_CONSTRAINT
//	      field: instructions[0].target
//	assertions:
//	  - type: dropped
//	    step: device
//	    paths: ['action["x"]']
//	  - type: executions
//	    step: set
//	    counts: [2, 1]
//	    total: 3
//
// # Assertion Types
//
//   - dropped: the step dropped exactly the listed lenient element paths
//   - executions: per-program execution counts and their total
//   - same_fingerprint: every listed step has the same content fingerprint
//   - round_trip: serializing and re-parsing the step yields the same value
//   - admitted: a program-set step checked against a device step's limits
//   - available: a device step's execution windows at a given instant
//
// # Deterministic Testing
//
// Steps are numbered from a fixed sequence and the trace snapshot is
// canonical JSON, so a scenario's trace is byte-stable and can be compared
// against testdata/golden/{name}.golden.
package harness
