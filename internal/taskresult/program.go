package taskresult

import (
	"encoding/json"

	"github.com/roach88/qschema/internal/lenient"
	"github.com/roach88/qschema/internal/openqasm"
	"github.com/roach88/qschema/internal/schema"
)

var ProgramResultHeader = schema.MustHeader("qschema.task_result.program_result", "1")

// ProgramResult gathers the outcomes of every executable of one program in
// a program set. ExecutablePaths and Executables are alternatives: results
// stored as separate documents, or inline.
type ProgramResult struct {
	Header             schema.Header
	ExecutablePaths    []string
	Executables        []Outcome
	Source             Ref[openqasm.Program]
	AdditionalMetadata map[string]any
}

type programResultWire struct {
	Header             schema.Header         `json:"schemaHeader"`
	ExecutableResults  any                   `json:"executableResults"`
	Source             Ref[openqasm.Program] `json:"source"`
	AdditionalMetadata map[string]any        `json:"additionalMetadata"`
}

func (p ProgramResult) SchemaHeader() schema.Header { return p.Header }

func (p ProgramResult) Validate() error {
	return schema.First(
		schema.CheckFixed(ProgramResultHeader, p.Header),
		checkPathsOr("executableResults", p.ExecutablePaths, p.Executables),
		Outcomes.CheckList("executableResults", p.Executables),
		schema.Each("executableResults", p.Executables, func(o Outcome) error { return o.Validate() }),
		schema.At("source", p.Source.Validate()),
	)
}

// Failures returns the inline outcomes that are failures.
func (p ProgramResult) Failures() []ExecutableFailure {
	var out []ExecutableFailure
	for _, o := range p.Executables {
		if f, ok := o.(ExecutableFailure); ok {
			out = append(out, f)
		}
	}
	return out
}

func (p ProgramResult) MarshalJSON() ([]byte, error) {
	meta := p.AdditionalMetadata
	if meta == nil {
		meta = map[string]any{}
	}
	return json.Marshal(programResultWire{
		Header:             p.Header,
		ExecutableResults:  marshalPathsOr(p.ExecutablePaths, p.Executables),
		Source:             p.Source,
		AdditionalMetadata: meta,
	})
}

func (p *ProgramResult) UnmarshalJSON(data []byte) error {
	var body struct {
		ExecutableResults  json.RawMessage `json:"executableResults"`
		Source             json.RawMessage `json:"source"`
		AdditionalMetadata map[string]any  `json:"additionalMetadata"`
	}
	header, err := schema.DecodeFixed(ProgramResultHeader, data, &body, "executableResults", "source", "additionalMetadata")
	if err != nil {
		return err
	}
	paths, outcomes, err := decodePathsOr("executableResults", body.ExecutableResults, Outcomes.DecodeList)
	if err != nil {
		return err
	}
	var source Ref[openqasm.Program]
	if err := schema.Decode("source", body.Source, &source); err != nil {
		return err
	}
	decoded := ProgramResult{
		Header:          header,
		ExecutablePaths: paths,
		Executables:     outcomes,
		Source:          source,
	}
	if len(body.AdditionalMetadata) > 0 {
		decoded.AdditionalMetadata = body.AdditionalMetadata
	}
	if err := decoded.Validate(); err != nil {
		return err
	}
	*p = decoded
	return nil
}

func ParseProgramResult(raw []byte) (ProgramResult, lenient.Diagnostics, error) {
	var p ProgramResult
	if err := schema.Decode("", raw, &p); err != nil {
		return ProgramResult{}, nil, err
	}
	return p, nil, nil
}
