package taskresult

import (
	"encoding/json"

	"github.com/roach88/qschema/internal/lenient"
	"github.com/roach88/qschema/internal/schema"
)

var (
	ProgramSetTaskMetadataHeader = schema.MustHeader("qschema.task_result.program_set_task_metadata", "1")
	ProgramSetTaskResultHeader   = schema.MustHeader("qschema.task_result.program_set_task_result", "1")
)

// ExecutableMetadata is the per-executable entry of program metadata.
// Failure is set for failed executables and nil for completed or
// cancelled ones.
type ExecutableMetadata struct {
	Failure *FailureMetadata
}

func (e ExecutableMetadata) MarshalJSON() ([]byte, error) {
	if e.Failure == nil {
		return []byte(`{}`), nil
	}
	return json.Marshal(e.Failure)
}

func (e *ExecutableMetadata) UnmarshalJSON(data []byte) error {
	obj, err := schema.Object("", data)
	if err != nil {
		return err
	}
	if _, failed := obj["failureReason"]; !failed {
		*e = ExecutableMetadata{}
		return nil
	}
	var f FailureMetadata
	if err := schema.Decode("", data, &f); err != nil {
		return err
	}
	*e = ExecutableMetadata{Failure: &f}
	return nil
}

type ProgramMetadata struct {
	Executables []ExecutableMetadata `json:"executables"`
}

func (p ProgramMetadata) MarshalJSON() ([]byte, error) {
	type wire ProgramMetadata
	body := wire(p)
	if body.Executables == nil {
		body.Executables = []ExecutableMetadata{}
	}
	return json.Marshal(body)
}

func (p *ProgramMetadata) UnmarshalJSON(data []byte) error {
	obj, err := schema.Object("", data)
	if err != nil {
		return err
	}
	if err := schema.RequireKeys("", obj, "executables"); err != nil {
		return err
	}
	executables, err := schema.DecodeList[ExecutableMetadata]("executables", obj["executables"])
	if err != nil {
		return err
	}
	*p = ProgramMetadata{Executables: executables}
	return nil
}

// ProgramSetTaskMetadata describes a program set task run.
type ProgramSetTaskMetadata struct {
	Header                 schema.Header     `json:"schemaHeader"`
	ID                     string            `json:"id"`
	DeviceID               string            `json:"deviceId"`
	RequestedShots         int               `json:"requestedShots"`
	SuccessfulShots        int               `json:"successfulShots"`
	ProgramMetadata        []ProgramMetadata `json:"programMetadata"`
	DeviceParameters       map[string]any    `json:"deviceParameters,omitempty"`
	CreatedAt              *string           `json:"createdAt,omitempty"`
	EndedAt                *string           `json:"endedAt,omitempty"`
	Status                 *string           `json:"status,omitempty"`
	TotalFailedExecutables int               `json:"totalFailedExecutables"`
}

func (m ProgramSetTaskMetadata) SchemaHeader() schema.Header { return m.Header }

// Validate checks each count on its own. Shot counts are not reconciled
// against the program metadata.
func (m ProgramSetTaskMetadata) Validate() error {
	return schema.First(
		schema.CheckFixed(ProgramSetTaskMetadataHeader, m.Header),
		schema.NotEmpty("id", m.ID),
		schema.NotEmpty("deviceId", m.DeviceID),
		schema.NonNegative("requestedShots", m.RequestedShots),
		schema.NonNegative("successfulShots", m.SuccessfulShots),
		schema.NonNegative("totalFailedExecutables", m.TotalFailedExecutables),
		schema.Each("programMetadata", m.ProgramMetadata, func(p ProgramMetadata) error {
			return schema.Each("executables", p.Executables, func(e ExecutableMetadata) error {
				if e.Failure == nil {
					return nil
				}
				return e.Failure.Validate()
			})
		}),
		checkTimes(m.CreatedAt, m.EndedAt),
		optionalLength("status", m.Status, maxStatusLength),
	)
}

func (m ProgramSetTaskMetadata) MarshalJSON() ([]byte, error) {
	type wire ProgramSetTaskMetadata
	body := wire(m)
	if body.ProgramMetadata == nil {
		body.ProgramMetadata = []ProgramMetadata{}
	}
	return json.Marshal(body)
}

func (m *ProgramSetTaskMetadata) UnmarshalJSON(data []byte) error {
	type wire ProgramSetTaskMetadata
	var body struct {
		wire
		ProgramMetadata json.RawMessage `json:"programMetadata"`
	}
	header, err := schema.DecodeFixed(ProgramSetTaskMetadataHeader, data, &body,
		"id", "deviceId", "requestedShots", "successfulShots", "programMetadata", "totalFailedExecutables")
	if err != nil {
		return err
	}
	programs, err := schema.DecodeList[ProgramMetadata]("programMetadata", body.ProgramMetadata)
	if err != nil {
		return err
	}
	decoded := ProgramSetTaskMetadata(body.wire)
	decoded.Header = header
	decoded.ProgramMetadata = programs
	if len(decoded.DeviceParameters) == 0 {
		decoded.DeviceParameters = nil
	}
	if err := decoded.Validate(); err != nil {
		return err
	}
	*m = decoded
	return nil
}

func ParseProgramSetTaskMetadata(raw []byte) (ProgramSetTaskMetadata, lenient.Diagnostics, error) {
	var m ProgramSetTaskMetadata
	if err := schema.Decode("", raw, &m); err != nil {
		return ProgramSetTaskMetadata{}, nil, err
	}
	return m, nil, nil
}

// ProgramSetTaskResult is the top-level result of a program set task.
// ProgramPaths and Programs are alternatives. Location, when set, is the
// bucket and key prefix that relative paths resolve against.
type ProgramSetTaskResult struct {
	Header       schema.Header
	ProgramPaths []string
	Programs     []ProgramResult
	TaskMetadata Ref[ProgramSetTaskMetadata]
	Location     *[2]string
}

type programSetTaskResultWire struct {
	Header         schema.Header               `json:"schemaHeader"`
	ProgramResults any                         `json:"programResults"`
	TaskMetadata   Ref[ProgramSetTaskMetadata] `json:"taskMetadata"`
	Location       *[2]string                  `json:"location,omitempty"`
}

func (r ProgramSetTaskResult) SchemaHeader() schema.Header { return r.Header }

func (r ProgramSetTaskResult) Validate() error {
	return schema.First(
		schema.CheckFixed(ProgramSetTaskResultHeader, r.Header),
		checkPathsOr("programResults", r.ProgramPaths, r.Programs),
		schema.Each("programResults", r.Programs, ProgramResult.Validate),
		schema.At("taskMetadata", r.TaskMetadata.Validate()),
		checkLocation(r.Location),
	)
}

func checkLocation(loc *[2]string) error {
	if loc == nil {
		return nil
	}
	return schema.First(
		schema.NotEmpty("location[0]", loc[0]),
		schema.NotEmpty("location[1]", loc[1]),
	)
}

// Inline reports whether the whole result is contained in this document.
func (r ProgramSetTaskResult) Inline() bool {
	if r.ProgramPaths != nil || !r.TaskMetadata.IsInline() {
		return false
	}
	for _, p := range r.Programs {
		if p.ExecutablePaths != nil || !p.Source.IsInline() {
			return false
		}
	}
	return true
}

func (r ProgramSetTaskResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(programSetTaskResultWire{
		Header:         r.Header,
		ProgramResults: marshalPathsOr(r.ProgramPaths, r.Programs),
		TaskMetadata:   r.TaskMetadata,
		Location:       r.Location,
	})
}

func (r *ProgramSetTaskResult) UnmarshalJSON(data []byte) error {
	var body struct {
		ProgramResults json.RawMessage `json:"programResults"`
		TaskMetadata   json.RawMessage `json:"taskMetadata"`
		Location       *[2]string      `json:"location"`
	}
	header, err := schema.DecodeFixed(ProgramSetTaskResultHeader, data, &body, "programResults", "taskMetadata")
	if err != nil {
		return err
	}
	paths, programs, err := decodePathsOr("programResults", body.ProgramResults, schema.DecodeList[ProgramResult])
	if err != nil {
		return err
	}
	var meta Ref[ProgramSetTaskMetadata]
	if err := schema.Decode("taskMetadata", body.TaskMetadata, &meta); err != nil {
		return err
	}
	decoded := ProgramSetTaskResult{
		Header:       header,
		ProgramPaths: paths,
		Programs:     programs,
		TaskMetadata: meta,
		Location:     body.Location,
	}
	if err := decoded.Validate(); err != nil {
		return err
	}
	*r = decoded
	return nil
}

func ParseProgramSetTaskResult(raw []byte) (ProgramSetTaskResult, lenient.Diagnostics, error) {
	var r ProgramSetTaskResult
	if err := schema.Decode("", raw, &r); err != nil {
		return ProgramSetTaskResult{}, nil, err
	}
	return r, nil, nil
}
