// Package taskresult holds the documents a device writes back after
// running a task: task metadata and the per-program, per-executable
// results of program sets.
package taskresult

import (
	"github.com/roach88/qschema/internal/lenient"
	"github.com/roach88/qschema/internal/schema"
)

var TaskMetadataHeader = schema.MustHeader("qschema.task_result.task_metadata", "1")

const (
	maxTimestampLength = 24
	maxStatusLength    = 20
)

// TaskMetadata describes one task run. Optional strings are nil when
// absent; when present they must be non-empty.
type TaskMetadata struct {
	Header           schema.Header  `json:"schemaHeader"`
	ID               string         `json:"id"`
	Shots            int            `json:"shots"`
	DeviceID         string         `json:"deviceId"`
	DeviceParameters map[string]any `json:"deviceParameters,omitempty"`
	CreatedAt        *string        `json:"createdAt,omitempty"`
	EndedAt          *string        `json:"endedAt,omitempty"`
	Status           *string        `json:"status,omitempty"`
	FailureReason    *string        `json:"failureReason,omitempty"`
}

func (m TaskMetadata) SchemaHeader() schema.Header { return m.Header }

func (m TaskMetadata) Validate() error {
	return schema.First(
		schema.CheckFixed(TaskMetadataHeader, m.Header),
		schema.NotEmpty("id", m.ID),
		schema.NonNegative("shots", m.Shots),
		schema.NotEmpty("deviceId", m.DeviceID),
		checkTimes(m.CreatedAt, m.EndedAt),
		optionalLength("status", m.Status, maxStatusLength),
		optionalLength("failureReason", m.FailureReason, 0),
	)
}

func checkTimes(createdAt, endedAt *string) error {
	return schema.First(
		optionalLength("createdAt", createdAt, maxTimestampLength),
		optionalLength("endedAt", endedAt, maxTimestampLength),
	)
}

// optionalLength checks a present string is 1..max runes; max 0 means unbounded.
func optionalLength(field string, s *string, max int) error {
	if s == nil {
		return nil
	}
	return schema.Length(field, *s, 1, max)
}

func (m *TaskMetadata) UnmarshalJSON(data []byte) error {
	type wire TaskMetadata
	var body wire
	header, err := schema.DecodeFixed(TaskMetadataHeader, data, &body, "id", "shots", "deviceId")
	if err != nil {
		return err
	}
	decoded := TaskMetadata(body)
	decoded.Header = header
	if len(decoded.DeviceParameters) == 0 {
		decoded.DeviceParameters = nil
	}
	if err := decoded.Validate(); err != nil {
		return err
	}
	*m = decoded
	return nil
}

func ParseTaskMetadata(raw []byte) (TaskMetadata, lenient.Diagnostics, error) {
	var m TaskMetadata
	if err := schema.Decode("", raw, &m); err != nil {
		return TaskMetadata{}, nil, err
	}
	return m, nil, nil
}
