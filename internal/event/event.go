// Package event defines the notifications emitted when a task changes state.
package event

import (
	"encoding/json"
	"regexp"
	"time"

	"github.com/roach88/qschema/internal/lenient"
	"github.com/roach88/qschema/internal/schema"
)

var TaskStateChangeHeader = schema.MustHeader("qschema.event.task.state_change", "1.0")

const (
	// Source is the fixed source of every event.
	Source = "qschema"
	// TaskStateChangeType is the detail type of task state change events.
	TaskStateChangeType = "Task State Change"

	maxStatusLength = 20
)

// TimestampLayout is the millisecond UTC layout of event timestamps.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

var timestamp = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z$`)

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string { return t.UTC().Format(TimestampLayout) }

// TaskStateChangeDetail is the body of a task state change event.
type TaskStateChangeDetail struct {
	Header          schema.Header `json:"schemaHeader"`
	TaskID          string        `json:"taskId"`
	Status          string        `json:"status"`
	DeviceID        string        `json:"deviceId"`
	Shots           int           `json:"shots"`
	OutputBucket    string        `json:"outputBucket"`
	OutputKeyPrefix string        `json:"outputKeyPrefix"`
	CreatedAt       string        `json:"createdAt"`
	EndedAt         *string       `json:"endedAt,omitempty"`
}

func (d TaskStateChangeDetail) SchemaHeader() schema.Header { return d.Header }

func (d TaskStateChangeDetail) Validate() error {
	if err := schema.First(
		schema.CheckFixed(TaskStateChangeHeader, d.Header),
		schema.NotEmpty("taskId", d.TaskID),
		schema.Length("status", d.Status, 1, maxStatusLength),
		schema.NotEmpty("deviceId", d.DeviceID),
		schema.NonNegative("shots", d.Shots),
		schema.NotEmpty("outputBucket", d.OutputBucket),
		schema.NotEmpty("outputKeyPrefix", d.OutputKeyPrefix),
		schema.Matches("createdAt", d.CreatedAt, timestamp),
	); err != nil {
		return err
	}
	if d.EndedAt != nil {
		return schema.Matches("endedAt", *d.EndedAt, timestamp)
	}
	return nil
}

// Terminal reports whether the task has ended.
func (d TaskStateChangeDetail) Terminal() bool { return d.EndedAt != nil }

func (d *TaskStateChangeDetail) UnmarshalJSON(data []byte) error {
	type wire TaskStateChangeDetail
	var body wire
	header, err := schema.DecodeFixed(TaskStateChangeHeader, data, &body,
		"taskId", "status", "deviceId", "shots", "outputBucket", "outputKeyPrefix", "createdAt")
	if err != nil {
		return err
	}
	decoded := TaskStateChangeDetail(body)
	decoded.Header = header
	if err := decoded.Validate(); err != nil {
		return err
	}
	*d = decoded
	return nil
}

func ParseTaskStateChangeDetail(raw []byte) (TaskStateChangeDetail, lenient.Diagnostics, error) {
	var d TaskStateChangeDetail
	if err := schema.Decode("", raw, &d); err != nil {
		return TaskStateChangeDetail{}, nil, err
	}
	return d, nil, nil
}

// TaskStateChangeEvent is the envelope carrying a TaskStateChangeDetail.
// Time is in milliseconds since the Unix epoch.
type TaskStateChangeEvent struct {
	DetailType string                `json:"detailType"`
	Resources  []string              `json:"resources"`
	Account    string                `json:"account"`
	Source     string                `json:"source"`
	Time       int64                 `json:"time"`
	Detail     TaskStateChangeDetail `json:"detail"`
}

// NewTaskStateChangeEvent wraps detail in an envelope stamped at.
func NewTaskStateChangeEvent(account string, resources []string, detail TaskStateChangeDetail, at time.Time) (TaskStateChangeEvent, error) {
	e := TaskStateChangeEvent{
		DetailType: TaskStateChangeType,
		Resources:  schema.NilIfEmpty(resources),
		Account:    account,
		Source:     Source,
		Time:       at.UnixMilli(),
		Detail:     detail,
	}
	if err := e.Validate(); err != nil {
		return TaskStateChangeEvent{}, err
	}
	return e, nil
}

func (e TaskStateChangeEvent) Validate() error {
	if err := schema.First(
		schema.OneOf("detailType", e.DetailType, TaskStateChangeType),
		schema.Each("resources", e.Resources, func(r string) error { return schema.NotEmpty("", r) }),
		schema.NotEmpty("account", e.Account),
		schema.OneOf("source", e.Source, Source),
	); err != nil {
		return err
	}
	return schema.At("detail", e.Detail.Validate())
}

// At returns the event time.
func (e TaskStateChangeEvent) At() time.Time { return time.UnixMilli(e.Time).UTC() }

func (e TaskStateChangeEvent) MarshalJSON() ([]byte, error) {
	type wire TaskStateChangeEvent
	body := wire(e)
	if body.Resources == nil {
		body.Resources = []string{}
	}
	return json.Marshal(body)
}

// UnmarshalJSON fills the fixed detail type and source when absent.
func (e *TaskStateChangeEvent) UnmarshalJSON(data []byte) error {
	var body struct {
		DetailType *string         `json:"detailType"`
		Resources  []string        `json:"resources"`
		Account    string          `json:"account"`
		Source     *string         `json:"source"`
		Time       int64           `json:"time"`
		Detail     json.RawMessage `json:"detail"`
	}
	obj, err := schema.Object("", data)
	if err != nil {
		return err
	}
	if err := schema.RequireKeys("", obj, "resources", "account", "time", "detail"); err != nil {
		return err
	}
	if err := schema.Decode("", data, &body); err != nil {
		return err
	}
	var detail TaskStateChangeDetail
	if err := schema.Decode("detail", body.Detail, &detail); err != nil {
		return err
	}
	decoded := TaskStateChangeEvent{
		DetailType: TaskStateChangeType,
		Resources:  body.Resources,
		Account:    body.Account,
		Source:     Source,
		Time:       body.Time,
		Detail:     detail,
	}
	if body.DetailType != nil {
		decoded.DetailType = *body.DetailType
	}
	if body.Source != nil {
		decoded.Source = *body.Source
	}
	if len(decoded.Resources) == 0 {
		decoded.Resources = nil
	}
	if err := decoded.Validate(); err != nil {
		return err
	}
	*e = decoded
	return nil
}
