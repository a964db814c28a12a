package device

import (
	"encoding/json"
	"time"

	"github.com/roach88/qschema/internal/lenient"
	"github.com/roach88/qschema/internal/schema"
)

var (
	ServicePropertiesHeader = schema.MustHeader("qschema.device_schema.device_service_properties", "1")
	ExecutionWindowHeader   = schema.MustHeader("qschema.device_schema.device_execution_window", "1")
)

// ExecutionDay is the recurrence of an execution window.
type ExecutionDay string

const (
	Everyday  ExecutionDay = "Everyday"
	Weekdays  ExecutionDay = "Weekdays"
	Weekend   ExecutionDay = "Weekend"
	Monday    ExecutionDay = "Monday"
	Tuesday   ExecutionDay = "Tuesday"
	Wednesday ExecutionDay = "Wednesday"
	Thursday  ExecutionDay = "Thursday"
	Friday    ExecutionDay = "Friday"
	Saturday  ExecutionDay = "Saturday"
	Sunday    ExecutionDay = "Sunday"
)

var executionDays = []ExecutionDay{
	Everyday, Weekdays, Weekend,
	Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday,
}

// HourLayout is the time-of-day format of window boundaries (UTC).
const HourLayout = "15:04:05"

// ExecutionWindow is a recurring period in which the device runs tasks.
type ExecutionWindow struct {
	Header          schema.Header `json:"schemaHeader"`
	ExecutionDay    ExecutionDay  `json:"executionDay"`
	WindowStartHour string        `json:"windowStartHour"`
	WindowEndHour   string        `json:"windowEndHour"`
}

func NewExecutionWindow(day ExecutionDay, start, end string) (ExecutionWindow, error) {
	w := ExecutionWindow{Header: ExecutionWindowHeader, ExecutionDay: day, WindowStartHour: start, WindowEndHour: end}
	if err := w.Validate(); err != nil {
		return ExecutionWindow{}, err
	}
	return w, nil
}

func (w ExecutionWindow) SchemaHeader() schema.Header { return w.Header }

func (w ExecutionWindow) Validate() error {
	return schema.First(
		schema.CheckFixed(ExecutionWindowHeader, w.Header),
		schema.OneOf("executionDay", w.ExecutionDay, executionDays...),
		checkHour("windowStartHour", w.WindowStartHour),
		checkHour("windowEndHour", w.WindowEndHour),
	)
}

// Covers reports whether t (in UTC) falls inside the window. A window whose
// end precedes its start wraps past midnight.
func (w ExecutionWindow) Covers(t time.Time) bool {
	t = t.UTC()
	start, err := time.Parse(HourLayout, w.WindowStartHour)
	if err != nil {
		return false
	}
	end, err := time.Parse(HourLayout, w.WindowEndHour)
	if err != nil {
		return false
	}
	if !w.onDay(t.Weekday()) {
		return false
	}
	clock := time.Date(0, 1, 1, t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
	if !end.Before(start) {
		return !clock.Before(start) && !clock.After(end)
	}
	return !clock.Before(start) || !clock.After(end)
}

func (w ExecutionWindow) onDay(d time.Weekday) bool {
	switch w.ExecutionDay {
	case Everyday:
		return true
	case Weekdays:
		return d != time.Saturday && d != time.Sunday
	case Weekend:
		return d == time.Saturday || d == time.Sunday
	default:
		return string(w.ExecutionDay) == d.String()
	}
}

func checkHour(field, s string) error {
	if _, err := time.Parse(HourLayout, s); err != nil {
		return schema.FieldConstraint(field, s, "expected a time of day as HH:MM:SS")
	}
	return nil
}

func (w *ExecutionWindow) UnmarshalJSON(data []byte) error {
	type wire ExecutionWindow
	var body wire
	header, err := schema.DecodeFixed(ExecutionWindowHeader, data, &body, "executionDay", "windowStartHour", "windowEndHour")
	if err != nil {
		return err
	}
	decoded := ExecutionWindow(body)
	decoded.Header = header
	if err := decoded.Validate(); err != nil {
		return err
	}
	*w = decoded
	return nil
}

func ParseExecutionWindow(raw []byte) (ExecutionWindow, lenient.Diagnostics, error) {
	var w ExecutionWindow
	if err := schema.Decode("", raw, &w); err != nil {
		return ExecutionWindow{}, nil, err
	}
	return w, nil, nil
}

// ServiceProperties describes when and how much a device can be used.
type ServiceProperties struct {
	Header           schema.Header     `json:"schemaHeader"`
	ExecutionWindows []ExecutionWindow `json:"executionWindows"`
	Shots            int               `json:"shots"`
}

func (s ServiceProperties) SchemaHeader() schema.Header { return s.Header }

func (s ServiceProperties) Validate() error {
	return schema.First(
		schema.CheckFixed(ServicePropertiesHeader, s.Header),
		schema.Each("executionWindows", s.ExecutionWindows, ExecutionWindow.Validate),
		schema.NonNegative("shots", s.Shots),
	)
}

// Available reports whether any execution window covers t.
func (s ServiceProperties) Available(t time.Time) bool {
	for _, w := range s.ExecutionWindows {
		if w.Covers(t) {
			return true
		}
	}
	return false
}

func (s ServiceProperties) MarshalJSON() ([]byte, error) {
	type wire ServiceProperties
	body := wire(s)
	if body.ExecutionWindows == nil {
		body.ExecutionWindows = []ExecutionWindow{}
	}
	return json.Marshal(body)
}

func (s *ServiceProperties) UnmarshalJSON(data []byte) error {
	var body struct {
		ExecutionWindows json.RawMessage `json:"executionWindows"`
		Shots            int             `json:"shots"`
	}
	header, err := schema.DecodeFixed(ServicePropertiesHeader, data, &body, "executionWindows", "shots")
	if err != nil {
		return err
	}
	windows, err := schema.DecodeList[ExecutionWindow]("executionWindows", body.ExecutionWindows)
	if err != nil {
		return err
	}
	decoded := ServiceProperties{Header: header, ExecutionWindows: windows, Shots: body.Shots}
	if err := decoded.Validate(); err != nil {
		return err
	}
	*s = decoded
	return nil
}

func ParseServiceProperties(raw []byte) (ServiceProperties, lenient.Diagnostics, error) {
	var s ServiceProperties
	if err := schema.Decode("", raw, &s); err != nil {
		return ServiceProperties{}, nil, err
	}
	return s, nil, nil
}
