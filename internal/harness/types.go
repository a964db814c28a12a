package harness

import "encoding/json"

// TraceEvent records the outcome of one step.
type TraceEvent struct {
	Seq     int64    `json:"seq"`
	Step    string   `json:"step"`
	Type    string   `json:"type,omitempty"`   // resolved Go type
	Schema  string   `json:"schema,omitempty"` // name@version
	Error   string   `json:"error,omitempty"`  // schema error code
	Field   string   `json:"field,omitempty"`
	Dropped []string `json:"dropped,omitempty"`

	// Payload is the canonical serialization of a successful step.
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass is true if every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace has one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step event.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
