package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/qschema/internal/catalog"
	"github.com/roach88/qschema/internal/payload"
	"github.com/roach88/qschema/internal/registry"
	"github.com/roach88/qschema/internal/schema"
	"github.com/roach88/qschema/internal/testutil"
)

// Harness is the scenario execution engine.
type Harness struct {
	seq    *testutil.Sequence
	logger *slog.Logger

	// outcomes by step name, for assertions
	outcomes map[string]outcome
}

// outcome is what a step resolved to.
type outcome struct {
	res registry.Result
	err error
}

// Run executes a scenario with logging discarded.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunContext executes a test scenario and returns the result.
//
// Execution flow:
// 1. Resolve every step's payload through the catalog
// 2. Check each step against its expect clause
// 3. Evaluate assertions across steps
//
// An error is returned only when the scenario itself is broken, e.g. a
// payload file cannot be read. Expectation and assertion failures are
// reported in the Result.
func RunContext(ctx context.Context, scenario *Scenario, logger *slog.Logger) (*Result, error) {
	h := &Harness{
		seq:      testutil.NewSequence(),
		logger:   logger.With(slog.String("scenario", scenario.Name)),
		outcomes: make(map[string]outcome, len(scenario.Steps)),
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Name, err)
		}
	}

	for _, msg := range EvaluateAssertions(scenario.Assertions, h.outcomes, result.Trace) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) error {
	raw, err := stepPayload(index, step)
	if err != nil {
		return err
	}

	res, parseErr := catalog.ResolveAndParse(raw)
	h.outcomes[step.Name] = outcome{res: res, err: parseErr}

	ev := TraceEvent{Seq: h.seq.Next(), Step: step.Name}
	if res.Descriptor.Parse != nil {
		ev.Type = res.Descriptor.TypeName
	}
	if parseErr != nil {
		ev.Error = string(schema.CodeOf(parseErr))
		var se *schema.Error
		if errors.As(parseErr, &se) {
			ev.Field = se.Field
		}
	} else {
		ev.Schema = res.Value.SchemaHeader().String()
		for _, d := range res.Diagnostics {
			ev.Dropped = append(ev.Dropped, d.Path())
		}
		if ev.Payload, err = schema.Serialize(res.Value); err != nil {
			return fmt.Errorf("serialize: %w", err)
		}
		res.Diagnostics.Log(ctx, h.logger.With(slog.String("step", step.Name)))
	}
	result.AddTrace(ev)

	for _, msg := range checkExpect(step, ev, parseErr) {
		result.AddError(msg)
	}

	h.logger.InfoContext(ctx, "step completed",
		slog.Int64("seq", ev.Seq),
		slog.String("step", step.Name),
		slog.String("type", ev.Type),
		slog.String("error", ev.Error),
	)
	return nil
}

// stepPayload returns the step's payload as JSON.
func stepPayload(index int, step Step) ([]byte, error) {
	if step.Payload != "" {
		doc, err := payload.Load(step.Payload, 0)
		if err != nil {
			return nil, err
		}
		return doc.JSON, nil
	}
	return payload.FromYAML(fmt.Sprintf("steps[%d].document", index), step.Document)
}

// checkExpect compares a step's outcome with its expect clause.
func checkExpect(step Step, ev TraceEvent, err error) []string {
	var errs []string
	expect := step.Expect
	if expect == nil {
		expect = &Expect{}
	}

	switch {
	case expect.Error == "" && err != nil:
		errs = append(errs, fmt.Sprintf("step %s: expected success, got %v", step.Name, err))
	case expect.Error != "" && err == nil:
		errs = append(errs, fmt.Sprintf("step %s: expected %s, got success", step.Name, expect.Error))
	case expect.Error != "" && ev.Error != expect.Error:
		errs = append(errs, fmt.Sprintf("step %s: expected %s, got %v", step.Name, expect.Error, err))
	case expect.Field != "" && ev.Field != expect.Field:
		errs = append(errs, fmt.Sprintf("step %s: expected error at %q, got %q", step.Name, expect.Field, ev.Field))
	}

	if expect.Type != "" && ev.Type != expect.Type {
		errs = append(errs, fmt.Sprintf("step %s: expected type %s, got %q", step.Name, expect.Type, ev.Type))
	}
	return errs
}
