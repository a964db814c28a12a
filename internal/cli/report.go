package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/qschema/internal/catalog"
	"github.com/roach88/qschema/internal/lenient"
	"github.com/roach88/qschema/internal/payload"
	"github.com/roach88/qschema/internal/registry"
	"github.com/roach88/qschema/internal/schema"
)

// errDropped marks a strict-mode failure caused only by lenient drops.
var errDropped = errors.New("invalid elements dropped")

// PayloadReport describes one payload file after resolution.
type PayloadReport struct {
	Path    string           `json:"path"`
	Type    string           `json:"type,omitempty"`
	Schema  *schema.Header   `json:"schema,omitempty"`
	Dropped []DroppedElement `json:"dropped,omitempty"`
	Error   *PayloadError    `json:"error,omitempty"`
}

// DroppedElement is a lenient element removed during parsing.
type DroppedElement struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// PayloadError is a rejected payload. Code is the CLI code; SchemaCode and
// Field come from the schema error when there is one.
type PayloadError struct {
	Code       string `json:"code"`
	SchemaCode string `json:"schema_code,omitempty"`
	Field      string `json:"field,omitempty"`
	Message    string `json:"message"`
}

func (r PayloadReport) Failed() bool { return r.Error != nil }

func newReport(path string, res registry.Result, err error) PayloadReport {
	report := PayloadReport{Path: path, Dropped: droppedElements(res.Diagnostics)}
	if res.Descriptor.Parse != nil {
		report.Type = res.Descriptor.TypeName
	}
	if res.Value != nil {
		h := res.Value.SchemaHeader()
		report.Schema = &h
	}
	if err != nil {
		report.Error = newPayloadError(err)
	}
	return report
}

func droppedElements(diags lenient.Diagnostics) []DroppedElement {
	if len(diags) == 0 {
		return nil
	}
	out := make([]DroppedElement, len(diags))
	for i, d := range diags {
		out[i] = DroppedElement{Path: d.Path(), Error: d.Err.Error()}
	}
	return out
}

func newPayloadError(err error) *PayloadError {
	pe := &PayloadError{Code: payloadErrorCode(err), Message: err.Error()}
	var se *schema.Error
	if errors.As(err, &se) && !errors.Is(err, errDropped) {
		pe.SchemaCode = string(se.Code)
		pe.Field = se.Field
	}
	return pe
}

// payloadErrorCode maps a resolution failure to its CLI code.
func payloadErrorCode(err error) string {
	var loadErr *LoadError
	switch {
	case errors.As(err, &loadErr):
		return loadErr.Code
	case errors.Is(err, errDropped):
		return ErrCodeDropped
	case schema.HasCode(err, schema.ErrUnknownSchema):
		return ErrCodeUnknownSchema
	default:
		return ErrCodeInvalidPayload
	}
}

func isLoadError(err error) bool {
	var loadErr *LoadError
	return errors.As(err, &loadErr)
}

// resolveFile loads path and parses it through the catalog. A *LoadError
// means the file itself could not be read; anything else is a rejected
// payload. The result is populated as far as resolution got.
func (o *RootOptions) resolveFile(ctx context.Context, path string) (*payload.Document, registry.Result, error) {
	logger := o.logger().With(slog.String("path", path))

	doc, err := LoadPayload(path, o.MaxPayloadBytes)
	if err != nil {
		return nil, registry.Result{}, err
	}
	logger.DebugContext(ctx, "payload loaded", slog.String("format", string(doc.Format)), slog.Int("bytes", len(doc.JSON)))

	res, err := catalog.ResolveAndParse(doc.JSON)
	if err != nil {
		logger.DebugContext(ctx, "payload rejected", slog.String("error", err.Error()))
		return doc, res, err
	}
	h := res.Value.SchemaHeader()
	logger.DebugContext(ctx, "payload resolved",
		slog.String("type", res.Descriptor.TypeName),
		slog.String("key", res.Descriptor.Key()),
		slog.String("version", h.Version),
	)
	res.Diagnostics.Log(ctx, logger)

	if o.Strict && res.Diagnostics.Len() > 0 {
		return doc, res, fmt.Errorf("%w: %w", errDropped, res.Diagnostics.ErrorOrNil())
	}
	return doc, res, nil
}

// outputLoadError reports a file that could not be loaded. These are
// command errors (exit code 2).
func outputLoadError(formatter *OutputFormatter, err error) error {
	code, message := ErrCodeGeneric, err.Error()
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		code, message = loadErr.Code, loadErr.Err.Error()
	}
	_ = formatter.Error(code, message, nil)
	return WrapExitError(ExitCommandError, "load failed", err)
}

// outputPayloadError reports a single rejected payload (exit code 1).
func outputPayloadError(formatter *OutputFormatter, report PayloadReport) error {
	_ = formatter.Failure(report.Error.Code, report.Error.Message, report, nil)
	return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", report.Error.Code, report.Error.Message))
}
