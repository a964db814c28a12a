// Package lenient validates collections whose element kinds may grow in
// later schema revisions. Each element is validated on its own; elements
// that fail are dropped and reported as Diagnostics instead of failing the
// whole payload, so an older reader can skip what a newer producer added.
//
// This is the only place in the catalog where a validation failure is
// recovered. Everything else fails fast.
package lenient

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"

	"github.com/hashicorp/go-multierror"

	"github.com/roach88/qschema/internal/schema"
)

// Diagnostic describes one dropped element. For lists Index is the
// element's position in the raw input and Key is empty; for maps Index is -1.
type Diagnostic struct {
	Field string
	Index int
	Key   string
	Value json.RawMessage
	Err   error
}

// Path is the element's JSON path, e.g. "supportedModifiers[2]".
func (d Diagnostic) Path() string {
	if d.Index >= 0 {
		return schema.Index(d.Field, d.Index)
	}
	return schema.Key(d.Field, d.Key)
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("dropped %s = %s: %v", d.Path(), d.Value, d.Err)
}

func (d Diagnostic) Unwrap() error { return d.Err }

// Diagnostics is the non-fatal outcome of lenient validation.
type Diagnostics []Diagnostic

func (ds Diagnostics) Len() int { return len(ds) }

// Merge appends other, re-rooting its paths under prefix when prefix is set.
func (ds Diagnostics) Merge(prefix string, other Diagnostics) Diagnostics {
	for _, d := range other {
		d.Field = schema.JoinPath(prefix, d.Field)
		ds = append(ds, d)
	}
	return ds
}

// ErrorOrNil folds the diagnostics into a single error, for callers that
// want dropped elements to be fatal.
func (ds Diagnostics) ErrorOrNil() error {
	var result *multierror.Error
	for _, d := range ds {
		result = multierror.Append(result, d)
	}
	return result.ErrorOrNil()
}

// Log emits one Warn record per dropped element.
func (ds Diagnostics) Log(ctx context.Context, logger *slog.Logger) {
	for _, d := range ds {
		logger.LogAttrs(ctx, slog.LevelWarn, "dropped invalid element",
			slog.String("path", d.Path()),
			slog.String("value", string(d.Value)),
			slog.String("error", d.Err.Error()),
		)
	}
}

// Element validates one raw element.
type Element[T any] func(raw json.RawMessage) (T, error)

// List validates each element of a JSON array independently and keeps the
// survivors in order. An absent or null raw value yields nil without error.
// A raw value that is not an array is a FIELD_CONSTRAINT error: the
// collection itself is malformed, not one of its elements.
func List[T any](field string, raw json.RawMessage, elem Element[T]) ([]T, Diagnostics, error) {
	if schema.IsAbsent(raw) {
		return nil, nil, nil
	}
	elems, err := schema.Array(field, raw)
	if err != nil {
		return nil, nil, err
	}
	var (
		out   []T
		diags Diagnostics
	)
	for i, e := range elems {
		v, err := elem(e)
		if err != nil {
			diags = append(diags, Diagnostic{Field: field, Index: i, Value: e, Err: err})
			continue
		}
		out = append(out, v)
	}
	return out, diags, nil
}

// Map validates each member of a JSON object independently and keeps the
// survivors under their keys. key, when non-nil, also validates the key;
// a bad key drops the entry. Diagnostics are ordered by key.
func Map[V any](field string, raw json.RawMessage, key func(k string, v V) error, elem Element[V]) (map[string]V, Diagnostics, error) {
	if schema.IsAbsent(raw) {
		return nil, nil, nil
	}
	obj, err := schema.Object(field, raw)
	if err != nil {
		return nil, nil, err
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var (
		out   map[string]V
		diags Diagnostics
	)
	for _, k := range keys {
		v, err := elem(obj[k])
		if err == nil && key != nil {
			err = key(k, v)
		}
		if err != nil {
			diags = append(diags, Diagnostic{Field: field, Index: -1, Key: k, Value: obj[k], Err: err})
			continue
		}
		if out == nil {
			out = make(map[string]V, len(keys))
		}
		out[k] = v
	}
	return out, diags, nil
}
