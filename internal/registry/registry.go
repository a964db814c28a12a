// Package registry resolves a payload's header to the concrete schema type
// that owns its (name, major version) and re-parses the payload through it.
//
// Registration is explicit: every concrete type contributes a Descriptor,
// and the registry is built once from the full set. A duplicate key is an
// initialization failure, never a lookup-time surprise.
package registry

import (
	"fmt"
	"slices"

	"github.com/roach88/qschema/internal/lenient"
	"github.com/roach88/qschema/internal/schema"
)

// ParseFunc parses and fully validates a raw payload as one concrete type.
type ParseFunc func(raw []byte) (schema.Schema, lenient.Diagnostics, error)

// Descriptor describes one concrete schema type.
type Descriptor struct {
	Header schema.Header
	// TypeName is the Go type, e.g. "jaqcd.Program".
	TypeName string
	Parse    ParseFunc
}

// Key is the registry key for the descriptor.
func (d Descriptor) Key() string { return d.Header.Key() }

// Describe builds a Descriptor from a typed parse function.
func Describe[T schema.Schema](h schema.Header, parse func(raw []byte) (T, lenient.Diagnostics, error)) Descriptor {
	var zero T
	return Descriptor{
		Header:   h,
		TypeName: fmt.Sprintf("%T", zero),
		Parse: func(raw []byte) (schema.Schema, lenient.Diagnostics, error) {
			v, diags, err := parse(raw)
			if err != nil {
				return nil, nil, err
			}
			return v, diags, nil
		},
	}
}

// Result is a resolved and fully parsed payload.
type Result struct {
	Descriptor  Descriptor
	Value       schema.Schema
	Diagnostics lenient.Diagnostics
}

// Registry is read-only after New and safe for concurrent use.
type Registry struct {
	byKey map[string]Descriptor
	keys  []string
}

// New builds a registry. Invalid headers, missing parse functions and
// duplicate keys fail.
func New(descs ...Descriptor) (*Registry, error) {
	r := &Registry{byKey: make(map[string]Descriptor, len(descs))}
	for _, d := range descs {
		if err := d.Header.Validate(); err != nil {
			return nil, fmt.Errorf("register %s: %w", d.TypeName, err)
		}
		if d.Parse == nil {
			return nil, fmt.Errorf("register %s: no parse function", d.TypeName)
		}
		key := d.Key()
		if prev, dup := r.byKey[key]; dup {
			return nil, schema.NewError(schema.ErrDuplicateSchema, "", key,
				"key %q registered by both %s and %s", key, prev.TypeName, d.TypeName)
		}
		r.byKey[key] = d
		r.keys = append(r.keys, key)
	}
	slices.Sort(r.keys)
	return r, nil
}

// Must panics if err is non-nil.
func Must(r *Registry, err error) *Registry {
	if err != nil {
		panic(err)
	}
	return r
}

// Resolve finds the descriptor owning h's name and major version.
func (r *Registry) Resolve(h schema.Header) (Descriptor, error) {
	key := h.Key()
	d, ok := r.byKey[key]
	if !ok {
		return Descriptor{}, &schema.Error{
			Code:    schema.ErrUnknownSchema,
			Field:   schema.HeaderField,
			Message: fmt.Sprintf("no schema registered for key %q", key),
			Value:   key,
		}
	}
	return d, nil
}

// ResolveAndParse reads raw's header, resolves it and parses the whole
// payload through the resolved type.
func (r *Registry) ResolveAndParse(raw []byte) (Result, error) {
	env, err := schema.ParseEnvelope(raw)
	if err != nil {
		return Result{}, err
	}
	d, err := r.Resolve(env.Header)
	if err != nil {
		return Result{}, err
	}
	v, diags, err := d.Parse(env.Raw)
	if err != nil {
		return Result{Descriptor: d}, err
	}
	return Result{Descriptor: d, Value: v, Diagnostics: diags}, nil
}

// Descriptors lists every registered type ordered by key.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, len(r.keys))
	for i, k := range r.keys {
		out[i] = r.byKey[k]
	}
	return out
}

// Len is the number of registered types.
func (r *Registry) Len() int { return len(r.keys) }
