// Package dispatch decodes members of closed tagged unions in constant time
// per item. A Table maps each discriminant value of a variant set to the
// constructor for that variant; decoding reads the discriminant and calls
// exactly one constructor, however many variants the set has.
package dispatch

import (
	"encoding/json"
	"reflect"
	"slices"

	"github.com/roach88/qschema/internal/schema"
)

// Constructor builds one variant from its full raw object, discriminant
// included. It is responsible for the variant's field validation.
type Constructor[T any] func(raw json.RawMessage) (T, error)

// Entry binds a discriminant value to its constructor.
type Entry[T any] struct {
	Key string
	New Constructor[T]
}

// KeyFunc extracts the discriminant from a decoded object. ok is false when
// the discriminant is absent.
type KeyFunc func(obj map[string]json.RawMessage) (key string, ok bool, err error)

// Table is read-only after construction and safe for concurrent use.
type Table[T any] struct {
	set     string
	field   string
	extract KeyFunc
	keyOf   func(T) string
	ctors   map[string]Constructor[T]
	keys    []string
}

// New builds a table whose discriminant is the string-valued field named
// field. keyOf reports the discriminant of an already-constructed variant.
// Duplicate keys fail with DUPLICATE_VARIANT.
func New[T any](set, field string, keyOf func(T) string, entries ...Entry[T]) (*Table[T], error) {
	return NewKeyed(set, field, FieldKey(field), keyOf, entries...)
}

// NewKeyed is like New with a custom discriminant extractor, for sets that
// are told apart by something other than a flat string field.
func NewKeyed[T any](set, field string, extract KeyFunc, keyOf func(T) string, entries ...Entry[T]) (*Table[T], error) {
	t := &Table[T]{
		set:     set,
		field:   field,
		extract: extract,
		keyOf:   keyOf,
		ctors:   make(map[string]Constructor[T], len(entries)),
	}
	for _, e := range entries {
		if _, dup := t.ctors[e.Key]; dup {
			return nil, schema.NewError(schema.ErrDuplicateVariant, field, e.Key,
				"%s variant %q registered twice", set, e.Key)
		}
		if e.New == nil {
			return nil, schema.NewError(schema.ErrDuplicateVariant, field, e.Key,
				"%s variant %q has no constructor", set, e.Key)
		}
		t.ctors[e.Key] = e.New
		t.keys = append(t.keys, e.Key)
	}
	slices.Sort(t.keys)
	return t, nil
}

// Must panics if err is non-nil. Tables are package-level values, so a
// duplicate discriminant stops the program at initialization.
func Must[T any](t *Table[T], err error) *Table[T] {
	if err != nil {
		panic(err)
	}
	return t
}

// FieldKey extracts a string discriminant stored under name.
func FieldKey(name string) KeyFunc {
	return func(obj map[string]json.RawMessage) (string, bool, error) {
		raw, ok := obj[name]
		if !ok || schema.IsAbsent(raw) {
			return "", false, nil
		}
		var key string
		if err := json.Unmarshal(raw, &key); err != nil {
			return "", true, schema.FieldConstraint(name, string(raw), "discriminant must be a string")
		}
		return key, true, nil
	}
}

// Set names the variant set, e.g. "instruction".
func (t *Table[T]) Set() string { return t.set }

// Keys returns the registered discriminants in sorted order.
func (t *Table[T]) Keys() []string {
	return slices.Clone(t.keys)
}

// Has reports whether key is a member of the set.
func (t *Table[T]) Has(key string) bool {
	_, ok := t.ctors[key]
	return ok
}

// Decode builds the variant selected by raw's discriminant. field is the
// path of the item being populated and prefixes every error.
func (t *Table[T]) Decode(field string, raw json.RawMessage) (T, error) {
	var zero T
	obj, err := schema.Object(field, raw)
	if err != nil {
		if schema.IsAbsent(raw) {
			return zero, schema.UnknownVariant(t.set, field, nil)
		}
		return zero, schema.UnknownVariant(t.set, field, string(raw))
	}
	key, ok, err := t.extract(obj)
	if err != nil {
		return zero, schema.At(field, err)
	}
	if !ok {
		return zero, schema.UnknownVariant(t.set, schema.JoinPath(field, t.field), nil)
	}
	ctor, found := t.ctors[key]
	if !found {
		return zero, schema.UnknownVariant(t.set, schema.JoinPath(field, t.field), key)
	}
	v, err := ctor(raw)
	if err != nil {
		return zero, schema.At(field, err)
	}
	return v, nil
}

// Check verifies an already-constructed variant belongs to the set. A nil
// variant, typed or not, is rejected before keyOf sees it.
func (t *Table[T]) Check(field string, v T) error {
	if isNil(v) {
		return schema.UnknownVariant(t.set, field, nil)
	}
	if key := t.keyOf(v); !t.Has(key) {
		return schema.UnknownVariant(t.set, schema.JoinPath(field, t.field), key)
	}
	return nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// DecodeList decodes a required-by-caller list of variants, failing on the
// first bad item. Absent, null and empty lists decode to nil.
func (t *Table[T]) DecodeList(field string, raw json.RawMessage) ([]T, error) {
	if schema.IsAbsent(raw) {
		return nil, nil
	}
	elems, err := schema.Array(field, raw)
	if err != nil {
		return nil, err
	}
	if len(elems) == 0 {
		return nil, nil
	}
	out := make([]T, 0, len(elems))
	for i, elem := range elems {
		v, err := t.Decode(schema.Index(field, i), elem)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// CheckList runs Check on every item.
func (t *Table[T]) CheckList(field string, items []T) error {
	for i, v := range items {
		if err := t.Check(schema.Index(field, i), v); err != nil {
			return err
		}
	}
	return nil
}

// Element adapts the table to a per-element decoder, for use with lenient
// collections where the element path is supplied by the collection.
func (t *Table[T]) Element(raw json.RawMessage) (T, error) {
	return t.Decode("", raw)
}
