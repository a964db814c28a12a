package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
)

// Schema is implemented by every concrete, header-bearing payload type.
type Schema interface {
	SchemaHeader() Header
	Validate() error
}

// Envelope is a payload parsed only far enough to expose its header.
type Envelope struct {
	Header Header
	Raw    json.RawMessage
}

// ParseEnvelope reads the header of raw without interpreting anything else.
func ParseEnvelope(raw []byte) (Envelope, error) {
	obj, err := Object("", raw)
	if err != nil {
		return Envelope{}, err
	}
	hraw, ok := obj[HeaderField]
	if !ok || IsAbsent(hraw) {
		return Envelope{}, NewError(ErrInvalidHeader, HeaderField, nil, "field required")
	}
	var h Header
	if err := json.Unmarshal(hraw, &h); err != nil {
		return Envelope{}, At(HeaderField, err)
	}
	return Envelope{Header: h, Raw: json.RawMessage(raw)}, nil
}

var null = []byte("null")

// IsAbsent reports whether a raw field was missing or explicitly null.
func IsAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), null)
}

// Object splits a JSON object into its raw members.
func Object(field string, raw []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, FieldConstraint(field, string(trimmed), "expected a JSON object")
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, &Error{Code: ErrFieldConstraint, Field: field, Message: "malformed JSON object", Err: err}
	}
	return obj, nil
}

// Array splits a JSON array into its raw elements.
func Array(field string, raw []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, FieldConstraint(field, string(trimmed), "expected a JSON array")
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, &Error{Code: ErrFieldConstraint, Field: field, Message: "malformed JSON array", Err: err}
	}
	return elems, nil
}

// Decode unmarshals raw into v and reports failures at field. Errors that
// are already *Error keep their code.
func Decode(field string, raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			path := JoinPath(field, jsonPath(reflect.TypeOf(v), typeErr.Field))
			return FieldConstraint(path, typeErr.Value, "expected %s, got %s", typeErr.Type, typeErr.Value)
		}
		return At(field, err)
	}
	return nil
}

// jsonPath rewrites the dotted field path of a json.UnmarshalTypeError as a
// JSON path of t. encoding/json names embedded structs by their Go type
// ("Rotation.angle"); those segments are dropped ("angle").
func jsonPath(t reflect.Type, path string) string {
	if path == "" {
		return ""
	}
	var out []string
	for _, seg := range strings.Split(path, ".") {
		for t != nil && (t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice || t.Kind() == reflect.Array) {
			t = t.Elem()
		}
		if t == nil {
			out = append(out, seg)
			continue
		}
		switch t.Kind() {
		case reflect.Struct:
			if f, ok := t.FieldByName(seg); ok && f.Anonymous && f.Tag.Get("json") == "" {
				t = f.Type
				continue
			}
			t = fieldType(t, seg)
		case reflect.Map:
			t = t.Elem()
		default:
			t = nil
		}
		out = append(out, seg)
	}
	return strings.Join(out, ".")
}

// fieldType finds the type of the field encoding/json decodes key into,
// including fields promoted from embedded structs.
func fieldType(t reflect.Type, key string) reflect.Type {
	for _, f := range reflect.VisibleFields(t) {
		if !f.IsExported() || f.Anonymous {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" {
			name = f.Name
		}
		if strings.EqualFold(name, key) {
			return f.Type
		}
	}
	return nil
}

// RequireKeys fails on the first key in keys missing from obj, or present as null.
func RequireKeys(field string, obj map[string]json.RawMessage, keys ...string) error {
	for _, k := range keys {
		if IsAbsent(obj[k]) {
			return Required(JoinPath(field, k))
		}
	}
	return nil
}

// DecodeFixed decodes a payload of a fixed-header type. The header is
// checked against want (absent means want), required keys must be present
// and non-null, and the whole object is then decoded into body, which is
// normally a method-free alias of the target type.
func DecodeFixed(want Header, data []byte, body any, required ...string) (Header, error) {
	obj, err := Object("", data)
	if err != nil {
		return Header{}, err
	}
	header, err := FixedHeader(want, obj[HeaderField])
	if err != nil {
		return Header{}, err
	}
	if err := RequireKeys("", obj, required...); err != nil {
		return Header{}, err
	}
	if err := Decode("", data, body); err != nil {
		return Header{}, err
	}
	return header, nil
}

// NilIfEmpty maps an empty slice to nil, the form decoding produces.
func NilIfEmpty[S ~[]E, E any](s S) S {
	if len(s) == 0 {
		return nil
	}
	return s
}

// NilIfEmptyMap is NilIfEmpty for maps.
func NilIfEmptyMap[M ~map[K]V, K comparable, V any](m M) M {
	if len(m) == 0 {
		return nil
	}
	return m
}

// DecodeList decodes a JSON array element by element so that a failure is
// reported at its index. Absent, null and empty arrays yield nil.
func DecodeList[T any](field string, raw json.RawMessage) ([]T, error) {
	if IsAbsent(raw) {
		return nil, nil
	}
	elems, err := Array(field, raw)
	if err != nil {
		return nil, err
	}
	if len(elems) == 0 {
		return nil, nil
	}
	out := make([]T, 0, len(elems))
	for i, elem := range elems {
		var v T
		if err := Decode(Index(field, i), elem, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
