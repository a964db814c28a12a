package taskresult

import (
	"bytes"
	"encoding/json"

	"github.com/roach88/qschema/internal/schema"
)

// Ref is a document given either inline or as a path relative to the
// result location. Exactly one of Path and Inline is set.
type Ref[T schema.Schema] struct {
	Path   string
	Inline *T
}

func PathRef[T schema.Schema](path string) Ref[T] { return Ref[T]{Path: path} }
func InlineRef[T schema.Schema](v T) Ref[T]       { return Ref[T]{Inline: &v} }

func (r Ref[T]) IsInline() bool { return r.Inline != nil }

func (r Ref[T]) Validate() error {
	switch {
	case r.Inline != nil && r.Path != "":
		return schema.FieldConstraint("", r.Path, "either a path or an inline document, not both")
	case r.Inline != nil:
		return (*r.Inline).Validate()
	default:
		return schema.NotEmpty("", r.Path)
	}
}

func (r Ref[T]) MarshalJSON() ([]byte, error) {
	if r.Inline != nil {
		return json.Marshal(*r.Inline)
	}
	return json.Marshal(r.Path)
}

func (r *Ref[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var path string
		if err := json.Unmarshal(data, &path); err != nil {
			return err
		}
		if err := schema.NotEmpty("", path); err != nil {
			return err
		}
		*r = Ref[T]{Path: path}
		return nil
	}
	var v T
	if err := schema.Decode("", data, &v); err != nil {
		return err
	}
	*r = Ref[T]{Inline: &v}
	return nil
}

// decodePathsOr reads a list that is either all relative paths or all
// inline documents, the kind chosen by the first element.
func decodePathsOr[T any](field string, raw json.RawMessage, items func(field string, raw json.RawMessage) ([]T, error)) ([]string, []T, error) {
	elems, err := schema.Array(field, raw)
	if err != nil {
		return nil, nil, err
	}
	if len(elems) == 0 {
		return nil, nil, nil
	}
	if first := bytes.TrimSpace(elems[0]); len(first) == 0 || first[0] != '"' {
		list, err := items(field, raw)
		return nil, list, err
	}
	paths := make([]string, 0, len(elems))
	for i, e := range elems {
		var p string
		if err := schema.Decode(schema.Index(field, i), e, &p); err != nil {
			return nil, nil, err
		}
		if err := schema.NotEmpty(schema.Index(field, i), p); err != nil {
			return nil, nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil, nil
}

func checkPathsOr[T any](field string, paths []string, items []T) error {
	if paths != nil && items != nil {
		return schema.FieldConstraint(field, nil, "either paths or inline documents, not both")
	}
	return schema.Each(field, paths, func(p string) error { return schema.NotEmpty("", p) })
}

func marshalPathsOr[T any](paths []string, items []T) any {
	switch {
	case paths != nil:
		return paths
	case items != nil:
		return items
	default:
		return []string{}
	}
}
