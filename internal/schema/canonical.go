package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// Serialize validates v and renders it as deterministic JSON: object keys
// sorted by UTF-16 code units, no HTML escaping, numbers as encoding/json
// formats them. Serializing the same value always yields the same bytes.
func Serialize(v Schema) ([]byte, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("serialize %s: %w", v.SchemaHeader(), err)
	}
	return canonicalize(raw, false)
}

// MarshalCanonical renders any JSON-marshalable value in RFC 8785 key order
// with strings NFC normalized. This is the form fingerprints are taken over.
func MarshalCanonical(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return canonicalize(raw, true)
}

// CanonicalizeJSON re-renders an arbitrary JSON document in canonical form.
func CanonicalizeJSON(raw []byte) ([]byte, error) {
	return canonicalize(raw, true)
}

func canonicalize(raw []byte, nfc bool) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("canonicalize: %w", err)
	}
	enc := canonicalEncoder{nfc: nfc}
	if err := enc.value(doc); err != nil {
		return nil, err
	}
	return enc.buf.Bytes(), nil
}

type canonicalEncoder struct {
	buf bytes.Buffer
	nfc bool
}

func (e *canonicalEncoder) value(v any) error {
	switch val := v.(type) {
	case nil:
		e.buf.WriteString("null")
	case bool:
		if val {
			e.buf.WriteString("true")
		} else {
			e.buf.WriteString("false")
		}
	case json.Number:
		e.buf.WriteString(val.String())
	case string:
		return e.str(val)
	case []any:
		e.buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			if err := e.value(elem); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		e.buf.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.SortFunc(keys, compareKeysRFC8785)
		e.buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				e.buf.WriteByte(',')
			}
			if err := e.str(k); err != nil {
				return err
			}
			e.buf.WriteByte(':')
			if err := e.value(val[k]); err != nil {
				return fmt.Errorf("%q: %w", k, err)
			}
		}
		e.buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
	return nil
}

// str writes a JSON string without HTML escaping and with U+2028/U+2029
// left literal.
func (e *canonicalEncoder) str(s string) error {
	if e.nfc {
		s = norm.NFC.String(s)
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	out := bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})
	e.buf.Write(unescapeLineSeparators(out))
	return nil
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes json.Encoder
// emits back into literal characters. An escape preceded by an odd run of
// backslashes is literal text and is kept.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] == '\\' && i+5 < len(data) && string(data[i+1:i+5]) == "u202" &&
			(data[i+5] == '8' || data[i+5] == '9') {
			run := 0
			for j := len(out) - 1; j >= 0 && out[j] == '\\'; j-- {
				run++
			}
			if run%2 == 0 {
				if data[i+5] == '8' {
					out = append(out, "\u2028"...)
				} else {
					out = append(out, "\u2029"...)
				}
				i += 5
				continue
			}
		}
		out = append(out, data[i])
	}
	return out
}

// compareKeysRFC8785 orders keys by UTF-16 code units, which differs from
// Go's byte order for characters above U+FFFF.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	for i := 0; i < min(len(a16), len(b16)); i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	return len(a16) - len(b16)
}
