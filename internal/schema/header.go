package schema

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// MaxVersionLength bounds Header.Version.
const MaxVersionLength = 50

// HeaderField is the top-level JSON field carrying the header.
const HeaderField = "schemaHeader"

// Header identifies a payload's schema family (Name) and revision (Version).
// Version is opaque except for Major, which the registry keys on.
type Header struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// NewHeader returns a validated header.
func NewHeader(name, version string) (Header, error) {
	h := Header{Name: name, Version: version}
	if err := h.Validate(); err != nil {
		return Header{}, err
	}
	return h, nil
}

// MustHeader is like NewHeader but panics on error.
// Use it for package-level fixed headers.
func MustHeader(name, version string) Header {
	h, err := NewHeader(name, version)
	if err != nil {
		panic(err)
	}
	return h
}

// Validate checks the shape constraints on both fields.
func (h Header) Validate() error {
	if h.Name == "" {
		return NewError(ErrInvalidHeader, "name", h.Name, "name must not be empty")
	}
	if h.Version == "" {
		return NewError(ErrInvalidHeader, "version", h.Version, "version must not be empty")
	}
	if n := utf8.RuneCountInString(h.Version); n > MaxVersionLength {
		return NewError(ErrInvalidHeader, "version", h.Version,
			"version is %d characters, at most %d allowed", n, MaxVersionLength)
	}
	return nil
}

// Major is the version substring before the first ".".
func (h Header) Major() string {
	major, _, _ := strings.Cut(h.Version, ".")
	return major
}

// Key is the registry lookup key: Name followed directly by Major.
func (h Header) Key() string {
	return h.Name + h.Major()
}

func (h Header) String() string {
	return h.Name + "@" + h.Version
}

// IsZero reports whether h was never set.
func (h Header) IsZero() bool {
	return h == Header{}
}

// UnmarshalJSON decodes and validates a header object. null is a no-op.
func (h *Header) UnmarshalJSON(data []byte) error {
	if IsAbsent(data) {
		return nil
	}
	var wire struct {
		Name    *string `json:"name"`
		Version *string `json:"version"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return &Error{Code: ErrInvalidHeader, Message: "header must be an object", Err: err}
	}
	if wire.Name == nil {
		return NewError(ErrInvalidHeader, "name", nil, "field required")
	}
	if wire.Version == nil {
		return NewError(ErrInvalidHeader, "version", nil, "field required")
	}
	decoded := Header{Name: *wire.Name, Version: *wire.Version}
	if err := decoded.Validate(); err != nil {
		return err
	}
	*h = decoded
	return nil
}

// CheckFixed fails with HEADER_MISMATCH unless got equals want.
func CheckFixed(want, got Header) error {
	if got != want {
		return &Error{
			Code:    ErrHeaderMismatch,
			Field:   HeaderField,
			Message: "expected " + want.String() + ", got " + got.String(),
			Value:   got,
		}
	}
	return nil
}

// FixedHeader resolves the header of a payload being parsed as a type whose
// header is fixed to want. An absent or null header takes the fixed value.
func FixedHeader(want Header, raw json.RawMessage) (Header, error) {
	if IsAbsent(raw) {
		return want, nil
	}
	var got Header
	if err := json.Unmarshal(raw, &got); err != nil {
		return Header{}, At(HeaderField, err)
	}
	if err := CheckFixed(want, got); err != nil {
		return Header{}, err
	}
	return got, nil
}
