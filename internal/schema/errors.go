package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode identifies a failure kind. Codes are stable and surface in CLI output.
type ErrorCode string

const (
	ErrInvalidHeader      ErrorCode = "INVALID_HEADER"
	ErrHeaderMismatch     ErrorCode = "HEADER_MISMATCH"
	ErrUnknownVariant     ErrorCode = "UNKNOWN_VARIANT"
	ErrUnknownSchema      ErrorCode = "UNKNOWN_SCHEMA"
	ErrNonListInput       ErrorCode = "NON_LIST_INPUT"
	ErrUnequalInputLength ErrorCode = "UNEQUAL_INPUT_LENGTH"
	ErrFieldConstraint    ErrorCode = "FIELD_CONSTRAINT"

	// Registry and dispatch table construction.
	ErrDuplicateVariant ErrorCode = "DUPLICATE_VARIANT"
	ErrDuplicateSchema  ErrorCode = "DUPLICATE_SCHEMA"
)

// Error is the single error type returned by parsing, validation and
// resolution. Field is a JSON path relative to the payload root, e.g.
// "instructions[3].angle".
type Error struct {
	Code    ErrorCode
	Field   string
	Message string
	Value   any
	Err     error

	// rerooted marks a copy made by At whose Err is the wrapper it was
	// lifted from.
	rerooted bool
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	if e.Field != "" {
		b.WriteString(" at ")
		b.WriteString(e.Field)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if cause := e.cause(); cause != nil {
		b.WriteString(": ")
		b.WriteString(cause.Error())
	}
	return b.String()
}

func (e *Error) cause() error {
	for e.rerooted {
		var inner *Error
		if !errors.As(e.Err, &inner) {
			return nil
		}
		e = inner
	}
	return e.Err
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds an *Error with a formatted message.
func NewError(code ErrorCode, field string, value any, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		Value:   value,
	}
}

// FieldConstraint reports a violated bound, length, pattern or enum.
func FieldConstraint(field string, value any, format string, args ...any) *Error {
	return NewError(ErrFieldConstraint, field, value, format, args...)
}

// Required reports a missing required field.
func Required(field string) *Error {
	return FieldConstraint(field, nil, "field required")
}

// UnknownVariant reports a tagged-union item whose discriminant is missing
// or not a member of set.
func UnknownVariant(set, field string, value any) *Error {
	if value == nil {
		return NewError(ErrUnknownVariant, field, nil, "missing discriminant for %s", set)
	}
	return NewError(ErrUnknownVariant, field, value, "invalid %s specified: %v", set, value)
}

// CodeOf returns the code of the outermost *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// HasCode reports whether any *Error in err's chain carries code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		var se *Error
		if !errors.As(err, &se) {
			return false
		}
		if se.Code == code {
			return true
		}
		err = se.Err
	}
	return false
}

// At re-roots err under path. An *Error keeps its code and gets path
// prepended to its Field; any other error becomes a FIELD_CONSTRAINT at path.
// When the *Error was wrapped, the wrapper stays in Err and its text leads
// the message.
//
//	At("instructions[2]", err) // "angle" -> "instructions[2].angle"
func At(path string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if !errors.As(err, &se) {
		return &Error{Code: ErrFieldConstraint, Field: path, Message: "invalid value", Err: err}
	}
	if path == "" {
		return err
	}
	out := *se
	out.Field = JoinPath(path, se.Field)
	if err != error(se) {
		if prefix, ok := strings.CutSuffix(err.Error(), ": "+se.Error()); ok {
			out.Message = prefix + ": " + se.Message
		}
		out.Err = err
		out.rerooted = true
	}
	return &out
}

// JoinPath appends child to a field path, gluing index segments without a dot.
func JoinPath(parent, child string) string {
	switch {
	case parent == "":
		return child
	case child == "":
		return parent
	case strings.HasPrefix(child, "["):
		return parent + child
	default:
		return parent + "." + child
	}
}

// Index formats a list element path.
func Index(field string, i int) string {
	return fmt.Sprintf("%s[%d]", field, i)
}

// Key formats a map entry path.
func Key(field, key string) string {
	return fmt.Sprintf("%s[%q]", field, key)
}
