package cli

import (
	"errors"

	"github.com/roach88/qschema/internal/payload"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No payload files found
	ErrCodeLoadFailed  = "E004" // Payload or config could not be read or decoded
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE evaluation failed
	ErrCodeTooLarge    = "E008" // Payload exceeds max_payload_bytes
	ErrCodeUnsupported = "E009" // Unknown payload file extension

	// Payload errors
	ErrCodeInvalidPayload = "E101" // Payload failed validation
	ErrCodeUnknownSchema  = "E102" // No registered type for the header
	ErrCodeDropped        = "E103" // Strict mode: lenient elements were dropped
	ErrCodeNotCountable   = "E104" // Payload has no execution count
	ErrCodeNotAdmitted    = "E105" // Program set rejected by device limits

	// Scenario errors
	ErrCodeScenarioFailed = "E201" // A conformance scenario failed
)

// LoadError is a file that could not be turned into a payload.
type LoadError struct {
	Code string
	Err  *payload.Error
}

func (e *LoadError) Error() string { return e.Code + ": " + e.Err.Error() }
func (e *LoadError) Unwrap() error { return e.Err }

func loadCode(kind payload.Kind) string {
	switch kind {
	case payload.KindNotFound:
		return ErrCodeNotFound
	case payload.KindUnsupported:
		return ErrCodeUnsupported
	case payload.KindTooLarge:
		return ErrCodeTooLarge
	case payload.KindEvaluate:
		return ErrCodeBuildFailed
	case payload.KindScan:
		return ErrCodeScanError
	case payload.KindNoFiles:
		return ErrCodeNoFiles
	default:
		return ErrCodeLoadFailed
	}
}

// asLoadError attaches a CLI code to payload package errors.
func asLoadError(err error) error {
	var perr *payload.Error
	if errors.As(err, &perr) {
		return &LoadError{Code: loadCode(perr.Kind), Err: perr}
	}
	return err
}

// LoadPayload reads a payload file. maxBytes <= 0 uses the package default.
func LoadPayload(path string, maxBytes int64) (*payload.Document, error) {
	doc, err := payload.Load(path, maxBytes)
	if err != nil {
		return nil, asLoadError(err)
	}
	return doc, nil
}

// ExpandPaths turns directory arguments into the payload files they contain.
func ExpandPaths(args []string) ([]string, error) {
	paths, err := payload.Expand(args)
	if err != nil {
		return nil, asLoadError(err)
	}
	return paths, nil
}
