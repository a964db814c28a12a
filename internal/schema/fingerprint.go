package schema

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainPayload separates payload fingerprints from any other hash the
// catalog might take. The suffix allows migrating the algorithm.
const DomainPayload = "qschema/payload/v1"

// hashWithDomain is SHA256(domain + 0x00 + data). The NUL byte keeps the
// domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint is the content address of a validated payload. Two values
// that serialize identically share a fingerprint regardless of the key
// order or whitespace of the document they were parsed from.
func Fingerprint(v Schema) (string, error) {
	if err := v.Validate(); err != nil {
		return "", err
	}
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("Fingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainPayload, canonical), nil
}

// MustFingerprint is like Fingerprint but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustFingerprint(v Schema) string {
	fp, err := Fingerprint(v)
	if err != nil {
		panic(err)
	}
	return fp
}
