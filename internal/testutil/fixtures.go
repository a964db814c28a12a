package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// Root is the module root, located from this file's path so tests in any
// package resolve the same testdata.
func Root() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..")
}

// PayloadPath is the path of a shared payload under testdata/payloads.
func PayloadPath(name string) string {
	return filepath.Join(Root(), "testdata", "payloads", name)
}

// ReadPayload reads a shared payload, failing the test if it is missing.
func ReadPayload(t testing.TB, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(PayloadPath(name))
	if err != nil {
		t.Fatalf("read payload %s: %v", name, err)
	}
	return data
}
