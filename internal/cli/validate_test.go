package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qschema/internal/testutil"
)

func runValidateCmd(t *testing.T, opts *RootOptions, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(opts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestValidateValidPayloads(t *testing.T) {
	for _, name := range []string{"bell.json", "bell.yaml", "bell.cue", "program_set.json", "device.json"} {
		t.Run(name, func(t *testing.T) {
			out, err := runValidateCmd(t, &RootOptions{Format: "text"}, testutil.PayloadPath(name))
			require.NoError(t, err)
			assert.Contains(t, out, "✓ All payloads valid")
		})
	}
}

func TestValidateValidPayloadsJSON(t *testing.T) {
	out, err := runValidateCmd(t, &RootOptions{Format: "json"}, testutil.PayloadPath("bell.yaml"), testutil.PayloadPath("program_set.json"))
	require.NoError(t, err)

	resp, result := decodeResponse[ValidationResult](t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.TraceID)
	assert.True(t, result.Valid)
	require.Len(t, result.Payloads, 2)
	assert.Equal(t, "jaqcd.Program", result.Payloads[0].Type)
	assert.Equal(t, "openqasm.ProgramSet", result.Payloads[1].Type)
	require.NotNil(t, result.Payloads[1].Schema)
	assert.Equal(t, "qschema.ir.openqasm.program_set", result.Payloads[1].Schema.Name)
}

func TestValidateReportsDroppedElements(t *testing.T) {
	out, err := runValidateCmd(t, &RootOptions{Format: "json"}, testutil.PayloadPath("device.json"))
	require.NoError(t, err)

	_, result := decodeResponse[ValidationResult](t, out)
	require.Len(t, result.Payloads, 1)
	require.Len(t, result.Payloads[0].Dropped, 1)
	assert.Equal(t, `action["qschema.ir.openqasm.program"].supportedModifiers[1]`, result.Payloads[0].Dropped[0].Path)
	assert.Contains(t, result.Payloads[0].Dropped[0].Error, "UNKNOWN_VARIANT")
}

func TestValidateStrictFailsOnDrops(t *testing.T) {
	out, err := runValidateCmd(t, &RootOptions{Format: "json", Strict: true}, testutil.PayloadPath("device.json"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp, result := decodeResponse[ValidationResult](t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeDropped, resp.Error.Code)
	assert.False(t, result.Valid)
	require.NotNil(t, result.Payloads[0].Error)
	assert.Empty(t, result.Payloads[0].Error.SchemaCode)
	assert.Equal(t, "device.Capabilities", result.Payloads[0].Type)
}

func TestValidateInvalidPayloads(t *testing.T) {
	tests := []struct {
		name       string
		file       string
		code       string
		schemaCode string
		field      string
	}{
		{"negative target", "bad_target.json", ErrCodeInvalidPayload, "FIELD_CONSTRAINT", "instructions[0].target"},
		{"unregistered major", "unknown_schema.json", ErrCodeUnknownSchema, "UNKNOWN_SCHEMA", "schemaHeader"},
		{"unequal inputs", "program_set_unequal.json", ErrCodeInvalidPayload, "UNEQUAL_INPUT_LENGTH", "programs[0].inputs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runValidateCmd(t, &RootOptions{Format: "json"}, testutil.PayloadPath(tt.file))
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))

			resp, result := decodeResponse[ValidationResult](t, out)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.Equal(t, "1 of 1 payload(s) invalid", resp.Error.Message)

			require.Len(t, result.Payloads, 1)
			pe := result.Payloads[0].Error
			require.NotNil(t, pe)
			assert.Equal(t, tt.schemaCode, pe.SchemaCode)
			assert.Equal(t, tt.field, pe.Field)
		})
	}
}

func TestValidateMixedText(t *testing.T) {
	out, err := runValidateCmd(t, &RootOptions{Format: "text"}, testutil.PayloadPath("bell.json"), testutil.PayloadPath("bad_target.json"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, out, "✓ "+testutil.PayloadPath("bell.json")+": jaqcd.Program (qschema.ir.jaqcd.program@1)")
	assert.Contains(t, out, "✗ "+testutil.PayloadPath("bad_target.json"))
	assert.Contains(t, out, "E101: FIELD_CONSTRAINT at instructions[0].target")
	assert.Contains(t, out, "✗ Validation failed: 1 of 2 payload(s) invalid")
}

func TestValidateDirectory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"bell.json", "program_set.json"} {
		data, err := os.ReadFile(testutil.PayloadPath(name))
		require.NoError(t, err)
		writeFile(t, dir, name, string(data))
	}
	writeFile(t, dir, "README.md", "not a payload")

	out, err := runValidateCmd(t, &RootOptions{Format: "json"}, dir)
	require.NoError(t, err)

	_, result := decodeResponse[ValidationResult](t, out)
	require.Len(t, result.Payloads, 2)
	assert.Equal(t, filepath.Join(dir, "bell.json"), result.Payloads[0].Path)
	assert.Equal(t, filepath.Join(dir, "program_set.json"), result.Payloads[1].Path)
}

func TestValidateLoadErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.Mkdir(empty, 0o755))

	tests := []struct {
		name string
		args []string
		opts RootOptions
		code string
	}{
		{"missing file", []string{"/nonexistent/payload.json"}, RootOptions{}, ErrCodeNotFound},
		{"empty directory", []string{empty}, RootOptions{}, ErrCodeNoFiles},
		{"unsupported extension", []string{writeFile(t, dir, "payload.txt", "{}")}, RootOptions{}, ErrCodeUnsupported},
		{"malformed json", []string{writeFile(t, dir, "broken.json", "{")}, RootOptions{}, ErrCodeLoadFailed},
		{"malformed yaml", []string{writeFile(t, dir, "broken.yaml", "a: [1, 2")}, RootOptions{}, ErrCodeLoadFailed},
		{"cue syntax", []string{writeFile(t, dir, "broken.cue", "a: {")}, RootOptions{}, ErrCodeLoadFailed},
		{"cue not concrete", []string{writeFile(t, dir, "open.cue", "a: int")}, RootOptions{}, ErrCodeBuildFailed},
		{"too large", []string{testutil.PayloadPath("bell.json")}, RootOptions{MaxPayloadBytes: 16}, ErrCodeTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			opts.Format = "json"
			out, err := runValidateCmd(t, &opts, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), tt.code)

			resp, _ := decodeResponse[any](t, out)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestValidateRequiresArgs(t *testing.T) {
	_, err := runValidateCmd(t, &RootOptions{Format: "text"})
	require.Error(t, err)
}
