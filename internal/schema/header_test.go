package schema

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHeader(t *testing.T) {
	tests := []struct {
		name    string
		hname   string
		version string
		wantErr bool
	}{
		{"valid", "qschema.ir.jaqcd.program", "1", false},
		{"dotted version", "x", "2.1", false},
		{"version at limit", "x", strings.Repeat("9", MaxVersionLength), false},
		{"empty name", "", "1", true},
		{"empty version", "x", "", true},
		{"version too long", "x", strings.Repeat("9", MaxVersionLength+1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := NewHeader(tt.hname, tt.version)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, ErrInvalidHeader, CodeOf(err))
				assert.True(t, h.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.hname, h.Name)
			assert.Equal(t, tt.version, h.Version)
		})
	}
}

func TestMustHeaderPanics(t *testing.T) {
	assert.Panics(t, func() { MustHeader("", "1") })
}

func TestHeaderMajorAndKey(t *testing.T) {
	tests := []struct {
		version string
		major   string
	}{
		{"1", "1"},
		{"2.1", "2"},
		{"1.0", "1"},
		{"10.4.2", "10"},
		{"beta", "beta"},
	}
	for _, tt := range tests {
		h := MustHeader("x", tt.version)
		assert.Equal(t, tt.major, h.Major(), tt.version)
		assert.Equal(t, "x"+tt.major, h.Key(), tt.version)
	}
}

func TestHeaderEquality(t *testing.T) {
	assert.Equal(t, MustHeader("x", "1"), MustHeader("x", "1"))
	// Versions compare as strings, not semantically.
	assert.NotEqual(t, MustHeader("x", "1"), MustHeader("x", "1.0"))
}

func TestHeaderJSON(t *testing.T) {
	h := MustHeader("qschema.ir.jaqcd.program", "1")
	data, err := json.Marshal(h)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"qschema.ir.jaqcd.program","version":"1"}`, string(data))

	var back Header
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, h, back)
}

func TestHeaderUnmarshalRejectsInvalid(t *testing.T) {
	var h Header
	err := json.Unmarshal([]byte(`{"name":"x","version":"`+strings.Repeat("1", 51)+`"}`), &h)
	assert.True(t, HasCode(err, ErrInvalidHeader))
	assert.True(t, h.IsZero(), "failed decode must not populate the header")

	err = json.Unmarshal([]byte(`"x@1"`), &h)
	assert.True(t, HasCode(err, ErrInvalidHeader))
}

func TestCheckFixed(t *testing.T) {
	want := MustHeader("x", "1")
	assert.NoError(t, CheckFixed(want, MustHeader("x", "1")))

	err := CheckFixed(want, MustHeader("x", "1.1"))
	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, ErrHeaderMismatch, se.Code)
	assert.Equal(t, HeaderField, se.Field)
	assert.Contains(t, se.Message, "x@1")
	assert.Contains(t, se.Message, "x@1.1")
}

func TestHeaderUnmarshalNullIsNoOp(t *testing.T) {
	h := MustHeader("x", "1")
	require.NoError(t, json.Unmarshal([]byte(`null`), &h))
	assert.Equal(t, MustHeader("x", "1"), h)
}
