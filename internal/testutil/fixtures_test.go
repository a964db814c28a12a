package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootHoldsModule(t *testing.T) {
	_, err := os.Stat(filepath.Join(Root(), "go.mod"))
	require.NoError(t, err)
}

func TestReadPayload(t *testing.T) {
	data := ReadPayload(t, "bell.json")
	assert.True(t, json.Valid(data))
	assert.Equal(t, "bell.json", filepath.Base(PayloadPath("bell.json")))
}
