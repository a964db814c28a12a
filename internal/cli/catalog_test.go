package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewCatalogCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	_, entries := decodeResponse[[]CatalogEntry](t, buf.String())
	require.Len(t, entries, 21)
	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].Key, entries[i].Key)
	}
	assert.Contains(t, entries, CatalogEntry{
		Key:     "qschema.event.task.state_change1",
		Name:    "qschema.event.task.state_change",
		Version: "1.0",
		Type:    "event.TaskStateChangeDetail",
	})
}

func TestCatalogText(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewCatalogCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 22)
	assert.Regexp(t, `^NAME\s+VERSION\s+TYPE$`, string(lines[0]))
	assert.Contains(t, buf.String(), "qschema.ir.jaqcd.program")
}

func TestCatalogRejectsArgs(t *testing.T) {
	cmd := NewCatalogCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"extra"})
	require.Error(t, cmd.Execute())
}
