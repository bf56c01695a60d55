package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestLog(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpuskit.log")
	content := ""
	for _, l := range lines {
		content += l + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLogsCmd_TailsRequestedLineCount(t *testing.T) {
	path := writeTestLog(t,
		`{"time":"2026-01-15T10:00:00Z","level":"INFO","msg":"one","op":"build"}`,
		`{"time":"2026-01-15T10:00:01Z","level":"INFO","msg":"two","op":"query"}`,
	)

	cmd := newLogsCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--file", path, "-n", "1"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "two")
	assert.NotContains(t, buf.String(), "one")
}

func TestLogsCmd_FiltersByOp(t *testing.T) {
	path := writeTestLog(t,
		`{"time":"2026-01-15T10:00:00Z","level":"INFO","msg":"building","op":"build"}`,
		`{"time":"2026-01-15T10:00:01Z","level":"INFO","msg":"querying","op":"query"}`,
	)

	cmd := newLogsCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--file", path, "--op", "query"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "querying")
	assert.NotContains(t, buf.String(), "building")
}

func TestLogsCmd_MissingFileErrors(t *testing.T) {
	cmd := newLogsCmd()
	cmd.SetArgs([]string{"--file", filepath.Join(t.TempDir(), "missing.log")})
	assert.Error(t, cmd.Execute())
}
