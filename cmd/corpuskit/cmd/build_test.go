package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCmd_BuildsArtifactFromCorpus(t *testing.T) {
	corpus := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(corpus, "a.txt"), []byte("hello world this is a test document"), 0o644))

	artifactDir := filepath.Join(t.TempDir(), "out")

	cmd := newBuildCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{corpus, "--artifact", artifactDir})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "built 1 documents")
	assert.FileExists(t, filepath.Join(artifactDir, "manifest.json"))
}

func TestBuildCmd_RequiresCorpusArg(t *testing.T) {
	cmd := newBuildCmd()
	cmd.SetArgs([]string{})
	assert.Error(t, cmd.Execute())
}
