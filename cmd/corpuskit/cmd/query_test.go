package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpuskit/corpuskit/internal/artifact"
	"github.com/corpuskit/corpuskit/internal/config"
	"github.com/corpuskit/corpuskit/internal/retrieval"
)

func buildFixtureArtifact(t *testing.T) string {
	t.Helper()
	corpus := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(corpus, "a.txt"),
		[]byte("deep learning models require large amounts of training data"), 0o644))

	artifactDir := t.TempDir()
	cfg := config.NewConfig()
	_, err := artifact.Build(context.Background(), corpus, artifactDir, cfg, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return artifactDir
}

func TestQueryCmd_TextOutput(t *testing.T) {
	artifactDir := buildFixtureArtifact(t)

	cmd := newQueryCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"training data", "--artifact", artifactDir})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "training")
}

func TestQueryCmd_JSONOutput(t *testing.T) {
	artifactDir := buildFixtureArtifact(t)

	cmd := newQueryCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"training data", "--artifact", artifactDir, "--format", "json"})

	require.NoError(t, cmd.Execute())

	var results []retrieval.Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &results))
	assert.NotEmpty(t, results)
}

func TestQueryCmd_VerboseOutputPrintsFullChunkText(t *testing.T) {
	artifactDir := buildFixtureArtifact(t)

	cmd := newQueryCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"training data", "--artifact", artifactDir, "--verbose"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "deep learning models require large amounts of training data")
}

func TestQueryCmd_ContextOutputAssemblesCitations(t *testing.T) {
	artifactDir := buildFixtureArtifact(t)

	cmd := newQueryCmd()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"training data", "--artifact", artifactDir, "--format", "context"})

	require.NoError(t, cmd.Execute())
	output := buf.String()
	assert.Contains(t, output, "[Doc: a.txt]")
	assert.Contains(t, output, "deep learning models require large amounts of training data")
}

func TestQueryCmd_MissingArtifactErrors(t *testing.T) {
	cmd := newQueryCmd()
	cmd.SetArgs([]string{"anything", "--artifact", filepath.Join(t.TempDir(), "missing")})
	assert.Error(t, cmd.Execute())
}
