package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_MatchesSpecDefaults(t *testing.T) {
	cfg := NewConfig()
	assert.Equal(t, 512, cfg.Chunking.ChunkSize)
	assert.Equal(t, 50, cfg.Chunking.ChunkOverlap)
	assert.Equal(t, 1.5, cfg.BM25.K1)
	assert.Equal(t, 0.75, cfg.BM25.B)
	assert.False(t, cfg.BM25.UseStopwords)
	assert.Equal(t, "zstd", cfg.Compression.Algorithm)
	assert.Equal(t, 3, cfg.Compression.ZstdLevel)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_NoFilePresentReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, NewConfig(), cfg)
}

func TestLoad_ProjectFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	yamlContent := "chunking:\n  chunk_size: 256\n  chunk_overlap: 32\nbm25:\n  bm25_k1: 2.0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".corpuskit.yaml"), []byte(yamlContent), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 256, cfg.Chunking.ChunkSize)
	assert.Equal(t, 32, cfg.Chunking.ChunkOverlap)
	assert.Equal(t, 2.0, cfg.BM25.K1)
	assert.Equal(t, 0.75, cfg.BM25.B, "unset fields keep their defaults")
}

func TestLoad_EnvOverridesProjectFileAndDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".corpuskit.yaml"), []byte("chunking:\n  chunk_size: 256\n"), 0o644))
	t.Setenv("CORPUSKIT_CHUNK_SIZE", "128")
	t.Setenv("CORPUSKIT_BM25_USE_STOPWORDS", "true")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 128, cfg.Chunking.ChunkSize)
	assert.True(t, cfg.BM25.UseStopwords)
}

func TestValidate_RejectsNonPositiveChunkSize(t *testing.T) {
	cfg := NewConfig()
	cfg.Chunking.ChunkSize = 0
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsOverlapGreaterOrEqualChunkSize(t *testing.T) {
	cfg := NewConfig()
	cfg.Chunking.ChunkOverlap = cfg.Chunking.ChunkSize
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsNegativeOverlap(t *testing.T) {
	cfg := NewConfig()
	cfg.Chunking.ChunkOverlap = -1
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsNonPositiveK1(t *testing.T) {
	cfg := NewConfig()
	cfg.BM25.K1 = 0
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsOutOfRangeB(t *testing.T) {
	cfg := NewConfig()
	cfg.BM25.B = 1.5
	assert.Error(t, cfg.Validate())

	cfg.BM25.B = -0.1
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsOutOfRangeZstdLevel(t *testing.T) {
	cfg := NewConfig()
	cfg.Compression.ZstdLevel = 0
	assert.Error(t, cfg.Validate())

	cfg.Compression.ZstdLevel = 23
	assert.Error(t, cfg.Validate())
}

func TestValidate_RejectsNonZstdCompression(t *testing.T) {
	cfg := NewConfig()
	cfg.Compression.Algorithm = "gzip"
	assert.Error(t, cfg.Validate())
}

func TestWriteYAML_RoundTrip(t *testing.T) {
	cfg := NewConfig()
	cfg.Chunking.ChunkSize = 777
	path := filepath.Join(t.TempDir(), ".corpuskit.yaml")
	require.NoError(t, cfg.WriteYAML(path))

	reloaded := NewConfig()
	require.NoError(t, reloaded.loadYAML(path))
	assert.Equal(t, 777, reloaded.Chunking.ChunkSize)
}
