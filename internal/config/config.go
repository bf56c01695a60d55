// Package config defines the corpuskit configuration surface: chunking,
// BM25, and compression parameters, loaded in order of increasing
// precedence from hardcoded defaults, a project YAML file, and
// CORPUSKIT_* environment variable overrides.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/corpuskit/corpuskit/internal/corpuserr"
	"github.com/corpuskit/corpuskit/pkg/version"
)

// Config is the complete corpuskit configuration, mirroring spec.md §6's
// recognised options.
type Config struct {
	Chunking    ChunkingConfig    `yaml:"chunking" json:"chunking"`
	BM25        BM25Config        `yaml:"bm25" json:"bm25"`
	Compression CompressionConfig `yaml:"compression" json:"compression"`
	Versions    VersionsConfig    `yaml:"versions" json:"versions"`
}

// ChunkingConfig configures the fixed-size word-count chunker.
type ChunkingConfig struct {
	ChunkSize    int `yaml:"chunk_size" json:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap" json:"chunk_overlap"`
}

// BM25Config configures the Okapi BM25 ranking function.
type BM25Config struct {
	K1           float64 `yaml:"bm25_k1" json:"bm25_k1"`
	B            float64 `yaml:"bm25_b" json:"bm25_b"`
	UseStopwords bool    `yaml:"bm25_use_stopwords" json:"bm25_use_stopwords"`
}

// CompressionConfig configures the chunk store's payload codec.
type CompressionConfig struct {
	Algorithm string `yaml:"algorithm" json:"algorithm"`
	ZstdLevel int    `yaml:"zstd_level" json:"zstd_level"`
}

// VersionsConfig pins the versions recorded in the artifact manifest.
type VersionsConfig struct {
	SchemaVersion   string `yaml:"schema_version" json:"schema_version"`
	ArtifactVersion string `yaml:"artifact_version" json:"artifact_version"`
}

const configFilename = ".corpuskit.yaml"

// NewConfig returns a Config populated with spec.md §6's defaults.
func NewConfig() *Config {
	return &Config{
		Chunking: ChunkingConfig{
			ChunkSize:    512,
			ChunkOverlap: 50,
		},
		BM25: BM25Config{
			K1:           1.5,
			B:            0.75,
			UseStopwords: false,
		},
		Compression: CompressionConfig{
			Algorithm: "zstd",
			ZstdLevel: 3,
		},
		Versions: VersionsConfig{
			SchemaVersion:   version.ArtifactSchemaVersion,
			ArtifactVersion: version.ArtifactFormatVersion,
		},
	}
}

// Load builds a Config from defaults, then a project-local .corpuskit.yaml
// in dir (if present), then CORPUSKIT_* environment variables, then
// validates the result.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFromFile(dir string) error {
	path := filepath.Join(dir, configFilename)
	if !fileExists(path) {
		return nil
	}
	return c.loadYAML(path)
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return corpuserr.IOError(corpuserr.CodeIOReadFailed, "read config file", err).WithFile(path)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return corpuserr.ConfigError("parse config file " + path + ": " + err.Error())
	}
	c.mergeWith(&parsed)
	return nil
}

// mergeWith overlays non-zero fields of other onto c.
func (c *Config) mergeWith(other *Config) {
	if other.Chunking.ChunkSize != 0 {
		c.Chunking.ChunkSize = other.Chunking.ChunkSize
	}
	if other.Chunking.ChunkOverlap != 0 {
		c.Chunking.ChunkOverlap = other.Chunking.ChunkOverlap
	}
	if other.BM25.K1 != 0 {
		c.BM25.K1 = other.BM25.K1
	}
	if other.BM25.B != 0 {
		c.BM25.B = other.BM25.B
	}
	if other.BM25.UseStopwords {
		c.BM25.UseStopwords = other.BM25.UseStopwords
	}
	if other.Compression.Algorithm != "" {
		c.Compression.Algorithm = other.Compression.Algorithm
	}
	if other.Compression.ZstdLevel != 0 {
		c.Compression.ZstdLevel = other.Compression.ZstdLevel
	}
	if other.Versions.SchemaVersion != "" {
		c.Versions.SchemaVersion = other.Versions.SchemaVersion
	}
	if other.Versions.ArtifactVersion != "" {
		c.Versions.ArtifactVersion = other.Versions.ArtifactVersion
	}
}

// applyEnvOverrides applies CORPUSKIT_* environment variable overrides,
// the highest-precedence configuration source.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CORPUSKIT_CHUNK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Chunking.ChunkSize = n
		}
	}
	if v := os.Getenv("CORPUSKIT_CHUNK_OVERLAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Chunking.ChunkOverlap = n
		}
	}
	if v := os.Getenv("CORPUSKIT_BM25_K1"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.BM25.K1 = f
		}
	}
	if v := os.Getenv("CORPUSKIT_BM25_B"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.BM25.B = f
		}
	}
	if v := os.Getenv("CORPUSKIT_BM25_USE_STOPWORDS"); v != "" {
		c.BM25.UseStopwords = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("CORPUSKIT_ZSTD_LEVEL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Compression.ZstdLevel = n
		}
	}
}

// Validate checks every range spec.md §6 names, returning a ConfigError
// naming the first violation found.
func (c *Config) Validate() error {
	if c.Chunking.ChunkSize <= 0 {
		return corpuserr.ConfigError("chunk_size must be positive")
	}
	if c.Chunking.ChunkOverlap < 0 || c.Chunking.ChunkOverlap >= c.Chunking.ChunkSize {
		return corpuserr.ConfigError("chunk_overlap must be non-negative and less than chunk_size")
	}
	if c.BM25.K1 <= 0 {
		return corpuserr.ConfigError("bm25_k1 must be positive")
	}
	if c.BM25.B < 0 || c.BM25.B > 1 {
		return corpuserr.ConfigError("bm25_b must be between 0 and 1")
	}
	if c.Compression.Algorithm != "zstd" {
		return corpuserr.ConfigError("compression algorithm must be \"zstd\"")
	}
	if c.Compression.ZstdLevel < 1 || c.Compression.ZstdLevel > 22 {
		return corpuserr.ConfigError("zstd_level must be between 1 and 22")
	}
	if c.Versions.SchemaVersion == "" {
		return corpuserr.ConfigError("schema_version must not be empty")
	}
	if c.Versions.ArtifactVersion == "" {
		return corpuserr.ConfigError("artifact_version must not be empty")
	}
	return nil
}

// WriteYAML writes c to path in YAML form.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return corpuserr.ConfigError("marshal config: " + err.Error())
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return corpuserr.IOError(corpuserr.CodeIOWriteFailed, "write config file", err).WithFile(path)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
