// Package manifest computes and verifies the artifact manifest: SHA-256
// checksums of every required artifact file, bound together with schema
// and artifact versions, build timestamp, and corpus counts.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/corpuskit/corpuskit/internal/corpuserr"
)

// Filename is the manifest's own file name within the artifact directory.
const Filename = "manifest.json"

// baseRequiredFiles are the artifact files whose checksums a manifest must
// cover besides the BM25 index, whose file name is passed in by the caller
// (the artifact package owns it).
var baseRequiredFiles = []string{"chunks.bin", "chunks.idx", "docs.meta"}

// Manifest is the JSON document written to manifest.json.
type Manifest struct {
	SchemaVersion   string            `json:"schema_version"`
	ArtifactVersion string            `json:"artifact_version"`
	BuildTimestamp  string            `json:"build_timestamp"`
	TotalDocs       int               `json:"total_docs"`
	TotalChunks     int               `json:"total_chunks"`
	IndexType       string            `json:"index_type"`
	Compression     string            `json:"compression"`
	Checksums       map[string]string `json:"checksums"`
}

// Build computes SHA-256 checksums for every required file (the base set
// plus bm25IndexFilename) under dir and returns the populated Manifest.
// buildTimestamp must already be formatted as ISO 8601 UTC by the caller,
// since this package never reads the system clock.
func Build(dir, bm25IndexFilename, schemaVersion, artifactVersion, buildTimestamp string, totalDocs, totalChunks int) (*Manifest, error) {
	files := append(append([]string{}, baseRequiredFiles...), bm25IndexFilename)
	sort.Strings(files)

	checksums := make(map[string]string, len(files))
	for _, name := range files {
		sum, err := sha256File(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		checksums[name] = sum
	}

	return &Manifest{
		SchemaVersion:   schemaVersion,
		ArtifactVersion: artifactVersion,
		BuildTimestamp:  buildTimestamp,
		TotalDocs:       totalDocs,
		TotalChunks:     totalChunks,
		IndexType:       "bm25",
		Compression:     "zstd",
		Checksums:       checksums,
	}, nil
}

// Write atomically persists m as human-readable JSON at <dir>/manifest.json.
func Write(dir string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}

	path := filepath.Join(dir, Filename)
	tmp, err := os.CreateTemp(dir, ".manifest.json.tmp-*")
	if err != nil {
		return corpuserr.IOError(corpuserr.CodeIOWriteFailed, "create manifest temp file", err).WithFile(path)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return corpuserr.IOError(corpuserr.CodeIOWriteFailed, "write manifest temp file", err).WithFile(path)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return corpuserr.IOError(corpuserr.CodeIOWriteFailed, "sync manifest temp file", err).WithFile(path)
	}
	if err := tmp.Close(); err != nil {
		return corpuserr.IOError(corpuserr.CodeIOWriteFailed, "close manifest temp file", err).WithFile(path)
	}
	return os.Rename(tmpName, path)
}

// Load reads manifest.json from dir without verifying checksums.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, Filename)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, corpuserr.ManifestMismatchError(corpuserr.CodeManifestMissing, "read manifest.json").WithFile(path)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, corpuserr.ManifestMismatchError(corpuserr.CodeManifestChecksum, "parse manifest.json").WithFile(path)
	}
	return &m, nil
}

// Verify re-hashes every file listed in m.Checksums under dir and returns
// an error naming the first missing file or checksum mismatch found. A
// strict load calls this and aborts on any error; a non-strict load may
// skip calling it entirely.
func Verify(dir string, m *Manifest) error {
	names := make([]string, 0, len(m.Checksums))
	for name := range m.Checksums {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		want := m.Checksums[name]
		path := filepath.Join(dir, name)

		if _, err := os.Stat(path); err != nil {
			return corpuserr.ManifestMismatchError(corpuserr.CodeManifestMissing,
				"required artifact file missing: "+name).WithFile(path)
		}

		got, err := sha256File(path)
		if err != nil {
			return err
		}
		if got != want {
			return corpuserr.ManifestMismatchError(corpuserr.CodeManifestChecksum,
				"checksum mismatch for "+name).WithFile(path)
		}
	}
	return nil
}

func sha256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", corpuserr.ManifestMismatchError(corpuserr.CodeManifestMissing, "open file for checksum").WithFile(path)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", corpuserr.IOError(corpuserr.CodeIOReadFailed, "hash file for manifest", err).WithFile(path)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
