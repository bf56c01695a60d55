package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/corpuskit/corpuskit/internal/corpuserr"
)

// DocMeta is the per-document record kept in docs.meta, keyed by doc_uid.
type DocMeta struct {
	DocUID       string    `json:"doc_uid"`
	DocID        string    `json:"doc_id"`
	SourcePath   string    `json:"source_path"`
	Title        string    `json:"title,omitempty"`
	ChunkCount   int       `json:"chunk_count"`
	ExtractedAt  time.Time `json:"extracted_at"`
	IsTombstoned bool      `json:"is_tombstoned"`
}

// DocsMeta is the in-memory, doc_uid-keyed view of docs.meta. It is loaded
// once at artifact open time; Put and Tombstone change only memory, and
// Flush rewrites the file atomically (temp file + rename), so a crash
// mid-write never leaves a torn file on
// disk for the next reader to trip over.
type DocsMeta struct {
	path string
	docs map[string]DocMeta
}

// LoadDocsMeta reads docs.meta from path. A missing file is not an error:
// it means no documents have been committed yet.
func LoadDocsMeta(path string) (*DocsMeta, error) {
	dm := &DocsMeta{path: path, docs: make(map[string]DocMeta)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return dm, nil
	}
	if err != nil {
		return nil, corpuserr.IOError(corpuserr.CodeIOReadFailed, "read docs.meta", err).WithFile(path)
	}

	var byUID map[string]DocMeta
	if err := json.Unmarshal(data, &byUID); err != nil {
		return nil, corpuserr.CorruptStoreError(corpuserr.CodeStoreMetaCorrupt, "parse docs.meta", err).WithFile(path)
	}
	for _, d := range byUID {
		dm.docs[d.DocUID] = d
	}
	return dm, nil
}

// Put inserts or replaces the metadata for a document.
func (dm *DocsMeta) Put(d DocMeta) {
	dm.docs[d.DocUID] = d
}

// Get returns the metadata for docUID, if present.
func (dm *DocsMeta) Get(docUID string) (DocMeta, bool) {
	d, ok := dm.docs[docUID]
	return d, ok
}

// Tombstone marks docUID as tombstoned without removing its entry, so
// repeated tombstone calls and reloads remain idempotent.
func (dm *DocsMeta) Tombstone(docUID string) bool {
	d, ok := dm.docs[docUID]
	if !ok {
		return false
	}
	d.IsTombstoned = true
	dm.docs[docUID] = d
	return true
}

// All returns every document record, order unspecified.
func (dm *DocsMeta) All() []DocMeta {
	out := make([]DocMeta, 0, len(dm.docs))
	for _, d := range dm.docs {
		out = append(out, d)
	}
	return out
}

// Flush writes the current state to disk atomically: the new content is
// written to a temp file in the same directory, fsynced, then renamed over
// the destination so readers never observe a partial write.
func (dm *DocsMeta) Flush() error {
	// A JSON object keyed by doc_uid; encoding/json sorts map keys, so the
	// same documents always produce the same bytes.
	data, err := json.MarshalIndent(dm.docs, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal docs.meta: %w", err)
	}

	dir := filepath.Dir(dm.path)
	tmp, err := os.CreateTemp(dir, ".docs.meta.tmp-*")
	if err != nil {
		return corpuserr.IOError(corpuserr.CodeIOWriteFailed, "create docs.meta temp file", err).WithFile(dm.path)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return corpuserr.IOError(corpuserr.CodeIOWriteFailed, "write docs.meta temp file", err).WithFile(dm.path)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return corpuserr.IOError(corpuserr.CodeIOWriteFailed, "sync docs.meta temp file", err).WithFile(dm.path)
	}
	if err := tmp.Close(); err != nil {
		return corpuserr.IOError(corpuserr.CodeIOWriteFailed, "close docs.meta temp file", err).WithFile(dm.path)
	}
	if err := os.Rename(tmpName, dm.path); err != nil {
		return corpuserr.IOError(corpuserr.CodeIOWriteFailed, "rename docs.meta into place", err).WithFile(dm.path)
	}
	return nil
}
