package artifact

import (
	"path/filepath"

	"github.com/corpuskit/corpuskit/internal/bm25"
	"github.com/corpuskit/corpuskit/internal/manifest"
	"github.com/corpuskit/corpuskit/internal/retrieval"
	"github.com/corpuskit/corpuskit/internal/store"
)

// Artifact is a loaded, immutable artifact directory: the chunk store, the
// BM25 index, and a retrieval pipeline wired over both. Per spec.md §5, an
// Artifact is read-only after Load — concurrent readers need no external
// synchronization.
type Artifact struct {
	Store    *store.Store
	Index    *bm25.Index
	Manifest *manifest.Manifest
	Pipeline *retrieval.Pipeline
}

// LoadOptions controls Load's manifest handling.
type LoadOptions struct {
	// Strict, when true, re-hashes every artifact file against the
	// manifest's checksums and fails the load on any mismatch or missing
	// file (spec.md §4.8, §8 S4).
	Strict bool
}

// Load opens dir as a built artifact: the chunk store (replaying
// chunks.idx with last-record-wins reconciliation), docs.meta, the BM25
// index, and — if requested — verifies the manifest.
func Load(dir string, opts LoadOptions) (*Artifact, error) {
	st, err := store.Open(dir)
	if err != nil {
		return nil, err
	}

	index, err := bm25.Load(filepath.Join(dir, bm25IndexFilename))
	if err != nil {
		st.Close()
		return nil, err
	}

	m, err := manifest.Load(dir)
	if err != nil {
		st.Close()
		return nil, err
	}

	if opts.Strict {
		if err := manifest.Verify(dir, m); err != nil {
			st.Close()
			return nil, err
		}
	}

	return &Artifact{
		Store:    st,
		Index:    index,
		Manifest: m,
		Pipeline: retrieval.New(index, st),
	}, nil
}

// Close releases the underlying chunk store's open file handles.
func (a *Artifact) Close() error {
	return a.Store.Close()
}
