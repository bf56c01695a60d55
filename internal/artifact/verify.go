package artifact

import (
	"sort"

	"github.com/corpuskit/corpuskit/internal/corpuserr"
)

// InconsistencyKind classifies a cross-store doctor finding.
type InconsistencyKind string

const (
	// InconsistencyOrphanBM25 is a BM25 chunk_id with no live chunks.idx record.
	InconsistencyOrphanBM25 InconsistencyKind = "orphan_bm25"
	// InconsistencyMissingBM25 is a live chunks.idx record with no BM25 entry.
	InconsistencyMissingBM25 InconsistencyKind = "missing_bm25"
)

// Inconsistency is one doctor-style finding from VerifyConsistency.
type Inconsistency struct {
	Kind    InconsistencyKind
	ChunkID string
}

// VerifyConsistency cross-checks that every live chunks.idx record's
// chunk_id appears in the BM25 chunk_id table and vice versa, beyond what
// manifest checksum verification covers: a tampered or partially-rebuilt
// BM25 blob can pass its own checksum yet disagree with the store about
// which chunks exist. Returns the full list of findings (possibly empty)
// rather than failing fast, so an operator sees the whole picture; callers
// wanting a hard error can wrap the non-empty case themselves.
func (a *Artifact) VerifyConsistency() []Inconsistency {
	liveIDs := a.Store.LiveChunkIDs()
	liveSet := make(map[string]bool, len(liveIDs))
	for _, id := range liveIDs {
		liveSet[id] = true
	}

	bm25Set := make(map[string]bool, a.Index.Len())
	for i := 0; i < a.Index.Len(); i++ {
		id, ok := a.Index.ChunkIDAt(i)
		if !ok {
			continue
		}
		bm25Set[id] = true
	}

	var issues []Inconsistency
	for id := range bm25Set {
		if !liveSet[id] {
			issues = append(issues, Inconsistency{Kind: InconsistencyOrphanBM25, ChunkID: id})
		}
	}
	for id := range liveSet {
		if !bm25Set[id] {
			issues = append(issues, Inconsistency{Kind: InconsistencyMissingBM25, ChunkID: id})
		}
	}

	sort.Slice(issues, func(i, j int) bool {
		if issues[i].Kind != issues[j].Kind {
			return issues[i].Kind < issues[j].Kind
		}
		return issues[i].ChunkID < issues[j].ChunkID
	})
	return issues
}

// Verify is VerifyConsistency but returns an IndexInconsistency error
// naming the first finding instead of the full list, for callers (the
// CLI's verify subcommand) that want a pass/fail gate.
func (a *Artifact) Verify() error {
	issues := a.VerifyConsistency()
	if len(issues) == 0 {
		return nil
	}
	first := issues[0]
	return corpuserr.IndexInconsistencyError(corpuserr.CodeIndexUnresolved,
		string(first.Kind)+": "+first.ChunkID).WithChunk(first.ChunkID)
}
