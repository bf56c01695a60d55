// Package retrieval joins the BM25 index to the chunk store: pure ID
// lookup, explained results (matched terms, snippet, source reference),
// and direct chunk materialization for citation.
package retrieval

import (
	"sort"
	"strings"

	"github.com/corpuskit/corpuskit/internal/bm25"
	"github.com/corpuskit/corpuskit/internal/chunk"
	"github.com/corpuskit/corpuskit/internal/corpuserr"
	"github.com/corpuskit/corpuskit/internal/store"
)

// maxSnippetLen is the spec-mandated upper bound on a result snippet,
// including any "..." padding.
const maxSnippetLen = 200

// IDScore is one pure index hit: a chunk_id and its raw BM25 score.
type IDScore struct {
	ChunkID string
	Score   float64
}

// Result is an explained retrieval hit: the scored chunk_id plus the
// matched query terms, a centered snippet, and its source reference.
type Result struct {
	ChunkID      string
	Score        float64
	MatchedTerms []string
	Snippet      string
	SourceRef    chunk.SourceRef
}

// Pipeline serves queries against a loaded BM25 index and chunk store.
type Pipeline struct {
	index *bm25.Index
	store *store.Store
}

// New builds a Pipeline over an already-loaded index and store.
func New(index *bm25.Index, st *store.Store) *Pipeline {
	return &Pipeline{index: index, store: st}
}

// RetrieveIDs performs a pure index lookup: no chunk payload bytes are
// touched. topK < 0 returns every scored hit.
func (p *Pipeline) RetrieveIDs(query string, topK int) []IDScore {
	hits := p.index.Search(query, topK)
	out := make([]IDScore, len(hits))
	for i, h := range hits {
		out[i] = IDScore{ChunkID: h.ChunkID, Score: h.Score}
	}
	return out
}

// Retrieve runs the same index lookup as RetrieveIDs and, for each hit, reads the chunk to compute
// matched_terms (the sorted intersection of query and chunk tokens), a
// snippet of up to 200 characters centered on the earliest case-insensitive
// match, and the chunk's SourceRef. Hits whose chunk can no longer be read
// (tombstoned or unknown) are silently skipped.
func (p *Pipeline) Retrieve(query string, topK int) ([]Result, error) {
	hits := p.index.Search(query, topK)
	queryTerms := uniqueSorted(bm25.Tokenize(query, stopwordsFor(p.index)))

	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		text, ok, err := p.store.Get(h.ChunkID)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		rec, ok := p.store.Record(h.ChunkID)
		if !ok {
			continue
		}

		chunkTerms := bm25.Tokenize(string(text), nil)
		matched := intersectSorted(queryTerms, uniqueSorted(chunkTerms))

		ref, err := p.sourceRef(rec)
		if err != nil {
			return nil, err
		}

		results = append(results, Result{
			ChunkID:      h.ChunkID,
			Score:        h.Score,
			MatchedTerms: matched,
			Snippet:      snippet(string(text), matched),
			SourceRef:    ref,
		})
	}
	return results, nil
}

// FetchChunks materializes chunks by ID directly, in the order requested,
// silently skipping IDs that are unknown or tombstoned.
func (p *Pipeline) FetchChunks(chunkIDs []string) ([]chunk.Chunk, error) {
	out := make([]chunk.Chunk, 0, len(chunkIDs))
	for _, id := range chunkIDs {
		text, ok, err := p.store.Get(id)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		rec, ok := p.store.Record(id)
		if !ok {
			continue
		}
		ref, err := p.sourceRef(rec)
		if err != nil {
			return nil, err
		}
		pageStart, pageEnd := rec.Pages()
		out = append(out, chunk.Chunk{
			ChunkID:    id,
			DocUID:     rec.DocUID,
			DocID:      rec.DocID,
			Text:       string(text),
			Start:      int(rec.OffsetStart),
			End:        int(rec.OffsetEnd),
			ChunkIndex: int(rec.ChunkIndex),
			PageStart:  pageStart,
			PageEnd:    pageEnd,
			SourceRef:  ref,
		})
	}
	return out, nil
}

func (p *Pipeline) sourceRef(rec store.Record) (chunk.SourceRef, error) {
	meta, ok := p.store.DocsMeta().Get(rec.DocUID)
	if !ok {
		return chunk.SourceRef{}, corpuserr.IndexInconsistencyError(
			corpuserr.CodeIndexUnresolved, "doc_uid referenced by chunk record has no docs.meta entry").WithChunk(rec.ChunkID)
	}
	pageStart, pageEnd := rec.Pages()
	return chunk.SourceRef{
		SourcePath: meta.SourcePath,
		Start:      int(rec.OffsetStart),
		End:        int(rec.OffsetEnd),
		PageStart:  pageStart,
		PageEnd:    pageEnd,
	}, nil
}

func stopwordsFor(idx *bm25.Index) map[string]bool {
	if idx.Params().UseStopwords {
		return bm25.DefaultStopwords
	}
	return nil
}

func uniqueSorted(terms []string) []string {
	seen := make(map[string]bool, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

func intersectSorted(a, b []string) []string {
	bSet := make(map[string]bool, len(b))
	for _, t := range b {
		bSet[t] = true
	}
	var out []string
	for _, t := range a {
		if bSet[t] {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

// snippet extracts up to maxSnippetLen characters of text, centered on the
// earliest case-insensitive occurrence of any matched term, padding with
// "..." on either side that isn't flush with the chunk's own boundaries.
// When no matched term can be located in the text, it returns a prefix.
func snippet(text string, matchedTerms []string) string {
	runes := []rune(text)
	if len(runes) <= maxSnippetLen {
		return text
	}

	pos := earliestMatch(text, matchedTerms)
	if pos < 0 || pos > len(text) {
		pos = 0
	}
	// earliestMatch reports a byte offset; the window below counts runes.
	pos = len([]rune(text[:pos]))

	// Reserve room for a leading and trailing "..." so the padded snippet
	// never exceeds maxSnippetLen even when both are needed.
	const ellipsis = "..."
	targetBody := maxSnippetLen - 2*len(ellipsis)

	start := pos - targetBody/2
	if start < 0 {
		start = 0
	}
	end := start + targetBody
	if end > len(runes) {
		end = len(runes)
		start = end - targetBody
		if start < 0 {
			start = 0
		}
	}

	body := string(runes[start:end])
	if start > 0 {
		body = ellipsis + body
	}
	if end < len(runes) {
		body = body + ellipsis
	}
	return body
}

func earliestMatch(text string, terms []string) int {
	lower := strings.ToLower(text)
	best := -1
	for _, term := range terms {
		if term == "" {
			continue
		}
		if i := strings.Index(lower, term); i >= 0 {
			if best < 0 || i < best {
				best = i
			}
		}
	}
	return best
}
