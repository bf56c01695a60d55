package bm25

import (
	"math"
	"sort"
)

// Params holds the Okapi BM25 tuning parameters.
type Params struct {
	K1           float64
	B            float64
	UseStopwords bool
}

// DefaultParams returns the spec-mandated defaults (k1=1.5, b=0.75, no
// stopword filtering).
func DefaultParams() Params {
	return Params{K1: 1.5, B: 0.75, UseStopwords: false}
}

// Hit is one scored result: a corpus position and its chunk_id.
type Hit struct {
	Position int
	ChunkID  string
	Score    float64
}

// Index is an in-memory Okapi BM25 index over a corpus of chunks, each
// identified by position (its order of insertion) and a stable chunk_id.
// Positions are assigned in insertion order and never reused; a reverse
// map gives chunk_id -> position for O(1) lookup.
type Index struct {
	params Params

	chunkIDs   []string         // position -> chunk_id
	positionOf map[string]int   // chunk_id -> position
	docLens    []int            // position -> token count
	postings   map[string][]Posting // term -> positions containing it, with per-position frequency
	totalLen   int64
}

// Posting is one (position, frequency) pair in a term's postings list.
type Posting struct {
	Position int
	Freq     int
}

// New creates an empty BM25 index.
func New(params Params) *Index {
	return &Index{
		params:     params,
		positionOf: make(map[string]int),
		postings:   make(map[string][]Posting),
	}
}

// Params returns the index's BM25 parameters.
func (idx *Index) Params() Params {
	return idx.params
}

// Len returns the number of chunks indexed.
func (idx *Index) Len() int {
	return len(idx.chunkIDs)
}

// Add tokenizes text and appends it as the next position in the corpus.
// Positions must be assigned in document-traversal, then chunk-emission
// order; callers are responsible for ordering Add calls accordingly.
func (idx *Index) Add(chunkID string, text string) {
	var stop map[string]bool
	if idx.params.UseStopwords {
		stop = DefaultStopwords
	}
	tokens := Tokenize(text, stop)

	freq := make(map[string]int, len(tokens))
	for _, t := range tokens {
		freq[t]++
	}

	position := len(idx.chunkIDs)
	idx.chunkIDs = append(idx.chunkIDs, chunkID)
	idx.positionOf[chunkID] = position
	idx.docLens = append(idx.docLens, len(tokens))
	idx.totalLen += int64(len(tokens))

	for t, f := range freq {
		idx.postings[t] = append(idx.postings[t], Posting{Position: position, Freq: f})
	}
}

// DocFreq returns the number of chunks containing term at least once.
func (idx *Index) DocFreq(term string) int {
	return len(idx.postings[term])
}

// Terms returns every term present in the index, order unspecified. Used
// by the persistence layer to serialize the postings table.
func (idx *Index) Terms() []string {
	terms := make([]string, 0, len(idx.postings))
	for t := range idx.postings {
		terms = append(terms, t)
	}
	return terms
}

// Postings returns the postings list for term, or nil if absent.
func (idx *Index) Postings(term string) []Posting {
	return idx.postings[term]
}

// DocLen returns the token count at a corpus position.
func (idx *Index) DocLen(position int) int {
	if position < 0 || position >= len(idx.docLens) {
		return 0
	}
	return idx.docLens[position]
}

// PositionOf returns the corpus position of chunkID, if indexed.
func (idx *Index) PositionOf(chunkID string) (int, bool) {
	p, ok := idx.positionOf[chunkID]
	return p, ok
}

// ChunkIDAt returns the chunk_id at a corpus position.
func (idx *Index) ChunkIDAt(position int) (string, bool) {
	if position < 0 || position >= len(idx.chunkIDs) {
		return "", false
	}
	return idx.chunkIDs[position], true
}

func (idx *Index) avgDocLen() float64 {
	if len(idx.docLens) == 0 {
		return 0
	}
	return float64(idx.totalLen) / float64(len(idx.docLens))
}

// idf computes the BM25 inverse document frequency for a term, using the
// classic Robertson-Sparck-Jones formula. This is negative for terms that
// appear in more than half the corpus, which is intentional: spec.md's
// scoring invariant allows (and the S6 scenario exercises) negative raw
// scores for very common terms.
func (idx *Index) idf(term string) float64 {
	n := float64(len(idx.chunkIDs))
	df := float64(idx.DocFreq(term))
	return math.Log((n-df+0.5)/(df+0.5))
}

// Search tokenizes query and returns the topK highest-scoring chunks that
// contain at least one query term, sorted by score descending; ties are broken by corpus position
// ascending (lower position wins), per spec. Returns raw BM25 scores,
// which can be negative; callers apply any display normalization.
func (idx *Index) Search(query string, topK int) []Hit {
	var stop map[string]bool
	if idx.params.UseStopwords {
		stop = DefaultStopwords
	}
	terms := Tokenize(query, stop)
	if len(terms) == 0 || len(idx.chunkIDs) == 0 {
		return nil
	}

	avgLen := idx.avgDocLen()
	k1 := idx.params.K1
	b := idx.params.B

	scores := make([]float64, len(idx.chunkIDs))
	matched := make([]bool, len(idx.chunkIDs))
	for _, term := range terms {
		postings := idx.postings[term]
		if len(postings) == 0 {
			continue
		}
		idf := idx.idf(term)
		for _, p := range postings {
			tf := float64(p.Freq)
			dl := float64(idx.docLens[p.Position])
			denom := tf + k1*(1-b+b*dl/avgLen)
			scores[p.Position] += idf * (tf * (k1 + 1)) / denom
			matched[p.Position] = true
		}
	}

	hits := make([]Hit, 0, len(idx.chunkIDs))
	for pos, score := range scores {
		if !matched[pos] {
			continue
		}
		hits = append(hits, Hit{Position: pos, ChunkID: idx.chunkIDs[pos], Score: score})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Position < hits[j].Position
	})

	if topK >= 0 && topK < len(hits) {
		hits = hits[:topK]
	}
	return hits
}
