package bm25

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSampleIndex() *Index {
	idx := New(DefaultParams())
	idx.Add("c1", "machine learning is a subset of artificial intelligence")
	idx.Add("c2", "deep learning uses neural networks for machine learning tasks")
	idx.Add("c3", "the weather today is sunny with a light breeze")
	return idx
}

func TestSearch_RanksMoreRelevantChunkHigher(t *testing.T) {
	idx := buildSampleIndex()
	// Two unrelated chunks keep both query terms in fewer than half the
	// chunks, so their idf is positive and more occurrences score higher.
	idx.Add("c4", "the cat sat on the mat")
	idx.Add("c5", "stock prices rose sharply on monday")
	hits := idx.Search("machine learning", 10)
	require.NotEmpty(t, hits)
	assert.Equal(t, "c2", hits[0].ChunkID, "c2 mentions learning twice and machine once")
}

func TestSearch_RespectsTopK(t *testing.T) {
	idx := buildSampleIndex()
	hits := idx.Search("learning", 1)
	assert.Len(t, hits, 1)
}

func TestSearch_NoMatchingTermsYieldsNoHits(t *testing.T) {
	idx := buildSampleIndex()
	hits := idx.Search("xyzzy nonexistent", 10)
	assert.Empty(t, hits)
}

func TestSearch_TiesBrokenByCorpusPositionAscending(t *testing.T) {
	idx := New(DefaultParams())
	idx.Add("first", "alpha beta")
	idx.Add("second", "alpha beta")

	hits := idx.Search("alpha", 10)
	require.Len(t, hits, 2)
	assert.Equal(t, "first", hits[0].ChunkID)
	assert.Equal(t, "second", hits[1].ChunkID)
	assert.Equal(t, hits[0].Score, hits[1].Score)
}

func TestPositionOf_AndChunkIDAt_AreInverse(t *testing.T) {
	idx := buildSampleIndex()
	pos, ok := idx.PositionOf("c2")
	require.True(t, ok)
	assert.Equal(t, 1, pos)

	cid, ok := idx.ChunkIDAt(pos)
	require.True(t, ok)
	assert.Equal(t, "c2", cid)
}

func TestChunkIDAt_OutOfRangeReturnsFalse(t *testing.T) {
	idx := buildSampleIndex()
	_, ok := idx.ChunkIDAt(99)
	assert.False(t, ok)
}

func TestSearch_ScoresStableAcrossRepeatedQueries(t *testing.T) {
	idx := buildSampleIndex()
	a := idx.Search("machine learning intelligence", 10)
	b := idx.Search("machine learning intelligence", 10)
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].ChunkID, b[i].ChunkID)
		assert.Equal(t, a[i].Score, b[i].Score)
	}
}

func TestLen_ReflectsNumberOfAddedChunks(t *testing.T) {
	idx := buildSampleIndex()
	assert.Equal(t, 3, idx.Len())
}

// TestSearch_CommonTermAcrossMajorityOfCorpusScoresNegative exercises
// spec.md's raw-score invariant through the real scoring path (not a
// hand-picked literal): a term present in more than half the corpus gives
// idf < 0, so Search itself — not a synthetic Hit — must return a
// negative score for it.
func TestSearch_CommonTermAcrossMajorityOfCorpusScoresNegative(t *testing.T) {
	idx := New(DefaultParams())
	idx.Add("c1", "common word alpha")
	idx.Add("c2", "common word beta")
	idx.Add("c3", "common word gamma")
	idx.Add("c4", "rare delta epsilon")

	hits := idx.Search("common", 10)
	require.NotEmpty(t, hits)
	for _, h := range hits {
		assert.Less(t, h.Score, 0.0, "chunk %s: common term in 3/4 of corpus must score negative", h.ChunkID)
	}
}
