package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"a/b.txt", "a/b.txt"},
		{"./a/b.txt", "a/b.txt"},
		{"a/../b.txt", "b.txt"},
		{`a\b\c.txt`, "a/b/c.txt"},
		{"/a/b.txt", "a/b.txt"},
	}
	for _, tt := range cases {
		assert.Equal(t, tt.want, NormalizePath(tt.in), "NormalizePath(%q)", tt.in)
	}
}

func TestDocUID_DependsOnlyOnPath(t *testing.T) {
	a := DocUID("docs/readme.txt")
	b := DocUID("docs/readme.txt")
	assert.Equal(t, a, b)
	assert.Len(t, a, 16)

	// same path, different content -> same doc_uid
	assert.Equal(t, a, DocUID("docs/readme.txt"))
}

func TestDocUID_DiffersByPath(t *testing.T) {
	assert.NotEqual(t, DocUID("a.txt"), DocUID("b.txt"))
}

func TestDocID_IsFunctionOfUIDAndTextHash(t *testing.T) {
	uid := DocUID("a.txt")
	h1 := HashText("hello world")
	h2 := HashText("goodbye world")

	id1 := DocID(uid, h1)
	id1Again := DocID(uid, h1)
	id2 := DocID(uid, h2)

	assert.Equal(t, id1, id1Again)
	assert.NotEqual(t, id1, id2)
	assert.Len(t, id1, 16)
}

func TestChunkID_S2_RoundTripValue(t *testing.T) {
	docUID := "abc123def456"
	text := "Hello world"
	id := ChunkID(docUID, 0, 11, HashText(text))

	assert.Len(t, id, 16)
	// deterministic: recomputing with identical inputs yields the same id
	assert.Equal(t, id, ChunkID(docUID, 0, 11, HashText(text)))
}

func TestChunkID_StableUnderSameInputs(t *testing.T) {
	id1 := ChunkID("uid1", 10, 20, HashText("text"))
	id2 := ChunkID("uid1", 10, 20, HashText("text"))
	assert.Equal(t, id1, id2)
}

func TestChunkID_DiffersByOffsetsOrText(t *testing.T) {
	base := ChunkID("uid1", 0, 10, HashText("alpha"))
	diffOffsets := ChunkID("uid1", 1, 10, HashText("alpha"))
	diffText := ChunkID("uid1", 0, 10, HashText("beta"))

	assert.NotEqual(t, base, diffOffsets)
	assert.NotEqual(t, base, diffText)
}
