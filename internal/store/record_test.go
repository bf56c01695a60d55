package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_MarshalUnmarshal_RoundTrip(t *testing.T) {
	rec := Record{
		ChunkID:     "abcdef0123456789",
		DocUID:      "docuid0123456789",
		DocID:       "docid0123456789a",
		StoreOffset: 123456,
		Length:      789,
		Checksum:    0xDEADBEEF,
		IsActive:    true,
		OffsetStart: 10,
		OffsetEnd:   532,
		ChunkIndex:  7,
		PageStart:   2,
		PageEnd:     4,
	}

	buf, err := rec.Marshal()
	require.NoError(t, err)
	assert.Len(t, buf, RecordSize)

	got, err := UnmarshalRecord(buf)
	require.NoError(t, err)
	assert.Equal(t, rec, got)
}

func TestRecord_Marshal_FixedSize(t *testing.T) {
	rec := Record{ChunkID: "x", DocUID: "y", DocID: "z"}
	buf, err := rec.Marshal()
	require.NoError(t, err)
	assert.Equal(t, 141, len(buf))
}

func TestRecord_Marshal_IDTooLongErrors(t *testing.T) {
	rec := Record{ChunkID: string(make([]byte, 33))}
	_, err := rec.Marshal()
	assert.Error(t, err)
}

func TestRecord_PageAbsentSentinel(t *testing.T) {
	rec := Record{ChunkID: "c", DocUID: "d", DocID: "e", PageStart: PageAbsent, PageEnd: PageAbsent}
	buf, err := rec.Marshal()
	require.NoError(t, err)
	got, err := UnmarshalRecord(buf)
	require.NoError(t, err)

	start, end := got.Pages()
	assert.Nil(t, start)
	assert.Nil(t, end)
}

func TestUnmarshalRecord_WrongSizeErrors(t *testing.T) {
	_, err := UnmarshalRecord(make([]byte, 10))
	assert.Error(t, err)
}
