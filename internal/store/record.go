// Package store implements the append-only chunk store: chunks.bin (the
// compressed payload log), chunks.idx (the fixed-width record index), and
// docs.meta (the doc_uid -> source document metadata sidecar).
package store

import (
	"encoding/binary"
	"fmt"
)

// RecordSize is the fixed width, in bytes, of one chunks.idx record. See
// the field layout table in record.go's Marshal/Unmarshal.
const RecordSize = 141

// Record is one fixed-width chunks.idx entry. Records are never rewritten
// in place; a chunk is tombstoned by appending a new record with the same
// identifiers and IsActive=false. Last-record-wins reconciliation is
// applied by the caller streaming chunks.idx (see Store.replayIndex).
type Record struct {
	ChunkID string // 32 bytes, UTF-8, NUL padded
	DocUID  string // 32 bytes, UTF-8, NUL padded
	DocID   string // 32 bytes, UTF-8, NUL padded

	StoreOffset uint64 // byte offset into chunks.bin
	Length      uint32 // compressed payload length
	Checksum    uint32 // low 32 bits of the xxhash64 of the uncompressed chunk text (not an xxhash32 digest)

	IsActive bool

	OffsetStart uint64 // chunk text offset in normalized_text
	OffsetEnd   uint64

	ChunkIndex uint32 // position within the document

	PageStart int32 // -1 encodes absent
	PageEnd   int32 // -1 encodes absent
}

// PageAbsent is the sentinel PageStart/PageEnd value meaning "no page range".
const PageAbsent int32 = -1

// Pages returns the record's page range as the *int pair used throughout
// the chunk data model, translating the PageAbsent sentinel back to nil.
func (r Record) Pages() (pageStart, pageEnd *int) {
	return fromInt32(r.PageStart), fromInt32(r.PageEnd)
}

func fromInt32(v int32) *int {
	if v == PageAbsent {
		return nil
	}
	n := int(v)
	return &n
}

// Marshal encodes r into the fixed 141-byte little-endian record layout:
//
//	chunk_id      32 bytes  UTF-8, NUL padded
//	doc_uid       32 bytes  UTF-8, NUL padded
//	doc_id        32 bytes  UTF-8, NUL padded
//	store_offset   8 bytes  uint64 LE
//	length         4 bytes  uint32 LE
//	checksum       4 bytes  uint32 LE
//	is_active      1 byte   1 = live, 0 = tombstoned
//	offset_start   8 bytes  uint64 LE
//	offset_end     8 bytes  uint64 LE
//	chunk_index    4 bytes  uint32 LE
//	page_start     4 bytes  int32 LE
//	page_end       4 bytes  int32 LE
func (r Record) Marshal() ([]byte, error) {
	buf := make([]byte, RecordSize)
	if err := putFixedString(buf[0:32], r.ChunkID); err != nil {
		return nil, fmt.Errorf("chunk_id: %w", err)
	}
	if err := putFixedString(buf[32:64], r.DocUID); err != nil {
		return nil, fmt.Errorf("doc_uid: %w", err)
	}
	if err := putFixedString(buf[64:96], r.DocID); err != nil {
		return nil, fmt.Errorf("doc_id: %w", err)
	}
	binary.LittleEndian.PutUint64(buf[96:104], r.StoreOffset)
	binary.LittleEndian.PutUint32(buf[104:108], r.Length)
	binary.LittleEndian.PutUint32(buf[108:112], r.Checksum)
	if r.IsActive {
		buf[112] = 1
	}
	binary.LittleEndian.PutUint64(buf[113:121], r.OffsetStart)
	binary.LittleEndian.PutUint64(buf[121:129], r.OffsetEnd)
	binary.LittleEndian.PutUint32(buf[129:133], r.ChunkIndex)
	binary.LittleEndian.PutUint32(buf[133:137], uint32(r.PageStart))
	binary.LittleEndian.PutUint32(buf[137:141], uint32(r.PageEnd))
	return buf, nil
}

// UnmarshalRecord decodes one RecordSize-byte record.
func UnmarshalRecord(buf []byte) (Record, error) {
	if len(buf) != RecordSize {
		return Record{}, fmt.Errorf("store: record must be %d bytes, got %d", RecordSize, len(buf))
	}
	var r Record
	r.ChunkID = getFixedString(buf[0:32])
	r.DocUID = getFixedString(buf[32:64])
	r.DocID = getFixedString(buf[64:96])
	r.StoreOffset = binary.LittleEndian.Uint64(buf[96:104])
	r.Length = binary.LittleEndian.Uint32(buf[104:108])
	r.Checksum = binary.LittleEndian.Uint32(buf[108:112])
	r.IsActive = buf[112] == 1
	r.OffsetStart = binary.LittleEndian.Uint64(buf[113:121])
	r.OffsetEnd = binary.LittleEndian.Uint64(buf[121:129])
	r.ChunkIndex = binary.LittleEndian.Uint32(buf[129:133])
	r.PageStart = int32(binary.LittleEndian.Uint32(buf[133:137]))
	r.PageEnd = int32(binary.LittleEndian.Uint32(buf[137:141]))
	return r, nil
}

func putFixedString(dst []byte, s string) error {
	if len(s) > len(dst) {
		return fmt.Errorf("value %q exceeds %d-byte field width", s, len(dst))
	}
	copy(dst, s)
	for i := len(s); i < len(dst); i++ {
		dst[i] = 0
	}
	return nil
}

func getFixedString(src []byte) string {
	n := 0
	for n < len(src) && src[n] != 0 {
		n++
	}
	return string(src[:n])
}
