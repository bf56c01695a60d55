package store

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/corpuskit/corpuskit/internal/codec"
	"github.com/corpuskit/corpuskit/internal/corpuserr"
)

const (
	binFilename  = "chunks.bin"
	idxFilename  = "chunks.idx"
	metaFilename = "docs.meta"

	defaultCacheSize = 4096
)

// Store is the append-only chunk store backing one artifact directory. It
// owns three files: chunks.bin (compressed payloads), chunks.idx (the
// fixed-width record log) and docs.meta (the document metadata sidecar).
// A chunk is never overwritten or truncated in place; tombstoning appends a
// new, inactive record for the same chunk_id, and reconciliation on Load
// keeps only the last record seen per chunk_id.
type Store struct {
	dir string

	mu       sync.RWMutex
	bin      *os.File
	idx      *os.File
	binSize  int64
	records  map[string]Record // chunk_id -> last-seen (winning) record
	docsMeta *DocsMeta

	cache *lru.Cache[string, []byte] // chunk_id -> decompressed text
}

// Open opens (creating if needed) the chunk store rooted at dir, replaying
// chunks.idx to reconstruct the live chunk_id -> Record mapping.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, corpuserr.IOError(corpuserr.CodeIOWriteFailed, "create store directory", err).WithFile(dir)
	}

	bin, err := os.OpenFile(filepath.Join(dir, binFilename), os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, corpuserr.IOError(corpuserr.CodeIOReadFailed, "open chunks.bin", err).WithFile(binFilename)
	}
	idx, err := os.OpenFile(filepath.Join(dir, idxFilename), os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		bin.Close()
		return nil, corpuserr.IOError(corpuserr.CodeIOReadFailed, "open chunks.idx", err).WithFile(idxFilename)
	}

	docsMeta, err := LoadDocsMeta(filepath.Join(dir, metaFilename))
	if err != nil {
		bin.Close()
		idx.Close()
		return nil, err
	}

	cache, _ := lru.New[string, []byte](defaultCacheSize)

	s := &Store{
		dir:      dir,
		bin:      bin,
		idx:      idx,
		records:  make(map[string]Record),
		docsMeta: docsMeta,
		cache:    cache,
	}

	if err := s.replayIndex(); err != nil {
		bin.Close()
		idx.Close()
		return nil, err
	}

	info, err := bin.Stat()
	if err != nil {
		bin.Close()
		idx.Close()
		return nil, corpuserr.IOError(corpuserr.CodeIOReadFailed, "stat chunks.bin", err).WithFile(binFilename)
	}
	s.binSize = info.Size()

	return s, nil
}

// replayIndex streams chunks.idx from the start, applying last-record-wins:
// a later record for the same chunk_id fully replaces an earlier one,
// including tombstoning (is_active=0).
func (s *Store) replayIndex() error {
	if _, err := s.idx.Seek(0, io.SeekStart); err != nil {
		return corpuserr.IOError(corpuserr.CodeIOReadFailed, "seek chunks.idx", err).WithFile(idxFilename)
	}
	r := bufio.NewReaderSize(s.idx, 64*1024)
	buf := make([]byte, RecordSize)

	for {
		_, err := io.ReadFull(r, buf)
		if err == io.EOF {
			break
		}
		if err == io.ErrUnexpectedEOF {
			return corpuserr.CorruptStoreError(corpuserr.CodeStoreOutOfBounds, "chunks.idx ends mid-record", err).WithFile(idxFilename)
		}
		if err != nil {
			return corpuserr.IOError(corpuserr.CodeIOReadFailed, "read chunks.idx", err).WithFile(idxFilename)
		}
		rec, err := UnmarshalRecord(buf)
		if err != nil {
			return corpuserr.CorruptStoreError(corpuserr.CodeStoreOutOfBounds, "decode chunks.idx record", err).WithFile(idxFilename)
		}
		s.records[rec.ChunkID] = rec
	}
	return nil
}

// Append compresses text, writes it to chunks.bin, and appends its active
// index record to chunks.idx. Returns the record written.
func (s *Store) Append(chunkID, docUID, docID string, text string, start, end, chunkIndex int, pageStart, pageEnd *int, zstdLevel int) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	compressed, err := codec.Compress([]byte(text), zstdLevel)
	if err != nil {
		return Record{}, corpuserr.DecompressionError("compress chunk payload", err).WithChunk(chunkID)
	}

	offset := s.binSize
	n, err := s.bin.WriteAt(compressed, offset)
	if err != nil {
		return Record{}, corpuserr.IOError(corpuserr.CodeIOWriteFailed, "append chunks.bin", err).WithChunk(chunkID)
	}
	s.binSize += int64(n)

	rec := Record{
		ChunkID:     chunkID,
		DocUID:      docUID,
		DocID:       docID,
		StoreOffset: uint64(offset),
		Length:      uint32(n),
		Checksum:    uint32(xxhash.Sum64String(text)),
		IsActive:    true,
		OffsetStart: uint64(start),
		OffsetEnd:   uint64(end),
		ChunkIndex:  uint32(chunkIndex),
		PageStart:   toInt32(pageStart),
		PageEnd:     toInt32(pageEnd),
	}

	if err := s.appendRecord(rec); err != nil {
		return Record{}, err
	}
	s.records[chunkID] = rec
	s.cache.Add(chunkID, []byte(text))
	return rec, nil
}

func (s *Store) appendRecord(rec Record) error {
	buf, err := rec.Marshal()
	if err != nil {
		return corpuserr.CorruptStoreError(corpuserr.CodeStoreOutOfBounds, "marshal chunk record", err).WithChunk(rec.ChunkID)
	}
	if _, err := s.idx.Write(buf); err != nil {
		return corpuserr.IOError(corpuserr.CodeIOWriteFailed, "append chunks.idx", err).WithChunk(rec.ChunkID)
	}
	return nil
}

// Get returns the decompressed text for a live chunk_id, verifying its
// xxhash checksum and its (offset, length) bounds against chunks.bin. It
// reports ok=false, nil error for an unknown or tombstoned chunk_id.
func (s *Store) Get(chunkID string) (text []byte, ok bool, err error) {
	s.mu.RLock()
	rec, found := s.records[chunkID]
	s.mu.RUnlock()
	if !found || !rec.IsActive {
		return nil, false, nil
	}

	if cached, hit := s.cache.Get(chunkID); hit {
		return cached, true, nil
	}

	if int64(rec.StoreOffset)+int64(rec.Length) > s.binSize {
		return nil, false, corpuserr.CorruptStoreError(corpuserr.CodeStoreOutOfBounds,
			"record points past end of chunks.bin", nil).WithChunk(chunkID)
	}

	compressed := make([]byte, rec.Length)
	if _, err := s.bin.ReadAt(compressed, int64(rec.StoreOffset)); err != nil {
		return nil, false, corpuserr.IOError(corpuserr.CodeIOReadFailed, "read chunks.bin", err).WithChunk(chunkID)
	}

	raw, err := codec.Decompress(compressed)
	if err != nil {
		return nil, false, corpuserr.DecompressionError("decompress chunk payload", err).WithChunk(chunkID)
	}

	if uint32(xxhash.Sum64(raw)) != rec.Checksum {
		return nil, false, corpuserr.CorruptStoreError(corpuserr.CodeStoreChecksum,
			"checksum mismatch on stored chunk", nil).WithChunk(chunkID)
	}

	s.cache.Add(chunkID, raw)
	return raw, true, nil
}

// Record returns the live index record for chunkID, if any.
func (s *Store) Record(chunkID string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[chunkID]
	if !ok || !rec.IsActive {
		return Record{}, false
	}
	return rec, true
}

// Tombstone appends an inactive record for chunkID so future Get/Record
// calls (and future Loads) treat it as deleted. It is a no-op, not an
// error, if chunkID is unknown or already tombstoned.
func (s *Store) Tombstone(chunkID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[chunkID]
	if !ok || !rec.IsActive {
		return nil
	}
	rec.IsActive = false
	if err := s.appendRecord(rec); err != nil {
		return err
	}
	s.records[chunkID] = rec
	s.cache.Remove(chunkID)
	return nil
}

// TombstoneDocument tombstones every live chunk belonging to docUID and
// marks the document itself tombstoned in docs.meta.
func (s *Store) TombstoneDocument(docUID string) (int, error) {
	s.mu.RLock()
	var ids []string
	for id, rec := range s.records {
		if rec.DocUID == docUID && rec.IsActive {
			ids = append(ids, id)
		}
	}
	s.mu.RUnlock()

	for _, id := range ids {
		if err := s.Tombstone(id); err != nil {
			return 0, err
		}
	}
	s.docsMeta.Tombstone(docUID)
	return len(ids), nil
}

// DocsMeta exposes the document metadata sidecar for the artifact layer to
// read and update directly.
func (s *Store) DocsMeta() *DocsMeta {
	return s.docsMeta
}

// FlushMeta atomically rewrites docs.meta with the current in-memory state.
func (s *Store) FlushMeta() error {
	return s.docsMeta.Flush()
}

// LiveChunkIDs returns every chunk_id currently active, order unspecified.
func (s *Store) LiveChunkIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.records))
	for id, rec := range s.records {
		if rec.IsActive {
			out = append(out, id)
		}
	}
	return out
}

// Sync flushes chunks.bin and chunks.idx to stable storage.
func (s *Store) Sync() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.bin.Sync(); err != nil {
		return corpuserr.IOError(corpuserr.CodeIOWriteFailed, "sync chunks.bin", err).WithFile(binFilename)
	}
	if err := s.idx.Sync(); err != nil {
		return corpuserr.IOError(corpuserr.CodeIOWriteFailed, "sync chunks.idx", err).WithFile(idxFilename)
	}
	return nil
}

// Close releases the underlying file handles.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err1 := s.bin.Close()
	err2 := s.idx.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

func toInt32(p *int) int32 {
	if p == nil {
		return PageAbsent
	}
	return int32(*p)
}
