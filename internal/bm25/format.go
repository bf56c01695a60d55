package bm25

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/corpuskit/corpuskit/internal/corpuserr"
)

// magic identifies the BM25 binary format. Bumped whenever the layout
// changes in a way that breaks decoding of older blobs.
const (
	magic        = "CBM1"
	formatVersion uint16 = 1

	// maxTermLen and maxTerms bound the decoder against a corrupted or
	// hostile blob claiming an absurd length before any allocation happens.
	maxTermLen = 1024
	maxTerms   = 50_000_000
	maxPostingsPerTerm = 50_000_000
)

// Save writes idx to path using the versioned binary schema:
//
//	magic           4 bytes   "CBM1"
//	version         2 bytes   uint16 LE
//	k1              8 bytes   float64 LE
//	b               8 bytes   float64 LE
//	use_stopwords   1 byte
//	num_docs        4 bytes   uint32 LE
//	  chunk_id table: num_docs * (uint16 len-prefixed chunk_id string)
//	  doc_len table:  num_docs * uint32 LE
//	num_terms       4 bytes   uint32 LE
//	  for each term: uint16 len-prefixed term string, uint32 posting count,
//	  then that many (uint32 position, uint32 freq) pairs
//
// Terms are written in sorted order so two independent builds over the
// same corpus produce byte-identical output.
func Save(idx *Index, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return corpuserr.IOError(corpuserr.CodeIOWriteFailed, "create bm25 index file", err).WithFile(path)
	}
	defer f.Close()

	w := bufio.NewWriterSize(f, 256*1024)

	if _, err := w.WriteString(magic); err != nil {
		return wrapWrite(path, err)
	}
	if err := writeU16(w, formatVersion); err != nil {
		return wrapWrite(path, err)
	}
	if err := writeF64(w, idx.params.K1); err != nil {
		return wrapWrite(path, err)
	}
	if err := writeF64(w, idx.params.B); err != nil {
		return wrapWrite(path, err)
	}
	var stopByte byte
	if idx.params.UseStopwords {
		stopByte = 1
	}
	if err := w.WriteByte(stopByte); err != nil {
		return wrapWrite(path, err)
	}

	if err := writeU32(w, uint32(len(idx.chunkIDs))); err != nil {
		return wrapWrite(path, err)
	}
	for _, cid := range idx.chunkIDs {
		if err := writeString(w, cid); err != nil {
			return wrapWrite(path, err)
		}
	}
	for _, dl := range idx.docLens {
		if err := writeU32(w, uint32(dl)); err != nil {
			return wrapWrite(path, err)
		}
	}

	terms := idx.Terms()
	sort.Strings(terms)
	if err := writeU32(w, uint32(len(terms))); err != nil {
		return wrapWrite(path, err)
	}
	for _, term := range terms {
		if err := writeString(w, term); err != nil {
			return wrapWrite(path, err)
		}
		postings := idx.postings[term]
		if err := writeU32(w, uint32(len(postings))); err != nil {
			return wrapWrite(path, err)
		}
		for _, p := range postings {
			if err := writeU32(w, uint32(p.Position)); err != nil {
				return wrapWrite(path, err)
			}
			if err := writeU32(w, uint32(p.Freq)); err != nil {
				return wrapWrite(path, err)
			}
		}
	}

	if err := w.Flush(); err != nil {
		return wrapWrite(path, err)
	}
	return f.Sync()
}

// Load reads and validates a BM25 index blob written by Save. It checks
// the magic, version, and every length it reads against a hard bound
// before allocating, so a truncated or malicious file surfaces a
// CorruptStore error rather than an out-of-memory panic.
func Load(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, corpuserr.IOError(corpuserr.CodeIOReadFailed, "open bm25 index file", err).WithFile(path)
	}
	defer f.Close()

	r := bufio.NewReaderSize(f, 256*1024)

	gotMagic := make([]byte, len(magic))
	if _, err := io.ReadFull(r, gotMagic); err != nil {
		return nil, corpuserr.CorruptStoreError(corpuserr.CodeIndexCorruptBlob, "read bm25 magic", err).WithFile(path)
	}
	if string(gotMagic) != magic {
		return nil, corpuserr.CorruptStoreError(corpuserr.CodeIndexCorruptBlob,
			fmt.Sprintf("bad bm25 magic %q", gotMagic), nil).WithFile(path)
	}

	version, err := readU16(r)
	if err != nil {
		return nil, wrapCorrupt(path, "read bm25 version", err)
	}
	if version != formatVersion {
		return nil, corpuserr.CorruptStoreError(corpuserr.CodeIndexCorruptBlob,
			fmt.Sprintf("unsupported bm25 format version %d", version), nil).WithFile(path)
	}

	k1, err := readF64(r)
	if err != nil {
		return nil, wrapCorrupt(path, "read bm25 k1", err)
	}
	b, err := readF64(r)
	if err != nil {
		return nil, wrapCorrupt(path, "read bm25 b", err)
	}
	stopByte, err := r.ReadByte()
	if err != nil {
		return nil, wrapCorrupt(path, "read bm25 stopwords flag", err)
	}

	idx := New(Params{K1: k1, B: b, UseStopwords: stopByte == 1})

	numDocs, err := readU32(r)
	if err != nil {
		return nil, wrapCorrupt(path, "read bm25 doc count", err)
	}
	if numDocs > maxTerms {
		return nil, corpuserr.CorruptStoreError(corpuserr.CodeIndexCorruptBlob,
			fmt.Sprintf("bm25 doc count %d exceeds bound", numDocs), nil).WithFile(path)
	}

	idx.chunkIDs = make([]string, numDocs)
	idx.positionOf = make(map[string]int, numDocs)
	for i := range idx.chunkIDs {
		cid, err := readString(r)
		if err != nil {
			return nil, wrapCorrupt(path, "read bm25 chunk_id", err)
		}
		idx.chunkIDs[i] = cid
		idx.positionOf[cid] = i
	}

	idx.docLens = make([]int, numDocs)
	var totalLen int64
	for i := range idx.docLens {
		dl, err := readU32(r)
		if err != nil {
			return nil, wrapCorrupt(path, "read bm25 doc length", err)
		}
		idx.docLens[i] = int(dl)
		totalLen += int64(dl)
	}
	idx.totalLen = totalLen

	numTerms, err := readU32(r)
	if err != nil {
		return nil, wrapCorrupt(path, "read bm25 term count", err)
	}
	if numTerms > maxTerms {
		return nil, corpuserr.CorruptStoreError(corpuserr.CodeIndexCorruptBlob,
			fmt.Sprintf("bm25 term count %d exceeds bound", numTerms), nil).WithFile(path)
	}

	idx.postings = make(map[string][]Posting, numTerms)
	for i := uint32(0); i < numTerms; i++ {
		term, err := readString(r)
		if err != nil {
			return nil, wrapCorrupt(path, "read bm25 term", err)
		}
		count, err := readU32(r)
		if err != nil {
			return nil, wrapCorrupt(path, "read bm25 posting count", err)
		}
		if count > maxPostingsPerTerm {
			return nil, corpuserr.CorruptStoreError(corpuserr.CodeIndexCorruptBlob,
				fmt.Sprintf("bm25 postings count %d for term %q exceeds bound", count, term), nil).WithFile(path)
		}
		postings := make([]Posting, count)
		for j := range postings {
			pos, err := readU32(r)
			if err != nil {
				return nil, wrapCorrupt(path, "read bm25 posting position", err)
			}
			if pos >= numDocs {
				return nil, corpuserr.CorruptStoreError(corpuserr.CodeIndexCorruptBlob,
					fmt.Sprintf("bm25 posting position %d out of range", pos), nil).WithFile(path)
			}
			freq, err := readU32(r)
			if err != nil {
				return nil, wrapCorrupt(path, "read bm25 posting freq", err)
			}
			postings[j] = Posting{Position: int(pos), Freq: int(freq)}
		}
		idx.postings[term] = postings
	}

	return idx, nil
}

func wrapWrite(path string, err error) error {
	return corpuserr.IOError(corpuserr.CodeIOWriteFailed, "write bm25 index file", err).WithFile(path)
}

func wrapCorrupt(path, message string, err error) error {
	return corpuserr.CorruptStoreError(corpuserr.CodeIndexCorruptBlob, message, err).WithFile(path)
}

func writeU16(w io.Writer, v uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func writeU32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func writeF64(w io.Writer, v float64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	_, err := w.Write(buf[:])
	return err
}

func writeString(w io.Writer, s string) error {
	if len(s) > maxTermLen {
		return fmt.Errorf("bm25: string %q exceeds %d bytes", s, maxTermLen)
	}
	if err := writeU16(w, uint16(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readU16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

func readU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func readF64(r io.Reader) (float64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(buf[:])), nil
}

func readString(r io.Reader) (string, error) {
	n, err := readU16(r)
	if err != nil {
		return "", err
	}
	if int(n) > maxTermLen {
		return "", fmt.Errorf("bm25: string length %d exceeds %d bytes", n, maxTermLen)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
