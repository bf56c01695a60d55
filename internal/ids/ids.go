// Package ids implements the deterministic, content-addressed identifier
// scheme: doc_uid, doc_id, and chunk_id. Every function here is pure: given
// the same inputs it always yields the same 16-hex-character identifier,
// with no entropy source of any kind.
package ids

import (
	"crypto/sha256"
	"encoding/hex"
	"path"
	"strconv"
	"strings"
)

// idLen is the number of hex characters kept from a SHA-256 digest.
const idLen = 16

// NormalizePath resolves "." and ".." segments and converts backslashes to
// forward slashes, yielding the canonical relative path used as doc_uid
// input. The result never starts with "/" or contains a leading "..".
func NormalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "/")
	cleaned := path.Clean("/" + p)
	return strings.TrimPrefix(cleaned, "/")
}

// DocUID derives the document's path-stable identifier. It depends only on
// the (normalized) source path, never on content, so it survives
// content-preserving and content-changing re-ingests of the same file.
func DocUID(sourcePath string) string {
	sum := sha256.Sum256([]byte(NormalizePath(sourcePath)))
	return hex.EncodeToString(sum[:])[:idLen]
}

// DocID derives the content-versioned document identifier from a doc_uid
// and the hex-encoded SHA-256 of the document's normalized text.
func DocID(docUID, normalizedTextHashHex string) string {
	sum := sha256.Sum256([]byte(docUID + normalizedTextHashHex))
	return hex.EncodeToString(sum[:])[:idLen]
}

// HashText returns the lowercase hex SHA-256 digest of s, the form DocID
// and ChunkID expect for their text-hash input.
func HashText(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// ChunkID derives the chunk identifier from the owning document's doc_uid,
// the chunk's half-open offset pair, and the hex SHA-256 of the chunk text.
// It is stable under content-preserving re-ingests: the same document
// producing the same chunk at the same offsets always yields the same id.
func ChunkID(docUID string, offsetStart, offsetEnd int, chunkTextHashHex string) string {
	input := docUID + strconv.Itoa(offsetStart) + strconv.Itoa(offsetEnd) + chunkTextHashHex
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])[:idLen]
}
