// Package chunk holds the core document data model (Document, Page, Chunk,
// SourceRef) and the fixed-size word-count chunker that slices a document's
// normalized text into offset-exact, content-addressed chunks.
package chunk

import "time"

// Page is a 1-based page of a paginated document, expressed as a half-open
// interval into the document's normalized text. Page and chunk offsets
// count UTF-8 bytes, not characters.
type Page struct {
	PageNumber int
	Start      int
	End        int
}

// Document is a single parsed, normalized source file.
type Document struct {
	DocUID   string
	DocID    string
	SourcePath string // relative, forward-slash, "."/".." resolved

	RawText        string // diagnostics only; never used for offsets
	NormalizedText string // canonical reference for every offset

	Title     string
	Pages     []Page // optional; non-overlapping and ordered; separators between pages fall outside every page, so they need not cover NormalizedText exactly
	ExtractedAt time.Time
}

// SourceRef mirrors a chunk's provenance for citation.
type SourceRef struct {
	SourcePath string
	Start      int
	End        int
	PageStart  *int
	PageEnd    *int
}

// Chunk is a contiguous, offset-exact slice of a document's normalized text.
type Chunk struct {
	ChunkID string
	DocUID  string
	DocID   string

	Text  string
	Start int // half-open interval [Start, End) into the document's normalized text
	End   int

	ChunkIndex int // position within the document, 0-based, in emission order

	PageStart *int // nil when the document has no pages
	PageEnd   *int

	SourceRef SourceRef
}
