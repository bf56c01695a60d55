// Package parsetxt is the minimal source-file "parser" collaborator the
// artifact builder walks the corpus through. It covers plain text and
// Markdown by passthrough, and recognises an optional form-feed (0x0C)
// page-break convention so callers that need page-level provenance (PDF
// extraction pipelines upstream of this package) can express it without
// corpuskit having to link a PDF library itself.
package parsetxt

import (
	"os"
	"strings"
	"time"

	"github.com/corpuskit/corpuskit/internal/chunk"
	"github.com/corpuskit/corpuskit/internal/corpuserr"
	"github.com/corpuskit/corpuskit/internal/ids"
	"github.com/corpuskit/corpuskit/internal/normalize"
)

// SupportedExtensions lists the file extensions this parser accepts,
// lowercase, including the leading dot.
var SupportedExtensions = []string{".txt", ".md", ".markdown"}

// pageBreak is the form-feed byte some upstream extraction tools use to
// mark page boundaries in otherwise-plain text.
const pageBreak = '\f'

// Supports reports whether ext (as returned by filepath.Ext) is handled.
func Supports(ext string) bool {
	lower := strings.ToLower(ext)
	for _, s := range SupportedExtensions {
		if s == lower {
			return true
		}
	}
	return false
}

// rawPage is a 1-based page bounded by byte offsets into raw (pre-normalization) text.
type rawPage struct {
	number     int
	start, end int
}

// Parse reads path and produces a Document: sourcePath is the doc_uid
// input (normalized, source-relative path), and path is where bytes are
// actually read from.
func Parse(path, sourcePath string) (*chunk.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, corpuserr.IOError(corpuserr.CodeIOReadFailed, "read source file", err).WithFile(path)
	}
	return ParseBytes(data, sourcePath)
}

// ParseBytes parses raw document bytes already held in memory, splitting
// on form-feed bytes into pages when present.
func ParseBytes(data []byte, sourcePath string) (*chunk.Document, error) {
	raw := string(data)
	rawPages := splitRawPages(raw)

	normalizedText := normalize.Text(raw)
	docUID := ids.DocUID(sourcePath)
	docID := ids.DocID(docUID, ids.HashText(normalizedText))

	doc := &chunk.Document{
		DocUID:         docUID,
		DocID:          docID,
		SourcePath:     ids.NormalizePath(sourcePath),
		RawText:        raw,
		NormalizedText: normalizedText,
		Title:          titleFrom(sourcePath),
		ExtractedAt:    extractedAtPlaceholder(),
	}

	if len(rawPages) > 1 {
		doc.Pages = derivePages(rawPages, raw, normalizedText)
	}

	return doc, nil
}

// splitRawPages splits raw on form-feed bytes, returning one rawPage per
// segment with offsets into raw. A document with no form-feed yields a
// single page spanning the whole text (callers treat len==1 as "no
// pagination metadata").
func splitRawPages(raw string) []rawPage {
	var pages []rawPage
	start := 0
	number := 1
	for i := 0; i < len(raw); i++ {
		if raw[i] == pageBreak {
			pages = append(pages, rawPage{number: number, start: start, end: i})
			start = i + 1
			number++
		}
	}
	pages = append(pages, rawPage{number: number, start: start, end: len(raw)})
	return pages
}

// derivePages re-locates each raw page's text within normalizedText by
// searching for its normalized form, in order, from the previous page's
// end. Pages whose normalized text can't be located (fully whitespace,
// or normalization merged it into a neighbor) are dropped: partial page
// bookkeeping is better than wrong page bookkeeping.
func derivePages(rawPages []rawPage, raw, normalizedText string) []chunk.Page {
	var pages []chunk.Page
	cursor := 0
	for _, rp := range rawPages {
		segment := normalize.Text(raw[rp.start:rp.end])
		if segment == "" {
			continue
		}
		idx := strings.Index(normalizedText[cursor:], segment)
		if idx < 0 {
			continue
		}
		start := cursor + idx
		end := start + len(segment)
		pages = append(pages, chunk.Page{PageNumber: rp.number, Start: start, End: end})
		cursor = end
	}
	return pages
}

func titleFrom(sourcePath string) string {
	base := sourcePath
	if idx := strings.LastIndexByte(base, '/'); idx >= 0 {
		base = base[idx+1:]
	}
	if idx := strings.LastIndexByte(base, '.'); idx > 0 {
		base = base[:idx]
	}
	return base
}

// extractedAtPlaceholder returns the zero time; callers (the artifact
// builder) stamp the real extraction time since this package must stay
// free of time.Now() to remain deterministic under the no-randomness
// constraint placed on the rest of the engine.
func extractedAtPlaceholder() (t time.Time) {
	return
}
