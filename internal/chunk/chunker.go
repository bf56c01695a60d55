package chunk

import (
	"sort"

	"github.com/corpuskit/corpuskit/internal/ids"
)

// Options configures the fixed-size word-count chunker.
type Options struct {
	// ChunkSizeWords is the target number of whitespace-delimited words
	// per chunk.
	ChunkSizeWords int

	// OverlapWords is how many trailing words of one chunk are repeated
	// as the leading words of the next. Must be < ChunkSizeWords.
	OverlapWords int
}

// wordSpan is a half-open byte interval covering one whitespace-delimited
// word in a document's normalized text.
type wordSpan struct {
	start, end int
}

// wordSpans scans text once for maximal runs of non-whitespace characters.
// Normalized text contains only ASCII space and LF as whitespace, so a
// byte-level scan is safe even for multi-byte UTF-8 content: every
// continuation/lead byte of a multi-byte rune is >= 0x80 and can never be
// mistaken for ' ' or '\n'.
func wordSpans(text string) []wordSpan {
	var spans []wordSpan
	n := len(text)
	i := 0
	for i < n {
		for i < n && isWordSep(text[i]) {
			i++
		}
		if i >= n {
			break
		}
		start := i
		for i < n && !isWordSep(text[i]) {
			i++
		}
		spans = append(spans, wordSpan{start, i})
	}
	return spans
}

func isWordSep(b byte) bool {
	return b == ' ' || b == '\n'
}

// firstSpanAtOrAfter returns the index of the first span whose start is >=
// pos, or len(spans) if none.
func firstSpanAtOrAfter(spans []wordSpan, pos int) int {
	return sort.Search(len(spans), func(i int) bool { return spans[i].start >= pos })
}

// Chunk slices doc.NormalizedText into offset-exact, content-addressed
// chunks following the fixed-size word-count algorithm: advance ChunkSizeWords
// words from the cursor to find the chunk end, emit the exact slice
// text[pos:end] with no trimming, then step the cursor back OverlapWords
// words from end for the next chunk. Chunking stops once a chunk reaches
// the end of the text, or the cursor fails to advance.
func Chunk(doc *Document, opts Options) ([]Chunk, error) {
	text := doc.NormalizedText
	spans := wordSpans(text)
	if len(spans) == 0 {
		return nil, nil
	}

	var chunks []Chunk
	pos := 0
	chunkIndex := 0

	for {
		wi := firstSpanAtOrAfter(spans, pos)
		if wi >= len(spans) {
			break
		}

		endWordIdx := wi + opts.ChunkSizeWords - 1
		var end int
		reachedEnd := false
		if endWordIdx >= len(spans) {
			end = len(text)
			endWordIdx = len(spans) - 1
			reachedEnd = true
		} else {
			end = spans[endWordIdx].end
			if end >= len(text) {
				reachedEnd = true
			}
		}

		start := pos
		sliceText := text[start:end]
		c := newChunk(doc, sliceText, start, end, chunkIndex)
		derivePageRange(&c, doc)
		chunks = append(chunks, c)
		chunkIndex++

		if reachedEnd {
			break
		}

		newWordIdx := endWordIdx - opts.OverlapWords + 1
		if newWordIdx < 0 {
			newWordIdx = 0
		}
		newPos := spans[newWordIdx].start
		if newPos <= pos {
			break
		}
		pos = newPos
	}

	return chunks, nil
}

func newChunk(doc *Document, text string, start, end, chunkIndex int) Chunk {
	cid := ids.ChunkID(doc.DocUID, start, end, ids.HashText(text))
	return Chunk{
		ChunkID:    cid,
		DocUID:     doc.DocUID,
		DocID:      doc.DocID,
		Text:       text,
		Start:      start,
		End:        end,
		ChunkIndex: chunkIndex,
		SourceRef: SourceRef{
			SourcePath: doc.SourcePath,
			Start:      start,
			End:        end,
		},
	}
}

// derivePageRange sets c.PageStart/PageEnd (and the mirrored SourceRef
// fields) to the min/max page number among doc.Pages whose interval
// intersects [c.Start, c.End). Left nil when the document has no pages.
func derivePageRange(c *Chunk, doc *Document) {
	if len(doc.Pages) == 0 {
		return
	}

	var minPage, maxPage *int
	for i := range doc.Pages {
		p := doc.Pages[i]
		if p.Start < c.End && c.Start < p.End {
			pn := p.PageNumber
			if minPage == nil || pn < *minPage {
				v := pn
				minPage = &v
			}
			if maxPage == nil || pn > *maxPage {
				v := pn
				maxPage = &v
			}
		}
	}

	c.PageStart = minPage
	c.PageEnd = maxPage
	c.SourceRef.PageStart = minPage
	c.SourceRef.PageEnd = maxPage
}
