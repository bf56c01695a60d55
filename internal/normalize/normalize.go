// Package normalize canonicalizes raw document text to the reference form
// that every downstream offset (Page, Chunk) is measured against.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Text applies the canonicalization pipeline: Unicode NFKC normalization,
// CRLF/lone-CR folding to LF, collapsing runs of spaces/tabs to a single
// space, and trimming leading/trailing whitespace. Newlines are preserved
// as structural delimiters so Page intervals stay meaningful.
//
// Text is pure and idempotent: Text(Text(s)) == Text(s) for all UTF-8 s.
func Text(s string) string {
	s = norm.NFKC.String(s)
	s = foldNewlines(s)
	s = collapseHorizontalSpace(s)
	return strings.Trim(s, " \t\n")
}

// foldNewlines converts CRLF and lone CR into LF.
func foldNewlines(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\r' {
			b.WriteByte('\n')
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// collapseHorizontalSpace replaces every run of non-newline whitespace with
// a single ASCII space. Newlines are left untouched as structural delimiters.
func collapseHorizontalSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inRun := false
	for _, r := range s {
		if r == '\n' {
			inRun = false
			b.WriteRune(r)
			continue
		}
		if unicode.IsSpace(r) {
			if !inRun {
				b.WriteByte(' ')
				inRun = true
			}
			continue
		}
		inRun = false
		b.WriteRune(r)
	}
	return b.String()
}
