// Package bm25 implements the word-level tokenizer and Okapi BM25 sparse
// index used to rank chunks against a query, plus the index's on-disk
// binary persistence format.
package bm25

import (
	"strings"
	"unicode"
)

// DefaultStopwords is the small, conservative English stopword set used
// when a config enables stopword filtering. It is intentionally short:
// the tokenizer's job is term extraction, not linguistic normalization.
var DefaultStopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "he": true,
	"in": true, "is": true, "it": true, "its": true, "of": true, "on": true,
	"that": true, "the": true, "to": true, "was": true, "were": true, "will": true,
	"with": true,
}

// Tokenize extracts maximal runs of word characters (letters, digits,
// underscore) from s, lowercased, applied identically to documents and
// queries. When stopwords is non-nil, tokens present in it are dropped.
// This is deliberately term-based; it does not split camelCase/snake_case
// and never performs LLM/sub-word tokenization.
func Tokenize(s string, stopwords map[string]bool) []string {
	var tokens []string
	var b strings.Builder

	flush := func() {
		if b.Len() == 0 {
			return
		}
		tok := b.String()
		b.Reset()
		if stopwords == nil || !stopwords[tok] {
			tokens = append(tokens, tok)
		}
	}

	for _, r := range s {
		if isWordRune(r) {
			b.WriteRune(unicode.ToLower(r))
		} else {
			flush()
		}
	}
	flush()

	return tokens
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
