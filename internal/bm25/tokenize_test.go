package bm25

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize_LowercasesAndSplitsOnNonWordRuns(t *testing.T) {
	got := Tokenize("Hello, World! foo_bar 123", nil)
	assert.Equal(t, []string{"hello", "world", "foo_bar", "123"}, got)
}

func TestTokenize_DoesNotSplitCamelCaseOrSnakeCase(t *testing.T) {
	got := Tokenize("camelCaseWord snake_case_word", nil)
	assert.Equal(t, []string{"camelcaseword", "snake_case_word"}, got)
}

func TestTokenize_DropsStopwordsWhenProvided(t *testing.T) {
	got := Tokenize("the quick fox and the lazy dog", DefaultStopwords)
	assert.Equal(t, []string{"quick", "fox", "lazy", "dog"}, got)
}

func TestTokenize_NilStopwordsKeepsEverything(t *testing.T) {
	got := Tokenize("the quick fox", nil)
	assert.Equal(t, []string{"the", "quick", "fox"}, got)
}

func TestTokenize_EmptyStringYieldsNoTokens(t *testing.T) {
	assert.Empty(t, Tokenize("", nil))
	assert.Empty(t, Tokenize("   ---   ", nil))
}

func TestTokenize_IdenticalForDocumentsAndQueries(t *testing.T) {
	doc := "Machine Learning is great."
	query := "machine learning"
	docTokens := Tokenize(doc, nil)
	queryTokens := Tokenize(query, nil)
	assert.Equal(t, []string{"machine", "learning"}, queryTokens)
	assert.Contains(t, docTokens, "machine")
	assert.Contains(t, docTokens, "learning")
}
