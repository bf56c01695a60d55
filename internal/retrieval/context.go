package retrieval

import (
	"fmt"
	"strings"

	"github.com/corpuskit/corpuskit/internal/chunk"
)

// AssembleContext joins materialized chunks into one citation-tagged
// context string suitable for handing to an external answer-synthesizer:
// each chunk is prefixed with a "[Doc: path, Page: N]" citation and
// chunks are deduplicated by document, keeping only the first (highest-
// ranked) chunk per doc_uid. This assembles citations; it does not call
// an LLM or synthesize an answer, which stays out of scope.
func AssembleContext(chunks []chunk.Chunk) string {
	seen := make(map[string]bool, len(chunks))
	var parts []string

	for _, c := range chunks {
		if seen[c.DocUID] {
			continue
		}
		seen[c.DocUID] = true
		parts = append(parts, fmt.Sprintf("%s %s", citation(c.SourceRef), c.Text))
	}

	return strings.Join(parts, "\n\n")
}

func citation(ref chunk.SourceRef) string {
	if ref.PageStart != nil {
		return fmt.Sprintf("[Doc: %s, Page: %d]", ref.SourcePath, *ref.PageStart)
	}
	return fmt.Sprintf("[Doc: %s]", ref.SourcePath)
}
