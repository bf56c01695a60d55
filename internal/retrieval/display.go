package retrieval

// ShiftToZero applies an optional display-layer normalization: it adds the
// magnitude of the most negative score to every score so the minimum
// becomes zero, preserving ranking order. BM25 scores returned by
// RetrieveIDs/Retrieve are never altered by the pipeline itself; callers
// opt into this purely for presentation.
func ShiftToZero(scores []float64) []float64 {
	if len(scores) == 0 {
		return nil
	}

	min := scores[0]
	for _, s := range scores[1:] {
		if s < min {
			min = s
		}
	}

	out := make([]float64, len(scores))
	if min >= 0 {
		copy(out, scores)
		return out
	}
	shift := -min
	for i, s := range scores {
		out[i] = s + shift
	}
	return out
}
