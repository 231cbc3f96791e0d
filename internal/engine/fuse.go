package engine

// rrfFuse merges ranked chunk-id lists with Reciprocal Rank Fusion. Each
// list contributes 1/(k+rank) per chunk, rank starting at 1, so a chunk
// near the top of both lists outranks one that tops only one of them.
func rrfFuse(k int, lists ...[]string) map[string]float64 {
	scores := make(map[string]float64)
	for _, list := range lists {
		for i, chunkID := range list {
			scores[chunkID] += 1.0 / float64(k+i+1)
		}
	}
	return scores
}
