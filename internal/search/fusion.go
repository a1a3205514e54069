package search

import "sort"

// Fuse merges the two channel rankings with weighted Reciprocal Rank
// Fusion. An item at zero-based rank r contributes weight/(k+r+1); the
// same content surfacing in both channels accumulates both contributions
// under one entry. Lexical results are inserted first and the final sort
// is stable, so ties resolve to lexical rank order. Metadata for a
// deduplicated item is last-write-wins across channels. The fused list is
// truncated to topK.
func Fuse(lexical, semantic []ChannelResult, weights Weights, k, topK int) []Result {
	if k <= 0 {
		k = DefaultRRFK
	}

	var fused []Result
	byContent := make(map[string]int, len(lexical)+len(semantic))

	accumulate := func(items []ChannelResult, weight float64, isLexical bool) {
		for rank, item := range items {
			contribution := weight / float64(k+rank+1)
			if i, ok := byContent[item.Content]; ok {
				fused[i].Score += contribution
				fused[i].ChunkID = item.ChunkID
				fused[i].Metadata = item.Metadata
				if isLexical {
					fused[i].FromLexical = true
				} else {
					fused[i].FromSemantic = true
				}
				continue
			}
			byContent[item.Content] = len(fused)
			fused = append(fused, Result{
				ChunkID:      item.ChunkID,
				Content:      item.Content,
				Score:        contribution,
				FromLexical:  isLexical,
				FromSemantic: !isLexical,
				Metadata:     item.Metadata,
			})
		}
	}

	accumulate(lexical, weights.Lexical, true)
	accumulate(semantic, weights.Semantic, false)

	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].Score > fused[j].Score
	})

	if topK > 0 && len(fused) > topK {
		fused = fused[:topK]
	}
	return fused
}
