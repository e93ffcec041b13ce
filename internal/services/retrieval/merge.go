package retrieval

import (
	"sort"

	"github.com/ternarybob/doceo/internal/models"
)

// mergeResults merges per-query result lists into one deduplicated set.
// Lists are walked in query order (original question first, then variants
// in generation order). A chunk found by several queries appears once,
// keeping the best rank it achieved and that occurrence's score. Final
// order is ascending best rank; first-seen wins ties.
func mergeResults(resultSets [][]models.ScoredChunk) []models.RetrievedChunk {
	byID := make(map[string]int)
	var merged []models.RetrievedChunk

	for _, results := range resultSets {
		for _, hit := range results {
			id := hit.ID()
			if at, ok := byID[id]; ok {
				if hit.Rank < merged[at].BestRank {
					merged[at].BestRank = hit.Rank
					merged[at].Score = hit.Score
				}
				continue
			}

			byID[id] = len(merged)
			merged = append(merged, models.RetrievedChunk{
				Chunk:    hit.Chunk,
				Score:    hit.Score,
				BestRank: hit.Rank,
			})
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].BestRank < merged[j].BestRank
	})
	return merged
}
