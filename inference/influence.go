package inference

import (
	"fmt"
	"sort"
)

// Influence scores map training example indices to their influence on a test
// prediction: negative scores help the prediction, positive scores harm it.

// SortIndicesByScore returns the indices of the score map ordered by
// ascending score. Ties are broken by index so the order is deterministic.
func SortIndicesByScore(scores map[int]float64) []int {
	indices := make([]int, 0, len(scores))
	for index := range scores {
		indices = append(indices, index)
	}
	sort.Slice(indices, func(i, j int) bool {
		if scores[indices[i]] == scores[indices[j]] {
			return indices[i] < indices[j]
		}
		return scores[indices[i]] < scores[indices[j]]
	})
	return indices
}

// HelpfulHarmfulIndices splits the score map into helpful indices (negative
// scores, most helpful first) and harmful indices (positive scores, most
// harmful first). When n is positive, each list is cut to its first n
// entries; an error is returned when fewer than n exist.
func HelpfulHarmfulIndices(scores map[int]float64, n int) (helpful []int, harmful []int, err error) {
	ascending := SortIndicesByScore(scores)
	for _, index := range ascending {
		if scores[index] < 0 {
			helpful = append(helpful, index)
		}
	}
	for i := len(ascending) - 1; i >= 0; i-- {
		if scores[ascending[i]] > 0 {
			harmful = append(harmful, ascending[i])
		}
	}

	if n > 0 {
		if len(helpful) < n {
			return nil, nil, fmt.Errorf("helpful indices have only %d elements whereas %d is needed", len(helpful), n)
		}
		if len(harmful) < n {
			return nil, nil, fmt.Errorf("harmful indices have only %d elements whereas %d is needed", len(harmful), n)
		}
		helpful = helpful[:n]
		harmful = harmful[:n]
	}
	return helpful, harmful, nil
}
