package service

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

// Rank orders every class by descending score, breaking ties by ascending
// index, and keeps the first k. NaN scores sort after all numbers.
func Rank(scores ScoreVector, catalog *LabelCatalog, k int) (RankedResult, error) {
	if len(scores) != catalog.Len() {
		return nil, fmt.Errorf("%w: model produced %d scores, label catalog has %d entries",
			ErrLabelCountMismatch, len(scores), catalog.Len())
	}
	if k <= 0 || k > len(scores) {
		return nil, fmt.Errorf("%w: k=%d, must be in [1, %d]", ErrInvalidK, k, len(scores))
	}

	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		if c := compareScores(scores[a], scores[b]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	result := make(RankedResult, k)
	for i, ci := range idx[:k] {
		result[i] = Prediction{
			Index: ci,
			Label: catalog.Label(ci),
			Score: scores[ci],
		}
	}
	return result, nil
}

// compareScores sorts higher scores first.
func compareScores(a, b float32) int {
	aNaN, bNaN := math.IsNaN(float64(a)), math.IsNaN(float64(b))
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	}
	return cmp.Compare(b, a)
}
