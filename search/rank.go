package search

import (
	"cmp"
	"slices"

	"github.com/poiesic/hydrive/core"
)

// Rank drops results scoring at or below threshold, sorts the rest by score
// descending while preserving input order on ties, and keeps at most k.
// A k of zero or less keeps everything above the threshold.
func Rank(results []*core.SearchResult, threshold float64, k int) []*core.SearchResult {
	kept := make([]*core.SearchResult, 0, len(results))
	for _, r := range results {
		if r != nil && r.Score > threshold {
			kept = append(kept, r)
		}
	}

	slices.SortStableFunc(kept, func(a, b *core.SearchResult) int {
		return cmp.Compare(b.Score, a.Score)
	})

	if k > 0 && len(kept) > k {
		kept = kept[:k]
	}
	return kept
}
