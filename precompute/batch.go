package precompute

import "iter"

// batches yields the [start, end) bounds of consecutive batches covering n items.
func batches(n, size int) iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		if size <= 0 {
			size = n
		}
		for start := 0; start < n; start += size {
			if !yield(start, min(start+size, n)) {
				return
			}
		}
	}
}
