package utsf

import "sort"

// DefaultRunThreshold is the minimum consecutive-run length that
// compresses into a range; shorter runs emit as singles.
const DefaultRunThreshold = 3

// Compress collapses a pincode set into (ranges, singles). Input is
// deduplicated and sorted first; a run of consecutive values of length
// >= threshold becomes an inclusive range, shorter runs emit as singles.
// Non-positive thresholds fall back to DefaultRunThreshold.
func Compress(pincodes []int, threshold int) ([]Range, []int) {
	if threshold <= 0 {
		threshold = DefaultRunThreshold
	}

	sorted := make([]int, 0, len(pincodes))
	for _, p := range pincodes {
		if p > 0 {
			sorted = append(sorted, p)
		}
	}
	sort.Ints(sorted)
	sorted = dedup(sorted)

	var ranges []Range
	var singles []int

	for i := 0; i < len(sorted); {
		j := i
		for j+1 < len(sorted) && sorted[j+1] == sorted[j]+1 {
			j++
		}
		runLen := j - i + 1
		if runLen >= threshold {
			ranges = append(ranges, Range{S: sorted[i], E: sorted[j]})
		} else {
			singles = append(singles, sorted[i:j+1]...)
		}
		i = j + 1
	}

	return ranges, singles
}

// Expand materializes (ranges, singles) back into a set. Ranges are
// inclusive; zero or inverted entries (the tolerated decode of malformed
// input) are ignored.
func Expand(ranges []Range, singles []int) map[int]struct{} {
	size := len(singles)
	for _, r := range ranges {
		if r.S > 0 && r.E >= r.S {
			size += r.E - r.S + 1
		}
	}
	set := make(map[int]struct{}, size)
	for _, r := range ranges {
		if r.S <= 0 || r.E < r.S {
			continue
		}
		for p := r.S; p <= r.E; p++ {
			set[p] = struct{}{}
		}
	}
	for _, p := range singles {
		if p > 0 {
			set[p] = struct{}{}
		}
	}
	return set
}

// ExpandCount returns the cardinality of Expand without materializing
// the set. Overlap between ranges and singles is assumed canonicalized
// away by Validate.
func ExpandCount(ranges []Range, singles []int) int {
	n := 0
	for _, r := range ranges {
		if r.S > 0 && r.E >= r.S {
			n += r.E - r.S + 1
		}
	}
	for _, p := range singles {
		if p > 0 {
			n++
		}
	}
	return n
}

func dedup(sorted []int) []int {
	if len(sorted) == 0 {
		return sorted
	}
	out := sorted[:1]
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1] {
			out = append(out, sorted[i])
		}
	}
	return out
}
