package text

// Ratio returns a similarity in [0, 1] between two normalized strings:
// twice the length of their longest common subsequence divided by the sum of
// their lengths. Two empty strings are identical. Inputs are expected to be
// Normalize output, so the comparison runs over bytes.
func Ratio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	// Single-row DP over the shorter string.
	if len(b) < len(a) {
		a, b = b, a
	}
	prev := make([]int, len(a)+1)
	curr := make([]int, len(a)+1)
	for i := 1; i <= len(b); i++ {
		for j := 1; j <= len(a); j++ {
			if b[i-1] == a[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	lcs := prev[len(a)]

	return 2 * float64(lcs) / float64(len(a)+len(b))
}

// SimilarityThreshold is the minimum Ratio at which two titles are treated
// as the same work, both by the catalog matcher and by the fitness scorer's
// hard filter.
const SimilarityThreshold = 0.60
