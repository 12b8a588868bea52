// Package editdistance provides the Levenshtein distance used by the
// optional UMI snap-correction pass. It stands in for
// github.com/grailbio/bio/util's distance helper, which is not
// retained in this module (see DESIGN.md) because it pulls in the
// fusion package's k-mer machinery along with it.
package editdistance

// Levenshtein returns the edit distance between a and b: the minimum
// number of single-character insertions, deletions, or substitutions
// needed to turn a into b.
func Levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			curr[j] = min3(del, ins, sub)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
