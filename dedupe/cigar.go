package dedupe

import (
	"bytes"
	"sort"

	"github.com/grailbio/base/log"
	"github.com/grailbio/elduderino/dedupe/pair"
)

// cigarVote implements spec §4.4(b): within a UMI sub-family of size
// ≥ 2, partition by the lexicographic (CIGAR0, CIGAR1) pair and keep
// the first run reaching ceil(0.6 * familySize). familySize is the
// size of the UMI sub-family the run was drawn from, not the size of
// the surviving run itself — the 60% gate is evaluated against it.
//
// The second return value is the UMI sub-family's size, which the
// caller records in the family-size histogram even when the gate
// fails and no pairs survive: a family that loses the CIGAR vote is
// still a family that existed, per the worked scenario in spec §8.
func cigarVote(pairs []pair.ReadPair) (survivors []pair.ReadPair, familySize int) {
	familySize = len(pairs)
	if familySize < 2 {
		return pairs, familySize
	}

	sorted := make([]pair.ReadPair, len(pairs))
	copy(sorted, pairs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return cigarLess(&sorted[i], &sorted[j])
	})

	threshold := (6*familySize + 9) / 10 // ceil(0.6 * familySize)

	start := 0
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && cigarEqual(&sorted[start], &sorted[i]) {
			continue
		}
		if i-start >= threshold {
			run := sorted[start:i]
			log.Debug.Printf("cigar vote: run of %d/%d reaches threshold %d", len(run), familySize, threshold)
			return run, familySize
		}
		start = i
	}
	log.Debug.Printf("cigar vote: no run reached threshold %d of %d", threshold, familySize)
	return nil, familySize
}

func cigarLess(a, b *pair.ReadPair) bool {
	if c := bytes.Compare(a.Segment[0].Cigar, b.Segment[0].Cigar); c != 0 {
		return c < 0
	}
	return bytes.Compare(a.Segment[1].Cigar, b.Segment[1].Cigar) < 0
}

func cigarEqual(a, b *pair.ReadPair) bool {
	return bytes.Equal(a.Segment[0].Cigar, b.Segment[0].Cigar) &&
		bytes.Equal(a.Segment[1].Cigar, b.Segment[1].Cigar)
}
