package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/grailbio/elduderino/dedupe/pair"
	"github.com/grailbio/elduderino/samtext"
)

func pairWithCigars(c0, c1 string) pair.ReadPair {
	return pair.ReadPair{Segment: [2]samtext.Segment{
		{QName: []byte("r"), Cigar: []byte(c0)},
		{QName: []byte("r"), Cigar: []byte(c1)},
	}}
}

func TestCigarVoteSingletonPassesThrough(t *testing.T) {
	p := pairWithCigars("5M", "5M")
	survivors, size := cigarVote([]pair.ReadPair{p})
	assert.Equal(t, 1, size)
	assert.Len(t, survivors, 1)
}

func TestCigarVoteMajorityWins(t *testing.T) {
	pairs := []pair.ReadPair{
		pairWithCigars("5M", "5M"),
		pairWithCigars("5M", "5M"),
		pairWithCigars("3M2S", "5M"),
	}
	survivors, size := cigarVote(pairs)
	assert.Equal(t, 3, size)
	assert.Len(t, survivors, 2)
	for _, s := range survivors {
		assert.Equal(t, "5M", string(s.Segment[0].Cigar))
	}
}

func TestCigarVoteFailsBelowThreshold(t *testing.T) {
	pairs := []pair.ReadPair{
		pairWithCigars("5M", "5M"),
		pairWithCigars("3M2S", "5M"),
		pairWithCigars("2M3S", "5M"),
	}
	survivors, size := cigarVote(pairs)
	assert.Equal(t, 3, size)
	assert.Nil(t, survivors)
}
