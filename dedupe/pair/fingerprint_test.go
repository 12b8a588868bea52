package pair

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/elduderino/samtext"
)

func segAt(name string, flag samtext.Flags, rname string, pos int32, cigar string) samtext.Segment {
	return samtext.Segment{
		QName: []byte(name),
		Flag:  flag,
		RName: []byte(rname),
		Pos:   pos,
		Cigar: []byte(cigar),
		Seq:   []byte("ACGTA"),
		Qual:  []byte("IIIII"),
	}
}

func TestFivePrimeBeginForward(t *testing.T) {
	seg := segAt("r", samtext.Read1, "chr1", 100, "5M")
	begin, err := FivePrimeBegin(&seg)
	require.NoError(t, err)
	assert.EqualValues(t, 100, begin)
}

func TestFivePrimeBeginReverse(t *testing.T) {
	seg := segAt("r", samtext.Read1|samtext.Reverse, "chr1", 100, "5M")
	begin, err := FivePrimeBegin(&seg)
	require.NoError(t, err)
	assert.EqualValues(t, 105, begin)
}

func TestNewReadPairNormalizesUnmappedToSlotZero(t *testing.T) {
	mapped := segAt("r", samtext.Read1, "chr1", 100, "5M")
	unmapped := segAt("r", samtext.Read2|samtext.Unmapped, "*", 0, "*")

	p := NewReadPair(mapped, unmapped, 0)
	assert.True(t, p.Segment[0].Flag.Any(samtext.Unmapped))
	assert.False(t, p.Segment[1].Flag.Any(samtext.Unmapped))

	p2 := NewReadPair(unmapped, mapped, 1)
	assert.True(t, p2.Segment[0].Flag.Any(samtext.Unmapped))
	assert.False(t, p2.Segment[1].Flag.Any(samtext.Unmapped))
}

func TestFingerprintEqualForSameCoordinatesAndOrientation(t *testing.T) {
	s0 := segAt("r1", samtext.Read1, "chr1", 100, "5M")
	s1 := segAt("r1", samtext.Read2|samtext.Reverse, "chr1", 200, "5M")
	p1 := ReadPair{Segment: [2]samtext.Segment{s0, s1}}

	s0b := segAt("r2", samtext.Read1, "chr1", 100, "5M")
	s1b := segAt("r2", samtext.Read2|samtext.Reverse, "chr1", 200, "5M")
	p2 := ReadPair{Segment: [2]samtext.Segment{s0b, s1b}}

	fp1, err := Fingerprint(&p1)
	require.NoError(t, err)
	fp2, err := Fingerprint(&p2)
	require.NoError(t, err)
	assert.Equal(t, fp1, fp2)
}

func TestFingerprintDiffersByOrientation(t *testing.T) {
	s0 := segAt("r1", samtext.Read1, "chr1", 100, "5M")
	s1 := segAt("r1", samtext.Read2|samtext.Reverse, "chr1", 200, "5M")
	p1 := ReadPair{Segment: [2]samtext.Segment{s0, s1}}

	s1c := segAt("r1", samtext.Read2, "chr1", 200, "5M")
	p3 := ReadPair{Segment: [2]samtext.Segment{s0, s1c}}

	fp1, err := Fingerprint(&p1)
	require.NoError(t, err)
	fp3, err := Fingerprint(&p3)
	require.NoError(t, err)
	assert.NotEqual(t, fp1, fp3)
}

func TestBeginTakesLarger(t *testing.T) {
	s0 := segAt("r1", samtext.Read1, "chr1", 100, "5M")
	s1 := segAt("r1", samtext.Read2|samtext.Reverse, "chr1", 200, "10M")
	p := ReadPair{Segment: [2]samtext.Segment{s0, s1}}
	begin, err := p.Begin()
	require.NoError(t, err)
	assert.EqualValues(t, 210, begin)
}
