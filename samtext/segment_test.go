package samtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBasic(t *testing.T) {
	line := "read1\t99\tchr1\t100\t60\t5M\t=\t200\t105\tACGTA\tIIIII\tRX:Z:AAA-GGG\n"
	seg, n, err := Parse([]byte(line))
	require.NoError(t, err)
	assert.Equal(t, len(line), n)
	assert.Equal(t, "read1", string(seg.QName))
	assert.Equal(t, Flags(99), seg.Flag)
	assert.Equal(t, "chr1", string(seg.RName))
	assert.EqualValues(t, 100, seg.Pos)
	assert.Equal(t, "5M", string(seg.Cigar))
	assert.Equal(t, "ACGTA", string(seg.Seq))
	assert.Equal(t, "IIIII", string(seg.Qual))
	assert.Equal(t, "AAA", string(seg.BarcodeA))
	assert.Equal(t, "GGG", string(seg.BarcodeB))
}

func TestParseUnmappedCigar(t *testing.T) {
	line := "read1\t77\t*\t0\t0\t*\t*\t0\t0\tACGTA\tIIIII\n"
	seg, _, err := Parse([]byte(line))
	require.NoError(t, err)
	assert.Equal(t, "*", string(seg.Cigar))
}

func TestParseTruncated(t *testing.T) {
	_, _, err := Parse([]byte("read1\t99\tchr1\n"))
	require.Error(t, err)
}

func TestParseSeqQualMismatch(t *testing.T) {
	line := "r\t0\tchr1\t1\t0\t5M\t=\t1\t5\tACGTA\tIII\n"
	_, _, err := Parse([]byte(line))
	require.Error(t, err)
}

func TestParseSeqCigarMismatch(t *testing.T) {
	line := "r\t0\tchr1\t1\t0\t4M\t=\t1\t5\tACGTA\tIIIII\n"
	_, _, err := Parse([]byte(line))
	require.Error(t, err)
}

func TestReaderSkipsHeader(t *testing.T) {
	data := "@HD\tVN:1.6\n@SQ\tSN:chr1\tLN:100\n" +
		"r1\t99\tchr1\t1\t60\t5M\t=\t10\t14\tACGTA\tIIIII\n" +
		"r1\t147\tchr1\t10\t60\t5M\t=\t1\t-14\tTTTTT\tIIIII\n"
	r := NewReader([]byte(data))
	seg, ok, err := r.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "r1", string(seg.QName))
	assert.EqualValues(t, 1, seg.Pos)

	_, ok, err = r.Next()
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = r.Next()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestConsumesRefAndRead(t *testing.T) {
	ref, err := ConsumesRef([]byte("10M2D5M"))
	require.NoError(t, err)
	assert.EqualValues(t, 17, ref)

	read, err := ConsumesRead([]byte("10M2D5M2S"))
	require.NoError(t, err)
	assert.EqualValues(t, 17, read)

	star, err := ConsumesRef([]byte("*"))
	require.NoError(t, err)
	assert.EqualValues(t, 0, star)
}
