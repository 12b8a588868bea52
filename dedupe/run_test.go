package dedupe

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/elduderino/dedupestats"
	"github.com/grailbio/elduderino/encoding/fastq"
)

// samLine renders one minimal 11-column SAM text record. mapq/rnext/
// pnext/tlen are unused by samtext.Parse and filled with placeholders.
func samLine(qname string, flag int, rname string, pos int, cigar, seq, qual string, tags ...string) string {
	fields := []string{qname, fmt.Sprint(flag), rname, fmt.Sprint(pos), "60", cigar, "=", fmt.Sprint(pos), "0", seq, qual}
	fields = append(fields, tags...)
	return strings.Join(fields, "\t") + "\n"
}

const (
	read1Fwd = int(0x1 | 0x2 | 0x20 | 0x40)        // paired, proper pair, mate reverse, read1
	read2Rev = int(0x1 | 0x2 | 0x10 | 0x80)        // paired, proper pair, reverse, read2
)

func runSAM(t *testing.T, sam string, opts *Opts) (string, *dedupestats.Statistics) {
	t.Helper()
	var buf fakeWriteBuf
	w := fastq.NewWriter(&buf)
	stats := dedupestats.New()
	err := Run([]byte(sam), w, opts, stats)
	require.NoError(t, err)
	return buf.String(), stats
}

type fakeWriteBuf struct{ data []byte }

func (f *fakeWriteBuf) Write(p []byte) (int, error) {
	f.data = append(f.data, p...)
	return len(p), nil
}
func (f *fakeWriteBuf) String() string { return string(f.data) }

func TestRunSingletonPairPassesThrough(t *testing.T) {
	sam := samLine("r1", read1Fwd, "chr1", 100, "5M", "ACGTA", "IIIII") +
		samLine("r1", read2Rev, "chr1", 200, "5M", "TACGT", "IIIII")

	opts := DefaultOpts()
	opts.OpticalMode = OpticalDisabled
	out, stats := runSAM(t, sam, opts)

	assert.Contains(t, out, "ACGTA")
	assert.Equal(t, uint64(2), stats.TotalReads)
	assert.Equal(t, uint64(1), stats.FamilySizes[1])
	assert.Equal(t, uint64(0), stats.PCRDuplicates)
}

func TestRunPCRFamilyMajorityVoteWins(t *testing.T) {
	// Three pairs sharing the same fingerprint (same rname/pos/orientation),
	// two agreeing on base 5 and one disagreeing: majority consensus wins.
	// All read1 records (pos 100) precede all read2 records (pos 200) so
	// the stream stays coordinate-sorted.
	var sam strings.Builder
	for i, seq := range []string{"ACGTA", "ACGTA", "ACGTT"} {
		sam.WriteString(samLine(fmt.Sprintf("r%d", i), read1Fwd, "chr1", 100, "5M", seq, "IIIII"))
	}
	for i := 0; i < 3; i++ {
		sam.WriteString(samLine(fmt.Sprintf("r%d", i), read2Rev, "chr1", 200, "5M", "TACGT", "IIIII"))
	}

	opts := DefaultOpts()
	opts.OpticalMode = OpticalDisabled
	out, stats := runSAM(t, sam.String(), opts)

	assert.Contains(t, out, "ACGTA")
	assert.Equal(t, uint64(6), stats.TotalReads)
	assert.Equal(t, uint64(1), stats.FamilySizes[3])
	assert.Equal(t, uint64(2), stats.PCRDuplicates)
}

func TestRunRejectsUnsortedInput(t *testing.T) {
	sam := samLine("r1", read1Fwd, "chr1", 200, "5M", "ACGTA", "IIIII") +
		samLine("r2", read1Fwd, "chr1", 100, "5M", "ACGTA", "IIIII")

	opts := DefaultOpts()
	opts.OpticalMode = OpticalDisabled
	var buf fakeWriteBuf
	w := fastq.NewWriter(&buf)
	stats := dedupestats.New()
	err := Run([]byte(sam), w, opts, stats)
	assert.Error(t, err)
}

func TestRunMinFamilySizeDropsSingleton(t *testing.T) {
	sam := samLine("r1", read1Fwd, "chr1", 100, "5M", "ACGTA", "IIIII") +
		samLine("r1", read2Rev, "chr1", 200, "5M", "TACGT", "IIIII")

	opts := DefaultOpts()
	opts.OpticalMode = OpticalDisabled
	opts.MinFamilySize = 2
	out, _ := runSAM(t, sam, opts)

	assert.Empty(t, out)
}
