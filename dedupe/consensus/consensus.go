package consensus

import (
	"fmt"

	"github.com/grailbio/elduderino/dedupe/pair"
	"github.com/grailbio/elduderino/dedupestats"
	"github.com/grailbio/elduderino/encoding/fastq"
	"github.com/grailbio/elduderino/samtext"
)

// AggregateMode selects how per-base quality is aggregated across a
// family's members: by sum (the ordinary inter-read consensus, spec
// §4.6) or by max (the optical-cluster consensus sub-routine, spec
// §4.4c/§4.6).
type AggregateMode int

const (
	// Sum aggregates (qual-33) by addition.
	Sum AggregateMode = iota
	// Max aggregates (qual-33) by maximum.
	Max
)

// Read is one consensus sequence/quality pair, in the same strand
// orientation as the family's segments (not yet reverse-complemented
// for emission).
type Read struct {
	Seq, Qual []byte
}

var bases = [4]byte{'A', 'C', 'G', 'T'}

// Compute folds pairs' segment[slot] into one consensus Read, spec
// §4.6. A family of size 1, or an unmapped read, is passed through
// verbatim. specialPairRule applies the >10-Phred dominance rule
// (identical to overlap trim's) instead of the 60% count gate when
// the family has exactly two members — used for optical-cluster
// consensus of size-2 clusters, per spec §4.4(c)/§4.6.
func Compute(pairs []pair.ReadPair, slot int, mode AggregateMode, specialPairRule bool, arena *Arena, stats *dedupestats.Statistics) (Read, error) {
	familySize := len(pairs)
	rep := &pairs[0].Segment[slot]
	if familySize == 1 || rep.Flag.Any(samtext.Unmapped) {
		return Read{Seq: arena.Copy(rep.Seq), Qual: arena.Copy(rep.Qual)}, nil
	}

	n := len(rep.Seq)
	if specialPairRule && familySize == 2 {
		return computePairDominance(pairs, slot, n, stats), nil
	}

	threshold := (6*familySize + 9) / 10 // ceil(0.6 * familySize)
	seq := make([]byte, n)
	qual := make([]byte, n)

	var mismatches, compared int
	for j := 0; j < n; j++ {
		var count [4]int
		var agg [4]int
		var first [4]int
		for i := range first {
			first[i] = -1
		}
		nCount := 0
		for i := range pairs {
			b := pairs[i].Segment[slot].Seq[j]
			q := int(pairs[i].Segment[slot].Qual[j]) - 33
			bi := baseIndex(b)
			if bi < 0 {
				nCount++
				continue
			}
			if first[bi] < 0 {
				first[bi] = i
			}
			count[bi]++
			if mode == Max {
				if q > agg[bi] || count[bi] == 1 {
					agg[bi] = q
				}
			} else {
				agg[bi] += q
			}
		}

		winner := -1
		for bi := 0; bi < 4; bi++ {
			if count[bi] == 0 {
				continue
			}
			if winner < 0 || count[bi] > count[winner] ||
				(count[bi] == count[winner] && first[bi] < first[winner]) {
				winner = bi
			}
		}

		if winner < 0 || count[winner] < threshold {
			seq[j] = 'N'
			qual[j] = '!'
		} else {
			others := 0
			for bi := 0; bi < 4; bi++ {
				if bi != winner {
					others += agg[bi]
				}
			}
			q := agg[winner] - others
			if q < 0 {
				q = 0
			}
			if q > 93 {
				q = 93
			}
			seq[j] = bases[winner]
			qual[j] = byte(q + 33)
		}

		for i := range pairs {
			compared++
			if pairs[i].Segment[slot].Seq[j] != seq[j] {
				mismatches++
			}
		}
	}
	if stats != nil {
		stats.AddPCR(mismatches, compared)
	}
	return Read{Seq: seq, Qual: qual}, nil
}

func baseIndex(b byte) int {
	switch b {
	case 'A':
		return 0
	case 'C':
		return 1
	case 'G':
		return 2
	case 'T':
		return 3
	default:
		return -1
	}
}

// computePairDominance implements the >10-Phred dominance rule for a
// family of exactly two members, the same rule overlap trim applies
// to mismatched positions: the higher-quality base wins outright if
// it beats the other by more than 10 Phred, else both collapse to N.
func computePairDominance(pairs []pair.ReadPair, slot int, n int, stats *dedupestats.Statistics) Read {
	a := &pairs[0].Segment[slot]
	b := &pairs[1].Segment[slot]
	seq := make([]byte, n)
	qual := make([]byte, n)
	var mismatches, compared int
	for j := 0; j < n; j++ {
		compared += 2
		if a.Seq[j] == b.Seq[j] {
			seq[j] = a.Seq[j]
			qual[j] = a.Qual[j]
			continue
		}
		mismatches++
		aq, bq := int(a.Qual[j]), int(b.Qual[j])
		switch diff := aq - bq; {
		case diff > 10:
			seq[j], qual[j] = a.Seq[j], a.Qual[j]
		case diff < -10:
			seq[j], qual[j] = b.Seq[j], b.Qual[j]
		default:
			seq[j], qual[j] = 'N', '!'
		}
	}
	if stats != nil {
		stats.AddPCR(mismatches, compared)
	}
	return Read{Seq: seq, Qual: qual}
}

// RevComp returns the reverse complement of a sequence of
// upper-case A/C/G/T/N bytes.
func RevComp(seq []byte) []byte {
	out := make([]byte, len(seq))
	for i, b := range seq {
		j := len(seq) - 1 - i
		switch b {
		case 'A':
			out[j] = 'T'
		case 'C':
			out[j] = 'G'
		case 'G':
			out[j] = 'C'
		case 'T':
			out[j] = 'A'
		default:
			out[j] = 'N'
		}
	}
	return out
}

// ReverseBytes returns b reversed.
func ReverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[len(b)-1-i] = c
	}
	return out
}

// Emit writes the family's two consensus reads as a FASTQ pair,
// ordering by READ1/READ2 and reverse-complementing any read on the
// reverse strand, per spec §4.6. Emission is skipped if familySize is
// below minFamilySize; the family's statistics have already been
// recorded by the time Emit is called, so a skipped emission does not
// lose accounting.
func Emit(w *fastq.Writer, rep *pair.ReadPair, cons [2]Read, familySize, minFamilySize int) error {
	if familySize < minFamilySize {
		return nil
	}
	var r1, r2 Read
	var seg1, seg2 *samtext.Segment
	if rep.Segment[0].Flag.Any(samtext.Read1) {
		r1, r2 = cons[0], cons[1]
		seg1, seg2 = &rep.Segment[0], &rep.Segment[1]
	} else {
		r1, r2 = cons[1], cons[0]
		seg1, seg2 = &rep.Segment[1], &rep.Segment[0]
	}

	if seg1.Flag.Any(samtext.Reverse) {
		r1 = Read{Seq: RevComp(r1.Seq), Qual: ReverseBytes(r1.Qual)}
	}
	if seg2.Flag.Any(samtext.Reverse) {
		r2 = Read{Seq: RevComp(r2.Seq), Qual: ReverseBytes(r2.Qual)}
	}

	id := fmt.Sprintf("@%s XF:i:%d", rep.Segment[0].QName, familySize)
	if err := w.Write(&fastq.Read{ID: id, Seq: string(r1.Seq), Unk: "+", Qual: string(r1.Qual)}); err != nil {
		return err
	}
	return w.Write(&fastq.Read{ID: id, Seq: string(r2.Seq), Unk: "+", Qual: string(r2.Qual)})
}
