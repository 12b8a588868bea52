package consensus

import (
	"bytes"

	"github.com/grailbio/elduderino/dedupe/pair"
	"github.com/grailbio/elduderino/dedupestats"
	"github.com/grailbio/elduderino/samtext"
)

// Trim implements the overlap trim of spec §4.5: reconciling the
// region where both mates of a family cover the same reference bases,
// and handling readthrough into the adapter/UMI on either end. It is
// a no-op when the mates do not point in opposite directions on the
// same reference, or when either is unmapped. All family members
// share the same CIGAR pair (the caller only invokes this after the
// CIGAR vote of spec §4.4(b)), so the overlap geometry is computed
// once from the first member and applied to every member's bytes.
func Trim(pairs []pair.ReadPair, arena *Arena, stats *dedupestats.Statistics) error {
	if len(pairs) == 0 {
		return nil
	}
	rep := &pairs[0]
	s0, s1 := &rep.Segment[0], &rep.Segment[1]
	if s0.Flag.Any(samtext.Unmapped) || s1.Flag.Any(samtext.Unmapped) {
		return nil
	}
	if !bytes.Equal(s0.RName, s1.RName) {
		return nil
	}
	if s0.Flag.Any(samtext.Reverse) == s1.Flag.Any(samtext.Reverse) {
		return nil // not opposite-strand: no overlap geometry to reconcile
	}

	li, ri := 0, 1
	if s1.Pos < s0.Pos {
		li, ri = 1, 0
	}
	leftSeg, rightSeg := &rep.Segment[li], &rep.Segment[ri]

	leftReadCursor, err := advanceToRef(leftSeg.Cigar, leftSeg.Pos, rightSeg.Pos)
	if err != nil {
		return err
	}
	rightLeading, err := leadingNonRefConsume(rightSeg.Cigar)
	if err != nil {
		return err
	}
	lread := leftReadCursor - rightLeading

	if leftSeg.Flag.Any(samtext.Reverse) {
		li, ri = ri, li
		lread = -lread
	}

	if lread < 0 {
		trimN := -lread
		for i := range pairs {
			seg := &pairs[i].Segment[ri]
			n := trimN
			if n > len(seg.Seq) {
				n = len(seg.Seq)
			}
			seg.Seq = arena.Copy(seg.Seq[n:])
			seg.Qual = arena.Copy(seg.Qual[n:])
		}
		lread = 0
	}

	leftLen := len(rep.Segment[li].Seq)
	rread := leftLen - lread - 1
	rightLen := len(rep.Segment[ri].Seq)
	if rread >= rightLen {
		newLeftLen := lread + rightLen
		for i := range pairs {
			seg := &pairs[i].Segment[li]
			n := newLeftLen
			if n > len(seg.Seq) {
				n = len(seg.Seq)
			}
			seg.Seq = arena.Copy(seg.Seq[:n])
			seg.Qual = arena.Copy(seg.Qual[:n])
		}
		rread = rightLen - 1
	}
	if rread < 0 {
		return nil
	}

	var mismatches, compared int
	for i := range pairs {
		left := &pairs[i].Segment[li]
		right := &pairs[i].Segment[ri]
		left.Seq = arena.Copy(left.Seq)
		left.Qual = arena.Copy(left.Qual)
		right.Seq = arena.Copy(right.Seq)
		right.Qual = arena.Copy(right.Qual)

		limit := rread
		if lread+limit >= len(left.Seq) {
			limit = len(left.Seq) - lread - 1
		}
		if limit >= len(right.Seq) {
			limit = len(right.Seq) - 1
		}
		for j := 0; j <= limit; j++ {
			li2, ri2 := lread+j, j
			if left.Seq[li2] == right.Seq[ri2] {
				continue
			}
			mismatches++
			lq, rq := left.Qual[li2], right.Qual[ri2]
			switch diff := int(lq) - int(rq); {
			case diff > 10:
				right.Seq[ri2] = left.Seq[li2]
				right.Qual[ri2] = lq
			case diff < -10:
				left.Seq[li2] = right.Seq[ri2]
				left.Qual[li2] = rq
			default:
				left.Seq[li2], right.Seq[ri2] = 'N', 'N'
				left.Qual[li2], right.Qual[ri2] = '!', '!'
			}
		}
		compared += limit + 1
	}
	if stats != nil {
		stats.AddSequencing(mismatches, compared)
	}
	return nil
}

// advanceToRef walks cigar from startRef, returning the read-cursor
// position at the point the reference cursor reaches targetRef.
func advanceToRef(cigar []byte, startRef, targetRef int32) (int, error) {
	refCursor := startRef
	readCursor := int32(0)
	err := samtext.Walk(cigar, func(length int32, op byte) bool {
		if refCursor >= targetRef {
			return false
		}
		isRef := samtext.IsConsumesRef(op)
		isRead := samtext.IsConsumesRead(op)
		n := length
		if isRef {
			if remain := targetRef - refCursor; remain < n {
				n = remain
			}
			refCursor += n
		}
		if isRead {
			readCursor += n
		}
		return refCursor < targetRef
	})
	return int(readCursor), err
}

// leadingNonRefConsume sums the read-consuming length of cigar's
// leading tokens up to (not including) its first reference-consuming
// operator.
func leadingNonRefConsume(cigar []byte) (int, error) {
	var total int32
	err := samtext.Walk(cigar, func(length int32, op byte) bool {
		if samtext.IsConsumesRef(op) {
			return false
		}
		if samtext.IsConsumesRead(op) {
			total += length
		}
		return true
	})
	return int(total), err
}
