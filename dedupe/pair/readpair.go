// Package pair defines ReadPair, the PairFingerprint computation, and
// the small amount of pure 5'-coordinate arithmetic shared by the
// indexer, the family refiner, and the consensus engine. It has no
// dependency on the streaming orchestration in package dedupe, which
// lets dedupe/optical and dedupe/consensus depend on it without
// creating an import cycle back through dedupe itself.
package pair

import (
	"fmt"

	"github.com/grailbio/elduderino/samtext"
)

// ReadPair is an ordered pair of Segments that make up one template,
// plus a small scratch area for the optical-duplicate coordinates
// parsed from the read name. Segment[0] holds the unmapped mate when
// exactly one mate is unmapped; otherwise the two mates keep their
// parse order (first-seen, then second-seen).
type ReadPair struct {
	Segment [2]samtext.Segment

	// FileIdx records the pair's arrival order: the mate pairer's
	// record count at the moment the pair completed. Consensus breaks
	// ties by a pair's position within the family slice, which follows
	// arrival order; FileIdx itself is not consulted.
	FileIdx uint64

	// Optical is filled in by the optical grouping pass (dedupe/optical)
	// the first time it parses this pair's read name.
	Optical OpticalCoord
}

// OpticalCoord is a read pair's physical flow-cell location, parsed
// once and cached on the pair since every optical-grouping pass within
// the same family refinement needs it.
type OpticalCoord struct {
	Parsed bool
	Tile   int
	X, Y   int
}

// NewReadPair builds a ReadPair from the first-seen segment (stored by
// the mate pairer) and the second-seen segment (the one that just
// completed the pair), normalizing slot order per the invariant above.
func NewReadPair(stored, current samtext.Segment, fileIdx uint64) ReadPair {
	a, b := stored, current
	switch {
	case a.Flag.Any(samtext.Unmapped):
		// a already unmapped; keep it in slot 0.
	case b.Flag.Any(samtext.Unmapped):
		a, b = b, a
	}
	return ReadPair{Segment: [2]samtext.Segment{a, b}, FileIdx: fileIdx}
}

// String renders a compact identifier for logging.
func (p *ReadPair) String() string {
	return fmt.Sprintf("(%s,%d)(%s,%d)",
		p.Segment[0].RName, p.Segment[0].Pos, p.Segment[1].RName, p.Segment[1].Pos)
}

// FivePrimeBegin returns the 5'-most reference coordinate of seg: pos
// for a forward-strand read, pos plus its reference-consuming CIGAR
// length for a reverse-strand read.
func FivePrimeBegin(seg *samtext.Segment) (int32, error) {
	if !seg.Flag.Any(samtext.Reverse) {
		return seg.Pos, nil
	}
	refLen, err := samtext.ConsumesRef(seg.Cigar)
	if err != nil {
		return 0, err
	}
	return seg.Pos + refLen, nil
}

// Begin returns the larger of the pair's two 5' coordinates: the
// value the flush controller tracks as a bucket's high-water mark.
func (p *ReadPair) Begin() (int32, error) {
	b0, err := FivePrimeBegin(&p.Segment[0])
	if err != nil {
		return 0, err
	}
	b1, err := FivePrimeBegin(&p.Segment[1])
	if err != nil {
		return 0, err
	}
	if b0 > b1 {
		return b0, nil
	}
	return b1, nil
}
