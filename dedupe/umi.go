package dedupe

import (
	"bytes"
	"sort"

	"github.com/grailbio/elduderino/dedupe/pair"
	"github.com/grailbio/elduderino/samtext"
)

// UMIMode selects how a flushed fingerprint bucket is sub-grouped by
// UMI barcode before CIGAR voting, spec §4.4(a). It replaces the
// original's function-pointer dispatch with a tagged variant.
type UMIMode int

const (
	// UMINone disables UMI grouping: the whole bucket is one family.
	UMINone UMIMode = iota
	// UMIBarcodeSplit stable-sorts by the full RX barcode and splits on
	// inequality.
	UMIBarcodeSplit
	// UMIConnorMerge iteratively grows sub-families by transitive
	// overlap of either sub-barcode.
	UMIConnorMerge
)

// String names the mode the way cmd/elduderino's -umi flag accepts it.
func (m UMIMode) String() string {
	switch m {
	case UMIBarcodeSplit:
		return "barcode-split"
	case UMIConnorMerge:
		return "connor-merge"
	default:
		return "none"
	}
}

// groupByUMI partitions bucket into UMI sub-families per mode.
func groupByUMI(mode UMIMode, bucket []pair.ReadPair) ([][]pair.ReadPair, error) {
	switch mode {
	case UMIBarcodeSplit:
		return barcodeSplit(bucket)
	case UMIConnorMerge:
		return connorMerge(bucket)
	default:
		return [][]pair.ReadPair{bucket}, nil
	}
}

// fullBarcode renders a pair's full RX barcode (both sub-barcodes
// joined) for sorting and equality in barcode-split mode. Pairs that
// lack a barcode entirely sort and group together at the zero value.
func fullBarcode(p *pair.ReadPair) []byte {
	seg := &p.Segment[1]
	if seg.BarcodeA == nil && seg.BarcodeB == nil {
		seg = &p.Segment[0]
	}
	buf := make([]byte, 0, len(seg.BarcodeA)+len(seg.BarcodeB)+1)
	buf = append(buf, seg.BarcodeA...)
	buf = append(buf, '-')
	buf = append(buf, seg.BarcodeB...)
	return buf
}

func barcodeSplit(bucket []pair.ReadPair) ([][]pair.ReadPair, error) {
	sorted := make([]pair.ReadPair, len(bucket))
	copy(sorted, bucket)
	keys := make([][]byte, len(sorted))
	for i := range sorted {
		keys[i] = fullBarcode(&sorted[i])
	}
	order := make([]int, len(sorted))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return bytes.Compare(keys[order[i]], keys[order[j]]) < 0
	})

	var families [][]pair.ReadPair
	var run []pair.ReadPair
	for i, idx := range order {
		if i > 0 && !bytes.Equal(keys[order[i-1]], keys[idx]) {
			families = append(families, run)
			run = nil
		}
		run = append(run, sorted[idx])
	}
	if len(run) > 0 {
		families = append(families, run)
	}
	return families, nil
}

// connorMerge implements the Connor-merge algorithm of spec §4.4(a):
// repeatedly grow a sub-family from the first remaining pair, pulling
// in any remaining pair whose first or second sub-barcode exactly
// matches a current member's corresponding sub-barcode, until a full
// pass adds nothing; peel the grown sub-family off and repeat on the
// remainder.
func connorMerge(bucket []pair.ReadPair) ([][]pair.ReadPair, error) {
	remaining := make([]pair.ReadPair, len(bucket))
	copy(remaining, bucket)
	for i := range remaining {
		seg := barcodeSegment(&remaining[i])
		if seg.BarcodeA == nil && seg.BarcodeB == nil {
			return nil, missingBarcode(remaining[i].Segment[0].QName)
		}
	}

	var families [][]pair.ReadPair
	for len(remaining) > 0 {
		family := []pair.ReadPair{remaining[0]}
		remaining = remaining[1:]
		for {
			grew := false
			var stillOut []pair.ReadPair
			for _, candidate := range remaining {
				if connorMatches(family, &candidate) {
					family = append(family, candidate)
					grew = true
				} else {
					stillOut = append(stillOut, candidate)
				}
			}
			remaining = stillOut
			if !grew {
				break
			}
		}
		families = append(families, family)
	}
	return families, nil
}

func barcodeSegment(p *pair.ReadPair) *samtext.Segment {
	seg := &p.Segment[1]
	if seg.BarcodeA == nil && seg.BarcodeB == nil {
		seg = &p.Segment[0]
	}
	return seg
}

func connorMatches(family []pair.ReadPair, candidate *pair.ReadPair) bool {
	cSeg := barcodeSegment(candidate)
	for i := range family {
		mSeg := barcodeSegment(&family[i])
		if bytes.Equal(cSeg.BarcodeA, mSeg.BarcodeA) || bytes.Equal(cSeg.BarcodeB, mSeg.BarcodeB) {
			return true
		}
	}
	return false
}
