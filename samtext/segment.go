// Package samtext parses the columns of a coordinate-sorted SAM text
// stream that the deduplication core needs, and nothing else: full
// tag dictionaries, header parsing, and BAM/CRAM decoding live outside
// this package's scope.
package samtext

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/grailbio/base/errors"
)

// Segment is one mapped or unmapped alignment record. Its byte slices
// are views into the caller's input buffer; Segment itself is never
// the owner of the bytes it points at until consensus.Arena.Copy rebinds
// Seq/Qual into a scratch arena ahead of any in-place mutation.
type Segment struct {
	QName []byte
	Flag  Flags
	RName []byte
	Pos   int32 // 1-based leftmost mapping position
	Cigar []byte
	Seq   []byte
	Qual  []byte

	// BarcodeA and BarcodeB are the two halves of an RX:Z:<a>-<b> UMI
	// tag, or nil if no RX tag was present.
	BarcodeA []byte
	BarcodeB []byte
}

// HasBarcode reports whether the segment carried an RX:Z: UMI tag.
func (s *Segment) HasBarcode() bool {
	return s.BarcodeA != nil || s.BarcodeB != nil
}

// DebugString renders a segment's flags and position for diagnostics,
// used only behind a log.At(log.Debug) guard by callers.
func (s *Segment) DebugString() string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "QNAME: %s\n", s.QName)
	fmt.Fprintf(&b, "FLAG: ")
	for _, bit := range []struct {
		mask Flags
		name string
	}{
		{Unmapped, "UNMAPPED"}, {MateUnmapped, "MATE_UNMAPPED"},
		{Reverse, "REVERSE"}, {MateReverse, "MATE_REVERSE"},
		{Read1, "READ1"}, {Read2, "READ2"},
		{Secondary, "SECONDARY"}, {QCFail, "QCFAIL"},
		{Supplementary, "SUPPLEMENTARY"},
	} {
		if s.Flag.Any(bit.mask) {
			fmt.Fprintf(&b, " %s", bit.name)
		}
	}
	fmt.Fprintf(&b, "\nRNAME: %s\nPOS:   %d\nCIGAR: %s\n", s.RName, s.Pos, s.Cigar)
	return b.String()
}

var rxPrefix = []byte("RX:Z:")

// Parse parses one tab-separated, newline-terminated SAM record at the
// start of buf. It returns the parsed Segment and the number of bytes
// consumed, including the trailing newline. Only columns 1 (QNAME), 2
// (FLAG), 3 (RNAME), 4 (POS), 6 (CIGAR), 10 (SEQ), and 11 (QUAL) are
// retained; 5 (MAPQ), 7 (RNEXT), 8 (PNEXT), and 9 (TLEN) are skipped
// by position. Optional columns (12+) are scanned for an RX:Z: tag.
func Parse(buf []byte) (Segment, int, error) {
	var seg Segment
	column := 0
	start := 0
	for i := 0; i < len(buf); i++ {
		c := buf[i]
		if c != '\t' && c != '\n' {
			continue
		}
		column++
		field := buf[start:i]
		switch column {
		case 1:
			seg.QName = field
		case 2:
			v, err := strconv.ParseInt(string(field), 10, 32)
			if err != nil {
				return Segment{}, 0, errors.E(err, "malformed record: invalid FLAG")
			}
			seg.Flag = Flags(v)
		case 3:
			seg.RName = field
		case 4:
			v, err := strconv.ParseInt(string(field), 10, 32)
			if err != nil {
				return Segment{}, 0, errors.E(err, "malformed record: invalid POS")
			}
			seg.Pos = int32(v)
		case 6:
			seg.Cigar = field
		case 10:
			seg.Seq = field
		case 11:
			seg.Qual = field
		default:
			if column > 11 && bytes.HasPrefix(field, rxPrefix) {
				barcode := field[len(rxPrefix):]
				if dash := bytes.IndexByte(barcode, '-'); dash >= 0 {
					seg.BarcodeA = barcode[:dash]
					seg.BarcodeB = barcode[dash+1:]
				} else {
					seg.BarcodeA = barcode
				}
			}
		}
		start = i + 1
		if c == '\n' {
			if column < 11 {
				return Segment{}, 0, errors.E("malformed record: truncated, fewer than 11 columns")
			}
			if len(seg.Seq) != len(seg.Qual) {
				return Segment{}, 0, errors.E("malformed record: SEQ/QUAL length mismatch", string(seg.QName))
			}
			if !bytes.Equal(seg.Cigar, []byte("*")) {
				readLen, err := ConsumesRead(seg.Cigar)
				if err != nil {
					return Segment{}, 0, err
				}
				if int(readLen) != len(seg.Seq) {
					return Segment{}, 0, errors.E("malformed record: SEQ/CIGAR length mismatch", string(seg.QName))
				}
			}
			return seg, i + 1, nil
		}
	}
	return Segment{}, 0, errors.E("malformed record: truncated, missing trailing newline")
}
