package pair

import (
	"strconv"

	"github.com/grailbio/elduderino/samtext"
)

// Fingerprint renders a ReadPair's PairFingerprint: the tab-delimited,
// fixed-width zero-padded ASCII blob (rname0, begin0, rname1, begin1,
// orientation bits) whose byte-equality is the bucket identity used
// by the position indexer. Rendering fixed-width integers, rather
// than comparing parsed fields, is what lets two fingerprints be
// compared with a single bytes.Equal/hash lookup.
func Fingerprint(p *ReadPair) ([]byte, error) {
	begin0, err := FivePrimeBegin(&p.Segment[0])
	if err != nil {
		return nil, err
	}
	begin1, err := FivePrimeBegin(&p.Segment[1])
	if err != nil {
		return nil, err
	}
	orientation := uint16(p.Segment[1].Flag & samtext.FingerprintMask)

	buf := make([]byte, 0, len(p.Segment[0].RName)+len(p.Segment[1].RName)+34)
	buf = append(buf, p.Segment[0].RName...)
	buf = append(buf, '\t')
	buf = appendZeroPadded(buf, int64(begin0), 10)
	buf = append(buf, '\t')
	buf = append(buf, p.Segment[1].RName...)
	buf = append(buf, '\t')
	buf = appendZeroPadded(buf, int64(begin1), 10)
	buf = append(buf, '\t')
	buf = appendZeroPadded(buf, int64(orientation), 5)
	return buf, nil
}

func appendZeroPadded(buf []byte, v int64, width int) []byte {
	digits := strconv.AppendInt(nil, v, 10)
	for i := len(digits); i < width; i++ {
		buf = append(buf, '0')
	}
	return append(buf, digits...)
}
