package samtext

import (
	"io/ioutil"

	"github.com/grailbio/base/errors"
)

// Reader scans successive Segments out of a byte buffer holding a
// coordinate-sorted SAM text stream. Header lines (leading '@') are
// skipped once, at construction. Segments borrow into buf for their
// full lifetime: the buffer must outlive every Segment the Reader
// hands out.
type Reader struct {
	buf []byte
	pos int
}

// NewReader returns a Reader over buf, a complete SAM text stream
// (possibly preceded by '@' header lines).
func NewReader(buf []byte) *Reader {
	pos := 0
	for pos < len(buf) && buf[pos] == '@' {
		nl := indexByte(buf[pos:], '\n')
		if nl < 0 {
			pos = len(buf)
			break
		}
		pos += nl + 1
	}
	return &Reader{buf: buf, pos: pos}
}

// Next parses and returns the next Segment. It returns (Segment{},
// false, nil) at end of input.
func (r *Reader) Next() (Segment, bool, error) {
	if r.pos >= len(r.buf) {
		return Segment{}, false, nil
	}
	seg, n, err := Parse(r.buf[r.pos:])
	if err != nil {
		return Segment{}, false, err
	}
	r.pos += n
	return seg, true, nil
}

// SampleQNames scans buf (a complete SAM text stream) and returns the
// QNAME field of up to n body records, skipping header lines. It is
// used by the optical auto-detection pre-pass, which needs a sample
// of read names before streaming begins.
func SampleQNames(buf []byte, n int) [][]byte {
	var out [][]byte
	i := 0
	for i < len(buf) && len(out) < n {
		if buf[i] == '@' {
			nl := indexByte(buf[i:], '\n')
			if nl < 0 {
				break
			}
			i += nl + 1
			continue
		}
		start := i
		for i < len(buf) && buf[i] != '\t' && buf[i] != '\n' {
			i++
		}
		out = append(out, buf[start:i])
		nl := indexByte(buf[i:], '\n')
		if nl < 0 {
			break
		}
		i += nl + 1
	}
	return out
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

// ReadAll slurps r (a non-seekable source, e.g. stdin or a decompressed
// gzip stream) fully into memory. Used for inputs that cannot be
// memory-mapped; see Open in source.go for the mmap-backed fast path.
func ReadAll(r interface {
	Read(p []byte) (int, error)
}) ([]byte, error) {
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errors.E(err, "reading SAM input")
	}
	return data, nil
}
