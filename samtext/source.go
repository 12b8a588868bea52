package samtext

import (
	"io/ioutil"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/grailbio/base/errors"
)

// LoadBuffer resolves path to a byte buffer:
//
//   - "-" reads all of stdin into memory.
//   - a path ending in ".gz" is transparently decompressed into memory
//     with klauspost/compress's gzip reader.
//   - any other local path is memory-mapped read-only, so Segments
//     borrow directly from the kernel's page cache instead of a heap
//     copy.
//
// The returned closer releases whatever resource backs the buffer (an
// mmap, or nothing for an in-memory buffer) and must be called after
// the buffer and every Segment parsed from it are no longer needed.
// cmd/elduderino's ioloc package resolves s3:// locations to a local
// path before calling LoadBuffer; this function only ever sees local
// filesystem paths or "-".
func LoadBuffer(path string) (buf []byte, closer func() error, err error) {
	switch {
	case path == "-":
		data, err := ReadAll(os.Stdin)
		if err != nil {
			return nil, nil, err
		}
		return data, func() error { return nil }, nil

	case strings.HasSuffix(path, ".gz"):
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, errors.E(err, "opening SAM input", path)
		}
		defer f.Close()
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, nil, errors.E(err, "opening gzip SAM input", path)
		}
		defer gz.Close()
		data, err := ioutil.ReadAll(gz)
		if err != nil {
			return nil, nil, errors.E(err, "decompressing SAM input", path)
		}
		return data, func() error { return nil }, nil

	default:
		return mmapFile(path)
	}
}

// Open resolves path exactly as LoadBuffer does, additionally wrapping
// the buffer in a Reader. Kept for callers that only need to stream
// Segments and have no use for the raw buffer (LoadBuffer is what
// dedupe.Run needs, since it scans the buffer directly for the optical
// auto-detection pre-pass before streaming begins).
func Open(path string) (r *Reader, closer func() error, err error) {
	data, closer, err := LoadBuffer(path)
	if err != nil {
		return nil, nil, err
	}
	return NewReader(data), closer, nil
}
