package consensus

// Arena is a growable scratch buffer that backs every sequence/
// quality mutation the consensus stages perform. Segments borrow
// directly into the input buffer until overlap trim or inter-read
// consensus needs to rewrite a byte; at that point the relevant bytes
// are copied into the Arena and the Segment's slice is rebound to the
// copy, matching the resource policy of spec §5 (the original's
// realloc-grown scratch buffer, re-architected as an owned, reused
// byte vector instead of unchecked pointer arithmetic).
type Arena struct {
	buf []byte
}

// NewArena returns an empty Arena. Callers reuse one Arena across
// flushed families; it only grows, never shrinks.
func NewArena() *Arena {
	return &Arena{}
}

// Copy appends a copy of b to the arena and returns the copy as a
// slice into arena storage. The returned slice is stable until the
// next Reset.
func (a *Arena) Copy(b []byte) []byte {
	start := len(a.buf)
	a.buf = append(a.buf, b...)
	return a.buf[start:len(a.buf):len(a.buf)]
}

// Reset discards prior contents but keeps the underlying array,
// amortizing allocation across families the way the original's arena
// is reused across flushed buckets.
func (a *Arena) Reset() {
	a.buf = a.buf[:0]
}
