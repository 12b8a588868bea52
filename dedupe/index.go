package dedupe

import (
	"bytes"

	"github.com/grailbio/base/log"
	"github.com/grailbio/elduderino/dedupe/pair"
	"github.com/grailbio/elduderino/internal/bucket"
)

// FamilyHandler processes one flushed PairFingerprint bucket: the
// ordered run of ReadPairs that share a fingerprint.
type FamilyHandler func(fingerprint []byte, pairs []pair.ReadPair) error

// index is the streaming position indexer and flush controller of
// spec §4.3. It holds two generations of fingerprint buckets, A and
// B, and a 5' watermark over the current reference. A bucket is only
// flushed once no further mate can extend it: holding two generations
// accounts for reverse-strand reads, whose 5' coordinate lands beyond
// their raw POS even in a position-sorted stream.
type index struct {
	a, b       *bucket.Multimap
	maxPosA    int32
	maxPosB    int32
	currentRef []byte
	handler    FamilyHandler

	// sort-check state, tracked independently of the fingerprint
	// bucketing above: the stream itself must be non-decreasing in
	// (rname, pos).
	sortRef []byte
	sortPos int32
}

func newIndex(handler FamilyHandler) *index {
	return &index{
		a:       bucket.NewMultimap(bucket.FarmHash, 1024),
		b:       bucket.NewMultimap(bucket.FarmHash, 1024),
		handler: handler,
	}
}

// checkSorted enforces the non-decreasing (rname, pos) contract on the
// raw incoming record, independent of any pair normalization.
func (ix *index) checkSorted(rname []byte, pos int32) error {
	if bytes.Equal(rname, ix.sortRef) {
		if pos < ix.sortPos {
			return unsortedInput(rname, pos)
		}
	} else {
		ix.sortRef = append(ix.sortRef[:0], rname...)
	}
	ix.sortPos = pos
	return nil
}

// Insert files rp under its fingerprint, flushing generation A first
// if the incoming record's own (rname, pos) — streamRef/streamPos —
// has moved past the current window.
func (ix *index) Insert(streamRef []byte, streamPos int32, rp pair.ReadPair) error {
	fp, err := pair.Fingerprint(&rp)
	if err != nil {
		return err
	}
	begin, err := rp.Begin()
	if err != nil {
		return err
	}

	sameWindow := bytes.Equal(streamRef, ix.currentRef) && streamPos <= ix.maxPosA
	if sameWindow {
		if ix.a.Has(fp) {
			ix.a.Append(fp, rp)
		} else {
			ix.b.Append(fp, rp)
			if begin > ix.maxPosB {
				ix.maxPosB = begin
			}
		}
		return nil
	}

	if err := ix.flushA(); err != nil {
		return err
	}
	refChanged := !bytes.Equal(streamRef, ix.currentRef)
	ix.a, ix.maxPosA = ix.b, ix.maxPosB
	ix.b = bucket.NewMultimap(bucket.FarmHash, 1024)
	ix.maxPosB = 0
	ix.a.Append(fp, rp)
	if refChanged {
		ix.currentRef = append([]byte(nil), streamRef...)
		ix.maxPosA = begin
	} else if begin > ix.maxPosA {
		ix.maxPosA = begin
	}
	return nil
}

func (ix *index) flushA() error {
	if ix.a.Len() == 0 {
		return nil
	}
	log.Debug.Printf("flushing %d fingerprint buckets", ix.a.Len())
	var flushErr error
	ix.a.Drain(func(fp []byte, values []interface{}) {
		if flushErr != nil {
			return
		}
		pairs := make([]pair.ReadPair, len(values))
		for i, v := range values {
			pairs[i] = v.(pair.ReadPair)
		}
		if err := ix.handler(fp, pairs); err != nil {
			flushErr = err
		}
	})
	return flushErr
}

// Finish flushes both remaining generations at end of input. Neither
// generation is flushed automatically when the stream simply ends:
// callers must call Finish once Insert will not be called again, or
// the trailing buckets are lost.
func (ix *index) Finish() error {
	if err := ix.flushA(); err != nil {
		return err
	}
	ix.a = ix.b
	return ix.flushA()
}
