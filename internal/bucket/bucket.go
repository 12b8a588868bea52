// Package bucket implements the two byte-keyed associative containers
// the streaming core is built on: a single-slot Map (the mate
// pairer) and an appendable Multimap (the position-fingerprint
// index). Both are plain chained hash tables over caller-owned []byte
// keys; neither copies its keys, so keys must outlive the container,
// exactly as Segments borrow into the input buffer for the run's
// lifetime.
//
// General-purpose hash-table machinery is explicitly out of scope for
// this deduplicator's core (see the package's governing spec); what
// lives here is the minimal byte-keyed shape the core actually needs,
// grounded on the two hand-rolled C tables (hash.c, a keys-inline
// single-value table, and mash.c, a keys-by-pointer multimap) that the
// original implementation used for the same two jobs.
package bucket

import "bytes"

// HashFunc computes a 64-bit hash of a byte-slice key.
type HashFunc func(key []byte) uint64

type entry struct {
	key   []byte
	value interface{}
	tomb  bool
}

// Map is a single-slot byte-keyed associative container: each key
// holds at most one live value. Once a value is popped, the key is
// marked with a tombstone so a later Put for the same key can be
// rejected by the caller (used to detect a read name appearing a
// third time).
type Map struct {
	hash    HashFunc
	buckets [][]entry
	count   int
}

// NewMap returns an empty Map that hashes keys with hash, initially
// sized for nbuckets buckets.
func NewMap(hash HashFunc, nbuckets int) *Map {
	if nbuckets < 1 {
		nbuckets = 1
	}
	return &Map{hash: hash, buckets: make([][]entry, nbuckets)}
}

func (m *Map) bucketFor(key []byte) int {
	return int(m.hash(key) % uint64(len(m.buckets)))
}

// Exists reports whether key is tracked in the table, whether live or
// tombstoned.
func (m *Map) Exists(key []byte) bool {
	b := m.buckets[m.bucketFor(key)]
	for i := range b {
		if bytes.Equal(b[i].key, key) {
			return true
		}
	}
	return false
}

// Put inserts key with value. It reports false without modifying the
// table if key already exists (live or tombstoned) — callers use this
// to detect an unexpected repeat sighting of the same key.
func (m *Map) Put(key []byte, value interface{}) bool {
	idx := m.bucketFor(key)
	b := m.buckets[idx]
	for i := range b {
		if bytes.Equal(b[i].key, key) {
			return false
		}
	}
	m.buckets[idx] = append(b, entry{key: key, value: value})
	m.count++
	m.maybeGrow()
	return true
}

// Pop removes and returns the live value stored for key, leaving a
// tombstone behind. ok is false if key has no live entry.
func (m *Map) Pop(key []byte) (value interface{}, ok bool) {
	idx := m.bucketFor(key)
	b := m.buckets[idx]
	for i := range b {
		if bytes.Equal(b[i].key, key) && !b[i].tomb {
			value = b[i].value
			b[i].value = nil
			b[i].tomb = true
			return value, true
		}
	}
	return nil, false
}

func (m *Map) maybeGrow() {
	if m.count < len(m.buckets)*2 {
		return
	}
	next := make([][]entry, len(m.buckets)*2)
	for _, b := range m.buckets {
		for _, e := range b {
			idx := int(m.hash(e.key) % uint64(len(next)))
			next[idx] = append(next[idx], e)
		}
	}
	m.buckets = next
}

// multimapEntry holds every value appended under one key, in append
// order.
type multimapEntry struct {
	key    []byte
	values []interface{}
}

// Multimap is a byte-keyed appendable multimap: a key may accumulate
// any number of values, retrieved later as a single ordered run. It is
// the position-fingerprint bucket that the flush controller drains.
type Multimap struct {
	hash    HashFunc
	buckets [][]multimapEntry
	count   int
}

// NewMultimap returns an empty Multimap that hashes keys with hash,
// initially sized for nbuckets buckets.
func NewMultimap(hash HashFunc, nbuckets int) *Multimap {
	if nbuckets < 1 {
		nbuckets = 1
	}
	return &Multimap{hash: hash, buckets: make([][]multimapEntry, nbuckets)}
}

func (mm *Multimap) bucketFor(key []byte) int {
	return int(mm.hash(key) % uint64(len(mm.buckets)))
}

// Has reports whether key already has at least one value appended.
func (mm *Multimap) Has(key []byte) bool {
	b := mm.buckets[mm.bucketFor(key)]
	for i := range b {
		if bytes.Equal(b[i].key, key) {
			return true
		}
	}
	return false
}

// Append adds value to the run stored under key, creating the run if
// this is the key's first appearance.
func (mm *Multimap) Append(key []byte, value interface{}) {
	idx := mm.bucketFor(key)
	b := mm.buckets[idx]
	for i := range b {
		if bytes.Equal(b[i].key, key) {
			b[i].values = append(b[i].values, value)
			mm.count++
			return
		}
	}
	mm.buckets[idx] = append(b, multimapEntry{key: key, values: []interface{}{value}})
	mm.count++
	mm.maybeGrow()
}

func (mm *Multimap) maybeGrow() {
	if mm.count < len(mm.buckets)*2 {
		return
	}
	next := make([][]multimapEntry, len(mm.buckets)*2)
	for _, b := range mm.buckets {
		for _, e := range b {
			idx := int(mm.hash(e.key) % uint64(len(next)))
			next[idx] = append(next[idx], e)
		}
	}
	mm.buckets = next
}

// Drain calls fn once for every key in the table with its full run of
// values, in no particular order across keys. The table should be
// discarded after Drain returns: draining does not clear entries
// in place, matching the original's "destroy rather than recycle"
// policy (a fresh Multimap amortizes better than per-bucket cleanup).
func (mm *Multimap) Drain(fn func(key []byte, values []interface{})) {
	for _, b := range mm.buckets {
		for _, e := range b {
			fn(e.key, e.values)
		}
	}
}

// Len reports the number of distinct keys with at least one value.
func (mm *Multimap) Len() int {
	n := 0
	for _, b := range mm.buckets {
		n += len(b)
	}
	return n
}
