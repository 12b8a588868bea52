// Package optical implements the optical-duplicate clustering pass of
// spec §4.4(c): parsing Illumina-style read names for flow-cell
// coordinates, auto-detecting the pixel-distance threshold, and
// transitive-closure clustering within a shared tile. It depends only
// on dedupe/pair, not on package dedupe, to avoid an import cycle with
// the family refiner that calls into it.
package optical

import "bytes"

// Coord is a read pair's physical flow-cell location.
type Coord struct {
	Tile int
	X, Y int
}

// ParseQName parses an Illumina-style read name of the form
// instrument:run:flowcell:lane:tile:x:y — a six-colon-delimited,
// seven-field name — into its trailing (tile, x, y) triple. ok is
// false if qname does not have exactly seven colon-separated fields
// or any of the trailing three do not parse as integers.
func ParseQName(qname []byte) (coord Coord, ok bool) {
	fields := bytes.Split(qname, []byte(":"))
	if len(fields) != 7 {
		return Coord{}, false
	}
	tile, ok1 := parseInt(fields[4])
	x, ok2 := parseInt(fields[5])
	y, ok3 := parseInt(fields[6])
	if !ok1 || !ok2 || !ok3 {
		return Coord{}, false
	}
	return Coord{Tile: tile, X: x, Y: y}, true
}

func parseInt(b []byte) (int, bool) {
	if len(b) == 0 {
		return 0, false
	}
	neg := false
	i := 0
	if b[0] == '-' {
		neg = true
		i = 1
		if len(b) == 1 {
			return 0, false
		}
	}
	n := 0
	for ; i < len(b); i++ {
		c := b[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	if neg {
		n = -n
	}
	return n, true
}
