package bucket

import (
	farm "github.com/dgryski/go-farm"
	"blainsmith.com/go/seahash"
)

// FarmHash wraps farm.Hash64 as a HashFunc, used for the
// position-fingerprint Multimap.
func FarmHash(key []byte) uint64 {
	return farm.Hash64(key)
}

// SeaHash wraps seahash.Sum64 as a HashFunc, used for the mate-name
// Map. Using a distinct hash family from the Multimap avoids
// correlated collision patterns between the two containers, the way
// the original kept hash.c and mash.c as independent tables rather
// than sharing one hash function for both purposes.
func SeaHash(key []byte) uint64 {
	return seahash.Sum64(key)
}
