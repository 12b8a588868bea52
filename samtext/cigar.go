package samtext

import (
	"strconv"

	"github.com/grailbio/base/errors"
)

// consumesRef is the CIGAR operator alphabet that advances the
// reference cursor: M, D, N, =, X.
var consumesRef = [256]bool{'M': true, 'D': true, 'N': true, '=': true, 'X': true}

// consumesRead is the CIGAR operator alphabet that advances the read
// (query) cursor: M, I, S, =, X.
var consumesRead = [256]bool{'M': true, 'I': true, 'S': true, '=': true, 'X': true}

// IsConsumesRef reports whether a single CIGAR operator byte advances
// the reference cursor.
func IsConsumesRef(op byte) bool { return consumesRef[op] }

// IsConsumesRead reports whether a single CIGAR operator byte
// advances the read (query) cursor.
func IsConsumesRead(op byte) bool { return consumesRead[op] }

// ConsumesRef returns the total length of CIGAR operators that
// consume reference bases. An unmapped CIGAR ("*") has length 0.
func ConsumesRef(cigar []byte) (int32, error) {
	return cigarLen(cigar, &consumesRef)
}

// ConsumesRead returns the total length of CIGAR operators that
// consume read bases. An unmapped CIGAR ("*") has length 0.
func ConsumesRead(cigar []byte) (int32, error) {
	return cigarLen(cigar, &consumesRead)
}

func cigarLen(cigar []byte, ops *[256]bool) (int32, error) {
	if len(cigar) == 1 && cigar[0] == '*' {
		return 0, nil
	}
	var total int32
	start := 0
	for i := 0; i < len(cigar); i++ {
		c := cigar[i]
		if c < '0' || c > '9' {
			if i == start {
				return 0, errors.E("malformed record: invalid CIGAR", string(cigar))
			}
			n, err := strconv.ParseInt(string(cigar[start:i]), 10, 32)
			if err != nil {
				return 0, errors.E(err, "malformed record: invalid CIGAR", string(cigar))
			}
			if ops[c] {
				total += int32(n)
			}
			start = i + 1
		}
	}
	if start != len(cigar) {
		return 0, errors.E("malformed record: invalid CIGAR", string(cigar))
	}
	return total, nil
}

// Walk invokes fn for each (length, op) token of cigar in order. It
// stops early if fn returns false. An unmapped CIGAR ("*") yields no
// tokens.
func Walk(cigar []byte, fn func(length int32, op byte) bool) error {
	if len(cigar) == 1 && cigar[0] == '*' {
		return nil
	}
	start := 0
	for i := 0; i < len(cigar); i++ {
		c := cigar[i]
		if c < '0' || c > '9' {
			if i == start {
				return errors.E("malformed record: invalid CIGAR", string(cigar))
			}
			n, err := strconv.ParseInt(string(cigar[start:i]), 10, 32)
			if err != nil {
				return errors.E(err, "malformed record: invalid CIGAR", string(cigar))
			}
			if !fn(int32(n), c) {
				return nil
			}
			start = i + 1
		}
	}
	return nil
}
