package dedupe

import "github.com/grailbio/base/errors"

// Fatal error kinds for the deduplication core. Every one of these is
// unrecoverable mid-run: the core never attempts partial recovery (see
// the package's governing spec, §7).
var (
	// ErrMalformedRecord wraps a samtext parse failure.
	ErrMalformedRecord = errors.Invalid

	// ErrUnsortedInput means a record's (rname, pos) decreased within
	// the same reference.
	ErrUnsortedInput = errors.Invalid

	// ErrUnexpectedThirdMate means a read name was seen a third time.
	ErrUnexpectedThirdMate = errors.Invalid

	// ErrBadPairFlags means a pair did not contain exactly one READ1
	// and one READ2.
	ErrBadPairFlags = errors.Invalid

	// ErrMissingBarcode means connor-merge UMI grouping was invoked on
	// a pair lacking an RX barcode.
	ErrMissingBarcode = errors.Invalid

	// ErrResourceExhausted is the kind for allocation failure in the
	// scratch arena or containers. No code path in this module returns
	// it.
	ErrResourceExhausted = errors.Internal
)

func unsortedInput(rname []byte, pos int32) error {
	return errors.E(ErrUnsortedInput, "SAM input must be sorted by position", "rname", string(rname), "pos", pos)
}

func unexpectedThirdMate(qname []byte) error {
	return errors.E(ErrUnexpectedThirdMate, "read name seen a third time", string(qname))
}

func badPairFlags(qname []byte) error {
	return errors.E(ErrBadPairFlags, "pair does not contain exactly one READ1 and one READ2", string(qname))
}

func missingBarcode(qname []byte) error {
	return errors.E(ErrMissingBarcode, "connor-merge requires an RX barcode", string(qname))
}
