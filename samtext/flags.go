package samtext

// Flags represents a SAM alignment record's bitwise FLAG field. Modeled
// on biogo's sam.Flags: a single bitset type rather than a pile of
// loose uint16 constants.
type Flags uint16

const (
	Paired        Flags = 1 << iota // read is paired in sequencing
	ProperPair                      // read mapped in a proper pair
	Unmapped                        // read itself is unmapped
	MateUnmapped                    // mate is unmapped
	Reverse                         // read mapped to the reverse strand
	MateReverse                     // mate mapped to the reverse strand
	Read1                           // first read in template
	Read2                           // second read in template
	Secondary                       // not a primary alignment
	QCFail                          // failed QC
	Duplicate                       // optical or PCR duplicate
	Supplementary                   // supplementary alignment
)

// NonPrimary is the combined mask for alignments that are not the
// primary representation of a template: secondary or supplementary.
const NonPrimary = Secondary | Supplementary

// BothUnmapped is the mask for a record whose own read and its mate
// are both unmapped.
const BothUnmapped = Unmapped | MateUnmapped

// FingerprintMask selects the flag bits that make up the orientation
// component of a PairFingerprint: which mate, which strand, which
// mapped state.
const FingerprintMask = Read1 | Read2 | Reverse | MateReverse | Unmapped | MateUnmapped

// Has reports whether all bits in mask are set in f.
func (f Flags) Has(mask Flags) bool {
	return f&mask == mask
}

// Any reports whether any bit in mask is set in f.
func (f Flags) Any(mask Flags) bool {
	return f&mask != 0
}
