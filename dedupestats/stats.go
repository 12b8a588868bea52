// Package dedupestats accumulates the counters the deduplication core
// populates as it runs (spec §3/§8) and writes them to a caller-
// provided JSON sink once a full pass has completed successfully.
// Modeled on markduplicates' Metrics/MetricsCollection, adapted to
// the family-size histogram and error-rate counters this pipeline
// tracks instead of picard-style duplicate metrics.
package dedupestats

import (
	"encoding/json"
	"io"
)

// Statistics holds every counter the core populates during a run. It
// is never written to disk until the run completes without error.
type Statistics struct {
	// TotalReads is the number of primary, non-skipped records seen.
	TotalReads uint64 `json:"total_reads"`

	// FamilySizes is a histogram: FamilySizes[n] is the number of
	// families of exactly n read pairs, counted before the CIGAR-vote
	// gate discards any family that fails it (spec §8).
	FamilySizes map[int]uint64 `json:"family_sizes"`

	// PCRDuplicates is the number of read pairs collapsed into another
	// pair's consensus within a surviving family (familySize - 1,
	// summed over surviving families).
	PCRDuplicates uint64 `json:"pcr_duplicates"`

	// OpticalDuplicates is the number of read pairs collapsed by the
	// optical-tile clustering pass, spec §4.4(c).
	OpticalDuplicates uint64 `json:"optical_duplicates"`

	// SequencingErrors/SequencingTotal accumulate overlap-region
	// mismatches and compared bases from the intra-pair overlap trim,
	// spec §4.5.
	SequencingErrors uint64 `json:"sequencing_errors"`
	SequencingTotal  uint64 `json:"sequencing_total"`

	// PCRErrors/PCRTotal accumulate per-base mismatches against the
	// family consensus winner and total compared bases, spec §4.6.
	PCRErrors uint64 `json:"pcr_errors"`
	PCRTotal  uint64 `json:"pcr_total"`
}

// New returns a zeroed Statistics ready for accumulation.
func New() *Statistics {
	return &Statistics{FamilySizes: make(map[int]uint64)}
}

// AddFamilySize records one family of the given size in the
// histogram.
func (s *Statistics) AddFamilySize(size int) {
	s.FamilySizes[size]++
}

// AddSequencing accumulates one overlap-trim pass's mismatch/compared
// counts.
func (s *Statistics) AddSequencing(errs, total int) {
	s.SequencingErrors += uint64(errs)
	s.SequencingTotal += uint64(total)
}

// AddPCR accumulates one consensus pass's mismatch/compared counts.
func (s *Statistics) AddPCR(errs, total int) {
	s.PCRErrors += uint64(errs)
	s.PCRTotal += uint64(total)
}

// WriteJSON writes s to w as JSON. Callers must only call this after
// a full, successful pass: the core never writes partial statistics
// (spec §7).
func (s *Statistics) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
