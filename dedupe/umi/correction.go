// Package umi implements optional UMI barcode snap-correction: a
// pre-pass that replaces an observed barcode with the nearest known
// UMI from a reference list, ahead of the barcode-split/connor-merge
// grouping that lives in package dedupe. It is independent of
// dedupe/pair so it can be used by both the grouping dispatch and,
// later, by any tooling that wants to pre-clean a barcode list on its
// own.
package umi

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/grailbio/base/log"
	"github.com/grailbio/elduderino/internal/editdistance"
)

var (
	alphabetMap = map[byte]bool{'A': true, 'C': true, 'G': true, 'T': true}

	alphabetWithN    = []byte{'A', 'C', 'G', 'T', 'N'}
	alphabetWithNMap = map[byte]bool{'A': true, 'C': true, 'G': true, 'T': true, 'N': true}
)

type snapCorrectorEntry struct {
	knownUMI string
	edits    int
}

// SnapCorrector implements "snap" correction of UMIs. A UMI U is
// snappable if there is a known non-random UMI U1 that is closer to U
// than all other known UMIs, in terms of Levenshtein edit distance.
type SnapCorrector struct {
	knownUMIs []string
	k         int

	// correctionTable maps every snappable k-mer (k is the length of
	// the known UMIs) to the known UMI it should snap to.
	correctionTable map[string]snapCorrectorEntry
}

// NewSnapCorrector builds a corrector from knownUMIs, a newline
// separated list of same-length barcodes over {A,C,G,T}.
func NewSnapCorrector(knownUMIs []byte) *SnapCorrector {
	log.Debug.Printf("building snappable UMI correction table")
	scanner := bufio.NewScanner(bytes.NewBuffer(knownUMIs))
	var known []string
	k := -1
	for scanner.Scan() {
		line := strings.ToUpper(strings.TrimSpace(scanner.Text()))
		if line == "" {
			continue
		}
		if k < 0 {
			k = len(line)
		}
		if len(line) != k {
			panic(fmt.Sprintf("umi %s has length %d, other umis have length %d", line, len(line), k))
		}
		validateUMI(line, false)
		known = append(known, line)
	}
	if k < 0 {
		panic("no umis in input")
	}

	costTable := map[string][][]string{}
	all := allKmers(k, alphabetWithN)
	for _, s := range all {
		costTable[s] = make([][]string, k+1)
	}
	for _, kmer := range all {
		for _, knownUMI := range known {
			cost := editdistance.Levenshtein(kmer, knownUMI)
			costTable[kmer][cost] = append(costTable[kmer][cost], knownUMI)
		}
	}

	correctionTable := map[string]snapCorrectorEntry{}
	for kmer, costList := range costTable {
		for cost, knownList := range costList {
			if len(knownList) == 1 {
				correctionTable[kmer] = snapCorrectorEntry{knownList[0], cost}
			}
			if len(knownList) > 0 {
				break
			}
		}
	}
	log.Debug.Printf("done building snappable UMI correction table (%d known, %d snappable)", len(known), len(correctionTable))

	return &SnapCorrector{knownUMIs: known, k: k, correctionTable: correctionTable}
}

// CorrectUMI returns, when there is exactly one known UMI closest to
// umi under Levenshtein distance, that known UMI, the edit distance to
// it, and whether it differs from umi (false for an exact match).
// Otherwise it returns the original umi, -1, and false.
func (c *SnapCorrector) CorrectUMI(umi string) (correctedUMI string, edits int, corrected bool) {
	umi = strings.ToUpper(umi)
	validateUMI(umi, true)
	entry, ok := c.correctionTable[umi]
	if ok {
		return entry.knownUMI, entry.edits, entry.knownUMI != umi
	}
	return umi, -1, false
}

func validateUMI(umi string, allowN bool) {
	for _, c := range umi {
		if (allowN && !alphabetWithNMap[byte(c)]) || (!allowN && !alphabetMap[byte(c)]) {
			panic(fmt.Sprintf("invalid base %c in umi %v", c, umi))
		}
	}
}

func allKmers(k int, alphabet []byte) []string {
	var fn func(partial string, length int) []string
	fn = func(partial string, length int) []string {
		if len(partial) == length {
			return []string{partial}
		}
		var kmers []string
		for _, c := range alphabet {
			kmers = append(kmers, fn(partial+string(c), length)...)
		}
		return kmers
	}
	return fn("", k)
}
