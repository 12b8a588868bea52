package umi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapCorrectorExactMatch(t *testing.T) {
	c := NewSnapCorrector([]byte("AAAA\nCCCC\nGGGG\n"))
	corrected, edits, changed := c.CorrectUMI("AAAA")
	assert.Equal(t, "AAAA", corrected)
	assert.Equal(t, 0, edits)
	assert.False(t, changed)
}

func TestSnapCorrectorOneEditSnaps(t *testing.T) {
	c := NewSnapCorrector([]byte("AAAA\nCCCC\nGGGG\n"))
	corrected, edits, changed := c.CorrectUMI("AAAT")
	assert.Equal(t, "AAAA", corrected)
	assert.Equal(t, 1, edits)
	assert.True(t, changed)
}

func TestSnapCorrectorAmbiguousDoesNotSnap(t *testing.T) {
	// "ACAC" is equidistant (2 edits) from both known UMIs AAAA and
	// CCCC, so it should not land in the correction table at all.
	c := NewSnapCorrector([]byte("AAAA\nCCCC\n"))
	_, edits, changed := c.CorrectUMI("ACAC")
	assert.Equal(t, -1, edits)
	assert.False(t, changed)
}

func TestSnapCorrectorLowercaseIsUppercased(t *testing.T) {
	c := NewSnapCorrector([]byte("AAAA\nCCCC\n"))
	corrected, _, _ := c.CorrectUMI("aaaa")
	assert.Equal(t, "AAAA", corrected)
}
