package dedupestats

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccumulation(t *testing.T) {
	s := New()
	s.AddFamilySize(3)
	s.AddFamilySize(3)
	s.AddFamilySize(1)
	s.AddSequencing(2, 10)
	s.AddPCR(1, 20)

	assert.Equal(t, uint64(2), s.FamilySizes[3])
	assert.Equal(t, uint64(1), s.FamilySizes[1])
	assert.Equal(t, uint64(2), s.SequencingErrors)
	assert.Equal(t, uint64(10), s.SequencingTotal)
	assert.Equal(t, uint64(1), s.PCRErrors)
	assert.Equal(t, uint64(20), s.PCRTotal)
}

func TestWriteJSONRoundTrips(t *testing.T) {
	s := New()
	s.TotalReads = 42
	s.AddFamilySize(2)
	s.PCRDuplicates = 1

	var buf bytes.Buffer
	require.NoError(t, s.WriteJSON(&buf))

	var decoded Statistics
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, uint64(42), decoded.TotalReads)
	assert.Equal(t, uint64(1), decoded.FamilySizes[2])
	assert.Equal(t, uint64(1), decoded.PCRDuplicates)
}
