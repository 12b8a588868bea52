package optical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQNameValid(t *testing.T) {
	coord, ok := ParseQName([]byte("NB500956:89:HW2FHBGX2:1:11101:25648:1069"))
	require.True(t, ok)
	assert.Equal(t, Coord{Tile: 11101, X: 25648, Y: 1069}, coord)
}

func TestParseQNameWrongFieldCount(t *testing.T) {
	_, ok := ParseQName([]byte("not:an:illumina:name"))
	assert.False(t, ok)
}

func TestParseQNameNonNumericTrailer(t *testing.T) {
	_, ok := ParseQName([]byte("a:b:c:d:tile:x:y"))
	assert.False(t, ok)
}
