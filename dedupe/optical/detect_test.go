package optical

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func qnameAtX(x int) []byte {
	return []byte(fmt.Sprintf("NB500956:89:HW2FHBGX2:1:11101:%d:1000", x))
}

func TestDetectorPatterned(t *testing.T) {
	d := NewDetector()
	for i := 0; i < 10; i++ {
		d.Observe(qnameAtX(1000 + i*2501*2))
	}
	dist, ok := d.Distance()
	require.True(t, ok)
	assert.Equal(t, PatternedDistance, dist)
}

func TestDetectorUnpatterned(t *testing.T) {
	d := NewDetector()
	xs := []int{1001, 1007, 1013, 1024, 1031}
	for _, x := range xs {
		d.Observe(qnameAtX(x))
	}
	dist, ok := d.Distance()
	require.True(t, ok)
	assert.Equal(t, UnpatternedDistance, dist)
}

func TestDetectorTooFewSamples(t *testing.T) {
	d := NewDetector()
	d.Observe(qnameAtX(1000))
	_, ok := d.Distance()
	assert.False(t, ok)
}

func TestDetectorIgnoresMalformedQNames(t *testing.T) {
	d := NewDetector()
	d.Observe([]byte("not-illumina-shaped"))
	d.Observe([]byte("also not shaped"))
	_, ok := d.Distance()
	assert.False(t, ok)
}
