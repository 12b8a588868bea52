package optical

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/grailbio/elduderino/dedupe/pair"
	"github.com/grailbio/elduderino/samtext"
)

func pairAt(tile, x, y int) pair.ReadPair {
	qname := fmt.Sprintf("NB500956:89:HW2FHBGX2:1:%d:%d:%d", tile, x, y)
	seg := samtext.Segment{QName: []byte(qname)}
	return pair.ReadPair{Segment: [2]samtext.Segment{seg, seg}}
}

func TestClusterGroupsNearbyPointsOnSameTile(t *testing.T) {
	pairs := []pair.ReadPair{
		pairAt(1101, 1000, 1000),
		pairAt(1101, 1005, 1005), // close to the first
		pairAt(1101, 9000, 9000), // far from both
	}
	clusters := Cluster(pairs, 100)
	assert.Len(t, clusters, 2)
	sizes := map[int]bool{}
	for _, c := range clusters {
		sizes[len(c)] = true
	}
	assert.True(t, sizes[2])
	assert.True(t, sizes[1])
}

func TestClusterKeepsDifferentTilesSeparate(t *testing.T) {
	pairs := []pair.ReadPair{
		pairAt(1101, 1000, 1000),
		pairAt(1102, 1000, 1000),
	}
	clusters := Cluster(pairs, 100)
	assert.Len(t, clusters, 2)
}

func TestClusterUnparsedQNameIsSingleton(t *testing.T) {
	seg := samtext.Segment{QName: []byte("not-illumina-shaped")}
	pairs := []pair.ReadPair{{Segment: [2]samtext.Segment{seg, seg}}}
	clusters := Cluster(pairs, 100)
	assert.Len(t, clusters, 1)
	assert.Len(t, clusters[0], 1)
}

func TestClusterLargeBatchUsesKDTreePath(t *testing.T) {
	var pairs []pair.ReadPair
	for i := 0; i < naiveThreshold+10; i++ {
		pairs = append(pairs, pairAt(1101, i*1000, i*1000))
	}
	clusters := Cluster(pairs, 50)
	assert.Len(t, clusters, len(pairs), "points spaced 1000px apart with a 50px radius should not merge")
}
