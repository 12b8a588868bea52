package optical

import (
	"math"
	"sort"

	"github.com/biogo/store/kdtree"
	"github.com/grailbio/elduderino/dedupe/pair"
)

// naiveThreshold is the tile-batch size above which clustering
// switches from the O(n²) transitive-closure scan to a
// kdtree-backed radius query, grounded on the same tile-batching
// idea markduplicates' optical detector uses to bound comparison
// cost, generalized with an actual spatial index for heavily
// duplicated patterned-flowcell batches.
const naiveThreshold = 64

// Family groups pairs sharing a fingerprint (and, having already
// passed UMI/CIGAR grouping, a CIGAR class) into tile batches and
// clusters each batch by transitive closure under Euclidean pixel
// distance < distance. Pairs whose read name does not parse as
// Illumina-shaped are returned as their own singleton clusters,
// unclustered.
//
// Tile batches are clustered in order of each tile's first appearance,
// and a batch's clusters come in order of their first member's
// arrival, members in the order they joined. The singleton clusters of
// unparsed read names follow at the end, in arrival order.
func Cluster(pairs []pair.ReadPair, distance int) [][]pair.ReadPair {
	tiles := map[int][]int{} // tile -> indices into pairs
	var tileOrder []int      // tiles in order of first appearance
	var unparsed []int
	coords := make([]Coord, len(pairs))
	for i := range pairs {
		p := &pairs[i]
		coord, ok := ParseQName(qnameOf(p))
		if !ok {
			unparsed = append(unparsed, i)
			continue
		}
		p.Optical = pair.OpticalCoord{Parsed: true, Tile: coord.Tile, X: coord.X, Y: coord.Y}
		coords[i] = coord
		if _, seen := tiles[coord.Tile]; !seen {
			tileOrder = append(tileOrder, coord.Tile)
		}
		tiles[coord.Tile] = append(tiles[coord.Tile], i)
	}

	var clusters [][]pair.ReadPair
	for _, tile := range tileOrder {
		clusters = append(clusters, clusterTile(pairs, coords, tiles[tile], distance)...)
	}
	for _, i := range unparsed {
		clusters = append(clusters, []pair.ReadPair{pairs[i]})
	}
	return clusters
}

func qnameOf(p *pair.ReadPair) []byte {
	return p.Segment[1].QName
}

func clusterTile(pairs []pair.ReadPair, coords []Coord, idxs []int, distance int) [][]pair.ReadPair {
	if len(idxs) <= 1 {
		out := make([][]pair.ReadPair, len(idxs))
		for i, idx := range idxs {
			out[i] = []pair.ReadPair{pairs[idx]}
		}
		return out
	}
	if len(idxs) <= naiveThreshold {
		return clusterNaive(pairs, coords, idxs, distance)
	}
	return clusterKDTree(pairs, coords, idxs, distance)
}

// clusterNaive implements the expand-until-stable transitive closure
// of spec §4.4(c), the same shape as Connor-merge but keyed on pixel
// distance instead of barcode equality.
func clusterNaive(pairs []pair.ReadPair, coords []Coord, idxs []int, distance int) [][]pair.ReadPair {
	remaining := append([]int(nil), idxs...)
	var clusters [][]pair.ReadPair
	for len(remaining) > 0 {
		group := []int{remaining[0]}
		remaining = remaining[1:]
		for {
			grew := false
			var stillOut []int
			for _, cand := range remaining {
				matched := false
				for _, m := range group {
					if withinDistance(&coords[m], &coords[cand], distance) {
						matched = true
						break
					}
				}
				if matched {
					group = append(group, cand)
					grew = true
				} else {
					stillOut = append(stillOut, cand)
				}
			}
			remaining = stillOut
			if !grew {
				break
			}
		}
		members := make([]pair.ReadPair, len(group))
		for i, idx := range group {
			members[i] = pairs[idx]
		}
		clusters = append(clusters, members)
	}
	return clusters
}

func withinDistance(a, b *Coord, distance int) bool {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx+dy*dy) < float64(distance)
}

// clusterKDTree clusters a large tile batch using a k-d tree radius
// query in place of the O(n²) pairwise scan: each unclustered point
// queries the tree for all neighbors within distance, and those
// neighbors are folded into the growing cluster until a pass adds
// nothing new, identical in semantics to clusterNaive.
func clusterKDTree(pairs []pair.ReadPair, coords []Coord, idxs []int, distance int) [][]pair.ReadPair {
	pts := make(kdPoints, len(idxs))
	for i, idx := range idxs {
		pts[i] = kdPoint{x: float64(coords[idx].X), y: float64(coords[idx].Y), idx: idx}
	}
	tree := kdtree.New(pts, false)

	visited := make(map[int]bool, len(idxs))
	var clusters [][]pair.ReadPair
	for _, idx := range idxs {
		if visited[idx] {
			continue
		}
		group := []int{idx}
		visited[idx] = true
		frontier := []int{idx}
		for len(frontier) > 0 {
			var next []int
			for _, cur := range frontier {
				q := kdPoint{x: float64(coords[cur].X), y: float64(coords[cur].Y), idx: cur}
				keeper := kdtree.NewDistKeeper(float64(distance) * float64(distance))
				tree.NearestSet(keeper, q)
				for keeper.Len() > 0 {
					cd := keeper.Pop()
					neighbor, ok := cd.Comparable.(kdPoint)
					if !ok || visited[neighbor.idx] {
						continue
					}
					visited[neighbor.idx] = true
					group = append(group, neighbor.idx)
					next = append(next, neighbor.idx)
				}
			}
			frontier = next
		}
		members := make([]pair.ReadPair, len(group))
		for i, gi := range group {
			members[i] = pairs[gi]
		}
		clusters = append(clusters, members)
	}
	return clusters
}

// kdPoint is a 2-D point over a tile batch, implementing
// kdtree.Comparable.
type kdPoint struct {
	x, y float64
	idx  int
}

func (p kdPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(kdPoint)
	if d == 0 {
		return p.x - q.x
	}
	return p.y - q.y
}

func (p kdPoint) Dims() int { return 2 }

func (p kdPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(kdPoint)
	dx, dy := p.x-q.x, p.y-q.y
	return dx*dx + dy*dy
}

// kdPoints adapts a slice of kdPoint to kdtree.Interface.
type kdPoints []kdPoint

func (p kdPoints) Index(i int) kdtree.Comparable { return p[i] }
func (p kdPoints) Len() int                      { return len(p) }
func (p kdPoints) Pivot(d kdtree.Dim) int {
	sort.Sort(dimSorter{p, d})
	return len(p) / 2
}

// dimSorter sorts a kdPoints slice along a single dimension, used to
// implement Pivot without depending on an internal partition helper.
type dimSorter struct {
	pts kdPoints
	dim kdtree.Dim
}

func (s dimSorter) Len() int      { return len(s.pts) }
func (s dimSorter) Swap(i, j int) { s.pts[i], s.pts[j] = s.pts[j], s.pts[i] }
func (s dimSorter) Less(i, j int) bool {
	if s.dim == 0 {
		return s.pts[i].x < s.pts[j].x
	}
	return s.pts[i].y < s.pts[j].y
}
func (p kdPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }
func (p kdPoints) Bounds() *kdtree.Bounding {
	if len(p) == 0 {
		return nil
	}
	min := kdPoint{x: p[0].x, y: p[0].y}
	max := kdPoint{x: p[0].x, y: p[0].y}
	for _, pt := range p[1:] {
		if pt.x < min.x {
			min.x = pt.x
		}
		if pt.y < min.y {
			min.y = pt.y
		}
		if pt.x > max.x {
			max.x = pt.x
		}
		if pt.y > max.y {
			max.y = pt.y
		}
	}
	return &kdtree.Bounding{Min: min, Max: max}
}

func (p kdPoints) Less(i, j int, d kdtree.Dim) bool {
	if d == 0 {
		return p[i].x < p[j].x
	}
	return p[i].y < p[j].y
}

func (p kdPoints) Swap(i, j int) { p[i], p[j] = p[j], p[i] }
