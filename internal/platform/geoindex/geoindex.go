// Package geoindex provides a nearest-neighbour index over a fixed set of
// locations, with removal, for proximity-ordered walks.
package geoindex

import (
	"math"

	"route-sequencing-service/internal/domain"

	"github.com/dhconnelly/rtreego"
)

const (
	dimensions  = 2
	minChildren = 4
	maxChildren = 16
	// Half-width in degrees of the box each point is indexed as.
	tolerance = 1e-9
	// Upper bound on how much closer a box can be than its point.
	slack = 2 * tolerance

	initialCandidates = 4
)

// spatialItem wraps a location for R-tree indexing.
type spatialItem struct {
	idx  int
	loc  domain.Location
	rect *rtreego.Rect
}

func (si *spatialItem) Bounds() *rtreego.Rect {
	return si.rect
}

// Index is not safe for concurrent use; build one per walk.
type Index struct {
	tree  *rtreego.Rtree
	items []*spatialItem
	size  int
}

// New indexes locs; each location is identified by its position in the slice.
func New(locs []domain.Location) *Index {
	ix := &Index{
		tree:  rtreego.NewTree(dimensions, minChildren, maxChildren),
		items: make([]*spatialItem, len(locs)),
	}

	for i, loc := range locs {
		item := &spatialItem{
			idx:  i,
			loc:  loc,
			rect: rtreego.Point{loc.Lat, loc.Lng}.ToRect(tolerance),
		}
		ix.items[i] = item
		ix.tree.Insert(item)
		ix.size++
	}

	return ix
}

func (ix *Index) Len() int { return ix.size }

// Remove drops the location at idx. It reports whether it was still present.
func (ix *Index) Remove(idx int) bool {
	if idx < 0 || idx >= len(ix.items) || ix.items[idx] == nil {
		return false
	}
	if !ix.tree.Delete(ix.items[idx]) {
		return false
	}
	ix.items[idx] = nil
	ix.size--
	return true
}

// Nearest returns the index of the remaining location closest to from in
// degree space, the lowest index winning ties.
//
// Candidates come from the tree in box-distance order; the candidate set is
// doubled until the farthest candidate is provably farther than the best one,
// so no location outside it can win or tie.
func (ix *Index) Nearest(from domain.Location) (int, bool) {
	if ix.size == 0 {
		return -1, false
	}

	query := rtreego.Point{from.Lat, from.Lng}
	k := min(initialCandidates, ix.size)

	for {
		best, bestDist := -1, math.Inf(1)
		farthest := 0.0

		for _, c := range ix.tree.NearestNeighbors(k, query) {
			item, ok := c.(*spatialItem)
			if !ok || item == nil {
				continue
			}

			d := planar(from, item.loc)
			if d < bestDist || (d == bestDist && item.idx < best) {
				best, bestDist = item.idx, d
			}
			farthest = math.Max(farthest, d)
		}

		if best >= 0 && (k >= ix.size || farthest-slack > bestDist) {
			return best, true
		}
		if k >= ix.size {
			return -1, false
		}
		k = min(2*k, ix.size)
	}
}

func planar(a, b domain.Location) float64 {
	return math.Hypot(b.Lat-a.Lat, b.Lng-a.Lng)
}
