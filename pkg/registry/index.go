package registry

import (
	"github.com/dhconnelly/rtreego"

	"github.com/chazu/toponame/pkg/geom"
)

// Tree fan-out. Sketches rarely hold more than a few thousand points.
const (
	treeMinChildren = 8
	treeMaxChildren = 32
)

// querySlack widens the search rectangle past tol. rtreego only reports
// rectangles that strictly overlap the query, so a point at exactly tol
// would otherwise be missed. Near makes the final decision.
const querySlack = 2

// pointExtent is the side length of the rectangle stored for each point.
// rtreego rejects zero-sized rectangles.
const pointExtent = 1e-12

// pointEntry is a registered point as stored in the R-tree.
type pointEntry struct {
	seq  int
	pt   *geom.Point2D
	rect rtreego.Rect
}

func (e *pointEntry) Bounds() rtreego.Rect {
	return e.rect
}

// pointIndex answers "first registered point within tol" queries. The
// R-tree only narrows the candidate set; the winner is the candidate with
// the lowest registration sequence, which is what a linear scan returns.
type pointIndex struct {
	tol     float64
	tree    *rtreego.Rtree
	entries []*pointEntry
}

func newPointIndex(tol float64) *pointIndex {
	return &pointIndex{
		tol:  tol,
		tree: rtreego.NewTree(2, treeMinChildren, treeMaxChildren),
	}
}

func (ix *pointIndex) len() int {
	return len(ix.entries)
}

func (ix *pointIndex) all() []*geom.Point2D {
	out := make([]*geom.Point2D, len(ix.entries))
	for i, e := range ix.entries {
		out[i] = e.pt
	}
	return out
}

func (ix *pointIndex) insert(pt *geom.Point2D) {
	e := &pointEntry{seq: len(ix.entries), pt: pt}
	rect, err := rtreego.NewRect(rtreego.Point{pt.X, pt.Y}, []float64{pointExtent, pointExtent})
	ix.entries = append(ix.entries, e)
	if err != nil {
		// Non-finite coordinates never satisfy Near, so the entry only
		// keeps its place in registration order.
		return
	}
	e.rect = rect
	ix.tree.Insert(e)
}

func (ix *pointIndex) find(p geom.Point2D) *geom.Point2D {
	if ix.tol <= 0 {
		return ix.scan(p)
	}
	half := querySlack * ix.tol
	query, err := rtreego.NewRect(
		rtreego.Point{p.X - half, p.Y - half},
		[]float64{2 * half, 2 * half},
	)
	if err != nil {
		return ix.scan(p)
	}

	var best *pointEntry
	for _, s := range ix.tree.SearchIntersect(query) {
		e := s.(*pointEntry)
		if !e.pt.Near(p, ix.tol) {
			continue
		}
		if best == nil || e.seq < best.seq {
			best = e
		}
	}
	if best == nil {
		return nil
	}
	return best.pt
}

// scan is the reference linear lookup.
func (ix *pointIndex) scan(p geom.Point2D) *geom.Point2D {
	for _, e := range ix.entries {
		if e.pt.Near(p, ix.tol) {
			return e.pt
		}
	}
	return nil
}
