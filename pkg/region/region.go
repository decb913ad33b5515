// Package region builds the rendering and snapping surfaces of a sketch.
//
// A Region is an outer boundary with optional holes. Regions may represent
// the union of several sketch faces, so they are built with the registry's
// non-deduplicating conversions and never carry face identity.
package region

import (
	"fmt"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/toponame/pkg/geom"
	"github.com/chazu/toponame/pkg/registry"
)

// arcSegments is the number of chords used per arc when a region is
// converted to a polygon SDF. Circles use twice as many.
const arcSegments = 32

// Path is raw region input: an outer ring and optional hole rings.
type Path struct {
	Outer []registry.RawCurve   `json:"outer"`
	Holes [][]registry.RawCurve `json:"holes,omitempty"`
}

// PolyCurve is a closed ring of curves in traversal order.
type PolyCurve struct {
	Curves []geom.Curve2D
}

// Bounds returns the ring's bounding box.
func (p PolyCurve) Bounds() sdf.Box2 {
	return geom.CurvesBounds(p.Curves)
}

// Vertices discretizes the ring into polygon vertices. The closing vertex is
// not repeated.
func (p PolyCurve) Vertices() []v2.Vec {
	var out []v2.Vec
	for _, c := range p.Curves {
		var pts []v2.Vec
		switch g := c.(type) {
		case *geom.Line:
			pts = g.Discretize(1)
		case *geom.Arc:
			pts = g.Discretize(arcSegments)
		case *geom.Circle:
			// Already open ended.
			out = append(out, g.Discretize(2*arcSegments)...)
			continue
		}
		out = append(out, pts[:len(pts)-1]...)
	}
	return out
}

// Region is a polygon surface with holes.
type Region struct {
	Outer PolyCurve
	Holes []PolyCurve
}

// Bounds returns the bounding box of the outer ring.
func (r Region) Bounds() sdf.Box2 {
	return r.Outer.Bounds()
}

// SDF returns a signed distance function for the region: negative inside,
// positive outside, holes subtracted.
func (r Region) SDF() (sdf.SDF2, error) {
	outer, err := sdf.Polygon2D(r.Outer.Vertices())
	if err != nil {
		return nil, fmt.Errorf("region: outer polygon: %w", err)
	}
	if len(r.Holes) == 0 {
		return outer, nil
	}
	holes := make([]sdf.SDF2, 0, len(r.Holes))
	for i, h := range r.Holes {
		s, err := sdf.Polygon2D(h.Vertices())
		if err != nil {
			return nil, fmt.Errorf("region: hole %d polygon: %w", i, err)
		}
		holes = append(holes, s)
	}
	return sdf.Difference2D(outer, sdf.Union2D(holes...)), nil
}

// Contains reports whether p lies inside the region or on its boundary
// within tol.
func (r Region) Contains(p v2.Vec, tol float64) bool {
	if r.OnBoundary(p, tol) {
		return true
	}
	s, err := r.SDF()
	if err != nil {
		return false
	}
	return s.Evaluate(p) <= 0
}

// OnBoundary reports whether p lies on any ring of the region within tol.
func (r Region) OnBoundary(p v2.Vec, tol float64) bool {
	for _, ring := range r.rings() {
		for _, c := range ring.Curves {
			if c.Distance(p) <= tol {
				return true
			}
		}
	}
	return false
}

// Snap returns the region vertex nearest to p when it lies within tol.
func (r Region) Snap(p v2.Vec, tol float64) (geom.Point2D, bool) {
	var (
		best  geom.Point2D
		bestD = tol
		found bool
	)
	for _, ring := range r.rings() {
		for _, c := range ring.Curves {
			from, to, ok := geom.Endpoints(c)
			if !ok {
				continue
			}
			for _, q := range []*geom.Point2D{from, to} {
				if d := q.Vec().Sub(p).Length(); d <= bestD {
					best, bestD, found = *q, d, true
				}
			}
		}
	}
	return best, found
}

func (r Region) rings() []PolyCurve {
	return append([]PolyCurve{r.Outer}, r.Holes...)
}
