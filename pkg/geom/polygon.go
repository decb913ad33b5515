package geom

import (
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Polygon is a closed planar outline made of curves, possibly with holes.
// Boundary classification is all the matcher needs, so loops are kept as
// plain curve lists without orientation.
type Polygon struct {
	Loops [][]Curve2D
}

// NewPolygon returns a single-loop polygon.
func NewPolygon(curves ...Curve2D) *Polygon {
	return &Polygon{Loops: [][]Curve2D{curves}}
}

// Curves returns every curve of every loop.
func (p *Polygon) Curves() []Curve2D {
	var out []Curve2D
	for _, loop := range p.Loops {
		out = append(out, loop...)
	}
	return out
}

// Bounds returns the bounding box of all loops.
func (p *Polygon) Bounds() sdf.Box2 {
	return CurvesBounds(p.Curves())
}

// OnBoundary reports whether v lies on an edge or vertex of the polygon
// within tol. Interior and exterior points both return false.
func (p *Polygon) OnBoundary(v v2.Vec, tol float64) bool {
	for _, c := range p.Curves() {
		if c.Distance(v) <= tol {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the polygon has no curves.
func (p *Polygon) IsEmpty() bool {
	return p == nil || len(p.Curves()) == 0
}

// CurvesBounds returns the bounding box of a set of curves.
func CurvesBounds(curves []Curve2D) sdf.Box2 {
	b := EmptyBox()
	for _, c := range curves {
		b = b.Extend(c.Bounds())
	}
	return b
}
