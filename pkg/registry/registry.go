// Package registry implements the session-scoped primitive registry used
// while building canonical sketch geometry. It deduplicates points, lines,
// arcs and circles so that coincident geometry is shared by reference.
//
// A Registry is not safe for concurrent use. Create one per sketch build and
// drop it when the sketch is finalized.
package registry

import (
	"math"

	"github.com/google/uuid"

	"github.com/chazu/toponame/pkg/geom"
)

// RawPoint is an unresolved input coordinate.
type RawPoint struct {
	X, Y float64
}

// Point returns the raw point as a geom point value.
func (p RawPoint) Point() geom.Point2D {
	return geom.Point2D{X: p.X, Y: p.Y}
}

// RawCurve is an unresolved curve as delivered by a sketch source or a
// polygon clip result. A nil Center means a straight segment.
type RawCurve struct {
	From, To  RawPoint
	Center    *RawPoint
	Radius    float64 // 0 derives the radius from Center and From
	Clockwise bool
}

// IsArc reports whether the raw curve describes an arc or circle.
func (c RawCurve) IsArc() bool {
	return c.Center != nil
}

// radius returns the explicit radius or the Center-From distance.
func (c RawCurve) radius() float64 {
	if c.Radius > 0 || c.Center == nil {
		return c.Radius
	}
	return math.Hypot(c.From.X-c.Center.X, c.From.Y-c.Center.Y)
}

// Registry is a deduplicating factory for canonical 2D primitives.
type Registry struct {
	session uuid.UUID
	tol     float64

	points  *pointIndex
	lines   []*geom.Line
	arcs    []*geom.Arc
	circles []*geom.Circle
}

// New creates an empty registry that treats points within tol as equal.
func New(tol float64) *Registry {
	return &Registry{
		session: uuid.New(),
		tol:     tol,
		points:  newPointIndex(tol),
	}
}

// Session returns the identifier of this build session.
func (r *Registry) Session() string {
	return r.session.String()
}

// Tolerance returns the point tolerance.
func (r *Registry) Tolerance() float64 {
	return r.tol
}

// Points returns every registered point in registration order.
func (r *Registry) Points() []*geom.Point2D {
	return r.points.all()
}

// Stats reports how many instances of each kind are registered.
func (r *Registry) Stats() (points, lines, arcs, circles int) {
	return r.points.len(), len(r.lines), len(r.arcs), len(r.circles)
}

// ToPoint2D returns the registered point within tolerance of p, registering
// p if there is none.
func (r *Registry) ToPoint2D(p RawPoint) *geom.Point2D {
	if hit := r.points.find(p.Point()); hit != nil {
		return hit
	}
	pt := &geom.Point2D{X: p.X, Y: p.Y}
	r.points.insert(pt)
	return pt
}

// ToLine2D returns the canonical line between the endpoints of c. The
// endpoint order does not matter: Line(a,b) and Line(b,a) are one line.
func (r *Registry) ToLine2D(c RawCurve) *geom.Line {
	a := r.ToPoint2D(c.From)
	b := r.ToPoint2D(c.To)
	for _, l := range r.lines {
		if (l.From == a && l.To == b) || (l.From == b && l.To == a) {
			return l
		}
	}
	l := &geom.Line{From: a, To: b}
	r.lines = append(r.lines, l)
	return l
}

// ToCircle2D returns the canonical circle with the center and radius of c.
func (r *Registry) ToCircle2D(c RawCurve) *geom.Circle {
	center := r.center(c)
	radius := c.radius()
	for _, existing := range r.circles {
		if existing.Center.Near(center, r.tol) && math.Abs(existing.Radius-radius) <= r.tol {
			return existing
		}
	}
	circle := &geom.Circle{Center: center, Radius: radius}
	r.circles = append(r.circles, circle)
	return circle
}

// ToArc2D returns the canonical arc for c. An arc whose endpoints coincide
// within tolerance is returned as a circle instead.
func (r *Registry) ToArc2D(c RawCurve) geom.Curve2D {
	if c.From.Point().Near(c.To.Point(), r.tol) {
		return r.ToCircle2D(c)
	}
	from := r.ToPoint2D(c.From)
	to := r.ToPoint2D(c.To)
	center := r.center(c)
	radius := c.radius()
	for _, a := range r.arcs {
		if !a.Center.Near(center, r.tol) || math.Abs(a.Radius-radius) > r.tol {
			continue
		}
		sameWay := a.Clockwise == c.Clockwise && a.From == from && a.To == to
		reversed := a.Clockwise != c.Clockwise && a.From == to && a.To == from
		if sameWay || reversed {
			return a
		}
	}
	arc := &geom.Arc{From: from, To: to, Center: center, Radius: radius, Clockwise: c.Clockwise}
	r.arcs = append(r.arcs, arc)
	return arc
}

// ToCurve2D dispatches c to ToLine2D or ToArc2D.
func (r *Registry) ToCurve2D(c RawCurve) geom.Curve2D {
	if c.IsArc() {
		return r.ToArc2D(c)
	}
	return r.ToLine2D(c)
}

// NewLine builds a line whose endpoints are registry points but which is
// not itself registered or shared.
func (r *Registry) NewLine(c RawCurve) *geom.Line {
	return &geom.Line{From: r.ToPoint2D(c.From), To: r.ToPoint2D(c.To)}
}

// NewArc is the non-deduplicating counterpart of ToArc2D. A closed arc
// still becomes a circle.
func (r *Registry) NewArc(c RawCurve) geom.Curve2D {
	if c.From.Point().Near(c.To.Point(), r.tol) {
		return &geom.Circle{Center: r.center(c), Radius: c.radius()}
	}
	return &geom.Arc{
		From:      r.ToPoint2D(c.From),
		To:        r.ToPoint2D(c.To),
		Center:    r.center(c),
		Radius:    c.radius(),
		Clockwise: c.Clockwise,
	}
}

// NewCurve dispatches c to NewLine or NewArc.
func (r *Registry) NewCurve(c RawCurve) geom.Curve2D {
	if c.IsArc() {
		return r.NewArc(c)
	}
	return r.NewLine(c)
}

func (r *Registry) center(c RawCurve) geom.Point2D {
	if c.Center == nil {
		return geom.Point2D{}
	}
	return c.Center.Point()
}
