// Package kernel defines the boundary-representation contract the naming
// engine consumes. Kernel backends (or test fixtures) expose their solids
// through these interfaces; the engine only reads them. Writing names back
// is a separate, optional capability expressed by Taggable.
package kernel

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ElementID identifies a face, edge or coedge uniquely across a batch of
// solids.
type ElementID string

// Solid is a boundary representation: faces bounded by edges.
type Solid interface {
	Faces() []Face
	Edges() []Edge
}

// Face is a bounded piece of a surface.
type Face interface {
	ID() ElementID
	// Tag is the current kernel-assigned or previously applied name.
	Tag() string
	Surface() Surface
	Coedges() []Coedge
}

// Edge is a curve shared by one or more faces.
type Edge interface {
	ID() ElementID
	Tag() string
	Curve() Curve3D
	// Faces returns the adjacent faces in kernel enumeration order.
	Faces() []Face
}

// Coedge is the directed use of an edge by one face.
type Coedge interface {
	ID() ElementID
	Tag() string
	Edge() Edge
	Face() Face
}

// Taggable is implemented by elements whose names can be written back.
type Taggable interface {
	SetTag(tag string)
	SetUserData(data any)
}

// ---------------------------------------------------------------------------
// Surfaces
// ---------------------------------------------------------------------------

// SurfaceKind enumerates the surface types a face can lie on.
type SurfaceKind int

const (
	SurfacePlane SurfaceKind = iota
	SurfaceCylinder
	SurfaceOther
)

func (k SurfaceKind) String() string {
	switch k {
	case SurfacePlane:
		return "plane"
	case SurfaceCylinder:
		return "cylinder"
	default:
		return "other"
	}
}

// Surface describes the carrier surface of a face. For a plane, Origin is a
// point on it and Normal its unit normal. For a cylinder, Origin is a point on
// the axis and Normal the axis direction.
type Surface struct {
	Kind   SurfaceKind
	Origin v3.Vec
	Normal v3.Vec
	Radius float64 // cylinder only
}

// ---------------------------------------------------------------------------
// 3D curves
// ---------------------------------------------------------------------------

// Curve3D is the sum type of edge geometries.
type Curve3D interface {
	Start() v3.Vec
	End() v3.Vec
	curve3D()
}

// Line3 is a straight segment.
type Line3 struct {
	From, To v3.Vec
}

// Arc3 is a circular arc in the plane through Center with the given Normal.
// Clockwise is relative to Normal.
type Arc3 struct {
	Center    v3.Vec
	Normal    v3.Vec
	From, To  v3.Vec
	Radius    float64
	Clockwise bool
}

// Circle3 is a full circle.
type Circle3 struct {
	Center v3.Vec
	Normal v3.Vec
	Radius float64
}

func (*Line3) curve3D()   {}
func (*Arc3) curve3D()    {}
func (*Circle3) curve3D() {}

func (l *Line3) Start() v3.Vec { return l.From }
func (l *Line3) End() v3.Vec   { return l.To }

func (a *Arc3) Start() v3.Vec { return a.From }
func (a *Arc3) End() v3.Vec   { return a.To }

// Start returns the point at angle zero of the circle's in-plane frame.
func (c *Circle3) Start() v3.Vec {
	x, _ := c.Frame()
	return c.Center.Add(x.MulScalar(c.Radius))
}

func (c *Circle3) End() v3.Vec { return c.Start() }

// Frame returns the in-plane axes used to parameterize the circle.
func (c *Circle3) Frame() (x, y v3.Vec) {
	return frame(c.Normal)
}

func frame(n v3.Vec) (x, y v3.Vec) {
	n = n.Normalize()
	ref := v3.Vec{X: 1}
	if n.X > 0.9 || n.X < -0.9 {
		ref = v3.Vec{Y: 1}
	}
	x = ref.Sub(n.MulScalar(ref.Dot(n))).Normalize()
	y = n.Cross(x)
	return x, y
}

// Describe returns a short human-readable rendering of a curve.
func Describe(c Curve3D) string {
	switch g := c.(type) {
	case *Line3:
		return fmt.Sprintf("line(%v -> %v)", g.From, g.To)
	case *Arc3:
		return fmt.Sprintf("arc(c=%v r=%g %v -> %v)", g.Center, g.Radius, g.From, g.To)
	case *Circle3:
		return fmt.Sprintf("circle(c=%v r=%g)", g.Center, g.Radius)
	case nil:
		return "<nil>"
	default:
		return fmt.Sprintf("%T", c)
	}
}
