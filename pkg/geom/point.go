package geom

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Default tolerances in model units (mm).
const (
	DefaultPointTolerance      = 1e-3
	DefaultFaceCenterTolerance = 1e-2
)

// Point2D is a 2D point. Canonical sketch points are shared by pointer:
// two curves meeting at a vertex hold the same *Point2D.
type Point2D struct {
	X, Y float64
}

// Pt is shorthand for a Point2D value.
func Pt(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Vec returns the point as an sdfx vector.
func (p Point2D) Vec() v2.Vec {
	return v2.Vec{X: p.X, Y: p.Y}
}

// PointOf converts an sdfx vector to a Point2D.
func PointOf(v v2.Vec) Point2D {
	return Point2D{X: v.X, Y: v.Y}
}

// Dist returns the Euclidean distance between p and q.
func (p Point2D) Dist(q Point2D) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Near reports whether p and q are within tol of each other.
func (p Point2D) Near(q Point2D, tol float64) bool {
	return p.Dist(q) <= tol
}

func (p Point2D) String() string {
	return fmt.Sprintf("(%.4f, %.4f)", p.X, p.Y)
}

// dist returns the distance between two sdfx vectors.
func dist(a, b v2.Vec) float64 {
	return a.Sub(b).Length()
}

// EmptyBox returns an inverted box that the first Extend or Include
// replaces.
func EmptyBox() sdf.Box2 {
	inf := math.Inf(1)
	return sdf.Box2{
		Min: v2.Vec{X: inf, Y: inf},
		Max: v2.Vec{X: -inf, Y: -inf},
	}
}

// BoxesOverlap reports whether a and b intersect, growing both by tol.
func BoxesOverlap(a, b sdf.Box2, tol float64) bool {
	return a.Min.X <= b.Max.X+tol && b.Min.X <= a.Max.X+tol &&
		a.Min.Y <= b.Max.Y+tol && b.Min.Y <= a.Max.Y+tol
}
