// Package project maps kernel geometry onto a sketch plane.
//
// Failures are reported as nil curves or empty projections, never as
// errors, so the matcher can classify them as anomalies and move on.
package project

import (
	"github.com/chazu/toponame/pkg/curvematch"
	"github.com/chazu/toponame/pkg/geom"
	"github.com/chazu/toponame/pkg/kernel"
)

// Projector is the planar projection service used by the matcher.
type Projector interface {
	ProjectCurve(c kernel.Curve3D, pl geom.Plane) geom.Curve2D
	ProjectFace(f kernel.Face, pl geom.Plane) FaceProjection
}

// FaceProjection is the image of a face on a plane. Exactly one of Polygon
// and Curves is set for a successful projection; both are empty on failure.
type FaceProjection struct {
	// Polygon is set when the face is planar and parallel to the plane.
	Polygon *geom.Polygon
	// Curves holds the distinct non-degenerate images of the boundary of
	// any other face, e.g. the profile curve a side face was swept from.
	Curves []geom.Curve2D
	// Offset is the signed distance of a polygon face from the plane.
	Offset float64
}

// Empty reports whether the projection failed.
func (p FaceProjection) Empty() bool {
	return p.Polygon.IsEmpty() && len(p.Curves) == 0
}

// Planar is an orthogonal projector.
type Planar struct {
	Tolerance float64
}

var _ Projector = Planar{}

// ProjectCurve projects c onto pl. Arcs and circles only project to arcs and
// circles when their plane is parallel to pl; otherwise nil is returned.
func (p Planar) ProjectCurve(c kernel.Curve3D, pl geom.Plane) geom.Curve2D {
	switch g := c.(type) {
	case *kernel.Line3:
		from := geom.PointOf(pl.To2D(g.From))
		to := geom.PointOf(pl.To2D(g.To))
		return &geom.Line{From: &from, To: &to}
	case *kernel.Arc3:
		facing := pl.Facing(g.Normal)
		if facing == 0 {
			return nil
		}
		center := geom.PointOf(pl.To2D(g.Center))
		from := geom.PointOf(pl.To2D(g.From))
		to := geom.PointOf(pl.To2D(g.To))
		r := g.Radius
		if r == 0 {
			r = from.Dist(center)
		}
		if r <= p.Tolerance {
			return nil
		}
		if from.Near(to, p.Tolerance) {
			return &geom.Circle{Center: center, Radius: r}
		}
		return &geom.Arc{From: &from, To: &to, Center: center, Radius: r, Clockwise: g.Clockwise != (facing < 0)}
	case *kernel.Circle3:
		if pl.Facing(g.Normal) == 0 || g.Radius <= p.Tolerance {
			return nil
		}
		return &geom.Circle{Center: geom.PointOf(pl.To2D(g.Center)), Radius: g.Radius}
	default:
		return nil
	}
}

// ProjectFace projects the boundary of f onto pl.
func (p Planar) ProjectFace(f kernel.Face, pl geom.Plane) FaceProjection {
	var curves []geom.Curve2D
	seen := make(map[kernel.ElementID]bool)
	for _, co := range f.Coedges() {
		e := co.Edge()
		if e == nil || seen[e.ID()] {
			continue
		}
		seen[e.ID()] = true
		c := p.ProjectCurve(e.Curve(), pl)
		if c == nil {
			return FaceProjection{}
		}
		curves = append(curves, c)
	}
	if len(curves) == 0 {
		return FaceProjection{}
	}

	surf := f.Surface()
	if surf.Kind == kernel.SurfacePlane && pl.Facing(surf.Normal) != 0 {
		return FaceProjection{
			Polygon: geom.NewPolygon(curves...),
			Offset:  pl.Offset(surf.Origin),
		}
	}

	var distinct []geom.Curve2D
	for _, c := range curves {
		if c.Length() <= p.Tolerance || p.contains(distinct, c) {
			continue
		}
		distinct = append(distinct, c)
	}
	return FaceProjection{Curves: distinct}
}

func (p Planar) contains(curves []geom.Curve2D, c geom.Curve2D) bool {
	for _, d := range curves {
		if curvematch.Same(c, d, p.Tolerance) {
			return true
		}
	}
	return false
}

// IsDegenerate reports whether c projects to a point within tol.
func IsDegenerate(c geom.Curve2D, tol float64) bool {
	l, ok := c.(*geom.Line)
	return ok && l.From.Near(*l.To, tol)
}
