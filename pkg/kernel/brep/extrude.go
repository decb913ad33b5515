package brep

import (
	"errors"
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/toponame/pkg/geom"
	"github.com/chazu/toponame/pkg/kernel"
	"github.com/chazu/toponame/pkg/sketch"
)

// Extrusion errors.
var (
	ErrNoFace     = errors.New("brep: no such sketch face")
	ErrZeroHeight = errors.New("brep: extrusion height must be non-zero")
)

// Extrude sweeps a sketch face along the sketch plane normal by height.
//
// Faces are ordered bottom, top, then one side face per loop curve (outer
// loop first). Edges are ordered bottom curves, top curves, then one vertical
// edge per loop vertex. A loop made of a single circle has no vertices and
// therefore no vertical edges. Tags start empty.
func Extrude(sk *sketch.Sketch, faceID sketch.ID, height float64, name string) (*Solid, error) {
	f := sk.Face(faceID)
	if f == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoFace, faceID)
	}
	if height == 0 {
		return nil, ErrZeroHeight
	}
	loops := append([]sketch.Loop{f.Outer}, f.Holes...)
	walks := make([][]sketch.Step, len(loops))
	for i, l := range loops {
		steps, err := l.Walk()
		if err != nil {
			return nil, fmt.Errorf("brep: extrude %s: %w", faceID, err)
		}
		walks[i] = steps
	}

	pl := sk.Plane
	up := pl.Normal
	if height < 0 {
		up = up.MulScalar(-1)
	}
	s := NewSolid(name)
	bottom := s.AddFace(kernel.Surface{Kind: kernel.SurfacePlane, Origin: pl.Origin, Normal: up.MulScalar(-1)})
	top := s.AddFace(kernel.Surface{Kind: kernel.SurfacePlane, Origin: pl.Lift(geom.Pt(0, 0).Vec(), height), Normal: up})

	sides := make([][]*Face, len(walks))
	for li, steps := range walks {
		for _, st := range steps {
			sides[li] = append(sides[li], s.AddFace(sideSurface(pl, st, height)))
		}
	}

	bottoms := make([][]*Edge, len(walks))
	tops := make([][]*Edge, len(walks))
	for li, steps := range walks {
		for i, st := range steps {
			bottoms[li] = append(bottoms[li], s.AddEdge(lift(pl, st.Curve.Geom, 0), sides[li][i], bottom))
		}
	}
	for li, steps := range walks {
		for i, st := range steps {
			tops[li] = append(tops[li], s.AddEdge(lift(pl, st.Curve.Geom, height), sides[li][i], top))
		}
	}
	verticals := make([][]*Edge, len(walks))
	for li, steps := range walks {
		n := len(steps)
		for i, st := range steps {
			if st.From == nil {
				continue
			}
			prev := sides[li][(i+n-1)%n]
			line := &kernel.Line3{From: pl.Lift(st.From.Vec(), 0), To: pl.Lift(st.From.Vec(), height)}
			verticals[li] = append(verticals[li], s.AddEdge(line, prev, sides[li][i]))
		}
	}

	for li := range walks {
		for _, e := range bottoms[li] {
			s.AddCoedge(bottom, e, true)
		}
	}
	for li := range walks {
		for _, e := range tops[li] {
			s.AddCoedge(top, e, false)
		}
	}
	for li, steps := range walks {
		n := len(steps)
		for i := range steps {
			side := sides[li][i]
			s.AddCoedge(side, bottoms[li][i], false)
			if len(verticals[li]) > 0 {
				s.AddCoedge(side, verticals[li][(i+1)%n], false)
			}
			s.AddCoedge(side, tops[li][i], true)
			if len(verticals[li]) > 0 {
				s.AddCoedge(side, verticals[li][i], true)
			}
		}
	}
	return s, nil
}

// lift maps a sketch curve to 3D at offset h along the plane normal. Arcs
// keep their own orientation relative to the plane normal.
func lift(pl geom.Plane, c geom.Curve2D, h float64) kernel.Curve3D {
	switch g := c.(type) {
	case *geom.Line:
		return &kernel.Line3{From: pl.Lift(g.From.Vec(), h), To: pl.Lift(g.To.Vec(), h)}
	case *geom.Arc:
		return &kernel.Arc3{
			Center:    pl.Lift(g.Center.Vec(), h),
			Normal:    pl.Normal,
			From:      pl.Lift(g.From.Vec(), h),
			To:        pl.Lift(g.To.Vec(), h),
			Radius:    g.Radius,
			Clockwise: g.Clockwise,
		}
	case *geom.Circle:
		return &kernel.Circle3{Center: pl.Lift(g.Center.Vec(), h), Normal: pl.Normal, Radius: g.Radius}
	default:
		panic(fmt.Sprintf("brep: unknown curve type %T", c))
	}
}

func sideSurface(pl geom.Plane, st sketch.Step, height float64) kernel.Surface {
	switch g := st.Curve.Geom.(type) {
	case *geom.Arc:
		return kernel.Surface{Kind: kernel.SurfaceCylinder, Origin: pl.Lift(g.Center.Vec(), 0), Normal: pl.Normal, Radius: g.Radius}
	case *geom.Circle:
		return kernel.Surface{Kind: kernel.SurfaceCylinder, Origin: pl.Lift(g.Center.Vec(), 0), Normal: pl.Normal, Radius: g.Radius}
	default:
		from := pl.Lift(st.From.Vec(), 0)
		dir := pl.Lift(st.To.Vec(), 0).Sub(from)
		normal := dir.Cross(pl.Normal)
		if height < 0 {
			normal = normal.MulScalar(-1)
		}
		return kernel.Surface{Kind: kernel.SurfacePlane, Origin: from, Normal: safeNormalize(normal)}
	}
}

func safeNormalize(v v3.Vec) v3.Vec {
	if v.Length() == 0 {
		return v
	}
	return v.Normalize()
}
