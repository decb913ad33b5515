// Package sketch defines the 2D parametric sketch consumed by the
// correspondence matcher: faces bounded by loops of curves, and points.
// Sketches are built once through a Builder and are read-only afterwards.
package sketch

import (
	"fmt"

	"github.com/deadsy/sdfx/sdf"

	"github.com/chazu/toponame/pkg/geom"
	"github.com/chazu/toponame/pkg/region"
)

// ID identifies a sketch component (face, curve or point).
type ID string

// Kind enumerates the sketch component types.
type Kind int

const (
	KindCurve Kind = iota
	KindPoint
	KindFace
)

func (k Kind) String() string {
	switch k {
	case KindCurve:
		return "curve"
	case KindPoint:
		return "point"
	case KindFace:
		return "face"
	default:
		return "unknown"
	}
}

// MarshalText renders the kind by name in JSON and YAML output.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Point is a named sketch point.
type Point struct {
	ID  ID
	Pos *geom.Point2D
	// Auto is set for points created for curve endpoints that were never
	// declared explicitly.
	Auto bool
}

// Curve is a named sketch curve.
type Curve struct {
	ID   ID
	Geom geom.Curve2D
}

// Face is a sketch face: an outer loop and optional hole loops.
type Face struct {
	ID    ID
	Outer Loop
	Holes []Loop
}

// Bounding returns the bounding box of the outer loop.
func (f *Face) Bounding() sdf.Box2 {
	return f.Outer.Bounds()
}

// Path converts the face back to raw region input, loops in traversal order.
func (f *Face) Path() (region.Path, error) {
	outer, err := f.Outer.RawCurves()
	if err != nil {
		return region.Path{}, fmt.Errorf("face %s: %w", f.ID, err)
	}
	p := region.Path{Outer: outer}
	for i, h := range f.Holes {
		hole, err := h.RawCurves()
		if err != nil {
			return region.Path{}, fmt.Errorf("face %s: hole %d: %w", f.ID, i, err)
		}
		p.Holes = append(p.Holes, hole)
	}
	return p, nil
}

// Sketch is a finalized sketch.
type Sketch struct {
	Plane   geom.Plane
	Faces   []*Face
	Session string // registry session that produced the canonical geometry

	curves []*Curve
	points []*Point
	index  map[ID]Kind
}

// New creates an empty sketch on the given plane.
func New(plane geom.Plane) *Sketch {
	return &Sketch{
		Plane: plane,
		index: make(map[ID]Kind),
	}
}

// AllCurves returns every curve in declaration order.
func (s *Sketch) AllCurves() []*Curve {
	return s.curves
}

// AllPoints returns every point: declared points first, then auto points,
// each group in creation order.
func (s *Sketch) AllPoints() []*Point {
	return s.points
}

// Curve returns the curve with the given id, or nil.
func (s *Sketch) Curve(id ID) *Curve {
	for _, c := range s.curves {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Point returns the point with the given id, or nil.
func (s *Sketch) Point(id ID) *Point {
	for _, p := range s.points {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Face returns the face with the given id, or nil.
func (s *Sketch) Face(id ID) *Face {
	for _, f := range s.Faces {
		if f.ID == id {
			return f
		}
	}
	return nil
}

// MustFace returns the face with the given id, or panics.
func (s *Sketch) MustFace(id ID) *Face {
	f := s.Face(id)
	if f == nil {
		panic(fmt.Sprintf("sketch: no face %q", id))
	}
	return f
}

// KindOf reports the kind of the component with the given id.
func (s *Sketch) KindOf(id ID) (Kind, bool) {
	k, ok := s.index[id]
	return k, ok
}

func (s *Sketch) addCurve(c *Curve) {
	s.curves = append(s.curves, c)
	s.index[c.ID] = KindCurve
}

func (s *Sketch) addPoint(p *Point) {
	s.points = append(s.points, p)
	s.index[p.ID] = KindPoint
}

func (s *Sketch) addFace(f *Face) {
	s.Faces = append(s.Faces, f)
	s.index[f.ID] = KindFace
}
