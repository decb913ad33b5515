// Package brep is a small in-memory boundary representation implementing the
// kernel interfaces. It backs extrusion fixtures and lets names be applied
// and read back without a real modeling kernel.
package brep

import (
	"fmt"

	"github.com/chazu/toponame/pkg/kernel"
)

// Compile-time interface checks.
var (
	_ kernel.Solid    = (*Solid)(nil)
	_ kernel.Face     = (*Face)(nil)
	_ kernel.Edge     = (*Edge)(nil)
	_ kernel.Coedge   = (*Coedge)(nil)
	_ kernel.Taggable = (*Face)(nil)
	_ kernel.Taggable = (*Edge)(nil)
	_ kernel.Taggable = (*Coedge)(nil)
)

// label holds the mutable name state shared by every element kind.
type label struct {
	id   kernel.ElementID
	tag  string
	data any
}

func (l *label) ID() kernel.ElementID { return l.id }
func (l *label) Tag() string          { return l.tag }
func (l *label) SetTag(tag string)    { l.tag = tag }
func (l *label) SetUserData(data any) { l.data = data }
func (l *label) UserData() any        { return l.data }

// Face is a face of an in-memory solid.
type Face struct {
	label
	surface kernel.Surface
	coedges []*Coedge
}

func (f *Face) Surface() kernel.Surface { return f.surface }

func (f *Face) Coedges() []kernel.Coedge {
	out := make([]kernel.Coedge, len(f.coedges))
	for i, c := range f.coedges {
		out[i] = c
	}
	return out
}

// Edge is an edge of an in-memory solid.
type Edge struct {
	label
	curve kernel.Curve3D
	faces []*Face
}

func (e *Edge) Curve() kernel.Curve3D { return e.curve }

func (e *Edge) Faces() []kernel.Face {
	out := make([]kernel.Face, len(e.faces))
	for i, f := range e.faces {
		out[i] = f
	}
	return out
}

// Coedge is the use of an edge by a face.
type Coedge struct {
	label
	edge     *Edge
	face     *Face
	Reversed bool
}

func (c *Coedge) Edge() kernel.Edge { return c.edge }
func (c *Coedge) Face() kernel.Face { return c.face }

// Solid is a collection of faces and edges with a name used to derive
// element ids.
type Solid struct {
	Name    string
	faces   []*Face
	edges   []*Edge
	coedges int
}

// NewSolid creates an empty solid.
func NewSolid(name string) *Solid {
	return &Solid{Name: name}
}

func (s *Solid) Faces() []kernel.Face {
	out := make([]kernel.Face, len(s.faces))
	for i, f := range s.faces {
		out[i] = f
	}
	return out
}

func (s *Solid) Edges() []kernel.Edge {
	out := make([]kernel.Edge, len(s.edges))
	for i, e := range s.edges {
		out[i] = e
	}
	return out
}

// Face returns the i-th face.
func (s *Solid) Face(i int) *Face { return s.faces[i] }

// Edge returns the i-th edge.
func (s *Solid) Edge(i int) *Edge { return s.edges[i] }

// AllCoedges returns every coedge, face by face.
func (s *Solid) AllCoedges() []*Coedge {
	var out []*Coedge
	for _, f := range s.faces {
		out = append(out, f.coedges...)
	}
	return out
}

// AddFace appends a face on the given surface.
func (s *Solid) AddFace(surface kernel.Surface) *Face {
	f := &Face{surface: surface}
	f.id = kernel.ElementID(fmt.Sprintf("%s/f%d", s.Name, len(s.faces)))
	s.faces = append(s.faces, f)
	return f
}

// AddEdge appends an edge adjacent to faces, in the given order.
func (s *Solid) AddEdge(curve kernel.Curve3D, faces ...*Face) *Edge {
	e := &Edge{curve: curve, faces: faces}
	e.id = kernel.ElementID(fmt.Sprintf("%s/e%d", s.Name, len(s.edges)))
	s.edges = append(s.edges, e)
	return e
}

// AddCoedge records that face uses edge in its boundary.
func (s *Solid) AddCoedge(face *Face, edge *Edge, reversed bool) *Coedge {
	c := &Coedge{edge: edge, face: face, Reversed: reversed}
	c.id = kernel.ElementID(fmt.Sprintf("%s/c%d", s.Name, s.coedges))
	s.coedges++
	face.coedges = append(face.coedges, c)
	return c
}

// ResetTags clears every tag and user data payload, as a freshly
// regenerated kernel solid would have.
func (s *Solid) ResetTags() {
	for _, f := range s.faces {
		f.tag, f.data = "", nil
		for _, c := range f.coedges {
			c.tag, c.data = "", nil
		}
	}
	for _, e := range s.edges {
		e.tag, e.data = "", nil
	}
}
