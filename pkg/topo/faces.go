package topo

import (
	"fmt"
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/toponame/pkg/geom"
	"github.com/chazu/toponame/pkg/kernel"
	"github.com/chazu/toponame/pkg/project"
	"github.com/chazu/toponame/pkg/sketch"
)

// faces is pass 1.
func (x *run) faces(solids []kernel.Solid) {
	names := newNameSet()
	for _, s := range solids {
		for _, f := range s.Faces() {
			x.face(f, names)
		}
	}
}

func (x *run) face(f kernel.Face, names nameSet) {
	proj := x.proj.ProjectFace(f, x.sk.Plane)
	switch {
	case proj.Empty():
		x.unmatched(f, ElementFace, ProjectionFailure, "face projection is empty", nil)
	case proj.Polygon != nil:
		x.polygonFace(f, proj, names)
	default:
		x.sideFace(f, proj, names)
	}
}

// polygonFace matches a face parallel to the sketch plane against sketch
// faces: bounding-box center filter, then boundary sample verification of
// each candidate in sketch order.
func (x *run) polygonFace(f kernel.Face, proj project.FaceProjection, names nameSet) {
	center := proj.Polygon.Bounds().Center()
	var candidates []*sketch.Face
	for _, sf := range x.sk.Faces {
		if sf.Bounding().Center().Sub(center).Length() <= x.tol.FaceCenter {
			candidates = append(candidates, sf)
		}
	}
	if len(candidates) == 0 {
		x.unmatched(f, ElementFace, NoCandidate,
			fmt.Sprintf("no sketch face centered within %g of %s", x.tol.FaceCenter, geom.PointOf(center)), nil)
		return
	}

	var matched *sketch.Face
	for _, sf := range candidates {
		if x.verify(sf, proj.Polygon) {
			matched = sf
			break
		}
	}
	if matched == nil {
		ids := make([]sketch.ID, len(candidates))
		for i, c := range candidates {
			ids[i] = c.ID
		}
		x.unmatched(f, ElementFace, AmbiguousMatch,
			fmt.Sprintf("%d sketch faces share the center but none lies on the face boundary", len(candidates)), ids)
		return
	}

	tag, role := string(matched.ID), RoleBottomFace
	if math.Abs(proj.Offset) > x.tol.Point {
		tag, role = tag+TopSuffix, RoleTopFace
	}
	x.assign(f, ElementFace, tag, &UserData{
		SketchComponentID: matched.ID,
		SketchType:        sketch.KindFace,
		Role:              role,
	}, names)
}

// verify reports whether every sample of the sketch face's outer loop lies
// on the projected polygon boundary.
func (x *run) verify(sf *sketch.Face, poly *geom.Polygon) bool {
	for _, c := range sf.Outer.Curves {
		for _, p := range faceSamples(c.Geom) {
			if !poly.OnBoundary(p, x.tol.Point) {
				return false
			}
		}
	}
	return true
}

// faceSamples returns the verification points of a sketch curve: start and
// midpoint of a line, the first discretized point of an arc or circle.
func faceSamples(c geom.Curve2D) []v2.Vec {
	switch g := c.(type) {
	case *geom.Line:
		return []v2.Vec{g.Start(), g.Midpoint()}
	case *geom.Arc:
		return g.Discretize(1)[:1]
	case *geom.Circle:
		return g.Discretize(3)[:1]
	default:
		panic(fmt.Sprintf("topo: unknown curve type %T", c))
	}
}

// sideFace matches a face swept along a sketch curve.
func (x *run) sideFace(f kernel.Face, proj project.FaceProjection, names nameSet) {
	if len(proj.Curves) != 1 {
		x.unmatched(f, ElementFace, MalformedProjection,
			fmt.Sprintf("side face projects to %d curves, want 1", len(proj.Curves)), nil)
		return
	}
	sc := x.match.Match(proj.Curves[0], x.sk.AllCurves())
	if sc == nil {
		x.unmatched(f, ElementFace, NoCandidate,
			fmt.Sprintf("no sketch curve matches %v", proj.Curves[0]), nil)
		return
	}
	x.assign(f, ElementFace, string(sc.ID), &UserData{
		SketchComponentID: sc.ID,
		SketchType:        sketch.KindCurve,
		Role:              RoleSideFace,
	}, names)
}
