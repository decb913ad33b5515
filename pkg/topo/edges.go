package topo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chazu/toponame/pkg/geom"
	"github.com/chazu/toponame/pkg/kernel"
	"github.com/chazu/toponame/pkg/project"
	"github.com/chazu/toponame/pkg/sketch"
)

// Separator joins the parts of composed names.
const Separator = "|"

// BuildEdgeTopoName composes an edge name from the tags of its adjacent
// faces and the id of the sketch component it was matched to. Face tags are
// sorted first so the name does not depend on kernel enumeration order.
func BuildEdgeTopoName(faceTags []string, componentID string) string {
	tags := make([]string, len(faceTags))
	copy(tags, faceTags)
	sort.Strings(tags)
	return strings.Join(append(tags, componentID), Separator)
}

// CoedgeName composes a coedge name from its face and edge tags.
func CoedgeName(faceTag, edgeTag string) string {
	return faceTag + Separator + edgeTag
}

// edges is pass 2. It reads face tags written by pass 1.
func (x *run) edges(solids []kernel.Solid) {
	names := newNameSet()
	for _, s := range solids {
		for _, e := range s.Edges() {
			x.edge(e, names)
		}
	}
}

func (x *run) edge(e kernel.Edge, names nameSet) {
	c := x.proj.ProjectCurve(e.Curve(), x.sk.Plane)
	if c == nil {
		x.unmatched(e, ElementEdge, ProjectionFailure,
			fmt.Sprintf("cannot project %s", kernel.Describe(e.Curve())), nil)
		return
	}

	var ud *UserData
	if project.IsDegenerate(c, x.tol.Point) {
		p := x.point(geom.PointOf(c.Start()))
		if p == nil {
			x.unmatched(e, ElementEdge, NoCandidate,
				fmt.Sprintf("no sketch point within %g of %s", x.tol.Point, geom.PointOf(c.Start())), nil)
			return
		}
		ud = &UserData{SketchComponentID: p.ID, SketchType: sketch.KindPoint, Role: RoleSweepEdge}
	} else {
		sc := x.match.Match(c, x.sk.AllCurves())
		if sc == nil {
			x.unmatched(e, ElementEdge, NoCandidate, fmt.Sprintf("no sketch curve matches %v", c), nil)
			return
		}
		ud = &UserData{SketchComponentID: sc.ID, SketchType: sketch.KindCurve, Role: RoleProfileEdge}
	}

	faces := e.Faces()
	if len(faces) == 0 {
		x.unmatched(e, ElementEdge, DegenerateName, "edge has no adjacent faces", nil)
		return
	}
	tags := make([]string, 0, len(faces))
	for _, f := range faces {
		t := x.tagOf(f)
		if t == "" {
			x.unmatched(e, ElementEdge, DegenerateName,
				fmt.Sprintf("adjacent face %s has no tag", f.ID()), []sketch.ID{ud.SketchComponentID})
			return
		}
		tags = append(tags, t)
	}
	x.assign(e, ElementEdge, BuildEdgeTopoName(tags, string(ud.SketchComponentID)), ud, names)
}

// point returns the first sketch point within the point tolerance of p.
func (x *run) point(p geom.Point2D) *sketch.Point {
	for _, sp := range x.sk.AllPoints() {
		if sp.Pos.Near(p, x.tol.Point) {
			return sp
		}
	}
	return nil
}

// coedges is pass 3. Composition only: a coedge whose face or edge has no
// tag is reported and left unnamed.
func (x *run) coedges(solids []kernel.Solid) {
	for _, s := range solids {
		for _, f := range s.Faces() {
			ft := x.tagOf(f)
			for _, co := range f.Coedges() {
				e := co.Edge()
				switch {
				case ft == "":
					x.unmatched(co, ElementCoedge, DegenerateName, fmt.Sprintf("face %s has no tag", f.ID()), nil)
				case e == nil:
					x.unmatched(co, ElementCoedge, DegenerateName, "coedge has no edge", nil)
				case x.tagOf(e) == "":
					x.unmatched(co, ElementCoedge, DegenerateName, fmt.Sprintf("edge %s has no tag", e.ID()), nil)
				default:
					x.assign(co, ElementCoedge, CoedgeName(ft, x.tagOf(e)), nil, nil)
				}
			}
		}
	}
}

// nameSet tracks the names used in one pass of one reconstruction.
type nameSet map[string]struct{}

func newNameSet() nameSet {
	return make(nameSet)
}

// add records name and reports whether it was new.
func (s nameSet) add(name string) bool {
	if _, ok := s[name]; ok {
		return false
	}
	s[name] = struct{}{}
	return true
}
