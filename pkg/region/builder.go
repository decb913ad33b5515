package region

import (
	"errors"
	"fmt"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/chazu/toponame/pkg/geom"
	"github.com/chazu/toponame/pkg/registry"
)

// Ring errors, wrapped in *PathError.
var (
	ErrEmptyRing = errors.New("region: empty ring")
	ErrOpenRing  = errors.New("region: ring is not closed")
)

// Union errors. Every failure of MergeRegions satisfies errors.Is(err, ErrUnion).
var (
	ErrUnion      = errors.New("region: union failed")
	ErrNoClipper  = errors.New("region: no clipper configured")
	ErrEmptyUnion = errors.New("region: union of non-empty input is empty")
	ErrOverlap    = errors.New("region: shapes overlap")
)

// PathError reports a malformed ring of an input path.
type PathError struct {
	Path int // index of the path in the input
	Hole int // -1 for the outer ring
	Err  error
}

func (e *PathError) Error() string {
	if e.Hole < 0 {
		return fmt.Sprintf("region: path %d outer ring: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("region: path %d hole %d: %v", e.Path, e.Hole, e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

// UnionError reports that several shapes could not be merged.
type UnionError struct {
	Shapes int
	Err    error
}

func (e *UnionError) Error() string {
	return fmt.Sprintf("region: union of %d shapes: %v", e.Shapes, e.Err)
}

func (e *UnionError) Unwrap() error { return e.Err }

// Is makes every UnionError match ErrUnion.
func (e *UnionError) Is(target error) bool { return target == ErrUnion }

// Clipper is the polygon boolean service used to merge overlapping shapes.
type Clipper interface {
	Union(paths []Path, tolerance float64) ([]Path, error)
}

// Builder converts raw paths into regions. Its registry supplies canonical
// endpoints; curves themselves are never deduplicated.
type Builder struct {
	reg  *registry.Registry
	clip Clipper
}

// NewBuilder returns a builder over reg. clip may be nil when only single
// shapes will be merged.
func NewBuilder(reg *registry.Registry, clip Clipper) *Builder {
	return &Builder{reg: reg, clip: clip}
}

// FromPathsToRegions converts each path into a region. On error no regions
// are returned.
func (b *Builder) FromPathsToRegions(paths []Path) ([]Region, error) {
	out := make([]Region, 0, len(paths))
	for i, p := range paths {
		outer, err := b.ring(p.Outer)
		if err != nil {
			return nil, &PathError{Path: i, Hole: -1, Err: err}
		}
		r := Region{Outer: outer}
		for j, h := range p.Holes {
			hole, err := b.ring(h)
			if err != nil {
				return nil, &PathError{Path: i, Hole: j, Err: err}
			}
			r.Holes = append(r.Holes, hole)
		}
		out = append(out, r)
	}
	return out, nil
}

// MergeRegions builds regions from several shapes. A single shape is
// converted directly; several are unioned by the clipper first.
func (b *Builder) MergeRegions(shapes [][]Path) ([]Region, error) {
	switch len(shapes) {
	case 0:
		return nil, nil
	case 1:
		return b.FromPathsToRegions(shapes[0])
	}
	var flat []Path
	for _, s := range shapes {
		flat = append(flat, s...)
	}
	if b.clip == nil {
		return nil, &UnionError{Shapes: len(shapes), Err: ErrNoClipper}
	}
	merged, err := b.clip.Union(flat, b.reg.Tolerance())
	if err != nil {
		return nil, &UnionError{Shapes: len(shapes), Err: err}
	}
	if len(merged) == 0 && len(flat) > 0 {
		return nil, &UnionError{Shapes: len(shapes), Err: ErrEmptyUnion}
	}
	regions, err := b.FromPathsToRegions(merged)
	if err != nil {
		return nil, &UnionError{Shapes: len(shapes), Err: err}
	}
	return regions, nil
}

func (b *Builder) ring(raws []registry.RawCurve) (PolyCurve, error) {
	if len(raws) == 0 {
		return PolyCurve{}, ErrEmptyRing
	}
	if err := checkClosed(raws, b.reg.Tolerance()); err != nil {
		return PolyCurve{}, err
	}
	curves := make([]geom.Curve2D, 0, len(raws))
	for _, c := range raws {
		curves = append(curves, b.reg.NewCurve(c))
	}
	return PolyCurve{Curves: curves}, nil
}

// checkClosed verifies head-to-tail connectivity in the given direction.
func checkClosed(raws []registry.RawCurve, tol float64) error {
	if len(raws) == 1 {
		c := raws[0]
		if c.IsArc() && c.From.Point().Near(c.To.Point(), tol) {
			return nil
		}
		return fmt.Errorf("%w: single curve from %v to %v", ErrOpenRing, c.From, c.To)
	}
	for i, c := range raws {
		next := raws[(i+1)%len(raws)]
		if !c.To.Point().Near(next.From.Point(), tol) {
			return fmt.Errorf("%w: curve %d ends at %v, curve %d starts at %v",
				ErrOpenRing, i, c.To, (i+1)%len(raws), next.From)
		}
	}
	return nil
}

// DisjointUnion is a conservative Clipper: it accepts shapes whose outer
// ring bounds do not overlap and returns them unchanged. Overlapping input
// needs a real polygon clipper and is rejected. Only bounds are compared,
// so shapes whose areas are disjoint but whose boxes overlap are rejected
// too, such as a disk placed inside a washer's hole.
type DisjointUnion struct{}

var _ Clipper = DisjointUnion{}

func (DisjointUnion) Union(paths []Path, tolerance float64) ([]Path, error) {
	boxes := make([]sdf.Box2, len(paths))
	for i, p := range paths {
		boxes[i] = rawBounds(p.Outer)
	}
	for i := range boxes {
		for j := i + 1; j < len(boxes); j++ {
			if geom.BoxesOverlap(boxes[i], boxes[j], tolerance) {
				return nil, fmt.Errorf("%w: paths %d and %d", ErrOverlap, i, j)
			}
		}
	}
	out := make([]Path, len(paths))
	copy(out, paths)
	return out, nil
}

// rawBounds bounds a raw ring conservatively: arcs contribute their full
// circle box.
func rawBounds(raws []registry.RawCurve) sdf.Box2 {
	b := geom.EmptyBox()
	for _, c := range raws {
		b = b.Include(c.From.Point().Vec()).Include(c.To.Point().Vec())
		if c.IsArc() {
			r := c.Radius
			if r == 0 {
				r = c.From.Point().Dist(c.Center.Point())
			}
			ctr := c.Center.Point().Vec()
			b = b.Extend(sdf.NewBox2(ctr, v2.Vec{X: 2 * r, Y: 2 * r}))
		}
	}
	return b
}
