package sketch

import (
	"errors"
	"fmt"

	"github.com/chazu/toponame/pkg/geom"
	"github.com/chazu/toponame/pkg/registry"
)

// Builder errors.
var (
	ErrDuplicateID       = errors.New("sketch: duplicate id")
	ErrUnknownCurve      = errors.New("sketch: unknown curve")
	ErrDuplicateGeometry = errors.New("sketch: duplicate geometry")
	ErrDegenerateCurve   = errors.New("sketch: degenerate curve")
	ErrBuilt             = errors.New("sketch: builder already finalized")
)

// Builder assembles a Sketch from raw geometry. It owns the primitive
// registry for the build session; Build finalizes the sketch and drops the
// registry so no later build can match against stale instances.
type Builder struct {
	reg     *registry.Registry
	sk      *Sketch
	byPoint map[*geom.Point2D]*Point
	byGeom  map[geom.Curve2D]*Curve
}

// NewBuilder starts a sketch build on plane with the given point tolerance.
func NewBuilder(plane geom.Plane, tol float64) *Builder {
	reg := registry.New(tol)
	sk := New(plane)
	sk.Session = reg.Session()
	return &Builder{
		reg:     reg,
		sk:      sk,
		byPoint: make(map[*geom.Point2D]*Point),
		byGeom:  make(map[geom.Curve2D]*Curve),
	}
}

// Registry exposes the session registry, for example to build regions
// against the same canonical points. It returns nil after Build.
func (b *Builder) Registry() *registry.Registry {
	return b.reg
}

// Point declares a named point.
func (b *Builder) Point(id ID, p registry.RawPoint) (*Point, error) {
	if err := b.claim(id); err != nil {
		return nil, err
	}
	pos := b.reg.ToPoint2D(p)
	if existing, ok := b.byPoint[pos]; ok {
		return nil, fmt.Errorf("%w: point %s coincides with %s", ErrDuplicateGeometry, id, existing.ID)
	}
	pt := &Point{ID: id, Pos: pos}
	b.byPoint[pos] = pt
	b.sk.addPoint(pt)
	return pt, nil
}

// Line declares a straight curve.
func (b *Builder) Line(id ID, from, to registry.RawPoint) (*Curve, error) {
	if err := b.claim(id); err != nil {
		return nil, err
	}
	raw := registry.RawCurve{From: from, To: to}
	if raw.From.Point().Near(raw.To.Point(), b.reg.Tolerance()) {
		return nil, fmt.Errorf("%w: line %s has zero length", ErrDegenerateCurve, id)
	}
	return b.addCurve(id, b.reg.ToLine2D(raw))
}

// Arc declares an arc. An arc whose endpoints coincide becomes a circle.
func (b *Builder) Arc(id ID, raw registry.RawCurve) (*Curve, error) {
	if err := b.claim(id); err != nil {
		return nil, err
	}
	if raw.Center == nil {
		return nil, fmt.Errorf("%w: arc %s has no center", ErrDegenerateCurve, id)
	}
	g := b.reg.ToArc2D(raw)
	if arcRadius(g) <= b.reg.Tolerance() {
		return nil, fmt.Errorf("%w: arc %s has zero radius", ErrDegenerateCurve, id)
	}
	return b.addCurve(id, g)
}

// Circle declares a full circle.
func (b *Builder) Circle(id ID, center registry.RawPoint, radius float64) (*Curve, error) {
	if err := b.claim(id); err != nil {
		return nil, err
	}
	if radius <= b.reg.Tolerance() {
		return nil, fmt.Errorf("%w: circle %s has zero radius", ErrDegenerateCurve, id)
	}
	return b.addCurve(id, b.reg.ToCircle2D(registry.RawCurve{Center: &center, Radius: radius}))
}

// Face declares a face from curve ids. The loops must close.
func (b *Builder) Face(id ID, outer []ID, holes ...[]ID) (*Face, error) {
	if err := b.claim(id); err != nil {
		return nil, err
	}
	f := &Face{ID: id}
	loop, err := b.loop(outer)
	if err != nil {
		return nil, fmt.Errorf("face %s: outer: %w", id, err)
	}
	f.Outer = loop
	for i, h := range holes {
		hl, err := b.loop(h)
		if err != nil {
			return nil, fmt.Errorf("face %s: hole %d: %w", id, i, err)
		}
		f.Holes = append(f.Holes, hl)
	}
	b.sk.addFace(f)
	return f, nil
}

// Build finalizes the sketch. Curve endpoints not claimed by a declared
// point receive ids P1, P2, ... in curve order, skipping ids in use.
func (b *Builder) Build() (*Sketch, error) {
	if b.reg == nil {
		return nil, ErrBuilt
	}
	seq := 0
	for _, c := range b.sk.curves {
		from, to, ok := geom.Endpoints(c.Geom)
		if !ok {
			continue
		}
		for _, pos := range []*geom.Point2D{from, to} {
			if _, claimed := b.byPoint[pos]; claimed {
				continue
			}
			var id ID
			for {
				seq++
				id = ID(fmt.Sprintf("P%d", seq))
				if _, used := b.sk.index[id]; !used {
					break
				}
			}
			pt := &Point{ID: id, Pos: pos, Auto: true}
			b.byPoint[pos] = pt
			b.sk.addPoint(pt)
		}
	}
	sk := b.sk
	b.reg = nil
	b.sk = nil
	return sk, nil
}

func (b *Builder) claim(id ID) error {
	if b.reg == nil {
		return ErrBuilt
	}
	if id == "" {
		return fmt.Errorf("%w: empty id", ErrDuplicateID)
	}
	if k, used := b.sk.index[id]; used {
		return fmt.Errorf("%w: %q already names a %s", ErrDuplicateID, id, k)
	}
	return nil
}

func (b *Builder) addCurve(id ID, g geom.Curve2D) (*Curve, error) {
	if existing, ok := b.byGeom[g]; ok {
		return nil, fmt.Errorf("%w: %s repeats %s", ErrDuplicateGeometry, id, existing.ID)
	}
	c := &Curve{ID: id, Geom: g}
	b.byGeom[g] = c
	b.sk.addCurve(c)
	return c, nil
}

func (b *Builder) loop(ids []ID) (Loop, error) {
	var l Loop
	for _, cid := range ids {
		c := b.sk.Curve(cid)
		if c == nil {
			return Loop{}, fmt.Errorf("%w: %q", ErrUnknownCurve, cid)
		}
		l.Curves = append(l.Curves, c)
	}
	if _, err := l.Walk(); err != nil {
		return Loop{}, err
	}
	return l, nil
}

func arcRadius(c geom.Curve2D) float64 {
	switch g := c.(type) {
	case *geom.Arc:
		return g.Radius
	case *geom.Circle:
		return g.Radius
	default:
		return 0
	}
}
