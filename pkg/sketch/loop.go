package sketch

import (
	"errors"
	"fmt"

	"github.com/deadsy/sdfx/sdf"

	"github.com/chazu/toponame/pkg/geom"
	"github.com/chazu/toponame/pkg/registry"
)

// ErrOpenLoop is returned when a loop's curves do not chain head to tail.
var ErrOpenLoop = errors.New("sketch: loop is not closed")

// Loop is a closed chain of curves.
type Loop struct {
	Curves []*Curve
}

// Step is one curve of a loop traversed in loop order.
type Step struct {
	Curve    *Curve
	From, To *geom.Point2D // nil for a circle
	Reversed bool          // traversal runs against the curve's own direction
}

// Bounds returns the bounding box of the loop's curves.
func (l Loop) Bounds() sdf.Box2 {
	b := geom.EmptyBox()
	for _, c := range l.Curves {
		b = b.Extend(c.Geom.Bounds())
	}
	return b
}

// Walk orders the loop head to tail. Connectivity is decided by pointer
// identity of the registry-resolved endpoints, so coincident vertices must
// have been built through one registry.
func (l Loop) Walk() ([]Step, error) {
	if len(l.Curves) == 0 {
		return nil, fmt.Errorf("%w: empty loop", ErrOpenLoop)
	}
	if len(l.Curves) == 1 {
		c := l.Curves[0]
		if _, ok := c.Geom.(*geom.Circle); ok {
			return []Step{{Curve: c}}, nil
		}
		return nil, fmt.Errorf("%w: single %s %s", ErrOpenLoop, c.Geom.Kind(), c.ID)
	}

	steps := make([]Step, 0, len(l.Curves))
	first := l.Curves[0]
	from, to, ok := geom.Endpoints(first.Geom)
	if !ok {
		return nil, fmt.Errorf("%w: circle %s cannot join other curves", ErrOpenLoop, first.ID)
	}
	// Orient the first curve so that it ends where the second one touches.
	reversed := false
	if !touches(l.Curves[1], to) {
		if !touches(l.Curves[1], from) {
			return nil, fmt.Errorf("%w: %s does not meet %s", ErrOpenLoop, first.ID, l.Curves[1].ID)
		}
		from, to, reversed = to, from, true
	}
	steps = append(steps, Step{Curve: first, From: from, To: to, Reversed: reversed})

	start, cur := from, to
	for _, c := range l.Curves[1:] {
		a, b, ok := geom.Endpoints(c.Geom)
		switch {
		case !ok:
			return nil, fmt.Errorf("%w: circle %s cannot join other curves", ErrOpenLoop, c.ID)
		case a == cur:
			steps = append(steps, Step{Curve: c, From: a, To: b})
			cur = b
		case b == cur:
			steps = append(steps, Step{Curve: c, From: b, To: a, Reversed: true})
			cur = a
		default:
			return nil, fmt.Errorf("%w: %s does not start at %s", ErrOpenLoop, c.ID, cur)
		}
	}
	if cur != start {
		return nil, fmt.Errorf("%w: ends at %s, started at %s", ErrOpenLoop, cur, start)
	}
	return steps, nil
}

// Vertices returns the loop's vertices in traversal order.
func (l Loop) Vertices() ([]*geom.Point2D, error) {
	steps, err := l.Walk()
	if err != nil {
		return nil, err
	}
	var out []*geom.Point2D
	for _, s := range steps {
		if s.From != nil {
			out = append(out, s.From)
		}
	}
	return out, nil
}

// RawCurves converts the loop back to raw curves in traversal order, the
// form the region builder and polygon clippers consume.
func (l Loop) RawCurves() ([]registry.RawCurve, error) {
	steps, err := l.Walk()
	if err != nil {
		return nil, err
	}
	out := make([]registry.RawCurve, 0, len(steps))
	for _, s := range steps {
		out = append(out, rawStep(s))
	}
	return out, nil
}

func rawStep(s Step) registry.RawCurve {
	switch g := s.Curve.Geom.(type) {
	case *geom.Line:
		return registry.RawCurve{From: raw(*s.From), To: raw(*s.To)}
	case *geom.Arc:
		c := raw(g.Center)
		return registry.RawCurve{
			From:      raw(*s.From),
			To:        raw(*s.To),
			Center:    &c,
			Radius:    g.Radius,
			Clockwise: g.Clockwise != s.Reversed,
		}
	case *geom.Circle:
		c := raw(g.Center)
		p := geom.PointOf(g.Start())
		return registry.RawCurve{From: raw(p), To: raw(p), Center: &c, Radius: g.Radius}
	default:
		panic(fmt.Sprintf("sketch: unknown curve type %T", g))
	}
}

func raw(p geom.Point2D) registry.RawPoint {
	return registry.RawPoint{X: p.X, Y: p.Y}
}

func touches(c *Curve, p *geom.Point2D) bool {
	a, b, ok := geom.Endpoints(c.Geom)
	return ok && (a == p || b == p)
}
