package geom

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// CurveKind enumerates the members of the Curve2D sum type.
type CurveKind int

const (
	CurveLine   CurveKind = iota // straight segment
	CurveArc                     // circular arc with distinct endpoints
	CurveCircle                  // full circle
)

func (k CurveKind) String() string {
	switch k {
	case CurveLine:
		return "line"
	case CurveArc:
		return "arc"
	case CurveCircle:
		return "circle"
	default:
		return "unknown"
	}
}

// Curve2D is a 2D sketch curve: *Line, *Arc or *Circle.
// Consumers switch on the concrete type; the set is closed.
type Curve2D interface {
	Kind() CurveKind
	// Start and End are the curve endpoints. For a circle both return the
	// first discretized point.
	Start() v2.Vec
	End() v2.Vec
	Length() float64
	Bounds() sdf.Box2
	// Distance returns the shortest distance from p to the curve.
	Distance(p v2.Vec) float64
	// Discretize returns points along the curve. Open curves return n+1
	// points from Start to End; a circle returns n points starting at
	// angle zero.
	Discretize(n int) []v2.Vec

	curve2D() // marker method restricting implementations to this package
}

// Compile-time interface checks.
var (
	_ Curve2D = (*Line)(nil)
	_ Curve2D = (*Arc)(nil)
	_ Curve2D = (*Circle)(nil)
)

// ---------------------------------------------------------------------------
// Line
// ---------------------------------------------------------------------------

// Line is a straight segment between two canonical points.
type Line struct {
	From, To *Point2D
}

func (*Line) curve2D() {}

func (l *Line) Kind() CurveKind { return CurveLine }
func (l *Line) Start() v2.Vec   { return l.From.Vec() }
func (l *Line) End() v2.Vec     { return l.To.Vec() }
func (l *Line) Length() float64 { return l.From.Dist(*l.To) }

// Midpoint returns the point halfway along the segment.
func (l *Line) Midpoint() v2.Vec {
	return l.Start().Add(l.End()).MulScalar(0.5)
}

func (l *Line) Bounds() sdf.Box2 {
	s, e := l.Start(), l.End()
	return sdf.Box2{Min: s.Min(e), Max: s.Max(e)}
}

func (l *Line) Distance(p v2.Vec) float64 {
	a, b := l.Start(), l.End()
	ab := b.Sub(a)
	den := ab.Dot(ab)
	if den == 0 {
		return dist(p, a)
	}
	t := p.Sub(a).Dot(ab) / den
	t = math.Max(0, math.Min(1, t))
	return dist(p, a.Add(ab.MulScalar(t)))
}

func (l *Line) Discretize(n int) []v2.Vec {
	if n < 1 {
		n = 1
	}
	a, b := l.Start(), l.End()
	pts := make([]v2.Vec, 0, n+1)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		pts = append(pts, a.Add(b.Sub(a).MulScalar(t)))
	}
	return pts
}

func (l *Line) String() string {
	return fmt.Sprintf("line %s-%s", l.From, l.To)
}

// ---------------------------------------------------------------------------
// Arc
// ---------------------------------------------------------------------------

// Arc is a circular arc from From to To around Center. Clockwise selects
// the sweep direction. An Arc never has coincident endpoints; that shape is
// a Circle.
type Arc struct {
	From, To  *Point2D
	Center    Point2D
	Radius    float64
	Clockwise bool
}

func (*Arc) curve2D() {}

func (a *Arc) Kind() CurveKind { return CurveArc }
func (a *Arc) Start() v2.Vec   { return a.From.Vec() }
func (a *Arc) End() v2.Vec     { return a.To.Vec() }

// StartAngle returns the polar angle of From around Center.
func (a *Arc) StartAngle() float64 {
	return math.Atan2(a.From.Y-a.Center.Y, a.From.X-a.Center.X)
}

// Sweep returns the signed sweep angle: positive counter-clockwise,
// negative clockwise, magnitude in (0, 2π].
func (a *Arc) Sweep() float64 {
	s := a.StartAngle()
	e := math.Atan2(a.To.Y-a.Center.Y, a.To.X-a.Center.X)
	if a.Clockwise {
		return -positiveAngle(s - e)
	}
	return positiveAngle(e - s)
}

func (a *Arc) Length() float64 {
	return a.Radius * math.Abs(a.Sweep())
}

// PointAt returns the point at parameter t in [0,1] along the sweep.
func (a *Arc) PointAt(t float64) v2.Vec {
	ang := a.StartAngle() + t*a.Sweep()
	return onCircle(a.Center, a.Radius, ang)
}

// containsAngle reports whether the polar angle ang lies within the sweep.
func (a *Arc) containsAngle(ang float64) bool {
	sweep := a.Sweep()
	if sweep >= 0 {
		return wrapAngle(ang-a.StartAngle()) <= sweep
	}
	return wrapAngle(a.StartAngle()-ang) <= -sweep
}

func (a *Arc) Bounds() sdf.Box2 {
	s, e := a.Start(), a.End()
	b := sdf.Box2{Min: s.Min(e), Max: s.Max(e)}
	for i := 0; i < 4; i++ {
		ang := float64(i) * math.Pi / 2
		if a.containsAngle(ang) {
			b = b.Include(onCircle(a.Center, a.Radius, ang))
		}
	}
	return b
}

func (a *Arc) Distance(p v2.Vec) float64 {
	c := a.Center.Vec()
	d := dist(p, c)
	if d > 0 && a.containsAngle(math.Atan2(p.Y-c.Y, p.X-c.X)) {
		return math.Abs(d - a.Radius)
	}
	return math.Min(dist(p, a.Start()), dist(p, a.End()))
}

func (a *Arc) Discretize(n int) []v2.Vec {
	if n < 1 {
		n = 1
	}
	pts := make([]v2.Vec, 0, n+1)
	pts = append(pts, a.Start())
	for i := 1; i < n; i++ {
		pts = append(pts, a.PointAt(float64(i)/float64(n)))
	}
	return append(pts, a.End())
}

func (a *Arc) String() string {
	dir := "ccw"
	if a.Clockwise {
		dir = "cw"
	}
	return fmt.Sprintf("arc %s-%s c=%s r=%.4f %s", a.From, a.To, a.Center, a.Radius, dir)
}

// ---------------------------------------------------------------------------
// Circle
// ---------------------------------------------------------------------------

// Circle is a full circle.
type Circle struct {
	Center Point2D
	Radius float64
}

func (*Circle) curve2D() {}

func (c *Circle) Kind() CurveKind { return CurveCircle }
func (c *Circle) Start() v2.Vec   { return onCircle(c.Center, c.Radius, 0) }
func (c *Circle) End() v2.Vec     { return c.Start() }
func (c *Circle) Length() float64 { return 2 * math.Pi * c.Radius }

func (c *Circle) Bounds() sdf.Box2 {
	r := v2.Vec{X: c.Radius, Y: c.Radius}
	return sdf.Box2{Min: c.Center.Vec().Sub(r), Max: c.Center.Vec().Add(r)}
}

func (c *Circle) Distance(p v2.Vec) float64 {
	return math.Abs(dist(p, c.Center.Vec()) - c.Radius)
}

func (c *Circle) Discretize(n int) []v2.Vec {
	if n < 3 {
		n = 3
	}
	pts := make([]v2.Vec, 0, n)
	for i := 0; i < n; i++ {
		pts = append(pts, onCircle(c.Center, c.Radius, 2*math.Pi*float64(i)/float64(n)))
	}
	return pts
}

func (c *Circle) String() string {
	return fmt.Sprintf("circle c=%s r=%.4f", c.Center, c.Radius)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// Endpoints returns the canonical endpoint pointers of a line or arc.
// Circles have none.
func Endpoints(c Curve2D) (from, to *Point2D, ok bool) {
	switch c := c.(type) {
	case *Line:
		return c.From, c.To, true
	case *Arc:
		return c.From, c.To, true
	default:
		return nil, nil, false
	}
}

// Samples returns the points used to compare two curves geometrically.
func Samples(c Curve2D) []v2.Vec {
	switch c := c.(type) {
	case *Line:
		return c.Discretize(2)
	case *Arc:
		return c.Discretize(8)
	case *Circle:
		return c.Discretize(16)
	default:
		panic(fmt.Sprintf("geom: unknown curve type %T", c))
	}
}

func onCircle(center Point2D, r, ang float64) v2.Vec {
	return v2.Vec{X: center.X + r*math.Cos(ang), Y: center.Y + r*math.Sin(ang)}
}

// positiveAngle maps x into (0, 2π].
func positiveAngle(x float64) float64 {
	x = math.Mod(x, 2*math.Pi)
	if x <= 0 {
		x += 2 * math.Pi
	}
	return x
}

// wrapAngle maps x into [0, 2π).
func wrapAngle(x float64) float64 {
	x = math.Mod(x, 2*math.Pi)
	if x < 0 {
		x += 2 * math.Pi
	}
	return x
}
