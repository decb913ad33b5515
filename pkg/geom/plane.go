package geom

import (
	"math"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// parallelTolerance bounds 1-|cos| for two directions to count as parallel.
const parallelTolerance = 1e-9

// Plane is a sketch working plane with an orthonormal in-plane frame.
type Plane struct {
	Origin v3.Vec `json:"origin"`
	XAxis  v3.Vec `json:"x_axis"`
	YAxis  v3.Vec `json:"y_axis"`
	Normal v3.Vec `json:"normal"`
}

// XYPlane returns the world XY plane through the origin.
func XYPlane() Plane {
	return Plane{
		XAxis:  v3.Vec{X: 1},
		YAxis:  v3.Vec{Y: 1},
		Normal: v3.Vec{Z: 1},
	}
}

// NewPlane builds a plane through origin with the given normal. The in-plane
// X axis is the world X axis projected onto the plane, or the world Y axis
// when the normal is close to X.
func NewPlane(origin, normal v3.Vec) Plane {
	n := normal.Normalize()
	ref := v3.Vec{X: 1}
	if math.Abs(n.X) > 0.9 {
		ref = v3.Vec{Y: 1}
	}
	x := ref.Sub(n.MulScalar(ref.Dot(n))).Normalize()
	y := n.Cross(x)
	return Plane{Origin: origin, XAxis: x, YAxis: y, Normal: n}
}

// To2D projects p orthogonally onto the plane and returns in-plane coordinates.
func (pl Plane) To2D(p v3.Vec) v2.Vec {
	d := p.Sub(pl.Origin)
	return v2.Vec{X: d.Dot(pl.XAxis), Y: d.Dot(pl.YAxis)}
}

// Lift maps in-plane coordinates to 3D, offset h along the normal.
func (pl Plane) Lift(p v2.Vec, h float64) v3.Vec {
	return pl.Origin.
		Add(pl.XAxis.MulScalar(p.X)).
		Add(pl.YAxis.MulScalar(p.Y)).
		Add(pl.Normal.MulScalar(h))
}

// Offset returns the signed distance of p from the plane along its normal.
func (pl Plane) Offset(p v3.Vec) float64 {
	return p.Sub(pl.Origin).Dot(pl.Normal)
}

// Facing compares dir with the plane normal: +1 same direction, -1 opposite,
// 0 not parallel.
func (pl Plane) Facing(dir v3.Vec) int {
	l := dir.Length()
	if l == 0 {
		return 0
	}
	cos := dir.Dot(pl.Normal) / l
	switch {
	case cos >= 1-parallelTolerance:
		return 1
	case cos <= -1+parallelTolerance:
		return -1
	default:
		return 0
	}
}
