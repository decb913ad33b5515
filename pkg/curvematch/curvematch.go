// Package curvematch compares 2D curves geometrically. Two curves are equal
// when they have the same kind and each one's samples lie on the other within
// tolerance, so a line and its reverse match while two lines that merely
// share endpoints with a different path between them do not.
package curvematch

import (
	"github.com/chazu/toponame/pkg/geom"
	"github.com/chazu/toponame/pkg/sketch"
)

// Matcher finds the sketch curve a projected curve came from.
type Matcher struct {
	Tolerance float64
}

// New returns a matcher with the given distance tolerance.
func New(tol float64) Matcher {
	return Matcher{Tolerance: tol}
}

// Match returns the first curve in pool equal to c, or nil.
func (m Matcher) Match(c geom.Curve2D, pool []*sketch.Curve) *sketch.Curve {
	if c == nil {
		return nil
	}
	for _, sc := range pool {
		if Same(c, sc.Geom, m.Tolerance) {
			return sc
		}
	}
	return nil
}

// Same reports whether a and b describe the same point set within tol.
func Same(a, b geom.Curve2D, tol float64) bool {
	if a == nil || b == nil || a.Kind() != b.Kind() {
		return false
	}
	if a == b {
		return true
	}
	return liesOn(a, b, tol) && liesOn(b, a, tol)
}

func liesOn(c, on geom.Curve2D, tol float64) bool {
	for _, p := range geom.Samples(c) {
		if on.Distance(p) > tol {
			return false
		}
	}
	return true
}
