package curvematch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chazu/toponame/pkg/geom"
	"github.com/chazu/toponame/pkg/sketch"
)

const tol = geom.DefaultPointTolerance

func pt(x, y float64) *geom.Point2D { p := geom.Pt(x, y); return &p }

func line(x1, y1, x2, y2 float64) *geom.Line {
	return &geom.Line{From: pt(x1, y1), To: pt(x2, y2)}
}

func TestSame(t *testing.T) {
	quarter := &geom.Arc{From: pt(1, 0), To: pt(0, 1), Radius: 1}
	tests := []struct {
		name string
		a, b geom.Curve2D
		want bool
	}{
		{"identical line", line(0, 0, 1, 0), line(0, 0, 1, 0), true},
		{"reversed line", line(0, 0, 1, 0), line(1, 0, 0, 0), true},
		{"within tolerance", line(0, 0, 1, 0), line(0, tol/2, 1, 0), true},
		{"sub-segment", line(0, 0, 1, 0), line(0, 0, 0.5, 0), false},
		{"parallel offset", line(0, 0, 1, 0), line(0, 1, 1, 1), false},
		{"arc vs reversed arc", quarter, &geom.Arc{From: pt(0, 1), To: pt(1, 0), Radius: 1, Clockwise: true}, true},
		{"arc vs complement", quarter, &geom.Arc{From: pt(1, 0), To: pt(0, 1), Radius: 1, Clockwise: true}, false},
		{"arc vs chord", quarter, line(1, 0, 0, 1), false},
		{"circle", &geom.Circle{Radius: 2}, &geom.Circle{Radius: 2}, true},
		{"circle radius", &geom.Circle{Radius: 2}, &geom.Circle{Radius: 2.1}, false},
		{"nil", nil, line(0, 0, 1, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Same(tt.a, tt.b, tol))
		})
	}
}

func TestMatch_FirstInPoolOrder(t *testing.T) {
	pool := []*sketch.Curve{
		{ID: "L1", Geom: line(0, 0, 1, 0)},
		{ID: "L2", Geom: line(0, 0, 0, 1)},
		{ID: "L3", Geom: line(0, 1, 0, 0)},
	}
	m := New(tol)
	got := m.Match(line(0, 1, 0, 0), pool)
	if assert.NotNil(t, got) {
		assert.Equal(t, sketch.ID("L2"), got.ID)
	}
	assert.Nil(t, m.Match(line(5, 5, 6, 6), pool))
	assert.Nil(t, m.Match(nil, pool))
}
