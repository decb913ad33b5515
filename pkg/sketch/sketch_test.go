package sketch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/toponame/pkg/geom"
	"github.com/chazu/toponame/pkg/registry"
)

func rp(x, y float64) registry.RawPoint { return registry.RawPoint{X: x, Y: y} }

// rect declares a w x h rectangle with curves L1..L4 and face F1.
func rect(t *testing.T, b *Builder, w, h float64) {
	t.Helper()
	_, err := b.Line("L1", rp(0, 0), rp(w, 0))
	require.NoError(t, err)
	_, err = b.Line("L2", rp(w, 0), rp(w, h))
	require.NoError(t, err)
	_, err = b.Line("L3", rp(w, h), rp(0, h))
	require.NoError(t, err)
	_, err = b.Line("L4", rp(0, h), rp(0, 0))
	require.NoError(t, err)
	_, err = b.Face("F1", []ID{"L1", "L2", "L3", "L4"})
	require.NoError(t, err)
}

func TestBuild_Rectangle(t *testing.T) {
	b := NewBuilder(geom.XYPlane(), geom.DefaultPointTolerance)
	rect(t, b, 10, 5)
	sk, err := b.Build()
	require.NoError(t, err)

	assert.Len(t, sk.Faces, 1)
	assert.Len(t, sk.AllCurves(), 4)
	require.Len(t, sk.AllPoints(), 4, "one auto point per corner")
	for i, p := range sk.AllPoints() {
		assert.True(t, p.Auto)
		assert.Equal(t, ID([]string{"P1", "P2", "P3", "P4"}[i]), p.ID)
	}
	assert.NotEmpty(t, sk.Session)

	k, ok := sk.KindOf("F1")
	require.True(t, ok)
	assert.Equal(t, KindFace, k)
	k, _ = sk.KindOf("P3")
	assert.Equal(t, KindPoint, k)

	verts, err := sk.MustFace("F1").Outer.Vertices()
	require.NoError(t, err)
	assert.Len(t, verts, 4)
}

func TestBuild_DeclaredPointsClaimEndpoints(t *testing.T) {
	b := NewBuilder(geom.XYPlane(), geom.DefaultPointTolerance)
	_, err := b.Point("P2", rp(0, 0))
	require.NoError(t, err)
	rect(t, b, 1, 1)
	sk, err := b.Build()
	require.NoError(t, err)

	pts := sk.AllPoints()
	require.Len(t, pts, 4)
	assert.Equal(t, ID("P2"), pts[0].ID)
	assert.False(t, pts[0].Auto)
	ids := []ID{pts[1].ID, pts[2].ID, pts[3].ID}
	assert.Equal(t, []ID{"P1", "P3", "P4"}, ids, "auto ids skip the declared P2")
	assert.Same(t, sk.Curve("L1").Geom.(*geom.Line).From, pts[0].Pos)
}

func TestBuilder_Errors(t *testing.T) {
	tests := []struct {
		name string
		run  func(b *Builder) error
		want error
	}{
		{
			name: "duplicate id",
			run: func(b *Builder) error {
				b.Line("L1", rp(0, 0), rp(1, 0))
				_, err := b.Line("L1", rp(0, 0), rp(0, 1))
				return err
			},
			want: ErrDuplicateID,
		},
		{
			name: "duplicate geometry",
			run: func(b *Builder) error {
				b.Line("L1", rp(0, 0), rp(1, 0))
				_, err := b.Line("L2", rp(1, 0), rp(0, 0))
				return err
			},
			want: ErrDuplicateGeometry,
		},
		{
			name: "zero length line",
			run: func(b *Builder) error {
				_, err := b.Line("L1", rp(0, 0), rp(0, 0))
				return err
			},
			want: ErrDegenerateCurve,
		},
		{
			name: "unknown curve in face",
			run: func(b *Builder) error {
				_, err := b.Face("F1", []ID{"nope"})
				return err
			},
			want: ErrUnknownCurve,
		},
		{
			name: "open loop",
			run: func(b *Builder) error {
				b.Line("L1", rp(0, 0), rp(1, 0))
				b.Line("L2", rp(1, 0), rp(1, 1))
				_, err := b.Face("F1", []ID{"L1", "L2"})
				return err
			},
			want: ErrOpenLoop,
		},
		{
			name: "circle mixed into loop",
			run: func(b *Builder) error {
				b.Circle("C1", rp(0, 0), 1)
				b.Line("L1", rp(0, 0), rp(1, 0))
				_, err := b.Face("F1", []ID{"C1", "L1"})
				return err
			},
			want: ErrOpenLoop,
		},
		{
			name: "use after build",
			run: func(b *Builder) error {
				b.Build()
				_, err := b.Line("L1", rp(0, 0), rp(1, 0))
				return err
			},
			want: ErrBuilt,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run(NewBuilder(geom.XYPlane(), geom.DefaultPointTolerance))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v, want %v", err, tt.want)
		})
	}
}

func TestLoop_WalkReversedCurves(t *testing.T) {
	b := NewBuilder(geom.XYPlane(), geom.DefaultPointTolerance)
	// L2 runs against the loop direction.
	b.Line("L1", rp(0, 0), rp(2, 0))
	b.Line("L2", rp(2, 2), rp(2, 0))
	b.Line("L3", rp(2, 2), rp(0, 0))
	f, err := b.Face("F1", []ID{"L1", "L2", "L3"})
	require.NoError(t, err)

	steps, err := f.Outer.Walk()
	require.NoError(t, err)
	require.Len(t, steps, 3)
	assert.False(t, steps[0].Reversed)
	assert.True(t, steps[1].Reversed)
	assert.False(t, steps[2].Reversed)
	assert.Equal(t, geom.Pt(2, 2), *steps[1].To)
}

func TestLoop_RawCurves(t *testing.T) {
	b := NewBuilder(geom.XYPlane(), geom.DefaultPointTolerance)
	b.Line("L1", rp(-1, 0), rp(1, 0))
	b.Arc("A1", registry.RawCurve{From: rp(-1, 0), To: rp(1, 0), Center: &registry.RawPoint{}, Clockwise: true})
	f, err := b.Face("F1", []ID{"L1", "A1"})
	require.NoError(t, err)

	raws, err := f.Outer.RawCurves()
	require.NoError(t, err)
	require.Len(t, raws, 2)
	assert.False(t, raws[0].IsArc())
	require.True(t, raws[1].IsArc())
	// The arc is traversed 1,0 -> -1,0 so its orientation flips.
	assert.Equal(t, rp(1, 0), raws[1].From)
	assert.False(t, raws[1].Clockwise)

	b.Circle("C1", rp(5, 5), 2)
	c, err := b.Face("F2", []ID{"C1"})
	require.NoError(t, err)
	raws, err = c.Outer.RawCurves()
	require.NoError(t, err)
	require.Len(t, raws, 1)
	assert.Equal(t, raws[0].From, raws[0].To)
	assert.InDelta(t, 2.0, raws[0].Radius, 1e-12)
}

func TestFace_HoleAndBounds(t *testing.T) {
	b := NewBuilder(geom.XYPlane(), geom.DefaultPointTolerance)
	b.Line("L1", rp(0, 0), rp(10, 0))
	b.Line("L2", rp(10, 0), rp(10, 10))
	b.Line("L3", rp(10, 10), rp(0, 10))
	b.Line("L4", rp(0, 10), rp(0, 0))
	b.Circle("C1", rp(5, 5), 2)
	f, err := b.Face("F1", []ID{"L1", "L2", "L3", "L4"}, []ID{"C1"})
	require.NoError(t, err)
	require.Len(t, f.Holes, 1)

	bb := f.Bounding()
	assert.InDelta(t, 0, bb.Min.X, 1e-12)
	assert.InDelta(t, 10, bb.Max.Y, 1e-12)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "curve", KindCurve.String())
	assert.Equal(t, "point", KindPoint.String())
	assert.Equal(t, "face", KindFace.String())
	assert.Equal(t, "unknown", Kind(9).String())
}

func TestFace_Path(t *testing.T) {
	b := NewBuilder(geom.XYPlane(), geom.DefaultPointTolerance)
	rect(t, b, 3, 3)
	b.Circle("C1", rp(1.5, 1.5), 0.5)
	f, err := b.Face("F2", []ID{"L1", "L2", "L3", "L4"}, []ID{"C1"})
	require.NoError(t, err)

	p, err := f.Path()
	require.NoError(t, err)
	require.Len(t, p.Outer, 4)
	require.Len(t, p.Holes, 1)
	for i, c := range p.Outer {
		next := p.Outer[(i+1)%len(p.Outer)]
		assert.Equal(t, c.To, next.From, "ring must chain head to tail at curve %d", i)
	}
}
