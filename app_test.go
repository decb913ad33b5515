package main

import (
	"os"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/toponame/pkg/config"
	"github.com/chazu/toponame/pkg/topo"
)

func testApp(t *testing.T) *App {
	t.Helper()
	cfg := config.Defaults()
	cfg.Mesh.Cells = 40
	return NewApp(cfg, nil)
}

func requireNoErrors(t *testing.T, errs []EvalErrorData) {
	t.Helper()
	for _, e := range errs {
		t.Errorf("eval error (line %d): %s", e.Line, e.Message)
	}
	if len(errs) > 0 {
		t.FailNow()
	}
}

func tagsByKind(res EvalResult, kind string) map[string]int {
	out := map[string]int{}
	for _, tg := range res.Tags {
		if tg.Kind == kind {
			out[tg.Tag]++
		}
	}
	return out
}

// TestE2ERectExample exercises the full pipeline: sketch source, engine,
// extrusion, reconstruction, applied names.
func TestE2ERectExample(t *testing.T) {
	app := testApp(t)

	source, err := os.ReadFile("examples/rect.sketch")
	require.NoError(t, err)

	result := app.Evaluate(string(source))
	requireNoErrors(t, result.Errors)

	require.Len(t, result.Solids, 1)
	assert.Equal(t, SolidData{Name: "plate", Face: "F1", Faces: 6, Edges: 12, Coedges: 24}, result.Solids[0])

	require.NotNil(t, result.Report)
	require.True(t, result.Report.OK(), spew.Sdump(result.Report.Anomalies))
	assert.Empty(t, result.Report.ByKind(topo.DuplicateName))

	assert.Equal(t,
		map[string]int{"F1": 1, "F1.top": 1, "L1": 1, "L2": 1, "L3": 1, "L4": 1},
		tagsByKind(result, "face"))
	assert.Len(t, tagsByKind(result, "edge"), 12)
	assert.Len(t, result.Tags, 6+12+24)
	assert.Equal(t, 42, result.Summary["assigned"])

	for _, tg := range result.Tags {
		switch tg.Kind {
		case "face", "edge":
			require.NotNil(t, tg.UserData, "element %s", tg.Element)
		case "coedge":
			assert.Nil(t, tg.UserData, "element %s", tg.Element)
		}
	}
	for _, tg := range result.Tags {
		if tg.Element == "plate/f0" {
			assert.Equal(t, topo.RoleBottomFace, tg.UserData.Role)
		}
		if tg.Element == "plate/e0" {
			assert.Equal(t, "F1|L1|L1", tg.Tag)
		}
	}
}

// TestE2EWasherExample covers holes, circles and arcs across two solids.
func TestE2EWasherExample(t *testing.T) {
	app := testApp(t)

	source, err := os.ReadFile("examples/washer.sketch")
	require.NoError(t, err)

	result := app.Evaluate(string(source))
	requireNoErrors(t, result.Errors)
	require.Len(t, result.Solids, 2)
	require.True(t, result.Report.OK(), spew.Sdump(result.Report.Anomalies))

	faces := tagsByKind(result, "face")
	for _, want := range []string{"RING", "RING.top", "OUTER", "BORE", "TAB", "TAB.top", "FLAT", "CURVE"} {
		assert.Equal(t, 1, faces[want], "face tag %s", want)
	}
	assert.Equal(t, 1, tagsByKind(result, "edge")["OUTER|RING|OUTER"])
}

// TestE2EEmptySource ensures the pipeline handles empty input gracefully.
func TestE2EEmptySource(t *testing.T) {
	app := testApp(t)
	result := app.Evaluate("")

	assert.Empty(t, result.Errors)
	assert.NotNil(t, result.Solids)
	assert.Empty(t, result.Solids)
	assert.Empty(t, result.Tags)
	require.NotNil(t, result.Report)
	assert.True(t, result.Report.OK())
}

// TestE2ESyntaxError ensures eval errors are reported, not fatal errors.
func TestE2ESyntaxError(t *testing.T) {
	app := testApp(t)
	result := app.Evaluate(`(line "L1" 0 0 1 0`)

	require.NotEmpty(t, result.Errors)
	assert.Empty(t, result.Solids)
	assert.Empty(t, result.Tags)
	assert.Nil(t, result.Report)
}

// TestE2ESketchWithoutExtrusion names nothing but still reconstructs.
func TestE2ESketchWithoutExtrusion(t *testing.T) {
	app := testApp(t)
	result := app.Evaluate(`
(line "L1" 0 0 1 0)
(line "L2" 1 0 1 1)
(line "L3" 1 1 0 0)
(face "T" "L1" "L2" "L3")
`)
	requireNoErrors(t, result.Errors)
	assert.Empty(t, result.Solids)
	assert.Empty(t, result.Tags)
	assert.Equal(t, 0, result.Summary["assigned"])
}

// TestE2EDuplicateExtrusions extrudes the same face twice: names repeat
// and are reported as warnings, not failures.
func TestE2EDuplicateExtrusions(t *testing.T) {
	app := testApp(t)
	result := app.Evaluate(`
(line "L1" 0 0 4 0)
(line "L2" 4 0 4 2)
(line "L3" 4 2 0 2)
(line "L4" 0 2 0 0)
(face "F1" "L1" "L2" "L3" "L4")
(extrude "F1" :height 1 :name "a")
(extrude "F1" :height 1 :name "b")
`)
	requireNoErrors(t, result.Errors)
	require.Len(t, result.Solids, 2)
	assert.True(t, result.Report.OK())
	assert.NotEmpty(t, result.Report.ByKind(topo.DuplicateName))
	assert.Equal(t, 2, tagsByKind(result, "face")["F1"])
	assert.Positive(t, result.Summary["duplicate"])
}

// TestE2ENegativeHeight extrudes against the plane normal.
func TestE2ENegativeHeight(t *testing.T) {
	app := testApp(t)
	result := app.Evaluate(`
(circle "C1" :center (vec2 0 0) :radius 3)
(face "F1" "C1")
(extrude "F1" :height -2 :name "down")
`)
	requireNoErrors(t, result.Errors)
	require.True(t, result.Report.OK(), spew.Sdump(result.Report.Anomalies))
	faces := tagsByKind(result, "face")
	assert.Equal(t, 1, faces["F1"])
	assert.Equal(t, 1, faces["F1.top"])
	assert.Equal(t, 1, faces["C1"])
}

// TestE2ERegions renders one preview mesh per sketch face.
func TestE2ERegions(t *testing.T) {
	app := testApp(t)
	result := app.Regions(`
(circle "C1" :center (vec2 0 0) :radius 5)
(face "A" "C1")
(line "L1" 20 0 30 0)
(line "L2" 30 0 30 10)
(line "L3" 30 10 20 10)
(line "L4" 20 10 20 0)
(face "B" "L1" "L2" "L3" "L4")
`)
	requireNoErrors(t, result.Errors)
	require.Len(t, result.Meshes, 2)

	for i, m := range result.Meshes {
		assert.NotEmpty(t, m.Vertices, "mesh %d", i)
		assert.NotEmpty(t, m.Normals, "mesh %d", i)
		assert.NotEmpty(t, m.Indices, "mesh %d", i)
		assert.Equal(t, colorPalette[i], m.Color)
	}
	assert.Equal(t, "region-0", result.Meshes[0].PartName)
	assert.Equal(t, "region-1", result.Meshes[1].PartName)
}

// TestE2ERegionsOverlapRejected reports overlapping faces as an error.
func TestE2ERegionsOverlapRejected(t *testing.T) {
	app := testApp(t)
	result := app.Regions(`
(circle "C1" :center (vec2 0 0) :radius 5)
(circle "C2" :center (vec2 3 0) :radius 5)
(face "A" "C1")
(face "B" "C2")
`)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0].Message, "overlap")
	assert.Empty(t, result.Meshes)
}

const diffBase = `
(line "L1" 0 0 10 0)
(line "L2" 10 0 10 5)
(line "L3" 10 5 0 5)
(line "L4" 0 5 0 0)
(face "F1" "L1" "L2" "L3" "L4")
(extrude "F1" :height 2 :name "s")
`

// TestE2EDiffStableUnderResize checks that resizing keeps every name.
func TestE2EDiffStableUnderResize(t *testing.T) {
	app := testApp(t)
	resized := `
(line "L1" 0 0 12 0)
(line "L2" 12 0 12 7)
(line "L3" 12 7 0 7)
(line "L4" 0 7 0 0)
(face "F1" "L1" "L2" "L3" "L4")
(extrude "F1" :height 4 :name "s")
`
	res := app.Diff(diffBase, resized)
	requireNoErrors(t, res.Errors)
	assert.Empty(t, res.Lost)
	assert.Empty(t, res.Gained)
	assert.Positive(t, res.Kept)
}

// TestE2EDiffRenamedCurve checks that renaming a curve swaps exactly the
// names derived from it.
func TestE2EDiffRenamedCurve(t *testing.T) {
	app := testApp(t)
	renamed := `
(line "L1" 0 0 10 0)
(line "L2" 10 0 10 5)
(line "TOP" 10 5 0 5)
(line "L4" 0 5 0 0)
(face "F1" "L1" "L2" "TOP" "L4")
(extrude "F1" :height 2 :name "s")
`
	res := app.Diff(diffBase, renamed)
	requireNoErrors(t, res.Errors)
	assert.Contains(t, res.Lost, "L3")
	assert.Contains(t, res.Gained, "TOP")
	assert.NotContains(t, res.Lost, "F1")
	assert.NotContains(t, res.Lost, "L1")
	for _, n := range res.Lost {
		assert.Contains(t, n, "L3")
	}
	for _, n := range res.Gained {
		assert.Contains(t, n, "TOP")
	}
}

// TestE2EDiffReportsErrors prefixes errors with the failing revision.
func TestE2EDiffReportsErrors(t *testing.T) {
	app := testApp(t)
	res := app.Diff(diffBase, `(line "L1"`)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0].Message, "new: ")
	assert.Empty(t, res.Lost)
	assert.Empty(t, res.Gained)
}
