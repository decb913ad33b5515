package main

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// ---------------------------------------------------------------------------
// 1. Empty editor: empty string -> no solids, no errors.
// ---------------------------------------------------------------------------

func TestE2EEmptySourceExtended(t *testing.T) {
	app := testApp(t)
	result := app.Evaluate("")

	if len(result.Errors) != 0 {
		t.Errorf("expected 0 errors for empty source, got %d", len(result.Errors))
	}
	// Ensure slices are non-nil (JSON should serialize as [] not null).
	if result.Errors == nil {
		t.Error("Errors should be non-nil empty slice, got nil")
	}
	if result.Solids == nil {
		t.Error("Solids should be non-nil empty slice, got nil")
	}
	if result.Tags == nil {
		t.Error("Tags should be non-nil empty slice, got nil")
	}

	regions := app.Regions("")
	if regions.Meshes == nil || regions.Errors == nil {
		t.Error("Regions slices should be non-nil for empty source")
	}
	if len(regions.Meshes) != 0 {
		t.Errorf("expected 0 meshes for empty source, got %d", len(regions.Meshes))
	}
}

// ---------------------------------------------------------------------------
// 2. Syntax errors: unmatched parens -> eval error, nothing extruded.
// ---------------------------------------------------------------------------

func TestE2ESyntaxErrorWithLineInfo(t *testing.T) {
	app := testApp(t)

	// Valid code on line 1, broken code on line 2 so line info is meaningful.
	source := "(line \"L1\" 0 0 1 0)\n(line \"L2\" 1 0"
	result := app.Evaluate(source)

	if len(result.Errors) == 0 {
		t.Fatal("expected at least one eval error for unmatched parens")
	}
	if len(result.Solids) != 0 {
		t.Errorf("expected 0 solids on syntax error, got %d", len(result.Solids))
	}
	e := result.Errors[0]
	if e.Message == "" {
		t.Error("syntax error should have a non-empty message")
	}
	t.Logf("syntax error: line=%d, col=%d, message=%q", e.Line, e.Col, e.Message)
}

func TestE2EUndefinedSymbol(t *testing.T) {
	app := testApp(t)
	result := app.Evaluate(`(line "L1" 0 0 width 0)`)

	if len(result.Errors) == 0 {
		t.Fatal("expected eval error for undefined symbol")
	}
}

// ---------------------------------------------------------------------------
// 3. Bad extrusion requests.
// ---------------------------------------------------------------------------

func TestE2EUndefinedFaceReference(t *testing.T) {
	app := testApp(t)
	result := app.Evaluate(`(extrude "NOPE" :height 2)`)

	if len(result.Errors) == 0 {
		t.Fatal("expected eval error for undefined face")
	}
	if !strings.Contains(result.Errors[0].Message, "NOPE") {
		t.Errorf("error should name the face, got %q", result.Errors[0].Message)
	}
}

func TestE2EZeroHeight(t *testing.T) {
	app := testApp(t)
	result := app.Evaluate(`
(circle "C1" :center (vec2 0 0) :radius 1)
(face "F1" "C1")
(extrude "F1" :height 0)
`)
	if len(result.Errors) == 0 {
		t.Fatal("expected eval error for zero height")
	}
	if len(result.Solids) != 0 {
		t.Errorf("expected 0 solids, got %d", len(result.Solids))
	}
}

func TestE2EOpenLoopFace(t *testing.T) {
	app := testApp(t)
	result := app.Evaluate(`
(line "L1" 0 0 1 0)
(line "L2" 1 0 1 1)
(face "F1" "L1" "L2")
`)
	if len(result.Errors) == 0 {
		t.Fatal("expected eval error for a face whose loop does not close")
	}
}

// ---------------------------------------------------------------------------
// 4. Rapid sequential evaluation.
// ---------------------------------------------------------------------------

func rectSource(w, h, height float64, name string) string {
	return fmt.Sprintf(`
(line "L1" 0 0 %[1]g 0)
(line "L2" %[1]g 0 %[1]g %[2]g)
(line "L3" %[1]g %[2]g 0 %[2]g)
(line "L4" 0 %[2]g 0 0)
(face "F1" "L1" "L2" "L3" "L4")
(extrude "F1" :height %[3]g :name %[4]q)
`, w, h, height, name)
}

func TestE2ERapidEvaluation(t *testing.T) {
	// Rapid sequential calls on the same App, as an editor would issue on
	// every keystroke. Calls run sequentially because zygomys sandbox
	// creation is not safe for concurrent use.
	app := testApp(t)

	sources := []string{
		rectSource(100, 50, 10, "a"),
		rectSource(200, 100, 20, "b"),
		`(+ 1 2)`,
		``,
		rectSource(300, 150, 30, "c"),
		`(+ 100 200)`,
		rectSource(400, 200, 18, "d"),
	}

	for i, source := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked: %v", i, r)
				}
			}()
			result := app.Evaluate(source)
			if len(result.Errors) > 0 {
				t.Errorf("iteration %d: unexpected errors %v", i, result.Errors)
			}
		}()
	}
}

func TestE2ERapidEvaluationAlternating(t *testing.T) {
	// Alternates between valid and invalid sources. The engine must recover
	// cleanly between error and success states.
	app := testApp(t)

	sources := []struct {
		source string
		ok     bool
	}{
		{rectSource(100, 50, 10, "ok"), true},
		{`(line "broken"`, false},
		{``, true},
		{`(extrude "missing")`, false},
		{rectSource(200, 100, 20, "also-ok"), true},
		{`;; just a comment`, true},
		{`(undefined-func 1 2 3)`, false},
		{rectSource(400, 200, 18, "last"), true},
	}

	for i, tc := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked on source %q: %v", i, tc.source, r)
				}
			}()
			result := app.Evaluate(tc.source)
			if got := len(result.Errors) == 0; got != tc.ok {
				t.Errorf("iteration %d: ok = %v, want %v (errors %v)", i, got, tc.ok, result.Errors)
			}
		}()
	}
}

// ---------------------------------------------------------------------------
// 5. Dimensions.
// ---------------------------------------------------------------------------

func TestE2ELargeDimensions(t *testing.T) {
	app := testApp(t)
	result := app.Evaluate(rectSource(10000, 5000, 2500, "big"))

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if !result.Report.OK() {
		t.Fatalf("unexpected fatal anomalies: %v", result.Report.Fatal())
	}
	if len(result.Tags) != 42 {
		t.Errorf("expected 42 tags, got %d", len(result.Tags))
	}
}

func TestE2EFloatingPointDimensions(t *testing.T) {
	app := testApp(t)
	result := app.Evaluate(rectSource(12.75, 3.125, 0.5, "thin"))

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if !result.Report.OK() {
		t.Fatalf("unexpected fatal anomalies: %v", result.Report.Fatal())
	}
}

// ---------------------------------------------------------------------------
// 6. Lisp features in sketch sources.
// ---------------------------------------------------------------------------

func TestE2ECommentsOnly(t *testing.T) {
	app := testApp(t)
	result := app.Evaluate(";; first comment\n;; second comment\n")

	if len(result.Errors) != 0 {
		t.Errorf("expected 0 errors for comments-only source, got %v", result.Errors)
	}
	if len(result.Solids) != 0 {
		t.Errorf("expected 0 solids, got %d", len(result.Solids))
	}
}

func TestE2EWhitespaceOnly(t *testing.T) {
	app := testApp(t)
	result := app.Evaluate("  \n\t\n   ")

	if len(result.Errors) != 0 {
		t.Errorf("expected 0 errors for whitespace-only source, got %v", result.Errors)
	}
}

func TestE2ENestedArithmeticDef(t *testing.T) {
	app := testApp(t)
	source := `
(def w 20.0)
(def half (/ w 2.0))
(def inset (+ half 1.0))
(line "L1" 0 0 w 0)
(line "L2" w 0 w inset)
(line "L3" w inset 0 inset)
(line "L4" 0 inset 0 0)
(face "F1" "L1" "L2" "L3" "L4")
(extrude "F1" :height (* 2.0 half) :name "computed")
`
	result := app.Evaluate(source)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Solids) != 1 || result.Solids[0].Name != "computed" {
		t.Fatalf("unexpected solids: %+v", result.Solids)
	}
}

// ---------------------------------------------------------------------------
// 7. Regions.
// ---------------------------------------------------------------------------

func TestE2EColorPaletteWrapping(t *testing.T) {
	app := testApp(t)

	// More faces than the palette has colors.
	var b strings.Builder
	for i := 0; i < len(colorPalette)+1; i++ {
		fmt.Fprintf(&b, "(circle \"C%d\" :center (vec2 %d 0) :radius 3)\n", i, i*10)
		fmt.Fprintf(&b, "(face \"F%d\" \"C%d\")\n", i, i)
	}
	result := app.Regions(b.String())

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Meshes) != len(colorPalette)+1 {
		t.Fatalf("expected %d meshes, got %d", len(colorPalette)+1, len(result.Meshes))
	}
	last := result.Meshes[len(result.Meshes)-1]
	if last.Color != colorPalette[0] {
		t.Errorf("palette should wrap: last color = %s, want %s", last.Color, colorPalette[0])
	}
}

// ---------------------------------------------------------------------------
// 8. Properties.
// ---------------------------------------------------------------------------

// Names of a rectangle prism depend on sketch identity, not on its size.
func TestE2ENamesIndependentOfSize(t *testing.T) {
	app := testApp(t)
	want := app.Evaluate(rectSource(10, 5, 2, "s")).Names()

	rapid.Check(t, func(rt *rapid.T) {
		w := rapid.Float64Range(0.5, 500).Draw(rt, "w")
		h := rapid.Float64Range(0.5, 500).Draw(rt, "h")
		height := rapid.Float64Range(0.1, 100).Draw(rt, "height")

		res := app.Evaluate(rectSource(w, h, height, "s"))
		if len(res.Errors) > 0 {
			rt.Fatalf("unexpected errors: %v", res.Errors)
		}
		if got := res.Names(); !reflect.DeepEqual(got, want) {
			rt.Fatalf("names = %v, want %v", got, want)
		}
	})
}
