package main

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/chazu/toponame/pkg/config"
	"github.com/chazu/toponame/pkg/diag"
	"github.com/chazu/toponame/pkg/engine"
	"github.com/chazu/toponame/pkg/kernel"
	"github.com/chazu/toponame/pkg/kernel/brep"
	"github.com/chazu/toponame/pkg/kernel/sdfx"
	"github.com/chazu/toponame/pkg/region"
	"github.com/chazu/toponame/pkg/registry"
	"github.com/chazu/toponame/pkg/tessellate"
	"github.com/chazu/toponame/pkg/topo"
)

// colorPalette is a default palette used to assign distinct colors to regions.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App runs the sketch pipeline: source, sketch, solids, names.
type App struct {
	cfg    config.Config
	log    *slog.Logger
	engine *engine.Engine
	recon  *topo.Reconstructor
	mesher tessellate.Mesher
}

// MeshData is the serializable mesh format of a region preview.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line" yaml:"line"`
	Col     int    `json:"col" yaml:"col"`
	Message string `json:"message" yaml:"message"`
}

// SolidData summarizes one extruded solid.
type SolidData struct {
	Name    string `json:"name" yaml:"name"`
	Face    string `json:"face" yaml:"face"`
	Faces   int    `json:"faces" yaml:"faces"`
	Edges   int    `json:"edges" yaml:"edges"`
	Coedges int    `json:"coedges" yaml:"coedges"`
}

// TagEntry is the name written to one BRep element.
type TagEntry struct {
	Element  kernel.ElementID `json:"element" yaml:"element"`
	Kind     string           `json:"kind" yaml:"kind"`
	Tag      string           `json:"tag" yaml:"tag"`
	UserData *topo.UserData   `json:"userData,omitempty" yaml:"userData,omitempty"`
}

// EvalResult is the full result of one evaluation.
type EvalResult struct {
	Errors  []EvalErrorData `json:"errors" yaml:"errors"`
	Solids  []SolidData     `json:"solids" yaml:"solids"`
	Tags    []TagEntry      `json:"tags" yaml:"tags"`
	Report  *topo.Report    `json:"report,omitempty" yaml:"report,omitempty"`
	Summary map[string]int  `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// RegionsResult is the result of rendering a source's sketch faces.
type RegionsResult struct {
	Errors []EvalErrorData `json:"errors"`
	Meshes []MeshData      `json:"meshes"`
}

// DiffResult lists the names that disappeared and appeared between two
// revisions of a source.
type DiffResult struct {
	Errors []EvalErrorData `json:"errors" yaml:"errors"`
	Lost   []string        `json:"lost" yaml:"lost"`
	Gained []string        `json:"gained" yaml:"gained"`
	Kept   int             `json:"kept" yaml:"kept"`
}

// NewApp creates an App from cfg. A nil logger discards output.
func NewApp(cfg config.Config, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &App{
		cfg:    cfg,
		log:    logger,
		engine: engine.NewEngine(cfg.EngineOptions()...),
		recon: topo.New(
			topo.WithSink(diag.NewLogger(logger)),
			topo.WithLogger(logger),
		),
		mesher: &sdfx.Mesher{Cells: cfg.Mesh.Cells},
	}
}

// Evaluate runs the pipeline on source with a background context.
func (a *App) Evaluate(source string) EvalResult {
	return a.EvaluateContext(context.Background(), source)
}

// EvaluateContext evaluates source, extrudes every requested face,
// reconstructs names for the resulting solids and applies them.
func (a *App) EvaluateContext(ctx context.Context, source string) EvalResult {
	result := EvalResult{
		Errors: []EvalErrorData{},
		Solids: []SolidData{},
		Tags:   []TagEntry{},
	}

	prog, errs := a.program(source)
	if len(errs) > 0 {
		result.Errors = errs
		return result
	}

	solids := make([]kernel.Solid, 0, len(prog.Extrusions))
	breps := make([]*brep.Solid, 0, len(prog.Extrusions))
	for _, x := range prog.Extrusions {
		s, err := brep.Extrude(prog.Sketch, x.Face, x.Height, x.Name)
		if err != nil {
			result.Errors = append(result.Errors, EvalErrorData{Message: "extrusion failed: " + err.Error()})
			return result
		}
		solids = append(solids, s)
		breps = append(breps, s)
		result.Solids = append(result.Solids, SolidData{
			Name:    s.Name,
			Face:    string(x.Face),
			Faces:   len(s.Faces()),
			Edges:   len(s.Edges()),
			Coedges: len(s.AllCoedges()),
		})
	}

	res := a.recon.Reconstruct(ctx, solids, prog.Sketch, a.cfg.Tolerances())
	n := res.Apply(solids)
	a.log.Debug("names applied", "elements", n, "solids", len(solids))

	for _, s := range breps {
		result.Tags = append(result.Tags, tagsOf(s)...)
	}
	result.Report = &res.Report
	result.Summary = res.Report.Summary()
	return result
}

// program evaluates source, turning fatal and non-fatal engine failures into
// error data.
func (a *App) program(source string) (*engine.Program, []EvalErrorData) {
	prog, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		a.log.Error("evaluate fatal error", "err", err)
		return nil, []EvalErrorData{{Message: err.Error()}}
	}
	if len(evalErrs) > 0 {
		out := make([]EvalErrorData, len(evalErrs))
		for i, e := range evalErrs {
			out[i] = EvalErrorData{Line: e.Line, Col: e.Col, Message: e.Message}
		}
		return nil, out
	}
	return prog, nil
}

// tagsOf lists the current kernel tags of s in enumeration order: faces,
// each followed by its coedges, then edges. Untagged elements are skipped.
func tagsOf(s *brep.Solid) []TagEntry {
	var out []TagEntry
	add := func(id kernel.ElementID, kind topo.ElementKind, tag string, data any) {
		if tag == "" {
			return
		}
		e := TagEntry{Element: id, Kind: kind.String(), Tag: tag}
		if ud, ok := data.(topo.UserData); ok {
			e.UserData = &ud
		}
		out = append(out, e)
	}
	for i := range s.Faces() {
		f := s.Face(i)
		add(f.ID(), topo.ElementFace, f.Tag(), f.UserData())
		for _, c := range f.Coedges() {
			add(c.ID(), topo.ElementCoedge, c.Tag(), nil)
		}
	}
	for i := range s.Edges() {
		e := s.Edge(i)
		add(e.ID(), topo.ElementEdge, e.Tag(), e.UserData())
	}
	return out
}

// Names returns the sorted, distinct tags of an evaluation.
func (r EvalResult) Names() []string {
	seen := make(map[string]bool, len(r.Tags))
	var names []string
	for _, t := range r.Tags {
		if !seen[t.Tag] {
			seen[t.Tag] = true
			names = append(names, t.Tag)
		}
	}
	sort.Strings(names)
	return names
}

// Diff evaluates two revisions of a source and compares their names line
// by line.
func (a *App) Diff(oldSource, newSource string) DiffResult {
	result := DiffResult{Errors: []EvalErrorData{}, Lost: []string{}, Gained: []string{}}

	before := a.Evaluate(oldSource)
	after := a.Evaluate(newSource)
	for _, e := range before.Errors {
		result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: "old: " + e.Message})
	}
	for _, e := range after.Errors {
		result.Errors = append(result.Errors, EvalErrorData{Line: e.Line, Col: e.Col, Message: "new: " + e.Message})
	}
	if len(result.Errors) > 0 {
		return result
	}

	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(listing(before.Names()), listing(after.Names()))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)
	for _, d := range diffs {
		names := strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n")
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			result.Lost = append(result.Lost, names...)
		case diffmatchpatch.DiffInsert:
			result.Gained = append(result.Gained, names...)
		case diffmatchpatch.DiffEqual:
			result.Kept += len(names)
		}
	}
	return result
}

func listing(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return strings.Join(names, "\n") + "\n"
}

// Regions renders the sketch faces of source as preview meshes. Faces are
// merged with a disjoint union; overlapping faces are reported as an error.
func (a *App) Regions(source string) RegionsResult {
	result := RegionsResult{Errors: []EvalErrorData{}, Meshes: []MeshData{}}

	prog, errs := a.program(source)
	if len(errs) > 0 {
		result.Errors = errs
		return result
	}

	shapes := make([][]region.Path, 0, len(prog.Sketch.Faces))
	for _, f := range prog.Sketch.Faces {
		p, err := f.Path()
		if err != nil {
			result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
			return result
		}
		shapes = append(shapes, []region.Path{p})
	}

	b := region.NewBuilder(registry.New(a.cfg.Tolerance.Point), region.DisjointUnion{})
	regions, err := b.MergeRegions(shapes)
	if err != nil {
		result.Errors = append(result.Errors, EvalErrorData{Message: fmt.Sprintf("region merge failed: %v", err)})
		return result
	}

	meshes, err := tessellate.Regions(regions, a.cfg.Mesh.Height, a.mesher)
	if err != nil {
		a.log.Error("tessellate error", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: "tessellation failed: " + err.Error()})
		return result
	}

	for i, m := range meshes {
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: m.PartName,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}
	return result
}
