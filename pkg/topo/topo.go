// Package topo recovers the correspondence between the BRep elements of
// solids and the sketch they were generated from, and composes stable
// topological names for them.
//
// Reconstruction runs three strictly ordered passes over a batch of solids:
// faces first, then edges (whose names are built from the adjacent face
// names), then coedges (built from face and edge names). The engine never
// writes to kernel objects; it returns a Result whose assignments the caller
// can apply with Result.Apply.
//
// Anomalies never abort a batch. An element that cannot be matched is left
// out of the assignments and recorded in the report; processing continues
// with the next element.
package topo

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/chazu/toponame/pkg/curvematch"
	"github.com/chazu/toponame/pkg/diag"
	"github.com/chazu/toponame/pkg/geom"
	"github.com/chazu/toponame/pkg/kernel"
	"github.com/chazu/toponame/pkg/project"
	"github.com/chazu/toponame/pkg/sketch"
)

// TopSuffix is appended to the sketch face id when naming the cap face of a
// solid that lies parallel to the sketch plane but off it.
const TopSuffix = ".top"

const tracerName = "github.com/chazu/toponame/pkg/topo"

// Tolerances configures the geometric comparisons of a reconstruction.
type Tolerances struct {
	// Point is the distance under which two points are the same.
	Point float64
	// FaceCenter bounds the distance between bounding-box centers of a
	// projected face and a sketch face for the sketch face to be a candidate.
	// It is looser than Point because extruded bounds drift from the sketch.
	FaceCenter float64
}

// DefaultTolerances returns the package default tolerances.
func DefaultTolerances() Tolerances {
	return Tolerances{Point: geom.DefaultPointTolerance, FaceCenter: geom.DefaultFaceCenterTolerance}
}

func (t Tolerances) withDefaults() Tolerances {
	d := DefaultTolerances()
	if t.Point <= 0 {
		t.Point = d.Point
	}
	if t.FaceCenter <= 0 {
		t.FaceCenter = d.FaceCenter
	}
	return t
}

// CurveMatcher finds the sketch curve a projected curve corresponds to.
type CurveMatcher interface {
	Match(c geom.Curve2D, pool []*sketch.Curve) *sketch.Curve
}

// Option configures a Reconstructor.
type Option func(*Reconstructor)

// WithProjector replaces the planar projector.
func WithProjector(p project.Projector) Option {
	return func(r *Reconstructor) { r.projector = p }
}

// WithMatcher replaces the curve matcher.
func WithMatcher(m CurveMatcher) Option {
	return func(r *Reconstructor) { r.matcher = m }
}

// WithSink sets the diagnostics sink anomalies are reported to.
func WithSink(s diag.Sink) Option {
	return func(r *Reconstructor) { r.sink = s }
}

// WithTracer sets the tracer used for pass spans.
func WithTracer(t trace.Tracer) Option {
	return func(r *Reconstructor) { r.tracer = t }
}

// WithLogger sets the logger used for pass summaries at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reconstructor) { r.log = l }
}

// Reconstructor runs reconstructions. Its collaborators are fixed at
// construction; per-call state lives in each Reconstruct call, so one
// Reconstructor may serve sequential calls over unrelated solids.
type Reconstructor struct {
	projector project.Projector
	matcher   CurveMatcher
	sink      diag.Sink
	tracer    trace.Tracer
	log       *slog.Logger
}

// New returns a Reconstructor. Without options it projects orthogonally,
// matches curves with curvematch at the call's point tolerance, discards
// diagnostics and traces through the global provider.
func New(opts ...Option) *Reconstructor {
	r := &Reconstructor{sink: diag.Nop}
	for _, o := range opts {
		o(r)
	}
	if r.tracer == nil {
		r.tracer = otel.Tracer(tracerName)
	}
	if r.log == nil {
		r.log = slog.New(slog.DiscardHandler)
	}
	return r
}

// Reconstruct names a batch of solids with a default Reconstructor.
func Reconstruct(ctx context.Context, solids []kernel.Solid, sk *sketch.Sketch, tol Tolerances) *Result {
	return New().Reconstruct(ctx, solids, sk, tol)
}

// Reconstruct names every face, edge and coedge of solids against sk.
// It panics if sk is nil.
func (r *Reconstructor) Reconstruct(ctx context.Context, solids []kernel.Solid, sk *sketch.Sketch, tol Tolerances) *Result {
	if sk == nil {
		panic("topo: Reconstruct called with a nil sketch")
	}
	tol = tol.withDefaults()

	ctx, span := r.tracer.Start(ctx, "topo.reconstruct")
	defer span.End()

	x := &run{
		r:     r,
		sk:    sk,
		tol:   tol,
		proj:  r.projector,
		match: r.matcher,
		res:   &Result{Assignments: make(map[kernel.ElementID]Assignment)},
	}
	if x.proj == nil {
		x.proj = project.Planar{Tolerance: tol.Point}
	}
	if x.match == nil {
		x.match = curvematch.New(tol.Point)
	}

	x.pass(ctx, "topo.faces", func() { x.faces(solids) })
	x.pass(ctx, "topo.edges", func() { x.edges(solids) })
	x.pass(ctx, "topo.coedges", func() { x.coedges(solids) })

	rep := &x.res.Report
	span.SetAttributes(
		attribute.Int("solids", len(solids)),
		attribute.Int("assigned", rep.Count(Assigned)),
		attribute.Int("duplicates", rep.Count(DuplicateWarning)),
		attribute.Int("unmatched", rep.Count(Unmatched)),
	)
	return x.res
}

// ---------------------------------------------------------------------------
// Per-call state
// ---------------------------------------------------------------------------

// element is the part of the kernel element interfaces naming needs.
type element interface {
	ID() kernel.ElementID
	Tag() string
}

type run struct {
	r     *Reconstructor
	sk    *sketch.Sketch
	tol   Tolerances
	proj  project.Projector
	match CurveMatcher
	res   *Result
}

func (x *run) pass(ctx context.Context, name string, fn func()) {
	_, span := x.r.tracer.Start(ctx, name)
	defer span.End()

	outcomes, anomalies := len(x.res.Report.Outcomes), len(x.res.Report.Anomalies)
	fn()
	n := len(x.res.Report.Outcomes) - outcomes
	a := len(x.res.Report.Anomalies) - anomalies
	span.SetAttributes(attribute.Int("elements", n), attribute.Int("anomalies", a))
	x.r.log.Debug("pass complete", "pass", name, "elements", n, "anomalies", a)
}

// tagOf returns the effective tag of el: the tag assigned in this run, or
// the element's current kernel tag.
func (x *run) tagOf(el element) string {
	if a, ok := x.res.Assignments[el.ID()]; ok {
		return a.Tag
	}
	return el.Tag()
}

func (x *run) assign(el element, kind ElementKind, tag string, ud *UserData, names nameSet) {
	status := Assigned
	if names != nil && !names.add(tag) {
		status = DuplicateWarning
		x.report(Anomaly{
			Kind:        DuplicateName,
			Element:     el.ID(),
			ElementKind: kind,
			Message:     "name " + tag + " already assigned in this pass",
		})
	}
	x.res.Assignments[el.ID()] = Assignment{Tag: tag, UserData: ud}
	x.res.Report.Outcomes = append(x.res.Report.Outcomes, Outcome{
		Element:     el.ID(),
		ElementKind: kind,
		Status:      status,
		Tag:         tag,
	})
}

func (x *run) unmatched(el element, kind ElementKind, ak AnomalyKind, msg string, candidates []sketch.ID) {
	x.report(Anomaly{
		Kind:        ak,
		Element:     el.ID(),
		ElementKind: kind,
		Message:     msg,
		Candidates:  candidates,
	})
	x.res.Report.Outcomes = append(x.res.Report.Outcomes, Outcome{
		Element:     el.ID(),
		ElementKind: kind,
		Status:      Unmatched,
	})
}

func (x *run) report(a Anomaly) {
	x.res.Report.Anomalies = append(x.res.Report.Anomalies, a)
	attrs := []slog.Attr{
		slog.String("kind", a.Kind.String()),
		slog.String("element", string(a.Element)),
		slog.String("elementKind", a.ElementKind.String()),
	}
	if len(a.Candidates) > 0 {
		attrs = append(attrs, slog.Any("candidates", a.Candidates))
	}
	if a.Kind.Severity() == SeverityWarning {
		x.r.sink.Warn(a.Message, attrs...)
		return
	}
	x.r.sink.Fail(a.Message, attrs...)
}
