package topo

import (
	"fmt"
	"sort"

	"github.com/chazu/toponame/pkg/kernel"
	"github.com/chazu/toponame/pkg/sketch"
)

// Severity indicates whether an anomaly left an element unnamed.
type Severity int

const (
	SeverityFatal   Severity = iota // element left untouched
	SeverityWarning                 // name still applied
)

func (s Severity) String() string {
	switch s {
	case SeverityFatal:
		return "fatal"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// AnomalyKind classifies reconstruction anomalies.
type AnomalyKind int

const (
	// ProjectionFailure: the projector returned nothing for the element.
	ProjectionFailure AnomalyKind = iota
	// NoCandidate: no sketch element lies within tolerance.
	NoCandidate
	// AmbiguousMatch: candidates were found but none passed verification.
	// The element is left without a matching sketch entity, like
	// NoCandidate, but is reported under this kind only. Callers looking
	// for unmatched elements should check both kinds, or use Fatal.
	AmbiguousMatch
	// DuplicateName: the computed name was already assigned in this pass.
	DuplicateName
	// MalformedProjection: a side face projected to other than one curve.
	MalformedProjection
	// DegenerateName: a composed name would include an untagged element.
	DegenerateName
)

var anomalyNames = [...]string{
	ProjectionFailure:   "ProjectionFailure",
	NoCandidate:         "NoCandidate",
	AmbiguousMatch:      "AmbiguousMatch",
	DuplicateName:       "DuplicateName",
	MalformedProjection: "MalformedProjection",
	DegenerateName:      "DegenerateName",
}

func (k AnomalyKind) String() string {
	if k >= 0 && int(k) < len(anomalyNames) {
		return anomalyNames[k]
	}
	return fmt.Sprintf("AnomalyKind(%d)", int(k))
}

// MarshalText renders the kind by name in JSON and YAML reports.
func (k AnomalyKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Severity returns the class of the anomaly kind.
func (k AnomalyKind) Severity() Severity {
	if k == DuplicateName {
		return SeverityWarning
	}
	return SeverityFatal
}

// ElementKind identifies the BRep element type an outcome refers to.
type ElementKind int

const (
	ElementFace ElementKind = iota
	ElementEdge
	ElementCoedge
)

func (k ElementKind) String() string {
	switch k {
	case ElementFace:
		return "face"
	case ElementEdge:
		return "edge"
	case ElementCoedge:
		return "coedge"
	default:
		return fmt.Sprintf("ElementKind(%d)", int(k))
	}
}

func (k ElementKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Anomaly is a single reconstruction finding.
type Anomaly struct {
	Kind        AnomalyKind      `json:"kind" yaml:"kind"`
	Element     kernel.ElementID `json:"element" yaml:"element"`
	ElementKind ElementKind      `json:"elementKind" yaml:"elementKind"`
	Message     string           `json:"message" yaml:"message"`
	Candidates  []sketch.ID      `json:"candidates,omitempty" yaml:"candidates,omitempty"`
}

func (a Anomaly) Error() string {
	return fmt.Sprintf("[%s] %s %s %s: %s", a.Kind.Severity(), a.Kind, a.ElementKind, a.Element, a.Message)
}

// Status is the outcome of naming one element.
type Status int

const (
	Assigned Status = iota
	DuplicateWarning
	Unmatched
)

func (s Status) String() string {
	switch s {
	case Assigned:
		return "assigned"
	case DuplicateWarning:
		return "duplicate"
	case Unmatched:
		return "unmatched"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Outcome records what happened to one element.
type Outcome struct {
	Element     kernel.ElementID `json:"element" yaml:"element"`
	ElementKind ElementKind      `json:"elementKind" yaml:"elementKind"`
	Status      Status           `json:"status" yaml:"status"`
	Tag         string           `json:"tag,omitempty" yaml:"tag,omitempty"`
}

// Report collects the outcome of every element and every anomaly of one
// reconstruction, in processing order.
type Report struct {
	Outcomes  []Outcome `json:"outcomes" yaml:"outcomes"`
	Anomalies []Anomaly `json:"anomalies" yaml:"anomalies"`
}

// Count returns the number of outcomes with status s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// CountKind returns the number of outcomes with status s for element kind k.
func (r *Report) CountKind(k ElementKind, s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.ElementKind == k && o.Status == s {
			n++
		}
	}
	return n
}

// Fatal returns the fatal-class anomalies.
func (r *Report) Fatal() []Anomaly {
	return r.bySeverity(SeverityFatal)
}

// Warnings returns the warning-class anomalies.
func (r *Report) Warnings() []Anomaly {
	return r.bySeverity(SeverityWarning)
}

// ByKind returns the anomalies of kind k.
func (r *Report) ByKind(k AnomalyKind) []Anomaly {
	var out []Anomaly
	for _, a := range r.Anomalies {
		if a.Kind == k {
			out = append(out, a)
		}
	}
	return out
}

// OK reports whether the reconstruction finished without fatal anomalies.
func (r *Report) OK() bool {
	return len(r.Fatal()) == 0
}

func (r *Report) bySeverity(s Severity) []Anomaly {
	var out []Anomaly
	for _, a := range r.Anomalies {
		if a.Kind.Severity() == s {
			out = append(out, a)
		}
	}
	return out
}

// Summary returns per-kind and per-status counts for display.
func (r *Report) Summary() map[string]int {
	m := map[string]int{
		Assigned.String():         r.Count(Assigned),
		DuplicateWarning.String(): r.Count(DuplicateWarning),
		Unmatched.String():        r.Count(Unmatched),
	}
	for _, a := range r.Anomalies {
		m[a.Kind.String()]++
	}
	return m
}

// ---------------------------------------------------------------------------
// Assignments
// ---------------------------------------------------------------------------

// Role describes how a BRep element relates to the sketch.
type Role string

const (
	RoleBottomFace  Role = "bottomface"
	RoleTopFace     Role = "topface"
	RoleSideFace    Role = "sideface"
	RoleProfileEdge Role = "profileedge"
	RoleSweepEdge   Role = "sweepedge"
)

// UserData is the payload attached to named faces and edges.
type UserData struct {
	SketchComponentID sketch.ID   `json:"sketchComponentId" yaml:"sketchComponentId"`
	SketchType        sketch.Kind `json:"sketchType" yaml:"sketchType"`
	Role              Role        `json:"roleType" yaml:"roleType"`
}

// Assignment is the name computed for one element.
type Assignment struct {
	Tag      string    `json:"tag" yaml:"tag"`
	UserData *UserData `json:"userData,omitempty" yaml:"userData,omitempty"`
}

// Result is the output of a reconstruction: the names to apply and the
// report explaining them. Assignments never contains unmatched elements.
type Result struct {
	Assignments map[kernel.ElementID]Assignment `json:"assignments" yaml:"assignments"`
	Report      Report                          `json:"report" yaml:"report"`
}

// Tag returns the tag assigned to id in this run.
func (r *Result) Tag(id kernel.ElementID) (string, bool) {
	a, ok := r.Assignments[id]
	return a.Tag, ok
}

// SortedIDs returns the assigned element ids in lexicographic order.
func (r *Result) SortedIDs() []kernel.ElementID {
	ids := make([]kernel.ElementID, 0, len(r.Assignments))
	for id := range r.Assignments {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Apply writes the assignments into every element of solids that
// implements kernel.Taggable. It returns the number of elements written.
func (r *Result) Apply(solids []kernel.Solid) int {
	n := 0
	write := func(el interface{ ID() kernel.ElementID }) {
		a, ok := r.Assignments[el.ID()]
		if !ok {
			return
		}
		tg, ok := el.(kernel.Taggable)
		if !ok {
			return
		}
		tg.SetTag(a.Tag)
		if a.UserData != nil {
			tg.SetUserData(*a.UserData)
		}
		n++
	}
	for _, s := range solids {
		for _, f := range s.Faces() {
			write(f)
			for _, c := range f.Coedges() {
				write(c)
			}
		}
		for _, e := range s.Edges() {
			write(e)
		}
	}
	return n
}
