// Package engine provides the Lisp evaluation engine for sketch sources.
// It wraps zygomys in a sandboxed environment and produces a Program: a
// finalized sketch plus the extrusions the source requests.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/toponame/pkg/geom"
	"github.com/chazu/toponame/pkg/sketch"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Extrusion is a request to sweep a sketch face along the plane normal.
type Extrusion struct {
	Face   sketch.ID
	Height float64
	Name   string
}

// Program is the result of evaluating a sketch source.
type Program struct {
	Sketch     *sketch.Sketch
	Extrusions []Extrusion
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout overrides EvalTimeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithTolerance sets the point tolerance of the sketch registry.
func WithTolerance(tol float64) Option {
	return func(e *Engine) { e.tolerance = tol }
}

// WithDefaultHeight sets the height of extrusions that do not give one.
func WithDefaultHeight(h float64) Option {
	return func(e *Engine) { e.height = h }
}

// Engine wraps the zygomys interpreter for sketch evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	timeout   time.Duration
	tolerance float64
	height    float64
}

// NewEngine creates a new Engine instance.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		timeout:   EvalTimeout,
		tolerance: geom.DefaultPointTolerance,
		height:    DefaultHeight,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Evaluate takes Lisp source code and produces a new Program.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns program + nil errors + nil error
//   - On parse/eval failure: returns nil program + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*Program, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		p, evalErrs, err := e.evaluate(source)
		ch <- evalResult{program: p, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, e.timeout, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*Program, []EvalError, error) {
	st := newState(e.tolerance, e.height)

	// Empty source is a valid program that produces an empty sketch.
	if strings.TrimSpace(source) == "" {
		return st.finish()
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, st)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err), nil
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err), nil
	}
	return st.finish()
}

// state accumulates sketch declarations while the source runs.
type state struct {
	tolerance  float64
	height     float64
	plane      geom.Plane
	b          *sketch.Builder
	extrusions []Extrusion
}

func newState(tol, height float64) *state {
	return &state{tolerance: tol, height: height, plane: geom.XYPlane()}
}

// builder returns the sketch builder, starting it on the current plane the
// first time an entity is declared.
func (s *state) builder() *sketch.Builder {
	if s.b == nil {
		s.b = sketch.NewBuilder(s.plane, s.tolerance)
	}
	return s.b
}

// finish builds the sketch and checks every extrusion names one of its faces.
func (s *state) finish() (*Program, []EvalError, error) {
	sk, err := s.builder().Build()
	if err != nil {
		return nil, []EvalError{{Message: err.Error()}}, nil
	}
	var errs []EvalError
	names := make(map[string]bool, len(s.extrusions))
	for _, x := range s.extrusions {
		if sk.Face(x.Face) == nil {
			errs = append(errs, EvalError{Message: fmt.Sprintf("extrude: no face named %q", x.Face)})
		}
		if names[x.Name] {
			errs = append(errs, EvalError{Message: fmt.Sprintf("extrude: solid name %q used twice", x.Name)})
		}
		names[x.Name] = true
	}
	if len(errs) > 0 {
		return nil, errs, nil
	}
	return &Program{Sketch: sk, Extrusions: s.extrusions}, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values,
// extracting a line number when the message carries one.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
