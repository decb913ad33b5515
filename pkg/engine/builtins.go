package engine

import (
	"fmt"
	"strings"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/toponame/pkg/geom"
	"github.com/chazu/toponame/pkg/registry"
	"github.com/chazu/toponame/pkg/sketch"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec2 wraps an in-plane coordinate pair.
type sexpVec2 struct {
	vec v2.Vec
}

func (v *sexpVec2) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec2 %g %g)", v.vec.X, v.vec.Y)
}
func (v *sexpVec2) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps a world-space vector.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpRef is returned by the entity builtins so later forms can refer to an
// entity by value as well as by its id string.
type sexpRef struct {
	id   sketch.ID
	kind sketch.Kind
}

func (r *sexpRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s %q)", r.kind, r.id)
}
func (r *sexpRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// A keyword followed by another keyword, or by nothing, is a flag and maps
// to SexpNull.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			if _, next := isKW(args[i+1]); !next {
				result.kw[name] = args[i+1]
				i++
				continue
			}
		}
		result.kw[name] = zygo.SexpNull
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toBool reads a flag: SexpNull (bare keyword) is true.
func toBool(s zygo.Sexp) (bool, error) {
	switch v := s.(type) {
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return true, nil
		}
	}
	return false, fmt.Errorf("expected boolean, got %T (%s)", s, s.SexpString(nil))
}

// toID accepts an id string or an entity reference.
func toID(s zygo.Sexp) (sketch.ID, error) {
	switch v := s.(type) {
	case *sexpRef:
		return v.id, nil
	case *zygo.SexpStr:
		if v.S == "" {
			return "", fmt.Errorf("empty id")
		}
		return sketch.ID(v.S), nil
	}
	return "", fmt.Errorf("expected id string or entity, got %T (%s)", s, s.SexpString(nil))
}

func toIDs(items []zygo.Sexp) ([]sketch.ID, error) {
	ids := make([]sketch.ID, 0, len(items))
	for i, it := range items {
		id, err := toID(it)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// toVec2 extracts an in-plane point from a sexpVec2.
func toVec2(s zygo.Sexp) (registry.RawPoint, error) {
	if v, ok := s.(*sexpVec2); ok {
		return registry.RawPoint{X: v.vec.X, Y: v.vec.Y}, nil
	}
	return registry.RawPoint{}, fmt.Errorf("expected vec2, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a vector from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// numbers reads n positional numbers starting at args[from].
func numbers(fn string, args []zygo.Sexp, from, n int) ([]float64, error) {
	if len(args) != from+n {
		return nil, fmt.Errorf("%s requires exactly %d arguments, got %d", fn, from+n, len(args))
	}
	out := make([]float64, n)
	for i := range out {
		f, err := toFloat64(args[from+i])
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", fn, from+i+1, err)
		}
		out[i] = f
	}
	return out, nil
}

// requireKW fetches a mandatory keyword argument.
func requireKW(fn string, pa kwArgs, name string) (zygo.Sexp, error) {
	v, ok := pa.kw[name]
	if !ok {
		return nil, fmt.Errorf("%s requires :%s", fn, name)
	}
	return v, nil
}

// entityID reads the leading id argument every entity builtin takes.
func entityID(fn string, pa kwArgs) (sketch.ID, error) {
	if len(pa.positional) < 1 {
		return "", fmt.Errorf("%s requires an id as first argument", fn)
	}
	s, err := toString(pa.positional[0])
	if err != nil {
		return "", fmt.Errorf("%s: id: %w", fn, err)
	}
	if s == "" {
		return "", fmt.Errorf("%s: id must not be empty", fn)
	}
	return sketch.ID(s), nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the sketch DSL builtins into a zygomys
// environment. The builtins record declarations in st during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, st *state) {

	// -----------------------------------------------------------------------
	// (vec2 1 2) (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec2", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		f, err := numbers("vec2", args, 0, 2)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpVec2{vec: v2.Vec{X: f[0], Y: f[1]}}, nil
	})

	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		f, err := numbers("vec3", args, 0, 3)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpVec3{vec: v3.Vec{X: f[0], Y: f[1], Z: f[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (plane :origin (vec3 0 0 5) :normal (vec3 0 0 1))
	// -----------------------------------------------------------------------
	env.AddFunction("plane", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if st.b != nil {
			return zygo.SexpNull, fmt.Errorf("plane must come before any sketch entity")
		}
		pa := parseArgs(args)
		origin := v3.Vec{}
		normal := v3.Vec{Z: 1}
		if v, ok := pa.kw["origin"]; ok {
			o, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("plane: origin: %w", err)
			}
			origin = o
		}
		if v, ok := pa.kw["normal"]; ok {
			n, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("plane: normal: %w", err)
			}
			if n.Length() == 0 {
				return zygo.SexpNull, fmt.Errorf("plane: normal must not be zero")
			}
			normal = n
		}
		st.plane = geom.NewPlane(origin, normal)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (point "P1" 0 0)
	// -----------------------------------------------------------------------
	env.AddFunction("point", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		id, err := entityID("point", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		f, err := numbers("point", pa.positional, 1, 2)
		if err != nil {
			return zygo.SexpNull, err
		}
		if _, err := st.builder().Point(id, registry.RawPoint{X: f[0], Y: f[1]}); err != nil {
			return zygo.SexpNull, fmt.Errorf("point: %w", err)
		}
		return &sexpRef{id: id, kind: sketch.KindPoint}, nil
	})

	// -----------------------------------------------------------------------
	// (line "L1" 0 0 10 0)
	// -----------------------------------------------------------------------
	env.AddFunction("line", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		id, err := entityID("line", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		f, err := numbers("line", pa.positional, 1, 4)
		if err != nil {
			return zygo.SexpNull, err
		}
		from := registry.RawPoint{X: f[0], Y: f[1]}
		to := registry.RawPoint{X: f[2], Y: f[3]}
		if _, err := st.builder().Line(id, from, to); err != nil {
			return zygo.SexpNull, fmt.Errorf("line: %w", err)
		}
		return &sexpRef{id: id, kind: sketch.KindCurve}, nil
	})

	// -----------------------------------------------------------------------
	// (arc "A1" :from (vec2 1 0) :to (vec2 0 1) :center (vec2 0 0) :clockwise)
	// -----------------------------------------------------------------------
	env.AddFunction("arc", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		id, err := entityID("arc", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		var raw registry.RawCurve
		for _, k := range []struct {
			kw  string
			dst *registry.RawPoint
		}{{"from", &raw.From}, {"to", &raw.To}} {
			v, err := requireKW("arc", pa, k.kw)
			if err != nil {
				return zygo.SexpNull, err
			}
			if *k.dst, err = toVec2(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("arc: %s: %w", k.kw, err)
			}
		}
		v, err := requireKW("arc", pa, "center")
		if err != nil {
			return zygo.SexpNull, err
		}
		center, err := toVec2(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("arc: center: %w", err)
		}
		raw.Center = &center
		raw.Radius = center.Point().Dist(raw.From.Point())
		if v, ok := pa.kw["clockwise"]; ok {
			if raw.Clockwise, err = toBool(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("arc: clockwise: %w", err)
			}
		}
		if _, err := st.builder().Arc(id, raw); err != nil {
			return zygo.SexpNull, fmt.Errorf("arc: %w", err)
		}
		return &sexpRef{id: id, kind: sketch.KindCurve}, nil
	})

	// -----------------------------------------------------------------------
	// (circle "C1" :center (vec2 0 0) :radius 5)
	// -----------------------------------------------------------------------
	env.AddFunction("circle", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		id, err := entityID("circle", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		v, err := requireKW("circle", pa, "center")
		if err != nil {
			return zygo.SexpNull, err
		}
		center, err := toVec2(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("circle: center: %w", err)
		}
		v, err = requireKW("circle", pa, "radius")
		if err != nil {
			return zygo.SexpNull, err
		}
		r, err := toFloat64(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("circle: radius: %w", err)
		}
		if _, err := st.builder().Circle(id, center, r); err != nil {
			return zygo.SexpNull, fmt.Errorf("circle: %w", err)
		}
		return &sexpRef{id: id, kind: sketch.KindCurve}, nil
	})

	// -----------------------------------------------------------------------
	// (face "F1" "L1" "L2" "L3" "L4" :holes (list (list "C1")))
	// -----------------------------------------------------------------------
	env.AddFunction("face", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		id, err := entityID("face", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		outer, err := toIDs(pa.positional[1:])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("face: outer loop: %w", err)
		}
		var holes [][]sketch.ID
		if v, ok := pa.kw["holes"]; ok {
			loops, err := sexpListToSlice(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("face: holes: %w", err)
			}
			for i, l := range loops {
				items, err := sexpListToSlice(l)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("face: hole %d: %w", i, err)
				}
				ids, err := toIDs(items)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("face: hole %d: %w", i, err)
				}
				holes = append(holes, ids)
			}
		}
		if _, err := st.builder().Face(id, outer, holes...); err != nil {
			return zygo.SexpNull, fmt.Errorf("face: %w", err)
		}
		return &sexpRef{id: id, kind: sketch.KindFace}, nil
	})

	// -----------------------------------------------------------------------
	// (extrude "F1" :height 5 :name "block")
	// -----------------------------------------------------------------------
	env.AddFunction("extrude", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("extrude requires exactly one face")
		}
		face, err := toID(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("extrude: face: %w", err)
		}
		x := Extrusion{
			Face:   face,
			Height: st.height,
			Name:   fmt.Sprintf("solid%d", len(st.extrusions)+1),
		}
		if v, ok := pa.kw["height"]; ok {
			h, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("extrude: height: %w", err)
			}
			if h == 0 {
				return zygo.SexpNull, fmt.Errorf("extrude: height must not be zero")
			}
			x.Height = h
		}
		if v, ok := pa.kw["name"]; ok {
			s, err := toString(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("extrude: name: %w", err)
			}
			x.Name = s
		}
		st.extrusions = append(st.extrusions, x)
		return zygo.SexpNull, nil
	})
}
