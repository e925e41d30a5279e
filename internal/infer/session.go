package infer

import (
	"github.com/google/uuid"

	"github.com/omnitype/omnitype/internal/solver"
	"github.com/omnitype/omnitype/internal/typesystem"
)

// Session accumulates declared and observed types for a unit of analysis
// (usually one source file or one traced run) and resolves them through the
// constraint solver.
type Session struct {
	ID string

	env      *typesystem.TypeEnv
	solver   *solver.Solver
	declared map[string]typesystem.Type
	calls    map[string]map[int]*callShape
}

// callShape merges repeated observations of calls with the same arity.
type callShape struct {
	params []typesystem.Type
	ret    typesystem.Type
	count  int
}

// Option configures a Session.
type Option func(*sessionConfig)

type sessionConfig struct {
	solverOpts []solver.Option
}

// WithVarBase sets the first fresh variable id the session hands out.
func WithVarBase(n uint32) Option {
	return func(c *sessionConfig) {
		c.solverOpts = append(c.solverOpts, solver.VarBase(n))
	}
}

// WithLenient lets under-constrained subtype checks pass at resolve time.
func WithLenient() Option {
	return func(c *sessionConfig) {
		c.solverOpts = append(c.solverOpts, solver.Lenient())
	}
}

func NewSession(opts ...Option) *Session {
	var cfg sessionConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Session{
		ID:       uuid.NewString(),
		env:      typesystem.NewTypeEnv(),
		solver:   solver.New(cfg.solverOpts...),
		declared: map[string]typesystem.Type{},
		calls:    map[string]map[int]*callShape{},
	}
}

// Env exposes the session's type environment.
func (s *Session) Env() *typesystem.TypeEnv { return s.env }

// FreshVar returns a type variable unused by this session.
func (s *Session) FreshVar() typesystem.Var { return s.solver.FreshVar() }

// Declare records an annotated type for name. Later observations of the
// same name are checked against it at resolve time.
func (s *Session) Declare(name string, t typesystem.Type) {
	s.declared[name] = t
	s.env.Bind(name, t)
}

// ObserveVar folds a runtime observation of name into the environment.
// Repeated observations widen the binding to a union.
func (s *Session) ObserveVar(name string, t typesystem.Type) typesystem.Type {
	return s.env.Observe(name, t)
}

// ObserveCall folds one observed invocation of fn into the per-arity call
// shape: argument types merge position-wise, return types merge into a
// union.
func (s *Session) ObserveCall(fn string, args []typesystem.Type, ret typesystem.Type) {
	shapes, ok := s.calls[fn]
	if !ok {
		shapes = map[int]*callShape{}
		s.calls[fn] = shapes
	}
	shape, ok := shapes[len(args)]
	if !ok {
		shape = &callShape{
			params: append([]typesystem.Type(nil), args...),
			ret:    ret,
			count:  1,
		}
		shapes[len(args)] = shape
		return
	}
	for i, a := range args {
		shape.params[i] = typesystem.UnionOf(shape.params[i], a)
	}
	shape.ret = typesystem.UnionOf(shape.ret, ret)
	shape.count++
}

// CallCount reports how many invocations of fn were observed.
func (s *Session) CallCount(fn string) int {
	n := 0
	for _, shape := range s.calls[fn] {
		n += shape.count
	}
	return n
}

// FunctionType returns the merged call shape of fn as a function type. When
// the function was called with more than one arity the result is a union of
// one function type per arity.
func (s *Session) FunctionType(fn string) (typesystem.Type, bool) {
	shapes, ok := s.calls[fn]
	if !ok || len(shapes) == 0 {
		return nil, false
	}
	funcs := make([]typesystem.Type, 0, len(shapes))
	for _, shape := range shapes {
		funcs = append(funcs, typesystem.Func{
			Params: append([]typesystem.Type(nil), shape.params...),
			Return: shape.ret,
		})
	}
	return typesystem.UnionOf(funcs...), true
}

// Constrain queues an extra constraint for the next Resolve.
func (s *Session) Constrain(c solver.Constraint) {
	s.solver.Add(c)
}

// Resolve checks every observation against its declaration, solves the
// accumulated constraints, and returns the final binding for each known
// name with any still-unbound variables masked to Unknown. On failure the
// typed error names the offending symbol.
func (s *Session) Resolve() (map[string]typesystem.Type, *solver.TypeError) {
	for name, decl := range s.declared {
		observed, ok := s.env.Lookup(name)
		if !ok || typesystem.Equal(observed, decl) {
			continue
		}
		s.solver.Add(solver.Subtype(observed, decl).At(name))
	}
	for fn, shapes := range s.calls {
		decl, ok := s.declared[fn]
		if !ok {
			continue
		}
		for _, shape := range shapes {
			observed := typesystem.Func{
				Params: append([]typesystem.Type(nil), shape.params...),
				Return: shape.ret,
			}
			s.solver.Add(solver.Subtype(observed, decl).At(fn))
		}
	}
	if err := s.solver.Solve(); err != nil {
		return nil, err
	}

	out := map[string]typesystem.Type{}
	for _, name := range s.env.Names() {
		t, _ := s.env.Lookup(name)
		out[name] = maskUnknown(s.solver.Resolve(t))
	}
	for fn := range s.calls {
		if _, seen := out[fn]; seen {
			continue
		}
		if ft, ok := s.FunctionType(fn); ok {
			out[fn] = maskUnknown(s.solver.Resolve(ft))
		}
	}
	return out, nil
}

// maskUnknown replaces every remaining type variable in t with Unknown.
func maskUnknown(t typesystem.Type) typesystem.Type {
	free := t.FreeTypeVars()
	if len(free) == 0 {
		return t
	}
	mask := typesystem.Subst{}
	for _, v := range free {
		mask[v] = typesystem.Unknown
	}
	return mask.Apply(t)
}
