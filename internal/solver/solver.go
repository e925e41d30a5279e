package solver

import (
	"github.com/omnitype/omnitype/internal/typesystem"
)

// Solver accumulates constraints and resolves them into a substitution.
// Equal constraints unify eagerly; Subtype constraints that still mention
// unbound variables are deferred and re-checked once the worklist drains.
type Solver struct {
	nextVar  uint32
	worklist []Constraint
	deferred []Constraint
	subst    typesystem.Subst
	strict   bool
}

// Option configures a Solver.
type Option func(*Solver)

// Lenient makes residual under-constrained subtype checks pass instead of
// failing the solve.
func Lenient() Option {
	return func(s *Solver) { s.strict = false }
}

// VarBase sets the id the next fresh variable is drawn from.
func VarBase(n uint32) Option {
	return func(s *Solver) { s.nextVar = n }
}

func New(opts ...Option) *Solver {
	s := &Solver{
		subst:  typesystem.Subst{},
		strict: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FreshVar returns a type variable unused by this solver.
func (s *Solver) FreshVar() typesystem.Var {
	v := typesystem.Var{ID: typesystem.TypeVar(s.nextVar)}
	s.nextVar++
	return v
}

// Add queues a constraint. Constraints added after a solve are picked up by
// the next Solve call.
func (s *Solver) Add(c Constraint) {
	s.worklist = append(s.worklist, c)
}

// Subst returns the substitution built so far. Callers must not mutate it
// while the solver is still in use.
func (s *Solver) Subst() typesystem.Subst {
	return s.subst
}

// Resolve applies the current substitution to t.
func (s *Solver) Resolve(t typesystem.Type) typesystem.Type {
	return s.subst.Apply(t)
}

// Solve drains the worklist in FIFO order. It stops at the first failure and
// returns the typed error; the substitution keeps whatever bindings were
// established before the failure.
func (s *Solver) Solve() *TypeError {
	for len(s.worklist) > 0 {
		c := s.worklist[0]
		s.worklist = s.worklist[1:]
		if err := s.step(c); err != nil {
			if err.Symbol == "" {
				err.Symbol = c.Symbol
			}
			return err
		}
	}
	// Deferred subtype checks run against the final substitution.
	pending := s.deferred
	s.deferred = nil
	for _, c := range pending {
		sub := s.subst.Apply(c.Left)
		super := s.subst.Apply(c.Right)
		if hasFreeVars(sub) || hasFreeVars(super) {
			if s.strict {
				err := errUnderConstrained(sub, super)
				err.Symbol = c.Symbol
				return err
			}
			continue
		}
		if !isSubtype(sub, super) {
			err := errMismatch(sub, super)
			err.Symbol = c.Symbol
			return err
		}
	}
	return nil
}

func (s *Solver) step(c Constraint) *TypeError {
	switch c.Kind {
	case KindEqual:
		return s.unify(c.Left, c.Right)
	case KindSubtype:
		sub := s.subst.Apply(c.Left)
		super := s.subst.Apply(c.Right)
		if hasFreeVars(sub) || hasFreeVars(super) {
			s.deferred = append(s.deferred, Constraint{
				Kind:   KindSubtype,
				Left:   sub,
				Right:  super,
				Symbol: c.Symbol,
			})
			return nil
		}
		if !isSubtype(sub, super) {
			return errMismatch(sub, super)
		}
		return nil
	case KindOccurs:
		if occursIn(c.Var, s.subst.Apply(c.Right)) {
			return errInfinite(c.Var, s.subst.Apply(c.Right))
		}
		return nil
	}
	return nil
}

func (s *Solver) unify(a, b typesystem.Type) *TypeError {
	a = s.subst.Apply(a)
	b = s.subst.Apply(b)

	if av, ok := a.(typesystem.Var); ok {
		return s.bind(av.ID, b)
	}
	if bv, ok := b.(typesystem.Var); ok {
		return s.bind(bv.ID, a)
	}

	switch at := a.(type) {
	case typesystem.Basic:
		if bt, ok := b.(typesystem.Basic); ok && typesystem.Equal(at, bt) {
			return nil
		}
	case typesystem.List:
		if bt, ok := b.(typesystem.List); ok {
			return s.unify(at.Elem, bt.Elem)
		}
	case typesystem.Set:
		if bt, ok := b.(typesystem.Set); ok {
			return s.unify(at.Elem, bt.Elem)
		}
	case typesystem.Dict:
		if bt, ok := b.(typesystem.Dict); ok {
			if err := s.unify(at.Key, bt.Key); err != nil {
				return err
			}
			return s.unify(at.Value, bt.Value)
		}
	case typesystem.Tuple:
		if bt, ok := b.(typesystem.Tuple); ok {
			if len(at.Elems) != len(bt.Elems) {
				return errMismatch(a, b)
			}
			for i := range at.Elems {
				if err := s.unify(at.Elems[i], bt.Elems[i]); err != nil {
					return err
				}
			}
			return nil
		}
	case typesystem.Func:
		if bt, ok := b.(typesystem.Func); ok {
			if len(at.Params) != len(bt.Params) {
				return errArity(a, b)
			}
			for i := range at.Params {
				if err := s.unify(at.Params[i], bt.Params[i]); err != nil {
					return err
				}
			}
			return s.unify(at.Return, bt.Return)
		}
	case typesystem.Union:
		if bt, ok := b.(typesystem.Union); ok {
			ac := typesystem.UnionOf(at.Members...)
			bc := typesystem.UnionOf(bt.Members...)
			if typesystem.Equal(ac, bc) {
				return nil
			}
			return errUnion(ac, bc)
		}
	case typesystem.Named:
		if bt, ok := b.(typesystem.Named); ok && at.Name == bt.Name {
			return nil
		}
	case typesystem.Generic:
		if bt, ok := b.(typesystem.Generic); ok && at.Name == bt.Name {
			if len(at.Params) != len(bt.Params) {
				return errMismatch(a, b)
			}
			for i := range at.Params {
				if err := s.unify(at.Params[i], bt.Params[i]); err != nil {
					return err
				}
			}
			return nil
		}
	}
	return errMismatch(a, b)
}

// bind records v := t, first resolving t against the current substitution
// and rejecting self-referential bindings.
func (s *Solver) bind(v typesystem.TypeVar, t typesystem.Type) *TypeError {
	resolved := s.subst.Apply(t)
	if tv, ok := resolved.(typesystem.Var); ok && tv.ID == v {
		return nil
	}
	if occursIn(v, resolved) {
		return errInfinite(v, resolved)
	}
	s.subst[v] = resolved
	return nil
}

func occursIn(v typesystem.TypeVar, t typesystem.Type) bool {
	for _, fv := range t.FreeTypeVars() {
		if fv == v {
			return true
		}
	}
	return false
}

func hasFreeVars(t typesystem.Type) bool {
	return len(t.FreeTypeVars()) > 0
}

// isSubtype decides sub <: super over fully ground types. Unknown is below
// everything, Any is above everything, containers are covariant and function
// parameters contravariant.
func isSubtype(sub, super typesystem.Type) bool {
	if typesystem.Equal(sub, super) {
		return true
	}
	if typesystem.Equal(sub, typesystem.Unknown) {
		return true
	}
	if typesystem.Equal(super, typesystem.Any) {
		return true
	}
	if su, ok := sub.(typesystem.Union); ok {
		for _, m := range su.Members {
			if !isSubtype(m, super) {
				return false
			}
		}
		return true
	}
	if pu, ok := super.(typesystem.Union); ok {
		for _, m := range pu.Members {
			if isSubtype(sub, m) {
				return true
			}
		}
		return false
	}
	switch st := sub.(type) {
	case typesystem.List:
		if pt, ok := super.(typesystem.List); ok {
			return isSubtype(st.Elem, pt.Elem)
		}
	case typesystem.Set:
		if pt, ok := super.(typesystem.Set); ok {
			return isSubtype(st.Elem, pt.Elem)
		}
	case typesystem.Dict:
		if pt, ok := super.(typesystem.Dict); ok {
			return isSubtype(st.Key, pt.Key) && isSubtype(st.Value, pt.Value)
		}
	case typesystem.Tuple:
		if pt, ok := super.(typesystem.Tuple); ok {
			if len(st.Elems) != len(pt.Elems) {
				return false
			}
			for i := range st.Elems {
				if !isSubtype(st.Elems[i], pt.Elems[i]) {
					return false
				}
			}
			return true
		}
	case typesystem.Func:
		if pt, ok := super.(typesystem.Func); ok {
			if len(st.Params) != len(pt.Params) {
				return false
			}
			for i := range st.Params {
				if !isSubtype(pt.Params[i], st.Params[i]) {
					return false
				}
			}
			return isSubtype(st.Return, pt.Return)
		}
	}
	return false
}
