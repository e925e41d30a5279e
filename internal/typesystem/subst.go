package typesystem

// Subst maps type variables to the types they resolved to. One solve session
// owns one substitution; a variable is bound at most once per session, so
// resolution always terminates (the solver's occurs check keeps a variable
// out of its own binding).
type Subst map[TypeVar]Type

// Walk resolves a top-level variable chain: while t is a bound variable,
// replace it with its binding. Composite structure is not descended into;
// use Apply for that.
func (s Subst) Walk(t Type) Type {
	var seen map[TypeVar]bool
	for {
		v, ok := t.(Var)
		if !ok {
			return t
		}
		bound, ok := s[v.ID]
		if !ok || seen[v.ID] {
			return t
		}
		if seen == nil {
			seen = make(map[TypeVar]bool)
		}
		seen[v.ID] = true
		t = bound
	}
}

// Apply resolves every bound variable in t, recursively, to a fixpoint.
// Unbound variables are left in place. Resolved unions are renormalized
// since substitution can collapse members.
func (s Subst) Apply(t Type) Type {
	return applySubst(t, s, nil)
}

func applySubst(t Type, s Subst, seen map[TypeVar]bool) Type {
	if len(s) == 0 {
		return t
	}
	switch t := t.(type) {
	case Var:
		bound, ok := s[t.ID]
		if !ok || seen[t.ID] {
			return t
		}
		next := make(map[TypeVar]bool, len(seen)+1)
		for k, v := range seen {
			next[k] = v
		}
		next[t.ID] = true
		return applySubst(bound, s, next)
	case List:
		return List{Elem: applySubst(t.Elem, s, seen)}
	case Dict:
		return Dict{
			Key:   applySubst(t.Key, s, seen),
			Value: applySubst(t.Value, s, seen),
		}
	case Tuple:
		return Tuple{Elems: applySlice(t.Elems, s, seen)}
	case Set:
		return Set{Elem: applySubst(t.Elem, s, seen)}
	case Func:
		return Func{
			Params: applySlice(t.Params, s, seen),
			Return: applySubst(t.Return, s, seen),
		}
	case Union:
		return UnionOf(applySlice(t.Members, s, seen)...)
	case Generic:
		return Generic{Name: t.Name, Params: applySlice(t.Params, s, seen)}
	default:
		// Basic and Named carry no sub-types.
		return t
	}
}

func applySlice(types []Type, s Subst, seen map[TypeVar]bool) []Type {
	out := make([]Type, len(types))
	for i, t := range types {
		out[i] = applySubst(t, s, seen)
	}
	return out
}
