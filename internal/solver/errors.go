package solver

import (
	"fmt"

	"github.com/omnitype/omnitype/internal/typesystem"
)

// ErrorKind classifies solve failures.
type ErrorKind int

const (
	// Mismatch: two concrete types cannot unify or are not in the subtype
	// relation.
	Mismatch ErrorKind = iota
	// ArityMismatch: function parameter counts differ.
	ArityMismatch
	// InfiniteType: the occurs check rejected a self-referential binding.
	InfiniteType
	// UnionMismatch: two canonical unions differ.
	UnionMismatch
	// UnderConstrained: a subtype constraint still contained unbound
	// variables at the end of solving (strict policy).
	UnderConstrained
)

func (k ErrorKind) String() string {
	switch k {
	case Mismatch:
		return "Mismatch"
	case ArityMismatch:
		return "ArityMismatch"
	case InfiniteType:
		return "InfiniteType"
	case UnionMismatch:
		return "UnionMismatch"
	case UnderConstrained:
		return "UnderConstrained"
	}
	return "Unknown"
}

// TypeError is the typed failure result of a solve. Left and Right carry the
// canonical renderings of the two types involved; Var is set for
// InfiniteType; Symbol is whatever context the caller attached to the
// failing constraint.
type TypeError struct {
	Kind   ErrorKind
	Left   string
	Right  string
	Var    typesystem.TypeVar
	Symbol string
}

func (e *TypeError) Error() string {
	msg := ""
	switch e.Kind {
	case ArityMismatch:
		msg = fmt.Sprintf("arity mismatch: %s vs %s", e.Left, e.Right)
	case InfiniteType:
		msg = fmt.Sprintf("infinite type: %s occurs in %s", e.Var, e.Right)
	case UnionMismatch:
		msg = fmt.Sprintf("union mismatch: %s vs %s", e.Left, e.Right)
	case UnderConstrained:
		msg = fmt.Sprintf("under-constrained: cannot decide %s <: %s", e.Left, e.Right)
	default:
		msg = fmt.Sprintf("type mismatch: %s vs %s", e.Left, e.Right)
	}
	if e.Symbol != "" {
		return e.Symbol + ": " + msg
	}
	return msg
}

func errMismatch(a, b typesystem.Type) *TypeError {
	return &TypeError{Kind: Mismatch, Left: a.String(), Right: b.String()}
}

func errArity(a, b typesystem.Type) *TypeError {
	return &TypeError{Kind: ArityMismatch, Left: a.String(), Right: b.String()}
}

func errInfinite(v typesystem.TypeVar, t typesystem.Type) *TypeError {
	return &TypeError{
		Kind:  InfiniteType,
		Var:   v,
		Left:  typesystem.Var{ID: v}.String(),
		Right: t.String(),
	}
}

func errUnion(a, b typesystem.Type) *TypeError {
	return &TypeError{Kind: UnionMismatch, Left: a.String(), Right: b.String()}
}

func errUnderConstrained(a, b typesystem.Type) *TypeError {
	return &TypeError{Kind: UnderConstrained, Left: a.String(), Right: b.String()}
}
