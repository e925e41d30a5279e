package solver

import "github.com/omnitype/omnitype/internal/typesystem"

// Kind discriminates the constraint forms the solver understands.
type Kind int

const (
	// KindEqual requires the two sides to unify: T1 = T2.
	KindEqual Kind = iota
	// KindSubtype requires the left side to be usable where the right side
	// is expected: T1 <: T2.
	KindSubtype
	// KindOccurs requires that the variable not appear inside the type.
	KindOccurs
)

func (k Kind) String() string {
	switch k {
	case KindEqual:
		return "Equal"
	case KindSubtype:
		return "Subtype"
	case KindOccurs:
		return "Occurs"
	}
	return "Unknown"
}

// Constraint is a single typed fact handed to the solver. Symbol is the
// caller-supplied context carried into any resulting error; the solver does
// not interpret it.
type Constraint struct {
	Kind   Kind
	Left   typesystem.Type
	Right  typesystem.Type
	Var    typesystem.TypeVar
	Symbol string
}

// Equal builds an equality constraint T1 = T2.
func Equal(left, right typesystem.Type) Constraint {
	return Constraint{Kind: KindEqual, Left: left, Right: right}
}

// Subtype builds a subtyping constraint sub <: super.
func Subtype(sub, super typesystem.Type) Constraint {
	return Constraint{Kind: KindSubtype, Left: sub, Right: super}
}

// Occurs builds an explicit occurs-check constraint for v against t.
func Occurs(v typesystem.TypeVar, t typesystem.Type) Constraint {
	return Constraint{Kind: KindOccurs, Var: v, Right: t}
}

// At returns a copy of the constraint tagged with symbol/location context
// for diagnostics.
func (c Constraint) At(symbol string) Constraint {
	c.Symbol = symbol
	return c
}
