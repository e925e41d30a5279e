package typesystem

import (
	"fmt"
	"strings"
)

// TypeVar is an opaque identity for a type variable. Identities are unique
// within one inference session, produced by a monotonic counter, and never
// reused. Equality is plain integer equality.
type TypeVar uint32

func (v TypeVar) String() string {
	return fmt.Sprintf("T%d", uint32(v))
}

// Type is the interface for all types in the system.
type Type interface {
	String() string
	Apply(Subst) Type
	FreeTypeVars() []TypeVar

	// order returns the variant precedence used by Compare. Structural
	// details never leak across variants.
	order() int
}

// Variant precedence for the total order over types.
const (
	orderUnknown = iota
	orderNone
	orderAny
	orderBool
	orderInt
	orderFloat
	orderStr
	orderBytes
	orderList
	orderDict
	orderTuple
	orderSet
	orderFunc
	orderUnion
	orderVar
	orderNamed
	orderGeneric
)

// Basic is a primitive type without structure.
type Basic struct {
	kind int
}

// The primitive types. Unknown is the inference placeholder, Any the top type.
var (
	Unknown = Basic{orderUnknown}
	None    = Basic{orderNone}
	Any     = Basic{orderAny}
	Bool    = Basic{orderBool}
	Int     = Basic{orderInt}
	Float   = Basic{orderFloat}
	Str     = Basic{orderStr}
	Bytes   = Basic{orderBytes}
)

var basicNames = map[int]string{
	orderUnknown: "Unknown",
	orderNone:    "None",
	orderAny:     "Any",
	orderBool:    "bool",
	orderInt:     "int",
	orderFloat:   "float",
	orderStr:     "str",
	orderBytes:   "bytes",
}

func (t Basic) String() string         { return basicNames[t.kind] }
func (t Basic) Apply(s Subst) Type     { return t }
func (t Basic) FreeTypeVars() []TypeVar { return nil }
func (t Basic) order() int             { return t.kind }

// List is a homogeneous list type.
type List struct {
	Elem Type
}

func (t List) String() string { return fmt.Sprintf("List[%s]", t.Elem) }
func (t List) Apply(s Subst) Type {
	return applySubst(t, s, nil)
}
func (t List) FreeTypeVars() []TypeVar { return t.Elem.FreeTypeVars() }
func (t List) order() int              { return orderList }

// Dict is a map type with key and value types.
type Dict struct {
	Key   Type
	Value Type
}

func (t Dict) String() string { return fmt.Sprintf("Dict[%s, %s]", t.Key, t.Value) }
func (t Dict) Apply(s Subst) Type {
	return applySubst(t, s, nil)
}
func (t Dict) FreeTypeVars() []TypeVar {
	return uniqueVars(append(t.Key.FreeTypeVars(), t.Value.FreeTypeVars()...))
}
func (t Dict) order() int { return orderDict }

// Tuple is a fixed-size heterogeneous sequence type.
type Tuple struct {
	Elems []Type
}

func (t Tuple) String() string { return fmt.Sprintf("Tuple[%s]", joinTypes(t.Elems, ", ")) }
func (t Tuple) Apply(s Subst) Type {
	return applySubst(t, s, nil)
}
func (t Tuple) FreeTypeVars() []TypeVar { return freeVarsOf(t.Elems) }
func (t Tuple) order() int              { return orderTuple }

// Set is an unordered collection of unique elements.
type Set struct {
	Elem Type
}

func (t Set) String() string { return fmt.Sprintf("Set[%s]", t.Elem) }
func (t Set) Apply(s Subst) Type {
	return applySubst(t, s, nil)
}
func (t Set) FreeTypeVars() []TypeVar { return t.Elem.FreeTypeVars() }
func (t Set) order() int              { return orderSet }

// Func is a function type with positional parameters and a return type.
type Func struct {
	Params []Type
	Return Type
}

func (t Func) String() string {
	return fmt.Sprintf("Callable[[%s], %s]", joinTypes(t.Params, ", "), t.Return)
}
func (t Func) Apply(s Subst) Type {
	return applySubst(t, s, nil)
}
func (t Func) FreeTypeVars() []TypeVar {
	return uniqueVars(append(freeVarsOf(t.Params), t.Return.FreeTypeVars()...))
}
func (t Func) order() int { return orderFunc }

// Union is one of several possible types (T1 | T2 | ...). A canonical Union
// always has at least two members, no nested unions, no duplicates, and its
// members are in Compare order. Construct unions through UnionOf.
type Union struct {
	Members []Type
}

func (t Union) String() string { return joinTypes(t.Members, " | ") }
func (t Union) Apply(s Subst) Type {
	return applySubst(t, s, nil)
}
func (t Union) FreeTypeVars() []TypeVar { return freeVarsOf(t.Members) }
func (t Union) order() int              { return orderUnion }

// Var is a type variable used during inference.
type Var struct {
	ID TypeVar
}

func (t Var) String() string { return t.ID.String() }
func (t Var) Apply(s Subst) Type {
	return applySubst(t, s, nil)
}
func (t Var) FreeTypeVars() []TypeVar { return []TypeVar{t.ID} }
func (t Var) order() int              { return orderVar }

// Named is a nominal type, e.g. a user-defined class.
type Named struct {
	Name string
}

func (t Named) String() string          { return t.Name }
func (t Named) Apply(s Subst) Type      { return t }
func (t Named) FreeTypeVars() []TypeVar { return nil }
func (t Named) order() int              { return orderNamed }

// Generic is a named type with type parameters.
type Generic struct {
	Name   string
	Params []Type
}

func (t Generic) String() string {
	return fmt.Sprintf("%s[%s]", t.Name, joinTypes(t.Params, ", "))
}
func (t Generic) Apply(s Subst) Type {
	return applySubst(t, s, nil)
}
func (t Generic) FreeTypeVars() []TypeVar { return freeVarsOf(t.Params) }
func (t Generic) order() int              { return orderGeneric }

func joinTypes(types []Type, sep string) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.String()
	}
	return strings.Join(parts, sep)
}

func freeVarsOf(types []Type) []TypeVar {
	var vars []TypeVar
	for _, t := range types {
		vars = append(vars, t.FreeTypeVars()...)
	}
	return uniqueVars(vars)
}

func uniqueVars(vars []TypeVar) []TypeVar {
	if len(vars) < 2 {
		return vars
	}
	seen := make(map[TypeVar]bool, len(vars))
	unique := vars[:0]
	for _, v := range vars {
		if !seen[v] {
			seen[v] = true
			unique = append(unique, v)
		}
	}
	return unique
}
