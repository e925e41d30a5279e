package infer

import (
	"testing"

	"github.com/omnitype/omnitype/internal/solver"
	"github.com/omnitype/omnitype/internal/typesystem"
)

func TestSessionObserveVarWidens(t *testing.T) {
	s := NewSession()
	s.ObserveVar("x", typesystem.Int)
	got := s.ObserveVar("x", typesystem.Str)
	if got.String() != "int | str" {
		t.Errorf("widened binding = %s, want int | str", got)
	}
}

func TestSessionDeclareAndResolve(t *testing.T) {
	s := NewSession()
	s.Declare("count", typesystem.Int)
	s.ObserveVar("count", typesystem.Int)
	types, err := s.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	if !typesystem.Equal(types["count"], typesystem.Int) {
		t.Errorf("count = %s, want int", types["count"])
	}
}

func TestSessionObservationViolatesDeclaration(t *testing.T) {
	s := NewSession()
	s.Declare("count", typesystem.Int)
	s.ObserveVar("count", typesystem.Str)
	_, err := s.Resolve()
	if err == nil {
		t.Fatal("expected error for str observation against int declaration")
	}
	if err.Symbol != "count" {
		t.Errorf("error symbol = %q, want %q", err.Symbol, "count")
	}
}

func TestSessionObserveCallMergesPositions(t *testing.T) {
	s := NewSession()
	s.ObserveCall("f", []typesystem.Type{typesystem.Int}, typesystem.Bool)
	s.ObserveCall("f", []typesystem.Type{typesystem.Str}, typesystem.Bool)
	ft, ok := s.FunctionType("f")
	if !ok {
		t.Fatal("no call shape recorded")
	}
	if ft.String() != "Callable[[int | str], bool]" {
		t.Errorf("merged shape = %s", ft)
	}
	if s.CallCount("f") != 2 {
		t.Errorf("call count = %d, want 2", s.CallCount("f"))
	}
}

func TestSessionObserveCallMixedArity(t *testing.T) {
	s := NewSession()
	s.ObserveCall("f", []typesystem.Type{typesystem.Int}, typesystem.Bool)
	s.ObserveCall("f", nil, typesystem.Bool)
	ft, ok := s.FunctionType("f")
	if !ok {
		t.Fatal("no call shape recorded")
	}
	u, isUnion := ft.(typesystem.Union)
	if !isUnion || len(u.Members) != 2 {
		t.Fatalf("mixed arity shape = %s, want union of two function types", ft)
	}
}

func TestSessionResolveMasksUnboundVars(t *testing.T) {
	s := NewSession()
	v := s.FreshVar()
	s.ObserveVar("items", typesystem.List{Elem: v})
	types, err := s.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	if types["items"].String() != "List[Unknown]" {
		t.Errorf("items = %s, want List[Unknown]", types["items"])
	}
}

func TestSessionConstrain(t *testing.T) {
	s := NewSession()
	v := s.FreshVar()
	s.ObserveVar("items", typesystem.List{Elem: v})
	s.Constrain(solver.Equal(v, typesystem.Int))
	types, err := s.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	if types["items"].String() != "List[int]" {
		t.Errorf("items = %s, want List[int]", types["items"])
	}
}

func TestSessionLenient(t *testing.T) {
	strict := NewSession()
	v := strict.FreshVar()
	strict.Constrain(solver.Subtype(v, typesystem.Int))
	if _, err := strict.Resolve(); err == nil {
		t.Error("strict session: expected under-constrained error")
	}

	lenient := NewSession(WithLenient())
	w := lenient.FreshVar()
	lenient.Constrain(solver.Subtype(w, typesystem.Int))
	if _, err := lenient.Resolve(); err != nil {
		t.Errorf("lenient session: unexpected error %v", err)
	}
}

func TestSessionFreshVarBase(t *testing.T) {
	s := NewSession(WithVarBase(100))
	if v := s.FreshVar(); v.ID != 100 {
		t.Errorf("first id = %d, want 100", v.ID)
	}
}

func TestSessionIDs(t *testing.T) {
	a := NewSession()
	b := NewSession()
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("session ids not unique: %q vs %q", a.ID, b.ID)
	}
}
