package typesystem

import "testing"

func TestSubstWalkResolvesChains(t *testing.T) {
	s := Subst{
		0: Var{ID: 1},
		1: Int,
	}
	if got := s.Walk(Var{ID: 0}); !Equal(got, Int) {
		t.Errorf("Walk(T0) = %s, want int", got)
	}
	if got := s.Walk(Var{ID: 2}); !Equal(got, Var{ID: 2}) {
		t.Errorf("Walk(T2) = %s, want T2", got)
	}
	// Walk stays shallow: composite structure is not descended into.
	s[3] = List{Elem: Var{ID: 1}}
	if got := s.Walk(Var{ID: 3}); got.String() != "List[T1]" {
		t.Errorf("Walk(T3) = %s, want List[T1]", got)
	}
}

func TestSubstApplyResolvesDeep(t *testing.T) {
	s := Subst{
		0: Int,
		1: List{Elem: Var{ID: 0}},
	}
	got := s.Apply(Dict{Key: Str, Value: Var{ID: 1}})
	if got.String() != "Dict[str, List[int]]" {
		t.Errorf("Apply = %s", got)
	}
}

func TestSubstApplyRenormalizesUnions(t *testing.T) {
	s := Subst{0: Int}
	got := s.Apply(Union{Members: []Type{Var{ID: 0}, Int, Str}})
	if got.String() != "int | str" {
		t.Errorf("Apply = %s, want int | str", got)
	}
}

func TestSubstApplyLeavesUnboundVars(t *testing.T) {
	s := Subst{}
	in := List{Elem: Var{ID: 7}}
	if got := s.Apply(in); !Equal(got, in) {
		t.Errorf("Apply = %s, want %s", got, in)
	}
}
