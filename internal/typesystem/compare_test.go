package typesystem

import "testing"

func TestCompareVariantPrecedence(t *testing.T) {
	// One representative per variant, in expected ascending order.
	ordered := []Type{
		Unknown, None, Any, Bool, Int, Float, Str, Bytes,
		List{Elem: Int},
		Dict{Key: Str, Value: Int},
		Tuple{Elems: []Type{Int}},
		Set{Elem: Int},
		Func{Params: []Type{Int}, Return: Int},
		Union{Members: []Type{Int, Str}},
		Var{ID: 0},
		Named{Name: "A"},
		Generic{Name: "A", Params: []Type{Int}},
	}

	for i := range ordered {
		for j := range ordered {
			got := Compare(ordered[i], ordered[j])
			switch {
			case i < j && got >= 0:
				t.Errorf("Compare(%s, %s) = %d, want < 0", ordered[i], ordered[j], got)
			case i > j && got <= 0:
				t.Errorf("Compare(%s, %s) = %d, want > 0", ordered[i], ordered[j], got)
			case i == j && got != 0:
				t.Errorf("Compare(%s, %s) = %d, want 0", ordered[i], ordered[j], got)
			}
		}
	}
}

func TestCompareStructural(t *testing.T) {
	tests := []struct {
		name string
		a, b Type
		want int
	}{
		{"equal lists", List{Elem: Int}, List{Elem: Int}, 0},
		{"list elem order", List{Elem: Int}, List{Elem: Str}, -1},
		{"dict key first", Dict{Key: Int, Value: Str}, Dict{Key: Str, Value: Int}, -1},
		{"dict value second", Dict{Key: Int, Value: Int}, Dict{Key: Int, Value: Str}, -1},
		{"shorter tuple first", Tuple{Elems: []Type{Int}}, Tuple{Elems: []Type{Int, Int}}, -1},
		{"var by id", Var{ID: 1}, Var{ID: 2}, -1},
		{"named lexicographic", Named{Name: "Alpha"}, Named{Name: "Beta"}, -1},
		{
			"func params before return",
			Func{Params: []Type{Int}, Return: Str},
			Func{Params: []Type{Str}, Return: Int},
			-1,
		},
		{
			"generic name before params",
			Generic{Name: "A", Params: []Type{Str}},
			Generic{Name: "B", Params: []Type{Int}},
			-1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compare(tt.a, tt.b)
			if sign(got) != tt.want {
				t.Errorf("Compare(%s, %s) = %d, want sign %d", tt.a, tt.b, got, tt.want)
			}
			if back := Compare(tt.b, tt.a); sign(back) != -tt.want {
				t.Errorf("Compare(%s, %s) = %d, not antisymmetric", tt.b, tt.a, back)
			}
		})
	}
}

func TestHashAgreesWithEqual(t *testing.T) {
	pairs := []struct {
		a, b Type
	}{
		{Int, Int},
		{List{Elem: Int}, List{Elem: Int}},
		{UnionOf(Int, Str), UnionOf(Str, Int)},
		{
			Func{Params: []Type{Int, Str}, Return: Bool},
			Func{Params: []Type{Int, Str}, Return: Bool},
		},
		{Generic{Name: "C", Params: []Type{Int}}, Generic{Name: "C", Params: []Type{Int}}},
	}
	for _, p := range pairs {
		if !Equal(p.a, p.b) {
			t.Fatalf("expected %s == %s", p.a, p.b)
		}
		if Hash(p.a) != Hash(p.b) {
			t.Errorf("equal types hash differently: %s vs %s", p.a, p.b)
		}
	}

	distinct := []Type{Int, Str, List{Elem: Int}, List{Elem: Str}, Named{Name: "Int"}}
	seen := make(map[uint64]Type)
	for _, typ := range distinct {
		h := Hash(typ)
		if prev, ok := seen[h]; ok {
			t.Errorf("hash collision between %s and %s", prev, typ)
		}
		seen[h] = typ
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
