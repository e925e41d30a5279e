package typesystem

import "testing"

func TestFromAnnotation(t *testing.T) {
	tests := []struct {
		in   string
		want Type
	}{
		{"", Unknown},
		{"int", Int},
		{"str", Str},
		{"None", None},
		{"Any", Any},
		{"bytes", Bytes},
		{"List[int]", List{Elem: Int}},
		{"list[int]", List{Elem: Int}},
		{"Dict[str, int]", Dict{Key: Str, Value: Int}},
		{"Dict[Any, Any]", Dict{Key: Any, Value: Any}},
		{"Tuple[int, str]", Tuple{Elems: []Type{Int, Str}}},
		{"Tuple[()]", Tuple{}},
		{"Set[float]", Set{Elem: Float}},
		{"Optional[int]", UnionOf(Int, None)},
		{"Union[int, str]", UnionOf(Int, Str)},
		{"int | str", UnionOf(Int, Str)},
		{"str | int | None", UnionOf(None, Int, Str)},
		{
			"Callable[[int, str], bool]",
			Func{Params: []Type{Int, Str}, Return: Bool},
		},
		{
			"Callable[[], None]",
			Func{Params: []Type{}, Return: None},
		},
		{"Decimal", Named{Name: "Decimal"}},
		{"Counter[str]", Generic{Name: "Counter", Params: []Type{Str}}},
		{
			"List[Dict[str, List[int]]]",
			List{Elem: Dict{Key: Str, Value: List{Elem: Int}}},
		},
		{
			"Dict[str, int | None]",
			Dict{Key: Str, Value: UnionOf(Int, None)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := FromAnnotation(tt.in)
			if !Equal(got, tt.want) {
				t.Errorf("FromAnnotation(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestFromAnnotationRoundTrip(t *testing.T) {
	// Canonical renderings parse back to the same type.
	types := []Type{
		Int,
		List{Elem: Int},
		Dict{Key: Str, Value: UnionOf(Int, None)},
		Func{Params: []Type{Int, Str}, Return: Bool},
		UnionOf(Int, Str, None),
		Set{Elem: Bytes},
		Generic{Name: "Counter", Params: []Type{Str, Int}},
	}
	for _, typ := range types {
		if got := FromAnnotation(typ.String()); !Equal(got, typ) {
			t.Errorf("FromAnnotation(%q) = %s, want %s", typ.String(), got, typ)
		}
	}
}
