package typesystem

import (
	"hash/fnv"
	"strings"
)

// Compare defines a total order over types: variant precedence first
// (Unknown < None < Any < bool < int < float < str < bytes < List < Dict <
// Tuple < Set < Callable < Union < Var < Named < Generic), then structural
// comparison within the same variant. The order is consistent with Equal;
// it is what gives unions their canonical member order.
func Compare(a, b Type) int {
	if d := a.order() - b.order(); d != 0 {
		if d < 0 {
			return -1
		}
		return 1
	}

	switch a := a.(type) {
	case Basic:
		return 0 // same precedence means same primitive
	case List:
		return Compare(a.Elem, b.(List).Elem)
	case Dict:
		bd := b.(Dict)
		if c := Compare(a.Key, bd.Key); c != 0 {
			return c
		}
		return Compare(a.Value, bd.Value)
	case Tuple:
		return compareSlices(a.Elems, b.(Tuple).Elems)
	case Set:
		return Compare(a.Elem, b.(Set).Elem)
	case Func:
		bf := b.(Func)
		if c := compareSlices(a.Params, bf.Params); c != 0 {
			return c
		}
		return Compare(a.Return, bf.Return)
	case Union:
		return compareSlices(a.Members, b.(Union).Members)
	case Var:
		bv := b.(Var)
		switch {
		case a.ID < bv.ID:
			return -1
		case a.ID > bv.ID:
			return 1
		}
		return 0
	case Named:
		return strings.Compare(a.Name, b.(Named).Name)
	case Generic:
		bg := b.(Generic)
		if c := strings.Compare(a.Name, bg.Name); c != 0 {
			return c
		}
		return compareSlices(a.Params, bg.Params)
	}
	return 0
}

// compareSlices orders type sequences lexicographically, shorter prefixes
// first.
func compareSlices(a, b []Type) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

// Equal reports structural equality. It agrees with Compare and Hash.
func Equal(a, b Type) bool {
	return Compare(a, b) == 0
}

// Hash returns a structural hash consistent with Equal: equal types hash
// equal.
func Hash(t Type) uint64 {
	h := fnv.New64a()
	hashInto(h, t)
	return h.Sum64()
}

type hasher interface {
	Write(p []byte) (int, error)
}

func hashInto(h hasher, t Type) {
	writeByte(h, byte(t.order()))
	switch t := t.(type) {
	case Basic:
		// variant tag already covers the kind
	case List:
		hashInto(h, t.Elem)
	case Dict:
		hashInto(h, t.Key)
		hashInto(h, t.Value)
	case Tuple:
		hashSlice(h, t.Elems)
	case Set:
		hashInto(h, t.Elem)
	case Func:
		hashSlice(h, t.Params)
		hashInto(h, t.Return)
	case Union:
		hashSlice(h, t.Members)
	case Var:
		writeByte(h, byte(t.ID), byte(t.ID>>8), byte(t.ID>>16), byte(t.ID>>24))
	case Named:
		h.Write([]byte(t.Name))
	case Generic:
		h.Write([]byte(t.Name))
		hashSlice(h, t.Params)
	}
}

func hashSlice(h hasher, types []Type) {
	writeByte(h, byte(len(types)), byte(len(types)>>8))
	for _, t := range types {
		hashInto(h, t)
	}
}

func writeByte(h hasher, bs ...byte) {
	h.Write(bs)
}
