package typesystem

import "strings"

// FromAnnotation converts a surface annotation string ("int", "List[int]",
// "Dict[str, int]", "int | None", "Callable[[int, str], bool]") into a Type.
// Anything unrecognized becomes a Named type, parameterized unknowns a
// Generic. The empty string means no annotation and maps to Unknown.
func FromAnnotation(s string) Type {
	s = strings.TrimSpace(s)
	if s == "" {
		return Unknown
	}

	if parts := splitTop(s, '|'); len(parts) > 1 {
		members := make([]Type, len(parts))
		for i, p := range parts {
			members[i] = FromAnnotation(p)
		}
		return UnionOf(members...)
	}

	switch s {
	case "Unknown":
		return Unknown
	case "None":
		return None
	case "Any":
		return Any
	case "bool":
		return Bool
	case "int":
		return Int
	case "float":
		return Float
	case "str":
		return Str
	case "bytes":
		return Bytes
	}

	open := strings.IndexByte(s, '[')
	if open <= 0 || !strings.HasSuffix(s, "]") {
		return Named{Name: s}
	}
	head := s[:open]
	inner := s[open+1 : len(s)-1]
	args := splitTop(inner, ',')

	switch head {
	case "List", "list":
		if len(args) == 1 {
			return List{Elem: FromAnnotation(args[0])}
		}
	case "Set", "set", "frozenset":
		if len(args) == 1 {
			return Set{Elem: FromAnnotation(args[0])}
		}
	case "Dict", "dict":
		if len(args) == 2 {
			return Dict{Key: FromAnnotation(args[0]), Value: FromAnnotation(args[1])}
		}
		return Dict{Key: Any, Value: Any}
	case "Tuple", "tuple":
		if inner == "" || inner == "()" {
			return Tuple{}
		}
		elems := make([]Type, len(args))
		for i, a := range args {
			elems[i] = FromAnnotation(a)
		}
		return Tuple{Elems: elems}
	case "Optional":
		if len(args) == 1 {
			return UnionOf(FromAnnotation(args[0]), None)
		}
	case "Union":
		members := make([]Type, len(args))
		for i, a := range args {
			members[i] = FromAnnotation(a)
		}
		return UnionOf(members...)
	case "Callable":
		if len(args) == 2 && strings.HasPrefix(args[0], "[") && strings.HasSuffix(args[0], "]") {
			paramSrc := splitTop(args[0][1:len(args[0])-1], ',')
			params := make([]Type, 0, len(paramSrc))
			for _, p := range paramSrc {
				if p != "" {
					params = append(params, FromAnnotation(p))
				}
			}
			return Func{Params: params, Return: FromAnnotation(args[1])}
		}
	}

	params := make([]Type, len(args))
	for i, a := range args {
		params[i] = FromAnnotation(a)
	}
	return Generic{Name: head, Params: params}
}

// splitTop splits s on sep at bracket depth zero and trims each part.
// A single part means sep does not occur at the top level.
func splitTop(s string, sep byte) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[', '(':
			depth++
		case ']', ')':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	parts = append(parts, strings.TrimSpace(s[start:]))
	return parts
}
