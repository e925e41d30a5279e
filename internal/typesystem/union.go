package typesystem

import "sort"

// UnionOf builds the canonical union of the given types. It flattens nested
// unions, sorts members by Compare, and removes duplicates, so that any two
// semantically equal unions are identical regardless of construction order.
// An empty input collapses to Unknown, a single distinct member collapses to
// that member unwrapped.
func UnionOf(types ...Type) Type {
	if len(types) == 0 {
		return Unknown
	}

	flat := make([]Type, 0, len(types))
	var flatten func(Type)
	flatten = func(t Type) {
		if u, ok := t.(Union); ok {
			for _, m := range u.Members {
				flatten(m)
			}
			return
		}
		flat = append(flat, t)
	}
	for _, t := range types {
		flatten(t)
	}
	// Flattening a memberless union can leave nothing; the empty union is
	// Unknown.
	if len(flat) == 0 {
		return Unknown
	}

	sort.SliceStable(flat, func(i, j int) bool {
		return Compare(flat[i], flat[j]) < 0
	})

	unique := flat[:1]
	for _, t := range flat[1:] {
		if !Equal(t, unique[len(unique)-1]) {
			unique = append(unique, t)
		}
	}

	if len(unique) == 1 {
		return unique[0]
	}
	return Union{Members: unique}
}
