package typesystem

// TypeEnv maps variable names to their types within one lexical scope.
// Lookups walk from the innermost scope outward; a child never mutates its
// parent, so shadowing a name in a nested scope leaves the parent's binding
// intact. Sharing an environment for read-only lookups is safe; concurrent
// mutation is not supported.
type TypeEnv struct {
	bindings map[string]Type
	parent   *TypeEnv
}

// NewTypeEnv creates an empty root scope.
func NewTypeEnv() *TypeEnv {
	return &TypeEnv{bindings: make(map[string]Type)}
}

// Nested creates a child scope that defers unresolved lookups to e.
func (e *TypeEnv) Nested() *TypeEnv {
	return &TypeEnv{bindings: make(map[string]Type), parent: e}
}

// Bind inserts or overwrites a binding in the current scope only and returns
// the prior binding in this scope, if any.
func (e *TypeEnv) Bind(name string, t Type) (Type, bool) {
	prev, ok := e.bindings[name]
	e.bindings[name] = t
	return prev, ok
}

// Lookup searches the current scope and then each ancestor, returning the
// first match. Absence is not an error; it signals "unbound".
func (e *TypeEnv) Lookup(name string) (Type, bool) {
	for scope := e; scope != nil; scope = scope.parent {
		if t, ok := scope.bindings[name]; ok {
			return t, true
		}
	}
	return nil, false
}

// Parent returns the enclosing scope, if any.
func (e *TypeEnv) Parent() *TypeEnv {
	return e.parent
}

// Observe merges an observed type into the current scope: repeated
// observations union rather than overwrite, so a variable seen as int and
// later as str ends up int | str. Returns the merged binding.
func (e *TypeEnv) Observe(name string, t Type) Type {
	if prev, ok := e.bindings[name]; ok {
		t = UnionOf(prev, t)
	}
	e.bindings[name] = t
	return t
}

// Names returns the names bound in the current scope only.
func (e *TypeEnv) Names() []string {
	names := make([]string, 0, len(e.bindings))
	for name := range e.bindings {
		names = append(names, name)
	}
	return names
}
