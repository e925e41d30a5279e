package typesystem

import "testing"

func TestTypeEnvBindAndLookup(t *testing.T) {
	env := NewTypeEnv()

	if _, ok := env.Lookup("x"); ok {
		t.Fatal("empty env should not resolve x")
	}

	prev, had := env.Bind("x", Int)
	if had {
		t.Errorf("first Bind returned prior binding %s", prev)
	}

	got, ok := env.Lookup("x")
	if !ok || !Equal(got, Int) {
		t.Errorf("Lookup(x) = %v, %v, want int", got, ok)
	}

	prev, had = env.Bind("x", Str)
	if !had || !Equal(prev, Int) {
		t.Errorf("rebinding x returned %v, %v, want int, true", prev, had)
	}
}

func TestTypeEnvShadowing(t *testing.T) {
	parent := NewTypeEnv()
	parent.Bind("x", Int)

	child := parent.Nested()
	child.Bind("x", Str)

	if got, _ := child.Lookup("x"); !Equal(got, Str) {
		t.Errorf("child sees %s for x, want str", got)
	}
	if got, _ := parent.Lookup("x"); !Equal(got, Int) {
		t.Errorf("parent binding changed to %s, want int", got)
	}
}

func TestTypeEnvFallthrough(t *testing.T) {
	parent := NewTypeEnv()
	parent.Bind("y", Bool)

	child := parent.Nested()
	if got, ok := child.Lookup("y"); !ok || !Equal(got, Bool) {
		t.Errorf("child.Lookup(y) = %v, %v, want bool via parent", got, ok)
	}

	child.Bind("z", Float)
	if _, ok := parent.Lookup("z"); ok {
		t.Error("binding in child leaked into parent")
	}
	if child.Parent() != parent {
		t.Error("Parent() should return the enclosing scope")
	}
}

func TestTypeEnvObserveMerges(t *testing.T) {
	env := NewTypeEnv()
	env.Observe("v", Int)
	merged := env.Observe("v", Str)

	want := UnionOf(Int, Str)
	if !Equal(merged, want) {
		t.Errorf("Observe merge = %s, want %s", merged, want)
	}
	if got, _ := env.Lookup("v"); !Equal(got, want) {
		t.Errorf("Lookup(v) = %s, want %s", got, want)
	}

	// Observing an already-seen type changes nothing.
	if again := env.Observe("v", Int); !Equal(again, want) {
		t.Errorf("repeat observation = %s, want %s", again, want)
	}
}
