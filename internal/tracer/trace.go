package tracer

import (
	"sort"

	"github.com/omnitype/omnitype/internal/infer"
	"github.com/omnitype/omnitype/internal/typesystem"
)

// CallRecord is one observed invocation of a function.
type CallRecord struct {
	Args   []typesystem.Type
	Return typesystem.Type
}

// TypeTrace holds the type observations collected from one instrumented run.
type TypeTrace struct {
	// Variables maps variable names to each observed type, in order.
	Variables map[string][]typesystem.Type

	// Functions maps function names to each observed call.
	Functions map[string][]CallRecord
}

func NewTypeTrace() *TypeTrace {
	return &TypeTrace{
		Variables: map[string][]typesystem.Type{},
		Functions: map[string][]CallRecord{},
	}
}

// AddVariable appends one observation of name.
func (t *TypeTrace) AddVariable(name string, typ typesystem.Type) {
	t.Variables[name] = append(t.Variables[name], typ)
}

// AddCall appends one observed invocation of fn.
func (t *TypeTrace) AddCall(fn string, args []typesystem.Type, ret typesystem.Type) {
	t.Functions[fn] = append(t.Functions[fn], CallRecord{Args: args, Return: ret})
}

// VariableType folds every observation of name into a single canonical
// type. Unobserved names come out as Unknown.
func (t *TypeTrace) VariableType(name string) typesystem.Type {
	seen, ok := t.Variables[name]
	if !ok || len(seen) == 0 {
		return typesystem.Unknown
	}
	return typesystem.UnionOf(seen...)
}

// VariableNames returns the observed variable names, sorted.
func (t *TypeTrace) VariableNames() []string {
	names := make([]string, 0, len(t.Variables))
	for name := range t.Variables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FunctionNames returns the observed function names, sorted.
func (t *TypeTrace) FunctionNames() []string {
	names := make([]string, 0, len(t.Functions))
	for name := range t.Functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Feed replays every observation into an inference session.
func (t *TypeTrace) Feed(s *infer.Session) {
	for _, name := range t.VariableNames() {
		for _, typ := range t.Variables[name] {
			s.ObserveVar(name, typ)
		}
	}
	for _, fn := range t.FunctionNames() {
		for _, call := range t.Functions[fn] {
			s.ObserveCall(fn, call.Args, call.Return)
		}
	}
}

// FunctionType reports fn's merged signature via a throwaway session.
func (t *TypeTrace) FunctionType(fn string) (typesystem.Type, bool) {
	calls, ok := t.Functions[fn]
	if !ok || len(calls) == 0 {
		return nil, false
	}
	s := infer.NewSession()
	for _, call := range calls {
		s.ObserveCall(fn, call.Args, call.Return)
	}
	return s.FunctionType(fn)
}
