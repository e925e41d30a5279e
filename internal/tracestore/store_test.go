package tracestore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/omnitype/omnitype/internal/tracer"
	"github.com/omnitype/omnitype/internal/typesystem"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "traces.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleTrace() *tracer.TypeTrace {
	trace := tracer.NewTypeTrace()
	trace.AddVariable("count", typesystem.Int)
	trace.AddVariable("count", typesystem.Str)
	trace.AddVariable("items", typesystem.List{Elem: typesystem.Int})
	trace.AddCall("add", []typesystem.Type{typesystem.Int, typesystem.Int}, typesystem.Int)
	return trace
}

func TestSaveAndLoadTrace(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	runID, err := s.SaveTrace(ctx, "sample.py", sampleTrace())
	if err != nil {
		t.Fatal(err)
	}
	if runID == "" {
		t.Fatal("empty run id")
	}

	vars, err := s.Variables(ctx, runID)
	if err != nil {
		t.Fatal(err)
	}
	if got := vars["count"].String(); got != "int | str" {
		t.Errorf("count = %s, want int | str", got)
	}
	if got := vars["items"].String(); got != "List[int]" {
		t.Errorf("items = %s, want List[int]", got)
	}

	fns, err := s.Functions(ctx, runID)
	if err != nil {
		t.Fatal(err)
	}
	if fns["add"] != "Callable[[int, int], int]" {
		t.Errorf("add = %q", fns["add"])
	}
}

func TestVariableHistoryAcrossRuns(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := tracer.NewTypeTrace()
	first.AddVariable("x", typesystem.Int)
	second := tracer.NewTypeTrace()
	second.AddVariable("x", typesystem.None)

	if _, err := s.SaveTrace(ctx, "a.py", first); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SaveTrace(ctx, "a.py", second); err != nil {
		t.Fatal(err)
	}

	got, err := s.VariableHistory(ctx, "x")
	if err != nil {
		t.Fatal(err)
	}
	want := typesystem.UnionOf(typesystem.Int, typesystem.None)
	if !typesystem.Equal(got, want) {
		t.Errorf("history = %s, want %s", got, want)
	}
}

func TestVariableHistoryUnknownName(t *testing.T) {
	s := openTestStore(t)
	got, err := s.VariableHistory(context.Background(), "missing")
	if err != nil {
		t.Fatal(err)
	}
	if !typesystem.Equal(got, typesystem.Unknown) {
		t.Errorf("history = %s, want Unknown", got)
	}
}

func TestRunsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a, err := s.SaveTrace(ctx, "a.py", tracer.NewTypeTrace())
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.SaveTrace(ctx, "b.py", tracer.NewTypeTrace())
	if err != nil {
		t.Fatal(err)
	}

	runs, err := s.Runs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(runs))
	}
	ids := map[string]bool{runs[0].ID: true, runs[1].ID: true}
	if !ids[a] || !ids[b] {
		t.Errorf("runs missing saved ids: %+v", runs)
	}
}
