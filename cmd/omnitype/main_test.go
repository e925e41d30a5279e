package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/omnitype/omnitype/internal/analyzer"
	"github.com/omnitype/omnitype/internal/config"
	"github.com/omnitype/omnitype/internal/tracer"
	"github.com/omnitype/omnitype/internal/tracestore"
	"github.com/omnitype/omnitype/internal/typesystem"
)

const calcSource = `def add(a: int, b: int) -> int:
    return a + b
`

func saveRun(t *testing.T, db string, trace *tracer.TypeTrace) {
	t.Helper()
	store, err := tracestore.Open(db)
	if err != nil {
		t.Fatalf("open store: %s", err)
	}
	defer store.Close()
	if _, err := store.SaveTrace(context.Background(), "calc.py", trace); err != nil {
		t.Fatalf("save trace: %s", err)
	}
}

func calcResults() []*analyzer.FileResult {
	return []*analyzer.FileResult{analyzer.AnalyzeSource("calc.py", []byte(calcSource))}
}

func TestCheckTypesConflictingObservation(t *testing.T) {
	db := filepath.Join(t.TempDir(), "trace.db")
	trace := tracer.NewTypeTrace()
	trace.AddCall("add", []typesystem.Type{typesystem.Str, typesystem.Int}, typesystem.Int)
	saveRun(t, db, trace)

	terr := checkTypes(calcResults(), config.Default(), db)
	if terr == nil {
		t.Fatal("expected a type error for a str argument against an int parameter")
	}
	if terr.Symbol != "add" {
		t.Errorf("symbol = %q, want %q", terr.Symbol, "add")
	}
}

func TestCheckTypesMatchingObservation(t *testing.T) {
	db := filepath.Join(t.TempDir(), "trace.db")
	trace := tracer.NewTypeTrace()
	trace.AddCall("add", []typesystem.Type{typesystem.Int, typesystem.Int}, typesystem.Int)
	trace.AddVariable("total", typesystem.Int)
	saveRun(t, db, trace)

	if terr := checkTypes(calcResults(), config.Default(), db); terr != nil {
		t.Fatalf("unexpected type error: %s", terr)
	}
}

func TestCheckTypesWithoutStore(t *testing.T) {
	if terr := checkTypes(calcResults(), config.Default(), ""); terr != nil {
		t.Fatalf("unexpected type error: %s", terr)
	}
}
