// Package tracestore persists trace runs in a sqlite database so repeated
// runs of the same project accumulate type evidence over time.
package tracestore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/omnitype/omnitype/internal/tracer"
	"github.com/omnitype/omnitype/internal/typesystem"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	path       TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS variables (
	run_id TEXT NOT NULL REFERENCES runs(id),
	name   TEXT NOT NULL,
	type   TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS functions (
	run_id    TEXT NOT NULL REFERENCES runs(id),
	name      TEXT NOT NULL,
	signature TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_variables_name ON variables(name);
CREATE INDEX IF NOT EXISTS idx_functions_name ON functions(name);
`

// Store wraps the sqlite database holding trace history.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening trace store %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing trace store %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Run is one persisted trace run.
type Run struct {
	ID        string
	Path      string
	CreatedAt time.Time
}

// SaveTrace stores every observation of one trace run and returns the new
// run id.
func (s *Store) SaveTrace(ctx context.Context, path string, trace *tracer.TypeTrace) (string, error) {
	runID := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("saving trace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, path, created_at) VALUES (?, ?, ?)`,
		runID, path, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return "", fmt.Errorf("saving run: %w", err)
	}

	for _, name := range trace.VariableNames() {
		for _, typ := range trace.Variables[name] {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO variables (run_id, name, type) VALUES (?, ?, ?)`,
				runID, name, typ.String(),
			); err != nil {
				return "", fmt.Errorf("saving variable %s: %w", name, err)
			}
		}
	}
	for _, fn := range trace.FunctionNames() {
		sig, ok := trace.FunctionType(fn)
		if !ok {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO functions (run_id, name, signature) VALUES (?, ?, ?)`,
			runID, fn, sig.String(),
		); err != nil {
			return "", fmt.Errorf("saving function %s: %w", fn, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("saving trace: %w", err)
	}
	return runID, nil
}

// Runs lists persisted runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, path, created_at FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var created string
		if err := rows.Scan(&r.ID, &r.Path, &created); err != nil {
			return nil, fmt.Errorf("listing runs: %w", err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339, created)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Variables returns the observations of one run, folded per variable into a
// canonical type.
func (s *Store) Variables(ctx context.Context, runID string) (map[string]typesystem.Type, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, type FROM variables WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("loading variables: %w", err)
	}
	defer rows.Close()
	return foldTypes(rows)
}

// VariableHistory folds every observation of name across all runs.
func (s *Store) VariableHistory(ctx context.Context, name string) (typesystem.Type, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT type FROM variables WHERE name = ?`, name)
	if err != nil {
		return nil, fmt.Errorf("loading history for %s: %w", name, err)
	}
	defer rows.Close()

	var seen []typesystem.Type
	for rows.Next() {
		var tn string
		if err := rows.Scan(&tn); err != nil {
			return nil, fmt.Errorf("loading history for %s: %w", name, err)
		}
		seen = append(seen, typesystem.FromAnnotation(tn))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(seen) == 0 {
		return typesystem.Unknown, nil
	}
	return typesystem.UnionOf(seen...), nil
}

// Functions returns the signatures persisted for one run.
func (s *Store) Functions(ctx context.Context, runID string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, signature FROM functions WHERE run_id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("loading functions: %w", err)
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var name, sig string
		if err := rows.Scan(&name, &sig); err != nil {
			return nil, fmt.Errorf("loading functions: %w", err)
		}
		out[name] = sig
	}
	return out, rows.Err()
}

func foldTypes(rows *sql.Rows) (map[string]typesystem.Type, error) {
	raw := map[string][]typesystem.Type{}
	for rows.Next() {
		var name, tn string
		if err := rows.Scan(&name, &tn); err != nil {
			return nil, fmt.Errorf("scanning observation: %w", err)
		}
		raw[name] = append(raw[name], typesystem.FromAnnotation(tn))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out := make(map[string]typesystem.Type, len(raw))
	for name, seen := range raw {
		out[name] = typesystem.UnionOf(seen...)
	}
	return out, nil
}
