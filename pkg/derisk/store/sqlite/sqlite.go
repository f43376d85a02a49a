package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/derisk/pkg/derisk/internalerr"
	"github.com/cognicore/derisk/pkg/derisk/opt"
	"github.com/cognicore/derisk/pkg/derisk/store"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled and creates the
// schema if needed.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %v", path, internalerr.ErrStoreUnavailable, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	label TEXT,
	started_at TEXT NOT NULL,
	finished_at TEXT,
	records INTEGER NOT NULL DEFAULT 0,
	exact INTEGER NOT NULL DEFAULT 0,
	override INTEGER NOT NULL DEFAULT 0,
	partial INTEGER NOT NULL DEFAULT 0,
	unmatched INTEGER NOT NULL DEFAULT 0,
	rulebook_matched INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS results (
	run_id TEXT NOT NULL,
	idx INTEGER NOT NULL,
	target_id TEXT,
	column_name TEXT,
	business_name TEXT,
	declared_category TEXT,
	matched_name TEXT,
	matched_category TEXT,
	matched_rule_element TEXT,
	source TEXT,
	field TEXT,
	PRIMARY KEY(run_id, idx),
	FOREIGN KEY(run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// SaveRun inserts or replaces a run.
func (s *sqliteStore) SaveRun(ctx context.Context, r store.Run) error {
	if r.ID == "" {
		return fmt.Errorf("save run: empty id: %w", internalerr.ErrInvalidInput)
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO runs (id, label, started_at, finished_at, records, exact, override, partial, unmatched, rulebook_matched)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	label = excluded.label,
	started_at = excluded.started_at,
	finished_at = excluded.finished_at,
	records = excluded.records,
	exact = excluded.exact,
	override = excluded.override,
	partial = excluded.partial,
	unmatched = excluded.unmatched,
	rulebook_matched = excluded.rulebook_matched`,
		r.ID, r.Label, formatTime(r.StartedAt), formatTime(r.FinishedAt), r.Records,
		r.Summary.Exact, r.Summary.Override, r.Summary.Partial, r.Summary.Unmatched, r.Summary.RulebookMatched,
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", r.ID, err)
	}
	return nil
}

const runColumns = `id, label, started_at, finished_at, records, exact, override, partial, unmatched, rulebook_matched`

// GetRun loads a run by ID.
func (s *sqliteStore) GetRun(ctx context.Context, id string) (store.Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Run{}, fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
	}
	if err != nil {
		return store.Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return r, nil
}

// ListRuns returns up to limit runs, newest first. limit <= 0 means all.
func (s *sqliteStore) ListRuns(ctx context.Context, limit int) ([]store.Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []store.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (store.Run, error) {
	var (
		r               store.Run
		label, finished sql.NullString
		started         string
	)
	err := sc.Scan(&r.ID, &label, &started, &finished, &r.Records,
		&r.Summary.Exact, &r.Summary.Override, &r.Summary.Partial, &r.Summary.Unmatched, &r.Summary.RulebookMatched)
	if err != nil {
		return store.Run{}, err
	}
	r.Label = label.String
	r.StartedAt = parseTime(started)
	r.FinishedAt = parseTime(finished.String)
	return r, nil
}

// SaveResults replaces the stored results of a run in one transaction.
func (s *sqliteStore) SaveResults(ctx context.Context, runID string, rows []store.ResultRow) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save results: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, runID).Scan(&exists); err != nil {
		return fmt.Errorf("save results: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("run %s: %w", runID, internalerr.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM results WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("save results: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO results (run_id, idx, target_id, column_name, business_name, declared_category,
	matched_name, matched_category, matched_rule_element, source, field)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("save results: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, runID, row.Index, row.TargetID, row.ColumnName, row.BusinessName,
			row.DeclaredCategory, nullable(row.TermName), nullable(row.Category), nullable(row.RuleElement),
			row.Source, row.Field); err != nil {
			return fmt.Errorf("save result %d: %w", row.Index, err)
		}
	}
	return tx.Commit()
}

// Results returns the results of a run ordered by input position.
func (s *sqliteStore) Results(ctx context.Context, runID string) ([]store.ResultRow, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT idx, target_id, column_name, business_name, declared_category,
	matched_name, matched_category, matched_rule_element, source, field
FROM results WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, fmt.Errorf("results of %s: %w", runID, err)
	}
	defer rows.Close()

	var out []store.ResultRow
	for rows.Next() {
		var (
			r                      store.ResultRow
			name, cat, rule        sql.NullString
			target, col, bus, decl sql.NullString
			source, field          sql.NullString
		)
		if err := rows.Scan(&r.Index, &target, &col, &bus, &decl, &name, &cat, &rule, &source, &field); err != nil {
			return nil, fmt.Errorf("results of %s: %w", runID, err)
		}
		r.TargetID, r.ColumnName, r.BusinessName, r.DeclaredCategory = target.String, col.String, bus.String, decl.String
		r.TermName, r.Category, r.RuleElement = fromNull(name), fromNull(cat), fromNull(rule)
		r.Source, r.Field = source.String, field.String
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullable(s opt.String) sql.NullString {
	v, ok := s.Get()
	return sql.NullString{String: v, Valid: ok}
}

func fromNull(ns sql.NullString) opt.String {
	if !ns.Valid {
		return opt.None()
	}
	return opt.Some(ns.String)
}

// timeLayout is fixed-width so that text order equals time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
