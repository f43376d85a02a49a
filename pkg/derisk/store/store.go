package store

import (
	"context"
	"time"

	"github.com/cognicore/derisk/pkg/derisk/opt"
)

// Store persists classification runs and their per-record results.
type Store interface {
	Close() error

	// Runs
	SaveRun(ctx context.Context, r Run) error
	GetRun(ctx context.Context, id string) (Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// Results, kept in input order
	SaveResults(ctx context.Context, runID string, rows []ResultRow) error
	Results(ctx context.Context, runID string) ([]ResultRow, error)
}

// Run describes one batch classification.
type Run struct {
	ID         string
	Label      string // free text, usually the targets file
	StartedAt  time.Time
	FinishedAt time.Time
	Records    int
	Summary    Summary
}

// Summary counts how records were resolved.
type Summary struct {
	Exact           int
	Override        int
	Partial         int
	Unmatched       int
	RulebookMatched int
}

// ResultRow is one classified record.
type ResultRow struct {
	Index            int
	TargetID         string
	ColumnName       string
	BusinessName     string
	DeclaredCategory string

	TermName    opt.String
	Category    opt.String
	RuleElement opt.String

	Source string // exact, override, partial, none
	Field  string // column, business, none
}
