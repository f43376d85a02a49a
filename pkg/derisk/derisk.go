// Package derisk classifies column/business-name records against a
// derisking vocabulary and a category-scoped rulebook.
//
// An Engine is built once from normalized vocabularies and then classifies
// any number of records. Each result depends only on its own record, so
// Classify spreads records over a worker pool and writes results back in
// input order.
package derisk

import (
	"context"
	"crypto/rand"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/cognicore/derisk/internal/logging"
	"github.com/cognicore/derisk/pkg/derisk/opt"
	"github.com/cognicore/derisk/pkg/derisk/resolve"
	"github.com/cognicore/derisk/pkg/derisk/store"
	"github.com/cognicore/derisk/pkg/derisk/vocab"
)

// DefaultChunkSize is the number of records a worker takes at a time.
const DefaultChunkSize = 256

// Record is one row of the target table. Missing fields are empty.
type Record struct {
	ID               string
	ColumnName       string
	BusinessName     string
	DeclaredCategory string
}

// Result is the classification of one record.
type Result struct {
	TermName    opt.String `json:"Matched_Derisking_Name"`
	Category    opt.String `json:"Matched_Derisking_Category"`
	RuleElement opt.String `json:"Matched_Rulebook_Element"`

	Provenance Provenance `json:"-"`
}

// Provenance explains how the derisking term was found. It never
// influences the result columns.
type Provenance struct {
	Source  resolve.Source
	Field   resolve.Field
	Partial opt.String // ranked partial match before the override rule
}

// Observer receives classification events, e.g. for metrics. It is called
// from worker goroutines and must be safe for concurrent use.
type Observer interface {
	ObserveResult(r Result, categoryKnown bool)
	ObserveBatch(records int, elapsed time.Duration)
}

// Options configures an Engine.
type Options struct {
	Vocabulary *vocab.Vocabulary
	Rulebook   *vocab.Rulebook

	// Workers bounds parallelism; <= 0 means GOMAXPROCS.
	Workers int

	// ChunkSize is the records per task; <= 0 means DefaultChunkSize.
	ChunkSize int

	Logger   logging.Logger
	Observer Observer
}

// Engine classifies records. It is safe for concurrent use.
type Engine struct {
	vocab    *vocab.Vocabulary
	rulebook *vocab.Rulebook
	workers  int
	chunk    int
	log      logging.Logger
	obs      Observer

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// New creates an Engine. Nil vocabularies are treated as empty.
func New(opts Options) *Engine {
	e := &Engine{
		vocab:    opts.Vocabulary,
		rulebook: opts.Rulebook,
		workers:  opts.Workers,
		chunk:    opts.ChunkSize,
		log:      opts.Logger,
		obs:      opts.Observer,
		entropy:  ulid.Monotonic(rand.Reader, 0),
	}
	if e.vocab == nil {
		e.vocab = vocab.Build(nil)
	}
	if e.rulebook == nil {
		e.rulebook = vocab.BuildRulebook(nil)
	}
	if e.workers <= 0 {
		e.workers = runtime.GOMAXPROCS(0)
	}
	if e.chunk <= 0 {
		e.chunk = DefaultChunkSize
	}
	if e.log == nil {
		e.log = logging.NewNop()
	}
	e.log = e.log.Named("engine")

	st := e.vocab.Stats()
	e.log.Debug("engine ready",
		logging.Int("terms", st.Terms),
		logging.Int("short_terms", st.ShortTerms),
		logging.Int("rule_elements", e.rulebook.Len()),
		logging.Int("rule_categories", len(e.rulebook.Categories())),
		logging.Int("workers", e.workers),
	)
	return e
}

// ClassifyOne classifies a single record synchronously.
func (e *Engine) ClassifyOne(r Record) Result {
	in := resolve.Prepare(r.ColumnName, r.BusinessName, r.DeclaredCategory)
	d := resolve.Derisking(e.vocab, in)
	res := Result{
		TermName:    d.Term,
		Category:    d.Category,
		RuleElement: resolve.Rulebook(e.rulebook, in),
		Provenance: Provenance{
			Source:  d.Source,
			Field:   d.Field,
			Partial: d.Partial,
		},
	}
	if e.obs != nil {
		e.obs.ObserveResult(res, e.rulebook.HasCategory(in.Category))
	}
	return res
}

// Classify classifies records and returns one Result per record, in the
// same order. Cancelling ctx stops the batch and returns ctx.Err().
func (e *Engine) Classify(ctx context.Context, records []Record) ([]Result, error) {
	start := time.Now()
	results := make([]Result, len(records))

	if e.workers == 1 || len(records) <= e.chunk {
		for i := range records {
			if i%e.chunk == 0 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}
			results[i] = e.ClassifyOne(records[i])
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.workers)
		for lo := 0; lo < len(records); lo += e.chunk {
			if gctx.Err() != nil {
				break
			}
			lo := lo
			hi := min(lo+e.chunk, len(records))
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				for i := lo; i < hi; i++ {
					results[i] = e.ClassifyOne(records[i])
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	elapsed := time.Since(start)
	if e.obs != nil {
		e.obs.ObserveBatch(len(records), elapsed)
	}
	sum := Summarize(results)
	e.log.Info("batch classified",
		logging.Int("records", len(records)),
		logging.Int("exact", sum.Exact),
		logging.Int("override", sum.Override),
		logging.Int("partial", sum.Partial),
		logging.Int("unmatched", sum.Unmatched),
		logging.Int("rulebook_matched", sum.RulebookMatched),
		logging.Duration("elapsed", elapsed),
	)
	return results, nil
}

// Run classifies records and persists the batch under a new run ID.
func (e *Engine) Run(ctx context.Context, st store.Store, label string, records []Record) (store.Run, []Result, error) {
	run := store.Run{
		ID:        e.newRunID(),
		Label:     label,
		StartedAt: time.Now().UTC(),
		Records:   len(records),
	}

	results, err := e.Classify(ctx, records)
	if err != nil {
		return store.Run{}, nil, err
	}
	run.FinishedAt = time.Now().UTC()
	run.Summary = Summarize(results)

	if err := st.SaveRun(ctx, run); err != nil {
		return store.Run{}, nil, fmt.Errorf("save run %s: %w", run.ID, err)
	}
	if err := st.SaveResults(ctx, run.ID, ResultRows(records, results)); err != nil {
		return store.Run{}, nil, fmt.Errorf("save results of run %s: %w", run.ID, err)
	}
	e.log.Info("run stored", logging.String("run", run.ID), logging.String("label", label))
	return run, results, nil
}

func (e *Engine) newRunID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ulid.MustNew(ulid.Now(), e.entropy).String()
}

// Summarize counts how results were resolved.
func Summarize(results []Result) store.Summary {
	var s store.Summary
	for _, r := range results {
		switch r.Provenance.Source {
		case resolve.SourceExact:
			s.Exact++
		case resolve.SourceOverride:
			s.Override++
		case resolve.SourcePartial:
			s.Partial++
		default:
			s.Unmatched++
		}
		if r.RuleElement.Valid() {
			s.RulebookMatched++
		}
	}
	return s
}

// ResultRows pairs records with their results for storage.
func ResultRows(records []Record, results []Result) []store.ResultRow {
	rows := make([]store.ResultRow, len(records))
	for i, rec := range records {
		res := results[i]
		rows[i] = store.ResultRow{
			Index:            i,
			TargetID:         rec.ID,
			ColumnName:       rec.ColumnName,
			BusinessName:     rec.BusinessName,
			DeclaredCategory: rec.DeclaredCategory,
			TermName:         res.TermName,
			Category:         res.Category,
			RuleElement:      res.RuleElement,
			Source:           res.Provenance.Source.String(),
			Field:            res.Provenance.Field.String(),
		}
	}
	return rows
}
