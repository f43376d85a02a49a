// Package storetest holds behaviour tests shared by every store.Store
// implementation.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/derisk/pkg/derisk/internalerr"
	"github.com/cognicore/derisk/pkg/derisk/opt"
	"github.com/cognicore/derisk/pkg/derisk/store"
)

// Run exercises a fresh store returned by open for each subtest.
func Run(t *testing.T, open func(t *testing.T) store.Store) {
	t.Run("SaveAndGetRun", func(t *testing.T) { testSaveAndGetRun(t, open(t)) })
	t.Run("GetMissingRun", func(t *testing.T) { testGetMissingRun(t, open(t)) })
	t.Run("ListRunsNewestFirst", func(t *testing.T) { testListRuns(t, open(t)) })
	t.Run("ResultsRoundTrip", func(t *testing.T) { testResults(t, open(t)) })
	t.Run("ResultsNeedRun", func(t *testing.T) { testResultsNeedRun(t, open(t)) })
	t.Run("SaveResultsReplaces", func(t *testing.T) { testSaveResultsReplaces(t, open(t)) })
	t.Run("RejectEmptyID", func(t *testing.T) { testRejectEmptyID(t, open(t)) })
}

func sampleRun(id string, started time.Time) store.Run {
	return store.Run{
		ID:         id,
		Label:      "targets.csv",
		StartedAt:  started,
		FinishedAt: started.Add(250 * time.Millisecond),
		Records:    3,
		Summary:    store.Summary{Exact: 1, Partial: 1, Unmatched: 1, RulebookMatched: 2},
	}
}

func sampleRows() []store.ResultRow {
	return []store.ResultRow{
		{Index: 0, TargetID: "1", ColumnName: "Customer ID", BusinessName: "Customer Data", DeclaredCategory: "Customer_Info",
			TermName: opt.Some("Cust"), Category: opt.Some("Customer_Info"), RuleElement: opt.Some("Customer"),
			Source: "partial", Field: "column"},
		{Index: 1, TargetID: "2", ColumnName: "Office Location", BusinessName: "Facility Management", DeclaredCategory: "Geographic_Data",
			Source: "none", Field: "none"},
		{Index: 2, TargetID: "3", ColumnName: "Sales", BusinessName: "Sales", DeclaredCategory: "Financial_Data",
			TermName: opt.Some("Sales"), Category: opt.Some("Financial_Data"),
			Source: "exact", Field: "column"},
	}
}

func testSaveAndGetRun(t *testing.T, s store.Store) {
	defer s.Close()
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveRun(ctx, sampleRun("r1", started)))

	got, err := s.GetRun(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "r1", got.ID)
	assert.Equal(t, "targets.csv", got.Label)
	assert.True(t, got.StartedAt.Equal(started))
	assert.True(t, got.FinishedAt.Equal(started.Add(250*time.Millisecond)))
	assert.Equal(t, 3, got.Records)
	assert.Equal(t, store.Summary{Exact: 1, Partial: 1, Unmatched: 1, RulebookMatched: 2}, got.Summary)

	// saving again updates in place
	upd := sampleRun("r1", started)
	upd.Label = "renamed"
	require.NoError(t, s.SaveRun(ctx, upd))
	got, err = s.GetRun(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Label)
}

func testGetMissingRun(t *testing.T, s store.Store) {
	defer s.Close()
	_, err := s.GetRun(context.Background(), "nope")
	assert.ErrorIs(t, err, internalerr.ErrNotFound)
}

func testListRuns(t *testing.T, s store.Store) {
	defer s.Close()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveRun(ctx, sampleRun("a", base)))
	require.NoError(t, s.SaveRun(ctx, sampleRun("c", base.Add(2*time.Second))))
	require.NoError(t, s.SaveRun(ctx, sampleRun("b", base.Add(time.Second))))

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{runs[0].ID, runs[1].ID, runs[2].ID})

	runs, err = s.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func testResults(t *testing.T, s store.Store) {
	defer s.Close()
	ctx := context.Background()
	require.NoError(t, s.SaveRun(ctx, sampleRun("r1", time.Now())))

	rows := sampleRows()
	// out of order on purpose
	require.NoError(t, s.SaveResults(ctx, "r1", []store.ResultRow{rows[2], rows[0], rows[1]}))

	got, err := s.Results(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func testResultsNeedRun(t *testing.T, s store.Store) {
	defer s.Close()
	ctx := context.Background()

	err := s.SaveResults(ctx, "ghost", sampleRows())
	assert.ErrorIs(t, err, internalerr.ErrNotFound)

	_, err = s.Results(ctx, "ghost")
	assert.ErrorIs(t, err, internalerr.ErrNotFound)
}

func testSaveResultsReplaces(t *testing.T, s store.Store) {
	defer s.Close()
	ctx := context.Background()
	require.NoError(t, s.SaveRun(ctx, sampleRun("r1", time.Now())))

	require.NoError(t, s.SaveResults(ctx, "r1", sampleRows()))
	require.NoError(t, s.SaveResults(ctx, "r1", sampleRows()[:1]))

	got, err := s.Results(ctx, "r1")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func testRejectEmptyID(t *testing.T, s store.Store) {
	defer s.Close()
	err := s.SaveRun(context.Background(), store.Run{})
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}
