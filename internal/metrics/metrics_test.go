package metrics

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/derisk/pkg/derisk"
	"github.com/cognicore/derisk/pkg/derisk/internalerr"
	"github.com/cognicore/derisk/pkg/derisk/opt"
	"github.com/cognicore/derisk/pkg/derisk/resolve"
	"github.com/cognicore/derisk/pkg/derisk/vocab"
)

func newTestRecorder(t *testing.T) *Recorder {
	r, err := NewRecorder(Config{Namespace: "derisk"})
	require.NoError(t, err)
	return r
}

func TestNewRecorder_EmptyNamespace(t *testing.T) {
	_, err := NewRecorder(Config{})
	assert.ErrorIs(t, err, internalerr.ErrInvalidConfig)
}

func TestObserveResult(t *testing.T) {
	r := newTestRecorder(t)

	r.ObserveResult(derisk.Result{
		TermName:    opt.Some("Cust"),
		RuleElement: opt.Some("Customer"),
		Provenance:  derisk.Provenance{Source: resolve.SourcePartial},
	}, true)
	r.ObserveResult(derisk.Result{Provenance: derisk.Provenance{Source: resolve.SourceExact}}, true)
	r.ObserveResult(derisk.Result{}, false)

	assert.Equal(t, 3.0, testutil.ToFloat64(r.records))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.derisking.WithLabelValues("partial")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.derisking.WithLabelValues("exact")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.derisking.WithLabelValues("none")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.rulebook.WithLabelValues(OutcomeMatched)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.rulebook.WithLabelValues(OutcomeNone)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.rulebook.WithLabelValues(OutcomeUnknownCategory)))
}

func TestRecorderAsEngineObserver(t *testing.T) {
	r := newTestRecorder(t)
	e := derisk.New(derisk.Options{
		Vocabulary: vocab.Build([]vocab.Entry{{Name: "Staff", Category: "HR_Data"}}),
		Rulebook:   vocab.BuildRulebook([]vocab.Rule{{Category: "HR_Data", Element: "Employee"}}),
		Observer:   r,
	})

	_, err := e.Classify(context.Background(), []derisk.Record{
		{ColumnName: "Staff Name", BusinessName: "Employee Relations", DeclaredCategory: "HR_Data"},
		{ColumnName: "Office", DeclaredCategory: "Geographic_Data"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.records))
	assert.Equal(t, 1, testutil.CollectAndCount(r.duration))

	expected := `
# HELP derisk_rulebook_matches_total Rulebook outcomes (matched, none, unknown_category).
# TYPE derisk_rulebook_matches_total counter
derisk_rulebook_matches_total{outcome="matched"} 1
derisk_rulebook_matches_total{outcome="unknown_category"} 1
`
	assert.NoError(t, testutil.CollectAndCompare(r.rulebook, strings.NewReader(expected)))
}

func TestWriteTextfile(t *testing.T) {
	r := newTestRecorder(t)
	r.ObserveResult(derisk.Result{}, true)
	r.ObserveBatch(1, 20*time.Millisecond)

	path := filepath.Join(t.TempDir(), "derisk.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "derisk_records_total 1")
	assert.Contains(t, out, `derisk_derisking_matches_total{kind="none"} 1`)
	assert.Contains(t, out, "derisk_classify_duration_seconds_count 1")
}

func TestWriteTextfileBadDir(t *testing.T) {
	r := newTestRecorder(t)
	err := r.WriteTextfile(filepath.Join(t.TempDir(), "missing", "derisk.prom"))
	assert.Error(t, err)
}
