package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/derisk/pkg/derisk/store"
	"github.com/cognicore/derisk/pkg/derisk/store/storetest"
)

func openTemp(t *testing.T) store.Store {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "derisk.db"))
	require.NoError(t, err)
	return s
}

func TestSQLiteStore(t *testing.T) {
	storetest.Run(t, openTemp)
}

func TestReopenKeepsRuns(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "derisk.db")

	s, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.SaveRun(ctx, store.Run{ID: "r1", StartedAt: time.Now(), Records: 2}))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetRun(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Records)
}

func TestTimeLayoutSortsAsText(t *testing.T) {
	a := formatTime(time.Date(2026, 1, 1, 0, 0, 5, 0, time.UTC))
	b := formatTime(time.Date(2026, 1, 1, 0, 0, 5, 500_000_000, time.UTC))
	assert.Less(t, a, b)
	assert.True(t, parseTime(b).Equal(time.Date(2026, 1, 1, 0, 0, 5, 500_000_000, time.UTC)))
	assert.True(t, parseTime("").IsZero())
	assert.Equal(t, "", formatTime(time.Time{}))
}
