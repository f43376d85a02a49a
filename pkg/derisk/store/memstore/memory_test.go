package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cognicore/derisk/pkg/derisk/internalerr"
	"github.com/cognicore/derisk/pkg/derisk/store"
	"github.com/cognicore/derisk/pkg/derisk/store/storetest"
)

func TestMemstore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return New() })
}

func TestClosedStoreIsUnavailable(t *testing.T) {
	s := New()
	assert.NoError(t, s.Close())

	_, err := s.ListRuns(context.Background(), 0)
	assert.ErrorIs(t, err, internalerr.ErrStoreUnavailable)
	err = s.SaveRun(context.Background(), store.Run{ID: "x"})
	assert.ErrorIs(t, err, internalerr.ErrStoreUnavailable)
}
