package invoice_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	app "github.com/invoicer/backend/internal/application/invoice"
	domain "github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/tests/testutil"
)

func newTestManager(store domain.SnapshotStore, cfg app.SessionManagerConfig) *app.SessionManager {
	factory := func(ownerID string) *app.Session {
		return app.NewSession(ownerID, app.SessionDeps{
			Store:    store,
			Autosave: app.AutosaverConfig{Debounce: time.Hour},
		})
	}
	return app.NewSessionManager(factory, cfg, nil)
}

func TestSessionManager_Get(t *testing.T) {
	t.Run("returns one session per owner", func(t *testing.T) {
		m := newTestManager(newRecordingStore(), app.SessionManagerConfig{})
		ctx := context.Background()

		a1, err := m.Get(ctx, "a")
		require.NoError(t, err)
		a2, err := m.Get(ctx, "a")
		require.NoError(t, err)
		b, err := m.Get(ctx, "b")
		require.NoError(t, err)

		assert.Same(t, a1, a2)
		assert.NotSame(t, a1, b)
		assert.Equal(t, 2, m.Len())
	})

	t.Run("load failure does not register a session", func(t *testing.T) {
		store := new(MockSnapshotStore)
		store.On("Load", mock.Anything, "a").Return(nil, errors.New("down"))
		m := newTestManager(store, app.SessionManagerConfig{})

		_, err := m.Get(context.Background(), "a")

		require.Error(t, err)
		assert.Equal(t, 0, m.Len())
	})
}

func TestSessionManager_Eviction(t *testing.T) {
	t.Run("explicit eviction flushes pending edits", func(t *testing.T) {
		store := newRecordingStore()
		m := newTestManager(store, app.SessionManagerConfig{})
		ctx := context.Background()

		s, err := m.Get(ctx, "a")
		require.NoError(t, err)
		_, err = s.SetField(ctx, "notes", "unsaved")
		require.NoError(t, err)

		m.Evict("a")

		testutil.AssertEventually(t, func() bool { return store.SaveCount() == 1 }, time.Second, 5*time.Millisecond,
			"evicted session was not flushed")
		assert.Equal(t, 0, m.Len())
	})

	t.Run("idle sessions expire and reload the flushed copy", func(t *testing.T) {
		store := newRecordingStore()
		m := newTestManager(store, app.SessionManagerConfig{
			IdleTTL:         30 * time.Millisecond,
			CleanupInterval: time.Hour,
		})
		ctx := context.Background()

		first, err := m.Get(ctx, "a")
		require.NoError(t, err)
		_, err = first.SetField(ctx, "invoiceNumber", "#INV-55")
		require.NoError(t, err)

		time.Sleep(60 * time.Millisecond)
		second, err := m.Get(ctx, "a")
		require.NoError(t, err)

		assert.NotSame(t, first, second)
		assert.Equal(t, 1, store.SaveCount())
		assert.Equal(t, "#INV-55", second.View().Document.InvoiceNumber)
	})
}

func TestSessionManager_CloseAll(t *testing.T) {
	store := newRecordingStore()
	m := newTestManager(store, app.SessionManagerConfig{})
	ctx := context.Background()

	for _, owner := range []string{"a", "b", "c"} {
		s, err := m.Get(ctx, owner)
		require.NoError(t, err)
		_, err = s.SetField(ctx, "notes", owner)
		require.NoError(t, err)
	}

	require.NoError(t, m.CloseAll(ctx))

	assert.Equal(t, 3, store.SaveCount())
	assert.Equal(t, 0, m.Len())
}
