package persistence

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoicer/backend/internal/domain/invoice"
)

func TestLocalSnapshotStores(t *testing.T) {
	stores := map[string]func(t *testing.T) invoice.SnapshotStore{
		"memory": func(t *testing.T) invoice.SnapshotStore {
			return NewMemorySnapshotStore()
		},
		"file": func(t *testing.T) invoice.SnapshotStore {
			s, err := NewFileSnapshotStore(t.TempDir())
			require.NoError(t, err)
			return s
		},
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)

			_, err := store.Load(ctx, "u1")
			require.ErrorIs(t, err, invoice.ErrSnapshotNotFound)

			items := []invoice.ItemSnapshot{{ID: "a", Description: "Design"}}
			require.NoError(t, store.Save(ctx, "u1", invoice.Snapshot{Items: &items, Currency: lo.ToPtr("€")}))
			require.NoError(t, store.Save(ctx, "u1", invoice.LogoPatch(invoice.Logo{Kind: invoice.LogoInline, Data: "data:x"})))

			snap, err := store.Load(ctx, "u1")
			require.NoError(t, err)
			assert.Equal(t, "€", *snap.Currency)
			require.NotNil(t, snap.Items)
			assert.Equal(t, "Design", (*snap.Items)[0].Description)
			assert.Equal(t, "data:x", *snap.LogoBase64)

			require.NoError(t, store.Delete(ctx, "u1"))
			require.NoError(t, store.Delete(ctx, "u1"))
			_, err = store.Load(ctx, "u1")
			assert.ErrorIs(t, err, invoice.ErrSnapshotNotFound)
		})
	}
}

func TestFileSnapshotStore_KeepsUnknownKeys(t *testing.T) {
	store, err := NewFileSnapshotStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.path("u1"),
		[]byte(`{"inNum":"#1","plan":"pro","sender":{"name":"A","website":"x.io"}}`), 0o600))

	require.NoError(t, store.Save(context.Background(), "u1", invoice.Snapshot{Notes: lo.ToPtr("hi")}))

	data, err := os.ReadFile(store.path("u1"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"inNum":"#1","plan":"pro","notes":"hi","sender":{"name":"A","website":"x.io"}}`, string(data))
}

func TestFileSnapshotStore_UnsafeOwnerIDs(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileSnapshotStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save(context.Background(), "../../etc/passwd", invoice.Snapshot{Notes: lo.ToPtr("x")}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Len(t, entries[0].Name(), 64+len(".json"))
}

func TestMemorySnapshotStore_ConcurrentSaves(t *testing.T) {
	store := NewMemorySnapshotStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Save(ctx, "u1", invoice.Snapshot{Notes: lo.ToPtr("n")})
		}()
	}
	wg.Wait()

	snap, err := store.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "n", *snap.Notes)
}
