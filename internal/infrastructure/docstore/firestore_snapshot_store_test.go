package docstore

import (
	"testing"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invoicer/backend/internal/domain/invoice"
)

func TestToFields(t *testing.T) {
	t.Run("only present fields are written", func(t *testing.T) {
		fields, err := toFields(invoice.Snapshot{
			Notes:  lo.ToPtr("Thanks"),
			Sender: &invoice.PartySnapshot{Name: lo.ToPtr("Acme")},
		})
		require.NoError(t, err)

		assert.Equal(t, map[string]any{
			"notes":  "Thanks",
			"sender": map[string]any{"name": "Acme"},
		}, fields)
	})

	t.Run("empty patch has no fields", func(t *testing.T) {
		fields, err := toFields(invoice.Snapshot{})
		require.NoError(t, err)
		assert.Empty(t, fields)
	})
}

func TestFromFields(t *testing.T) {
	// Firestore returns integers as int64 and the legacy client stored numbers unquoted
	snap, err := fromFields(map[string]any{
		"inNum":     "#INV-3",
		"logoWidth": int64(120),
		"tax":       8.5,
		"items": []any{
			map[string]any{"id": "a", "desc": "Design", "qty": int64(2), "price": "10.50"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "#INV-3", *snap.InvoiceNumber)
	assert.Equal(t, 120, *snap.LogoWidth)
	assert.True(t, decimal.RequireFromString("8.5").Equal(snap.Tax.Decimal))
	require.Len(t, *snap.Items, 1)
	assert.True(t, decimal.NewFromInt(2).Equal((*snap.Items)[0].Quantity.Decimal))
}

func TestNewFirestoreSnapshotStore_DefaultCollection(t *testing.T) {
	assert.Equal(t, "users", NewFirestoreSnapshotStore(nil, "").collection)
}
