package invoice

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 9, 15, 4, 5, 0, time.Local)

func newTestState(t *testing.T) *State {
	t.Helper()
	return NewState(WithClock(func() time.Time { return fixedNow }))
}

func TestNewState(t *testing.T) {
	s := newTestState(t)
	doc := s.Document()

	assert.Equal(t, DefaultInvoiceNumber, doc.InvoiceNumber)
	assert.Equal(t, DefaultCurrencySymbol, doc.CurrencySymbol)
	assert.Equal(t, DefaultThemeColor, doc.ThemeColor)
	assert.Equal(t, DefaultLogoWidth, doc.LogoWidth)
	assert.Equal(t, "2024-03-09", doc.FormattedDate())
	assert.True(t, doc.Logo.IsZero())

	require.Len(t, doc.Items, 1)
	assert.Equal(t, "", doc.Items[0].Description)
	assert.True(t, decimal.NewFromInt(1).Equal(doc.Items[0].Quantity))
	assert.True(t, doc.Items[0].UnitPrice.IsZero())
	assert.True(t, s.RecomputeTotals().GrandTotal.IsZero())
}

func TestState_SetField(t *testing.T) {
	t.Run("sets scalar and party fields", func(t *testing.T) {
		s := newTestState(t)

		require.NoError(t, s.SetField("invoiceNumber", "#INV-042"))
		require.NoError(t, s.SetField("invoiceDate", "2023-12-31"))
		require.NoError(t, s.SetField("currencySymbol", "€"))
		require.NoError(t, s.SetField("notes", "Thanks"))
		require.NoError(t, s.SetField("themeColor", "#000000"))
		require.NoError(t, s.SetField("logoWidth", "140"))
		require.NoError(t, s.SetField("sender.name", "Acme"))
		require.NoError(t, s.SetField("sender.services", "Design"))
		require.NoError(t, s.SetField("client.email", "bill@example.com"))
		require.NoError(t, s.SetField("client.address", ""))

		doc := s.Document()
		assert.Equal(t, "#INV-042", doc.InvoiceNumber)
		assert.Equal(t, "2023-12-31", doc.FormattedDate())
		assert.Equal(t, "€", doc.CurrencySymbol)
		assert.Equal(t, "Thanks", doc.Notes)
		assert.Equal(t, "#000000", doc.ThemeColor)
		assert.Equal(t, 140, doc.LogoWidth)
		assert.Equal(t, "Acme", doc.Sender.Name)
		assert.Equal(t, "Design", doc.Sender.ServicesLine)
		assert.Equal(t, "bill@example.com", doc.Client.Email)
		assert.Equal(t, "", doc.Client.Address)
	})

	t.Run("coerces non-numeric input to zero", func(t *testing.T) {
		s := newTestState(t)
		id := s.Document().Items[0].ID.String()

		require.NoError(t, s.SetField("discountRate", "ten"))
		require.NoError(t, s.SetField("taxRate", ""))
		require.NoError(t, s.SetField("items."+id+".quantity", "lots"))
		require.NoError(t, s.SetField("items."+id+".unitPrice", "-5"))

		doc := s.Document()
		assert.True(t, doc.DiscountRatePercent.IsZero())
		assert.True(t, doc.TaxRatePercent.IsZero())
		assert.True(t, doc.Items[0].Quantity.IsZero())
		assert.True(t, doc.Items[0].UnitPrice.IsZero())
	})

	t.Run("out of range numbers become zero", func(t *testing.T) {
		s := newTestState(t)
		id := s.Document().Items[0].ID.String()

		require.NoError(t, s.SetField("items."+id+".unitPrice", "1e100000000"))
		require.NoError(t, s.SetField("items."+id+".quantity", "1e-100000000"))
		require.NoError(t, s.SetField("taxRate", "9e999999999"))
		require.NoError(t, s.SetField("logoWidth", "1e18"))

		doc := s.Document()
		assert.True(t, doc.Items[0].UnitPrice.IsZero())
		assert.True(t, doc.Items[0].Quantity.IsZero())
		assert.True(t, doc.TaxRatePercent.IsZero())
		assert.Equal(t, 0, doc.LogoWidth)
		assert.Equal(t, "$0.00", FormatMoney("$", s.RecomputeTotals().GrandTotal))

		require.NoError(t, s.SetField("logoWidth", "5000"))
		assert.Equal(t, MaxLogoWidth, s.Document().LogoWidth)
	})

	t.Run("edits an item by id", func(t *testing.T) {
		s := newTestState(t)
		id := s.Document().Items[0].ID.String()

		require.NoError(t, s.SetField("items."+id+".description", "Widget"))
		require.NoError(t, s.SetField("items."+id+".quantity", "2"))
		require.NoError(t, s.SetField("items."+id+".unitPrice", "9.99"))

		assert.True(t, dec("19.98").Equal(s.RecomputeTotals().Subtotal))
	})

	t.Run("ignores edits to a removed item", func(t *testing.T) {
		s := newTestState(t)
		before := s.Document()

		err := s.SetField("items."+uuid.NewString()+".quantity", "3")

		require.NoError(t, err)
		assert.Equal(t, before, s.Document())
	})

	t.Run("rejects unknown paths", func(t *testing.T) {
		s := newTestState(t)
		for _, path := range []string{"total", "sender.phone", "items.x", "items.x.color", "vendor.name", ""} {
			err := s.SetField(path, "v")
			assert.True(t, errors.Is(err, ErrUnknownField), path)
		}
	})
}

func TestFieldPaths(t *testing.T) {
	paths := FieldPaths()

	assert.Contains(t, paths, "discountRate")
	assert.Contains(t, paths, "client.services")
	assert.Contains(t, paths, "items.<id>.unitPrice")
	assert.IsNonDecreasing(t, paths)
}

func TestState_AddRemoveItems(t *testing.T) {
	t.Run("subtotal tracks present items over any sequence", func(t *testing.T) {
		s := newTestState(t)
		s.RemoveItem(s.Document().Items[0].ID.String())

		a := s.AddItem("a", dec("2"), dec("3"))
		b := s.AddItem("b", dec("1"), dec("10"))
		c := s.AddItem("c", dec("4"), dec("0.25"))
		assert.True(t, dec("17").Equal(s.RecomputeTotals().Subtotal))

		assert.True(t, s.RemoveItem(b.String()))
		assert.True(t, dec("7").Equal(s.RecomputeTotals().Subtotal))

		s.AddItem("d", dec("1"), dec("1"))
		assert.True(t, s.RemoveItem(a.String()))
		assert.True(t, s.RemoveItem(c.String()))
		assert.True(t, dec("1").Equal(s.RecomputeTotals().Subtotal))

		expected := decimal.Zero
		for _, it := range s.Document().Items {
			expected = expected.Add(it.LineTotal())
		}
		assert.True(t, expected.Equal(s.RecomputeTotals().Subtotal))
	})

	t.Run("clamps negative values", func(t *testing.T) {
		s := newTestState(t)
		id := s.AddItem("refund", dec("-1"), dec("-20"))

		doc := s.Document()
		it := doc.Items[doc.itemIndex(id.String())]
		assert.True(t, it.Quantity.IsZero())
		assert.True(t, it.UnitPrice.IsZero())
	})

	t.Run("drops out of range values", func(t *testing.T) {
		s := newTestState(t)
		id := s.AddItem("huge", dec("2"), decimal.New(1, 100000000))

		doc := s.Document()
		it := doc.Items[doc.itemIndex(id.String())]
		assert.True(t, it.Quantity.Equal(dec("2")))
		assert.True(t, it.UnitPrice.IsZero())
	})

	t.Run("removing an unknown id changes nothing", func(t *testing.T) {
		s := newTestState(t)
		s.AddItem("Widget", dec("2"), dec("9.99"))
		require.NoError(t, s.SetField("discountRate", "10"))
		before := s.Document()
		totals := s.RecomputeTotals()

		assert.False(t, s.RemoveItem(uuid.NewString()))
		assert.False(t, s.RemoveItem("not-an-id"))

		assert.Equal(t, before, s.Document())
		assert.True(t, totals.Equal(s.RecomputeTotals()))
	})

	t.Run("regenerates colliding ids", func(t *testing.T) {
		fixed := uuid.MustParse("11111111-1111-1111-1111-111111111111")
		other := uuid.MustParse("22222222-2222-2222-2222-222222222222")
		ids := []uuid.UUID{fixed, fixed, uuid.Nil, other}
		gen := func() uuid.UUID {
			id := ids[0]
			ids = ids[1:]
			return id
		}
		s := NewState(WithIDGenerator(gen))

		got := s.AddBlankItem()

		assert.Equal(t, other, got)
		assert.Len(t, s.Document().Items, 2)
	})

	t.Run("document copy is detached", func(t *testing.T) {
		s := newTestState(t)
		doc := s.Document()
		doc.Items[0].Description = "mutated"
		doc.Items = append(doc.Items, LineItem{})

		assert.Equal(t, "", s.Document().Items[0].Description)
		assert.Len(t, s.Document().Items, 1)
	})
}

func TestState_Reset(t *testing.T) {
	s := newTestState(t)
	s.AddItem("a", dec("1"), dec("1"))
	require.NoError(t, s.SetField("sender.name", "Acme"))
	s.SetLogo(InlineLogo("data:image/png;base64,AAAA"))

	s.Reset()

	doc := s.Document()
	assert.Equal(t, "", doc.Sender.Name)
	assert.True(t, doc.Logo.IsZero())
	assert.Len(t, doc.Items, 1)
	assert.Equal(t, DefaultInvoiceNumber, doc.InvoiceNumber)
}

func TestState_SerializeRoundTrip(t *testing.T) {
	s := newTestState(t)
	require.NoError(t, s.SetField("invoiceNumber", "#INV-777"))
	require.NoError(t, s.SetField("sender.name", "Acme"))
	require.NoError(t, s.SetField("client.contact", "+1 555 0100"))
	require.NoError(t, s.SetField("discountRate", "12.5"))
	require.NoError(t, s.SetField("taxRate", "8"))
	require.NoError(t, s.SetField("notes", "Net 30"))
	s.AddItem("Consulting", dec("3.5"), dec("120"))
	s.AddItem("", dec("0"), dec("0"))
	s.SetLogo(ReferencedLogo("https://cdn.example.com/logo.png"))

	raw, err := json.Marshal(s.Serialize())
	require.NoError(t, err)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(raw, &snap))
	restored := FromSnapshot(snap)

	again, err := json.Marshal(restored.Serialize())
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(again))
	assert.True(t, s.RecomputeTotals().Equal(restored.RecomputeTotals()))
	assert.Equal(t,
		lo.Map(s.Document().Items, func(it LineItem, _ int) uuid.UUID { return it.ID }),
		lo.Map(restored.Document().Items, func(it LineItem, _ int) uuid.UUID { return it.ID }),
	)
	assert.NotContains(t, string(raw), "total")
}

func TestState_Deserialize(t *testing.T) {
	t.Run("missing items key yields one blank item", func(t *testing.T) {
		var snap Snapshot
		require.NoError(t, json.Unmarshal([]byte(`{"inNum":"#INV-9","discount":"10"}`), &snap))

		s := FromSnapshot(snap)

		doc := s.Document()
		require.Len(t, doc.Items, 1)
		assert.Equal(t, "", doc.Items[0].Description)
		assert.True(t, decimal.NewFromInt(1).Equal(doc.Items[0].Quantity))
		assert.Equal(t, "#INV-9", doc.InvoiceNumber)
		assert.True(t, s.RecomputeTotals().GrandTotal.IsZero())
	})

	t.Run("empty items list yields one blank item", func(t *testing.T) {
		var snap Snapshot
		require.NoError(t, json.Unmarshal([]byte(`{"items":[]}`), &snap))

		assert.Len(t, FromSnapshot(snap).Document().Items, 1)
	})

	t.Run("missing fields take defaults", func(t *testing.T) {
		s := FromSnapshot(Snapshot{})
		doc := s.Document()

		assert.Equal(t, DefaultInvoiceNumber, doc.InvoiceNumber)
		assert.Equal(t, DefaultCurrencySymbol, doc.CurrencySymbol)
		assert.Equal(t, DefaultThemeColor, doc.ThemeColor)
		assert.Equal(t, DefaultLogoWidth, doc.LogoWidth)
		assert.Equal(t, "", doc.FormattedDate())
		assert.True(t, doc.Sender.IsEmpty())
		assert.True(t, doc.DiscountRatePercent.IsZero())
	})

	t.Run("present empty strings are kept", func(t *testing.T) {
		s := FromSnapshot(Snapshot{InvoiceNumber: lo.ToPtr(""), Currency: lo.ToPtr("")})

		assert.Equal(t, "", s.Document().InvoiceNumber)
		assert.Equal(t, "", s.Document().CurrencySymbol)
	})

	t.Run("tolerates legacy numeric encodings", func(t *testing.T) {
		raw := `{
			"items":[
				{"desc":"Widget","qty":"2","price":9.99},
				{"desc":"Bad","qty":"x","price":null},
				{"desc":"Neg","qty":-3,"price":"4"}
			],
			"discount":10,
			"tax":"5",
			"logoBase64":"data:image/png;base64,AAAA"
		}`
		var snap Snapshot
		require.NoError(t, json.Unmarshal([]byte(raw), &snap))

		s := FromSnapshot(snap)
		doc := s.Document()

		require.Len(t, doc.Items, 3)
		assert.True(t, doc.Items[1].Quantity.IsZero())
		assert.True(t, doc.Items[1].UnitPrice.IsZero())
		assert.True(t, doc.Items[2].Quantity.IsZero())
		assert.Equal(t, LogoInline, doc.Logo.Kind)
		assert.Equal(t, "$18.88", FormatMoney("$", s.RecomputeTotals().GrandTotal))
	})

	t.Run("duplicate or invalid item ids are replaced", func(t *testing.T) {
		id := uuid.NewString()
		snap := Snapshot{Items: &[]ItemSnapshot{
			{ID: id, Description: "a"},
			{ID: id, Description: "b"},
			{ID: "nope", Description: "c"},
		}}

		doc := FromSnapshot(snap).Document()

		require.Len(t, doc.Items, 3)
		assert.Equal(t, id, doc.Items[0].ID.String())
		assert.NotEqual(t, id, doc.Items[1].ID.String())
		assert.NotEqual(t, doc.Items[1].ID, doc.Items[2].ID)
	})
}

func TestState_Layout(t *testing.T) {
	s := newTestState(t)
	s.AddItem("Twelve chars", dec("1"), dec("1"))
	require.NoError(t, s.SetField("notes", "abc"))
	require.NoError(t, s.SetField("sender.name", "Acme"))

	m := s.Layout()

	assert.Equal(t, 2, m.ItemCount)
	assert.Equal(t, 2, m.VisibleItemCount)
	assert.Equal(t, 12, m.LongestDescription)
	assert.Equal(t, 3, m.NotesLength)
	assert.Equal(t, 4, m.PartyTextLength)
	assert.Equal(t, 19, m.TotalTextLength)
}
