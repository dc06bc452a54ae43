package invoice

import (
	"encoding/json"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumber_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`"9.99"`, "9.99"},
		{`9.99`, "9.99"},
		{`""`, "0"},
		{`"abc"`, "0"},
		{`null`, "0"},
		{`true`, "0"},
		{`"  12 "`, "12"},
		{`1e100000000`, "0"},
		{`"-1e-100000000"`, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var n Number
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &n))
			assert.True(t, dec(tt.want).Equal(n.Decimal), n.String())
		})
	}
}

func TestNumber_MarshalJSON(t *testing.T) {
	raw, err := json.Marshal(NewNumber(dec("12.50")))

	require.NoError(t, err)
	assert.Equal(t, `"12.5"`, string(raw))
}

func TestSnapshot_Merge(t *testing.T) {
	t.Run("only present fields overwrite", func(t *testing.T) {
		base := Snapshot{
			InvoiceNumber: lo.ToPtr("#1"),
			Notes:         lo.ToPtr("keep"),
			LogoBase64:    lo.ToPtr("data:image/png;base64,AAAA"),
			Sender:        &PartySnapshot{Name: lo.ToPtr("Acme"), Email: lo.ToPtr("a@acme.test")},
		}

		base.Merge(Snapshot{
			InvoiceNumber: lo.ToPtr("#2"),
			Sender:        &PartySnapshot{Email: lo.ToPtr("")},
		})

		assert.Equal(t, "#2", *base.InvoiceNumber)
		assert.Equal(t, "keep", *base.Notes)
		assert.Equal(t, "data:image/png;base64,AAAA", *base.LogoBase64)
		assert.Equal(t, "Acme", *base.Sender.Name)
		assert.Equal(t, "", *base.Sender.Email)
	})

	t.Run("explicit empty item list replaces items", func(t *testing.T) {
		base := Snapshot{Items: &[]ItemSnapshot{{Description: "a"}}}

		base.Merge(Snapshot{Items: &[]ItemSnapshot{}})

		require.NotNil(t, base.Items)
		assert.Empty(t, *base.Items)
	})

	t.Run("field save leaves the logo alone", func(t *testing.T) {
		s := newTestState(t)
		s.SetLogo(InlineLogo("data:image/png;base64,BBBB"))
		stored := LogoPatch(ReferencedLogo("https://cdn.example.com/l.png"))

		stored.Merge(s.Serialize().FieldsOnly())

		assert.Equal(t, "https://cdn.example.com/l.png", *stored.LogoURL)
		assert.Equal(t, "", *stored.LogoBase64)
		assert.NotNil(t, stored.Items)
	})
}

func TestMergeJSON(t *testing.T) {
	tests := []struct {
		name   string
		stored string
		patch  Snapshot
		want   string
	}{
		{
			name:   "no stored document",
			stored: "",
			patch:  Snapshot{Notes: lo.ToPtr("hi")},
			want:   `{"notes":"hi"}`,
		},
		{
			name:   "unknown keys survive",
			stored: `{"inNum":"#1","plan":"pro","sender":{"name":"A","website":"x.io"}}`,
			patch:  Snapshot{Notes: lo.ToPtr("hi")},
			want:   `{"inNum":"#1","plan":"pro","notes":"hi","sender":{"name":"A","website":"x.io"}}`,
		},
		{
			name:   "parties merge per field",
			stored: `{"client":{"name":"B","vat":"DE1"}}`,
			patch:  Snapshot{Client: &PartySnapshot{Name: lo.ToPtr("C"), Email: lo.ToPtr("")}},
			want:   `{"client":{"name":"C","vat":"DE1","email":""}}`,
		},
		{
			name:   "a party that is not an object is replaced",
			stored: `{"sender":"legacy"}`,
			patch:  Snapshot{Sender: &PartySnapshot{Name: lo.ToPtr("A")}},
			want:   `{"sender":{"name":"A"}}`,
		},
		{
			name:   "items are replaced as a whole",
			stored: `{"items":[{"desc":"a","qty":"1","price":"2","extra":true}]}`,
			patch:  Snapshot{Items: &[]ItemSnapshot{}},
			want:   `{"items":[]}`,
		},
		{
			name:   "null document",
			stored: `null`,
			patch:  Snapshot{Theme: lo.ToPtr("#000000")},
			want:   `{"theme":"#000000"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stored []byte
			if tt.stored != "" {
				stored = []byte(tt.stored)
			}
			got, err := MergeJSON(stored, tt.patch)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}

	t.Run("malformed stored document", func(t *testing.T) {
		_, err := MergeJSON([]byte(`{"inNum":`), Snapshot{})
		assert.Error(t, err)
	})
}

func TestLogoPatch(t *testing.T) {
	inline := LogoPatch(InlineLogo("data:image/png;base64,AAAA"))
	assert.Equal(t, "data:image/png;base64,AAAA", *inline.LogoBase64)
	assert.Equal(t, "", *inline.LogoURL)
	assert.Nil(t, inline.Items)

	ref := LogoPatch(ReferencedLogo("https://cdn.example.com/l.png"))
	assert.Equal(t, "", *ref.LogoBase64)
	assert.Equal(t, "https://cdn.example.com/l.png", *ref.LogoURL)

	cleared := LogoPatch(Logo{})
	assert.Equal(t, "", *cleared.LogoBase64)
	assert.Equal(t, "", *cleared.LogoURL)
}

func TestSnapshot_IsEmpty(t *testing.T) {
	assert.True(t, Snapshot{}.IsEmpty())
	assert.False(t, Snapshot{Notes: lo.ToPtr("")}.IsEmpty())
}
