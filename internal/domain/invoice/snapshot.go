package invoice

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Number is a decimal that decodes leniently from snapshots.
// Older documents stored raw form input, so a value may arrive as a JSON
// number, a quoted string, an empty string or garbage; anything that is not
// numeric decodes to zero instead of failing.
type Number struct {
	decimal.Decimal
}

// NewNumber wraps a decimal
func NewNumber(d decimal.Decimal) Number {
	return Number{Decimal: d}
}

// MarshalJSON writes the value as a quoted decimal string, the same shape
// form input was stored in.
func (n Number) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Decimal.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		n.Decimal = decimal.Zero
		return nil
	}
	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			n.Decimal = decimal.Zero
			return nil
		}
	} else {
		s = string(data)
	}
	n.Decimal = ParseAmount(s)
	return nil
}

// PartySnapshot is the persisted shape of PartyInfo.
// Nil fields are absent and fall back to "" on load.
type PartySnapshot struct {
	Name     *string `json:"name,omitempty"`
	Services *string `json:"services,omitempty"`
	Address  *string `json:"address,omitempty"`
	Contact  *string `json:"contact,omitempty"`
	Email    *string `json:"email,omitempty"`
}

// ItemSnapshot is the persisted shape of LineItem
type ItemSnapshot struct {
	ID          string `json:"id,omitempty"`
	Description string `json:"desc"`
	Quantity    Number `json:"qty"`
	UnitPrice   Number `json:"price"`
}

// Snapshot is the persisted document. It carries no derived totals.
//
// Every field is optional so that a Snapshot doubles as a merge patch:
// stores overwrite only the fields that are present. Items is a pointer so
// that an explicitly empty list can be told apart from "not supplied".
type Snapshot struct {
	InvoiceNumber *string         `json:"inNum,omitempty"`
	InvoiceDate   *string         `json:"inDate,omitempty"`
	Currency      *string         `json:"currency,omitempty"`
	Theme         *string         `json:"theme,omitempty"`
	Sender        *PartySnapshot  `json:"sender,omitempty"`
	Client        *PartySnapshot  `json:"client,omitempty"`
	Items         *[]ItemSnapshot `json:"items,omitempty"`
	Discount      *Number         `json:"discount,omitempty"`
	Tax           *Number         `json:"tax,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
	LogoWidth     *int            `json:"logoWidth,omitempty"`
	LogoBase64    *string         `json:"logoBase64,omitempty"`
	LogoURL       *string         `json:"logoUrl,omitempty"`
}

// Merge copies every field present in patch onto s.
// Party fields merge one level deep, matching a document-store merge write.
func (s *Snapshot) Merge(patch Snapshot) {
	if patch.InvoiceNumber != nil {
		s.InvoiceNumber = patch.InvoiceNumber
	}
	if patch.InvoiceDate != nil {
		s.InvoiceDate = patch.InvoiceDate
	}
	if patch.Currency != nil {
		s.Currency = patch.Currency
	}
	if patch.Theme != nil {
		s.Theme = patch.Theme
	}
	s.Sender = mergeParty(s.Sender, patch.Sender)
	s.Client = mergeParty(s.Client, patch.Client)
	if patch.Items != nil {
		s.Items = patch.Items
	}
	if patch.Discount != nil {
		s.Discount = patch.Discount
	}
	if patch.Tax != nil {
		s.Tax = patch.Tax
	}
	if patch.Notes != nil {
		s.Notes = patch.Notes
	}
	if patch.LogoWidth != nil {
		s.LogoWidth = patch.LogoWidth
	}
	if patch.LogoBase64 != nil {
		s.LogoBase64 = patch.LogoBase64
	}
	if patch.LogoURL != nil {
		s.LogoURL = patch.LogoURL
	}
}

func mergeParty(dst, patch *PartySnapshot) *PartySnapshot {
	if patch == nil {
		return dst
	}
	if dst == nil {
		cp := *patch
		return &cp
	}
	merged := *dst
	if patch.Name != nil {
		merged.Name = patch.Name
	}
	if patch.Services != nil {
		merged.Services = patch.Services
	}
	if patch.Address != nil {
		merged.Address = patch.Address
	}
	if patch.Contact != nil {
		merged.Contact = patch.Contact
	}
	if patch.Email != nil {
		merged.Email = patch.Email
	}
	return &merged
}

// IsEmpty returns true if the snapshot carries no field at all
func (s Snapshot) IsEmpty() bool {
	return s == Snapshot{}
}

// LogoPatch builds the patch written when a logo is uploaded.
// It sets one representation and clears the other.
func LogoPatch(logo Logo) Snapshot {
	return Snapshot{
		LogoBase64: lo.ToPtr(logo.Data),
		LogoURL:    lo.ToPtr(logo.URL),
	}
}

// FieldsOnly returns a copy of the snapshot without the logo fields.
// The debounced field save uses it so it never clobbers a logo written
// through the separate upload path.
func (s Snapshot) FieldsOnly() Snapshot {
	s.LogoBase64 = nil
	s.LogoURL = nil
	return s
}

// snapshotParty converts PartyInfo to its persisted shape
func snapshotParty(p PartyInfo) *PartySnapshot {
	return &PartySnapshot{
		Name:     lo.ToPtr(p.Name),
		Services: lo.ToPtr(p.ServicesLine),
		Address:  lo.ToPtr(p.Address),
		Contact:  lo.ToPtr(p.Contact),
		Email:    lo.ToPtr(p.Email),
	}
}

// partyFromSnapshot converts a persisted party, defaulting absent fields to ""
func partyFromSnapshot(p *PartySnapshot) PartyInfo {
	if p == nil {
		return PartyInfo{}
	}
	return PartyInfo{
		Name:         lo.FromPtr(p.Name),
		ServicesLine: lo.FromPtr(p.Services),
		Address:      lo.FromPtr(p.Address),
		Contact:      lo.FromPtr(p.Contact),
		Email:        lo.FromPtr(p.Email),
	}
}

// logoFromSnapshot picks the non-empty logo representation.
// A reference wins if a legacy document somehow carries both.
func logoFromSnapshot(s Snapshot) Logo {
	if url := strings.TrimSpace(lo.FromPtr(s.LogoURL)); url != "" {
		return ReferencedLogo(url)
	}
	return InlineLogo(lo.FromPtr(s.LogoBase64))
}

// partyKeys are the snapshot keys merged one level deep
var partyKeys = map[string]bool{"sender": true, "client": true}

// MergeJSON overlays patch on a stored JSON document and returns the result.
// Keys the patch does not carry are kept as stored, including keys this
// package does not model, so documents written by other clients survive.
// Parties merge per field; every other key is replaced as a whole.
// A nil stored document starts from an empty one.
func MergeJSON(stored []byte, patch Snapshot) ([]byte, error) {
	var doc map[string]json.RawMessage
	if len(bytes.TrimSpace(stored)) > 0 {
		if err := json.Unmarshal(stored, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot: %w", err)
		}
	}
	if doc == nil {
		doc = map[string]json.RawMessage{}
	}

	raw, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot patch: %w", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot patch: %w", err)
	}

	for key, value := range fields {
		if partyKeys[key] {
			value, err = mergeObject(doc[key], value)
			if err != nil {
				return nil, err
			}
		}
		doc[key] = value
	}
	return json.Marshal(doc)
}

// mergeObject overlays the keys of patch on stored. A stored value that is
// not an object is replaced.
func mergeObject(stored, patch json.RawMessage) (json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if len(stored) > 0 && json.Unmarshal(stored, &obj) != nil {
		obj = nil
	}
	if obj == nil {
		obj = map[string]json.RawMessage{}
	}
	var overlay map[string]json.RawMessage
	if err := json.Unmarshal(patch, &overlay); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot patch: %w", err)
	}
	for k, v := range overlay {
		obj[k] = v
	}
	return json.Marshal(obj)
}
