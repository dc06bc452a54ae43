package invoice

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/domain/shared"
)

// SessionDeps are the collaborators of a session
type SessionDeps struct {
	Store    invoice.SnapshotStore
	Renderer Renderer
	Logos    *LogoPolicy
	Listener StatusListener
	Autosave AutosaverConfig
	Clock    func() time.Time
	Logger   *zap.Logger
}

// Session owns the document of one owner.
//
// Every edit runs the same pipeline: mutate the state, recompute totals once,
// hand the resulting view to the renderer, then schedule a debounced save.
// The session mutex serializes edits; the autosave timer is the only other
// goroutine touching the state, and it only reads it.
type Session struct {
	ownerID   string
	store     invoice.SnapshotStore
	renderer  Renderer
	logos     *LogoPolicy
	autosaver *Autosaver
	logger    *zap.Logger

	mu    sync.Mutex
	state *invoice.State
	view  View
}

// NewSession creates a session holding a fresh document.
// Call Start to load the owner's saved document.
func NewSession(ownerID string, deps SessionDeps) *Session {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	renderer := deps.Renderer
	if renderer == nil {
		renderer = NopRenderer{}
	}
	logos := deps.Logos
	if logos == nil {
		logos = NewLogoPolicy(0, 0, nil, logger)
	}

	s := &Session{
		ownerID:  ownerID,
		store:    deps.Store,
		renderer: renderer,
		logos:    logos,
		logger:   logger.With(zap.String("owner_id", ownerID)),
		state:    invoice.NewState(invoice.WithClock(deps.Clock)),
	}
	s.autosaver = NewAutosaver(ownerID, deps.Store, s.persistedFields, deps.Autosave, deps.Listener, logger)
	return s
}

// OwnerID returns the id of the document owner
func (s *Session) OwnerID() string {
	return s.ownerID
}

// Start loads the owner's saved document and renders it.
// An owner without a saved document starts from a fresh one.
func (s *Session) Start(ctx context.Context) (View, error) {
	snap, err := s.store.Load(ctx, s.ownerID)
	switch {
	case errors.Is(err, invoice.ErrSnapshotNotFound):
		s.logger.Debug("no saved invoice, starting fresh")
	case err != nil:
		return View{}, fmt.Errorf("%w: load invoice: %v", shared.ErrPersistenceFailed, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if snap != nil {
		s.state.Deserialize(*snap)
	}
	return s.renderLocked(ctx), nil
}

// View returns the most recently rendered view
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.view
	v.Status, _ = s.autosaver.Status()
	return v
}

// SetField sets one field addressed by path
func (s *Session) SetField(ctx context.Context, path, value string) (View, error) {
	return s.SetFields(ctx, map[string]string{path: value})
}

// SetFields applies several field edits as one change.
// Paths are applied in sorted order; unknown paths are reported together
// and do not prevent the valid ones from being applied.
func (s *Session) SetFields(ctx context.Context, fields map[string]string) (View, error) {
	paths := make([]string, 0, len(fields))
	for path := range fields {
		paths = append(paths, path)
	}
	slices.Sort(paths)

	var errs []error
	applied := 0
	view := s.apply(ctx, func(st *invoice.State) bool {
		for _, path := range paths {
			if err := st.SetField(path, fields[path]); err != nil {
				errs = append(errs, err)
				continue
			}
			applied++
		}
		return applied > 0
	})
	return view, errors.Join(errs...)
}

// AddItem appends a line item
func (s *Session) AddItem(ctx context.Context, description string, quantity, unitPrice decimal.Decimal) (uuid.UUID, View) {
	var id uuid.UUID
	view := s.apply(ctx, func(st *invoice.State) bool {
		id = st.AddItem(description, quantity, unitPrice)
		return true
	})
	return id, view
}

// AddBlankItem appends an empty line item with quantity 1
func (s *Session) AddBlankItem(ctx context.Context) (uuid.UUID, View) {
	var id uuid.UUID
	view := s.apply(ctx, func(st *invoice.State) bool {
		id = st.AddBlankItem()
		return true
	})
	return id, view
}

// RemoveItem removes a line item. An unknown id changes nothing.
func (s *Session) RemoveItem(ctx context.Context, id string) (bool, View) {
	var removed bool
	view := s.apply(ctx, func(st *invoice.State) bool {
		removed = st.RemoveItem(id)
		return removed
	})
	return removed, view
}

// UploadLogo validates the image, stores it inline or by reference and
// saves the logo immediately. Field edits stay on the debounced path.
func (s *Session) UploadLogo(ctx context.Context, data []byte) (View, error) {
	logo, err := s.logos.Prepare(ctx, s.ownerID, data)
	if err != nil {
		return s.View(), err
	}

	s.mu.Lock()
	s.state.SetLogo(logo)
	view := s.renderLocked(ctx)
	s.mu.Unlock()

	if err := s.autosaver.SaveNow(ctx, invoice.LogoPatch(logo)); err != nil {
		return view, err
	}
	s.logger.Info("logo updated", zap.String("kind", string(logo.Kind)))
	return s.View(), nil
}

// Reset discards the document, deletes the saved copy and starts over
// with a fresh one.
func (s *Session) Reset(ctx context.Context) (View, error) {
	s.autosaver.Cancel()

	s.mu.Lock()
	s.state.Reset()
	view := s.renderLocked(ctx)
	s.mu.Unlock()

	if err := s.store.Delete(ctx, s.ownerID); err != nil {
		s.logger.Error("failed to delete saved invoice", zap.Error(err))
		return view, fmt.Errorf("%w: delete invoice: %v", shared.ErrPersistenceFailed, err)
	}
	s.logger.Info("invoice reset")
	return view, nil
}

// Flush saves pending edits now
func (s *Session) Flush(ctx context.Context) error {
	return s.autosaver.Flush(ctx)
}

// Close flushes pending edits. The session stays usable afterwards.
func (s *Session) Close(ctx context.Context) error {
	return s.Flush(ctx)
}

// Status returns the last save status
func (s *Session) Status() (SaveStatus, error) {
	return s.autosaver.Status()
}

// apply runs one edit through the pipeline. mutate reports whether the
// document changed; an unchanged document is neither rendered nor saved.
func (s *Session) apply(ctx context.Context, mutate func(*invoice.State) bool) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !mutate(s.state) {
		return s.view
	}
	view := s.renderLocked(ctx)
	s.autosaver.Schedule()
	return view
}

func (s *Session) renderLocked(ctx context.Context) View {
	status, _ := s.autosaver.Status()
	view := View{
		OwnerID:  s.ownerID,
		Document: s.state.Document(),
		Totals:   s.state.RecomputeTotals(),
		Layout:   s.state.Layout(),
		Status:   status,
	}
	s.view = view
	if err := s.renderer.Render(ctx, view); err != nil {
		s.logger.Warn("failed to render invoice", zap.Error(err))
	}
	return view
}

// persistedFields is the autosave source: the document without logo fields
func (s *Session) persistedFields() invoice.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Serialize().FieldsOnly()
}
