package invoice_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	app "github.com/invoicer/backend/internal/application/invoice"
	domain "github.com/invoicer/backend/internal/domain/invoice"
)

// =============================================================================
// Mock Implementations
// =============================================================================

type MockSnapshotStore struct {
	mock.Mock
}

func (m *MockSnapshotStore) Load(ctx context.Context, ownerID string) (*domain.Snapshot, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Snapshot), args.Error(1)
}

func (m *MockSnapshotStore) Save(ctx context.Context, ownerID string, patch domain.Snapshot) error {
	args := m.Called(ctx, ownerID, patch)
	return args.Error(0)
}

func (m *MockSnapshotStore) Delete(ctx context.Context, ownerID string) error {
	args := m.Called(ctx, ownerID)
	return args.Error(0)
}

type MockAssetStore struct {
	mock.Mock
}

func (m *MockAssetStore) Upload(ctx context.Context, ownerID string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, ownerID, data, contentType)
	return args.String(0), args.Error(1)
}

// recordingStore keeps every saved patch and merges them like a real store
type recordingStore struct {
	mu      sync.Mutex
	saves   []domain.Snapshot
	docs    map[string]*domain.Snapshot
	deletes int
}

func newRecordingStore() *recordingStore {
	return &recordingStore{docs: make(map[string]*domain.Snapshot)}
}

func (s *recordingStore) Load(_ context.Context, ownerID string) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[ownerID]
	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	cp := *doc
	return &cp, nil
}

func (s *recordingStore) Save(_ context.Context, ownerID string, patch domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves = append(s.saves, patch)
	doc, ok := s.docs[ownerID]
	if !ok {
		doc = &domain.Snapshot{}
		s.docs[ownerID] = doc
	}
	doc.Merge(patch)
	return nil
}

func (s *recordingStore) Delete(_ context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, ownerID)
	s.deletes++
	return nil
}

func (s *recordingStore) Saves() []domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Snapshot(nil), s.saves...)
}

func (s *recordingStore) SaveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saves)
}

// captureRenderer remembers the views it was handed
type captureRenderer struct {
	mu    sync.Mutex
	views []app.View
}

func (r *captureRenderer) Render(_ context.Context, view app.View) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, view)
	return nil
}

func (r *captureRenderer) Last() app.View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.views[len(r.views)-1]
}

func (r *captureRenderer) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}

func pngBytes(t *testing.T, size int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
