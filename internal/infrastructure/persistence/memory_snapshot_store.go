package persistence

import (
	"context"
	"sync"

	"github.com/invoicer/backend/internal/domain/invoice"
)

// MemorySnapshotStore keeps encoded snapshots in process memory.
// Used in development and tests; contents are lost on restart.
type MemorySnapshotStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemorySnapshotStore creates an empty store
func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{docs: make(map[string][]byte)}
}

// Load implements invoice.SnapshotStore
func (s *MemorySnapshotStore) Load(_ context.Context, ownerID string) (*invoice.Snapshot, error) {
	s.mu.RLock()
	data, ok := s.docs[ownerID]
	s.mu.RUnlock()
	if !ok {
		return nil, invoice.ErrSnapshotNotFound
	}
	return decodeSnapshot(data)
}

// Save implements invoice.SnapshotStore
func (s *MemorySnapshotStore) Save(_ context.Context, ownerID string, patch invoice.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := mergeSnapshot(s.docs[ownerID], patch)
	if err != nil {
		return err
	}
	s.docs[ownerID] = data
	return nil
}

// Delete implements invoice.SnapshotStore
func (s *MemorySnapshotStore) Delete(_ context.Context, ownerID string) error {
	s.mu.Lock()
	delete(s.docs, ownerID)
	s.mu.Unlock()
	return nil
}
