package persistence

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/invoicer/backend/internal/domain/invoice"
)

// FileSnapshotStore keeps one JSON file per owner under a directory.
// File names are a hash of the owner id so any id is a safe path.
type FileSnapshotStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileSnapshotStore creates the directory if needed
func NewFileSnapshotStore(dir string) (*FileSnapshotStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	return &FileSnapshotStore{dir: dir}, nil
}

func (s *FileSnapshotStore) path(ownerID string) string {
	sum := sha256.Sum256([]byte(ownerID))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:])+".json")
}

func (s *FileSnapshotStore) read(ownerID string) ([]byte, error) {
	data, err := os.ReadFile(s.path(ownerID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	return data, nil
}

// Load implements invoice.SnapshotStore
func (s *FileSnapshotStore) Load(_ context.Context, ownerID string) (*invoice.Snapshot, error) {
	s.mu.Lock()
	data, err := s.read(ownerID)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, invoice.ErrSnapshotNotFound
	}
	return decodeSnapshot(data)
}

// Save implements invoice.SnapshotStore. The file is replaced atomically.
func (s *FileSnapshotStore) Save(_ context.Context, ownerID string, patch invoice.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read(ownerID)
	if err != nil {
		return err
	}
	data, err := mergeSnapshot(current, patch)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(ownerID)); err != nil {
		return fmt.Errorf("failed to replace snapshot file: %w", err)
	}
	return nil
}

// Delete implements invoice.SnapshotStore
func (s *FileSnapshotStore) Delete(_ context.Context, ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(ownerID))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete snapshot file: %w", err)
	}
	return nil
}
