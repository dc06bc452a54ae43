package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileSystemAssetStore writes logos under a local directory that the HTTP
// server exposes at BaseURL.
type FileSystemAssetStore struct {
	dir     string
	baseURL string
}

// NewFileSystemAssetStore creates the directory if needed
func NewFileSystemAssetStore(dir, baseURL string) (*FileSystemAssetStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create asset directory: %w", err)
	}
	return &FileSystemAssetStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir returns the root directory served as static files
func (s *FileSystemAssetStore) Dir() string {
	return s.dir
}

// Upload implements invoice.AssetStore
func (s *FileSystemAssetStore) Upload(_ context.Context, ownerID string, data []byte, _ string) (string, error) {
	key := logoKey(ownerID, data)
	target := filepath.Join(s.dir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create asset directory: %w", err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write logo: %w", err)
	}
	return s.baseURL + "/" + key, nil
}
