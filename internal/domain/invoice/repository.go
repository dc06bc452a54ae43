package invoice

import (
	"context"

	"github.com/invoicer/backend/internal/domain/shared"
)

// ErrSnapshotNotFound is returned by SnapshotStore.Load when the owner has
// never saved a document. Callers treat it as the new-document case.
var ErrSnapshotNotFound = shared.NewDomainError("SNAPSHOT_NOT_FOUND", "No saved invoice for this owner")

// SnapshotStore persists one document snapshot per owner
type SnapshotStore interface {
	// Load returns the stored snapshot or ErrSnapshotNotFound
	Load(ctx context.Context, ownerID string) (*Snapshot, error)
	// Save merges the fields present in patch into the stored snapshot,
	// creating it when absent. Fields not present in patch are left untouched.
	Save(ctx context.Context, ownerID string, patch Snapshot) error
	// Delete removes the stored snapshot; deleting a missing one is not an error
	Delete(ctx context.Context, ownerID string) error
}

// AssetStore keeps binary assets out of line and returns a reference URL
type AssetStore interface {
	Upload(ctx context.Context, ownerID string, data []byte, contentType string) (string, error)
}
