// Package docstore persists invoice snapshots in Cloud Firestore, one
// document per owner, using server-side merge writes.
package docstore

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/infrastructure/config"
)

const defaultCollection = "users"

// FirestoreSnapshotStore implements invoice.SnapshotStore on Firestore.
// Save sends only the fields present in the patch with MergeAll, so fields
// written by other clients stay untouched.
type FirestoreSnapshotStore struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreClient creates a client for the configured project.
// Credentials come from the environment (GOOGLE_APPLICATION_CREDENTIALS or
// FIRESTORE_EMULATOR_HOST).
func NewFirestoreClient(ctx context.Context, cfg config.FirestoreConfig) (*firestore.Client, error) {
	client, err := firestore.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return client, nil
}

// NewFirestoreSnapshotStore creates a store writing to collection
func NewFirestoreSnapshotStore(client *firestore.Client, collection string) *FirestoreSnapshotStore {
	if collection == "" {
		collection = defaultCollection
	}
	return &FirestoreSnapshotStore{client: client, collection: collection}
}

func (s *FirestoreSnapshotStore) doc(ownerID string) *firestore.DocumentRef {
	return s.client.Collection(s.collection).Doc(ownerID)
}

// Load implements invoice.SnapshotStore
func (s *FirestoreSnapshotStore) Load(ctx context.Context, ownerID string) (*invoice.Snapshot, error) {
	docSnap, err := s.doc(ownerID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, invoice.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load invoice document: %w", err)
	}
	return fromFields(docSnap.Data())
}

// Save implements invoice.SnapshotStore
func (s *FirestoreSnapshotStore) Save(ctx context.Context, ownerID string, patch invoice.Snapshot) error {
	fields, err := toFields(patch)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	if _, err := s.doc(ownerID).Set(ctx, fields, firestore.MergeAll); err != nil {
		return fmt.Errorf("failed to save invoice document: %w", err)
	}
	return nil
}

// Delete implements invoice.SnapshotStore
func (s *FirestoreSnapshotStore) Delete(ctx context.Context, ownerID string) error {
	if _, err := s.doc(ownerID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete invoice document: %w", err)
	}
	return nil
}

// toFields converts a patch to the nested map Firestore merges field by field.
// The JSON tags define the document field names.
func toFields(patch invoice.Snapshot) (map[string]any, error) {
	data, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("failed to encode invoice document: %w", err)
	}
	fields := map[string]any{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to encode invoice document: %w", err)
	}
	return fields, nil
}

func fromFields(fields map[string]any) (*invoice.Snapshot, error) {
	data, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to decode invoice document: %w", err)
	}
	var snap invoice.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode invoice document: %w", err)
	}
	return &snap, nil
}
