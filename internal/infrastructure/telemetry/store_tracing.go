package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"

	"github.com/invoicer/backend/internal/domain/invoice"
)

// TracedSnapshotStore records one span per snapshot store call.
type TracedSnapshotStore struct {
	next    invoice.SnapshotStore
	backend string
}

// NewTracedSnapshotStore wraps next. backend names the driver in span attributes.
func NewTracedSnapshotStore(next invoice.SnapshotStore, backend string) *TracedSnapshotStore {
	return &TracedSnapshotStore{next: next, backend: backend}
}

// Load implements invoice.SnapshotStore. A missing snapshot is not a span error.
func (s *TracedSnapshotStore) Load(ctx context.Context, ownerID string) (*invoice.Snapshot, error) {
	ctx, span := StartSpan(ctx, "invoice.store.load", s.attrs("load", ownerID)...)
	snap, err := s.next.Load(ctx, ownerID)
	if errors.Is(err, invoice.ErrSnapshotNotFound) {
		span.SetAttributes(AttrOutcome.String("not_found"))
		EndSpan(span, nil)
		return snap, err
	}
	EndSpan(span, err)
	return snap, err
}

// Save implements invoice.SnapshotStore
func (s *TracedSnapshotStore) Save(ctx context.Context, ownerID string, patch invoice.Snapshot) error {
	ctx, span := StartSpan(ctx, "invoice.store.save", s.attrs("save", ownerID)...)
	err := s.next.Save(ctx, ownerID, patch)
	EndSpan(span, err)
	return err
}

// Delete implements invoice.SnapshotStore
func (s *TracedSnapshotStore) Delete(ctx context.Context, ownerID string) error {
	ctx, span := StartSpan(ctx, "invoice.store.delete", s.attrs("delete", ownerID)...)
	err := s.next.Delete(ctx, ownerID)
	EndSpan(span, err)
	return err
}

func (s *TracedSnapshotStore) attrs(op, ownerID string) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrStoreOp.String(op),
		AttrOwnerID.String(ownerID),
		attribute.String("invoice.store_backend", s.backend),
	}
}
