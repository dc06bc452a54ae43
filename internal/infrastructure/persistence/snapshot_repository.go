package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/infrastructure/persistence/models"
)

// GormSnapshotRepository implements invoice.SnapshotStore on PostgreSQL or SQLite
type GormSnapshotRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormSnapshotRepository creates a new GormSnapshotRepository
func NewGormSnapshotRepository(db *gorm.DB) *GormSnapshotRepository {
	return &GormSnapshotRepository{db: db, now: time.Now}
}

// Load returns the stored snapshot for an owner
func (r *GormSnapshotRepository) Load(ctx context.Context, ownerID string) (*invoice.Snapshot, error) {
	var model models.InvoiceDocumentModel
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invoice.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to load invoice document: %w", err)
	}
	return decodeSnapshot([]byte(model.Data))
}

// Save merges patch into the stored document inside one transaction.
// On PostgreSQL the current row is locked so concurrent writers serialize.
func (r *GormSnapshotRepository) Save(ctx context.Context, ownerID string, patch invoice.Snapshot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.InvoiceDocumentModel
		query := tx.Where("owner_id = ?", ownerID)
		if tx.Dialector.Name() == "postgres" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var existing []byte
		err := query.First(&current).Error
		switch {
		case err == nil:
			existing = []byte(current.Data)
		case errors.Is(err, gorm.ErrRecordNotFound):
			current = models.InvoiceDocumentModel{OwnerID: ownerID, CreatedAt: r.now()}
		default:
			return fmt.Errorf("failed to read invoice document: %w", err)
		}

		data, err := mergeSnapshot(existing, patch)
		if err != nil {
			return err
		}

		current.Data = string(data)
		current.Version++
		current.UpdatedAt = r.now()

		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "version", "updated_at"}),
		}).Create(&current).Error
		if err != nil {
			return fmt.Errorf("failed to save invoice document: %w", err)
		}
		return nil
	})
}

// Delete removes the stored document; a missing one is not an error
func (r *GormSnapshotRepository) Delete(ctx context.Context, ownerID string) error {
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Delete(&models.InvoiceDocumentModel{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete invoice document: %w", err)
	}
	return nil
}
