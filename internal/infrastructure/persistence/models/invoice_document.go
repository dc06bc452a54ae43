package models

import "time"

// InvoiceDocumentModel stores one owner's saved invoice as a JSON document.
// Version increments on every write.
type InvoiceDocumentModel struct {
	OwnerID   string    `gorm:"column:owner_id;type:varchar(255);primaryKey"`
	Data      string    `gorm:"column:data;not null"`
	Version   int       `gorm:"column:version;not null;default:1"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// TableName returns the table name for GORM
func (InvoiceDocumentModel) TableName() string {
	return "invoice_documents"
}
