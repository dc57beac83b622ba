package entity

import (
	"time"
)

// StoredDocument is a named JSON document kept in the database. The sales
// collection is stored as one row.
type StoredDocument struct {
	Name      string    `gorm:"primaryKey;size:100"`
	Content   []byte    `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the StoredDocument model
func (StoredDocument) TableName() string {
	return "sales_documents"
}
