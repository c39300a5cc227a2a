package models

import (
	"time"

	"stockwise/internal/uuid"

	"gorm.io/gorm"
)

// Base contains the id and timestamps shared by the tables this service
// owns. Rows are deleted for real: a soft-deleted unhandled alert would
// still occupy the partial unique index.
type Base struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
	}
	return nil
}
