package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"collegebank/internal/uuid"
)

// Base carries the id, timestamps and soft-delete marker shared by every
// back-office record except the audit trail.
type Base struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `gorm:"<-:create" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns a UUIDv7 when none is set. A preset id must already
// be a UUID; PostgreSQL would reject it later with a less useful error.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New()
		return nil
	}
	if !uuid.IsValid(b.ID) {
		return fmt.Errorf("invalid record id %q", b.ID)
	}
	return nil
}
