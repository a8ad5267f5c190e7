package models

import (
	"time"

	"gorm.io/gorm"

	"collegebank/internal/uuid"
)

// AuditLog is one append-only row of the back-office audit trail: who did
// what to which record, from where. Rows are never updated or deleted.
type AuditLog struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Action       string    `gorm:"not null;index" json:"action"`
	ResourceType string    `gorm:"not null;index:idx_audit_logs_resource" json:"resource_type"`
	ResourceID   string    `gorm:"type:uuid;index:idx_audit_logs_resource" json:"resource_id,omitempty"`
	IPAddress    string    `json:"ip_address,omitempty"`
	Changes      string    `json:"changes,omitempty"`
	CreatedAt    time.Time `gorm:"<-:create;index" json:"created_at"`
}

// BeforeCreate assigns a UUIDv7 so audit rows sort by insertion.
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New()
	}
	return nil
}
