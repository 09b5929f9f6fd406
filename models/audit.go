package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog records privileged and denied actions: account lifecycle,
// assignment changes, refused village writes. Detail carries the
// action-specific payload as JSON.
type AuditLog struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Actor     string         `gorm:"size:50;not null;index" json:"actor"`
	Role      string         `gorm:"size:20;not null" json:"role"`
	Action    string         `gorm:"size:50;not null;index" json:"action"`
	Entity    string         `gorm:"size:50" json:"entity"`
	EntityID  string         `gorm:"size:50" json:"entityId"`
	Detail    datatypes.JSON `gorm:"type:jsonb" json:"detail,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
