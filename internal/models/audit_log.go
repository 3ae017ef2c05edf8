package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog records admin-facing actions (market created/resolved, user
// approved). Append-only.
type AuditLog struct {
	ID         uint64         `gorm:"primaryKey;autoIncrement"`
	UserID     *string        `gorm:"type:uuid;index"`
	Action     string         `gorm:"type:varchar(50);not null;index"`
	EntityType string         `gorm:"type:varchar(30);not null"`
	EntityID   string         `gorm:"type:text;not null"`
	Details    datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (AuditLog) TableName() string {
	return "audit_log"
}
