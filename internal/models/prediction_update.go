package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// PredictionUpdate is the append-only audit trail of prediction revisions.
// Rows are written once and never mutated or deleted.
type PredictionUpdate struct {
	ID           uint64 `gorm:"primaryKey;autoIncrement"`
	PredictionID uint64 `gorm:"not null;index"`

	OldValue  decimal.Decimal `gorm:"type:numeric(10,4);not null"`
	NewValue  decimal.Decimal `gorm:"type:numeric(10,4);not null"`
	Reasoning *string         `gorm:"type:text"`
	Sources   datatypes.JSON  `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (PredictionUpdate) TableName() string {
	return "prediction_updates"
}
