package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MarketStatusOpen     = "open"
	MarketStatusResolved = "resolved"
)

// Market is a binary forecasting question. Status moves open -> resolved
// exactly once; the resolution fields are written in the same transaction as
// the per-prediction Brier scores.
type Market struct {
	ID                 string    `gorm:"primaryKey;type:uuid"`
	Question           string    `gorm:"type:text;not null"`
	Description        *string   `gorm:"type:text"`
	Category           string    `gorm:"type:text;not null;index"`
	Status             string    `gorm:"type:text;not null;default:open;index"`
	CloseDate          time.Time `gorm:"type:timestamptz;not null"`
	DataSource         *string   `gorm:"type:text"`
	ResolutionCriteria string    `gorm:"type:text;not null"`

	PredictionCount int `gorm:"not null;default:0"`

	Outcome          *decimal.Decimal `gorm:"type:numeric(10,4)"`
	ResolutionSource *string          `gorm:"type:text"`
	ResolutionNotes  *string          `gorm:"type:text"`
	ResolutionDate   *time.Time       `gorm:"type:timestamptz"`
	ResolvedBy       *string          `gorm:"type:uuid"`

	CreatedBy *string   `gorm:"type:uuid"`
	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Market) TableName() string {
	return "markets"
}
