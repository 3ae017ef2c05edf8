package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Prediction is one user's live probability estimate (0-100) for one market.
// At most one row exists per (market, user); updates mutate the row in place
// and the superseded value is preserved in prediction_updates. BrierScore is
// filled once the market resolves.
type Prediction struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement"`
	MarketID string `gorm:"type:uuid;not null;uniqueIndex:idx_prediction_market_user;index"`
	UserID   string `gorm:"type:uuid;not null;uniqueIndex:idx_prediction_market_user;index"`

	Value      decimal.Decimal `gorm:"column:prediction;type:numeric(10,4);not null"`
	Confidence *string         `gorm:"type:varchar(10)"`
	Reasoning  *string         `gorm:"type:text"`
	IsPublic   bool            `gorm:"not null;default:true"`

	BrierScore *decimal.Decimal `gorm:"type:numeric(10,6)"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Prediction) TableName() string {
	return "predictions"
}
