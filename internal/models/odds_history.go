package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TriggerNewPrediction     = "new_prediction"
	TriggerUpdatedPrediction = "updated_prediction"
)

// OddsHistoryEntry records the market consensus immediately after each
// prediction create/update event. Append-only; PreviousProbability and Change
// are nil on the first entry for a market.
type OddsHistoryEntry struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	MarketID    string `gorm:"type:uuid;not null;index"`
	TriggerType string `gorm:"type:varchar(30);not null"`

	PredictionCount     int              `gorm:"not null"`
	Probability         decimal.Decimal  `gorm:"type:numeric(10,4);not null"`
	DecimalOdds         *decimal.Decimal `gorm:"type:numeric(20,6)"`
	PreviousProbability *decimal.Decimal `gorm:"type:numeric(10,4)"`
	Change              *decimal.Decimal `gorm:"type:numeric(10,4)"`

	Timestamp time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (OddsHistoryEntry) TableName() string {
	return "market_odds_history"
}
