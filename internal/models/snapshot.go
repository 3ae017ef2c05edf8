package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	SnapshotTypeDaily   = "daily"
	SnapshotTypeWeekly  = "weekly"
	SnapshotTypeMonthly = "monthly"
)

// Snapshot is an immutable dated capture of a market's consensus statistics.
// One row per (market, type, date); re-running a calendar day's job upserts the
// same row. Daily rows are retained 90 days, weekly 52 weeks, monthly forever.
type Snapshot struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	MarketID     string    `gorm:"type:uuid;not null;uniqueIndex:idx_snapshot_market_type_date;index"`
	SnapshotType string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_snapshot_market_type_date;index"`
	SnapshotDate time.Time `gorm:"type:date;not null;uniqueIndex:idx_snapshot_market_type_date;index"`

	PredictionCount int              `gorm:"not null"`
	Median          *decimal.Decimal `gorm:"type:numeric(10,4)"`
	Mean            *decimal.Decimal `gorm:"type:numeric(10,4)"`
	StdDeviation    *decimal.Decimal `gorm:"type:numeric(10,4)"`

	Probability           *decimal.Decimal `gorm:"type:numeric(10,4)"`
	DecimalOdds           *decimal.Decimal `gorm:"type:numeric(20,6)"`
	FractionalNumerator   *int             `gorm:""`
	FractionalDenominator *int             `gorm:""`

	HighConfidence   int `gorm:"not null;default:0"`
	MediumConfidence int `gorm:"not null;default:0"`
	LowConfidence    int `gorm:"not null;default:0"`

	Range0To25   int `gorm:"column:range_0_25;not null;default:0"`
	Range25To50  int `gorm:"column:range_25_50;not null;default:0"`
	Range50To75  int `gorm:"column:range_50_75;not null;default:0"`
	Range75To100 int `gorm:"column:range_75_100;not null;default:0"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime"`
}

func (Snapshot) TableName() string {
	return "market_snapshots"
}
