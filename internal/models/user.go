package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is a registered forecaster. Accounts require admin approval before they
// may submit predictions; TotalPredictions and AccuracyScore are recomputed by
// the resolution service, never written by handlers.
type User struct {
	ID            string  `gorm:"primaryKey;type:uuid"`
	Email         string  `gorm:"type:text;uniqueIndex;not null"`
	FullName      string  `gorm:"type:text;not null"`
	Organization  *string `gorm:"type:text"`
	ExpertiseArea *string `gorm:"type:text"`
	Bio           *string `gorm:"type:text"`

	IsAdmin    bool `gorm:"not null;default:false"`
	IsApproved bool `gorm:"not null;default:false;index"`

	TotalPredictions int              `gorm:"not null;default:0"`
	AccuracyScore    *decimal.Decimal `gorm:"type:numeric(10,6)"`

	LastLogin *time.Time `gorm:"type:timestamptz"`
	CreatedAt time.Time  `gorm:"type:timestamptz;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"type:timestamptz;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
