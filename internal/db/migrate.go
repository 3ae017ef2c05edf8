package db

import (
	"coterran/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.User{},
		&models.Market{},
		&models.Prediction{},
		&models.PredictionUpdate{},
		&models.OddsHistoryEntry{},
		&models.Snapshot{},
		&models.AuditLog{},
	)
}
