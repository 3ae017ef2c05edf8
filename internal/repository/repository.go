package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"coterran/internal/models"
)

// Repository is the persistence boundary for the forecasting core. Methods
// with a Tx suffix participate in a caller-scoped transaction opened with
// InTx; a nil tx falls back to the root handle.
type Repository interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Users.
	CreateUser(ctx context.Context, item *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListPendingUsers(ctx context.Context) ([]models.User, error)
	ApproveUser(ctx context.Context, id string) error
	ListRankedForecasters(ctx context.Context, limit int) ([]models.User, error)
	UpdateUserAccuracyTx(ctx context.Context, tx *gorm.DB, userID string, totalPredictions int, accuracy *decimal.Decimal) error
	CountApprovedUsers(ctx context.Context) (int64, error)

	// Markets.
	CreateMarket(ctx context.Context, item *models.Market) error
	GetMarketByID(ctx context.Context, id string) (*models.Market, error)
	GetMarketTx(ctx context.Context, tx *gorm.DB, id string) (*models.Market, error)
	ListMarkets(ctx context.Context, params ListMarketsParams) ([]models.Market, error)
	ListMarketsByStatus(ctx context.Context, status string) ([]models.Market, error)
	ListAllMarkets(ctx context.Context) ([]models.Market, error)
	CountMarketsByStatus(ctx context.Context, status string) (int64, error)
	CountMarkets(ctx context.Context) (int64, error)
	SaveMarketResolutionTx(ctx context.Context, tx *gorm.DB, item *models.Market) error
	SetMarketPredictionCountTx(ctx context.Context, tx *gorm.DB, marketID string, count int) error

	// Predictions.
	GetPrediction(ctx context.Context, marketID, userID string) (*models.Prediction, error)
	GetPredictionTx(ctx context.Context, tx *gorm.DB, marketID, userID string) (*models.Prediction, error)
	CreatePredictionTx(ctx context.Context, tx *gorm.DB, item *models.Prediction) error
	SavePredictionTx(ctx context.Context, tx *gorm.DB, item *models.Prediction) error
	InsertPredictionUpdateTx(ctx context.Context, tx *gorm.DB, item *models.PredictionUpdate) error
	ListPredictionsByMarket(ctx context.Context, marketID string) ([]models.Prediction, error)
	ListPredictionsByMarketTx(ctx context.Context, tx *gorm.DB, marketID string) ([]models.Prediction, error)
	ListPredictionsByUser(ctx context.Context, userID string) ([]models.Prediction, error)
	ListPredictionsByUserTx(ctx context.Context, tx *gorm.DB, userID string) ([]models.Prediction, error)
	UpdatePredictionBrierTx(ctx context.Context, tx *gorm.DB, id uint64, score decimal.Decimal) error
	CountPredictions(ctx context.Context) (int64, error)

	// Odds history (append-only).
	InsertOddsHistoryTx(ctx context.Context, tx *gorm.DB, item *models.OddsHistoryEntry) error
	LatestOddsHistoryTx(ctx context.Context, tx *gorm.DB, marketID string) (*models.OddsHistoryEntry, error)
	ListOddsHistory(ctx context.Context, params ListOddsHistoryParams) ([]models.OddsHistoryEntry, error)
	CountOddsHistorySince(ctx context.Context, since time.Time) (int64, error)

	// Snapshots.
	UpsertSnapshot(ctx context.Context, item *models.Snapshot) error
	ListSnapshots(ctx context.Context, params ListSnapshotsParams) ([]models.Snapshot, error)
	LatestSnapshotPerMarket(ctx context.Context, snapshotType string, marketIDs []string) ([]models.Snapshot, error)
	DeleteSnapshotsBefore(ctx context.Context, snapshotType string, cutoff time.Time) (int64, error)
	CountSnapshotsSince(ctx context.Context, since time.Time) (int64, error)

	// Audit trail.
	InsertAuditLogTx(ctx context.Context, tx *gorm.DB, item *models.AuditLog) error

	// Cross-table analytics.
	AnalyticsOverview(ctx context.Context) (AnalyticsOverview, error)
}

type ListMarketsParams struct {
	Status   *string
	Category *string
	Limit    int
	Offset   int
}

type ListOddsHistoryParams struct {
	MarketID string
	Since    *time.Time
	Limit    int
}

type ListSnapshotsParams struct {
	MarketID     string
	SnapshotType *string
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}

type AnalyticsOverview struct {
	TotalExperts            int64   `json:"total_experts"`
	TotalMarkets            int64   `json:"total_markets"`
	OpenMarkets             int64   `json:"open_markets"`
	ResolvedMarkets         int64   `json:"resolved_markets"`
	TotalPredictions        int64   `json:"total_predictions"`
	AvgPredictionsPerMarket float64 `json:"avg_predictions_per_market"`
}
