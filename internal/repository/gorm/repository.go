package gormrepository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"coterran/internal/models"
	"coterran/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

// conn picks the transaction handle when one is supplied, the root handle
// otherwise, so Tx methods can also serve one-off calls.
func (s *Store) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return s.db.WithContext(ctx)
}

// --- Users ------------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, item *models.User) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.User
	err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.User
	err := s.db.WithContext(ctx).First(&item, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListPendingUsers(ctx context.Context) ([]models.User, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.User
	if err := s.db.WithContext(ctx).
		Where("is_approved = ?", false).
		Where("is_admin = ?", false).
		Order("created_at asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ApproveUser(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return nil
	}
	res := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("is_approved", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListRankedForecasters returns approved users with at least one prediction,
// best accuracy first (lower Brier is better), unscored users last, ties
// broken by id so identical calls return identical order.
func (s *Store) ListRankedForecasters(ctx context.Context, limit int) ([]models.User, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	limit = normalizeLimit(limit, 50)
	var items []models.User
	if err := s.db.WithContext(ctx).
		Where("is_approved = ?", true).
		Where("total_predictions > 0").
		Order("accuracy_score ASC NULLS LAST, id ASC").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpdateUserAccuracyTx(ctx context.Context, tx *gorm.DB, userID string, totalPredictions int, accuracy *decimal.Decimal) error {
	if s == nil {
		return nil
	}
	return s.conn(ctx, tx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"total_predictions": totalPredictions,
			"accuracy_score":    accuracy,
		}).Error
}

func (s *Store) CountApprovedUsers(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var n int64
	err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("is_approved = ?", true).
		Count(&n).Error
	return n, err
}

// --- Markets ----------------------------------------------------------------

func (s *Store) CreateMarket(ctx context.Context, item *models.Market) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetMarketByID(ctx context.Context, id string) (*models.Market, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	return s.GetMarketTx(ctx, nil, id)
}

func (s *Store) GetMarketTx(ctx context.Context, tx *gorm.DB, id string) (*models.Market, error) {
	if s == nil {
		return nil, nil
	}
	var item models.Market
	err := s.conn(ctx, tx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListMarkets(ctx context.Context, params repository.ListMarketsParams) ([]models.Market, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).Model(&models.Market{})
	if params.Status != nil && strings.TrimSpace(*params.Status) != "" {
		query = query.Where("status = ?", strings.TrimSpace(*params.Status))
	}
	if params.Category != nil && strings.TrimSpace(*params.Category) != "" {
		query = query.Where("category = ?", strings.TrimSpace(*params.Category))
	}
	limit := normalizeLimit(params.Limit, 50)
	offset := normalizeOffset(params.Offset)
	var items []models.Market
	if err := query.Order("created_at desc").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListMarketsByStatus(ctx context.Context, status string) ([]models.Market, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Market
	if err := s.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListAllMarkets(ctx context.Context) ([]models.Market, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.Market
	if err := s.db.WithContext(ctx).Order("created_at asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountMarketsByStatus(ctx context.Context, status string) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var n int64
	err := s.db.WithContext(ctx).
		Model(&models.Market{}).
		Where("status = ?", status).
		Count(&n).Error
	return n, err
}

func (s *Store) CountMarkets(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Market{}).Count(&n).Error
	return n, err
}

func (s *Store) SaveMarketResolutionTx(ctx context.Context, tx *gorm.DB, item *models.Market) error {
	if s == nil || item == nil {
		return nil
	}
	return s.conn(ctx, tx).
		Model(&models.Market{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"status":            item.Status,
			"outcome":           item.Outcome,
			"resolution_source": item.ResolutionSource,
			"resolution_notes":  item.ResolutionNotes,
			"resolution_date":   item.ResolutionDate,
			"resolved_by":       item.ResolvedBy,
		}).Error
}

func (s *Store) SetMarketPredictionCountTx(ctx context.Context, tx *gorm.DB, marketID string, count int) error {
	if s == nil {
		return nil
	}
	return s.conn(ctx, tx).
		Model(&models.Market{}).
		Where("id = ?", marketID).
		Update("prediction_count", count).Error
}

// --- Predictions ------------------------------------------------------------

func (s *Store) GetPrediction(ctx context.Context, marketID, userID string) (*models.Prediction, error) {
	return s.GetPredictionTx(ctx, nil, marketID, userID)
}

func (s *Store) GetPredictionTx(ctx context.Context, tx *gorm.DB, marketID, userID string) (*models.Prediction, error) {
	if s == nil {
		return nil, nil
	}
	var item models.Prediction
	err := s.conn(ctx, tx).
		Where("market_id = ?", marketID).
		Where("user_id = ?", userID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) CreatePredictionTx(ctx context.Context, tx *gorm.DB, item *models.Prediction) error {
	if s == nil || item == nil {
		return nil
	}
	return s.conn(ctx, tx).Create(item).Error
}

func (s *Store) SavePredictionTx(ctx context.Context, tx *gorm.DB, item *models.Prediction) error {
	if s == nil || item == nil {
		return nil
	}
	return s.conn(ctx, tx).
		Model(&models.Prediction{}).
		Where("id = ?", item.ID).
		Updates(map[string]any{
			"prediction": item.Value,
			"confidence": item.Confidence,
			"reasoning":  item.Reasoning,
			"is_public":  item.IsPublic,
		}).Error
}

func (s *Store) InsertPredictionUpdateTx(ctx context.Context, tx *gorm.DB, item *models.PredictionUpdate) error {
	if s == nil || item == nil {
		return nil
	}
	return s.conn(ctx, tx).Create(item).Error
}

func (s *Store) ListPredictionsByMarket(ctx context.Context, marketID string) ([]models.Prediction, error) {
	return s.ListPredictionsByMarketTx(ctx, nil, marketID)
}

func (s *Store) ListPredictionsByMarketTx(ctx context.Context, tx *gorm.DB, marketID string) ([]models.Prediction, error) {
	if s == nil {
		return nil, nil
	}
	var items []models.Prediction
	if err := s.conn(ctx, tx).
		Where("market_id = ?", marketID).
		Order("created_at desc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) ListPredictionsByUser(ctx context.Context, userID string) ([]models.Prediction, error) {
	return s.ListPredictionsByUserTx(ctx, nil, userID)
}

func (s *Store) ListPredictionsByUserTx(ctx context.Context, tx *gorm.DB, userID string) ([]models.Prediction, error) {
	if s == nil {
		return nil, nil
	}
	var items []models.Prediction
	if err := s.conn(ctx, tx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpdatePredictionBrierTx(ctx context.Context, tx *gorm.DB, id uint64, score decimal.Decimal) error {
	if s == nil {
		return nil
	}
	return s.conn(ctx, tx).
		Model(&models.Prediction{}).
		Where("id = ?", id).
		Update("brier_score", score).Error
}

func (s *Store) CountPredictions(ctx context.Context) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Prediction{}).Count(&n).Error
	return n, err
}

// --- Odds history -----------------------------------------------------------

func (s *Store) InsertOddsHistoryTx(ctx context.Context, tx *gorm.DB, item *models.OddsHistoryEntry) error {
	if s == nil || item == nil {
		return nil
	}
	return s.conn(ctx, tx).Create(item).Error
}

func (s *Store) LatestOddsHistoryTx(ctx context.Context, tx *gorm.DB, marketID string) (*models.OddsHistoryEntry, error) {
	if s == nil {
		return nil, nil
	}
	var item models.OddsHistoryEntry
	err := s.conn(ctx, tx).
		Where("market_id = ?", marketID).
		Order("timestamp desc, id desc").
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListOddsHistory(ctx context.Context, params repository.ListOddsHistoryParams) ([]models.OddsHistoryEntry, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).
		Model(&models.OddsHistoryEntry{}).
		Where("market_id = ?", params.MarketID)
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("timestamp >= ?", *params.Since)
	}
	limit := normalizeLimit(params.Limit, 100)
	var items []models.OddsHistoryEntry
	if err := query.Order("timestamp desc, id desc").Limit(limit).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountOddsHistorySince(ctx context.Context, since time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var n int64
	err := s.db.WithContext(ctx).
		Model(&models.OddsHistoryEntry{}).
		Where("timestamp >= ?", since).
		Count(&n).Error
	return n, err
}

// --- Snapshots --------------------------------------------------------------

func (s *Store) UpsertSnapshot(ctx context.Context, item *models.Snapshot) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "market_id"}, {Name: "snapshot_type"}, {Name: "snapshot_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"prediction_count",
			"median",
			"mean",
			"std_deviation",
			"probability",
			"decimal_odds",
			"fractional_numerator",
			"fractional_denominator",
			"high_confidence",
			"medium_confidence",
			"low_confidence",
			"range_0_25",
			"range_25_50",
			"range_50_75",
			"range_75_100",
			"updated_at",
		}),
	}).Create(item).Error
}

func (s *Store) ListSnapshots(ctx context.Context, params repository.ListSnapshotsParams) ([]models.Snapshot, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.db.WithContext(ctx).
		Model(&models.Snapshot{}).
		Where("market_id = ?", params.MarketID)
	if params.SnapshotType != nil && strings.TrimSpace(*params.SnapshotType) != "" {
		query = query.Where("snapshot_type = ?", strings.TrimSpace(*params.SnapshotType))
	}
	if params.From != nil && !params.From.IsZero() {
		query = query.Where("snapshot_date >= ?", *params.From)
	}
	if params.To != nil && !params.To.IsZero() {
		query = query.Where("snapshot_date <= ?", *params.To)
	}
	limit := normalizeLimit(params.Limit, 200)
	offset := normalizeOffset(params.Offset)
	var items []models.Snapshot
	if err := query.Order("snapshot_date asc").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// LatestSnapshotPerMarket returns the most recent snapshot of one cadence for
// each requested market (all markets when marketIDs is empty).
func (s *Store) LatestSnapshotPerMarket(ctx context.Context, snapshotType string, marketIDs []string) ([]models.Snapshot, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	sub := s.db.WithContext(ctx).
		Model(&models.Snapshot{}).
		Select("market_id, MAX(snapshot_date) AS snapshot_date").
		Where("snapshot_type = ?", snapshotType).
		Group("market_id")
	if len(marketIDs) > 0 {
		sub = sub.Where("market_id IN ?", marketIDs)
	}
	var items []models.Snapshot
	err := s.db.WithContext(ctx).
		Model(&models.Snapshot{}).
		Joins("JOIN (?) AS latest ON latest.market_id = market_snapshots.market_id AND latest.snapshot_date = market_snapshots.snapshot_date", sub).
		Where("market_snapshots.snapshot_type = ?", snapshotType).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) DeleteSnapshotsBefore(ctx context.Context, snapshotType string, cutoff time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	// Monthly snapshots are retained indefinitely.
	if snapshotType == models.SnapshotTypeMonthly {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Where("snapshot_type = ?", snapshotType).
		Where("snapshot_date < ?", cutoff).
		Delete(&models.Snapshot{})
	return res.RowsAffected, res.Error
}

func (s *Store) CountSnapshotsSince(ctx context.Context, since time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var n int64
	err := s.db.WithContext(ctx).
		Model(&models.Snapshot{}).
		Where("created_at >= ?", since).
		Count(&n).Error
	return n, err
}

// --- Audit ------------------------------------------------------------------

func (s *Store) InsertAuditLogTx(ctx context.Context, tx *gorm.DB, item *models.AuditLog) error {
	if s == nil || item == nil {
		return nil
	}
	return s.conn(ctx, tx).Create(item).Error
}

// --- Analytics --------------------------------------------------------------

func (s *Store) AnalyticsOverview(ctx context.Context) (repository.AnalyticsOverview, error) {
	var out repository.AnalyticsOverview
	if s == nil || s.db == nil {
		return out, nil
	}
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			(SELECT COUNT(*) FROM users WHERE is_approved = true) AS total_experts,
			(SELECT COUNT(*) FROM markets) AS total_markets,
			(SELECT COUNT(*) FROM markets WHERE status = 'open') AS open_markets,
			(SELECT COUNT(*) FROM markets WHERE status = 'resolved') AS resolved_markets,
			(SELECT COUNT(*) FROM predictions) AS total_predictions,
			COALESCE((SELECT AVG(prediction_count) FROM markets WHERE status = 'open'), 0) AS avg_predictions_per_market
	`).Scan(&out).Error
	return out, err
}

// --- Helpers ----------------------------------------------------------------

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
