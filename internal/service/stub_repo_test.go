package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"coterran/internal/models"
	"coterran/internal/repository"
)

// stubRepo is a test-only in-memory implementation of repository.Repository.
// Transactions degrade to running the closure against the same state; the
// atomicity tests only assert that an inner error aborts the unit and is
// surfaced unchanged.
type stubRepo struct {
	users       map[string]*models.User
	markets     map[string]*models.Market
	predictions []*models.Prediction
	updates     []models.PredictionUpdate
	history     []models.OddsHistoryEntry
	snapshots   map[string]*models.Snapshot
	audit       []models.AuditLog

	nextPredictionID uint64

	// Error injection.
	failListPredictionsFor map[string]error
	failInsertHistory      error
	failUpdateAccuracy     error

	// hideExisting makes GetPredictionTx miss, simulating the window where a
	// concurrent writer has inserted a row this transaction has not yet seen.
	hideExisting bool
}

var _ repository.Repository = (*stubRepo)(nil)

func newStubRepo() *stubRepo {
	return &stubRepo{
		users:     map[string]*models.User{},
		markets:   map[string]*models.Market{},
		snapshots: map[string]*models.Snapshot{},
	}
}

func snapshotKey(marketID, snapshotType string, date time.Time) string {
	return fmt.Sprintf("%s|%s|%s", marketID, snapshotType, date.Format("2006-01-02"))
}

func (s *stubRepo) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

// --- Users ---

func (s *stubRepo) CreateUser(ctx context.Context, item *models.User) error {
	s.users[item.ID] = item
	return nil
}

func (s *stubRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (s *stubRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) ListPendingUsers(ctx context.Context) ([]models.User, error) {
	var out []models.User
	for _, u := range s.users {
		if !u.IsApproved && !u.IsAdmin {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *stubRepo) ApproveUser(ctx context.Context, id string) error {
	u, ok := s.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.IsApproved = true
	return nil
}

func (s *stubRepo) ListRankedForecasters(ctx context.Context, limit int) ([]models.User, error) {
	var out []models.User
	for _, u := range s.users {
		if u.IsApproved && u.TotalPredictions > 0 {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *stubRepo) UpdateUserAccuracyTx(ctx context.Context, tx *gorm.DB, userID string, totalPredictions int, accuracy *decimal.Decimal) error {
	if s.failUpdateAccuracy != nil {
		return s.failUpdateAccuracy
	}
	u, ok := s.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.TotalPredictions = totalPredictions
	u.AccuracyScore = accuracy
	return nil
}

func (s *stubRepo) CountApprovedUsers(ctx context.Context) (int64, error) {
	var n int64
	for _, u := range s.users {
		if u.IsApproved {
			n++
		}
	}
	return n, nil
}

// --- Markets ---

func (s *stubRepo) CreateMarket(ctx context.Context, item *models.Market) error {
	s.markets[item.ID] = item
	return nil
}

func (s *stubRepo) GetMarketByID(ctx context.Context, id string) (*models.Market, error) {
	return s.GetMarketTx(ctx, nil, id)
}

func (s *stubRepo) GetMarketTx(ctx context.Context, tx *gorm.DB, id string) (*models.Market, error) {
	m, ok := s.markets[id]
	if !ok {
		return nil, nil
	}
	copied := *m
	return &copied, nil
}

func (s *stubRepo) ListMarkets(ctx context.Context, params repository.ListMarketsParams) ([]models.Market, error) {
	var out []models.Market
	for _, m := range s.markets {
		if params.Status != nil && m.Status != *params.Status {
			continue
		}
		if params.Category != nil && m.Category != *params.Category {
			continue
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubRepo) ListMarketsByStatus(ctx context.Context, status string) ([]models.Market, error) {
	var out []models.Market
	for _, m := range s.markets {
		if m.Status == status {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubRepo) ListAllMarkets(ctx context.Context) ([]models.Market, error) {
	var out []models.Market
	for _, m := range s.markets {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *stubRepo) CountMarketsByStatus(ctx context.Context, status string) (int64, error) {
	items, _ := s.ListMarketsByStatus(ctx, status)
	return int64(len(items)), nil
}

func (s *stubRepo) CountMarkets(ctx context.Context) (int64, error) {
	return int64(len(s.markets)), nil
}

func (s *stubRepo) SaveMarketResolutionTx(ctx context.Context, tx *gorm.DB, item *models.Market) error {
	m, ok := s.markets[item.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	m.Status = item.Status
	m.Outcome = item.Outcome
	m.ResolutionSource = item.ResolutionSource
	m.ResolutionNotes = item.ResolutionNotes
	m.ResolutionDate = item.ResolutionDate
	m.ResolvedBy = item.ResolvedBy
	return nil
}

func (s *stubRepo) SetMarketPredictionCountTx(ctx context.Context, tx *gorm.DB, marketID string, count int) error {
	m, ok := s.markets[marketID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	m.PredictionCount = count
	return nil
}

// --- Predictions ---

func (s *stubRepo) GetPrediction(ctx context.Context, marketID, userID string) (*models.Prediction, error) {
	return s.GetPredictionTx(ctx, nil, marketID, userID)
}

func (s *stubRepo) GetPredictionTx(ctx context.Context, tx *gorm.DB, marketID, userID string) (*models.Prediction, error) {
	if s.hideExisting {
		return nil, nil
	}
	for _, p := range s.predictions {
		if p.MarketID == marketID && p.UserID == userID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) CreatePredictionTx(ctx context.Context, tx *gorm.DB, item *models.Prediction) error {
	for _, p := range s.predictions {
		if p.MarketID == item.MarketID && p.UserID == item.UserID {
			return gorm.ErrDuplicatedKey
		}
	}
	s.nextPredictionID++
	item.ID = s.nextPredictionID
	copied := *item
	s.predictions = append(s.predictions, &copied)
	return nil
}

func (s *stubRepo) SavePredictionTx(ctx context.Context, tx *gorm.DB, item *models.Prediction) error {
	for _, p := range s.predictions {
		if p.ID == item.ID {
			p.Value = item.Value
			p.Confidence = item.Confidence
			p.Reasoning = item.Reasoning
			p.IsPublic = item.IsPublic
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *stubRepo) InsertPredictionUpdateTx(ctx context.Context, tx *gorm.DB, item *models.PredictionUpdate) error {
	s.updates = append(s.updates, *item)
	return nil
}

func (s *stubRepo) ListPredictionsByMarket(ctx context.Context, marketID string) ([]models.Prediction, error) {
	return s.ListPredictionsByMarketTx(ctx, nil, marketID)
}

func (s *stubRepo) ListPredictionsByMarketTx(ctx context.Context, tx *gorm.DB, marketID string) ([]models.Prediction, error) {
	if err, ok := s.failListPredictionsFor[marketID]; ok {
		return nil, err
	}
	var out []models.Prediction
	for _, p := range s.predictions {
		if p.MarketID == marketID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *stubRepo) ListPredictionsByUser(ctx context.Context, userID string) ([]models.Prediction, error) {
	return s.ListPredictionsByUserTx(ctx, nil, userID)
}

func (s *stubRepo) ListPredictionsByUserTx(ctx context.Context, tx *gorm.DB, userID string) ([]models.Prediction, error) {
	var out []models.Prediction
	for _, p := range s.predictions {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *stubRepo) UpdatePredictionBrierTx(ctx context.Context, tx *gorm.DB, id uint64, score decimal.Decimal) error {
	for _, p := range s.predictions {
		if p.ID == id {
			copied := score
			p.BrierScore = &copied
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *stubRepo) CountPredictions(ctx context.Context) (int64, error) {
	return int64(len(s.predictions)), nil
}

// --- Odds history ---

func (s *stubRepo) InsertOddsHistoryTx(ctx context.Context, tx *gorm.DB, item *models.OddsHistoryEntry) error {
	if s.failInsertHistory != nil {
		return s.failInsertHistory
	}
	item.ID = uint64(len(s.history) + 1)
	s.history = append(s.history, *item)
	return nil
}

func (s *stubRepo) LatestOddsHistoryTx(ctx context.Context, tx *gorm.DB, marketID string) (*models.OddsHistoryEntry, error) {
	for i := len(s.history) - 1; i >= 0; i-- {
		if s.history[i].MarketID == marketID {
			copied := s.history[i]
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *stubRepo) ListOddsHistory(ctx context.Context, params repository.ListOddsHistoryParams) ([]models.OddsHistoryEntry, error) {
	var out []models.OddsHistoryEntry
	for i := len(s.history) - 1; i >= 0; i-- {
		e := s.history[i]
		if e.MarketID != params.MarketID {
			continue
		}
		if params.Since != nil && e.Timestamp.Before(*params.Since) {
			continue
		}
		out = append(out, e)
		if params.Limit > 0 && len(out) >= params.Limit {
			break
		}
	}
	return out, nil
}

func (s *stubRepo) CountOddsHistorySince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	for _, e := range s.history {
		if !e.Timestamp.Before(since) {
			n++
		}
	}
	return n, nil
}

// --- Snapshots ---

func (s *stubRepo) UpsertSnapshot(ctx context.Context, item *models.Snapshot) error {
	key := snapshotKey(item.MarketID, item.SnapshotType, item.SnapshotDate)
	if existing, ok := s.snapshots[key]; ok {
		item.ID = existing.ID
	} else {
		item.ID = uint64(len(s.snapshots) + 1)
	}
	copied := *item
	s.snapshots[key] = &copied
	return nil
}

func (s *stubRepo) ListSnapshots(ctx context.Context, params repository.ListSnapshotsParams) ([]models.Snapshot, error) {
	var out []models.Snapshot
	for _, snap := range s.snapshots {
		if snap.MarketID != params.MarketID {
			continue
		}
		if params.SnapshotType != nil && snap.SnapshotType != *params.SnapshotType {
			continue
		}
		if params.From != nil && snap.SnapshotDate.Before(*params.From) {
			continue
		}
		if params.To != nil && snap.SnapshotDate.After(*params.To) {
			continue
		}
		out = append(out, *snap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SnapshotDate.Before(out[j].SnapshotDate) })
	return out, nil
}

func (s *stubRepo) LatestSnapshotPerMarket(ctx context.Context, snapshotType string, marketIDs []string) ([]models.Snapshot, error) {
	allowed := map[string]bool{}
	for _, id := range marketIDs {
		allowed[id] = true
	}
	latest := map[string]models.Snapshot{}
	for _, snap := range s.snapshots {
		if snap.SnapshotType != snapshotType {
			continue
		}
		if len(allowed) > 0 && !allowed[snap.MarketID] {
			continue
		}
		cur, ok := latest[snap.MarketID]
		if !ok || snap.SnapshotDate.After(cur.SnapshotDate) {
			latest[snap.MarketID] = *snap
		}
	}
	var out []models.Snapshot
	for _, snap := range latest {
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MarketID < out[j].MarketID })
	return out, nil
}

func (s *stubRepo) DeleteSnapshotsBefore(ctx context.Context, snapshotType string, cutoff time.Time) (int64, error) {
	if snapshotType == models.SnapshotTypeMonthly {
		return 0, nil
	}
	var deleted int64
	for key, snap := range s.snapshots {
		if snap.SnapshotType == snapshotType && snap.SnapshotDate.Before(cutoff) {
			delete(s.snapshots, key)
			deleted++
		}
	}
	return deleted, nil
}

func (s *stubRepo) CountSnapshotsSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	for _, snap := range s.snapshots {
		if !snap.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

// --- Audit & analytics ---

func (s *stubRepo) InsertAuditLogTx(ctx context.Context, tx *gorm.DB, item *models.AuditLog) error {
	s.audit = append(s.audit, *item)
	return nil
}

func (s *stubRepo) AnalyticsOverview(ctx context.Context) (repository.AnalyticsOverview, error) {
	return repository.AnalyticsOverview{}, nil
}
