package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"coterran/internal/consensus"
	"coterran/internal/models"
	"coterran/internal/repository"
)

// SnapshotService runs the scheduled snapshot jobs: daily and weekly captures
// over open markets, monthly captures over all markets, retention cleanup and
// an hourly health probe. One market failing never aborts the run for the
// rest; failures are counted and logged.
type SnapshotService struct {
	Repo      repository.Repository
	Logger    *zap.Logger
	Retention RetentionConfig
	Now       func() time.Time
}

type RetentionConfig struct {
	DailyDays   int
	WeeklyWeeks int
}

type RunSummary struct {
	SnapshotType string        `json:"snapshot_type"`
	Markets      int           `json:"markets"`
	SuccessCount int           `json:"success_count"`
	ErrorCount   int           `json:"error_count"`
	Elapsed      time.Duration `json:"elapsed"`
}

type CleanupSummary struct {
	DailyDeleted  int64 `json:"daily_deleted"`
	WeeklyDeleted int64 `json:"weekly_deleted"`
}

type HealthStats struct {
	OpenMarkets       int64 `json:"open_markets"`
	RecentSnapshots   int64 `json:"recent_snapshots"`
	RecentOddsChanges int64 `json:"recent_odds_changes"`
}

func (s *SnapshotService) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// snapshotDate buckets the run onto a calendar day in UTC so that re-running
// the same day's job upserts the same row.
func (s *SnapshotService) snapshotDate() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *SnapshotService) RunDaily(ctx context.Context) (RunSummary, error) {
	return s.run(ctx, models.SnapshotTypeDaily)
}

func (s *SnapshotService) RunWeekly(ctx context.Context) (RunSummary, error) {
	return s.run(ctx, models.SnapshotTypeWeekly)
}

// RunMonthly covers all markets regardless of status: monthly rows feed
// long-horizon historical analysis, so resolved markets keep getting captured.
func (s *SnapshotService) RunMonthly(ctx context.Context) (RunSummary, error) {
	return s.run(ctx, models.SnapshotTypeMonthly)
}

func (s *SnapshotService) run(ctx context.Context, snapshotType string) (RunSummary, error) {
	summary := RunSummary{SnapshotType: snapshotType}
	if s == nil || s.Repo == nil {
		return summary, nil
	}
	started := s.now()

	var markets []models.Market
	var err error
	if snapshotType == models.SnapshotTypeMonthly {
		markets, err = s.Repo.ListAllMarkets(ctx)
	} else {
		markets, err = s.Repo.ListMarketsByStatus(ctx, models.MarketStatusOpen)
	}
	if err != nil {
		return summary, err
	}
	summary.Markets = len(markets)

	for i := range markets {
		if _, err := s.CreateSnapshot(ctx, markets[i].ID, snapshotType); err != nil {
			summary.ErrorCount++
			if s.Logger != nil {
				s.Logger.Warn("snapshot failed",
					zap.String("snapshot_type", snapshotType),
					zap.String("market_id", markets[i].ID),
					zap.Error(err),
				)
			}
			continue
		}
		summary.SuccessCount++
	}

	summary.Elapsed = s.now().Sub(started)
	if s.Logger != nil {
		s.Logger.Info("snapshot run completed",
			zap.String("snapshot_type", snapshotType),
			zap.Int("markets", summary.Markets),
			zap.Int("success", summary.SuccessCount),
			zap.Int("errors", summary.ErrorCount),
			zap.Duration("elapsed", summary.Elapsed),
		)
	}
	return summary, nil
}

// CreateSnapshot aggregates one market's live predictions and upserts the row
// keyed by (market, type, today's UTC date). Safe to invoke on demand.
func (s *SnapshotService) CreateSnapshot(ctx context.Context, marketID, snapshotType string) (*models.Snapshot, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	switch snapshotType {
	case models.SnapshotTypeDaily, models.SnapshotTypeWeekly, models.SnapshotTypeMonthly:
	default:
		return nil, ErrInvalidSnapshotType
	}

	market, err := s.Repo.GetMarketByID(ctx, marketID)
	if err != nil {
		return nil, err
	}
	if market == nil {
		return nil, ErrMarketNotFound
	}

	preds, err := s.Repo.ListPredictionsByMarket(ctx, marketID)
	if err != nil {
		return nil, err
	}
	summary := consensus.Aggregate(predictionInputs(preds))
	odds := consensus.OddsFromProbability(summary.Probability())

	item := models.Snapshot{
		MarketID:              marketID,
		SnapshotType:          snapshotType,
		SnapshotDate:          s.snapshotDate(),
		PredictionCount:       summary.Count,
		Median:                decimalPtr(summary.Median),
		Mean:                  decimalPtr(summary.Mean),
		StdDeviation:          decimalPtr(summary.StdDeviation),
		Probability:           decimalPtr(summary.Probability()),
		DecimalOdds:           decimalPtr(odds.DecimalOdds),
		FractionalNumerator:   odds.FractionalNumerator,
		FractionalDenominator: odds.FractionalDenominator,
		HighConfidence:        summary.Confidence.High,
		MediumConfidence:      summary.Confidence.Medium,
		LowConfidence:         summary.Confidence.Low,
		Range0To25:            summary.Distribution.Range0To25,
		Range25To50:           summary.Distribution.Range25To50,
		Range50To75:           summary.Distribution.Range50To75,
		Range75To100:          summary.Distribution.Range75To100,
	}
	if err := s.Repo.UpsertSnapshot(ctx, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// Latest returns the most recent snapshot of one cadence per market. With no
// explicit market set, the open markets form the cohort; resolved markets only
// appear when asked for by id.
func (s *SnapshotService) Latest(ctx context.Context, snapshotType string, marketIDs []string) ([]models.Snapshot, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	switch snapshotType {
	case models.SnapshotTypeDaily, models.SnapshotTypeWeekly, models.SnapshotTypeMonthly:
	default:
		return nil, ErrInvalidSnapshotType
	}
	if len(marketIDs) == 0 {
		markets, err := s.Repo.ListMarketsByStatus(ctx, models.MarketStatusOpen)
		if err != nil {
			return nil, err
		}
		if len(markets) == 0 {
			return nil, nil
		}
		marketIDs = make([]string, 0, len(markets))
		for i := range markets {
			marketIDs = append(marketIDs, markets[i].ID)
		}
	}
	return s.Repo.LatestSnapshotPerMarket(ctx, snapshotType, marketIDs)
}

// Cleanup enforces retention: daily snapshots are kept 90 days and weekly 52
// weeks (both configurable); monthly snapshots are never deleted.
func (s *SnapshotService) Cleanup(ctx context.Context) (CleanupSummary, error) {
	var out CleanupSummary
	if s == nil || s.Repo == nil {
		return out, nil
	}
	dailyDays := s.Retention.DailyDays
	if dailyDays <= 0 {
		dailyDays = 90
	}
	weeklyWeeks := s.Retention.WeeklyWeeks
	if weeklyWeeks <= 0 {
		weeklyWeeks = 52
	}
	now := s.now()

	daily, err := s.Repo.DeleteSnapshotsBefore(ctx, models.SnapshotTypeDaily, now.AddDate(0, 0, -dailyDays))
	if err != nil {
		return out, err
	}
	out.DailyDeleted = daily

	weekly, err := s.Repo.DeleteSnapshotsBefore(ctx, models.SnapshotTypeWeekly, now.AddDate(0, 0, -7*weeklyWeeks))
	if err != nil {
		return out, err
	}
	out.WeeklyDeleted = weekly

	if s.Logger != nil {
		s.Logger.Info("snapshot cleanup completed",
			zap.Int64("daily_deleted", out.DailyDeleted),
			zap.Int64("weekly_deleted", out.WeeklyDeleted),
		)
	}
	return out, nil
}

// Health logs a liveness summary of the last 24 hours.
func (s *SnapshotService) Health(ctx context.Context) (HealthStats, error) {
	var out HealthStats
	if s == nil || s.Repo == nil {
		return out, nil
	}
	since := s.now().Add(-24 * time.Hour)

	open, err := s.Repo.CountMarketsByStatus(ctx, models.MarketStatusOpen)
	if err != nil {
		return out, err
	}
	out.OpenMarkets = open

	snapshots, err := s.Repo.CountSnapshotsSince(ctx, since)
	if err != nil {
		return out, err
	}
	out.RecentSnapshots = snapshots

	changes, err := s.Repo.CountOddsHistorySince(ctx, since)
	if err != nil {
		return out, err
	}
	out.RecentOddsChanges = changes

	if s.Logger != nil {
		s.Logger.Info("health",
			zap.Int64("open_markets", out.OpenMarkets),
			zap.Int64("recent_snapshots", out.RecentSnapshots),
			zap.Int64("recent_odds_changes", out.RecentOddsChanges),
		)
	}
	return out, nil
}

func decimalPtr(v *float64) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d := decimal.NewFromFloat(*v)
	return &d
}
