package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"coterran/internal/consensus"
	"coterran/internal/models"
	"coterran/internal/repository"
)

// ResolutionService scores a market once it resolves. The outcome write, the
// per-prediction Brier scores, the per-user accuracy recompute and the audit
// row form one transaction; a reader never observes a resolved market with
// stale accuracy figures.
type ResolutionService struct {
	Repo   repository.Repository
	Logger *zap.Logger
	Now    func() time.Time
}

type ResolveMarketInput struct {
	Outcome          float64
	ResolutionSource *string
	ResolutionNotes  *string
	ResolvedBy       *string
}

func (s *ResolutionService) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Resolve transitions a market open -> resolved exactly once and rolls the new
// Brier scores into each affected user's accuracy. User accuracy is fully
// recomputed from the persisted prediction set, not carried forward, so
// concurrent resolutions of different markets converge on the same totals.
func (s *ResolutionService) Resolve(ctx context.Context, marketID string, in ResolveMarketInput) (*models.Market, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	if in.Outcome < 0 || in.Outcome > 100 {
		return nil, ErrInvalidOutcome
	}

	var resolved *models.Market
	err := s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		market, err := s.Repo.GetMarketTx(ctx, tx, marketID)
		if err != nil {
			return err
		}
		if market == nil {
			return ErrMarketNotFound
		}
		if market.Status == models.MarketStatusResolved {
			return ErrMarketResolved
		}

		outcome := decimal.NewFromFloat(in.Outcome)
		now := s.now()
		market.Status = models.MarketStatusResolved
		market.Outcome = &outcome
		market.ResolutionSource = in.ResolutionSource
		market.ResolutionNotes = in.ResolutionNotes
		market.ResolutionDate = &now
		market.ResolvedBy = in.ResolvedBy
		if err := s.Repo.SaveMarketResolutionTx(ctx, tx, market); err != nil {
			return err
		}

		preds, err := s.Repo.ListPredictionsByMarketTx(ctx, tx, marketID)
		if err != nil {
			return err
		}
		userIDs := make([]string, 0, len(preds))
		seen := map[string]struct{}{}
		for i := range preds {
			score := consensus.BrierScore(preds[i].Value.InexactFloat64(), in.Outcome)
			d := decimal.NewFromFloat(score)
			if err := s.Repo.UpdatePredictionBrierTx(ctx, tx, preds[i].ID, d); err != nil {
				return err
			}
			if _, ok := seen[preds[i].UserID]; !ok {
				seen[preds[i].UserID] = struct{}{}
				userIDs = append(userIDs, preds[i].UserID)
			}
		}

		for _, userID := range userIDs {
			if err := s.recomputeUserAccuracy(ctx, tx, userID); err != nil {
				return err
			}
		}

		details, _ := json.Marshal(map[string]any{
			"outcome":           in.Outcome,
			"resolution_source": in.ResolutionSource,
		})
		audit := models.AuditLog{
			UserID:     in.ResolvedBy,
			Action:     "market_resolved",
			EntityType: "market",
			EntityID:   marketID,
			Details:    details,
		}
		if err := s.Repo.InsertAuditLogTx(ctx, tx, &audit); err != nil {
			return err
		}

		resolved = market
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.Logger != nil {
		s.Logger.Info("market resolved",
			zap.String("market_id", marketID),
			zap.Float64("outcome", in.Outcome),
		)
	}
	return resolved, nil
}

// recomputeUserAccuracy rebuilds the user's rollup from every prediction the
// user has ever made: total count over all predictions, accuracy as the mean
// Brier score over the scored ones (nil when none are scored yet).
func (s *ResolutionService) recomputeUserAccuracy(ctx context.Context, tx *gorm.DB, userID string) error {
	all, err := s.Repo.ListPredictionsByUserTx(ctx, tx, userID)
	if err != nil {
		return err
	}

	var sum decimal.Decimal
	scored := 0
	for i := range all {
		if all[i].BrierScore == nil {
			continue
		}
		sum = sum.Add(*all[i].BrierScore)
		scored++
	}

	var accuracy *decimal.Decimal
	if scored > 0 {
		mean := sum.Div(decimal.NewFromInt(int64(scored))).Round(6)
		accuracy = &mean
	}
	return s.Repo.UpdateUserAccuracyTx(ctx, tx, userID, len(all), accuracy)
}
