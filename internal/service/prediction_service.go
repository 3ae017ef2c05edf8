package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"coterran/internal/consensus"
	"coterran/internal/models"
	"coterran/internal/repository"
)

// PredictionService handles prediction submission and revision. The prediction
// mutation, the revision audit row, and the odds history entry commit in one
// transaction: either all become visible or none do.
type PredictionService struct {
	Repo   repository.Repository
	Logger *zap.Logger
	Now    func() time.Time
}

type SubmitPredictionInput struct {
	MarketID   string
	UserID     string
	Value      float64
	Confidence *string
	Reasoning  *string
	Sources    []string
	IsPublic   *bool
}

type SubmitPredictionResult struct {
	Prediction models.Prediction
	Created    bool
	History    models.OddsHistoryEntry
}

func (s *PredictionService) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Submit creates the caller's prediction for a market, or revises it in place
// when one already exists. A concurrent duplicate insert for the same
// (market, user) pair surfaces ErrPredictionConflict instead of a second row.
func (s *PredictionService) Submit(ctx context.Context, in SubmitPredictionInput) (SubmitPredictionResult, error) {
	var out SubmitPredictionResult
	if s == nil || s.Repo == nil {
		return out, nil
	}
	if in.Value < 0 || in.Value > 100 {
		return out, ErrInvalidPrediction
	}
	if in.Confidence != nil {
		switch *in.Confidence {
		case models.ConfidenceHigh, models.ConfidenceMedium, models.ConfidenceLow:
		default:
			return out, ErrInvalidConfidence
		}
	}

	user, err := s.Repo.GetUserByID(ctx, in.UserID)
	if err != nil {
		return out, err
	}
	if user == nil {
		return out, ErrUserNotFound
	}
	if !user.IsApproved && !user.IsAdmin {
		return out, ErrUserNotApproved
	}

	market, err := s.Repo.GetMarketByID(ctx, in.MarketID)
	if err != nil {
		return out, err
	}
	if market == nil {
		return out, ErrMarketNotFound
	}
	if market.Status != models.MarketStatusOpen {
		return out, ErrMarketNotOpen
	}
	if market.CloseDate.Before(s.now()) {
		return out, ErrMarketClosed
	}

	isPublic := true
	if in.IsPublic != nil {
		isPublic = *in.IsPublic
	}
	value := decimal.NewFromFloat(in.Value)

	err = s.Repo.InTx(ctx, func(tx *gorm.DB) error {
		existing, err := s.Repo.GetPredictionTx(ctx, tx, in.MarketID, in.UserID)
		if err != nil {
			return err
		}

		trigger := models.TriggerNewPrediction
		if existing == nil {
			item := models.Prediction{
				MarketID:   in.MarketID,
				UserID:     in.UserID,
				Value:      value,
				Confidence: in.Confidence,
				Reasoning:  in.Reasoning,
				IsPublic:   isPublic,
			}
			if err := s.Repo.CreatePredictionTx(ctx, tx, &item); err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrPredictionConflict
				}
				return err
			}
			out.Prediction = item
			out.Created = true
		} else {
			trigger = models.TriggerUpdatedPrediction
			update := models.PredictionUpdate{
				PredictionID: existing.ID,
				OldValue:     existing.Value,
				NewValue:     value,
				Reasoning:    in.Reasoning,
			}
			if len(in.Sources) > 0 {
				raw, err := json.Marshal(in.Sources)
				if err != nil {
					return err
				}
				update.Sources = raw
			}
			if err := s.Repo.InsertPredictionUpdateTx(ctx, tx, &update); err != nil {
				return err
			}
			existing.Value = value
			existing.Confidence = in.Confidence
			existing.Reasoning = in.Reasoning
			existing.IsPublic = isPublic
			if err := s.Repo.SavePredictionTx(ctx, tx, existing); err != nil {
				return err
			}
			out.Prediction = *existing
		}

		entry, err := s.recordOddsHistory(ctx, tx, in.MarketID, trigger)
		if err != nil {
			return err
		}
		out.History = *entry
		return nil
	})
	if err != nil {
		return SubmitPredictionResult{}, err
	}

	if s.Logger != nil {
		s.Logger.Info("prediction submitted",
			zap.String("market_id", in.MarketID),
			zap.String("user_id", in.UserID),
			zap.Bool("created", out.Created),
		)
	}
	return out, nil
}

// recordOddsHistory captures the consensus immediately after the triggering
// mutation, inside the same transaction, and appends an immutable entry with
// the delta against the previous consensus (nil on the first ever entry).
func (s *PredictionService) recordOddsHistory(ctx context.Context, tx *gorm.DB, marketID, trigger string) (*models.OddsHistoryEntry, error) {
	preds, err := s.Repo.ListPredictionsByMarketTx(ctx, tx, marketID)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.SetMarketPredictionCountTx(ctx, tx, marketID, len(preds)); err != nil {
		return nil, err
	}

	summary := consensus.Aggregate(predictionInputs(preds))
	prob := summary.Probability()
	if prob == nil {
		// Unreachable after a create/update, the set has at least one row.
		zero := 0.0
		prob = &zero
	}
	odds := consensus.OddsFromProbability(prob)

	entry := models.OddsHistoryEntry{
		MarketID:        marketID,
		TriggerType:     trigger,
		PredictionCount: summary.Count,
		Probability:     decimal.NewFromFloat(*prob),
		Timestamp:       s.now(),
	}
	if odds.DecimalOdds != nil {
		d := decimal.NewFromFloat(*odds.DecimalOdds)
		entry.DecimalOdds = &d
	}

	previous, err := s.Repo.LatestOddsHistoryTx(ctx, tx, marketID)
	if err != nil {
		return nil, err
	}
	if previous != nil {
		prev := previous.Probability
		change := entry.Probability.Sub(prev)
		entry.PreviousProbability = &prev
		entry.Change = &change
	}

	if err := s.Repo.InsertOddsHistoryTx(ctx, tx, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}
