package service

import (
	"context"

	"coterran/internal/consensus"
	"coterran/internal/models"
	"coterran/internal/repository"
)

// ConsensusService exposes the current aggregated view of a market. The same
// aggregation path feeds the odds history recorder and the snapshot jobs, so
// all consumers see identical statistics for identical prediction sets.
type ConsensusService struct {
	Repo repository.Repository
}

// MarketView is the outward-facing consensus payload for one market.
type MarketView struct {
	MarketID string            `json:"market_id"`
	Summary  consensus.Summary `json:"statistics"`
	Odds     consensus.Odds    `json:"odds"`
}

func (s *ConsensusService) MarketConsensus(ctx context.Context, marketID string) (MarketView, error) {
	out := MarketView{MarketID: marketID}
	if s == nil || s.Repo == nil {
		return out, nil
	}
	market, err := s.Repo.GetMarketByID(ctx, marketID)
	if err != nil {
		return out, err
	}
	if market == nil {
		return out, ErrMarketNotFound
	}
	preds, err := s.Repo.ListPredictionsByMarket(ctx, marketID)
	if err != nil {
		return out, err
	}
	out.Summary = consensus.Aggregate(predictionInputs(preds))
	out.Odds = consensus.OddsFromProbability(out.Summary.Probability())
	return out, nil
}

func predictionInputs(preds []models.Prediction) []consensus.PredictionInput {
	if len(preds) == 0 {
		return nil
	}
	inputs := make([]consensus.PredictionInput, 0, len(preds))
	for _, p := range preds {
		in := consensus.PredictionInput{Value: p.Value.InexactFloat64()}
		if p.Confidence != nil {
			in.Confidence = *p.Confidence
		}
		inputs = append(inputs, in)
	}
	return inputs
}
