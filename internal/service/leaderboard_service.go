package service

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"coterran/internal/models"
	"coterran/internal/repository"
)

// LeaderboardService ranks approved forecasters by accuracy. Users with zero
// predictions are excluded entirely; users with predictions but no resolved
// markets yet rank after everyone with a defined score.
type LeaderboardService struct {
	Repo         repository.Repository
	DefaultLimit int
}

type LeaderboardEntry struct {
	Rank             int      `json:"rank"`
	UserID           string   `json:"user_id"`
	FullName         string   `json:"full_name"`
	Organization     *string  `json:"organization"`
	ExpertiseArea    *string  `json:"expertise_area"`
	TotalPredictions int      `json:"total_predictions"`
	AccuracyScore    *float64 `json:"accuracy_score"`
}

func (s *LeaderboardService) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if s == nil || s.Repo == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = s.DefaultLimit
	}
	if limit <= 0 {
		limit = 50
	}

	users, err := s.Repo.ListRankedForecasters(ctx, limit)
	if err != nil {
		return nil, err
	}
	return rankUsers(users), nil
}

// rankUsers orders by mean Brier score ascending with unscored users last,
// ties broken by user id so repeated calls never reorder, and assigns dense
// rank numbers starting at 1: equal scores share a rank, the next distinct
// score takes the following number.
func rankUsers(users []models.User) []LeaderboardEntry {
	ranked := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.TotalPredictions <= 0 {
			continue
		}
		ranked = append(ranked, u)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i].AccuracyScore, ranked[j].AccuracyScore
		switch {
		case a == nil && b == nil:
			return ranked[i].ID < ranked[j].ID
		case a == nil:
			return false
		case b == nil:
			return true
		case !a.Equal(*b):
			return a.LessThan(*b)
		default:
			return ranked[i].ID < ranked[j].ID
		}
	})

	out := make([]LeaderboardEntry, 0, len(ranked))
	rank := 0
	for i, u := range ranked {
		if i == 0 || !sameScore(ranked[i-1].AccuracyScore, u.AccuracyScore) {
			rank++
		}
		entry := LeaderboardEntry{
			Rank:             rank,
			UserID:           u.ID,
			FullName:         u.FullName,
			Organization:     u.Organization,
			ExpertiseArea:    u.ExpertiseArea,
			TotalPredictions: u.TotalPredictions,
		}
		if u.AccuracyScore != nil {
			v := u.AccuracyScore.InexactFloat64()
			entry.AccuracyScore = &v
		}
		out = append(out, entry)
	}
	return out
}

func sameScore(a, b *decimal.Decimal) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
