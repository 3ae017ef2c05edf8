package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"coterran/internal/models"
)

func decPtr(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

func seedLeaderboardFixture(repo *stubRepo) {
	add := func(id string, total int, accuracy *decimal.Decimal) {
		repo.users[id] = &models.User{
			ID: id, Email: id + "@example.org", FullName: id,
			IsApproved: true, TotalPredictions: total, AccuracyScore: accuracy,
		}
	}
	add("a", 4, decPtr(0.12))
	add("b", 6, decPtr(0.05))
	add("c", 2, nil)           // active but no resolved market yet
	add("d", 0, decPtr(0.01))  // never predicted, excluded outright
	add("e", 3, decPtr(0.12))  // ties with a
}

func TestLeaderboard_OrderAndRanks(t *testing.T) {
	repo := newStubRepo()
	seedLeaderboardFixture(repo)
	svc := &LeaderboardService{Repo: repo, DefaultLimit: 50}

	entries, err := svc.Leaderboard(context.Background(), 0)
	if err != nil {
		t.Fatalf("err=%v", err)
	}

	wantOrder := []string{"b", "a", "e", "c"}
	if len(entries) != len(wantOrder) {
		t.Fatalf("entries=%d want %d", len(entries), len(wantOrder))
	}
	for i, id := range wantOrder {
		if entries[i].UserID != id {
			t.Fatalf("position %d: user=%s want %s", i, entries[i].UserID, id)
		}
	}

	// b leads; a and e share the tied score and the rank; c ranks last with
	// no score at all.
	wantRanks := []int{1, 2, 2, 3}
	for i, r := range wantRanks {
		if entries[i].Rank != r {
			t.Fatalf("rank[%s]=%d want %d", entries[i].UserID, entries[i].Rank, r)
		}
	}
	if entries[3].AccuracyScore != nil {
		t.Fatalf("unscored user must keep a nil accuracy, got %v", *entries[3].AccuracyScore)
	}
	if entries[0].AccuracyScore == nil || *entries[0].AccuracyScore != 0.05 {
		t.Fatalf("leader accuracy=%v want 0.05", entries[0].AccuracyScore)
	}
}

func TestLeaderboard_ExcludesUsersWithoutPredictions(t *testing.T) {
	repo := newStubRepo()
	seedLeaderboardFixture(repo)
	svc := &LeaderboardService{Repo: repo}

	entries, err := svc.Leaderboard(context.Background(), 0)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	for _, e := range entries {
		if e.UserID == "d" {
			t.Fatalf("user with zero predictions must not appear")
		}
	}
}

func TestLeaderboard_StableUnderRepeatedCalls(t *testing.T) {
	repo := newStubRepo()
	seedLeaderboardFixture(repo)
	svc := &LeaderboardService{Repo: repo}
	ctx := context.Background()

	first, err := svc.Leaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	second, err := svc.Leaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	for i := range first {
		if first[i].UserID != second[i].UserID || first[i].Rank != second[i].Rank {
			t.Fatalf("ordering changed between calls at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}
