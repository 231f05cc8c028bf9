package srs

import (
	"testing"
	"time"

	"github.com/jtkearn/deckbox/internal/domain"
)

func TestUpdateKnow(t *testing.T) {
	ladder := DefaultLadder()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := domain.Progress{ProfileID: "p1", RowID: "card001", VariantType: domain.VariantQA}

	t.Run("advances one box", func(t *testing.T) {
		next := ladder.Update(rec, domain.OutcomeKnow, now)
		if next.Box != 1 {
			t.Errorf("expected box 1, got %d", next.Box)
		}
		if want := now.Add(ladder[1]); !next.DueAt.Equal(want) {
			t.Errorf("expected dueAt %v, got %v", want, next.DueAt)
		}
		if !next.LastReviewedAt.Equal(now) {
			t.Errorf("expected lastReviewedAt %v, got %v", now, next.LastReviewedAt)
		}
	})

	t.Run("never passes the top box", func(t *testing.T) {
		cur := rec
		for i := 0; i < len(ladder)+5; i++ {
			cur = ladder.Update(cur, domain.OutcomeKnow, now)
			if cur.Box > len(ladder)-1 {
				t.Fatalf("box %d exceeded ladder top after %d reviews", cur.Box, i+1)
			}
		}
		if cur.Box != len(ladder)-1 {
			t.Errorf("expected box to settle at %d, got %d", len(ladder)-1, cur.Box)
		}
	})

	t.Run("input not mutated", func(t *testing.T) {
		before := rec
		ladder.Update(rec, domain.OutcomeKnow, now)
		if rec != before {
			t.Error("expected input record to be untouched")
		}
	})
}

func TestUpdateDontKnow(t *testing.T) {
	ladder := DefaultLadder()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := domain.Progress{Box: 4, Lapses: 2}

	next := ladder.Update(rec, domain.OutcomeDontKnow, now)
	if next.Box != 0 {
		t.Errorf("expected box reset to 0, got %d", next.Box)
	}
	if next.Lapses != 3 {
		t.Errorf("expected lapses 3, got %d", next.Lapses)
	}
	if want := now.Add(ladder[0]); !next.DueAt.Equal(want) {
		t.Errorf("expected dueAt %v, got %v", want, next.DueAt)
	}
}

func TestClamp(t *testing.T) {
	ladder := DefaultLadder()
	testCases := []struct {
		in, want int
	}{
		{-1, 0},
		{0, 0},
		{3, 3},
		{len(ladder), len(ladder) - 1},
		{99, len(ladder) - 1},
	}
	for _, tc := range testCases {
		if got := ladder.Clamp(tc.in); got != tc.want {
			t.Errorf("Clamp(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestUpdateDeterministic(t *testing.T) {
	ladder := DefaultLadder()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := domain.Progress{Box: 2, Lapses: 1}

	a := ladder.Update(rec, domain.OutcomeKnow, now)
	b := ladder.Update(rec, domain.OutcomeKnow, now)
	if a != b {
		t.Error("expected identical inputs to produce identical records")
	}
}
