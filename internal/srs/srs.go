// Package srs implements the box-based spaced-repetition scheduler: a
// pure transition function from (progress, outcome, now) to the next
// progress record.
package srs

import (
	"time"

	"github.com/jtkearn/deckbox/internal/domain"
)

// Ladder is the fixed interval ladder. A progress record's box indexes
// into it; higher boxes mean longer until the next review.
type Ladder []time.Duration

// DefaultLadder returns the standard six-box ladder.
func DefaultLadder() Ladder {
	return Ladder{
		10 * time.Minute,
		24 * time.Hour,
		3 * 24 * time.Hour,
		7 * 24 * time.Hour,
		14 * 24 * time.Hour,
		30 * 24 * time.Hour,
	}
}

// Clamp forces box into the valid index range for the ladder.
func (l Ladder) Clamp(box int) int {
	if box < 0 {
		return 0
	}
	if box >= len(l) {
		return len(l) - 1
	}
	return box
}

// Update applies a review outcome to a progress record and returns the
// next record. The input is never mutated; DueAt is always re-derived
// from the new box via the ladder.
func (l Ladder) Update(rec domain.Progress, outcome domain.Outcome, now time.Time) domain.Progress {
	next := rec

	switch outcome {
	case domain.OutcomeKnow:
		next.Box = l.Clamp(rec.Box + 1)
	default: // dont_know
		next.Box = 0
		next.Lapses = rec.Lapses + 1
	}

	next.DueAt = now.Add(l[next.Box])
	next.LastReviewedAt = now
	return next
}
