// Package session owns the ephemeral state of one study run: the built
// queue, a cursor, and the grading loop. The engine underneath stays
// stateless; a session is just a handle the caller passes around.
package session

import (
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jtkearn/deckbox/internal/domain"
	"github.com/jtkearn/deckbox/internal/queue"
	"github.com/jtkearn/deckbox/internal/srs"
	"github.com/jtkearn/deckbox/internal/storage"
	"github.com/jtkearn/deckbox/internal/variant"
)

// ErrExhausted is returned by Grade once every queued item is reviewed.
var ErrExhausted = errors.New("study session exhausted")

// Session is one learner's in-flight study run. One active session per
// profile is assumed; concurrent grading is last-write-wins.
type Session struct {
	ID        string
	ProfileID string
	StartedAt time.Time

	db     *storage.DB
	ladder srs.Ladder
	now    func() time.Time

	items  []domain.StudyItem
	cursor int
	known  int
	missed int
}

// Start seeds missing progress rows for active cards, builds the queue,
// and returns the session handle. Progress is created lazily here, on
// first access: box 0, due immediately.
func Start(db *storage.DB, builder *queue.Builder, ladder srs.Ladder, profileID string) (*Session, error) {
	s := &Session{
		ID:        uuid.NewString(),
		ProfileID: profileID,
		db:        db,
		ladder:    ladder,
		now:       time.Now,
	}
	s.StartedAt = s.now()

	if err := seedProgress(db, profileID, s.now()); err != nil {
		return nil, err
	}

	items, err := builder.Build(profileID)
	if err != nil {
		return nil, err
	}
	s.items = items

	slog.Info("session started", "id", s.ID, "profile", profileID, "queued", len(items))
	return s, nil
}

// seedProgress creates box-0 progress for every (active card, variant)
// pair the profile has not touched yet. Cloze progress is only seeded
// for cards whose notes actually contain a marker.
func seedProgress(db *storage.DB, profileID string, now time.Time) error {
	cards, err := db.GetActiveCards()
	if err != nil {
		return err
	}

	for _, card := range cards {
		types := []domain.VariantType{domain.VariantQA}
		if variant.HasCloze(card.Notes) {
			types = append(types, domain.VariantCloze)
		}
		for _, vt := range types {
			existing, err := db.FindProgress(profileID, card.ID, vt)
			if err != nil {
				return err
			}
			if existing != nil {
				continue
			}
			if err := db.ResetProgress(profileID, card.ID, vt, now); err != nil {
				return err
			}
		}
	}
	return nil
}

// Current returns the item under the cursor, or false when the queue is
// drained.
func (s *Session) Current() (domain.StudyItem, bool) {
	if s.cursor >= len(s.items) {
		return domain.StudyItem{}, false
	}
	return s.items[s.cursor], true
}

// Remaining reports how many items are left, including the current one.
func (s *Session) Remaining() int {
	return len(s.items) - s.cursor
}

// Grade applies the outcome to the current item, persists the updated
// progress, and advances the cursor.
func (s *Session) Grade(outcome domain.Outcome) (domain.Progress, error) {
	item, ok := s.Current()
	if !ok {
		return domain.Progress{}, ErrExhausted
	}

	next := s.ladder.Update(item.Progress, outcome, s.now())
	if err := s.db.SaveProgress(next); err != nil {
		return domain.Progress{}, err
	}

	s.cursor++
	if outcome == domain.OutcomeKnow {
		s.known++
	} else {
		s.missed++
	}
	return next, nil
}

// Stats reports the session's running tallies.
func (s *Session) Stats() (known, missed, remaining int) {
	return s.known, s.missed, s.Remaining()
}
