// Package queue builds the ordered study queue for a session: the due
// set, rehydrated into variants, shuffled and sibling-spaced.
package queue

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/jtkearn/deckbox/internal/domain"
	"github.com/jtkearn/deckbox/internal/storage"
	"github.com/jtkearn/deckbox/internal/variant"
)

// Builder produces study queues. The rng is injectable so orderings are
// reproducible under test.
type Builder struct {
	db  *storage.DB
	rng *rand.Rand
	now func() time.Time
}

// NewBuilder creates a queue builder. A nil rng gets a time-seeded one.
func NewBuilder(db *storage.DB, rng *rand.Rand) *Builder {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Builder{db: db, rng: rng, now: time.Now}
}

// Build returns the ordered, hydrated study queue for a profile. The
// due set is a point-in-time snapshot; later writes are not observed.
// Progress rows whose card or variant can no longer be resolved are
// dropped silently — an orphan never fails the whole build.
func (b *Builder) Build(profileID string) ([]domain.StudyItem, error) {
	now := b.now()

	due, err := b.db.GetDueProgress(profileID, now)
	if err != nil {
		return nil, err
	}

	ids := distinctRowIDs(due)
	cards, err := b.db.GetCardsByIDs(ids)
	if err != nil {
		return nil, err
	}

	items := make([]domain.StudyItem, 0, len(due))
	for _, p := range due {
		card, ok := cards[p.RowID]
		if !ok || card.Status != domain.StatusActive {
			slog.Warn("orphaned progress: card missing or archived",
				"pk", p.PK())
			continue
		}
		v, ok := variant.Find(card, p.VariantType)
		if !ok {
			slog.Warn("orphaned progress: variant no longer derivable",
				"pk", p.PK(), "variant", p.VariantType)
			continue
		}
		items = append(items, domain.StudyItem{Variant: v, Progress: p})
	}

	b.shuffle(items)
	spaceSiblings(items)
	return items, nil
}

func distinctRowIDs(due []domain.Progress) []string {
	seen := make(map[string]struct{}, len(due))
	ids := make([]string, 0, len(due))
	for _, p := range due {
		if _, ok := seen[p.RowID]; ok {
			continue
		}
		seen[p.RowID] = struct{}{}
		ids = append(ids, p.RowID)
	}
	return ids
}

// shuffle is an unbiased Fisher-Yates pass: uniform over all
// permutations given an unbiased source.
func (b *Builder) shuffle(items []domain.StudyItem) {
	for i := len(items) - 1; i > 0; i-- {
		j := b.rng.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

// spaceSiblings is a single greedy left-to-right pass: whenever two
// adjacent items are variants of the same card, the nearest later item
// with a different rowId is swapped into position. If no such item
// exists the adjacent pair stays. Not globally optimal, but
// deterministic for a given shuffle outcome.
func spaceSiblings(items []domain.StudyItem) {
	for i := 1; i < len(items); i++ {
		if items[i].RowID != items[i-1].RowID {
			continue
		}
		for j := i + 1; j < len(items); j++ {
			if items[j].RowID != items[i].RowID {
				items[i], items[j] = items[j], items[i]
				break
			}
		}
	}
}
