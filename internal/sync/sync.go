// Package sync is the hash-diff engine: it reconciles validated import
// rows against the card store, applies selective progress resets for
// semantic changes, and commits the sync marker last.
package sync

import (
	"log/slog"
	"time"

	"github.com/jtkearn/deckbox/internal/domain"
	"github.com/jtkearn/deckbox/internal/fingerprint"
	"github.com/jtkearn/deckbox/internal/importer"
	"github.com/jtkearn/deckbox/internal/storage"
)

// resetScope classifies how much learning progress a content change
// invalidates.
type resetScope int

const (
	resetNone resetScope = iota
	resetCloze
	resetAll
)

// Engine applies imports to the store. Callers must ensure at most one
// sync is in flight at a time; the engine does not serialize itself.
type Engine struct {
	db  *storage.DB
	now func() time.Time
}

// NewEngine creates a sync engine over the given store.
func NewEngine(db *storage.DB) *Engine {
	return &Engine{db: db, now: time.Now}
}

// PerformSync reconciles one validated import against the store and
// reports how many cards were added, updated and archived.
//
// The per-row loop is not transactional: an interruption can leave some
// rows applied and others not, with the sync marker not yet advanced.
// Re-running the same import recomputes identical hashes for the
// already-applied rows and no-ops them, so retries are safe.
func (e *Engine) PerformSync(rows []domain.Row) (domain.SyncResult, error) {
	var res domain.SyncResult

	if len(rows) == 0 {
		return res, &importer.ValidationError{Kind: importer.KindEmptyImport}
	}

	importHash := fingerprint.Import(rows)
	meta, err := e.db.GetSyncMeta()
	if err != nil {
		return res, err
	}
	if meta != nil && meta.CSVHash == importHash {
		slog.Info("import unchanged, skipping sync", "hash", importHash)
		return res, nil
	}

	// Snapshot of active ids before mutation, for the archive pass.
	activeIDs, err := e.db.ActiveCardIDs()
	if err != nil {
		return res, err
	}

	now := e.now().UTC()
	seen := make(map[string]struct{}, len(rows))

	for _, row := range rows {
		seen[row.ID] = struct{}{}
		if err := e.applyRow(row, now, &res); err != nil {
			return res, err
		}
	}

	for _, id := range activeIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		// Progress rows are left untouched; only the card is flagged.
		if err := e.db.ArchiveCard(id, now); err != nil {
			return res, err
		}
		slog.Info("card archived", "id", id)
		res.Archived++
	}

	// Commit marker goes last: a reader must never observe an advanced
	// hash next to a partially applied card set.
	if err := e.db.SaveSyncMeta(domain.SyncMeta{CSVHash: importHash, LastSyncAt: now}); err != nil {
		return res, err
	}

	slog.Info("sync complete",
		"added", res.Added,
		"updated", res.Updated,
		"archived", res.Archived,
	)
	return res, nil
}

func (e *Engine) applyRow(row domain.Row, now time.Time, res *domain.SyncResult) error {
	rowHash := fingerprint.Row(row.Fields())

	card := domain.Card{
		ID:            row.ID,
		Subject:       row.Subject,
		Topic:         row.Topic,
		Question:      row.Question,
		Answer:        row.Answer,
		Notes:         row.Notes,
		Status:        domain.StatusActive,
		SourceRowHash: rowHash,
		CoreHash:      fingerprint.Core(row.Question, row.Answer),
		ContextHash:   fingerprint.Context(row.Notes),
		UpdatedAt:     now,
	}

	existing, err := e.db.FindCardByID(row.ID)
	if err != nil {
		return err
	}

	switch {
	case existing == nil:
		if err := e.db.UpsertCard(card); err != nil {
			return err
		}
		slog.Info("card added", "id", card.ID)
		res.Added++

	case existing.SourceRowHash != rowHash:
		scope := classifyReset(*existing, card)
		if err := e.applyReset(card.ID, scope, now); err != nil {
			return err
		}
		if err := e.db.UpsertCard(card); err != nil {
			return err
		}
		slog.Info("card updated", "id", card.ID, "reset", scope.String())
		res.Updated++

	default:
		// Byte-identical row: refresh the timestamp, nothing else.
		if err := e.db.TouchCard(card.ID, now); err != nil {
			return err
		}
	}
	return nil
}

// classifyReset decides the semantic weight of a row change. A core
// (question/answer) change invalidates all variants; a context-only
// (notes) change invalidates cloze; anything else is cosmetic.
func classifyReset(existing, incoming domain.Card) resetScope {
	if existing.CoreHash != incoming.CoreHash {
		return resetAll
	}
	if existing.ContextHash != incoming.ContextHash {
		return resetCloze
	}
	return resetNone
}

func (e *Engine) applyReset(rowID string, scope resetScope, now time.Time) error {
	switch scope {
	case resetAll:
		if err := e.db.ResetRowProgress(rowID, domain.VariantQA, now); err != nil {
			return err
		}
		return e.db.ResetRowProgress(rowID, domain.VariantCloze, now)
	case resetCloze:
		return e.db.ResetRowProgress(rowID, domain.VariantCloze, now)
	default:
		return nil
	}
}

func (s resetScope) String() string {
	switch s {
	case resetAll:
		return "all"
	case resetCloze:
		return "cloze"
	default:
		return "none"
	}
}
