package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jtkearn/deckbox/internal/domain"
)

// UpsertCard inserts a card or replaces it in full if the id exists.
func (db *DB) UpsertCard(card domain.Card) error {
	_, err := db.conn.Exec(`
		INSERT INTO cards (id, subject, topic, question, answer, notes, status,
			source_row_hash, core_hash, context_hash, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			subject = excluded.subject,
			topic = excluded.topic,
			question = excluded.question,
			answer = excluded.answer,
			notes = excluded.notes,
			status = excluded.status,
			source_row_hash = excluded.source_row_hash,
			core_hash = excluded.core_hash,
			context_hash = excluded.context_hash,
			updated_at = excluded.updated_at
	`,
		card.ID,
		card.Subject,
		card.Topic,
		card.Question,
		card.Answer,
		card.Notes,
		string(card.Status),
		card.SourceRowHash,
		card.CoreHash,
		card.ContextHash,
		card.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert card %s: %w", card.ID, err)
	}
	return nil
}

const cardColumns = `id, subject, topic, question, answer, notes, status,
	source_row_hash, core_hash, context_hash, updated_at`

func scanCard(row interface{ Scan(...any) error }) (domain.Card, error) {
	var c domain.Card
	var status string
	err := row.Scan(
		&c.ID,
		&c.Subject,
		&c.Topic,
		&c.Question,
		&c.Answer,
		&c.Notes,
		&status,
		&c.SourceRowHash,
		&c.CoreHash,
		&c.ContextHash,
		&c.UpdatedAt,
	)
	c.Status = domain.Status(status)
	return c, err
}

// FindCardByID retrieves a card by its id. Returns nil when the card
// does not exist.
func (db *DB) FindCardByID(id string) (*domain.Card, error) {
	row := db.conn.QueryRow(`SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)
	c, err := scanCard(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Card not found
		}
		return nil, fmt.Errorf("failed to find card %s: %w", id, err)
	}
	return &c, nil
}

// GetCardsByIDs batch-fetches the given card ids. Ids with no matching
// card are simply absent from the result.
func (db *DB) GetCardsByIDs(ids []string) (map[string]domain.Card, error) {
	cards := make(map[string]domain.Card, len(ids))
	if len(ids) == 0 {
		return cards, nil
	}

	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := db.conn.Query(`SELECT `+cardColumns+` FROM cards WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards by ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card row: %w", err)
		}
		cards[c.ID] = c
	}
	return cards, rows.Err()
}

// GetActiveCards retrieves every card whose status is active.
func (db *DB) GetActiveCards() ([]domain.Card, error) {
	rows, err := db.conn.Query(`SELECT `+cardColumns+` FROM cards WHERE status = ?`, string(domain.StatusActive))
	if err != nil {
		return nil, fmt.Errorf("failed to get active cards: %w", err)
	}
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card row: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// ActiveCardIDs retrieves the ids of every active card.
func (db *DB) ActiveCardIDs() ([]string, error) {
	rows, err := db.conn.Query(`SELECT id FROM cards WHERE status = ?`, string(domain.StatusActive))
	if err != nil {
		return nil, fmt.Errorf("failed to get active card ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan card id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// TouchCard refreshes a card's updated_at without altering content.
// Used when an import row's hash matches the stored card exactly.
func (db *DB) TouchCard(id string, at time.Time) error {
	_, err := db.conn.Exec(`UPDATE cards SET updated_at = ? WHERE id = ?`, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to touch card %s: %w", id, err)
	}
	return nil
}

// ArchiveCard soft-deletes a card by flipping its status. The card row
// and its progress rows are preserved.
func (db *DB) ArchiveCard(id string, at time.Time) error {
	_, err := db.conn.Exec(`UPDATE cards SET status = ?, updated_at = ? WHERE id = ?`,
		string(domain.StatusArchived), at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to archive card %s: %w", id, err)
	}
	return nil
}
