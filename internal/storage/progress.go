package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jtkearn/deckbox/internal/domain"
)

const progressColumns = `profile_id, row_id, variant_type, box, due_at, last_reviewed_at, lapses`

func scanProgress(row interface{ Scan(...any) error }) (domain.Progress, error) {
	var p domain.Progress
	var variantType string
	var lastReviewed sql.NullTime
	err := row.Scan(
		&p.ProfileID,
		&p.RowID,
		&variantType,
		&p.Box,
		&p.DueAt,
		&lastReviewed,
		&p.Lapses,
	)
	p.VariantType = domain.VariantType(variantType)
	if lastReviewed.Valid {
		p.LastReviewedAt = lastReviewed.Time
	}
	return p, err
}

// FindProgress retrieves one progress record by its composite key.
// Returns nil when no record exists yet (progress is created lazily).
func (db *DB) FindProgress(profileID, rowID string, variantType domain.VariantType) (*domain.Progress, error) {
	pk := domain.ProgressKey(profileID, rowID, variantType)
	row := db.conn.QueryRow(`SELECT `+progressColumns+` FROM progress WHERE pk = ?`, pk)
	p, err := scanProgress(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Progress not found
		}
		return nil, fmt.Errorf("failed to find progress %s: %w", pk, err)
	}
	return &p, nil
}

// SaveProgress upserts a progress record after grading.
func (db *DB) SaveProgress(p domain.Progress) error {
	var lastReviewed sql.NullTime
	if !p.LastReviewedAt.IsZero() {
		lastReviewed = sql.NullTime{Time: p.LastReviewedAt.UTC(), Valid: true}
	}

	_, err := db.conn.Exec(`
		INSERT INTO progress (pk, profile_id, row_id, variant_type, box, due_at, last_reviewed_at, lapses)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(pk) DO UPDATE SET
			box = excluded.box,
			due_at = excluded.due_at,
			last_reviewed_at = excluded.last_reviewed_at,
			lapses = excluded.lapses
	`,
		p.PK(),
		p.ProfileID,
		p.RowID,
		string(p.VariantType),
		p.Box,
		p.DueAt.UTC(),
		lastReviewed,
		p.Lapses,
	)
	if err != nil {
		return fmt.Errorf("failed to save progress %s: %w", p.PK(), err)
	}
	return nil
}

// ResetProgress forces a variant back to the start of the ladder:
// box 0, due now, lapses cleared. The record is created if it does not
// exist yet and overwritten in place if it does.
func (db *DB) ResetProgress(profileID, rowID string, variantType domain.VariantType, now time.Time) error {
	return db.SaveProgress(domain.Progress{
		ProfileID:      profileID,
		RowID:          rowID,
		VariantType:    variantType,
		Box:            0,
		DueAt:          now,
		LastReviewedAt: now,
		Lapses:         0,
	})
}

// ResetRowProgress resets every existing progress record for one card
// variant across all profiles. Used by the sync engine when a content
// change invalidates prior learning.
func (db *DB) ResetRowProgress(rowID string, variantType domain.VariantType, now time.Time) error {
	_, err := db.conn.Exec(`
		UPDATE progress
		SET box = 0, due_at = ?, last_reviewed_at = ?, lapses = 0
		WHERE row_id = ? AND variant_type = ?
	`, now.UTC(), now.UTC(), rowID, string(variantType))
	if err != nil {
		return fmt.Errorf("failed to reset progress for row %s (%s): %w", rowID, variantType, err)
	}
	return nil
}

// GetDueProgress retrieves all progress for a profile whose due time
// has passed, via the (profile_id, due_at) index.
func (db *DB) GetDueProgress(profileID string, now time.Time) ([]domain.Progress, error) {
	rows, err := db.conn.Query(`
		SELECT `+progressColumns+` FROM progress
		WHERE profile_id = ? AND due_at <= ?
	`, profileID, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to get due progress for profile %s: %w", profileID, err)
	}
	defer rows.Close()

	var due []domain.Progress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan progress row: %w", err)
		}
		due = append(due, p)
	}
	return due, rows.Err()
}

// GetProgressByRow retrieves every progress record referencing a card,
// across profiles and variants, via the row_id index.
func (db *DB) GetProgressByRow(rowID string) ([]domain.Progress, error) {
	rows, err := db.conn.Query(`SELECT `+progressColumns+` FROM progress WHERE row_id = ?`, rowID)
	if err != nil {
		return nil, fmt.Errorf("failed to get progress for row %s: %w", rowID, err)
	}
	defer rows.Close()

	var records []domain.Progress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan progress row: %w", err)
		}
		records = append(records, p)
	}
	return records, rows.Err()
}
