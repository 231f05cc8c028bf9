package storage

import (
	"database/sql"
	"fmt"

	"github.com/jtkearn/deckbox/internal/domain"
)

// metaKey is the fixed key of the singleton sync_meta record.
const metaKey = "main"

// GetSyncMeta retrieves the last sync commit marker. Returns nil before
// the first successful sync.
func (db *DB) GetSyncMeta() (*domain.SyncMeta, error) {
	var m domain.SyncMeta
	row := db.conn.QueryRow(`SELECT csv_hash, last_sync_at FROM sync_meta WHERE key = ?`, metaKey)
	if err := row.Scan(&m.CSVHash, &m.LastSyncAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // No sync has completed yet
		}
		return nil, fmt.Errorf("failed to get sync meta: %w", err)
	}
	return &m, nil
}

// SaveSyncMeta writes the commit marker. The sync engine calls this
// last, after all card mutations are durable.
func (db *DB) SaveSyncMeta(m domain.SyncMeta) error {
	_, err := db.conn.Exec(`
		INSERT INTO sync_meta (key, csv_hash, last_sync_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			csv_hash = excluded.csv_hash,
			last_sync_at = excluded.last_sync_at
	`, metaKey, m.CSVHash, m.LastSyncAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save sync meta: %w", err)
	}
	return nil
}
