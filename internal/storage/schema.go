package storage

const schema = `
-- The 'cards' table holds one row per imported learning unit, plus the
-- content fingerprints the sync engine diffs against. Cards are never
-- deleted; removal from the import source flips status to 'archived'.
CREATE TABLE IF NOT EXISTS cards (
    id TEXT PRIMARY KEY,
    subject TEXT NOT NULL,
    topic TEXT NOT NULL DEFAULT '',
    question TEXT NOT NULL,
    answer TEXT NOT NULL,
    notes TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL DEFAULT 'active',
    source_row_hash TEXT NOT NULL,
    core_hash TEXT NOT NULL,
    context_hash TEXT NOT NULL,
    updated_at DATETIME NOT NULL
);

-- The 'progress' table holds per-learner scheduling state, one row per
-- (profile, card, variant). pk mirrors the composite key so the other
-- columns stay queryable on their own.
CREATE TABLE IF NOT EXISTS progress (
    pk TEXT PRIMARY KEY,
    profile_id TEXT NOT NULL,
    row_id TEXT NOT NULL,
    variant_type TEXT NOT NULL,
    box INTEGER NOT NULL DEFAULT 0,
    due_at DATETIME NOT NULL,
    last_reviewed_at DATETIME,
    lapses INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_progress_profile_due ON progress(profile_id, due_at);
CREATE INDEX IF NOT EXISTS idx_progress_row ON progress(row_id);

-- The 'sync_meta' table is a keyed singleton: the commit marker for the
-- last successfully applied import.
CREATE TABLE IF NOT EXISTS sync_meta (
    key TEXT PRIMARY KEY,
    csv_hash TEXT NOT NULL,
    last_sync_at DATETIME NOT NULL
);
`
