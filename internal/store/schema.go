// Package store persists simulated activity samples and intuition roll
// results to SQLite, and exports them as JSONL or CSV for analysis.
package store

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaVersion is the current schema version.
const SchemaVersion = 1

// schemaV1 is the initial schema for the SQLite store.
const schemaV1 = `
-- Activity samples: summary columns for querying, full record as JSON payload
CREATE TABLE IF NOT EXISTS samples (
    id TEXT PRIMARY KEY,
    created_at TEXT NOT NULL,
    duration_s REAL NOT NULL,
    state TEXT NOT NULL,
    n_neurons INTEGER NOT NULL,
    n_channels INTEGER NOT NULL,
    total_spikes INTEGER NOT NULL,
    mean_firing_rate REAL NOT NULL,
    payload TEXT NOT NULL  -- JSON: the full BrainActivitySample
);
CREATE INDEX IF NOT EXISTS idx_samples_state ON samples(state);
CREATE INDEX IF NOT EXISTS idx_samples_created_at ON samples(created_at);

-- Intuition roll results from the gaming layer
CREATE TABLE IF NOT EXISTS rolls (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    created_at TEXT NOT NULL,
    character_name TEXT NOT NULL,
    context TEXT,
    d20_roll INTEGER NOT NULL,
    wisdom_modifier INTEGER NOT NULL,
    total_score INTEGER NOT NULL,
    difficulty INTEGER NOT NULL,
    wisdom INTEGER NOT NULL,
    success INTEGER NOT NULL,
    state TEXT NOT NULL,
    total_spikes INTEGER NOT NULL,
    mean_firing_rate REAL NOT NULL,
    sample_id TEXT REFERENCES samples(id)
);
CREATE INDEX IF NOT EXISTS idx_rolls_character ON rolls(character_name);

-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_meta (
    version INTEGER PRIMARY KEY
);
`

// InitSchema creates the tables if they do not exist and records the
// schema version.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT OR IGNORE INTO schema_meta (version) VALUES (?)`, SchemaVersion); err != nil {
		return fmt.Errorf("recording schema version: %w", err)
	}
	return nil
}
