// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// Statements run one at a time; the same text is valid for SQLite and PostgreSQL.
var schema = []string{
	// Poll id counter (single row)
	`CREATE TABLE IF NOT EXISTS poll_counter (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    next_poll_id BIGINT NOT NULL
)`,

	// Polls
	`CREATE TABLE IF NOT EXISTS poll (
    id BIGINT PRIMARY KEY,
    question TEXT NOT NULL,
    start_time BIGINT NOT NULL,
    end_time BIGINT NOT NULL CHECK (end_time > start_time),
    creator TEXT NOT NULL,
    is_closed BOOLEAN NOT NULL DEFAULT FALSE,
    can_change_vote BOOLEAN NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_poll_creator ON poll(creator)`,

	// Options, ordered by position
	`CREATE TABLE IF NOT EXISTS poll_option (
    poll_id BIGINT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    vote_count BIGINT NOT NULL DEFAULT 0 CHECK (vote_count >= 0),
    PRIMARY KEY (poll_id, position)
)`,

	// Whitelists, written once at creation
	`CREATE TABLE IF NOT EXISTS poll_whitelist (
    poll_id BIGINT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    identity TEXT NOT NULL,
    PRIMARY KEY (poll_id, position),
    UNIQUE (poll_id, identity)
)`,

	// Ledger entries. option_index is NULL for immutable ledgers.
	`CREATE TABLE IF NOT EXISTS ballot (
    poll_id BIGINT NOT NULL REFERENCES poll(id) ON DELETE CASCADE,
    voter TEXT NOT NULL,
    option_index INTEGER,
    PRIMARY KEY (poll_id, voter)
)`,
	`CREATE INDEX IF NOT EXISTS idx_ballot_poll_id ON ballot(poll_id)`,
}
