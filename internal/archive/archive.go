// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package archive keeps cleared conversations in a local SQLite database.
//
// The live conversation lives in the JSON snapshot; when the user clears
// it, the old log moves here so "clear" is not "destroy". Archived
// conversations can be listed, reloaded, and pruned.
package archive

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/morganforge/wirechat/internal/model"
	"github.com/morganforge/wirechat/internal/util"
)

// =============================================================================
// SCHEMA
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id         TEXT PRIMARY KEY,
	created_at TIMESTAMP NOT NULL,
	turn_count INTEGER NOT NULL,
	preview    TEXT NOT NULL,
	turns      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_conversations_created_at
	ON conversations(created_at);
`

// previewRunes caps the stored preview length.
const previewRunes = 80

// =============================================================================
// ARCHIVE
// =============================================================================

// Meta describes an archived conversation without its turns.
type Meta struct {
	ID        string
	CreatedAt time.Time
	TurnCount int
	Preview   string
}

// Archive is a SQLite-backed store of past conversations.
type Archive struct {
	db *sql.DB
}

// Open opens (or creates) the archive database at the given path.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize archive schema: %w", err)
	}
	return &Archive{db: db}, nil
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Store archives a conversation and returns its ID. Empty conversations
// are not archived.
func (a *Archive) Store(turns []model.Turn) (string, error) {
	if len(turns) == 0 {
		return "", nil
	}

	data, err := json.Marshal(turns)
	if err != nil {
		return "", fmt.Errorf("failed to marshal turns: %w", err)
	}

	id := uuid.NewString()
	_, err = a.db.Exec(
		`INSERT INTO conversations (id, created_at, turn_count, preview, turns) VALUES (?, ?, ?, ?, ?)`,
		id, time.Now().UTC(), len(turns), preview(turns), string(data),
	)
	if err != nil {
		return "", fmt.Errorf("failed to archive conversation: %w", err)
	}
	return id, nil
}

// List returns archived conversations, most recent first.
func (a *Archive) List() ([]Meta, error) {
	rows, err := a.db.Query(
		`SELECT id, created_at, turn_count, preview FROM conversations ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list archive: %w", err)
	}
	defer rows.Close()

	var metas []Meta
	for rows.Next() {
		var m Meta
		if err := rows.Scan(&m.ID, &m.CreatedAt, &m.TurnCount, &m.Preview); err != nil {
			return nil, fmt.Errorf("failed to scan archive row: %w", err)
		}
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

// Load returns the turns of an archived conversation.
func (a *Archive) Load(id string) ([]model.Turn, error) {
	var data string
	err := a.db.QueryRow(`SELECT turns FROM conversations WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("archived conversation %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load archived conversation: %w", err)
	}

	var turns []model.Turn
	if err := json.Unmarshal([]byte(data), &turns); err != nil {
		return nil, fmt.Errorf("failed to parse archived turns: %w", err)
	}
	return turns, nil
}

// Prune deletes the oldest archived conversations beyond max. max <= 0
// means unlimited.
func (a *Archive) Prune(max int) error {
	if max <= 0 {
		return nil
	}
	_, err := a.db.Exec(`
		DELETE FROM conversations WHERE id NOT IN (
			SELECT id FROM conversations ORDER BY created_at DESC LIMIT ?
		)`, max)
	if err != nil {
		return fmt.Errorf("failed to prune archive: %w", err)
	}
	return nil
}

// preview extracts the first user turn, truncated for listing.
func preview(turns []model.Turn) string {
	for _, t := range turns {
		if t.Role == model.RoleUser && t.Content != "" {
			return util.TruncateRunes(t.Content, previewRunes)
		}
	}
	return "(no user turns)"
}
