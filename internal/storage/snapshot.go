// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/morganforge/wirechat/internal/model"
	"github.com/morganforge/wirechat/internal/util"
)

// snapshotFile is the fixed name of the persisted conversation under the
// data directory.
const snapshotFile = "conversation.json"

// SnapshotStore persists the conversation log as a JSON snapshot.
type SnapshotStore struct {
	path string
}

// NewSnapshotStore creates a store rooted at the given data directory.
func NewSnapshotStore(dir string) (*SnapshotStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &SnapshotStore{path: filepath.Join(dir, snapshotFile)}, nil
}

// Path returns the snapshot file path.
func (s *SnapshotStore) Path() string {
	return s.path
}

// Save writes the full snapshot to disk.
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func (s *SnapshotStore) Save(turns []model.Turn) error {
	data, err := json.MarshalIndent(turns, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := util.AtomicWriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Load restores the last persisted snapshot, or an empty log if none
// exists.
func (s *SnapshotStore) Load() ([]model.Turn, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.Turn{}, nil
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var turns []model.Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return turns, nil
}

// Clear removes the persisted snapshot.
func (s *SnapshotStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove snapshot: %w", err)
	}
	return nil
}

// Sync applies the write-through policy for one conversation state: a
// non-empty log is persisted in full, an empty log removes the snapshot.
// Suitable as a model.Conversation change hook.
func (s *SnapshotStore) Sync(turns []model.Turn) error {
	if len(turns) == 0 {
		return s.Clear()
	}
	return s.Save(turns)
}
