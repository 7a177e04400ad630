// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/morganforge/wirechat/internal/model"
)

func TestSnapshotStore_SaveAndLoad(t *testing.T) {
	store, err := NewSnapshotStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewSnapshotStore failed: %v", err)
	}

	turns := []model.Turn{
		model.NewUserTurn("hi"),
		model.NewAssistantTurn("hello"),
	}
	if err := store.Save(turns); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded %d turns, want 2", len(loaded))
	}
	if loaded[0].Role != model.RoleUser || loaded[0].Content != "hi" {
		t.Errorf("loaded[0] = %+v, want user/hi", loaded[0])
	}
	if loaded[1].Role != model.RoleAssistant || loaded[1].Content != "hello" {
		t.Errorf("loaded[1] = %+v, want assistant/hello", loaded[1])
	}
}

func TestSnapshotStore_LoadEmpty(t *testing.T) {
	store, err := NewSnapshotStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewSnapshotStore failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("loaded %d turns from fresh store, want 0", len(loaded))
	}
}

func TestSnapshotStore_ClearThenLoad(t *testing.T) {
	store, err := NewSnapshotStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewSnapshotStore failed: %v", err)
	}

	if err := store.Save([]model.Turn{model.NewUserTurn("hi")}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("loaded %d turns after Clear, want 0", len(loaded))
	}
}

func TestSnapshotStore_ClearMissingIsNoop(t *testing.T) {
	store, err := NewSnapshotStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewSnapshotStore failed: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Errorf("Clear on empty store failed: %v", err)
	}
}

func TestSnapshotStore_Sync(t *testing.T) {
	store, err := NewSnapshotStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewSnapshotStore failed: %v", err)
	}

	if err := store.Sync([]model.Turn{model.NewUserTurn("hi")}); err != nil {
		t.Fatalf("Sync non-empty failed: %v", err)
	}
	if _, err := os.Stat(store.Path()); err != nil {
		t.Errorf("snapshot file missing after non-empty Sync: %v", err)
	}

	if err := store.Sync(nil); err != nil {
		t.Fatalf("Sync empty failed: %v", err)
	}
	if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
		t.Error("snapshot file still present after empty Sync")
	}
}

func TestSnapshotStore_FormatIsSelfDescribing(t *testing.T) {
	store, err := NewSnapshotStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewSnapshotStore failed: %v", err)
	}
	if err := store.Save([]model.Turn{model.NewUserTurn("hi")}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(store.Path())
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	var records []map[string]string
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("snapshot is not a JSON array of records: %v", err)
	}
	if records[0]["role"] != "user" || records[0]["content"] != "hi" {
		t.Errorf("record = %v, want role/content pair", records[0])
	}
}
