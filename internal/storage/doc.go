// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists the conversation snapshot for wirechat.
//
// The policy is write-through: every mutation of the in-memory conversation
// that leaves it non-empty rewrites the full snapshot on disk, and clearing
// the conversation removes the persisted file. Persisted state and
// in-memory state never diverge after a committed mutation.
package storage
