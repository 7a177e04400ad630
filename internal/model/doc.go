// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for the conversation log.
//
// A Conversation is an ordered, append-only sequence of Turns. The only
// destructive operation is Clear. All reads go through Snapshot, which
// returns a copy so no caller can mutate the log from outside.
package model
