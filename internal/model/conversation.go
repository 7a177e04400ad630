// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "sync"

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation holds the ordered conversation log. Insertion order is
// display order; there is no reordering and no duplicate detection.
//
// Thread-safety: all operations are mutex-protected. The change hook is
// invoked with a snapshot while the lock is held, so persistence observes
// every committed mutation in order and never a torn state.
type Conversation struct {
	mu    sync.Mutex
	turns []Turn

	// onChange, if set, is called after every mutation with a snapshot of
	// the new state. Used for write-through persistence.
	onChange func([]Turn)
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{}
}

// NewConversationFrom creates a conversation pre-populated with turns,
// typically restored from the persisted snapshot at startup. The change
// hook is not invoked for the initial contents.
func NewConversationFrom(turns []Turn) *Conversation {
	c := &Conversation{}
	c.turns = append(c.turns, turns...)
	return c
}

// SetChangeHook registers the function called after every mutation.
func (c *Conversation) SetChangeHook(fn func([]Turn)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// Append adds a turn to the end of the log.
func (c *Conversation) Append(t Turn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = append(c.turns, t)
	c.notifyLocked()
}

// ReplaceAll replaces the entire log with the given turns.
func (c *Conversation) ReplaceAll(turns []Turn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = append([]Turn(nil), turns...)
	c.notifyLocked()
}

// Clear removes every turn. This is the only destructive operation.
func (c *Conversation) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = nil
	c.notifyLocked()
}

// Snapshot returns a copy of the log in insertion order.
func (c *Conversation) Snapshot() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Len returns the number of committed turns.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.turns)
}

func (c *Conversation) snapshotLocked() []Turn {
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

func (c *Conversation) notifyLocked() {
	if c.onChange != nil {
		c.onChange(c.snapshotLocked())
	}
}
