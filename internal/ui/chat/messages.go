// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "time"

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamStartMsg signals that a request was accepted and is in flight.
type StreamStartMsg struct{}

// StreamTickMsg drives the batched repaint loop while streaming.
type StreamTickMsg struct {
	Time time.Time
}

// StreamDoneMsg signals that the request settled, successfully or not.
// The transcript already holds the committed turns by the time this
// message arrives.
type StreamDoneMsg struct {
	Err error
}

// =============================================================================
// CONVERSATION MESSAGES
// =============================================================================

// ClearedMsg signals that the conversation was cleared.
type ClearedMsg struct {
	Err error
}

// ExportedMsg reports the outcome of a transcript export.
type ExportedMsg struct {
	Path string
	Err  error
}
