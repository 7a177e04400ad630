// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the interactive conversation view.
//
// The view is a standard Bubble Tea program: a viewport showing the
// transcript, a textarea for input, and a status bar. Streaming
// responses arrive on a background goroutine and are batched through a
// StreamingBuffer so the viewport repaints at a capped frame rate
// instead of once per token.
package chat
