// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session drives a conversation turn from user input through
// streaming response to committed history.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/morganforge/wirechat/internal/cloud"
	"github.com/morganforge/wirechat/internal/markup"
	"github.com/morganforge/wirechat/internal/model"
)

// =============================================================================
// STATES
// =============================================================================

// State describes where the controller is in the request lifecycle.
type State int

const (
	// StateIdle means no request is in flight.
	StateIdle State = iota

	// StateSending means the user turn is committed and the request is
	// being issued, no response data received yet.
	StateSending

	// StateStreaming means response deltas are arriving.
	StateStreaming

	// StateFinalizing means the stream ended and the assistant turn is
	// being committed.
	StateFinalizing

	// StateFailed is the transient error state entered when a request
	// fails mid-flight, before the controller settles back to idle.
	StateFailed
)

// String returns the state name for logs and status lines.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateStreaming:
		return "streaming"
	case StateFinalizing:
		return "finalizing"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// =============================================================================
// CONTROLLER
// =============================================================================

var (
	// ErrEmptyInput is returned when the submitted text is blank.
	ErrEmptyInput = errors.New("session: input is empty")

	// ErrNotConfigured is returned when no credential is available.
	ErrNotConfigured = errors.New("session: no API credential configured")

	// ErrBusy is returned when a request is already in flight.
	ErrBusy = errors.New("session: request already in flight")
)

// Streamer issues a chat completion request and delivers response deltas.
// *cloud.Client satisfies this.
type Streamer interface {
	Stream(ctx context.Context, messages []cloud.ChatMessage, onDelta func(string)) error
}

// Archiver receives the transcript of a conversation being cleared.
// Store returns the identifier assigned to the archived transcript.
type Archiver interface {
	Store(turns []model.Turn) (string, error)
}

// Controller owns the request lifecycle for a single conversation.
// One request at a time: Submit while a request is in flight is a no-op
// returning ErrBusy. All exported methods are safe for concurrent use.
type Controller struct {
	mu    sync.Mutex
	state State

	conv     *model.Conversation
	streamer Streamer
	archiver Archiver

	hasCredential func() bool

	// onDelta receives each raw response fragment as it arrives.
	onDelta func(delta string)

	// onRender receives the rendered partial response as deltas arrive.
	onRender func(html string)

	// onState receives state transitions.
	onState func(State)
}

// NewController creates a controller for the given conversation.
func NewController(conv *model.Conversation, streamer Streamer) *Controller {
	return &Controller{
		conv:     conv,
		streamer: streamer,
		state:    StateIdle,
	}
}

// WithCredentialCheck sets the predicate consulted before each request.
// Without one, requests are always allowed.
func (c *Controller) WithCredentialCheck(fn func() bool) *Controller {
	c.hasCredential = fn
	return c
}

// WithArchiver sets the destination for cleared transcripts.
func (c *Controller) WithArchiver(a Archiver) *Controller {
	c.archiver = a
	return c
}

// WithDeltaHook sets the callback invoked with each raw response
// fragment. Useful for surfaces that do their own rendering.
func (c *Controller) WithDeltaHook(fn func(delta string)) *Controller {
	c.onDelta = fn
	return c
}

// WithRenderHook sets the callback for live partial-response rendering.
// The callback receives escaped, rendered markup.
func (c *Controller) WithRenderHook(fn func(html string)) *Controller {
	c.onRender = fn
	return c
}

// WithStateHook sets the callback invoked on every state transition.
func (c *Controller) WithStateHook(fn func(State)) *Controller {
	c.onState = fn
	return c
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Conversation returns the conversation this controller drives.
func (c *Controller) Conversation() *model.Conversation {
	return c.conv
}

// =============================================================================
// SUBMIT
// =============================================================================

// Submit runs one full request turn: commit the user turn, stream the
// response, commit the assistant turn. It blocks until the turn settles,
// so callers drive it from their own goroutine.
//
// Blank input, a missing credential, or an in-flight request leave the
// conversation untouched and return a sentinel error. A transport failure
// mid-stream discards the partial response and commits a synthetic
// assistant turn describing the failure; the user turn is never rolled
// back. Cancellation via ctx discards the partial response without
// adding an error turn.
func (c *Controller) Submit(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyInput
	}
	if c.hasCredential != nil && !c.hasCredential() {
		return ErrNotConfigured
	}

	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrBusy
	}
	c.state = StateSending
	c.mu.Unlock()
	c.notify(StateSending)

	defer func() {
		c.mu.Lock()
		c.state = StateIdle
		c.mu.Unlock()
		c.notify(StateIdle)
	}()

	// The user turn is committed before the request goes out and stays
	// committed whatever happens to the request.
	c.conv.Append(model.NewUserTurn(text))

	var buf strings.Builder
	first := true
	err := c.streamer.Stream(ctx, c.history(), func(delta string) {
		if first {
			first = false
			c.setState(StateStreaming)
		}
		buf.WriteString(delta)
		if c.onDelta != nil {
			c.onDelta(delta)
		}
		if c.onRender != nil {
			c.onRender(markup.Render(markup.Escape(buf.String())))
		}
	})

	if err != nil {
		// Partial response is discarded. Cancellation ends the turn
		// quietly; transport errors leave a visible record.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		c.setState(StateFailed)
		c.conv.Append(model.NewAssistantTurn(errorTurnContent(err)))
		return err
	}

	c.setState(StateFinalizing)
	c.conv.Append(model.NewAssistantTurn(buf.String()))
	return nil
}

// history converts the committed transcript to wire messages.
func (c *Controller) history() []cloud.ChatMessage {
	turns := c.conv.Snapshot()
	msgs := make([]cloud.ChatMessage, 0, len(turns))
	for _, t := range turns {
		msgs = append(msgs, cloud.ChatMessage{Role: string(t.Role), Content: t.Content})
	}
	return msgs
}

// errorTurnContent builds the synthetic assistant turn for a failed request.
func errorTurnContent(err error) string {
	msg := fmt.Sprintf("Error: %v", err)
	if strings.Contains(err.Error(), "connection refused") {
		msg += "\n\nCheck that the endpoint in your configuration is reachable."
	}
	return msg
}

// =============================================================================
// CLEAR
// =============================================================================

// Clear archives the current transcript, if an archiver is configured,
// and empties the conversation. Archive failures do not block the clear.
func (c *Controller) Clear() error {
	var archiveErr error
	if c.archiver != nil {
		if _, err := c.archiver.Store(c.conv.Snapshot()); err != nil {
			archiveErr = fmt.Errorf("session: archiving transcript: %w", err)
		}
	}
	c.conv.Clear()
	return archiveErr
}

// notify reports a state transition to the hook, if set.
func (c *Controller) notify(s State) {
	if c.onState != nil {
		c.onState(s)
	}
}

// setState updates the state under lock and notifies.
func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	c.notify(s)
}
