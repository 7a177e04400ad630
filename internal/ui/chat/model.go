// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/morganforge/wirechat/internal/export"
	"github.com/morganforge/wirechat/internal/session"
	"github.com/morganforge/wirechat/internal/ui/styles"
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	controller *session.Controller
	theme      *styles.Theme
	keys       KeyMap

	modelName string

	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	buffer  *StreamingBuffer
	partial string

	inFlight bool
	cancel   context.CancelFunc

	status string
	width  int
	height int
	ready  bool
}

// New creates the chat view. The controller's delta hook is claimed by
// the view: response fragments flow into the streaming buffer and are
// drained on the repaint tick.
func New(ctrl *session.Controller, theme *styles.Theme, modelName string) Model {
	input := textarea.New()
	input.Placeholder = "Type a message..."
	input.Prompt = "> "
	input.SetHeight(1)
	input.ShowLineNumbers = false
	input.CharLimit = 0
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	buf := NewStreamingBuffer()
	ctrl.WithDeltaHook(buf.Write)

	return Model{
		controller: ctrl,
		theme:      theme,
		keys:       DefaultKeyMap(),
		modelName:  modelName,
		input:      input,
		spinner:    sp,
		buffer:     buf,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StreamTickMsg:
		return m.handleStreamTick()

	case StreamDoneMsg:
		return m.handleStreamDone(msg)

	case ClearedMsg:
		if msg.Err != nil {
			m.status = fmt.Sprintf("clear: %v", msg.Err)
		} else {
			m.status = "conversation cleared"
		}
		m.refreshTranscript()
		return m, nil

	case ExportedMsg:
		if msg.Err != nil {
			m.status = fmt.Sprintf("export failed: %v", msg.Err)
		} else {
			m.status = "exported to " + msg.Path
		}
		return m, nil

	case spinner.TickMsg:
		if !m.inFlight {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleResize lays out the panes and rebuilds the word-wrap renderer.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	headerHeight := 1
	inputHeight := 3
	statusHeight := 1
	vpHeight := msg.Height - headerHeight - inputHeight - statusHeight
	if vpHeight < 1 {
		vpHeight = 1
	}

	if !m.ready {
		m.viewport = viewport.New(msg.Width, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = msg.Width
		m.viewport.Height = vpHeight
	}
	m.input.SetWidth(msg.Width - 4)

	wrap := msg.Width - 4
	if wrap < 20 {
		wrap = 20
	}
	if r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(m.theme.GlamourStyle()),
		glamour.WithWordWrap(wrap),
	); err == nil {
		m.renderer = r
	}

	m.refreshTranscript()
	return m, nil
}

// handleKey dispatches keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		if m.inFlight && m.cancel != nil {
			m.cancel()
			m.status = "canceling..."
		}
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.Clear):
		if m.inFlight {
			return m, nil
		}
		return m, m.clearCmd()

	case key.Matches(msg, m.keys.Export):
		return m, m.exportCmd()

	case key.Matches(msg, m.keys.Up),
		key.Matches(msg, m.keys.Down),
		key.Matches(msg, m.keys.PageUp),
		key.Matches(msg, m.keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit starts a request for the current input.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.inFlight {
		m.status = "a request is already in flight"
		return m, nil
	}

	text := m.input.Value()
	m.input.Reset()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.inFlight = true
	m.partial = ""
	m.buffer.Reset()
	m.status = ""

	ctrl := m.controller
	submitCmd := func() tea.Msg {
		return StreamDoneMsg{Err: ctrl.Submit(ctx, text)}
	}
	m.refreshTranscript()
	return m, tea.Batch(submitCmd, streamTickCmd(), m.spinner.Tick)
}

// handleStreamTick drains the buffer and schedules the next frame.
func (m Model) handleStreamTick() (tea.Model, tea.Cmd) {
	if !m.inFlight {
		return m, nil
	}
	if chunk, ok := m.buffer.Flush(); ok {
		m.partial += chunk
		m.refreshTranscript()
	}
	return m, streamTickCmd()
}

// handleStreamDone settles the request. The committed turns are already
// in the conversation, so the partial scratch state is discarded.
func (m Model) handleStreamDone(msg StreamDoneMsg) (tea.Model, tea.Cmd) {
	m.inFlight = false
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.partial = ""
	m.buffer.Reset()

	switch {
	case msg.Err == nil:
		m.status = ""
	case errors.Is(msg.Err, session.ErrEmptyInput):
		m.status = ""
	case errors.Is(msg.Err, session.ErrNotConfigured):
		m.status = "no API key configured, run: wirechat key set"
	case errors.Is(msg.Err, context.Canceled):
		m.status = "request canceled"
	default:
		// Transport failures leave an error turn in the transcript.
		m.status = ""
	}

	m.refreshTranscript()
	return m, nil
}

// =============================================================================
// COMMANDS
// =============================================================================

// clearCmd archives and clears the conversation off the UI loop.
func (m Model) clearCmd() tea.Cmd {
	ctrl := m.controller
	return func() tea.Msg {
		return ClearedMsg{Err: ctrl.Clear()}
	}
}

// exportCmd writes the transcript to a dated file in the working directory.
func (m Model) exportCmd() tea.Cmd {
	turns := m.controller.Conversation().Snapshot()
	return func() tea.Msg {
		exporter := export.NewTextExporter()
		dir, err := os.Getwd()
		if err != nil {
			dir = "."
		}
		path := filepath.Join(dir, export.Filename(exporter))
		if err := export.WriteFile(exporter, turns, path); err != nil {
			return ExportedMsg{Err: err}
		}
		return ExportedMsg{Path: path}
	}
}
