// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/morganforge/wirechat/internal/model"
)

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var sb strings.Builder
	sb.WriteString(m.headerView())
	sb.WriteString("\n")
	sb.WriteString(m.viewport.View())
	sb.WriteString("\n")
	sb.WriteString(m.theme.InputContainer.Width(m.width - 2).Render(m.input.View()))
	sb.WriteString("\n")
	sb.WriteString(m.statusView())
	return sb.String()
}

// headerView renders the title bar.
func (m Model) headerView() string {
	title := m.theme.HeaderTitle.Render("wirechat")
	mdl := m.theme.HeaderModel.Render(m.modelName)
	return m.theme.Header.Width(m.width).Render(title + "  " + mdl)
}

// statusView renders the bottom status bar, trimmed to the terminal width.
func (m Model) statusView() string {
	var left string
	switch {
	case m.inFlight:
		left = m.spinner.View() + m.theme.StatusState.Render(" "+m.controller.State().String())
	case m.status != "":
		left = m.theme.StatusError.Render(m.status)
	default:
		left = m.theme.StatusState.Render("ready")
	}

	var hints []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		hints = append(hints,
			m.theme.ShortcutKey.Render(h.Key)+" "+m.theme.ShortcutDesc.Render(h.Desc))
	}
	right := strings.Join(hints, "  ")

	// Drop the hints first, then truncate, when the terminal is narrow.
	line := left + "  " + right
	if lipgloss.Width(line) > m.width-2 {
		line = left
	}
	if lipgloss.Width(line) > m.width-2 {
		line = truncateToWidth(line, m.width-2)
	}
	return m.theme.StatusBar.Width(m.width).Render(line)
}

// truncateToWidth cuts a plain string to the given display width,
// counting wide characters properly.
func truncateToWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	var sb strings.Builder
	w := 0
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if w+rw > width {
			break
		}
		sb.WriteRune(r)
		w += rw
	}
	return sb.String()
}

// =============================================================================
// TRANSCRIPT RENDERING
// =============================================================================

// refreshTranscript re-renders the conversation into the viewport and
// pins the view to the bottom.
func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

// renderTranscript builds the full transcript view, including the
// in-progress partial response when streaming.
func (m Model) renderTranscript() string {
	turns := m.controller.Conversation().Snapshot()

	var sb strings.Builder
	for _, turn := range turns {
		sb.WriteString(m.renderTurn(turn))
		sb.WriteString("\n")
	}

	if m.inFlight {
		sb.WriteString(m.theme.AssistantLabel.Render(model.RoleAssistant.DisplayName()))
		sb.WriteString("\n")
		if m.partial != "" {
			sb.WriteString(m.theme.TurnBody.Render(m.partial))
		}
		sb.WriteString(m.theme.StreamCursor.Render("▌"))
		sb.WriteString("\n")
	}

	if sb.Len() == 0 {
		return m.theme.ShortcutDesc.Render("No messages yet. Type below and press Enter.")
	}
	return sb.String()
}

// renderTurn renders one committed turn. Assistant turns go through the
// markdown renderer; user turns stay plain.
func (m Model) renderTurn(turn model.Turn) string {
	var sb strings.Builder
	switch turn.Role {
	case model.RoleUser:
		sb.WriteString(m.theme.UserLabel.Render(turn.Role.DisplayName()))
		sb.WriteString("\n")
		sb.WriteString(m.theme.TurnBody.Render(turn.Content))
		sb.WriteString("\n")
	default:
		sb.WriteString(m.theme.AssistantLabel.Render(turn.Role.DisplayName()))
		sb.WriteString("\n")
		sb.WriteString(m.renderMarkdown(turn.Content))
	}
	return sb.String()
}

// renderMarkdown renders assistant content, falling back to plain text
// when the renderer is unavailable or fails.
func (m Model) renderMarkdown(content string) string {
	if m.renderer == nil {
		return m.theme.TurnBody.Render(content) + "\n"
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return m.theme.TurnBody.Render(content) + "\n"
	}
	return strings.TrimRight(out, "\n") + "\n"
}
