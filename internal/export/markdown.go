// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/morganforge/wirechat/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter renders conversations as a Markdown document with a
// small metadata header. Turn content is emitted verbatim so code fences
// and inline markup survive round-tripping into Markdown viewers.
type MarkdownExporter struct {
	// Title is used as the document heading. Empty picks a default.
	Title string

	now func() time.Time
}

// NewMarkdownExporter creates a Markdown exporter.
func NewMarkdownExporter() *MarkdownExporter {
	return &MarkdownExporter{now: time.Now}
}

// Extension returns "md".
func (e *MarkdownExporter) Extension() string { return "md" }

// Export converts the turns to a Markdown document.
func (e *MarkdownExporter) Export(turns []model.Turn) ([]byte, error) {
	if len(turns) == 0 {
		return nil, ErrEmptyConversation
	}

	title := e.Title
	if title == "" {
		title = "Conversation"
	}
	now := time.Now
	if e.now != nil {
		now = e.now
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("- **Exported**: %s\n", now().Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("- **Turns**: %d\n\n", len(turns)))

	for i, turn := range turns {
		sb.WriteString(fmt.Sprintf("### %s\n\n", turn.Role.DisplayName()))
		sb.WriteString(turn.Content)
		sb.WriteString("\n")
		if i < len(turns)-1 {
			sb.WriteString("\n---\n\n")
		}
	}
	return []byte(sb.String()), nil
}
