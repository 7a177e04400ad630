// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"strings"

	"github.com/morganforge/wirechat/internal/model"
)

// =============================================================================
// PLAIN TEXT EXPORTER
// =============================================================================

// turnSeparator divides turns in the plain text transcript.
const turnSeparator = "\n\n---\n\n"

// TextExporter renders conversations as a plain text transcript.
// Each turn becomes a "Label: content" block, blocks joined by a
// horizontal rule. Content is written verbatim, no escaping.
type TextExporter struct{}

// NewTextExporter creates a plain text exporter.
func NewTextExporter() *TextExporter {
	return &TextExporter{}
}

// Extension returns "txt".
func (e *TextExporter) Extension() string { return "txt" }

// Export converts the turns to the transcript format.
func (e *TextExporter) Export(turns []model.Turn) ([]byte, error) {
	if len(turns) == 0 {
		return nil, ErrEmptyConversation
	}

	blocks := make([]string, 0, len(turns))
	for _, turn := range turns {
		blocks = append(blocks, turn.Role.DisplayName()+": "+turn.Content)
	}
	return []byte(strings.Join(blocks, turnSeparator)), nil
}
