// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/morganforge/wirechat/internal/markup"
	"github.com/morganforge/wirechat/internal/model"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter renders conversations as a standalone HTML document with
// embedded CSS. Turn content goes through the markup pipeline: escaped
// first, then rendered, so raw model output can never inject tags.
type HTMLExporter struct {
	// Title is used as the document title and heading.
	Title string

	now func() time.Time
}

// NewHTMLExporter creates an HTML exporter.
func NewHTMLExporter() *HTMLExporter {
	return &HTMLExporter{now: time.Now}
}

// Extension returns "html".
func (e *HTMLExporter) Extension() string { return "html" }

// Export converts the turns to an HTML document.
func (e *HTMLExporter) Export(turns []model.Turn) ([]byte, error) {
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
	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", markup.Escape(title)))
	sb.WriteString(fmt.Sprintf("    <meta name=\"date\" content=\"%s\">\n", now().Format(time.RFC3339)))
	sb.WriteString(documentCSS)
	sb.WriteString("</head>\n<body>\n")
	sb.WriteString("    <div class=\"container\">\n")
	sb.WriteString(fmt.Sprintf("        <h1>%s</h1>\n", markup.Escape(title)))
	sb.WriteString("        <main class=\"conversation\">\n")

	for _, turn := range turns {
		sb.WriteString(fmt.Sprintf("            <section class=\"turn turn-%s\">\n", turn.Role))
		sb.WriteString(fmt.Sprintf("                <h2>%s</h2>\n", turn.Role.DisplayName()))
		sb.WriteString("                <div class=\"content\">")
		sb.WriteString(markup.Render(markup.Escape(turn.Content)))
		sb.WriteString("</div>\n")
		sb.WriteString("            </section>\n")
	}

	sb.WriteString("        </main>\n")
	sb.WriteString("    </div>\n")
	sb.WriteString("</body>\n</html>\n")
	return []byte(sb.String()), nil
}

// documentCSS is the embedded stylesheet for exported documents.
const documentCSS = `    <style>
        body { font-family: system-ui, sans-serif; margin: 0; background: #f5f5f5; color: #222; }
        .container { max-width: 52rem; margin: 0 auto; padding: 2rem 1rem; }
        .turn { background: #fff; border-radius: 8px; padding: 0.5rem 1.25rem; margin-bottom: 1rem; }
        .turn-user { border-left: 4px solid #4a7dbd; }
        .turn-assistant { border-left: 4px solid #6b9e78; }
        .turn h2 { font-size: 0.85rem; text-transform: uppercase; color: #777; margin: 0.5rem 0; }
        pre { background: #f0f0f0; border-radius: 4px; padding: 0.75rem; overflow-x: auto; }
        code { font-family: ui-monospace, monospace; font-size: 0.9em; }
    </style>
`
