// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markup

import "html"

// Escape converts arbitrary text into markup-safe text. The output renders
// the exact original characters with no markup-active characters (<, >, &,
// quotes) left interpretable as tags or entities.
func Escape(s string) string {
	return html.EscapeString(s)
}
