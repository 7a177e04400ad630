// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package markup converts message text into a restricted HTML subset for
// display and export.
//
// Only four constructs are supported: fenced code blocks, inline code,
// bold, and italic, plus newline-to-<br> conversion. This is deliberately
// not a general markdown processor.
//
// Ordering invariant: Escape must be applied to all user- or model-supplied
// text BEFORE Render layers constructs on top. Render assumes its input is
// already escaped; feeding it raw text lets tag-like sequences in model
// output become live markup.
package markup
