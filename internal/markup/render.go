// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markup

import (
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
)

const fenceMarker = "```"

// defaultLanguage is the code block language used when no tag is given.
const defaultLanguage = "text"

// Render converts escaped text into display markup. Transformation stages,
// in order: fenced code blocks, then a single left-to-right inline scan
// (inline code, bold before italic), then newline-to-<br> conversion.
//
// A staged scan replaces the usual chain of independent greedy regex
// rewrites; with sequential rewrites, overlapping asterisk patterns like
// **a*b**c* mis-nest. Here the rule is explicit: at each position the
// double marker is tried before the single one, the nearest terminator on
// the same line closes a span, and unterminated markers stay literal text.
func Render(s string) string {
	var sb strings.Builder
	rest := s
	for {
		open := strings.Index(rest, fenceMarker)
		if open < 0 {
			sb.WriteString(renderInline(rest))
			break
		}
		body := rest[open+len(fenceMarker):]
		end := strings.Index(body, fenceMarker)
		if end < 0 {
			// Unterminated fence: the marker stays literal text.
			sb.WriteString(renderInline(rest))
			break
		}
		sb.WriteString(renderInline(rest[:open]))
		sb.WriteString(renderFence(body[:end]))
		rest = body[end+len(fenceMarker):]
	}
	return sb.String()
}

// renderFence emits one block-level code element. The first line of the
// fenced region is consumed as a language tag when it looks like one;
// nested fences are not supported, the first closing marker ends the block.
func renderFence(body string) string {
	lang := ""
	content := body
	if nl := strings.IndexByte(body, '\n'); nl >= 0 && isLanguageTag(body[:nl]) {
		lang = body[:nl]
		content = body[nl+1:]
	}
	var sb strings.Builder
	sb.WriteString(`<pre><code class="language-`)
	sb.WriteString(resolveLanguage(lang))
	sb.WriteString(`">`)
	sb.WriteString(strings.TrimSpace(content))
	sb.WriteString(`</code></pre>`)
	return sb.String()
}

// renderInline performs the single-pass inline scan over one non-fence
// segment of escaped text.
func renderInline(s string) string {
	var sb strings.Builder
	i := 0
	for i < len(s) {
		switch {
		case s[i] == '`':
			// Inline code may span lines; the span content is emitted
			// verbatim (it is already escaped).
			if end := strings.IndexByte(s[i+1:], '`'); end >= 0 {
				sb.WriteString("<code>")
				sb.WriteString(s[i+1 : i+1+end])
				sb.WriteString("</code>")
				i += end + 2
				continue
			}
			sb.WriteByte(s[i])
			i++

		case strings.HasPrefix(s[i:], "**"):
			if end := closerOnLine(s[i+2:], "**"); end >= 0 {
				sb.WriteString("<strong>")
				sb.WriteString(renderInline(s[i+2 : i+2+end]))
				sb.WriteString("</strong>")
				i += end + 4
				continue
			}
			sb.WriteString("**")
			i += 2

		case s[i] == '*':
			if end := closerOnLine(s[i+1:], "*"); end >= 0 {
				sb.WriteString("<em>")
				sb.WriteString(renderInline(s[i+1 : i+1+end]))
				sb.WriteString("</em>")
				i += end + 2
				continue
			}
			sb.WriteByte(s[i])
			i++

		case s[i] == '\n':
			sb.WriteString("<br>")
			i++

		default:
			sb.WriteByte(s[i])
			i++
		}
	}
	return sb.String()
}

// closerOnLine returns the index of the nearest occurrence of marker that
// sits before the next newline, or -1. Emphasis spans do not cross lines.
func closerOnLine(s, marker string) int {
	j := strings.Index(s, marker)
	if j < 0 {
		return -1
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && nl < j {
		return -1
	}
	return j
}

// isLanguageTag reports whether the first fence line looks like a language
// tag rather than code.
func isLanguageTag(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '_' || c == '+' || c == '-':
		default:
			return false
		}
	}
	return true
}

// resolveLanguage canonicalizes a fence language tag against the chroma
// lexer registry so aliases like "js" come out as "javascript". Unknown
// tags pass through unchanged; an absent tag defaults to "text".
func resolveLanguage(tag string) string {
	if tag == "" {
		return defaultLanguage
	}
	if lex := lexers.Get(tag); lex != nil {
		return strings.ToLower(lex.Config().Name)
	}
	return tag
}
