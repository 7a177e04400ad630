// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package markup

import (
	"strings"
	"testing"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"angle brackets", "<b>", "&lt;b&gt;"},
		{"ampersand", "a & b", "a &amp; b"},
		{"quotes", `say "hi"`, "say &#34;hi&#34;"},
		{"plain text untouched", "hello world", "hello world"},
		{"script tag", "<script>alert(1)</script>", "&lt;script&gt;alert(1)&lt;/script&gt;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Escape(tt.in); got != tt.want {
				t.Errorf("Escape(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRender_EscapedTagStaysLiteral(t *testing.T) {
	got := Render(Escape("<b>"))
	if got != "&lt;b&gt;" {
		t.Errorf("Render(Escape(\"<b>\")) = %q, want literal text", got)
	}
	if strings.Contains(got, "<b>") {
		t.Error("escaped input produced an active tag")
	}
}

func TestRender_ConstructOrder(t *testing.T) {
	got := Render("**bold** and `code` and \n")

	want := "<strong>bold</strong> and <code>code</code> and <br>"
	if got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}

	strongAt := strings.Index(got, "<strong>")
	codeAt := strings.Index(got, "<code>")
	brAt := strings.Index(got, "<br>")
	if !(strongAt < codeAt && codeAt < brAt) {
		t.Errorf("construct order wrong: strong=%d code=%d br=%d", strongAt, codeAt, brAt)
	}
}

func TestRender_FencedCodeBlock(t *testing.T) {
	got := Render("```go\nfmt.Println(1)\n```")

	want := `<pre><code class="language-go">fmt.Println(1)</code></pre>`
	if got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}

func TestRender_FenceWithoutLanguage(t *testing.T) {
	got := Render("```\nsome code\n```")

	if !strings.Contains(got, `class="language-text"`) {
		t.Errorf("missing default language tag: %q", got)
	}
	if !strings.Contains(got, ">some code<") {
		t.Errorf("fence content missing or untrimmed: %q", got)
	}
}

func TestRender_FenceLanguageAlias(t *testing.T) {
	got := Render("```js\nlet x = 1\n```")

	if !strings.Contains(got, `class="language-javascript"`) {
		t.Errorf("alias not canonicalized: %q", got)
	}
}

func TestRender_UnterminatedFenceIsLiteral(t *testing.T) {
	got := Render("before ```go\nunfinished")

	if strings.Contains(got, "<pre>") {
		t.Errorf("unterminated fence produced a block: %q", got)
	}
	if !strings.Contains(got, "```go") {
		t.Errorf("fence marker not preserved as literal: %q", got)
	}
}

func TestRender_UnterminatedInlineCodeIsLiteral(t *testing.T) {
	got := Render("a `b")
	if got != "a `b" {
		t.Errorf("Render = %q, want %q", got, "a `b")
	}
}

func TestRender_BoldBeforeItalic(t *testing.T) {
	got := Render("**a** and *b*")

	want := "<strong>a</strong> and <em>b</em>"
	if got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}

func TestRender_ItalicInsideBold(t *testing.T) {
	got := Render("**a *b* c**")

	want := "<strong>a <em>b</em> c</strong>"
	if got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}

func TestRender_OverlappingAsterisks(t *testing.T) {
	// The classic ambiguous input. The staged scan resolves it
	// deterministically: no crash, no unbalanced tags.
	got := Render("**a*b**c*")

	if strings.Count(got, "<strong>") != strings.Count(got, "</strong>") {
		t.Errorf("unbalanced strong tags: %q", got)
	}
	if strings.Count(got, "<em>") != strings.Count(got, "</em>") {
		t.Errorf("unbalanced em tags: %q", got)
	}
}

func TestRender_EmphasisDoesNotCrossLines(t *testing.T) {
	got := Render("*a\nb*")

	if strings.Contains(got, "<em>") {
		t.Errorf("emphasis crossed a line break: %q", got)
	}
	if !strings.Contains(got, "<br>") {
		t.Errorf("newline not converted: %q", got)
	}
}

func TestRender_CodeInsideFenceNotReprocessed(t *testing.T) {
	got := Render("```\n**not bold** `not code`\n```")

	if strings.Contains(got, "<strong>") || strings.Contains(got, "<code>`") {
		t.Errorf("fence content was reprocessed: %q", got)
	}
	if !strings.Contains(got, "**not bold**") {
		t.Errorf("fence content altered: %q", got)
	}
}

func TestRender_EscapedModelOutputInFence(t *testing.T) {
	// Model output is escaped before rendering; the fence carries the
	// escaped form through untouched.
	got := Render(Escape("```\n<script>\n```"))

	if strings.Contains(got, "<script>") {
		t.Errorf("active script tag leaked through fence: %q", got)
	}
	if !strings.Contains(got, "&lt;script&gt;") {
		t.Errorf("escaped content missing: %q", got)
	}
}

func TestRender_NewlinesBecomeBreaks(t *testing.T) {
	got := Render("a\nb\nc")
	want := "a<br>b<br>c"
	if got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}

func TestRender_EmptyInput(t *testing.T) {
	if got := Render(""); got != "" {
		t.Errorf("Render(\"\") = %q, want empty", got)
	}
}
