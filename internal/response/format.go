// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package response

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

var (
	codeFencePattern = regexp.MustCompile("(?s)```([a-zA-Z0-9_+-]*)\n?(.*?)```")
	inlineCodePattern = regexp.MustCompile("`([^`\n]+)`")
	boldPattern        = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	italicPattern      = regexp.MustCompile(`\*([^*]+)\*`)
)

// FormatHTML converts the worker's markdown-ish text into the transport's
// inline HTML subset (spec §4.H.4): escape `< > &`, convert fenced code
// blocks to `<pre><code class="language-x">`, inline code to `<code>`,
// and **bold**/*italic* — protecting both code forms from the bold/italic
// pass via the same tokenize-then-restore technique ParseMediaTags uses
// for fences (spec §9).
func FormatHTML(text string) string {
	var blocks []string
	text = codeFencePattern.ReplaceAllStringFunc(text, func(m string) string {
		groups := codeFencePattern.FindStringSubmatch(m)
		lang, body := groups[1], groups[2]
		escaped := html.EscapeString(body)
		var rendered string
		if lang != "" {
			rendered = fmt.Sprintf("<pre><code class=\"language-%s\">%s</code></pre>", lang, escaped)
		} else {
			rendered = fmt.Sprintf("<pre>%s</pre>", escaped)
		}
		blocks = append(blocks, rendered)
		return placeholderFor(len(blocks) - 1)
	})

	var inline []string
	text = inlineCodePattern.ReplaceAllStringFunc(text, func(m string) string {
		groups := inlineCodePattern.FindStringSubmatch(m)
		rendered := "<code>" + html.EscapeString(groups[1]) + "</code>"
		inline = append(inline, rendered)
		return "\x00INLINE" + itoa(len(inline)-1) + "\x00"
	})

	// Escape remaining literal text before applying bold/italic, so `<`,
	// `>`, `&` in prose never leak through as HTML.
	text = html.EscapeString(text)

	text = boldPattern.ReplaceAllString(text, "<b>$1</b>")
	text = italicPattern.ReplaceAllString(text, "<i>$1</i>")

	for i, rendered := range inline {
		text = strings.ReplaceAll(text, "\x00INLINE"+itoa(i)+"\x00", rendered)
	}
	for i, rendered := range blocks {
		text = strings.ReplaceAll(text, placeholderFor(i), rendered)
	}
	return text
}
