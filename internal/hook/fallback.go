// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package hook

import "strings"

// fallbackPaneLines is how many trailing pane lines the fallback parser
// considers (spec §4.C step 6).
const fallbackPaneLines = 500

// incompleteWarning is appended whenever the fallback parser can't
// confirm it captured a full turn.
const incompleteWarning = "\n\n(captured from terminal output; may be incomplete)"

// promptGlyphs mark the start of the agent's next input prompt — the
// fallback parser stops collecting once it sees one, since anything
// after belongs to a turn that hasn't happened yet.
var promptGlyphs = []string{"│ >", "╭─", "─╯"}

// ParsePaneFallback extracts the assistant's last turn from raw pane
// text when the transcript file itself was unusable (spec §4.C step 6,
// "default on"). It looks for lines starting with the agent's bullet
// marker ("●"), skips animated status lines, and stops at the next
// prompt box.
func ParsePaneFallback(pane string) string {
	lines := strings.Split(pane, "\n")
	if len(lines) > fallbackPaneLines {
		lines = lines[len(lines)-fallbackPaneLines:]
	}

	var collected []string
	inBlock := false
	for _, line := range lines {
		trimmed := strings.TrimRight(line, " \t")

		if isPromptGlyph(trimmed) {
			if inBlock {
				break
			}
			continue
		}
		if strings.HasPrefix(strings.TrimLeft(trimmed, " "), "●") {
			inBlock = true
			collected = append(collected, trimmed)
			continue
		}
		if inBlock {
			if strings.TrimSpace(trimmed) == "" {
				break
			}
			if isAnimatedStatus(trimmed) {
				continue
			}
			collected = append(collected, trimmed)
		}
	}

	if len(collected) == 0 {
		return ""
	}
	return strings.Join(collected, "\n") + incompleteWarning
}

func isPromptGlyph(line string) bool {
	for _, glyph := range promptGlyphs {
		if strings.Contains(line, glyph) {
			return true
		}
	}
	return false
}

// isAnimatedStatus filters transient spinner/status lines (e.g.
// "Thinking… (esc to interrupt)") that aren't part of the response text.
func isAnimatedStatus(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.Contains(trimmed, "esc to interrupt") || strings.HasPrefix(trimmed, "✢") || strings.HasPrefix(trimmed, "✶")
}
