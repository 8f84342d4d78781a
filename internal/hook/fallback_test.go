// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package hook

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePaneFallbackCollectsBulletBlock(t *testing.T) {
	pane := strings.Join([]string{
		"some earlier scrollback",
		"● Here is the answer",
		"  continued line",
		"",
		"╭─",
		"│ > ",
		"╰─",
	}, "\n")

	text := ParsePaneFallback(pane)
	assert.Contains(t, text, "Here is the answer")
	assert.Contains(t, text, "continued line")
	assert.Contains(t, text, incompleteWarning)
}

func TestParsePaneFallbackNoBulletReturnsEmpty(t *testing.T) {
	pane := "just some scrollback\nwith no markers\n"
	assert.Empty(t, ParsePaneFallback(pane))
}

func TestParsePaneFallbackSkipsAnimatedStatus(t *testing.T) {
	pane := strings.Join([]string{
		"● Working on it",
		"✢ Thinking… (esc to interrupt)",
		"  done now",
	}, "\n")

	text := ParsePaneFallback(pane)
	assert.NotContains(t, text, "esc to interrupt")
	assert.Contains(t, text, "done now")
}

func TestParsePaneFallbackStopsAtPromptAfterBlock(t *testing.T) {
	pane := strings.Join([]string{
		"● First reply",
		"╭─",
		"│ > ",
		"● This belongs to a later turn",
	}, "\n")

	text := ParsePaneFallback(pane)
	assert.Contains(t, text, "First reply")
	assert.NotContains(t, text, "later turn")
}
