// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package hook implements the transcript extractor (spec component 4.C):
// the piece that runs inside the agent's own process tree, not the
// bridge's, and hands a finished turn's text back to the bridge over
// localhost HTTP.
package hook

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"
)

// jsonlLine mirrors the shape of one line in the agent's session
// transcript file. Grounded on internal/claude/claudecli.go's
// CLIJSONLLine — the Message field is left as raw JSON there too,
// decoded separately once the line's type is known.
type jsonlLine struct {
	Type    string          `json:"type"`
	Message json.RawMessage `json:"message"`
}

// innerMessage is the role+content shape nested inside jsonlLine.Message,
// grounded on internal/claude/manager.go's Message/ContentBlock types.
type innerMessage struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ExtractLastTurn reads a JSONL transcript and returns the concatenated
// text of every assistant content block following the last user turn
// (spec §4.C steps 4): find the last "user" line, then join every
// assistant text block after it with a blank line between blocks.
func ExtractLastTurn(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	var lines []jsonlLine
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var line jsonlLine
		if err := json.Unmarshal([]byte(raw), &line); err != nil {
			continue // malformed lines are skipped, not fatal
		}
		lines = append(lines, line)
	}

	lastUser := -1
	for i, line := range lines {
		if line.Type != "user" {
			continue
		}
		lastUser = i
	}
	if lastUser < 0 {
		return "", nil
	}

	var blocks []string
	for _, line := range lines[lastUser+1:] {
		if line.Type != "assistant" {
			continue
		}
		var msg innerMessage
		if err := json.Unmarshal(line.Message, &msg); err != nil {
			continue
		}
		for _, block := range msg.Content {
			if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
				blocks = append(blocks, block.Text)
			}
		}
	}
	return strings.Join(blocks, "\n\n"), nil
}
