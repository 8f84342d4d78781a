// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package response

import "strings"

// MaxMessageLength is the transport's single-message limit, used
// conservatively (spec §4.H.6).
const MaxMessageLength = 4096

// Split breaks text into chunks no longer than MaxMessageLength,
// preferring a double-newline boundary within the window, then a single
// newline, then whitespace, falling back to a hard cut only when no
// boundary exists (spec §4.H.6, §8 boundary behaviors).
func Split(text string) []string {
	if len(text) <= MaxMessageLength {
		if text == "" {
			return nil
		}
		return []string{text}
	}

	var chunks []string
	for len(text) > 0 {
		if len(text) <= MaxMessageLength {
			chunks = append(chunks, text)
			break
		}

		window := text[:MaxMessageLength]
		cut := lastIndex(window, "\n\n")
		if cut <= 0 {
			cut = lastIndex(window, "\n")
		}
		if cut <= 0 {
			cut = lastIndexAny(window, " \t")
		}
		if cut <= 0 {
			cut = MaxMessageLength
		}

		chunk := text[:cut]
		chunks = append(chunks, strings.TrimRight(chunk, " \t\n"))
		text = strings.TrimLeft(text[cut:], " \t\n")
	}
	return chunks
}

func lastIndex(s, sep string) int {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return -1
	}
	return i + len(sep)
}

func lastIndexAny(s, chars string) int {
	i := strings.LastIndexAny(s, chars)
	if i < 0 {
		return -1
	}
	return i + 1
}
