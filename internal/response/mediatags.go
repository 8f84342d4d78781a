// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package response implements the response pipeline (spec component
// 4.H): out-band media tag parsing, markdown-to-HTML formatting, and
// transport-length-limited splitting.
package response

import (
	"regexp"
	"strings"
)

// MediaTag is a parsed out-band media reference (spec §6 grammar).
type MediaTag struct {
	Kind    string // "image" | "file"
	Path    string
	Caption string
}

var (
	fencePattern  = regexp.MustCompile("(?s)```.*?```")
	tagPattern    = regexp.MustCompile(`\[\[(image|file):([^|\]]+)(?:\|([^\]]*))?\]\]`)
	escapedTag    = regexp.MustCompile(`\\(\[\[(?:image|file):[^\]]*\]\])`)
)

// tokenize replaces every fenced code block with an opaque placeholder so
// that tag parsing never looks inside one, then returns a function to
// restore the originals. Grounded on spec §9 "tokenize fences first;
// replace their contents with opaque placeholders; parse tags; then
// restore" — the same technique the spec prescribes for the bold/italic
// pass over inline code in format.go.
func tokenizeFences(text string) (string, []string) {
	var fences []string
	tokenized := fencePattern.ReplaceAllStringFunc(text, func(m string) string {
		fences = append(fences, m)
		return placeholderFor(len(fences) - 1)
	})
	return tokenized, fences
}

func placeholderFor(i int) string {
	return "\x00FENCE" + itoa(i) + "\x00"
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	return string(buf[pos:])
}

func restoreFences(text string, fences []string) string {
	for i, f := range fences {
		text = strings.ReplaceAll(text, placeholderFor(i), f)
	}
	return text
}

// ParseMediaTags extracts out-band media tags from the top-level text
// (never from inside fenced code blocks), un-escapes `\[[...]]` literals,
// and returns the residual text with every (non-escaped) tag stripped
// plus the ordered list of tags to emit.
func ParseMediaTags(text string) (residual string, tags []MediaTag) {
	tokenized, fences := tokenizeFences(text)

	// Protect escaped tags before the real tag pass sees them.
	var escapedPlaceholders []string
	tokenized = escapedTag.ReplaceAllStringFunc(tokenized, func(m string) string {
		// m is like `\[[image:/ok.png]]`; keep the tag body, drop the backslash.
		literal := m[1:]
		escapedPlaceholders = append(escapedPlaceholders, literal)
		return "\x00ESC" + itoa(len(escapedPlaceholders)-1) + "\x00"
	})

	residual = tagPattern.ReplaceAllStringFunc(tokenized, func(m string) string {
		groups := tagPattern.FindStringSubmatch(m)
		tags = append(tags, MediaTag{Kind: groups[1], Path: groups[2], Caption: groups[3]})
		return ""
	})

	for i, lit := range escapedPlaceholders {
		residual = strings.ReplaceAll(residual, "\x00ESC"+itoa(i)+"\x00", lit)
	}

	residual = restoreFences(residual, fences)
	return residual, tags
}
