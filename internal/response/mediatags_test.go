// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMediaTagsBasic(t *testing.T) {
	text := "done, see [[image:/tmp/out.png|result]] and [[file:/tmp/log.txt]]"
	residual, tags := ParseMediaTags(text)

	assert.Equal(t, "done, see  and ", residual)
	if assert.Len(t, tags, 2) {
		assert.Equal(t, MediaTag{Kind: "image", Path: "/tmp/out.png", Caption: "result"}, tags[0])
		assert.Equal(t, MediaTag{Kind: "file", Path: "/tmp/log.txt", Caption: ""}, tags[1])
	}
}

func TestParseMediaTagsIgnoresFencedTags(t *testing.T) {
	text := "```\n[[image:/etc/passwd]]\n```\nand \\[[image:/ok.png]] literal"
	residual, tags := ParseMediaTags(text)

	assert.Empty(t, tags)
	assert.Contains(t, residual, "[[image:/etc/passwd]]")
	assert.Contains(t, residual, "[[image:/ok.png]] literal")
	assert.NotContains(t, residual, `\[[image:/ok.png]]`)
}

func TestParseMediaTagsNoTags(t *testing.T) {
	residual, tags := ParseMediaTags("plain text, nothing special")
	assert.Equal(t, "plain text, nothing special", residual)
	assert.Empty(t, tags)
}
