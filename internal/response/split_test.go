// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package response

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitShortTextSingleChunk(t *testing.T) {
	chunks := Split("hello world")
	assert.Equal(t, []string{"hello world"}, chunks)
}

func TestSplitEmptyTextNoChunks(t *testing.T) {
	assert.Empty(t, Split(""))
}

func TestSplitPrefersDoubleNewline(t *testing.T) {
	a := strings.Repeat("a", MaxMessageLength-10)
	b := strings.Repeat("b", 100)
	text := a + "\n\n" + b

	chunks := Split(text)
	if assert.Len(t, chunks, 2) {
		assert.Equal(t, a, chunks[0])
		assert.Equal(t, b, chunks[1])
	}
}

func TestSplitHardCutWhenNoBoundary(t *testing.T) {
	text := strings.Repeat("x", MaxMessageLength*2+5)
	chunks := Split(text)

	assert.Len(t, chunks, 3)
	for _, c := range chunks[:len(chunks)-1] {
		assert.LessOrEqual(t, len(c), MaxMessageLength)
	}

	var rebuilt strings.Builder
	for _, c := range chunks {
		rebuilt.WriteString(c)
	}
	assert.Equal(t, text, rebuilt.String())
}

func TestSplitRoundTripsConcatenation(t *testing.T) {
	a := strings.Repeat("line one\n", 300)
	b := strings.Repeat("line two\n", 300)
	text := a + b

	chunks := Split(text)
	assert.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), MaxMessageLength)
	}

	normalize := func(s string) string {
		fields := strings.Fields(s)
		return strings.Join(fields, " ")
	}

	var rebuilt strings.Builder
	for _, c := range chunks {
		rebuilt.WriteString(c)
		rebuilt.WriteString("\n")
	}
	assert.Equal(t, normalize(text), normalize(rebuilt.String()))
}
