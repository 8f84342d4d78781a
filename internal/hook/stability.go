// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package hook

import (
	"os"
	"time"
)

const (
	stabilityBudget = 2 * time.Second
	stabilityStep   = 50 * time.Millisecond
)

// WaitForStableTurn polls the transcript until two consecutive reads
// produce the same non-empty text and the same underlying file size, or
// the 2-second budget runs out — whichever comes first. On timeout it
// returns whatever the final read produced (spec §4.C step 5: "emit
// final read on timeout"). Grounded on spec §9's "polling for file
// stability" design note: bounded retry with an equality guard, never a
// fixed sleep.
func WaitForStableTurn(path string) (string, error) {
	deadline := time.Now().Add(stabilityBudget)

	var prevText string
	var prevSize int64
	haveStableCandidate := false

	for {
		info, statErr := os.Stat(path)
		text, extractErr := ExtractLastTurn(path)
		if extractErr != nil {
			if time.Now().After(deadline) {
				return "", extractErr
			}
			time.Sleep(stabilityStep)
			continue
		}

		var size int64
		if statErr == nil {
			size = info.Size()
		}

		if text != "" && haveStableCandidate && text == prevText && size == prevSize {
			return text, nil
		}

		prevText, prevSize = text, size
		haveStableCandidate = text != ""

		if time.Now().After(deadline) {
			return text, nil
		}
		time.Sleep(stabilityStep)
	}
}
