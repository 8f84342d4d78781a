// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package hook

import (
	"context"
	"os/exec"
	"strings"
)

// CurrentSessionName asks the multiplexer for the name of the session the
// calling process is running inside. The hook runs inside the agent's
// own process tree, never the bridge's, so it queries tmux directly
// rather than going through internal/multiplexer.Executor (spec §9
// "filesystem as IPC" — no in-process path exists between hook and
// bridge).
func CurrentSessionName(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "tmux", "display-message", "-p", "#{session_name}").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// DeriveWorker strips the node's session-name prefix off sessionName,
// reporting ok=false if the session doesn't carry this node's prefix at
// all (spec §4.C step 1: "exit silently if unprefixed").
func DeriveWorker(sessionName, prefix string) (worker string, ok bool) {
	if prefix == "" || !strings.HasPrefix(sessionName, prefix) {
		return "", false
	}
	worker = strings.TrimPrefix(sessionName, prefix)
	return worker, worker != ""
}
