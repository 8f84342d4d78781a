// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// worker-hook is the binary an agent's stop hook invokes. It runs inside
// the agent's own process tree, extracts the turn that just finished,
// and posts it back to the bridge. It never fails loudly: a broken hook
// must not take the agent down with it.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log"
	"os"
	"time"

	"github.com/wingedpig/workerbridge/internal/hook"
)

// stopHookPayload mirrors the JSON Claude Code sends a stop hook on
// stdin. Only the field this binary cares about is declared.
type stopHookPayload struct {
	TranscriptPath string `json:"transcript_path"`
}

func main() {
	var (
		sessionsDir string
		nodeRoot    string
		prefix      string
		bridgeURL   string
	)

	flag.StringVar(&sessionsDir, "sessions-dir", os.Getenv("WORKERBRIDGE_SESSIONS_DIR"), "coordination sessions directory")
	flag.StringVar(&nodeRoot, "node-root", os.Getenv("WORKERBRIDGE_NODE_ROOT"), "coordination node-root directory")
	flag.StringVar(&prefix, "prefix", os.Getenv("WORKERBRIDGE_PREFIX"), "multiplexer session-name prefix")
	flag.StringVar(&bridgeURL, "bridge-url", os.Getenv("WORKERBRIDGE_URL"), "bridge base URL (optional, overrides the published port file)")
	flag.Parse()

	transcriptPath := os.Getenv("WORKERBRIDGE_TRANSCRIPT_PATH")
	if payload, err := readStdinPayload(); err == nil && payload.TranscriptPath != "" {
		transcriptPath = payload.TranscriptPath
	}

	if sessionsDir == "" || nodeRoot == "" || prefix == "" || transcriptPath == "" {
		// Missing wiring is a misconfiguration, not a reason to disrupt
		// the agent's own exit; log and get out of the way.
		log.Printf("worker-hook: incomplete configuration, skipping")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := hook.Run(ctx, hook.Options{
		SessionsDir:    sessionsDir,
		NodeRoot:       nodeRoot,
		Prefix:         prefix,
		BridgeURL:      bridgeURL,
		TranscriptPath: transcriptPath,
	})
	if err != nil {
		log.Printf("worker-hook: %v", err)
	}
}

// readStdinPayload reads a Claude-Code-style stop-hook JSON body from
// stdin when one is piped in. Absence of a payload (interactive stdin,
// empty input) is not an error; the hook falls back to environment
// variables for everything it needs.
func readStdinPayload() (stopHookPayload, error) {
	info, err := os.Stdin.Stat()
	if err != nil || (info.Mode()&os.ModeCharDevice) != 0 {
		return stopHookPayload{}, io.EOF
	}

	var payload stopHookPayload
	if err := json.NewDecoder(os.Stdin).Decode(&payload); err != nil {
		return stopHookPayload{}, err
	}
	return payload, nil
}
