// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package hook implements the stop-hook binary's orchestration (spec
// component 4.C): it runs inside the agent's own process, not the
// bridge's, and the only channel back to the bridge is the coordination
// filesystem plus one outbound HTTP POST.
package hook

import (
	"context"
	"fmt"

	"github.com/wingedpig/workerbridge/internal/coordination"
	"github.com/wingedpig/workerbridge/internal/multiplexer"
)

// Options carries everything Run needs to locate the worker's
// transcript, the coordination filesystem, and the bridge.
type Options struct {
	SessionsDir   string
	NodeRoot      string
	Prefix        string
	BridgeURL     string
	TranscriptPath string
}

// Run extracts the agent's last turn and hands it to the bridge. Apart
// from a POST failure, only a failure to open the coordination store is
// returned as an error; every other early exit is silent: a hook that
// can't determine where to send a reply (unprefixed session, no
// chat-identity record yet) is not an error, it just means this worker
// isn't chat-attached (spec §4.C, §7 "HookExtractionEmpty").
func Run(ctx context.Context, opts Options) error {
	sessionName, err := CurrentSessionName(ctx)
	if err != nil {
		return nil
	}

	worker, ok := DeriveWorker(sessionName, opts.Prefix)
	if !ok {
		return nil
	}

	store, err := coordination.NewStore(opts.SessionsDir, opts.NodeRoot)
	if err != nil {
		return fmt.Errorf("open coordination store: %w", err)
	}

	chatID := store.GetChatID(worker)
	if chatID == "" {
		return nil
	}

	bridgeURL := opts.BridgeURL
	if bridgeURL == "" {
		port, ok := store.GetPort()
		if !ok {
			return nil
		}
		bridgeURL = fmt.Sprintf("http://127.0.0.1:%d", port)
	}

	text, extractErr := WaitForStableTurn(opts.TranscriptPath)
	if extractErr != nil || text == "" {
		pane, paneErr := multiplexer.NewTmuxExecutor().CapturePane(ctx, sessionName, fallbackPaneLines)
		if paneErr == nil {
			text = ParsePaneFallback(pane)
		}
	}

	if text == "" {
		_ = store.ClearPending(worker)
		return nil
	}

	postErr := PostResponse(ctx, bridgeURL, worker, text)
	_ = store.ClearPending(worker)
	return postErr
}
