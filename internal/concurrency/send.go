// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package concurrency implements spec component 4.I: the per-worker send
// wrapper, the typing-indicator loop, and the graceful shutdown broadcast.
package concurrency

import (
	"context"
	"sync"
)

// Sender is the subset of *multiplexer.Manager the send wrapper needs.
type Sender interface {
	SendLiteral(ctx context.Context, worker, text string) error
	SubmitEnter(ctx context.Context, worker string) error
}

// Locker hands out the lazily-created per-worker mutex (satisfied by
// *registry.Registry).
type Locker interface {
	Lock(worker string) *sync.Mutex
}

// SendMessage is the send_message wrapper spec §9 calls out as "the
// single most important concurrency invariant": it holds the per-worker
// lock across BOTH the literal-text write and the Enter submit, so a
// second concurrent send can never interleave between them. Without this,
// two concurrent two-step sends produced a ~50% message-loss rate in the
// field (spec §5).
func SendMessage(ctx context.Context, locker Locker, sender Sender, worker, text string) error {
	mu := locker.Lock(worker)
	mu.Lock()
	defer mu.Unlock()

	if err := sender.SendLiteral(ctx, worker, text); err != nil {
		return err
	}
	return sender.SubmitEnter(ctx, worker)
}
