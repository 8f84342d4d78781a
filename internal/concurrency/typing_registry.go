// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package concurrency

import (
	"context"
	"sync"
	"time"
)

// pendingLoopLimit bounds a typing loop to the 600-second pending expiry.
const pendingLoopLimit = 600 * time.Second

// TypingRegistry tracks one in-flight typing loop per worker so that
// whichever side learns the reply landed first — the response pipeline
// clearing pending, or the worker ending — can cancel it. A bare
// context.CancelFunc per worker would work just as well if callers never
// raced each other, but router sends and hook-triggered clears run on
// independent goroutines, so the registry itself needs the same
// meta-mutex pattern as registry.Registry's lock map.
type TypingRegistry struct {
	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// NewTypingRegistry constructs an empty registry.
func NewTypingRegistry() *TypingRegistry {
	return &TypingRegistry{cancels: make(map[string]context.CancelFunc)}
}

// Start begins a typing loop for worker against chatID, cancelling any
// loop already running for that worker first. The loop does not end when
// ctx is cancelled (callers pass a request-scoped context that ends before
// the reply lands); it runs until Stop, a later Start for the same worker,
// or pendingLoopLimit, whichever comes first.
func (t *TypingRegistry) Start(ctx context.Context, client ChatActionSender, worker, chatID string) {
	t.Stop(worker)

	loopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pendingLoopLimit)
	t.mu.Lock()
	t.cancels[worker] = cancel
	t.mu.Unlock()

	go TypingLoop(loopCtx, client, chatID)
}

// Stop cancels the worker's typing loop, if any, and forgets it.
func (t *TypingRegistry) Stop(worker string) {
	t.mu.Lock()
	cancel, ok := t.cancels[worker]
	delete(t.cancels, worker)
	t.mu.Unlock()

	if ok {
		cancel()
	}
}
