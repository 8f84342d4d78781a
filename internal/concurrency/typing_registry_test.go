// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package concurrency

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingActionSender struct {
	mu    sync.Mutex
	calls int32
}

func (c *countingActionSender) SendChatAction(ctx context.Context, chatID, action string) error {
	atomic.AddInt32(&c.calls, 1)
	return nil
}

func TestTypingRegistryStopCancelsLoop(t *testing.T) {
	sender := &countingActionSender{}
	reg := NewTypingRegistry()

	reg.Start(context.Background(), sender, "alice", "42")
	time.Sleep(20 * time.Millisecond)
	reg.Stop("alice")

	calls := atomic.LoadInt32(&sender.calls)
	assert.GreaterOrEqual(t, calls, int32(1))

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, calls, atomic.LoadInt32(&sender.calls))
}

func TestTypingRegistryStartReplacesExisting(t *testing.T) {
	sender := &countingActionSender{}
	reg := NewTypingRegistry()

	reg.Start(context.Background(), sender, "alice", "42")
	reg.Start(context.Background(), sender, "alice", "43")

	reg.mu.Lock()
	n := len(reg.cancels)
	reg.mu.Unlock()
	assert.Equal(t, 1, n)

	reg.Stop("alice")
}
