// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package concurrency

import (
	"context"
	"time"
)

const typingInterval = 4 * time.Second

// ChatActionSender is the subset of chat.Client the typing loop needs.
type ChatActionSender interface {
	SendChatAction(ctx context.Context, chatID, action string) error
}

// TypingLoop emits the "typing" chat action every ~4 seconds until ctx is
// cancelled (on pending-clear or worker-end, per spec §4.I). Grounded on
// internal/events/memory.go's atomic-flag-plus-context cancellation idiom
// for background loops.
func TypingLoop(ctx context.Context, client ChatActionSender, chatID string) {
	ticker := time.NewTicker(typingInterval)
	defer ticker.Stop()

	_ = client.SendChatAction(ctx, chatID, "typing")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = client.SendChatAction(ctx, chatID, "typing")
		}
	}
}
