// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package concurrency

import (
	"context"
	"log"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/wingedpig/workerbridge/internal/chat"
)

// TextSender is the subset of chat.Client the shutdown broadcast needs.
type TextSender interface {
	SendText(ctx context.Context, chatID, text string, replyTo string) (chat.SentMessage, error)
}

// Shutdown coordinates the graceful_shutdown path (spec §4.I): log the
// initiating parent as a diagnostic for unexpected kills, notify every
// known chat identity concurrently, then let the caller stop serving.
// The fan-out is explicitly exempt from per-worker serialization — it
// never touches the multiplexer, only chat.Client (SPEC_FULL §5).
type Shutdown struct {
	once sync.Once
}

// Broadcast sends a short "offline" notice to every known chat id
// concurrently via errgroup, grounded on internal/trace's use of
// golang.org/x/sync for fan-out work the teacher already depends on.
func (s *Shutdown) Broadcast(ctx context.Context, sender TextSender, chatIDs []string) {
	s.once.Do(func() {
		log.Printf("graceful shutdown initiated (parent pid %d)", os.Getppid())

		g, gctx := errgroup.WithContext(ctx)
		for _, id := range chatIDs {
			id := id
			g.Go(func() error {
				_, err := sender.SendText(gctx, id, "Going offline briefly. Your team stays the same.", "")
				if err != nil {
					log.Printf("shutdown notice to %s failed: %v", id, err)
				}
				return nil // a single failed notice must not cancel the others
			})
		}
		_ = g.Wait()
	})
}
