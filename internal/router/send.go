// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package router

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/wingedpig/workerbridge/internal/chat"
	"github.com/wingedpig/workerbridge/internal/concurrency"
)

// deliver runs the two-step send under the per-worker lock, recording
// chat_id and the pending stamp first and starting the typing loop —
// everything spec §4.G's send semantics requires before the text ever
// reaches the multiplexer.
func (r *Router) deliver(ctx context.Context, worker, chatID, text string) error {
	if err := r.Coord.SetChatID(worker, chatID); err != nil {
		log.Printf("router: save chat_id for %s: %v", worker, err)
	}
	if err := r.Coord.SetPending(worker); err != nil {
		log.Printf("router: set pending for %s: %v", worker, err)
	}
	r.Typing.Start(ctx, r.Chat, worker, chatID)

	if err := concurrency.SendMessage(ctx, r.Registry, r.Mux, worker, text); err != nil {
		r.Typing.Stop(worker)
		return err
	}
	return nil
}

// deliverToWorker sends text to worker and attempts the "👀" acknowledgement
// once the agent has visibly accepted it, retrying the send exactly once
// if it hasn't (spec §4.G send semantics).
func (r *Router) deliverToWorker(ctx context.Context, chatID, messageID, worker, text string) {
	if err := r.deliver(ctx, worker, chatID, text); err != nil {
		r.reply(ctx, chatID, fmt.Sprintf("Failed to send to %s: %v", worker, err))
		return
	}
	r.ackOrRetry(ctx, chatID, messageID, worker, text)
}

func (r *Router) ackOrRetry(ctx context.Context, chatID, messageID, worker, text string) {
	if r.Mux.PromptEmpty(ctx, worker, time.Second) {
		r.react(ctx, chatID, messageID, worker)
		return
	}
	if err := r.deliver(ctx, worker, chatID, text); err != nil {
		log.Printf("router: retry send to %s failed: %v", worker, err)
		return
	}
	if r.Mux.PromptEmpty(ctx, worker, time.Second) {
		r.react(ctx, chatID, messageID, worker)
	}
}

// react sets the opportunistic acknowledgement reaction. A transport that
// doesn't support reactions (ErrUnsupported) is a silent no-op, never a
// user-visible error (spec §9 Open Question 3).
func (r *Router) react(ctx context.Context, chatID, messageID, worker string) {
	if err := r.Chat.SetReaction(ctx, chatID, messageID, ackReaction); err != nil && !errors.Is(err, chat.ErrUnsupported) {
		log.Printf("router: reaction failed for %s: %v", worker, err)
	}
}

// sendOneOff delivers to worker without touching the focused pointer
// (spec §4.G rules 4 and 5: @name addressing and reply-to routing).
func (r *Router) sendOneOff(ctx context.Context, chatID, messageID, worker, text string) {
	if text == "" {
		return
	}
	r.deliverToWorker(ctx, chatID, messageID, worker, text)
}

// routeToFocused implements spec §4.G rules 6 and 7: plain text goes to
// the focused worker, or — absent one — a hint to /hire.
func (r *Router) routeToFocused(ctx context.Context, chatID, messageID, text string) {
	focused := r.Registry.Focused(ctx)
	if focused == "" {
		workers, _ := r.Mux.List(ctx)
		if len(workers) > 0 {
			r.reply(ctx, chatID, fmt.Sprintf("No one focused. Your team: %s\nUse /focus <name>, or /hire <name> to add someone.", strings.Join(workers, ", ")))
		} else {
			r.reply(ctx, chatID, "No team yet. Add someone with /hire <name>.")
		}
		return
	}
	r.deliverToWorker(ctx, chatID, messageID, focused, text)
}

// broadcast implements spec §4.G rule 3: send to every worker, no focus
// change, one consolidated acknowledgement.
func (r *Router) broadcast(ctx context.Context, chatID, messageID, content string) {
	if content == "" {
		return
	}
	workers, err := r.Mux.List(ctx)
	if err != nil {
		r.reply(ctx, chatID, fmt.Sprintf("Failed to list workers: %v", err))
		return
	}
	if len(workers) == 0 {
		r.reply(ctx, chatID, "No team members yet. Add someone with /hire <name>.")
		return
	}

	var delivered []string
	for _, w := range workers {
		if err := r.deliver(ctx, w, chatID, content); err != nil {
			r.reply(ctx, chatID, fmt.Sprintf("Failed to send to %s: %v", w, err))
			continue
		}
		delivered = append(delivered, w)
	}
	if len(delivered) > 0 {
		r.reply(ctx, chatID, fmt.Sprintf("Sent to: %s", strings.Join(delivered, ", ")))
	}
}

// handleWorkerShortcut implements spec §4.G rule 2's worker-name branch:
// /<worker> alone focuses and acknowledges; /<worker> <tail> routes the
// tail as a one-off send and also sets focus.
func (r *Router) handleWorkerShortcut(ctx context.Context, chatID, messageID, worker, tail string) {
	if err := r.Registry.SetFocused(worker); err != nil {
		log.Printf("router: set focus to %s: %v", worker, err)
	}
	if tail == "" {
		r.reply(ctx, chatID, fmt.Sprintf("Now talking to %s.", title(worker)))
		return
	}
	r.deliverToWorker(ctx, chatID, messageID, worker, tail)
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
