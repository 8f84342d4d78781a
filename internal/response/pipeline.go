// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package response

import (
	"context"
	"fmt"
	"html"

	"github.com/wingedpig/workerbridge/internal/chat"
)

// ChatSink is the subset of chat.Client the pipeline needs to deliver a
// formatted response.
type ChatSink interface {
	SendHTML(ctx context.Context, chatID, html string, replyTo string) (chat.SentMessage, error)
	SendText(ctx context.Context, chatID, text string, replyTo string) (chat.SentMessage, error)
	SendPhoto(ctx context.Context, chatID, path, caption string) error
	SendDocument(ctx context.Context, chatID, path, caption string) error
}

// ChatIDResolver mirrors *coordination.Store's chat-id lookup.
type ChatIDResolver interface {
	GetChatID(worker string) string
}

// PendingClearer mirrors the pending-clear half of *coordination.Store
// (spec §4.H.8). The typing-loop cancellation is the pipeline's separate
// StopTyping hook.
type PendingClearer interface {
	ClearPending(worker string) error
}

// Pipeline implements spec component 4.H end to end.
type Pipeline struct {
	Chat    ChatSink
	ChatIDs ChatIDResolver
	Pending PendingClearer
	Media   MediaPolicy
	// StopTyping, if set, is called once the response has been fully
	// delivered, cancelling that worker's typing-indicator loop.
	StopTyping func(worker string)
}

// ErrEmptyPayload is returned when session or text is empty (spec §4.H.1).
var ErrEmptyPayload = fmt.Errorf("session and text are required")

// ErrNoChatID is returned when the worker has no chat_id on record (spec
// §4.H.2) — the worker isn't chat-attached, so there's nothing to do.
var ErrNoChatID = fmt.Errorf("worker has no chat_id on record")

// Deliver runs the full pipeline for one hook-posted response.
func (p *Pipeline) Deliver(ctx context.Context, worker, text string) error {
	if worker == "" || text == "" {
		return ErrEmptyPayload
	}

	chatID := p.ChatIDs.GetChatID(worker)
	if chatID == "" {
		return ErrNoChatID
	}

	residual, tags := ParseMediaTags(text)
	formatted := FormatHTML(residual)
	prefixed := fmt.Sprintf("<b>%s:</b>\n%s", html.EscapeString(worker), formatted)

	chunks := Split(prefixed)
	var replyTo string
	for _, chunk := range chunks {
		sent, err := p.Chat.SendHTML(ctx, chatID, chunk, replyTo)
		if err != nil {
			return fmt.Errorf("send chunk: %w", err)
		}
		replyTo = sent.MessageID
	}

	for _, tag := range tags {
		if err := p.Media.Validate(tag); err != nil {
			notice := fmt.Sprintf("Could not send %s: %v", tag.Path, err)
			_, _ = p.Chat.SendText(ctx, chatID, notice, "")
			continue
		}
		var sendErr error
		if tag.Kind == "image" {
			sendErr = p.Chat.SendPhoto(ctx, chatID, tag.Path, tag.Caption)
		} else {
			sendErr = p.Chat.SendDocument(ctx, chatID, tag.Path, tag.Caption)
		}
		if sendErr != nil {
			notice := fmt.Sprintf("Failed to send %s: %v", tag.Path, sendErr)
			_, _ = p.Chat.SendText(ctx, chatID, notice, "")
		}
	}

	if err := p.Pending.ClearPending(worker); err != nil {
		return fmt.Errorf("clear pending: %w", err)
	}
	if p.StopTyping != nil {
		p.StopTyping(worker)
	}
	return nil
}
