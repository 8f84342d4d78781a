// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package chat defines the capability set the core depends on for the
// chat transport (spec component 4.D) and a concrete Telegram-shaped
// implementation. The core never imports a transport SDK directly — it
// programs against Client.
package chat

import (
	"context"
	"errors"
	"io"
)

// ErrUnsupported is returned by capabilities a transport doesn't have
// (e.g. reactions). Callers treat it as a silent no-op, never a
// user-visible error (spec §9 Open Question 3).
var ErrUnsupported = errors.New("chat: capability not supported by this transport")

// SentMessage identifies a message that was sent, for reply-chaining.
type SentMessage struct {
	MessageID string
	ChatID    string
}

// Client is the capability set the bridge core depends on (spec §4.D).
type Client interface {
	// AdminChatID returns the configured admin chat id, or "" if unset.
	AdminChatID() string

	SendText(ctx context.Context, chatID, text string, replyTo string) (SentMessage, error)
	SendHTML(ctx context.Context, chatID, html string, replyTo string) (SentMessage, error)
	SendChatAction(ctx context.Context, chatID, action string) error
	SendPhoto(ctx context.Context, chatID, path, caption string) error
	SendDocument(ctx context.Context, chatID, path, caption string) error
	DownloadFile(ctx context.Context, fileID string, w io.Writer) (filename, mime string, size int64, err error)
	SetReaction(ctx context.Context, chatID, messageID, emoji string) error
	RegisterCommands(ctx context.Context, commands []Command) error
}

// Command is one entry in the registered command list (spec §6 "Command
// surface").
type Command struct {
	Name        string
	Description string
}

// Attachment describes an inbound attachment as parsed from the webhook
// payload (spec §6 "attachments[]").
type Attachment struct {
	Kind     string // "photo" | "image-doc" | "document"
	FileID   string
	Filename string
	MIME     string
	Size     int64
	Caption  string
}

// ReplyTo carries the text of a replied-to message, used by the routing
// engine's reply-route rule (spec §4.G.5).
type ReplyTo struct {
	Text string
}

// Event is a parsed inbound chat event (spec §6 "Webhook ingress").
type Event struct {
	ChatID      string
	Text        string
	Attachments []Attachment
	ReplyTo     *ReplyTo
	MessageID   string
}
