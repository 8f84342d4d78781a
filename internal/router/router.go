// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package router implements the routing engine (spec component 4.G):
// the parse-order that decides where an inbound chat event goes, and the
// built-in command dispatch. Grounded throughout on the reference
// implementation's Handler.processMessage/handleCommand/routeTo* methods
// — the only complete example of a chat-to-worker router in the corpus.
package router

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/wingedpig/workerbridge/internal/chat"
	"github.com/wingedpig/workerbridge/internal/concurrency"
	"github.com/wingedpig/workerbridge/internal/config"
)

// Multiplexer is the subset of *multiplexer.Manager the router drives.
type Multiplexer interface {
	Exists(ctx context.Context, worker string) (bool, error)
	List(ctx context.Context) ([]string, error)
	Create(ctx context.Context, worker, cwd string, env map[string]string) error
	Kill(ctx context.Context, worker string) error
	LaunchAgent(ctx context.Context, worker string, command []string) error
	Interrupt(ctx context.Context, worker string) error
	ForegroundCommand(ctx context.Context, worker string) (string, error)
	IsAgentRunning(ctx context.Context, worker string) bool
	PromptEmpty(ctx context.Context, worker string, timeout time.Duration) bool
	SendLiteral(ctx context.Context, worker, text string) error
	SubmitEnter(ctx context.Context, worker string) error
}

// Registry is the subset of *registry.Registry the router drives.
type Registry interface {
	List(ctx context.Context) ([]string, error)
	Exists(ctx context.Context, worker string) (bool, error)
	Focused(ctx context.Context) string
	SetFocused(worker string) error
	ClearFocusIfMatches(worker string) error
	Lock(worker string) *sync.Mutex
	ForgetLock(worker string)
}

// Coordination is the subset of *coordination.Store the router drives.
type Coordination interface {
	SetChatID(worker, chatID string) error
	GetChatID(worker string) string
	SetPending(worker string) error
	IsPending(worker string) bool
	PendingAge(worker string) (time.Duration, bool)
	EnsureInbox(worker string) error
	InboxDir(worker string) string
	PurgeInbox(worker string) error
	RemoveWorkerDir(worker string) error
}

// Typing starts and stops a per-worker typing-indicator loop (satisfied
// by *concurrency.TypingRegistry).
type Typing interface {
	Start(ctx context.Context, client concurrency.ChatActionSender, worker, chatID string)
	Stop(worker string)
}

const ackReaction = "\U0001F440" // 👀

// Router implements spec §4.G's parse order and built-in command set.
type Router struct {
	Mux      Multiplexer
	Registry Registry
	Coord    Coordination
	Chat     chat.Client
	Typing   Typing

	Node     config.NodeConfig
	Server   config.ServerConfig
	Commands config.CommandsConfig
	Agent    config.AgentConfig
	Sandbox  config.SandboxConfig
	Media    config.MediaConfig
}

// Handle dispatches one inbound chat event per spec §4.G's parse order:
// media attachment, slash command, @all broadcast, @name addressing,
// reply-to routing, focused worker, then the no-focus hint.
func (r *Router) Handle(ctx context.Context, ev chat.Event) {
	chatID := ev.ChatID

	if len(ev.Attachments) > 0 {
		r.handleAttachment(ctx, chatID, ev)
		return
	}

	text := strings.TrimSpace(ev.Text)
	if text == "" {
		return
	}

	if strings.HasPrefix(text, "/") {
		head, tail := splitCommand(text)
		canonical := r.resolveCommand(head)

		if r.isBlocked(head) {
			r.reply(ctx, chatID, fmt.Sprintf("%s is not available here.", head))
			return
		}

		if canonical != "" {
			r.dispatch(ctx, chatID, ev.MessageID, canonical, tail)
			return
		}

		worker := strings.TrimPrefix(head, "/")
		exists, err := r.Mux.Exists(ctx, worker)
		if err == nil && exists {
			r.handleWorkerShortcut(ctx, chatID, ev.MessageID, worker, tail)
			return
		}

		// Unknown slash command that isn't a worker name — falls through
		// to the focused worker verbatim, leading slash included, since
		// it may be a command the agent itself understands.
		r.routeToFocused(ctx, chatID, ev.MessageID, text)
		return
	}

	if strings.HasPrefix(text, "@all ") || text == "@all" {
		remainder := strings.TrimSpace(strings.TrimPrefix(text, "@all"))
		r.broadcast(ctx, chatID, ev.MessageID, remainder)
		return
	}

	if name, remainder, ok := parseAtName(text); ok {
		exists, err := r.Mux.Exists(ctx, name)
		if err == nil && exists {
			r.sendOneOff(ctx, chatID, ev.MessageID, name, remainder)
			return
		}
	}

	if ev.ReplyTo != nil {
		payload := fmt.Sprintf("Manager reply: %s\nContext (your previous message): %s", text, ev.ReplyTo.Text)
		if worker := extractWorkerFromReply(ev.ReplyTo.Text); worker != "" {
			exists, err := r.Mux.Exists(ctx, worker)
			if err == nil && exists {
				r.sendOneOff(ctx, chatID, ev.MessageID, worker, payload)
				return
			}
		}
		// Not a reply to a bot-framed worker message — still structured,
		// routed to whoever is focused (spec §4.G rule 5).
		r.routeToFocused(ctx, chatID, ev.MessageID, payload)
		return
	}

	r.routeToFocused(ctx, chatID, ev.MessageID, text)
}

// splitCommand splits "/cmd@botname arg1 arg2" into its head ("/cmd",
// lowercased, @botname suffix stripped) and tail ("arg1 arg2").
func splitCommand(text string) (head, tail string) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", ""
	}
	head = strings.ToLower(fields[0])
	if at := strings.Index(head, "@"); at != -1 {
		head = head[:at]
	}
	tail = strings.TrimSpace(strings.TrimPrefix(text, fields[0]))
	return head, tail
}

// parseAtName recognizes "@name remainder" addressing (spec §4.G rule 4),
// distinct from "@all" which is handled separately.
func parseAtName(text string) (name, remainder string, ok bool) {
	if !strings.HasPrefix(text, "@") {
		return "", "", false
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return "", "", false
	}
	head := fields[0]
	if strings.EqualFold(head, "@all") {
		return "", "", false
	}
	name = strings.ToLower(strings.TrimPrefix(head, "@"))
	if name == "" {
		return "", "", false
	}
	remainder = strings.TrimSpace(strings.TrimPrefix(text, head))
	return name, remainder, remainder != ""
}

// extractWorkerFromReply reads a "<b>worker:</b>" prefix off a replied-to
// message's text (spec §4.G.5a).
func extractWorkerFromReply(text string) string {
	const openTag = "<b>"
	const closeTag = "</b>"
	if !strings.HasPrefix(text, openTag) {
		return ""
	}
	rest := text[len(openTag):]
	end := strings.Index(rest, closeTag)
	if end == -1 {
		return ""
	}
	label := rest[:end]
	worker := strings.TrimSuffix(label, ":")
	return strings.ToLower(strings.TrimSpace(worker))
}

func (r *Router) reply(ctx context.Context, chatID, text string) {
	if _, err := r.Chat.SendText(ctx, chatID, text, ""); err != nil {
		log.Printf("router: reply to %s failed: %v", chatID, err)
	}
}
