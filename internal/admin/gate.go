// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package admin enforces the single-privileged-chat rule (spec component
// 4.E): exactly one chat identity may drive the bridge; everyone else is
// silently dropped.
package admin

import "sync"

// Persister is the minimal coordination dependency the gate needs to
// survive a restart — satisfied by *coordination.Store.
type Persister interface {
	GetAdminChatID() string
	SetAdminChatID(chatID string) error
}

// Gate guards the admin_chat_id, set at most twice in the teacher's own
// description of this field (learn, persist) and read on every event.
// Grounded on internal/terminal/manager.go's single sync.RWMutex guarding
// one authoritative field.
type Gate struct {
	mu      sync.RWMutex
	chatID  string
	persist Persister
}

// New loads any previously persisted admin id (set via configuration or
// learned on a prior run).
func New(persist Persister, configured string) *Gate {
	g := &Gate{persist: persist}
	if configured != "" {
		g.chatID = configured
	} else {
		g.chatID = persist.GetAdminChatID()
	}
	return g
}

// Allow derives the sender's chat identity and reports whether the event
// should proceed. The first-ever sender becomes the admin and is
// persisted; every subsequent sender is compared against it.
func (g *Gate) Allow(chatID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.chatID == "" {
		g.chatID = chatID
		_ = g.persist.SetAdminChatID(chatID) // best-effort; a persist failure doesn't block the first admin claim
		return true
	}
	return g.chatID == chatID
}

// ChatID returns the current admin chat id, or "" if none has been set
// yet.
func (g *Gate) ChatID() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.chatID
}
