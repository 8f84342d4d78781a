// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package multiplexer

import (
	"context"
	"sync"
)

// mockExecutor is an in-memory Executor fake, in the style of
// internal/terminal/tmux_test.go's MockTmuxExecutor.
type mockExecutor struct {
	mu       sync.Mutex
	sessions map[string]bool
	sent     map[string][]string // session -> literal texts sent, in order
	enters   map[string]int
	panes    map[string]string
	panePIDs map[string]int

	NewSessionErr error
}

func newMockExecutor() *mockExecutor {
	return &mockExecutor{
		sessions: make(map[string]bool),
		sent:     make(map[string][]string),
		enters:   make(map[string]int),
		panes:    make(map[string]string),
		panePIDs: make(map[string]int),
	}
}

func (m *mockExecutor) HasSession(ctx context.Context, session string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[session], nil
}

func (m *mockExecutor) ListSessions(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for s, ok := range m.sessions {
		if ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockExecutor) NewSession(ctx context.Context, session, cwd string) error {
	if m.NewSessionErr != nil {
		return m.NewSessionErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions[session] {
		return &ErrSessionExists{Session: session}
	}
	m.sessions[session] = true
	return nil
}

func (m *mockExecutor) KillSession(ctx context.Context, session string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, session)
	return nil
}

func (m *mockExecutor) SendKeys(ctx context.Context, session string, literal bool, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		if k == "Enter" {
			m.enters[session]++
		}
	}
	return nil
}

func (m *mockExecutor) SendText(ctx context.Context, session, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent[session] = append(m.sent[session], text)
	return nil
}

func (m *mockExecutor) CapturePane(ctx context.Context, session string, lines int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.panes[session], nil
}

func (m *mockExecutor) SetEnvironment(ctx context.Context, session, key, value string) error {
	return nil
}

func (m *mockExecutor) PanePID(ctx context.Context, session string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.panePIDs[session], nil
}
