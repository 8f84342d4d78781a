// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package multiplexer wraps tmux as the authoritative store of worker
// state (spec component 4.A). The multiplexer, not the bridge, owns each
// session; the bridge reads it live and never caches the worker set.
package multiplexer

import "context"

// Executor is the narrow shell-out surface the bridge needs from tmux.
// A real implementation shells out via os/exec; tests substitute a fake.
type Executor interface {
	HasSession(ctx context.Context, session string) (bool, error)
	ListSessions(ctx context.Context) ([]string, error)
	NewSession(ctx context.Context, session, cwd string) error
	KillSession(ctx context.Context, session string) error
	SendKeys(ctx context.Context, session string, literal bool, keys ...string) error
	SendText(ctx context.Context, session, text string) error
	CapturePane(ctx context.Context, session string, lines int) (string, error)
	SetEnvironment(ctx context.Context, session, key, value string) error
	PanePID(ctx context.Context, session string) (int, error)
}

// ErrSessionNotFound is returned by operations targeting a session that
// does not exist.
type ErrSessionNotFound struct{ Session string }

func (e *ErrSessionNotFound) Error() string { return "session not found: " + e.Session }

// ErrSessionExists is returned by Create when a session by that name is
// already present.
type ErrSessionExists struct{ Session string }

func (e *ErrSessionExists) Error() string { return "session already exists: " + e.Session }
