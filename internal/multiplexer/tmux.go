// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package multiplexer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// TmuxExecutor shells out to the tmux CLI. Grounded on
// internal/terminal/tmux.go's RealTmuxExecutor.
type TmuxExecutor struct {
	tmuxPath string
}

// NewTmuxExecutor returns an Executor backed by the tmux binary on PATH.
func NewTmuxExecutor() *TmuxExecutor {
	return &TmuxExecutor{tmuxPath: "tmux"}
}

func (t *TmuxExecutor) cmd(ctx context.Context, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, t.tmuxPath, args...)
	cmd.Env = filterTMUXEnv(os.Environ())
	return cmd
}

// filterTMUXEnv strips the TMUX env var so tmux commands issued from
// inside a session don't get confused about which server to talk to.
func filterTMUXEnv(env []string) []string {
	out := make([]string, 0, len(env))
	for _, e := range env {
		if strings.HasPrefix(e, "TMUX=") {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (t *TmuxExecutor) HasSession(ctx context.Context, session string) (bool, error) {
	cmd := t.cmd(ctx, "has-session", "-t", session)
	err := cmd.Run()
	if err == nil {
		return true, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		_ = exitErr
		return false, nil
	}
	return false, err
}

func (t *TmuxExecutor) ListSessions(ctx context.Context) ([]string, error) {
	cmd := t.cmd(ctx, "list-sessions", "-F", "#{session_name}")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		// "no server running" is not an error: the worker set is simply empty.
		if strings.Contains(stderr.String(), "no server running") {
			return nil, nil
		}
		if strings.Contains(stderr.String(), "No such file or directory") {
			return nil, nil
		}
		return nil, fmt.Errorf("tmux list-sessions: %w: %s", err, stderr.String())
	}
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	var names []string
	for _, l := range lines {
		if l != "" {
			names = append(names, l)
		}
	}
	return names, nil
}

func (t *TmuxExecutor) NewSession(ctx context.Context, session, cwd string) error {
	exists, err := t.HasSession(ctx, session)
	if err != nil {
		return err
	}
	if exists {
		return &ErrSessionExists{Session: session}
	}
	args := []string{"new-session", "-d", "-s", session, "-x", "200", "-y", "50"}
	if cwd != "" {
		args = append(args, "-c", cwd)
	}
	cmd := t.cmd(ctx, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("tmux new-session: %w: %s", err, stderr.String())
	}
	return nil
}

func (t *TmuxExecutor) KillSession(ctx context.Context, session string) error {
	exists, err := t.HasSession(ctx, session)
	if err != nil {
		return err
	}
	if !exists {
		return &ErrSessionNotFound{Session: session}
	}
	cmd := t.cmd(ctx, "kill-session", "-t", session)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("tmux kill-session: %w: %s", err, stderr.String())
	}
	return nil
}

// SendKeys submits raw key sequences, e.g. "Escape" or "Enter", with no
// trailing newline unless a caller passes "Enter" explicitly.
func (t *TmuxExecutor) SendKeys(ctx context.Context, session string, literal bool, keys ...string) error {
	exists, err := t.HasSession(ctx, session)
	if err != nil {
		return err
	}
	if !exists {
		return &ErrSessionNotFound{Session: session}
	}
	args := []string{"send-keys", "-t", session}
	if literal {
		args = append(args, "-l")
	}
	args = append(args, keys...)
	cmd := t.cmd(ctx, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("tmux send-keys: %w: %s", err, stderr.String())
	}
	return nil
}

// SendText delivers arbitrary text via tmux's paste buffer so that
// newlines and special characters in the payload aren't reinterpreted as
// key sequences the way a plain send-keys -l would risk with long text.
// Grounded on internal/terminal/tmux.go's SendText (load-buffer + paste-buffer).
func (t *TmuxExecutor) SendText(ctx context.Context, session, text string) error {
	exists, err := t.HasSession(ctx, session)
	if err != nil {
		return err
	}
	if !exists {
		return &ErrSessionNotFound{Session: session}
	}
	load := t.cmd(ctx, "load-buffer", "-")
	load.Stdin = strings.NewReader(text)
	var loadErr bytes.Buffer
	load.Stderr = &loadErr
	if err := load.Run(); err != nil {
		return fmt.Errorf("tmux load-buffer: %w: %s", err, loadErr.String())
	}

	paste := t.cmd(ctx, "paste-buffer", "-d", "-t", session)
	var pasteErr bytes.Buffer
	paste.Stderr = &pasteErr
	if err := paste.Run(); err != nil {
		return fmt.Errorf("tmux paste-buffer: %w: %s", err, pasteErr.String())
	}
	return nil
}

func (t *TmuxExecutor) CapturePane(ctx context.Context, session string, lines int) (string, error) {
	exists, err := t.HasSession(ctx, session)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", &ErrSessionNotFound{Session: session}
	}
	args := []string{"capture-pane", "-p", "-t", session}
	if lines > 0 {
		args = append(args, "-S", "-"+strconv.Itoa(lines))
	}
	cmd := t.cmd(ctx, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tmux capture-pane: %w: %s", err, stderr.String())
	}
	return stdout.String(), nil
}

func (t *TmuxExecutor) SetEnvironment(ctx context.Context, session, key, value string) error {
	cmd := t.cmd(ctx, "set-environment", "-t", session, key, value)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("tmux set-environment: %w: %s", err, stderr.String())
	}
	return nil
}

// PanePID returns the pid of the shell running in the session's first
// pane, used by ForegroundCommand to walk down to the live child process.
func (t *TmuxExecutor) PanePID(ctx context.Context, session string) (int, error) {
	cmd := t.cmd(ctx, "display-message", "-p", "-t", session, "#{pane_pid}")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("tmux display-message: %w: %s", err, stderr.String())
	}
	pid, err := strconv.Atoi(strings.TrimSpace(stdout.String()))
	if err != nil {
		return 0, fmt.Errorf("parse pane_pid: %w", err)
	}
	return pid, nil
}
