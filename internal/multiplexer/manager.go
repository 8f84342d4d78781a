// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package multiplexer

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	ps "github.com/mitchellh/go-ps"
)

var nameSanitizer = regexp.MustCompile(`[^a-z0-9-]+`)

// SanitizeName lowercases and strips anything outside [a-z0-9-], the
// sanitization spec §3 requires before a worker short name becomes part
// of a session name. Grounded on internal/terminal/types.go's
// ToTmuxSessionName, generalized from the teacher's single substitution
// to the spec's full character class.
func SanitizeName(name string) string {
	return nameSanitizer.ReplaceAllString(strings.ToLower(name), "")
}

// Manager wraps an Executor with the bridge's session-naming rule
// (prefix+name) and the live, never-cached worker-set discipline
// (spec §4.F / §9 "authoritative state in the multiplexer").
type Manager struct {
	exec       Executor
	prefix     string
	agentBinary string
}

// NewManager constructs a Manager. agentBinary is the process name
// ForegroundCommand/IsAgentRunning looks for (e.g. "claude").
func NewManager(exec Executor, prefix, agentBinary string) *Manager {
	return &Manager{exec: exec, prefix: prefix, agentBinary: agentBinary}
}

func (m *Manager) sessionName(worker string) string {
	return m.prefix + worker
}

// List returns the live worker set: every tmux session whose name carries
// this node's prefix, with the prefix stripped back off.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	sessions, err := m.exec.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	var workers []string
	for _, s := range sessions {
		if strings.HasPrefix(s, m.prefix) {
			workers = append(workers, strings.TrimPrefix(s, m.prefix))
		}
	}
	sort.Strings(workers)
	return workers, nil
}

// Exists queries the multiplexer directly; the registry never caches this.
func (m *Manager) Exists(ctx context.Context, worker string) (bool, error) {
	return m.exec.HasSession(ctx, m.sessionName(worker))
}

// Create makes a new detached session for worker at cwd and seeds its
// session-scoped environment so the hook can read config without relying
// on process-env inheritance (spec §4.A create).
func (m *Manager) Create(ctx context.Context, worker, cwd string, env map[string]string) error {
	session := m.sessionName(worker)
	if err := m.exec.NewSession(ctx, session, cwd); err != nil {
		return err
	}
	for k, v := range env {
		if err := m.exec.SetEnvironment(ctx, session, k, v); err != nil {
			return fmt.Errorf("set env %s for %s: %w", k, worker, err)
		}
	}
	return nil
}

// Kill terminates the worker's session.
func (m *Manager) Kill(ctx context.Context, worker string) error {
	return m.exec.KillSession(ctx, m.sessionName(worker))
}

// SendLiteral writes text with no newline — the first half of the
// two-step "send literal, then submit" sequence that spec §9 requires be
// wrapped at the semantic level under a single lock acquisition, not here.
func (m *Manager) SendLiteral(ctx context.Context, worker, text string) error {
	return m.exec.SendText(ctx, m.sessionName(worker), text)
}

// SubmitEnter is the second half of the two-step send.
func (m *Manager) SubmitEnter(ctx context.Context, worker string) error {
	return m.exec.SendKeys(ctx, m.sessionName(worker), false, "Enter")
}

// SendKeysRaw submits a raw key sequence with no newline, e.g. Escape for
// pause.
func (m *Manager) SendKeysRaw(ctx context.Context, worker string, keys ...string) error {
	return m.exec.SendKeys(ctx, m.sessionName(worker), false, keys...)
}

// Interrupt sends Ctrl-C to the worker's pane, stopping whatever program
// currently owns it without killing the session.
func (m *Manager) Interrupt(ctx context.Context, worker string) error {
	return m.exec.SendKeys(ctx, m.sessionName(worker), false, "C-c")
}

// LaunchAgent submits the agent launch command as a literal line followed
// by Enter, the same two-step write the send wrapper uses for ordinary
// messages (spec §4.G hire/relaunch both start the agent this way).
func (m *Manager) LaunchAgent(ctx context.Context, worker string, command []string) error {
	if len(command) == 0 {
		return fmt.Errorf("empty agent command")
	}
	line := strings.Join(command, " ")
	if err := m.exec.SendText(ctx, m.sessionName(worker), line); err != nil {
		return err
	}
	return m.exec.SendKeys(ctx, m.sessionName(worker), false, "Enter")
}

// CapturePane returns the last `lines` lines of the worker's pane (0 for
// visible screen only).
func (m *Manager) CapturePane(ctx context.Context, worker string, lines int) (string, error) {
	return m.exec.CapturePane(ctx, m.sessionName(worker), lines)
}

// ForegroundCommand resolves the name of the program currently owning the
// worker's pane by walking the process tree rooted at the pane's shell
// pid and returning the deepest live descendant's command name. Grounded
// on internal/terminal/tmux.go's pane_pid lookup, extended with go-ps
// process-tree walking that the teacher imports but never calls.
func (m *Manager) ForegroundCommand(ctx context.Context, worker string) (string, error) {
	pid, err := m.exec.PanePID(ctx, m.sessionName(worker))
	if err != nil {
		return "", err
	}
	procs, err := ps.Processes()
	if err != nil {
		return "", fmt.Errorf("list processes: %w", err)
	}
	byParent := make(map[int][]ps.Process)
	byPID := make(map[int]ps.Process)
	for _, p := range procs {
		byParent[p.PPid()] = append(byParent[p.PPid()], p)
		byPID[p.Pid()] = p
	}

	current, ok := byPID[pid]
	if !ok {
		return "", fmt.Errorf("pane process %d not found", pid)
	}
	// Walk down through children; the deepest live process is the
	// foreground program (shell -> agent, or shell -> sandbox -> agent).
	for {
		children := byParent[current.Pid()]
		if len(children) == 0 {
			break
		}
		current = children[len(children)-1]
	}
	return current.Executable(), nil
}

// IsAgentRunning reports whether the configured agent binary currently
// owns the worker's pane.
func (m *Manager) IsAgentRunning(ctx context.Context, worker string) bool {
	cmd, err := m.ForegroundCommand(ctx, worker)
	if err != nil {
		return false
	}
	return cmd == m.agentBinary
}

// PromptEmpty polls the worker's pane briefly for the agent to have
// consumed the text just submitted to it: it's "empty" once the agent
// binary still owns the pane after the send (as opposed to the pane
// having died or dropped to a shell). A submit that the agent never
// actually accepted leaves the router free to retry once before giving
// up and skipping the acknowledgement reaction. Grounded on the
// reference handler's PromptEmpty(worker, timeout) call made after every
// routed send, polled the same way the hook's stability guard polls the
// transcript file: short fixed steps within a bounded budget. The pane's
// text is not inspected.
func (m *Manager) PromptEmpty(ctx context.Context, worker string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if m.IsAgentRunning(ctx, worker) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(50 * time.Millisecond):
		}
	}
}
