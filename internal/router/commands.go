// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package router

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/wingedpig/workerbridge/internal/chat"
	"github.com/wingedpig/workerbridge/internal/multiplexer"
)

var builtinCommands = map[string]bool{
	"hire": true, "end": true, "team": true, "focus": true,
	"progress": true, "pause": true, "relaunch": true,
	"learn": true, "settings": true,
}

// resolveCommand maps a leading "/head" token to its canonical built-in
// name via the configured alias table, or "" if it names neither a
// built-in nor an alias of one (spec §9 Open Question 1: the alias table
// is configuration, not an invariant — default values are adopted from
// the reference implementation's isKnownCommand switch).
func (r *Router) resolveCommand(head string) string {
	name := strings.TrimPrefix(head, "/")
	if canonical, ok := r.Commands.Aliases[name]; ok {
		name = canonical
	}
	if builtinCommands[name] {
		return name
	}
	return ""
}

func (r *Router) isBlocked(head string) bool {
	name := strings.TrimPrefix(head, "/")
	for _, b := range r.Commands.BlockedPrefix {
		if strings.EqualFold(name, strings.TrimPrefix(b, "/")) {
			return true
		}
	}
	return false
}

func (r *Router) isReserved(name string) bool {
	for _, res := range r.Commands.ReservedNames {
		if strings.EqualFold(name, res) {
			return true
		}
	}
	return false
}

// dispatch runs one built-in command (spec §4.G.dispatch).
func (r *Router) dispatch(ctx context.Context, chatID, messageID, cmd, tail string) {
	args := strings.Fields(tail)
	switch cmd {
	case "hire":
		r.cmdHire(ctx, chatID, args)
	case "end":
		r.cmdEnd(ctx, chatID, args)
	case "team":
		r.cmdTeam(ctx, chatID)
	case "focus":
		r.cmdFocus(ctx, chatID, args)
	case "progress":
		r.cmdProgress(ctx, chatID)
	case "pause":
		r.cmdPause(ctx, chatID)
	case "relaunch":
		r.cmdRelaunch(ctx, chatID)
	case "learn":
		r.cmdLearn(ctx, chatID, messageID, args)
	case "settings":
		r.cmdSettings(ctx, chatID)
	}
}

func (r *Router) cmdHire(ctx context.Context, chatID string, args []string) {
	if len(args) < 1 {
		r.reply(ctx, chatID, "Usage: /hire <name> [cwd]")
		return
	}
	name := multiplexer.SanitizeName(args[0])
	if name == "" || r.isReserved(name) {
		r.reply(ctx, chatID, fmt.Sprintf("Cannot use %q — reserved or invalid. Choose another name.", args[0]))
		return
	}

	cwd := r.Agent.WorkDir
	if len(args) > 1 {
		cwd = args[1]
	}

	env := map[string]string{}
	if err := r.Mux.Create(ctx, name, cwd, env); err != nil {
		r.reply(ctx, chatID, fmt.Sprintf("Could not hire %q: %v", name, err))
		return
	}
	if err := r.Registry.SetFocused(name); err != nil {
		log.Printf("router: set focus to %s after hire: %v", name, err)
	}

	command := r.Agent.GetCommand()
	if r.Sandbox.Enabled {
		command = append(append([]string{}, r.Sandbox.Runner...), command...)
	}
	if err := r.Mux.LaunchAgent(ctx, name, command); err != nil {
		log.Printf("router: launch agent for %s: %v", name, err)
	}

	r.updateCommandList(ctx)
	r.reply(ctx, chatID, fmt.Sprintf("%s is added and assigned. They'll stay on your team.", title(name)))

	if r.Agent.AutoAccept && !r.Sandbox.Enabled {
		// Direct (non-sandboxed) launches show a one-time trust prompt;
		// auto-accept it so the welcome message below lands on a ready
		// agent instead of stalling behind the prompt.
		if err := r.Mux.SubmitEnter(ctx, name); err != nil {
			log.Printf("router: auto-accept for %s: %v", name, err)
		}
	}

	welcome := "You're online. Attach images with [[image:/path|caption]] and files with [[file:/path|caption]] in your replies."
	if err := r.deliver(ctx, name, chatID, welcome); err != nil {
		log.Printf("router: welcome message to %s: %v", name, err)
	}
}

func (r *Router) cmdEnd(ctx context.Context, chatID string, args []string) {
	if len(args) < 1 {
		r.reply(ctx, chatID, "Usage: /end <name>")
		return
	}
	name := multiplexer.SanitizeName(args[0])
	if err := r.Mux.Kill(ctx, name); err != nil {
		r.reply(ctx, chatID, fmt.Sprintf("Could not end %q: %v", name, err))
		return
	}
	if err := r.Coord.PurgeInbox(name); err != nil {
		log.Printf("router: purge inbox for %s: %v", name, err)
	}
	if err := r.Coord.RemoveWorkerDir(name); err != nil {
		log.Printf("router: remove worker dir for %s: %v", name, err)
	}
	if err := r.Registry.ClearFocusIfMatches(name); err != nil {
		log.Printf("router: clear focus for %s: %v", name, err)
	}
	r.Typing.Stop(name)
	r.Registry.ForgetLock(name)
	r.updateCommandList(ctx)
	r.reply(ctx, chatID, fmt.Sprintf("%s removed from your team.", title(name)))
}

func (r *Router) cmdTeam(ctx context.Context, chatID string) {
	workers, err := r.Mux.List(ctx)
	if err != nil {
		r.reply(ctx, chatID, fmt.Sprintf("Failed to list workers: %v", err))
		return
	}
	if len(workers) == 0 {
		r.reply(ctx, chatID, "No team members yet. Add someone with /hire <name>.")
		return
	}

	focused := r.Registry.Focused(ctx)
	sorted := append([]string{}, workers...)
	sort.Strings(sorted)

	lines := []string{"Your team:"}
	for _, w := range sorted {
		var status []string
		if w == focused {
			status = append(status, "focused")
		}
		if r.Mux.IsAgentRunning(ctx, w) {
			status = append(status, "running")
		} else {
			status = append(status, "paused")
		}
		lines = append(lines, fmt.Sprintf("- %s (%s)", w, strings.Join(status, ", ")))
	}
	r.reply(ctx, chatID, strings.Join(lines, "\n"))
}

func (r *Router) cmdFocus(ctx context.Context, chatID string, args []string) {
	if len(args) < 1 {
		r.reply(ctx, chatID, "Usage: /focus <name>")
		return
	}
	name := multiplexer.SanitizeName(args[0])
	exists, err := r.Mux.Exists(ctx, name)
	if err != nil || !exists {
		r.reply(ctx, chatID, fmt.Sprintf("Worker %q not found.", name))
		return
	}
	if err := r.Registry.SetFocused(name); err != nil {
		log.Printf("router: set focus to %s: %v", name, err)
	}
	r.reply(ctx, chatID, fmt.Sprintf("Now talking to %s.", title(name)))
}

func (r *Router) cmdProgress(ctx context.Context, chatID string) {
	focused := r.Registry.Focused(ctx)
	if focused == "" {
		r.reply(ctx, chatID, r.noFocusTeamHint(ctx))
		return
	}
	cmd, err := r.Mux.ForegroundCommand(ctx, focused)
	age, pending := r.Coord.PendingAge(focused)

	lines := []string{fmt.Sprintf("Progress for %s", focused)}
	if err != nil {
		lines = append(lines, "Foreground: unknown")
	} else {
		lines = append(lines, fmt.Sprintf("Foreground: %s", cmd))
	}
	if pending {
		lines = append(lines, fmt.Sprintf("Pending: %s", age.Round(time.Second)))
	} else {
		lines = append(lines, "Pending: none")
	}
	r.reply(ctx, chatID, strings.Join(lines, "\n"))
}

func (r *Router) noFocusTeamHint(ctx context.Context) string {
	workers, _ := r.Mux.List(ctx)
	if len(workers) == 0 {
		return "No one assigned. Who should I talk to? Use /team or /focus <name>."
	}
	return fmt.Sprintf("No one assigned. Your team: %s\nWho should I talk to?", strings.Join(workers, ", "))
}

func boolYesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func (r *Router) cmdPause(ctx context.Context, chatID string) {
	focused := r.Registry.Focused(ctx)
	if focused == "" {
		r.reply(ctx, chatID, "No one assigned.")
		return
	}
	if err := r.Mux.Interrupt(ctx, focused); err != nil {
		log.Printf("router: pause %s: %v", focused, err)
	}
	r.reply(ctx, chatID, fmt.Sprintf("%s is paused. I'll pick up where we left off.", title(focused)))
}

func (r *Router) cmdRelaunch(ctx context.Context, chatID string) {
	focused := r.Registry.Focused(ctx)
	if focused == "" {
		r.reply(ctx, chatID, "No one assigned.")
		return
	}
	if err := r.Mux.Interrupt(ctx, focused); err != nil {
		log.Printf("router: interrupt %s before relaunch: %v", focused, err)
	}
	command := r.Agent.GetCommand()
	if r.Sandbox.Enabled {
		command = append(append([]string{}, r.Sandbox.Runner...), command...)
	}
	if err := r.Mux.LaunchAgent(ctx, focused, command); err != nil {
		r.reply(ctx, chatID, fmt.Sprintf("Could not relaunch %s: %v", focused, err))
		return
	}
	r.reply(ctx, chatID, fmt.Sprintf("Bringing %s back online...", title(focused)))
}

func (r *Router) cmdLearn(ctx context.Context, chatID, messageID string, args []string) {
	focused := r.Registry.Focused(ctx)
	if focused == "" {
		r.reply(ctx, chatID, "No one assigned. Who should I talk to?")
		return
	}
	const template = "What did you learn just now? Answer in Problem / Fix / Why format:\n" +
		"Problem: <what went wrong or was inefficient>\n" +
		"Fix: <the better approach>\n" +
		"Why: <root cause or insight>"

	prompt := template
	if len(args) > 0 {
		topic := strings.Join(args, " ")
		prompt = fmt.Sprintf("What did you learn about %s? Answer in Problem / Fix / Why format:\n"+
			"Problem: <what went wrong or was inefficient>\n"+
			"Fix: <the better approach>\n"+
			"Why: <root cause or insight>", topic)
	}
	r.deliverToWorker(ctx, chatID, messageID, focused, prompt)
}

func (r *Router) cmdSettings(ctx context.Context, chatID string) {
	workers, _ := r.Mux.List(ctx)
	team := "(none)"
	if len(workers) > 0 {
		team = strings.Join(workers, ", ")
	}
	focused := r.Registry.Focused(ctx)
	if focused == "" {
		focused = "(none)"
	}

	lines := []string{
		fmt.Sprintf("Admin set: %s", boolYesNo(r.Chat.AdminChatID() != "")),
		fmt.Sprintf("Prefix: %s", r.Node.Prefix),
		fmt.Sprintf("Port: %d", r.Server.Port),
		fmt.Sprintf("Focused worker: %s", focused),
		fmt.Sprintf("Workers: %s", team),
	}
	if r.Sandbox.Enabled {
		lines = append(lines, "Sandbox: enabled")
	} else {
		lines = append(lines, "Sandbox: disabled (direct execution)")
	}
	r.reply(ctx, chatID, strings.Join(lines, "\n"))
}

// updateCommandList re-registers the bot's command menu whenever the
// worker set changes (spec §6 "Command surface").
func (r *Router) updateCommandList(ctx context.Context) {
	commands := []chat.Command{
		{Name: "hire", Description: "Add a worker to your team"},
		{Name: "end", Description: "Remove a worker from your team"},
		{Name: "team", Description: "List your team"},
		{Name: "focus", Description: "Talk to a specific worker"},
		{Name: "progress", Description: "Check the focused worker's status"},
		{Name: "pause", Description: "Interrupt the focused worker"},
		{Name: "relaunch", Description: "Restart the focused worker's agent"},
		{Name: "learn", Description: "Ask the focused worker to share learnings"},
		{Name: "settings", Description: "Show bridge settings"},
	}
	workers, err := r.Mux.List(ctx)
	if err != nil {
		log.Printf("router: list workers for command menu: %v", err)
	} else {
		for _, w := range workers {
			commands = append(commands, chat.Command{Name: w, Description: fmt.Sprintf("Talk to %s", w)})
		}
	}
	if err := r.Chat.RegisterCommands(ctx, commands); err != nil {
		log.Printf("router: register commands: %v", err)
	}
}
