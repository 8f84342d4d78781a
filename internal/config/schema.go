// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package config handles HJSON configuration loading for the bridge.
package config

import (
	"strings"
	"time"
)

// Config is the root configuration for the bridge.
type Config struct {
	Node      NodeConfig      `json:"node"`
	Server    ServerConfig    `json:"server"`
	Chat      ChatConfig      `json:"chat"`
	Agent     AgentConfig     `json:"agent"`
	Sandbox   SandboxConfig   `json:"sandbox"`
	Media     MediaConfig     `json:"media"`
	Commands  CommandsConfig  `json:"commands"`
	Logging   LoggingConfig   `json:"logging"`
}

// NodeConfig identifies this bridge instance and its session namespace.
type NodeConfig struct {
	Prefix      string `json:"prefix"`       // tmux session name prefix, isolates this node
	SessionsDir string `json:"sessions_dir"` // per-worker coordination root (<sessions-root> in spec)
	NodeRoot    string `json:"node_root"`    // last_chat_id / last_active / port live here
	AdminChatID string `json:"admin_chat_id,omitempty"`
}

// ServerConfig configures the boundary HTTP server.
type ServerConfig struct {
	Host          string `json:"host"`
	Port          int    `json:"port"`
	WebhookSecret string `json:"webhook_secret,omitempty"`
	TLSCert       string `json:"tls_cert,omitempty"`
	TLSKey        string `json:"tls_key,omitempty"`
	TailscaleCert bool   `json:"tailscale_cert,omitempty"` // fetch cert via tscert instead of tls_cert/tls_key
}

// ChatConfig configures the chat transport.
type ChatConfig struct {
	BotToken string `json:"bot_token"`
	APIBase  string `json:"api_base,omitempty"` // override for testing
}

// AgentConfig configures how the worker process is launched inside a
// freshly created session.
type AgentConfig struct {
	Command       interface{} `json:"command"` // string or []string, the agent binary invocation
	WorkDir       string      `json:"work_dir,omitempty"`
	AutoAccept    bool        `json:"auto_accept"` // auto-accept the agent's initial trust prompt on direct launch
	BinaryName    string      `json:"binary_name"` // process name matched by foreground_cmd for IsAgentRunning
}

// GetCommand returns the agent launch command as a slice, splitting a bare
// string on whitespace the way ServiceConfig.GetCommand does in the teacher.
func (a *AgentConfig) GetCommand() []string {
	switch cmd := a.Command.(type) {
	case string:
		return splitCommand(cmd)
	case []interface{}:
		result := make([]string, 0, len(cmd))
		for _, v := range cmd {
			if str, ok := v.(string); ok {
				result = append(result, str)
			}
		}
		return result
	case []string:
		return cmd
	default:
		return nil
	}
}

// SandboxConfig configures the optional container sandbox runner used to
// launch the agent instead of running it directly. The runner itself is an
// external collaborator (out of scope); this only records how to invoke it.
type SandboxConfig struct {
	Enabled bool     `json:"enabled"`
	Runner  []string `json:"runner,omitempty"` // prefix prepended to the agent command
}

// MediaConfig configures out-band media tag validation (spec §6).
type MediaConfig struct {
	ImageAllowlist    []string `json:"image_allowlist"`    // path prefixes images must live under
	DocumentDenylist  []string `json:"document_denylist"`  // filename globs documents must not match
	ImageExtensions   []string `json:"image_extensions"`
	MaxFileSizeBytes  int64    `json:"max_file_size_bytes"`
}

// CommandsConfig configures the reserved-name table and the interactive
// agent commands that are denied pass-through (spec §9 Open Question 1:
// treated as configuration, not invariant).
type CommandsConfig struct {
	ReservedNames  []string `json:"reserved_names,omitempty"`
	Aliases        map[string]string `json:"aliases,omitempty"` // alias -> canonical built-in
	BlockedPrefix  []string `json:"blocked_prefix,omitempty"`   // denied interactive-agent slash commands
}

// LoggingConfig configures the ambient log.Logger usage.
type LoggingConfig struct {
	Level string `json:"level"` // "debug", "info", "warn", "error" — advisory only, plain log package has no levels
}

// ParseDuration parses a duration string, returning a default if empty or
// invalid.
func ParseDuration(s string, defaultVal time.Duration) time.Duration {
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// splitCommand splits a command string on whitespace, respecting quoted
// strings. Supports both single and double quotes.
func splitCommand(cmd string) []string {
	var result []string
	var current strings.Builder
	var inQuote rune
	var escape bool

	for _, r := range cmd {
		if escape {
			current.WriteRune(r)
			escape = false
			continue
		}
		if r == '\\' && inQuote != '\'' {
			escape = true
			continue
		}
		if inQuote != 0 {
			if r == inQuote {
				inQuote = 0
			} else {
				current.WriteRune(r)
			}
			continue
		}
		if r == '"' || r == '\'' {
			inQuote = r
			continue
		}
		if r == ' ' || r == '\t' {
			if current.Len() > 0 {
				result = append(result, current.String())
				current.Reset()
			}
			continue
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		result = append(result, current.String())
	}
	return result
}
