// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hjson/hjson-go/v4"
)

// Loader handles configuration file loading.
type Loader struct{}

// NewLoader creates a new config loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads and parses the configuration from the given path.
func (l *Loader) Load(ctx context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var raw map[string]interface{}
	if err := hjson.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse hjson: %w", err)
	}

	jsonData, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("convert to json: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(jsonData, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// LoadWithDefaults loads config with default values applied.
func (l *Loader) LoadWithDefaults(ctx context.Context, path string) (*Config, error) {
	cfg, err := l.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	return cfg, nil
}

// FindConfig searches for a config file in the current directory. It looks
// for bridge.hjson first, then bridge.json.
func (l *Loader) FindConfig() (string, error) {
	candidates := []string{
		"bridge.hjson",
		"bridge.json",
	}

	for _, name := range candidates {
		path := filepath.Join(".", name)
		if _, err := os.Stat(path); err == nil {
			abs, err := filepath.Abs(path)
			if err != nil {
				return path, nil
			}
			return abs, nil
		}
	}

	return "", fmt.Errorf("config file not found (looked for bridge.hjson, bridge.json)")
}

// defaultReservedNames are the names routing treats as command/target
// keywords rather than worker names, the way the reference bridge
// implementation reserves them.
var defaultReservedNames = []string{
	"hire", "end", "team", "focus", "progress", "pause", "relaunch", "learn", "settings",
	"new", "kill", "list", "use", "stop", "restart", "system",
	"all", "start", "help",
}

// defaultAliases maps alternate command spellings to their canonical
// built-in, adopted from the reference implementation (spec §9 Open
// Question 1).
var defaultAliases = map[string]string{
	"new":     "hire",
	"kill":    "end",
	"list":    "team",
	"use":     "focus",
	"stop":    "pause",
	"restart": "relaunch",
	"system":  "settings",
}

// defaultBlockedPrefix is the interactive-agent command denylist, adopted
// from the reference implementation.
var defaultBlockedPrefix = []string{
	"mcp", "help", "config", "model", "compact", "cost", "doctor", "init",
	"login", "logout", "memory", "permissions", "pr", "review", "terminal",
	"vim", "approved-tools", "listen", "ide",
}

// applyDefaults sets default values for missing config fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Node.Prefix == "" {
		cfg.Node.Prefix = "worker-"
	}
	if cfg.Node.SessionsDir == "" {
		cfg.Node.SessionsDir = "/tmp/bridge/sessions"
	}
	if cfg.Node.NodeRoot == "" {
		cfg.Node.NodeRoot = "/tmp/bridge/node"
	}
	if cfg.Agent.BinaryName == "" {
		cfg.Agent.BinaryName = "claude"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if len(cfg.Media.ImageExtensions) == 0 {
		cfg.Media.ImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp"}
	}
	if cfg.Media.MaxFileSizeBytes == 0 {
		cfg.Media.MaxFileSizeBytes = 20 * 1024 * 1024
	}
	if len(cfg.Media.ImageAllowlist) == 0 {
		cfg.Media.ImageAllowlist = []string{cfg.Node.SessionsDir, os.TempDir()}
	}
	if len(cfg.Media.DocumentDenylist) == 0 {
		cfg.Media.DocumentDenylist = []string{".env*", "id_rsa*", "id_ed25519*", "*.pem", "*.key", ".npmrc"}
	}
	if len(cfg.Commands.ReservedNames) == 0 {
		cfg.Commands.ReservedNames = defaultReservedNames
	}
	if len(cfg.Commands.Aliases) == 0 {
		cfg.Commands.Aliases = defaultAliases
	}
	if len(cfg.Commands.BlockedPrefix) == 0 {
		cfg.Commands.BlockedPrefix = defaultBlockedPrefix
	}
}
