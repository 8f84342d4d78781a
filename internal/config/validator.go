// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"regexp"
	"strings"
)

// Validator validates configuration against schema rules.
type Validator struct{}

// NewValidator creates a new config validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidationError contains multiple validation failures.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single field validation error.
type FieldError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	var msgs []string
	for _, fe := range e.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return strings.Join(msgs, "; ")
}

// IsEmpty returns true if there are no validation errors.
func (e *ValidationError) IsEmpty() bool {
	return len(e.Errors) == 0
}

// Add adds a field error.
func (e *ValidationError) Add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

var workerNamePattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// Validate checks configuration validity.
func (v *Validator) Validate(cfg *Config) error {
	errs := &ValidationError{}

	v.validateNode(cfg, errs)
	v.validateServer(cfg, errs)
	v.validateAgent(cfg, errs)
	v.validateMedia(cfg, errs)
	v.validateCommands(cfg, errs)
	v.validateLogging(cfg, errs)

	if errs.IsEmpty() {
		return nil
	}
	return errs
}

func (v *Validator) validateNode(cfg *Config, errs *ValidationError) {
	if cfg.Node.Prefix == "" {
		errs.Add("node.prefix", "is required")
	} else if !workerNamePattern.MatchString(cfg.Node.Prefix) {
		errs.Add("node.prefix", "must match [a-z0-9-]+")
	}
	if cfg.Node.SessionsDir == "" {
		errs.Add("node.sessions_dir", "is required")
	}
	if cfg.Node.NodeRoot == "" {
		errs.Add("node.node_root", "is required")
	}
}

func (v *Validator) validateServer(cfg *Config, errs *ValidationError) {
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		errs.Add("server.port", "must be between 0 and 65535")
	}
	hasCertKey := cfg.Server.TLSCert != "" || cfg.Server.TLSKey != ""
	if cfg.Server.TailscaleCert && hasCertKey {
		errs.Add("server", "tailscale_cert and tls_cert/tls_key are mutually exclusive")
	}
	if !cfg.Server.TailscaleCert && (cfg.Server.TLSCert == "") != (cfg.Server.TLSKey == "") {
		errs.Add("server", "both tls_cert and tls_key must be specified together")
	}
}

func (v *Validator) validateAgent(cfg *Config, errs *ValidationError) {
	if len(cfg.Agent.GetCommand()) == 0 {
		errs.Add("agent.command", "is required")
	}
	if cfg.Agent.BinaryName == "" {
		errs.Add("agent.binary_name", "is required")
	}
}

func (v *Validator) validateMedia(cfg *Config, errs *ValidationError) {
	if cfg.Media.MaxFileSizeBytes <= 0 {
		errs.Add("media.max_file_size_bytes", "must be positive")
	}
	for i, ext := range cfg.Media.ImageExtensions {
		if !strings.HasPrefix(ext, ".") {
			errs.Add(fmt.Sprintf("media.image_extensions[%d]", i), "must start with '.'")
		}
	}
}

func (v *Validator) validateCommands(cfg *Config, errs *ValidationError) {
	reserved := make(map[string]bool, len(cfg.Commands.ReservedNames))
	for _, n := range cfg.Commands.ReservedNames {
		reserved[n] = true
	}
	for alias, canonical := range cfg.Commands.Aliases {
		if !reserved[alias] {
			errs.Add("commands.aliases", fmt.Sprintf("alias %q is not in reserved_names", alias))
		}
		if canonical == "" {
			errs.Add("commands.aliases", fmt.Sprintf("alias %q has empty target", alias))
		}
	}
}

func (v *Validator) validateLogging(cfg *Config, errs *ValidationError) {
	if cfg.Logging.Level == "" {
		return
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs.Add("logging.level", fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", cfg.Logging.Level))
	}
}
