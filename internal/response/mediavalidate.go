// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package response

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MediaPolicy enforces the media security constraints of spec §6.
type MediaPolicy struct {
	ImageAllowlist   []string
	DocumentDenylist []string
	ImageExtensions  []string
	MaxFileSizeBytes int64
}

// Validate checks a parsed MediaTag against the policy. It does not read
// the file beyond stat-ing its size.
func (p MediaPolicy) Validate(tag MediaTag) error {
	if !filepath.IsAbs(tag.Path) {
		return fmt.Errorf("path must be absolute: %s", tag.Path)
	}

	if tag.Kind == "image" {
		if !p.underAllowlist(tag.Path) {
			return fmt.Errorf("image path not in allowlist: %s", tag.Path)
		}
		ext := strings.ToLower(filepath.Ext(tag.Path))
		if !p.allowedImageExt(ext) {
			return fmt.Errorf("image extension not allowed: %s", ext)
		}
	} else {
		base := filepath.Base(tag.Path)
		for _, pattern := range p.DocumentDenylist {
			if ok, _ := filepath.Match(pattern, base); ok {
				return fmt.Errorf("document name denied: %s", base)
			}
		}
	}

	info, err := os.Stat(tag.Path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", tag.Path, err)
	}
	if info.Size() > p.MaxFileSizeBytes {
		return fmt.Errorf("file too large: %d bytes", info.Size())
	}
	return nil
}

func (p MediaPolicy) underAllowlist(path string) bool {
	for _, root := range p.ImageAllowlist {
		if root == "" {
			continue
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			continue
		}
		if !strings.HasPrefix(rel, "..") {
			return true
		}
	}
	return false
}

func (p MediaPolicy) allowedImageExt(ext string) bool {
	for _, e := range p.ImageExtensions {
		if e == ext {
			return true
		}
	}
	return false
}
