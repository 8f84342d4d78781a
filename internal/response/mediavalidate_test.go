// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package response

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, dir, name string, size int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0600))
	return path
}

func TestMediaPolicyRejectsRelativePath(t *testing.T) {
	p := MediaPolicy{MaxFileSizeBytes: 1 << 20}
	err := p.Validate(MediaTag{Kind: "image", Path: "relative.png"})
	assert.Error(t, err)
}

func TestMediaPolicyImageOutsideAllowlist(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "ok.png", 10)

	p := MediaPolicy{
		ImageAllowlist:   []string{"/some/other/root"},
		ImageExtensions:  []string{".png"},
		MaxFileSizeBytes: 1 << 20,
	}
	err := p.Validate(MediaTag{Kind: "image", Path: path})
	assert.Error(t, err)
}

func TestMediaPolicyImageAllowed(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "ok.png", 10)

	p := MediaPolicy{
		ImageAllowlist:   []string{dir},
		ImageExtensions:  []string{".png", ".jpg"},
		MaxFileSizeBytes: 1 << 20,
	}
	assert.NoError(t, p.Validate(MediaTag{Kind: "image", Path: path}))
}

func TestMediaPolicyImageExtensionDenied(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "ok.exe", 10)

	p := MediaPolicy{
		ImageAllowlist:   []string{dir},
		ImageExtensions:  []string{".png"},
		MaxFileSizeBytes: 1 << 20,
	}
	err := p.Validate(MediaTag{Kind: "image", Path: path})
	assert.Error(t, err)
}

func TestMediaPolicyDocumentDenylist(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, ".env", 10)

	p := MediaPolicy{
		DocumentDenylist: []string{".env*", "*.pem"},
		MaxFileSizeBytes: 1 << 20,
	}
	err := p.Validate(MediaTag{Kind: "file", Path: path})
	assert.Error(t, err)
}

func TestMediaPolicyDocumentAllowed(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "report.pdf", 10)

	p := MediaPolicy{
		DocumentDenylist: []string{".env*"},
		MaxFileSizeBytes: 1 << 20,
	}
	assert.NoError(t, p.Validate(MediaTag{Kind: "file", Path: path}))
}

func TestMediaPolicyTooLarge(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "big.pdf", 2048)

	p := MediaPolicy{MaxFileSizeBytes: 1024}
	err := p.Validate(MediaTag{Kind: "file", Path: path})
	assert.Error(t, err)
}
