// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package coordination

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	root := t.TempDir()
	s, err := NewStore(filepath.Join(root, "sessions"), filepath.Join(root, "node"))
	require.NoError(t, err)
	return s
}

func TestPendingLifecycle(t *testing.T) {
	s := newTestStore(t)
	assert.False(t, s.IsPending("alice"))

	require.NoError(t, s.SetPending("alice"))
	assert.True(t, s.IsPending("alice"))

	require.NoError(t, s.ClearPending("alice"))
	assert.False(t, s.IsPending("alice"))
}

func TestStalePendingDoesNotBlock(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.ensureWorkerDir("carol"))
	old := time.Now().Add(-700 * time.Second).Unix()
	require.NoError(t, atomicWrite(s.pendingPath("carol"), []byte(strconv.FormatInt(old, 10))))
	assert.False(t, s.IsPending("carol"))
}

func TestChatIDRoundTrip(t *testing.T) {
	s := newTestStore(t)
	assert.Equal(t, "", s.GetChatID("bob"))

	require.NoError(t, s.SetChatID("bob", "12345"))
	assert.Equal(t, "12345", s.GetChatID("bob"))

	info, err := os.Stat(s.chatIDPath("bob"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestInboxLifecycle(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.EnsureInbox("dave"))

	info, err := os.Stat(s.InboxDir("dave"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())

	f := filepath.Join(s.InboxDir("dave"), "photo.jpg")
	require.NoError(t, os.WriteFile(f, []byte("data"), 0600))

	require.NoError(t, s.PurgeInbox("dave"))
	entries, err := os.ReadDir(s.InboxDir("dave"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRemoveWorkerDir(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SetChatID("erin", "999"))
	require.NoError(t, s.RemoveWorkerDir("erin"))
	_, err := os.Stat(s.workerDir("erin"))
	assert.True(t, os.IsNotExist(err))
}

func TestAdminAndFocusedPersistence(t *testing.T) {
	s := newTestStore(t)
	assert.Equal(t, "", s.GetAdminChatID())
	require.NoError(t, s.SetAdminChatID("42"))
	assert.Equal(t, "42", s.GetAdminChatID())

	assert.Equal(t, "", s.GetFocused())
	require.NoError(t, s.SetFocused("alice"))
	assert.Equal(t, "alice", s.GetFocused())
}
