// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package multiplexer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Alice", "alice"},
		{"bob_the-builder!", "bobthe-builder"},
		{"já-vü", "j-v"},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			assert.Equal(t, c.want, SanitizeName(c.in))
		})
	}
}

func TestManagerListFiltersByPrefix(t *testing.T) {
	exec := newMockExecutor()
	exec.sessions["worker-alice"] = true
	exec.sessions["worker-bob"] = true
	exec.sessions["unrelated"] = true

	m := NewManager(exec, "worker-", "claude")
	list, err := m.List(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob"}, list)
}

func TestManagerCreateAlreadyExists(t *testing.T) {
	exec := newMockExecutor()
	m := NewManager(exec, "worker-", "claude")

	require.NoError(t, m.Create(context.Background(), "alice", "/tmp", nil))
	err := m.Create(context.Background(), "alice", "/tmp", nil)
	require.Error(t, err)
	var exists *ErrSessionExists
	assert.ErrorAs(t, err, &exists)
}

func TestManagerExists(t *testing.T) {
	exec := newMockExecutor()
	m := NewManager(exec, "worker-", "claude")

	ok, err := m.Exists(context.Background(), "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Create(context.Background(), "alice", "/tmp", nil))
	ok, err = m.Exists(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSendLiteralThenEnter(t *testing.T) {
	exec := newMockExecutor()
	m := NewManager(exec, "worker-", "claude")
	require.NoError(t, m.Create(context.Background(), "alice", "/tmp", nil))

	require.NoError(t, m.SendLiteral(context.Background(), "alice", "hello"))
	require.NoError(t, m.SubmitEnter(context.Background(), "alice"))

	assert.Equal(t, []string{"hello"}, exec.sent["worker-alice"])
	assert.Equal(t, 1, exec.enters["worker-alice"])
}
