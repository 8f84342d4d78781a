// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMux struct {
	workers map[string]bool
}

func (f *fakeMux) List(ctx context.Context) ([]string, error) {
	var out []string
	for w, ok := range f.workers {
		if ok {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeMux) Exists(ctx context.Context, worker string) (bool, error) {
	return f.workers[worker], nil
}

type fakePersist struct {
	focused string
}

func (f *fakePersist) GetFocused() string { return f.focused }
func (f *fakePersist) SetFocused(w string) error {
	f.focused = w
	return nil
}

func TestFocusedRevalidatesAgainstLiveSet(t *testing.T) {
	mux := &fakeMux{workers: map[string]bool{"alice": true}}
	persist := &fakePersist{focused: "bob"} // bob no longer exists
	r := New(mux, persist)

	assert.Equal(t, "", r.Focused(context.Background()))
}

func TestSetFocusedIdempotent(t *testing.T) {
	mux := &fakeMux{workers: map[string]bool{"alice": true}}
	persist := &fakePersist{}
	r := New(mux, persist)

	require.NoError(t, r.SetFocused("alice"))
	assert.Equal(t, "alice", persist.focused)

	// Second identical focus call must not re-write (spec §8 idempotence law).
	persist.focused = "tampered"
	require.NoError(t, r.SetFocused("alice"))
	assert.Equal(t, "tampered", persist.focused) // unchanged: no-op skipped the persist call
}

func TestClearFocusIfMatches(t *testing.T) {
	mux := &fakeMux{workers: map[string]bool{"alice": true}}
	persist := &fakePersist{focused: "alice"}
	r := New(mux, persist)

	require.NoError(t, r.ClearFocusIfMatches("bob"))
	assert.Equal(t, "alice", r.focused)

	require.NoError(t, r.ClearFocusIfMatches("alice"))
	assert.Equal(t, "", r.focused)
}

func TestLockIsLazyAndStable(t *testing.T) {
	r := New(&fakeMux{workers: map[string]bool{}}, &fakePersist{})
	l1 := r.Lock("alice")
	l2 := r.Lock("alice")
	assert.Same(t, l1, l2)

	r.ForgetLock("alice")
	l3 := r.Lock("alice")
	assert.NotSame(t, l1, l3)
}
