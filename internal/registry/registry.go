// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package registry is the derived worker view (spec component 4.F): it
// never caches the worker set, always re-querying the multiplexer, and
// owns the focused-worker pointer plus the lazily-created per-worker
// lock map that §5's concurrency discipline depends on.
package registry

import (
	"context"
	"sync"
)

// Multiplexer is the subset of *multiplexer.Manager the registry needs.
type Multiplexer interface {
	List(ctx context.Context) ([]string, error)
	Exists(ctx context.Context, worker string) (bool, error)
}

// FocusPersister mirrors *coordination.Store's focused-worker methods.
type FocusPersister interface {
	GetFocused() string
	SetFocused(worker string) error
}

// Registry wraps a Multiplexer with the focused-worker pointer and the
// process-wide lock map.
type Registry struct {
	mux     Multiplexer
	persist FocusPersister

	mu      sync.RWMutex
	focused string

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// New constructs a Registry, restoring the focused worker persisted from
// a prior run.
func New(mux Multiplexer, persist FocusPersister) *Registry {
	return &Registry{
		mux:     mux,
		persist: persist,
		focused: persist.GetFocused(),
		locks:   make(map[string]*sync.Mutex),
	}
}

// List returns the live worker set.
func (r *Registry) List(ctx context.Context) ([]string, error) {
	return r.mux.List(ctx)
}

// Exists queries the multiplexer directly — never a local cache.
func (r *Registry) Exists(ctx context.Context, worker string) (bool, error) {
	return r.mux.Exists(ctx, worker)
}

// Focused returns the current focused worker, re-validated against the
// live worker set so a worker that was ended doesn't linger as focused.
func (r *Registry) Focused(ctx context.Context) string {
	r.mu.RLock()
	w := r.focused
	r.mu.RUnlock()
	if w == "" {
		return ""
	}
	ok, err := r.mux.Exists(ctx, w)
	if err != nil || !ok {
		return ""
	}
	return w
}

// SetFocused updates and persists the focused worker. Focusing the
// already-focused worker is a no-op write (spec §8 "focus X; focus X").
func (r *Registry) SetFocused(worker string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.focused == worker {
		return nil
	}
	r.focused = worker
	return r.persist.SetFocused(worker)
}

// ClearFocusIfMatches clears focus only if it currently points at worker,
// used by end-command so ending a non-focused worker leaves focus intact.
func (r *Registry) ClearFocusIfMatches(worker string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.focused != worker {
		return nil
	}
	r.focused = ""
	return r.persist.SetFocused("")
}

// Lock returns the lazily-created, process-wide mutex for worker (spec
// §4.I per_worker_mutex).
func (r *Registry) Lock(worker string) *sync.Mutex {
	r.locksMu.Lock()
	defer r.locksMu.Unlock()
	m, ok := r.locks[worker]
	if !ok {
		m = &sync.Mutex{}
		r.locks[worker] = m
	}
	return m
}

// ForgetLock drops the lock entry for a worker that has ended.
func (r *Registry) ForgetLock(worker string) {
	r.locksMu.Lock()
	defer r.locksMu.Unlock()
	delete(r.locks, worker)
}
