// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package coordination

import (
	"context"
	"log"
	"time"

	"github.com/fsnotify/fsnotify"
)

// SettingsWatcher watches the node-root flat files for external edits
// (e.g. an operator hand-editing last_chat_id) and invokes onChange after a short debounce, so the bridge doesn't need
// a restart to pick them up. Grounded on internal/watcher/binary.go's
// debounce-and-reload loop, retargeted from watching rebuilt service
// binaries to watching these coordination files.
type SettingsWatcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onChange func()
}

// NewSettingsWatcher starts watching dir for writes. onChange fires at
// most once per debounce window.
func NewSettingsWatcher(dir string, debounce time.Duration, onChange func()) (*SettingsWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}
	return &SettingsWatcher{watcher: w, debounce: debounce, onChange: onChange}, nil
}

// Run blocks, dispatching debounced change notifications until ctx is
// cancelled.
func (s *SettingsWatcher) Run(ctx context.Context) {
	var timer *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			s.watcher.Close()
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(s.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(s.debounce)
			}
			pending = timer.C
		case <-pending:
			pending = nil
			s.onChange()
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("settings watcher error: %v", err)
		}
	}
}

// Close stops the underlying fsnotify watcher.
func (s *SettingsWatcher) Close() error {
	return s.watcher.Close()
}
