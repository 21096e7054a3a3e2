// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package txn stages rewritten files and commits them with per-file rename.
//
// A Manager moves from Open to either Committed or Abandoned and never back.
// Commit is atomic per file, not per batch: when a rename fails the files
// renamed before it keep their new content and the rest are discarded.
package txn

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"go.uber.org/multierr"
)

var ErrNotOpen = errors.Base("transaction is not open")

// State of a Manager
type State int

const (
	StateOpen State = iota
	StateCommitted
	StateAbandoned
)

// String returns a string representation of State
func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateCommitted:
		return "committed"
	case StateAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// 🔒 Manager owns staged entries until they are committed or rolled back.
type Manager struct {
	mu      sync.Mutex
	state   State
	entries []*Entry
}

// 🏭 NewManager creates an open transaction
func NewManager() *Manager {
	return &Manager{state: StateOpen}
}

// State returns the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Len returns the number of staged entries.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Stage takes ownership of e. It performs no I/O.
func (m *Manager) Stage(e *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateOpen {
		return errors.Errorf("%w: cannot stage %s while %s", ErrNotOpen, e.Path(), m.state)
	}
	m.entries = append(m.entries, e)
	return nil
}

// Commit verifies every entry, then renames them onto their targets in
// staged order. The first failure is returned: earlier entries stay
// committed and later ones are discarded. Either way the manager is closed.
func (m *Manager) Commit(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateOpen {
		return errors.Errorf("%w: cannot commit while %s", ErrNotOpen, m.state)
	}

	logger := zerolog.Ctx(ctx)

	if err := ctx.Err(); err != nil {
		m.abandon()
		return errors.Errorf("committing: %w", err)
	}

	for _, e := range m.entries {
		if err := e.verify(); err != nil {
			m.abandon()
			return errors.Errorf("verifying staged entries: %w", err)
		}
	}

	for i, e := range m.entries {
		if err := e.commit(); err != nil {
			logger.Error().Err(err).Str("path", e.Path()).Int("committed", i).Msg("commit stopped")
			m.entries = m.entries[i:]
			m.abandon()
			return err
		}
		logger.Debug().Str("path", e.Path()).Str("target", e.Target()).Msg("committed")
	}

	m.entries = nil
	m.state = StateCommitted
	return nil
}

// Rollback discards every staged entry. It is a no-op once the manager is
// committed or abandoned.
func (m *Manager) Rollback() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateOpen {
		return nil
	}
	return m.abandon()
}

func (m *Manager) abandon() error {
	var err error
	for _, e := range m.entries {
		err = multierr.Append(err, e.Discard())
	}
	m.entries = nil
	m.state = StateAbandoned
	return err
}
