// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// =============================================================================
// EVENT LOOP SCHEDULER
// =============================================================================

// Scheduler is a generation.Scheduler for the Bubble Tea runtime. AfterFunc
// only queues the callback; Cmd converts the queue into tea.Tick commands
// whose messages run the callbacks inside Update.
type Scheduler struct {
	mu      sync.Mutex
	pending []pendingFunc
}

type pendingFunc struct {
	delay time.Duration
	fn    func()
}

// scheduledMsg carries a due callback back into Update.
type scheduledMsg struct {
	fn func()
}

// NewScheduler returns an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// AfterFunc implements generation.Scheduler.
func (s *Scheduler) AfterFunc(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, pendingFunc{delay: d, fn: fn})
}

// Pending returns the number of queued callbacks.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Cmd drains the queue into tick commands. It returns nil when nothing is
// queued.
func (s *Scheduler) Cmd() tea.Cmd {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, len(pending))
	for i, p := range pending {
		cmds[i] = tea.Tick(p.delay, func(time.Time) tea.Msg {
			return scheduledMsg{fn: p.fn}
		})
	}
	return tea.Batch(cmds...)
}
