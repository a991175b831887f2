// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package generation

import (
	"sync"
	"time"
)

// =============================================================================
// SCHEDULER
// =============================================================================

// Scheduler runs fn once after d has elapsed.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func())
}

// TimerScheduler runs callbacks on runtime timer goroutines.
type TimerScheduler struct{}

// AfterFunc implements Scheduler.
func (TimerScheduler) AfterFunc(d time.Duration, fn func()) {
	time.AfterFunc(d, fn)
}

// SchedulerFunc adapts a function to the Scheduler interface.
type SchedulerFunc func(d time.Duration, fn func())

// AfterFunc implements Scheduler.
func (f SchedulerFunc) AfterFunc(d time.Duration, fn func()) {
	f(d, fn)
}

// =============================================================================
// MANUAL SCHEDULER
// =============================================================================

// ManualScheduler queues callbacks until they are run explicitly. Callbacks
// run in scheduling order.
type ManualScheduler struct {
	mu      sync.Mutex
	pending []scheduled
	delays  []time.Duration
}

type scheduled struct {
	delay time.Duration
	fn    func()
}

// NewManualScheduler returns an empty manual scheduler.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc implements Scheduler.
func (m *ManualScheduler) AfterFunc(d time.Duration, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, scheduled{delay: d, fn: fn})
	m.delays = append(m.delays, d)
}

// Pending returns the number of queued callbacks.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Delays returns every delay ever scheduled, in order.
func (m *ManualScheduler) Delays() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Duration, len(m.delays))
	copy(out, m.delays)
	return out
}

// RunNext runs the oldest queued callback. It reports false if none was
// queued.
func (m *ManualScheduler) RunNext() bool {
	m.mu.Lock()
	if len(m.pending) == 0 {
		m.mu.Unlock()
		return false
	}
	next := m.pending[0]
	m.pending = m.pending[1:]
	m.mu.Unlock()

	next.fn()
	return true
}

// RunAll runs queued callbacks, including ones scheduled while running,
// until the queue is empty.
func (m *ManualScheduler) RunAll() {
	for m.RunNext() {
	}
}
