// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package generation drives one request/response cycle against the session
// store.
//
// Submit appends the user message and marks the store busy synchronously,
// then schedules the completion after a randomized delay. On completion
// the Responder supplies a reply, the assistant message is appended and the
// busy flag cleared. A responder error clears the busy flag without
// appending anything; rate-limit errors are retried with exponential
// backoff first.
//
// Completions run wherever the Scheduler runs them: on a timer goroutine
// (TimerScheduler), on the Bubble Tea event loop (the TUI scheduler) or on
// demand (ManualScheduler, for tests).
package generation
