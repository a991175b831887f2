// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the lumi terminal UI as a Bubble Tea model.
//
// The model has two screens. The landing screen lists the model catalog;
// the session screen shows the transcript, a multi-line prompt and the
// status bar. All state lives in the session store. The model mirrors the
// prompt into the store's draft on every edit and re-renders from the
// store after each event.
//
// Generations are submitted through a generation.Pipeline whose scheduler
// is a *Scheduler. The scheduler turns each delayed callback into a
// tea.Tick, so completions run on the Bubble Tea event loop.
//
// Key bindings:
//
//	Enter       send prompt or run a /command
//	Alt+Enter   newline (also Ctrl+J)
//	Tab         complete a /command
//	PgUp/PgDn   scroll the transcript
//	Ctrl+T      toggle dark/light theme
//	Esc         back to the landing screen
//	F1          key help
//	Ctrl+C      quit
package chat
