// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store holds all state of a chat session: the model and template
// catalogs and their selections, the transcript, generation parameters,
// the draft prompt, the busy flag and the theme flag.
//
// A Store is constructed once at start-up and passed explicitly to every
// consumer. Every operation is atomic with respect to every other, so the
// generation pipeline may complete on any goroutine.
//
// # Usage
//
//	st, err := store.New(store.Options{Prefs: kv, Logger: logger})
//	st.SelectModel("claude-3-opus")
//	st.SetDraft("Explain recursion")
//	msg, err := st.BeginGeneration()
//
// Unknown model or template IDs are ignored: the selection is left
// unchanged and the call reports false.
package store
