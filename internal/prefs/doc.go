// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prefs persists the small set of user preferences that survive a
// restart. Today that is exactly one key: the theme flag.
//
// Two implementations satisfy KV:
//
//   - SQLite: a pure-Go SQLite file (prefs.db) in the data directory
//   - Memory: a map, used in tests and when no data directory is usable
package prefs
