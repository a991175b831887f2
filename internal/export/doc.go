// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes transcripts and single messages to disk.
//
// # Formats
//
//   - Single message: JSON {message, role, timestamp, model} in
//     ai-message-<id>.json
//   - Transcript: JSON or Markdown
//
// All files are written atomically.
//
// # Usage
//
//	path, err := export.Message(msg, dir)
//
//	t := export.FromSnapshot(st.Snapshot())
//	path, err = export.ToFile(t, export.NewMarkdownExporter(nil), opts)
package export
