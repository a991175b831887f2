// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system shared by the TUI and
// the line-mode REPL.
//
// Handlers operate on the session store and return a Result describing what
// to show and whether the view must quit or refresh. They never touch the
// terminal themselves.
//
// # Built-in Commands
//
//   - /help, /quit
//   - /models, /model <id>, /templates, /template <id|none>
//   - /params, /set <param> <value>, /reset
//   - /clear, /theme [dark|light]
//   - /export [dir], /save [dir] [json|md], /copy
//
// # Usage
//
//	reg := commands.NewRegistry()
//	res := reg.Execute(&commands.Context{Store: st}, "/model gemini-pro")
//	if res.Err != nil { ... }
package commands
