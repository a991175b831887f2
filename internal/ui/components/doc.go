// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the reusable views of the lumi TUI.

Components render through a *styles.Theme so a theme switch restyles
every view at once:

	theme := styles.NewTheme(true)
	bar := components.NewStatusBar(theme)
	bar.SetWidth(80)
	view := bar.View()

Welcome (welcome.go) is the landing screen with the model picker.
StatusBar (statusbar.go) shows model, parameters and busy state.
CompletionPopup (completion.go) draws a commands.CompletionState.
*/
package components
