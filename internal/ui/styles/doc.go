// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for lumi.

Colors are Lip Gloss AdaptiveColor pairs. Which side of each pair is used is
decided by the session's theme flag, not by probing the terminal: every Theme
owns a renderer whose dark-background setting follows the flag, and
SetDark rebuilds all styles when the user toggles the theme.

# Color System (colors.go)

  - Purple - Primary accent, assistant messages and selections
  - Cyan - Brand color, commands and user highlights
  - Emerald - Success states
  - Amber - Warnings and the busy indicator
  - Rose - Errors

# Theme (theme.go)

	theme := styles.NewTheme(st.DarkMode())
	theme.SetSize(width, height)
	header := theme.Header.Render("lumi")

	// after /theme
	theme.SetDark(st.DarkMode())

# Animations (animations.go)

The frame set of the "Thinking..." indicator.
*/
package styles
