// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// =============================================================================
// THEME COMMAND
// =============================================================================

func (a *App) newThemeCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "theme [dark|light|toggle]",
		Short:     "Show or change the persisted theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"dark", "light", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.initLogger(false); err != nil {
				return err
			}
			st, err := a.openStore()
			if err != nil {
				return err
			}

			if len(args) == 1 {
				switch strings.ToLower(args[0]) {
				case "dark":
					err = st.SetTheme(true)
				case "light":
					err = st.SetTheme(false)
				case "toggle":
					err = st.ToggleTheme()
				default:
					return usageError("unknown theme %q (want dark, light or toggle)", args[0])
				}
				if err != nil {
					return err
				}
			}

			mode := "light"
			if st.DarkMode() {
				mode = "dark"
			}
			out := newPrinter(cmd.OutOrStdout())
			out.Field("Theme", mode)
			return nil
		},
	}
}
