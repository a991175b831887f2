// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/lumi-tui/internal/model"
	"github.com/jeranaias/lumi-tui/internal/util"
)

// =============================================================================
// MODELS COMMAND
// =============================================================================

func (a *App) newModelsCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the available models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			models := model.DefaultCatalog().Models
			if asJSON {
				return writeJSON(cmd, models)
			}

			out := newPrinter(cmd.OutOrStdout())
			out.Println(out.Title.Render("Models"))
			for _, m := range models {
				marker := "  "
				if m.ID == a.cfg.DefaultModel {
					marker = out.Marker.Render("* ")
				}
				line := marker + util.PadRight(m.ID, 16) + util.PadRight(m.Name, 18) +
					out.Muted.Render(util.PadRight(m.Provider, 10)+util.PadRight(m.ContextString(), 14)+m.PricingString())
				out.Println(strings.TrimRight(line, " "))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

// =============================================================================
// TEMPLATES COMMAND
// =============================================================================

func (a *App) newTemplatesCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List the prompt templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			templates := model.DefaultCatalog().Templates
			if asJSON {
				return writeJSON(cmd, templates)
			}

			byCategory := make(map[string][]model.PromptTemplate)
			for _, t := range templates {
				byCategory[t.Category] = append(byCategory[t.Category], t)
			}
			categories := make([]string, 0, len(byCategory))
			for c := range byCategory {
				categories = append(categories, c)
			}
			sort.Strings(categories)

			out := newPrinter(cmd.OutOrStdout())
			for i, c := range categories {
				if i > 0 {
					out.Println()
				}
				out.Println(out.Title.Render(c))
				for _, t := range byCategory[c] {
					line := "  " + util.PadRight(t.ID, 18) + t.Name
					if ph := t.Placeholders(); len(ph) > 0 {
						line += out.Muted.Render("  {" + strings.Join(ph, "} {") + "}")
					}
					out.Println(line)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
