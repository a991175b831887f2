// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"sort"
	"strings"

	"github.com/jeranaias/lumi-tui/internal/model"
	"github.com/jeranaias/lumi-tui/internal/store"
	"github.com/jeranaias/lumi-tui/internal/util"
)

// Completion is a single completion candidate.
type Completion struct {
	// Value is inserted into the input
	Value string

	// Display is shown in the completion list
	Display string

	// Description is a short hint next to Display
	Description string

	// Score ranks candidates; higher is better
	Score int
}

// =============================================================================
// COMPLETER
// =============================================================================

// Completer handles tab completion for commands and arguments.
type Completer struct {
	registry *Registry
	store    *store.Store
}

// NewCompleter creates a completer. Model and template arguments are
// completed from the store's catalog.
func NewCompleter(registry *Registry, st *store.Store) *Completer {
	return &Completer{registry: registry, store: st}
}

// Complete returns completions for the input up to the cursor position.
func (c *Completer) Complete(input string, cursorPos int) []Completion {
	if cursorPos >= 0 && cursorPos < len(input) {
		input = input[:cursorPos]
	}
	input = strings.TrimLeft(input, " \t")

	if !strings.HasPrefix(input, "/") {
		return nil
	}

	if partial := GetPartialCommand(input); partial != "" {
		return c.completeCommands(partial)
	}

	cmd := c.registry.Get(strings.ToLower(ExtractCommandName(input)))
	if cmd == nil {
		return nil
	}
	argIndex, partial := GetPartialArg(input)
	return c.completeArg(cmd, argIndex, partial)
}

// Lines returns full-line candidates for the input, suitable for line
// editors that replace the whole line.
func (c *Completer) Lines(input string) []string {
	completions := c.Complete(input, len(input))
	lines := make([]string, 0, len(completions))
	for _, comp := range completions {
		lines = append(lines, Apply(input, comp))
	}
	return lines
}

// Apply replaces the word being typed at the end of input with the
// completion's value, followed by a space.
func Apply(input string, comp Completion) string {
	idx := strings.LastIndexAny(input, " \t")
	return input[:idx+1] + comp.Value + " "
}

// =============================================================================
// COMMAND COMPLETION
// =============================================================================

func (c *Completer) completeCommands(partial string) []Completion {
	var completions []Completion
	partial = strings.ToLower(partial)

	for _, cmd := range c.registry.All() {
		if strings.HasPrefix(cmd.Name, partial) {
			completions = append(completions, Completion{
				Value:       cmd.Name,
				Display:     cmd.Name,
				Description: cmd.Description,
				Score:       calculateScore(cmd.Name, partial),
			})
		}
		for _, alias := range cmd.Aliases {
			if partial != "/" && strings.HasPrefix(alias, partial) {
				completions = append(completions, Completion{
					Value:       alias,
					Display:     alias + " -> " + cmd.Name,
					Description: cmd.Description,
					Score:       calculateScore(alias, partial) - 10,
				})
			}
		}
	}

	sortCompletions(completions)
	return completions
}

// =============================================================================
// ARGUMENT COMPLETION
// =============================================================================

func (c *Completer) completeArg(cmd *Command, argIndex int, partial string) []Completion {
	if argIndex < 0 || argIndex >= len(cmd.Args) {
		return nil
	}

	arg := cmd.Args[argIndex]
	switch arg.Type {
	case ArgTypeModel:
		return c.completeModels(partial)
	case ArgTypeTemplate:
		return c.completeTemplates(partial)
	case ArgTypeParam:
		return completeFromList(model.ParamNames, partial)
	case ArgTypeEnum:
		return completeFromList(arg.Values, partial)
	default:
		return nil
	}
}

func (c *Completer) completeModels(partial string) []Completion {
	if c.store == nil {
		return nil
	}
	var completions []Completion
	for _, m := range c.store.Models() {
		if hasPrefixFold(m.ID, partial) {
			completions = append(completions, Completion{
				Value:       m.ID,
				Display:     m.ID,
				Description: m.Name,
				Score:       calculateScore(m.ID, partial),
			})
		}
	}
	sortCompletions(completions)
	return completions
}

func (c *Completer) completeTemplates(partial string) []Completion {
	var completions []Completion
	if c.store != nil {
		for _, t := range c.store.Templates() {
			if hasPrefixFold(t.ID, partial) {
				completions = append(completions, Completion{
					Value:       t.ID,
					Display:     t.ID,
					Description: util.TruncateRunes(t.Description, 40),
					Score:       calculateScore(t.ID, partial),
				})
			}
		}
	}
	if hasPrefixFold("none", partial) {
		completions = append(completions, Completion{
			Value:       "none",
			Display:     "none",
			Description: "Clear the template",
			Score:       calculateScore("none", partial) - 10,
		})
	}
	sortCompletions(completions)
	return completions
}

func completeFromList(values []string, partial string) []Completion {
	var completions []Completion
	for _, value := range values {
		if hasPrefixFold(value, partial) {
			completions = append(completions, Completion{
				Value:   value,
				Display: value,
				Score:   calculateScore(value, partial),
			})
		}
	}
	sortCompletions(completions)
	return completions
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func hasPrefixFold(s, prefix string) bool {
	return strings.HasPrefix(strings.ToLower(s), strings.ToLower(prefix))
}

// calculateScore ranks a prefix match. Exact matches win, then shorter
// candidates.
func calculateScore(value, partial string) int {
	value = strings.ToLower(value)
	partial = strings.ToLower(partial)

	if value == partial {
		return 200
	}
	score := 100
	if strings.HasPrefix(value, partial) {
		score += 50 + 20 - len(value)
	}
	return score - len(value)/2
}

// sortCompletions sorts by score (descending), then alphabetically.
func sortCompletions(completions []Completion) {
	sort.SliceStable(completions, func(i, j int) bool {
		if completions[i].Score != completions[j].Score {
			return completions[i].Score > completions[j].Score
		}
		return completions[i].Value < completions[j].Value
	})
}

// =============================================================================
// COMPLETION NAVIGATION
// =============================================================================

// CompletionState holds the state for cycling through completions in the
// TUI input.
type CompletionState struct {
	// OriginalInput is the input the completions were computed for
	OriginalInput string

	Completions []Completion

	// Selected index (-1 for none)
	Selected int

	Visible bool
}

// NewCompletionState creates an empty completion state.
func NewCompletionState() *CompletionState {
	return &CompletionState{Selected: -1}
}

// Update replaces the completions and selects the first.
func (cs *CompletionState) Update(input string, completions []Completion) {
	cs.OriginalInput = input
	cs.Completions = completions
	cs.Selected = 0
	cs.Visible = len(completions) > 0
}

// Next moves to the next completion.
func (cs *CompletionState) Next() {
	if len(cs.Completions) == 0 {
		return
	}
	cs.Selected = (cs.Selected + 1) % len(cs.Completions)
}

// Prev moves to the previous completion.
func (cs *CompletionState) Prev() {
	if len(cs.Completions) == 0 {
		return
	}
	cs.Selected--
	if cs.Selected < 0 {
		cs.Selected = len(cs.Completions) - 1
	}
}

// Accept returns the input with the selected completion applied, or the
// original input if there is nothing to apply.
func (cs *CompletionState) Accept() string {
	sel := cs.GetSelected()
	if sel == nil {
		if len(cs.Completions) == 0 {
			return cs.OriginalInput
		}
		sel = &cs.Completions[0]
	}
	return Apply(cs.OriginalInput, *sel)
}

// Clear clears the completion state.
func (cs *CompletionState) Clear() {
	cs.OriginalInput = ""
	cs.Completions = nil
	cs.Selected = -1
	cs.Visible = false
}

// GetSelected returns the currently selected completion, or nil.
func (cs *CompletionState) GetSelected() *Completion {
	if cs.Selected < 0 || cs.Selected >= len(cs.Completions) {
		return nil
	}
	return &cs.Completions[cs.Selected]
}
