// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jeranaias/lumi-tui/internal/export"
	"github.com/jeranaias/lumi-tui/internal/model"
	"github.com/jeranaias/lumi-tui/internal/util"
)

// ErrNoReply is returned by commands that act on the last assistant reply
// when there is none yet.
var ErrNoReply = errors.New("no assistant reply yet")

// categoryOrder is the order categories appear in /help.
var categoryOrder = []string{
	CategorySession,
	CategoryModel,
	CategoryTemplate,
	CategoryParams,
	CategoryOutput,
}

// =============================================================================
// SESSION HANDLERS
// =============================================================================

// HandleHelp lists all commands, or describes one.
func HandleHelp(ctx *Context, args []string) Result {
	if ctx.Registry == nil {
		return failure("help is unavailable")
	}

	if len(args) > 0 {
		name := args[0]
		if !strings.HasPrefix(name, "/") {
			name = "/" + name
		}
		cmd := ctx.Registry.Get(strings.ToLower(name))
		if cmd == nil {
			return Result{Err: fmt.Errorf("%w: %s", ErrUnknownCommand, name)}
		}
		return Result{Output: describeCommand(cmd)}
	}

	var b strings.Builder
	groups := ctx.Registry.ByCategory()
	for _, category := range categoryOrder {
		cmds := groups[category]
		if len(cmds) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s\n", category)
		for _, cmd := range cmds {
			usage := cmd.Usage
			if usage == "" {
				usage = cmd.Name
			}
			fmt.Fprintf(&b, "  %s %s\n", util.PadRight(usage, 24), cmd.Description)
		}
		b.WriteString("\n")
	}
	b.WriteString("Anything not starting with / is sent as a prompt.")
	return Result{Output: b.String()}
}

func describeCommand(cmd *Command) string {
	var b strings.Builder
	usage := cmd.Usage
	if usage == "" {
		usage = cmd.Name
	}
	fmt.Fprintf(&b, "%s\n  %s", usage, cmd.Description)
	if len(cmd.Aliases) > 0 {
		fmt.Fprintf(&b, "\n  aliases: %s", strings.Join(cmd.Aliases, ", "))
	}
	for _, arg := range cmd.Args {
		req := "optional"
		if arg.Required {
			req = "required"
		}
		fmt.Fprintf(&b, "\n  <%s> %s (%s)", arg.Name, arg.Description, req)
	}
	return b.String()
}

// HandleQuit asks the view to exit.
func HandleQuit(_ *Context, _ []string) Result {
	return Result{Quit: true}
}

// HandleClear removes every message from the transcript.
func HandleClear(ctx *Context, _ []string) Result {
	if ctx.Store.Loading() {
		return failure("cannot clear while a reply is pending")
	}
	n := ctx.Store.MessageCount()
	ctx.Store.ClearMessages()
	return output("Cleared %d message(s).", n)
}

// HandleTheme toggles the theme, or sets it when a mode is given.
func HandleTheme(ctx *Context, args []string) Result {
	var err error
	switch {
	case len(args) == 0:
		err = ctx.Store.ToggleTheme()
	case strings.EqualFold(args[0], "dark"):
		err = ctx.Store.SetTheme(true)
	case strings.EqualFold(args[0], "light"):
		err = ctx.Store.SetTheme(false)
	default:
		return failure("unknown theme %q (use dark or light)", args[0])
	}

	mode := "light"
	if ctx.Store.DarkMode() {
		mode = "dark"
	}
	res := Result{Output: "Theme: " + mode, ThemeChanged: true}
	if err != nil {
		res.Err = fmt.Errorf("theme applied but not saved: %w", err)
	}
	return res
}

// =============================================================================
// MODEL HANDLERS
// =============================================================================

// HandleModels lists the catalog's models, marking the selected one.
func HandleModels(ctx *Context, _ []string) Result {
	selected := ctx.Store.SelectedModel()

	var b strings.Builder
	for _, m := range ctx.Store.Models() {
		marker := " "
		if m.ID == selected.ID {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %s %s\n", marker, util.PadRight(m.ID, 18), m.Name)
		fmt.Fprintf(&b, "    %s | %s | %s\n", m.Provider, m.ContextString(), m.PricingString())
		if m.Description != "" {
			fmt.Fprintf(&b, "    %s\n", m.Description)
		}
	}
	return Result{Output: strings.TrimRight(b.String(), "\n")}
}

// HandleModel shows the selected model, or selects a new one.
func HandleModel(ctx *Context, args []string) Result {
	if len(args) == 0 {
		m := ctx.Store.SelectedModel()
		return output("Model: %s (%s, %s)", m.Name, m.ID, m.ContextString())
	}
	if !ctx.Store.SelectModel(args[0]) {
		return failure("unknown model %q (see /models)", args[0])
	}
	m := ctx.Store.SelectedModel()
	return output("Switched to %s.", m.Name)
}

// =============================================================================
// TEMPLATE HANDLERS
// =============================================================================

// HandleTemplates lists the prompt templates, grouped by category.
func HandleTemplates(ctx *Context, _ []string) Result {
	templates := ctx.Store.Templates()
	if len(templates) == 0 {
		return output("No templates available.")
	}

	current, hasCurrent := ctx.Store.SelectedTemplate()
	groups := make(map[string][]model.PromptTemplate)
	var categories []string
	for _, t := range templates {
		if _, ok := groups[t.Category]; !ok {
			categories = append(categories, t.Category)
		}
		groups[t.Category] = append(groups[t.Category], t)
	}
	sort.Strings(categories)

	var b strings.Builder
	for _, category := range categories {
		fmt.Fprintf(&b, "%s\n", category)
		for _, t := range groups[category] {
			marker := " "
			if hasCurrent && t.ID == current.ID {
				marker = "*"
			}
			fmt.Fprintf(&b, "%s %s %s\n", marker, util.PadRight(t.ID, 16), t.Description)
		}
	}
	return Result{Output: strings.TrimRight(b.String(), "\n")}
}

// HandleTemplate loads a template into the prompt, clears it with "none",
// or shows the current one.
func HandleTemplate(ctx *Context, args []string) Result {
	if len(args) == 0 {
		t, ok := ctx.Store.SelectedTemplate()
		if !ok {
			return output("No template selected.")
		}
		res := fmt.Sprintf("Template: %s (%s)", t.Name, t.ID)
		if ph := t.Placeholders(); len(ph) > 0 {
			res += "\nPlaceholders: " + strings.Join(ph, ", ")
		}
		return Result{Output: res}
	}

	if strings.EqualFold(args[0], "none") {
		ctx.Store.UnloadTemplate()
		return output("Template cleared.")
	}
	if !ctx.Store.LoadTemplate(args[0]) {
		return failure("unknown template %q (see /templates)", args[0])
	}
	t, _ := ctx.Store.SelectedTemplate()
	res := fmt.Sprintf("Loaded %s into the prompt.", t.Name)
	if ph := t.Placeholders(); len(ph) > 0 {
		res += " Fill in: " + strings.Join(ph, ", ")
	}
	return Result{Output: res}
}

// =============================================================================
// PARAMETER HANDLERS
// =============================================================================

// HandleParams shows the current generation parameters.
func HandleParams(ctx *Context, _ []string) Result {
	p := ctx.Store.Parameters()
	var b strings.Builder
	for _, name := range model.ParamNames {
		v, _ := p.Get(name)
		fmt.Fprintf(&b, "%s %s\n", util.PadRight(name, 18), v)
	}
	return Result{Output: strings.TrimRight(b.String(), "\n")}
}

// HandleSet updates one generation parameter, clamped to its range.
func HandleSet(ctx *Context, args []string) Result {
	u, err := model.ParseUpdate(args[0], args[1])
	if err != nil {
		return Result{Err: err}
	}
	ctx.Store.UpdateParameters(u)

	p := ctx.Store.Parameters()
	v, _ := p.Get(args[0])
	return output("%s = %s", args[0], v)
}

// HandleReset restores default parameters.
func HandleReset(ctx *Context, _ []string) Result {
	ctx.Store.ResetParameters()
	return output("Parameters reset to defaults.")
}

// =============================================================================
// OUTPUT HANDLERS
// =============================================================================

// HandleExport writes the last assistant reply to ai-message-<id>.json.
func HandleExport(ctx *Context, args []string) Result {
	msg, ok := ctx.Store.LastMessage(model.RoleAssistant)
	if !ok {
		return Result{Err: ErrNoReply}
	}
	dir := ctx.ExportDir
	if len(args) > 0 {
		dir = args[0]
	}
	path, err := export.Message(msg, dir)
	if err != nil {
		return Result{Err: err}
	}
	return output("Saved %s", path)
}

// HandleSave writes the whole transcript as Markdown or JSON.
func HandleSave(ctx *Context, args []string) Result {
	snap := ctx.Store.Snapshot()
	if len(snap.Messages) == 0 {
		return Result{Err: export.ErrEmptyTranscript}
	}

	format := "md"
	if len(args) > 0 {
		format = args[0]
	}
	opts := export.DefaultOptions()
	if ctx.ExportDir != "" {
		opts.OutputDir = ctx.ExportDir
	}
	if len(args) > 1 {
		opts.OutputDir = args[1]
	}

	exporter, err := export.ExporterFor(format, opts)
	if err != nil {
		return Result{Err: err}
	}
	path, err := export.ToFile(export.FromSnapshot(snap), exporter, opts)
	if err != nil {
		return Result{Err: err}
	}
	return output("Saved %d message(s) to %s", len(snap.Messages), path)
}

// HandleCopy copies the last assistant reply to the clipboard.
func HandleCopy(ctx *Context, _ []string) Result {
	msg, ok := ctx.Store.LastMessage(model.RoleAssistant)
	if !ok {
		return Result{Err: ErrNoReply}
	}
	if err := ctx.clipboard()(msg.Content); err != nil {
		return failure("clipboard unavailable: %v", err)
	}
	return output("Copied %d characters.", len([]rune(msg.Content)))
}
