// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"fmt"
	"sort"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"

	"github.com/jeranaias/lumi-tui/internal/store"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command represents a slash command that can be executed.
type Command struct {
	// Name is the primary command name (e.g., "/help")
	Name string

	// Aliases are alternative names (e.g., "/h", "/?")
	Aliases []string

	// Description is shown in help and completion
	Description string

	// Usage shows argument syntax (e.g., "/model <id>")
	Usage string

	// Args defines the expected arguments
	Args []ArgDef

	// Handler executes the command
	Handler func(ctx *Context, args []string) Result

	// Category for grouping in help display
	Category string
}

// ArgDef defines an argument for a command.
type ArgDef struct {
	Name        string
	Required    bool
	Type        ArgType
	Description string

	// Values for enum types
	Values []string
}

// ArgType indicates what kind of completion to provide.
type ArgType int

const (
	ArgTypeString   ArgType = iota // Free-form string
	ArgTypeModel                   // Model ID from the catalog
	ArgTypeTemplate                // Template ID from the catalog, or "none"
	ArgTypeParam                   // Generation parameter name
	ArgTypeEnum                    // One of predefined values
)

// =============================================================================
// RESULT
// =============================================================================

// Result is the outcome of a command.
type Result struct {
	// Output is text to show the user
	Output string

	// Err is a user-facing error
	Err error

	// Quit asks the view to exit
	Quit bool

	// ThemeChanged tells the view to restyle
	ThemeChanged bool
}

func output(format string, args ...any) Result {
	return Result{Output: fmt.Sprintf(format, args...)}
}

func failure(format string, args ...any) Result {
	return Result{Err: fmt.Errorf(format, args...)}
}

// =============================================================================
// CONTEXT
// =============================================================================

// Context provides handlers with their dependencies.
type Context struct {
	// Store is the session store (required)
	Store *store.Store

	// Registry is used by /help
	Registry *Registry

	// ExportDir is the default directory for /export and /save
	ExportDir string

	// Clipboard writes text to the system clipboard (default: atotto/clipboard)
	Clipboard func(text string) error

	// Logger receives debug output
	Logger *log.Logger
}

func (c *Context) clipboard() func(string) error {
	if c.Clipboard != nil {
		return c.Clipboard
	}
	return clipboard.WriteAll
}

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// ErrUnknownCommand is returned for input naming no registered command.
var ErrUnknownCommand = errors.New("unknown command")

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
}

// NewRegistry creates a registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command to the registry.
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get retrieves a command by name or alias.
func (r *Registry) Get(name string) *Command {
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if cmd, ok := r.aliases[name]; ok {
		return cmd
	}
	return nil
}

// All returns all registered commands sorted by name.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

// ByCategory returns commands grouped by category.
func (r *Registry) ByCategory() map[string][]*Command {
	result := make(map[string][]*Command)
	for _, cmd := range r.All() {
		category := cmd.Category
		if category == "" {
			category = "General"
		}
		result[category] = append(result[category], cmd)
	}
	return result
}

// Execute parses and runs a slash command line.
func (r *Registry) Execute(ctx *Context, input string) Result {
	parsed := NewParser(r).Parse(input)
	if !parsed.IsCommand || parsed.CommandName == "" {
		return Result{Err: fmt.Errorf("%w: %q", ErrUnknownCommand, input)}
	}
	if parsed.Command == nil {
		return Result{Err: fmt.Errorf("%w: %s (try /help)", ErrUnknownCommand, parsed.CommandName)}
	}
	if err := ValidateArgs(parsed.Command, parsed.Args); err != nil {
		return Result{Err: err}
	}
	if ctx.Registry == nil {
		ctx.Registry = r
	}
	if ctx.Logger != nil {
		ctx.Logger.Debug("executing command", "command", parsed.Command.Name, "args", len(parsed.Args))
	}
	return parsed.Command.Handler(ctx, parsed.Args)
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

// Command categories.
const (
	CategorySession  = "Session"
	CategoryModel    = "Model"
	CategoryTemplate = "Templates"
	CategoryParams   = "Parameters"
	CategoryOutput   = "Output"
)

func (r *Registry) registerBuiltins() {
	r.Register(&Command{
		Name:        "/help",
		Aliases:     []string{"/h", "/?"},
		Description: "Show available commands",
		Usage:       "/help [command]",
		Args:        []ArgDef{{Name: "command", Type: ArgTypeString, Description: "Command to describe"}},
		Category:    CategorySession,
		Handler:     HandleHelp,
	})
	r.Register(&Command{
		Name:        "/quit",
		Aliases:     []string{"/q", "/exit"},
		Description: "Exit lumi",
		Category:    CategorySession,
		Handler:     HandleQuit,
	})
	r.Register(&Command{
		Name:        "/clear",
		Aliases:     []string{"/c"},
		Description: "Clear the transcript",
		Category:    CategorySession,
		Handler:     HandleClear,
	})
	r.Register(&Command{
		Name:        "/theme",
		Description: "Toggle or set the theme",
		Usage:       "/theme [dark|light]",
		Args: []ArgDef{{
			Name: "mode", Type: ArgTypeEnum, Values: []string{"dark", "light"},
			Description: "Theme to apply",
		}},
		Category: CategorySession,
		Handler:  HandleTheme,
	})

	r.Register(&Command{
		Name:        "/models",
		Description: "List available models",
		Category:    CategoryModel,
		Handler:     HandleModels,
	})
	r.Register(&Command{
		Name:        "/model",
		Aliases:     []string{"/m"},
		Description: "Show or select the model",
		Usage:       "/model [id]",
		Args:        []ArgDef{{Name: "id", Type: ArgTypeModel, Description: "Model ID"}},
		Category:    CategoryModel,
		Handler:     HandleModel,
	})

	r.Register(&Command{
		Name:        "/templates",
		Description: "List prompt templates",
		Category:    CategoryTemplate,
		Handler:     HandleTemplates,
	})
	r.Register(&Command{
		Name:        "/template",
		Aliases:     []string{"/t"},
		Description: "Load a template into the prompt, or 'none' to clear",
		Usage:       "/template [id|none]",
		Args:        []ArgDef{{Name: "id", Type: ArgTypeTemplate, Description: "Template ID or none"}},
		Category:    CategoryTemplate,
		Handler:     HandleTemplate,
	})

	r.Register(&Command{
		Name:        "/params",
		Aliases:     []string{"/p"},
		Description: "Show generation parameters",
		Category:    CategoryParams,
		Handler:     HandleParams,
	})
	r.Register(&Command{
		Name:        "/set",
		Description: "Set a generation parameter (clamped to its range)",
		Usage:       "/set <param> <value>",
		Args: []ArgDef{
			{Name: "param", Required: true, Type: ArgTypeParam, Description: "Parameter name"},
			{Name: "value", Required: true, Type: ArgTypeString, Description: "New value"},
		},
		Category: CategoryParams,
		Handler:  HandleSet,
	})
	r.Register(&Command{
		Name:        "/reset",
		Description: "Reset parameters to defaults",
		Category:    CategoryParams,
		Handler:     HandleReset,
	})

	r.Register(&Command{
		Name:        "/export",
		Description: "Save the last reply as ai-message-<id>.json",
		Usage:       "/export [dir]",
		Args:        []ArgDef{{Name: "dir", Type: ArgTypeString, Description: "Output directory"}},
		Category:    CategoryOutput,
		Handler:     HandleExport,
	})
	r.Register(&Command{
		Name:        "/save",
		Aliases:     []string{"/s"},
		Description: "Save the transcript",
		Usage:       "/save [json|md] [dir]",
		Args: []ArgDef{
			{Name: "format", Type: ArgTypeEnum, Values: []string{"json", "md"}, Description: "File format"},
			{Name: "dir", Type: ArgTypeString, Description: "Output directory"},
		},
		Category: CategoryOutput,
		Handler:  HandleSave,
	})
	r.Register(&Command{
		Name:        "/copy",
		Aliases:     []string{"/y"},
		Description: "Copy the last reply to the clipboard",
		Category:    CategoryOutput,
		Handler:     HandleCopy,
	})
}
