// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/lumi-tui/internal/commands"
	"github.com/jeranaias/lumi-tui/internal/generation"
	"github.com/jeranaias/lumi-tui/internal/store"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// lineReader is the REPL's line editor.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	SetCompleter(fn func(line string) []string)
	Close() error
}

// linerReader provides input history and line editing through liner.
type linerReader struct {
	line        *liner.State
	historyFile string
}

func newLinerReader(historyFile string) (lineReader, error) {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	r := &linerReader{line: line, historyFile: historyFile}
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	return r, nil
}

func (r *linerReader) Prompt(prompt string) (string, error) {
	return r.line.Prompt(prompt)
}

func (r *linerReader) AppendHistory(item string) {
	r.line.AppendHistory(item)
}

func (r *linerReader) SetCompleter(fn func(line string) []string) {
	r.line.SetCompleter(fn)
}

// Close saves history with owner-only permissions and restores the
// terminal.
func (r *linerReader) Close() error {
	defer r.line.Close()

	if err := os.MkdirAll(filepath.Dir(r.historyFile), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = r.line.WriteHistory(f)
	return err
}

// =============================================================================
// CHAT COMMAND
// =============================================================================

func (a *App) newChatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive line-mode chat",
		Long: `Start a line-mode chat session with input history.

Slash commands work as in the full-screen interface. After /template, press
Enter on an empty line to send the loaded template.`,
		Args: cobra.NoArgs,
		RunE: a.runChat,
	}
}

func (a *App) runChat(cmd *cobra.Command, _ []string) error {
	if err := a.initLogger(false); err != nil {
		return err
	}
	st, err := a.openStore()
	if err != nil {
		return err
	}
	a.startServer(st)

	dir, err := a.cfg.ResolvedDataDir()
	if err != nil {
		return err
	}
	in, err := a.newLineReader(filepath.Join(dir, "chat_history"))
	if err != nil {
		return fmt.Errorf("failed to open line editor: %w", err)
	}
	a.closers = append(a.closers, in.Close)

	registry := commands.NewRegistry()
	in.SetCompleter(commands.NewCompleter(registry, st).Lines)

	pipeline := generation.New(st, a.generationOptions())
	return a.repl(cmd.Context(), in, st, pipeline, registry, newPrinter(cmd.OutOrStdout()))
}

// repl reads prompts until /quit, Ctrl+C or end of input. Each prompt is
// answered before the next is read.
func (a *App) repl(ctx context.Context, in lineReader, st *store.Store, p *generation.Pipeline,
	registry *commands.Registry, out *printer) error {

	out.Println(out.Title.Render("lumi chat") + "  " +
		out.Muted.Render(st.SelectedModel().Name+" | /help for commands, /quit or Ctrl+D to leave"))

	cmdCtx := &commands.Context{
		Store:     st,
		Registry:  registry,
		ExportDir: ".",
		Logger:    a.logger,
	}

	for {
		input, err := in.Prompt("you> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				out.Println()
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			if strings.TrimSpace(st.Draft()) == "" {
				continue
			}
			gen, ok := p.Submit()
			a.printReply(ctx, out, gen, ok)
			continue
		}
		in.AppendHistory(input)

		if commands.IsCommand(input) {
			res := registry.Execute(cmdCtx, input)
			if res.Output != "" {
				out.Println(res.Output)
			}
			if res.Err != nil {
				out.Println(out.Error.Render("error:") + " " + res.Err.Error())
			}
			if res.Quit {
				return nil
			}
			if draft := st.Draft(); draft != "" && res.Err == nil {
				out.Println(out.Muted.Render("Draft (Enter on an empty line sends it):"))
				out.Println(draft)
			}
			continue
		}

		gen, ok := p.SubmitText(input)
		a.printReply(ctx, out, gen, ok)
	}
}

// printReply waits for gen and prints the assistant reply.
func (a *App) printReply(ctx context.Context, out *printer, gen *generation.Generation, ok bool) {
	if !ok {
		out.Println(out.Error.Render("error:") + " a reply is already pending")
		return
	}
	reply, err := gen.Wait(ctx)
	if err != nil {
		out.Println(out.Error.Render("error:") + " " + err.Error())
		return
	}
	out.Println(out.Prompt.Render(reply.ModelID+">") + " " + a.renderReply(out.out, reply.Content, false))
}
