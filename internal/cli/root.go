// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/jeranaias/lumi-tui/internal/config"
	"github.com/jeranaias/lumi-tui/internal/generation"
	"github.com/jeranaias/lumi-tui/internal/logger"
	"github.com/jeranaias/lumi-tui/internal/prefs"
	"github.com/jeranaias/lumi-tui/internal/server"
	"github.com/jeranaias/lumi-tui/internal/store"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// APP
// =============================================================================

// App holds the global flags and the resources opened by a command.
type App struct {
	configPath  string
	model       string
	logLevel    string
	metricsAddr string

	cfg     *config.Config
	logger  *log.Logger
	closers []func() error

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// newLineReader opens the REPL input (default: liner)
	newLineReader func(historyFile string) (lineReader, error)
}

// Execute runs the CLI with the process arguments.
func Execute() error {
	return Run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

// Run builds the command tree, executes args and releases everything the
// command opened.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	app := &App{
		stdin:         stdin,
		stdout:        stdout,
		stderr:        stderr,
		newLineReader: newLinerReader,
	}
	return app.run(args)
}

func (a *App) run(args []string) error {
	root := a.NewRootCommand()
	root.SetArgs(args)
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	err := root.Execute()
	if cerr := a.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// NewRootCommand creates the root command with every subcommand attached.
func (a *App) NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "lumi",
		Short: "Terminal chat console over a simulated model backend",
		Long: `lumi is a terminal chat console. Pick a model, tune the generation
parameters, load prompt templates and chat with a simulated backend.

Run without arguments to start the full-screen interface.`,
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.loadConfig,
		RunE:              a.runTUI,
	}
	root.SetVersionTemplate(versionLine() + "\n")

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ~/.lumi/config.toml)")
	flags.StringVarP(&a.model, "model", "m", "", "model to select at start-up")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.metricsAddr, "metrics-addr", "", "serve /health, /v1/* and /metrics on this address")

	root.AddCommand(
		a.newChatCommand(),
		a.newAskCommand(),
		a.newModelsCommand(),
		a.newTemplatesCommand(),
		a.newThemeCommand(),
		a.newConfigCommand(),
		a.newVersionCommand(),
	)
	return root
}

// Close releases opened resources in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// =============================================================================
// SETUP
// =============================================================================

// loadConfig resolves the configuration: file, then LUMI_* variables, then
// flags.
func (a *App) loadConfig(cmd *cobra.Command, _ []string) error {
	var (
		cfg *config.Config
		err error
	)
	if a.configPath != "" {
		cfg, err = config.LoadFromPath(a.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return configError(err)
	}

	flags := cmd.Flags()
	if flags.Changed("model") {
		cfg.DefaultModel = a.model
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr = a.metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return configError(err)
	}

	a.cfg = cfg
	return nil
}

// initLogger builds the logger. The TUI owns the terminal, so it logs to
// the log file; line-mode commands log to stderr.
func (a *App) initLogger(toFile bool) error {
	opts := logger.Options{Level: a.cfg.Log.Level, Output: a.stderr}
	if toFile {
		path, err := a.cfg.ResolvedLogFile()
		if err != nil {
			return err
		}
		opts.File = path
	}

	l, closer, err := logger.New(opts)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	a.logger = l
	a.closers = append(a.closers, closer)
	return nil
}

// openStore opens the preference database and the session store.
func (a *App) openStore() (*store.Store, error) {
	dir, err := a.cfg.ResolvedDataDir()
	if err != nil {
		return nil, err
	}
	kv, err := prefs.OpenSQLite(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open preferences: %w", err)
	}
	a.closers = append(a.closers, kv.Close)

	st, err := store.New(store.Options{
		DefaultModel:    a.cfg.DefaultModel,
		ClampParameters: a.cfg.Generation.ClampParameters,
		Prefs:           kv,
		Logger:          a.logger,
	})
	if err != nil {
		return nil, err
	}
	a.logger.Debug("session started", "session", st.SessionID(), "model", st.SelectedModel().ID)
	return st, nil
}

// startServer runs the inspection server when an address is configured.
func (a *App) startServer(st *store.Store) {
	if a.cfg.Metrics.Addr == "" {
		return
	}
	srv := server.New(server.Options{
		Addr:      a.cfg.Metrics.Addr,
		Store:     st,
		Version:   Version,
		RateLimit: a.cfg.Metrics.RateLimit,
		Burst:     a.cfg.Metrics.Burst,
		Logger:    a.logger,
	})
	go func() {
		if err := srv.Start(); err != nil {
			a.logger.Error("inspection server stopped", "err", err)
		}
	}()
	a.closers = append(a.closers, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	})
}

// generationOptions maps the configuration onto pipeline options.
func (a *App) generationOptions() generation.Options {
	g := a.cfg.Generation
	return generation.Options{
		MinDelay: g.MinDelay(),
		MaxDelay: g.MaxDelay(),
		Retry: generation.RetryPolicy{
			MaxAttempts: g.RetryAttempts,
			BaseDelay:   g.RetryBase(),
		},
		Logger: a.logger,
	}
}

// =============================================================================
// VERSION
// =============================================================================

func versionLine() string {
	if GitCommit != "unknown" && GitCommit != "" {
		return fmt.Sprintf("lumi %s (commit %s, built %s)", Version, GitCommit, BuildDate)
	}
	return "lumi " + Version
}

func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionLine())
		},
	}
}
