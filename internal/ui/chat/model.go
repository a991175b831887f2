// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/log"

	"github.com/jeranaias/lumi-tui/internal/commands"
	"github.com/jeranaias/lumi-tui/internal/generation"
	"github.com/jeranaias/lumi-tui/internal/logger"
	"github.com/jeranaias/lumi-tui/internal/store"
	"github.com/jeranaias/lumi-tui/internal/ui/components"
	"github.com/jeranaias/lumi-tui/internal/ui/styles"
)

// =============================================================================
// SCREENS
// =============================================================================

// Screen is one of the two UI destinations.
type Screen int

const (
	// ScreenLanding is the welcome screen with the model picker
	ScreenLanding Screen = iota
	// ScreenSession is the chat screen
	ScreenSession
)

// String returns the destination name.
func (s Screen) String() string {
	if s == ScreenSession {
		return "session"
	}
	return "landing"
}

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures the chat model.
type Options struct {
	// Version is shown on the landing screen
	Version string

	// ExportDir is the default directory for /export and /save
	ExportDir string

	// ShowTimestamps adds message times to the transcript
	ShowTimestamps bool

	// RenderMarkdown renders assistant replies with glamour
	RenderMarkdown bool

	// Generation configures the pipeline. Its Scheduler is replaced by the
	// model's event loop scheduler.
	Generation generation.Options

	// Theme overrides the terminal-bound theme (used by tests)
	Theme *styles.Theme

	// Clipboard overrides the system clipboard for /copy
	Clipboard func(string) error

	Logger *log.Logger
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the root Bubble Tea model of the TUI.
type Model struct {
	store     *store.Store
	pipeline  *generation.Pipeline
	scheduler *Scheduler
	pending   *generation.Generation

	registry    *commands.Registry
	completer   *commands.Completer
	completions *commands.CompletionState

	theme     *styles.Theme
	keys      KeyMap
	help      help.Model
	welcome   components.Welcome
	statusBar *components.StatusBar
	popup     *components.CompletionPopup

	input    textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	markdown *glamour.TermRenderer

	// rendered caches message bodies by ID; reset on resize and theme change
	rendered map[string]string

	screen    Screen
	showHelp  bool
	notice    string
	noticeErr bool
	quitting  bool

	opts   Options
	logger *log.Logger

	width  int
	height int
}

// New creates the chat model over st.
func New(st *store.Store, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme(st.DarkMode())
	} else {
		theme.SetDark(st.DarkMode())
	}

	sched := NewScheduler()
	genOpts := opts.Generation
	genOpts.Scheduler = sched
	if genOpts.Logger == nil {
		genOpts.Logger = opts.Logger
	}

	registry := commands.NewRegistry()

	ta := textarea.New()
	ta.Placeholder = "Ask anything, or type /help"
	ta.ShowLineNumbers = false
	ta.Prompt = "> "
	ta.CharLimit = 8192
	ta.SetHeight(3)
	ta.KeyMap.InsertNewline.SetEnabled(false)

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = styles.DotsSpinner.Spinner()

	models := st.Models()
	welcome := components.NewWelcome(theme, models)
	welcome.SetVersion(opts.Version)
	welcome.SetCursorTo(st.SelectedModel().ID)

	m := Model{
		store:       st,
		pipeline:    generation.New(st, genOpts),
		scheduler:   sched,
		registry:    registry,
		completer:   commands.NewCompleter(registry, st),
		completions: commands.NewCompletionState(),
		theme:       theme,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		welcome:     welcome,
		statusBar:   components.NewStatusBar(theme),
		popup:       components.NewCompletionPopup(theme),
		input:       ta,
		viewport:    vp,
		spinner:     sp,
		rendered:    make(map[string]string),
		screen:      ScreenLanding,
		opts:        opts,
		logger:      opts.Logger,
	}
	m.help.ShowAll = true
	m.applyTheme()
	return m
}

// Screen returns the current destination.
func (m Model) Screen() Screen {
	return m.screen
}

// Store returns the session store.
func (m Model) Store() *store.Store {
	return m.store
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case scheduledMsg:
		msg.fn()
		m.checkPending()
		m.refreshTranscript()
		return m, m.scheduler.Cmd()

	case spinner.TickMsg:
		if !m.store.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refreshTranscript()
		return m, cmd
	}

	var cmd tea.Cmd
	if m.screen == ScreenSession {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

// View renders the current screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}
	if m.screen == ScreenLanding {
		return m.welcome.View()
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderSession()
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	m.theme.SetSize(m.width, m.height)
	m.welcome.SetSize(m.width, m.height)
	m.statusBar.SetWidth(m.width)
	m.popup.SetWidth(min(m.width-4, 72))
	m.help.Width = m.width

	m.input.SetWidth(max(m.width-4, 10))
	m.viewport.Width = max(m.width, 1)

	m.newMarkdownRenderer()
	clear(m.rendered)
	m.layout()
	m.refreshTranscript()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}
	if m.screen == ScreenLanding {
		return m.handleLandingKey(msg)
	}
	if m.showHelp {
		if key.Matches(msg, m.keys.Help, m.keys.Back) {
			m.showHelp = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Back):
		if m.completions.Visible {
			m.completions.Clear()
			m.layout()
			return m, nil
		}
		m.screen = ScreenLanding
		m.welcome.SetCursorTo(m.store.SelectedModel().ID)
		m.input.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Complete):
		return m.complete(true)

	case key.Matches(msg, m.keys.CompletePrev):
		return m.complete(false)

	case key.Matches(msg, m.keys.Submit):
		if m.completions.Visible && m.completions.GetSelected() != nil {
			m.setInput(m.completions.Accept())
			m.completions.Clear()
			m.layout()
			return m, nil
		}
		return m.submit()

	case key.Matches(msg, m.keys.Newline):
		m.input.InsertString("\n")
		m.syncDraft()
		m.layout()
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil

	case key.Matches(msg, m.keys.ToggleTheme):
		return m.runCommand("/theme", false)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.syncDraft()
	if m.completions.Visible {
		m.refreshCompletions()
	}
	return m, cmd
}

func (m Model) handleLandingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.welcome.CursorUp()
	case key.Matches(msg, m.keys.Down):
		m.welcome.CursorDown()
	case key.Matches(msg, m.keys.ToggleTheme):
		if err := m.store.ToggleTheme(); err != nil {
			m.logger.Warn("theme not saved", "err", err)
		}
		m.applyTheme()
	case key.Matches(msg, m.keys.Submit):
		if cur, ok := m.welcome.Current(); ok {
			m.store.SelectModel(cur.ID)
		}
		return m.enterSession()
	}
	return m, nil
}

func (m Model) enterSession() (tea.Model, tea.Cmd) {
	m.screen = ScreenSession
	m.setInput(m.store.Draft())
	m.layout()
	m.refreshTranscript()
	return m, m.input.Focus()
}

// =============================================================================
// SUBMISSION AND COMMANDS
// =============================================================================

func (m Model) submit() (tea.Model, tea.Cmd) {
	value := m.input.Value()
	if commands.IsCommand(value) {
		return m.runCommand(strings.TrimSpace(value), true)
	}

	m.store.SetDraft(value)
	gen, ok := m.pipeline.Submit()
	if !ok {
		if m.store.Loading() {
			m.setNotice("Still waiting for the previous reply.", false)
		}
		return m, nil
	}

	m.pending = gen
	m.notice = ""
	m.input.Reset()
	m.layout()
	m.refreshTranscript()
	return m, tea.Batch(m.scheduler.Cmd(), m.spinner.Tick)
}

// runCommand executes a slash command. When fromInput is set, the command
// text came from the prompt and is cleared unless the command replaced the
// draft itself.
func (m Model) runCommand(input string, fromInput bool) (tea.Model, tea.Cmd) {
	before := m.store.Draft()
	res := m.registry.Execute(m.commandContext(), input)

	if fromInput {
		if m.store.Draft() == before {
			m.store.SetDraft("")
		}
		m.setInput(m.store.Draft())
	}

	if res.Quit {
		m.quitting = true
		return m, tea.Quit
	}
	if res.ThemeChanged {
		m.applyTheme()
	}

	switch {
	case res.Err != nil && res.Output != "":
		m.setNotice(res.Output+"\n"+res.Err.Error(), true)
	case res.Err != nil:
		m.setNotice(res.Err.Error(), true)
	default:
		m.setNotice(res.Output, false)
	}
	m.completions.Clear()
	m.layout()
	m.refreshTranscript()
	return m, nil
}

func (m Model) commandContext() *commands.Context {
	return &commands.Context{
		Store:     m.store,
		Registry:  m.registry,
		ExportDir: m.opts.ExportDir,
		Clipboard: m.opts.Clipboard,
		Logger:    m.logger,
	}
}

// checkPending reports a failed generation once it resolves.
func (m *Model) checkPending() {
	if m.pending == nil || !m.pending.Resolved() {
		return
	}
	if _, err := m.pending.Reply(); err != nil {
		m.setNotice("Generation failed: "+err.Error(), true)
	}
	m.pending = nil
}

// =============================================================================
// COMPLETION
// =============================================================================

func (m Model) complete(forward bool) (tea.Model, tea.Cmd) {
	if m.completions.Visible {
		if forward {
			m.completions.Next()
		} else {
			m.completions.Prev()
		}
		return m, nil
	}

	value := m.input.Value()
	if !commands.IsCommand(value) {
		return m, nil
	}
	comps := m.completer.Complete(value, len(value))
	switch len(comps) {
	case 0:
	case 1:
		m.setInput(commands.Apply(value, comps[0]))
	default:
		m.completions.Update(value, comps)
	}
	m.layout()
	return m, nil
}

func (m *Model) refreshCompletions() {
	value := m.input.Value()
	if !commands.IsCommand(value) {
		m.completions.Clear()
	} else if comps := m.completer.Complete(value, len(value)); len(comps) == 0 {
		m.completions.Clear()
	} else {
		m.completions.Update(value, comps)
	}
	m.layout()
}

// =============================================================================
// STATE HELPERS
// =============================================================================

// setInput replaces the prompt text and mirrors it into the draft.
func (m *Model) setInput(text string) {
	m.input.SetValue(text)
	m.input.CursorEnd()
	m.syncDraft()
}

func (m *Model) syncDraft() {
	m.store.SetDraft(m.input.Value())
}

func (m *Model) setNotice(text string, isErr bool) {
	m.notice = strings.TrimRight(text, "\n")
	m.noticeErr = isErr
}

// applyTheme restyles every view after the store's theme flag changed.
func (m *Model) applyTheme() {
	m.theme.SetDark(m.store.DarkMode())
	m.input.FocusedStyle.Prompt = m.theme.InputPrompt
	m.input.FocusedStyle.Placeholder = m.theme.InputPlaceholder
	m.input.BlurredStyle.Prompt = m.theme.InputPlaceholder
	m.input.BlurredStyle.Placeholder = m.theme.InputPlaceholder
	m.spinner.Style = m.theme.Spinner
	m.newMarkdownRenderer()
	clear(m.rendered)
	m.refreshTranscript()
}

func (m *Model) newMarkdownRenderer() {
	m.markdown = nil
	if !m.opts.RenderMarkdown {
		return
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(m.theme.GlamourStyle()),
		glamour.WithWordWrap(max(m.theme.BubbleWidth()-6, 20)),
	)
	if err != nil {
		m.logger.Warn("markdown renderer unavailable", "err", err)
		return
	}
	m.markdown = r
}
