// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the application.
type Theme struct {
	// Dark selects the Dark side of every AdaptiveColor
	Dark bool

	// ColorProfile is the terminal's color capability
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	renderer *lipgloss.Renderer

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header         lipgloss.Style
	HeaderBrand    lipgloss.Style
	HeaderTitle    lipgloss.Style
	HeaderSubtitle lipgloss.Style

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	SystemBubble    lipgloss.Style
	MessageRole     lipgloss.Style
	MessageMeta     lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputPlaceholder lipgloss.Style
	CharCount        lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	StatusModel  lipgloss.Style
	StatusBusy   lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	// ==========================================================================
	// COMPLETION POPUP STYLES
	// ==========================================================================

	CompletionPopup    lipgloss.Style
	CompletionItem     lipgloss.Style
	CompletionSelected lipgloss.Style
	CompletionDesc     lipgloss.Style

	// ==========================================================================
	// SPINNER AND LOADING STYLES
	// ==========================================================================

	Spinner      lipgloss.Style
	ThinkingText lipgloss.Style

	// ==========================================================================
	// WELCOME SCREEN STYLES
	// ==========================================================================

	WelcomeBox      lipgloss.Style
	WelcomeLogo     lipgloss.Style
	WelcomeVersion  lipgloss.Style
	WelcomeInfo     lipgloss.Style
	WelcomeKey      lipgloss.Style
	WelcomePressKey lipgloss.Style

	// ==========================================================================
	// STATUS STYLES
	// ==========================================================================

	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
	InfoStyle    lipgloss.Style
	LinkStyle    lipgloss.Style
}

// NewTheme creates a theme for stdout using the terminal's color profile.
func NewTheme(dark bool) *Theme {
	return NewThemeWithOutput(os.Stdout, termenv.EnvColorProfile(), dark)
}

// NewThemeWithOutput creates a theme rendering for w with a fixed color
// profile.
func NewThemeWithOutput(w io.Writer, profile termenv.Profile, dark bool) *Theme {
	r := lipgloss.NewRenderer(w, termenv.WithProfile(profile))
	r.SetColorProfile(profile)
	t := &Theme{
		ColorProfile: profile,
		renderer:     r,
	}
	t.SetDark(dark)
	return t
}

// SetDark switches between the dark and light palettes and rebuilds every
// style.
func (t *Theme) SetDark(dark bool) {
	t.Dark = dark
	t.renderer.SetHasDarkBackground(dark)
	t.initStyles()
}

// Renderer returns the renderer the styles are bound to.
func (t *Theme) Renderer() *lipgloss.Renderer {
	return t.renderer
}

// GlamourStyle names the glamour standard style matching the palette.
func (t *Theme) GlamourStyle() string {
	if t.ColorProfile == termenv.Ascii {
		return "notty"
	}
	if t.Dark {
		return "dark"
	}
	return "light"
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	s := t.renderer.NewStyle

	// Header
	t.Header = s().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.HeaderBrand = s().
		Bold(true).
		Foreground(Cyan)

	t.HeaderTitle = s().
		Bold(true).
		Foreground(Purple)

	t.HeaderSubtitle = s().
		Foreground(TextSecondary).
		Italic(true)

	// Messages
	t.UserBubble = s().
		Foreground(UserBubbleFg).
		Background(UserBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 2).
		MarginLeft(4)

	t.AssistantBubble = s().
		Foreground(AssistantBubbleFg).
		Background(AssistantBubbleBg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 2).
		MarginRight(4)

	t.SystemBubble = s().
		Foreground(SystemBubbleFg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(SystemBubbleBorder).
		BorderLeft(true).
		PaddingLeft(2)

	t.MessageRole = s().
		Bold(true).
		Foreground(Purple)

	t.MessageMeta = s().
		Foreground(TextMuted).
		Italic(true)

	// Input area
	t.InputContainer = s().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderBottom(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = s().
		Foreground(Cyan).
		Bold(true)

	t.InputPlaceholder = s().
		Foreground(TextMuted).
		Italic(true)

	t.CharCount = s().
		Foreground(TextMuted).
		Align(lipgloss.Right)

	// Status bar
	t.StatusBar = s().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)

	t.StatusModel = s().
		Foreground(Purple).
		Bold(true)

	t.StatusBusy = s().
		Foreground(Amber).
		Bold(true)

	t.ShortcutKey = s().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = s().
		Foreground(TextMuted)

	// Completion popup
	t.CompletionPopup = s().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.CompletionItem = s().
		Foreground(TextPrimary)

	t.CompletionSelected = s().
		Background(Purple).
		Foreground(TextInverse).
		Bold(true)

	t.CompletionDesc = s().
		Foreground(TextMuted)

	// Spinner and loading
	t.Spinner = s().
		Foreground(Purple)

	t.ThinkingText = s().
		Foreground(TextSecondary).
		Italic(true)

	// Welcome screen
	t.WelcomeBox = s().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(Purple).
		Padding(1, 4).
		Align(lipgloss.Center)

	t.WelcomeLogo = s().
		Foreground(Cyan).
		Bold(true)

	t.WelcomeVersion = s().
		Foreground(TextMuted).
		Italic(true)

	t.WelcomeInfo = s().
		Foreground(TextSecondary)

	t.WelcomeKey = s().
		Foreground(Cyan).
		Bold(true)

	t.WelcomePressKey = s().
		Foreground(Purple)

	// Status
	t.SuccessStyle = s().Foreground(Emerald).Bold(true)
	t.ErrorStyle = s().Foreground(Rose).Bold(true)
	t.WarningStyle = s().Foreground(Amber).Bold(true)
	t.InfoStyle = s().Foreground(LinkColor).Bold(true)
	t.LinkStyle = s().Foreground(LinkColor).Underline(true)
}

// =============================================================================
// STATUS RENDERING
// =============================================================================

// RenderSuccess renders a success message with its indicator.
func (t *Theme) RenderSuccess(message string) string {
	return t.SuccessStyle.Render(StatusIndicators.Success + " " + message)
}

// RenderError renders an error message with its indicator.
func (t *Theme) RenderError(message string) string {
	return t.ErrorStyle.Render(StatusIndicators.Error + " " + message)
}

// RenderWarning renders a warning message with its indicator.
func (t *Theme) RenderWarning(message string) string {
	return t.WarningStyle.Render(StatusIndicators.Warning + " " + message)
}

// RenderInfo renders an info message with its indicator.
func (t *Theme) RenderInfo(message string) string {
	return t.InfoStyle.Render(StatusIndicators.Info + " " + message)
}

// =============================================================================
// LAYOUT
// =============================================================================

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // >= 100 columns
)

// BubbleWidth returns the maximum width of a message bubble.
func (t *Theme) BubbleWidth() int {
	switch t.GetLayoutMode() {
	case LayoutNarrow:
		return max(t.Width-4, 20)
	case LayoutMedium:
		return t.Width - 10
	default:
		return min(t.Width-20, 100)
	}
}
