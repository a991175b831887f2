// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/lumi-tui/internal/model"
	"github.com/jeranaias/lumi-tui/internal/ui/components"
)

// =============================================================================
// MAIN RENDER
// =============================================================================

// renderSession stacks header, transcript, notice, completion popup, input
// and status bar. layout keeps the viewport height in sync with the rest.
func (m Model) renderSession() string {
	parts := []string{m.renderHeader(), m.viewport.View()}
	if notice := m.renderNotice(); notice != "" {
		parts = append(parts, notice)
	}
	if popup := m.popup.View(m.completions); popup != "" {
		parts = append(parts, popup)
	}
	parts = append(parts, m.renderInput(), m.renderStatusBar())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// layout sizes the viewport to the space left by the fixed-height parts.
func (m *Model) layout() {
	if m.height == 0 {
		return
	}
	used := lipgloss.Height(m.renderHeader()) +
		lipgloss.Height(m.renderInput()) +
		lipgloss.Height(m.renderStatusBar())
	if notice := m.renderNotice(); notice != "" {
		used += lipgloss.Height(notice)
	}
	if popup := m.popup.View(m.completions); popup != "" {
		used += lipgloss.Height(popup)
	}
	m.viewport.Height = max(m.height-used, 1)
}

// =============================================================================
// COMPONENTS
// =============================================================================

func (m Model) renderHeader() string {
	title := m.theme.HeaderBrand.Render("lumi")
	subtitle := "session " + shortID(m.store.SessionID())
	if t, ok := m.store.SelectedTemplate(); ok {
		subtitle += " | template " + t.Name
	}
	return m.theme.Header.Width(max(m.width, 1)).
		Render(title + "  " + m.theme.HeaderSubtitle.Render(subtitle))
}

func (m Model) renderNotice() string {
	if m.notice == "" {
		return ""
	}
	style := m.theme.SystemBubble
	if m.noticeErr {
		style = style.Foreground(m.theme.ErrorStyle.GetForeground())
	}
	return style.Width(max(m.width-4, 10)).Render(m.notice)
}

func (m Model) renderInput() string {
	return m.theme.InputContainer.Width(max(m.width, 1)).Render(m.input.View())
}

func (m Model) renderStatusBar() string {
	bar := *m.statusBar
	bar.Model = m.store.SelectedModel()
	bar.Parameters = m.store.Parameters()
	bar.Messages = m.store.MessageCount()
	bar.Template = ""
	if t, ok := m.store.SelectedTemplate(); ok {
		bar.Template = t.ID
	}
	bar.Status = components.StatusReady
	if m.store.Loading() {
		bar.Status = components.StatusThinking
		bar.Spinner = m.spinner.View()
	}
	return bar.View()
}

func (m Model) renderHelp() string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.HeaderTitle.Render("Keys"),
		"",
		m.help.View(m.keys),
		"",
		m.theme.InfoStyle.Render("Type /help for slash commands. F1 or Esc to close."),
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		m.theme.WelcomeBox.Render(body))
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// refreshTranscript rebuilds the viewport content from the store.
func (m *Model) refreshTranscript() {
	msgs := m.store.Messages()
	if len(msgs) == 0 && !m.store.Loading() {
		m.viewport.SetContent(m.theme.InfoStyle.Render(
			"\n  No messages yet. Type a prompt and press Enter, or /help for commands."))
		return
	}

	blocks := make([]string, 0, len(msgs)+1)
	for _, msg := range msgs {
		blocks = append(blocks, m.renderMessage(msg))
	}
	if m.store.Loading() {
		blocks = append(blocks, "  "+m.spinner.View()+" "+m.theme.ThinkingText.Render("Thinking..."))
	}
	m.viewport.SetContent(strings.Join(blocks, "\n\n"))
	m.viewport.GotoBottom()
}

func (m *Model) renderMessage(msg model.Message) string {
	body, ok := m.rendered[msg.ID]
	if !ok {
		body = m.renderBody(msg)
		m.rendered[msg.ID] = body
	}

	header := m.theme.MessageRole.Render(msg.Role.DisplayName())
	var meta []string
	if msg.IsAssistant() && msg.ModelID != "" {
		meta = append(meta, msg.ModelID)
	}
	if m.opts.ShowTimestamps {
		meta = append(meta, msg.FormatTime())
	}
	if len(meta) > 0 {
		header += " " + m.theme.MessageMeta.Render(strings.Join(meta, " | "))
	}

	if msg.IsUser() {
		return lipgloss.JoinVertical(lipgloss.Left, "    "+header, body)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}

func (m *Model) renderBody(msg model.Message) string {
	width := m.theme.BubbleWidth()
	if msg.IsUser() {
		return m.theme.UserBubble.Width(width).Render(msg.Content)
	}

	content := msg.Content
	if m.markdown != nil {
		out, err := m.markdown.Render(content)
		if err != nil {
			m.logger.Debug("markdown render failed", "message", msg.ID, "err", err)
		} else {
			content = strings.Trim(out, "\n")
		}
	}
	return m.theme.AssistantBubble.Width(width).Render(content)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
