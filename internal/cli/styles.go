// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/lumi-tui/internal/ui/styles"
)

// =============================================================================
// SHARED STYLES FOR CLI OUTPUT
// =============================================================================

// printer writes styled lines to one output. Colors are dropped for
// non-terminal writers and when NO_COLOR is set.
type printer struct {
	out io.Writer

	Title   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Prompt  lipgloss.Style
	Marker  lipgloss.Style
}

func newPrinter(w io.Writer) *printer {
	r := lipgloss.NewRenderer(w, termenv.WithProfile(colorProfile(w)))
	r.SetColorProfile(colorProfile(w))

	return &printer{
		out:     w,
		Title:   r.NewStyle().Bold(true).Foreground(styles.Cyan),
		Label:   r.NewStyle().Foreground(styles.TextMuted).Width(18),
		Value:   r.NewStyle(),
		Muted:   r.NewStyle().Foreground(styles.TextMuted),
		Success: r.NewStyle().Foreground(styles.Emerald).Bold(true),
		Error:   r.NewStyle().Foreground(styles.Rose).Bold(true),
		Prompt:  r.NewStyle().Foreground(styles.Purple).Bold(true),
		Marker:  r.NewStyle().Foreground(styles.Emerald),
	}
}

func (p *printer) Println(a ...any) {
	fmt.Fprintln(p.out, a...)
}

func (p *printer) Printf(format string, a ...any) {
	fmt.Fprintf(p.out, format, a...)
}

// Field prints a "label value" row.
func (p *printer) Field(label, value string) {
	fmt.Fprintln(p.out, p.Label.Render(label)+p.Value.Render(value))
}
