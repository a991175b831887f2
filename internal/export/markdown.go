// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports transcripts to Markdown with YAML frontmatter.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

type frontmatter struct {
	Session  string `yaml:"session"`
	Model    string `yaml:"model"`
	Messages int    `yaml:"messages"`
	Exported string `yaml:"exported"`
}

// Export converts a transcript to Markdown.
func (e *MarkdownExporter) Export(t *Transcript) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("transcript is nil")
	}
	if len(t.Messages) == 0 {
		return nil, ErrEmptyTranscript
	}

	var sb strings.Builder

	if e.options.IncludeMetadata {
		fm, err := yaml.Marshal(frontmatter{
			Session:  t.SessionID,
			Model:    t.Model,
			Messages: len(t.Messages),
			Exported: t.ExportedAt.Format(time.RFC3339),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to encode frontmatter: %w", err)
		}
		sb.WriteString("---\n")
		sb.Write(fm)
		sb.WriteString("---\n\n")
	}

	sb.WriteString("# lumi transcript\n\n")

	if e.options.IncludeMetadata {
		p := t.Parameters
		sb.WriteString("## Session Information\n\n")
		fmt.Fprintf(&sb, "- **Model**: %s\n", t.Model)
		fmt.Fprintf(&sb, "- **Messages**: %d\n", len(t.Messages))
		fmt.Fprintf(&sb, "- **Parameters**: temperature %.2f, max tokens %d, top-p %.2f, frequency penalty %.2f, presence penalty %.2f\n",
			p.Temperature, p.MaxTokens, p.TopP, p.FrequencyPenalty, p.PresencePenalty)
		sb.WriteString("\n---\n\n")
	}

	sb.WriteString("## Conversation\n\n")

	for i, msg := range t.Messages {
		label := formatRoleLabel(msg.Role)
		if msg.Role == "assistant" && msg.Model != "" {
			label += " (" + msg.Model + ")"
		}
		if e.options.IncludeTimestamps {
			if ts, err := time.Parse(time.RFC3339Nano, msg.Timestamp); err == nil {
				fmt.Fprintf(&sb, "### %s <sub>%s</sub>\n\n", label, formatTimestamp(ts.Local()))
			} else {
				fmt.Fprintf(&sb, "### %s\n\n", label)
			}
		} else {
			fmt.Fprintf(&sb, "### %s\n\n", label)
		}

		sb.WriteString(strings.TrimSpace(msg.Message))
		sb.WriteString("\n\n")

		if i < len(t.Messages)-1 {
			sb.WriteString("---\n\n")
		}
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// formatRoleLabel returns a heading label for the message role.
func formatRoleLabel(role string) string {
	switch role {
	case "user":
		return "You"
	case "assistant":
		return "Assistant"
	case "":
		return "Unknown"
	default:
		runes := []rune(role)
		return strings.ToUpper(string(runes[0])) + string(runes[1:])
	}
}
