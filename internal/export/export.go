// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/lumi-tui/internal/model"
	"github.com/jeranaias/lumi-tui/internal/store"
	"github.com/jeranaias/lumi-tui/internal/util"
)

// ErrEmptyTranscript is returned when exporting a transcript with no
// messages.
var ErrEmptyTranscript = errors.New("transcript has no messages")

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Transcript is the exportable view of a session.
type Transcript struct {
	SessionID  string           `json:"session_id"`
	Model      string           `json:"model"`
	Parameters model.Parameters `json:"parameters"`
	ExportedAt time.Time        `json:"exported_at"`
	Messages   []MessageRecord  `json:"messages"`
}

// FromSnapshot builds a transcript from a store snapshot.
func FromSnapshot(snap store.Snapshot) *Transcript {
	t := &Transcript{
		SessionID:  snap.SessionID,
		Model:      snap.SelectedModel.ID,
		Parameters: snap.Parameters,
		ExportedAt: time.Now(),
		Messages:   make([]MessageRecord, len(snap.Messages)),
	}
	for i, m := range snap.Messages {
		t.Messages[i] = NewMessageRecord(m)
	}
	return t
}

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter renders a transcript in one format.
type Exporter interface {
	// Export converts a transcript to the target format.
	Export(t *Transcript) ([]byte, error)

	// FileExtension returns the file extension (e.g., ".md").
	FileExtension() string

	// MimeType returns the MIME type for the format.
	MimeType() string
}

// ExporterFor returns the exporter for a format name ("json", "md",
// "markdown").
func ExporterFor(format string, opts *Options) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "md", "markdown":
		return NewMarkdownExporter(opts), nil
	case "json":
		return NewJSONExporter(), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q (want json or md)", format)
	}
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is the directory where files will be saved (default ".")
	OutputDir string

	// IncludeMetadata adds a session header to Markdown output
	IncludeMetadata bool

	// IncludeTimestamps adds per-message times to Markdown output
	IncludeTimestamps bool
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:         ".",
		IncludeMetadata:   true,
		IncludeTimestamps: true,
	}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ToFile exports a transcript and returns the output path.
func ToFile(t *Transcript, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	content, err := exporter.Export(t)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	filename := fmt.Sprintf("lumi-transcript_%s_%s%s",
		sanitizeFilename(shortID(t.SessionID)),
		t.ExportedAt.Format("20060102_150405"),
		exporter.FileExtension(),
	)
	outputPath := filepath.Join(outputDir(opts.OutputDir), filename)
	if err := util.AtomicWriteFile(outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return outputPath, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func outputDir(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// sanitizeFilename removes or replaces characters that are invalid in
// filenames.
func sanitizeFilename(s string) string {
	runes := []rune(s)
	if len(runes) > 50 {
		runes = runes[:50]
	}

	result := make([]rune, 0, len(runes))
	for _, r := range runes {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			result = append(result, '-')
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			result = append(result, '_')
		case r < 32 || r == 127:
			result = append(result, '-')
		default:
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return "session"
	}
	return string(result)
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
