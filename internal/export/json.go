// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/jeranaias/lumi-tui/internal/model"
	"github.com/jeranaias/lumi-tui/internal/util"
)

// =============================================================================
// MESSAGE RECORD
// =============================================================================

// MessageRecord is the download format of a single message.
type MessageRecord struct {
	Message   string `json:"message"`
	Role      string `json:"role"`
	Timestamp string `json:"timestamp"`
	Model     string `json:"model,omitempty"`
}

// NewMessageRecord converts a message to its download format.
func NewMessageRecord(m model.Message) MessageRecord {
	return MessageRecord{
		Message:   m.Content,
		Role:      string(m.Role),
		Timestamp: m.Timestamp.UTC().Format(time.RFC3339Nano),
		Model:     m.ModelID,
	}
}

// MessageFilename returns the download file name for a message.
func MessageFilename(m model.Message) string {
	return fmt.Sprintf("ai-message-%s.json", sanitizeFilename(m.ID))
}

// Message writes a single message as JSON into dir and returns the path.
func Message(m model.Message, dir string) (string, error) {
	data, err := json.MarshalIndent(NewMessageRecord(m), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode message: %w", err)
	}
	path := filepath.Join(outputDir(dir), MessageFilename(m))
	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter exports transcripts to JSON.
type JSONExporter struct{}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Export converts a transcript to indented JSON.
func (e *JSONExporter) Export(t *Transcript) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("transcript is nil")
	}
	if len(t.Messages) == 0 {
		return nil, ErrEmptyTranscript
	}
	return json.MarshalIndent(t, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
