// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// =============================================================================
// BUSY INDICATOR
// =============================================================================

// SpinnerConfig is a frame set for the busy indicator shown while a reply is
// pending.
type SpinnerConfig struct {
	Frames []string
	FPS    int
}

// DotsSpinner is the default "Thinking..." indicator.
var DotsSpinner = SpinnerConfig{
	Frames: []string{".  ", ".. ", "...", " ..", "  .", "   "},
	FPS:    6,
}

// Interval is the time each frame stays on screen.
func (s SpinnerConfig) Interval() time.Duration {
	if s.FPS <= 0 {
		return time.Second
	}
	return time.Second / time.Duration(s.FPS)
}

// Spinner adapts the frame set to a bubbles spinner.
func (s SpinnerConfig) Spinner() spinner.Spinner {
	return spinner.Spinner{Frames: s.Frames, FPS: s.Interval()}
}
