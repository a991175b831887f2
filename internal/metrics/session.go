// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(messagesAppended, themeToggles, modelSelections)
}

var (
	messagesAppended = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lumi_messages_appended_total",
			Help: "Transcript messages appended, by role.",
		},
		[]string{"role"},
	)

	themeToggles = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "lumi_theme_toggles_total",
			Help: "Theme changes.",
		},
	)

	modelSelections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lumi_model_selections_total",
			Help: "Successful model selections, by model.",
		},
		[]string{"model"},
	)
)

// MessageAppended counts a transcript append.
func MessageAppended(role string) {
	messagesAppended.WithLabelValues(norm(role)).Inc()
}

// ThemeToggled counts a theme change.
func ThemeToggled() {
	themeToggles.Inc()
}

// ModelSelected counts a model selection.
func ModelSelected(model string) {
	modelSelections.WithLabelValues(norm(model)).Inc()
}
