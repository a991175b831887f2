// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		generationsSubmitted,
		generationsRejected,
		generationsFailed,
		generationRetries,
		generationLatencyMs,
	)
}

// Rejection reasons.
const (
	ReasonEmpty = "empty"
	ReasonBusy  = "busy"
)

var (
	generationsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lumi_generations_submitted_total",
			Help: "Accepted prompt submissions per model.",
		},
		[]string{"model"},
	)

	generationsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lumi_generations_rejected_total",
			Help: "Submissions rejected by admission control, by reason.",
		},
		[]string{"reason"},
	)

	generationsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lumi_generations_failed_total",
			Help: "Generations that resolved with an error, per model.",
		},
		[]string{"model"},
	)

	generationRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lumi_generation_retries_total",
			Help: "Responder retries after rate limiting, per model.",
		},
		[]string{"model"},
	)

	generationLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lumi_generation_latency_ms",
			Help:    "Submit-to-reply latency in milliseconds.",
			Buckets: []float64{250, 500, 1000, 1500, 2000, 2500, 3000, 5000, 10000},
		},
		[]string{"model"},
	)
)

// GenerationSubmitted counts an accepted submission.
func GenerationSubmitted(model string) {
	generationsSubmitted.WithLabelValues(norm(model)).Inc()
}

// GenerationRejected counts a rejected submission.
func GenerationRejected(reason string) {
	generationsRejected.WithLabelValues(norm(reason)).Inc()
}

// GenerationRetried counts a retry.
func GenerationRetried(model string) {
	generationRetries.WithLabelValues(norm(model)).Inc()
}

// GenerationFinished records the outcome and latency of a generation.
func GenerationFinished(model string, latency time.Duration, err error) {
	if err != nil {
		generationsFailed.WithLabelValues(norm(model)).Inc()
		return
	}
	generationLatencyMs.WithLabelValues(norm(model)).Observe(float64(latency.Milliseconds()))
}
