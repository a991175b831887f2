// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package generation

import (
	"context"
	"errors"
	"math/rand/v2"

	"github.com/jeranaias/lumi-tui/internal/model"
)

// ErrRateLimited marks a responder error as retryable after a backoff.
var ErrRateLimited = errors.New("rate limited")

// Request is everything a responder may use to produce a reply.
type Request struct {
	Prompt     string
	ModelID    string
	Parameters model.Parameters

	// History is the transcript up to and including the user message.
	History []model.Message
}

// Responder produces the assistant reply for a request.
type Responder interface {
	Respond(ctx context.Context, req Request) (string, error)
}

// ResponderFunc adapts a function to the Responder interface.
type ResponderFunc func(ctx context.Context, req Request) (string, error)

// Respond implements Responder.
func (f ResponderFunc) Respond(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// =============================================================================
// CANNED RESPONDER
// =============================================================================

// CannedResponses are the fixed replies of the simulated backend.
var CannedResponses = []string{
	"I understand your request. Let me help you with that. This is a simulated response from the AI interface demonstrating how the chat functionality works.",
	"That's an interesting question! In a real implementation, this would connect to the actual AI model you've selected. The parameters you've set would influence the response style and length.",
	"Perfect! I can see you're testing the AI interface. The design looks great with the sidebar for model selection and parameters, plus this clean chat area for conversations.",
	"Great prompt! This AI interface includes all the requested features: model selection, parameter controls, template management, and a responsive chat interface with theme switching capabilities.",
	"Excellent! The interface successfully demonstrates the key components: model selection, parameter tuning, prompt templates, and a chat transcript with proper state management through a shared session store.",
}

// CannedResponder picks a reply uniformly from CannedResponses. It never
// fails.
type CannedResponder struct {
	// Pick returns an index in [0, n). Defaults to math/rand/v2.IntN.
	Pick func(n int) int
}

// Respond implements Responder.
func (c CannedResponder) Respond(_ context.Context, _ Request) (string, error) {
	pick := c.Pick
	if pick == nil {
		pick = rand.IntN
	}
	return CannedResponses[pick(len(CannedResponses))], nil
}

// IsCanned reports whether s is one of the canned replies.
func IsCanned(s string) bool {
	for _, r := range CannedResponses {
		if r == s {
			return true
		}
	}
	return false
}
