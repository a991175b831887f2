// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package generation

import (
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/jeranaias/lumi-tui/internal/metrics"
	"github.com/jeranaias/lumi-tui/internal/model"
	"github.com/jeranaias/lumi-tui/internal/store"
)

// Default delay bounds for a simulated completion.
const (
	DefaultMinDelay = 1500 * time.Millisecond
	DefaultMaxDelay = 2500 * time.Millisecond
)

// =============================================================================
// RETRY POLICY
// =============================================================================

// RetryPolicy bounds retries of rate-limited responder calls.
type RetryPolicy struct {
	// MaxAttempts is the total number of responder calls, including the
	// first. Values below 1 mean 1.
	MaxAttempts int

	// BaseDelay is the wait before the first retry; each further retry
	// doubles it.
	BaseDelay time.Duration
}

// DefaultRetryPolicy returns three attempts starting at 500ms.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: 500 * time.Millisecond}
}

// maxBackoff caps a single retry wait.
const maxBackoff = 30 * time.Second

// Backoff returns the wait before retry number attempt (1-based).
func (r RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := r.BaseDelay
	for i := 1; i < attempt && d < maxBackoff; i++ {
		d *= 2
	}
	return min(d, maxBackoff)
}

func (r RetryPolicy) attempts() int {
	return max(r.MaxAttempts, 1)
}

// =============================================================================
// PIPELINE
// =============================================================================

// Options configures a Pipeline. Zero values select defaults.
type Options struct {
	MinDelay  time.Duration
	MaxDelay  time.Duration
	Scheduler Scheduler
	Responder Responder
	Retry     RetryPolicy
	Logger    *log.Logger
}

// Pipeline submits drafts from a store and completes them asynchronously.
type Pipeline struct {
	store     *store.Store
	minDelay  time.Duration
	maxDelay  time.Duration
	scheduler Scheduler
	responder Responder
	retry     RetryPolicy
	logger    *log.Logger
}

// New creates a pipeline bound to st.
func New(st *store.Store, opts Options) *Pipeline {
	p := &Pipeline{
		store:     st,
		minDelay:  opts.MinDelay,
		maxDelay:  opts.MaxDelay,
		scheduler: opts.Scheduler,
		responder: opts.Responder,
		retry:     opts.Retry,
		logger:    opts.Logger,
	}
	if p.minDelay <= 0 && p.maxDelay <= 0 {
		p.minDelay, p.maxDelay = DefaultMinDelay, DefaultMaxDelay
	}
	if p.maxDelay < p.minDelay {
		p.maxDelay = p.minDelay
	}
	if p.scheduler == nil {
		p.scheduler = TimerScheduler{}
	}
	if p.responder == nil {
		p.responder = CannedResponder{}
	}
	if p.retry.MaxAttempts == 0 {
		p.retry = DefaultRetryPolicy()
	}
	if p.logger == nil {
		p.logger = log.New(io.Discard)
	}
	return p
}

// Store returns the store the pipeline drives.
func (p *Pipeline) Store() *store.Store {
	return p.store
}

// Submit starts a generation from the current draft. It is a no-op
// returning (nil, false) when the trimmed draft is empty or a generation is
// already in flight.
func (p *Pipeline) Submit() (*Generation, bool) {
	userMsg, err := p.store.BeginGeneration()
	if err != nil {
		reason := metrics.ReasonBusy
		if errors.Is(err, store.ErrEmptyPrompt) {
			reason = metrics.ReasonEmpty
		}
		metrics.GenerationRejected(reason)
		p.logger.Debug("submit rejected", "reason", reason)
		return nil, false
	}

	delay := p.nextDelay()
	gen := &Generation{
		ID:          uuid.NewString(),
		UserMessage: userMsg,
		Delay:       delay,
		started:     time.Now(),
		done:        make(chan struct{}),
	}
	req := Request{
		Prompt:     userMsg.Content,
		ModelID:    userMsg.ModelID,
		Parameters: p.store.Parameters(),
		History:    p.store.Messages(),
	}

	metrics.GenerationSubmitted(userMsg.ModelID)
	p.logger.Debug("generation scheduled",
		"generation", gen.ID, "model", userMsg.ModelID, "delay", delay)

	p.scheduler.AfterFunc(delay, func() { p.complete(gen, req, 1) })
	return gen, true
}

// SubmitText replaces the draft with text and submits it.
func (p *Pipeline) SubmitText(text string) (*Generation, bool) {
	p.store.SetDraft(text)
	return p.Submit()
}

// nextDelay draws uniformly from [minDelay, maxDelay).
func (p *Pipeline) nextDelay() time.Duration {
	span := p.maxDelay - p.minDelay
	if span <= 0 {
		return p.minDelay
	}
	return p.minDelay + rand.N(span)
}

func (p *Pipeline) complete(gen *Generation, req Request, attempt int) {
	reply, err := p.responder.Respond(context.Background(), req)
	if err != nil {
		if errors.Is(err, ErrRateLimited) && attempt < p.retry.attempts() {
			wait := p.retry.Backoff(attempt)
			metrics.GenerationRetried(req.ModelID)
			p.logger.Warn("responder rate limited, retrying",
				"generation", gen.ID, "attempt", attempt, "wait", wait)
			p.scheduler.AfterFunc(wait, func() { p.complete(gen, req, attempt+1) })
			return
		}

		p.store.SetLoading(false)
		metrics.GenerationFinished(req.ModelID, time.Since(gen.started), err)
		p.logger.Error("generation failed", "generation", gen.ID, "attempts", attempt, "err", err)
		gen.resolve(model.Message{}, err)
		return
	}

	msg := p.store.CompleteGeneration(reply, req.ModelID)
	metrics.GenerationFinished(req.ModelID, time.Since(gen.started), nil)
	p.logger.Debug("generation complete", "generation", gen.ID, "message", msg.ID)
	gen.resolve(msg, nil)
}

// =============================================================================
// GENERATION
// =============================================================================

// Generation is the handle for one accepted submission.
type Generation struct {
	ID          string
	UserMessage model.Message
	Delay       time.Duration

	started time.Time
	done    chan struct{}
	once    sync.Once

	mu    sync.Mutex
	reply model.Message
	err   error
}

func (g *Generation) resolve(reply model.Message, err error) {
	g.once.Do(func() {
		g.mu.Lock()
		g.reply, g.err = reply, err
		g.mu.Unlock()
		close(g.done)
	})
}

// Done is closed when the generation has resolved.
func (g *Generation) Done() <-chan struct{} {
	return g.done
}

// Wait blocks until the generation resolves or ctx is done.
func (g *Generation) Wait(ctx context.Context) (model.Message, error) {
	select {
	case <-g.done:
		return g.Reply()
	case <-ctx.Done():
		return model.Message{}, ctx.Err()
	}
}

// Reply returns the assistant message and error once resolved. Before
// resolution it returns a zero message and a nil error.
func (g *Generation) Reply() (model.Message, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reply, g.err
}

// Resolved reports whether the generation has finished.
func (g *Generation) Resolved() bool {
	select {
	case <-g.done:
		return true
	default:
		return false
	}
}
