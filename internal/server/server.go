// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jeranaias/lumi-tui/internal/metrics"
	"github.com/jeranaias/lumi-tui/internal/model"
	"github.com/jeranaias/lumi-tui/internal/store"
)

// DefaultAddr is used when Options.Addr is empty.
const DefaultAddr = "127.0.0.1:9464"

// ============================================================================
// SERVER
// ============================================================================

// Options configures a Server.
type Options struct {
	// Addr is the listen address (default DefaultAddr)
	Addr string

	// Store is the session to inspect (required)
	Store *store.Store

	// Version is reported by /health
	Version string

	// RateLimit is requests per second per client IP (<= 0 disables)
	RateLimit float64

	// Burst is the rate limiter bucket size
	Burst int

	// Logger receives request and lifecycle logs (default: discard)
	Logger *log.Logger
}

// Server is the HTTP inspection server.
type Server struct {
	addr    string
	store   *store.Store
	version string
	started time.Time
	logger  *log.Logger
	limiter *RateLimiter

	router chi.Router
	server *http.Server
}

// New creates a Server and registers the metrics collectors.
func New(opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	s := &Server{
		addr:    opts.Addr,
		store:   opts.Store,
		version: opts.Version,
		started: time.Now(),
		logger:  opts.Logger,
		limiter: NewRateLimiter(opts.RateLimit, opts.Burst),
	}

	metrics.MustRegister()
	s.setupRoutes()
	return s
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Handler returns the root handler including middleware.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ============================================================================
// ROUTES
// ============================================================================

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(
		RecoveryMiddleware(s.logger),
		SecurityHeadersMiddleware(),
		LoggingMiddleware(s.logger),
		RateLimitMiddleware(s.limiter, s.logger),
	)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/models", s.handleModels)
		r.Get("/models/{id}", s.handleModel)
		r.Get("/templates", s.handleTemplates)
		r.Get("/session", s.handleSession)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	s.router = r
}

// ============================================================================
// HEALTH HANDLER
// ============================================================================

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version,omitempty"`
	Uptime    string `json:"uptime"`
	SessionID string `json:"session_id"`
	Messages  int    `json:"messages"`
	Loading   bool   `json:"loading"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Version:   s.version,
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		SessionID: s.store.SessionID(),
		Messages:  s.store.MessageCount(),
		Loading:   s.store.Loading(),
	})
}

// ============================================================================
// CATALOG HANDLERS
// ============================================================================

// ModelEntry is a catalog model with its selection state.
type ModelEntry struct {
	model.ModelInfo
	Selected bool `json:"selected"`
}

// ModelsResponse lists the model catalog.
type ModelsResponse struct {
	Object string       `json:"object"`
	Data   []ModelEntry `json:"data"`
}

func (s *Server) handleModels(w http.ResponseWriter, _ *http.Request) {
	selected := s.store.SelectedModel().ID
	models := s.store.Models()

	resp := ModelsResponse{Object: "list", Data: make([]ModelEntry, len(models))}
	for i, m := range models {
		resp.Data[i] = ModelEntry{ModelInfo: m, Selected: m.ID == selected}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	selected := s.store.SelectedModel().ID
	for _, m := range s.store.Models() {
		if m.ID == id {
			s.writeJSON(w, http.StatusOK, ModelEntry{ModelInfo: m, Selected: m.ID == selected})
			return
		}
	}
	writeError(w, http.StatusNotFound, "unknown model "+id)
}

// TemplatesResponse lists the prompt templates.
type TemplatesResponse struct {
	Object string                 `json:"object"`
	Data   []model.PromptTemplate `json:"data"`
}

func (s *Server) handleTemplates(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, TemplatesResponse{Object: "list", Data: s.store.Templates()})
}

// ============================================================================
// SESSION HANDLER
// ============================================================================

// MessageSummary is a message without its content.
type MessageSummary struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Timestamp time.Time `json:"timestamp"`
	Model     string    `json:"model,omitempty"`
	Chars     int       `json:"chars"`
}

// SessionResponse is the session snapshot served by /v1/session.
type SessionResponse struct {
	SessionID  string           `json:"session_id"`
	Model      string           `json:"model"`
	Template   string           `json:"template,omitempty"`
	DraftChars int              `json:"draft_chars"`
	Loading    bool             `json:"loading"`
	Theme      string           `json:"theme"`
	Parameters model.Parameters `json:"parameters"`
	Messages   []MessageSummary `json:"messages"`
}

func (s *Server) handleSession(w http.ResponseWriter, _ *http.Request) {
	snap := s.store.Snapshot()

	resp := SessionResponse{
		SessionID:  snap.SessionID,
		Model:      snap.SelectedModel.ID,
		DraftChars: len([]rune(snap.Draft)),
		Loading:    snap.Loading,
		Theme:      "light",
		Parameters: snap.Parameters,
		Messages:   make([]MessageSummary, len(snap.Messages)),
	}
	if snap.DarkMode {
		resp.Theme = "dark"
	}
	if snap.SelectedTemplate != nil {
		resp.Template = snap.SelectedTemplate.ID
	}
	for i, m := range snap.Messages {
		resp.Messages[i] = MessageSummary{
			ID:        m.ID,
			Role:      m.Role.String(),
			Timestamp: m.Timestamp,
			Model:     m.ModelID,
			Chars:     len([]rune(m.Content)),
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// Start listens and serves until Shutdown. It returns nil after a clean
// shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("inspection server listening", "addr", s.addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	s.logger.Debug("inspection server shutting down")
	return s.server.Shutdown(ctx)
}

// ============================================================================
// HELPERS
// ============================================================================

// writeJSON encodes v before touching the response, so an unencodable value
// becomes a 500 instead of an empty 200.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("failed to encode response", "status", status, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}
	writeBody(w, status, body)
}

func writeBody(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	var resp ErrorResponse
	resp.Error.Message = message
	resp.Error.Code = status
	body, _ := json.Marshal(resp)
	writeBody(w, status, body)
}
