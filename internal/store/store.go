// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/jeranaias/lumi-tui/internal/metrics"
	"github.com/jeranaias/lumi-tui/internal/model"
	"github.com/jeranaias/lumi-tui/internal/prefs"
)

// ThemeKey is the preference key holding the dark-mode flag as JSON text.
const ThemeKey = "ai-theme"

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrEmptyPrompt is returned by BeginGeneration when the trimmed draft
	// is empty.
	ErrEmptyPrompt = errors.New("prompt is empty")

	// ErrBusy is returned by BeginGeneration while a generation is in
	// flight.
	ErrBusy = errors.New("a generation is already in progress")
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures a Store. The zero value is usable.
type Options struct {
	// Catalog is the model and template catalog (default: model.DefaultCatalog)
	Catalog *model.Catalog

	// DefaultModel is the initially selected model ID. Unknown or empty
	// selects the first catalog entry.
	DefaultModel string

	// ClampParameters forces UpdateParameters to clamp values into their
	// declared ranges.
	ClampParameters bool

	// Prefs persists the theme flag (default: in-memory)
	Prefs prefs.KV

	// Logger receives debug and warning output (default: discard)
	Logger *log.Logger

	// Now overrides the clock used for message timestamps
	Now func() time.Time
}

// =============================================================================
// STORE
// =============================================================================

// Store is the single source of truth for a session.
type Store struct {
	mu sync.RWMutex

	sessionID string
	catalog   model.Catalog

	selectedModel    int
	selectedTemplate int // -1 when none

	messages []model.Message
	params   model.Parameters
	draft    string
	loading  bool
	darkMode bool
	clamp    bool

	// Message ID generation
	entropy io.Reader
	lastMs  uint64

	prefs  prefs.KV
	logger *log.Logger
	now    func() time.Time
}

// New creates a store, reading the persisted theme flag. An absent or
// unparsable flag yields the light theme.
func New(opts Options) (*Store, error) {
	cat := model.DefaultCatalog()
	if opts.Catalog != nil {
		if err := opts.Catalog.Validate(); err != nil {
			return nil, fmt.Errorf("invalid catalog: %w", err)
		}
		cat = *opts.Catalog
	}

	s := &Store{
		sessionID:        uuid.NewString(),
		catalog:          cat,
		selectedTemplate: -1,
		params:           model.DefaultParameters(),
		clamp:            opts.ClampParameters,
		entropy:          ulid.Monotonic(rand.Reader, 0),
		prefs:            opts.Prefs,
		logger:           opts.Logger,
		now:              opts.Now,
	}
	if s.prefs == nil {
		s.prefs = prefs.NewMemory()
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if s.now == nil {
		s.now = time.Now
	}

	if opts.DefaultModel != "" {
		if i := s.modelIndex(opts.DefaultModel); i >= 0 {
			s.selectedModel = i
		} else {
			s.logger.Warn("unknown default model, using first catalog entry",
				"model", opts.DefaultModel, "fallback", cat.Models[0].ID)
		}
	}

	s.darkMode = s.readTheme()
	return s, nil
}

// SessionID returns the unique identifier of this session.
func (s *Store) SessionID() string {
	return s.sessionID
}

// =============================================================================
// MODELS
// =============================================================================

// Models returns the model catalog in insertion order.
func (s *Store) Models() []model.ModelInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ModelInfo, len(s.catalog.Models))
	copy(out, s.catalog.Models)
	return out
}

// SelectModel selects the catalog entry with the given ID. Unknown IDs
// leave the selection unchanged and return false.
func (s *Store) SelectModel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.modelIndex(id)
	if i < 0 {
		s.logger.Debug("ignoring unknown model", "model", id)
		return false
	}
	s.selectedModel = i
	metrics.ModelSelected(id)
	s.logger.Debug("model selected", "model", id)
	return true
}

// SelectedModel returns the selected model.
func (s *Store) SelectedModel() model.ModelInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog.Models[s.selectedModel]
}

func (s *Store) modelIndex(id string) int {
	for i, m := range s.catalog.Models {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// =============================================================================
// TEMPLATES
// =============================================================================

// Templates returns the template catalog in insertion order.
func (s *Store) Templates() []model.PromptTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.PromptTemplate, len(s.catalog.Templates))
	copy(out, s.catalog.Templates)
	return out
}

// SelectTemplate selects the template with the given ID. An empty ID clears
// the selection. Unknown IDs leave the selection unchanged and return false.
func (s *Store) SelectTemplate(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectTemplateLocked(id)
}

func (s *Store) selectTemplateLocked(id string) bool {
	if id == "" {
		s.selectedTemplate = -1
		return true
	}
	i := s.templateIndex(id)
	if i < 0 {
		s.logger.Debug("ignoring unknown template", "template", id)
		return false
	}
	s.selectedTemplate = i
	return true
}

// ClearTemplate clears the template selection.
func (s *Store) ClearTemplate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedTemplate = -1
}

// SelectedTemplate returns the selected template, if any.
func (s *Store) SelectedTemplate() (model.PromptTemplate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selectedTemplate < 0 {
		return model.PromptTemplate{}, false
	}
	return s.catalog.Templates[s.selectedTemplate], true
}

// LoadTemplate selects a template and replaces the draft with its content.
// Unknown IDs change nothing.
func (s *Store) LoadTemplate(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" || !s.selectTemplateLocked(id) {
		return false
	}
	s.draft = s.catalog.Templates[s.selectedTemplate].Content
	return true
}

// UnloadTemplate clears the template selection and the draft.
func (s *Store) UnloadTemplate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedTemplate = -1
	s.draft = ""
}

func (s *Store) templateIndex(id string) int {
	for i, t := range s.catalog.Templates {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// =============================================================================
// DRAFT
// =============================================================================

// SetDraft replaces the draft prompt verbatim.
func (s *Store) SetDraft(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = text
}

// Draft returns the draft prompt.
func (s *Store) Draft() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.draft
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// AddMessage appends a new message and returns it. Its ID sorts after every
// previous ID and its timestamp is the call instant.
func (s *Store) AddMessage(role model.Role, content, modelID string) model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addMessageLocked(role, content, modelID)
}

func (s *Store) addMessageLocked(role model.Role, content, modelID string) model.Message {
	now := s.now()
	msg := model.Message{
		ID:        s.nextIDLocked(now),
		Role:      role,
		Content:   content,
		Timestamp: now,
		ModelID:   modelID,
	}
	s.messages = append(s.messages, msg)
	metrics.MessageAppended(string(role))
	return msg
}

// nextIDLocked returns a ULID strictly greater than every previous one.
// The timestamp component never moves backwards, and the monotonic entropy
// source increments within the same millisecond.
func (s *Store) nextIDLocked(now time.Time) string {
	ms := ulid.Timestamp(now)
	if ms < s.lastMs {
		ms = s.lastMs
	}
	for {
		id, err := ulid.New(ms, s.entropy)
		if err == nil {
			s.lastMs = ms
			return id.String()
		}
		// Entropy overflow within one millisecond
		ms++
	}
}

// Messages returns a copy of the transcript in creation order.
func (s *Store) Messages() []model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// MessageCount returns the transcript length.
func (s *Store) MessageCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// LastMessage returns the most recent message with the given role.
func (s *Store) LastMessage(role model.Role) (model.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Role == role {
			return s.messages[i], true
		}
	}
	return model.Message{}, false
}

// FindMessage returns the message with the given ID.
func (s *Store) FindMessage(id string) (model.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.messages {
		if m.ID == id {
			return m, true
		}
	}
	return model.Message{}, false
}

// ClearMessages empties the transcript. The busy flag and draft are
// untouched.
func (s *Store) ClearMessages() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
}

// =============================================================================
// PARAMETERS
// =============================================================================

// Parameters returns the current generation parameters.
func (s *Store) Parameters() model.Parameters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// UpdateParameters merges the set fields of u. Values are stored as given
// unless the store was configured with ClampParameters.
func (s *Store) UpdateParameters(u model.ParameterUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Apply(&s.params)
	if s.clamp {
		s.params = s.params.Clamp()
	}
}

// ResetParameters restores the default parameters.
func (s *Store) ResetParameters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = model.DefaultParameters()
}

// =============================================================================
// LOADING FLAG
// =============================================================================

// SetLoading sets the busy flag. It performs no admission check; see
// BeginGeneration.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

// Loading reports whether a generation is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// BeginGeneration admits a generation in one critical section: if the
// trimmed draft is non-empty and no generation is in flight, it clears the
// draft, appends the user message for the selected model and sets the busy
// flag. Otherwise nothing changes and ErrEmptyPrompt or ErrBusy is returned.
func (s *Store) BeginGeneration() (model.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text := strings.TrimSpace(s.draft)
	if text == "" {
		return model.Message{}, ErrEmptyPrompt
	}
	if s.loading {
		return model.Message{}, ErrBusy
	}

	s.draft = ""
	msg := s.addMessageLocked(model.RoleUser, text, s.catalog.Models[s.selectedModel].ID)
	s.loading = true
	return msg, nil
}

// CompleteGeneration appends the assistant reply and clears the busy flag.
func (s *Store) CompleteGeneration(reply, modelID string) model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.addMessageLocked(model.RoleAssistant, reply, modelID)
	s.loading = false
	return msg
}

// =============================================================================
// THEME
// =============================================================================

// DarkMode reports whether the dark theme is active.
func (s *Store) DarkMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.darkMode
}

// ToggleTheme flips the theme flag and persists it. The in-memory flag
// changes even if persisting fails.
func (s *Store) ToggleTheme() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setThemeLocked(!s.darkMode)
}

// SetTheme sets the theme flag and persists it. The in-memory flag changes
// even if persisting fails.
func (s *Store) SetTheme(dark bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setThemeLocked(dark)
}

func (s *Store) setThemeLocked(dark bool) error {
	s.darkMode = dark
	metrics.ThemeToggled()

	value, _ := json.Marshal(dark)
	if err := s.prefs.Set(context.Background(), ThemeKey, string(value)); err != nil {
		s.logger.Error("failed to persist theme", "dark", dark, "err", err)
		return fmt.Errorf("failed to persist theme: %w", err)
	}
	return nil
}

func (s *Store) readTheme() bool {
	raw, found, err := s.prefs.Get(context.Background(), ThemeKey)
	if err != nil {
		s.logger.Warn("failed to read theme, using light", "err", err)
		return false
	}
	if !found {
		return false
	}
	var dark bool
	if err := json.Unmarshal([]byte(raw), &dark); err != nil {
		s.logger.Warn("ignoring malformed theme value", "value", raw)
		return false
	}
	return dark
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// Snapshot is a consistent copy of the whole session state.
type Snapshot struct {
	SessionID        string
	SelectedModel    model.ModelInfo
	SelectedTemplate *model.PromptTemplate
	Draft            string
	Loading          bool
	DarkMode         bool
	Parameters       model.Parameters
	Messages         []model.Message
}

// Snapshot reads all state in one critical section.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		SessionID:     s.sessionID,
		SelectedModel: s.catalog.Models[s.selectedModel],
		Draft:         s.draft,
		Loading:       s.loading,
		DarkMode:      s.darkMode,
		Parameters:    s.params,
		Messages:      make([]model.Message, len(s.messages)),
	}
	copy(snap.Messages, s.messages)
	if s.selectedTemplate >= 0 {
		t := s.catalog.Templates[s.selectedTemplate]
		snap.SelectedTemplate = &t
	}
	return snap
}
