// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// MODEL INFO TYPE
// =============================================================================

// ModelInfo describes a selectable model. It is purely descriptive: no
// inference happens behind it.
type ModelInfo struct {
	// ID is the unique catalog identifier
	ID string `yaml:"id" json:"id"`

	// Name is the human-readable display name
	Name string `yaml:"name" json:"name"`

	// Description is a brief explanation of the model's strengths
	Description string `yaml:"description" json:"description"`

	// Provider identifies who provides the model (OpenAI, Anthropic, Google)
	Provider string `yaml:"provider" json:"provider"`

	// MaxTokens is the model's context window size
	MaxTokens int `yaml:"max_tokens" json:"max_tokens"`

	// Pricing is an optional display label such as "$0.03/1K tokens"
	Pricing string `yaml:"pricing,omitempty" json:"pricing,omitempty"`
}

var numberPrinter = message.NewPrinter(language.English)

// ContextString returns the context window formatted for display,
// e.g. "8,192 tokens".
func (m ModelInfo) ContextString() string {
	return numberPrinter.Sprintf("%d tokens", m.MaxTokens)
}

// PricingString returns the pricing label, or "n/a" when none is set.
func (m ModelInfo) PricingString() string {
	if m.Pricing == "" {
		return "n/a"
	}
	return m.Pricing
}

// =============================================================================
// CATALOG
// =============================================================================

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Catalog is the static set of models and prompt templates available to a
// session. Order is significant and preserved.
type Catalog struct {
	Models    []ModelInfo      `yaml:"models"`
	Templates []PromptTemplate `yaml:"templates"`
}

// DefaultCatalog returns the built-in catalog. It panics if the embedded
// document is invalid, which can only happen at development time.
func DefaultCatalog() Catalog {
	cat, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("model: embedded catalog is invalid: %v", err))
	}
	return cat
}

// ParseCatalog decodes and validates a YAML catalog document.
func ParseCatalog(data []byte) (Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return Catalog{}, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if err := cat.Validate(); err != nil {
		return Catalog{}, err
	}
	return cat, nil
}

// Validate checks catalog invariants: at least one model, non-empty unique
// IDs and positive context windows.
func (c Catalog) Validate() error {
	var errs []error

	if len(c.Models) == 0 {
		errs = append(errs, errors.New("catalog has no models"))
	}

	seen := make(map[string]bool, len(c.Models))
	for i, m := range c.Models {
		switch {
		case strings.TrimSpace(m.ID) == "":
			errs = append(errs, fmt.Errorf("model #%d: empty id", i))
		case seen[m.ID]:
			errs = append(errs, fmt.Errorf("model %q: duplicate id", m.ID))
		}
		seen[m.ID] = true
		if m.MaxTokens <= 0 {
			errs = append(errs, fmt.Errorf("model %q: max_tokens must be positive", m.ID))
		}
	}

	seen = make(map[string]bool, len(c.Templates))
	for i, t := range c.Templates {
		switch {
		case strings.TrimSpace(t.ID) == "":
			errs = append(errs, fmt.Errorf("template #%d: empty id", i))
		case seen[t.ID]:
			errs = append(errs, fmt.Errorf("template %q: duplicate id", t.ID))
		}
		seen[t.ID] = true
	}

	return errors.Join(errs...)
}

// FindModel returns the model with the given ID.
func (c Catalog) FindModel(id string) (ModelInfo, bool) {
	for _, m := range c.Models {
		if m.ID == id {
			return m, true
		}
	}
	return ModelInfo{}, false
}

// FindTemplate returns the template with the given ID.
func (c Catalog) FindTemplate(id string) (PromptTemplate, bool) {
	for _, t := range c.Templates {
		if t.ID == id {
			return t, true
		}
	}
	return PromptTemplate{}, false
}

// ModelIDs returns all model IDs in catalog order.
func (c Catalog) ModelIDs() []string {
	ids := make([]string, len(c.Models))
	for i, m := range c.Models {
		ids[i] = m.ID
	}
	return ids
}

// TemplateIDs returns all template IDs in catalog order.
func (c Catalog) TemplateIDs() []string {
	ids := make([]string, len(c.Templates))
	for i, t := range c.Templates {
		ids[i] = t.ID
	}
	return ids
}
