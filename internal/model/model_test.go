// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"math"
	"reflect"
	"strings"
	"testing"
)

// =============================================================================
// CATALOG TESTS
// =============================================================================

func TestDefaultCatalog(t *testing.T) {
	cat := DefaultCatalog()

	wantModels := []string{"gpt-4", "gpt-3.5-turbo", "claude-3-opus", "claude-3-sonnet", "gemini-pro"}
	if got := cat.ModelIDs(); !reflect.DeepEqual(got, wantModels) {
		t.Errorf("ModelIDs() = %v, want %v", got, wantModels)
	}

	wantTemplates := []string{"code-review", "creative-writing", "data-analysis", "email-draft", "brainstorm"}
	if got := cat.TemplateIDs(); !reflect.DeepEqual(got, wantTemplates) {
		t.Errorf("TemplateIDs() = %v, want %v", got, wantTemplates)
	}

	for _, m := range cat.Models {
		if m.Name == "" || m.Provider == "" {
			t.Errorf("model %s missing name or provider", m.ID)
		}
	}
	for _, tmpl := range cat.Templates {
		if strings.TrimSpace(tmpl.Content) == "" {
			t.Errorf("template %s has empty content", tmpl.ID)
		}
	}
}

func TestCatalog_FindModel(t *testing.T) {
	cat := DefaultCatalog()

	m, ok := cat.FindModel("gpt-4")
	if !ok {
		t.Fatal("FindModel(gpt-4) not found")
	}
	if m.MaxTokens != 8192 {
		t.Errorf("gpt-4 MaxTokens = %d, want 8192", m.MaxTokens)
	}

	if _, ok := cat.FindModel("nonexistent"); ok {
		t.Error("FindModel(nonexistent) should not be found")
	}
}

func TestCatalog_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cat     Catalog
		wantErr string
	}{
		{
			name:    "no models",
			cat:     Catalog{},
			wantErr: "no models",
		},
		{
			name:    "empty id",
			cat:     Catalog{Models: []ModelInfo{{ID: " ", MaxTokens: 1}}},
			wantErr: "empty id",
		},
		{
			name: "duplicate model",
			cat: Catalog{Models: []ModelInfo{
				{ID: "a", MaxTokens: 1},
				{ID: "a", MaxTokens: 1},
			}},
			wantErr: "duplicate id",
		},
		{
			name:    "non-positive max tokens",
			cat:     Catalog{Models: []ModelInfo{{ID: "a"}}},
			wantErr: "max_tokens must be positive",
		},
		{
			name: "duplicate template",
			cat: Catalog{
				Models:    []ModelInfo{{ID: "a", MaxTokens: 1}},
				Templates: []PromptTemplate{{ID: "t"}, {ID: "t"}},
			},
			wantErr: "template \"t\": duplicate id",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cat.Validate()
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Validate() = %q, want to contain %q", err, tc.wantErr)
			}
		})
	}
}

func TestParseCatalog_Invalid(t *testing.T) {
	if _, err := ParseCatalog([]byte("models: [")); err == nil {
		t.Error("expected decode error")
	}
	if _, err := ParseCatalog([]byte("models: []")); err == nil {
		t.Error("expected validation error for empty catalog")
	}
}

// =============================================================================
// MODEL INFO TESTS
// =============================================================================

func TestModelInfo_ContextString(t *testing.T) {
	tests := []struct {
		tokens int
		want   string
	}{
		{8192, "8,192 tokens"},
		{2048, "2,048 tokens"},
		{512, "512 tokens"},
	}
	for _, tc := range tests {
		if got := (ModelInfo{MaxTokens: tc.tokens}).ContextString(); got != tc.want {
			t.Errorf("ContextString(%d) = %q, want %q", tc.tokens, got, tc.want)
		}
	}
}

func TestModelInfo_PricingString(t *testing.T) {
	if got := (ModelInfo{}).PricingString(); got != "n/a" {
		t.Errorf("PricingString() = %q, want n/a", got)
	}
	if got := (ModelInfo{Pricing: "$0.03/1K tokens"}).PricingString(); got != "$0.03/1K tokens" {
		t.Errorf("PricingString() = %q", got)
	}
}

// =============================================================================
// TEMPLATE TESTS
// =============================================================================

func TestPromptTemplate_Placeholders(t *testing.T) {
	tmpl := PromptTemplate{Content: "Review {language} code:\n{code}\nAgain in {language}. {not valid}"}
	want := []string{"language", "code"}
	if got := tmpl.Placeholders(); !reflect.DeepEqual(got, want) {
		t.Errorf("Placeholders() = %v, want %v", got, want)
	}

	if got := (PromptTemplate{Content: "plain"}).Placeholders(); len(got) != 0 {
		t.Errorf("Placeholders() = %v, want none", got)
	}
}

// =============================================================================
// ROLE TESTS
// =============================================================================

func TestRole(t *testing.T) {
	if !RoleUser.Valid() || !RoleAssistant.Valid() {
		t.Error("known roles should be valid")
	}
	if Role("system").Valid() {
		t.Error("system should not be a valid role")
	}
	if RoleUser.DisplayName() != "You" {
		t.Errorf("RoleUser.DisplayName() = %q", RoleUser.DisplayName())
	}
	if RoleAssistant.DisplayName() != "Assistant" {
		t.Errorf("RoleAssistant.DisplayName() = %q", RoleAssistant.DisplayName())
	}
}

// =============================================================================
// PARAMETER TESTS
// =============================================================================

func TestDefaultParameters(t *testing.T) {
	want := Parameters{Temperature: 0.7, MaxTokens: 2048, TopP: 1.0}
	if got := DefaultParameters(); got != want {
		t.Errorf("DefaultParameters() = %+v, want %+v", got, want)
	}
	if !DefaultParameters().InRange() {
		t.Error("defaults should be in range")
	}
}

func TestParameterUpdate_ApplyOnlyTouchesSetFields(t *testing.T) {
	p := DefaultParameters()
	ParameterUpdate{Temperature: Ptr(1.2)}.Apply(&p)

	want := DefaultParameters()
	want.Temperature = 1.2
	if p != want {
		t.Errorf("after Apply = %+v, want %+v", p, want)
	}

	if !(ParameterUpdate{}).IsEmpty() {
		t.Error("zero update should be empty")
	}
}

func TestParameters_Clamp(t *testing.T) {
	p := Parameters{
		Temperature:      5,
		MaxTokens:        10,
		TopP:             -1,
		FrequencyPenalty: 3,
		PresencePenalty:  -3,
	}
	got := p.Clamp()
	want := Parameters{Temperature: 2, MaxTokens: 100, TopP: 0, FrequencyPenalty: 2, PresencePenalty: -2}
	if got != want {
		t.Errorf("Clamp() = %+v, want %+v", got, want)
	}
	if p.InRange() {
		t.Error("out-of-range parameters reported in range")
	}

	nonFinite := Parameters{
		Temperature:      math.NaN(),
		MaxTokens:        2048,
		TopP:             math.Inf(1),
		FrequencyPenalty: math.Inf(-1),
		PresencePenalty:  math.NaN(),
	}
	if nonFinite.InRange() {
		t.Error("non-finite parameters reported in range")
	}
	got = nonFinite.Clamp()
	want = Parameters{Temperature: MinTemperature, MaxTokens: 2048, TopP: MaxTopP, FrequencyPenalty: MinPenalty, PresencePenalty: MinPenalty}
	if got != want {
		t.Errorf("Clamp() of non-finite = %+v, want %+v", got, want)
	}
	if !got.InRange() {
		t.Errorf("Clamp() result %+v not in range", got)
	}
}

func TestParseUpdate(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		check   func(Parameters) bool
		wantErr bool
	}{
		{"temperature", "1.2", func(p Parameters) bool { return p.Temperature == 1.2 }, false},
		{"temp", "9", func(p Parameters) bool { return p.Temperature == MaxTemperature }, false},
		{"max-tokens", "50", func(p Parameters) bool { return p.MaxTokens == MinMaxTokens }, false},
		{"top_p", "0.5", func(p Parameters) bool { return p.TopP == 0.5 }, false},
		{"frequency_penalty", "-5", func(p Parameters) bool { return p.FrequencyPenalty == MinPenalty }, false},
		{"presence", "1", func(p Parameters) bool { return p.PresencePenalty == 1 }, false},
		{"temperature", "hot", nil, true},
		{"max_tokens", "1.5", nil, true},
		{"seed", "1", nil, true},
		{"temperature", "NaN", nil, true},
		{"top_p", "nan", nil, true},
		{"frequency_penalty", "Inf", nil, true},
		{"presence_penalty", "-Inf", nil, true},
		{"temperature", "+Inf", nil, true},
	}

	for _, tc := range tests {
		t.Run(tc.name+"="+tc.value, func(t *testing.T) {
			u, err := ParseUpdate(tc.name, tc.value)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseUpdate: %v", err)
			}
			p := DefaultParameters()
			u.Apply(&p)
			if !tc.check(p) {
				t.Errorf("unexpected parameters %+v", p)
			}
		})
	}
}

func TestParameters_Get(t *testing.T) {
	p := DefaultParameters()
	if v, _ := p.Get("max_tokens"); v != "2048" {
		t.Errorf("Get(max_tokens) = %q", v)
	}
	if v, _ := p.Get("temperature"); v != "0.70" {
		t.Errorf("Get(temperature) = %q", v)
	}
	if _, err := p.Get("nope"); err == nil {
		t.Error("expected error for unknown parameter")
	}
}
