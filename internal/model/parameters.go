// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// =============================================================================
// PARAMETER RANGES
// =============================================================================

// Declared ranges for each generation parameter.
const (
	MinTemperature = 0.0
	MaxTemperature = 2.0

	MinMaxTokens = 100
	MaxMaxTokens = 4096

	MinTopP = 0.0
	MaxTopP = 1.0

	MinPenalty = -2.0
	MaxPenalty = 2.0
)

// Parameter names accepted by ParseUpdate and Parameters.Get.
const (
	ParamTemperature      = "temperature"
	ParamMaxTokens        = "max_tokens"
	ParamTopP             = "top_p"
	ParamFrequencyPenalty = "frequency_penalty"
	ParamPresencePenalty  = "presence_penalty"
)

// ParamNames lists the parameter names in display order.
var ParamNames = []string{
	ParamTemperature,
	ParamMaxTokens,
	ParamTopP,
	ParamFrequencyPenalty,
	ParamPresencePenalty,
}

// =============================================================================
// PARAMETERS
// =============================================================================

// Parameters holds the generation parameters for a session.
type Parameters struct {
	Temperature      float64 `json:"temperature"`
	MaxTokens        int     `json:"max_tokens"`
	TopP             float64 `json:"top_p"`
	FrequencyPenalty float64 `json:"frequency_penalty"`
	PresencePenalty  float64 `json:"presence_penalty"`
}

// DefaultParameters returns the default parameter tuple.
func DefaultParameters() Parameters {
	return Parameters{
		Temperature:      0.7,
		MaxTokens:        2048,
		TopP:             1.0,
		FrequencyPenalty: 0,
		PresencePenalty:  0,
	}
}

// Clamp returns a copy with every field forced into its declared range.
func (p Parameters) Clamp() Parameters {
	p.Temperature = clampFloat(p.Temperature, MinTemperature, MaxTemperature)
	p.MaxTokens = clampInt(p.MaxTokens, MinMaxTokens, MaxMaxTokens)
	p.TopP = clampFloat(p.TopP, MinTopP, MaxTopP)
	p.FrequencyPenalty = clampFloat(p.FrequencyPenalty, MinPenalty, MaxPenalty)
	p.PresencePenalty = clampFloat(p.PresencePenalty, MinPenalty, MaxPenalty)
	return p
}

// InRange reports whether every field lies in its declared range.
func (p Parameters) InRange() bool {
	return p == p.Clamp()
}

// Get returns the named parameter formatted for display.
func (p Parameters) Get(name string) (string, error) {
	switch normalizeParam(name) {
	case ParamTemperature:
		return strconv.FormatFloat(p.Temperature, 'f', 2, 64), nil
	case ParamMaxTokens:
		return strconv.Itoa(p.MaxTokens), nil
	case ParamTopP:
		return strconv.FormatFloat(p.TopP, 'f', 2, 64), nil
	case ParamFrequencyPenalty:
		return strconv.FormatFloat(p.FrequencyPenalty, 'f', 2, 64), nil
	case ParamPresencePenalty:
		return strconv.FormatFloat(p.PresencePenalty, 'f', 2, 64), nil
	default:
		return "", fmt.Errorf("unknown parameter %q", name)
	}
}

// ParseUpdate builds a single-field update from a name and textual value.
// The value is clamped to the parameter's declared range.
func ParseUpdate(name, value string) (ParameterUpdate, error) {
	value = strings.TrimSpace(value)
	key := normalizeParam(name)

	if key == ParamMaxTokens {
		n, err := strconv.Atoi(value)
		if err != nil {
			return ParameterUpdate{}, fmt.Errorf("invalid value for %s: %q", key, value)
		}
		return ParameterUpdate{MaxTokens: Ptr(clampInt(n, MinMaxTokens, MaxMaxTokens))}, nil
	}

	f, err := strconv.ParseFloat(value, 64)
	if key != "" && (err != nil || math.IsNaN(f) || math.IsInf(f, 0)) {
		return ParameterUpdate{}, fmt.Errorf("invalid value for %s: %q", key, value)
	}

	switch key {
	case ParamTemperature:
		return ParameterUpdate{Temperature: Ptr(clampFloat(f, MinTemperature, MaxTemperature))}, nil
	case ParamTopP:
		return ParameterUpdate{TopP: Ptr(clampFloat(f, MinTopP, MaxTopP))}, nil
	case ParamFrequencyPenalty:
		return ParameterUpdate{FrequencyPenalty: Ptr(clampFloat(f, MinPenalty, MaxPenalty))}, nil
	case ParamPresencePenalty:
		return ParameterUpdate{PresencePenalty: Ptr(clampFloat(f, MinPenalty, MaxPenalty))}, nil
	default:
		return ParameterUpdate{}, fmt.Errorf("unknown parameter %q", name)
	}
}

// normalizeParam maps user spellings ("top-p", "topP", "temp") onto the
// canonical parameter names. Unknown names map to "".
func normalizeParam(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.ReplaceAll(n, "-", "_")
	switch n {
	case "temperature", "temp":
		return ParamTemperature
	case "max_tokens", "maxtokens", "tokens":
		return ParamMaxTokens
	case "top_p", "topp":
		return ParamTopP
	case "frequency_penalty", "frequencypenalty", "freq":
		return ParamFrequencyPenalty
	case "presence_penalty", "presencepenalty", "presence":
		return ParamPresencePenalty
	default:
		return ""
	}
}

// =============================================================================
// PARTIAL UPDATES
// =============================================================================

// ParameterUpdate is a partial set of parameters. Nil fields are left
// unchanged when applied.
type ParameterUpdate struct {
	Temperature      *float64
	MaxTokens        *int
	TopP             *float64
	FrequencyPenalty *float64
	PresencePenalty  *float64
}

// Apply merges the non-nil fields of u into p.
func (u ParameterUpdate) Apply(p *Parameters) {
	if u.Temperature != nil {
		p.Temperature = *u.Temperature
	}
	if u.MaxTokens != nil {
		p.MaxTokens = *u.MaxTokens
	}
	if u.TopP != nil {
		p.TopP = *u.TopP
	}
	if u.FrequencyPenalty != nil {
		p.FrequencyPenalty = *u.FrequencyPenalty
	}
	if u.PresencePenalty != nil {
		p.PresencePenalty = *u.PresencePenalty
	}
}

// IsEmpty reports whether the update touches no field.
func (u ParameterUpdate) IsEmpty() bool {
	return u.Temperature == nil && u.MaxTokens == nil && u.TopP == nil &&
		u.FrequencyPenalty == nil && u.PresencePenalty == nil
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// clampFloat maps NaN to lo; min and max would pass it through.
func clampFloat(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return min(max(v, lo), hi)
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
