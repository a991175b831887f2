// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "regexp"

// PromptTemplate is a reusable prompt skeleton. Content may contain
// {placeholder} markers; they are never substituted by lumi.
type PromptTemplate struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Content     string `yaml:"content" json:"content"`
	Category    string `yaml:"category" json:"category"`
	Description string `yaml:"description" json:"description"`
}

var placeholderRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Placeholders lists the distinct placeholder names in order of first
// appearance.
func (t PromptTemplate) Placeholders() []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholderRe.FindAllStringSubmatch(t.Content, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}
