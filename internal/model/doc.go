// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the domain types shared by the session store, the
// generation pipeline and every view.
//
// # Key Types
//
//   - ModelInfo: a selectable, purely descriptive model entry
//   - PromptTemplate: a reusable prompt skeleton with {placeholder} markers
//   - Message: one transcript entry with a role, content and timestamp
//   - Parameters: generation parameters with declared ranges
//   - Catalog: the static set of models and templates
//
// # Usage
//
//	cat := model.DefaultCatalog()
//	m, ok := cat.FindModel("gpt-4")
//	fmt.Println(m.Name, m.ContextString()) // GPT-4 8,192 tokens
//
//	p := model.DefaultParameters()
//	model.ParameterUpdate{Temperature: model.Ptr(1.2)}.Apply(&p)
package model
