// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the lumi command line on cobra.
//
// Commands:
//
//	lumi                      start the TUI (default)
//	lumi chat                 line-mode REPL with history
//	lumi ask "prompt"         one-shot: submit, wait, print the reply
//	lumi models               list the model catalog
//	lumi templates            list the prompt templates
//	lumi theme [dark|light|toggle]
//	lumi config [show|get|set|path|keys]
//	lumi version
//
// Global flags --config, --model, --log-level and --metrics-addr override
// the configuration file and LUMI_* environment variables.
package cli
