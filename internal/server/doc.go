// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server provides a read-only HTTP inspection server for a running
// lumi session.
//
// # Endpoints
//
//   - GET /health       - Liveness and session summary
//   - GET /v1/models    - Model catalog with the current selection
//   - GET /v1/templates - Prompt template catalog
//   - GET /v1/session   - Session snapshot (message metadata only)
//   - GET /metrics      - Prometheus metrics
//
// Message bodies are never served. The server only listens when an address
// is configured (metrics.addr or --metrics-addr).
//
// # Usage
//
//	srv := server.New(server.Options{Addr: "127.0.0.1:9464", Store: st})
//	go srv.Start()
//	defer srv.Shutdown(ctx)
package server
