// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package devserver serves an in-memory chat backend for local development
// and tests.
//
// Every endpoint the client uses is implemented: both generation routes,
// the history CRUD routes, the ensure probe and frontend settings.
// Generation streams a canned answer as newline-delimited JSON written in
// deliberately misaligned chunks, so clients see objects split across
// reads, blank lines and empty keepalive objects.
//
// # Key Types
//
//   - Server: chi router plus the in-memory conversation store
//   - Options: persistence, failure injection and stream pacing switches
//
// # Usage
//
//	srv := devserver.New(devserver.Options{Cosmos: true})
//	ts := httptest.NewServer(srv.Handler())
//	defer ts.Close()
//
// Or as a process:
//
//	go run ./cmd/devserver -addr 127.0.0.1:50505
package devserver
