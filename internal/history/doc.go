// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history seeds and pages the conversation history cache.
//
// Bootstrap runs once at startup: it loads the frontend settings, asks the
// backend whether history is available and loads the first page. Pager
// then appends further pages each time the end of the history list
// becomes visible.
package history
