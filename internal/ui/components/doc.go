// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components holds the render pieces of the chat TUI: header,
// transcript entries, history and citation panels, toasts, dialogs and
// the status bar. Components render from values handed to them and keep
// no reference to the store.
package components
