// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the TUI and the CLI.
//
// # Key Functions
//
// Display:
//   - TruncateTitle: History titles cut to 28 cells plus " ..."
//   - TruncateWidth, PadRight, StringWidth: Cell-aware layout helpers
//   - GroupByMonth: History list split into month groups
//
// Files:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//
// # Usage
//
//	for _, g := range util.GroupByMonth(state.ChatHistory, time.Now()) {
//	    fmt.Println(g.Label)
//	    for _, c := range g.Conversations {
//	        fmt.Println("  " + util.TruncateTitle(c.Title))
//	    }
//	}
package util
