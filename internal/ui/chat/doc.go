// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the main chat view for the mecoai TUI.

The package implements the terminal chat screen with the Bubble Tea
framework. The Model owns no conversation state of its own: every change
goes through the store, and the Model renders the last snapshot it read.

# Key Components

## Model (model.go)

The Model struct wires the store, the turn runner and the history pager
to the Bubble Tea components:
  - Transcript viewport with markdown-rendered answers
  - Question input and the inline rename input
  - History panel, citation panel, toasts and dialogs

## Update Loop (update.go)

Handles all Bubble Tea messages:
  - Store change signals, read through a command that re-arms itself
  - Keyboard input for the chat and the history panel
  - Results of turns and history operations
  - Live config reloads

## Frame Limiter (frame.go)

Store changes during streaming arrive faster than the terminal repaints.
FrameLimiter caps transcript redraws at the configured max_fps.

# Usage

	m := chat.New(chat.Deps{
	    Store:   st,
	    Runner:  runner,
	    Pager:   pager,
	    Backend: client,
	    Config:  cfg,
	    Logger:  log,
	})
	defer m.Close()
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()

# Keyboard Shortcuts

	Enter     Send question
	Esc/C-s   Stop generating
	C-n       New chat
	C-l       Clear chat
	C-h       Toggle history
	Tab       Focus history
	1-9       Open citation of the last answer (empty input)
	+ / -     Feedback on the last answer (empty input)
	F1        Toggle help
	C-c       Quit
*/
package chat
