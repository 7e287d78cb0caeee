// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/danniesim/mecoai-chat/internal/config"
	"github.com/danniesim/mecoai-chat/internal/lifecycle"
)

// =============================================================================
// BUBBLE TEA MESSAGES
// =============================================================================

// storeChangedMsg reports that the store published at least one new state
// since the last read.
type storeChangedMsg struct{}

// bootstrapDoneMsg is sent once settings and the first history page are in.
type bootstrapDoneMsg struct{}

// turnDoneMsg carries the outcome of one question.
type turnDoneMsg struct {
	Result lifecycle.Result
}

// Op names a history or chat operation run off the event loop.
type Op string

const (
	OpClear    Op = "clear"
	OpSelect   Op = "select"
	OpDelete   Op = "delete"
	OpRename   Op = "rename"
	OpClearAll Op = "clear-all"
)

// opDoneMsg carries the result of an operation. Failures already reached
// the store as notices or dialogs; Err is kept for the status line.
type opDoneMsg struct {
	Op  Op
	ID  string
	Err error
}

// pageDoneMsg is sent when a history page fetch finished.
type pageDoneMsg struct {
	Err error
}

// frameMsg fires when a throttled redraw is due.
type frameMsg struct{}

// configReloadedMsg delivers a configuration re-read from disk.
type configReloadedMsg struct {
	Config *config.Config
}
