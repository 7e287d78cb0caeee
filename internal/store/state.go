// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"time"

	"github.com/danniesim/mecoai-chat/internal/model"
)

// =============================================================================
// STATUS
// =============================================================================

// Status is the generation state machine. Entering Done triggers the one
// persistence write for the committed conversation; the store then returns
// to NotRunning.
type Status int

const (
	NotRunning Status = iota
	Processing
	Done
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case NotRunning:
		return "NotRunning"
	case Processing:
		return "Processing"
	case Done:
		return "Done"
	default:
		return "Unknown"
	}
}

// =============================================================================
// NOTICES AND DIALOGS
// =============================================================================

// NoticeScope names the operation a notice belongs to.
type NoticeScope string

const (
	ScopeDelete   NoticeScope = "history.delete"
	ScopeRename   NoticeScope = "history.rename"
	ScopeClearAll NoticeScope = "history.clear_all"
	ScopeSelect   NoticeScope = "history.select"
	ScopePersist  NoticeScope = "history.persist"
)

// Notice is a transient inline error that expires on its own.
type Notice struct {
	ID        int64
	Scope     NoticeScope
	Target    string // conversation id, empty for list-wide notices
	Text      string
	ExpiresAt time.Time
}

// Dialog is a modal message. Blocking dialogs report systemic failures.
type Dialog struct {
	Title    string
	Subtitle string
	Blocking bool
}

// =============================================================================
// STATE
// =============================================================================

// State is an immutable snapshot of the store. Reduce never modifies a
// State it was given; slices and maps in a snapshot are never written after
// the snapshot is published.
type State struct {
	Status Status

	// CurrentChat is the active conversation, nil for a new chat.
	CurrentChat *model.Conversation
	// ChatHistory is the cached history list, newest first. It is nil when
	// history was never loaded or the last list fetch failed.
	ChatHistory         []model.Conversation
	HistoryLoadingState model.HistoryLoadingState
	HistoryPageLoading  bool
	IsChatHistoryOpen   bool
	CosmosDB            model.CosmosDBHealth
	FrontendSettings    *model.FrontendSettings

	// Feedback is keyed by message id and never persisted.
	Feedback map[string]model.Feedback

	// InFlight counts generation requests that have not finished.
	InFlight int
	// ShowLoadingMessage is set until the first assistant fragment arrives.
	ShowLoadingMessage bool
	// Pending holds the partial answer of the newest in-flight turn.
	Pending               []model.ChatMessage
	PendingConversationID string
	// Turns holds the conversation of each in-flight turn as it was
	// started, keyed by its client id. A turn commits to it when the
	// active chat has moved on.
	Turns map[string]model.Conversation
	// LastCommittedID names the conversation the last turn was committed to.
	LastCommittedID string
	// LastCommitted is that conversation, as written by persistence.
	LastCommitted *model.Conversation
	ClearingChat    bool

	ActiveCitation    *model.Citation
	CitationPanelOpen bool

	Notices []Notice
	Dialog  *Dialog
}

// Initial returns the state of a fresh client.
func Initial() State {
	return State{
		Status:              NotRunning,
		HistoryLoadingState: model.HistoryNotStarted,
		CosmosDB:            model.CosmosDBHealth{CosmosDB: false, Status: model.CosmosDBNotConfigured},
		Feedback:            map[string]model.Feedback{},
	}
}

// Generating reports whether any generation request is outstanding.
func (s State) Generating() bool {
	return s.InFlight > 0
}

// Lookup finds a conversation by id in the active state, then the history cache.
func (s State) Lookup(id string) (model.Conversation, bool) {
	if s.CurrentChat != nil && s.CurrentChat.ID == id {
		return *s.CurrentChat, true
	}
	if i := model.FindConversation(s.ChatHistory, id); i >= 0 {
		return s.ChatHistory[i], true
	}
	return model.Conversation{}, false
}

// Messages returns what the transcript shows: the committed messages of
// the active conversation followed by the pending partial answer.
func (s State) Messages() []model.ChatMessage {
	var out []model.ChatMessage
	if s.CurrentChat != nil {
		out = append(out, s.CurrentChat.Messages...)
	}
	if len(s.Pending) > 0 && s.CurrentChat != nil && s.PendingConversationID == s.CurrentChat.ID {
		out = append(out, s.Pending...)
	}
	return out
}

// FeedbackFor returns the feedback recorded for a message.
func (s State) FeedbackFor(messageID string) model.Feedback {
	return s.Feedback[messageID]
}

// HistoryEnabled reports whether history features are shown at all.
func (s State) HistoryEnabled() bool {
	return s.CosmosDB.Enabled()
}

// ClearDisabled reports whether clearing the active chat is unavailable.
func (s State) ClearDisabled() bool {
	return s.Generating() || s.CurrentChat == nil || s.CurrentChat.IsEmpty() ||
		s.ClearingChat || s.HistoryLoadingState == model.HistoryLoading
}

// NoticeFor returns the live notice for a scope and target.
func (s State) NoticeFor(scope NoticeScope, target string) (Notice, bool) {
	for _, n := range s.Notices {
		if n.Scope == scope && n.Target == target {
			return n, true
		}
	}
	return Notice{}, false
}
