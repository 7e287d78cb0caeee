// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import "github.com/danniesim/mecoai-chat/internal/model"

// Action is a state change. The set of actions is closed: only the types
// in this file implement it.
type Action interface {
	isAction()
}

// =============================================================================
// HISTORY PANEL ACTIONS
// =============================================================================

// ToggleChatHistory shows or hides the history panel.
type ToggleChatHistory struct{}

// SetCosmosDBStatus records the history capability.
type SetCosmosDBStatus struct {
	Health model.CosmosDBHealth
}

// SetHistoryLoadingState records the progress of the initial history load.
type SetHistoryLoadingState struct {
	State model.HistoryLoadingState
}

// SetHistoryPageLoading toggles the spinner shown while a page loads.
type SetHistoryPageLoading struct {
	Loading bool
}

// FetchChatHistory replaces the cached history list. A nil list means the
// fetch failed.
type FetchChatHistory struct {
	Conversations []model.Conversation
}

// AppendChatHistory concatenates a fetched page onto the cached list,
// skipping ids already present. Onto a nil list it becomes the list.
type AppendChatHistory struct {
	Conversations []model.Conversation
}

// UpdateChatHistory inserts or replaces one history entry by id.
type UpdateChatHistory struct {
	Conversation model.Conversation
}

// UpdateChatTitle retitles a history entry.
type UpdateChatTitle struct {
	ID    string
	Title string
}

// DeleteChatEntry removes a history entry.
type DeleteChatEntry struct {
	ID string
}

// DeleteChatHistory empties the history list.
type DeleteChatHistory struct{}

// =============================================================================
// ACTIVE CONVERSATION ACTIONS
// =============================================================================

// UpdateCurrentChat replaces the active conversation. nil starts a new chat.
type UpdateCurrentChat struct {
	Conversation *model.Conversation
}

// DeleteCurrentChatMessages truncates the active conversation after a
// successful remote clear.
type DeleteCurrentChatMessages struct {
	ID string
}

// SetClearing flags a clear request in flight.
type SetClearing struct {
	Clearing bool
}

// SetFeedback records local feedback on a message.
type SetFeedback struct {
	MessageID string
	Feedback  model.Feedback
}

// ShowCitation opens the citation panel on c.
type ShowCitation struct {
	Citation model.Citation
}

// CloseCitationPanel hides the citation panel.
type CloseCitationPanel struct{}

// SetFrontendSettings stores the backend's UI configuration.
type SetFrontendSettings struct {
	Settings *model.FrontendSettings
}

// =============================================================================
// TURN ACTIONS
// =============================================================================

// TurnStarted makes Conversation active (with the question already
// appended) and enters Processing.
type TurnStarted struct {
	Conversation model.Conversation
}

// TurnProgress publishes the partial answer of an in-flight turn.
type TurnProgress struct {
	ConversationID string
	Messages       []model.ChatMessage
	Loading        bool
}

// TurnFinished appends the turn's messages to its conversation, upserts
// the history entry and enters Done.
type TurnFinished struct {
	ConversationID string
	Messages       []model.ChatMessage
	Metadata       *model.HistoryMetadata
}

// PersistFinished leaves Done once the persistence write has completed.
type PersistFinished struct{}

// =============================================================================
// NOTICE ACTIONS
// =============================================================================

// AddNotice shows a transient notice, replacing any notice with the same
// scope and target.
type AddNotice struct {
	Notice Notice
}

// DismissNotice removes a notice.
type DismissNotice struct {
	ID int64
}

// ShowDialog opens a modal dialog.
type ShowDialog struct {
	Dialog Dialog
}

// DismissDialog closes the modal dialog.
type DismissDialog struct{}

func (ToggleChatHistory) isAction()         {}
func (SetCosmosDBStatus) isAction()         {}
func (SetHistoryLoadingState) isAction()    {}
func (SetHistoryPageLoading) isAction()     {}
func (FetchChatHistory) isAction()          {}
func (AppendChatHistory) isAction()         {}
func (UpdateChatHistory) isAction()         {}
func (UpdateChatTitle) isAction()           {}
func (DeleteChatEntry) isAction()           {}
func (DeleteChatHistory) isAction()         {}
func (UpdateCurrentChat) isAction()         {}
func (DeleteCurrentChatMessages) isAction() {}
func (SetClearing) isAction()               {}
func (SetFeedback) isAction()               {}
func (ShowCitation) isAction()              {}
func (CloseCitationPanel) isAction()        {}
func (SetFrontendSettings) isAction()       {}
func (TurnStarted) isAction()               {}
func (TurnProgress) isAction()              {}
func (TurnFinished) isAction()              {}
func (PersistFinished) isAction()           {}
func (AddNotice) isAction()                 {}
func (DismissNotice) isAction()             {}
func (ShowDialog) isAction()                {}
func (DismissDialog) isAction()             {}
