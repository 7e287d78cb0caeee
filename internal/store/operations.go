// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/danniesim/mecoai-chat/internal/chaterr"
	"github.com/danniesim/mecoai-chat/internal/model"
)

// Texts shown for failed history operations.
const (
	DeleteFailedText    = "Error: could not delete item"
	RenameFailedText    = "Error: could not rename item"
	RenameUnchangedText = "Error: Enter a new title to proceed."
	ClearAllFailedText  = "Error deleting all of chat history"
	SelectFailedText    = "Error: could not load conversation"
	ClearFailedTitle    = "Error clearing current chat"
	ClearFailedSubtitle = "Please try again. If the problem persists, please contact the site administrator."
)

// ErrTitleUnchanged is returned by RenameHistoryEntry for an empty or
// unchanged title. No request is sent in that case.
var ErrTitleUnchanged = errors.New("store: title unchanged")

// =============================================================================
// TURNS
// =============================================================================

// Turn describes one generation request started by StartTurn.
type Turn struct {
	// ConversationID is the id the turn's messages are committed under.
	ConversationID string
	User           model.ChatMessage
	// New is set when the turn created its conversation.
	New bool
	// Request is the message list to send, error messages excluded.
	Request []model.ChatMessage
}

// StartTurn appends question to the conversation with conversationID, or
// to a new conversation when conversationID is empty, and enters
// Processing. An unknown id returns a NotFound error and changes nothing.
func (s *Store) StartTurn(question, conversationID string) (Turn, error) {
	user := model.NewUserMessage(question)
	var turn Turn

	_, err := s.update(func(st State) (Action, error) {
		var conv model.Conversation
		if conversationID == "" {
			conv = model.NewConversation(user)
			turn.New = true
		} else {
			found, ok := st.Lookup(conversationID)
			if !ok {
				return nil, chaterr.NotFound(conversationID)
			}
			conv = found.Append(user)
		}
		turn.ConversationID = conv.ID
		turn.User = user
		turn.Request = model.WithoutErrors(conv.Messages)
		return TurnStarted{Conversation: conv}, nil
	})
	if err != nil {
		s.log.Warn("turn not started", zap.String("conversation_id", conversationID), zap.Error(err))
		return Turn{}, err
	}
	s.log.Debug("turn started",
		zap.String("conversation_id", turn.ConversationID),
		zap.Bool("new", turn.New),
		zap.Int("request_messages", len(turn.Request)))
	return turn, nil
}

// Progress publishes the partial answer of t.
func (s *Store) Progress(t Turn, partial []model.ChatMessage, loading bool) {
	s.Dispatch(TurnProgress{ConversationID: t.ConversationID, Messages: partial, Loading: loading})
}

// CommitTurnResult appends the finalized messages of t, upserts the
// history entry and persists the conversation.
func (s *Store) CommitTurnResult(t Turn, messages []model.ChatMessage, md *model.HistoryMetadata) State {
	return s.Dispatch(TurnFinished{ConversationID: t.ConversationID, Messages: messages, Metadata: md})
}

// FailTurn commits an error message in place of an answer.
func (s *Store) FailTurn(t Turn, err error) State {
	s.log.Warn("generation failed",
		zap.String("conversation_id", t.ConversationID),
		zap.String("kind", chaterr.KindOf(err).String()),
		zap.Error(err))
	msg := model.NewErrorMessage(chaterr.UserMessage(err))
	return s.Dispatch(TurnFinished{ConversationID: t.ConversationID, Messages: []model.ChatMessage{msg}})
}

// CancelTurn commits whatever t received before it was stopped. No error
// message is added.
func (s *Store) CancelTurn(t Turn, partial []model.ChatMessage, md *model.HistoryMetadata) State {
	s.log.Debug("generation canceled",
		zap.String("conversation_id", t.ConversationID),
		zap.Int("partial_messages", len(partial)))
	return s.Dispatch(TurnFinished{ConversationID: t.ConversationID, Messages: partial, Metadata: md})
}

// =============================================================================
// ACTIVE CONVERSATION
// =============================================================================

// ClearActive deletes the messages of the active conversation remotely,
// then locally. Without history the active chat is simply replaced by a
// new one. On failure a dialog is shown and nothing else changes.
func (s *Store) ClearActive(ctx context.Context) error {
	st := s.State()
	if st.ClearDisabled() {
		return nil
	}
	id := st.CurrentChat.ID

	s.Dispatch(SetClearing{Clearing: true})
	if !st.HistoryEnabled() || s.svc == nil {
		s.Dispatch(UpdateCurrentChat{Conversation: nil})
		s.Dispatch(SetClearing{Clearing: false})
		return nil
	}

	if err := s.svc.HistoryClear(ctx, id); err != nil {
		s.log.Warn("clear conversation failed", zap.String("conversation_id", id), zap.Error(err))
		s.Dispatch(ShowDialog{Dialog: Dialog{Title: ClearFailedTitle, Subtitle: ClearFailedSubtitle}})
		s.Dispatch(SetClearing{Clearing: false})
		return err
	}
	s.Dispatch(DeleteCurrentChatMessages{ID: id})
	return nil
}

// NewChat clears the active conversation.
func (s *Store) NewChat() {
	s.Dispatch(UpdateCurrentChat{Conversation: nil})
}

// SelectConversation makes a history entry active, loading its messages
// first when the list entry carries none.
func (s *Store) SelectConversation(ctx context.Context, id string) error {
	st := s.State()
	i := model.FindConversation(st.ChatHistory, id)
	if i < 0 {
		if st.CurrentChat != nil && st.CurrentChat.ID == id {
			return nil
		}
		return chaterr.NotFound(id)
	}
	conv := st.ChatHistory[i].Clone()

	if !conv.Hydrated() && s.svc != nil {
		msgs, err := s.svc.HistoryRead(ctx, id)
		if err != nil {
			s.log.Warn("history read failed", zap.String("conversation_id", id), zap.Error(err))
			s.addNotice(ScopeSelect, id, SelectFailedText)
			return err
		}
		conv.Messages = msgs
		if conv.Messages == nil {
			conv.Messages = []model.ChatMessage{}
		}
		s.Dispatch(UpdateChatHistory{Conversation: conv})
	}
	s.Dispatch(UpdateCurrentChat{Conversation: &conv})
	return nil
}

// SetFeedback records local feedback on a message.
func (s *Store) SetFeedback(messageID string, fb model.Feedback) {
	s.Dispatch(SetFeedback{MessageID: messageID, Feedback: fb})
}

// ShowCitation opens the citation panel.
func (s *Store) ShowCitation(c model.Citation) {
	s.Dispatch(ShowCitation{Citation: c})
}

// CloseCitation closes the citation panel.
func (s *Store) CloseCitation() {
	s.Dispatch(CloseCitationPanel{})
}

// ToggleHistory shows or hides the history panel.
func (s *Store) ToggleHistory() {
	s.Dispatch(ToggleChatHistory{})
}

// DismissDialog closes the modal dialog.
func (s *Store) DismissDialog() {
	s.Dispatch(DismissDialog{})
}

// =============================================================================
// HISTORY ENTRIES
// =============================================================================

// DeleteHistoryEntry deletes a conversation remotely and, once confirmed,
// from the cache.
func (s *Store) DeleteHistoryEntry(ctx context.Context, id string) error {
	if err := s.remote(func() error { return s.svc.HistoryDelete(ctx, id) }); err != nil {
		s.log.Warn("history delete failed", zap.String("conversation_id", id), zap.Error(err))
		s.addNotice(ScopeDelete, id, DeleteFailedText)
		return err
	}
	s.Dispatch(DeleteChatEntry{ID: id})
	return nil
}

// RenameHistoryEntry retitles a conversation remotely and, once
// confirmed, in the cache.
func (s *Store) RenameHistoryEntry(ctx context.Context, id, title string) error {
	conv, ok := s.State().Lookup(id)
	if !ok {
		return chaterr.NotFound(id)
	}
	title = strings.TrimSpace(title)
	if title == "" || title == conv.Title {
		s.addNotice(ScopeRename, id, RenameUnchangedText)
		return ErrTitleUnchanged
	}

	if err := s.remote(func() error { return s.svc.HistoryRename(ctx, id, title) }); err != nil {
		s.log.Warn("history rename failed", zap.String("conversation_id", id), zap.Error(err))
		s.addNotice(ScopeRename, id, RenameFailedText)
		return err
	}
	s.Dispatch(UpdateChatTitle{ID: id, Title: title})
	return nil
}

// ClearAllHistory deletes every conversation remotely and, once
// confirmed, empties the cache.
func (s *Store) ClearAllHistory(ctx context.Context) error {
	if err := s.remote(func() error { return s.svc.HistoryDeleteAll(ctx) }); err != nil {
		s.log.Warn("history delete all failed", zap.Error(err))
		s.addNotice(ScopeClearAll, "", ClearAllFailedText)
		return err
	}
	s.Dispatch(DeleteChatHistory{})
	return nil
}

// errNoService is reported when history operations run without a backend.
var errNoService = errors.New("store: no history service")

func (s *Store) remote(call func() error) error {
	if s.svc == nil {
		return errNoService
	}
	return call()
}
