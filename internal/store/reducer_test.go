// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danniesim/mecoai-chat/internal/model"
)

func conv(id, title string, msgs ...model.ChatMessage) model.Conversation {
	if msgs == nil {
		msgs = []model.ChatMessage{}
	}
	return model.Conversation{ID: id, Title: title, Date: "2025-01-02T03:04:05.000Z", Messages: msgs}
}

func TestReduceDoesNotModifyInput(t *testing.T) {
	s := Initial()
	s.ChatHistory = []model.Conversation{conv("a", "A"), conv("b", "B")}

	next := Reduce(s, UpdateChatTitle{ID: "b", Title: "renamed"})
	assert.Equal(t, "B", s.ChatHistory[1].Title)
	assert.Equal(t, "renamed", next.ChatHistory[1].Title)

	next = Reduce(s, SetFeedback{MessageID: "m1", Feedback: model.FeedbackPositive})
	assert.Empty(t, s.Feedback)
	assert.Equal(t, model.FeedbackPositive, next.FeedbackFor("m1"))
}

func TestUpdateChatHistoryUpserts(t *testing.T) {
	s := Initial()
	s = Reduce(s, UpdateChatHistory{Conversation: conv("a", "A")})
	assert.Nil(t, s.ChatHistory, "an unloaded history stays unloaded")

	s = Reduce(s, FetchChatHistory{Conversations: []model.Conversation{conv("a", "A"), conv("b", "B")}})
	s = Reduce(s, UpdateChatHistory{Conversation: conv("c", "C")})
	s = Reduce(s, UpdateChatHistory{Conversation: conv("b", "B2")})

	require.Len(t, s.ChatHistory, 3)
	assert.Equal(t, "c", s.ChatHistory[0].ID)
	assert.Equal(t, "B2", s.ChatHistory[2].Title)
}

func TestDeleteChatEntryClearsOnlyMatchingCurrentChat(t *testing.T) {
	s := Initial()
	s.ChatHistory = []model.Conversation{conv("a", "A"), conv("b", "B")}
	cur := conv("b", "B")
	s.CurrentChat = &cur

	next := Reduce(s, DeleteChatEntry{ID: "a"})
	require.NotNil(t, next.CurrentChat)
	assert.Len(t, next.ChatHistory, 1)

	next = Reduce(next, DeleteChatEntry{ID: "b"})
	assert.Nil(t, next.CurrentChat)
	assert.Empty(t, next.ChatHistory)
	assert.NotNil(t, next.ChatHistory)
}

func TestDeleteCurrentChatMessages(t *testing.T) {
	q := model.NewUserMessage("q")
	c := conv("a", "A", q)
	s := Initial()
	s.ChatHistory = []model.Conversation{c}
	s.CurrentChat = &c
	s.ClearingChat = true
	s.CitationPanelOpen = true
	s.ActiveCitation = &model.Citation{Content: "x"}

	next := Reduce(s, DeleteCurrentChatMessages{ID: "a"})
	assert.Empty(t, next.CurrentChat.Messages)
	assert.Empty(t, next.ChatHistory[0].Messages)
	assert.False(t, next.ClearingChat)
	assert.False(t, next.CitationPanelOpen)
	assert.Nil(t, next.ActiveCitation)
	assert.Len(t, s.CurrentChat.Messages, 1)
}

func TestTurnStatusMachine(t *testing.T) {
	q := model.NewUserMessage("q")
	s := Reduce(Initial(), TurnStarted{Conversation: model.NewConversation(q)})
	assert.Equal(t, Processing, s.Status)
	assert.Equal(t, 1, s.InFlight)
	assert.True(t, s.ShowLoadingMessage)

	assert.Equal(t, Processing, Reduce(s, PersistFinished{}).Status, "PersistFinished only leaves Done")

	id := s.CurrentChat.ID
	answer := model.NewMessage(model.RoleAssistant, "a")
	s = Reduce(s, TurnFinished{ConversationID: id, Messages: []model.ChatMessage{answer}})
	assert.Equal(t, Done, s.Status)
	assert.Equal(t, 0, s.InFlight)
	assert.Equal(t, id, s.LastCommittedID)
	assert.Len(t, s.CurrentChat.Messages, 2)

	s = Reduce(s, PersistFinished{})
	assert.Equal(t, NotRunning, s.Status)
}

func TestTurnProgressIgnoresOtherConversations(t *testing.T) {
	s := Reduce(Initial(), TurnStarted{Conversation: model.NewConversation(model.NewUserMessage("q"))})
	partial := []model.ChatMessage{model.NewMessage(model.RoleAssistant, "He")}

	next := Reduce(s, TurnProgress{ConversationID: "other", Messages: partial})
	assert.Empty(t, next.Pending)

	next = Reduce(s, TurnProgress{ConversationID: s.CurrentChat.ID, Messages: partial, Loading: false})
	assert.False(t, next.ShowLoadingMessage)
	assert.Len(t, next.Messages(), 2)
}

func TestTurnFinishedRekeysFromMetadata(t *testing.T) {
	c := model.NewConversation(model.NewUserMessage("q"))
	s := Initial()
	s.ChatHistory = []model.Conversation{}
	s = Reduce(s, TurnStarted{Conversation: c})
	s = Reduce(s, TurnFinished{
		ConversationID: c.ID,
		Metadata:       &model.HistoryMetadata{ConversationID: "server-1", Title: "Server title"},
	})

	require.NotNil(t, s.CurrentChat)
	assert.Equal(t, "server-1", s.CurrentChat.ID)
	assert.Equal(t, "Server title", s.CurrentChat.Title)
	require.Len(t, s.ChatHistory, 1)
	assert.Equal(t, "server-1", s.ChatHistory[0].ID)
	assert.Equal(t, "server-1", s.LastCommittedID)
}

func TestTurnFinishedForDeletedConversation(t *testing.T) {
	s := Reduce(Initial(), TurnStarted{Conversation: model.NewConversation(model.NewUserMessage("q"))})
	s = Reduce(s, UpdateCurrentChat{})
	s = Reduce(s, TurnFinished{ConversationID: "gone"})
	assert.Equal(t, Done, s.Status)
	assert.Empty(t, s.LastCommittedID)
	assert.Nil(t, s.CurrentChat)
}

func TestTurnFinishedUsesStartSnapshot(t *testing.T) {
	conv := model.NewConversation(model.NewUserMessage("q"))
	s := Reduce(Initial(), FetchChatHistory{Conversations: []model.Conversation{}})
	s = Reduce(s, TurnStarted{Conversation: conv})
	require.Contains(t, s.Turns, conv.ID)

	s = Reduce(s, UpdateCurrentChat{})
	s = Reduce(s, TurnFinished{ConversationID: conv.ID, Messages: []model.ChatMessage{model.NewMessage(model.RoleAssistant, "a")}})

	assert.Nil(t, s.CurrentChat)
	assert.Equal(t, conv.ID, s.LastCommittedID)
	assert.NotContains(t, s.Turns, conv.ID)
	require.Len(t, s.ChatHistory, 1)
	assert.Len(t, s.ChatHistory[0].Messages, 2)
}

func TestDeleteChatEntryDropsTurnSnapshot(t *testing.T) {
	conv := model.NewConversation(model.NewUserMessage("q"))
	s := Reduce(Initial(), TurnStarted{Conversation: conv})
	s = Reduce(s, DeleteChatEntry{ID: conv.ID})
	s = Reduce(s, TurnFinished{ConversationID: conv.ID})

	assert.Empty(t, s.LastCommittedID)
	assert.Nil(t, s.LastCommitted)
}

func TestAddNoticeReplacesSameScopeAndTarget(t *testing.T) {
	s := Initial()
	s = Reduce(s, AddNotice{Notice: Notice{ID: 1, Scope: ScopeDelete, Target: "a", Text: "one"}})
	s = Reduce(s, AddNotice{Notice: Notice{ID: 2, Scope: ScopeDelete, Target: "b", Text: "two"}})
	s = Reduce(s, AddNotice{Notice: Notice{ID: 3, Scope: ScopeDelete, Target: "a", Text: "three"}})

	require.Len(t, s.Notices, 2)
	n, ok := s.NoticeFor(ScopeDelete, "a")
	require.True(t, ok)
	assert.Equal(t, "three", n.Text)

	s = Reduce(s, DismissNotice{ID: 2})
	_, ok = s.NoticeFor(ScopeDelete, "b")
	assert.False(t, ok)
}

func TestClearDisabled(t *testing.T) {
	s := Initial()
	assert.True(t, s.ClearDisabled(), "no chat")

	c := conv("a", "A", model.NewUserMessage("q"))
	s.CurrentChat = &c
	assert.False(t, s.ClearDisabled())

	s.InFlight = 1
	assert.True(t, s.ClearDisabled())
	s.InFlight = 0
	s.HistoryLoadingState = model.HistoryLoading
	assert.True(t, s.ClearDisabled())
}

func TestAppendChatHistory(t *testing.T) {
	s := Initial()
	s = Reduce(s, AppendChatHistory{Conversations: []model.Conversation{conv("a", "A")}})
	require.Len(t, s.ChatHistory, 1)

	s = Reduce(s, AppendChatHistory{Conversations: []model.Conversation{conv("a", "dup"), conv("b", "B")}})
	require.Len(t, s.ChatHistory, 2)
	assert.Equal(t, "A", s.ChatHistory[0].Title)
	assert.Equal(t, "b", s.ChatHistory[1].ID)

	s = Reduce(s, AppendChatHistory{Conversations: []model.Conversation{}})
	assert.Len(t, s.ChatHistory, 2, "an empty page never erases history")
}
