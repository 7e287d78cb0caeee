// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"github.com/danniesim/mecoai-chat/internal/model"
)

// Reduce returns the state that results from applying a to s.
// It is pure: s and everything reachable from it are left untouched.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case ToggleChatHistory:
		s.IsChatHistoryOpen = !s.IsChatHistoryOpen

	case SetCosmosDBStatus:
		s.CosmosDB = a.Health

	case SetHistoryLoadingState:
		s.HistoryLoadingState = a.State

	case SetHistoryPageLoading:
		s.HistoryPageLoading = a.Loading

	case FetchChatHistory:
		s.ChatHistory = model.CloneConversations(a.Conversations)

	case AppendChatHistory:
		s.ChatHistory = appendPage(s.ChatHistory, a.Conversations)

	case UpdateChatHistory:
		conv := a.Conversation.Clone()
		s.ChatHistory = upsert(s.ChatHistory, conv)
		if s.CurrentChat != nil && s.CurrentChat.ID == conv.ID {
			s.CurrentChat = &conv
		}

	case UpdateChatTitle:
		if i := model.FindConversation(s.ChatHistory, a.ID); i >= 0 {
			list := model.CloneConversations(s.ChatHistory)
			list[i].Title = a.Title
			s.ChatHistory = list
		}
		if s.CurrentChat != nil && s.CurrentChat.ID == a.ID {
			cur := s.CurrentChat.Clone()
			cur.Title = a.Title
			s.CurrentChat = &cur
		}

	case DeleteChatEntry:
		s.ChatHistory = remove(s.ChatHistory, a.ID)
		s.Turns = withoutTurn(s.Turns, a.ID)
		if s.CurrentChat != nil && s.CurrentChat.ID == a.ID {
			s.CurrentChat = nil
			s = closeCitation(s)
		}
		s.Notices = dropNoticesFor(s.Notices, a.ID)

	case DeleteChatHistory:
		if s.ChatHistory != nil {
			s.ChatHistory = []model.Conversation{}
		}
		s.Turns = nil
		s.CurrentChat = nil
		s = closeCitation(s)

	case UpdateCurrentChat:
		if a.Conversation == nil {
			s.CurrentChat = nil
		} else {
			cur := a.Conversation.Clone()
			s.CurrentChat = &cur
		}
		s = closeCitation(s)

	case DeleteCurrentChatMessages:
		s.ClearingChat = false
		if s.CurrentChat == nil || s.CurrentChat.ID != a.ID {
			break
		}
		cur := *s.CurrentChat
		cur.Messages = []model.ChatMessage{}
		s.CurrentChat = &cur
		if model.FindConversation(s.ChatHistory, a.ID) >= 0 {
			s.ChatHistory = upsert(s.ChatHistory, cur)
		}
		s = closeCitation(s)

	case SetClearing:
		s.ClearingChat = a.Clearing

	case SetFeedback:
		fb := make(map[string]model.Feedback, len(s.Feedback)+1)
		for k, v := range s.Feedback {
			fb[k] = v
		}
		fb[a.MessageID] = a.Feedback
		s.Feedback = fb

	case ShowCitation:
		c := a.Citation
		s.ActiveCitation = &c
		s.CitationPanelOpen = true

	case CloseCitationPanel:
		s = closeCitation(s)

	case SetFrontendSettings:
		s.FrontendSettings = a.Settings

	case TurnStarted:
		conv := a.Conversation.Clone()
		s.CurrentChat = &conv
		s.Status = Processing
		s.InFlight++
		s.ShowLoadingMessage = true
		s.Pending = nil
		s.PendingConversationID = conv.ID
		s.Turns = withTurn(s.Turns, conv)
		s = closeCitation(s)

	case TurnProgress:
		if s.PendingConversationID != a.ConversationID {
			break
		}
		s.Pending = model.CloneMessages(a.Messages)
		s.ShowLoadingMessage = a.Loading

	case TurnFinished:
		s = finishTurn(s, a)

	case PersistFinished:
		if s.Status == Done {
			s.Status = NotRunning
			if s.InFlight > 0 {
				s.Status = Processing
			}
		}

	case AddNotice:
		notices := make([]Notice, 0, len(s.Notices)+1)
		for _, n := range s.Notices {
			if n.Scope != a.Notice.Scope || n.Target != a.Notice.Target {
				notices = append(notices, n)
			}
		}
		s.Notices = append(notices, a.Notice)

	case DismissNotice:
		notices := make([]Notice, 0, len(s.Notices))
		for _, n := range s.Notices {
			if n.ID != a.ID {
				notices = append(notices, n)
			}
		}
		s.Notices = notices

	case ShowDialog:
		d := a.Dialog
		s.Dialog = &d

	case DismissDialog:
		s.Dialog = nil
	}
	return s
}

// finishTurn commits a turn's messages. A server-assigned id from the
// stream's metadata re-keys the conversation.
func finishTurn(s State, a TurnFinished) State {
	if s.InFlight > 0 {
		s.InFlight--
	}
	if s.PendingConversationID == a.ConversationID {
		s.Pending = nil
		s.ShowLoadingMessage = false
	}
	if s.InFlight == 0 {
		s.ShowLoadingMessage = false
	}
	s.Status = Done

	conv, ok := turnConversation(s, a.ConversationID)
	s.Turns = withoutTurn(s.Turns, a.ConversationID)
	if !ok {
		s.LastCommittedID = ""
		s.LastCommitted = nil
		return s
	}
	conv = conv.Append(a.Messages...)

	if md := a.Metadata; md != nil && md.ConversationID != "" && md.ConversationID != conv.ID {
		s.ChatHistory = remove(s.ChatHistory, conv.ID)
		conv.ID = md.ConversationID
		if md.Title != "" {
			conv.Title = md.Title
		}
		if md.Date != "" {
			conv.Date = md.Date
		}
		if s.PendingConversationID == a.ConversationID {
			s.PendingConversationID = conv.ID
		}
	}

	if s.CurrentChat != nil && s.CurrentChat.ID == a.ConversationID {
		cur := conv
		s.CurrentChat = &cur
	}
	s.ChatHistory = upsert(s.ChatHistory, conv)
	s.LastCommittedID = conv.ID
	committed := conv.Clone()
	s.LastCommitted = &committed
	return s
}

// turnConversation is the conversation a finishing turn appends to: the
// active chat when it is still the turn's, otherwise the snapshot taken
// when the turn started. The cached entry's title wins over the snapshot's.
func turnConversation(s State, id string) (model.Conversation, bool) {
	if s.CurrentChat != nil && s.CurrentChat.ID == id {
		return *s.CurrentChat, true
	}
	if conv, ok := s.Turns[id]; ok {
		if i := model.FindConversation(s.ChatHistory, id); i >= 0 {
			conv.Title = s.ChatHistory[i].Title
		}
		return conv, true
	}
	return model.Conversation{}, false
}

func withTurn(turns map[string]model.Conversation, conv model.Conversation) map[string]model.Conversation {
	out := make(map[string]model.Conversation, len(turns)+1)
	for k, v := range turns {
		out[k] = v
	}
	out[conv.ID] = conv
	return out
}

func withoutTurn(turns map[string]model.Conversation, id string) map[string]model.Conversation {
	if _, ok := turns[id]; !ok {
		return turns
	}
	out := make(map[string]model.Conversation, len(turns))
	for k, v := range turns {
		if k != id {
			out[k] = v
		}
	}
	return out
}

// upsert replaces the entry with conv's id, or puts conv first.
// A nil list (history unavailable) stays nil.
func upsert(list []model.Conversation, conv model.Conversation) []model.Conversation {
	if list == nil {
		return nil
	}
	out := make([]model.Conversation, 0, len(list)+1)
	if i := model.FindConversation(list, conv.ID); i >= 0 {
		out = append(out, list...)
		out[i] = conv
		return out
	}
	out = append(out, conv)
	return append(out, list...)
}

// appendPage keeps the order of both lists and the first occurrence of
// each id.
func appendPage(list, page []model.Conversation) []model.Conversation {
	out := make([]model.Conversation, 0, len(list)+len(page))
	seen := make(map[string]struct{}, len(list)+len(page))
	for _, c := range list {
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	for _, c := range page {
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c.Clone())
	}
	return out
}

// remove drops the entry with id. A nil list stays nil.
func remove(list []model.Conversation, id string) []model.Conversation {
	if list == nil {
		return nil
	}
	out := make([]model.Conversation, 0, len(list))
	for _, c := range list {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

func closeCitation(s State) State {
	s.ActiveCitation = nil
	s.CitationPanelOpen = false
	return s
}

func dropNoticesFor(notices []Notice, target string) []Notice {
	if len(notices) == 0 {
		return notices
	}
	out := make([]Notice, 0, len(notices))
	for _, n := range notices {
		if n.Target != target {
			out = append(out, n)
		}
	}
	return out
}
