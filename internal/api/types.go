// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import "github.com/danniesim/mecoai-chat/internal/model"

// =============================================================================
// REQUEST BODIES
// =============================================================================

// ConversationRequest is the body of both generation endpoints.
type ConversationRequest struct {
	Messages       []model.ChatMessage `json:"messages"`
	ConversationID string              `json:"conversation_id,omitempty"`
}

// UpdateRequest replaces the stored messages of a conversation.
type UpdateRequest struct {
	ConversationID string              `json:"conversation_id"`
	Messages       []model.ChatMessage `json:"messages"`
}

// RenameRequest retitles a conversation.
type RenameRequest struct {
	ConversationID string `json:"conversation_id"`
	Title          string `json:"title"`
}

// ConversationIDRequest names one conversation for read, delete and clear.
type ConversationIDRequest struct {
	ConversationID string `json:"conversation_id"`
}

// =============================================================================
// RESPONSE BODIES
// =============================================================================

// ReadResponse is the answer of the history read endpoint.
type ReadResponse struct {
	ConversationID string        `json:"conversation_id"`
	Messages       []readMessage `json:"messages"`
}

// readMessage is the stored form of a message, which uses createdAt.
type readMessage struct {
	ID        string         `json:"id"`
	Role      model.Role     `json:"role"`
	Content   string         `json:"content"`
	CreatedAt string         `json:"createdAt"`
	Date      string         `json:"date"`
	Feedback  model.Feedback `json:"feedback,omitempty"`
}

func (m readMessage) chatMessage() model.ChatMessage {
	date := m.Date
	if date == "" {
		date = m.CreatedAt
	}
	return model.ChatMessage{ID: m.ID, Role: m.Role, Content: m.Content, Date: date, Feedback: m.Feedback}
}

// ensureBody is the answer of the ensure endpoint.
type ensureBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}
