// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is a chat session: an ordered, append-only list of messages.
//
// Messages is nil for history entries whose messages have not been read yet.
type Conversation struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Date     string        `json:"date"`
	Messages []ChatMessage `json:"messages"`
}

// NewConversation starts a conversation with the question as its title
// and first message.
func NewConversation(question ChatMessage) Conversation {
	return Conversation{
		ID:       uuid.NewString(),
		Title:    question.Content,
		Date:     FormatDate(time.Now()),
		Messages: []ChatMessage{question},
	}
}

// UnmarshalJSON accepts both the "date" field and the "createdAt" field
// used by history list entries.
func (c *Conversation) UnmarshalJSON(data []byte) error {
	type plain Conversation
	var wire struct {
		plain
		CreatedAt string `json:"createdAt"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*c = Conversation(wire.plain)
	if c.Date == "" {
		c.Date = wire.CreatedAt
	}
	return nil
}

// Clone returns a copy whose message slice is not shared with c.
func (c Conversation) Clone() Conversation {
	c.Messages = CloneMessages(c.Messages)
	return c
}

// Append returns a copy of c with msgs added at the end.
func (c Conversation) Append(msgs ...ChatMessage) Conversation {
	out := make([]ChatMessage, 0, len(c.Messages)+len(msgs))
	out = append(out, c.Messages...)
	out = append(out, msgs...)
	c.Messages = out
	return c
}

// Time returns the parsed conversation date.
func (c Conversation) Time() time.Time {
	return ParseDate(c.Date)
}

// IsEmpty returns true if the conversation has no messages.
func (c Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// Hydrated reports whether the messages of this entry are known.
func (c Conversation) Hydrated() bool {
	return c.Messages != nil
}

// LastMessage returns the last message, or false when there is none.
func (c Conversation) LastMessage() (ChatMessage, bool) {
	if len(c.Messages) == 0 {
		return ChatMessage{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

// LastAnswer returns the last assistant message and the tool message that
// immediately precedes it, if any.
func (c Conversation) LastAnswer() (answer ChatMessage, tool *ChatMessage, ok bool) {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Role != RoleAssistant {
			continue
		}
		answer = c.Messages[i]
		if i > 0 && c.Messages[i-1].Role == RoleTool {
			t := c.Messages[i-1]
			tool = &t
		}
		return answer, tool, true
	}
	return ChatMessage{}, nil, false
}

// FindConversation returns the index of the conversation with id, or -1.
func FindConversation(list []Conversation, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

// CloneConversations copies list and every message slice within it.
// A nil list stays nil.
func CloneConversations(list []Conversation) []Conversation {
	if list == nil {
		return nil
	}
	out := make([]Conversation, len(list))
	for i := range list {
		out[i] = list[i].Clone()
	}
	return out
}
