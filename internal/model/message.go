// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
	RoleError     Role = "error"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	case RoleTool:
		return "Sources"
	case RoleError:
		return "Error"
	default:
		return string(r)
	}
}

// =============================================================================
// TIMESTAMPS
// =============================================================================

// DateLayout is the wire format for message and conversation dates
// (millisecond precision, UTC, trailing Z).
const DateLayout = "2006-01-02T15:04:05.000Z"

// acceptedLayouts covers what the backend has been seen to send.
var acceptedLayouts = []string{
	time.RFC3339Nano,
	DateLayout,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FormatDate renders t in DateLayout.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseDate parses a wire date. Unparseable input yields the zero time.
func ParseDate(s string) time.Time {
	for _, layout := range acceptedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// =============================================================================
// CHAT MESSAGE
// =============================================================================

// ChatMessage is a single message in a conversation.
//
// For RoleTool messages Content is itself a JSON document carrying citations
// (see ParseCitations). Messages are immutable once appended to a
// conversation, except for Feedback.
type ChatMessage struct {
	ID       string   `json:"id"`
	Role     Role     `json:"role"`
	Content  string   `json:"content"`
	Date     string   `json:"date"`
	Context  string   `json:"context,omitempty"`
	Feedback Feedback `json:"feedback,omitempty"`
}

// NewMessage creates a message with a fresh id stamped with the current time.
func NewMessage(role Role, content string) ChatMessage {
	return ChatMessage{
		ID:      uuid.NewString(),
		Role:    role,
		Content: content,
		Date:    FormatDate(time.Now()),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) ChatMessage {
	return NewMessage(RoleUser, content)
}

// NewErrorMessage creates the synthetic message shown when generation fails.
func NewErrorMessage(content string) ChatMessage {
	return NewMessage(RoleError, content)
}

// Time returns the parsed message date.
func (m ChatMessage) Time() time.Time {
	return ParseDate(m.Date)
}

// IsError reports whether the message is a synthetic error message.
func (m ChatMessage) IsError() bool {
	return m.Role == RoleError
}

// WithoutErrors returns the messages that are sent back to the model,
// which is every message except synthetic error messages.
func WithoutErrors(msgs []ChatMessage) []ChatMessage {
	out := make([]ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		if m.Role != RoleError {
			out = append(out, m)
		}
	}
	return out
}

// CloneMessages returns a copy of msgs that shares no backing array.
func CloneMessages(msgs []ChatMessage) []ChatMessage {
	if msgs == nil {
		return nil
	}
	out := make([]ChatMessage, len(msgs))
	copy(out, msgs)
	return out
}
