// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"bytes"
	"encoding/json"
)

// =============================================================================
// STREAMED RESPONSE TYPES
// =============================================================================

// ChatResponse is one JSON object of a generation stream.
//
// A single object may carry any mix of assistant and tool fragments.
// Assistant content arrives as successive partial fragments that share the
// response id.
type ChatResponse struct {
	ID              string           `json:"id"`
	Model           string           `json:"model,omitempty"`
	Created         int64            `json:"created,omitempty"`
	Object          string           `json:"object,omitempty"`
	Choices         []Choice         `json:"choices"`
	HistoryMetadata *HistoryMetadata `json:"history_metadata,omitempty"`
	Error           *ResponseError   `json:"error,omitempty"`
}

// Choice holds the message fragments of one response choice.
type Choice struct {
	Messages []ChatMessage `json:"messages"`
}

// Fragments returns every message fragment in choice order.
func (r *ChatResponse) Fragments() []ChatMessage {
	var out []ChatMessage
	for _, c := range r.Choices {
		out = append(out, c.Messages...)
	}
	return out
}

// HistoryMetadata is sent by the persisted generation endpoint and names
// the conversation the server stored the turn under.
type HistoryMetadata struct {
	ConversationID string `json:"conversation_id"`
	Title          string `json:"title,omitempty"`
	Date           string `json:"date,omitempty"`
}

// ResponseError is the error field of a response object or error body.
// The backend sends either a plain string or an object with a message.
type ResponseError struct {
	Message string
	Code    string
	empty   bool
}

// Present reports whether the error field carried a truthy value.
func (e *ResponseError) Present() bool {
	return e != nil && !e.empty
}

func (e *ResponseError) Error() string {
	return e.Message
}

// UnmarshalJSON decodes string, object and scalar error shapes.
func (e *ResponseError) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")), bytes.Equal(data, []byte("false")),
		bytes.Equal(data, []byte("0")), bytes.Equal(data, []byte(`""`)):
		*e = ResponseError{empty: true}
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*e = ResponseError{Message: s}
		return nil
	case data[0] == '{':
		var obj struct {
			Message string          `json:"message"`
			Code    json.RawMessage `json:"code"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*e = ResponseError{Message: obj.Message, Code: string(bytes.Trim(obj.Code, `"`))}
		if e.Message == "" {
			e.Message = string(data)
		}
		return nil
	default:
		*e = ResponseError{Message: string(data)}
		return nil
	}
}

// MarshalJSON writes the error back as an object.
func (e ResponseError) MarshalJSON() ([]byte, error) {
	if e.empty {
		return []byte("null"), nil
	}
	return json.Marshal(struct {
		Message string `json:"message"`
		Code    string `json:"code,omitempty"`
	}{e.Message, e.Code})
}

// ErrorBody is the JSON body returned with a non-ok status.
type ErrorBody struct {
	Error *ResponseError `json:"error"`
}
