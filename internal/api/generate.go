// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"io"
	"net/http"

	"github.com/danniesim/mecoai-chat/internal/model"
	"github.com/danniesim/mecoai-chat/internal/stream"
)

// =============================================================================
// GENERATION STREAMS
// =============================================================================

// Generation is an open generation stream. Callers must Close it.
type Generation struct {
	*stream.Decoder
	body io.ReadCloser
}

// Close releases the response body.
func (g *Generation) Close() error {
	return g.body.Close()
}

// Conversation starts a generation that is not persisted.
func (c *Client) Conversation(ctx context.Context, messages []model.ChatMessage) (*Generation, error) {
	return c.generate(ctx, PathConversation, ConversationRequest{Messages: messages})
}

// HistoryGenerate starts a generation that the backend persists.
// conversationID is empty for a new conversation; the backend then reports
// the id it assigned through the stream's history metadata.
func (c *Client) HistoryGenerate(ctx context.Context, messages []model.ChatMessage, conversationID string) (*Generation, error) {
	return c.generate(ctx, PathHistoryGenerate, ConversationRequest{Messages: messages, ConversationID: conversationID})
}

func (c *Client) generate(ctx context.Context, path string, body ConversationRequest) (*Generation, error) {
	if body.Messages == nil {
		body.Messages = []model.ChatMessage{}
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(c.streamClient, req)
	if err != nil {
		return nil, err
	}
	return &Generation{Decoder: stream.NewDecoder(resp.Body), body: resp.Body}, nil
}
