// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/danniesim/mecoai-chat/internal/chaterr"
	"github.com/danniesim/mecoai-chat/internal/model"
)

// =============================================================================
// HISTORY OPERATIONS
// =============================================================================

// HistoryList fetches one page of conversations, newest first.
//
// A nil slice with a nil error means the backend answered with something
// other than a list. An empty page is a non-nil empty slice.
func (c *Client) HistoryList(ctx context.Context, offset int) ([]model.Conversation, error) {
	var raw json.RawMessage
	if err := c.call(ctx, http.MethodGet, PathHistoryList+"?offset="+strconv.Itoa(offset), nil, &raw); err != nil {
		return nil, err
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '[' {
		c.log.Warn("history list is not an array", zap.Int("offset", offset))
		return nil, nil
	}

	var list []model.Conversation
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, &chaterr.Error{Kind: chaterr.KindMalformed, Message: "failed to decode history list", Endpoint: PathHistoryList, Cause: err}
	}
	return list, nil
}

// HistoryRead fetches the stored messages of one conversation.
func (c *Client) HistoryRead(ctx context.Context, conversationID string) ([]model.ChatMessage, error) {
	var out ReadResponse
	if err := c.call(ctx, http.MethodPost, PathHistoryRead, ConversationIDRequest{ConversationID: conversationID}, &out); err != nil {
		return nil, err
	}
	msgs := make([]model.ChatMessage, 0, len(out.Messages))
	for _, m := range out.Messages {
		msgs = append(msgs, m.chatMessage())
	}
	return msgs, nil
}

// HistoryUpdate replaces the stored messages of a conversation.
func (c *Client) HistoryUpdate(ctx context.Context, conversationID string, messages []model.ChatMessage) error {
	return c.call(ctx, http.MethodPost, PathHistoryUpdate, UpdateRequest{ConversationID: conversationID, Messages: messages}, nil)
}

// HistoryRename retitles a conversation.
func (c *Client) HistoryRename(ctx context.Context, conversationID, title string) error {
	return c.call(ctx, http.MethodPost, PathHistoryRename, RenameRequest{ConversationID: conversationID, Title: title}, nil)
}

// HistoryDelete removes one conversation.
func (c *Client) HistoryDelete(ctx context.Context, conversationID string) error {
	return c.call(ctx, http.MethodDelete, PathHistoryDelete, ConversationIDRequest{ConversationID: conversationID}, nil)
}

// HistoryDeleteAll removes every conversation of the user.
func (c *Client) HistoryDeleteAll(ctx context.Context) error {
	return c.call(ctx, http.MethodDelete, PathHistoryDeleteAll, struct{}{}, nil)
}

// HistoryClear removes the messages of a conversation but keeps the entry.
func (c *Client) HistoryClear(ctx context.Context, conversationID string) error {
	return c.call(ctx, http.MethodPost, PathHistoryClear, ConversationIDRequest{ConversationID: conversationID}, nil)
}

// HistoryEnsure asks whether remote history is available.
//
// Any HTTP answer is mapped to a health value: an ok answer with a message
// is Working, 500 is NotWorking, 401 is InvalidCredentials and anything
// else reports the body's error text. Only transport failures and
// undecodable bodies return an error.
func (c *Client) HistoryEnsure(ctx context.Context) (model.CosmosDBHealth, error) {
	req, err := c.newRequest(ctx, http.MethodGet, PathHistoryEnsure, nil)
	if err != nil {
		return model.CosmosDBHealth{}, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.CosmosDBHealth{}, chaterr.Transport(PathHistoryEnsure, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.CosmosDBHealth{}, chaterr.Transport(PathHistoryEnsure, err)
	}
	var body ensureBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return model.CosmosDBHealth{}, &chaterr.Error{Kind: chaterr.KindMalformed, Message: "failed to decode ensure response", Endpoint: PathHistoryEnsure, Cause: err}
	}

	var status model.CosmosDBStatus
	switch {
	case body.Message != "":
		status = model.CosmosDBWorking
	case resp.StatusCode == http.StatusInternalServerError:
		status = model.CosmosDBNotWorking
	case resp.StatusCode == http.StatusUnauthorized:
		status = model.CosmosDBInvalidCredentials
	default:
		status = model.CosmosDBStatus(body.Error)
	}
	ok := resp.StatusCode >= 200 && resp.StatusCode <= 299
	c.log.Info("history ensure", zap.Bool("cosmosDB", ok), zap.String("status", string(status)))
	return model.CosmosDBHealth{CosmosDB: ok, Status: status}, nil
}

// FrontendSettings fetches the UI and feature configuration.
func (c *Client) FrontendSettings(ctx context.Context) (*model.FrontendSettings, error) {
	var out model.FrontendSettings
	if err := c.call(ctx, http.MethodGet, PathFrontendSettings, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
