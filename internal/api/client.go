// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the chat backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/danniesim/mecoai-chat/internal/chaterr"
	"github.com/danniesim/mecoai-chat/internal/model"
)

// =============================================================================
// ENDPOINTS
// =============================================================================

const (
	PathConversation     = "/conversation"
	PathHistoryGenerate  = "/history/generate"
	PathHistoryList      = "/history/list"
	PathHistoryRead      = "/history/read"
	PathHistoryUpdate    = "/history/update"
	PathHistoryRename    = "/history/rename"
	PathHistoryDelete    = "/history/delete"
	PathHistoryDeleteAll = "/history/delete_all"
	PathHistoryClear     = "/history/clear"
	PathHistoryEnsure    = "/history/ensure"
	PathFrontendSettings = "/frontend_settings"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the backend origin (default: http://127.0.0.1:50505)
	BaseURL string

	// Timeout for non-streaming requests (default: 30s).
	// Generation streams never time out on the client.
	Timeout time.Duration

	// UserAgent sent with every request
	UserAgent string

	// Headers added to every request (e.g. a session cookie)
	Headers map[string]string

	// Logger for request tracing (default: no-op)
	Logger *zap.Logger
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:   "http://127.0.0.1:50505",
		Timeout:   30 * time.Second,
		UserAgent: "mecoai-chat",
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the chat backend: generation streams, history CRUD and
// frontend settings.
//
// The Client is safe for concurrent use.
//
// Example:
//
//	client := api.NewClient(api.DefaultConfig())
//	gen, err := client.Conversation(ctx, msgs)
//	if err != nil {
//	    return err
//	}
//	defer gen.Close()
type Client struct {
	config       *ClientConfig
	httpClient   *http.Client
	streamClient *http.Client
	log          *zap.Logger
}

// NewClient creates a client. Zero fields of config take their defaults.
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := *config
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Client{
		config:       &cfg,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		streamClient: &http.Client{},
		log:          log.Named("api"),
	}
}

// BaseURL returns the backend origin the client talks to.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// newRequest builds a request with a JSON body (nil for none).
func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, &chaterr.Error{Kind: chaterr.KindUnknown, Message: "failed to marshal request", Endpoint: path, Cause: err}
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, rd)
	if err != nil {
		return nil, chaterr.Transport(path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	for k, v := range c.config.Headers {
		req.Header.Set(k, v)
	}
	return req, nil
}

// do sends a request and returns the response. Non-ok statuses are
// converted to KindServer errors carrying the body's error text; the body
// is closed in that case.
func (c *Client) do(hc *http.Client, req *http.Request) (*http.Response, error) {
	path := req.URL.Path
	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		c.log.Debug("request failed", zap.String("method", req.Method), zap.String("path", path), zap.Error(err))
		return nil, chaterr.Transport(path, err)
	}
	c.log.Debug("request",
		zap.String("method", req.Method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, chaterr.Server(path, resp.StatusCode, errorText(resp.Body))
	}
	return resp, nil
}

// call performs a non-streaming request and decodes the JSON answer into
// out (nil to discard).
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	resp, err := c.do(c.httpClient, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &chaterr.Error{Kind: chaterr.KindMalformed, Message: "failed to decode response", Endpoint: path, Cause: err}
	}
	return nil
}

// errorText extracts the error message from an error body.
func errorText(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 64*1024))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var body model.ErrorBody
	if json.Unmarshal(raw, &body) == nil && body.Error.Present() {
		return body.Error.Message
	}
	return ""
}
