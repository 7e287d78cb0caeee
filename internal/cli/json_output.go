// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"io"
	"time"

	"github.com/danniesim/mecoai-chat/internal/model"
)

// =============================================================================
// JSON RESPONSE ENVELOPE
// =============================================================================

// JSONResponse is the envelope every --json command writes.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data any `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// Timestamp is the RFC 3339 time the response was generated
	Timestamp string `json:"timestamp"`

	// Command is the command that was executed
	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a successful JSON response.
func NewJSONResponse(command string, data any) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates an error JSON response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := describe(err)
	return &JSONResponse{
		Success:   false,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Write encodes the response to w, indented.
func (r *JSONResponse) Write(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// =============================================================================
// COMMAND DATA
// =============================================================================

// VersionData is the data of "version --json".
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// AskData is the data of "ask --json".
type AskData struct {
	ConversationID string              `json:"conversation_id,omitempty"`
	Outcome        string              `json:"outcome"`
	Answer         string              `json:"answer"`
	Citations      []CitationData      `json:"citations"`
	Error          string              `json:"error,omitempty"`
	DurationMs     int64               `json:"duration_ms"`
	Messages       []model.ChatMessage `json:"messages,omitempty"`
}

// CitationData is one numbered source of an answer.
type CitationData struct {
	Index    int    `json:"index"`
	Title    string `json:"title"`
	URL      string `json:"url,omitempty"`
	FilePath string `json:"filepath,omitempty"`
}

// HistoryEntryData is one row of "history list --json".
type HistoryEntryData struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"`
}

// SettingsData is the data of "settings --json".
type SettingsData struct {
	BaseURL  string                  `json:"base_url"`
	History  model.CosmosDBHealth    `json:"history"`
	Settings *model.FrontendSettings `json:"frontend_settings"`
}

// citationData numbers citations from 1.
func citationData(cites []model.Citation) []CitationData {
	out := make([]CitationData, 0, len(cites))
	for i, c := range cites {
		d := CitationData{Index: i + 1, Title: c.DisplayTitle(i + 1)}
		if link, ok := c.Link(); ok {
			d.URL = link
		}
		if c.FilePath != nil {
			d.FilePath = *c.FilePath
		}
		out = append(out, d)
	}
	return out
}

// HistoryActionData is the data of the history mutation commands.
type HistoryActionData struct {
	Action string `json:"action"`
	ID     string `json:"id,omitempty"`
	Title  string `json:"title,omitempty"`
	Path   string `json:"path,omitempty"`
}

// historyEntries converts history list entries.
func historyEntries(list []model.Conversation) []HistoryEntryData {
	out := make([]HistoryEntryData, 0, len(list))
	for _, c := range list {
		out = append(out, HistoryEntryData{ID: c.ID, Title: c.Title, Date: c.Date})
	}
	return out
}
