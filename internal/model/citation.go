// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Citation is a source reference attached to an answer through the
// tool message that precedes it.
type Citation struct {
	PartIndex int             `json:"part_index,omitempty"`
	Content   string          `json:"content"`
	ID        string          `json:"id"`
	Title     *string         `json:"title"`
	FilePath  *string         `json:"filepath"`
	URL       *string         `json:"url"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	ChunkID   *string         `json:"chunk_id"`
	ReIndexID string          `json:"reindex_id,omitempty"`
}

// ToolMessageContent is the JSON document carried in a tool message.
type ToolMessageContent struct {
	Citations []Citation `json:"citations"`
	Intent    string     `json:"intent"`
}

// ParseCitations extracts the citations from a tool message.
// Any decode failure yields an empty list.
func ParseCitations(msg *ChatMessage) []Citation {
	if msg == nil || msg.Role != RoleTool {
		return []Citation{}
	}
	var payload ToolMessageContent
	if err := json.Unmarshal([]byte(msg.Content), &payload); err != nil || payload.Citations == nil {
		return []Citation{}
	}
	return payload.Citations
}

// DisplayTitle is the label shown for a citation numbered n (1-based).
func (c Citation) DisplayTitle(n int) string {
	switch {
	case c.Title != nil && *c.Title != "":
		return *c.Title
	case c.FilePath != nil && *c.FilePath != "":
		return *c.FilePath
	default:
		return "Citation " + strconv.Itoa(n)
	}
}

// Link returns the citation URL if it may be opened directly.
// Blob storage URLs are never offered.
func (c Citation) Link() (string, bool) {
	if c.URL == nil || *c.URL == "" || strings.Contains(*c.URL, "blob.core") {
		return "", false
	}
	return *c.URL, true
}
