// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danniesim/mecoai-chat/internal/model"
)

// =============================================================================
// ACCUMULATOR
// =============================================================================

// Accumulator folds the response objects of one request into messages.
//
// Assistant fragments are concatenated onto a single message whose id and
// date are fixed by the first assistant fragment. A tool fragment, or an
// assistant fragment carrying context, replaces the held tool message.
// Accumulator is not safe for concurrent use.
type Accumulator struct {
	// PERFORMANCE: strings.Builder avoids quadratic allocations
	content   strings.Builder
	assistant *model.ChatMessage
	tool      *model.ChatMessage
	metadata  *model.HistoryMetadata
	count     int

	now   func() time.Time
	newID func() string
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Add folds one response object in.
func (a *Accumulator) Add(resp *model.ChatResponse) {
	if resp == nil {
		return
	}
	a.count++
	if resp.HistoryMetadata != nil {
		md := *resp.HistoryMetadata
		a.metadata = &md
	}

	for _, frag := range resp.Fragments() {
		switch frag.Role {
		case model.RoleAssistant:
			if frag.Context != "" {
				a.tool = &model.ChatMessage{
					ID:      a.newID(),
					Role:    model.RoleTool,
					Content: frag.Context,
					Date:    model.FormatDate(a.now()),
				}
			}
			if a.assistant == nil {
				a.assistant = &model.ChatMessage{
					ID:   firstNonEmpty(resp.ID, frag.ID, a.newID()),
					Role: model.RoleAssistant,
					Date: model.FormatDate(a.now()),
				}
			}
			a.content.WriteString(frag.Content)
		case model.RoleTool:
			a.tool = &model.ChatMessage{
				ID:      firstNonEmpty(frag.ID, a.newID()),
				Role:    model.RoleTool,
				Content: frag.Content,
				Date:    model.FormatDate(a.now()),
			}
		}
	}
}

// Loading reports whether no assistant fragment has been seen yet.
func (a *Accumulator) Loading() bool {
	return a.assistant == nil
}

// Responses returns the number of response objects folded in.
func (a *Accumulator) Responses() int {
	return a.count
}

// Empty reports whether no message has been produced.
func (a *Accumulator) Empty() bool {
	return a.assistant == nil && a.tool == nil
}

// Content returns the assistant text accumulated so far.
func (a *Accumulator) Content() string {
	return a.content.String()
}

// Messages returns the messages produced so far in their final order:
// the tool message if one was produced, then the assistant message.
// The result is a fresh slice.
func (a *Accumulator) Messages() []model.ChatMessage {
	out := make([]model.ChatMessage, 0, 2)
	if a.tool != nil {
		out = append(out, *a.tool)
	}
	if a.assistant != nil {
		msg := *a.assistant
		msg.Content = a.content.String()
		out = append(out, msg)
	}
	return out
}

// Finalize returns Messages prefixed with user when it is non-nil.
func (a *Accumulator) Finalize(user *model.ChatMessage) []model.ChatMessage {
	msgs := a.Messages()
	if user == nil {
		return msgs
	}
	return append([]model.ChatMessage{*user}, msgs...)
}

// Metadata returns the last history metadata seen, or nil.
func (a *Accumulator) Metadata() *model.HistoryMetadata {
	return a.metadata
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
