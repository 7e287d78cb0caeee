// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/danniesim/mecoai-chat/internal/model"
	"github.com/danniesim/mecoai-chat/internal/ui/styles"
	"github.com/danniesim/mecoai-chat/internal/util"
)

// =============================================================================
// TRANSCRIPT ENTRIES
// =============================================================================

// Entry is one visible item of the transcript. Tool messages are never
// shown on their own; their citations ride on the answer that follows.
type Entry struct {
	Message   model.ChatMessage
	Citations []model.Citation
	Feedback  model.Feedback
}

// BuildEntries turns messages into transcript entries.
func BuildEntries(msgs []model.ChatMessage, feedback func(id string) model.Feedback) []Entry {
	out := make([]Entry, 0, len(msgs))
	for i, m := range msgs {
		if m.Role == model.RoleTool {
			continue
		}
		e := Entry{Message: m}
		if m.Role == model.RoleAssistant {
			if i > 0 && msgs[i-1].Role == model.RoleTool {
				e.Citations = model.ParseCitations(&msgs[i-1])
			}
			if feedback != nil {
				e.Feedback = feedback(m.ID)
			}
		}
		out = append(out, e)
	}
	return out
}

// LastAnswer returns the index of the last assistant entry, or -1.
func LastAnswer(entries []Entry) int {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Message.Role == model.RoleAssistant {
			return i
		}
	}
	return -1
}

// =============================================================================
// RENDERING
// =============================================================================

// RenderEntry draws one entry. body is the already formatted content
// (markdown output or wrapped plain text).
func RenderEntry(theme *styles.Theme, e Entry, body string, width int, showCitations bool) string {
	bubble := max(width-4, 20)
	label := theme.RoleLabel.Render(e.Message.Role.DisplayName())

	switch e.Message.Role {
	case model.RoleUser:
		return label + "\n" + theme.UserBubble.Width(bubble).Render(body)

	case model.RoleError:
		return theme.ErrorBubble.Width(bubble).Render(styles.StatusIndicators.Error + " " + body)

	default:
		if sym := e.Feedback.Symbol(); sym != "" {
			style := theme.FeedbackUp
			if e.Feedback.IsNegative() {
				style = theme.FeedbackDown
			}
			label += " " + style.Render(sym)
		}
		content := strings.TrimRight(body, "\n")
		if showCitations && len(e.Citations) > 0 {
			content += "\n\n" + RenderCitationRefs(theme, e.Citations, bubble-4)
		}
		return label + "\n" + theme.AssistantBubble.Width(bubble).Render(content)
	}
}

// RenderCitationRefs lists citations as numbered references, one per line.
func RenderCitationRefs(theme *styles.Theme, citations []model.Citation, width int) string {
	lines := make([]string, 0, len(citations))
	for i, c := range citations {
		ref := fmt.Sprintf("[%d] ", i+1)
		title := util.TruncateWidth(util.SingleLine(c.DisplayTitle(i+1)), max(width-len(ref), 4))
		lines = append(lines, theme.CitationRef.Render(ref+title))
	}
	return strings.Join(lines, "\n")
}
