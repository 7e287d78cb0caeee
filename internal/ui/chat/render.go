// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/danniesim/mecoai-chat/internal/model"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

const maxCachedRenders = 256

// answerRenderer formats answers, with glamour when markdown is on.
// Rendered output is cached per message, content length and width, so
// committed messages are rendered once and a streaming answer once per
// frame.
type answerRenderer struct {
	markdown bool
	style    string
	width    int
	md       *glamour.TermRenderer
	cache    map[string]string
}

func newAnswerRenderer(markdown bool, style string) *answerRenderer {
	return &answerRenderer{markdown: markdown, style: style, cache: map[string]string{}}
}

// configure updates the settings, dropping the cache when they changed.
func (r *answerRenderer) configure(markdown bool, style string, width int) {
	if r.markdown == markdown && r.style == style && r.width == width {
		return
	}
	r.markdown, r.style, r.width = markdown, style, width
	r.md = nil
	r.cache = map[string]string{}
}

// render returns the body for a message.
func (r *answerRenderer) render(m model.ChatMessage) string {
	if m.Role != model.RoleAssistant || !r.markdown {
		return m.Content
	}

	key := m.ID + ":" + strconv.Itoa(len(m.Content))
	if out, ok := r.cache[key]; ok {
		return out
	}
	out := r.renderMarkdown(m.Content)
	if len(r.cache) >= maxCachedRenders {
		r.cache = map[string]string{}
	}
	r.cache[key] = out
	return out
}

func (r *answerRenderer) renderMarkdown(content string) string {
	if r.md == nil {
		md, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(r.style),
			glamour.WithWordWrap(max(r.width, 20)),
		)
		if err != nil {
			r.markdown = false
			return content
		}
		r.md = md
	}
	out, err := r.md.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}
