// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/danniesim/mecoai-chat/internal/ui/styles"
	"github.com/danniesim/mecoai-chat/internal/util"
)

// =============================================================================
// TOASTS
// =============================================================================

// MaxToasts is the number of notices stacked at once; older ones are hidden.
const MaxToasts = 3

// RenderToasts stacks notice texts right-aligned, newest last. Expiry is
// owned by the caller.
func RenderToasts(theme *styles.Theme, texts []string, width int) string {
	if len(texts) == 0 {
		return ""
	}
	if len(texts) > MaxToasts {
		texts = texts[len(texts)-MaxToasts:]
	}
	maxText := width - 8
	if maxText < 10 {
		maxText = 10
	}

	lines := make([]string, 0, len(texts))
	for _, t := range texts {
		body := styles.StatusIndicators.Error + " " + util.TruncateWidth(util.SingleLine(t), maxText)
		lines = append(lines, theme.Toast.Render(body))
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Right, strings.Join(lines, "\n"))
}
