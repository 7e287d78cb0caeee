// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/danniesim/mecoai-chat/internal/model"
	"github.com/danniesim/mecoai-chat/internal/ui/styles"
)

// =============================================================================
// CITATION PANEL
// =============================================================================

// RenderCitationPanel shows the active citation: title, link and content.
func RenderCitationPanel(theme *styles.Theme, c model.Citation, index, width, height int) string {
	inner := max(width-4, 10)
	parts := []string{theme.CitationTitle.Width(inner).Render(c.DisplayTitle(index))}
	if link, ok := c.Link(); ok {
		parts = append(parts, theme.LinkStyle.Render(link))
	} else if c.FilePath != nil && *c.FilePath != "" {
		parts = append(parts, theme.Muted.Render(*c.FilePath))
	}
	parts = append(parts, "", lipgloss.NewStyle().Width(inner).Render(strings.TrimSpace(c.Content)))

	body := strings.Join(parts, "\n")
	// Cut to the panel height; the border takes two lines and the footer one.
	lines := strings.Split(body, "\n")
	if limit := max(height-3, 1); len(lines) > limit {
		lines = lines[:limit]
	}
	lines = append(lines, theme.Muted.Render("esc to close"))
	return theme.CitationPanel.Width(width - 2).Height(height - 2).Render(strings.Join(lines, "\n"))
}
