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
// HEADER COMPONENT
// =============================================================================

// DefaultTitle is shown until the backend reports its own title.
const DefaultTitle = "Contoso"

// Header is the title bar.
type Header struct {
	Title string
	// History describes the history capability, e.g. "history on".
	History string
	// Busy is set while a generation is running.
	Busy  bool
	Width int
	theme *styles.Theme
}

// NewHeader creates a header with the default title.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{Title: DefaultTitle, Width: 80, theme: theme}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetTheme swaps the theme after a reload.
func (h *Header) SetTheme(theme *styles.Theme) {
	h.theme = theme
}

// View renders the header on one line.
func (h *Header) View() string {
	width := h.Width
	if width < 20 {
		width = 20
	}

	left := h.theme.HeaderTitle.Render(h.Title)
	var right []string
	if h.Busy {
		right = append(right, styles.StatusIndicators.Active+" generating")
	}
	if h.History != "" {
		right = append(right, h.History)
	}
	rightText := h.theme.HeaderSubtitle.Render(strings.Join(right, "  "))

	// Header style pads 2 cells each side.
	inner := width - 4
	gap := inner - lipgloss.Width(left) - lipgloss.Width(rightText)
	if gap < 1 {
		left = h.theme.HeaderTitle.Render(util.TruncateWidth(h.Title, max(inner-lipgloss.Width(rightText)-1, 1)))
		gap = max(inner-lipgloss.Width(left)-lipgloss.Width(rightText), 1)
	}
	return h.theme.Header.Width(width).Render(left + strings.Repeat(" ", gap) + rightText)
}
