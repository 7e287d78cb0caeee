// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/danniesim/mecoai-chat/internal/ui/styles"
)

// =============================================================================
// MODAL DIALOG
// =============================================================================

// DialogHint tells the user how to close a dialog.
const DialogHint = "Press Enter or Esc to close"

// RenderDialog draws a dialog box centered in a width x height area.
func RenderDialog(theme *styles.Theme, title, subtitle string, width, height int) string {
	boxWidth := width * 2 / 3
	if boxWidth < 30 {
		boxWidth = min(30, width)
	}
	inner := max(boxWidth-6, 10)

	body := lipgloss.JoinVertical(lipgloss.Left,
		theme.DialogTitle.Render(title),
		"",
		theme.DialogSubtitle.Width(inner).Render(subtitle),
		"",
		theme.DialogHint.Render(DialogHint),
	)
	box := theme.DialogBox.Width(boxWidth - 2).Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// RenderConfirm draws a yes/no question in the dialog style.
func RenderConfirm(theme *styles.Theme, question, detail string, width, height int) string {
	box := theme.DialogBox.Render(lipgloss.JoinVertical(lipgloss.Left,
		theme.DialogTitle.Render(question),
		theme.DialogSubtitle.Render(detail),
		"",
		theme.DialogHint.Render("y to confirm, any other key to cancel"),
	))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
