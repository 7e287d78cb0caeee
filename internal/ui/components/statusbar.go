// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/danniesim/mecoai-chat/internal/ui/styles"
	"github.com/danniesim/mecoai-chat/internal/util"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// StatusBar shows a status message on the left and key help on the right.
type StatusBar struct {
	help  help.Model
	theme *styles.Theme
	Width int
}

// NewStatusBar creates a status bar styled from theme.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	s := &StatusBar{help: help.New(), Width: 80}
	s.SetTheme(theme)
	return s
}

// SetTheme swaps the theme after a reload.
func (s *StatusBar) SetTheme(theme *styles.Theme) {
	s.theme = theme
	s.help.Styles.ShortKey = theme.ShortcutKey
	s.help.Styles.ShortDesc = theme.ShortcutDesc
	s.help.Styles.ShortSeparator = theme.Muted
	s.help.Styles.FullKey = theme.ShortcutKey
	s.help.Styles.FullDesc = theme.ShortcutDesc
	s.help.Styles.FullSeparator = theme.Muted
}

// ToggleFull switches between the one-line and the full help.
func (s *StatusBar) ToggleFull() {
	s.help.ShowAll = !s.help.ShowAll
}

// ShowingFull reports whether the full help is shown.
func (s *StatusBar) ShowingFull() bool {
	return s.help.ShowAll
}

// View renders the status text followed by the help for keys.
func (s *StatusBar) View(status string, keys help.KeyMap) string {
	width := max(s.Width, 20)
	left := s.theme.Muted.Render(util.TruncateWidth(status, width/3))
	s.help.Width = max(width-lipgloss.Width(left)-3, 10)
	right := s.help.View(keys)
	if s.help.ShowAll {
		return s.theme.StatusBar.Width(width).Render(left + "\n" + right)
	}
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	return s.theme.StatusBar.Width(width).Render(left + util.PadRight("", gap) + right)
}
