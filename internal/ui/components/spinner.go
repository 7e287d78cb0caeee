// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/danniesim/mecoai-chat/internal/ui/styles"
)

// =============================================================================
// LOADING INDICATOR
// =============================================================================

// LoadingText is shown until the first assistant fragment arrives.
const LoadingText = "Generating answer..."

// Spinner is the typing indicator shown while an answer is loading.
type Spinner struct {
	spinner spinner.Model
	theme   *styles.Theme
}

// NewSpinner creates an ASCII spinner.
func NewSpinner(theme *styles.Theme) Spinner {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	s.Style = theme.Spinner
	return Spinner{spinner: s, theme: theme}
}

// Tick starts the animation.
func (s Spinner) Tick() tea.Cmd {
	return s.spinner.Tick
}

// Update advances the animation.
func (s Spinner) Update(msg tea.Msg) (Spinner, tea.Cmd) {
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return s, cmd
}

// View renders the spinner followed by LoadingText.
func (s Spinner) View() string {
	return s.spinner.View() + " " + s.theme.ThinkingText.Render(LoadingText)
}
