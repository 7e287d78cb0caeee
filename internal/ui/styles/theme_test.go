// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewThemeForcedModes(t *testing.T) {
	dark := NewTheme(ThemeDark)
	assert.True(t, dark.IsDark)
	assert.Equal(t, "dark", dark.GlamourStyle())

	light := NewTheme(ThemeLight)
	assert.False(t, light.IsDark)
	assert.Equal(t, "light", light.GlamourStyle())
}

func TestGetLayoutMode(t *testing.T) {
	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
		{200, LayoutWide},
	}
	theme := NewTheme(ThemeDark)
	for _, tt := range tests {
		theme.SetSize(tt.width, 40)
		assert.Equal(t, tt.want, theme.GetLayoutMode(), "width %d", tt.width)
	}
}

func TestStylesRenderText(t *testing.T) {
	theme := NewTheme(ThemeLight)
	assert.Contains(t, theme.UserBubble.Render("hello"), "hello")
	assert.Contains(t, theme.Toast.Render("Error: could not delete item"), "could not delete item")
}
