// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the chat TUI.

All colors are Lip Gloss AdaptiveColor values, so one palette serves light
and dark terminals. NewTheme picks the background from the configured theme
name; "auto" asks the terminal through termenv.

# Color System (colors.go)

	Cyan    - Header and user questions
	Purple  - Assistant answers and active history entries
	Amber   - Citations
	Rose    - Error messages, notices and dialogs
	Emerald - Positive feedback

# Theme System (theme.go)

	theme := styles.NewTheme(cfg.UI.Theme)
	theme.SetSize(width, height)
	box := theme.AssistantBubble.Width(width - 4).Render(answer)

GetLayoutMode decides how many side panels fit next to the transcript.
*/
package styles
