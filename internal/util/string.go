// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// TitleWidth is the number of display cells a history title keeps before
// it is cut.
const TitleWidth = 28

// TitleEllipsis is appended to a cut title.
const TitleEllipsis = " ..."

// UNICODE: Width-aware truncation counts display cells, so CJK titles and
// emoji line up in the history panel.

// TruncateTitle shortens a history title to TitleWidth cells plus
// TitleEllipsis. Titles that fit are returned unchanged.
func TruncateTitle(title string) string {
	if runewidth.StringWidth(title) <= TitleWidth {
		return title
	}
	return runewidth.Truncate(title, TitleWidth, "") + TitleEllipsis
}

// TruncateWidth cuts s to at most maxWidth cells, ending in "..." when it
// was cut and there is room for it.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// PadRight pads s with spaces to width cells.
func PadRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// StringWidth returns the display width of s.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// SingleLine collapses whitespace runs, newlines included, into single
// spaces.
func SingleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
