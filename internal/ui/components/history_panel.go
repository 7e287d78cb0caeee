// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	"github.com/danniesim/mecoai-chat/internal/model"
	"github.com/danniesim/mecoai-chat/internal/ui/styles"
	"github.com/danniesim/mecoai-chat/internal/util"
)

// =============================================================================
// HISTORY PANEL
// =============================================================================

// historyRow is either a month label or a conversation.
type historyRow struct {
	label string
	conv  *model.Conversation
}

// HistoryPanel lists conversations grouped by month with a cursor.
//
// The last row is the paging sentinel: SentinelVisible reports whether it
// is inside the visible window.
type HistoryPanel struct {
	rows   []historyRow
	cursor int // index into rows, always a conversation row when any exist
	offset int // first visible row
	height int
	width  int
	theme  *styles.Theme
}

// NewHistoryPanel creates an empty panel.
func NewHistoryPanel(theme *styles.Theme) *HistoryPanel {
	return &HistoryPanel{theme: theme, height: 10, width: 32}
}

// SetTheme swaps the theme after a reload.
func (p *HistoryPanel) SetTheme(theme *styles.Theme) {
	p.theme = theme
}

// SetSize sets the outer size of the panel.
func (p *HistoryPanel) SetSize(width, height int) {
	p.width = width
	p.height = max(height, 3)
	p.clamp()
}

// SetItems rebuilds the rows from a newest-first list, keeping the cursor
// on the same conversation when it is still listed.
func (p *HistoryPanel) SetItems(list []model.Conversation, now time.Time) {
	selected := ""
	if c, ok := p.Selected(); ok {
		selected = c.ID
	}

	p.rows = p.rows[:0]
	for _, g := range util.GroupByMonth(list, now) {
		p.rows = append(p.rows, historyRow{label: g.Label})
		for i := range g.Conversations {
			p.rows = append(p.rows, historyRow{conv: &g.Conversations[i]})
		}
	}

	p.cursor = p.firstConversation()
	for i, r := range p.rows {
		if r.conv != nil && r.conv.ID == selected {
			p.cursor = i
			break
		}
	}
	p.clamp()
}

// Len returns the number of conversations listed.
func (p *HistoryPanel) Len() int {
	n := 0
	for _, r := range p.rows {
		if r.conv != nil {
			n++
		}
	}
	return n
}

// Selected returns the conversation under the cursor.
func (p *HistoryPanel) Selected() (model.Conversation, bool) {
	if p.cursor < 0 || p.cursor >= len(p.rows) || p.rows[p.cursor].conv == nil {
		return model.Conversation{}, false
	}
	return *p.rows[p.cursor].conv, true
}

// Move moves the cursor by delta conversations, skipping month labels.
func (p *HistoryPanel) Move(delta int) {
	step := 1
	if delta < 0 {
		step = -1
		delta = -delta
	}
	for ; delta > 0; delta-- {
		for i := p.cursor + step; i >= 0 && i < len(p.rows); i += step {
			if p.rows[i].conv != nil {
				p.cursor = i
				break
			}
		}
	}
	p.clamp()
}

// SentinelVisible reports whether the last row is on screen.
func (p *HistoryPanel) SentinelVisible() bool {
	return len(p.rows) > 0 && p.offset+p.visibleRows() >= len(p.rows)
}

func (p *HistoryPanel) firstConversation() int {
	for i, r := range p.rows {
		if r.conv != nil {
			return i
		}
	}
	return -1
}

// visibleRows is the number of list rows inside the border, minus the
// footer line.
func (p *HistoryPanel) visibleRows() int {
	return max(p.height-3, 1)
}

// clamp keeps the cursor inside the window.
func (p *HistoryPanel) clamp() {
	if len(p.rows) == 0 {
		p.cursor, p.offset = -1, 0
		return
	}
	if p.cursor < 0 {
		p.cursor = p.firstConversation()
	}
	n := p.visibleRows()
	if p.cursor < p.offset {
		p.offset = p.cursor
		// Keep the month label of the first visible entry on screen.
		if p.offset > 0 && p.rows[p.offset-1].conv == nil {
			p.offset--
		}
	}
	if p.cursor >= p.offset+n {
		p.offset = p.cursor - n + 1
	}
	p.offset = max(0, min(p.offset, len(p.rows)-1))
}

// HistoryView carries the per-frame state the panel renders.
type HistoryView struct {
	Focused  bool
	ActiveID string
	// Notices maps conversation ids to their inline error text.
	Notices map[string]string
	// Editing replaces the selected title while renaming.
	Editing string
	Loading bool
	Footer  string
}

// View renders the panel.
func (p *HistoryPanel) View(v HistoryView) string {
	inner := max(p.width-4, 8)
	var b strings.Builder

	if len(p.rows) == 0 {
		b.WriteString(p.theme.Muted.Render("No chat history."))
	}
	end := min(p.offset+p.visibleRows(), len(p.rows))
	for i := p.offset; i < end; i++ {
		r := p.rows[i]
		if i > p.offset {
			b.WriteByte('\n')
		}
		if r.conv == nil {
			b.WriteString(p.theme.HistoryGroup.Render(util.TruncateWidth(r.label, inner)))
			continue
		}
		b.WriteString(p.renderEntry(i, r.conv, v, inner))
	}

	footer := v.Footer
	if v.Loading {
		footer = styles.StatusIndicators.Pending + " Loading..."
	}
	b.WriteString("\n" + p.theme.Muted.Render(util.TruncateWidth(footer, inner)))

	style := p.theme.HistoryPanel
	if v.Focused {
		style = p.theme.HistoryPanelFocused
	}
	return style.Width(p.width - 2).Height(p.height - 2).Render(b.String())
}

func (p *HistoryPanel) renderEntry(i int, c *model.Conversation, v HistoryView, inner int) string {
	if i == p.cursor && v.Editing != "" {
		return v.Editing
	}
	if text, ok := v.Notices[c.ID]; ok {
		return p.theme.Toast.Render(util.TruncateWidth(text, inner))
	}

	title := util.TruncateTitle(util.SingleLine(c.Title))
	line := util.PadRight(util.TruncateWidth(title, inner), inner)
	switch {
	case i == p.cursor && v.Focused:
		return p.theme.HistoryItemSelected.Render(line)
	case c.ID == v.ActiveID:
		return p.theme.HistoryItemActive.Render(line)
	default:
		return p.theme.HistoryItem.Render(line)
	}
}
