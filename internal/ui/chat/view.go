// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/danniesim/mecoai-chat/internal/model"
	"github.com/danniesim/mecoai-chat/internal/ui/components"
)

// =============================================================================
// LAYOUT
// =============================================================================

const (
	narrowWidth    = 60
	wideWidth      = 100
	minTranscript  = 30
	historyPanelW  = 34
	citationPanelW = 40
)

// layout sizes every region from the window size and the open panels.
func (m *Model) layout() {
	w, h := max(m.width, 20), max(m.height, 8)
	m.header.SetWidth(w)
	m.status.Width = w
	m.input.Width = max(w-8, 10)

	m.historyWidth, m.citeWidth = m.sidePanels(w)
	transcriptW := w - m.historyWidth - m.citeWidth

	_, toasts := m.notices()
	used := lipgloss.Height(m.header.View()) +
		lipgloss.Height(m.status.View(m.statusLine(), m.helpKeys())) +
		lipgloss.Height(m.inputView()) +
		1 + // indicator line
		min(len(toasts), components.MaxToasts)
	m.bodyHeight = max(h-used, 3)

	if m.historyWidth > 0 {
		m.panel.SetSize(m.historyWidth, m.bodyHeight)
		m.rename.Width = max(m.historyWidth-8, 8)
	}
	m.viewport.Width = max(transcriptW, 1)
	m.viewport.Height = m.bodyHeight
	m.renderer.configure(m.ui.Markdown, m.theme.GlamourStyle(), max(transcriptW-10, 20))
}

// sidePanels returns the widths of the history and citation panels.
// Narrow terminals show one region at a time; the citation panel wins.
func (m *Model) sidePanels(w int) (historyW, citeW int) {
	hist := m.state.IsChatHistoryOpen && m.state.HistoryEnabled()
	cite := m.state.CitationPanelOpen && m.state.ActiveCitation != nil

	if w < narrowWidth {
		switch {
		case cite:
			return 0, w
		case hist:
			return w, 0
		}
		return 0, 0
	}

	if hist {
		historyW = historyPanelW
	}
	if cite {
		citeW = citationPanelW
		if w >= wideWidth {
			citeW = max(w/3, citationPanelW)
		}
	}
	if w-historyW-citeW < minTranscript {
		historyW = 0
	}
	return historyW, citeW
}

// notices splits live notices into inline history-row texts and toasts.
func (m *Model) notices() (inline map[string]string, toasts []string) {
	inline = map[string]string{}
	for _, n := range m.state.Notices {
		if n.Target != "" && m.historyWidth > 0 && n.Target != m.renamingID {
			inline[n.Target] = n.Text
			continue
		}
		toasts = append(toasts, n.Text)
	}
	return inline, toasts
}

func (m *Model) helpKeys() help.KeyMap {
	if m.focus == focusHistory {
		return historyKeys{m.keys}
	}
	return m.keys
}

func (m *Model) statusLine() string {
	switch {
	case m.statusText != "":
		return m.statusText
	case m.state.HistoryPageLoading:
		return "Loading history..."
	case m.state.ClearingChat:
		return "Clearing chat..."
	case m.state.Generating():
		return "Generating..."
	default:
		return ""
	}
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// refreshTranscript re-renders the transcript, following the bottom while
// the user has not scrolled away or an answer is streaming.
func (m *Model) refreshTranscript() {
	follow := m.viewport.AtBottom() || m.state.Generating()
	m.viewport.SetContent(m.transcript())
	if follow {
		m.viewport.GotoBottom()
	}
}

func (m *Model) transcript() string {
	msgs := m.state.Messages()
	if len(msgs) == 0 {
		return m.splash()
	}

	entries := components.BuildEntries(msgs, m.state.FeedbackFor)
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, components.RenderEntry(m.theme, e, m.renderer.render(e.Message), m.viewport.Width, m.ui.ShowCitations))
	}
	return strings.Join(parts, "\n\n")
}

// splash is the empty-state screen.
func (m *Model) splash() string {
	title, desc := "Start chatting", "This chatbot is configured to answer your questions"
	if s := m.state.FrontendSettings; s != nil {
		if s.UI.ChatTitle != "" {
			title = s.UI.ChatTitle
		}
		if s.UI.ChatDescription != "" {
			desc = s.UI.ChatDescription
		}
	}
	body := lipgloss.JoinVertical(lipgloss.Center,
		m.theme.SplashTitle.Render(title),
		"",
		m.theme.SplashDescription.Width(max(m.viewport.Width-8, 10)).Align(lipgloss.Center).Render(desc),
	)
	return lipgloss.Place(m.viewport.Width, m.viewport.Height, lipgloss.Center, lipgloss.Center, body)
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the whole screen.
func (m Model) View() string {
	w, h := max(m.width, 20), max(m.height, 8)

	if d := m.state.Dialog; d != nil {
		return components.RenderDialog(m.theme, d.Title, d.Subtitle, w, h)
	}
	if m.confirm != nil {
		return components.RenderConfirm(m.theme, m.confirm.Question, m.confirm.Detail, w, h)
	}

	inline, toasts := m.notices()

	var body []string
	if m.historyWidth > 0 {
		body = append(body, m.historyView(inline))
	}
	if w-m.historyWidth-m.citeWidth > 0 {
		body = append(body, m.viewport.View())
	}
	if m.citeWidth > 0 {
		body = append(body, m.citationView())
	}

	indicator := ""
	if m.state.ShowLoadingMessage {
		indicator = m.spinner.View()
	}

	sections := []string{
		m.header.View(),
		lipgloss.JoinHorizontal(lipgloss.Top, body...),
		indicator,
	}
	if t := components.RenderToasts(m.theme, toasts, w); t != "" {
		sections = append(sections, t)
	}
	sections = append(sections, m.inputView(), m.status.View(m.statusLine(), m.helpKeys()))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) inputView() string {
	return m.theme.InputContainer.Width(max(m.width, 20) - 2).Render(m.input.View())
}

func (m *Model) historyView(inline map[string]string) string {
	v := components.HistoryView{
		Focused:  m.focus == focusHistory,
		Notices:  inline,
		Loading:  m.state.HistoryPageLoading,
		Footer:   "tab focus  D clear all",
		ActiveID: "",
	}
	if m.state.CurrentChat != nil {
		v.ActiveID = m.state.CurrentChat.ID
	}
	if m.renamingID != "" {
		v.Editing = m.rename.View()
	}
	return m.panel.View(v)
}

func (m *Model) citationView() string {
	c := *m.state.ActiveCitation
	return components.RenderCitationPanel(m.theme, c, m.citationIndex(c), m.citeWidth, m.bodyHeight)
}

// citationIndex finds the display number of c in the last answer.
func (m *Model) citationIndex(c model.Citation) int {
	if e, ok := m.lastAnswer(); ok {
		for i, other := range e.Citations {
			if other.ID == c.ID && other.Content == c.Content {
				return i + 1
			}
		}
	}
	return 1
}
