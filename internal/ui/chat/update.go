// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/danniesim/mecoai-chat/internal/config"
	"github.com/danniesim/mecoai-chat/internal/lifecycle"
	"github.com/danniesim/mecoai-chat/internal/model"
	"github.com/danniesim/mecoai-chat/internal/ui/components"
	"github.com/danniesim/mecoai-chat/internal/ui/styles"
)

// confirmPrompt is a pending yes/no question.
type confirmPrompt struct {
	Question string
	Detail   string
	Run      tea.Cmd
}

// =============================================================================
// UPDATE LOOP
// =============================================================================

// Update handles all Bubble Tea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.layout()
		m.refreshTranscript()
		return m, m.observeSentinel()

	case storeChangedMsg:
		m.pull()
		cmds = append(cmds, waitForChange(m.ctx, m.deps.Store))
		if m.state.Generating() {
			if now, cmd := m.frames.Request(m.now()); now {
				m.refreshTranscript()
			} else if cmd != nil {
				cmds = append(cmds, cmd)
			}
		} else {
			m.refreshTranscript()
		}
		cmds = append(cmds, m.observeSentinel())
		return m, tea.Batch(cmds...)

	case frameMsg:
		m.frames.Fired()
		m.refreshTranscript()
		return m, nil

	case bootstrapDoneMsg:
		m.log.Debug("bootstrap finished",
			zap.String("cosmos", string(m.deps.Store.State().CosmosDB.Status)))
		return m, nil

	case turnDoneMsg:
		m.submitting = false
		m.handleTurnDone(msg.Result)
		return m, nil

	case opDoneMsg:
		return m.handleOpDone(msg)

	case pageDoneMsg:
		if msg.Err != nil {
			m.log.Warn("history page failed", zap.Error(msg.Err))
		}
		return m, nil

	case configReloadedMsg:
		m.applyConfig(msg.Config)
		return m, waitForReload(m.ctx, m.reloads)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Cursor blink and other input internals.
	var cmd tea.Cmd
	if m.renamingID != "" {
		m.rename, cmd = m.rename.Update(msg)
	} else {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

// pull reads the latest store snapshot into the model.
func (m *Model) pull() {
	m.state = m.deps.Store.State()
	m.syncState()
}

// syncState pushes the snapshot into the components.
func (m *Model) syncState() {
	s := m.state

	title := m.ui.Title
	if title == "" {
		title = s.FrontendSettings.Title(components.DefaultTitle)
	}
	m.header.Title = title
	m.header.Busy = s.Generating()
	switch {
	case s.HistoryLoadingState == model.HistoryLoading:
		m.header.History = styles.StatusIndicators.Pending + " history"
	case s.HistoryEnabled():
		m.header.History = "history on"
	default:
		m.header.History = ""
	}

	m.panel.SetItems(s.ChatHistory, m.now())

	if !s.IsChatHistoryOpen && m.focus == focusHistory {
		m.setFocus(focusInput)
	}
	if m.renamingID != "" && model.FindConversation(s.ChatHistory, m.renamingID) < 0 {
		m.stopRename()
	}
	m.layout()
}

// observeSentinel reports the sentinel row to the pager and starts a fetch
// when it just came into view.
func (m *Model) observeSentinel() tea.Cmd {
	if m.deps.Pager == nil {
		return nil
	}
	visible := m.state.IsChatHistoryOpen && m.state.HistoryEnabled() && m.panel.SentinelVisible()
	if m.deps.Pager.Observe(visible) {
		return fetchPageCmd(m.ctx, m.deps.Pager)
	}
	return nil
}

func (m *Model) handleTurnDone(r lifecycle.Result) {
	switch r.Outcome {
	case lifecycle.Canceled:
		m.statusText = "Stopped generating."
	case lifecycle.Failed:
		m.statusText = ""
		m.log.Info("turn failed", zap.String("conversation_id", r.ConversationID), zap.Error(r.Err))
	case lifecycle.Completed:
		m.statusText = ""
	}
}

func (m Model) handleOpDone(msg opDoneMsg) (tea.Model, tea.Cmd) {
	m.pull()
	if msg.Err != nil {
		m.log.Info("operation failed", zap.String("op", string(msg.Op)), zap.String("id", msg.ID), zap.Error(msg.Err))
	}

	switch msg.Op {
	case OpRename:
		m.renameBusy = false
		if msg.Err == nil {
			m.stopRename()
		}
	case OpClearAll:
		if msg.Err == nil && m.deps.Pager != nil {
			m.deps.Pager.Reset()
		}
	case OpSelect:
		if msg.Err == nil {
			m.refreshTranscript()
			m.viewport.GotoBottom()
		}
	}
	return m, m.observeSentinel()
}

// applyConfig applies the live-reloadable [ui] settings.
func (m *Model) applyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	m.log.Info("config reloaded")
	if cfg.UI.Theme != m.ui.Theme {
		m.theme = styles.NewTheme(cfg.UI.Theme)
		m.theme.SetSize(m.width, m.height)
		m.header.SetTheme(m.theme)
		m.panel.SetTheme(m.theme)
		m.status.SetTheme(m.theme)
		m.spinner = components.NewSpinner(m.theme)
		m.input.PromptStyle = m.theme.InputPrompt
	}
	m.ui = cfg.UI
	m.frames.SetMaxFPS(cfg.UI.MaxFPS)
	m.syncState()
	m.refreshTranscript()
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.Close()
		return m, tea.Quit
	}

	if m.state.Dialog != nil {
		if msg.Type == tea.KeyEnter || msg.Type == tea.KeyEsc {
			m.deps.Store.DismissDialog()
			m.pull()
		}
		return m, nil
	}

	if m.confirm != nil {
		prompt := m.confirm
		m.confirm = nil
		if msg.String() == "y" {
			return m, prompt.Run
		}
		return m, nil
	}

	if m.renamingID != "" {
		return m.handleRenameKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.status.ToggleFull()
		m.layout()
		return m, nil

	case key.Matches(msg, m.keys.Stop):
		if m.state.Generating() {
			n := m.deps.Runner.Stop()
			m.log.Debug("stop requested", zap.Int("handles", n))
			return m, nil
		}
		if msg.Type == tea.KeyEsc {
			switch {
			case m.state.CitationPanelOpen:
				m.deps.Store.CloseCitation()
				m.pull()
			case m.focus == focusHistory:
				m.setFocus(focusInput)
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.NewChat):
		if m.busy() {
			return m, nil
		}
		m.deps.Store.NewChat()
		m.pull()
		m.setFocus(focusInput)
		m.refreshTranscript()
		return m, nil

	case key.Matches(msg, m.keys.ClearChat):
		if m.busy() || m.state.ClearDisabled() {
			return m, nil
		}
		id := m.state.CurrentChat.ID
		return m, opCmd(OpClear, id, func() error { return m.deps.Store.ClearActive(m.ctx) })

	case key.Matches(msg, m.keys.ToggleHistory):
		if !m.state.HistoryEnabled() {
			return m, nil
		}
		m.deps.Store.ToggleHistory()
		m.pull()
		if m.state.IsChatHistoryOpen {
			m.setFocus(focusHistory)
		}
		return m, m.observeSentinel()

	case key.Matches(msg, m.keys.FocusHistory):
		if !m.state.IsChatHistoryOpen {
			return m, nil
		}
		if m.focus == focusHistory {
			m.setFocus(focusInput)
		} else {
			m.setFocus(focusHistory)
		}
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	if m.focus == focusHistory {
		return m.handleHistoryKey(msg)
	}
	return m.handleInputKey(msg)
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Submit) {
		return m.submit()
	}

	// Single-key actions only apply while nothing has been typed.
	if m.input.Value() == "" {
		switch {
		case key.Matches(msg, m.keys.Citation):
			n, _ := strconv.Atoi(msg.String())
			m.openCitation(n)
			return m, nil
		case key.Matches(msg, m.keys.FeedbackUp):
			m.toggleFeedback(model.FeedbackPositive)
			return m, nil
		case key.Matches(msg, m.keys.FeedbackDown):
			m.toggleFeedback(model.FeedbackNegative)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit sends the typed question. Submitting is disabled while an answer
// is being generated.
func (m Model) submit() (tea.Model, tea.Cmd) {
	question := strings.TrimSpace(m.input.Value())
	if question == "" || m.busy() || m.deps.Runner == nil {
		return m, nil
	}
	m.submitting = true
	m.input.Reset()
	m.statusText = ""

	conversationID := ""
	if m.state.CurrentChat != nil {
		conversationID = m.state.CurrentChat.ID
	}
	return m, tea.Batch(runTurnCmd(m.ctx, m.deps.Runner, question, conversationID), m.spinner.Tick())
}

// busy reports whether a turn is running or about to start. New chat,
// history selection and submit are disabled meanwhile.
func (m Model) busy() bool {
	return m.submitting || m.state.Generating()
}

// lastAnswer returns the last answer of the transcript.
func (m *Model) lastAnswer() (components.Entry, bool) {
	entries := components.BuildEntries(m.state.Messages(), m.state.FeedbackFor)
	i := components.LastAnswer(entries)
	if i < 0 {
		return components.Entry{}, false
	}
	return entries[i], true
}

// openCitation shows citation n (1-based) of the last answer.
func (m *Model) openCitation(n int) {
	e, ok := m.lastAnswer()
	if !ok || n < 1 || n > len(e.Citations) {
		return
	}
	m.deps.Store.ShowCitation(e.Citations[n-1])
	m.pull()
}

// toggleFeedback records fb on the last answer, or resets it when the
// same reaction is given again.
func (m *Model) toggleFeedback(fb model.Feedback) {
	if m.state.FrontendSettings == nil || !m.state.FrontendSettings.FeedbackEnabled {
		return
	}
	e, ok := m.lastAnswer()
	if !ok || m.state.Generating() {
		return
	}
	current := e.Feedback
	next := fb
	if current == fb || (fb == model.FeedbackNegative && current.IsNegative()) {
		next = model.FeedbackNeutral
	}
	m.deps.Store.SetFeedback(e.Message.ID, next)
	m.pull()
	m.refreshTranscript()
}

func (m Model) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.panel.Move(-1)
		return m, m.observeSentinel()

	case key.Matches(msg, m.keys.Down):
		m.panel.Move(1)
		return m, m.observeSentinel()
	}

	sel, ok := m.panel.Selected()
	if !ok {
		return m, nil
	}
	st := m.deps.Store

	switch {
	case key.Matches(msg, m.keys.Select):
		if m.busy() {
			return m, nil
		}
		return m, opCmd(OpSelect, sel.ID, func() error { return st.SelectConversation(m.ctx, sel.ID) })

	case key.Matches(msg, m.keys.Rename):
		m.renamingID = sel.ID
		m.rename.SetValue(sel.Title)
		m.rename.CursorEnd()
		m.rename.Focus()
		m.input.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		m.confirm = &confirmPrompt{
			Question: "Are you sure you want to delete this item?",
			Detail:   "The chat history will be permanently removed.",
			Run:      opCmd(OpDelete, sel.ID, func() error { return st.DeleteHistoryEntry(m.ctx, sel.ID) }),
		}
		return m, nil

	case key.Matches(msg, m.keys.ClearAll):
		m.confirm = &confirmPrompt{
			Question: "Are you sure you want to clear all chat history?",
			Detail:   "All chat history will be permanently removed.",
			Run:      opCmd(OpClearAll, "", func() error { return st.ClearAllHistory(m.ctx) }),
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleRenameKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.stopRename()
		return m, nil

	case tea.KeyEnter:
		if m.renameBusy {
			return m, nil
		}
		id, title := m.renamingID, m.rename.Value()
		m.renameBusy = true
		st := m.deps.Store
		return m, opCmd(OpRename, id, func() error { return st.RenameHistoryEntry(m.ctx, id, title) })
	}

	var cmd tea.Cmd
	m.rename, cmd = m.rename.Update(msg)
	return m, cmd
}

func (m *Model) stopRename() {
	m.renamingID = ""
	m.renameBusy = false
	m.rename.Blur()
	m.rename.Reset()
	if m.focus == focusInput {
		m.input.Focus()
	}
}

func (m *Model) setFocus(f focus) {
	m.focus = f
	if f == focusInput && m.renamingID == "" {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}
