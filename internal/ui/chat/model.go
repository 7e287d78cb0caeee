// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/danniesim/mecoai-chat/internal/config"
	"github.com/danniesim/mecoai-chat/internal/history"
	"github.com/danniesim/mecoai-chat/internal/lifecycle"
	"github.com/danniesim/mecoai-chat/internal/store"
	"github.com/danniesim/mecoai-chat/internal/ui/components"
	"github.com/danniesim/mecoai-chat/internal/ui/styles"
)

// =============================================================================
// DEPENDENCIES
// =============================================================================

// TurnRunner runs one question against the backend.
type TurnRunner interface {
	Run(ctx context.Context, question, conversationID string) lifecycle.Result
	Stop() int
}

// HistoryPager loads further history pages.
type HistoryPager interface {
	Observe(visible bool) bool
	FetchNext(ctx context.Context) error
	Reset()
}

// Deps wires the chat view to the rest of the client.
type Deps struct {
	Store  *store.Store
	Runner TurnRunner
	Pager  HistoryPager
	// Backend seeds the store on start. Nil skips bootstrapping.
	Backend history.Backend
	Config  *config.Config
	// ConfigPath is watched for changes when set.
	ConfigPath string
	Logger     *zap.Logger
}

// =============================================================================
// CHAT MODEL
// =============================================================================

type focus int

const (
	focusInput focus = iota
	focusHistory
)

// Model is the Bubble Tea model for the chat view. All mutation of shared
// state goes through the store; the model keeps the last snapshot it read.
type Model struct {
	deps   Deps
	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc

	state store.State
	ui    config.UIConfig
	keys  KeyMap

	theme    *styles.Theme
	header   *components.Header
	panel    *components.HistoryPanel
	status   *components.StatusBar
	spinner  components.Spinner
	viewport viewport.Model
	input    textinput.Model
	rename   textinput.Model
	renderer *answerRenderer
	frames   *FrameLimiter

	width  int
	height int
	focus  focus

	// Computed by layout.
	bodyHeight   int
	historyWidth int
	citeWidth    int

	renamingID   string
	renameBusy   bool
	// submitting is set from submit until the turn's result arrives, so a
	// turn the runner has not started yet still counts as busy.
	submitting   bool
	confirm      *confirmPrompt
	statusText   string
	reloads      chan *config.Config
	now          func() time.Time
}

// New creates the chat model.
func New(deps Deps) Model {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	theme := styles.NewTheme(cfg.UI.Theme)

	input := textinput.New()
	input.Placeholder = "Type a new question..."
	input.Prompt = "> "
	input.PromptStyle = theme.InputPrompt
	input.Focus()

	rename := textinput.New()
	rename.Prompt = ""
	rename.CharLimit = 256

	m := Model{
		deps:     deps,
		log:      log.Named("tui"),
		ctx:      ctx,
		cancel:   cancel,
		state:    deps.Store.State(),
		ui:       cfg.UI,
		keys:     DefaultKeyMap(),
		theme:    theme,
		header:   components.NewHeader(theme),
		panel:    components.NewHistoryPanel(theme),
		status:   components.NewStatusBar(theme),
		spinner:  components.NewSpinner(theme),
		viewport: viewport.New(80, 20),
		input:    input,
		rename:   rename,
		renderer: newAnswerRenderer(cfg.UI.Markdown, theme.GlamourStyle()),
		frames:   NewFrameLimiter(cfg.UI.MaxFPS),
		width:    80,
		height:   24,
		reloads:  make(chan *config.Config, 1),
		now:      time.Now,
	}
	m.syncState()
	return m
}

// Init starts the store listener, bootstrapping and the config watcher.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		waitForChange(m.ctx, m.deps.Store),
		textinput.Blink,
		m.spinner.Tick(),
	}
	if m.deps.Backend != nil {
		cmds = append(cmds, bootstrapCmd(m.ctx, m.deps.Store, m.deps.Backend, m.log))
	}
	if m.deps.ConfigPath != "" {
		cmds = append(cmds, m.watchConfig())
	}
	return tea.Batch(cmds...)
}

// Close stops outstanding work. Call it after the program exits.
func (m Model) Close() {
	if m.deps.Runner != nil {
		m.deps.Runner.Stop()
	}
	m.cancel()
}

// State returns the snapshot the model last rendered.
func (m Model) State() store.State {
	return m.state
}
