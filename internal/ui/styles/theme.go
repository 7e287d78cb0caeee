// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme names accepted by NewTheme.
const (
	ThemeAuto  = "auto"
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Theme holds all the styled components for the application.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER AND SPLASH
	// ==========================================================================

	Header            lipgloss.Style
	HeaderTitle       lipgloss.Style
	HeaderSubtitle    lipgloss.Style
	SplashTitle       lipgloss.Style
	SplashDescription lipgloss.Style

	// ==========================================================================
	// TRANSCRIPT
	// ==========================================================================

	UserBubble      lipgloss.Style
	AssistantBubble lipgloss.Style
	ErrorBubble     lipgloss.Style
	RoleLabel       lipgloss.Style
	CitationRef     lipgloss.Style
	FeedbackUp      lipgloss.Style
	FeedbackDown    lipgloss.Style

	// ==========================================================================
	// SIDE PANELS
	// ==========================================================================

	HistoryPanel        lipgloss.Style
	HistoryPanelFocused lipgloss.Style
	HistoryGroup        lipgloss.Style
	HistoryItem         lipgloss.Style
	HistoryItemSelected lipgloss.Style
	HistoryItemActive   lipgloss.Style
	CitationPanel       lipgloss.Style
	CitationTitle       lipgloss.Style

	// ==========================================================================
	// INPUT AND STATUS BAR
	// ==========================================================================

	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style
	StatusBar      lipgloss.Style
	ShortcutKey    lipgloss.Style
	ShortcutDesc   lipgloss.Style
	Spinner        lipgloss.Style
	ThinkingText   lipgloss.Style

	// ==========================================================================
	// NOTICES AND DIALOGS
	// ==========================================================================

	Toast          lipgloss.Style
	DialogBox      lipgloss.Style
	DialogTitle    lipgloss.Style
	DialogSubtitle lipgloss.Style
	DialogHint     lipgloss.Style

	Muted     lipgloss.Style
	LinkStyle lipgloss.Style
}

// NewTheme creates a theme for mode (auto, dark or light). Auto asks the
// terminal for its background color.
func NewTheme(mode string) *Theme {
	isDark := true
	switch mode {
	case ThemeDark:
	case ThemeLight:
		isDark = false
	default:
		isDark = termenv.HasDarkBackground()
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Background(SurfaceDim).
		Padding(0, 2)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.HeaderSubtitle = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.SplashTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple).
		MarginTop(1)

	t.SplashDescription = lipgloss.NewStyle().
		Foreground(TextSecondary)

	// Message bubbles
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 1).
		MarginLeft(4)

	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AssistantBubbleBorder).
		Padding(0, 1).
		MarginRight(4)

	t.ErrorBubble = lipgloss.NewStyle().
		Foreground(ErrorBubbleFg).
		BorderStyle(lipgloss.ThickBorder()).
		BorderForeground(Rose).
		Padding(0, 1).
		MarginRight(4)

	t.RoleLabel = lipgloss.NewStyle().
		Foreground(TextMuted).
		Bold(true)

	t.CitationRef = lipgloss.NewStyle().
		Foreground(Amber)

	t.FeedbackUp = lipgloss.NewStyle().Foreground(Emerald)
	t.FeedbackDown = lipgloss.NewStyle().Foreground(Rose)

	// Panels
	t.HistoryPanel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(OverlayDim).
		Padding(0, 1)

	t.HistoryPanelFocused = t.HistoryPanel.
		BorderForeground(Cyan)

	t.HistoryGroup = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	t.HistoryItem = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.HistoryItemSelected = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(SelectionBg)

	t.HistoryItemActive = lipgloss.NewStyle().
		Foreground(Purple).
		Bold(true)

	t.CitationPanel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Amber).
		Padding(0, 1)

	t.CitationTitle = lipgloss.NewStyle().
		Foreground(Amber).
		Bold(true)

	// Input and status bar
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Purple)

	t.ThinkingText = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	// Notices and dialogs
	t.Toast = lipgloss.NewStyle().
		Foreground(Rose).
		Background(RoseDeep).
		Padding(0, 1)

	t.DialogBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(Rose).
		Padding(1, 2)

	t.DialogTitle = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.DialogSubtitle = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.DialogHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.Muted = lipgloss.NewStyle().Foreground(TextMuted)

	// ACCESSIBILITY: Underline provides non-color visual cue for links
	t.LinkStyle = lipgloss.NewStyle().
		Foreground(LinkColor).
		Underline(true)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns, side panels hidden
	LayoutMedium                   // 60-100 columns, one side panel
	LayoutWide                     // > 100 columns, both side panels
)

// GlamourStyle returns the glamour style name matching the theme.
func (t *Theme) GlamourStyle() string {
	if t.IsDark {
		return "dark"
	}
	return "light"
}
