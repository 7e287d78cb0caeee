// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/danniesim/mecoai-chat/internal/lifecycle"
	"github.com/danniesim/mecoai-chat/internal/model"
	"github.com/danniesim/mecoai-chat/internal/store"
	"github.com/danniesim/mecoai-chat/internal/ui/styles"
)

// =============================================================================
// TURN OUTPUT
// =============================================================================

// turnOutput is what one question produced once its turn was committed.
type turnOutput struct {
	Result    lifecycle.Result
	Answer    string
	Citations []model.Citation
	// ErrorText is the content of the committed error message, if any.
	ErrorText string
	Messages  []model.ChatMessage
	Duration  time.Duration
	Notices   []store.Notice
}

// runTurn asks question and blocks until the turn is committed. When live
// is non-nil the answer is written to it as it streams in.
func (a *App) runTurn(ctx context.Context, s *session, question, conversationID string, live io.Writer) turnOutput {
	start := time.Now()
	done := make(chan lifecycle.Result, 1)
	go func() {
		done <- s.runner.Run(ctx, question, conversationID)
	}()

	written := ""
	flush := func(content string) {
		if live == nil || len(content) <= len(written) || !strings.HasPrefix(content, written) {
			return
		}
		io.WriteString(live, content[len(written):])
		written = content
	}

	for {
		select {
		case <-s.store.Changes():
			flush(pendingAnswer(s.store.State()))
		case res := <-done:
			out := collectTurn(s.store.State(), res)
			out.Duration = time.Since(start)
			flush(out.Answer)
			if live != nil && written != "" && !strings.HasSuffix(written, "\n") {
				fmt.Fprintln(live)
			}
			return out
		}
	}
}

// pendingAnswer is the streamed assistant content of the running turn.
func pendingAnswer(st store.State) string {
	for i := len(st.Pending) - 1; i >= 0; i-- {
		if st.Pending[i].Role == model.RoleAssistant {
			return st.Pending[i].Content
		}
	}
	return ""
}

// collectTurn reads the committed messages of the turn behind res.
func collectTurn(st store.State, res lifecycle.Result) turnOutput {
	out := turnOutput{Result: res, Notices: st.Notices}
	conv, ok := st.Lookup(res.ConversationID)
	if !ok {
		return out
	}
	out.Messages = model.CloneMessages(conv.Messages)

	tail := latestTurn(conv.Messages)
	for _, m := range tail {
		if m.Role == model.RoleError {
			out.ErrorText = m.Content
		}
	}
	if answer, tool, ok := (model.Conversation{Messages: tail}).LastAnswer(); ok {
		out.Answer = answer.Content
		out.Citations = model.ParseCitations(tool)
	}
	return out
}

// latestTurn returns the messages after the last user message.
func latestTurn(msgs []model.ChatMessage) []model.ChatMessage {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == model.RoleUser {
			return msgs[i+1:]
		}
	}
	return msgs
}

// =============================================================================
// RENDERING
// =============================================================================

// markdownEnabled reports whether answers are rendered rather than
// streamed.
func (a *App) markdownEnabled(args Args) bool {
	return a.Styled && a.Config.UI.Markdown && !args.NoMarkdown && !args.JSON
}

// renderMarkdown renders content with the configured glamour style,
// falling back to the raw text.
func (a *App) renderMarkdown(content string) string {
	width := a.Width
	if width <= 0 {
		width = DefaultTerminalWidth
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(styles.NewTheme(a.Config.UI.Theme).GlamourStyle()),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return content
	}
	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// printCitations lists the sources of an answer.
func (a *App) printCitations(w io.Writer, cites []model.Citation) {
	if !a.Config.UI.ShowCitations || len(cites) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, SectionStyle.Render("Sources"))
	for _, c := range citationData(cites) {
		line := fmt.Sprintf("  [%d] %s", c.Index, c.Title)
		if c.URL != "" {
			line += "  " + DimStyle.Render(c.URL)
		}
		fmt.Fprintln(w, line)
	}
}

// printNotices writes the notices raised while a command ran.
func printNotices(w io.Writer, notices []store.Notice) {
	for _, n := range notices {
		fmt.Fprintf(w, "%s %s\n", WarningStyle.Render("[WARN]"), n.Text)
	}
}
