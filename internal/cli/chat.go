// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat command.
//
// Command: chat
// Short:   Interactive chat in the terminal without the TUI
//
// Interactive Commands (during chat):
//   /new, /n            Start a new conversation
//   /history            List stored conversations
//   /open ID            Continue a stored conversation
//   /clear              Remove the messages of the current conversation
//   /help, /?           Show available commands
//   /quit, /q           Exit chat
//   Ctrl+C              Stop the current answer
//   Ctrl+D              Exit chat
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/danniesim/mecoai-chat/internal/config"
	"github.com/danniesim/mecoai-chat/internal/lifecycle"
	"github.com/danniesim/mecoai-chat/internal/util"
)

// chatPrompt is the REPL prompt.
const chatPrompt = "mecoai> "

// =============================================================================
// LINE INPUT
// =============================================================================

// LineReader reads REPL input lines.
type LineReader interface {
	// Prompt shows prompt and reads one line. io.EOF ends the session.
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

// lineEditor is a LineReader with line editing and a persistent input
// history.
type lineEditor struct {
	line        *liner.State
	historyFile string
}

// newLineEditor creates a line editor and loads the saved input history.
func newLineEditor() *lineEditor {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	e := &lineEditor{line: line, historyFile: filepath.Join(dir, "chat_history")}
	if f, err := os.Open(e.historyFile); err == nil {
		e.line.ReadHistory(f)
		f.Close()
	}
	return e
}

func (e *lineEditor) Prompt(prompt string) (string, error) {
	input, err := e.line.Prompt(prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", io.EOF
	}
	return input, err
}

func (e *lineEditor) AppendHistory(item string) {
	e.line.AppendHistory(item)
}

// Close saves the input history with owner-only permissions and restores
// the terminal.
func (e *lineEditor) Close() error {
	if err := os.MkdirAll(filepath.Dir(e.historyFile), 0700); err == nil {
		if f, err := os.OpenFile(e.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600); err == nil {
			e.line.WriteHistory(f)
			f.Close()
		}
	}
	return e.line.Close()
}

// plainReader reads lines from a non-terminal input.
type plainReader struct {
	in  *bufio.Reader
	out io.Writer
}

func newPlainReader(in io.Reader, out io.Writer) *plainReader {
	return &plainReader{in: bufio.NewReader(in), out: out}
}

func (r *plainReader) Prompt(prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)
	line, err := r.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (r *plainReader) AppendHistory(string) {}

func (r *plainReader) Close() error { return nil }

// lineReader picks the reader for the current input.
func (a *App) lineReader() LineReader {
	switch {
	case a.newLineReader != nil:
		return a.newLineReader()
	case a.Interactive:
		return newLineEditor()
	default:
		return newPlainReader(a.In, a.Out)
	}
}

// =============================================================================
// REPL
// =============================================================================

// chatLoop is the state of one chat session.
type chatLoop struct {
	app  *App
	s    *session
	args Args
	// conversationID is the conversation new questions go to, empty for a
	// new one.
	conversationID string
}

// Chat runs the interactive chat REPL until the input ends or /quit.
func (a *App) Chat(ctx context.Context, args Args) error {
	s := a.newSession(ctx, false)
	defer s.close()

	reader := a.lineReader()
	defer reader.Close()

	c := &chatLoop{app: a, s: s, args: args}
	c.printWelcome()

	for {
		if ctx.Err() != nil {
			return nil
		}
		input, err := reader.Prompt(PromptStyle.Render(chatPrompt))
		if err != nil {
			fmt.Fprintln(a.Out)
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		reader.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			if quit := c.command(ctx, input); quit {
				return nil
			}
			continue
		}
		if strings.EqualFold(input, "exit") || strings.EqualFold(input, "quit") {
			return nil
		}
		c.ask(ctx, input)
	}
}

// ask runs one turn. Ctrl+C stops the answer without leaving the chat.
func (c *chatLoop) ask(ctx context.Context, question string) {
	a := c.app
	turnCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	markdown := a.markdownEnabled(c.args)
	var live io.Writer
	if !markdown {
		live = a.Out
	}
	fmt.Fprintln(a.Out)
	out := a.runTurn(turnCtx, c.s, question, c.conversationID, live)

	switch out.Result.Outcome {
	case lifecycle.NotStarted:
		fmt.Fprintf(a.Err, "%s %s\n", ErrorStyle.Render("[ERROR]"), describe(out.Result.Err))
		c.conversationID = ""
		return
	case lifecycle.Failed:
		fmt.Fprintf(a.Err, "%s %s\n", ErrorStyle.Render("[ERROR]"), out.ErrorText)
	default:
		if markdown && out.Answer != "" {
			fmt.Fprint(a.Out, a.renderMarkdown(out.Answer))
		}
		if out.Result.Outcome == lifecycle.Canceled {
			fmt.Fprintln(a.Err, WarningStyle.Render("[Stopped]"))
		} else {
			a.printCitations(a.Out, out.Citations)
		}
	}
	printNotices(a.Err, out.Notices)
	fmt.Fprintln(a.Out)

	c.conversationID = out.Result.ConversationID
}

// command handles a slash command and reports whether the chat should end.
func (c *chatLoop) command(ctx context.Context, input string) bool {
	a := c.app
	parts := strings.Fields(input)
	switch strings.ToLower(parts[0]) {
	case "/quit", "/q", "/exit":
		return true

	case "/help", "/?":
		c.printHelp()

	case "/new", "/n":
		c.s.store.NewChat()
		c.conversationID = ""
		fmt.Fprintln(a.Out, DimStyle.Render("Started a new conversation."))

	case "/history":
		st := c.s.store.State()
		if !st.HistoryEnabled() {
			fmt.Fprintln(a.Err, WarningStyle.Render("[WARN]")+" Chat history is not enabled.")
			break
		}
		a.printHistoryList(st.ChatHistory)

	case "/open":
		if len(parts) != 2 {
			fmt.Fprintln(a.Err, WarningStyle.Render("[WARN]")+" Usage: /open ID")
			break
		}
		if err := a.openConversation(ctx, c.s, parts[1]); err != nil {
			fmt.Fprintf(a.Err, "%s %s\n", ErrorStyle.Render("[ERROR]"), describe(err))
			break
		}
		c.conversationID = parts[1]
		if conv := c.s.store.State().CurrentChat; conv != nil {
			fmt.Fprintf(a.Out, "Continuing %s (%d messages)\n", util.TruncateTitle(util.SingleLine(conv.Title)), len(conv.Messages))
		}

	case "/clear":
		if c.s.store.State().ClearDisabled() {
			fmt.Fprintln(a.Err, WarningStyle.Render("[WARN]")+" Nothing to clear.")
			break
		}
		if err := c.s.store.ClearActive(ctx); err != nil {
			fmt.Fprintf(a.Err, "%s %s\n", ErrorStyle.Render("[ERROR]"), describe(err))
			break
		}
		fmt.Fprintln(a.Out, DimStyle.Render("Conversation cleared."))

	default:
		fmt.Fprintf(a.Err, "%s Unknown command %s. Type /help for commands.\n", WarningStyle.Render("[WARN]"), parts[0])
	}
	return false
}

// =============================================================================
// DISPLAY
// =============================================================================

func (c *chatLoop) printWelcome() {
	a := c.app
	st := c.s.store.State()
	fmt.Fprintln(a.Out, TitleStyle.Render(st.FrontendSettings.Title(a.Config.UI.Title)))
	fmt.Fprintln(a.Out, RenderSeparator(30))
	if st.FrontendSettings != nil && st.FrontendSettings.UI.ChatDescription != "" {
		fmt.Fprintln(a.Out, DimStyle.Render(st.FrontendSettings.UI.ChatDescription))
	}

	status := "disabled"
	if st.HistoryEnabled() {
		status = "ok"
	}
	fmt.Fprintf(a.Out, "%s %s %s\n", RenderLabel("History", 9), RenderStatus(status), DimStyle.Render(string(st.CosmosDB.Status)))
	fmt.Fprintln(a.Out, DimStyle.Render("Type your message and press Enter. Commands: /help, /quit"))
	fmt.Fprintln(a.Out)
}

func (c *chatLoop) printHelp() {
	w := c.app.Out
	fmt.Fprintln(w, SectionStyle.Render("Available Commands"))
	commands := []struct {
		cmd  string
		desc string
	}{
		{"/new, /n", "Start a new conversation"},
		{"/history", "List stored conversations"},
		{"/open ID", "Continue a stored conversation"},
		{"/clear", "Remove the messages of the current conversation"},
		{"/help, /?", "Show this help"},
		{"/quit, /q", "Exit chat"},
	}
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %s  %s\n", ValueStyle.Render(util.PadRight(cmd.cmd, 12)), DimStyle.Render(cmd.desc))
	}
	fmt.Fprintln(w, DimStyle.Render("Ctrl+C stops the current answer, Ctrl+D exits."))
}
