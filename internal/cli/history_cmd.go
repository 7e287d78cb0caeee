// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history_cmd.go - Stored conversation commands.
//
// Command: history [subcommand]
// Short:   Manage stored conversations
//
// Subcommands:
//   list, ls           List every stored conversation (default)
//   show ID            Print a conversation
//   rename ID TITLE    Rename a conversation
//   delete, rm ID      Delete a conversation
//   clear ID           Remove the messages of a conversation
//   clear-all          Delete every conversation
//   export ID          Write a conversation as markdown, json or html
//
// Flags:
//   -y, --yes          Skip confirmation prompts
//   --format FORMAT    Export format (default markdown)
//   -o, --output PATH  Export file, or directory for a generated name
//   --json             Output in JSON format
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/danniesim/mecoai-chat/internal/chaterr"
	"github.com/danniesim/mecoai-chat/internal/export"
	"github.com/danniesim/mecoai-chat/internal/history"
	"github.com/danniesim/mecoai-chat/internal/model"
	"github.com/danniesim/mecoai-chat/internal/store"
	"github.com/danniesim/mecoai-chat/internal/util"
)

// Confirmation texts for destructive history commands.
const (
	deleteQuestion   = "Are you sure you want to delete this item?"
	deleteDetail     = "The chat history will be permanently removed."
	clearAllQuestion = "Are you sure you want to clear all chat history?"
	clearAllDetail   = "All chat history will be permanently removed."
)

// History dispatches the history subcommands.
func (a *App) History(ctx context.Context, args Args) error {
	s := a.newSession(ctx, true)
	defer s.close()

	st := s.store.State()
	if !st.HistoryEnabled() {
		return fmt.Errorf("%s: %s", history.DisabledTitle, st.CosmosDB.Status)
	}

	switch args.Subcommand {
	case "list", "ls":
		return a.historyList(ctx, s, args)
	case "show":
		return a.historyShow(ctx, s, args, args.Params[0])
	case "rename":
		return a.historyRename(ctx, s, args, args.Params[0], strings.Join(args.Params[1:], " "))
	case "delete", "rm":
		return a.historyDelete(ctx, s, args, args.Params[0])
	case "clear":
		return a.historyClear(ctx, s, args, args.Params[0])
	case "clear-all":
		return a.historyClearAll(ctx, s, args)
	case "export":
		return a.historyExport(ctx, s, args, args.Params[0])
	}
	return NewValidationErrorWithExample("history subcommand", args.Subcommand, "unknown subcommand", "mecoai history list")
}

// =============================================================================
// LIST / SHOW
// =============================================================================

func (a *App) historyList(ctx context.Context, s *session, args Args) error {
	if err := s.loadAll(ctx); err != nil {
		return err
	}
	list := s.store.State().ChatHistory
	if args.JSON {
		return NewJSONResponse("history list", historyEntries(list)).Write(a.Out)
	}
	if len(list) == 0 {
		fmt.Fprintln(a.Out, DimStyle.Render("No chat history."))
		return nil
	}
	a.printHistoryList(list)
	return nil
}

// printHistoryList prints entries grouped by month, newest first.
func (a *App) printHistoryList(list []model.Conversation) {
	for i, g := range util.GroupByMonth(list, time.Now()) {
		if i > 0 {
			fmt.Fprintln(a.Out)
		}
		fmt.Fprintln(a.Out, SectionStyle.Render(g.Label))
		for _, c := range g.Conversations {
			title := util.PadRight(util.TruncateTitle(util.SingleLine(c.Title)), util.TitleWidth+len(util.TitleEllipsis))
			fmt.Fprintf(a.Out, "  %s  %s  %s\n", DimStyle.Render(c.ID), ValueStyle.Render(title), DimStyle.Render(shortDate(c.Date)))
		}
	}
}

// shortDate renders a wire date in local time, or as sent when it does
// not parse.
func shortDate(date string) string {
	t := model.ParseDate(date)
	if t.IsZero() {
		return date
	}
	return t.Local().Format("2006-01-02 15:04")
}

func (a *App) historyShow(ctx context.Context, s *session, args Args, id string) error {
	if err := a.openConversation(ctx, s, id); err != nil {
		return err
	}
	conv := s.store.State().CurrentChat
	if args.JSON {
		return NewJSONResponse("history show", conv).Write(a.Out)
	}

	fmt.Fprintln(a.Out, TitleStyle.Render(util.SingleLine(conv.Title)))
	fmt.Fprintln(a.Out, DimStyle.Render(conv.ID))
	fmt.Fprintln(a.Out, RenderSeparator())

	var pendingTool *model.ChatMessage
	for i := range conv.Messages {
		m := conv.Messages[i]
		switch m.Role {
		case model.RoleTool:
			pendingTool = &conv.Messages[i]
			continue
		case model.RoleUser:
			fmt.Fprintln(a.Out, UserStyle.Render(m.Role.DisplayName()+":"))
			fmt.Fprintln(a.Out, m.Content)
		case model.RoleAssistant:
			fmt.Fprintln(a.Out, AssistantStyle.Render(m.Role.DisplayName()+":"))
			if a.markdownEnabled(args) {
				fmt.Fprint(a.Out, a.renderMarkdown(m.Content))
			} else {
				fmt.Fprintln(a.Out, m.Content)
			}
			a.printCitations(a.Out, model.ParseCitations(pendingTool))
		case model.RoleError:
			fmt.Fprintln(a.Out, ErrorStyle.Render(m.Role.DisplayName()+": ")+m.Content)
		}
		pendingTool = nil
		fmt.Fprintln(a.Out)
	}
	return nil
}

// historyExport writes a conversation to stdout, to a file, or into a
// directory under a generated name. JSON output always writes a file.
func (a *App) historyExport(ctx context.Context, s *session, args Args, id string) error {
	if err := a.openConversation(ctx, s, id); err != nil {
		return err
	}
	conv := s.store.State().CurrentChat

	opts := export.DefaultOptions()
	opts.Theme = exportTheme(a.Config.UI.Theme)
	exporter, err := export.ForFormat(args.Format, opts)
	if err != nil {
		return NewValidationError("format", args.Format, err.Error())
	}

	if args.Output == "" && !args.JSON {
		content, err := exporter.Export(conv)
		if err != nil {
			return err
		}
		_, err = a.Out.Write(content)
		return err
	}

	var path string
	if info, statErr := os.Stat(args.Output); args.Output == "" || (statErr == nil && info.IsDir()) {
		opts.OutputDir = args.Output
		path, err = export.ToFile(conv, exporter, opts)
	} else {
		path = args.Output
		var content []byte
		if content, err = exporter.Export(conv); err == nil {
			err = export.WriteFile(path, content)
		}
	}
	if err != nil {
		return err
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	a.Log.Info("conversation exported", zap.String("conversation_id", id), zap.String("path", path))
	return a.historyDone(args, HistoryActionData{Action: "export", ID: id, Title: conv.Title, Path: path}, "Exported to "+path)
}

// exportTheme maps the UI theme to an HTML export theme.
func exportTheme(theme string) string {
	if theme == "light" {
		return "light"
	}
	return "dark"
}

// =============================================================================
// MUTATIONS
// =============================================================================

func (a *App) historyRename(ctx context.Context, s *session, args Args, id, title string) error {
	if _, ok := s.store.State().Lookup(id); !ok {
		if err := s.loadAll(ctx); err != nil {
			return err
		}
	}
	err := s.store.RenameHistoryEntry(ctx, id, title)
	switch {
	case errors.Is(err, store.ErrTitleUnchanged):
		return NewValidationError("title", title, "enter a new title to proceed")
	case err != nil && chaterr.IsNotFound(err):
		return err
	case err != nil:
		return a.historyFailed(args, store.RenameFailedText, err)
	}
	conv, _ := s.store.State().Lookup(id)
	return a.historyDone(args, HistoryActionData{Action: "rename", ID: id, Title: conv.Title}, "Renamed to "+conv.Title)
}

func (a *App) historyDelete(ctx context.Context, s *session, args Args, id string) error {
	ok, err := a.confirm(args, deleteQuestion, deleteDetail)
	if err != nil || !ok {
		return err
	}
	if err := s.store.DeleteHistoryEntry(ctx, id); err != nil {
		return a.historyFailed(args, store.DeleteFailedText, err)
	}
	return a.historyDone(args, HistoryActionData{Action: "delete", ID: id}, "Deleted "+id)
}

func (a *App) historyClear(ctx context.Context, s *session, args Args, id string) error {
	if err := a.openConversation(ctx, s, id); err != nil {
		return err
	}
	if err := s.store.ClearActive(ctx); err != nil {
		d := s.store.State().Dialog
		text := store.ClearFailedTitle
		if d != nil {
			text = d.Title
		}
		return a.historyFailed(args, text, err)
	}
	return a.historyDone(args, HistoryActionData{Action: "clear", ID: id}, "Cleared "+id)
}

func (a *App) historyClearAll(ctx context.Context, s *session, args Args) error {
	ok, err := a.confirm(args, clearAllQuestion, clearAllDetail)
	if err != nil || !ok {
		return err
	}
	if err := s.store.ClearAllHistory(ctx); err != nil {
		return a.historyFailed(args, store.ClearAllFailedText, err)
	}
	return a.historyDone(args, HistoryActionData{Action: "clear-all"}, "All chat history deleted.")
}

// confirm asks before a destructive action. A declined prompt prints the
// cancellation line and reports false.
func (a *App) confirm(args Args, question, detail string) (bool, error) {
	ok, err := RequireConfirmation(a.In, a.Err, question, detail, ConfirmationOptions{
		Yes:         args.Yes,
		JSONMode:    args.JSON,
		Interactive: a.Interactive,
	})
	if err != nil {
		return false, err
	}
	if !ok {
		ShowCancellationMessage(a.Err)
	}
	return ok, nil
}

func (a *App) historyDone(args Args, data HistoryActionData, text string) error {
	if args.JSON {
		return NewJSONResponse("history "+data.Action, data).Write(a.Out)
	}
	fmt.Fprintf(a.Out, "%s %s\n", RenderStatus("ok"), text)
	return nil
}

// historyFailed reports a failed mutation with the text the TUI shows
// for it.
func (a *App) historyFailed(args Args, text string, err error) error {
	if args.JSON {
		return err
	}
	fmt.Fprintf(a.Err, "%s %s (%s)\n", ErrorStyle.Render("[ERROR]"), text, describe(err))
	return Reported(err)
}
