// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question command.
//
// Command: ask
// Short:   Ask one question and print the answer
//
// Examples:
//   mecoai ask "What is in the onboarding guide?"
//   mecoai ask -c ID "And the second step?"
//   mecoai ask --json "Summarize the storage notes"
//
// Flags:
//   -c, --conversation ID   Continue a stored conversation
//   --no-markdown           Stream plain text even on a terminal
//   --json                  Print an AskData JSON document
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/danniesim/mecoai-chat/internal/chaterr"
	"github.com/danniesim/mecoai-chat/internal/lifecycle"
	"github.com/danniesim/mecoai-chat/internal/model"
	"github.com/danniesim/mecoai-chat/internal/store"
)

// Ask asks args.Query, optionally in an existing conversation, and prints
// the answer.
//
// On a terminal with markdown enabled the answer is collected and
// rendered once complete. Otherwise it streams as plain text.
func (a *App) Ask(ctx context.Context, args Args) error {
	s := a.newSession(ctx, args.JSON)
	defer s.close()

	if args.ConversationID != "" {
		if err := a.openConversation(ctx, s, args.ConversationID); err != nil {
			return err
		}
	}

	markdown := a.markdownEnabled(args)
	var live io.Writer
	if !args.JSON && !markdown {
		live = a.Out
	}
	out := a.runTurn(ctx, s, args.Query, args.ConversationID, live)

	if out.Result.Outcome == lifecycle.NotStarted {
		return out.Result.Err
	}
	if args.JSON {
		return a.writeAskJSON(out)
	}

	if markdown && out.Answer != "" {
		fmt.Fprint(a.Out, a.renderMarkdown(out.Answer))
	}
	printNotices(a.Err, out.Notices)

	switch out.Result.Outcome {
	case lifecycle.Canceled:
		fmt.Fprintln(a.Err, WarningStyle.Render("[Stopped]"))
		return Reported(chaterr.ErrCanceled)
	case lifecycle.Failed:
		fmt.Fprintf(a.Err, "%s %s\n", ErrorStyle.Render("[ERROR]"), out.ErrorText)
		return Reported(out.Result.Err)
	}

	a.printCitations(a.Out, out.Citations)
	if s.store.State().HistoryEnabled() && out.Result.ConversationID != "" {
		fmt.Fprintf(a.Err, "%s\n", DimStyle.Render("conversation "+out.Result.ConversationID))
	}
	return nil
}

// writeAskJSON writes the outcome of a turn as a JSON response.
func (a *App) writeAskJSON(out turnOutput) error {
	data := AskData{
		ConversationID: out.Result.ConversationID,
		Outcome:        out.Result.Outcome.String(),
		Answer:         out.Answer,
		Citations:      citationData(out.Citations),
		Error:          out.ErrorText,
		DurationMs:     out.Duration.Milliseconds(),
		Messages:       out.Messages,
	}
	resp := NewJSONResponse(CmdAsk.String(), data)
	if out.Result.Outcome != lifecycle.Completed {
		resp.Success = false
		text := out.ErrorText
		if text == "" {
			text = out.Result.Outcome.String()
		}
		resp.Error = &text
	}
	if err := resp.Write(a.Out); err != nil {
		return err
	}

	switch out.Result.Outcome {
	case lifecycle.Canceled:
		return Reported(chaterr.ErrCanceled)
	case lifecycle.Failed:
		return Reported(out.Result.Err)
	}
	return nil
}

// openConversation makes the conversation with id active. Entries beyond
// the loaded history pages are read directly.
func (a *App) openConversation(ctx context.Context, s *session, id string) error {
	err := s.store.SelectConversation(ctx, id)
	if err == nil || !chaterr.IsNotFound(err) {
		return err
	}

	msgs, err := a.Client.HistoryRead(ctx, id)
	if err != nil {
		var e *chaterr.Error
		if errors.As(err, &e) && e.Kind == chaterr.KindServer && e.Status == http.StatusNotFound {
			return chaterr.NotFound(id)
		}
		return err
	}
	if msgs == nil {
		msgs = []model.ChatMessage{}
	}
	conv := model.Conversation{ID: id, Title: firstQuestion(msgs), Messages: msgs}
	if len(msgs) > 0 {
		conv.Date = msgs[0].Date
	}
	s.store.Dispatch(store.UpdateCurrentChat{Conversation: &conv})
	return nil
}

// firstQuestion is the first user message, used as a fallback title.
func firstQuestion(msgs []model.ChatMessage) string {
	for _, m := range msgs {
		if m.Role == model.RoleUser {
			return m.Content
		}
	}
	return ""
}
