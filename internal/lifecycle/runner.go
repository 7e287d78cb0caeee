// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package lifecycle

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/danniesim/mecoai-chat/internal/api"
	"github.com/danniesim/mecoai-chat/internal/chaterr"
	"github.com/danniesim/mecoai-chat/internal/model"
	"github.com/danniesim/mecoai-chat/internal/store"
	"github.com/danniesim/mecoai-chat/internal/stream"
)

// Generator opens generation streams. *api.Client implements it.
type Generator interface {
	Conversation(ctx context.Context, messages []model.ChatMessage) (*api.Generation, error)
	HistoryGenerate(ctx context.Context, messages []model.ChatMessage, conversationID string) (*api.Generation, error)
}

// Outcome is how a request ended.
type Outcome int

const (
	Completed Outcome = iota
	Canceled
	Failed
	NotStarted
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case Canceled:
		return "canceled"
	case Failed:
		return "failed"
	default:
		return "not_started"
	}
}

// Result describes a finished request.
type Result struct {
	Outcome Outcome
	// ConversationID is the id the turn was committed under.
	ConversationID string
	Err            error
}

// =============================================================================
// RUNNER
// =============================================================================

// Runner drives one turn from question to committed messages.
type Runner struct {
	store *store.Store
	gen   Generator
	ctrl  *Controller
	log   *zap.Logger
}

// NewRunner creates a runner.
func NewRunner(st *store.Store, gen Generator, ctrl *Controller, log *zap.Logger) *Runner {
	if ctrl == nil {
		ctrl = NewController()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{store: st, gen: gen, ctrl: ctrl, log: log.Named("lifecycle")}
}

// Controller returns the controller that tracks the runner's requests.
func (r *Runner) Controller() *Controller {
	return r.ctrl
}

// Stop aborts every outstanding request.
func (r *Runner) Stop() int {
	n := r.ctrl.StopAll()
	if n > 0 {
		r.log.Info("requests stopped", zap.Int("count", n))
	}
	return n
}

// Run asks question in the conversation with conversationID, or in a new
// conversation when it is empty. It blocks until the turn is committed.
//
// Transport, stream and server failures commit an error message. A stop
// commits what arrived so far and nothing else. An unknown conversation
// changes nothing and returns NotStarted.
func (r *Runner) Run(ctx context.Context, question, conversationID string) Result {
	turn, err := r.store.StartTurn(question, conversationID)
	if err != nil {
		return Result{Outcome: NotStarted, Err: err}
	}

	h := r.ctrl.Begin(ctx)
	defer r.ctrl.End(h)

	acc := stream.NewAccumulator()
	err = r.stream(h.Context(), turn, acc)

	switch {
	case err == nil:
		s := r.store.CommitTurnResult(turn, acc.Finalize(nil), acc.Metadata())
		return Result{Outcome: Completed, ConversationID: s.LastCommittedID}
	case h.Stopped() || chaterr.IsCanceled(err) || errors.Is(err, context.Canceled):
		s := r.store.CancelTurn(turn, acc.Finalize(nil), acc.Metadata())
		return Result{Outcome: Canceled, ConversationID: s.LastCommittedID}
	default:
		s := r.store.FailTurn(turn, err)
		return Result{Outcome: Failed, ConversationID: s.LastCommittedID, Err: err}
	}
}

// stream opens the generation and folds every response into acc.
func (r *Runner) stream(ctx context.Context, turn store.Turn, acc *stream.Accumulator) error {
	var (
		gen *api.Generation
		err error
	)
	if r.store.State().HistoryEnabled() {
		id := turn.ConversationID
		if turn.New {
			id = ""
		}
		gen, err = r.gen.HistoryGenerate(ctx, turn.Request, id)
	} else {
		gen, err = r.gen.Conversation(ctx, turn.Request)
	}
	if err != nil {
		return err
	}
	defer gen.Close()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		resp, err := gen.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		acc.Add(resp)
		r.store.Progress(turn, acc.Messages(), acc.Loading())
	}

	r.log.Debug("stream finished",
		zap.String("conversation_id", turn.ConversationID),
		zap.Int("responses", acc.Responses()),
		zap.Int("content_len", len(acc.Content())))
	return nil
}
