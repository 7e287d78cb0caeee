// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/danniesim/mecoai-chat/internal/chaterr"
	"github.com/danniesim/mecoai-chat/internal/model"
)

// DefaultNoticeTTL is how long a transient notice stays visible.
const DefaultNoticeTTL = 5 * time.Second

// HistoryService is the remote persistence the store reconciles against.
// *api.Client implements it.
type HistoryService interface {
	HistoryUpdate(ctx context.Context, conversationID string, messages []model.ChatMessage) error
	HistoryRename(ctx context.Context, conversationID, title string) error
	HistoryDelete(ctx context.Context, conversationID string) error
	HistoryDeleteAll(ctx context.Context) error
	HistoryClear(ctx context.Context, conversationID string) error
	HistoryRead(ctx context.Context, conversationID string) ([]model.ChatMessage, error)
}

// Options configures a Store.
type Options struct {
	Logger    *zap.Logger
	NoticeTTL time.Duration
	// Context bounds the persistence writes the store issues on its own.
	Context context.Context
}

// =============================================================================
// STORE
// =============================================================================

// Store serializes every state change through Dispatch.
//
// Snapshots returned by State are immutable. Listeners learn about new
// snapshots through Changes, which coalesces bursts into one signal.
type Store struct {
	mu     sync.Mutex
	state  State
	seq    int64
	timers map[int64]*time.Timer
	closed bool

	svc     HistoryService
	log     *zap.Logger
	ttl     time.Duration
	ctx     context.Context
	changes chan struct{}

	now func() time.Time
}

// New creates a store in the initial state.
func New(svc HistoryService, opts Options) *Store {
	if opts.NoticeTTL <= 0 {
		opts.NoticeTTL = DefaultNoticeTTL
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		state:   Initial(),
		timers:  make(map[int64]*time.Timer),
		svc:     svc,
		log:     log.Named("store"),
		ttl:     opts.NoticeTTL,
		ctx:     opts.Context,
		changes: make(chan struct{}, 1),
		now:     time.Now,
	}
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Changes signals after state changes. The channel holds at most one
// pending signal; read State for the latest snapshot.
func (s *Store) Changes() <-chan struct{} {
	return s.changes
}

// Dispatch applies a and returns the new snapshot.
//
// When a finishes a turn, Dispatch performs the persistence write for the
// committed conversation before returning, then leaves Done.
func (s *Store) Dispatch(a Action) State {
	next, _ := s.update(func(State) (Action, error) { return a, nil })
	return next
}

// Close stops pending notice timers.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

// update runs decide and the resulting action under one lock, so the
// decision observes the same snapshot the action is applied to. A nil
// action or an error leaves the state untouched.
func (s *Store) update(decide func(State) (Action, error)) (State, error) {
	s.mu.Lock()
	prev := s.state
	a, err := decide(prev)
	if err != nil || a == nil {
		s.mu.Unlock()
		return prev, err
	}
	next := Reduce(prev, a)
	s.state = next
	s.mu.Unlock()

	s.notify()
	if _, finished := a.(TurnFinished); finished && next.Status == Done {
		s.persist(next)
		return s.State(), nil
	}
	return next, nil
}

func (s *Store) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// persist is the single effect of entering Done: one write of the
// committed conversation when history is enabled, then PersistFinished.
func (s *Store) persist(snap State) {
	defer s.Dispatch(PersistFinished{})

	if !snap.HistoryEnabled() || s.svc == nil || snap.LastCommitted == nil {
		return
	}
	conv := *snap.LastCommitted
	if conv.IsEmpty() {
		return
	}

	if err := s.svc.HistoryUpdate(s.ctx, conv.ID, conv.Messages); err != nil {
		s.log.Warn("history update failed",
			zap.String("conversation_id", conv.ID),
			zap.Int("messages", len(conv.Messages)),
			zap.Error(err))
		s.addNotice(ScopePersist, conv.ID, chaterr.PersistFailedText)
		return
	}
	s.log.Debug("conversation persisted",
		zap.String("conversation_id", conv.ID),
		zap.Int("messages", len(conv.Messages)))
}

// =============================================================================
// NOTICES
// =============================================================================

// addNotice shows a notice that dismisses itself after the TTL.
func (s *Store) addNotice(scope NoticeScope, target, text string) Notice {
	s.mu.Lock()
	s.seq++
	n := Notice{
		ID:        s.seq,
		Scope:     scope,
		Target:    target,
		Text:      text,
		ExpiresAt: s.now().Add(s.ttl),
	}
	if !s.closed {
		id := n.ID
		s.timers[id] = time.AfterFunc(s.ttl, func() {
			s.mu.Lock()
			delete(s.timers, id)
			s.mu.Unlock()
			s.Dispatch(DismissNotice{ID: id})
		})
	}
	s.mu.Unlock()

	s.Dispatch(AddNotice{Notice: n})
	return n
}

// DismissNotice removes a notice before it expires.
func (s *Store) DismissNotice(id int64) {
	s.mu.Lock()
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()
	s.Dispatch(DismissNotice{ID: id})
}
