// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/danniesim/mecoai-chat/internal/model"
	"github.com/danniesim/mecoai-chat/internal/store"
)

// DefaultPageSize is the number of conversations per history page.
const DefaultPageSize = 25

// Lister fetches one page of history. A nil page with a nil error means
// the backend returned no list at all.
type Lister interface {
	HistoryList(ctx context.Context, offset int) ([]model.Conversation, error)
}

// =============================================================================
// PAGER
// =============================================================================

// Pager loads further history pages when the end of the list scrolls into
// view. The first page is loaded by Bootstrap, so the offset starts at one
// page.
type Pager struct {
	mu       sync.Mutex
	offset   int
	pageSize int
	visible  bool
	observed bool
	fetching bool

	store  *store.Store
	lister Lister
	log    *zap.Logger
}

// NewPager creates a pager. pageSize <= 0 uses DefaultPageSize.
func NewPager(st *store.Store, lister Lister, pageSize int, log *zap.Logger) *Pager {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pager{
		offset:   pageSize,
		pageSize: pageSize,
		store:    st,
		lister:   lister,
		log:      log.Named("pager"),
	}
}

// Observe records whether the sentinel row is visible and reports whether
// this observation should trigger a fetch. Only transitions into visible
// trigger; the first observation is the baseline and never does.
func (p *Pager) Observe(visible bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.observed {
		p.observed = true
		p.visible = visible
		return false
	}
	rising := visible && !p.visible
	p.visible = visible
	return rising
}

// Offset returns the offset the next fetch will use.
func (p *Pager) Offset() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.offset
}

// Reset rewinds the offset to the second page and forgets visibility, as
// after the first page was reloaded.
func (p *Pager) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.offset = p.pageSize
	p.observed = false
	p.visible = false
}

// FetchNext loads the page at the current offset and advances the offset.
// A call made while a fetch is running is ignored.
func (p *Pager) FetchNext(ctx context.Context) error {
	p.mu.Lock()
	if p.fetching {
		p.mu.Unlock()
		return nil
	}
	p.fetching = true
	offset := p.offset
	p.offset += p.pageSize
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.fetching = false
		p.mu.Unlock()
	}()

	p.store.Dispatch(store.SetHistoryPageLoading{Loading: true})
	defer p.store.Dispatch(store.SetHistoryPageLoading{Loading: false})

	page, err := p.lister.HistoryList(ctx, offset)
	if err != nil {
		p.log.Warn("history page failed", zap.Int("offset", offset), zap.Error(err))
		page = nil
	}
	if page == nil {
		p.store.Dispatch(store.FetchChatHistory{Conversations: nil})
		return err
	}

	p.log.Debug("history page loaded", zap.Int("offset", offset), zap.Int("count", len(page)))
	p.store.Dispatch(store.AppendChatHistory{Conversations: page})
	return nil
}
