// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package lifecycle

import (
	"context"
	"sync"
	"sync/atomic"
)

// =============================================================================
// CANCELLATION HANDLES (THREAD-SAFE)
// =============================================================================

// Handle is the cancellation token of one generation request.
type Handle struct {
	id      uint64
	ctx     context.Context
	cancel  context.CancelFunc
	stopped atomic.Bool
}

// Context is canceled when the handle is stopped or ended.
func (h *Handle) Context() context.Context {
	return h.ctx
}

// Stopped reports whether the request was stopped by the user, as opposed
// to finishing on its own.
func (h *Handle) Stopped() bool {
	return h.stopped.Load()
}

func (h *Handle) stop() {
	h.stopped.Store(true)
	h.cancel()
}

// Controller owns the handles of all outstanding requests.
//
// IMPORTANT: Controller holds a mutex and must be shared by pointer, not
// copied with the Bubble Tea model.
type Controller struct {
	mu      sync.Mutex
	next    uint64
	handles map[uint64]*Handle
}

// NewController creates a controller with no outstanding requests.
func NewController() *Controller {
	return &Controller{handles: make(map[uint64]*Handle)}
}

// Begin registers a new request whose context derives from parent.
func (c *Controller) Begin(parent context.Context) *Handle {
	ctx, cancel := context.WithCancel(parent)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next++
	h := &Handle{id: c.next, ctx: ctx, cancel: cancel}
	c.handles[h.id] = h
	return h
}

// End removes h from the outstanding set and releases its context.
// Safe to call more than once and after StopAll.
func (c *Controller) End(h *Handle) {
	if h == nil {
		return
	}
	c.mu.Lock()
	delete(c.handles, h.id)
	c.mu.Unlock()
	h.cancel() // Always cancel to prevent context leaks
}

// StopAll stops every outstanding request and forgets them. It returns the
// number of requests stopped; with none outstanding it does nothing.
func (c *Controller) StopAll() int {
	c.mu.Lock()
	handles := c.handles
	c.handles = make(map[uint64]*Handle)
	c.mu.Unlock()

	for _, h := range handles {
		h.stop()
	}
	return len(handles)
}

// Outstanding returns the number of requests not yet ended or stopped.
func (c *Controller) Outstanding() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handles)
}
