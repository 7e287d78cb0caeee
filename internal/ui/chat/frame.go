// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// This file caps transcript redraws while streaming. Store changes arrive
// far faster than a terminal can repaint; the limiter lets a redraw through
// when a token is free and otherwise schedules one deferred frame.
package chat

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/time/rate"
)

// =============================================================================
// FRAME LIMITER
// =============================================================================

const (
	defaultMaxFPS = 30
	maxMaxFPS     = 120
)

// FrameLimiter is a token bucket over redraws with at most one deferred
// frame outstanding. It is only used from the Bubble Tea loop.
type FrameLimiter struct {
	limiter *rate.Limiter
	pending bool
	fps     int
}

// NewFrameLimiter creates a limiter for fps frames per second. Values
// outside 1..120 use the default of 30.
func NewFrameLimiter(fps int) *FrameLimiter {
	f := &FrameLimiter{}
	f.SetMaxFPS(fps)
	return f
}

// SetMaxFPS changes the frame rate.
func (f *FrameLimiter) SetMaxFPS(fps int) {
	if fps <= 0 || fps > maxMaxFPS {
		fps = defaultMaxFPS
	}
	f.fps = fps
	f.limiter = rate.NewLimiter(rate.Limit(fps), 1)
}

// MaxFPS returns the configured frame rate.
func (f *FrameLimiter) MaxFPS() int {
	return f.fps
}

// Request asks for a redraw. It returns true when the caller may redraw
// now. Otherwise it returns a command that delivers frameMsg when the next
// token is free, or nil if such a frame is already scheduled.
func (f *FrameLimiter) Request(now time.Time) (bool, tea.Cmd) {
	if f.pending {
		return false, nil
	}
	if f.limiter.AllowN(now, 1) {
		return true, nil
	}
	f.pending = true
	r := f.limiter.ReserveN(now, 1)
	delay := r.DelayFrom(now)
	return false, tea.Tick(delay, func(time.Time) tea.Msg { return frameMsg{} })
}

// Fired marks the deferred frame as delivered.
func (f *FrameLimiter) Fired() {
	f.pending = false
}

// Pending reports whether a deferred frame is scheduled.
func (f *FrameLimiter) Pending() bool {
	return f.pending
}
