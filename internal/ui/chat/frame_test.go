// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFrameLimiterDefersBurst(t *testing.T) {
	f := NewFrameLimiter(10)
	now := time.Now()

	ok, cmd := f.Request(now)
	assert.True(t, ok, "first frame is free")
	assert.Nil(t, cmd)

	ok, cmd = f.Request(now)
	assert.False(t, ok)
	assert.NotNil(t, cmd, "second frame is deferred")
	assert.True(t, f.Pending())

	ok, cmd = f.Request(now)
	assert.False(t, ok)
	assert.Nil(t, cmd, "only one deferred frame at a time")

	f.Fired()
	assert.False(t, f.Pending())
}

func TestFrameLimiterRefills(t *testing.T) {
	f := NewFrameLimiter(10)
	now := time.Now()

	ok, _ := f.Request(now)
	assert.True(t, ok)
	ok, _ = f.Request(now.Add(150 * time.Millisecond))
	assert.True(t, ok)
}

func TestFrameLimiterBounds(t *testing.T) {
	assert.Equal(t, defaultMaxFPS, NewFrameLimiter(0).MaxFPS())
	assert.Equal(t, defaultMaxFPS, NewFrameLimiter(1000).MaxFPS())
	assert.Equal(t, 60, NewFrameLimiter(60).MaxFPS())
}
