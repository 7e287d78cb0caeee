// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danniesim/mecoai-chat/internal/model"
)

func newTestAccumulator() *Accumulator {
	acc := NewAccumulator()
	clock := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	acc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	n := 0
	acc.newID = func() string {
		n++
		return "gen-" + strconv.Itoa(n)
	}
	return acc
}

func response(id string, msgs ...model.ChatMessage) *model.ChatResponse {
	return &model.ChatResponse{ID: id, Choices: []model.Choice{{Messages: msgs}}}
}

func assistant(content string) model.ChatMessage {
	return model.ChatMessage{Role: model.RoleAssistant, Content: content}
}

func TestAccumulatorConcatenatesAssistant(t *testing.T) {
	acc := newTestAccumulator()
	acc.Add(response("r1", assistant("Hel")))
	first := acc.Messages()[0]
	acc.Add(response("r1", assistant("lo")))
	acc.Add(response("r1", assistant(" world")))

	msgs := acc.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "Hello world", msgs[0].Content)
	assert.Equal(t, "r1", msgs[0].ID)
	assert.Equal(t, model.RoleAssistant, msgs[0].Role)
	assert.Equal(t, first.Date, msgs[0].Date, "date is fixed by the first fragment")
}

func TestAccumulatorContentIsMonotonic(t *testing.T) {
	acc := newTestAccumulator()
	prev := ""
	for _, part := range []string{"a", "", "bc", "d"} {
		acc.Add(response("r1", assistant(part)))
		got := acc.Content()
		assert.True(t, len(got) >= len(prev) && got[:len(prev)] == prev)
		prev = got
	}
	assert.Equal(t, "abcd", prev)
}

func TestAccumulatorOrdering(t *testing.T) {
	tests := []struct {
		name  string
		resps []*model.ChatResponse
		roles []model.Role
	}{
		{
			name: "tool then assistant",
			resps: []*model.ChatResponse{
				response("r", model.ChatMessage{Role: model.RoleTool, Content: `{"citations":[]}`}),
				response("r", assistant("x")),
			},
			roles: []model.Role{model.RoleTool, model.RoleAssistant},
		},
		{
			name:  "assistant only",
			resps: []*model.ChatResponse{response("r", assistant("x"))},
			roles: []model.Role{model.RoleAssistant},
		},
		{
			name: "assistant before tool still orders tool first",
			resps: []*model.ChatResponse{
				response("r", assistant("x")),
				response("r", model.ChatMessage{Role: model.RoleTool, Content: "{}"}),
			},
			roles: []model.Role{model.RoleTool, model.RoleAssistant},
		},
		{
			name:  "nothing",
			resps: []*model.ChatResponse{response("r")},
			roles: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := newTestAccumulator()
			for _, r := range tt.resps {
				acc.Add(r)
			}
			var roles []model.Role
			for _, m := range acc.Messages() {
				roles = append(roles, m.Role)
			}
			assert.Equal(t, tt.roles, roles)
		})
	}
}

func TestAccumulatorLastToolWins(t *testing.T) {
	acc := newTestAccumulator()
	acc.Add(response("r", model.ChatMessage{Role: model.RoleTool, Content: "first"}))
	acc.Add(response("r", model.ChatMessage{Role: model.RoleTool, Content: "second"}))
	acc.Add(response("r", assistant("x")))

	msgs := acc.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "second", msgs[0].Content)
}

func TestAccumulatorContextBecomesTool(t *testing.T) {
	acc := newTestAccumulator()
	acc.Add(response("r", model.ChatMessage{Role: model.RoleAssistant, Content: "hi", Context: `{"citations":[{"content":"c"}]}`}))

	msgs := acc.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleTool, msgs[0].Role)
	assert.Equal(t, "gen-1", msgs[0].ID)
	assert.Len(t, model.ParseCitations(&msgs[0]), 1)
	assert.Equal(t, "hi", msgs[1].Content)
}

func TestAccumulatorLoading(t *testing.T) {
	acc := newTestAccumulator()
	assert.True(t, acc.Loading())

	acc.Add(response("r", model.ChatMessage{Role: model.RoleTool, Content: "{}"}))
	assert.True(t, acc.Loading(), "tool fragments do not clear the indicator")

	acc.Add(response("r", assistant("")))
	assert.False(t, acc.Loading())
}

func TestAccumulatorFinalize(t *testing.T) {
	acc := newTestAccumulator()
	acc.Add(response("r", assistant("answer")))
	user := model.ChatMessage{ID: "u", Role: model.RoleUser, Content: "q"}

	msgs := acc.Finalize(&user)
	require.Len(t, msgs, 2)
	assert.Equal(t, "u", msgs[0].ID)
	assert.Equal(t, "answer", msgs[1].Content)

	assert.Len(t, acc.Finalize(nil), 1)
}

func TestAccumulatorMetadata(t *testing.T) {
	acc := newTestAccumulator()
	assert.Nil(t, acc.Metadata())

	r := response("r", assistant("x"))
	r.HistoryMetadata = &model.HistoryMetadata{ConversationID: "srv-1", Title: "t"}
	acc.Add(r)

	require.NotNil(t, acc.Metadata())
	assert.Equal(t, "srv-1", acc.Metadata().ConversationID)
	assert.Equal(t, 1, acc.Responses())
}
