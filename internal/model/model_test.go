// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestWithoutErrors(t *testing.T) {
	msgs := []ChatMessage{
		{ID: "1", Role: RoleUser, Content: "q"},
		{ID: "2", Role: RoleError, Content: "boom"},
		{ID: "3", Role: RoleTool, Content: "{}"},
		{ID: "4", Role: RoleAssistant, Content: "a"},
	}

	got := WithoutErrors(msgs)

	require.Len(t, got, 3)
	for _, m := range got {
		assert.NotEqual(t, RoleError, m.Role)
	}
	assert.Len(t, msgs, 4, "input must not be modified")
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-05-01T12:30:00.000Z", time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)},
		{"2024-05-01T12:30:00.123456", time.Date(2024, 5, 1, 12, 30, 0, 123456000, time.UTC)},
		{"2024-05-01", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{"not a date", time.Time{}},
	}
	for _, tt := range tests {
		assert.True(t, tt.want.Equal(ParseDate(tt.in)), "ParseDate(%q)", tt.in)
	}
}

func TestFormatDateRoundTrip(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 6_000_000, time.UTC)
	assert.Equal(t, "2025-01-02T03:04:05.006Z", FormatDate(now))
	assert.True(t, now.Equal(ParseDate(FormatDate(now))))
}

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestNewConversation(t *testing.T) {
	q := NewUserMessage("hello there")
	conv := NewConversation(q)

	assert.NotEmpty(t, conv.ID)
	assert.Equal(t, "hello there", conv.Title)
	require.Len(t, conv.Messages, 1)
	assert.Equal(t, q, conv.Messages[0])
}

func TestConversationAppendDoesNotAlias(t *testing.T) {
	base := Conversation{ID: "c", Messages: make([]ChatMessage, 1, 8)}
	a := base.Append(ChatMessage{ID: "a"})
	b := base.Append(ChatMessage{ID: "b"})

	assert.Equal(t, "a", a.Messages[1].ID)
	assert.Equal(t, "b", b.Messages[1].ID)
	assert.Len(t, base.Messages, 1)
}

func TestConversationUnmarshalCreatedAt(t *testing.T) {
	var conv Conversation
	err := json.Unmarshal([]byte(`{"id":"c1","title":"t","createdAt":"2024-01-01T00:00:00Z"}`), &conv)
	require.NoError(t, err)

	assert.Equal(t, "2024-01-01T00:00:00Z", conv.Date)
	assert.False(t, conv.Hydrated())

	err = json.Unmarshal([]byte(`{"id":"c2","date":"d","createdAt":"x","messages":[]}`), &conv)
	require.NoError(t, err)
	assert.Equal(t, "d", conv.Date)
	assert.True(t, conv.Hydrated())
}

func TestLastAnswer(t *testing.T) {
	conv := Conversation{Messages: []ChatMessage{
		{ID: "u", Role: RoleUser},
		{ID: "t", Role: RoleTool},
		{ID: "a", Role: RoleAssistant},
	}}
	answer, tool, ok := conv.LastAnswer()
	require.True(t, ok)
	assert.Equal(t, "a", answer.ID)
	require.NotNil(t, tool)
	assert.Equal(t, "t", tool.ID)

	_, _, ok = Conversation{Messages: []ChatMessage{{Role: RoleUser}}}.LastAnswer()
	assert.False(t, ok)
}

// =============================================================================
// RESPONSE TESTS
// =============================================================================

func TestResponseErrorShapes(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		present bool
		message string
	}{
		{"string", `{"error":"rate limited"}`, true, "rate limited"},
		{"object", `{"error":{"message":"bad","code":"429"}}`, true, "bad"},
		{"empty string", `{"error":""}`, false, ""},
		{"null", `{"error":null}`, false, ""},
		{"absent", `{"id":"x"}`, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp ChatResponse
			require.NoError(t, json.Unmarshal([]byte(tt.body), &resp))
			assert.Equal(t, tt.present, resp.Error.Present())
			if tt.present {
				assert.Equal(t, tt.message, resp.Error.Message)
			}
		})
	}
}

func TestFragmentsFlattensChoices(t *testing.T) {
	resp := ChatResponse{Choices: []Choice{
		{Messages: []ChatMessage{{Content: "a"}, {Content: "b"}}},
		{Messages: []ChatMessage{{Content: "c"}}},
	}}
	var got []string
	for _, m := range resp.Fragments() {
		got = append(got, m.Content)
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

// =============================================================================
// CITATION TESTS
// =============================================================================

func TestParseCitations(t *testing.T) {
	tool := &ChatMessage{Role: RoleTool, Content: `{"citations":[{"content":"c1","title":"Doc"},{"content":"c2","url":"https://x/blob.core/y"}],"intent":"[]"}`}

	got := ParseCitations(tool)
	require.Len(t, got, 2)
	assert.Equal(t, "Doc", got[0].DisplayTitle(1))
	assert.Equal(t, "Citation 2", got[1].DisplayTitle(2))

	_, ok := got[1].Link()
	assert.False(t, ok, "blob storage links are not offered")
}

func TestParseCitationsFailuresAreEmpty(t *testing.T) {
	tests := []*ChatMessage{
		nil,
		{Role: RoleTool, Content: "not json"},
		{Role: RoleTool, Content: `{"intent":"x"}`},
		{Role: RoleAssistant, Content: `{"citations":[{"content":"c"}]}`},
	}
	for _, msg := range tests {
		got := ParseCitations(msg)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
}

func TestFeedbackSymbol(t *testing.T) {
	assert.Equal(t, "+", FeedbackPositive.Symbol())
	assert.Equal(t, "-", FeedbackWrongCitation.Symbol())
	assert.Equal(t, "", FeedbackNeutral.Symbol())
	assert.Equal(t, "", Feedback("").Symbol())
}
