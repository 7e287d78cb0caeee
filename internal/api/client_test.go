// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danniesim/mecoai-chat/internal/chaterr"
	"github.com/danniesim/mecoai-chat/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(&ClientConfig{BaseURL: srv.URL + "/", Headers: map[string]string{"X-Test": "1"}})
}

// =============================================================================
// GENERATION
// =============================================================================

func TestConversationStreams(t *testing.T) {
	var got ConversationRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathConversation, r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "1", r.Header.Get("X-Test"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		flusher := w.(http.Flusher)
		_, _ = io.WriteString(w, `{"id":"r","choices":[{"messages":[{"role":"assistant","content":"Hi"}]}]}`+"\n{}\n")
		flusher.Flush()
		_, _ = io.WriteString(w, `{"id":"r","choices":[{"messages":[{"role":"assis`)
		flusher.Flush()
		_, _ = io.WriteString(w, `tant","content":" there"}]}]}`+"\n")
	})

	gen, err := client.Conversation(context.Background(), []model.ChatMessage{{ID: "u", Role: model.RoleUser, Content: "hello"}})
	require.NoError(t, err)
	defer gen.Close()

	var parts []string
	for {
		obj, err := gen.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		parts = append(parts, obj.Fragments()[0].Content)
	}
	assert.Equal(t, []string{"Hi", " there"}, parts)
	require.Len(t, got.Messages, 1)
	assert.Empty(t, got.ConversationID)
}

func TestHistoryGenerateSendsConversationID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "c1", body["conversation_id"])
		assert.Equal(t, PathHistoryGenerate, r.URL.Path)
	})

	gen, err := client.HistoryGenerate(context.Background(), nil, "c1")
	require.NoError(t, err)
	defer gen.Close()
	_, err = gen.Next()
	assert.Equal(t, io.EOF, err)
}

func TestGenerateNonOKStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"deployment not found"}`)
	})

	_, err := client.HistoryGenerate(context.Background(), nil, "")
	require.Error(t, err)
	assert.Equal(t, chaterr.KindServer, chaterr.KindOf(err))
	assert.Equal(t, chaterr.GenerateStatusPrefix+"deployment not found", chaterr.UserMessage(err))
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := NewClient(&ClientConfig{BaseURL: srv.URL})

	_, err := client.Conversation(context.Background(), nil)
	assert.Equal(t, chaterr.KindTransport, chaterr.KindOf(err))
}

// =============================================================================
// HISTORY
// =============================================================================

func TestHistoryList(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantNil bool
		wantLen int
	}{
		{"page", `[{"id":"a","title":"A","createdAt":"2024-01-01T00:00:00Z"},{"id":"b","title":"B","date":"x"}]`, false, 2},
		{"empty", `[]`, false, 0},
		{"null", `null`, true, 0},
		{"object", `{"error":"nope"}`, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "25", r.URL.Query().Get("offset"))
				_, _ = io.WriteString(w, tt.body)
			})
			list, err := client.HistoryList(context.Background(), 25)
			require.NoError(t, err)
			assert.Equal(t, tt.wantNil, list == nil)
			assert.Len(t, list, tt.wantLen)
		})
	}
}

func TestHistoryRead(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"conversation_id":"c","messages":[{"id":"m","role":"user","content":"q","createdAt":"2024-01-01T00:00:00Z"}]}`)
	})

	msgs, err := client.HistoryRead(context.Background(), "c")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "2024-01-01T00:00:00Z", msgs[0].Date)
}

func TestHistoryMutations(t *testing.T) {
	var method, path string
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		body = nil
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = io.WriteString(w, `{"success":true}`)
	})
	ctx := context.Background()

	require.NoError(t, client.HistoryRename(ctx, "c", "new"))
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, PathHistoryRename, path)
	assert.Equal(t, "new", body["title"])

	require.NoError(t, client.HistoryDelete(ctx, "c"))
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "c", body["conversation_id"])

	require.NoError(t, client.HistoryDeleteAll(ctx))
	assert.Equal(t, PathHistoryDeleteAll, path)

	require.NoError(t, client.HistoryClear(ctx, "c"))
	assert.Equal(t, PathHistoryClear, path)

	require.NoError(t, client.HistoryUpdate(ctx, "c", []model.ChatMessage{{ID: "m"}}))
	assert.Equal(t, PathHistoryUpdate, path)
	assert.Len(t, body["messages"], 1)
}

func TestHistoryMutationFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	err := client.HistoryDelete(context.Background(), "missing")
	require.Error(t, err)
	var ce *chaterr.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, http.StatusNotFound, ce.Status)
}

func TestHistoryEnsure(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   model.CosmosDBHealth
	}{
		{"working", 200, `{"message":"CosmosDB is configured and working"}`, model.CosmosDBHealth{CosmosDB: true, Status: model.CosmosDBWorking}},
		{"broken", 500, `{"error":"boom"}`, model.CosmosDBHealth{CosmosDB: false, Status: model.CosmosDBNotWorking}},
		{"unauthorized", 401, `{"error":"x"}`, model.CosmosDBHealth{CosmosDB: false, Status: model.CosmosDBInvalidCredentials}},
		{"not configured", 404, `{"error":"CosmosDB is not configured"}`, model.CosmosDBHealth{CosmosDB: false, Status: model.CosmosDBNotConfigured}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			got, err := client.HistoryEnsure(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFrontendSettings(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"auth_enabled":false,"feedback_enabled":true,"ui":{"title":"Contoso","chat_title":"Start chatting"}}`)
	})

	s, err := client.FrontendSettings(context.Background())
	require.NoError(t, err)
	assert.True(t, s.FeedbackEnabled)
	assert.Equal(t, "Contoso", s.Title("default"))
}
