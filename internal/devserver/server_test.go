// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danniesim/mecoai-chat/internal/api"
	"github.com/danniesim/mecoai-chat/internal/chaterr"
	"github.com/danniesim/mecoai-chat/internal/model"
	"github.com/danniesim/mecoai-chat/internal/stream"
)

func newTestServer(t *testing.T, opts Options) (*Server, *api.Client) {
	t.Helper()
	srv := New(opts)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, api.NewClient(&api.ClientConfig{BaseURL: ts.URL})
}

// steppingClock returns a clock that advances one second per call.
func steppingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

// drain folds a whole generation into an accumulator.
func drain(t *testing.T, gen *api.Generation) *stream.Accumulator {
	t.Helper()
	defer gen.Close()
	acc := stream.NewAccumulator()
	for {
		resp, err := gen.Next()
		if err == io.EOF {
			return acc
		}
		require.NoError(t, err)
		acc.Add(resp)
	}
}

// =============================================================================
// SETTINGS AND ENSURE
// =============================================================================

func TestEnsure(t *testing.T) {
	tests := []struct {
		name   string
		cosmos bool
		want   model.CosmosDBHealth
	}{
		{"working", true, model.CosmosDBHealth{CosmosDB: true, Status: model.CosmosDBWorking}},
		{"not configured", false, model.CosmosDBHealth{CosmosDB: false, Status: model.CosmosDBNotConfigured}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, client := newTestServer(t, Options{Cosmos: tt.cosmos})
			health, err := client.HistoryEnsure(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, health)
		})
	}
}

func TestFrontendSettings(t *testing.T) {
	_, client := newTestServer(t, Options{})
	settings, err := client.FrontendSettings(context.Background())
	require.NoError(t, err)
	assert.True(t, settings.FeedbackEnabled)
	assert.Equal(t, "Contoso", settings.Title("x"))
	assert.Equal(t, "Start chatting", settings.UI.ChatTitle)
}

// =============================================================================
// GENERATION
// =============================================================================

func TestHistoryGenerateNewConversation(t *testing.T) {
	_, client := newTestServer(t, Options{Cosmos: true, ChunkSize: 7})
	ctx := context.Background()
	q := model.NewUserMessage("what is the dev server for")

	gen, err := client.HistoryGenerate(ctx, []model.ChatMessage{q}, "")
	require.NoError(t, err)
	acc := drain(t, gen)

	md := acc.Metadata()
	require.NotNil(t, md)
	assert.NotEmpty(t, md.ConversationID)
	assert.Equal(t, "what is the dev server for", md.Title)

	msgs := acc.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleTool, msgs[0].Role)
	cites := model.ParseCitations(&msgs[0])
	require.Len(t, cites, 2)
	_, linked := cites[1].Link()
	assert.False(t, linked)
	assert.Equal(t, model.RoleAssistant, msgs[1].Role)
	assert.Equal(t, answer(q.Content), msgs[1].Content)

	list, err := client.HistoryList(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, md.ConversationID, list[0].ID)
	assert.NotEmpty(t, list[0].Date)
	assert.False(t, list[0].Hydrated())

	stored, err := client.HistoryRead(ctx, md.ConversationID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, q.ID, stored[0].ID)
}

func TestHistoryGenerateExistingConversation(t *testing.T) {
	_, client := newTestServer(t, Options{Cosmos: true})
	ctx := context.Background()

	gen, err := client.HistoryGenerate(ctx, []model.ChatMessage{model.NewUserMessage("one")}, "")
	require.NoError(t, err)
	id := drain(t, gen).Metadata().ConversationID

	gen, err = client.HistoryGenerate(ctx, []model.ChatMessage{model.NewUserMessage("two")}, id)
	require.NoError(t, err)
	assert.Nil(t, drain(t, gen).Metadata())

	stored, err := client.HistoryRead(ctx, id)
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	_, err = client.HistoryGenerate(ctx, []model.ChatMessage{model.NewUserMessage("x")}, "missing")
	assert.Equal(t, chaterr.KindServer, chaterr.KindOf(err))
}

func TestConversationUsesContext(t *testing.T) {
	_, client := newTestServer(t, Options{})
	gen, err := client.Conversation(context.Background(), []model.ChatMessage{model.NewUserMessage("hi")})
	require.NoError(t, err)
	acc := drain(t, gen)

	assert.Nil(t, acc.Metadata())
	msgs := acc.Messages()
	require.Len(t, msgs, 2)
	assert.Len(t, model.ParseCitations(&msgs[0]), 2)
	assert.Equal(t, answer("hi"), msgs[1].Content)
}

func TestGenerateWithoutQuestion(t *testing.T) {
	_, client := newTestServer(t, Options{})
	_, err := client.Conversation(context.Background(), nil)
	require.Error(t, err)
	msg, ok := chaterr.ServerMessage(err)
	require.True(t, ok)
	assert.Equal(t, "no user message", msg)
}

func TestPayloadIsMisaligned(t *testing.T) {
	srv := New(Options{})
	body := srv.payload("q", nil, false)

	assert.Contains(t, string(body), "{}\n\n")
	assert.Greater(t, bytes.Count(body, []byte("\n{}\n")), 1)

	split := false
	for _, c := range chunks(body, DefaultChunkSize) {
		assert.LessOrEqual(t, len(c), DefaultChunkSize)
		if !bytes.HasSuffix(c, []byte("\n")) {
			split = true
		}
	}
	assert.True(t, split)
	assert.Equal(t, body, bytes.Join(chunks(body, DefaultChunkSize), nil))
}

func TestChunks(t *testing.T) {
	assert.Equal(t, [][]byte{[]byte("abc"), []byte("de")}, chunks([]byte("abcde"), 3))
	assert.Empty(t, chunks(nil, 3))
}

// =============================================================================
// HISTORY
// =============================================================================

func TestListPages(t *testing.T) {
	srv, client := newTestServer(t, Options{Cosmos: true, Now: steppingClock()})
	for i := 0; i < PageSize+5; i++ {
		srv.mem.create("c" + strconv.Itoa(i))
	}
	ctx := context.Background()

	first, err := client.HistoryList(ctx, 0)
	require.NoError(t, err)
	require.Len(t, first, PageSize)
	assert.Equal(t, "c29", first[0].Title)

	second, err := client.HistoryList(ctx, PageSize)
	require.NoError(t, err)
	require.Len(t, second, 5)
	assert.Equal(t, "c0", second[4].Title)

	empty, err := client.HistoryList(ctx, 2*PageSize)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestListBadOffset(t *testing.T) {
	srv := New(Options{Cosmos: true})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, api.PathHistoryList+"?offset=x", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMutations(t *testing.T) {
	srv, client := newTestServer(t, Options{Cosmos: true, Now: steppingClock()})
	ctx := context.Background()
	a := srv.mem.create("a")
	b := srv.mem.create("b")

	require.NoError(t, client.HistoryUpdate(ctx, a.id, []model.ChatMessage{
		model.NewUserMessage("q"),
		model.NewErrorMessage("boom"),
	}))
	stored, err := client.HistoryRead(ctx, a.id)
	require.NoError(t, err)
	require.Len(t, stored, 1, "error messages are not stored")

	require.NoError(t, client.HistoryRename(ctx, a.id, "renamed"))
	list, err := client.HistoryList(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "renamed", list[0].Title)

	require.NoError(t, client.HistoryClear(ctx, a.id))
	stored, err = client.HistoryRead(ctx, a.id)
	require.NoError(t, err)
	assert.Empty(t, stored)

	require.NoError(t, client.HistoryDelete(ctx, b.id))
	err = client.HistoryDelete(ctx, b.id)
	var ce *chaterr.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, http.StatusNotFound, ce.Status)

	require.NoError(t, client.HistoryDeleteAll(ctx))
	list, err = client.HistoryList(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRenameRequiresTitle(t *testing.T) {
	srv, client := newTestServer(t, Options{Cosmos: true})
	c := srv.mem.create("a")
	err := client.HistoryRename(context.Background(), c.id, "")
	assert.Equal(t, chaterr.KindServer, chaterr.KindOf(err))
}

func TestFailMutations(t *testing.T) {
	srv, client := newTestServer(t, Options{Cosmos: true, FailMutations: true})
	ctx := context.Background()
	c := srv.mem.create("a")

	calls := map[string]func() error{
		"update":     func() error { return client.HistoryUpdate(ctx, c.id, nil) },
		"rename":     func() error { return client.HistoryRename(ctx, c.id, "x") },
		"delete":     func() error { return client.HistoryDelete(ctx, c.id) },
		"delete_all": func() error { return client.HistoryDeleteAll(ctx) },
		"clear":      func() error { return client.HistoryClear(ctx, c.id) },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			err := call()
			var ce *chaterr.Error
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, http.StatusInternalServerError, ce.Status)
		})
	}

	list, err := client.HistoryList(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestHistoryRoutesNeedCosmos(t *testing.T) {
	_, client := newTestServer(t, Options{})
	_, err := client.HistoryList(context.Background(), 0)
	var ce *chaterr.Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, http.StatusNotFound, ce.Status)
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(New(Options{}).log)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
}
