// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/danniesim/mecoai-chat/internal/api"
	"github.com/danniesim/mecoai-chat/internal/chaterr"
	"github.com/danniesim/mecoai-chat/internal/config"
	"github.com/danniesim/mecoai-chat/internal/devserver"
	"github.com/danniesim/mecoai-chat/internal/model"
)

// =============================================================================
// HELPERS
// =============================================================================

type testApp struct {
	*App
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

// reset clears captured output and sets the input.
func (ta *testApp) reset(input string) {
	ta.out.Reset()
	ta.errOut.Reset()
	ta.In = strings.NewReader(input)
}

func newTestAppFor(t *testing.T, h http.Handler) *testApp {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.Server.BaseURL = srv.URL
	client := api.NewClient(&api.ClientConfig{BaseURL: srv.URL, Timeout: 5 * time.Second})

	ta := &testApp{out: &bytes.Buffer{}, errOut: &bytes.Buffer{}}
	ta.App = &App{
		Config: cfg,
		Log:    zap.NewNop(),
		Client: client,
		In:     strings.NewReader(""),
		Out:    ta.out,
		Err:    ta.errOut,
		Width:  80,
	}
	return ta
}

func newTestApp(t *testing.T, opts devserver.Options) *testApp {
	t.Helper()
	if opts.ChunkSize == 0 {
		opts.ChunkSize = 11
	}
	return newTestAppFor(t, devserver.New(opts).Handler())
}

type askResponse struct {
	Success bool    `json:"success"`
	Data    AskData `json:"data"`
	Error   *string `json:"error"`
}

// askJSON runs "ask --json" and decodes the response.
func askJSON(t *testing.T, ta *testApp, question, conversationID string) askResponse {
	t.Helper()
	ta.reset("")
	err := ta.Ask(context.Background(), Args{Query: question, ConversationID: conversationID, JSON: true})
	require.NoError(t, err)

	var resp askResponse
	require.NoError(t, json.Unmarshal(ta.out.Bytes(), &resp), ta.out.String())
	return resp
}

func listJSON(t *testing.T, ta *testApp) []HistoryEntryData {
	t.Helper()
	ta.reset("")
	require.NoError(t, ta.History(context.Background(), Args{Subcommand: "list", JSON: true}))

	var resp struct {
		Success bool               `json:"success"`
		Data    []HistoryEntryData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(ta.out.Bytes(), &resp), ta.out.String())
	require.True(t, resp.Success)
	return resp.Data
}

// =============================================================================
// ASK
// =============================================================================

func TestAsk_StreamsPlainAnswer(t *testing.T) {
	ta := newTestApp(t, devserver.Options{Cosmos: true})

	err := ta.Ask(context.Background(), Args{Query: "What is Go?"})
	require.NoError(t, err)

	out := ta.out.String()
	assert.True(t, strings.HasPrefix(out, "You asked: **What is Go?**"), out)
	assert.Contains(t, out, "Sources")
	assert.Contains(t, out, "[1] Getting started")
	assert.Contains(t, out, "https://example.com/docs/getting-started")
	assert.Contains(t, out, "[2] Storage notes")
	assert.NotContains(t, out, "blob.core")
	assert.Contains(t, ta.errOut.String(), "conversation ")
}

func TestAsk_JSON(t *testing.T) {
	ta := newTestApp(t, devserver.Options{Cosmos: true})

	resp := askJSON(t, ta, "What is Go?", "")
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
	assert.Equal(t, "completed", resp.Data.Outcome)
	assert.NotEmpty(t, resp.Data.ConversationID)
	assert.Contains(t, resp.Data.Answer, "You asked: **What is Go?**")

	require.Len(t, resp.Data.Citations, 2)
	assert.Equal(t, 1, resp.Data.Citations[0].Index)
	assert.Equal(t, "https://example.com/docs/getting-started", resp.Data.Citations[0].URL)
	assert.Empty(t, resp.Data.Citations[1].URL)
	assert.Equal(t, "storage.md", resp.Data.Citations[1].FilePath)

	require.Len(t, resp.Data.Messages, 3)
	assert.Equal(t, model.RoleUser, resp.Data.Messages[0].Role)
	assert.Equal(t, model.RoleTool, resp.Data.Messages[1].Role)
	assert.Equal(t, model.RoleAssistant, resp.Data.Messages[2].Role)
}

func TestAsk_ContinuesConversation(t *testing.T) {
	ta := newTestApp(t, devserver.Options{Cosmos: true})

	first := askJSON(t, ta, "First question", "")
	id := first.Data.ConversationID
	require.NotEmpty(t, id)

	second := askJSON(t, ta, "Second question", id)
	assert.Equal(t, id, second.Data.ConversationID)
	assert.Contains(t, second.Data.Answer, "Second question")
	require.Len(t, second.Data.Messages, 6)
	assert.Equal(t, "First question", second.Data.Messages[0].Content)

	stored, err := ta.Client.HistoryRead(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, stored, 6)
}

func TestAsk_UnknownConversation(t *testing.T) {
	ta := newTestApp(t, devserver.Options{Cosmos: true})

	err := ta.Ask(context.Background(), Args{Query: "Hello", ConversationID: "missing"})
	require.Error(t, err)
	assert.True(t, chaterr.IsNotFound(err))
	assert.Equal(t, ExitNotFoundError, GetExitCode(err))
	assert.Empty(t, ta.out.String())
}

func TestAsk_WithoutHistory(t *testing.T) {
	ta := newTestApp(t, devserver.Options{Cosmos: false})

	err := ta.Ask(context.Background(), Args{Query: "What is Go?"})
	require.NoError(t, err)
	assert.Contains(t, ta.out.String(), "You asked: **What is Go?**")
	assert.NotContains(t, ta.errOut.String(), "conversation ")
	assert.NotContains(t, ta.errOut.String(), "[WARN]")
}

func TestAsk_PersistFailureIsANotice(t *testing.T) {
	ta := newTestApp(t, devserver.Options{Cosmos: true, FailMutations: true})

	err := ta.Ask(context.Background(), Args{Query: "What is Go?"})
	require.NoError(t, err)
	assert.Contains(t, ta.out.String(), "You asked")
	assert.Contains(t, ta.errOut.String(), chaterr.PersistFailedText)
}

func TestAsk_GenerationFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/history/ensure", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"CosmosDB is not configured"}`))
	})
	mux.HandleFunc("/conversation", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"boom"}`))
	})
	ta := newTestAppFor(t, mux)

	err := ta.Ask(context.Background(), Args{Query: "Hello"})
	require.Error(t, err)
	assert.Equal(t, ExitServerError, GetExitCode(err))
	assert.Contains(t, ta.errOut.String(), chaterr.GenerateStatusPrefix+"boom")

	// Already printed, so DisplayError stays silent.
	var buf bytes.Buffer
	DisplayError(&buf, "ask", err, false)
	assert.Empty(t, buf.String())

	ta.reset("")
	err = ta.Ask(context.Background(), Args{Query: "Hello", JSON: true})
	require.Error(t, err)
	var resp askResponse
	require.NoError(t, json.Unmarshal(ta.out.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "failed", resp.Data.Outcome)
	require.NotNil(t, resp.Error)
	assert.Equal(t, chaterr.GenerateStatusPrefix+"boom", *resp.Error)
}

// =============================================================================
// HISTORY
// =============================================================================

func TestHistory_ListAndShow(t *testing.T) {
	ta := newTestApp(t, devserver.Options{Cosmos: true})
	first := askJSON(t, ta, "Where are the docs", "")
	askJSON(t, ta, "How do I install it", "")

	entries := listJSON(t, ta)
	require.Len(t, entries, 2)
	titles := []string{entries[0].Title, entries[1].Title}
	assert.ElementsMatch(t, []string{"Where are the docs", "How do I install it"}, titles)

	ta.reset("")
	require.NoError(t, ta.History(context.Background(), Args{Subcommand: "list"}))
	out := ta.out.String()
	assert.Contains(t, out, "Recent")
	assert.Contains(t, out, first.Data.ConversationID)
	assert.Contains(t, out, "Where are the docs")

	ta.reset("")
	require.NoError(t, ta.History(context.Background(), Args{Subcommand: "show", Params: []string{first.Data.ConversationID}}))
	out = ta.out.String()
	assert.Contains(t, out, "You:")
	assert.Contains(t, out, "Assistant:")
	assert.Contains(t, out, "You asked: **Where are the docs**")
	assert.Contains(t, out, "[1] Getting started")
}

func TestHistory_ListPagesThroughEverything(t *testing.T) {
	ta := newTestApp(t, devserver.Options{Cosmos: true})
	ta.Config.History.PageSize = devserver.PageSize
	for i := 0; i < devserver.PageSize+3; i++ {
		askJSON(t, ta, "Question", "")
	}

	assert.Len(t, listJSON(t, ta), devserver.PageSize+3)
}

func TestHistory_Mutations(t *testing.T) {
	ta := newTestApp(t, devserver.Options{Cosmos: true})
	keep := askJSON(t, ta, "Keep this one", "").Data.ConversationID
	drop := askJSON(t, ta, "Drop this one", "").Data.ConversationID
	ctx := context.Background()

	ta.reset("")
	require.NoError(t, ta.History(ctx, Args{Subcommand: "rename", Params: []string{keep, "Renamed", "title"}}))
	assert.Contains(t, ta.out.String(), "Renamed to Renamed title")

	ta.reset("")
	err := ta.History(ctx, Args{Subcommand: "rename", Params: []string{keep, "Renamed", "title"}})
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	ta.reset("")
	require.NoError(t, ta.History(ctx, Args{Subcommand: "clear", Params: []string{keep}}))
	msgs, err := ta.Client.HistoryRead(ctx, keep)
	require.NoError(t, err)
	assert.Empty(t, msgs)

	ta.reset("")
	require.NoError(t, ta.History(ctx, Args{Subcommand: "delete", Params: []string{drop}, Yes: true}))

	entries := listJSON(t, ta)
	require.Len(t, entries, 1)
	assert.Equal(t, keep, entries[0].ID)
	assert.Equal(t, "Renamed title", entries[0].Title)

	ta.reset("")
	require.NoError(t, ta.History(ctx, Args{Subcommand: "clear-all", Yes: true, JSON: true}))
	assert.Contains(t, ta.out.String(), `"action": "clear-all"`)
	assert.Empty(t, listJSON(t, ta))
}

func TestHistory_DeleteConfirmation(t *testing.T) {
	ta := newTestApp(t, devserver.Options{Cosmos: true})
	id := askJSON(t, ta, "Maybe delete me", "").Data.ConversationID
	ctx := context.Background()

	// Not a terminal and no --yes.
	ta.reset("")
	err := ta.History(ctx, Args{Subcommand: "delete", Params: []string{id}})
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	ta.Interactive = true
	ta.reset("n\n")
	require.NoError(t, ta.History(ctx, Args{Subcommand: "delete", Params: []string{id}}))
	assert.Contains(t, ta.errOut.String(), deleteQuestion)
	assert.Contains(t, ta.errOut.String(), "Cancelled.")
	assert.Len(t, listJSON(t, ta), 1)

	ta.reset("y\n")
	require.NoError(t, ta.History(ctx, Args{Subcommand: "delete", Params: []string{id}}))
	assert.Empty(t, listJSON(t, ta))
}

func TestHistory_MutationFailure(t *testing.T) {
	ta := newTestApp(t, devserver.Options{Cosmos: true})
	id := askJSON(t, ta, "Hello", "").Data.ConversationID

	failing := newTestApp(t, devserver.Options{Cosmos: true, FailMutations: true})
	err := failing.History(context.Background(), Args{Subcommand: "clear-all", Yes: true})
	require.Error(t, err)
	assert.Equal(t, ExitServerError, GetExitCode(err))
	assert.Contains(t, failing.errOut.String(), "Error deleting all of chat history")
	assert.Contains(t, failing.errOut.String(), "simulated failure")

	// The healthy backend is untouched.
	assert.Len(t, listJSON(t, ta), 1)
	assert.Equal(t, id, listJSON(t, ta)[0].ID)
}

func TestHistory_Disabled(t *testing.T) {
	ta := newTestApp(t, devserver.Options{Cosmos: false})

	err := ta.History(context.Background(), Args{Subcommand: "list"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Chat history is not enabled")
	assert.Contains(t, err.Error(), string(model.CosmosDBNotConfigured))
}

func TestHistory_Export(t *testing.T) {
	ta := newTestApp(t, devserver.Options{Cosmos: true})
	id := askJSON(t, ta, "Where are the docs", "").Data.ConversationID
	ctx := context.Background()

	ta.reset("")
	require.NoError(t, ta.History(ctx, Args{Subcommand: "export", Params: []string{id}}))
	md := ta.out.String()
	assert.Contains(t, md, "# Where are the docs")
	assert.Contains(t, md, "### You")
	assert.Contains(t, md, "1. [Getting started](https://example.com/docs/getting-started)")
	assert.Contains(t, md, "2. Storage notes")

	dir := t.TempDir()
	ta.reset("")
	require.NoError(t, ta.History(ctx, Args{Subcommand: "export", Params: []string{id}, Format: "html", Output: dir, JSON: true}))
	var resp struct {
		Success bool              `json:"success"`
		Data    HistoryActionData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(ta.out.Bytes(), &resp), ta.out.String())
	assert.Equal(t, "export", resp.Data.Action)
	assert.Equal(t, dir, filepath.Dir(resp.Data.Path))
	assert.Equal(t, ".html", filepath.Ext(resp.Data.Path))
	page, err := os.ReadFile(resp.Data.Path)
	require.NoError(t, err)
	assert.Contains(t, string(page), "<title>Where are the docs</title>")

	file := filepath.Join(dir, "nested", "out.json")
	ta.reset("")
	require.NoError(t, ta.History(ctx, Args{Subcommand: "export", Params: []string{id}, Format: "json", Output: file}))
	assert.Contains(t, ta.out.String(), "Exported to "+file)
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	var conv model.Conversation
	require.NoError(t, json.Unmarshal(data, &conv))
	assert.Equal(t, id, conv.ID)
}

// =============================================================================
// SETTINGS / VERSION
// =============================================================================

func TestSettings(t *testing.T) {
	ta := newTestApp(t, devserver.Options{Cosmos: true})

	require.NoError(t, ta.Settings(context.Background(), Args{JSON: true}))
	var resp struct {
		Success bool         `json:"success"`
		Data    SettingsData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(ta.out.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Data.History.CosmosDB)
	assert.Equal(t, model.CosmosDBWorking, resp.Data.History.Status)
	require.NotNil(t, resp.Data.Settings)
	assert.Equal(t, "Contoso", resp.Data.Settings.UI.Title)
	assert.True(t, resp.Data.Settings.FeedbackEnabled)

	ta.reset("")
	require.NoError(t, ta.Settings(context.Background(), Args{}))
	out := ta.out.String()
	assert.Contains(t, out, "Contoso")
	assert.Contains(t, out, string(model.CosmosDBWorking))
	assert.Contains(t, out, "[OK]")
}

func TestVersion(t *testing.T) {
	ta := newTestApp(t, devserver.Options{})

	require.NoError(t, ta.Run(context.Background(), CmdVersion, Args{JSON: true}))
	var resp struct {
		Success bool        `json:"success"`
		Command string      `json:"command"`
		Data    VersionData `json:"data"`
	}
	require.NoError(t, json.Unmarshal(ta.out.Bytes(), &resp))
	assert.Equal(t, "version", resp.Command)
	assert.Equal(t, Version, resp.Data.Version)
	assert.NotEmpty(t, resp.Data.GoVersion)

	ta.reset("")
	require.NoError(t, ta.Run(context.Background(), CmdHelp, Args{}))
	assert.Contains(t, ta.out.String(), "mecoai history clear-all")
}

// =============================================================================
// CHAT
// =============================================================================

func TestChat_Session(t *testing.T) {
	ta := newTestApp(t, devserver.Options{Cosmos: true})
	ta.reset("Hello there\n/history\n/new\n/bogus\n\nSecond thought\n/quit\nnever asked\n")

	require.NoError(t, ta.Chat(context.Background(), Args{}))

	out := ta.out.String()
	assert.Contains(t, out, "Contoso")
	assert.Contains(t, out, "You asked: **Hello there**")
	assert.Contains(t, out, "Recent")
	assert.Contains(t, out, "Started a new conversation.")
	assert.Contains(t, out, "You asked: **Second thought**")
	assert.NotContains(t, out, "never asked")
	assert.Contains(t, ta.errOut.String(), "Unknown command /bogus")

	// /new made the second question its own conversation.
	assert.Len(t, listJSON(t, ta), 2)
}

func TestChat_OpenContinuesConversation(t *testing.T) {
	ta := newTestApp(t, devserver.Options{Cosmos: true})
	id := askJSON(t, ta, "Opening question", "").Data.ConversationID

	ta.reset("/open " + id + "\nFollow up\n")
	require.NoError(t, ta.Chat(context.Background(), Args{}))
	assert.Contains(t, ta.out.String(), "Continuing Opening question (3 messages)")
	assert.Contains(t, ta.out.String(), "You asked: **Follow up**")

	msgs, err := ta.Client.HistoryRead(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, msgs, 6)
	assert.Len(t, listJSON(t, ta), 1)
}

func TestChat_OpenUnknown(t *testing.T) {
	ta := newTestApp(t, devserver.Options{Cosmos: true})
	ta.reset("/open nope\n/open\nexit\n")

	require.NoError(t, ta.Chat(context.Background(), Args{}))
	assert.Contains(t, ta.errOut.String(), "[ERROR]")
	assert.Contains(t, ta.errOut.String(), "Usage: /open ID")
}

type scriptedReader struct {
	lines   []string
	history []string
	closed  bool
}

func (r *scriptedReader) Prompt(string) (string, error) {
	if len(r.lines) == 0 {
		return "", errEndOfScript
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

func (r *scriptedReader) AppendHistory(item string) { r.history = append(r.history, item) }

func (r *scriptedReader) Close() error {
	r.closed = true
	return nil
}

var errEndOfScript = &chaterr.Error{Kind: chaterr.KindUnknown, Message: "end of script"}

func TestChat_LineReaderHook(t *testing.T) {
	ta := newTestApp(t, devserver.Options{Cosmos: false})
	reader := &scriptedReader{lines: []string{"  Hi  ", "", "/help"}}
	ta.newLineReader = func() LineReader { return reader }

	err := ta.Chat(context.Background(), Args{})
	assert.ErrorIs(t, err, errEndOfScript)
	assert.True(t, reader.closed)
	assert.Equal(t, []string{"Hi", "/help"}, reader.history)
	assert.Contains(t, ta.out.String(), "You asked: **Hi**")
	assert.Contains(t, ta.out.String(), "Available Commands")
	assert.Contains(t, ta.out.String(), string(model.CosmosDBNotConfigured))
}
