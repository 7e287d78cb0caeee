// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/danniesim/mecoai-chat/internal/api"
	"github.com/danniesim/mecoai-chat/internal/model"
)

const (
	devModel       = "dev-echo"
	titleWords     = 8
	keepaliveEvery = 5
)

// ============================================================================
// GENERATION HANDLERS
// ============================================================================

// handleConversation answers without persisting. Citations arrive as the
// context of the first assistant fragment.
func (s *Server) handleConversation(w http.ResponseWriter, r *http.Request) {
	var req api.ConversationRequest
	if !decode(w, r, &req) {
		return
	}
	question, ok := lastQuestion(req.Messages)
	if !ok {
		writeError(w, http.StatusBadRequest, "no user message")
		return
	}
	s.stream(w, r, s.payload(question.Content, nil, true))
}

// handleHistoryGenerate answers and stores the question. A request
// without conversation_id creates the conversation and reports its id in
// history_metadata.
func (s *Server) handleHistoryGenerate(w http.ResponseWriter, r *http.Request) {
	var req api.ConversationRequest
	if !decode(w, r, &req) {
		return
	}
	question, ok := lastQuestion(req.Messages)
	if !ok {
		writeError(w, http.StatusBadRequest, "no user message")
		return
	}

	var md *model.HistoryMetadata
	id := req.ConversationID
	if id == "" {
		c := s.mem.create(title(question.Content))
		id = c.id
		md = &model.HistoryMetadata{ConversationID: c.id, Title: c.title, Date: model.FormatDate(c.createdAt)}
		s.log.Debug("conversation created", zap.String("conversation_id", id))
	} else if _, err := s.mem.get(id); err != nil {
		writeStoreError(w, err)
		return
	}
	if err := s.mem.appendMessages(id, question); err != nil {
		writeStoreError(w, err)
		return
	}

	s.stream(w, r, s.payload(question.Content, md, false))
}

// ============================================================================
// STREAM
// ============================================================================

// stream writes payload in fixed-size chunks that ignore line boundaries.
func (s *Server) stream(w http.ResponseWriter, r *http.Request, payload []byte) {
	w.Header().Set("Content-Type", "application/json-lines")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)

	var timer *time.Timer
	if s.opts.ChunkDelay > 0 {
		timer = time.NewTimer(s.opts.ChunkDelay)
		defer timer.Stop()
	}

	for i, chunk := range chunks(payload, s.opts.ChunkSize) {
		if _, err := w.Write(chunk); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
		if timer == nil {
			continue
		}
		if i > 0 {
			timer.Reset(s.opts.ChunkDelay)
		}
		select {
		case <-r.Context().Done():
			s.log.Debug("client went away", zap.Int("chunks_sent", i+1))
			return
		case <-timer.C:
		}
	}
}

// chunks splits b into pieces of at most size bytes.
func chunks(b []byte, size int) [][]byte {
	if size <= 0 {
		size = DefaultChunkSize
	}
	out := make([][]byte, 0, len(b)/size+1)
	for len(b) > size {
		out = append(out, b[:size])
		b = b[size:]
	}
	if len(b) > 0 {
		out = append(out, b)
	}
	return out
}

// payload renders the whole NDJSON body of one answer: a citations
// object, keepalives and blank lines, then one object per word.
func (s *Server) payload(question string, md *model.HistoryMetadata, asContext bool) []byte {
	id := uuid.NewString()
	created := s.opts.Now().Unix()
	frame := func(msg model.ChatMessage) model.ChatResponse {
		return model.ChatResponse{
			ID:      id,
			Model:   devModel,
			Created: created,
			Object:  "chat.completion.chunk",
			Choices: []model.Choice{{Messages: []model.ChatMessage{msg}}},
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)

	tool := citations(question)
	first := frame(model.ChatMessage{Role: model.RoleTool, Content: tool})
	if asContext {
		first = frame(model.ChatMessage{Role: model.RoleAssistant, Context: tool})
	}
	first.HistoryMetadata = md
	_ = enc.Encode(first)
	buf.WriteString("{}\n\n")

	words := strings.SplitAfter(answer(question), " ")
	for i, word := range words {
		f := frame(model.ChatMessage{Role: model.RoleAssistant, Content: word})
		if i == len(words)-1 {
			f.HistoryMetadata = md
		}
		_ = enc.Encode(f)
		if i%keepaliveEvery == keepaliveEvery-1 {
			buf.WriteString("{}\n")
		}
	}
	return buf.Bytes()
}

// ============================================================================
// CANNED CONTENT
// ============================================================================

func answer(question string) string {
	return "You asked: **" + strings.TrimSpace(question) + "**\n\n" +
		"This is the development backend. Every question gets the same answer, " +
		"streamed one word at a time, with two sources attached.\n\n" +
		"- The first source links to a public page\n" +
		"- The second lives in blob storage and shows its file path instead\n"
}

func citations(question string) string {
	str := func(s string) *string { return &s }
	payload := model.ToolMessageContent{
		Intent: `["` + strings.TrimSpace(question) + `"]`,
		Citations: []model.Citation{
			{
				ID:       "doc-1",
				Title:    str("Getting started"),
				URL:      str("https://example.com/docs/getting-started"),
				FilePath: str("getting-started.md"),
				ChunkID:  str("0"),
				Content:  "Install the client, point it at the backend and ask a question.",
			},
			{
				ID:        "doc-2",
				PartIndex: 1,
				Title:     str("Storage notes"),
				URL:       str("https://contoso.blob.core.windows.net/docs/storage.md"),
				FilePath:  str("storage.md"),
				ChunkID:   str("3"),
				Content:   "Conversations are kept in memory and vanish when the server stops.",
			},
		},
	}
	raw, _ := json.Marshal(payload)
	return string(raw)
}

// lastQuestion returns the last user message of a request.
func lastQuestion(msgs []model.ChatMessage) (model.ChatMessage, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == model.RoleUser {
			return msgs[i], true
		}
	}
	return model.ChatMessage{}, false
}

// title names a new conversation after the first words of its question.
func title(question string) string {
	words := strings.Fields(question)
	if len(words) > titleWords {
		words = words[:titleWords]
	}
	if len(words) == 0 {
		return "New chat"
	}
	return strings.Join(words, " ")
}
