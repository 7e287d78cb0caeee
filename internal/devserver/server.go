// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/danniesim/mecoai-chat/internal/api"
	"github.com/danniesim/mecoai-chat/internal/model"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultAddr matches the client's default base URL.
	DefaultAddr = "127.0.0.1:50505"

	// DefaultChunkSize is the write size of generation streams. It is not
	// aligned to object boundaries.
	DefaultChunkSize = 23

	msgNotConfigured = "CosmosDB is not configured"
	msgWorking       = "CosmosDB is configured and working"
	msgSimulated     = "simulated failure"
)

// ============================================================================
// OPTIONS
// ============================================================================

// Options configures the dev backend.
type Options struct {
	// Cosmos enables the history routes. When false the ensure probe
	// reports "not configured" and every history route answers 404.
	Cosmos bool

	// FailMutations makes update, rename, delete, delete_all and clear
	// answer 500.
	FailMutations bool

	// ChunkSize is the stream write size (default DefaultChunkSize).
	ChunkSize int

	// ChunkDelay is the pause between stream writes.
	ChunkDelay time.Duration

	// Settings is served by /frontend_settings (default DefaultSettings()).
	Settings *model.FrontendSettings

	// Logger for request logs (default: no-op).
	Logger *zap.Logger

	// Now is the clock (default time.Now).
	Now func() time.Time
}

// DefaultSettings returns the frontend settings served when none are set.
func DefaultSettings() *model.FrontendSettings {
	return &model.FrontendSettings{
		FeedbackEnabled: true,
		UI: model.UISettings{
			Title:           "Contoso",
			ChatTitle:       "Start chatting",
			ChatDescription: "This chatbot is configured to answer your questions",
			ShowShareButton: true,
		},
	}
}

// ============================================================================
// SERVER
// ============================================================================

// Server is the in-memory backend.
type Server struct {
	opts   Options
	log    *zap.Logger
	mem    *memory
	router chi.Router

	mu     sync.Mutex
	server *http.Server
}

// New creates a Server. Zero fields of opts take their defaults.
func New(opts Options) *Server {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.Settings == nil {
		opts.Settings = DefaultSettings()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		opts: opts,
		log:  log.Named("devserver"),
		mem:  newMemory(opts.Now),
	}
	s.setupRoutes()
	return s
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ============================================================================
// ROUTES
// ============================================================================

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RecoveryMiddleware(s.log))
	r.Use(LoggingMiddleware(s.log))

	r.Post(api.PathConversation, s.handleConversation)
	r.Get(api.PathFrontendSettings, s.handleFrontendSettings)

	r.Route("/history", func(r chi.Router) {
		r.Get("/ensure", s.handleEnsure)

		r.Group(func(r chi.Router) {
			r.Use(s.requireCosmos)
			r.Post("/generate", s.handleHistoryGenerate)
			r.Get("/list", s.handleList)
			r.Post("/read", s.handleRead)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireCosmos, s.failMutations)
			r.Post("/update", s.handleUpdate)
			r.Post("/rename", s.handleRename)
			r.Delete("/delete", s.handleDelete)
			r.Delete("/delete_all", s.handleDeleteAll)
			r.Post("/clear", s.handleClear)
		})
	})

	s.router = r
}

func (s *Server) requireCosmos(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.opts.Cosmos {
			writeError(w, http.StatusNotFound, msgNotConfigured)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) failMutations(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.FailMutations {
			writeError(w, http.StatusInternalServerError, msgSimulated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ============================================================================
// SETTINGS AND ENSURE
// ============================================================================

func (s *Server) handleFrontendSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.opts.Settings)
}

func (s *Server) handleEnsure(w http.ResponseWriter, r *http.Request) {
	if !s.opts.Cosmos {
		writeError(w, http.StatusNotFound, msgNotConfigured)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msgWorking})
}

// ============================================================================
// HISTORY
// ============================================================================

// listEntry is the list form of a conversation; messages are omitted so
// the client hydrates through read.
type listEntry struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// storedMessage is the read form of a message.
type storedMessage struct {
	ID        string         `json:"id"`
	Role      model.Role     `json:"role"`
	Content   string         `json:"content"`
	CreatedAt string         `json:"createdAt"`
	Feedback  model.Feedback `json:"feedback,omitempty"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return
		}
		offset = n
	}

	page := s.mem.page(offset)
	out := make([]listEntry, 0, len(page))
	for _, c := range page {
		out = append(out, listEntry{
			ID:        c.id,
			Title:     c.title,
			CreatedAt: model.FormatDate(c.createdAt),
			UpdatedAt: model.FormatDate(c.updatedAt),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRead(w http.ResponseWriter, r *http.Request) {
	var req api.ConversationIDRequest
	if !decode(w, r, &req) || !requireID(w, req.ConversationID) {
		return
	}
	c, err := s.mem.get(req.ConversationID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	msgs := make([]storedMessage, 0, len(c.messages))
	for _, m := range c.messages {
		msgs = append(msgs, storedMessage{ID: m.ID, Role: m.Role, Content: m.Content, CreatedAt: m.Date, Feedback: m.Feedback})
	}
	writeJSON(w, http.StatusOK, map[string]any{"conversation_id": c.id, "messages": msgs})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req api.UpdateRequest
	if !decode(w, r, &req) || !requireID(w, req.ConversationID) {
		return
	}
	if err := s.mem.replace(req.ConversationID, model.WithoutErrors(req.Messages)); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	var req api.RenameRequest
	if !decode(w, r, &req) || !requireID(w, req.ConversationID) {
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if err := s.mem.rename(req.ConversationID, req.Title); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": req.ConversationID, "title": req.Title})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req api.ConversationIDRequest
	if !decode(w, r, &req) || !requireID(w, req.ConversationID) {
		return
	}
	if err := s.mem.delete(req.ConversationID); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message":         "Successfully deleted conversation and messages",
		"conversation_id": req.ConversationID,
	})
}

func (s *Server) handleDeleteAll(w http.ResponseWriter, r *http.Request) {
	n := s.mem.deleteAll()
	s.log.Info("deleted all conversations", zap.Int("count", n))
	writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully deleted all conversations"})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	var req api.ConversationIDRequest
	if !decode(w, r, &req) || !requireID(w, req.ConversationID) {
		return
	}
	if err := s.mem.clear(req.ConversationID); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message":         "Successfully cleared messages in conversation",
		"conversation_id": req.ConversationID,
	})
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// Start listens on addr and serves until Shutdown.
func (s *Server) Start(addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	hs := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.mu.Lock()
	s.server = hs
	s.mu.Unlock()

	s.log.Info("server start", zap.String("addr", addr), zap.Bool("cosmos", s.opts.Cosmos), zap.Bool("fail", s.opts.FailMutations))
	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops a started server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	hs := s.server
	s.mu.Unlock()
	if hs == nil {
		return nil
	}
	s.log.Info("server shutdown")
	return hs.Shutdown(ctx)
}

// ============================================================================
// HELPERS
// ============================================================================

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the backend's error body, {"error": message}.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, errNotFound) {
		writeError(w, http.StatusNotFound, "Conversation not found")
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

// decode reads a JSON body into v, answering 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func requireID(w http.ResponseWriter, id string) bool {
	if id == "" {
		writeError(w, http.StatusBadRequest, "conversation_id is required")
		return false
	}
	return true
}
