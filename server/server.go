package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/samber/lo"

	"github.com/lifeos/echo/core"
	"github.com/lifeos/echo/logging"
	"github.com/lifeos/echo/memory"
	"github.com/lifeos/echo/router"
	"github.com/lifeos/echo/runner"
)

// Options holds configuration overrides passed to New().
type Options struct {
	// Logger receives request logs and error detail. Defaults to a no-op logger.
	Logger logging.Logger
}

// Server translates HTTP requests into runner and store calls.
type Server struct {
	runner    *runner.Runner
	store     *memory.Store
	directory *router.Directory
	logger    logging.Logger
}

// New builds the HTTP handler for the chat service.
func New(run *runner.Runner, store *memory.Store, directory *router.Directory, optFns ...func(o *Options)) http.Handler {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Server{
		runner:    run,
		store:     store,
		directory: directory,
		logger:    opts.Logger,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/messages", s.handleChat)
	mux.HandleFunc("POST /v1/agents/{agent}/messages", s.handleAgentChat)
	mux.HandleFunc("GET /v1/agents", s.handleListAgents)
	mux.HandleFunc("GET /v1/agents/{agent}/history", s.handleGetHistory)
	mux.HandleFunc("DELETE /v1/agents/{agent}/history", s.handleClearHistory)
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	return chainMiddlewares(mux,
		withCORS,
		s.withLogging,
		withRequestID,
	)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type chatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

type chatResponse struct {
	Text   string `json:"text"`
	Agent  string `json:"agent"`
	Routed bool   `json:"routed"`
}

type agentChatResponse struct {
	Text  string `json:"text"`
	Agent string `json:"agent"`
}

type turnResponse struct {
	ID        string         `json:"id"`
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	reply, err := s.runner.Chat(r.Context(), req.UserID, req.Message)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Text:   reply.Text,
		Agent:  reply.Agent,
		Routed: reply.Routed,
	})
}

func (s *Server) handleAgentChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	reply, err := s.runner.ChatWith(r.Context(), req.UserID, r.PathValue("agent"), req.Message)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, agentChatResponse{
		Text:  reply.Text,
		Agent: reply.Agent,
	})
}

func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.directory.Agents())
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	limit := s.store.HistoryLimit()
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(w, "limit must be an integer")
			return
		}
		limit = parsed
	}

	turns, err := s.store.Recent(r.Context(), r.URL.Query().Get("user_id"), r.PathValue("agent"), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTurnsResponse(turns))
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	err := s.store.Clear(r.Context(), r.URL.Query().Get("user_id"), r.PathValue("agent"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ─────────────────────────────────────────────
// DTO helpers
// ─────────────────────────────────────────────

func toTurnResponse(t core.Turn) turnResponse {
	return turnResponse{
		ID:        t.ID,
		Role:      string(t.Role),
		Content:   t.Content,
		CreatedAt: t.CreatedAt,
		Metadata:  t.Metadata,
	}
}

func toTurnsResponse(turns []core.Turn) []turnResponse {
	return lo.Map(turns, func(t core.Turn, _ int) turnResponse {
		return toTurnResponse(t)
	})
}

// ─────────────────────────────────────────────
// HTTP helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// writeError maps pipeline errors onto status codes: invalid input becomes a
// 400 naming the offending field, everything else becomes an opaque 500 with
// the detail logged server-side.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: ve.Message, Field: ve.Field})
		return
	}

	s.logger.Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}
