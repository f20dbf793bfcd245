// Package server exposes the reasoning service over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/automenta/mcr-sub003/internal/llm"
	"github.com/automenta/mcr-sub003/internal/mcr"
	"github.com/automenta/mcr-sub003/internal/reason"
)

// Server is the HTTP front end over the reasoning service.
type Server struct {
	svc *mcr.Service
	log *zap.Logger
}

// New wires a server.
func New(svc *mcr.Service, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{svc: svc, log: log}
}

// Handler returns the routed HTTP handler, trace middleware included.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("GET /sessions", s.handleListSessions)
	mux.HandleFunc("GET /sessions/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("POST /sessions/{id}/assert", s.handleAssert)
	mux.HandleFunc("POST /sessions/{id}/query", s.handleQuery)
	mux.HandleFunc("PUT /sessions/{id}/kb", s.handleReplaceKB)
	mux.HandleFunc("POST /config/llm", s.handleConfigureLLM)
	return s.withTrace(mux)
}

// withTrace tags every request with a trace id, taken from the caller's
// X-Trace-ID header when present, and echoes it on the response.
func (s *Server) withTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		trace := r.Header.Get("X-Trace-ID")
		if trace == "" {
			trace = uuid.NewString()
		}
		w.Header().Set("X-Trace-ID", trace)
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request",
			zap.String("trace", trace),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)))
	})
}

type createSessionRequest struct {
	SeedClauses string `json:"seedClauses"`
}

type sessionResponse struct {
	SessionID   string    `json:"sessionId"`
	CreatedAt   time.Time `json:"createdAt"`
	ClauseCount int       `json:"clauseCount"`
}

type kbResponse struct {
	SessionID     string `json:"sessionId"`
	KnowledgeBase string `json:"knowledgeBase"`
}

type assertRequest struct {
	Text string `json:"text"`
}

type queryRequest struct {
	Question string `json:"question"`
	Hybrid   bool   `json:"hybrid"`
}

type replaceKBRequest struct {
	KnowledgeBase string `json:"knowledgeBase"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type configureLLMRequest struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	APIKey   string `json:"apiKey"`
	BaseURL  string `json:"baseUrl"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
	}
	id, err := s.svc.CreateSession(req.SeedClauses)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"sessionId": id})
}

func (s *Server) handleListSessions(w http.ResponseWriter, _ *http.Request) {
	sessions := s.svc.Sessions()
	out := make([]sessionResponse, len(sessions))
	for i, sess := range sessions {
		out[i] = sessionResponse{
			SessionID:   sess.ID,
			CreatedAt:   sess.CreatedAt,
			ClauseCount: len(sess.Clauses),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	kb, err := s.svc.KnowledgeBase(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, kbResponse{SessionID: id, KnowledgeBase: kb})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteSession(r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAssert(w http.ResponseWriter, r *http.Request) {
	var req assertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "text is required"})
		return
	}
	res, err := s.svc.Assert(r.Context(), r.PathValue("id"), req.Text)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Question == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "question is required"})
		return
	}
	res, err := s.svc.Query(r.Context(), r.PathValue("id"), req.Question, mcr.QueryOptions{Hybrid: req.Hybrid})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleReplaceKB(w http.ResponseWriter, r *http.Request) {
	var req replaceKBRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := s.svc.ReplaceKB(r.PathValue("id"), req.KnowledgeBase); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleConfigureLLM rebuilds the language model gateway from the request
// and swaps it into the service. The replaced provider is closed. Existing
// sessions keep their knowledge bases; only translation changes provider.
func (s *Server) handleConfigureLLM(w http.ResponseWriter, r *http.Request) {
	var req configureLLMRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Provider == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "provider is required"})
		return
	}
	client, err := llm.New(r.Context(), llm.Options{
		Provider: req.Provider,
		APIKey:   req.APIKey,
		Model:    req.Model,
		BaseURL:  req.BaseURL,
	})
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	prev := s.svc.SetLLM(client)
	if closer, ok := prev.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
	s.log.Info("llm provider reconfigured", zap.String("provider", client.Name()))
	writeJSON(w, http.StatusOK, map[string]string{"provider": client.Name()})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, mcr.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, reason.ErrConsult):
		status = http.StatusBadRequest
	case errors.Is(err, reason.ErrTimeout):
		status = http.StatusGatewayTimeout
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
