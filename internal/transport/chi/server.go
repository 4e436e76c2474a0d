// Package chi exposes the advisor over HTTP: a chat endpoint plus the
// operational health and metrics routes.
package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kjhmoon/ielts-chat-bot/internal/health"
)

// maxMessageRunes bounds a single user utterance.
const maxMessageRunes = 2000

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes returned to clients.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeInternalError    = "internal_error"
)

// ChatRequest is the body of POST /chat. SessionID may be empty; the
// engine then opens a new session and returns its id.
type ChatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

// ChatResponse is the body of a successful chat turn.
type ChatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

// HealthResponse mirrors health.Report on the wire.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// advisor is the consumer interface for the dialogue engine (ISP).
type advisor interface {
	Respond(ctx context.Context, sessionID, message string) (string, string)
}

// healthChecker is the consumer interface for the health service (ISP).
type healthChecker interface {
	Check(ctx context.Context) health.Report
}

// Server holds the HTTP handlers.
type Server struct {
	chat   advisor
	health healthChecker
	logger *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(chat advisor, health healthChecker, logger *zap.Logger) *Server {
	return &Server{chat: chat, health: health, logger: logger}
}

// Register mounts the advisor routes onto r.
func (s *Server) Register(r chi.Router) {
	r.Post("/chat", s.ChatTurn)
	r.Get("/healthz", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// ChatTurn handles POST /chat. A turn always produces a reply; engine-side
// failures surface as in-band text, so the only error statuses here are
// request validation failures.
func (s *Server) ChatTurn(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "message is required")
		return
	}
	if utf8.RuneCountInString(message) > maxMessageRunes {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "message is too long")
		return
	}

	sessionID, reply := s.chat.Respond(r.Context(), strings.TrimSpace(req.SessionID), message)

	writeJSON(w, http.StatusOK, ChatResponse{
		SessionID: sessionID,
		Reply:     reply,
	})
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != health.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}
