// Package server exposes the assistant over HTTP: the chat endpoint, health
// and analytics, and Prometheus metrics.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yogeshdhome/Invoice-Assistant/internal/agent"
	"github.com/yogeshdhome/Invoice-Assistant/internal/agent/model"
	errx "github.com/yogeshdhome/Invoice-Assistant/internal/core/error"
	"github.com/yogeshdhome/Invoice-Assistant/internal/guardrails"
	logx "github.com/yogeshdhome/Invoice-Assistant/pkg/logger"
)

const maxRequestBody = 1 << 20

// poLabelled captures digit runs the user explicitly labels as a PO number
// ("PO 1234567890", "po# 123"). Only labelled numbers get the 10-digit format
// pre-check; bare digit runs pass through untouched so ACR numbers, dates and
// vendor numbers in Non-PO messages still reach the dialogue graph.
var poLabelled = regexp.MustCompile(`(?i)(?:^|[^\w-])po\b\D{0,12}(\d+)`)

// ChatRequest is one inbound user message.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// ChatResponse mirrors model.TurnResult on the wire.
type ChatResponse struct {
	ResponseMessage  string `json:"response_message"`
	SessionID        string `json:"session_id"`
	ServiceNowTicket string `json:"service_now_ticket,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server hosts the HTTP API in front of the assistant.
type Server struct {
	assistant *agent.Assistant
	analytics model.AnalyticsRepository
	httpSrv   *http.Server
}

func New(cfg model.ServerConfig, assistant *agent.Assistant, analytics model.AnalyticsRepository) *Server {
	s := &Server{
		assistant: assistant,
		analytics: analytics,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/chat", s.handleChat)
	mux.HandleFunc("/analytics", s.handleAnalytics)
	mux.Handle("/metrics", promhttp.Handler())

	s.httpSrv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// ListenAndServe blocks serving requests until Shutdown or a listener error.
func (s *Server) ListenAndServe() error {
	logx.Info().Str("addr", s.httpSrv.Addr).Msg("http server listening")
	return s.httpSrv.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the Invoice Agent API"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read request body"})
		return
	}
	var req ChatRequest
	if err := sonic.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	// A number the user calls a PO must be exactly 10 digits. This rejects
	// obvious typos before a round trip through the oracle.
	for _, m := range poLabelled.FindAllStringSubmatch(req.Message, -1) {
		if !guardrails.CheckPONumberFormat(m[1]) {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error: "PO number format invalid. Must be 10 digits.",
			})
			return
		}
	}

	result, err := s.assistant.RunTurn(r.Context(), model.QueryInput{
		SessionID: req.SessionID,
		Query:     req.Message,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		ResponseMessage:  result.ResponseMessage,
		SessionID:        result.SessionID,
		ServiceNowTicket: result.ServiceNowTicket,
	})
}

func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		sessionID := r.URL.Query().Get("session_id")
		records, err := s.analytics.FetchRecords(r.Context(), sessionID)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"records": records})

	case http.MethodPost:
		body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read request body"})
			return
		}
		var record model.ConversationRecord
		if err := sonic.Unmarshal(body, &record); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
		if record.SessionID == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "session_id is required"})
			return
		}
		if record.CreatedAt.IsZero() {
			record.CreatedAt = time.Now().UTC()
		}
		if err := s.analytics.SaveRecord(r.Context(), &record); err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})

	default:
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	}
}

func writeAppError(w http.ResponseWriter, err error) {
	var appErr *errx.AppError
	if errors.As(err, &appErr) {
		writeJSON(w, appErr.Status, errorResponse{Error: appErr.Message})
		return
	}
	logx.Error().Err(err).Msg("unhandled error")
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: errx.SystemErrorMessage})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	b, err := sonic.Marshal(payload)
	if err != nil {
		logx.Error().Err(err).Msg("failed to marshal response")
		return
	}
	if _, err := w.Write(b); err != nil {
		logx.Error().Err(err).Msg("failed to write response")
	}
}
