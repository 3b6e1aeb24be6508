package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/skillpath/interview-engine/internal/interview"
)

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// respondCoreError maps a core error to an HTTP status and envelope.
// Untyped errors are logged and hidden behind a generic 500.
func respondCoreError(w http.ResponseWriter, err error, op string) {
	var coreErr *interview.Error
	if errors.As(err, &coreErr) {
		status := http.StatusInternalServerError
		switch coreErr.Kind {
		case interview.KindNotFound, interview.KindFeedbackOrphan:
			status = http.StatusNotFound
		case interview.KindInvalidTransition:
			status = http.StatusConflict
		case interview.KindUnauthorized:
			status = http.StatusForbidden
		case interview.KindValidation:
			status = http.StatusBadRequest
		}
		respondError(w, status, string(coreErr.Kind), coreErr.Message)
		return
	}

	slog.Error("operation failed", "op", op, "error", err)
	respondError(w, http.StatusInternalServerError, "internal_error", "operation failed")
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "not_ready", "service not ready")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
