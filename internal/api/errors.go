// Package api provides HTTP handlers for the featrank API, including
// standardized error handling.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/onnwee/featrank/internal/middleware"
)

// Common error codes used throughout the API.
const (
	// ErrCodeValidation indicates input validation failure.
	ErrCodeValidation = "validation_error"

	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound = "not_found"

	// ErrCodeBadRequest indicates a malformed request.
	ErrCodeBadRequest = "bad_request"

	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal = "internal_error"

	// ErrCodeBattleNotFound indicates the battle was not found.
	ErrCodeBattleNotFound = "battle_not_found"

	// ErrCodeInvalidCriterion indicates an unknown comparison criterion.
	ErrCodeInvalidCriterion = "invalid_criterion"

	// ErrCodeInvalidVote indicates a vote referencing features outside the battle.
	ErrCodeInvalidVote = "invalid_vote"

	// ErrCodeInsufficientFeatures indicates fewer than two features were supplied.
	ErrCodeInsufficientFeatures = "insufficient_features"

	// ErrCodeResultsHidden indicates the battle's results are not public.
	ErrCodeResultsHidden = "results_hidden"
)

// ErrorResponse represents the standard error response format.
// All API errors return JSON in this structure: {"error": {"code": "...", "message": "..."}}
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error code and human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError writes a standardized JSON error response with the given status.
// The error code is recorded in the context so the logging middleware can
// attach it to 4xx/5xx request logs.
//
// Example:
//
//	ctx := middleware.SetErrorCode(r.Context(), api.ErrCodeBattleNotFound)
//	api.WriteError(w, ctx, http.StatusNotFound, api.ErrCodeBattleNotFound, "Battle not found")
func WriteError(w http.ResponseWriter, ctx context.Context, status int, code, message string) {
	middleware.UpdateResponseContext(w, ctx)

	errResp := ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	}

	data, err := json.Marshal(errResp)
	if err != nil {
		// Fallback to plain text if JSON marshaling fails
		slog.ErrorContext(ctx, "failed to marshal error response", "error", err)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("Internal server error"))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.ErrorContext(ctx, "failed to write error response", "error", err)
	}
}

// writeJSON writes a JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
