package server

import (
	"encoding/json"
	"net/http"

	"github.com/letrabox/mockup/internal/generation"
	"github.com/letrabox/mockup/internal/logger"
)

// RespondJSON writes payload as JSON with status.
func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Warn("failed to encode response: %v", err)
	}
}

// RespondError writes {"error": message} with status.
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]string{"error": message})
}

// GenerationErrorResponse is the body returned when a generation attempt
// fails.
type GenerationErrorResponse struct {
	Error     string          `json:"error"`
	Kind      generation.Kind `json:"kind"`
	Retryable bool            `json:"retryable"`
}

// RespondGenerationError writes the classified failure with a status that
// matches its kind.
func RespondGenerationError(w http.ResponseWriter, message string, err error) {
	kind := generation.KindOf(err)
	if kind == generation.KindRateLimited {
		w.Header().Set("Retry-After", "30")
	}
	RespondJSON(w, StatusForKind(kind), GenerationErrorResponse{
		Error:     message,
		Kind:      kind,
		Retryable: generation.IsRetryable(err),
	})
}

// StatusForKind maps a generation failure onto an HTTP status.
func StatusForKind(kind generation.Kind) int {
	switch kind {
	case generation.KindBadRequest:
		return http.StatusBadRequest
	case generation.KindPermission:
		return http.StatusForbidden
	case generation.KindRateLimited:
		return http.StatusTooManyRequests
	case generation.KindSafety, generation.KindTextOnly:
		return http.StatusUnprocessableEntity
	case generation.KindCredential:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
