package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/claritylabs/claritycheck/internal/backend"
	"github.com/claritylabs/claritycheck/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	body := map[string]any{"message": message}
	if err != nil {
		body["error"] = err.Error()
	}
	writeJSON(w, status, body)
}

// handleError translates domain errors into user-facing responses.
// Backend failures never leak raw provider payloads to clients.
func (s *Server) handleError(w http.ResponseWriter, fallback string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found", err)
	case errors.Is(err, backend.ErrAuth):
		s.logger.Error("AI backend rejected credentials", "error", err)
		writeError(w, http.StatusInternalServerError,
			"The analysis service is misconfigured. Please contact support.", err)
	case errors.Is(err, backend.ErrRateLimit):
		writeError(w, http.StatusTooManyRequests,
			"The analysis service is busy. Please try again in a moment.", err)
	case errors.Is(err, backend.ErrContentPolicy):
		writeError(w, http.StatusUnprocessableEntity,
			"The analysis service declined this content. Remove any sensitive material and try again.", err)
	case errors.Is(err, backend.ErrEmptyResponse), errors.Is(err, backend.ErrMalformedResponse):
		s.logger.Error("AI backend returned unusable output", "error", err)
		writeError(w, http.StatusBadGateway,
			"The analysis service returned an unusable response. Please try again.", err)
	default:
		s.logger.Error(fallback, "error", err)
		writeError(w, http.StatusInternalServerError, fallback, err)
	}
}
