package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"visionmate.app/multimodal-mate/internal/apperr"
	"visionmate.app/multimodal-mate/internal/logger"
)

// statusFor maps an error kind to an HTTP status: caller mistakes are 400,
// missing lookups 404 and everything else 500.
func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge
	}

	switch apperr.KindOf(err) {
	case apperr.ErrInvalidRequest,
		apperr.ErrUnsupportedFormat,
		apperr.ErrExtractionEmpty,
		apperr.ErrUnknownReference:
		return http.StatusBadRequest
	case apperr.ErrNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Error().Err(err).Msg("Failed to encode response")
	}
}

// writeError sends {"error": message} and logs err at a level matching the
// status.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	log := logger.FromContext(r.Context())
	ev := log.Warn()
	if status >= http.StatusInternalServerError {
		ev = log.Error()
	}
	ev.Err(err).Int("status", status).Msg(message)
	writeJSON(w, r, status, map[string]string{"error": message})
}
