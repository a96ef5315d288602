package api

import (
	"encoding/json"
	"net/http"

	"github.com/hifzlab/scheduler/internal/apperr"
	"github.com/hifzlab/scheduler/internal/logger"
)

// errorBody is the §6/§7 JSON error shape: code, message, optional
// protocol-violation details, and the request-correlation id.
type errorBody struct {
	Error struct {
		Code          string         `json:"code"`
		Message       string         `json:"message"`
		Details       map[string]any `json:"details,omitempty"`
		CorrelationID string         `json:"correlation_id"`
	} `json:"error"`
}

// handleError centralizes translation of a service-layer error into an
// HTTP response. Every error body carries the request's correlation id.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	appErr := apperr.As(err)

	switch {
	case appErr.Status >= 500:
		log.Error("server error: %v", appErr)
	case appErr.Status >= 400:
		log.Warn("client error: %v", appErr)
	default:
		log.Debug("error: %v", appErr)
	}

	body := errorBody{}
	body.Error.Code = appErr.Code
	body.Error.Message = appErr.Message
	body.Error.Details = appErr.Details
	body.Error.CorrelationID = requestIDFromContext(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("failed to encode error body: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	log := logger.FromContext(r.Context())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("failed to encode response: %v", err)
	}
}
