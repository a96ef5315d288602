package api

import (
	"encoding/json"
	"net/http"

	"github.com/hifzlab/scheduler/internal/apperr"
)

// handleFluencyGateStart opens a new fluency-gate test page for the caller.
func (s *Server) handleFluencyGateStart(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	test, ayahs, err := s.Gate.Start(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, map[string]any{
		"test_id": test.ID,
		"page":    test.TestPage,
		"ayahs":   ayahs,
	})
}

type fluencyGateSubmitRequest struct {
	TestID          string `json:"test_id"`
	DurationSeconds int    `json:"duration_seconds"`
	ErrorCount      int    `json:"error_count"`
}

// handleFluencyGateSubmit scores a completed test and flips the user's
// fluency-gate status.
func (s *Server) handleFluencyGateSubmit(w http.ResponseWriter, r *http.Request) {
	var req fluencyGateSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, r, apperr.NewValidationError("body", "malformed JSON"))
		return
	}
	if req.TestID == "" {
		handleError(w, r, apperr.NewValidationError("test_id", "required"))
		return
	}

	result, err := s.Gate.Submit(r.Context(), req.TestID, req.DurationSeconds, req.ErrorCount)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"time_score":     result.TimeScore,
		"accuracy_score": result.AccuracyScore,
		"fluency_score":  result.FluencyScore,
		"passed":         result.Passed,
	})
}

// handleFluencyGateStatus reports the caller's current gate state plus
// their most recent test, if any.
func (s *Server) handleFluencyGateStatus(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	latest, err := s.FluencyTests.LatestForUser(r.Context(), user.ID)
	if err != nil {
		handleError(w, r, apperr.NewInternalError(err))
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"fluency_gate_passed": user.FluencyGatePassed,
		"requires_pre_hifz":   user.RequiresPreHifz,
		"latest_test":         latest,
	})
}
