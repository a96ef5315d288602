package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/hifzlab/scheduler/internal/apperr"
	"github.com/hifzlab/scheduler/internal/models"
	"github.com/hifzlab/scheduler/internal/session"
)

type sessionStartRequest struct {
	ClientSessionID *string          `json:"client_session_id"`
	Mode            models.QueueMode `json:"mode"`
	WarmupPassed    *bool            `json:"warmup_passed"`
}

// handleSessionStart opens (or, given a repeated client_session_id,
// re-returns) a SessionRun for the caller.
func (s *Server) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req sessionStartRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			handleError(w, r, apperr.NewValidationError("body", "malformed JSON"))
			return
		}
	}

	mode := req.Mode
	if mode == "" {
		mode = models.ModeNormal
	}
	warmupPassed := true
	if req.WarmupPassed != nil {
		warmupPassed = *req.WarmupPassed
	}

	run, err := s.Session.Start(r.Context(), user.ID, req.ClientSessionID, mode, warmupPassed, time.Now().UTC())
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, map[string]any{
		"session_id":    run.ID,
		"mode":          run.Mode,
		"warmup_passed": run.WarmupPassed,
	})
}

type stepCompleteRequest struct {
	SessionID       string                   `json:"session_id"`
	AyahID          int                      `json:"ayah_id"`
	StepType        models.StepType          `json:"step_type"`
	AttemptNumber   int                      `json:"attempt_number"`
	ScaffoldingUsed models.ScaffoldingLevel  `json:"scaffolding_used"`
	LinkedAyahID    *int                     `json:"linked_ayah_id"`
	Success         bool                     `json:"success"`
	ErrorsCount     int                      `json:"errors_count"`
	DurationSeconds int                      `json:"duration_seconds"`
	ErrorTags       []string                 `json:"error_tags"`
}

// handleSessionStepComplete validates and records one submitted protocol
// step (§4.7), returning the client's resync point either way.
func (s *Server) handleSessionStepComplete(w http.ResponseWriter, r *http.Request) {
	var req stepCompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, r, apperr.NewValidationError("body", "malformed JSON"))
		return
	}
	if req.SessionID == "" || req.StepType == "" {
		handleError(w, r, apperr.NewValidationError("session_id/step_type", "required"))
		return
	}
	if req.StepType == models.StepLink && req.LinkedAyahID == nil {
		handleError(w, r, apperr.NewValidationError("linked_ayah_id", "required for LINK steps"))
		return
	}

	result, err := s.Session.StepComplete(r.Context(), session.StepSubmission{
		SessionID:       req.SessionID,
		AyahID:          req.AyahID,
		StepType:        req.StepType,
		AttemptNumber:   req.AttemptNumber,
		ScaffoldingUsed: req.ScaffoldingUsed,
		LinkedAyahID:    req.LinkedAyahID,
		Success:         req.Success,
		ErrorsCount:     req.ErrorsCount,
		DurationSeconds: req.DurationSeconds,
		ErrorTags:       req.ErrorTags,
		Now:             time.Now().UTC(),
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"recorded":      result.Recorded,
		"next_step":     result.NextStep,
		"next_attempt":  result.NextAttempt,
		"step_status":   result.StepStatus,
		"protocol":      result.Protocol,
		"progress":      result.Progress,
	})
}

type sessionCompleteRequest struct {
	SessionID string `json:"session_id"`
}

// handleSessionComplete runs the Daily Session Rollup (C9, §4.8) for a
// just-finished sitting.
func (s *Server) handleSessionComplete(w http.ResponseWriter, r *http.Request) {
	var req sessionCompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, r, apperr.NewValidationError("body", "malformed JSON"))
		return
	}
	if req.SessionID == "" {
		handleError(w, r, apperr.NewValidationError("session_id", "required"))
		return
	}

	run, err := s.Session.Complete(r.Context(), req.SessionID, time.Now().UTC())
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, run)
}
