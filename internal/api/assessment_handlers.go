package api

import (
	"encoding/json"
	"net/http"

	"github.com/hifzlab/scheduler/internal/apperr"
	"github.com/hifzlab/scheduler/internal/assessment"
	"github.com/hifzlab/scheduler/internal/logger"
	"github.com/hifzlab/scheduler/internal/models"
)

type assessmentRequest struct {
	TimeBudgetMinutes int                     `json:"time_budget_minutes"`
	FluencyScore      float64                 `json:"fluency_score"`
	TajwidConfidence  models.TajwidConfidence `json:"tajwid_confidence"`
	Goal              string                  `json:"goal"`
	HasTeacher        bool                    `json:"has_teacher"`
	PriorJuzBand      models.JuzBand          `json:"prior_juz_band"`
}

// handleAssessmentSubmit runs the onboarding planner (C6) over self-report
// inputs and persists the derived parameters onto the caller's User row.
func (s *Server) handleAssessmentSubmit(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	user := userFromContext(r.Context())

	var req assessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, r, apperr.NewValidationError("body", "malformed JSON"))
		return
	}
	if req.TimeBudgetMinutes <= 0 {
		handleError(w, r, apperr.NewValidationError("time_budget_minutes", "must be positive"))
		return
	}

	out := assessment.Plan(assessment.Input{
		TimeBudgetMinutes: req.TimeBudgetMinutes,
		FluencyScore:      req.FluencyScore,
		TajwidConfidence:  req.TajwidConfidence,
		Goal:              req.Goal,
		HasTeacher:        req.HasTeacher,
		PriorJuzBand:      req.PriorJuzBand,
	})

	user.TimeBudgetMinutes = req.TimeBudgetMinutes
	user.Goal = req.Goal
	user.HasTeacher = req.HasTeacher
	user.PriorJuzBand = req.PriorJuzBand
	user.TajwidConfidence = req.TajwidConfidence
	user.ScaffoldingLevel = out.ScaffoldingLevel
	user.Variant = out.Variant
	user.DailyNewTargetAyahs = out.DailyNewTargetAyahs
	user.ReviewRatioTarget = out.ReviewRatioTarget
	user.RetentionThreshold = out.RetentionThreshold
	user.ConsolidationRetentionFloor = out.ConsolidationRetentionFloor
	user.BacklogFreezeRatio = out.BacklogFreezeRatio
	user.ManzilRotationDays = out.ManzilRotationDays
	user.AvgSecondsPerItem = out.AvgSecondsPerItem
	user.OverdueCapSeconds = out.OverdueCapSeconds

	if err := s.Users.Update(r.Context(), *user); err != nil {
		log.Error("failed to persist assessment output: %v", err)
		handleError(w, r, apperr.NewInternalError(err))
		return
	}

	writeJSON(w, r, http.StatusOK, out)
}
