package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/hifzlab/scheduler/internal/apperr"
	"github.com/hifzlab/scheduler/internal/models"
)

// reviewEventRequest mirrors the ReviewEvent tagged union (§3): only the
// fields relevant to event_type are populated by the client.
type reviewEventRequest struct {
	EventType       models.EventType         `json:"event_type"`
	ClientEventID   string                   `json:"client_event_id"`
	SessionRunID    *string                  `json:"session_run_id"`
	SessionType     models.SessionType       `json:"session_type"`
	OccurredAt      time.Time                `json:"occurred_at"`

	ItemAyahID      *int                     `json:"item_ayah_id"`
	Tier            *models.ReviewTier       `json:"tier"`
	StepType        *models.StepType        `json:"step_type"`
	AttemptNumber   *int                     `json:"attempt_number"`
	ScaffoldingUsed *models.ScaffoldingLevel `json:"scaffolding_used"`
	LinkedAyahID    *int                     `json:"linked_ayah_id"`
	Success         *bool                    `json:"success"`
	ErrorsCount     *int                     `json:"errors_count"`
	DurationSeconds *int                     `json:"duration_seconds"`
	ErrorTags       []string                 `json:"error_tags"`

	FromAyahID *int `json:"from_ayah_id"`
	ToAyahID   *int `json:"to_ayah_id"`
}

// handleReviewEvent ingests one event through the Event Store (C3),
// deduplicating on (userId, clientEventId) per §5/§8's idempotence
// invariant.
func (s *Server) handleReviewEvent(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	var req reviewEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, r, apperr.NewValidationError("body", "malformed JSON"))
		return
	}
	if req.ClientEventID == "" {
		handleError(w, r, apperr.NewValidationError("client_event_id", "required"))
		return
	}
	if req.OccurredAt.IsZero() {
		req.OccurredAt = time.Now().UTC()
	}

	result, err := s.Store.Ingest(r.Context(), models.ReviewEvent{
		UserID:          user.ID,
		EventType:       req.EventType,
		ClientEventID:   req.ClientEventID,
		SessionRunID:    req.SessionRunID,
		SessionType:     req.SessionType,
		OccurredAt:      req.OccurredAt,
		ItemAyahID:      req.ItemAyahID,
		Tier:            req.Tier,
		StepType:        req.StepType,
		AttemptNumber:   req.AttemptNumber,
		ScaffoldingUsed: req.ScaffoldingUsed,
		LinkedAyahID:    req.LinkedAyahID,
		Success:         req.Success,
		ErrorsCount:     req.ErrorsCount,
		DurationSeconds: req.DurationSeconds,
		ErrorTags:       req.ErrorTags,
		FromAyahID:      req.FromAyahID,
		ToAyahID:        req.ToAyahID,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	body := map[string]any{"deduplicated": result.Deduplicated}
	if !result.Deduplicated {
		body["event_id"] = result.EventID
	}
	writeJSON(w, r, http.StatusOK, body)
}
