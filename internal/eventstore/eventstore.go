// Package eventstore implements the ingest operation of the Event Store
// (C3, §4.2): validate, append durably, then fan out the side effects the
// spec requires (session counters, reducer scheduling, transition scores).
package eventstore

import (
	"context"

	"github.com/hifzlab/scheduler/internal/apperr"
	"github.com/hifzlab/scheduler/internal/logger"
	"github.com/hifzlab/scheduler/internal/models"
	"github.com/hifzlab/scheduler/internal/reducework"
	"github.com/hifzlab/scheduler/internal/repository"
)

// Store is the Event Store service.
type Store struct {
	events   repository.EventRepository
	sessions repository.SessionRepository
	reduce   *reducework.Scheduler
}

// NewStore creates a Store wired to its repositories and reducer scheduler.
func NewStore(events repository.EventRepository, sessions repository.SessionRepository, reduce *reducework.Scheduler) *Store {
	return &Store{events: events, sessions: sessions, reduce: reduce}
}

// IngestResult mirrors the §4.2 `{deduplicated, eventId?}` contract.
type IngestResult struct {
	Deduplicated bool
	EventID      string
}

// Ingest validates and appends ev. On a unique-key collision on
// (userId, clientEventId) it returns Deduplicated=true and performs no
// side effects, per §4.2's contract.
func (s *Store) Ingest(ctx context.Context, ev models.ReviewEvent) (IngestResult, error) {
	log := logger.FromContext(ctx).WithPrefix("eventstore")

	if err := validate(ev); err != nil {
		return IngestResult{}, err
	}

	id, deduplicated, err := s.events.Append(ctx, ev)
	if err != nil {
		log.Error("failed to append event: %v", err)
		return IngestResult{}, apperr.NewInternalError(err)
	}
	if deduplicated {
		log.Debug("ingest deduplicated: client_event_id=%s", ev.ClientEventID)
		return IngestResult{Deduplicated: true, EventID: id}, nil
	}
	ev.ID = id

	if ev.SessionRunID != nil {
		minutes := 0
		if ev.DurationSeconds != nil {
			minutes = *ev.DurationSeconds / 60
		}
		if err := s.sessions.IncrementCounts(ctx, *ev.SessionRunID, 1, minutes); err != nil {
			log.Error("failed to increment session counters: %v", err)
		}
	}

	s.reduce.OnAppended(ctx, ev)

	return IngestResult{Deduplicated: false, EventID: id}, nil
}

func validate(ev models.ReviewEvent) error {
	if ev.UserID == "" {
		return apperr.NewValidationError("userId", "required")
	}
	if ev.ClientEventID == "" {
		return apperr.NewValidationError("clientEventId", "required")
	}
	switch ev.EventType {
	case models.EventReviewAttempted:
		if ev.ItemAyahID == nil {
			return apperr.NewValidationError("itemAyahId", "required for REVIEW_ATTEMPTED")
		}
		if ev.Tier == nil {
			return apperr.NewValidationError("tier", "required for REVIEW_ATTEMPTED")
		}
		if ev.Success == nil {
			return apperr.NewValidationError("success", "required for REVIEW_ATTEMPTED")
		}
		if ev.ErrorsCount == nil {
			return apperr.NewValidationError("errorsCount", "required for REVIEW_ATTEMPTED")
		}
		if *ev.ErrorsCount < 0 {
			return apperr.NewValidationError("errorsCount", "must be >= 0")
		}
		if ev.DurationSeconds == nil {
			return apperr.NewValidationError("durationSeconds", "required for REVIEW_ATTEMPTED")
		}
		if *ev.DurationSeconds <= 0 {
			return apperr.NewValidationError("durationSeconds", "must be > 0")
		}
		if ev.StepType != nil && *ev.StepType == models.StepLink && ev.LinkedAyahID == nil {
			return apperr.NewValidationError("linkedAyahId", "required when stepType = LINK")
		}
	case models.EventTransitionAttempted:
		if ev.FromAyahID == nil || ev.ToAyahID == nil {
			return apperr.NewValidationError("fromAyahId/toAyahId", "both required for TRANSITION_ATTEMPTED")
		}
		if ev.Success == nil {
			return apperr.NewValidationError("success", "required for TRANSITION_ATTEMPTED")
		}
	default:
		return apperr.NewValidationError("eventType", "unknown event type")
	}
	return nil
}
