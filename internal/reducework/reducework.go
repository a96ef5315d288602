// Package reducework schedules State Reducer (C4) runs onto the sharded
// worker pool keyed by (userId, ayahId), and updates TransitionScore rows
// for LINK-typed and TRANSITION_ATTEMPTED events (§4.2, §4.3).
package reducework

import (
	"context"
	"fmt"

	"github.com/hifzlab/scheduler/internal/logger"
	"github.com/hifzlab/scheduler/internal/models"
	"github.com/hifzlab/scheduler/internal/reducer"
	"github.com/hifzlab/scheduler/internal/repository"
	"github.com/hifzlab/scheduler/internal/worker"
)

// Scheduler enqueues reducer runs and applies transition-score updates
// after an event has been durably appended (§4.2's ordering requirement).
type Scheduler struct {
	pool        *worker.ShardedPool
	events      repository.EventRepository
	itemStates  repository.ItemStateRepository
	transitions repository.TransitionScoreRepository
}

// NewScheduler wires a Scheduler onto an already-started ShardedPool.
func NewScheduler(pool *worker.ShardedPool, events repository.EventRepository, itemStates repository.ItemStateRepository, transitions repository.TransitionScoreRepository) *Scheduler {
	return &Scheduler{pool: pool, events: events, itemStates: itemStates, transitions: transitions}
}

// OnAppended reacts to a newly (non-deduplicated) appended event: it
// schedules a reducer run for the affected item and, when applicable,
// updates the relevant TransitionScore synchronously (cheap enough not to
// need its own job, and simpler to reason about for idempotent retries).
func (s *Scheduler) OnAppended(ctx context.Context, ev models.ReviewEvent) {
	log := logger.FromContext(ctx).WithPrefix("reducework")

	if ev.EventType == models.EventReviewAttempted && ev.ItemAyahID != nil {
		key := shardKey(ev.UserID, *ev.ItemAyahID)
		s.pool.Submit(key, reduceJob{
			userID:     ev.UserID,
			ayahID:     *ev.ItemAyahID,
			events:     s.events,
			itemStates: s.itemStates,
		})
	}

	if err := s.updateTransitionScore(ctx, ev); err != nil {
		log.Error("failed to update transition score: %v", err)
	}
}

func (s *Scheduler) updateTransitionScore(ctx context.Context, ev models.ReviewEvent) error {
	var fromID, toID int
	var success bool

	switch {
	case ev.EventType == models.EventReviewAttempted && ev.StepType != nil && *ev.StepType == models.StepLink && ev.LinkedAyahID != nil && ev.ItemAyahID != nil:
		fromID, toID = *ev.ItemAyahID, *ev.LinkedAyahID
		success = ev.Success != nil && *ev.Success
	case ev.EventType == models.EventTransitionAttempted && ev.FromAyahID != nil && ev.ToAyahID != nil:
		fromID, toID = *ev.FromAyahID, *ev.ToAyahID
		success = ev.Success != nil && *ev.Success
	default:
		return nil
	}

	existing, err := s.transitions.Get(ctx, ev.UserID, fromID, toID)
	if err != nil {
		return err
	}
	t := models.TransitionScore{UserID: ev.UserID, FromAyahID: fromID, ToAyahID: toID}
	if existing != nil {
		t = *existing
	}
	t.AttemptCount++
	if success {
		t.SuccessCount++
	}
	t.LastPracticedAt = ev.OccurredAt
	return s.transitions.Upsert(ctx, t)
}

func shardKey(userID string, ayahID int) string {
	return fmt.Sprintf("%s:%d", userID, ayahID)
}

// ReduceNow runs the reducer synchronously and upserts the result. It is
// the body of the reduce job that OnAppended submits to the sharded pool.
func ReduceNow(ctx context.Context, userID string, ayahID int, events repository.EventRepository, itemStates repository.ItemStateRepository) (models.UserItemState, bool, error) {
	evs, err := events.ForItem(ctx, userID, ayahID)
	if err != nil {
		return models.UserItemState{}, false, err
	}
	st, ok := reducer.Reduce(userID, ayahID, evs)
	if !ok {
		return st, false, nil
	}
	if err := itemStates.Upsert(ctx, st); err != nil {
		return st, false, err
	}
	return st, true, nil
}

type reduceJob struct {
	userID     string
	ayahID     int
	events     repository.EventRepository
	itemStates repository.ItemStateRepository
}

func (j reduceJob) Name() string {
	return fmt.Sprintf("reduce:%s:%d", j.userID, j.ayahID)
}

func (j reduceJob) Run(ctx context.Context) error {
	_, _, err := ReduceNow(ctx, j.userID, j.ayahID, j.events, j.itemStates)
	return err
}
