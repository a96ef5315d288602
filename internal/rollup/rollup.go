// Package rollup implements the Daily Session Rollup (C9, §4.8): the
// per-(user, UTC day) aggregate computed from a just-completed SessionRun's
// events plus the day's newly-memorized items.
package rollup

import (
	"context"
	"math"
	"time"

	"github.com/hifzlab/scheduler/internal/ids"
	"github.com/hifzlab/scheduler/internal/models"
	"github.com/hifzlab/scheduler/internal/repository"
)

// Rollup computes and upserts the DailySession for a completed SessionRun.
type Rollup struct {
	events     repository.EventRepository
	daily      repository.DailySessionRepository
	itemStates repository.ItemStateRepository
}

// New wires a Rollup to its repositories.
func New(events repository.EventRepository, daily repository.DailySessionRepository, itemStates repository.ItemStateRepository) *Rollup {
	return &Rollup{events: events, daily: daily, itemStates: itemStates}
}

// Apply computes §4.8's aggregate for run and upserts it into DailySession
// for (run.UserID, today's UTC day). backlogMinutes and overdueDays come
// from the queue re-evaluation the caller performs at completion time.
// Upsert semantics (increment the counters, overwrite the rest) live in the
// sqlite repository.
func (r *Rollup) Apply(ctx context.Context, run models.SessionRun, backlogMinutes, overdueDays int, now time.Time) error {
	events, err := r.events.ForSession(ctx, run.ID)
	if err != nil {
		return err
	}

	var reviewsTotal, reviewsSuccessful, totalSeconds int
	for _, ev := range events {
		if ev.EventType != models.EventReviewAttempted {
			continue
		}
		reviewsTotal++
		if ev.Success != nil && *ev.Success {
			reviewsSuccessful++
		}
		if ev.DurationSeconds != nil {
			totalSeconds += *ev.DurationSeconds
		}
	}

	retentionScore := 1.0
	if reviewsTotal > 0 {
		retentionScore = float64(reviewsSuccessful) / float64(reviewsTotal)
	}
	minutesTotal := int(math.Ceil(float64(totalSeconds) / 60))

	todayStart := ids.StartOfUTCDay(now)
	items, err := r.itemStates.ListForUser(ctx, run.UserID)
	if err != nil {
		return err
	}
	var newAyahsMemorized int
	for _, st := range items {
		if st.FirstMemorizedAt != nil && !st.FirstMemorizedAt.Before(todayStart) {
			newAyahsMemorized++
		}
	}

	day := models.DailySession{
		UserID:                 run.UserID,
		SessionDate:            ids.UTCDay(now),
		Mode:                   run.Mode,
		RetentionScore:         retentionScore,
		BacklogMinutesEstimate: backlogMinutes,
		OverdueDaysMax:         overdueDays,
		MinutesTotal:           minutesTotal,
		ReviewsTotal:           reviewsTotal,
		ReviewsSuccessful:      reviewsSuccessful,
		NewAyahsMemorized:      newAyahsMemorized,
		WarmupPassed:           run.WarmupPassed,
		SabaqAllowed:           run.Mode != models.ModeReviewOnly,
	}
	return r.daily.Upsert(ctx, day)
}
