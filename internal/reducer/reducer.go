// Package reducer implements the deterministic left-fold over
// REVIEW_ATTEMPTED events that computes a UserItemState (C4, §4.3). Reduce
// is a pure function: same ordered events in, same state out, every time —
// the central invariant spec.md §8.1 and §8.3 require.
package reducer

import (
	"sort"

	"github.com/hifzlab/scheduler/internal/ids"
	"github.com/hifzlab/scheduler/internal/models"
	"github.com/hifzlab/scheduler/internal/spacing"
)

// SortEvents orders events by (occurredAt ASC, eventId ASC), the ordering
// §4.3 requires replay to use.
func SortEvents(events []models.ReviewEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].OccurredAt.Equal(events[j].OccurredAt) {
			return events[i].OccurredAt.Before(events[j].OccurredAt)
		}
		return events[i].ID < events[j].ID
	})
}

// Reduce folds the ordered REVIEW_ATTEMPTED events for one (user, ayah)
// pair into its UserItemState. Callers must pre-filter to that pair and to
// EventReviewAttempted; events need not be pre-sorted (Reduce sorts a copy).
// Returns the zero value and false when events is empty — the row does not
// exist until the first event is reduced (§3, §9: sparse item state).
func Reduce(userID string, ayahID int, events []models.ReviewEvent) (models.UserItemState, bool) {
	if len(events) == 0 {
		return models.UserItemState{}, false
	}

	ordered := make([]models.ReviewEvent, len(events))
	copy(ordered, events)
	SortEvents(ordered)

	st := models.UserItemState{
		UserID:       userID,
		AyahID:       ayahID,
		Tier:         models.TierSabaq,
		IntroducedAt: ordered[0].OccurredAt,
	}

	for _, ev := range ordered {
		applyOne(&st, ev)
	}

	if st.IntervalCheckpointIndex >= 2 {
		st.Status = models.StatusMemorized
	} else {
		st.Status = models.StatusLearning
	}
	return st, true
}

func applyOne(st *models.UserItemState, ev models.ReviewEvent) {
	success := ev.Success != nil && *ev.Success
	errorsCount := 0
	if ev.ErrorsCount != nil {
		errorsCount = *ev.ErrorsCount
	}
	duration := 0
	if ev.DurationSeconds != nil {
		duration = *ev.DurationSeconds
	}

	outcome := spacing.Classify(success, errorsCount)
	newIndex := spacing.NextCheckpointIndex(st.IntervalCheckpointIndex, outcome)
	interval := spacing.IntervalSeconds(newIndex)
	nextReviewAt := spacing.NextReviewAt(ev.OccurredAt, newIndex)

	st.TotalReviews++
	if success {
		st.SuccessfulReviews++
		st.SuccessStreak++
	} else {
		st.Lapses++
		st.SuccessStreak = 0
	}

	st.DifficultyScore = spacing.ApplyDifficulty(st.DifficultyScore, outcome)

	// Running mean of duration over all reviews so far.
	st.AverageDurationSeconds += (float64(duration) - st.AverageDurationSeconds) / float64(st.TotalReviews)

	if st.FirstMemorizedAt == nil && newIndex >= 2 {
		at := ev.OccurredAt
		st.FirstMemorizedAt = &at
	}

	applyPromotionGate(st, ev, outcome)

	checkpointTier := spacing.CheckpointTier(newIndex)
	if checkpointTier == models.TierManzil && st.ConsecutivePerfectDays < 7 {
		st.Tier = models.TierSabqi
	} else {
		st.Tier = checkpointTier
	}

	st.IntervalCheckpointIndex = newIndex
	st.ReviewIntervalSeconds = interval
	st.NextReviewAt = nextReviewAt
	st.LastErrorsCount = errorsCount
	st.LastReviewedAt = ev.OccurredAt
	st.LastEventOccurredAt = ev.OccurredAt
}

// applyPromotionGate maintains ConsecutivePerfectDays/LastPerfectDay per
// §4.3: perfect on a fresh streak or the day after LastPerfectDay
// increments (or starts at 1); perfect on the same day as LastPerfectDay
// is a no-op; perfect after a gap of more than one day resets to 1; any
// non-perfect event resets to 0 and clears LastPerfectDay.
func applyPromotionGate(st *models.UserItemState, ev models.ReviewEvent, outcome spacing.Outcome) {
	if outcome != spacing.Perfect {
		st.ConsecutivePerfectDays = 0
		st.LastPerfectDay = ""
		return
	}

	day := ids.UTCDay(ev.OccurredAt)
	switch {
	case st.LastPerfectDay == "":
		st.ConsecutivePerfectDays = 1
	case day == st.LastPerfectDay:
		// Same UTC day: streak already counted, keep as-is.
	case ids.DaysBetweenUTCDays(st.LastPerfectDay, day) == 1:
		st.ConsecutivePerfectDays++
	default:
		st.ConsecutivePerfectDays = 1
	}
	st.LastPerfectDay = day
}

// EffectiveTier recomputes the promotion-gated tier for a given checkpoint
// index and consecutive-perfect-day count, exposed for callers (e.g. the
// queue planner) that need to reason about tier without re-running Reduce.
func EffectiveTier(checkpointIndex, consecutivePerfectDays int) models.ReviewTier {
	t := spacing.CheckpointTier(checkpointIndex)
	if t == models.TierManzil && consecutivePerfectDays < 7 {
		return models.TierSabqi
	}
	return t
}
