package reducer_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hifzlab/scheduler/internal/models"
	"github.com/hifzlab/scheduler/internal/reducer"
)

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

func reviewEvent(ayahID int, occurredAt time.Time, success bool, errorsCount int) models.ReviewEvent {
	return models.ReviewEvent{
		ID:          occurredAt.Format(time.RFC3339Nano),
		EventType:   models.EventReviewAttempted,
		ItemAyahID:  intPtr(ayahID),
		Success:     boolPtr(success),
		ErrorsCount: intPtr(errorsCount),
		OccurredAt:  occurredAt,
	}
}

// S1: eight perfect reviews on consecutive UTC days climb the ladder to
// its final rung and hold the promotion gate open.
func TestReduce_PerfectLadderClimb(t *testing.T) {
	var events []models.ReviewEvent
	start := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		events = append(events, reviewEvent(1, start.AddDate(0, 0, i), true, 0))
	}

	st, ok := reducer.Reduce("user-1", 1, events)
	require.True(t, ok)

	assert.Equal(t, 7, st.IntervalCheckpointIndex)
	assert.Equal(t, 90*86400, st.ReviewIntervalSeconds)
	assert.Equal(t, 8, st.ConsecutivePerfectDays)
	assert.Equal(t, models.TierManzil, st.Tier)
	assert.Equal(t, models.StatusMemorized, st.Status)
	require.NotNil(t, st.FirstMemorizedAt)
	// The second consecutive perfect review is the first event whose
	// resulting checkpoint index reaches 2 (0->1 on day one, 1->2 on day
	// two), so firstMemorizedAt freezes on day two, not day three.
	assert.Equal(t, time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC), *st.FirstMemorizedAt)
}

// S2: a fail after three perfect reviews resets the ladder and the
// promotion gate counters to zero.
func TestReduce_FailResetsLadder(t *testing.T) {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	events := []models.ReviewEvent{
		reviewEvent(2, start, true, 0),
		reviewEvent(2, start.AddDate(0, 0, 1), true, 0),
		reviewEvent(2, start.AddDate(0, 0, 2), true, 0),
		reviewEvent(2, start.AddDate(0, 0, 3), false, 3),
	}

	st, ok := reducer.Reduce("user-1", 2, events)
	require.True(t, ok)

	assert.Equal(t, 0, st.IntervalCheckpointIndex)
	assert.Equal(t, 14400, st.ReviewIntervalSeconds)
	assert.Equal(t, 0, st.ConsecutivePerfectDays)
	assert.Equal(t, "", st.LastPerfectDay)
	assert.Equal(t, models.TierSabaq, st.Tier)
	assert.Equal(t, models.StatusLearning, st.Status)
}

func TestReduce_EmptyEventsReturnsFalse(t *testing.T) {
	_, ok := reducer.Reduce("user-1", 1, nil)
	assert.False(t, ok)
}

// Repeated perfect reviews on the same UTC day do not double-count the
// promotion-gate streak.
func TestReduce_SameDayPerfectDoesNotDoubleCount(t *testing.T) {
	day := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	events := []models.ReviewEvent{
		reviewEvent(3, day, true, 0),
		reviewEvent(3, day.Add(2*time.Hour), true, 0),
	}

	st, ok := reducer.Reduce("user-1", 3, events)
	require.True(t, ok)
	assert.Equal(t, 1, st.ConsecutivePerfectDays)
}

// A gap of more than one UTC day between perfect reviews resets the streak
// to 1 rather than continuing it or zeroing it.
func TestReduce_GapResetsStreakToOne(t *testing.T) {
	day1 := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	day3 := time.Date(2026, 5, 3, 9, 0, 0, 0, time.UTC)
	events := []models.ReviewEvent{
		reviewEvent(4, day1, true, 0),
		reviewEvent(4, day3, true, 0),
	}

	st, ok := reducer.Reduce("user-1", 4, events)
	require.True(t, ok)
	assert.Equal(t, 1, st.ConsecutivePerfectDays)
}

// Minor outcomes hold the checkpoint index steady while still nudging
// difficulty and clearing the promotion streak.
func TestReduce_MinorHoldsCheckpoint(t *testing.T) {
	start := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	events := []models.ReviewEvent{
		reviewEvent(5, start, true, 0),
		reviewEvent(5, start.AddDate(0, 0, 1), true, 1),
	}

	st, ok := reducer.Reduce("user-1", 5, events)
	require.True(t, ok)
	assert.Equal(t, 1, st.IntervalCheckpointIndex)
	assert.Equal(t, 0, st.ConsecutivePerfectDays)
}

func TestReduce_AverageDurationIsRunningMean(t *testing.T) {
	start := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	e1 := reviewEvent(6, start, true, 0)
	e1.DurationSeconds = intPtr(10)
	e2 := reviewEvent(6, start.AddDate(0, 0, 1), true, 0)
	e2.DurationSeconds = intPtr(20)

	st, ok := reducer.Reduce("user-1", 6, []models.ReviewEvent{e1, e2})
	require.True(t, ok)
	assert.InDelta(t, 15.0, st.AverageDurationSeconds, 1e-9)
}

func TestEffectiveTier_DemotesManzilBeforeSevenDays(t *testing.T) {
	assert.Equal(t, models.TierSabqi, reducer.EffectiveTier(7, 6))
	assert.Equal(t, models.TierManzil, reducer.EffectiveTier(7, 7))
}
