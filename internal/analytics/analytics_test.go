package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hifzlab/scheduler/internal/analytics"
	"github.com/hifzlab/scheduler/internal/models"
	"github.com/hifzlab/scheduler/internal/repository/sqlite"
	"github.com/hifzlab/scheduler/internal/testutil"
)

func TestCalendar_StreaksAndXP(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.SeedUser(t, db, "user-1", "user1@example.com")

	daily := sqlite.NewDailySessionRepository(db)
	itemStates := sqlite.NewItemStateRepository(db)
	ctx := context.Background()

	// Active on 02-01 and 02-02, a gap on 02-03, active again 02-04.
	require.NoError(t, daily.Upsert(ctx, models.DailySession{UserID: "user-1", SessionDate: "2026-02-01", MinutesTotal: 10, ReviewsSuccessful: 5, NewAyahsMemorized: 1}))
	require.NoError(t, daily.Upsert(ctx, models.DailySession{UserID: "user-1", SessionDate: "2026-02-02", MinutesTotal: 20, ReviewsSuccessful: 8}))
	require.NoError(t, daily.Upsert(ctx, models.DailySession{UserID: "user-1", SessionDate: "2026-02-04", MinutesTotal: 5, ReviewsSuccessful: 2}))

	views := analytics.New(daily, itemStates)
	cal, err := views.Calendar(ctx, "user-1", "2026-02-01", "2026-02-04")
	require.NoError(t, err)

	require.Len(t, cal.Days, 4)
	assert.True(t, cal.Days[0].Active)
	assert.Equal(t, 10*2+5+1*10, cal.Days[0].XP)
	assert.False(t, cal.Days[2].Active)
	assert.Equal(t, 2, cal.LongestStreak)
	assert.Equal(t, 1, cal.CurrentStreak)
}

func TestAchievements_FirstReviewUnlocks(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.SeedUser(t, db, "user-1", "user1@example.com")

	daily := sqlite.NewDailySessionRepository(db)
	itemStates := sqlite.NewItemStateRepository(db)
	ctx := context.Background()
	now := time.Date(2026, 2, 11, 0, 0, 0, 0, time.UTC)

	require.NoError(t, daily.Upsert(ctx, models.DailySession{UserID: "user-1", SessionDate: "2026-02-10", ReviewsTotal: 1, ReviewsSuccessful: 1}))

	views := analytics.New(daily, itemStates)
	achievements, err := views.Achievements(ctx, "user-1", now)
	require.NoError(t, err)

	var first, hundred bool
	for _, a := range achievements {
		if a.Key == "first_review" {
			first = a.Unlocked
		}
		if a.Key == "hundred_reviews" {
			hundred = a.Unlocked
		}
	}
	assert.True(t, first)
	assert.False(t, hundred)
}

func TestProgress_OverallRetentionFromCheckpoints(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.SeedUser(t, db, "user-1", "user1@example.com")
	testutil.SeedAyah(t, db, 1, 1, 1, 1, 1, 1)
	testutil.SeedAyah(t, db, 2, 1, 2, 1, 1, 1)

	daily := sqlite.NewDailySessionRepository(db)
	itemStates := sqlite.NewItemStateRepository(db)
	transitions := sqlite.NewTransitionScoreRepository(db)
	ctx := context.Background()

	require.NoError(t, itemStates.Upsert(ctx, models.UserItemState{UserID: "user-1", AyahID: 1, Status: models.StatusMemorized, Tier: models.TierManzil, TotalReviews: 10, SuccessfulReviews: 9, IntervalCheckpointIndex: 3}))
	require.NoError(t, itemStates.Upsert(ctx, models.UserItemState{UserID: "user-1", AyahID: 2, Status: models.StatusLearning, Tier: models.TierSabaq, TotalReviews: 5, SuccessfulReviews: 1, IntervalCheckpointIndex: 0}))

	views := analytics.New(daily, itemStates)
	progress, err := views.Progress(ctx, "user-1", transitions)
	require.NoError(t, err)

	assert.InDelta(t, 10.0/15.0, progress.OverallRetention, 1e-9)
	assert.Equal(t, 1, progress.CheckpointDistribution[3])
	assert.Equal(t, 1, progress.CheckpointDistribution[0])
	assert.NotEmpty(t, progress.Recommendation)
}
