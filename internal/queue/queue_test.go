package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hifzlab/scheduler/internal/models"
	"github.com/hifzlab/scheduler/internal/queue"
	"github.com/hifzlab/scheduler/internal/repository/sqlite"
	"github.com/hifzlab/scheduler/internal/testutil"
)

// S4: debt-freeze forces REVIEW_ONLY and blocks the Sabaq task.
func TestBuild_S4_QueueUnderDebt(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	testutil.SeedUser(t, db, "user-1", "user1@example.com")

	itemStates := sqlite.NewItemStateRepository(db)
	events := sqlite.NewEventRepository(db)
	daily := sqlite.NewDailySessionRepository(db)
	transitions := sqlite.NewTransitionScoreRepository(db)

	now := time.Date(2026, 2, 11, 12, 0, 0, 0, time.UTC)
	earliest := time.Date(2026, 2, 11, 10, 0, 0, 0, time.UTC)

	for i := 1; i <= 90; i++ {
		testutil.SeedAyah(t, db, i, 1, i, 1, 1, 1)
		due := earliest
		if i != 1 {
			due = earliest.Add(time.Duration(i) * time.Minute)
		}
		require.NoError(t, itemStates.Upsert(ctx, models.UserItemState{
			UserID:                  "user-1",
			AyahID:                  i,
			Status:                  models.StatusLearning,
			Tier:                    models.TierSabaq,
			NextReviewAt:            due,
			IntroducedAt:            earliest.AddDate(0, 0, -10),
			IntervalCheckpointIndex: 0,
		}))
	}

	user := models.User{
		ID:                 "user-1",
		TimeBudgetMinutes:  60,
		FluencyGatePassed:  true,
		BacklogFreezeRatio: 0.8,
		AvgSecondsPerItem:  75,
		RetentionThreshold: 0.85,
		DailyNewTargetAyahs: 7,
	}

	planner := queue.NewPlanner(itemStates, events, daily, transitions)
	plan, err := planner.Build(ctx, user, now)
	require.NoError(t, err)

	require.Equal(t, 113, plan.BacklogMinutesEst)
	require.Equal(t, 48, plan.FreezeThresholdMins)
	require.Equal(t, 0, plan.OverdueDaysMax)
	require.Equal(t, models.ModeReviewOnly, plan.Mode)
	require.False(t, plan.SabaqTask.Allowed)
	require.Equal(t, models.BlockedModeReviewOnly, plan.SabaqTask.BlockedReason)
}

func TestBuild_FluencyGateRequired(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	testutil.SeedUser(t, db, "user-1", "user1@example.com")

	itemStates := sqlite.NewItemStateRepository(db)
	events := sqlite.NewEventRepository(db)
	daily := sqlite.NewDailySessionRepository(db)
	transitions := sqlite.NewTransitionScoreRepository(db)

	planner := queue.NewPlanner(itemStates, events, daily, transitions)
	plan, err := planner.Build(ctx, models.User{ID: "user-1", RequiresPreHifz: true}, time.Now())
	require.NoError(t, err)
	require.True(t, plan.FluencyGateRequired)
}
