package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hifzlab/scheduler/internal/eventstore"
	"github.com/hifzlab/scheduler/internal/models"
	"github.com/hifzlab/scheduler/internal/queue"
	"github.com/hifzlab/scheduler/internal/reducework"
	"github.com/hifzlab/scheduler/internal/repository/sqlite"
	"github.com/hifzlab/scheduler/internal/rollup"
	"github.com/hifzlab/scheduler/internal/session"
	"github.com/hifzlab/scheduler/internal/testutil"
	"github.com/hifzlab/scheduler/internal/worker"
)

func newService(t *testing.T) (*session.Service, string) {
	db := testutil.NewTestDB(t)
	testutil.SeedAyah(t, db, 1, 1, 1, 1, 1, 1)

	users := sqlite.NewUserRepository(db)
	events := sqlite.NewEventRepository(db)
	sessions := sqlite.NewSessionRepository(db)
	itemStates := sqlite.NewItemStateRepository(db)
	daily := sqlite.NewDailySessionRepository(db)
	transitions := sqlite.NewTransitionScoreRepository(db)

	userID := "user-1"
	require.NoError(t, users.Insert(context.Background(), models.User{
		ID:                 userID,
		Email:               "user1@example.com",
		TimeBudgetMinutes:   60,
		FluencyGatePassed:   true,
		RetentionThreshold:  0.8,
		BacklogFreezeRatio:  0.8,
		ManzilRotationDays:  7,
		AvgSecondsPerItem:   60,
		DailyNewTargetAyahs: 5,
		ScaffoldingLevel:    models.ScaffoldingStandard,
		Variant:             models.VariantStandard,
		CreatedAt:           time.Now(),
	}))

	pool := worker.NewShardedPool(4, 16)
	pool.Start(context.Background())
	t.Cleanup(pool.Stop)

	scheduler := reducework.NewScheduler(pool, events, itemStates, transitions)
	store := eventstore.NewStore(events, sessions, scheduler)
	planner := queue.NewPlanner(itemStates, events, daily, transitions)
	roll := rollup.New(events, daily, itemStates)

	return session.NewService(sessions, events, users, store, planner, roll), userID
}

// S5: first submission to a fresh STANDARD ayah must be EXPOSURE attempt 1;
// submitting LINK attempt 1 is rejected with the expected step/attempt.
func TestStepComplete_S5_RejectsOutOfOrderSubmission(t *testing.T) {
	svc, userID := newService(t)
	ctx := context.Background()
	now := time.Date(2026, 2, 11, 9, 0, 0, 0, time.UTC)

	run, err := svc.Start(ctx, userID, nil, models.ModeNormal, true, now)
	require.NoError(t, err)

	_, err = svc.StepComplete(ctx, session.StepSubmission{
		SessionID:       run.ID,
		AyahID:          1,
		StepType:        models.StepLink,
		AttemptNumber:   1,
		ScaffoldingUsed: models.ScaffoldingStandard,
		Success:         true,
		DurationSeconds: 10,
		Now:             now,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_STEP_SEQUENCE")
}

func TestStepComplete_ValidSequenceAdvancesThroughProtocol(t *testing.T) {
	svc, userID := newService(t)
	ctx := context.Background()
	now := time.Date(2026, 2, 11, 9, 0, 0, 0, time.UTC)

	run, err := svc.Start(ctx, userID, nil, models.ModeNormal, true, now)
	require.NoError(t, err)

	submit := func(step models.StepType, attempt int) session.StepResult {
		var linked *int
		if step == models.StepLink {
			next := 2
			linked = &next
		}
		res, err := svc.StepComplete(ctx, session.StepSubmission{
			SessionID:       run.ID,
			AyahID:          1,
			StepType:        step,
			AttemptNumber:   attempt,
			LinkedAyahID:    linked,
			ScaffoldingUsed: models.ScaffoldingStandard,
			Success:         true,
			DurationSeconds: 10,
			Now:             now.Add(time.Duration(attempt) * time.Second),
		})
		require.NoError(t, err)
		return res
	}

	submit(models.StepExposure, 1)
	submit(models.StepExposure, 2)
	r := submit(models.StepExposure, 3)
	assert.Equal(t, session.StepComplete, r.StepStatus)
	assert.Equal(t, models.StepGuided, r.NextStep)

	submit(models.StepGuided, 1)
	submit(models.StepBlind, 1)
	submit(models.StepBlind, 2)
	submit(models.StepBlind, 3)
	submit(models.StepLink, 1)
	submit(models.StepLink, 2)
	r = submit(models.StepLink, 3)

	assert.Equal(t, session.AyahComplete, r.StepStatus)
}

// Once a step has advanced, resubmitting the same (step, attempt) is
// rejected by protocol validation rather than silently re-recorded — the
// counts read back from prior events have already moved past it.
func TestStepComplete_ResubmittingCompletedAttemptIsRejected(t *testing.T) {
	svc, userID := newService(t)
	ctx := context.Background()
	now := time.Date(2026, 2, 11, 9, 0, 0, 0, time.UTC)

	run, err := svc.Start(ctx, userID, nil, models.ModeNormal, true, now)
	require.NoError(t, err)

	sub := session.StepSubmission{
		SessionID:       run.ID,
		AyahID:          1,
		StepType:        models.StepExposure,
		AttemptNumber:   1,
		ScaffoldingUsed: models.ScaffoldingStandard,
		Success:         true,
		DurationSeconds: 10,
		Now:             now,
	}

	first, err := svc.StepComplete(ctx, sub)
	require.NoError(t, err)
	assert.True(t, first.Recorded)

	_, err = svc.StepComplete(ctx, sub)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_STEP_SEQUENCE")
}
