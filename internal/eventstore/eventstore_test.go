package eventstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hifzlab/scheduler/internal/eventstore"
	"github.com/hifzlab/scheduler/internal/models"
	"github.com/hifzlab/scheduler/internal/reducework"
	"github.com/hifzlab/scheduler/internal/repository/sqlite"
	"github.com/hifzlab/scheduler/internal/testutil"
	"github.com/hifzlab/scheduler/internal/worker"
)

func newStore(t *testing.T) (*eventstore.Store, func()) {
	db := testutil.NewTestDB(t)
	testutil.SeedUser(t, db, "user-1", "user1@example.com")
	testutil.SeedAyah(t, db, 1, 1, 1, 1, 1, 1)

	events := sqlite.NewEventRepository(db)
	sessions := sqlite.NewSessionRepository(db)
	itemStates := sqlite.NewItemStateRepository(db)
	transitions := sqlite.NewTransitionScoreRepository(db)

	pool := worker.NewShardedPool(2, 16)
	ctx := context.Background()
	pool.Start(ctx)

	scheduler := reducework.NewScheduler(pool, events, itemStates, transitions)
	return eventstore.NewStore(events, sessions, scheduler), pool.Stop
}

func baseEvent(ayahID int) models.ReviewEvent {
	success := true
	errorsCount := 0
	duration := 30
	tier := models.TierSabaq
	return models.ReviewEvent{
		UserID:          "user-1",
		EventType:       models.EventReviewAttempted,
		ClientEventID:   "client-1",
		ItemAyahID:      &ayahID,
		Tier:            &tier,
		Success:         &success,
		ErrorsCount:     &errorsCount,
		DurationSeconds: &duration,
		OccurredAt:      time.Date(2026, 2, 11, 9, 0, 0, 0, time.UTC),
	}
}

func TestIngest_DuplicateClientEventIDDeduplicates(t *testing.T) {
	store, stop := newStore(t)
	defer stop()
	ctx := context.Background()

	first, err := store.Ingest(ctx, baseEvent(1))
	require.NoError(t, err)
	assert.False(t, first.Deduplicated)
	assert.NotEmpty(t, first.EventID)

	second, err := store.Ingest(ctx, baseEvent(1))
	require.NoError(t, err)
	assert.True(t, second.Deduplicated)
	assert.Equal(t, first.EventID, second.EventID)
}

func TestIngest_ValidationRejectsMissingFields(t *testing.T) {
	store, stop := newStore(t)
	defer stop()
	ctx := context.Background()

	_, err := store.Ingest(ctx, models.ReviewEvent{UserID: "user-1", EventType: models.EventReviewAttempted, ClientEventID: "client-2"})
	require.Error(t, err)
}
