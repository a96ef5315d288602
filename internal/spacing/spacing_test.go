package spacing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/hifzlab/scheduler/internal/models"
	"github.com/hifzlab/scheduler/internal/spacing"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, spacing.Perfect, spacing.Classify(true, 0))
	assert.Equal(t, spacing.Minor, spacing.Classify(true, 1))
	assert.Equal(t, spacing.Minor, spacing.Classify(true, 2))
	assert.Equal(t, spacing.Fail, spacing.Classify(true, 3))
	assert.Equal(t, spacing.Fail, spacing.Classify(false, 0))
}

func TestNextCheckpointIndex(t *testing.T) {
	assert.Equal(t, 1, spacing.NextCheckpointIndex(0, spacing.Perfect))
	assert.Equal(t, 7, spacing.NextCheckpointIndex(7, spacing.Perfect), "caps at 7")
	assert.Equal(t, 3, spacing.NextCheckpointIndex(3, spacing.Minor))
	assert.Equal(t, 0, spacing.NextCheckpointIndex(5, spacing.Fail))
}

func TestIntervalSeconds(t *testing.T) {
	assert.Equal(t, 4*3600, spacing.IntervalSeconds(0))
	assert.Equal(t, 90*86400, spacing.IntervalSeconds(7))
	assert.Equal(t, 7*86400, spacing.IntervalSeconds(4))
}

func TestNextReviewAt(t *testing.T) {
	occurred := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	next := spacing.NextReviewAt(occurred, 2)
	assert.Equal(t, occurred.Add(24*time.Hour), next)
}

func TestApplyDifficulty_Clamped(t *testing.T) {
	d := 0.0
	for i := 0; i < 20; i++ {
		d = spacing.ApplyDifficulty(d, spacing.Fail)
	}
	assert.LessOrEqual(t, d, 1.0)

	d = 1.0
	for i := 0; i < 40; i++ {
		d = spacing.ApplyDifficulty(d, spacing.Perfect)
	}
	assert.GreaterOrEqual(t, d, 0.0)
}

func TestCheckpointTier(t *testing.T) {
	assert.Equal(t, models.TierSabaq, spacing.CheckpointTier(0))
	assert.Equal(t, models.TierSabaq, spacing.CheckpointTier(1))
	assert.Equal(t, models.TierSabqi, spacing.CheckpointTier(2))
	assert.Equal(t, models.TierSabqi, spacing.CheckpointTier(5))
	assert.Equal(t, models.TierManzil, spacing.CheckpointTier(6))
	assert.Equal(t, models.TierManzil, spacing.CheckpointTier(7))
}
