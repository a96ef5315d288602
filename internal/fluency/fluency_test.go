package fluency_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hifzlab/scheduler/internal/fluency"
)

// S6: duration 175s, 3 errors -> timeScore=50, accuracyScore=50, total=100.
func TestScoring_S6(t *testing.T) {
	assert.Equal(t, 50.0, fluency.Score(175))
	assert.Equal(t, 50.0, fluency.AccuracyScore(3))
}

func TestScore_DecaysAfterThreeMinutes(t *testing.T) {
	assert.Equal(t, 50.0, fluency.Score(179))
	assert.InDelta(t, 49.0, fluency.Score(186), 1e-9)
	assert.Equal(t, 0.0, fluency.Score(10000))
}

func TestAccuracyScore_DecaysAfterFiveErrors(t *testing.T) {
	assert.Equal(t, 50.0, fluency.AccuracyScore(4))
	assert.Equal(t, 45.0, fluency.AccuracyScore(6))
	assert.Equal(t, 0.0, fluency.AccuracyScore(1000))
}
