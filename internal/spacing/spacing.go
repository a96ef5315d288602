// Package spacing implements the checkpoint ladder, outcome classification,
// next-review computation, and difficulty EWMA (C2, §4.1). It mirrors the
// teacher's ApplyReview shape: a pure function from (state, attempt) to
// (new state fields), with no I/O and no hidden clock reads.
package spacing

import (
	"time"

	"github.com/hifzlab/scheduler/internal/models"
)

// Ladder is the fixed checkpoint schedule in seconds: 4h, 8h, 1d, 3d, 7d,
// 14d, 30d, 90d.
var Ladder = [8]int{
	4 * 3600,
	8 * 3600,
	1 * 86400,
	3 * 86400,
	7 * 86400,
	14 * 86400,
	30 * 86400,
	90 * 86400,
}

// Outcome is the three-way classification of a single review attempt.
type Outcome string

const (
	Perfect Outcome = "perfect"
	Minor   Outcome = "minor"
	Fail    Outcome = "fail"
)

// Classify buckets an attempt per §4.1.
func Classify(success bool, errorsCount int) Outcome {
	switch {
	case success && errorsCount == 0:
		return Perfect
	case success && errorsCount >= 1 && errorsCount <= 2:
		return Minor
	default:
		return Fail
	}
}

// NextCheckpointIndex applies the §4.1 transition table.
func NextCheckpointIndex(current int, outcome Outcome) int {
	switch outcome {
	case Perfect:
		next := current + 1
		if next > 7 {
			next = 7
		}
		return next
	case Minor:
		return current
	default:
		return 0
	}
}

// IntervalSeconds returns the ladder interval for a checkpoint index.
func IntervalSeconds(index int) int {
	if index < 0 {
		index = 0
	}
	if index > 7 {
		index = 7
	}
	return Ladder[index]
}

// NextReviewAt adds the checkpoint interval to occurredAt as whole seconds,
// which is what keeps replay deterministic (§4.3's idempotence invariant):
// no wall-clock reads, no floating point accumulation.
func NextReviewAt(occurredAt time.Time, checkpointIndex int) time.Time {
	return occurredAt.Add(time.Duration(IntervalSeconds(checkpointIndex)) * time.Second)
}

// DifficultyDelta is the EWMA step applied for an outcome (§4.1).
func DifficultyDelta(outcome Outcome) float64 {
	switch outcome {
	case Fail:
		return 0.1
	case Minor:
		return 0.03
	default:
		return -0.05
	}
}

// ApplyDifficulty clamps the updated difficulty score to [0,1].
func ApplyDifficulty(current float64, outcome Outcome) float64 {
	next := current + DifficultyDelta(outcome)
	if next < 0 {
		return 0
	}
	if next > 1 {
		return 1
	}
	return next
}

// CheckpointTier maps a checkpoint index to its checkpoint-derived tier
// (§4.1). Callers apply the promotion gate separately to get the
// effective tier — see reducer.EffectiveTier.
func CheckpointTier(index int) models.ReviewTier {
	switch {
	case index <= 1:
		return models.TierSabaq
	case index <= 5:
		return models.TierSabqi
	default:
		return models.TierManzil
	}
}
