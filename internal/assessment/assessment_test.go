package assessment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hifzlab/scheduler/internal/assessment"
	"github.com/hifzlab/scheduler/internal/models"
)

func TestPlan_BeginnerLowFluency(t *testing.T) {
	out := assessment.Plan(assessment.Input{
		TimeBudgetMinutes: 30,
		FluencyScore:      60,
		TajwidConfidence:  models.TajwidMedium,
		HasTeacher:        true,
		PriorJuzBand:      models.JuzBandOneToTwo,
	})
	assert.Equal(t, models.ScaffoldingBeginner, out.ScaffoldingLevel)
	assert.Equal(t, models.VariantStandard, out.Variant)
	assert.Equal(t, 5, out.DailyNewTargetAyahs)
	assert.Equal(t, 0.85, out.RetentionThreshold)
	assert.InDelta(t, 0.77, out.ConsolidationRetentionFloor, 1e-9)
	assert.Equal(t, 70, out.AvgSecondsPerItem)
}

func TestPlan_MinimalMomentum(t *testing.T) {
	out := assessment.Plan(assessment.Input{
		TimeBudgetMinutes: 90,
		FluencyScore:      90,
		TajwidConfidence:  models.TajwidHigh,
		HasTeacher:        true,
		PriorJuzBand:      models.JuzBandFivePlus,
	})
	assert.Equal(t, models.ScaffoldingMinimal, out.ScaffoldingLevel)
	assert.Equal(t, models.VariantMomentum, out.Variant)
	assert.Equal(t, 10, out.DailyNewTargetAyahs)
	assert.Equal(t, 0.82, out.RetentionThreshold)
	assert.Equal(t, 55, out.AvgSecondsPerItem)
}

func TestPlan_ConservativeNoTeacher(t *testing.T) {
	out := assessment.Plan(assessment.Input{
		TimeBudgetMinutes: 60,
		FluencyScore:      80,
		TajwidConfidence:  models.TajwidHigh,
		HasTeacher:        false,
		PriorJuzBand:      models.JuzBandThreeFour,
	})
	assert.Equal(t, models.VariantConservative, out.Variant)
	assert.Equal(t, 0.88, out.RetentionThreshold)
}

func TestPlan_FifteenMinuteCapAndWarning(t *testing.T) {
	out := assessment.Plan(assessment.Input{
		TimeBudgetMinutes: 15,
		FluencyScore:      80,
		TajwidConfidence:  models.TajwidHigh,
		HasTeacher:        true,
		PriorJuzBand:      models.JuzBandThreeFour,
	})
	assert.Equal(t, 3, out.DailyNewTargetAyahs)
	assert.Equal(t, 30, out.RecommendedMinutes)
	assert.NotEmpty(t, out.Warning)
	assert.Equal(t, models.VariantConservative, out.Variant)
}

func TestPlan_Constants(t *testing.T) {
	out := assessment.Plan(assessment.Input{TimeBudgetMinutes: 60, FluencyScore: 80, HasTeacher: true})
	assert.Equal(t, 70, out.ReviewRatioTarget)
	assert.Equal(t, 0.8, out.BacklogFreezeRatio)
	assert.Equal(t, 30, out.ManzilRotationDays)
	assert.Equal(t, 48*3600, out.OverdueCapSeconds)
}
