// Package assessment implements the pure onboarding planner (C6, §4.5):
// self-reported inputs in, scheduling parameters out. No I/O; the service
// layer is responsible for persisting the result onto the User row.
package assessment

import "github.com/hifzlab/scheduler/internal/models"

// Input mirrors the self-report fields the onboarding flow collects.
type Input struct {
	TimeBudgetMinutes int
	FluencyScore      float64
	TajwidConfidence  models.TajwidConfidence
	Goal              string
	HasTeacher        bool
	PriorJuzBand      models.JuzBand
}

// Output is the full set of derived scheduling parameters (§3's User
// fields that assessment, not the reducer, is responsible for).
type Output struct {
	ScaffoldingLevel            models.ScaffoldingLevel `json:"scaffolding_level"`
	Variant                     models.ProgramVariant   `json:"variant"`
	DailyNewTargetAyahs         int                     `json:"daily_new_target_ayahs"`
	ReviewRatioTarget           int                     `json:"review_ratio_target"`
	RetentionThreshold          float64                 `json:"retention_threshold"`
	ConsolidationRetentionFloor float64                 `json:"consolidation_retention_floor"`
	BacklogFreezeRatio          float64                 `json:"backlog_freeze_ratio"`
	ManzilRotationDays          int                     `json:"manzil_rotation_days"`
	AvgSecondsPerItem           int                     `json:"avg_seconds_per_item"`
	OverdueCapSeconds           int                     `json:"overdue_cap_seconds"`
	RecommendedMinutes          int                     `json:"recommended_minutes,omitempty"`
	Warning                     string                  `json:"warning,omitempty"`
}

// Plan computes Output from Input per §4.5.
func Plan(in Input) Output {
	out := Output{
		ReviewRatioTarget:  70,
		BacklogFreezeRatio: 0.8,
		ManzilRotationDays: 30,
		OverdueCapSeconds:  48 * 3600,
	}

	out.ScaffoldingLevel = scaffoldingLevel(in)
	out.Variant = variant(in)
	out.DailyNewTargetAyahs = dailyNewTarget(in, out.Variant)
	out.RetentionThreshold = retentionThreshold(out.Variant)
	out.ConsolidationRetentionFloor = max(0.70, out.RetentionThreshold-0.08)
	out.AvgSecondsPerItem = avgSecondsPerItem(in.FluencyScore)

	if in.TimeBudgetMinutes == 15 {
		out.RecommendedMinutes = 30
		out.Warning = "15 minutes a day is tight for steady progress; consider 30 minutes if your schedule allows it."
	}

	return out
}

func scaffoldingLevel(in Input) models.ScaffoldingLevel {
	switch {
	case in.FluencyScore < 75 || in.PriorJuzBand == models.JuzBandZero:
		return models.ScaffoldingBeginner
	case in.FluencyScore > 85 && in.PriorJuzBand == models.JuzBandFivePlus && in.HasTeacher:
		return models.ScaffoldingMinimal
	default:
		return models.ScaffoldingStandard
	}
}

func variant(in Input) models.ProgramVariant {
	switch {
	case in.TimeBudgetMinutes == 15 || in.FluencyScore < 45 || in.TajwidConfidence == models.TajwidLow || !in.HasTeacher:
		return models.VariantConservative
	case in.TimeBudgetMinutes >= 90 && in.FluencyScore >= 70 && in.TajwidConfidence != models.TajwidLow && in.HasTeacher:
		return models.VariantMomentum
	default:
		return models.VariantStandard
	}
}

func dailyNewTarget(in Input, v models.ProgramVariant) int {
	if in.TimeBudgetMinutes == 15 {
		return 3
	}
	switch {
	case v == models.VariantMomentum:
		return 10
	case v == models.VariantConservative || in.TimeBudgetMinutes == 30:
		return 5
	case in.TimeBudgetMinutes >= 90:
		return 7
	default:
		return 7
	}
}

func retentionThreshold(v models.ProgramVariant) float64 {
	switch v {
	case models.VariantConservative:
		return 0.88
	case models.VariantMomentum:
		return 0.82
	default:
		return 0.85
	}
}

func avgSecondsPerItem(fluencyScore float64) int {
	switch {
	case fluencyScore >= 75:
		return 55
	case fluencyScore >= 50:
		return 70
	default:
		return 90
	}
}
