// Package analytics implements the Analytics Read Models (C10, §4.9): pure
// derivations over DailySession and UserItemState rows — calendar,
// achievements, and progress. Reads always succeed; an empty history
// produces empty collections rather than an error.
package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/hifzlab/scheduler/internal/ids"
	"github.com/hifzlab/scheduler/internal/models"
	"github.com/hifzlab/scheduler/internal/repository"
)

// Views computes the read models over a user's persisted history.
type Views struct {
	daily      repository.DailySessionRepository
	itemStates repository.ItemStateRepository
}

// New wires a Views to its repositories.
func New(daily repository.DailySessionRepository, itemStates repository.ItemStateRepository) *Views {
	return &Views{daily: daily, itemStates: itemStates}
}

// CalendarDay is one UTC day's completion snapshot plus its derived XP.
type CalendarDay struct {
	Date              string
	Active            bool
	MinutesTotal      int
	ReviewsTotal      int
	ReviewsSuccessful int
	NewAyahsMemorized int
	XP                int
}

// Calendar is the §4.9 calendar view: per-day completion and the current
// and longest streaks of consecutive active UTC days within the range.
type Calendar struct {
	Days          []CalendarDay
	CurrentStreak int
	LongestStreak int
}

// xp is the §4.9 formula: minutes*2 + reviewsSuccessful + newAyahs*10.
func xp(d models.DailySession) int {
	return d.MinutesTotal*2 + d.ReviewsSuccessful + d.NewAyahsMemorized*10
}

// Calendar builds the per-day view for [fromDate, toDate] (inclusive,
// "2006-01-02" UTC day strings) plus streak counts.
func (v *Views) Calendar(ctx context.Context, userID, fromDate, toDate string) (Calendar, error) {
	rows, err := v.daily.Range(ctx, userID, fromDate, toDate)
	if err != nil {
		return Calendar{}, err
	}

	byDate := make(map[string]models.DailySession, len(rows))
	for _, d := range rows {
		byDate[d.SessionDate] = d
	}

	from, err := time.Parse("2006-01-02", fromDate)
	if err != nil {
		return Calendar{}, err
	}
	to, err := time.Parse("2006-01-02", toDate)
	if err != nil {
		return Calendar{}, err
	}

	var days []CalendarDay
	var currentStreak, longestStreak, running int
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		date := ids.UTCDay(d)
		row, active := byDate[date]
		day := CalendarDay{Date: date, Active: active}
		if active {
			day.MinutesTotal = row.MinutesTotal
			day.ReviewsTotal = row.ReviewsTotal
			day.ReviewsSuccessful = row.ReviewsSuccessful
			day.NewAyahsMemorized = row.NewAyahsMemorized
			day.XP = xp(row)
			running++
		} else {
			running = 0
		}
		if running > longestStreak {
			longestStreak = running
		}
		days = append(days, day)
	}
	if len(days) > 0 && days[len(days)-1].Active {
		currentStreak = running
	}

	return Calendar{Days: days, CurrentStreak: currentStreak, LongestStreak: longestStreak}, nil
}

// Achievement is one badge evaluation.
type Achievement struct {
	Key      string
	Rarity   string
	Unlocked bool
}

// badges is the fixed nine-badge table (§4.9): key, rarity, and the
// threshold predicate over cumulative totals.
var badges = []struct {
	key, rarity string
	threshold   func(totalMinutes, totalReviews, totalNew, streak int) bool
}{
	{"first_review", "common", func(_, r, _, _ int) bool { return r >= 1 }},
	{"ten_reviews", "common", func(_, r, _, _ int) bool { return r >= 10 }},
	{"hundred_reviews", "uncommon", func(_, r, _, _ int) bool { return r >= 100 }},
	{"thousand_reviews", "rare", func(_, r, _, _ int) bool { return r >= 1000 }},
	{"first_ayah_memorized", "common", func(_, _, n, _ int) bool { return n >= 1 }},
	{"juz_pace", "uncommon", func(_, _, n, _ int) bool { return n >= 20 }},
	{"week_streak", "uncommon", func(_, _, _, s int) bool { return s >= 7 }},
	{"month_streak", "rare", func(_, _, _, s int) bool { return s >= 30 }},
	{"ten_hours", "rare", func(m, _, _, _ int) bool { return m >= 600 }},
}

// Achievements evaluates the fixed badge table. Minute, review and
// new-ayah totals come from the user's full daily-session history; the
// streak is the longer of the current and longest streak over the last
// 365 days.
func (v *Views) Achievements(ctx context.Context, userID string, now time.Time) ([]Achievement, error) {
	rows, err := v.daily.Range(ctx, userID, "0001-01-01", ids.UTCDay(now))
	if err != nil {
		return nil, err
	}

	var totalMinutes, totalReviews, totalNew int
	for _, d := range rows {
		totalMinutes += d.MinutesTotal
		totalReviews += d.ReviewsTotal
		totalNew += d.NewAyahsMemorized
	}

	cal, err := v.Calendar(ctx, userID, ids.UTCDay(now.AddDate(0, 0, -365)), ids.UTCDay(now))
	if err != nil {
		return nil, err
	}
	streak := cal.CurrentStreak
	if cal.LongestStreak > streak {
		streak = cal.LongestStreak
	}

	out := make([]Achievement, 0, len(badges))
	for _, b := range badges {
		out = append(out, Achievement{Key: b.key, Rarity: b.rarity, Unlocked: b.threshold(totalMinutes, totalReviews, totalNew, streak)})
	}
	return out, nil
}

// TransitionSummary names one surfaced weak or strong link for the
// progress view.
type TransitionSummary struct {
	FromAyahID  int
	ToAyahID    int
	SuccessRate float64
}

// Progress is the §4.9 progress view.
type Progress struct {
	OverallRetention       float64
	WeakTransitions        []TransitionSummary
	StrongTransitions      []TransitionSummary
	CheckpointDistribution map[int]int
	Recommendation         string
}

// Progress derives the overall-retention, transition-strength, and
// checkpoint-distribution views, plus a textual recommendation.
func (v *Views) Progress(ctx context.Context, userID string, transitions repository.TransitionScoreRepository) (Progress, error) {
	items, err := v.itemStates.ListForUser(ctx, userID)
	if err != nil {
		return Progress{}, err
	}

	dist := make(map[int]int)
	var totalReviews, successfulReviews int
	for _, st := range items {
		dist[st.IntervalCheckpointIndex]++
		totalReviews += st.TotalReviews
		successfulReviews += st.SuccessfulReviews
	}
	overall := 1.0
	if totalReviews > 0 {
		overall = float64(successfulReviews) / float64(totalReviews)
	}

	weak, err := transitions.WeakForUser(ctx, userID)
	if err != nil {
		return Progress{}, err
	}
	weakOut := make([]TransitionSummary, 0, len(weak))
	for _, t := range weak {
		weakOut = append(weakOut, TransitionSummary{FromAyahID: t.FromAyahID, ToAyahID: t.ToAyahID, SuccessRate: t.SuccessRate()})
	}
	sort.SliceStable(weakOut, func(i, j int) bool { return weakOut[i].SuccessRate < weakOut[j].SuccessRate })

	strong, err := transitions.StrongForUser(ctx, userID)
	if err != nil {
		return Progress{}, err
	}
	strongOut := make([]TransitionSummary, 0, len(strong))
	for _, t := range strong {
		strongOut = append(strongOut, TransitionSummary{FromAyahID: t.FromAyahID, ToAyahID: t.ToAyahID, SuccessRate: t.SuccessRate()})
	}
	sort.SliceStable(strongOut, func(i, j int) bool { return strongOut[i].SuccessRate > strongOut[j].SuccessRate })

	return Progress{
		OverallRetention:       overall,
		WeakTransitions:        weakOut,
		StrongTransitions:      strongOut,
		CheckpointDistribution: dist,
		Recommendation:         recommend(overall, len(weakOut), dist),
	}, nil
}

func recommend(overallRetention float64, weakCount int, dist map[int]int) string {
	switch {
	case overallRetention < 0.7:
		return "Retention is slipping — slow down new material and focus this week on review."
	case weakCount > 5:
		return "Several transitions between ayahs are weak — spend extra time on LINK practice."
	case dist[7] > 0 && overallRetention >= 0.9:
		return "Strong retention at the Manzil tier — you can safely raise your daily new-ayah target."
	default:
		return "On track — keep the current pace."
	}
}
