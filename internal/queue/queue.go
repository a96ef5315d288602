// Package queue implements the Today Queue planner (C7, §4.6): debt
// metrics, warm-up evaluation, mode selection, the risk-sorted Sabqi list,
// Manzil rotation, weak-transition surfacing, and the Sabaq task gate.
package queue

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/hifzlab/scheduler/internal/ids"
	"github.com/hifzlab/scheduler/internal/models"
	"github.com/hifzlab/scheduler/internal/repository"
)

// Planner is the Queue Planner service.
type Planner struct {
	itemStates  repository.ItemStateRepository
	events      repository.EventRepository
	daily       repository.DailySessionRepository
	transitions repository.TransitionScoreRepository
}

// NewPlanner wires a Planner to its repositories.
func NewPlanner(itemStates repository.ItemStateRepository, events repository.EventRepository, daily repository.DailySessionRepository, transitions repository.TransitionScoreRepository) *Planner {
	return &Planner{itemStates: itemStates, events: events, daily: daily, transitions: transitions}
}

// Warmup is the §4.6 step 3 result.
type Warmup struct {
	Passed  bool  `json:"passed"`
	Failed  bool  `json:"failed"`
	Pending bool  `json:"pending"`
	Passing []int `json:"passing"`
	Failing []int `json:"failing"`
}

// WeakTransition is one surfaced (from, to) pair.
type WeakTransition struct {
	FromAyahID  int     `json:"from_ayah_id"`
	ToAyahID    int     `json:"to_ayah_id"`
	SuccessRate float64 `json:"success_rate"`
}

// SabaqTask is the §4.6 step 9 result.
type SabaqTask struct {
	TargetAyahs   int                 `json:"target_ayahs"`
	Allowed       bool                `json:"allowed"`
	BlockedReason models.BlockedReason `json:"blocked_reason"`
}

// Plan is the full §4.6 output.
type Plan struct {
	FluencyGateRequired   bool                    `json:"fluency_gate_required"`
	DueCount              int                     `json:"due_count"`
	BacklogMinutesEst     int                     `json:"backlog_minutes_estimate"`
	OverdueDaysMax        int                     `json:"overdue_days_max"`
	FreezeThresholdMins   int                     `json:"freeze_threshold_minutes"`
	Warmup                Warmup                  `json:"warmup"`
	RetentionRolling7d    float64                 `json:"retention_rolling_7d"`
	Mode                  models.QueueMode        `json:"mode"`
	SabqiList             []models.UserItemState  `json:"sabqi_list"`
	ManzilList            []models.UserItemState  `json:"manzil_list"`
	WeakTransitions       []WeakTransition        `json:"weak_transitions"`
	LinkRepairRecommended bool                    `json:"link_repair_recommended"`
	SabaqTask             SabaqTask               `json:"sabaq_task"`
}

// fluencyGateRequiredPlan is returned whenever step 1's guard trips.
func fluencyGateRequiredPlan() Plan {
	return Plan{
		FluencyGateRequired: true,
		Mode:                models.ModeReviewOnly,
		SabaqTask:            SabaqTask{TargetAyahs: 0, Allowed: false, BlockedReason: models.BlockedWarmupPending},
	}
}

// Build computes today's queue for user as of now.
func (p *Planner) Build(ctx context.Context, user models.User, now time.Time) (Plan, error) {
	if user.RequiresPreHifz || !user.FluencyGatePassed {
		return fluencyGateRequiredPlan(), nil
	}

	due, err := p.itemStates.DueBefore(ctx, user.ID, now)
	if err != nil {
		return Plan{}, err
	}

	dueCount := len(due)
	backlogMinutesEst := int(math.Ceil(float64(dueCount) * float64(user.AvgSecondsPerItem) / 60))
	overdueDaysMax := 0
	if dueCount > 0 {
		earliest := due[0].NextReviewAt
		for _, d := range due[1:] {
			if d.NextReviewAt.Before(earliest) {
				earliest = d.NextReviewAt
			}
		}
		if !earliest.After(now) {
			overdueDaysMax = int(now.Sub(earliest) / (24 * time.Hour))
		}
	}
	freezeThresholdMins := int(math.Floor(float64(user.TimeBudgetMinutes) * user.BacklogFreezeRatio))

	warmup, err := p.evaluateWarmup(ctx, user.ID, now)
	if err != nil {
		return Plan{}, err
	}

	retentionRolling7d, err := p.rollingRetention(ctx, user.ID)
	if err != nil {
		return Plan{}, err
	}

	debtFreeze := backlogMinutesEst > freezeThresholdMins || overdueDaysMax > 2
	var mode models.QueueMode
	switch {
	case debtFreeze || warmup.Failed:
		mode = models.ModeReviewOnly
	case retentionRolling7d < user.RetentionThreshold:
		mode = models.ModeConsolidation
	default:
		mode = models.ModeNormal
	}

	sabqi := sabqiList(due, now)

	manzil, err := p.manzilRotation(ctx, user, due, now)
	if err != nil {
		return Plan{}, err
	}

	weak, linkRepair, err := p.weakTransitions(ctx, user.ID)
	if err != nil {
		return Plan{}, err
	}

	task := sabaqTask(user, mode, warmup)

	return Plan{
		DueCount:              dueCount,
		BacklogMinutesEst:     backlogMinutesEst,
		OverdueDaysMax:        overdueDaysMax,
		FreezeThresholdMins:   freezeThresholdMins,
		Warmup:                warmup,
		RetentionRolling7d:    retentionRolling7d,
		Mode:                  mode,
		SabqiList:             sabqi,
		ManzilList:            manzil,
		WeakTransitions:       weak,
		LinkRepairRecommended: linkRepair,
		SabaqTask:             task,
	}, nil
}

func (p *Planner) evaluateWarmup(ctx context.Context, userID string, now time.Time) (Warmup, error) {
	all, err := p.itemStates.ListForUser(ctx, userID)
	if err != nil {
		return Warmup{}, err
	}

	yesterday := ids.UTCDay(now.AddDate(0, 0, -1))
	introducedYesterday := make(map[int]bool)
	for _, st := range all {
		if ids.UTCDay(st.IntroducedAt) == yesterday {
			introducedYesterday[st.AyahID] = true
		}
	}
	if len(introducedYesterday) == 0 {
		return Warmup{Passed: true}, nil
	}

	todayStart := ids.StartOfUTCDay(now)
	events, err := p.events.ForUserSince(ctx, userID, todayStart)
	if err != nil {
		return Warmup{}, err
	}

	attempted := make(map[int]bool)
	passed := make(map[int]bool)
	for _, ev := range events {
		if ev.EventType != models.EventReviewAttempted || ev.ItemAyahID == nil || !introducedYesterday[*ev.ItemAyahID] {
			continue
		}
		attempted[*ev.ItemAyahID] = true
		if ev.Success != nil && *ev.Success && ev.ErrorsCount != nil && *ev.ErrorsCount <= 1 {
			passed[*ev.ItemAyahID] = true
		}
	}

	w := Warmup{Passed: true}
	for ayahID := range introducedYesterday {
		switch {
		case passed[ayahID]:
			w.Passing = append(w.Passing, ayahID)
		case attempted[ayahID]:
			w.Failed = true
			w.Passed = false
			w.Failing = append(w.Failing, ayahID)
		default:
			w.Pending = true
			w.Passed = false
		}
	}
	sort.Ints(w.Passing)
	sort.Ints(w.Failing)
	return w, nil
}

func (p *Planner) rollingRetention(ctx context.Context, userID string) (float64, error) {
	scores, err := p.daily.RecentRetentionScores(ctx, userID, 7)
	if err != nil {
		return 0, err
	}
	if len(scores) == 0 {
		return 1, nil
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores)), nil
}

// riskSort sorts items in place by the §4.6 step 6 risk comparator, highest risk first,
// as of "now" — callers pass items whose OverdueSeconds are already
// comparable (both due and non-due items compute correctly since
// OverdueSeconds clamps at zero).
func riskSort(items []models.UserItemState, now time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		ao, bo := a.OverdueSeconds(now), b.OverdueSeconds(now)
		if ao != bo {
			return ao > bo
		}
		if a.Lapses != b.Lapses {
			return a.Lapses > b.Lapses
		}
		if a.DifficultyScore != b.DifficultyScore {
			return a.DifficultyScore > b.DifficultyScore
		}
		return a.LastErrorsCount > b.LastErrorsCount
	})
}

func sabqiList(due []models.UserItemState, now time.Time) []models.UserItemState {
	var out []models.UserItemState
	for _, st := range due {
		if st.Tier != models.TierManzil {
			out = append(out, st)
		}
	}
	riskSort(out, now)
	return out
}

func (p *Planner) manzilRotation(ctx context.Context, user models.User, due []models.UserItemState, now time.Time) ([]models.UserItemState, error) {
	activeManzil, err := p.itemStates.ByTier(ctx, user.ID, models.TierManzil)
	if err != nil {
		return nil, err
	}

	var d []models.UserItemState
	dueSet := make(map[int]bool)
	for _, st := range due {
		if st.Tier == models.TierManzil {
			d = append(d, st)
			dueSet[st.AyahID] = true
		}
	}
	riskSort(d, now)

	rotationDays := user.ManzilRotationDays
	if rotationDays < 1 {
		rotationDays = 1
	}
	target := int(math.Ceil(float64(len(activeManzil)) / float64(rotationDays)))
	if target < 1 {
		target = 1
	}
	if len(d) >= target {
		return d, nil
	}

	var nonDue []models.UserItemState
	for _, st := range activeManzil {
		if !dueSet[st.AyahID] {
			nonDue = append(nonDue, st)
		}
	}
	riskSort(nonDue, now)

	for _, st := range nonDue {
		if len(d) >= target {
			break
		}
		d = append(d, st)
	}
	return d, nil
}

func (p *Planner) weakTransitions(ctx context.Context, userID string) ([]WeakTransition, bool, error) {
	weak, err := p.transitions.WeakForUser(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	out := make([]WeakTransition, 0, len(weak))
	for _, t := range weak {
		out = append(out, WeakTransition{FromAyahID: t.FromAyahID, ToAyahID: t.ToAyahID, SuccessRate: t.SuccessRate()})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SuccessRate < out[j].SuccessRate })
	linkRepair := len(out) > 5
	if len(out) > 10 {
		out = out[:10]
	}
	return out, linkRepair, nil
}

func sabaqTask(user models.User, mode models.QueueMode, warmup Warmup) SabaqTask {
	target := user.DailyNewTargetAyahs
	switch mode {
	case models.ModeConsolidation:
		target = target / 2
		if target < 1 {
			target = 1
		}
	case models.ModeReviewOnly:
		target = 0
	}

	allowed := mode != models.ModeReviewOnly && warmup.Passed

	reason := models.BlockedNone
	switch {
	case warmup.Failed:
		reason = models.BlockedWarmupFailed
	case mode == models.ModeReviewOnly:
		reason = models.BlockedModeReviewOnly
	case warmup.Pending:
		reason = models.BlockedWarmupPending
	}
	if allowed {
		reason = models.BlockedNone
	}

	return SabaqTask{TargetAyahs: target, Allowed: allowed, BlockedReason: reason}
}
