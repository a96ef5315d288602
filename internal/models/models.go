package models

import "time"

// User holds identity plus the scheduling parameters the Assessment
// Planner (C6) and Fluency Gate (C5) mutate (§3).
type User struct {
	ID                          string     `json:"id"`
	Email                       string     `json:"email"`
	TimeBudgetMinutes           int        `json:"time_budget_minutes"`
	FluencyScore                *float64   `json:"fluency_score"`
	FluencyGatePassed           bool       `json:"fluency_gate_passed"`
	RequiresPreHifz             bool       `json:"requires_pre_hifz"`
	ScaffoldingLevel            ScaffoldingLevel `json:"scaffolding_level"`
	Variant                     ProgramVariant   `json:"variant"`
	DailyNewTargetAyahs         int        `json:"daily_new_target_ayahs"`
	ReviewRatioTarget           int        `json:"review_ratio_target"`
	RetentionThreshold          float64    `json:"retention_threshold"`
	BacklogFreezeRatio          float64    `json:"backlog_freeze_ratio"`
	ConsolidationRetentionFloor float64    `json:"consolidation_retention_floor"`
	ManzilRotationDays          int        `json:"manzil_rotation_days"`
	AvgSecondsPerItem           int        `json:"avg_seconds_per_item"`
	OverdueCapSeconds           int        `json:"overdue_cap_seconds"`
	PriorJuzBand                JuzBand    `json:"prior_juz_band"`
	Goal                        string     `json:"goal"`
	HasTeacher                  bool       `json:"has_teacher"`
	TajwidConfidence            TajwidConfidence `json:"tajwid_confidence"`
	CreatedAt                   time.Time  `json:"created_at"`
}

// Ayah is an immutable reference row, seeded once (§3).
type Ayah struct {
	ID          int    `json:"id"`
	SurahNumber int    `json:"surah_number"`
	AyahNumber  int    `json:"ayah_number"`
	JuzNumber   int    `json:"juz_number"`
	PageNumber  int    `json:"page_number"`
	HizbQuarter int    `json:"hizb_quarter"`
	TextUthmani string `json:"text_uthmani"`
}

// UserItemState is the sparse per-(user, ayah) learning record. It is a
// pure function of the ordered REVIEW_ATTEMPTED events for the pair (§3,
// §4.3) — every field here is written only by the reducer.
type UserItemState struct {
	UserID                  string     `json:"user_id"`
	AyahID                  int        `json:"ayah_id"`
	Status                  ItemStatus `json:"status"`
	Tier                    ReviewTier `json:"tier"`
	NextReviewAt            time.Time  `json:"next_review_at"`
	ReviewIntervalSeconds   int        `json:"review_interval_seconds"`
	IntervalCheckpointIndex int        `json:"interval_checkpoint_index"`
	IntroducedAt            time.Time  `json:"introduced_at"`
	FirstMemorizedAt        *time.Time `json:"first_memorized_at"`
	DifficultyScore         float64    `json:"difficulty_score"`
	TotalReviews            int        `json:"total_reviews"`
	SuccessfulReviews       int        `json:"successful_reviews"`
	Lapses                  int        `json:"lapses"`
	SuccessStreak           int        `json:"success_streak"`
	ConsecutivePerfectDays  int        `json:"consecutive_perfect_days"`
	LastPerfectDay          string     `json:"last_perfect_day"`
	AverageDurationSeconds  float64    `json:"average_duration_seconds"`
	LastErrorsCount         int        `json:"last_errors_count"`
	LastReviewedAt          time.Time  `json:"last_reviewed_at"`
	LastEventOccurredAt     time.Time  `json:"last_event_occurred_at"`
}

// OverdueSeconds returns how far past due the item is as of now, clamped
// to zero when not yet (or not overdue, when the caller already applied
// the overdue cap it is the caller's responsibility to clamp at the top).
func (s UserItemState) OverdueSeconds(now time.Time) float64 {
	d := now.Sub(s.NextReviewAt).Seconds()
	if d < 0 {
		return 0
	}
	return d
}

// ReviewEvent is the append-only log entry (§3). It is a tagged union over
// EventType; only the fields relevant to that type are populated.
type ReviewEvent struct {
	ID             string      `json:"id"`
	UserID         string      `json:"user_id"`
	EventType      EventType   `json:"event_type"`
	ClientEventID  string      `json:"client_event_id"`
	SessionRunID   *string     `json:"session_run_id"`
	SessionType    SessionType `json:"session_type"`
	OccurredAt     time.Time   `json:"occurred_at"`
	ReceivedAt     time.Time   `json:"received_at"`

	// REVIEW_ATTEMPTED fields.
	ItemAyahID      *int      `json:"item_ayah_id"`
	Tier            *ReviewTier `json:"tier"`
	StepType        *StepType `json:"step_type"`
	AttemptNumber   *int      `json:"attempt_number"`
	ScaffoldingUsed *ScaffoldingLevel `json:"scaffolding_used"`
	LinkedAyahID    *int      `json:"linked_ayah_id"`
	Success         *bool     `json:"success"`
	ErrorsCount     *int      `json:"errors_count"`
	DurationSeconds *int      `json:"duration_seconds"`
	ErrorTags       []string  `json:"error_tags"`

	// TRANSITION_ATTEMPTED fields.
	FromAyahID *int `json:"from_ayah_id"`
	ToAyahID   *int `json:"to_ayah_id"`
}

// SessionRun is one user sitting (§3).
type SessionRun struct {
	ID              string        `json:"id"`
	UserID          string        `json:"user_id"`
	ClientSessionID *string       `json:"client_session_id"`
	Mode            QueueMode     `json:"mode"`
	WarmupPassed    bool          `json:"warmup_passed"`
	Status          SessionStatus `json:"status"`
	StartedAt       time.Time     `json:"started_at"`
	EndedAt         *time.Time    `json:"ended_at"`
	EventsCount     int           `json:"events_count"`
	MinutesTotal    int           `json:"minutes_total"`
}

// DailySession is the per-(user, UTC day) aggregate (§3, §4.8).
type DailySession struct {
	UserID                  string    `json:"user_id"`
	SessionDate             string    `json:"session_date"`
	Mode                    QueueMode `json:"mode"`
	RetentionScore          float64   `json:"retention_score"`
	BacklogMinutesEstimate  int       `json:"backlog_minutes_estimate"`
	OverdueDaysMax          int       `json:"overdue_days_max"`
	MinutesTotal            int       `json:"minutes_total"`
	ReviewsTotal            int       `json:"reviews_total"`
	ReviewsSuccessful       int       `json:"reviews_successful"`
	NewAyahsMemorized       int       `json:"new_ayahs_memorized"`
	WarmupPassed            bool      `json:"warmup_passed"`
	SabaqAllowed            bool      `json:"sabaq_allowed"`
}

// TransitionScore tracks inter-ayah link strength (§3).
type TransitionScore struct {
	UserID          string    `json:"user_id"`
	FromAyahID      int       `json:"from_ayah_id"`
	ToAyahID        int       `json:"to_ayah_id"`
	AttemptCount    int       `json:"attempt_count"`
	SuccessCount    int       `json:"success_count"`
	LastPracticedAt time.Time `json:"last_practiced_at"`
}

// SuccessRate is successCount/attemptCount, or 1 when never attempted.
func (t TransitionScore) SuccessRate() float64 {
	if t.AttemptCount == 0 {
		return 1
	}
	return float64(t.SuccessCount) / float64(t.AttemptCount)
}

// IsWeak reports whether the link meets §3's weak-transition threshold.
func (t TransitionScore) IsWeak() bool {
	return t.AttemptCount >= 3 && t.SuccessRate() < 0.70
}

// FluencyGateTest is the page-read competence check lifecycle (§3, §4.4).
type FluencyGateTest struct {
	ID              string            `json:"id"`
	UserID          string            `json:"user_id"`
	Status          FluencyTestStatus `json:"status"`
	TestPage        int               `json:"test_page"`
	DurationSeconds *int              `json:"duration_seconds"`
	ErrorCount      *int              `json:"error_count"`
	FluencyScore    *float64          `json:"fluency_score"`
	StartedAt       time.Time         `json:"started_at"`
	CompletedAt     *time.Time        `json:"completed_at"`
}
