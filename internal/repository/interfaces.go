// Package repository defines storage-agnostic access to every entity in
// §3, mirroring the teacher's split between interfaces and a sqlite
// implementation package.
package repository

import (
	"context"
	"time"

	"github.com/hifzlab/scheduler/internal/models"
)

// UserRepository handles User data access (§3).
type UserRepository interface {
	Get(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Insert(ctx context.Context, u models.User) error
	Update(ctx context.Context, u models.User) error
}

// AyahRepository handles the static Ayah reference table (§3).
type AyahRepository interface {
	Get(ctx context.Context, id int) (*models.Ayah, error)
	List(ctx context.Context) ([]models.Ayah, error)
	ListByPage(ctx context.Context, pageNumber int) ([]models.Ayah, error)
	Count(ctx context.Context) (int, error)
}

// EventRepository is the append-only ReviewEvent log (C3, §4.2).
type EventRepository interface {
	// Append inserts the event. If (userId, clientEventId) already exists
	// it is a no-op and Append returns (existingID, true, nil).
	Append(ctx context.Context, ev models.ReviewEvent) (id string, deduplicated bool, err error)
	ForItem(ctx context.Context, userID string, ayahID int) ([]models.ReviewEvent, error)
	ForSession(ctx context.Context, sessionRunID string) ([]models.ReviewEvent, error)
	ForUserSince(ctx context.Context, userID string, since time.Time) ([]models.ReviewEvent, error)
}

// ItemStateRepository persists the reducer's output (C4, §4.3).
type ItemStateRepository interface {
	Get(ctx context.Context, userID string, ayahID int) (*models.UserItemState, error)
	Upsert(ctx context.Context, st models.UserItemState) error
	DueBefore(ctx context.Context, userID string, cutoff time.Time) ([]models.UserItemState, error)
	ByTier(ctx context.Context, userID string, tier models.ReviewTier) ([]models.UserItemState, error)
	ListForUser(ctx context.Context, userID string) ([]models.UserItemState, error)
	CountByStatus(ctx context.Context, userID string, status models.ItemStatus) (int, error)
	CountDue(ctx context.Context, userID string, now time.Time) (int, error)
}

// SessionRepository manages SessionRun lifecycle (C8, §4.7).
type SessionRepository interface {
	Get(ctx context.Context, id string) (*models.SessionRun, error)
	GetByClientID(ctx context.Context, userID, clientSessionID string) (*models.SessionRun, error)
	Insert(ctx context.Context, s models.SessionRun) error
	// CompleteOnce transitions an ACTIVE session to status, but only if it
	// is still ACTIVE (single-shot completion, §5). ok is false if the
	// session was already terminal.
	CompleteOnce(ctx context.Context, id string, status models.SessionStatus, endedAt time.Time, eventsCount, minutesTotal int) (ok bool, err error)
	IncrementCounts(ctx context.Context, id string, events int, minutes int) error
}

// DailySessionRepository manages the per-day rollup (C9, §4.8).
type DailySessionRepository interface {
	Get(ctx context.Context, userID, sessionDate string) (*models.DailySession, error)
	Upsert(ctx context.Context, d models.DailySession) error
	Range(ctx context.Context, userID, fromDate, toDate string) ([]models.DailySession, error)
	RecentRetentionScores(ctx context.Context, userID string, days int) ([]float64, error)
}

// TransitionScoreRepository tracks inter-ayah link strength (§3).
type TransitionScoreRepository interface {
	Get(ctx context.Context, userID string, fromAyahID, toAyahID int) (*models.TransitionScore, error)
	Upsert(ctx context.Context, t models.TransitionScore) error
	WeakForUser(ctx context.Context, userID string) ([]models.TransitionScore, error)
	StrongForUser(ctx context.Context, userID string) ([]models.TransitionScore, error)
}

// FluencyGateRepository manages FluencyGateTest lifecycle (C5, §4.4).
type FluencyGateRepository interface {
	Get(ctx context.Context, id string) (*models.FluencyGateTest, error)
	Insert(ctx context.Context, f models.FluencyGateTest) error
	// CompleteOnce transitions an IN_PROGRESS test to a terminal status.
	// ok is false if the test was already terminal (§3: terminal statuses
	// are immutable).
	CompleteOnce(ctx context.Context, id string, status models.FluencyTestStatus, durationSeconds, errorCount int, score float64, completedAt time.Time) (ok bool, err error)
	LatestForUser(ctx context.Context, userID string) (*models.FluencyGateTest, error)
}
