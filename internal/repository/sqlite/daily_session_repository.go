package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hifzlab/scheduler/internal/logger"
	"github.com/hifzlab/scheduler/internal/models"
	"github.com/hifzlab/scheduler/internal/repository"
)

type dailySessionRepository struct {
	db *sql.DB
}

// NewDailySessionRepository creates a new DailySessionRepository
// implementation backing the per-day rollup (C9, §4.8).
func NewDailySessionRepository(db *sql.DB) repository.DailySessionRepository {
	return &dailySessionRepository{db: db}
}

const dailySessionColumns = `user_id, session_date, mode, retention_score, backlog_minutes_estimate,
	overdue_days_max, minutes_total, reviews_total, reviews_successful, new_ayahs_memorized, warmup_passed, sabaq_allowed`

func scanDailySession(scanner interface{ Scan(...any) error }) (models.DailySession, error) {
	var d models.DailySession
	err := scanner.Scan(&d.UserID, &d.SessionDate, &d.Mode, &d.RetentionScore, &d.BacklogMinutesEstimate,
		&d.OverdueDaysMax, &d.MinutesTotal, &d.ReviewsTotal, &d.ReviewsSuccessful, &d.NewAyahsMemorized, &d.WarmupPassed, &d.SabaqAllowed)
	return d, err
}

func (r *dailySessionRepository) Get(ctx context.Context, userID, sessionDate string) (*models.DailySession, error) {
	log := logger.FromContext(ctx).WithPrefix("daily_session_repo")
	row := r.db.QueryRowContext(ctx, `SELECT `+dailySessionColumns+` FROM daily_sessions WHERE user_id = ? AND session_date = ?`, userID, sessionDate)
	d, err := scanDailySession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get daily session: %v", err)
		return nil, err
	}
	return &d, nil
}

// Upsert inserts the daily session, or on conflict increments the running
// totals and overwrites the rest, per §4.8's "on conflict" clause.
func (r *dailySessionRepository) Upsert(ctx context.Context, d models.DailySession) error {
	log := logger.FromContext(ctx).WithPrefix("daily_session_repo")
	if d.Mode == "" {
		d.Mode = models.ModeNormal
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO daily_sessions (`+dailySessionColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id, session_date) DO UPDATE SET
	mode = excluded.mode,
	retention_score = excluded.retention_score,
	backlog_minutes_estimate = excluded.backlog_minutes_estimate,
	overdue_days_max = excluded.overdue_days_max,
	minutes_total = daily_sessions.minutes_total + excluded.minutes_total,
	reviews_total = daily_sessions.reviews_total + excluded.reviews_total,
	reviews_successful = daily_sessions.reviews_successful + excluded.reviews_successful,
	new_ayahs_memorized = excluded.new_ayahs_memorized,
	warmup_passed = excluded.warmup_passed,
	sabaq_allowed = excluded.sabaq_allowed
`, d.UserID, d.SessionDate, d.Mode, d.RetentionScore, d.BacklogMinutesEstimate,
		d.OverdueDaysMax, d.MinutesTotal, d.ReviewsTotal, d.ReviewsSuccessful, d.NewAyahsMemorized, d.WarmupPassed, d.SabaqAllowed)
	if err != nil {
		log.Error("failed to upsert daily session: %v", err)
	}
	return err
}

func (r *dailySessionRepository) Range(ctx context.Context, userID, fromDate, toDate string) ([]models.DailySession, error) {
	log := logger.FromContext(ctx).WithPrefix("daily_session_repo")
	rows, err := r.db.QueryContext(ctx, `
SELECT `+dailySessionColumns+` FROM daily_sessions
WHERE user_id = ? AND session_date >= ? AND session_date <= ?
ORDER BY session_date ASC
`, userID, fromDate, toDate)
	if err != nil {
		log.Error("failed to range daily sessions: %v", err)
		return nil, err
	}
	defer rows.Close()
	var out []models.DailySession
	for rows.Next() {
		d, err := scanDailySession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *dailySessionRepository) RecentRetentionScores(ctx context.Context, userID string, days int) ([]float64, error) {
	log := logger.FromContext(ctx).WithPrefix("daily_session_repo")
	rows, err := r.db.QueryContext(ctx, `
SELECT retention_score FROM daily_sessions
WHERE user_id = ?
ORDER BY session_date DESC
LIMIT ?
`, userID, days)
	if err != nil {
		log.Error("failed to read recent retention scores: %v", err)
		return nil, err
	}
	defer rows.Close()
	var out []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
