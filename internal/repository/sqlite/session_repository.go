package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hifzlab/scheduler/internal/logger"
	"github.com/hifzlab/scheduler/internal/models"
	"github.com/hifzlab/scheduler/internal/repository"
)

type sessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository implementation
// backing SessionRun lifecycle (C8, §4.7).
func NewSessionRepository(db *sql.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

const sessionColumns = `id, user_id, client_session_id, mode, warmup_passed, status, started_at, ended_at, events_count, minutes_total`

func scanSession(scanner interface{ Scan(...any) error }) (models.SessionRun, error) {
	var s models.SessionRun
	var clientSessionID sql.NullString
	var endedAt sql.NullTime
	err := scanner.Scan(&s.ID, &s.UserID, &clientSessionID, &s.Mode, &s.WarmupPassed, &s.Status, &s.StartedAt, &endedAt, &s.EventsCount, &s.MinutesTotal)
	if err != nil {
		return s, err
	}
	if clientSessionID.Valid {
		s.ClientSessionID = &clientSessionID.String
	}
	if endedAt.Valid {
		s.EndedAt = &endedAt.Time
	}
	return s, nil
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*models.SessionRun, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	row := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM session_runs WHERE id = ?`, id)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get session: %v", err)
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepository) GetByClientID(ctx context.Context, userID, clientSessionID string) (*models.SessionRun, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	row := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM session_runs WHERE user_id = ? AND client_session_id = ?`, userID, clientSessionID)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get session by client id: %v", err)
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepository) Insert(ctx context.Context, s models.SessionRun) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	_, err := r.db.ExecContext(ctx, `
INSERT INTO session_runs (`+sessionColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, s.ID, s.UserID, s.ClientSessionID, s.Mode, s.WarmupPassed, s.Status, s.StartedAt, s.EndedAt, s.EventsCount, s.MinutesTotal)
	if err != nil {
		log.Error("failed to insert session: %v", err)
	}
	return err
}

func (r *sessionRepository) CompleteOnce(ctx context.Context, id string, status models.SessionStatus, endedAt time.Time, eventsCount, minutesTotal int) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	res, err := r.db.ExecContext(ctx, `
UPDATE session_runs SET status = ?, ended_at = ?, events_count = ?, minutes_total = ?
WHERE id = ? AND status = ?
`, status, endedAt, eventsCount, minutesTotal, id, models.SessionActive)
	if err != nil {
		log.Error("failed to complete session: %v", err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *sessionRepository) IncrementCounts(ctx context.Context, id string, events int, minutes int) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	_, err := r.db.ExecContext(ctx, `UPDATE session_runs SET events_count = events_count + ?, minutes_total = minutes_total + ? WHERE id = ?`, events, minutes, id)
	if err != nil {
		log.Error("failed to increment session counts: %v", err)
	}
	return err
}
