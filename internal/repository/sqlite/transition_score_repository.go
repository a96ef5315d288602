package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hifzlab/scheduler/internal/logger"
	"github.com/hifzlab/scheduler/internal/models"
	"github.com/hifzlab/scheduler/internal/repository"
)

type transitionScoreRepository struct {
	db *sql.DB
}

// NewTransitionScoreRepository creates a new TransitionScoreRepository
// implementation (§3).
func NewTransitionScoreRepository(db *sql.DB) repository.TransitionScoreRepository {
	return &transitionScoreRepository{db: db}
}

const transitionScoreColumns = `user_id, from_ayah_id, to_ayah_id, attempt_count, success_count, last_practiced_at`

func scanTransitionScore(scanner interface{ Scan(...any) error }) (models.TransitionScore, error) {
	var t models.TransitionScore
	var lastPracticedAt sql.NullTime
	err := scanner.Scan(&t.UserID, &t.FromAyahID, &t.ToAyahID, &t.AttemptCount, &t.SuccessCount, &lastPracticedAt)
	if err != nil {
		return t, err
	}
	if lastPracticedAt.Valid {
		t.LastPracticedAt = lastPracticedAt.Time
	}
	return t, nil
}

func (r *transitionScoreRepository) Get(ctx context.Context, userID string, fromAyahID, toAyahID int) (*models.TransitionScore, error) {
	log := logger.FromContext(ctx).WithPrefix("transition_score_repo")
	row := r.db.QueryRowContext(ctx, `SELECT `+transitionScoreColumns+` FROM transition_scores WHERE user_id = ? AND from_ayah_id = ? AND to_ayah_id = ?`, userID, fromAyahID, toAyahID)
	t, err := scanTransitionScore(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get transition score: %v", err)
		return nil, err
	}
	return &t, nil
}

func (r *transitionScoreRepository) Upsert(ctx context.Context, t models.TransitionScore) error {
	log := logger.FromContext(ctx).WithPrefix("transition_score_repo")
	_, err := r.db.ExecContext(ctx, `
INSERT INTO transition_scores (`+transitionScoreColumns+`)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id, from_ayah_id, to_ayah_id) DO UPDATE SET
	attempt_count = excluded.attempt_count,
	success_count = excluded.success_count,
	last_practiced_at = excluded.last_practiced_at
`, t.UserID, t.FromAyahID, t.ToAyahID, t.AttemptCount, t.SuccessCount, t.LastPracticedAt)
	if err != nil {
		log.Error("failed to upsert transition score: %v", err)
	}
	return err
}

func (r *transitionScoreRepository) WeakForUser(ctx context.Context, userID string) ([]models.TransitionScore, error) {
	log := logger.FromContext(ctx).WithPrefix("transition_score_repo")
	rows, err := r.db.QueryContext(ctx, `
SELECT `+transitionScoreColumns+` FROM transition_scores
WHERE user_id = ? AND attempt_count >= 3 AND (CAST(success_count AS REAL) / attempt_count) < 0.70
ORDER BY (CAST(success_count AS REAL) / attempt_count) ASC
`, userID)
	if err != nil {
		log.Error("failed to list weak transitions: %v", err)
		return nil, err
	}
	defer rows.Close()
	var out []models.TransitionScore
	for rows.Next() {
		t, err := scanTransitionScore(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// StrongForUser lists transitions with the same minimum-attempt floor as
// WeakForUser but a success rate comfortably above it, for the progress
// view's "what's going well" counterpart.
func (r *transitionScoreRepository) StrongForUser(ctx context.Context, userID string) ([]models.TransitionScore, error) {
	log := logger.FromContext(ctx).WithPrefix("transition_score_repo")
	rows, err := r.db.QueryContext(ctx, `
SELECT `+transitionScoreColumns+` FROM transition_scores
WHERE user_id = ? AND attempt_count >= 3 AND (CAST(success_count AS REAL) / attempt_count) >= 0.90
ORDER BY (CAST(success_count AS REAL) / attempt_count) DESC
`, userID)
	if err != nil {
		log.Error("failed to list strong transitions: %v", err)
		return nil, err
	}
	defer rows.Close()
	var out []models.TransitionScore
	for rows.Next() {
		t, err := scanTransitionScore(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
