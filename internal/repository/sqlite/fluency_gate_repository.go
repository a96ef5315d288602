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

type fluencyGateRepository struct {
	db *sql.DB
}

// NewFluencyGateRepository creates a new FluencyGateRepository
// implementation backing FluencyGateTest lifecycle (C5, §4.4).
func NewFluencyGateRepository(db *sql.DB) repository.FluencyGateRepository {
	return &fluencyGateRepository{db: db}
}

const fluencyGateColumns = `id, user_id, status, test_page, duration_seconds, error_count, fluency_score, started_at, completed_at`

func scanFluencyGate(scanner interface{ Scan(...any) error }) (models.FluencyGateTest, error) {
	var f models.FluencyGateTest
	var durationSeconds, errorCount sql.NullInt64
	var fluencyScore sql.NullFloat64
	var completedAt sql.NullTime
	err := scanner.Scan(&f.ID, &f.UserID, &f.Status, &f.TestPage, &durationSeconds, &errorCount, &fluencyScore, &f.StartedAt, &completedAt)
	if err != nil {
		return f, err
	}
	if durationSeconds.Valid {
		v := int(durationSeconds.Int64)
		f.DurationSeconds = &v
	}
	if errorCount.Valid {
		v := int(errorCount.Int64)
		f.ErrorCount = &v
	}
	if fluencyScore.Valid {
		f.FluencyScore = &fluencyScore.Float64
	}
	if completedAt.Valid {
		f.CompletedAt = &completedAt.Time
	}
	return f, nil
}

func (r *fluencyGateRepository) Get(ctx context.Context, id string) (*models.FluencyGateTest, error) {
	log := logger.FromContext(ctx).WithPrefix("fluency_gate_repo")
	row := r.db.QueryRowContext(ctx, `SELECT `+fluencyGateColumns+` FROM fluency_gate_tests WHERE id = ?`, id)
	f, err := scanFluencyGate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get fluency gate test: %v", err)
		return nil, err
	}
	return &f, nil
}

func (r *fluencyGateRepository) Insert(ctx context.Context, f models.FluencyGateTest) error {
	log := logger.FromContext(ctx).WithPrefix("fluency_gate_repo")
	_, err := r.db.ExecContext(ctx, `
INSERT INTO fluency_gate_tests (`+fluencyGateColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`, f.ID, f.UserID, f.Status, f.TestPage, f.DurationSeconds, f.ErrorCount, f.FluencyScore, f.StartedAt, f.CompletedAt)
	if err != nil {
		log.Error("failed to insert fluency gate test: %v", err)
	}
	return err
}

func (r *fluencyGateRepository) CompleteOnce(ctx context.Context, id string, status models.FluencyTestStatus, durationSeconds, errorCount int, score float64, completedAt time.Time) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("fluency_gate_repo")
	res, err := r.db.ExecContext(ctx, `
UPDATE fluency_gate_tests SET status = ?, duration_seconds = ?, error_count = ?, fluency_score = ?, completed_at = ?
WHERE id = ? AND status = ?
`, status, durationSeconds, errorCount, score, completedAt, id, models.FluencyInProgress)
	if err != nil {
		log.Error("failed to complete fluency gate test: %v", err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *fluencyGateRepository) LatestForUser(ctx context.Context, userID string) (*models.FluencyGateTest, error) {
	log := logger.FromContext(ctx).WithPrefix("fluency_gate_repo")
	row := r.db.QueryRowContext(ctx, `SELECT `+fluencyGateColumns+` FROM fluency_gate_tests WHERE user_id = ? ORDER BY started_at DESC LIMIT 1`, userID)
	f, err := scanFluencyGate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get latest fluency gate test: %v", err)
		return nil, err
	}
	return &f, nil
}
