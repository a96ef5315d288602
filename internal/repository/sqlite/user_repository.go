package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hifzlab/scheduler/internal/logger"
	"github.com/hifzlab/scheduler/internal/models"
	"github.com/hifzlab/scheduler/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository implementation.
func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, time_budget_minutes, fluency_score, fluency_gate_passed, requires_pre_hifz,
	scaffolding_level, variant, daily_new_target_ayahs, review_ratio_target, retention_threshold,
	backlog_freeze_ratio, consolidation_retention_floor, manzil_rotation_days, avg_seconds_per_item,
	overdue_cap_seconds, prior_juz_band, goal, has_teacher, tajwid_confidence, created_at`

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	var fluencyScore sql.NullFloat64
	err := row.Scan(&u.ID, &u.Email, &u.TimeBudgetMinutes, &fluencyScore, &u.FluencyGatePassed, &u.RequiresPreHifz,
		&u.ScaffoldingLevel, &u.Variant, &u.DailyNewTargetAyahs, &u.ReviewRatioTarget, &u.RetentionThreshold,
		&u.BacklogFreezeRatio, &u.ConsolidationRetentionFloor, &u.ManzilRotationDays, &u.AvgSecondsPerItem,
		&u.OverdueCapSeconds, &u.PriorJuzBand, &u.Goal, &u.HasTeacher, &u.TajwidConfidence, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	if fluencyScore.Valid {
		u.FluencyScore = &fluencyScore.Float64
	}
	return &u, nil
}

func (r *userRepository) Get(ctx context.Context, id string) (*models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get user: %v", err)
		return nil, err
	}
	return u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get user by email: %v", err)
		return nil, err
	}
	return u, nil
}

func (r *userRepository) Insert(ctx context.Context, u models.User) error {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (id, email, time_budget_minutes, fluency_score, fluency_gate_passed, requires_pre_hifz,
	scaffolding_level, variant, daily_new_target_ayahs, review_ratio_target, retention_threshold,
	backlog_freeze_ratio, consolidation_retention_floor, manzil_rotation_days, avg_seconds_per_item,
	overdue_cap_seconds, prior_juz_band, goal, has_teacher, tajwid_confidence, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, u.ID, u.Email, u.TimeBudgetMinutes, u.FluencyScore, u.FluencyGatePassed, u.RequiresPreHifz,
		u.ScaffoldingLevel, u.Variant, u.DailyNewTargetAyahs, u.ReviewRatioTarget, u.RetentionThreshold,
		u.BacklogFreezeRatio, u.ConsolidationRetentionFloor, u.ManzilRotationDays, u.AvgSecondsPerItem,
		u.OverdueCapSeconds, u.PriorJuzBand, u.Goal, u.HasTeacher, u.TajwidConfidence, u.CreatedAt)
	if err != nil {
		log.Error("failed to insert user: %v", err)
	}
	return err
}

func (r *userRepository) Update(ctx context.Context, u models.User) error {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	_, err := r.db.ExecContext(ctx, `
UPDATE users SET email = ?, time_budget_minutes = ?, fluency_score = ?, fluency_gate_passed = ?,
	requires_pre_hifz = ?, scaffolding_level = ?, variant = ?, daily_new_target_ayahs = ?,
	review_ratio_target = ?, retention_threshold = ?, backlog_freeze_ratio = ?,
	consolidation_retention_floor = ?, manzil_rotation_days = ?, avg_seconds_per_item = ?,
	overdue_cap_seconds = ?, prior_juz_band = ?, goal = ?, has_teacher = ?, tajwid_confidence = ?
WHERE id = ?
`, u.Email, u.TimeBudgetMinutes, u.FluencyScore, u.FluencyGatePassed, u.RequiresPreHifz,
		u.ScaffoldingLevel, u.Variant, u.DailyNewTargetAyahs, u.ReviewRatioTarget, u.RetentionThreshold,
		u.BacklogFreezeRatio, u.ConsolidationRetentionFloor, u.ManzilRotationDays, u.AvgSecondsPerItem,
		u.OverdueCapSeconds, u.PriorJuzBand, u.Goal, u.HasTeacher, u.TajwidConfidence, u.ID)
	if err != nil {
		log.Error("failed to update user: %v", err)
	}
	return err
}
