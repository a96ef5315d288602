package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/hifzlab/scheduler/internal/logger"
	"github.com/hifzlab/scheduler/internal/models"
	"github.com/hifzlab/scheduler/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

type itemStateRepository struct {
	db *sql.DB
}

// NewItemStateRepository creates a new ItemStateRepository implementation
// backing the reducer's output table (C4, §4.3).
func NewItemStateRepository(db *sql.DB) repository.ItemStateRepository {
	return &itemStateRepository{db: db}
}

var itemStateColumnList = []string{
	"user_id", "ayah_id", "status", "tier", "next_review_at", "review_interval_seconds",
	"interval_checkpoint_index", "introduced_at", "first_memorized_at", "difficulty_score", "total_reviews",
	"successful_reviews", "lapses", "success_streak", "consecutive_perfect_days", "last_perfect_day",
	"average_duration_seconds", "last_errors_count", "last_reviewed_at", "last_event_occurred_at",
}

const itemStateColumns = `user_id, ayah_id, status, tier, next_review_at, review_interval_seconds,
	interval_checkpoint_index, introduced_at, first_memorized_at, difficulty_score, total_reviews,
	successful_reviews, lapses, success_streak, consecutive_perfect_days, last_perfect_day,
	average_duration_seconds, last_errors_count, last_reviewed_at, last_event_occurred_at`

func scanItemState(scanner interface{ Scan(...any) error }) (models.UserItemState, error) {
	var s models.UserItemState
	var firstMemorizedAt, lastReviewedAt, lastEventOccurredAt sql.NullTime
	err := scanner.Scan(&s.UserID, &s.AyahID, &s.Status, &s.Tier, &s.NextReviewAt, &s.ReviewIntervalSeconds,
		&s.IntervalCheckpointIndex, &s.IntroducedAt, &firstMemorizedAt, &s.DifficultyScore, &s.TotalReviews,
		&s.SuccessfulReviews, &s.Lapses, &s.SuccessStreak, &s.ConsecutivePerfectDays, &s.LastPerfectDay,
		&s.AverageDurationSeconds, &s.LastErrorsCount, &lastReviewedAt, &lastEventOccurredAt)
	if err != nil {
		return s, err
	}
	if firstMemorizedAt.Valid {
		s.FirstMemorizedAt = &firstMemorizedAt.Time
	}
	if lastReviewedAt.Valid {
		s.LastReviewedAt = lastReviewedAt.Time
	}
	if lastEventOccurredAt.Valid {
		s.LastEventOccurredAt = lastEventOccurredAt.Time
	}
	return s, nil
}

func (r *itemStateRepository) Get(ctx context.Context, userID string, ayahID int) (*models.UserItemState, error) {
	log := logger.FromContext(ctx).WithPrefix("item_state_repo")

	query, args, err := sqlBuilder.Select(itemStateColumnList...).From("user_item_states").
		Where(squirrel.Eq{"user_id": userID, "ayah_id": ayahID}).ToSql()
	if err != nil {
		return nil, err
	}

	s, err := scanItemState(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get item state: %v", err)
		return nil, err
	}
	return &s, nil
}

func (r *itemStateRepository) Upsert(ctx context.Context, s models.UserItemState) error {
	log := logger.FromContext(ctx).WithPrefix("item_state_repo")
	_, err := r.db.ExecContext(ctx, `
INSERT INTO user_item_states (`+itemStateColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id, ayah_id) DO UPDATE SET
	status = excluded.status, tier = excluded.tier, next_review_at = excluded.next_review_at,
	review_interval_seconds = excluded.review_interval_seconds,
	interval_checkpoint_index = excluded.interval_checkpoint_index,
	first_memorized_at = excluded.first_memorized_at, difficulty_score = excluded.difficulty_score,
	total_reviews = excluded.total_reviews, successful_reviews = excluded.successful_reviews,
	lapses = excluded.lapses, success_streak = excluded.success_streak,
	consecutive_perfect_days = excluded.consecutive_perfect_days, last_perfect_day = excluded.last_perfect_day,
	average_duration_seconds = excluded.average_duration_seconds, last_errors_count = excluded.last_errors_count,
	last_reviewed_at = excluded.last_reviewed_at, last_event_occurred_at = excluded.last_event_occurred_at
`, s.UserID, s.AyahID, s.Status, s.Tier, s.NextReviewAt, s.ReviewIntervalSeconds,
		s.IntervalCheckpointIndex, s.IntroducedAt, s.FirstMemorizedAt, s.DifficultyScore, s.TotalReviews,
		s.SuccessfulReviews, s.Lapses, s.SuccessStreak, s.ConsecutivePerfectDays, s.LastPerfectDay,
		s.AverageDurationSeconds, s.LastErrorsCount, s.LastReviewedAt, s.LastEventOccurredAt)
	if err != nil {
		log.Error("failed to upsert item state: %v", err)
	}
	return err
}

func (r *itemStateRepository) listQuery(ctx context.Context, query squirrel.SelectBuilder) ([]models.UserItemState, error) {
	log := logger.FromContext(ctx).WithPrefix("item_state_repo")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to list item states: %v", err)
		return nil, err
	}
	defer rows.Close()
	var out []models.UserItemState
	for rows.Next() {
		s, err := scanItemState(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DueBefore lists items whose next_review_at has passed cutoff, ordered so
// the Queue Planner's debt and risk scans see the most overdue items first.
func (r *itemStateRepository) DueBefore(ctx context.Context, userID string, cutoff time.Time) ([]models.UserItemState, error) {
	query := sqlBuilder.Select(itemStateColumnList...).From("user_item_states").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.LtOrEq{"next_review_at": cutoff}).
		OrderBy("next_review_at ASC")
	return r.listQuery(ctx, query)
}

func (r *itemStateRepository) ByTier(ctx context.Context, userID string, tier models.ReviewTier) ([]models.UserItemState, error) {
	query := sqlBuilder.Select(itemStateColumnList...).From("user_item_states").
		Where(squirrel.Eq{"user_id": userID, "tier": tier}).
		OrderBy("next_review_at ASC")
	return r.listQuery(ctx, query)
}

func (r *itemStateRepository) ListForUser(ctx context.Context, userID string) ([]models.UserItemState, error) {
	query := sqlBuilder.Select(itemStateColumnList...).From("user_item_states").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("ayah_id ASC")
	return r.listQuery(ctx, query)
}

func (r *itemStateRepository) CountByStatus(ctx context.Context, userID string, status models.ItemStatus) (int, error) {
	query, args, err := sqlBuilder.Select("COUNT(*)").From("user_item_states").
		Where(squirrel.Eq{"user_id": userID, "status": status}).ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

func (r *itemStateRepository) CountDue(ctx context.Context, userID string, now time.Time) (int, error) {
	query, args, err := sqlBuilder.Select("COUNT(*)").From("user_item_states").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.LtOrEq{"next_review_at": now}).ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}
