package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/hifzlab/scheduler/internal/ids"
	"github.com/hifzlab/scheduler/internal/logger"
	"github.com/hifzlab/scheduler/internal/models"
	"github.com/hifzlab/scheduler/internal/repository"
)

type eventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new EventRepository implementation backing
// the append-only review_events table (C3, §4.2).
func NewEventRepository(db *sql.DB) repository.EventRepository {
	return &eventRepository{db: db}
}

const eventColumns = `id, user_id, event_type, client_event_id, session_run_id, session_type, occurred_at, received_at,
	item_ayah_id, tier, step_type, attempt_number, scaffolding_used, linked_ayah_id, success, errors_count,
	duration_seconds, error_tags, from_ayah_id, to_ayah_id`

var eventColumnList = []string{
	"id", "user_id", "event_type", "client_event_id", "session_run_id", "session_type", "occurred_at", "received_at",
	"item_ayah_id", "tier", "step_type", "attempt_number", "scaffolding_used", "linked_ayah_id", "success", "errors_count",
	"duration_seconds", "error_tags", "from_ayah_id", "to_ayah_id",
}

func (r *eventRepository) Append(ctx context.Context, ev models.ReviewEvent) (string, bool, error) {
	log := logger.FromContext(ctx).WithPrefix("event_repo")

	if ev.ID == "" {
		ev.ID = ids.New()
	}
	if ev.ReceivedAt.IsZero() {
		ev.ReceivedAt = time.Now().UTC()
	}

	var errorTags *string
	if len(ev.ErrorTags) > 0 {
		b, err := json.Marshal(ev.ErrorTags)
		if err != nil {
			return "", false, err
		}
		s := string(b)
		errorTags = &s
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO review_events (`+eventColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(user_id, client_event_id) DO NOTHING
`, ev.ID, ev.UserID, ev.EventType, ev.ClientEventID, ev.SessionRunID, ev.SessionType, ev.OccurredAt, ev.ReceivedAt,
		ev.ItemAyahID, ev.Tier, ev.StepType, ev.AttemptNumber, ev.ScaffoldingUsed, ev.LinkedAyahID, ev.Success, ev.ErrorsCount,
		ev.DurationSeconds, errorTags, ev.FromAyahID, ev.ToAyahID)
	if err != nil {
		log.Error("failed to append event: %v", err)
		return "", false, err
	}

	var existingID string
	err = r.db.QueryRowContext(ctx, `SELECT id FROM review_events WHERE user_id = ? AND client_event_id = ?`, ev.UserID, ev.ClientEventID).Scan(&existingID)
	if err != nil {
		log.Error("failed to read back appended event: %v", err)
		return "", false, err
	}
	if existingID != ev.ID {
		log.Debug("event deduplicated: client_event_id=%s", ev.ClientEventID)
		return existingID, true, nil
	}
	return existingID, false, nil
}

func scanEvent(scanner interface{ Scan(...any) error }) (models.ReviewEvent, error) {
	var ev models.ReviewEvent
	var sessionRunID sql.NullString
	var tier, stepType, scaffoldingUsed sql.NullString
	var attemptNumber, linkedAyahID, itemAyahID, errorsCount, durationSeconds, fromAyahID, toAyahID sql.NullInt64
	var success sql.NullBool
	var errorTags sql.NullString

	err := scanner.Scan(&ev.ID, &ev.UserID, &ev.EventType, &ev.ClientEventID, &sessionRunID, &ev.SessionType, &ev.OccurredAt, &ev.ReceivedAt,
		&itemAyahID, &tier, &stepType, &attemptNumber, &scaffoldingUsed, &linkedAyahID, &success, &errorsCount,
		&durationSeconds, &errorTags, &fromAyahID, &toAyahID)
	if err != nil {
		return ev, err
	}

	if sessionRunID.Valid {
		ev.SessionRunID = &sessionRunID.String
	}
	if itemAyahID.Valid {
		v := int(itemAyahID.Int64)
		ev.ItemAyahID = &v
	}
	if tier.Valid {
		v := models.ReviewTier(tier.String)
		ev.Tier = &v
	}
	if stepType.Valid {
		v := models.StepType(stepType.String)
		ev.StepType = &v
	}
	if attemptNumber.Valid {
		v := int(attemptNumber.Int64)
		ev.AttemptNumber = &v
	}
	if scaffoldingUsed.Valid {
		v := models.ScaffoldingLevel(scaffoldingUsed.String)
		ev.ScaffoldingUsed = &v
	}
	if linkedAyahID.Valid {
		v := int(linkedAyahID.Int64)
		ev.LinkedAyahID = &v
	}
	if success.Valid {
		v := success.Bool
		ev.Success = &v
	}
	if errorsCount.Valid {
		v := int(errorsCount.Int64)
		ev.ErrorsCount = &v
	}
	if durationSeconds.Valid {
		v := int(durationSeconds.Int64)
		ev.DurationSeconds = &v
	}
	if errorTags.Valid {
		_ = json.Unmarshal([]byte(errorTags.String), &ev.ErrorTags)
	}
	if fromAyahID.Valid {
		v := int(fromAyahID.Int64)
		ev.FromAyahID = &v
	}
	if toAyahID.Valid {
		v := int(toAyahID.Int64)
		ev.ToAyahID = &v
	}
	return ev, nil
}

func (r *eventRepository) runQuery(ctx context.Context, query squirrel.SelectBuilder) ([]models.ReviewEvent, error) {
	log := logger.FromContext(ctx).WithPrefix("event_repo")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query events: %v", err)
		return nil, err
	}
	defer rows.Close()
	var out []models.ReviewEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			log.Error("failed to scan event: %v", err)
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// ForItem is the reducer's replay source (C4, §4.3): every REVIEW_ATTEMPTED
// event recorded against one (user, ayah) pair, oldest first.
func (r *eventRepository) ForItem(ctx context.Context, userID string, ayahID int) ([]models.ReviewEvent, error) {
	query := sqlBuilder.Select(eventColumnList...).From("review_events").
		Where(squirrel.Eq{"user_id": userID, "event_type": models.EventReviewAttempted, "item_ayah_id": ayahID}).
		OrderBy("occurred_at ASC", "id ASC")
	return r.runQuery(ctx, query)
}

func (r *eventRepository) ForSession(ctx context.Context, sessionRunID string) ([]models.ReviewEvent, error) {
	query := sqlBuilder.Select(eventColumnList...).From("review_events").
		Where(squirrel.Eq{"session_run_id": sessionRunID}).
		OrderBy("occurred_at ASC", "id ASC")
	return r.runQuery(ctx, query)
}

// ForUserSince feeds the Queue Planner's warm-up evaluation (§4.6): every
// event the user has recorded from the start of today onward.
func (r *eventRepository) ForUserSince(ctx context.Context, userID string, since time.Time) ([]models.ReviewEvent, error) {
	query := sqlBuilder.Select(eventColumnList...).From("review_events").
		Where(squirrel.Eq{"user_id": userID}).
		Where(squirrel.GtOrEq{"occurred_at": since}).
		OrderBy("occurred_at ASC", "id ASC")
	return r.runQuery(ctx, query)
}
