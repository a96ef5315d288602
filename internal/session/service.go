package session

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/hifzlab/scheduler/internal/apperr"
	"github.com/hifzlab/scheduler/internal/eventstore"
	"github.com/hifzlab/scheduler/internal/ids"
	"github.com/hifzlab/scheduler/internal/models"
	"github.com/hifzlab/scheduler/internal/queue"
	"github.com/hifzlab/scheduler/internal/repository"
	"github.com/hifzlab/scheduler/internal/rollup"
)

// Service runs the Session Protocol (C8, §4.7) on top of the Event Store.
type Service struct {
	sessions repository.SessionRepository
	events   repository.EventRepository
	users    repository.UserRepository
	store    *eventstore.Store
	queue    *queue.Planner
	rollup   *rollup.Rollup
}

// NewService wires a Service to its repositories, the Event Store, the
// Queue Planner (for the completion-time re-evaluation §4.8 requires), and
// the Daily Session Rollup.
func NewService(sessions repository.SessionRepository, events repository.EventRepository, users repository.UserRepository, store *eventstore.Store, planner *queue.Planner, roll *rollup.Rollup) *Service {
	return &Service{sessions: sessions, events: events, users: users, store: store, queue: planner, rollup: roll}
}

// Start opens a new SessionRun, rejecting a fluency-gate-blocked user. If
// clientSessionID is supplied and a run already exists for (userId,
// clientSessionId), that run is returned instead (idempotent start, §3).
func (s *Service) Start(ctx context.Context, userID string, clientSessionID *string, mode models.QueueMode, warmupPassed bool, now time.Time) (models.SessionRun, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return models.SessionRun{}, apperr.NewInternalError(err)
	}
	if user == nil {
		return models.SessionRun{}, apperr.NewNotFoundError("user", userID)
	}
	plan, err := s.queue.Build(ctx, *user, now)
	if err != nil {
		return models.SessionRun{}, apperr.NewInternalError(err)
	}
	if plan.FluencyGateRequired {
		return models.SessionRun{}, apperr.NewPreconditionError("user is fluency-gate-blocked")
	}

	if clientSessionID != nil {
		existing, err := s.sessions.GetByClientID(ctx, userID, *clientSessionID)
		if err != nil {
			return models.SessionRun{}, apperr.NewInternalError(err)
		}
		if existing != nil {
			return *existing, nil
		}
	}

	run := models.SessionRun{
		ID:              ids.New(),
		UserID:          userID,
		ClientSessionID: clientSessionID,
		Mode:            mode,
		WarmupPassed:    warmupPassed,
		Status:          models.SessionActive,
		StartedAt:       now,
	}
	if err := s.sessions.Insert(ctx, run); err != nil {
		return models.SessionRun{}, apperr.NewInternalError(err)
	}
	return run, nil
}

// StepSubmission is a client's attempt at one step of the protocol.
type StepSubmission struct {
	SessionID       string
	AyahID          int
	StepType        models.StepType
	AttemptNumber   int
	ScaffoldingUsed models.ScaffoldingLevel
	LinkedAyahID    *int
	Success         bool
	ErrorsCount     int
	DurationSeconds int
	ErrorTags       []string
	Now             time.Time
}

// StepResult is §4.7's `{recorded, next_step, next_attempt, step_status,
// protocol, progress}` response.
type StepResult struct {
	Recorded    bool
	NextStep    models.StepType
	NextAttempt int
	StepStatus  StepStatus
	Protocol    Protocol
	Progress    Counts
}

// StepComplete validates and (if valid) records one submitted step,
// channeling it through the Event Store so replay reproduces the same
// outcome (§4.7's invariant).
func (s *Service) StepComplete(ctx context.Context, sub StepSubmission) (StepResult, error) {
	run, err := s.sessions.Get(ctx, sub.SessionID)
	if err != nil {
		return StepResult{}, apperr.NewInternalError(err)
	}
	if run == nil {
		return StepResult{}, apperr.NewNotFoundError("sessionRun", sub.SessionID)
	}
	if run.Status != models.SessionActive {
		return StepResult{}, apperr.NewConflictError("session is not active")
	}

	protocol, ok := Protocols[sub.ScaffoldingUsed]
	if !ok {
		return StepResult{}, apperr.NewValidationError("scaffoldingUsed", "unknown scaffolding level")
	}

	priorEvents, err := s.events.ForSession(ctx, sub.SessionID)
	if err != nil {
		return StepResult{}, apperr.NewInternalError(err)
	}
	counts := countsFor(priorEvents, sub.AyahID)

	expected, valid := Validate(protocol, counts, sub.StepType, sub.AttemptNumber)
	if !valid {
		return StepResult{}, apperr.NewInvalidStepSequenceError("step out of sequence", map[string]any{
			"expected_step":    string(expected.Step),
			"expected_attempt": expected.Attempt,
			"protocol":         protocol,
			"completed":        expected.Completed,
		})
	}

	clientEventID := ids.DeterministicEventID(sub.SessionID, strconv.Itoa(sub.AyahID), string(sub.StepType), strconv.Itoa(sub.AttemptNumber))
	tier := models.TierSabaq
	sessionType := models.SessionTypeSabaq
	ayahID := sub.AyahID
	stepType := sub.StepType
	attempt := sub.AttemptNumber
	scaffolding := sub.ScaffoldingUsed
	success := sub.Success
	errorsCount := sub.ErrorsCount
	duration := sub.DurationSeconds

	result, err := s.store.Ingest(ctx, models.ReviewEvent{
		UserID:          run.UserID,
		EventType:       models.EventReviewAttempted,
		ClientEventID:   clientEventID,
		SessionRunID:    &sub.SessionID,
		SessionType:     sessionType,
		OccurredAt:      sub.Now,
		ItemAyahID:      &ayahID,
		Tier:            &tier,
		StepType:        &stepType,
		AttemptNumber:   &attempt,
		ScaffoldingUsed: &scaffolding,
		LinkedAyahID:    sub.LinkedAyahID,
		Success:         &success,
		ErrorsCount:     &errorsCount,
		DurationSeconds: &duration,
		ErrorTags:       sub.ErrorTags,
	})
	if err != nil {
		return StepResult{}, err
	}

	counts[sub.StepType] = counts[sub.StepType] + 1
	status := PostStatus(protocol, counts, sub.StepType, sub.AttemptNumber)
	next := ExpectedFor(protocol, counts)

	return StepResult{
		Recorded:    !result.Deduplicated,
		NextStep:    next.Step,
		NextAttempt: next.Attempt,
		StepStatus:  status,
		Protocol:    protocol,
		Progress:    counts,
	}, nil
}

func countsFor(events []models.ReviewEvent, ayahID int) Counts {
	counts := Counts{}
	for _, ev := range events {
		if ev.EventType == models.EventReviewAttempted && ev.ItemAyahID != nil && *ev.ItemAyahID == ayahID && ev.StepType != nil {
			counts[*ev.StepType]++
		}
	}
	return counts
}

// Complete runs the session-completion half of the Daily Session Rollup
// (C9, §4.8): mark the run COMPLETED exactly once, re-evaluate the queue
// (rejecting completion if the user has become fluency-gate-blocked), and
// upsert the DailySession aggregate.
func (s *Service) Complete(ctx context.Context, sessionID string, now time.Time) (models.SessionRun, error) {
	run, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return models.SessionRun{}, apperr.NewInternalError(err)
	}
	if run == nil {
		return models.SessionRun{}, apperr.NewNotFoundError("sessionRun", sessionID)
	}
	if run.Status != models.SessionActive {
		return models.SessionRun{}, apperr.NewConflictError("session already terminal")
	}

	user, err := s.users.Get(ctx, run.UserID)
	if err != nil {
		return models.SessionRun{}, apperr.NewInternalError(err)
	}
	if user == nil {
		return models.SessionRun{}, apperr.NewNotFoundError("user", run.UserID)
	}

	plan, err := s.queue.Build(ctx, *user, now)
	if err != nil {
		return models.SessionRun{}, apperr.NewInternalError(err)
	}
	if plan.FluencyGateRequired {
		return models.SessionRun{}, apperr.NewPreconditionError("user is fluency-gate-blocked")
	}

	events, err := s.events.ForSession(ctx, sessionID)
	if err != nil {
		return models.SessionRun{}, apperr.NewInternalError(err)
	}
	var totalSeconds int
	for _, ev := range events {
		if ev.DurationSeconds != nil {
			totalSeconds += *ev.DurationSeconds
		}
	}
	minutesTotal := int(math.Ceil(float64(totalSeconds) / 60))

	ok, err := s.sessions.CompleteOnce(ctx, sessionID, models.SessionCompleted, now, run.EventsCount, minutesTotal)
	if err != nil {
		return models.SessionRun{}, apperr.NewInternalError(err)
	}
	if !ok {
		return models.SessionRun{}, apperr.NewConflictError("session already terminal")
	}
	run.Status = models.SessionCompleted
	run.MinutesTotal = minutesTotal
	endedAt := now
	run.EndedAt = &endedAt

	if err := s.rollup.Apply(ctx, *run, plan.BacklogMinutesEst, plan.OverdueDaysMax, now); err != nil {
		return models.SessionRun{}, apperr.NewInternalError(err)
	}

	return *run, nil
}
