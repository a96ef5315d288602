// Package fluency implements the page-read competence check gating queue
// entry (C5, §4.4).
package fluency

import (
	"context"
	"math/rand"
	"time"

	"github.com/hifzlab/scheduler/internal/apperr"
	"github.com/hifzlab/scheduler/internal/ids"
	"github.com/hifzlab/scheduler/internal/models"
	"github.com/hifzlab/scheduler/internal/repository"
)

// Gate is the Fluency Gate service.
type Gate struct {
	ayahs      repository.AyahRepository
	tests      repository.FluencyGateRepository
	users      repository.UserRepository
	itemStates repository.ItemStateRepository
}

// NewGate wires a Gate to its repositories.
func NewGate(ayahs repository.AyahRepository, tests repository.FluencyGateRepository, users repository.UserRepository, itemStates repository.ItemStateRepository) *Gate {
	return &Gate{ayahs: ayahs, tests: tests, users: users, itemStates: itemStates}
}

// Start picks a page the user has not yet memorized (falling back to any
// page when every seeded page has been), creates an IN_PROGRESS test, and
// returns the test plus that page's ayahs.
func (g *Gate) Start(ctx context.Context, userID string) (models.FluencyGateTest, []models.Ayah, error) {
	all, err := g.ayahs.List(ctx)
	if err != nil {
		return models.FluencyGateTest{}, nil, apperr.NewInternalError(err)
	}
	if len(all) == 0 {
		return models.FluencyGateTest{}, nil, apperr.NewConflictError("ayah corpus is not seeded")
	}

	states, err := g.itemStates.ListForUser(ctx, userID)
	if err != nil {
		return models.FluencyGateTest{}, nil, apperr.NewInternalError(err)
	}
	memorizedAyah := make(map[int]bool, len(states))
	for _, st := range states {
		if st.Status == models.StatusMemorized {
			memorizedAyah[st.AyahID] = true
		}
	}

	var unmemorized []models.Ayah
	for _, a := range all {
		if !memorizedAyah[a.ID] {
			unmemorized = append(unmemorized, a)
		}
	}

	pages := distinctPages(all)
	if unmemorizedPages := distinctPages(unmemorized); len(unmemorizedPages) > 0 {
		pages = unmemorizedPages
	}
	page := pages[rand.Intn(len(pages))]

	test := models.FluencyGateTest{
		ID:        ids.New(),
		UserID:    userID,
		Status:    models.FluencyInProgress,
		TestPage:  page,
		StartedAt: time.Now().UTC(),
	}
	if err := g.tests.Insert(ctx, test); err != nil {
		return models.FluencyGateTest{}, nil, apperr.NewInternalError(err)
	}

	pageAyahs, err := g.ayahs.ListByPage(ctx, page)
	if err != nil {
		return models.FluencyGateTest{}, nil, apperr.NewInternalError(err)
	}
	return test, pageAyahs, nil
}

func distinctPages(ayahs []models.Ayah) []int {
	seen := make(map[int]bool)
	var pages []int
	for _, a := range ayahs {
		if !seen[a.PageNumber] {
			seen[a.PageNumber] = true
			pages = append(pages, a.PageNumber)
		}
	}
	return pages
}

// SubmitResult mirrors §4.4's scoring breakdown.
type SubmitResult struct {
	TimeScore     float64
	AccuracyScore float64
	FluencyScore  float64
	Passed        bool
}

// Submit scores a completed test and applies the pass/fail transition to
// the user. Only an IN_PROGRESS test may be submitted.
func (g *Gate) Submit(ctx context.Context, testID string, durationSeconds, errorCount int) (SubmitResult, error) {
	test, err := g.tests.Get(ctx, testID)
	if err != nil {
		return SubmitResult{}, apperr.NewInternalError(err)
	}
	if test == nil || test.Status != models.FluencyInProgress {
		return SubmitResult{}, apperr.NewNotFoundError("fluencyGateTest", testID)
	}

	timeScore := Score(durationSeconds)
	accuracyScore := AccuracyScore(errorCount)
	total := timeScore + accuracyScore
	passed := total >= 70

	status := models.FluencyFailed
	if passed {
		status = models.FluencyPassed
	}

	ok, err := g.tests.CompleteOnce(ctx, testID, status, durationSeconds, errorCount, total, time.Now().UTC())
	if err != nil {
		return SubmitResult{}, apperr.NewInternalError(err)
	}
	if !ok {
		return SubmitResult{}, apperr.NewNotFoundError("fluencyGateTest", testID)
	}

	user, err := g.users.Get(ctx, test.UserID)
	if err != nil {
		return SubmitResult{}, apperr.NewInternalError(err)
	}
	if user == nil {
		return SubmitResult{}, apperr.NewNotFoundError("user", test.UserID)
	}
	score := total
	user.FluencyScore = &score
	user.FluencyGatePassed = passed
	user.RequiresPreHifz = !passed
	if err := g.users.Update(ctx, *user); err != nil {
		return SubmitResult{}, apperr.NewInternalError(err)
	}

	return SubmitResult{TimeScore: timeScore, AccuracyScore: accuracyScore, FluencyScore: total, Passed: passed}, nil
}

// Score is the time component of the fluency score.
func Score(durationSeconds int) float64 {
	if durationSeconds < 180 {
		return 50
	}
	v := 50 - float64(durationSeconds-180)/6
	if v < 0 {
		return 0
	}
	return v
}

// AccuracyScore is the accuracy component of the fluency score.
func AccuracyScore(errorCount int) float64 {
	if errorCount < 5 {
		return 50
	}
	v := 50 - float64(errorCount-5)*5
	if v < 0 {
		return 0
	}
	return v
}
