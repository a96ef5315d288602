package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hifzlab/scheduler/internal/models"
	"github.com/hifzlab/scheduler/internal/session"
)

// S5: first submission to a fresh STANDARD ayah must be EXPOSURE attempt 1.
func TestValidate_S5_StepSequenceViolation(t *testing.T) {
	p := session.Protocols[models.ScaffoldingStandard]
	expected, ok := session.Validate(p, session.Counts{}, models.StepLink, 1)
	assert.False(t, ok)
	assert.Equal(t, models.StepExposure, expected.Step)
	assert.Equal(t, 1, expected.Attempt)
}

func TestExpectedFor_StandardProtocol(t *testing.T) {
	p := session.Protocols[models.ScaffoldingStandard]

	e := session.ExpectedFor(p, session.Counts{})
	assert.Equal(t, models.StepExposure, e.Step)
	assert.Equal(t, 1, e.Attempt)

	e = session.ExpectedFor(p, session.Counts{models.StepExposure: 3})
	assert.Equal(t, models.StepGuided, e.Step)
	assert.Equal(t, 1, e.Attempt)

	e = session.ExpectedFor(p, session.Counts{models.StepExposure: 3, models.StepGuided: 1, models.StepBlind: 3, models.StepLink: 3})
	assert.True(t, e.Completed)
}

func TestValidate_MinimalOptionalSteps(t *testing.T) {
	p := session.Protocols[models.ScaffoldingMinimal]

	// Optional EXPOSURE is not required before BLIND.
	expected, ok := session.Validate(p, session.Counts{}, models.StepBlind, 1)
	assert.True(t, ok)
	assert.Equal(t, models.StepBlind, expected.Step)

	// But skipping to LINK before BLIND is complete is still rejected.
	_, ok = session.Validate(p, session.Counts{}, models.StepLink, 1)
	assert.False(t, ok)

	// Optional EXPOSURE can still be submitted once BLIND is reachable.
	expected, ok = session.Validate(p, session.Counts{}, models.StepExposure, 1)
	assert.True(t, ok)
	assert.Equal(t, models.StepBlind, expected.Step)
}

func TestValidate_OptionalStepRejectsOutOfOrderAttempt(t *testing.T) {
	p := session.Protocols[models.ScaffoldingMinimal]
	_, ok := session.Validate(p, session.Counts{models.StepExposure: 1}, models.StepExposure, 3)
	assert.False(t, ok)
}

func TestPostStatus(t *testing.T) {
	p := session.Protocols[models.ScaffoldingStandard]

	assert.Equal(t, session.StepInProgress, session.PostStatus(p, session.Counts{models.StepExposure: 1}, models.StepExposure, 1))
	assert.Equal(t, session.StepComplete, session.PostStatus(p, session.Counts{models.StepExposure: 3}, models.StepExposure, 3))
	assert.Equal(t, session.AyahComplete, session.PostStatus(p, session.Counts{models.StepExposure: 3, models.StepGuided: 1, models.StepBlind: 3, models.StepLink: 3}, models.StepLink, 3))
}
