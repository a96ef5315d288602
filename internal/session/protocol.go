// Package session implements the 3x3 Session Protocol state machine (C8,
// §4.7): per-scaffolding step sequences, validation of submitted steps,
// and the deterministic event synthesis that channels every step through
// the Event Store.
package session

import "github.com/hifzlab/scheduler/internal/models"

// StepSpec is one step in a canonical protocol.
type StepSpec struct {
	Step     models.StepType `json:"step"`
	Attempts int             `json:"attempts"`
	Optional bool            `json:"optional"`
}

// Protocol is the ordered list of steps a scaffolding level requires.
type Protocol []StepSpec

// Protocols holds the canonical §4.7 table.
var Protocols = map[models.ScaffoldingLevel]Protocol{
	models.ScaffoldingBeginner: {
		{models.StepExposure, 3, false},
		{models.StepGuided, 3, false},
		{models.StepBlind, 3, false},
		{models.StepLink, 3, false},
	},
	models.ScaffoldingStandard: {
		{models.StepExposure, 3, false},
		{models.StepGuided, 1, false},
		{models.StepBlind, 3, false},
		{models.StepLink, 3, false},
	},
	models.ScaffoldingMinimal: {
		{models.StepExposure, 3, true},
		{models.StepGuided, 3, true},
		{models.StepBlind, 3, false},
		{models.StepLink, 3, false},
	},
}

// Counts is the observed (stepType -> count) multiset for one (session, ayah).
type Counts map[models.StepType]int

// Expected is the first non-optional unmet step, or Completed when every
// mandatory step has met its required attempts.
type Expected struct {
	Step      models.StepType
	Attempt   int
	Completed bool
}

func specFor(p Protocol, step models.StepType) (StepSpec, bool) {
	for _, s := range p {
		if s.Step == step {
			return s, true
		}
	}
	return StepSpec{}, false
}

// ExpectedFor computes the next mandatory step per §4.7.
func ExpectedFor(p Protocol, counts Counts) Expected {
	for _, spec := range p {
		if spec.Optional {
			continue
		}
		observed := counts[spec.Step]
		if observed < spec.Attempts {
			return Expected{Step: spec.Step, Attempt: observed + 1}
		}
	}
	return Expected{Completed: true}
}

// Validate checks a submitted step against the protocol and observed
// counts, per §4.7's three-rule validation. Returns the Expected used for
// the decision (useful for building the 409 response) and whether the
// submission is valid.
func Validate(p Protocol, counts Counts, step models.StepType, attempt int) (Expected, bool) {
	expected := ExpectedFor(p, counts)
	if expected.Completed {
		return expected, false
	}

	spec, ok := specFor(p, step)
	if !ok {
		return expected, false
	}

	if spec.Optional {
		if expected.Step != models.StepBlind {
			return expected, false
		}
		observed := counts[step]
		return expected, attempt == observed+1 && attempt <= spec.Attempts
	}

	return expected, step == expected.Step && attempt == expected.Attempt
}

// StepStatus classifies the post-submission state of the ayah within the
// session.
type StepStatus string

const (
	StepInProgress  StepStatus = "IN_PROGRESS"
	StepComplete    StepStatus = "STEP_COMPLETE"
	AyahComplete    StepStatus = "AYAH_COMPLETE"
)

// PostStatus computes step_status after counts have been updated to
// include the just-recorded submission.
func PostStatus(p Protocol, counts Counts, step models.StepType, attempt int) StepStatus {
	if ExpectedFor(p, counts).Completed {
		return AyahComplete
	}
	spec, ok := specFor(p, step)
	if ok && attempt >= spec.Attempts {
		return StepComplete
	}
	return StepInProgress
}
