package models

// ItemStatus is the lifecycle state of a UserItemState row.
type ItemStatus string

const (
	StatusLearning  ItemStatus = "LEARNING"
	StatusMemorized ItemStatus = "MEMORIZED"
	StatusReviewing ItemStatus = "REVIEWING"
	StatusPaused    ItemStatus = "PAUSED"
)

// ReviewTier is the checkpoint-derived (and promotion-gated) tier of an item.
type ReviewTier string

const (
	TierSabaq  ReviewTier = "SABAQ"
	TierSabqi  ReviewTier = "SABQI"
	TierManzil ReviewTier = "MANZIL"
)

// ScaffoldingLevel controls the session-protocol variant a user is run
// through (§4.7) and influences assessment outputs (§4.5).
type ScaffoldingLevel string

const (
	ScaffoldingBeginner ScaffoldingLevel = "BEGINNER"
	ScaffoldingStandard ScaffoldingLevel = "STANDARD"
	ScaffoldingMinimal  ScaffoldingLevel = "MINIMAL"
)

// ProgramVariant is the assessment-derived pacing profile.
type ProgramVariant string

const (
	VariantConservative ProgramVariant = "CONSERVATIVE"
	VariantStandard     ProgramVariant = "STANDARD"
	VariantMomentum     ProgramVariant = "MOMENTUM"
)

// QueueMode is the Today Queue's review/new-material posture for the day.
type QueueMode string

const (
	ModeNormal        QueueMode = "NORMAL"
	ModeReviewOnly    QueueMode = "REVIEW_ONLY"
	ModeConsolidation QueueMode = "CONSOLIDATION"
)

// SessionStatus is the lifecycle of a SessionRun.
type SessionStatus string

const (
	SessionActive    SessionStatus = "ACTIVE"
	SessionCompleted SessionStatus = "COMPLETED"
	SessionAbandoned SessionStatus = "ABANDONED"
)

// EventType discriminates the ReviewEvent sum type.
type EventType string

const (
	EventReviewAttempted     EventType = "REVIEW_ATTEMPTED"
	EventTransitionAttempted EventType = "TRANSITION_ATTEMPTED"
)

// StepType is a step in the 3x3 session protocol.
type StepType string

const (
	StepExposure StepType = "EXPOSURE"
	StepGuided   StepType = "GUIDED"
	StepBlind    StepType = "BLIND"
	StepLink     StepType = "LINK"
)

// SessionType labels which tier of work a session/event belongs to.
type SessionType string

const (
	SessionTypeSabaq  SessionType = "SABAQ"
	SessionTypeSabqi  SessionType = "SABQI"
	SessionTypeManzil SessionType = "MANZIL"
)

// FluencyTestStatus is the lifecycle of a FluencyGateTest.
type FluencyTestStatus string

const (
	FluencyInProgress FluencyTestStatus = "IN_PROGRESS"
	FluencyPassed     FluencyTestStatus = "PASSED"
	FluencyFailed     FluencyTestStatus = "FAILED"
)

// JuzBand buckets prior memorization experience for the Assessment Planner.
type JuzBand string

const (
	JuzBandZero      JuzBand = "ZERO"
	JuzBandOneToTwo  JuzBand = "ONE_TWO"
	JuzBandThreeFour JuzBand = "THREE_FOUR"
	JuzBandFivePlus  JuzBand = "FIVE_PLUS"
)

// TajwidConfidence is the user's self-reported tajwid confidence.
type TajwidConfidence string

const (
	TajwidLow    TajwidConfidence = "LOW"
	TajwidMedium TajwidConfidence = "MEDIUM"
	TajwidHigh   TajwidConfidence = "HIGH"
)

// BlockedReason explains why today's Sabaq task is disallowed (§4.6 step 9).
type BlockedReason string

const (
	BlockedNone           BlockedReason = "none"
	BlockedWarmupFailed   BlockedReason = "warmup_failed"
	BlockedModeReviewOnly BlockedReason = "mode_review_only"
	BlockedWarmupPending  BlockedReason = "warmup_pending"
)
