/*
Package limitation decides whether a claim's right to sue, or the right to
enforce a judgment, has lapsed as of a filing date.

PURPOSE:
  Two structurally similar but legally distinct computations:
  - General limitation: the period to assert a claim in court. 2 or 3 years
    depending on where the original period fell relative to the 2017-10-01
    statutory reform, restartable by qualifying interruption events,
    extendable by qualifying suspension events.
  - Execution period: the separate, fixed 2-year period to enforce an
    already-effective judgment or award, with its own start-date scenarios
    and a narrower set of qualifying interruptions.

EVENT FOLD:
  The computed timeline is a left-fold over the case's events in
  chronological order, carrying {current expiration, suspended}. Events are
  never mutated and never silently dropped: every event ends up in the
  reasoning trace with an explicit disposition, applied or void, with a
  reason. Auditability is the point; "ignored" without explanation is a
  defect.

PURITY:
  Evaluate reads nothing but its inputs. No clock, no I/O, no state across
  calls. The same case and as-of date always produce the same verdict.

SEE ALSO:
  - engine.go: start-date rules, period determination, the fold itself
  - claims: combines verdicts with interest results into one decision
*/
package limitation

import "github.com/kestrel/claims-engine/calendar"

// =============================================================================
// CASE CLASSIFICATION
// =============================================================================

// RelationshipType is the legal relationship underlying the claim.
type RelationshipType string

const (
	RelationshipContract           RelationshipType = "contract"
	RelationshipTort               RelationshipType = "tort"
	RelationshipJudgmentInstrument RelationshipType = "judgment_instrument"
)

// CaseKind selects which of the two periods is being evaluated.
type CaseKind string

const (
	KindGeneralLimitation CaseKind = "general_limitation"
	KindExecutionPeriod   CaseKind = "execution_period"
)

// =============================================================================
// EVENTS
// =============================================================================

// EventKind distinguishes clock-restarting interruptions from
// deadline-extending suspensions.
type EventKind string

const (
	KindInterruption EventKind = "interruption"
	KindSuspension   EventKind = "suspension"
)

// EventType is the specific legal act or obstacle behind an event. Which
// types qualify depends on the case kind being evaluated; a non-qualifying
// submission is voided with a reason, never silently excluded.
type EventType string

const (
	// Interruptions of the general limitation period.
	EventWrittenDemand            EventType = "written_demand"
	EventElectronicDemand         EventType = "electronic_demand"
	EventPublicNotice             EventType = "public_notice"
	EventDebtorAcknowledgment     EventType = "debtor_written_acknowledgment"
	EventDebtorPartialPerformance EventType = "debtor_partial_performance"
	EventJudicialFiling           EventType = "judicial_filing"

	// Interruptions of the execution period.
	EventExecutionApplication EventType = "execution_application"
	EventDemandWithProof      EventType = "obligee_demand_with_proof"
	EventObligorPerformance   EventType = "obligor_performance"
	EventObligorAgreement     EventType = "obligor_agreement"

	// Explicitly non-qualifying for the execution period; submitted often,
	// rejected always.
	EventRetrialApplication      EventType = "retrial_application"
	EventSupervisoryReview       EventType = "supervisory_review_application"

	// Suspensions (both period kinds).
	EventForceMajeure EventType = "force_majeure_suspension"
	EventIncapacity   EventType = "incapacity_suspension"
)

// Event is one recorded interruption or suspension. Events are immutable
// once recorded; the engine derives a new timeline and never mutates input.
type Event struct {
	Kind       EventKind
	Type       EventType
	OccurredOn calendar.Date

	// SuspensionEnd is the date the obstacle was removed. Suspensions only.
	SuspensionEnd calendar.Date

	// EvidenceRef is an opaque pointer into the filing's evidence bundle.
	EvidenceRef string
}

// =============================================================================
// CASE - Caller-supplied facts for one legal relationship
// =============================================================================

// Case carries the resolved facts the engine needs. Zero dates mean "fact
// not supplied"; the engine fails closed rather than guessing.
type Case struct {
	Relationship RelationshipType
	Kind         CaseKind

	// NominalDeadline is the agreed (or judgment-specified) performance
	// deadline. Zero = none stated.
	NominalDeadline calendar.Date

	// Installments are individual performance deadlines for installment
	// obligations, in order. Each anchors its own limitation timeline.
	Installments []calendar.Date

	// InjuryKnownOn is the date the claimant knew or should have known of
	// the injury and the liable party. Tort only.
	InjuryKnownOn calendar.Date

	// DemandServedOn anchors a contract claim with no agreed deadline:
	// the creditor's demand fixes the performance date. Contract only.
	DemandServedOn calendar.Date

	// InstrumentEffectiveOn is the judgment/award effective date, the
	// execution-period anchor when the instrument states no deadline.
	InstrumentEffectiveOn calendar.Date

	// SettlementBreachDeadline re-anchors the execution period when an
	// execution settlement was itself later breached.
	SettlementBreachDeadline calendar.Date

	Events     []Event
	FilingDate calendar.Date
}

// =============================================================================
// VERDICT
// =============================================================================

type Outcome string

const (
	OutcomeNotExpired Outcome = "not_expired"
	OutcomeExpired    Outcome = "expired"
)

// Disposition classifies a trace step: an event actually folded into the
// timeline, an event voided by policy, or an informational step.
type Disposition string

const (
	DispositionApplied Disposition = "applied"
	DispositionVoid    Disposition = "void"
	DispositionInfo    Disposition = "info"
)

// TraceStep is one entry in the reasoning trace. Every input event produces
// exactly one step; the remaining steps record the anchoring decisions.
type TraceStep struct {
	Description     string
	Disposition     Disposition
	Event           *Event      // nil for non-event steps
	Reason          string      // why applied or why void
	ExpirationAfter calendar.Date
}

// Verdict is the computed timeline for one case.
type Verdict struct {
	Kind            CaseKind
	PeriodYears     int
	StartDate       calendar.Date
	BaseExpiration  calendar.Date
	AppliedEvents   []Event
	FinalExpiration calendar.Date
	Suspended       bool
	Outcome         Outcome
	Trace           []TraceStep
}
