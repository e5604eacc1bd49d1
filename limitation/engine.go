/*
engine.go - Start-date rules, period determination, and the event fold

GENERAL LIMITATION:
  1. Anchor the start date from the relationship facts (never guessed).
  2. Decide 2 vs 3 years by the old-law-expiration method: compute
     start + 2 years under the old law; if that expiration falls before the
     2017-10-01 reform, the old 2-year period stands, otherwise the new
     3-year period applies FROM THE ORIGINAL START DATE. Determined once
     per start date and never re-derived after an interruption.
  3. base expiration = start + period years.
  4. Fold events chronologically; interruptions restart the clock,
     suspensions extend the deadline from within its final six months.
  5. NotExpired iff the final expiration is after the filing date.

EXECUTION PERIOD:
  Same fold, but the period is fixed at 2 years (no transition rule), the
  start date comes from the four instrument scenarios, and only the
  execution-specific interruption set qualifies. Retrial and supervisory-
  review applications are rejected explicitly.

INSTALLMENTS:
  Each installment deadline anchors an independent timeline over the same
  event history. The earliest unexpired timeline governs; if every timeline
  has expired, the one that survived longest is reported.
*/
package limitation

import (
	"time"

	"github.com/kestrel/claims-engine/calendar"
)

// reformDate is the effective date of the statutory change from the 2-year
// to the 3-year general limitation period.
var reformDate = calendar.New(2017, time.October, 1)

const (
	executionPeriodYears   = 2
	suspensionWindowMonths = 6
	suspensionGraceMonths  = 6
)

// Engine evaluates limitation cases. Stateless; safe for concurrent use.
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

// Evaluate computes the verdict for one case. asOf is the caller's cutoff
// date and stands in for the filing date when the case does not carry one.
func (e *Engine) Evaluate(c Case, asOf calendar.Date) (*Verdict, error) {
	filing := c.FilingDate
	if filing.IsZero() {
		filing = asOf
	}
	if filing.IsZero() {
		return nil, ErrMissingFilingDate
	}

	switch c.Kind {
	case KindGeneralLimitation, "":
		return e.evaluateGeneral(c, filing)
	case KindExecutionPeriod:
		return e.evaluateExecution(c, filing)
	default:
		return nil, ErrUnknownCaseKind
	}
}

// =============================================================================
// GENERAL LIMITATION
// =============================================================================

func (e *Engine) evaluateGeneral(c Case, filing calendar.Date) (*Verdict, error) {
	anchors, err := generalAnchors(c)
	if err != nil {
		return nil, err
	}

	verdicts := make([]*Verdict, 0, len(anchors))
	for _, a := range anchors {
		years := generalPeriodYears(a.start)
		verdicts = append(verdicts, e.fold(c, KindGeneralLimitation, a, years, filing, generalRules))
	}
	return governing(verdicts), nil
}

// generalPeriodYears applies the old-law-expiration method: if the 2-year
// expiration under the old law falls before the reform date, the old period
// stands; otherwise the 3-year period applies from the original start date.
func generalPeriodYears(start calendar.Date) int {
	oldLawExpiration := start.AddYears(2)
	if oldLawExpiration.Before(reformDate) {
		return 2
	}
	return 3
}

type anchor struct {
	start calendar.Date
	basis string
}

func generalAnchors(c Case) ([]anchor, error) {
	switch c.Relationship {
	case RelationshipContract:
		if !c.NominalDeadline.IsZero() {
			return []anchor{{c.NominalDeadline.DayAfter(), "day after agreed performance deadline"}}, nil
		}
		if len(c.Installments) > 0 {
			return installmentAnchors(c.Installments), nil
		}
		if !c.DemandServedOn.IsZero() {
			return []anchor{{c.DemandServedOn.DayAfter(), "day after creditor's demand"}}, nil
		}
		return nil, &AmbiguousStartDateError{
			Relationship: c.Relationship,
			Kind:         KindGeneralLimitation,
			Missing:      "no performance deadline, installment schedule, or demand basis supplied",
		}

	case RelationshipTort:
		if c.InjuryKnownOn.IsZero() {
			return nil, &AmbiguousStartDateError{
				Relationship: c.Relationship,
				Kind:         KindGeneralLimitation,
				Missing:      "date of knowledge of injury and liable party not supplied",
			}
		}
		return []anchor{{c.InjuryKnownOn, "date claimant knew or should have known of the injury"}}, nil

	case RelationshipJudgmentInstrument:
		if c.NominalDeadline.IsZero() {
			return nil, &AmbiguousStartDateError{
				Relationship: c.Relationship,
				Kind:         KindGeneralLimitation,
				Missing:      "judgment-specified performance deadline not supplied",
			}
		}
		return []anchor{{c.NominalDeadline.DayAfter(), "day after judgment-specified performance deadline"}}, nil

	default:
		return nil, &AmbiguousStartDateError{
			Relationship: c.Relationship,
			Kind:         KindGeneralLimitation,
			Missing:      "unknown relationship type",
		}
	}
}

// =============================================================================
// EXECUTION PERIOD
// =============================================================================

func (e *Engine) evaluateExecution(c Case, filing calendar.Date) (*Verdict, error) {
	anchors, err := executionAnchors(c)
	if err != nil {
		return nil, err
	}

	verdicts := make([]*Verdict, 0, len(anchors))
	for _, a := range anchors {
		verdicts = append(verdicts, e.fold(c, KindExecutionPeriod, a, executionPeriodYears, filing, executionRules))
	}
	return governing(verdicts), nil
}

// executionAnchors picks the start date from the four instrument scenarios.
// A breached execution settlement re-anchors the period and takes priority
// over the original instrument's deadline.
func executionAnchors(c Case) ([]anchor, error) {
	switch {
	case !c.SettlementBreachDeadline.IsZero():
		return []anchor{{c.SettlementBreachDeadline.DayAfter(), "day after breached execution-settlement deadline"}}, nil
	case !c.NominalDeadline.IsZero():
		return []anchor{{c.NominalDeadline.DayAfter(), "day after instrument-specified performance deadline"}}, nil
	case len(c.Installments) > 0:
		return installmentAnchors(c.Installments), nil
	case !c.InstrumentEffectiveOn.IsZero():
		return []anchor{{c.InstrumentEffectiveOn, "instrument effective date (no deadline stated)"}}, nil
	default:
		return nil, &AmbiguousStartDateError{
			Relationship: c.Relationship,
			Kind:         KindExecutionPeriod,
			Missing:      "no deadline, installment schedule, effective date, or settlement breach supplied",
		}
	}
}

func installmentAnchors(deadlines []calendar.Date) []anchor {
	anchors := make([]anchor, len(deadlines))
	for i, d := range deadlines {
		anchors[i] = anchor{d.DayAfter(), "day after installment deadline " + d.String()}
	}
	return anchors
}

// =============================================================================
// QUALIFYING EVENT SETS
// =============================================================================

type ruleSet struct {
	interruptions map[EventType]bool
	rejections    map[EventType]string // always-void types, with the reason
	suspensions   map[EventType]bool
}

var generalRules = ruleSet{
	interruptions: map[EventType]bool{
		EventWrittenDemand:            true,
		EventElectronicDemand:         true,
		EventPublicNotice:             true,
		EventDebtorAcknowledgment:     true,
		EventDebtorPartialPerformance: true,
		EventJudicialFiling:           true,
	},
	suspensions: map[EventType]bool{
		EventForceMajeure: true,
		EventIncapacity:   true,
	},
}

var executionRules = ruleSet{
	interruptions: map[EventType]bool{
		EventExecutionApplication: true,
		EventDemandWithProof:      true,
		EventObligorPerformance:   true,
		EventObligorAgreement:     true,
	},
	rejections: map[EventType]string{
		EventRetrialApplication: "a retrial application does not interrupt the execution period",
		EventSupervisoryReview:  "a supervisory-review application does not interrupt the execution period",
	},
	suspensions: map[EventType]bool{
		EventForceMajeure: true,
		EventIncapacity:   true,
	},
}

// =============================================================================
// THE FOLD
// =============================================================================

// fold runs one timeline: base expiration from the anchor, then a left-fold
// over the events in chronological order carrying {current, suspended}.
func (e *Engine) fold(c Case, kind CaseKind, a anchor, years int, filing calendar.Date, rules ruleSet) *Verdict {
	base := a.start.AddYears(years)

	v := &Verdict{
		Kind:            kind,
		PeriodYears:     years,
		StartDate:       a.start,
		BaseExpiration:  base,
		FinalExpiration: base,
	}
	v.Trace = append(v.Trace,
		TraceStep{
			Description:     "start date " + a.start.String(),
			Disposition:     DispositionInfo,
			Reason:          a.basis,
			ExpirationAfter: base,
		},
		TraceStep{
			Description:     periodDescription(kind, a.start, years),
			Disposition:     DispositionInfo,
			ExpirationAfter: base,
		},
	)

	for _, ev := range chronological(c.Events) {
		ev := ev
		step := TraceStep{Event: &ev, Description: string(ev.Kind) + " " + string(ev.Type) + " on " + ev.OccurredOn.String()}

		switch {
		case !ev.OccurredOn.Before(filing):
			step.Disposition = DispositionVoid
			step.Reason = "occurred on or after the filing date"

		case ev.Kind == KindInterruption:
			e.foldInterruption(v, ev, years, rules, &step)

		case ev.Kind == KindSuspension:
			e.foldSuspension(v, ev, rules, &step)

		default:
			step.Disposition = DispositionVoid
			step.Reason = "unknown event kind"
		}

		step.ExpirationAfter = v.FinalExpiration
		v.Trace = append(v.Trace, step)
	}

	if v.FinalExpiration.After(filing) {
		v.Outcome = OutcomeNotExpired
	} else {
		v.Outcome = OutcomeExpired
	}
	v.Trace = append(v.Trace, TraceStep{
		Description:     "final expiration " + v.FinalExpiration.String() + " vs filing date " + filing.String(),
		Disposition:     DispositionInfo,
		Reason:          string(v.Outcome),
		ExpirationAfter: v.FinalExpiration,
	})
	return v
}

func (e *Engine) foldInterruption(v *Verdict, ev Event, years int, rules ruleSet, step *TraceStep) {
	if reason, rejected := rules.rejections[ev.Type]; rejected {
		step.Disposition = DispositionVoid
		step.Reason = reason
		return
	}
	if !rules.interruptions[ev.Type] {
		step.Disposition = DispositionVoid
		step.Reason = "not a qualifying interruption for this period"
		return
	}
	if !ev.OccurredOn.Before(v.FinalExpiration) {
		step.Disposition = DispositionVoid
		step.Reason = "occurred after the period had already expired"
		return
	}

	// Restart: same period length as determined at the original start date.
	v.FinalExpiration = ev.OccurredOn.AddYears(years)
	v.AppliedEvents = append(v.AppliedEvents, ev)
	step.Disposition = DispositionApplied
	step.Reason = "period restarted from the event date"
}

func (e *Engine) foldSuspension(v *Verdict, ev Event, rules ruleSet, step *TraceStep) {
	if !rules.suspensions[ev.Type] {
		step.Disposition = DispositionVoid
		step.Reason = "not a qualifying suspension"
		return
	}

	windowStart := v.FinalExpiration.AddMonths(-suspensionWindowMonths)
	if ev.OccurredOn.Before(windowStart) || !ev.OccurredOn.Before(v.FinalExpiration) {
		step.Disposition = DispositionVoid
		step.Reason = "outside the final six months before the current expiration"
		return
	}
	if ev.SuspensionEnd.IsZero() {
		step.Disposition = DispositionVoid
		step.Reason = "suspension end date not supplied"
		return
	}

	// The grace period runs from the obstacle's removal regardless of how
	// much of the six-month window remained.
	v.FinalExpiration = ev.SuspensionEnd.AddMonths(suspensionGraceMonths)
	v.Suspended = true
	v.AppliedEvents = append(v.AppliedEvents, ev)
	step.Disposition = DispositionApplied
	step.Reason = "deadline extended six months past the obstacle's removal"
}

// =============================================================================
// HELPERS
// =============================================================================

func periodDescription(kind CaseKind, start calendar.Date, years int) string {
	if kind == KindExecutionPeriod {
		return "execution period fixed at 2 years"
	}
	if years == 2 {
		return "2-year period: old-law expiration " + start.AddYears(2).String() + " precedes the reform date"
	}
	return "3-year period applied from the original start date"
}

// chronological returns the events sorted by occurrence date without
// touching the caller's slice. Insertion sort keeps equal dates in their
// recorded order; event lists are small.
func chronological(events []Event) []Event {
	sorted := make([]Event, len(events))
	copy(sorted, events)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].OccurredOn.Before(sorted[j-1].OccurredOn); j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	return sorted
}

// governing picks the verdict that controls the case: the earliest-starting
// unexpired timeline, or the longest-surviving one when all have expired.
func governing(verdicts []*Verdict) *Verdict {
	var pick *Verdict
	for _, v := range verdicts {
		if v.Outcome != OutcomeNotExpired {
			continue
		}
		if pick == nil || v.StartDate.Before(pick.StartDate) {
			pick = v
		}
	}
	if pick != nil {
		return pick
	}
	for _, v := range verdicts {
		if pick == nil || v.FinalExpiration.After(pick.FinalExpiration) {
			pick = v
		}
	}
	return pick
}
