/*
evaluator.go - The decide operation

DECISION ORDER:
  1. Execution verdict Expired (judgment instruments)    -> Rejected.
     Standing is gone; nothing else can rescue the claim.
  2. Any unresolved verdict or component                 -> CannotConfirm.
  3. General verdict Expired                             -> Deferred.
  4. Otherwise                                           -> Confirmed.

  (1) outranks (2): an execution period that has verifiably lapsed rejects
  the claim even when some amount component could not be priced.
*/
package claims

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kestrel/claims-engine/calendar"
	"github.com/kestrel/claims-engine/interest"
	"github.com/kestrel/claims-engine/limitation"
)

// ErrMissingCutoff is returned when Decide is called without a cutoff date.
// The engine never reads the clock; the caller must supply the reference
// date explicitly.
var ErrMissingCutoff = errors.New("missing cutoff date")

// Evaluator wires the limitation engine and interest calculator into the
// decide operation. Stateless; safe for concurrent use.
type Evaluator struct {
	Limitation *limitation.Engine
	Interest   *interest.Calculator
}

func NewEvaluator(engine *limitation.Engine, calculator *interest.Calculator) *Evaluator {
	return &Evaluator{Limitation: engine, Interest: calculator}
}

// Decide evaluates one claim as of the cutoff date. Component and verdict
// failures are recorded in the decision (fail-closed), not returned as
// errors; the error return covers only an unusable call.
func (e *Evaluator) Decide(claim Claim, cutoff calendar.Date) (*Decision, error) {
	if cutoff.IsZero() {
		return nil, ErrMissingCutoff
	}

	d := &Decision{
		ID:            uuid.NewString(),
		ClaimID:       claim.ID,
		Cutoff:        cutoff,
		TotalInterest: decimal.Zero,
		TotalAmount:   decimal.Zero,
	}

	e.evaluateGeneral(claim, cutoff, d)
	e.evaluateExecution(claim, cutoff, d)
	e.priceComponents(claim, cutoff, d)

	d.Status = status(d)
	return d, nil
}

func (e *Evaluator) evaluateGeneral(claim Claim, cutoff calendar.Date, d *Decision) {
	c := claim.General
	c.Relationship = claim.Relationship
	c.Kind = limitation.KindGeneralLimitation
	if c.FilingDate.IsZero() {
		c.FilingDate = cutoff
	}

	verdict, err := e.Limitation.Evaluate(c, cutoff)
	if err != nil {
		d.Problems = append(d.Problems, Problem{Subject: "general limitation", Detail: err.Error()})
		return
	}
	d.General = verdict
}

func (e *Evaluator) evaluateExecution(claim Claim, cutoff calendar.Date, d *Decision) {
	if claim.Relationship != limitation.RelationshipJudgmentInstrument {
		return
	}
	if claim.Execution == nil {
		d.Problems = append(d.Problems, Problem{
			Subject: "execution period",
			Detail:  "judgment instrument claim without execution-period facts",
		})
		return
	}

	c := *claim.Execution
	c.Relationship = claim.Relationship
	c.Kind = limitation.KindExecutionPeriod
	if c.FilingDate.IsZero() {
		c.FilingDate = cutoff
	}

	verdict, err := e.Limitation.Evaluate(c, cutoff)
	if err != nil {
		d.Problems = append(d.Problems, Problem{Subject: "execution period", Detail: err.Error()})
		return
	}
	d.Execution = verdict
}

func (e *Evaluator) priceComponents(claim Claim, cutoff calendar.Date, d *Decision) {
	for _, comp := range claim.Components {
		spec := comp.Spec
		if spec.End.IsZero() {
			spec.End = cutoff // accrue up to the cutoff by default
		}

		result, err := e.Interest.Compute(spec)
		if err != nil {
			d.Components = append(d.Components, ComponentResult{Label: comp.Label, Err: err.Error()})
			d.Problems = append(d.Problems, Problem{Subject: "component " + comp.Label, Detail: err.Error()})
			continue
		}

		d.Components = append(d.Components, ComponentResult{Label: comp.Label, Result: result})
		d.TotalInterest = d.TotalInterest.Add(result.TotalInterest)
		d.TotalAmount = d.TotalAmount.Add(result.TotalAmount)
	}
}

func status(d *Decision) ConfirmationStatus {
	if d.Execution != nil && d.Execution.Outcome == limitation.OutcomeExpired {
		return StatusRejected
	}
	if len(d.Problems) > 0 {
		return StatusCannotConfirm
	}
	if d.General != nil && d.General.Outcome == limitation.OutcomeExpired {
		return StatusDeferred
	}
	return StatusConfirmed
}

// DecideBatch evaluates each claim independently against one cutoff. A
// claim that cannot be decided at all still yields a CannotConfirm decision
// with the failure named, never a skipped line item.
func (e *Evaluator) DecideBatch(claimList []Claim, cutoff calendar.Date) ([]*Decision, error) {
	if cutoff.IsZero() {
		return nil, ErrMissingCutoff
	}

	decisions := make([]*Decision, 0, len(claimList))
	for _, claim := range claimList {
		d, err := e.Decide(claim, cutoff)
		if err != nil {
			d = &Decision{
				ID:      uuid.NewString(),
				ClaimID: claim.ID,
				Cutoff:  cutoff,
				Status:  StatusCannotConfirm,
				Problems: []Problem{{
					Subject: "claim",
					Detail:  err.Error(),
				}},
			}
		}
		decisions = append(decisions, d)
	}
	return decisions, nil
}
