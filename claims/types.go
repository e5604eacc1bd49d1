/*
Package claims combines limitation verdicts and interest computations into
one review decision per claim.

PURPOSE:
  This is the façade the filing pipeline calls. For a claim and a cutoff
  date it produces:
  - the general-limitation verdict,
  - the execution-period verdict (judgment instruments only),
  - a priced breakdown per declared amount component,
  - a confirmation status under the two-tier disposition policy.

THE TWO-TIER POLICY:
  Exceeding the execution period removes bankruptcy-claim standing
  entirely, a stronger disposition than an ordinary time-bar:

    execution verdict Expired (judgment instruments)  -> Rejected, always
    only the general verdict Expired                  -> Deferred
    otherwise                                         -> Confirmed

  These are distinct outcomes and must never be collapsed into one flag.

FAIL-CLOSED:
  A component the engine cannot price, or a verdict it cannot anchor, makes
  the claim CannotConfirm with the specific missing fact named. The engine
  never fabricates an amount and never skips a line item silently.
*/
package claims

import (
	"github.com/shopspring/decimal"

	"github.com/kestrel/claims-engine/calendar"
	"github.com/kestrel/claims-engine/interest"
	"github.com/kestrel/claims-engine/limitation"
)

// =============================================================================
// CLAIM - Structured facts for one creditor claim
// =============================================================================

// Component is one declared amount component (principal, contractual
// interest, penalty, ...) with its pricing spec.
type Component struct {
	Label string
	Spec  interest.Spec
}

// Claim carries the resolved facts for one claim: the legal relationship
// facts for the limitation analysis and the declared amount components for
// pricing. Built by the factory package from the pipeline's JSON documents.
type Claim struct {
	ID       string
	Creditor string

	Relationship limitation.RelationshipType

	// General holds the facts for the right-to-sue analysis. Kind is forced
	// to GeneralLimitation during evaluation.
	General limitation.Case

	// Execution holds the facts for the right-to-enforce analysis.
	// Judgment instruments only; nil otherwise.
	Execution *limitation.Case

	Components []Component
}

// =============================================================================
// DECISION
// =============================================================================

// ConfirmationStatus is the claim's disposition for the review report.
type ConfirmationStatus string

const (
	StatusConfirmed ConfirmationStatus = "confirmed"
	StatusDeferred  ConfirmationStatus = "deferred"
	StatusRejected  ConfirmationStatus = "rejected"

	// StatusCannotConfirm is the fail-closed outcome: some component or
	// verdict could not be resolved from the supplied facts.
	StatusCannotConfirm ConfirmationStatus = "cannot_confirm"
)

// ComponentResult is the priced outcome (or the named failure) of one
// declared amount component.
type ComponentResult struct {
	Label  string
	Result *interest.Result
	Err    string // empty when priced successfully
}

// Problem names one unresolved fact that blocked confirmation.
type Problem struct {
	Subject string // e.g. "general limitation", component label
	Detail  string
}

// Decision is the full record handed back to the reporting stage.
type Decision struct {
	ID      string
	ClaimID string
	Cutoff  calendar.Date

	General   *limitation.Verdict
	Execution *limitation.Verdict // nil unless judgment instrument

	Components    []ComponentResult
	TotalInterest decimal.Decimal
	TotalAmount   decimal.Decimal

	Status   ConfirmationStatus
	Problems []Problem
}
