/*
Package interest computes accrued interest and penalty amounts for a claim
principal over a date interval, under one of four mutually exclusive regimes.

PURPOSE:
  This is the money-producing half of the claim engine. Given a principal,
  an accrual interval and a regime, it produces a segmented breakdown:
  one row per constant-rate sub-interval, each rounded independently, with
  totals that reconcile exactly to the row sum. Audited filings show the
  per-row figures, so rounding happens once per row, not only at the end.

REGIMES:
  Simple:             fixed contractual rate over the whole interval
  FloatingBenchmark:  re-prices at every published benchmark change date
  DelayedPerformance: floating one-year benchmark at a fixed 1.75 multiplier
                      (the statutory rate for delayed compliance with an
                      enforceable instrument)
  Penalty:            fixed contractual default rate, capped at a multiple
                      of the one-year benchmark taken once at the start date

DETERMINISM:
  A computation is a pure function of (Spec, rate table snapshot). Nothing
  reads the clock, nothing is cached, every call builds a fresh Result.

SEE ALSO:
  - calculator.go: the segmentation and rounding algorithm
  - rates: benchmark lookup and change-point enumeration
*/
package interest

import (
	"github.com/shopspring/decimal"

	"github.com/kestrel/claims-engine/calendar"
	"github.com/kestrel/claims-engine/rates"
)

// =============================================================================
// REGIME
// =============================================================================

type Regime string

const (
	RegimeSimple             Regime = "simple"
	RegimeFloatingBenchmark  Regime = "floating_benchmark"
	RegimeDelayedPerformance Regime = "delayed_performance"
	RegimePenalty            Regime = "penalty"
)

func (r Regime) Valid() bool {
	switch r {
	case RegimeSimple, RegimeFloatingBenchmark, RegimeDelayedPerformance, RegimePenalty:
		return true
	}
	return false
}

// =============================================================================
// SPEC - One declared amount component to be priced
// =============================================================================

// Spec describes a single interest computation. It is owned by the caller
// for the duration of one Compute call and never retained.
type Spec struct {
	Regime    Regime
	Principal decimal.Decimal
	Start     calendar.Date
	End       calendar.Date

	// FixedRatePercent applies to Simple and Penalty regimes.
	FixedRatePercent decimal.Decimal

	// Multiplier scales the benchmark for FloatingBenchmark (default 1.0).
	// DelayedPerformance ignores it; the statutory multiplier is 1.75.
	Multiplier decimal.Decimal

	// Term selects the benchmark series for FloatingBenchmark.
	// DelayedPerformance always uses the one-year benchmark.
	Term rates.Term

	// PenaltyCapMultiple caps the Penalty regime's effective rate at
	// cap x one-year benchmark at Start (default 4.0).
	PenaltyCapMultiple decimal.Decimal
}

// =============================================================================
// RESULT - Segmented breakdown, one row per constant-rate sub-interval
// =============================================================================

// Period is one constant-rate sub-interval [Start, End) with its rounded
// interest amount.
type Period struct {
	Start       calendar.Date
	End         calendar.Date
	Days        int
	RatePercent decimal.Decimal
	Interest    decimal.Decimal
}

// Result is the full breakdown for one Spec. TotalInterest is always the
// exact sum of the rounded Period rows.
type Result struct {
	Periods              []Period
	TotalInterest        decimal.Decimal
	TotalAmount          decimal.Decimal // principal + total interest
	EffectiveRatePercent decimal.Decimal // annualized over the whole interval
}
