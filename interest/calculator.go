/*
calculator.go - Segmentation and rounding algorithm

ALGORITHM:
  1. Normalize the spec (defaults, statutory overrides) and validate it.
  2. Resolve the cut points: [start] + benchmark change points strictly
     inside [start, end) + [end]. Fixed-rate regimes have no interior cuts.
  3. For each consecutive pair, resolve the effective annual rate at the
     sub-interval's first day and compute
         principal x rate/100 x days/365
     rounded half-up to 2 decimals.
  4. TotalInterest = sum of the rounded rows. The rows ARE the audit table;
     the total must reconcile to them, so no second rounding pass happens.

EDGE CASES:
  - principal == 0: one zero-interest row, never an error
  - start == end: one zero-day row, zero interest
  - coincident boundaries collapse (the rate table never publishes two
    segments starting the same day, so cuts are unique by construction)
*/
package interest

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kestrel/claims-engine/calendar"
	"github.com/kestrel/claims-engine/rates"
)

var (
	hundred            = decimal.NewFromInt(100)
	delayedMultiplier  = decimal.RequireFromString("1.75")
	defaultPenaltyCap  = decimal.NewFromInt(4)
	defaultMultiplier  = decimal.NewFromInt(1)
	moneyRoundPlaces   = int32(2)
	percentRoundPlaces = int32(4)
)

// RateSource answers benchmark queries. *rates.Table satisfies it; callers
// pass one immutable snapshot per computation.
type RateSource interface {
	RateAt(term rates.Term, date calendar.Date) (decimal.Decimal, error)
	ChangePointsIn(term rates.Term, start, end calendar.Date) ([]calendar.Date, error)
}

// Calculator computes segmented interest against one rate snapshot.
type Calculator struct {
	Rates RateSource
}

func NewCalculator(source RateSource) *Calculator {
	return &Calculator{Rates: source}
}

// Compute prices one spec and returns the segmented breakdown.
func (c *Calculator) Compute(spec Spec) (*Result, error) {
	spec, err := normalize(spec)
	if err != nil {
		return nil, err
	}

	days, err := calendar.DaysBetween(spec.Start, spec.End)
	if err != nil {
		return nil, err
	}

	// Zero principal accrues nothing under every regime; the result still
	// carries one row so the audit table has a line to show.
	if spec.Principal.IsZero() {
		row := Period{Start: spec.Start, End: spec.End, Days: days, RatePercent: decimal.Zero, Interest: decimal.Zero}
		return &Result{
			Periods:              []Period{row},
			TotalInterest:        decimal.Zero,
			TotalAmount:          decimal.Zero,
			EffectiveRatePercent: decimal.Zero,
		}, nil
	}

	cuts, err := c.cutPoints(spec)
	if err != nil {
		return nil, err
	}

	periods := make([]Period, 0, len(cuts)-1)
	total := decimal.Zero
	for i := 0; i < len(cuts)-1; i++ {
		subStart, subEnd := cuts[i], cuts[i+1]
		subDays, err := calendar.DaysBetween(subStart, subEnd)
		if err != nil {
			return nil, err
		}

		ratePercent, err := c.effectiveRate(spec, subStart)
		if err != nil {
			return nil, err
		}

		amount := spec.Principal.
			Mul(ratePercent).Div(hundred).
			Mul(calendar.AnnualFraction(subDays)).
			Round(moneyRoundPlaces)

		periods = append(periods, Period{
			Start:       subStart,
			End:         subEnd,
			Days:        subDays,
			RatePercent: ratePercent,
			Interest:    amount,
		})
		total = total.Add(amount)
	}

	return &Result{
		Periods:              periods,
		TotalInterest:        total,
		TotalAmount:          spec.Principal.Add(total),
		EffectiveRatePercent: annualizedRate(spec.Principal, total, days),
	}, nil
}

// cutPoints returns the ordered sub-interval boundaries including both ends.
// Fixed-rate regimes price the whole interval as one segment.
func (c *Calculator) cutPoints(spec Spec) ([]calendar.Date, error) {
	cuts := []calendar.Date{spec.Start}

	switch spec.Regime {
	case RegimeFloatingBenchmark, RegimeDelayedPerformance:
		boundaries, err := c.Rates.ChangePointsIn(spec.Term, spec.Start, spec.End)
		if err != nil {
			return nil, err
		}
		cuts = append(cuts, boundaries...)
	}

	return append(cuts, spec.End), nil
}

// effectiveRate resolves the annual percentage actually applied to the
// sub-interval starting at day.
func (c *Calculator) effectiveRate(spec Spec, day calendar.Date) (decimal.Decimal, error) {
	switch spec.Regime {
	case RegimeSimple:
		return spec.FixedRatePercent, nil

	case RegimeFloatingBenchmark, RegimeDelayedPerformance:
		benchmark, err := c.Rates.RateAt(spec.Term, day)
		if err != nil {
			return decimal.Zero, err
		}
		return benchmark.Mul(spec.Multiplier), nil

	case RegimePenalty:
		// The statutory ceiling is evaluated once at the interval start,
		// never re-evaluated per day; day is ignored deliberately.
		benchmark, err := c.Rates.RateAt(rates.TermOneYear, spec.Start)
		if err != nil {
			return decimal.Zero, err
		}
		ceiling := spec.PenaltyCapMultiple.Mul(benchmark)
		if spec.FixedRatePercent.GreaterThan(ceiling) {
			return ceiling, nil
		}
		return spec.FixedRatePercent, nil

	default:
		return decimal.Zero, &SpecError{Field: "regime", Detail: fmt.Sprintf("unknown regime %q", spec.Regime)}
	}
}

// normalize applies defaults and statutory overrides, then validates.
func normalize(spec Spec) (Spec, error) {
	if !spec.Regime.Valid() {
		return spec, &SpecError{Field: "regime", Detail: fmt.Sprintf("unknown regime %q", spec.Regime)}
	}
	if spec.Principal.IsNegative() {
		return spec, ErrNegativePrincipal
	}

	switch spec.Regime {
	case RegimeFloatingBenchmark:
		if spec.Multiplier.IsZero() {
			spec.Multiplier = defaultMultiplier
		}
		if spec.Multiplier.IsNegative() {
			return spec, &SpecError{Field: "multiplier", Detail: "must be positive"}
		}
		if !spec.Term.Valid() {
			return spec, &SpecError{Field: "term", Detail: "floating computation requires a benchmark term"}
		}

	case RegimeDelayedPerformance:
		// Both pinned by statute regardless of what the caller supplied.
		spec.Multiplier = delayedMultiplier
		spec.Term = rates.TermOneYear

	case RegimePenalty:
		if spec.PenaltyCapMultiple.IsZero() {
			spec.PenaltyCapMultiple = defaultPenaltyCap
		}
		if spec.PenaltyCapMultiple.IsNegative() {
			return spec, &SpecError{Field: "penalty_cap_multiple", Detail: "must be positive"}
		}
		if spec.FixedRatePercent.IsNegative() {
			return spec, &SpecError{Field: "fixed_rate_percent", Detail: "must not be negative"}
		}

	case RegimeSimple:
		if spec.FixedRatePercent.IsNegative() {
			return spec, &SpecError{Field: "fixed_rate_percent", Detail: "must not be negative"}
		}
	}

	return spec, nil
}

// annualizedRate derives the single rate that would have produced the total
// over the whole interval. Display-only; zero when nothing accrued.
func annualizedRate(principal, total decimal.Decimal, days int) decimal.Decimal {
	if days == 0 || principal.IsZero() || total.IsZero() {
		return decimal.Zero
	}
	base := principal.Mul(calendar.AnnualFraction(days))
	return total.Div(base).Mul(hundred).Round(percentRoundPlaces)
}
