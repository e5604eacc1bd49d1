/*
calculator_test.go - Executable specification for the interest calculator

Each test documents one behavior of the computation contract: segmentation
at benchmark change dates, per-row rounding that reconciles to the total,
statutory overrides, and the zero/empty edge cases that must stay valid
results rather than errors.
*/
package interest_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kestrel/claims-engine/calendar"
	"github.com/kestrel/claims-engine/interest"
	"github.com/kestrel/claims-engine/rates"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================

func date(y int, m time.Month, d int) calendar.Date { return calendar.New(y, m, d) }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// testTable publishes the one-year benchmark history used throughout:
// 4.85 from 2015-01-01, 4.35 from 2015-10-24, 3.85 from 2019-08-20.
func testTable(t *testing.T) *rates.Table {
	t.Helper()
	table, err := rates.NewTable([]rates.Segment{
		{Term: rates.TermOneYear, EffectiveFrom: date(2015, time.January, 1), EffectiveTo: date(2015, time.October, 24), AnnualRatePercent: dec("4.85")},
		{Term: rates.TermOneYear, EffectiveFrom: date(2015, time.October, 24), EffectiveTo: date(2019, time.August, 20), AnnualRatePercent: dec("4.35")},
		{Term: rates.TermOneYear, EffectiveFrom: date(2019, time.August, 20), AnnualRatePercent: dec("3.85")},
		{Term: rates.TermFiveYearPlus, EffectiveFrom: date(2015, time.October, 24), AnnualRatePercent: dec("4.90")},
	})
	if err != nil {
		t.Fatalf("fixture table: %v", err)
	}
	return table
}

func newCalculator(t *testing.T) *interest.Calculator {
	return interest.NewCalculator(testTable(t))
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, label string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s: expected %s, got %s", label, want, got)
	}
}

// =============================================================================
// SIMPLE REGIME
// =============================================================================

func TestCompute_Simple_SingleSegment(t *testing.T) {
	// GIVEN: 10,000 at a fixed 6% over calendar year 2020 (366 real days)
	// THEN:  interest = 10000 x 6/100 x 366/365; the 365-day year is
	//        statutory, real days are counted
	result, err := newCalculator(t).Compute(interest.Spec{
		Regime:           interest.RegimeSimple,
		Principal:        dec("10000"),
		Start:            date(2020, time.January, 1),
		End:              date(2021, time.January, 1),
		FixedRatePercent: dec("6"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Periods) != 1 {
		t.Fatalf("expected 1 period, got %d", len(result.Periods))
	}
	if result.Periods[0].Days != 366 {
		t.Errorf("expected 366 days, got %d", result.Periods[0].Days)
	}
	assertDecimal(t, "601.64", result.TotalInterest, "total interest")
	assertDecimal(t, "10601.64", result.TotalAmount, "total amount")
}

// =============================================================================
// FLOATING BENCHMARK REGIME
// =============================================================================

func TestCompute_Floating_SplitsAtBenchmarkChange(t *testing.T) {
	// GIVEN: 100,000, one-year benchmark, multiplier 1.5, over an interval
	//        spanning the 2019-08-20 change from 4.35% to 3.85%
	// THEN:  two periods, each priced at its own effective rate, and the
	//        rounded rows sum to the total
	result, err := newCalculator(t).Compute(interest.Spec{
		Regime:     interest.RegimeFloatingBenchmark,
		Principal:  dec("100000"),
		Start:      date(2019, time.June, 1),
		End:        date(2019, time.December, 1),
		Multiplier: dec("1.5"),
		Term:       rates.TermOneYear,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Periods) != 2 {
		t.Fatalf("expected 2 periods, got %d", len(result.Periods))
	}

	first, second := result.Periods[0], result.Periods[1]
	if first.Days != 80 || second.Days != 103 {
		t.Errorf("expected 80 + 103 days, got %d + %d", first.Days, second.Days)
	}
	if !second.Start.Equal(date(2019, time.August, 20)) {
		t.Errorf("second period should start at the change date, got %s", second.Start)
	}
	assertDecimal(t, "6.525", first.RatePercent, "first effective rate")   // 4.35 x 1.5
	assertDecimal(t, "5.775", second.RatePercent, "second effective rate") // 3.85 x 1.5
	assertDecimal(t, "1430.14", first.Interest, "first period interest")
	assertDecimal(t, "1629.66", second.Interest, "second period interest")
	assertDecimal(t, "3059.80", result.TotalInterest, "total interest")
}

func TestCompute_Floating_NoChangeInside_EqualsSimple(t *testing.T) {
	// GIVEN: a window with no benchmark change inside it
	// THEN:  the floating result equals the simple computation at the one
	//        effective rate in force
	calc := newCalculator(t)
	start, end := date(2016, time.March, 1), date(2017, time.March, 1)

	floating, err := calc.Compute(interest.Spec{
		Regime:    interest.RegimeFloatingBenchmark,
		Principal: dec("80000"),
		Start:     start,
		End:       end,
		Term:      rates.TermOneYear,
	})
	if err != nil {
		t.Fatalf("floating: %v", err)
	}

	simple, err := calc.Compute(interest.Spec{
		Regime:           interest.RegimeSimple,
		Principal:        dec("80000"),
		Start:            start,
		End:              end,
		FixedRatePercent: dec("4.35"),
	})
	if err != nil {
		t.Fatalf("simple: %v", err)
	}

	if len(floating.Periods) != 1 {
		t.Fatalf("expected single period, got %d", len(floating.Periods))
	}
	if !floating.TotalInterest.Equal(simple.TotalInterest) {
		t.Errorf("floating %s != simple %s", floating.TotalInterest, simple.TotalInterest)
	}
}

func TestCompute_Floating_DefaultMultiplierIsOne(t *testing.T) {
	result, err := newCalculator(t).Compute(interest.Spec{
		Regime:    interest.RegimeFloatingBenchmark,
		Principal: dec("1000"),
		Start:     date(2016, time.January, 1),
		End:       date(2016, time.July, 1),
		Term:      rates.TermOneYear,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertDecimal(t, "4.35", result.Periods[0].RatePercent, "unscaled benchmark")
}

func TestCompute_Floating_RequiresTerm(t *testing.T) {
	_, err := newCalculator(t).Compute(interest.Spec{
		Regime:    interest.RegimeFloatingBenchmark,
		Principal: dec("1000"),
		Start:     date(2016, time.January, 1),
		End:       date(2016, time.July, 1),
	})
	if !errors.Is(err, interest.ErrInvalidSpec) {
		t.Fatalf("expected ErrInvalidSpec, got %v", err)
	}
}

func TestCompute_Floating_BeforeCoverage_SurfacesRateError(t *testing.T) {
	// A missing rate must never silently become 0%.
	_, err := newCalculator(t).Compute(interest.Spec{
		Regime:    interest.RegimeFloatingBenchmark,
		Principal: dec("1000"),
		Start:     date(2010, time.January, 1),
		End:       date(2010, time.July, 1),
		Term:      rates.TermOneYear,
	})
	if !errors.Is(err, rates.ErrNoRateCoverage) {
		t.Fatalf("expected ErrNoRateCoverage, got %v", err)
	}
}

// =============================================================================
// DELAYED PERFORMANCE REGIME
// =============================================================================

func TestCompute_DelayedPerformance_StatutoryMultiplierAndTerm(t *testing.T) {
	// GIVEN: a spec that tries to supply its own multiplier and term
	// THEN:  both are overridden to 1.75 x one-year benchmark, by statute
	result, err := newCalculator(t).Compute(interest.Spec{
		Regime:     interest.RegimeDelayedPerformance,
		Principal:  dec("100000"),
		Start:      date(2015, time.September, 1),
		End:        date(2015, time.December, 1),
		Multiplier: dec("3"),                    // ignored
		Term:       rates.TermFiveYearPlus,      // ignored
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Periods) != 2 {
		t.Fatalf("expected 2 periods across the 2015-10-24 change, got %d", len(result.Periods))
	}
	assertDecimal(t, "8.4875", result.Periods[0].RatePercent, "4.85 x 1.75")
	assertDecimal(t, "7.6125", result.Periods[1].RatePercent, "4.35 x 1.75")
	assertDecimal(t, "1232.43", result.Periods[0].Interest, "first period")
	assertDecimal(t, "792.53", result.Periods[1].Interest, "second period")
	assertDecimal(t, "2024.96", result.TotalInterest, "total")
}

// =============================================================================
// PENALTY REGIME
// =============================================================================

func TestCompute_Penalty_CappedAtBenchmarkMultiple(t *testing.T) {
	// GIVEN: contractual default rate 24%, cap 4 x 4.35% = 17.4%
	// THEN:  the ceiling applies, evaluated once at the start date
	result, err := newCalculator(t).Compute(interest.Spec{
		Regime:           interest.RegimePenalty,
		Principal:        dec("50000"),
		Start:            date(2016, time.January, 1),
		End:              date(2017, time.January, 1),
		FixedRatePercent: dec("24"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertDecimal(t, "17.4", result.Periods[0].RatePercent, "capped rate")
	assertDecimal(t, "8723.84", result.TotalInterest, "total at ceiling")
}

func TestCompute_Penalty_UnderCapUsesContractRate(t *testing.T) {
	result, err := newCalculator(t).Compute(interest.Spec{
		Regime:           interest.RegimePenalty,
		Principal:        dec("50000"),
		Start:            date(2016, time.January, 1),
		End:              date(2017, time.January, 1),
		FixedRatePercent: dec("12"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertDecimal(t, "12", result.Periods[0].RatePercent, "contract rate under cap")
	assertDecimal(t, "6016.44", result.TotalInterest, "total")
}

func TestCompute_Penalty_CapUsesStartDateBenchmark(t *testing.T) {
	// The interval spans the 2019 change, but the ceiling is anchored to the
	// start-date benchmark and the penalty interval is never segmented.
	result, err := newCalculator(t).Compute(interest.Spec{
		Regime:           interest.RegimePenalty,
		Principal:        dec("50000"),
		Start:            date(2019, time.June, 1),
		End:              date(2019, time.December, 1),
		FixedRatePercent: dec("24"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Periods) != 1 {
		t.Fatalf("penalty must stay a single segment, got %d", len(result.Periods))
	}
	assertDecimal(t, "17.4", result.Periods[0].RatePercent, "cap from start-date benchmark 4.35")
}

// =============================================================================
// EDGE CASES & RECONCILIATION
// =============================================================================

func TestCompute_ZeroPrincipal_ValidZeroResult(t *testing.T) {
	result, err := newCalculator(t).Compute(interest.Spec{
		Regime:    interest.RegimeFloatingBenchmark,
		Principal: decimal.Zero,
		Start:     date(2019, time.June, 1),
		End:       date(2019, time.December, 1),
		Term:      rates.TermOneYear,
	})
	if err != nil {
		t.Fatalf("zero principal must not error: %v", err)
	}
	if len(result.Periods) != 1 {
		t.Fatalf("expected one zero-interest period, got %d", len(result.Periods))
	}
	if !result.TotalInterest.IsZero() || !result.Periods[0].Interest.IsZero() {
		t.Error("zero principal must accrue nothing")
	}
}

func TestCompute_EmptyInterval_ZeroDaysZeroInterest(t *testing.T) {
	day := date(2020, time.June, 1)
	result, err := newCalculator(t).Compute(interest.Spec{
		Regime:           interest.RegimeSimple,
		Principal:        dec("100000"),
		Start:            day,
		End:              day,
		FixedRatePercent: dec("6"),
	})
	if err != nil {
		t.Fatalf("empty interval must not error: %v", err)
	}
	if len(result.Periods) != 1 || result.Periods[0].Days != 0 {
		t.Fatalf("expected single empty period, got %+v", result.Periods)
	}
	if !result.TotalInterest.IsZero() {
		t.Errorf("expected zero interest, got %s", result.TotalInterest)
	}
}

func TestCompute_EndBeforeStart_InvalidRange(t *testing.T) {
	_, err := newCalculator(t).Compute(interest.Spec{
		Regime:           interest.RegimeSimple,
		Principal:        dec("100"),
		Start:            date(2020, time.June, 2),
		End:              date(2020, time.June, 1),
		FixedRatePercent: dec("6"),
	})
	if !errors.Is(err, calendar.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestCompute_NegativePrincipal_Rejected(t *testing.T) {
	_, err := newCalculator(t).Compute(interest.Spec{
		Regime:           interest.RegimeSimple,
		Principal:        dec("-1"),
		Start:            date(2020, time.June, 1),
		End:              date(2020, time.July, 1),
		FixedRatePercent: dec("6"),
	})
	if !errors.Is(err, interest.ErrNegativePrincipal) {
		t.Fatalf("expected ErrNegativePrincipal, got %v", err)
	}
	if !errors.Is(err, interest.ErrInvalidSpec) {
		t.Fatalf("expected the umbrella ErrInvalidSpec to match, got %v", err)
	}
}

func TestCompute_RowsReconcileToTotal(t *testing.T) {
	// The audited report shows each rounded row; the total must equal the
	// row sum exactly, not a re-rounded grand figure.
	result, err := newCalculator(t).Compute(interest.Spec{
		Regime:     interest.RegimeFloatingBenchmark,
		Principal:  dec("333333.33"),
		Start:      date(2015, time.June, 1),
		End:        date(2020, time.June, 1),
		Multiplier: dec("1.3"),
		Term:       rates.TermOneYear,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Periods) != 3 {
		t.Fatalf("expected 3 periods across 2 changes, got %d", len(result.Periods))
	}

	sum := decimal.Zero
	for _, p := range result.Periods {
		if !p.Interest.Equal(p.Interest.Round(2)) {
			t.Errorf("row %s not rounded to 2 places: %s", p.Start, p.Interest)
		}
		sum = sum.Add(p.Interest)
	}
	if !sum.Equal(result.TotalInterest) {
		t.Errorf("rows sum to %s but total is %s", sum, result.TotalInterest)
	}
}
