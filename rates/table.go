/*
Package rates implements the versioned, time-indexed benchmark rate table.

PURPOSE:
  Floating-rate interest computations re-price on every benchmark change
  date. This package stores the published benchmark history as contiguous,
  non-overlapping segments per term and answers two questions:
  - RateAt: which annual rate was in force on a given day?
  - ChangePointsIn: where inside a window did the rate change?

KEY CONCEPTS:
  - Term: the published benchmark term (one-year, five-year-plus)
  - Segment: [effective_from, effective_to) at a fixed annual rate;
    the latest segment per term is open-ended until superseded
  - Table: an immutable snapshot of the whole history

IMMUTABILITY:
  A Table is never mutated after construction. Appending a newly published
  benchmark value produces a NEW table (copy-on-write); the Provider swaps
  the current snapshot atomically so readers never observe a half-applied
  update. Within one computation, callers hold one snapshot throughout.

STORAGE NOTE:
  Segments per term live in a flat sorted slice searched by effective date.
  The history is bounded by years of publication, so binary search over a
  small array beats any pointer structure here.

SEE ALSO:
  - provider.go: atomic snapshot swap for concurrent readers
  - loader.go: YAML seed document loading
  - store/sqlite: append-only persistence of published segments
*/
package rates

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/kestrel/claims-engine/calendar"
)

// =============================================================================
// TERM - Published benchmark terms
// =============================================================================

// Term identifies which published benchmark series a segment belongs to.
type Term string

const (
	// TermOneYear is the benchmark for maturities up to one year. It also
	// anchors the delayed-performance rate and the penalty-rate ceiling.
	TermOneYear Term = "1y"

	// TermFiveYearPlus is the benchmark for maturities of five years and up.
	TermFiveYearPlus Term = "5y+"
)

// Valid reports whether t is a published term.
func (t Term) Valid() bool { return t == TermOneYear || t == TermFiveYearPlus }

// =============================================================================
// SEGMENT - One benchmark value in force over a half-open interval
// =============================================================================

// Segment is one published benchmark value. EffectiveTo is the zero Date for
// the open-ended latest segment of a term.
type Segment struct {
	Term              Term
	EffectiveFrom     calendar.Date
	EffectiveTo       calendar.Date // zero = open-ended
	AnnualRatePercent decimal.Decimal
}

// Open reports whether the segment is the open-ended tail of its term.
func (s Segment) Open() bool { return s.EffectiveTo.IsZero() }

// contains reports whether date falls in [EffectiveFrom, EffectiveTo).
func (s Segment) contains(date calendar.Date) bool {
	if date.Before(s.EffectiveFrom) {
		return false
	}
	return s.Open() || date.Before(s.EffectiveTo)
}

// =============================================================================
// TABLE - Immutable snapshot of the full benchmark history
// =============================================================================

// Table holds the benchmark history for all terms. Construct with NewTable
// or Append; never mutate a Table after construction.
type Table struct {
	segments map[Term][]Segment // sorted by EffectiveFrom, contiguous
}

// NewTable builds and validates a table from published segments. Segments
// may arrive in any order; per term they must be contiguous, non-overlapping,
// and only the latest may be open-ended.
func NewTable(segments []Segment) (*Table, error) {
	byTerm := make(map[Term][]Segment)
	for _, s := range segments {
		if !s.Term.Valid() {
			return nil, fmt.Errorf("rates: unknown term %q", s.Term)
		}
		if s.EffectiveFrom.IsZero() {
			return nil, fmt.Errorf("rates: segment for term %s has no effective date", s.Term)
		}
		if !s.Open() && s.EffectiveTo.BeforeOrEqual(s.EffectiveFrom) {
			return nil, fmt.Errorf("rates: segment for term %s ends %s before it starts %s",
				s.Term, s.EffectiveTo, s.EffectiveFrom)
		}
		byTerm[s.Term] = append(byTerm[s.Term], s)
	}

	for term, segs := range byTerm {
		sort.Slice(segs, func(i, j int) bool {
			return segs[i].EffectiveFrom.Before(segs[j].EffectiveFrom)
		})
		for i := range segs {
			last := i == len(segs)-1
			if segs[i].Open() && !last {
				return nil, fmt.Errorf("rates: term %s has an open segment at %s that is not the latest",
					term, segs[i].EffectiveFrom)
			}
			if !last && !segs[i].EffectiveTo.Equal(segs[i+1].EffectiveFrom) {
				return nil, fmt.Errorf("rates: term %s segments not contiguous at %s",
					term, segs[i+1].EffectiveFrom)
			}
		}
		byTerm[term] = segs
	}

	return &Table{segments: byTerm}, nil
}

// RateAt returns the annual rate in force for term on date. It returns
// NoRateCoverageError when date precedes the earliest published segment or
// the term has no history at all.
func (t *Table) RateAt(term Term, date calendar.Date) (decimal.Decimal, error) {
	segs := t.segments[term]
	if len(segs) == 0 || date.Before(segs[0].EffectiveFrom) {
		return decimal.Zero, &NoRateCoverageError{Term: term, Date: date}
	}

	// Last segment whose EffectiveFrom <= date.
	i := sort.Search(len(segs), func(i int) bool {
		return segs[i].EffectiveFrom.After(date)
	}) - 1
	if i < 0 || !segs[i].contains(date) {
		return decimal.Zero, &NoRateCoverageError{Term: term, Date: date}
	}
	return segs[i].AnnualRatePercent, nil
}

// ChangePointsIn returns the rate-change boundaries strictly inside the
// window [start, end), in chronological order. A boundary equal to start is
// excluded because the window is already priced at start's rate from its
// first day.
func (t *Table) ChangePointsIn(term Term, start, end calendar.Date) ([]calendar.Date, error) {
	if end.Before(start) {
		return nil, &calendar.InvalidRangeError{Start: start, End: end}
	}

	var points []calendar.Date
	for _, s := range t.segments[term] {
		from := s.EffectiveFrom
		if from.After(start) && from.Before(end) {
			points = append(points, from)
		}
	}
	return points, nil
}

// Segments returns a copy of the term's history, oldest first.
func (t *Table) Segments(term Term) []Segment {
	segs := t.segments[term]
	out := make([]Segment, len(segs))
	copy(out, segs)
	return out
}

// AllSegments returns every segment in the table, ordered by term then date.
func (t *Table) AllSegments() []Segment {
	var out []Segment
	for _, term := range []Term{TermOneYear, TermFiveYearPlus} {
		out = append(out, t.Segments(term)...)
	}
	return out
}

// Append returns a NEW table with a freshly published benchmark value for
// term, effective from the given date onward. The previous open segment is
// closed at that date. The receiving table is not modified.
func (t *Table) Append(term Term, from calendar.Date, annualRatePercent decimal.Decimal) (*Table, error) {
	if !term.Valid() {
		return nil, fmt.Errorf("rates: unknown term %q", term)
	}

	segs := t.segments[term]
	if n := len(segs); n > 0 {
		last := segs[n-1]
		if !last.Open() {
			return nil, fmt.Errorf("rates: term %s history is closed; cannot append", term)
		}
		if from.BeforeOrEqual(last.EffectiveFrom) {
			return nil, fmt.Errorf("rates: new segment at %s does not follow current segment at %s",
				from, last.EffectiveFrom)
		}
	}

	all := t.AllSegments()
	for i := range all {
		if all[i].Term == term && all[i].Open() {
			all[i].EffectiveTo = from
		}
	}
	all = append(all, Segment{Term: term, EffectiveFrom: from, AnnualRatePercent: annualRatePercent})
	return NewTable(all)
}
