package rates

import (
	"errors"
	"fmt"

	"github.com/kestrel/claims-engine/calendar"
)

// ErrNoRateCoverage is returned when a lookup date precedes the table's
// earliest published segment for the requested term. A missing rate is an
// error, never a silent 0%. Use with errors.Is().
var ErrNoRateCoverage = errors.New("no rate coverage")

// NoRateCoverageError carries the term and date that missed coverage.
type NoRateCoverageError struct {
	Term Term
	Date calendar.Date
}

func (e *NoRateCoverageError) Error() string {
	return fmt.Sprintf("no rate coverage for term %s on %s", e.Term, e.Date)
}

func (e *NoRateCoverageError) Unwrap() error { return ErrNoRateCoverage }
