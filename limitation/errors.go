package limitation

import (
	"errors"
	"fmt"
)

// Sentinel errors. Use with errors.Is().
var (
	// ErrAmbiguousStartDate is returned when the supplied facts cannot
	// anchor a limitation period. The engine never defaults to "today".
	ErrAmbiguousStartDate = errors.New("ambiguous start date")

	// ErrMissingFilingDate is returned when neither the case nor the
	// caller supplies a reference date to evaluate against.
	ErrMissingFilingDate = errors.New("missing filing date")

	// ErrUnknownCaseKind is returned for a case kind outside the two
	// evaluable periods.
	ErrUnknownCaseKind = errors.New("unknown case kind")
)

// AmbiguousStartDateError names the missing facts.
type AmbiguousStartDateError struct {
	Relationship RelationshipType
	Kind         CaseKind
	Missing      string
}

func (e *AmbiguousStartDateError) Error() string {
	return fmt.Sprintf("ambiguous start date for %s %s case: %s", e.Relationship, e.Kind, e.Missing)
}

func (e *AmbiguousStartDateError) Unwrap() error { return ErrAmbiguousStartDate }
