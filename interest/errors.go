package interest

import (
	"errors"
	"fmt"
)

// Sentinel errors for spec validation. Use with errors.Is().
var (
	// ErrInvalidSpec is the umbrella for malformed computation specs:
	// unknown regime, missing term, negative principal or multiplier.
	ErrInvalidSpec = errors.New("invalid interest spec")

	// ErrNegativePrincipal is returned for a principal below zero. Zero is
	// valid and yields a zero-interest result. Wraps ErrInvalidSpec so
	// callers matching the umbrella catch it too.
	ErrNegativePrincipal = fmt.Errorf("%w: negative principal", ErrInvalidSpec)
)

// SpecError wraps a validation failure with the offending field.
type SpecError struct {
	Field  string
	Detail string
}

func (e *SpecError) Error() string {
	return fmt.Sprintf("invalid interest spec: %s: %s", e.Field, e.Detail)
}

func (e *SpecError) Unwrap() error { return ErrInvalidSpec }
