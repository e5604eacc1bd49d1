package calendar

import (
	"errors"
	"fmt"
)

// ErrInvalidRange is returned wherever a duration is computed over an
// interval whose end precedes its start. Use with errors.Is().
var ErrInvalidRange = errors.New("invalid range: end before start")

// InvalidRangeError carries the offending interval.
type InvalidRangeError struct {
	Start Date
	End   Date
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range: end %s before start %s", e.End, e.Start)
}

func (e *InvalidRangeError) Unwrap() error { return ErrInvalidRange }
