package dates

import (
	"errors"
	"fmt"
)

// Sentinel errors for date operations.
var (
	// ErrEmpty indicates blank input; callers treat it as "no date selected".
	ErrEmpty = errors.New("empty date")
	// ErrUnrecognized indicates input that no known format could turn into a valid date.
	ErrUnrecognized = errors.New("unrecognized date")
	// ErrInvalidDate indicates a triple outside the accepted range or calendar.
	ErrInvalidDate = errors.New("invalid calendar date")
	// ErrInvalidRenewal indicates a renewal with a non-positive count.
	ErrInvalidRenewal = errors.New("invalid renewal")
)

// ParseError reports why Parse rejected an input.
type ParseError struct {
	Input string
	Err   error
}

// Error names the rejected input and the reason.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse date %q: %v", e.Input, e.Err)
}

// Unwrap exposes the sentinel for errors.Is.
func (e *ParseError) Unwrap() error {
	return e.Err
}
