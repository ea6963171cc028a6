package parse

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInput is returned for a continuation line that has no
	// preceding message to attach to.
	ErrMalformedInput = errors.New("malformed input")
	// ErrInvalidTimestamp is returned when a header's date/time is not a
	// real calendar date.
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	// ErrEmptyInput is returned by computations that need at least one message.
	ErrEmptyInput = errors.New("empty input")
)

// LineError locates a parse failure in the source.
type LineError struct {
	Line int
	Raw  string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Raw)
}

func (e *LineError) Unwrap() error { return e.Err }
