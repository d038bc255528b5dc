package planner

import (
	"errors"
	"fmt"
)

// ErrNoHistory is returned by Undo when the stack is empty.
var ErrNoHistory = errors.New("nothing to undo")

// AnchorUnreachableError reports a pinned event that cannot be placed.
// The message names the venue so the caller can tell the user exactly
// which of their choices is the problem.
type AnchorUnreachableError struct {
	Role       Role
	Venue      string
	TravelMins int
	CapMins    int
	Reason     string
}

func (e *AnchorUnreachableError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("pinned %s stop %q: %s", e.Role, e.Venue, e.Reason)
	}
	return fmt.Sprintf("pinned %s stop %q is %d mins away, over your %d min commute limit; increase the limit or pick a closer venue",
		e.Role, e.Venue, e.TravelMins, e.CapMins)
}

// InsufficientResultsError reports a sequence shorter than the
// requested minimum. It carries the partial result's size so callers
// can still render what was found.
type InsufficientResultsError struct {
	Found int
	Min   int
}

func (e *InsufficientResultsError) Error() string {
	return fmt.Sprintf("found %d stops but %d or more were requested; widen the area or time range", e.Found, e.Min)
}
