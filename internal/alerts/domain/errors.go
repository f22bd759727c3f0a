package alerts

import "errors"

var (
	// ErrNotFound indicates a missing alert record.
	ErrNotFound = errors.New("alerts: not found")
	// ErrInvalidState indicates a state name outside the lifecycle.
	ErrInvalidState = errors.New("alerts: invalid state")
	// ErrInvalidTransition indicates a move the lifecycle does not allow.
	ErrInvalidTransition = errors.New("alerts: transition not allowed")
)
