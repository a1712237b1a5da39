// Package lifecycle holds the state machines for requests, bookings and
// products. Functions here mutate the records they are given and never touch
// the store; callers persist the result inside their own transaction.
package lifecycle

import "errors"

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrInvalidInput      = errors.New("invalid input")
	ErrConflict          = errors.New("conflict")
)
