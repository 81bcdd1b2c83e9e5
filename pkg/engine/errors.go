package engine

import "errors"

var (
	ErrAlreadyRunning = errors.New("game is already running")
	ErrNotRunning     = errors.New("game is not running")
	ErrNoPendingEvent = errors.New("no pending event")
	ErrEventPending   = errors.New("an event is waiting for a decision")
	ErrEventMismatch  = errors.New("event does not match the pending event")
	ErrTerminated     = errors.New("game has terminated")
	ErrInvalidInput   = errors.New("invalid input")
	ErrNoProvider     = errors.New("no provider configured")
)
