package errors

import "errors"

var (
	ErrNotFound = errors.New("room lock not found")

	ErrLockHeld = errors.New("room already has an active lock")
)
