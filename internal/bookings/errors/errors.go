package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrCheckInPast = errors.New("check_in cannot be in the past")

	ErrInvalidDateRange = errors.New("check_out must be after check_in")
)
