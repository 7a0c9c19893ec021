package errors

import "errors"

var (
	ErrUnavailable = errors.New("Room is not available for the selected dates")

	ErrInvalidDateRange = errors.New("check_out must be after check_in")
)
