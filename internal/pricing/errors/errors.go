package errors

import "errors"

var (
	ErrInvalidDateRange = errors.New("check_out must be after check_in")

	ErrGuestsExceedCapacity = errors.New("guest count exceeds room type capacity")

	ErrRoomTypeHotelMismatch = errors.New("room type does not belong to hotel")
)
