package errors

import "errors"

var (
	ErrRoomTypeNotFound = errors.New("room type not found")

	ErrInvalidID = errors.New("invalid catalog ID format")
)
