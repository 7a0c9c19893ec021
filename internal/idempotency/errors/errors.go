package errors

import "errors"

var (
	ErrNotFound = errors.New("idempotency record not found")

	ErrDuplicateKey = errors.New("idempotency key already recorded")
)
