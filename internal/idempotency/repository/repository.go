package repository

import (
	"context"
	"time"

	"hotelbook/pkg/model"
)

const CollectionName = "Idempotency_records"

// IdempotencyRepository stores one record per idempotency key.
type IdempotencyRepository interface {
	// Insert fails with ErrDuplicateKey when the key is already recorded.
	Insert(ctx context.Context, rec *model.IdempotencyRecord) error
	FindByKey(ctx context.Context, key string) (*model.IdempotencyRecord, error)
	// Finish stores the outcome of a pending record.
	Finish(ctx context.Context, key, status string, responseStatus int, body []byte, now time.Time) error
	Delete(ctx context.Context, key string) error
	// Replace swaps current for next only if current has not been touched
	// since it was read. It reports whether the swap happened.
	Replace(ctx context.Context, current, next *model.IdempotencyRecord) (bool, error)
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
