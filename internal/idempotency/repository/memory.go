package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	idempotencyerrors "hotelbook/internal/idempotency/errors"
	"hotelbook/pkg/model"
)

// MemoryIdempotencyRepository keeps records in process memory. It suits a
// single instance and tests; expired records are dropped by a background
// cleanup loop until Stop is called.
type MemoryIdempotencyRepository struct {
	mu      sync.RWMutex
	records map[string]*model.IdempotencyRecord
	stopCh  chan struct{}
	once    sync.Once
}

func NewMemoryIdempotencyRepository(cleanupInterval time.Duration) *MemoryIdempotencyRepository {
	repo := &MemoryIdempotencyRepository{
		records: make(map[string]*model.IdempotencyRecord),
		stopCh:  make(chan struct{}),
	}

	if cleanupInterval > 0 {
		go repo.cleanup(cleanupInterval)
	}

	return repo
}

func (r *MemoryIdempotencyRepository) Insert(_ context.Context, rec *model.IdempotencyRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[rec.Key]; exists {
		return fmt.Errorf("%w: %s", idempotencyerrors.ErrDuplicateKey, rec.Key)
	}
	r.records[rec.Key] = clone(rec)
	return nil
}

func (r *MemoryIdempotencyRepository) FindByKey(_ context.Context, key string) (*model.IdempotencyRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, exists := r.records[key]
	if !exists {
		return nil, idempotencyerrors.ErrNotFound
	}
	return clone(rec), nil
}

func (r *MemoryIdempotencyRepository) Finish(_ context.Context, key, status string, responseStatus int, body []byte, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, exists := r.records[key]
	if !exists || rec.Status != model.IdempotencyStatusPending {
		return idempotencyerrors.ErrNotFound
	}
	rec.Status = status
	rec.ResponseStatus = responseStatus
	rec.ResponseData = append([]byte(nil), body...)
	rec.UpdatedAt = now
	return nil
}

func (r *MemoryIdempotencyRepository) Delete(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, key)
	return nil
}

func (r *MemoryIdempotencyRepository) Replace(_ context.Context, current, next *model.IdempotencyRecord) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.records[current.Key]
	if !exists || !stored.UpdatedAt.Equal(current.UpdatedAt) {
		return false, nil
	}
	next.ID = stored.ID
	r.records[current.Key] = clone(next)
	return true, nil
}

func (r *MemoryIdempotencyRepository) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var purged int64
	for key, rec := range r.records {
		if rec.Expired(now) {
			delete(r.records, key)
			purged++
		}
	}
	return purged, nil
}

func (r *MemoryIdempotencyRepository) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = r.PurgeExpired(context.Background(), time.Now())
		case <-r.stopCh:
			return
		}
	}
}

func (r *MemoryIdempotencyRepository) Stop() {
	r.once.Do(func() { close(r.stopCh) })
}

func clone(rec *model.IdempotencyRecord) *model.IdempotencyRecord {
	copied := *rec
	copied.ResponseData = append([]byte(nil), rec.ResponseData...)
	return &copied
}
