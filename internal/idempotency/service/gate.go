package service

import (
	"context"
	"errors"
	"time"

	idempotencyerrors "hotelbook/internal/idempotency/errors"
	"hotelbook/internal/idempotency/repository"
	"hotelbook/pkg/config"
	apperrors "hotelbook/pkg/errors"
	"hotelbook/pkg/model"

	"github.com/google/uuid"
)

const maxClaimAttempts = 3

// Gate decides whether a keyed request executes, replays, or is refused.
// A key is owned by whoever inserted its pending record. Expired records and
// pending records older than the pending timeout can be taken over.
type Gate struct {
	repo           repository.IdempotencyRepository
	cfg            *config.Config
	ttl            time.Duration
	pendingTimeout time.Duration
	now            func() time.Time
}

func NewGate(repo repository.IdempotencyRepository, cfg *config.Config) *Gate {
	return &Gate{
		repo:           repo,
		cfg:            cfg,
		ttl:            cfg.IdempotencyTTL,
		pendingTimeout: cfg.IdempotencyPendingTimeout,
		now:            func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// Begin returns (nil, nil) when the caller owns the key and must execute, a
// finished record when its response should be replayed, and an AppError when
// the request is refused.
func (g *Gate) Begin(ctx context.Context, key, endpoint, requestHash string) (*model.IdempotencyRecord, error) {
	if key == "" {
		return nil, apperrors.InvalidInput("Idempotency key cannot be empty")
	}

	for attempt := 0; attempt < maxClaimAttempts; attempt++ {
		now := g.now()
		claim := g.pendingRecord(key, endpoint, requestHash, now)

		err := g.repo.Insert(ctx, claim)
		if err == nil {
			return nil, nil
		}
		if !errors.Is(err, idempotencyerrors.ErrDuplicateKey) {
			return nil, apperrors.Transient("Failed to record idempotency key", err)
		}

		existing, err := g.repo.FindByKey(ctx, key)
		if err != nil {
			if errors.Is(err, idempotencyerrors.ErrNotFound) {
				continue
			}
			return nil, apperrors.Transient("Failed to read idempotency key", err)
		}

		if existing.Expired(now) {
			if g.takeOver(ctx, existing, claim) {
				return nil, nil
			}
			continue
		}

		if existing.Endpoint != endpoint || existing.RequestHash != requestHash {
			return nil, apperrors.KeyReused(key)
		}

		switch existing.Status {
		case model.IdempotencyStatusCompleted, model.IdempotencyStatusFailed:
			return existing, nil
		}

		if now.Sub(existing.UpdatedAt) < g.pendingTimeout {
			return nil, apperrors.Processing("A request with this idempotency key is still being processed")
		}
		g.cfg.Log.Warn("Taking over abandoned idempotency key",
			"idempotency_key", key,
			"pending_since", existing.UpdatedAt,
		)
		if g.takeOver(ctx, existing, claim) {
			return nil, nil
		}
	}

	return nil, apperrors.Processing("A request with this idempotency key is still being processed")
}

func (g *Gate) Complete(ctx context.Context, key string, status int, body []byte) error {
	return g.finish(ctx, key, model.IdempotencyStatusCompleted, status, body)
}

func (g *Gate) Fail(ctx context.Context, key string, status int, body []byte) error {
	return g.finish(ctx, key, model.IdempotencyStatusFailed, status, body)
}

// Abandon forgets the key so a retry executes again.
func (g *Gate) Abandon(ctx context.Context, key string) error {
	if err := g.repo.Delete(ctx, key); err != nil {
		return apperrors.Internal("Failed to release idempotency key", err)
	}
	return nil
}

func (g *Gate) Purge(ctx context.Context) (int64, error) {
	purged, err := g.repo.PurgeExpired(ctx, g.now())
	if err != nil {
		return 0, apperrors.Internal("Failed to purge idempotency records", err)
	}
	return purged, nil
}

func (g *Gate) finish(ctx context.Context, key, outcome string, status int, body []byte) error {
	if err := g.repo.Finish(ctx, key, outcome, status, body, g.now()); err != nil {
		if errors.Is(err, idempotencyerrors.ErrNotFound) {
			// Taken over after the pending timeout; the new owner records its own outcome.
			g.cfg.Log.Warn("Idempotency record no longer pending", "idempotency_key", key, "outcome", outcome)
			return nil
		}
		return apperrors.Internal("Failed to store idempotent response", err)
	}
	return nil
}

func (g *Gate) takeOver(ctx context.Context, existing, claim *model.IdempotencyRecord) bool {
	swapped, err := g.repo.Replace(ctx, existing, claim)
	if err != nil {
		g.cfg.Log.Error("Failed to take over idempotency key", "idempotency_key", existing.Key, "error", err)
		return false
	}
	return swapped
}

func (g *Gate) pendingRecord(key, endpoint, requestHash string, now time.Time) *model.IdempotencyRecord {
	return &model.IdempotencyRecord{
		ID:          uuid.NewString(),
		Key:         key,
		Endpoint:    endpoint,
		RequestHash: requestHash,
		Status:      model.IdempotencyStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
		ExpiresAt:   now.Add(g.ttl),
	}
}
