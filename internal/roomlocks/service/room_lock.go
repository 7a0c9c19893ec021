package service

import (
	"context"
	"errors"
	"slices"
	"time"

	roomlockerrors "hotelbook/internal/roomlocks/errors"
	"hotelbook/internal/roomlocks/repository"
	"hotelbook/internal/roomlocks/validator"
	"hotelbook/pkg/config"
	apperrors "hotelbook/pkg/errors"
	"hotelbook/pkg/model"
	"hotelbook/pkg/validation"

	"github.com/google/uuid"
)

type AcquireAnyInput struct {
	HotelID    string
	UserID     string
	Candidates []string
	LockType   string
	TTL        time.Duration
}

type RoomLockService interface {
	Acquire(ctx context.Context, userID string, req *model.AcquireLockRequest) (*model.RoomLock, error)
	// AcquireAny locks the first candidate room that is not locked. Losing
	// every candidate is reported as a transient error since locks are short.
	AcquireAny(ctx context.Context, in AcquireAnyInput) (*model.RoomLock, error)
	Release(ctx context.Context, lockID, userID string) error
	Sweep(ctx context.Context) (int64, error)
	StartSweeper(ctx context.Context, interval time.Duration)
}

type roomLockService struct {
	repo      repository.RoomLockRepository
	validator *validator.RoomLockValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewRoomLockService(repo repository.RoomLockRepository, validator *validator.RoomLockValidator, cfg *config.Config) RoomLockService {
	return &roomLockService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func (s *roomLockService) Acquire(ctx context.Context, userID string, req *model.AcquireLockRequest) (*model.RoomLock, error) {
	if userID == "" {
		return nil, apperrors.Unauthorized("User ID is required to lock a room")
	}
	if req.LockType == "" {
		req.LockType = model.LockTypeManual
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, validation.ToAppError("Room lock validation failed", err)
	}

	ttl := s.cfg.RoomLockTTL
	if req.TTLSeconds > 0 {
		ttl = time.Duration(req.TTLSeconds) * time.Second
	}

	now := s.now()
	if _, err := s.repo.ExpireStale(ctx, []string{req.RoomID}, now); err != nil {
		return nil, apperrors.Internal("Failed to expire stale room locks", err)
	}

	lock := s.newLock(req.HotelID, req.RoomID, userID, req.LockType, now, ttl)
	if err := s.repo.Insert(ctx, lock); err != nil {
		if errors.Is(err, roomlockerrors.ErrLockHeld) {
			return nil, apperrors.Conflict("Room is currently locked")
		}
		return nil, apperrors.Internal("Failed to acquire room lock", err)
	}

	s.cfg.Log.Info("Room lock acquired",
		"lock_id", lock.ID,
		"room_id", lock.RoomID,
		"user_id", userID,
		"locked_until", lock.LockedUntil,
	)
	return lock, nil
}

func (s *roomLockService) AcquireAny(ctx context.Context, in AcquireAnyInput) (*model.RoomLock, error) {
	if len(in.Candidates) == 0 {
		return nil, apperrors.InvalidInput("No rooms to lock")
	}
	ttl := in.TTL
	if ttl <= 0 {
		ttl = s.cfg.RoomLockTTL
	}
	if in.LockType == "" {
		in.LockType = model.LockTypeBooking
	}

	now := s.now()
	if _, err := s.repo.ExpireStale(ctx, in.Candidates, now); err != nil {
		return nil, apperrors.Internal("Failed to expire stale room locks", err)
	}

	locked, err := s.repo.LockedRoomIDs(ctx, in.Candidates)
	if err != nil {
		return nil, apperrors.Internal("Failed to read room locks", err)
	}

	for _, roomID := range in.Candidates {
		if slices.Contains(locked, roomID) {
			continue
		}
		lock := s.newLock(in.HotelID, roomID, in.UserID, in.LockType, now, ttl)
		if err := s.repo.Insert(ctx, lock); err != nil {
			if errors.Is(err, roomlockerrors.ErrLockHeld) {
				return nil, apperrors.Transient("Room lock is held by a concurrent request, retry shortly", err)
			}
			return nil, apperrors.Internal("Failed to acquire room lock", err)
		}
		return lock, nil
	}

	return nil, apperrors.Transient("All rooms of this type are locked, retry shortly", nil)
}

func (s *roomLockService) Release(ctx context.Context, lockID, userID string) error {
	if lockID == "" {
		return apperrors.InvalidInput("Lock ID cannot be empty")
	}

	released, err := s.repo.Release(ctx, lockID, userID, s.now())
	if err != nil {
		return apperrors.Internal("Failed to release room lock", err)
	}
	if !released {
		return apperrors.NotFoundWithID("RoomLock", lockID)
	}

	s.cfg.Log.Debug("Room lock released", "lock_id", lockID, "user_id", userID)
	return nil
}

func (s *roomLockService) Sweep(ctx context.Context) (int64, error) {
	expired, err := s.repo.ExpireStale(ctx, nil, s.now())
	if err != nil {
		return 0, apperrors.Internal("Failed to sweep room locks", err)
	}
	if expired > 0 {
		s.cfg.Log.Info("Expired stale room locks", "count", expired)
	}
	return expired, nil
}

// StartSweeper expires stale locks every interval until ctx is done.
func (s *roomLockService) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.Sweep(ctx); err != nil && ctx.Err() == nil {
					s.cfg.Log.Warn("Room lock sweep failed", "error", err)
				}
			}
		}
	}()
}

func (s *roomLockService) newLock(hotelID, roomID, userID, lockType string, now time.Time, ttl time.Duration) *model.RoomLock {
	return &model.RoomLock{
		ID:             uuid.NewString(),
		HotelID:        hotelID,
		RoomID:         roomID,
		LockedByUserID: userID,
		LockType:       lockType,
		LockedUntil:    now.Add(ttl),
		Status:         model.LockStatusActive,
		CreatedAt:      now,
	}
}
