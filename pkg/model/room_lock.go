package model

import "time"

const (
	LockStatusActive   = "ACTIVE"
	LockStatusReleased = "RELEASED"
	LockStatusExpired  = "EXPIRED"
)

const (
	LockTypeBooking = "BOOKING"
	LockTypeManual  = "MANUAL"
)

// RoomLock is a short-lived mutual-exclusion record on a single room. At most
// one ACTIVE lock exists per room; the Room_locks collection enforces this with
// a partial unique index.
type RoomLock struct {
	ID             string     `json:"id" bson:"_id"`
	HotelID        string     `json:"hotel_id" bson:"hotel_id" validate:"required"`
	RoomID         string     `json:"room_id" bson:"room_id" validate:"required"`
	LockedByUserID string     `json:"locked_by_user_id" bson:"locked_by_user_id" validate:"required"`
	LockType       string     `json:"lock_type" bson:"lock_type" validate:"required,oneof=BOOKING MANUAL"`
	LockedUntil    time.Time  `json:"locked_until" bson:"locked_until"`
	Status         string     `json:"status" bson:"status"`
	CreatedAt      time.Time  `json:"created_at" bson:"created_at"`
	ReleasedAt     *time.Time `json:"released_at,omitempty" bson:"released_at,omitempty"`
}

type AcquireLockRequest struct {
	HotelID    string `json:"hotel_id" validate:"required,mongodb"`
	RoomID     string `json:"room_id" validate:"required,mongodb"`
	LockType   string `json:"lock_type" validate:"omitempty,oneof=BOOKING MANUAL"`
	TTLSeconds int    `json:"ttl_seconds" validate:"omitempty,min=1,max=3600"`
}
