package model

import "time"

const (
	IdempotencyStatusPending   = "pending"
	IdempotencyStatusCompleted = "completed"
	IdempotencyStatusFailed    = "failed"
)

type IdempotencyRecord struct {
	ID             string    `json:"id" bson:"_id"`
	Key            string    `json:"key" bson:"key"`
	Endpoint       string    `json:"endpoint" bson:"endpoint"`
	RequestHash    string    `json:"request_hash" bson:"request_hash"`
	Status         string    `json:"status" bson:"status"`
	ResponseStatus int       `json:"response_status,omitempty" bson:"response_status,omitempty"`
	ResponseData   []byte    `json:"-" bson:"response_data,omitempty"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
	ExpiresAt      time.Time `json:"expires_at" bson:"expires_at"`
}

func (r *IdempotencyRecord) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}
