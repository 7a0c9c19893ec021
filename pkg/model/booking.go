package model

import "time"

const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Availability modes recorded on a booking so cancellation restores the same
// resource it consumed.
const (
	AvailabilityModeCounters = "counters"
	AvailabilityModeRooms    = "rooms"
)

type Booking struct {
	ID               string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID           string     `json:"user_id" bson:"user_id" validate:"required,max=128"`
	HotelID          string     `json:"hotel_id" bson:"hotel_id" validate:"required,mongodb"`
	RoomTypeID       string     `json:"room_type_id" bson:"room_type_id" validate:"required,mongodb"`
	CheckIn          time.Time  `json:"check_in" bson:"check_in" validate:"required"`
	CheckOut         time.Time  `json:"check_out" bson:"check_out" validate:"required,gtfield=CheckIn"`
	Guests           int        `json:"guests" bson:"guests" validate:"required,min=1"`
	Nights           int        `json:"nights" bson:"nights" validate:"required,min=1"`
	RoomRate         float64    `json:"room_rate" bson:"room_rate" validate:"gte=0"`
	Subtotal         float64    `json:"subtotal" bson:"subtotal" validate:"gte=0"`
	TotalTaxes       float64    `json:"total_taxes" bson:"total_taxes" validate:"gte=0"`
	TotalFees        float64    `json:"total_fees" bson:"total_fees" validate:"gte=0"`
	TotalAmount      float64    `json:"total_amount" bson:"total_amount" validate:"gte=0"`
	Currency         string     `json:"currency" bson:"currency" validate:"required,len=3"`
	Status           string     `json:"status" bson:"status" validate:"required,oneof=confirmed cancelled"`
	AvailabilityMode string     `json:"availability_mode" bson:"availability_mode" validate:"required,oneof=counters rooms"`
	IdempotencyKey   string     `json:"idempotency_key,omitempty" bson:"idempotency_key,omitempty"`
	CreatedAt        time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" bson:"updated_at"`
	CancelledAt      *time.Time `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
}

func (b *Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}

// CreateBookingRequest is the caller-facing input. Dates are calendar dates
// (2006-01-02) or RFC3339 timestamps.
type CreateBookingRequest struct {
	HotelID    string `json:"hotel_id" validate:"required,mongodb"`
	RoomTypeID string `json:"room_type_id" validate:"required,mongodb"`
	CheckIn    string `json:"check_in" validate:"required"`
	CheckOut   string `json:"check_out" validate:"required"`
	Guests     int    `json:"guests" validate:"required,min=1,max=50"`
}

type CreateBookingResult struct {
	Booking   *Booking      `json:"booking"`
	Pricing   *PriceQuote   `json:"pricing"`
	Taxes     *TaxBreakdown `json:"taxes"`
	LineItems []*LineItem   `json:"line_items"`
	TotalPaid float64       `json:"total_paid"`
}
