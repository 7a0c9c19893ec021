package model

import "time"

const (
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
	EventBookingRejected  = "booking.rejected"
)

const (
	CommandCreateBooking = "create_booking"
	CommandCancelBooking = "cancel_booking"
)

type BookingEvent struct {
	Type       string    `json:"type"`
	BookingID  string    `json:"booking_id,omitempty"`
	UserID     string    `json:"user_id"`
	HotelID    string    `json:"hotel_id,omitempty"`
	RoomTypeID string    `json:"room_type_id,omitempty"`
	CheckIn    time.Time `json:"check_in,omitzero"`
	CheckOut   time.Time `json:"check_out,omitzero"`
	Total      float64   `json:"total_amount,omitempty"`
	Currency   string    `json:"currency,omitempty"`
	Status     string    `json:"status,omitempty"`
	Error      string    `json:"error,omitempty"`
	ErrorCode  string    `json:"error_code,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingCommand is the asynchronous counterpart of the HTTP booking API.
type BookingCommand struct {
	Type      string                `json:"type" validate:"required,oneof=create_booking cancel_booking"`
	UserID    string                `json:"user_id" validate:"required"`
	Create    *CreateBookingRequest `json:"create,omitempty" validate:"required_if=Type create_booking"`
	BookingID string                `json:"booking_id,omitempty" validate:"required_if=Type cancel_booking"`
}
