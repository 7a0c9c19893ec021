package model

import "time"

const (
	RoomStatusAvailable    = "available"
	RoomStatusMaintenance  = "maintenance"
	RoomStatusOutOfService = "out_of_service"
)

type RoomType struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	HotelID   string    `json:"hotel_id" bson:"hotel_id" validate:"required,mongodb"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	BasePrice float64   `json:"base_price" bson:"base_price" validate:"gte=0"`
	MaxGuests int       `json:"max_guests" bson:"max_guests" validate:"required,min=1"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

type Room struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	HotelID    string    `json:"hotel_id" bson:"hotel_id" validate:"required,mongodb"`
	RoomTypeID string    `json:"room_type_id" bson:"room_type_id" validate:"required,mongodb"`
	Number     string    `json:"number" bson:"number" validate:"required,max=20"`
	Status     string    `json:"status" bson:"status" validate:"required,oneof=available maintenance out_of_service"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}
