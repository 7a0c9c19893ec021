package model

import "time"

type RoomAvailability struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty"`
	HotelID        string    `json:"hotel_id,omitempty" bson:"hotel_id,omitempty"`
	RoomTypeID     string    `json:"room_type_id" bson:"room_type_id" validate:"required,mongodb"`
	Date           time.Time `json:"date" bson:"date" validate:"required"`
	TotalRooms     int       `json:"total_rooms" bson:"total_rooms" validate:"gte=0"`
	AvailableRooms int       `json:"available_rooms" bson:"available_rooms" validate:"gte=0,ltefield=TotalRooms"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

type AvailabilityResult struct {
	RoomTypeID       string   `json:"room_type_id"`
	Available        bool     `json:"available"`
	TotalRooms       int      `json:"total_rooms"`
	AvailableRooms   int      `json:"available_rooms"`
	RequiredRooms    int      `json:"required_rooms"`
	UnavailableDates []string `json:"unavailable_dates"`
	Source           string   `json:"source"`
}
