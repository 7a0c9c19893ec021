package model

import "time"

const (
	AmountTypePercentage = "PERCENTAGE"
	AmountTypeFixed      = "FIXED"
	AmountTypePerNight   = "PER_NIGHT"
)

const (
	LineItemKindTax = "tax"
	LineItemKindFee = "fee"
)

type Tax struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	HotelID     string    `json:"hotel_id,omitempty" bson:"hotel_id,omitempty" validate:"omitempty,mongodb"`
	Name        string    `json:"name" bson:"name" validate:"required,max=100"`
	Country     string    `json:"country,omitempty" bson:"country,omitempty" validate:"omitempty,len=2"`
	Percentage  float64   `json:"percentage" bson:"percentage" validate:"gte=0,lte=100"`
	IsInclusive bool      `json:"is_inclusive" bson:"is_inclusive"`
	IsActive    bool      `json:"is_active" bson:"is_active"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

type Fee struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	HotelID    string    `json:"hotel_id,omitempty" bson:"hotel_id,omitempty" validate:"omitempty,mongodb"`
	Name       string    `json:"name" bson:"name" validate:"required,max=100"`
	FeeType    string    `json:"fee_type" bson:"fee_type" validate:"required,max=50"`
	AmountType string    `json:"amount_type" bson:"amount_type" validate:"required,oneof=PERCENTAGE FIXED PER_NIGHT"`
	Amount     float64   `json:"amount" bson:"amount" validate:"gte=0"`
	IsActive   bool      `json:"is_active" bson:"is_active"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// LineItem is one tax or fee charged on a booking. Kind discriminates the
// two; SourceID points at the Tax or Fee it was computed from.
type LineItem struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty"`
	BookingID    string    `json:"booking_id,omitempty" bson:"booking_id"`
	Kind         string    `json:"kind" bson:"kind" validate:"required,oneof=tax fee"`
	SourceID     string    `json:"source_id" bson:"source_id"`
	Name         string    `json:"name" bson:"name"`
	Type         string    `json:"type" bson:"type"`
	Rate         float64   `json:"rate" bson:"rate"`
	Amount       float64   `json:"amount" bson:"amount"`
	Jurisdiction string    `json:"jurisdiction,omitempty" bson:"jurisdiction,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

type TaxBreakdown struct {
	Taxes          []*LineItem `json:"taxes"`
	ServiceFees    []*LineItem `json:"service_fees"`
	TotalTaxes     float64     `json:"total_taxes"`
	TotalFees      float64     `json:"total_fees"`
	TotalWithTaxes float64     `json:"total_with_taxes"`
}

// LineItems returns taxes followed by fees.
func (b *TaxBreakdown) LineItems() []*LineItem {
	items := make([]*LineItem, 0, len(b.Taxes)+len(b.ServiceFees))
	items = append(items, b.Taxes...)
	return append(items, b.ServiceFees...)
}
