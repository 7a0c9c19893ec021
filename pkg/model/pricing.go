package model

import "time"

const (
	RuleTypeSurge     = "SURGE"
	RuleTypeDiscount  = "DISCOUNT"
	RuleTypeDateRange = "DATE_RANGE"
	RuleTypeWeekend   = "WEEKEND"
	RuleTypeSeason    = "SEASON"
	RuleTypeSeasonal  = "SEASONAL"
)

type PricingRule struct {
	ID               string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	HotelID          string     `json:"hotel_id" bson:"hotel_id" validate:"required,mongodb"`
	RoomTypeID       string     `json:"room_type_id,omitempty" bson:"room_type_id,omitempty" validate:"omitempty,mongodb"`
	Name             string     `json:"name" bson:"name" validate:"required,max=100"`
	RuleType         string     `json:"rule_type" bson:"rule_type" validate:"required,oneof=SURGE DISCOUNT DATE_RANGE WEEKEND SEASON SEASONAL"`
	StartDate        *time.Time `json:"start_date,omitempty" bson:"start_date,omitempty"`
	EndDate          *time.Time `json:"end_date,omitempty" bson:"end_date,omitempty"`
	PercentageChange float64    `json:"percentage_change" bson:"percentage_change" validate:"gte=-100,lte=1000"`
	Priority         int        `json:"priority" bson:"priority"`
	IsActive         bool       `json:"is_active" bson:"is_active"`
	CreatedAt        time.Time  `json:"created_at" bson:"created_at"`
}

type AppliedRule struct {
	RuleID     string  `json:"rule_id"`
	Name       string  `json:"name"`
	RuleType   string  `json:"rule_type"`
	Percentage float64 `json:"percentage"`
	RateAfter  float64 `json:"rate_after"`
}

type PriceQuote struct {
	RoomTypeID          string         `json:"room_type_id"`
	BasePrice           float64        `json:"base_price"`
	TotalNights         int            `json:"total_nights"`
	RoomRate            float64        `json:"room_rate"`
	Subtotal            float64        `json:"subtotal"`
	PricingRulesApplied []*AppliedRule `json:"pricing_rules_applied"`
}
