package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	catalogerrors "hotelbook/internal/catalog/errors"
	catalogrepo "hotelbook/internal/catalog/repository"
	pricingerrors "hotelbook/internal/pricing/errors"
	"hotelbook/internal/pricing/repository"
	"hotelbook/internal/pricing/validator"
	"hotelbook/pkg/config"
	apperrors "hotelbook/pkg/errors"
	"hotelbook/pkg/model"
	"hotelbook/pkg/sanitizer"
	"hotelbook/pkg/validation"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type QuoteInput struct {
	HotelID    string
	RoomTypeID string
	CheckIn    time.Time
	CheckOut   time.Time
	Guests     int
}

type PricingService interface {
	Quote(ctx context.Context, in QuoteInput) (*model.PriceQuote, error)
	CreateRule(ctx context.Context, rule *model.PricingRule) error
}

type pricingService struct {
	rules     repository.PricingRuleRepository
	catalog   catalogrepo.CatalogRepository
	validator *validator.PricingRuleValidator
	cfg       *config.Config
}

func NewPricingService(
	rules repository.PricingRuleRepository,
	catalog catalogrepo.CatalogRepository,
	validator *validator.PricingRuleValidator,
	cfg *config.Config,
) PricingService {
	return &pricingService{
		rules:     rules,
		catalog:   catalog,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *pricingService) Quote(ctx context.Context, in QuoteInput) (*model.PriceQuote, error) {
	nights, err := StayNights(in.CheckIn, in.CheckOut)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	roomType, err := s.catalog.FindRoomType(ctx, in.RoomTypeID)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrRoomTypeNotFound) {
			return nil, apperrors.NotFoundWithID("RoomType", in.RoomTypeID)
		}
		if errors.Is(err, catalogerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid room type ID format")
		}
		return nil, apperrors.Internal("Failed to load room type", err)
	}

	if in.HotelID != "" && roomType.HotelID != in.HotelID {
		return nil, apperrors.Validation(pricingerrors.ErrRoomTypeHotelMismatch.Error(), map[string]any{
			"hotel_id":     in.HotelID,
			"room_type_id": in.RoomTypeID,
		})
	}
	if in.Guests < 1 || in.Guests > roomType.MaxGuests {
		return nil, apperrors.Validation(pricingerrors.ErrGuestsExceedCapacity.Error(), map[string]any{
			"guests":     in.Guests,
			"max_guests": roomType.MaxGuests,
		})
	}

	rules, err := s.rules.FindActive(ctx, roomType.HotelID, roomType.ID)
	if err != nil {
		s.cfg.Log.Error("Failed to load pricing rules", "hotel_id", roomType.HotelID, "room_type_id", roomType.ID, "error", err)
		return nil, apperrors.Internal("Failed to load pricing rules", err)
	}

	applicable := ApplicableRules(rules, roomType.ID, in.CheckIn, in.CheckOut)
	roomRate, applied := ApplyRules(decimal.NewFromFloat(roomType.BasePrice), applicable)
	subtotal := roomRate.Mul(decimal.NewFromInt(int64(nights))).Round(2)

	return &model.PriceQuote{
		RoomTypeID:          roomType.ID,
		BasePrice:           roomType.BasePrice,
		TotalNights:         nights,
		RoomRate:            roomRate.InexactFloat64(),
		Subtotal:            subtotal.InexactFloat64(),
		PricingRulesApplied: applied,
	}, nil
}

func (s *pricingService) CreateRule(ctx context.Context, rule *model.PricingRule) error {
	rule.HotelID = sanitizer.NormalizeID(rule.HotelID)
	rule.RoomTypeID = sanitizer.NormalizeID(rule.RoomTypeID)
	rule.Name = sanitizer.NormalizeName(rule.Name)
	rule.RuleType = sanitizer.NormalizeCode(rule.RuleType)

	if err := s.validator.Validate(rule); err != nil {
		return validation.ToAppError("Pricing rule validation failed", err)
	}

	if err := s.rules.Create(ctx, rule); err != nil {
		return apperrors.Internal("Failed to create pricing rule", err)
	}

	s.cfg.Log.Info("Pricing rule created",
		"id", rule.ID,
		"hotel_id", rule.HotelID,
		"rule_type", rule.RuleType,
		"percentage_change", rule.PercentageChange,
	)
	return nil
}

// StayNights counts started 24h periods between check-in and check-out.
func StayNights(checkIn, checkOut time.Time) (int, error) {
	if !checkOut.After(checkIn) {
		return 0, pricingerrors.ErrInvalidDateRange
	}
	return int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24)), nil
}

// ApplicableRules filters rules down to those that touch the stay and orders
// them by priority, newest first on ties. Seasonal rules ignore their window.
func ApplicableRules(rules []*model.PricingRule, roomTypeID string, checkIn, checkOut time.Time) []*model.PricingRule {
	out := make([]*model.PricingRule, 0, len(rules))
	for _, rule := range rules {
		if !rule.IsActive {
			continue
		}
		if rule.RoomTypeID != "" && rule.RoomTypeID != roomTypeID {
			continue
		}
		if rule.RuleType != model.RuleTypeSeasonal {
			if rule.StartDate != nil && !rule.StartDate.Before(checkOut) {
				continue
			}
			if rule.EndDate != nil && rule.EndDate.Before(checkIn) {
				continue
			}
		}
		out = append(out, rule)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// ApplyRules folds the rules over the base rate and returns the nightly rate
// rounded to cents. The rate never drops below zero.
func ApplyRules(base decimal.Decimal, rules []*model.PricingRule) (decimal.Decimal, []*model.AppliedRule) {
	rate := base
	applied := make([]*model.AppliedRule, 0, len(rules))

	for _, rule := range rules {
		rate = rate.Mul(ruleFactor(rule))
		if rate.IsNegative() {
			rate = decimal.Zero
		}
		applied = append(applied, &model.AppliedRule{
			RuleID:     rule.ID,
			Name:       rule.Name,
			RuleType:   rule.RuleType,
			Percentage: rule.PercentageChange,
			RateAfter:  rate.Round(2).InexactFloat64(),
		})
	}

	return rate.Round(2), applied
}

func ruleFactor(rule *model.PricingRule) decimal.Decimal {
	pct := decimal.NewFromFloat(rule.PercentageChange).Div(hundred)
	switch rule.RuleType {
	case model.RuleTypeSurge:
		return decimal.NewFromInt(1).Add(pct.Abs())
	case model.RuleTypeDiscount:
		return decimal.NewFromInt(1).Sub(pct.Abs())
	default:
		return decimal.NewFromInt(1).Add(pct)
	}
}
