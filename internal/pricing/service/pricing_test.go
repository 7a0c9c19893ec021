package service

import (
	"context"
	"testing"
	"time"

	catalogerrors "hotelbook/internal/catalog/errors"
	"hotelbook/internal/pricing/validator"
	"hotelbook/pkg/config"
	apperrors "hotelbook/pkg/errors"
	"hotelbook/pkg/logger"
	"hotelbook/pkg/model"

	"github.com/shopspring/decimal"
)

const (
	hotelID    = "64b7f0c2a1b2c3d4e5f60701"
	roomTypeID = "64b7f0c2a1b2c3d4e5f60702"
)

type mockCatalog struct {
	findRoomTypeFunc func(ctx context.Context, id string) (*model.RoomType, error)
}

func (m *mockCatalog) FindRoomType(ctx context.Context, id string) (*model.RoomType, error) {
	if m.findRoomTypeFunc != nil {
		return m.findRoomTypeFunc(ctx, id)
	}
	return &model.RoomType{ID: id, HotelID: hotelID, BasePrice: 100, MaxGuests: 2}, nil
}

func (m *mockCatalog) ListRoomIDs(ctx context.Context, roomTypeID string, status string) ([]string, error) {
	return nil, nil
}

func (m *mockCatalog) CountRooms(ctx context.Context, roomTypeID string, status string) (int64, error) {
	return 0, nil
}

type mockRuleRepository struct {
	rules      []*model.PricingRule
	createFunc func(ctx context.Context, rule *model.PricingRule) error
}

func (m *mockRuleRepository) Create(ctx context.Context, rule *model.PricingRule) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, rule)
	}
	m.rules = append(m.rules, rule)
	return nil
}

func (m *mockRuleRepository) FindActive(ctx context.Context, hotelID, roomTypeID string) ([]*model.PricingRule, error) {
	return m.rules, nil
}

func newTestService(rules *mockRuleRepository, catalog *mockCatalog) *pricingService {
	log := logger.NewNop()
	return &pricingService{
		rules:     rules,
		catalog:   catalog,
		validator: validator.NewPricingRuleValidator(log),
		cfg:       &config.Config{Log: log},
	}
}

func day(d int) time.Time {
	return time.Date(2030, time.March, d, 0, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func TestQuote_SurgeOverTwoNights(t *testing.T) {
	rules := &mockRuleRepository{rules: []*model.PricingRule{
		{ID: "r1", Name: "Spring surge", RuleType: model.RuleTypeSurge, PercentageChange: 20, IsActive: true},
	}}
	svc := newTestService(rules, &mockCatalog{})

	quote, err := svc.Quote(context.Background(), QuoteInput{
		HotelID: hotelID, RoomTypeID: roomTypeID, CheckIn: day(10), CheckOut: day(12), Guests: 2,
	})
	if err != nil {
		t.Fatalf("Quote() error = %v", err)
	}

	if quote.TotalNights != 2 {
		t.Errorf("nights = %d, want 2", quote.TotalNights)
	}
	if quote.RoomRate != 120 {
		t.Errorf("room_rate = %v, want 120", quote.RoomRate)
	}
	if quote.Subtotal != 240 {
		t.Errorf("subtotal = %v, want 240", quote.Subtotal)
	}
	if len(quote.PricingRulesApplied) != 1 || quote.PricingRulesApplied[0].RateAfter != 120 {
		t.Errorf("applied = %+v", quote.PricingRulesApplied)
	}
}

func TestQuote_NoRulesUsesBasePrice(t *testing.T) {
	svc := newTestService(&mockRuleRepository{}, &mockCatalog{})

	quote, err := svc.Quote(context.Background(), QuoteInput{
		RoomTypeID: roomTypeID, CheckIn: day(1), CheckOut: day(4), Guests: 1,
	})
	if err != nil {
		t.Fatalf("Quote() error = %v", err)
	}
	if quote.RoomRate != 100 || quote.Subtotal != 300 {
		t.Errorf("quote = %+v, want rate 100 subtotal 300", quote)
	}
	if len(quote.PricingRulesApplied) != 0 {
		t.Errorf("applied = %d rules, want 0", len(quote.PricingRulesApplied))
	}
}

func TestQuote_PartialDayCountsAsNight(t *testing.T) {
	svc := newTestService(&mockRuleRepository{}, &mockCatalog{})

	quote, err := svc.Quote(context.Background(), QuoteInput{
		RoomTypeID: roomTypeID,
		CheckIn:    day(1).Add(14 * time.Hour),
		CheckOut:   day(3).Add(11 * time.Hour),
		Guests:     1,
	})
	if err != nil {
		t.Fatalf("Quote() error = %v", err)
	}
	if quote.TotalNights != 2 {
		t.Errorf("nights = %d, want 2", quote.TotalNights)
	}
}

func TestQuote_Errors(t *testing.T) {
	tests := []struct {
		name     string
		catalog  *mockCatalog
		in       QuoteInput
		wantCode string
	}{
		{
			name:     "check-out before check-in",
			catalog:  &mockCatalog{},
			in:       QuoteInput{RoomTypeID: roomTypeID, CheckIn: day(5), CheckOut: day(5), Guests: 1},
			wantCode: apperrors.CodeInvalidInput,
		},
		{
			name: "unknown room type",
			catalog: &mockCatalog{findRoomTypeFunc: func(ctx context.Context, id string) (*model.RoomType, error) {
				return nil, catalogerrors.ErrRoomTypeNotFound
			}},
			in:       QuoteInput{RoomTypeID: roomTypeID, CheckIn: day(1), CheckOut: day(2), Guests: 1},
			wantCode: apperrors.CodeNotFound,
		},
		{
			name:     "too many guests",
			catalog:  &mockCatalog{},
			in:       QuoteInput{RoomTypeID: roomTypeID, CheckIn: day(1), CheckOut: day(2), Guests: 3},
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "room type of another hotel",
			catalog:  &mockCatalog{},
			in:       QuoteInput{HotelID: "64b7f0c2a1b2c3d4e5f60799", RoomTypeID: roomTypeID, CheckIn: day(1), CheckOut: day(2), Guests: 1},
			wantCode: apperrors.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(&mockRuleRepository{}, tt.catalog)
			_, err := svc.Quote(context.Background(), tt.in)
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Errorf("Quote() error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestApplicableRules(t *testing.T) {
	older := time.Date(2029, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	rules := []*model.PricingRule{
		{ID: "inactive", RuleType: model.RuleTypeSurge, IsActive: false},
		{ID: "other-type", RoomTypeID: "64b7f0c2a1b2c3d4e5f60799", RuleType: model.RuleTypeSurge, IsActive: true},
		{ID: "starts-at-checkout", RuleType: model.RuleTypeDateRange, StartDate: ptr(day(12)), IsActive: true},
		{ID: "ended-before", RuleType: model.RuleTypeDateRange, EndDate: ptr(day(9)), IsActive: true},
		{ID: "seasonal-out-of-window", RuleType: model.RuleTypeSeasonal, StartDate: ptr(day(20)), IsActive: true, Priority: 1},
		{ID: "low-old", RuleType: model.RuleTypeSurge, IsActive: true, Priority: 5, CreatedAt: older},
		{ID: "low-new", RuleType: model.RuleTypeSurge, IsActive: true, Priority: 5, CreatedAt: newer},
		{ID: "high", RuleType: model.RuleTypeDiscount, RoomTypeID: roomTypeID, IsActive: true, Priority: 10},
		{ID: "overlapping", RuleType: model.RuleTypeDateRange, StartDate: ptr(day(11)), EndDate: ptr(day(30)), IsActive: true},
	}

	got := ApplicableRules(rules, roomTypeID, day(10), day(12))

	want := []string{"high", "low-new", "low-old", "seasonal-out-of-window", "overlapping"}
	if len(got) != len(want) {
		t.Fatalf("got %d rules, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("rule[%d] = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestApplyRules(t *testing.T) {
	tests := []struct {
		name  string
		base  float64
		rules []*model.PricingRule
		want  string
	}{
		{
			name:  "discount with positive percentage",
			base:  200,
			rules: []*model.PricingRule{{RuleType: model.RuleTypeDiscount, PercentageChange: 15}},
			want:  "170",
		},
		{
			name:  "discount with negative percentage",
			base:  200,
			rules: []*model.PricingRule{{RuleType: model.RuleTypeDiscount, PercentageChange: -15}},
			want:  "170",
		},
		{
			name:  "surge with negative percentage still raises",
			base:  100,
			rules: []*model.PricingRule{{RuleType: model.RuleTypeSurge, PercentageChange: -10}},
			want:  "110",
		},
		{
			name:  "signed date range",
			base:  100,
			rules: []*model.PricingRule{{RuleType: model.RuleTypeDateRange, PercentageChange: -25}},
			want:  "75",
		},
		{
			name: "compounding",
			base: 100,
			rules: []*model.PricingRule{
				{RuleType: model.RuleTypeSurge, PercentageChange: 10},
				{RuleType: model.RuleTypeWeekend, PercentageChange: 10},
			},
			want: "121",
		},
		{
			name:  "floored at zero",
			base:  80,
			rules: []*model.PricingRule{{RuleType: model.RuleTypeSeason, PercentageChange: -150}},
			want:  "0",
		},
		{
			name:  "rounded half away from zero",
			base:  33.33,
			rules: []*model.PricingRule{{RuleType: model.RuleTypeSurge, PercentageChange: 5}},
			want:  "35",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, applied := ApplyRules(decimal.NewFromFloat(tt.base), tt.rules)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("rate = %s, want %s", got, tt.want)
			}
			if len(applied) != len(tt.rules) {
				t.Errorf("applied = %d, want %d", len(applied), len(tt.rules))
			}
		})
	}
}

func TestCreateRule(t *testing.T) {
	rules := &mockRuleRepository{}
	svc := newTestService(rules, &mockCatalog{})

	err := svc.CreateRule(context.Background(), &model.PricingRule{
		HotelID:          hotelID,
		Name:             "Bad window",
		RuleType:         model.RuleTypeDateRange,
		StartDate:        ptr(day(10)),
		EndDate:          ptr(day(5)),
		PercentageChange: 10,
		IsActive:         true,
	})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("CreateRule() error = %v, want validation", err)
	}

	err = svc.CreateRule(context.Background(), &model.PricingRule{
		HotelID:          hotelID,
		Name:             "Summer",
		RuleType:         model.RuleTypeSeasonal,
		PercentageChange: 12.5,
		IsActive:         true,
	})
	if err != nil {
		t.Fatalf("CreateRule() error = %v", err)
	}
	if len(rules.rules) != 1 {
		t.Errorf("stored rules = %d, want 1", len(rules.rules))
	}
}
