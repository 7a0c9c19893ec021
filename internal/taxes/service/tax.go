package service

import (
	"context"
	"time"

	"hotelbook/internal/taxes/repository"
	"hotelbook/pkg/config"
	apperrors "hotelbook/pkg/errors"
	"hotelbook/pkg/model"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type TaxInput struct {
	BaseAmount float64
	Nights     int
}

type TaxService interface {
	Calculate(ctx context.Context, in TaxInput) (*model.TaxBreakdown, error)
	SeedDefaults(ctx context.Context) error
}

type taxService struct {
	repo repository.TaxRepository
	cfg  *config.Config
}

func NewTaxService(repo repository.TaxRepository, cfg *config.Config) TaxService {
	return &taxService{
		repo: repo,
		cfg:  cfg,
	}
}

// Calculate charges every active tax and fee on the base amount. Inclusive
// taxes are charged on top like exclusive ones.
func (s *taxService) Calculate(ctx context.Context, in TaxInput) (*model.TaxBreakdown, error) {
	if in.BaseAmount < 0 {
		return nil, apperrors.InvalidInput("Base amount cannot be negative")
	}

	taxes, err := s.repo.FindActiveTaxes(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to load taxes", "error", err)
		return nil, apperrors.Internal("Failed to load taxes", err)
	}
	fees, err := s.repo.FindActiveFees(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to load fees", "error", err)
		return nil, apperrors.Internal("Failed to load fees", err)
	}

	base := decimal.NewFromFloat(in.BaseAmount)
	now := time.Now().UTC()
	breakdown := &model.TaxBreakdown{
		Taxes:       make([]*model.LineItem, 0, len(taxes)),
		ServiceFees: make([]*model.LineItem, 0, len(fees)),
	}

	totalTaxes := decimal.Zero
	for _, tax := range taxes {
		amount := base.Mul(decimal.NewFromFloat(tax.Percentage)).Div(hundred).Round(2)
		totalTaxes = totalTaxes.Add(amount)
		breakdown.Taxes = append(breakdown.Taxes, &model.LineItem{
			Kind:         model.LineItemKindTax,
			SourceID:     tax.ID,
			Name:         tax.Name,
			Type:         model.AmountTypePercentage,
			Rate:         tax.Percentage,
			Amount:       amount.InexactFloat64(),
			Jurisdiction: tax.Country,
			CreatedAt:    now,
		})
	}

	totalFees := decimal.Zero
	for _, fee := range fees {
		amount := s.feeAmount(fee, base, in.Nights)
		totalFees = totalFees.Add(amount)
		breakdown.ServiceFees = append(breakdown.ServiceFees, &model.LineItem{
			Kind:      model.LineItemKindFee,
			SourceID:  fee.ID,
			Name:      fee.Name,
			Type:      fee.AmountType,
			Rate:      fee.Amount,
			Amount:    amount.InexactFloat64(),
			CreatedAt: now,
		})
	}

	breakdown.TotalTaxes = totalTaxes.InexactFloat64()
	breakdown.TotalFees = totalFees.InexactFloat64()
	breakdown.TotalWithTaxes = base.Add(totalTaxes).Add(totalFees).Round(2).InexactFloat64()
	return breakdown, nil
}

func (s *taxService) feeAmount(fee *model.Fee, base decimal.Decimal, nights int) decimal.Decimal {
	amount := decimal.NewFromFloat(fee.Amount)
	switch fee.AmountType {
	case model.AmountTypePercentage:
		return base.Mul(amount).Div(hundred).Round(2)
	case model.AmountTypePerNight:
		if s.cfg.PerNightFeesByNights && nights > 0 {
			return amount.Mul(decimal.NewFromInt(int64(nights))).Round(2)
		}
		return amount.Round(2)
	default:
		return amount.Round(2)
	}
}

// DefaultTaxes and DefaultFees are the starter configuration. Calculate
// charges every active row, so they are seeded once for the whole
// deployment rather than per hotel.
var (
	DefaultTaxes = []model.Tax{
		{Name: "VAT", Percentage: 7, IsActive: true},
		{Name: "City Tax", Percentage: 2, IsActive: true},
	}
	DefaultFees = []model.Fee{
		{Name: "Service Charge", FeeType: "service", AmountType: model.AmountTypePercentage, Amount: 10, IsActive: true},
		{Name: "Cleaning Fee", FeeType: "cleaning", AmountType: model.AmountTypeFixed, Amount: 25, IsActive: true},
		{Name: "Resort Fee", FeeType: "resort", AmountType: model.AmountTypePerNight, Amount: 15, IsActive: true},
	}
)

func (s *taxService) SeedDefaults(ctx context.Context) error {
	for _, tax := range DefaultTaxes {
		if err := s.repo.UpsertTax(ctx, &tax); err != nil {
			return apperrors.Internal("Failed to seed taxes", err)
		}
	}
	for _, fee := range DefaultFees {
		if err := s.repo.UpsertFee(ctx, &fee); err != nil {
			return apperrors.Internal("Failed to seed fees", err)
		}
	}

	s.cfg.Log.Info("Seeded default taxes and fees",
		"taxes", len(DefaultTaxes),
		"fees", len(DefaultFees),
	)
	return nil
}
