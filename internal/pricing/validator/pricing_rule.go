package validator

import (
	"hotelbook/pkg/logger"
	"hotelbook/pkg/model"
	"hotelbook/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type PricingRuleValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewPricingRuleValidator(log *logger.Logger) *PricingRuleValidator {
	return &PricingRuleValidator{
		validate: validation.New(),
		logger:   log,
	}
}

func (v *PricingRuleValidator) Validate(rule *model.PricingRule) error {
	if err := validation.Struct(v.validate, rule); err != nil {
		return err
	}

	var errs validation.ValidationErrors
	if rule.StartDate != nil && rule.EndDate != nil && rule.EndDate.Before(*rule.StartDate) {
		errs = errs.Add("end_date", "end_date must not be before start_date")
	}
	if rule.RuleType == model.RuleTypeDiscount && rule.PercentageChange > 100 {
		errs = errs.Add("percentage_change", "a discount cannot exceed 100 percent")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
