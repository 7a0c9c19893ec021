package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	apperrors "hotelbook/pkg/errors"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = e.Error()
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(parts, "; "))
}

// Add appends a field error and returns the extended list.
func (v ValidationErrors) Add(field, message string) ValidationErrors {
	return append(v, ValidationError{Field: field, Message: message})
}

// ToAppError converts a validation failure into a 422 AppError listing every
// failing field. Other errors pass through unchanged.
func ToAppError(message string, err error) error {
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, map[string]any{"errors": []ValidationError(verrs)})
	}
	var verr ValidationError
	if errors.As(err, &verr) {
		return apperrors.Validation(message, map[string]any{"errors": []ValidationError{verr}})
	}
	return err
}

// New returns a validator that reports fields by their json name.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Struct validates s and translates validator errors into ValidationErrors.
func Struct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return Translate(fieldErrs)
	}
	return err
}

// messages maps a validator tag to a template taking the field name and the
// tag parameter.
var messages = map[string]string{
	"required":    "%s is required",
	"required_if": "%s is required",
	"min":         "%s must be at least %s",
	"max":         "%s must be at most %s",
	"gt":          "%s must be greater than %s",
	"gte":         "%s must be greater than or equal to %s",
	"lte":         "%s must be less than or equal to %s",
	"len":         "%s must be exactly %s characters",
	"mongodb":     "%s must be a valid MongoDB ObjectID%.0s",
	"oneof":       "%s must be one of: %s",
	"gtfield":     "%s must be after %s",
	"gtefield":    "%s must be after %s",
}

func Translate(errs validator.ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, 0, len(errs))
	for _, fe := range errs {
		message := fe.Error()
		if tmpl, ok := messages[fe.Tag()]; ok {
			message = fmt.Sprintf(tmpl, fe.Field(), fe.Param())
		}
		out = out.Add(fe.Field(), message)
	}
	return out
}
