package validator

import (
	"hotelbook/internal/availability/service"
	httputil "hotelbook/pkg/http"
	"hotelbook/pkg/logger"
	"hotelbook/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// AvailabilityQuery mirrors the query string of GET /api/v1/availability.
type AvailabilityQuery struct {
	RoomTypeID string `json:"room_type_id" validate:"required,mongodb"`
	CheckIn    string `json:"check_in" validate:"required"`
	CheckOut   string `json:"check_out" validate:"required"`
	Rooms      int    `json:"rooms" validate:"min=1,max=50"`
}

type AvailabilityValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewAvailabilityValidator(log *logger.Logger) *AvailabilityValidator {
	return &AvailabilityValidator{
		validate: validation.New(),
		logger:   log,
	}
}

// Parse validates q and converts it into a service query.
func (v *AvailabilityValidator) Parse(q *AvailabilityQuery) (service.CheckInput, error) {
	if err := validation.Struct(v.validate, q); err != nil {
		return service.CheckInput{}, validation.ToAppError("Availability query validation failed", err)
	}

	checkIn, err := httputil.ParseDate("check_in", q.CheckIn)
	if err != nil {
		return service.CheckInput{}, err
	}
	checkOut, err := httputil.ParseDate("check_out", q.CheckOut)
	if err != nil {
		return service.CheckInput{}, err
	}

	return service.CheckInput{
		RoomTypeID: q.RoomTypeID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Required:   q.Rooms,
	}, nil
}
