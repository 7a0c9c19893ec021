package validator

import (
	"time"

	bookingserrors "hotelbook/internal/bookings/errors"
	httputil "hotelbook/pkg/http"
	"hotelbook/pkg/logger"
	"hotelbook/pkg/model"
	"hotelbook/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// Stay is a validated create request with its dates parsed.
type Stay struct {
	HotelID    string
	RoomTypeID string
	CheckIn    time.Time
	CheckOut   time.Time
	Guests     int
}

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
	now      func() time.Time
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	return &BookingValidator{
		validate: validation.New(),
		logger:   log,
		now:      time.Now,
	}
}

func (v *BookingValidator) ValidateCreate(req *model.CreateBookingRequest) (*Stay, error) {
	if err := validation.Struct(v.validate, req); err != nil {
		return nil, err
	}

	var errs validation.ValidationErrors
	checkIn, err := httputil.ParseDate("check_in", req.CheckIn)
	if err != nil {
		errs = errs.Add("check_in", "check_in must be YYYY-MM-DD or RFC3339")
	}
	checkOut, err := httputil.ParseDate("check_out", req.CheckOut)
	if err != nil {
		errs = errs.Add("check_out", "check_out must be YYYY-MM-DD or RFC3339")
	}
	if len(errs) > 0 {
		return nil, errs
	}

	if !checkOut.After(checkIn) {
		return nil, validation.ValidationErrors{}.Add("check_out", bookingserrors.ErrInvalidDateRange.Error())
	}

	now := v.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if checkIn.Before(today) {
		return nil, validation.ValidationErrors{}.Add("check_in", bookingserrors.ErrCheckInPast.Error())
	}

	return &Stay{
		HotelID:    req.HotelID,
		RoomTypeID: req.RoomTypeID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     req.Guests,
	}, nil
}

// ValidateCommand checks an asynchronous booking command.
func (v *BookingValidator) ValidateCommand(cmd *model.BookingCommand) error {
	return validation.Struct(v.validate, cmd)
}

// ValidateBooking checks a fully priced booking before it is persisted.
func (v *BookingValidator) ValidateBooking(booking *model.Booking) error {
	return validation.Struct(v.validate, booking)
}
