package validator

import (
	"errors"
	"testing"
	"time"

	"hotelbook/pkg/logger"
	"hotelbook/pkg/model"
	"hotelbook/pkg/validation"
)

func newTestValidator() *BookingValidator {
	v := NewBookingValidator(logger.NewNop())
	v.now = func() time.Time { return time.Date(2030, 5, 10, 18, 30, 0, 0, time.UTC) }
	return v
}

func validRequest() *model.CreateBookingRequest {
	return &model.CreateBookingRequest{
		HotelID:    "64b7f0c2a1b2c3d4e5f60701",
		RoomTypeID: "64b7f0c2a1b2c3d4e5f60702",
		CheckIn:    "2030-05-10",
		CheckOut:   "2030-05-12",
		Guests:     2,
	}
}

func TestValidateCreate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(r *model.CreateBookingRequest)
		wantField string
	}{
		{name: "valid same-day check-in", mutate: func(r *model.CreateBookingRequest) {}},
		{name: "rfc3339 dates", mutate: func(r *model.CreateBookingRequest) {
			r.CheckIn = "2030-05-11T15:00:00Z"
			r.CheckOut = "2030-05-13T11:00:00+02:00"
		}},
		{name: "missing hotel", mutate: func(r *model.CreateBookingRequest) { r.HotelID = "" }, wantField: "hotel_id"},
		{name: "bad room type id", mutate: func(r *model.CreateBookingRequest) { r.RoomTypeID = "deluxe" }, wantField: "room_type_id"},
		{name: "zero guests", mutate: func(r *model.CreateBookingRequest) { r.Guests = 0 }, wantField: "guests"},
		{name: "bad date", mutate: func(r *model.CreateBookingRequest) { r.CheckIn = "10/05/2030" }, wantField: "check_in"},
		{name: "reversed dates", mutate: func(r *model.CreateBookingRequest) { r.CheckOut = "2030-05-09" }, wantField: "check_out"},
		{name: "check-in in the past", mutate: func(r *model.CreateBookingRequest) {
			r.CheckIn = "2030-05-09"
		}, wantField: "check_in"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			stay, err := newTestValidator().ValidateCreate(req)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("ValidateCreate() error = %v", err)
				}
				if !stay.CheckOut.After(stay.CheckIn) {
					t.Errorf("stay = %+v", stay)
				}
				return
			}

			var verrs validation.ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("ValidateCreate() error = %v, want ValidationErrors", err)
			}
			found := false
			for _, e := range verrs {
				if e.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("errors = %v, want field %s", verrs, tt.wantField)
			}
		})
	}
}

func TestValidateCommand(t *testing.T) {
	v := newTestValidator()

	if err := v.ValidateCommand(&model.BookingCommand{Type: model.CommandCreateBooking, UserID: "u1"}); err == nil {
		t.Error("create command without payload should fail")
	}
	if err := v.ValidateCommand(&model.BookingCommand{Type: model.CommandCancelBooking, UserID: "u1"}); err == nil {
		t.Error("cancel command without booking id should fail")
	}
	if err := v.ValidateCommand(&model.BookingCommand{Type: model.CommandCancelBooking, UserID: "u1", BookingID: "b1"}); err != nil {
		t.Errorf("cancel command error = %v", err)
	}
}
