package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"hotelbook/pkg/model"
)

func TestBookingClient_CreateSendsIdentityHeaders(t *testing.T) {
	var gotUser, gotKey, gotContentType string
	var gotBody model.CreateBookingRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = r.Header.Get("X-User-ID")
		gotKey = r.Header.Get("Idempotency-Key")
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"booking":{"id":"b1","status":"confirmed"},"total_paid":255}}`))
	}))
	defer srv.Close()

	c := NewBookingClient(srv.URL, "user-1")
	resp, err := c.Create(context.Background(), &model.CreateBookingRequest{
		HotelID:    "65f1c2a9e4b0a1b2c3d4e5f6",
		RoomTypeID: "65f1c2a9e4b0a1b2c3d4e5f7",
		CheckIn:    "2030-01-10",
		CheckOut:   "2030-01-12",
		Guests:     2,
	}, "key-1")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if gotUser != "user-1" || gotKey != "key-1" {
		t.Errorf("headers user=%q key=%q", gotUser, gotKey)
	}
	if gotContentType != "application/json" {
		t.Errorf("content type = %q", gotContentType)
	}
	if gotBody.Guests != 2 || gotBody.CheckIn != "2030-01-10" {
		t.Errorf("unexpected body %+v", gotBody)
	}

	result, err := c.DecodeCreateResult(resp)
	if err != nil {
		t.Fatalf("DecodeCreateResult() error = %v", err)
	}
	if result.Booking.ID != "b1" || result.TotalPaid != 255 {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestBookingClient_CancelPath(t *testing.T) {
	var gotPath, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		_, _ = w.Write([]byte(`{"data":{"id":"b1","status":"cancelled"}}`))
	}))
	defer srv.Close()

	c := NewBookingClient(srv.URL, "user-1")
	resp, err := c.Cancel(context.Background(), "b1", "")
	if err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/api/v1/bookings/id/b1/cancel" {
		t.Errorf("got %s %s", gotMethod, gotPath)
	}

	booking, err := c.DecodeBooking(resp)
	if err != nil {
		t.Fatalf("DecodeBooking() error = %v", err)
	}
	if !booking.IsCancelled() {
		t.Errorf("status = %s", booking.Status)
	}
}

func TestGetErrorMessage(t *testing.T) {
	resp := &Response{
		Response: &http.Response{Status: "409 Conflict"},
		Body:     []byte(`{"error":"Room is not available for the selected dates","code":"CONFLICT"}`),
	}
	if got := GetErrorMessage(resp); got != "Room is not available for the selected dates" {
		t.Errorf("GetErrorMessage() = %q", got)
	}

	empty := &Response{Response: &http.Response{Status: "502 Bad Gateway"}}
	if got := GetErrorMessage(empty); got != "502 Bad Gateway" {
		t.Errorf("GetErrorMessage() on empty body = %q", got)
	}
}
