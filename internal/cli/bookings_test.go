package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httputil "hotelbook/pkg/http"
	"hotelbook/pkg/model"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func sampleBooking() *model.Booking {
	checkIn := time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)
	return &model.Booking{
		ID:          "bk-1",
		UserID:      "guest-1",
		RoomTypeID:  "64b7f0c2a1b2c3d4e5f60702",
		CheckIn:     checkIn,
		CheckOut:    checkIn.AddDate(0, 0, 2),
		Nights:      2,
		TotalAmount: 255,
		Currency:    "USD",
		Status:      model.BookingStatusConfirmed,
	}
}

func TestBookingsCreate_SendsKeyAndPrintsBooking(t *testing.T) {
	var gotKey, gotUser string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/bookings" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotKey = r.Header.Get("Idempotency-Key")
		gotUser = r.Header.Get(httputil.HeaderUserID)
		_ = httputil.WriteCreated(w, &model.CreateBookingResult{Booking: sampleBooking()})
	}))
	defer srv.Close()

	out, err := runCLI(t, "bookings", "create",
		"--url", srv.URL,
		"--user", "guest-1",
		"--hotel", "64b7f0c2a1b2c3d4e5f60701",
		"--room-type", "64b7f0c2a1b2c3d4e5f60702",
		"--check-in", "2030-05-01",
		"--check-out", "2030-05-03",
		"--guests", "2",
		"--idempotency-key", "retry-me",
	)
	if err != nil {
		t.Fatalf("create error = %v, output %q", err, out)
	}
	if gotKey != "retry-me" || gotUser != "guest-1" {
		t.Errorf("headers = key %q user %q", gotKey, gotUser)
	}
	for _, want := range []string{"bk-1", "confirmed", "255.00 USD", "Idempotency key: retry-me"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestBookingsCreate_GeneratesKeyWhenMissing(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Idempotency-Key")
		_ = httputil.WriteCreated(w, &model.CreateBookingResult{Booking: sampleBooking()})
	}))
	defer srv.Close()

	_, err := runCLI(t, "bookings", "create",
		"--url", srv.URL, "--user", "guest-1",
		"--hotel", "h", "--room-type", "rt",
		"--check-in", "2030-05-01", "--check-out", "2030-05-03",
	)
	if err != nil {
		t.Fatalf("create error = %v", err)
	}
	if len(gotKey) != 36 {
		t.Errorf("generated key = %q, want a UUID", gotKey)
	}
}

func TestBookingsGet_ReportsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Booking not found","code":"NOT_FOUND"}`))
	}))
	defer srv.Close()

	_, err := runCLI(t, "bookings", "get", "missing", "--url", srv.URL, "--user", "guest-1")
	if err == nil || err.Error() != "NOT_FOUND: Booking not found" {
		t.Errorf("get error = %v", err)
	}
}

func TestBookingsList_PrintsPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("limit") != "5" {
			t.Errorf("limit = %q", r.URL.Query().Get("limit"))
		}
		_ = httputil.WritePaginated(w, []*model.Booking{sampleBooking()}, 3, 5, 0)
	}))
	defer srv.Close()

	out, err := runCLI(t, "bookings", "list", "--limit", "5", "--url", srv.URL, "--user", "guest-1")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	if !strings.Contains(out, "bk-1") || !strings.Contains(out, "Showing 1 of 3") {
		t.Errorf("output = %q", out)
	}
}

func TestBookingsCommands_RequireUser(t *testing.T) {
	_, err := runCLI(t, "bookings", "get", "bk-1", "--url", "http://127.0.0.1:1", "--user", "")
	if err == nil || !strings.Contains(err.Error(), "--user") {
		t.Errorf("error = %v, want missing user", err)
	}
}

func TestBookingsCancel_JSONOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/bookings/id/bk-1/cancel" {
			t.Errorf("path = %s", r.URL.Path)
		}
		b := sampleBooking()
		b.Status = model.BookingStatusCancelled
		_ = httputil.WriteSuccess(w, b)
	}))
	defer srv.Close()

	out, err := runCLI(t, "bookings", "cancel", "bk-1", "--json", "--url", srv.URL, "--user", "guest-1")
	if err != nil {
		t.Fatalf("cancel error = %v", err)
	}
	if !strings.Contains(out, `"status": "cancelled"`) {
		t.Errorf("output = %q", out)
	}
}

func TestParseDate(t *testing.T) {
	fallback := time.Date(2030, 1, 2, 15, 4, 5, 0, time.UTC)
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{"empty uses fallback midnight", "", time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC), false},
		{"explicit date", "2030-03-04", time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC), false},
		{"bad format", "03/04/2030", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDate(tt.input, fallback)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseDate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !got.Equal(tt.want) {
				t.Errorf("parseDate() = %v, want %v", got, tt.want)
			}
		})
	}
}
