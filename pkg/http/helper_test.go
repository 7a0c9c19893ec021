package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "hotelbook/pkg/errors"
)

func TestExtractLimitOffset(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int64
		wantErr    bool
	}{
		{"defaults", "", 10, 0, false},
		{"explicit", "?limit=25&offset=50", 25, 50, false},
		{"clamped", "?limit=5000&offset=-4", 100, 0, false},
		{"bad limit", "?limit=ten", 0, 0, true},
		{"bad offset", "?offset=1.5", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings"+tt.query, nil)
			limit, offset, err := ExtractLimitOffset(req)
			if tt.wantErr {
				if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
					t.Errorf("error = %v, want INVALID_INPUT", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Errorf("got (%d, %d), want (%d, %d)", limit, offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2030, 3, 14, 0, 0, 0, 0, time.UTC)

	for _, in := range []string{"2030-03-14", " 2030-03-14 ", "2030-03-14T00:00:00Z"} {
		got, err := ParseDate("check_in", in)
		if err != nil || !got.Equal(want) {
			t.Errorf("ParseDate(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseDate("check_in", ""); !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("empty date error = %v", err)
	}
	if _, err := ParseDate("check_in", "14/03/2030"); !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("bad format error = %v", err)
	}
}

func TestExtractUserID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := ExtractUserID(req); !apperrors.HasCode(err, apperrors.CodeUnauthorized) {
		t.Errorf("missing header error = %v", err)
	}

	req.Header.Set(HeaderUserID, "  guest-1 ")
	if got, err := ExtractUserID(req); err != nil || got != "guest-1" {
		t.Errorf("ExtractUserID() = %q, %v", got, err)
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantCause  bool
	}{
		{"conflict", apperrors.Conflict("Room is not available for the selected dates"), http.StatusConflict, apperrors.CodeConflict, false},
		{"internal with cause", apperrors.Internal("Failed to create booking", errors.New("disk full")), http.StatusInternalServerError, apperrors.CodeInternal, true},
		{"plain error", errors.New("secret detail"), http.StatusInternalServerError, apperrors.CodeInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			if err := WriteError(rec, tt.err); err != nil {
				t.Fatalf("WriteError() = %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("body is not JSON: %v", err)
			}
			if body.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", body.Code, tt.wantCode)
			}
			if _, ok := body.Details["cause"]; ok != tt.wantCause {
				t.Errorf("details = %v, cause present = %v", body.Details, ok)
			}
			if body.Error == "secret detail" {
				t.Error("plain error text must not leak")
			}
		})
	}
}
