package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"hotelbook/pkg/config"
	apperrors "hotelbook/pkg/errors"
)

const (
	HeaderUserID         = "X-User-ID"
	HeaderIdempotencyKey = "Idempotency-Key"

	DateLayout = "2006-01-02"
)

// ExtractLimitOffset reads the limit and offset query parameters and clamps
// them to the configured pagination bounds.
func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit, err := queryInt(query.Get("limit"), "limit", 32)
	if err != nil {
		return 0, 0, err
	}
	offset, err := queryInt(query.Get("offset"), "offset", 64)
	if err != nil {
		return 0, 0, err
	}
	return config.NormalizePaginationLimit(int(limit)), config.NormalizeOffset(offset), nil
}

func queryInt(raw, name string, bits int) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, bits)
	if err != nil {
		return 0, apperrors.InvalidInput("invalid " + name + " parameter: " + raw)
	}
	return v, nil
}

// ExtractUserID returns the authenticated caller id placed in X-User-ID by the
// gateway in front of the service.
func ExtractUserID(r *http.Request) (string, error) {
	userID := strings.TrimSpace(r.Header.Get(HeaderUserID))
	if userID == "" {
		return "", apperrors.Unauthorized("X-User-ID header is required")
	}
	return userID, nil
}

// ParseDate accepts either a calendar date (2006-01-02) or an RFC3339
// timestamp and returns it in UTC.
func ParseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, apperrors.InvalidInput(field + " is required")
	}
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, apperrors.InvalidInput("invalid " + field + " format, must be YYYY-MM-DD or RFC3339")
}
