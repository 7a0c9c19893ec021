package kafka_middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	apperrors "hotelbook/pkg/errors"
	"hotelbook/pkg/kafka"
	"hotelbook/pkg/logger"
)

func TestLoggingConsumerMiddleware_LevelFollowsErrorType(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantLevel string
		wantType  string
	}{
		{"success", nil, "INFO", ""},
		{"business", kafka.NewBusinessError("rejected", apperrors.Conflict("sold out")), "INFO", "business"},
		{"transient", apperrors.Transient("db down", nil), "WARN", "transient"},
		{"permanent", kafka.NewPermanentError("bad payload", errors.New("bad json")), "ERROR", "permanent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			mw := LoggingConsumerMiddleware(logger.New(logger.Config{Output: &buf, Level: "debug"}))
			msg := kafka.NewMessage().WithKey("rt-1").WithEventID("evt-1").WithRawValue([]byte(`{}`)).Build()

			got := mw(context.Background(), msg, func(context.Context, kafka.Message) error { return tt.err })
			if !errors.Is(got, tt.err) {
				t.Errorf("middleware returned %v, want %v", got, tt.err)
			}

			var record map[string]any
			if err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &record); err != nil {
				t.Fatalf("expected one JSON record, got %q", buf.String())
			}
			if record["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %s", record["level"], tt.wantLevel)
			}
			if tt.wantType != "" && record["error_type"] != tt.wantType {
				t.Errorf("error_type = %v, want %s", record["error_type"], tt.wantType)
			}
			if record["event_id"] != "evt-1" {
				t.Errorf("event_id = %v", record["event_id"])
			}
		})
	}
}
