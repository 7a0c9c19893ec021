package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		MongoURI:                  DefaultMongoURI,
		MongoDatabaseName:         DefaultMongoDatabaseName,
		MongoConnTimeout:          DefaultMongoConnTimeout,
		Port:                      DefaultPort,
		RateLimitRequests:         DefaultRateLimitRequests,
		RateLimitWindow:           DefaultRateLimitWindow,
		RequestTimeout:            DefaultRequestTimeout,
		IdempotencyTTL:            DefaultIdempotencyTTL,
		IdempotencyPendingTimeout: DefaultIdempotencyPendingTimeout,
		IdempotencyStore:          DefaultIdempotencyStore,
		MaxRequestSize:            DefaultMaxRequestSize,
		ReadTimeout:               DefaultReadTimeout,
		WriteTimeout:              DefaultWriteTimeout,
		IdleTimeout:               DefaultIdleTimeout,
		ShutdownTimeout:           DefaultShutdownTimeout,
		RoomLockTTL:               DefaultRoomLockTTL,
		LockSweepInterval:         DefaultLockSweepInterval,
		Currency:                  DefaultCurrency,
		BookingEventsTopic:        DefaultBookingEventsTopic,
		BookingCommandsTopic:      DefaultBookingCommandsTopic,
		BookingCommandsGroup:      DefaultBookingCommandsGroup,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Port = "70000" },
			wantErr: "Port must be between 1 and 65535",
		},
		{
			name:    "bad mongo scheme",
			mutate:  func(c *Config) { c.MongoURI = "postgres://localhost" },
			wantErr: "MongoURI must start with",
		},
		{
			name:    "pending timeout longer than ttl",
			mutate:  func(c *Config) { c.IdempotencyPendingTimeout = 48 * time.Hour },
			wantErr: "must be shorter than IdempotencyTTL",
		},
		{
			name:    "pending timeout shorter than request timeout",
			mutate:  func(c *Config) { c.IdempotencyPendingTimeout = 10 * time.Second },
			wantErr: "IdempotencyPendingTimeout must be longer than RequestTimeout",
		},
		{
			name:    "unknown idempotency store",
			mutate:  func(c *Config) { c.IdempotencyStore = "redis" },
			wantErr: "IdempotencyStore must be one of [mongo memory]",
		},
		{
			name:    "zero lock ttl",
			mutate:  func(c *Config) { c.RoomLockTTL = 0 },
			wantErr: "RoomLockTTL must be positive",
		},
		{
			name:    "kafka with defaults",
			mutate:  func(c *Config) { c.KafkaEnabled = true },
			wantErr: "",
		},
		{
			name:    "unknown currency",
			mutate:  func(c *Config) { c.Currency = "ABC" },
			wantErr: "Currency must be a 3-letter ISO code",
		},
		{
			name:    "lowercase currency",
			mutate:  func(c *Config) { c.Currency = "usd" },
			wantErr: "Currency must be a 3-letter ISO code",
		},
		{
			name: "kafka without topics",
			mutate: func(c *Config) {
				c.KafkaEnabled = true
				c.BookingEventsTopic = ""
			},
			wantErr: "BookingEventsTopic cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "abc"
	cfg.MongoDatabaseName = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "1. ") || !strings.Contains(err.Error(), "2. ") {
		t.Errorf("expected numbered list of errors, got:\n%s", err)
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv(EnvRoomLockTTL, "5m")
	t.Setenv(EnvPerNightFeesByNights, "true")
	t.Setenv(EnvRateLimitRequests, "not-a-number")

	if got := EnvDuration(EnvRoomLockTTL, DefaultRoomLockTTL); got != 5*time.Minute {
		t.Errorf("EnvDuration() = %s, want 5m", got)
	}
	if got := EnvBool(EnvPerNightFeesByNights, false); !got {
		t.Error("EnvBool() = false, want true")
	}
	if got := EnvInt(EnvRateLimitRequests, DefaultRateLimitRequests); got != DefaultRateLimitRequests {
		t.Errorf("EnvInt() should fall back on parse errors, got %d", got)
	}
}

func TestRedactMongoURI(t *testing.T) {
	got := redactMongoURI("mongodb://admin:s3cret@db:27017/?replicaSet=rs0")
	if strings.Contains(got, "s3cret") {
		t.Errorf("password leaked: %s", got)
	}
	if !strings.HasPrefix(got, "mongodb://***:***@db") {
		t.Errorf("unexpected redaction %s", got)
	}
}

func TestNormalizePagination(t *testing.T) {
	if got := NormalizePaginationLimit(0); got != 10 {
		t.Errorf("NormalizePaginationLimit(0) = %d, want 10", got)
	}
	if got := NormalizePaginationLimit(1000); got != DefaultPaginationLimit {
		t.Errorf("NormalizePaginationLimit(1000) = %d, want %d", got, DefaultPaginationLimit)
	}
	if got := NormalizeOffset(-3); got != 0 {
		t.Errorf("NormalizeOffset(-3) = %d, want 0", got)
	}
}
