package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"hotelbook/pkg/client"
	"hotelbook/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config is shared by every binary. Field tags carry the validation rules;
// Validate reports all violations at once.
type Config struct {
	MongoURI          string        `validate:"required,mongouri"`
	MongoDatabaseName string        `validate:"required"`
	MongoConnTimeout  time.Duration `validate:"gt=0"`

	Port string `validate:"listenport"`

	RateLimitRequests int           `validate:"gt=0"`
	RateLimitWindow   time.Duration `validate:"gt=0"`

	RequestTimeout            time.Duration `validate:"gt=0"`
	IdempotencyTTL            time.Duration `validate:"gt=0"`
	IdempotencyPendingTimeout time.Duration `validate:"gt=0,gtfield=RequestTimeout,ltfield=IdempotencyTTL"`
	IdempotencyStore          string        `validate:"oneof=mongo memory"`
	MaxRequestSize            int           `validate:"gt=0"`

	ReadTimeout     time.Duration `validate:"gt=0"`
	WriteTimeout    time.Duration `validate:"gt=0"`
	IdleTimeout     time.Duration `validate:"gt=0"`
	ShutdownTimeout time.Duration `validate:"gt=0"`

	RoomLockTTL       time.Duration `validate:"gt=0"`
	LockSweepInterval time.Duration `validate:"gt=0"`

	// PerNightFeesByNights multiplies PER_NIGHT fees by the stay length
	// instead of charging them once per booking.
	PerNightFeesByNights bool
	Currency             string `validate:"iso4217"`

	KafkaEnabled          bool
	BookingEventsTopic    string `validate:"required_if=KafkaEnabled true"`
	BookingCommandsTopic  string `validate:"required_if=KafkaEnabled true"`
	BookingCommandsGroup  string `validate:"required_if=KafkaEnabled true"`
	BookingDLQTopic       string
	BookingServiceBaseURL string `validate:"omitempty,url"`

	Log    *logger.Logger `validate:"-"`
	Client *client.Client `validate:"-"`
}

func Load(serviceName string) *Config {
	envFileErr := loadEnvFile()

	cfg := &Config{
		MongoURI:          EnvString(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: EnvString(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  EnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: EnvString(EnvPort, DefaultPort),

		RateLimitRequests: EnvInt(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   EnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout:            EnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL:            EnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		IdempotencyPendingTimeout: EnvDuration(EnvIdempotencyPendingTimeout, DefaultIdempotencyPendingTimeout),
		IdempotencyStore:          strings.ToLower(EnvString(EnvIdempotencyStore, DefaultIdempotencyStore)),
		MaxRequestSize:            EnvInt(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     EnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    EnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     EnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: EnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		RoomLockTTL:       EnvDuration(EnvRoomLockTTL, DefaultRoomLockTTL),
		LockSweepInterval: EnvDuration(EnvLockSweepInterval, DefaultLockSweepInterval),

		PerNightFeesByNights: EnvBool(EnvPerNightFeesByNights, DefaultPerNightFeesByNights),
		Currency:             strings.ToUpper(EnvString(EnvCurrency, DefaultCurrency)),

		KafkaEnabled:          EnvBool(EnvKafkaEnabled, DefaultKafkaEnabled),
		BookingEventsTopic:    EnvString(EnvBookingEventsTopic, DefaultBookingEventsTopic),
		BookingCommandsTopic:  EnvString(EnvBookingCommandsTopic, DefaultBookingCommandsTopic),
		BookingCommandsGroup:  EnvString(EnvBookingCommandsGroup, DefaultBookingCommandsGroup),
		BookingDLQTopic:       EnvString(EnvBookingDLQTopic, DefaultBookingDLQTopic),
		BookingServiceBaseURL: EnvString(EnvBookingServiceBaseURL, DefaultBookingServiceBaseURL),

		Log: logger.New(logger.Config{
			Level:     EnvString(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if envFileErr != nil {
		cfg.Log.Debug("No env file loaded, using process environment", "error", envFileErr)
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

// loadEnvFile reads ENV_FILE (or .env) into the process environment without
// overriding variables that are already set.
func loadEnvFile() error {
	if path := os.Getenv(EnvEnvFile); path != "" {
		return godotenv.Load(path)
	}
	return godotenv.Load()
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

var mongoSchemes = []string{"mongodb://", "mongodb+srv://"}

func newConfigValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("listenport", func(fl validator.FieldLevel) bool {
		port, err := strconv.Atoi(fl.Field().String())
		return err == nil && port >= 1 && port <= 65535
	})
	_ = v.RegisterValidation("mongouri", func(fl validator.FieldLevel) bool {
		uri := fl.Field().String()
		for _, scheme := range mongoSchemes {
			if strings.HasPrefix(uri, scheme) && len(uri) > len(scheme) {
				return true
			}
		}
		return false
	})
	return v
}

func (cfg *Config) Validate() error {
	err := newConfigValidator().Struct(cfg)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	var b strings.Builder
	b.WriteString("Configuration validation failed:\n")
	for i, fe := range fieldErrs {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, describeFieldError(fe))
	}
	return errors.New(b.String())
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " cannot be empty"
	case "required_if":
		return fe.Field() + " cannot be empty when Kafka is enabled"
	case "gt":
		return fmt.Sprintf("%s must be positive, got: %v", fe.Field(), fe.Value())
	case "ltfield":
		return fmt.Sprintf("%s must be shorter than %s", fe.Field(), fe.Param())
	case "gtfield":
		return fmt.Sprintf("%s must be longer than %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got: %v", fe.Field(), fe.Param(), fe.Value())
	case "listenport":
		return fmt.Sprintf("%s must be between 1 and 65535, got: %v", fe.Field(), fe.Value())
	case "mongouri":
		return fmt.Sprintf("%s must start with 'mongodb://' or 'mongodb+srv://', got: %s", fe.Field(), redactMongoURI(fe.Value().(string)))
	case "iso4217":
		return fmt.Sprintf("%s must be a 3-letter ISO code, got: %v", fe.Field(), fe.Value())
	default:
		return fmt.Sprintf("%s failed the %q rule", fe.Field(), fe.Tag())
	}
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"idempotency_pending_timeout", cfg.IdempotencyPendingTimeout,
		"idempotency_store", cfg.IdempotencyStore,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"room_lock_ttl", cfg.RoomLockTTL,
		"lock_sweep_interval", cfg.LockSweepInterval,
		"per_night_fees_by_nights", cfg.PerNightFeesByNights,
		"currency", cfg.Currency,
		"kafka_enabled", cfg.KafkaEnabled,
		"booking_events_topic", cfg.BookingEventsTopic,
		"booking_commands_topic", cfg.BookingCommandsTopic,
	)
}

var mongoCredentials = regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)

func redactMongoURI(uri string) string {
	return mongoCredentials.ReplaceAllString(uri, "${1}***:***@")
}

// EnvString and its siblings read one variable, falling back when it is
// unset or does not parse.
func EnvString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func EnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func EnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func EnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
