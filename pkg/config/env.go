package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"
	EnvEnvFile  = "ENV_FILE"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout            = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL            = "IDEMPOTENCY_TTL"
	EnvIdempotencyPendingTimeout = "IDEMPOTENCY_PENDING_TIMEOUT"
	EnvIdempotencyStore          = "IDEMPOTENCY_STORE"
	EnvMaxRequestSize            = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvRoomLockTTL       = "ROOM_LOCK_TTL"
	EnvLockSweepInterval = "LOCK_SWEEP_INTERVAL"

	EnvPerNightFeesByNights = "PER_NIGHT_FEES_BY_NIGHTS"
	EnvCurrency             = "CURRENCY"

	EnvKafkaEnabled          = "KAFKA_ENABLED"
	EnvBookingEventsTopic    = "BOOKING_EVENTS_TOPIC"
	EnvBookingCommandsTopic  = "BOOKING_COMMANDS_TOPIC"
	EnvBookingCommandsGroup  = "BOOKING_COMMANDS_GROUP"
	EnvBookingDLQTopic       = "BOOKING_DLQ_TOPIC"
	EnvBookingServiceBaseURL = "BOOKING_SERVICE_URL"
)
