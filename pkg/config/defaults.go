package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "hotelbook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "8080"

	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout            = 30 * time.Second
	DefaultIdempotencyTTL            = 24 * time.Hour
	DefaultIdempotencyPendingTimeout = 2 * time.Minute
	DefaultIdempotencyStore          = IdempotencyStoreMongo
	DefaultMaxRequestSize            = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultRoomLockTTL       = 15 * time.Minute
	DefaultLockSweepInterval = 1 * time.Minute

	DefaultPerNightFeesByNights = false
	DefaultCurrency             = "USD"

	DefaultKafkaEnabled          = false
	DefaultBookingEventsTopic    = "booking-events"
	DefaultBookingCommandsTopic  = "booking-commands"
	DefaultBookingCommandsGroup  = "booking-worker"
	DefaultBookingDLQTopic       = "dlq-booking-service"
	DefaultBookingServiceBaseURL = "http://localhost:8080"

	DefaultPaginationLimit = 100
)

const (
	IdempotencyStoreMongo  = "mongo"
	IdempotencyStoreMemory = "memory"
)
