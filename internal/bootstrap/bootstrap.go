// Package bootstrap assembles the Mongo-backed repositories and services
// shared by the API server, the command worker and the admin CLI.
package bootstrap

import (
	availabilityrepo "hotelbook/internal/availability/repository"
	availabilityservice "hotelbook/internal/availability/service"
	"hotelbook/internal/bookings/events"
	bookingrepo "hotelbook/internal/bookings/repository"
	bookingservice "hotelbook/internal/bookings/service"
	bookingvalidator "hotelbook/internal/bookings/validator"
	catalogrepo "hotelbook/internal/catalog/repository"
	idempotencyrepo "hotelbook/internal/idempotency/repository"
	idempotencyservice "hotelbook/internal/idempotency/service"
	pricingrepo "hotelbook/internal/pricing/repository"
	pricingservice "hotelbook/internal/pricing/service"
	pricingvalidator "hotelbook/internal/pricing/validator"
	roomlockrepo "hotelbook/internal/roomlocks/repository"
	roomlockservice "hotelbook/internal/roomlocks/service"
	roomlockvalidator "hotelbook/internal/roomlocks/validator"
	taxrepo "hotelbook/internal/taxes/repository"
	taxservice "hotelbook/internal/taxes/service"
	"hotelbook/pkg/config"
	"hotelbook/pkg/kafka"
	kafka_config "hotelbook/pkg/kafka/config"
	kafka_middleware "hotelbook/pkg/kafka/middleware"
)

type Services struct {
	Bookings         bookingservice.BookingService
	BookingValidator *bookingvalidator.BookingValidator
	Pricing          pricingservice.PricingService
	Taxes            taxservice.TaxService
	Availability     availabilityservice.AvailabilityService
	Locks            roomlockservice.RoomLockService
	IdempotencyGate  *idempotencyservice.Gate
	Events           events.Publisher
	closers          []func()
}

// New expects cfg.SetMongo to have been called.
func New(cfg *config.Config, publisher events.Publisher) *Services {
	catalog := catalogrepo.NewMongoCatalogRepository(cfg)
	bookings := bookingrepo.NewMongoBookingRepository(cfg)

	s := &Services{
		BookingValidator: bookingvalidator.NewBookingValidator(cfg.Log),
		Pricing: pricingservice.NewPricingService(
			pricingrepo.NewMongoPricingRuleRepository(cfg),
			catalog,
			pricingvalidator.NewPricingRuleValidator(cfg.Log),
			cfg,
		),
		Taxes: taxservice.NewTaxService(taxrepo.NewMongoTaxRepository(cfg), cfg),
		Availability: availabilityservice.NewAvailabilityService(
			availabilityrepo.NewMongoAvailabilityRepository(cfg),
			catalog,
			bookings,
			cfg,
		),
		Locks: roomlockservice.NewRoomLockService(
			roomlockrepo.NewMongoRoomLockRepository(cfg),
			roomlockvalidator.NewRoomLockValidator(cfg.Log),
			cfg,
		),
		Events: publisher,
	}

	s.IdempotencyGate = idempotencyservice.NewGate(s.idempotencyRepository(cfg), cfg)

	s.Bookings = bookingservice.NewBookingService(bookingservice.Dependencies{
		Bookings:     bookings,
		LineItems:    bookingrepo.NewMongoLineItemRepository(cfg),
		Guards:       bookingrepo.NewMongoGuardRepository(cfg),
		Catalog:      catalog,
		Pricing:      s.Pricing,
		Taxes:        s.Taxes,
		Availability: s.Availability,
		Locks:        s.Locks,
		Events:       publisher,
		Validator:    s.BookingValidator,
	}, cfg)

	cfg.Log.Info("Booking services initialized",
		"database", cfg.MongoDatabaseName,
		"idempotency_store", cfg.IdempotencyStore,
	)
	return s
}

func (s *Services) idempotencyRepository(cfg *config.Config) idempotencyrepo.IdempotencyRepository {
	if cfg.IdempotencyStore == config.IdempotencyStoreMemory {
		cfg.Log.Warn("Using in-memory idempotency store; keys are not shared between instances")
		repo := idempotencyrepo.NewMemoryIdempotencyRepository(cfg.IdempotencyPendingTimeout)
		s.closers = append(s.closers, repo.Stop)
		return repo
	}
	return idempotencyrepo.NewMongoIdempotencyRepository(cfg)
}

// Close releases background resources owned by the services.
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// NewPublisher returns a Kafka-backed publisher for booking events, or a
// no-op publisher when Kafka is disabled. The returned func closes the
// producer. metrics may be nil.
func NewPublisher(cfg *config.Config, kafkaCfg *kafka_config.Config, metrics *kafka_middleware.Metrics) (events.Publisher, func(), error) {
	if !cfg.KafkaEnabled || kafkaCfg == nil {
		cfg.Log.Info("Kafka disabled, booking events will not be published")
		return events.NewNopPublisher(cfg.Log), func() {}, nil
	}

	producer, err := kafka.NewProducer(kafkaCfg, cfg.BookingEventsTopic, cfg.BookingDLQTopic, cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	}
	if metrics != nil {
		producer.Use(kafka_middleware.MetricsProducerMiddleware(metrics))
	}

	closeProducer := func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	}
	cfg.Log.Info("Kafka producer ready", "topic", cfg.BookingEventsTopic, "dlq_topic", cfg.BookingDLQTopic)
	return events.NewKafkaPublisher(producer), closeProducer, nil
}
