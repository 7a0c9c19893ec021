package main

import (
	availabilityhandler "hotelbook/internal/availability/handler"
	availabilityvalidator "hotelbook/internal/availability/validator"
	"hotelbook/internal/bookings/handler"
	"hotelbook/internal/bootstrap"
	roomlockhandler "hotelbook/internal/roomlocks/handler"
	"hotelbook/pkg/app"
	"hotelbook/pkg/config"
	kafka_config "hotelbook/pkg/kafka/config"
	kafka_middleware "hotelbook/pkg/kafka/middleware"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Bookings service")

	var kafkaCfg *kafka_config.Config
	metrics := kafka_middleware.NewMetrics()
	if cfg.KafkaEnabled {
		kafkaCfg = kafka_config.Load(cfg.Log)
	}
	publisher, closePublisher, err := bootstrap.NewPublisher(cfg, kafkaCfg, metrics)
	if err != nil {
		cfg.GracefulShutdown()
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	services := bootstrap.New(cfg, publisher)

	serverApp := app.NewApplication(cfg)
	serverApp.OnShutdown(cfg.GracefulShutdown)
	serverApp.OnShutdown(closePublisher)
	serverApp.OnShutdown(func() { metrics.Log(cfg.Log) })
	serverApp.OnShutdown(services.Close)

	serverApp.SetApp(
		services.IdempotencyGate,
		handler.NewBookingHandler(services.Bookings, cfg.Log),
		availabilityhandler.NewAvailabilityHandler(services.Availability, availabilityvalidator.NewAvailabilityValidator(cfg.Log), cfg.Log),
		roomlockhandler.NewRoomLockHandler(services.Locks, cfg.Log),
	)

	services.Locks.StartSweeper(serverApp.Context(), cfg.LockSweepInterval)
	serverApp.Run()
}
