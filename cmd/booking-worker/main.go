package main

import (
	"context"

	"hotelbook/internal/bookings/worker"
	"hotelbook/internal/bootstrap"
	"hotelbook/pkg/app"
	"hotelbook/pkg/config"
	"hotelbook/pkg/kafka"
	kafka_config "hotelbook/pkg/kafka/config"
	kafka_middleware "hotelbook/pkg/kafka/middleware"
)

const ServiceName = "booking-worker"

func main() {
	cfg := config.Load(ServiceName)
	if !cfg.KafkaEnabled {
		cfg.Log.Fatal("Booking worker requires KAFKA_ENABLED=true")
	}
	cfg.SetMongo()

	cfg.Log.Info("Starting booking command worker",
		"topic", cfg.BookingCommandsTopic,
		"group_id", cfg.BookingCommandsGroup,
	)

	kafkaCfg := kafka_config.Load(cfg.Log)
	metrics := kafka_middleware.NewMetrics()

	publisher, closePublisher, err := bootstrap.NewPublisher(cfg, kafkaCfg, metrics)
	if err != nil {
		cfg.GracefulShutdown()
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	services := bootstrap.New(cfg, publisher)

	processor := worker.NewCommandProcessor(
		services.Bookings,
		services.IdempotencyGate,
		services.BookingValidator,
		publisher,
		cfg.Log,
	)

	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.BookingCommandsTopic,
		cfg.BookingCommandsGroup,
		cfg.BookingDLQTopic,
		processor.Handle,
		cfg.Log,
	)
	if err != nil {
		closePublisher()
		cfg.GracefulShutdown()
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	}
	consumer.Use(kafka_middleware.MetricsConsumerMiddleware(metrics))

	workerApp := app.NewApplication(cfg)
	workerApp.OnShutdown(cfg.GracefulShutdown)
	workerApp.OnShutdown(closePublisher)
	workerApp.OnShutdown(func() { metrics.Log(cfg.Log) })
	workerApp.OnShutdown(services.Close)
	workerApp.OnShutdown(func() {
		if err := consumer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka consumer", "error", err)
		}
	})

	services.Locks.StartSweeper(workerApp.Context(), cfg.LockSweepInterval)
	workerApp.RunWorker(func(ctx context.Context) error {
		return consumer.Start(ctx)
	})
}
