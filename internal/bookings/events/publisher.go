package events

import (
	"context"

	"hotelbook/pkg/kafka"
	"hotelbook/pkg/logger"
	"hotelbook/pkg/model"
)

const (
	schemaVersion = "1"
	source        = "booking-service"
)

// Publisher announces booking lifecycle changes after they commit.
type Publisher interface {
	Publish(ctx context.Context, event *model.BookingEvent, correlationID string) error
}

type messagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type kafkaPublisher struct {
	producer messagePublisher
}

// NewKafkaPublisher keys events by room type so every change to one room
// type lands on the same partition in commit order.
func NewKafkaPublisher(producer *kafka.Producer) Publisher {
	return &kafkaPublisher{producer: producer}
}

func (p *kafkaPublisher) Publish(ctx context.Context, event *model.BookingEvent, correlationID string) error {
	key := event.RoomTypeID
	if key == "" {
		key = event.BookingID
	}

	msg := kafka.NewMessage().
		WithKey(key).
		WithValue(event).
		WithEventType(event.Type).
		WithUserID(event.UserID).
		WithCorrelationID(correlationID).
		WithSchemaVersion(schemaVersion).
		WithSource(source).
		Build()

	return p.producer.Publish(ctx, msg)
}

type nopPublisher struct {
	log *logger.Logger
}

// NewNopPublisher drops events; used when Kafka is disabled.
func NewNopPublisher(log *logger.Logger) Publisher {
	return &nopPublisher{log: log}
}

func (p *nopPublisher) Publish(_ context.Context, event *model.BookingEvent, _ string) error {
	p.log.Debug("Event publishing disabled, dropping event", "type", event.Type, "booking_id", event.BookingID)
	return nil
}
