package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"hotelbook/pkg/kafka"
	"hotelbook/pkg/model"
)

type recordingProducer struct {
	messages []kafka.Message
}

func (r *recordingProducer) Publish(_ context.Context, msg kafka.Message) error {
	r.messages = append(r.messages, msg)
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	producer := &recordingProducer{}
	pub := &kafkaPublisher{producer: producer}

	event := &model.BookingEvent{
		Type:       model.EventBookingCreated,
		BookingID:  "b1",
		UserID:     "alice",
		RoomTypeID: "rt-1",
		Total:      255,
		Currency:   "USD",
		OccurredAt: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := pub.Publish(context.Background(), event, "req-9"); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if len(producer.messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(producer.messages))
	}
	msg := producer.messages[0]
	if msg.Key != "rt-1" {
		t.Errorf("key = %s, want rt-1", msg.Key)
	}
	if msg.GetEventType() != model.EventBookingCreated || msg.GetUserID() != "alice" || msg.GetCorrelationID() != "req-9" {
		t.Errorf("headers = %v", msg.Headers)
	}

	var decoded model.BookingEvent
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.BookingID != "b1" || decoded.Total != 255 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestKafkaPublisher_FallsBackToBookingKey(t *testing.T) {
	producer := &recordingProducer{}
	pub := &kafkaPublisher{producer: producer}

	if err := pub.Publish(context.Background(), &model.BookingEvent{Type: model.EventBookingRejected, BookingID: "b2"}, ""); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if producer.messages[0].Key != "b2" {
		t.Errorf("key = %s, want b2", producer.messages[0].Key)
	}
}
