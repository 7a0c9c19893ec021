package kafka

import (
	"context"
	"errors"
	"testing"

	"hotelbook/pkg/logger"

	"github.com/segmentio/kafka-go"
)

type failingWriter struct {
	fakeWriter
	err error
}

func (w *failingWriter) WriteMessages(_ context.Context, _ ...kafka.Message) error {
	return w.err
}

func TestProducer_PublishRunsMiddlewareInOrder(t *testing.T) {
	writer := &fakeWriter{}
	p := &Producer{writer: writer, topic: "booking-events", log: logger.NewNop()}

	var order []string
	for _, name := range []string{"outer", "inner"} {
		p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
			order = append(order, name)
			return next(ctx, msg)
		})
	}

	msg := NewMessage().WithKey("rt-1").WithValue(map[string]string{"type": "booking.created"}).Build()
	if err := p.Publish(context.Background(), msg); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Errorf("middleware order = %v", order)
	}
	if len(writer.messages) != 1 || string(writer.messages[0].Key) != "rt-1" {
		t.Errorf("written = %+v", writer.messages)
	}
}

func TestProducer_DivertsToDLQOnWriteFailure(t *testing.T) {
	brokerErr := errors.New("leader not available")
	dlq := &fakeWriter{}
	p := &Producer{
		writer:    &failingWriter{err: brokerErr},
		dlqWriter: dlq,
		topic:     "booking-events",
		dlqTopic:  "dlq-booking-service",
		log:       logger.NewNop(),
	}

	msg := NewMessage().WithKey("rt-1").WithRawValue([]byte(`{}`)).WithEventID("evt-9").Build()
	if err := p.Publish(context.Background(), msg); !errors.Is(err, brokerErr) {
		t.Fatalf("Publish() error = %v, want broker error", err)
	}

	if len(dlq.messages) != 1 {
		t.Fatalf("dlq messages = %d, want 1", len(dlq.messages))
	}
	headers := map[string]string{}
	for _, h := range dlq.messages[0].Headers {
		headers[h.Key] = string(h.Value)
	}
	if headers[HeaderOriginalTopic] != "booking-events" || headers[HeaderDLQError] != brokerErr.Error() {
		t.Errorf("dlq headers = %v", headers)
	}
	if _, ok := headers[HeaderDLQConsumerGroup]; ok {
		t.Error("producer dead letters carry no consumer group")
	}
}

func TestProducer_RejectsInvalidMessages(t *testing.T) {
	p := &Producer{writer: &fakeWriter{}, topic: "booking-events", log: logger.NewNop()}

	if err := p.Publish(context.Background(), Message{Value: []byte(`{}`)}); !errors.Is(err, ErrEmptyKey) {
		t.Errorf("missing key error = %v", err)
	}
	if err := p.Publish(context.Background(), Message{Key: "rt-1"}); !errors.Is(err, ErrEmptyValue) {
		t.Errorf("missing value error = %v", err)
	}

	_ = p.Close()
	if err := p.Publish(context.Background(), Message{Key: "rt-1", Value: []byte(`{}`)}); !errors.Is(err, ErrProducerClosed) {
		t.Errorf("closed producer error = %v", err)
	}
}
