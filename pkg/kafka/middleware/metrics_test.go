package kafka_middleware

import (
	"context"
	"errors"
	"testing"

	apperrors "hotelbook/pkg/errors"
	"hotelbook/pkg/kafka"
)

func TestMetricsConsumerMiddleware_ClassifiesOutcomes(t *testing.T) {
	m := NewMetrics()
	mw := MetricsConsumerMiddleware(m)
	msg := kafka.NewMessage().WithKey("rt-1").WithRawValue([]byte(`{}`)).Build()

	outcomes := []error{
		nil,
		nil,
		kafka.NewBusinessError("rejected", apperrors.Conflict("Room is not available for the selected dates")),
		apperrors.Transient("db down", nil),
		kafka.NewPermanentError("deserialization failed", errors.New("bad json")),
	}
	for _, outcome := range outcomes {
		_ = mw(context.Background(), msg, func(context.Context, kafka.Message) error { return outcome })
	}

	s := m.Snapshot()
	if s.Consumed != 2 || s.ConsumeRejected != 1 || s.ConsumeFailed != 2 {
		t.Errorf("snapshot = %+v, want consumed 2 rejected 1 failed 2", s)
	}
}

func TestMetricsProducerMiddleware_CountsFailures(t *testing.T) {
	m := NewMetrics()
	mw := MetricsProducerMiddleware(m)
	msg := kafka.NewMessage().WithKey("rt-1").WithRawValue([]byte(`{}`)).Build()

	_ = mw(context.Background(), msg, func(context.Context, kafka.Message) error { return nil })
	_ = mw(context.Background(), msg, func(context.Context, kafka.Message) error { return errors.New("broker down") })

	s := m.Snapshot()
	if s.Published != 1 || s.PublishFailed != 1 {
		t.Errorf("snapshot = %+v, want published 1 failed 1", s)
	}
}
