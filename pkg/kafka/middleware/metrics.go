package kafka_middleware

import (
	"context"
	"sync/atomic"
	"time"

	"hotelbook/pkg/kafka"
	"hotelbook/pkg/logger"
)

// Metrics counts Kafka traffic for one process. Business rejections are
// counted apart from failures because the message was handled.
type Metrics struct {
	messagesPublished       atomic.Int64
	messagesPublishedFailed atomic.Int64
	publishDurationTotal    atomic.Int64

	messagesConsumed         atomic.Int64
	messagesConsumedFailed   atomic.Int64
	messagesConsumedRejected atomic.Int64
	consumeDurationTotal     atomic.Int64
}

type MetricsSnapshot struct {
	Published          int64
	PublishFailed      int64
	AvgPublishDuration time.Duration
	Consumed           int64
	ConsumeFailed      int64
	ConsumeRejected    int64
	AvgConsumeDuration time.Duration
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		Published:       m.messagesPublished.Load(),
		PublishFailed:   m.messagesPublishedFailed.Load(),
		Consumed:        m.messagesConsumed.Load(),
		ConsumeFailed:   m.messagesConsumedFailed.Load(),
		ConsumeRejected: m.messagesConsumedRejected.Load(),
	}
	if attempts := s.Published + s.PublishFailed; attempts > 0 {
		s.AvgPublishDuration = time.Duration(m.publishDurationTotal.Load() / attempts)
	}
	if handled := s.Consumed + s.ConsumeFailed + s.ConsumeRejected; handled > 0 {
		s.AvgConsumeDuration = time.Duration(m.consumeDurationTotal.Load() / handled)
	}
	return s
}

// Log writes the current counters at info level.
func (m *Metrics) Log(log *logger.Logger) {
	s := m.Snapshot()
	log.Info("Kafka metrics",
		"published", s.Published,
		"publish_failed", s.PublishFailed,
		"avg_publish_ms", s.AvgPublishDuration.Milliseconds(),
		"consumed", s.Consumed,
		"consume_failed", s.ConsumeFailed,
		"consume_rejected", s.ConsumeRejected,
		"avg_consume_ms", s.AvgConsumeDuration.Milliseconds(),
	)
}

// MetricsProducerMiddleware tracks producer metrics
func MetricsProducerMiddleware(m *Metrics) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()

		err := next(ctx, msg)

		m.publishDurationTotal.Add(int64(time.Since(start)))
		if err != nil {
			m.messagesPublishedFailed.Add(1)
		} else {
			m.messagesPublished.Add(1)
		}

		return err
	}
}

// MetricsConsumerMiddleware tracks consumer metrics
func MetricsConsumerMiddleware(m *Metrics) kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()

		err := next(ctx, msg)

		m.consumeDurationTotal.Add(int64(time.Since(start)))
		switch {
		case err == nil:
			m.messagesConsumed.Add(1)
		case kafka.ClassifyError(err) == kafka.ErrorTypeBusiness:
			m.messagesConsumedRejected.Add(1)
		default:
			m.messagesConsumedFailed.Add(1)
		}

		return err
	}
}
