package kafka_middleware

import (
	"context"
	"log/slog"
	"time"

	"hotelbook/pkg/kafka"
	"hotelbook/pkg/logger"
)

func messageAttrs(msg kafka.Message, start time.Time) []any {
	return []any{
		"topic", msg.Topic,
		"partition", msg.Partition,
		"offset", msg.Offset,
		"key", msg.Key,
		"event_id", msg.GetEventID(),
		"event_type", msg.GetEventType(),
		"correlation_id", msg.GetCorrelationID(),
		"duration_ms", time.Since(start).Milliseconds(),
	}
}

func LoggingProducerMiddleware(log *logger.Logger) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)

		if err != nil {
			log.Error("Kafka publish failed", append(messageAttrs(msg, start), "error", err)...)
			return err
		}
		log.Debug("Kafka message published", messageAttrs(msg, start)...)
		return nil
	}
}

// LoggingConsumerMiddleware logs each handled message once. Business
// rejections are expected outcomes and stay at info; retryable failures are
// warnings and the rest are errors.
func LoggingConsumerMiddleware(log *logger.Logger) kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)

		attrs := append(messageAttrs(msg, start), "retry_count", msg.GetRetryCount())
		if err == nil {
			log.Info("Kafka message processed", attrs...)
			return nil
		}

		kind := kafka.ClassifyError(err)
		attrs = append(attrs, "error_type", kind.String(), "error", err)
		log.Log(ctx, consumeFailureLevel(kind), "Kafka message processing failed", attrs...)
		return err
	}
}

func consumeFailureLevel(kind kafka.ErrorType) slog.Level {
	switch kind {
	case kafka.ErrorTypeBusiness:
		return slog.LevelInfo
	case kafka.ErrorTypeTransient:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
