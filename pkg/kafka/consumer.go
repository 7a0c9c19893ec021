package kafka

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	kafka_config "hotelbook/pkg/kafka/config"
	"hotelbook/pkg/logger"

	"github.com/segmentio/kafka-go"
)

const (
	fetchErrorBackoff = time.Second
	dialTimeout       = 10 * time.Second
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer reads one topic as part of a consumer group and commits every
// message after it has been handled, rejected or dead-lettered, giving
// at-least-once delivery to the handler.
type Consumer struct {
	reader       messageReader
	dlqWriter    messageWriter
	topic        string
	groupID      string
	dlqTopic     string
	maxRetries   int
	retryBackoff time.Duration
	handler      MessageHandler
	middleware   []ConsumerMiddleware
	log          *logger.Logger
	closed       bool
	mu           sync.RWMutex
	wg           sync.WaitGroup
}

type ConsumerMiddleware func(ctx context.Context, msg Message, next MessageHandler) error

func NewConsumer(cfg *kafka_config.Config, topic string, groupID string, dlqTopic string, handler MessageHandler, log *logger.Logger) (*Consumer, error) {
	switch {
	case cfg == nil:
		return nil, fmt.Errorf("config cannot be nil")
	case len(cfg.Brokers) == 0:
		return nil, fmt.Errorf("at least one broker is required")
	case topic == "":
		return nil, fmt.Errorf("topic cannot be empty")
	case groupID == "":
		return nil, fmt.Errorf("group ID cannot be empty")
	case handler == nil:
		return nil, fmt.Errorf("message handler cannot be nil")
	}

	c := &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           cfg.Brokers,
			Topic:             topic,
			GroupID:           groupID,
			MinBytes:          cfg.Consumer.MinBytes,
			MaxBytes:          cfg.Consumer.MaxBytes,
			MaxWait:           cfg.Consumer.MaxWait,
			HeartbeatInterval: cfg.Consumer.HeartbeatInterval,
			SessionTimeout:    cfg.Consumer.SessionTimeout,
			RebalanceTimeout:  cfg.Consumer.RebalanceTimeout,
			StartOffset:       cfg.Consumer.StartOffset,
			Dialer: &kafka.Dialer{
				ClientID:  cfg.ClientID,
				Timeout:   dialTimeout,
				DualStack: true,
			},
			Logger:      kafka.LoggerFunc(log.Printf),
			ErrorLogger: kafka.LoggerFunc(log.Errorf),
		}),
		topic:        topic,
		groupID:      groupID,
		dlqTopic:     dlqTopic,
		maxRetries:   cfg.Consumer.MaxRetries,
		retryBackoff: cfg.Consumer.RetryBackoff,
		handler:      handler,
		log:          log,
	}
	if dlqTopic != "" {
		c.dlqWriter = newWriter(cfg, dlqTopic, -1, cfg.Producer.MaxAttempts, log)
	}
	return c, nil
}

func (c *Consumer) Use(middleware ConsumerMiddleware) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.middleware = append(c.middleware, middleware)
}

// Start consumes until ctx is cancelled. A message interrupted by shutdown
// is left uncommitted so another member of the group redelivers it.
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return ErrConsumerClosed
	}
	c.wg.Add(1)
	c.mu.RUnlock()
	defer c.wg.Done()

	handle := c.chain()
	for {
		record, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			c.log.Error("Kafka consumer failed to fetch message", "topic", c.topic, "error", err)
			if !sleepCtx(ctx, fetchErrorBackoff) {
				return ctx.Err()
			}
			continue
		}

		msg := fromKafkaMessage(record)
		if err := c.process(ctx, handle, msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.log.Warn("Kafka consumer gave up on message",
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
				"event_id", msg.GetEventID(),
				"error", err,
			)
		}

		if err := c.reader.CommitMessages(ctx, record); err != nil {
			c.log.Error("Kafka consumer failed to commit offset",
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
		}
	}
}

func (c *Consumer) chain() MessageHandler {
	c.mu.RLock()
	defer c.mu.RUnlock()

	handle := c.handler
	for i := len(c.middleware) - 1; i >= 0; i-- {
		mw, next := c.middleware[i], handle
		handle = func(ctx context.Context, m Message) error {
			return mw(ctx, m, next)
		}
	}
	return handle
}

// process retries transient failures with linear backoff. Business errors
// are final outcomes the handler already reported, so they are neither
// retried nor dead-lettered. Everything else ends in the DLQ.
func (c *Consumer) process(ctx context.Context, handle MessageHandler, msg Message) error {
	for {
		err := handle(ctx, msg)
		if err == nil {
			return nil
		}

		retries := msg.GetRetryCount()
		if ShouldRetry(err, retries, c.maxRetries) {
			msg.IncrementRetryCount()
			c.log.Info("Retrying Kafka message",
				"event_id", msg.GetEventID(),
				"attempt", retries+1,
				"max_retries", c.maxRetries,
				"error", err,
			)
			if !sleepCtx(ctx, c.retryBackoff*time.Duration(retries+1)) {
				return ctx.Err()
			}
			continue
		}

		if ClassifyError(err) == ErrorTypeBusiness {
			return err
		}

		c.deadLetter(ctx, msg, err, retries)
		if retries >= c.maxRetries {
			return fmt.Errorf("%w: %v", ErrMaxRetriesExceeded, err)
		}
		return err
	}
}

func (c *Consumer) deadLetter(ctx context.Context, msg Message, cause error, retries int) {
	if c.dlqWriter == nil {
		return
	}
	if err := c.dlqWriter.WriteMessages(ctx, deadLetter(msg, cause, c.topic, c.groupID)); err != nil {
		c.log.Error("Failed to send message to DLQ",
			"event_id", msg.GetEventID(),
			"dlq_topic", c.dlqTopic,
			"error", err,
			"original_error", cause,
		)
		return
	}
	c.log.Warn("Message sent to DLQ",
		"event_id", msg.GetEventID(),
		"dlq_topic", c.dlqTopic,
		"retries", retries,
		"error", cause,
	)
}

func fromKafkaMessage(record kafka.Message) Message {
	msg := Message{
		Key:       string(record.Key),
		Value:     record.Value,
		Headers:   make(map[string]string, len(record.Headers)),
		Topic:     record.Topic,
		Partition: record.Partition,
		Offset:    record.Offset,
		Timestamp: record.Time,
	}
	for _, h := range record.Headers {
		msg.Headers[h.Key] = string(h.Value)
	}
	return msg
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Close waits for Start to return, so cancel its context first.
func (c *Consumer) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.wg.Wait()
	return closeAll(c.reader, c.dlqWriter)
}
