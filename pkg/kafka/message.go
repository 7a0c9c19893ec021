package kafka

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Message is a Kafka record with string headers. Booking traffic is keyed by
// room type id so every change to one room type stays on one partition.
type Message struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
}

const (
	HeaderEventID        = "event-id"
	HeaderEventType      = "event-type"
	HeaderCorrelationID  = "correlation-id"
	HeaderIdempotencyKey = "idempotency-key"
	HeaderUserID         = "user-id"
	HeaderSchemaVersion  = "schema-version"
	HeaderSource         = "source"
	HeaderTimestamp      = "timestamp"
	HeaderRetryCount     = "retry-count"

	HeaderOriginalTopic    = "original-topic"
	HeaderDLQError         = "dlq-error"
	HeaderDLQTimestamp     = "dlq-timestamp"
	HeaderDLQConsumerGroup = "dlq-consumer-group"
)

// MessageHandler processes one message. A nil error commits it; see
// ClassifyError for how failures are treated.
type MessageHandler func(ctx context.Context, msg Message) error

type MessageBuilder struct {
	msg Message
}

func NewMessage() *MessageBuilder {
	return &MessageBuilder{msg: Message{
		Headers:   make(map[string]string),
		Timestamp: time.Now().UTC(),
	}}
}

// set ignores empty values so optional metadata never produces blank headers.
func (mb *MessageBuilder) set(key, value string) *MessageBuilder {
	if value != "" {
		mb.msg.Headers[key] = value
	}
	return mb
}

func (mb *MessageBuilder) WithKey(key string) *MessageBuilder {
	mb.msg.Key = key
	return mb
}

// WithValue JSON-encodes value. An unencodable value leaves the payload empty
// and Publish rejects it with ErrEmptyValue.
func (mb *MessageBuilder) WithValue(value any) *MessageBuilder {
	data, err := json.Marshal(value)
	if err != nil {
		data = nil
	}
	mb.msg.Value = data
	return mb
}

func (mb *MessageBuilder) WithRawValue(value []byte) *MessageBuilder {
	mb.msg.Value = value
	return mb
}

func (mb *MessageBuilder) WithHeader(key, value string) *MessageBuilder {
	return mb.set(key, value)
}

func (mb *MessageBuilder) WithEventID(eventID string) *MessageBuilder {
	return mb.set(HeaderEventID, eventID)
}

func (mb *MessageBuilder) WithEventType(eventType string) *MessageBuilder {
	return mb.set(HeaderEventType, eventType)
}

func (mb *MessageBuilder) WithCorrelationID(correlationID string) *MessageBuilder {
	return mb.set(HeaderCorrelationID, correlationID)
}

// WithIdempotencyKey lets consumers deduplicate redeliveries of one command.
func (mb *MessageBuilder) WithIdempotencyKey(key string) *MessageBuilder {
	return mb.set(HeaderIdempotencyKey, key)
}

func (mb *MessageBuilder) WithUserID(userID string) *MessageBuilder {
	return mb.set(HeaderUserID, userID)
}

func (mb *MessageBuilder) WithSchemaVersion(version string) *MessageBuilder {
	return mb.set(HeaderSchemaVersion, version)
}

func (mb *MessageBuilder) WithSource(source string) *MessageBuilder {
	return mb.set(HeaderSource, source)
}

// Build fills in a random event id and the timestamp header when missing.
func (mb *MessageBuilder) Build() Message {
	if mb.msg.Headers[HeaderEventID] == "" {
		mb.msg.Headers[HeaderEventID] = uuid.NewString()
	}
	if mb.msg.Headers[HeaderTimestamp] == "" {
		mb.msg.Headers[HeaderTimestamp] = mb.msg.Timestamp.Format(time.RFC3339Nano)
	}
	return mb.msg
}

func (m *Message) DecodeValue(v any) error {
	if len(m.Value) == 0 {
		return ErrEmptyValue
	}
	return json.Unmarshal(m.Value, v)
}

func (m *Message) GetEventID() string        { return m.Headers[HeaderEventID] }
func (m *Message) GetEventType() string      { return m.Headers[HeaderEventType] }
func (m *Message) GetCorrelationID() string  { return m.Headers[HeaderCorrelationID] }
func (m *Message) GetIdempotencyKey() string { return m.Headers[HeaderIdempotencyKey] }
func (m *Message) GetUserID() string         { return m.Headers[HeaderUserID] }

// GetRetryCount reads the retry-count header; a missing or malformed value is 0.
func (m *Message) GetRetryCount() int {
	count, err := strconv.Atoi(m.Headers[HeaderRetryCount])
	if err != nil || count < 0 {
		return 0
	}
	return count
}

func (m *Message) IncrementRetryCount() {
	if m.Headers == nil {
		m.Headers = make(map[string]string)
	}
	m.Headers[HeaderRetryCount] = strconv.Itoa(m.GetRetryCount() + 1)
}
