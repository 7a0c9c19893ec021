package kafka

import (
	"testing"
)

func TestMessageBuilder(t *testing.T) {
	msg := NewMessage().
		WithKey("room-type-1").
		WithValue(map[string]string{"type": "booking.created"}).
		WithEventType("booking.created").
		WithIdempotencyKey("k1").
		WithUserID("u1").
		Build()

	if msg.Key != "room-type-1" {
		t.Errorf("key = %q", msg.Key)
	}
	if string(msg.Value) != `{"type":"booking.created"}` {
		t.Errorf("value = %s", msg.Value)
	}
	if msg.GetEventID() == "" {
		t.Error("Build() should assign an event id")
	}
	if msg.Headers[HeaderTimestamp] == "" {
		t.Error("Build() should set the timestamp header")
	}
	if msg.GetIdempotencyKey() != "k1" || msg.GetUserID() != "u1" {
		t.Errorf("headers = %v", msg.Headers)
	}
}

func TestMessageBuilder_UnencodableValue(t *testing.T) {
	msg := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	if msg.Value != nil {
		t.Errorf("expected nil value, got %s", msg.Value)
	}
}

func TestRetryCount(t *testing.T) {
	msg := Message{Headers: map[string]string{}}
	if msg.GetRetryCount() != 0 {
		t.Fatal("fresh message should have zero retries")
	}

	for range 12 {
		msg.IncrementRetryCount()
	}
	if got := msg.GetRetryCount(); got != 12 {
		t.Errorf("GetRetryCount() = %d, want 12", got)
	}
	if msg.Headers[HeaderRetryCount] != "12" {
		t.Errorf("header = %q, want decimal encoding", msg.Headers[HeaderRetryCount])
	}
}

func TestMessageBuilder_SkipsEmptyHeaders(t *testing.T) {
	msg := NewMessage().
		WithKey("rt-1").
		WithRawValue([]byte(`{}`)).
		WithCorrelationID("").
		WithIdempotencyKey("").
		WithEventID("evt-7").
		Build()

	if _, ok := msg.Headers[HeaderCorrelationID]; ok {
		t.Error("empty correlation id must not produce a header")
	}
	if _, ok := msg.Headers[HeaderIdempotencyKey]; ok {
		t.Error("empty idempotency key must not produce a header")
	}
	if msg.GetEventID() != "evt-7" {
		t.Errorf("event id = %q, want evt-7", msg.GetEventID())
	}
}

func TestDecodeValue_EmptyPayload(t *testing.T) {
	msg := Message{}
	var v map[string]any
	if err := msg.DecodeValue(&v); err != ErrEmptyValue {
		t.Errorf("DecodeValue() error = %v, want ErrEmptyValue", err)
	}
}
