package kafka_config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Brokers:  []string{"kafka-1:9092", "kafka-2:9092"},
		ClientID: "hotelbook",
		Producer: ProducerConfig{
			MaxAttempts:  DefaultProducerMaxAttempts,
			BatchTimeout: DefaultProducerBatchTimeout,
			RequiredAcks: DefaultProducerRequiredAcks,
			Compression:  DefaultProducerCompression,
		},
		Consumer: ConsumerConfig{
			StartOffset:       DefaultConsumerStartOffset,
			MinBytes:          DefaultConsumerMinBytes,
			MaxBytes:          DefaultConsumerMaxBytes,
			MaxWait:           DefaultConsumerMaxWait,
			HeartbeatInterval: DefaultConsumerHeartbeatInterval,
			SessionTimeout:    DefaultConsumerSessionTimeout,
			RebalanceTimeout:  DefaultConsumerRebalanceTimeout,
			MaxRetries:        DefaultConsumerMaxRetries,
			RetryBackoff:      DefaultConsumerRetryBackoff,
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"no brokers", func(c *Config) { c.Brokers = nil }, "brokers"},
		{"broker without port", func(c *Config) { c.Brokers = []string{"kafka-1"} }, "brokers"},
		{"unknown compression", func(c *Config) { c.Producer.Compression = "brotli" }, "producer_compression"},
		{"bad acks", func(c *Config) { c.Producer.RequiredAcks = 2 }, "producer_required_acks"},
		{"explicit start offset", func(c *Config) { c.Consumer.StartOffset = 42 }, "consumer_start_offset"},
		{"max below min bytes", func(c *Config) { c.Consumer.MinBytes = 10; c.Consumer.MaxBytes = 5 }, "consumer_max_bytes"},
		{"session shorter than heartbeat", func(c *Config) { c.Consumer.SessionTimeout = time.Second }, "consumer_session_timeout"},
		{"negative retries", func(c *Config) { c.Consumer.MaxRetries = -1 }, "consumer_max_retries"},
		{"async producer", func(c *Config) { c.Producer.Async = true }, "producer_async"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantField) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.wantField)
			}
		})
	}
}

func TestSplitBrokers(t *testing.T) {
	got := splitBrokers(" kafka-1:9092, ,kafka-2:9092 ")
	if len(got) != 2 || got[0] != "kafka-1:9092" || got[1] != "kafka-2:9092" {
		t.Errorf("splitBrokers() = %v", got)
	}
}
