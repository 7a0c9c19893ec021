package kafka_config

import (
	"fmt"
	"strings"
	"time"

	"hotelbook/pkg/config"
	"hotelbook/pkg/logger"
	"hotelbook/pkg/validation"
)

type ProducerConfig struct {
	MaxAttempts  int           `json:"producer_max_attempts" validate:"min=1"`
	BatchTimeout time.Duration `json:"producer_batch_timeout" validate:"gt=0"`
	// RequiredAcks is -1 for all replicas, 1 for the leader only, 0 for none.
	RequiredAcks int    `json:"producer_required_acks" validate:"oneof=-1 0 1"`
	Compression  string `json:"producer_compression" validate:"oneof=none gzip snappy lz4 zstd"`
	// Async must stay off for booking events: the caller needs the write
	// error to decide whether the message went to the DLQ.
	Async bool `json:"producer_async"`
}

// ConsumerConfig has no commit interval: the consumer commits each message
// synchronously once it is handled.
type ConsumerConfig struct {
	// StartOffset is -2 (oldest) or -1 (newest) for a new consumer group.
	StartOffset       int64         `json:"consumer_start_offset" validate:"oneof=-2 -1"`
	MinBytes          int           `json:"consumer_min_bytes" validate:"min=1"`
	MaxBytes          int           `json:"consumer_max_bytes" validate:"gtefield=MinBytes"`
	MaxWait           time.Duration `json:"consumer_max_wait" validate:"gt=0"`
	HeartbeatInterval time.Duration `json:"consumer_heartbeat_interval" validate:"gt=0"`
	SessionTimeout    time.Duration `json:"consumer_session_timeout" validate:"gtfield=HeartbeatInterval"`
	RebalanceTimeout  time.Duration `json:"consumer_rebalance_timeout" validate:"gt=0"`
	MaxRetries        int           `json:"consumer_max_retries" validate:"gte=0,lte=20"`
	RetryBackoff      time.Duration `json:"consumer_retry_backoff" validate:"gte=0"`
}

type Config struct {
	Brokers          []string       `json:"brokers" validate:"required,min=1,dive,hostname_port"`
	ClientID         string         `json:"client_id" validate:"required,max=255"`
	Producer         ProducerConfig `json:"producer"`
	Consumer         ConsumerConfig `json:"consumer"`
	EnableMiddleware bool           `json:"enable_middleware"`
}

// Load reads the Kafka settings from the environment. An invalid
// configuration is fatal.
func Load(log *logger.Logger) *Config {
	cfg := &Config{
		Brokers:  splitBrokers(config.EnvString(EnvKafkaBrokers, DefaultKafkaBrokers)),
		ClientID: config.EnvString(EnvKafkaClientID, DefaultClientID),
		Producer: ProducerConfig{
			MaxAttempts:  config.EnvInt(EnvKafkaProducerMaxAttempts, DefaultProducerMaxAttempts),
			BatchTimeout: config.EnvDuration(EnvKafkaProducerBatchTimeout, DefaultProducerBatchTimeout),
			RequiredAcks: config.EnvInt(EnvKafkaProducerRequiredAcks, DefaultProducerRequiredAcks),
			Compression:  strings.ToLower(config.EnvString(EnvKafkaProducerCompression, DefaultProducerCompression)),
			Async:        config.EnvBool(EnvKafkaProducerAsync, DefaultProducerAsync),
		},
		Consumer: ConsumerConfig{
			StartOffset:       int64(config.EnvInt(EnvKafkaConsumerStartOffset, DefaultConsumerStartOffset)),
			MinBytes:          config.EnvInt(EnvKafkaConsumerMinBytes, DefaultConsumerMinBytes),
			MaxBytes:          config.EnvInt(EnvKafkaConsumerMaxBytes, DefaultConsumerMaxBytes),
			MaxWait:           config.EnvDuration(EnvKafkaConsumerMaxWait, DefaultConsumerMaxWait),
			HeartbeatInterval: config.EnvDuration(EnvKafkaConsumerHeartbeatInterval, DefaultConsumerHeartbeatInterval),
			SessionTimeout:    config.EnvDuration(EnvKafkaConsumerSessionTimeout, DefaultConsumerSessionTimeout),
			RebalanceTimeout:  config.EnvDuration(EnvKafkaConsumerRebalanceTimeout, DefaultConsumerRebalanceTimeout),
			MaxRetries:        config.EnvInt(EnvKafkaConsumerMaxRetries, DefaultConsumerMaxRetries),
			RetryBackoff:      config.EnvDuration(EnvKafkaConsumerRetryBackoff, DefaultConsumerRetryBackoff),
		},
		EnableMiddleware: config.EnvBool(EnvKafkaEnableMiddleware, DefaultEnableMiddleware),
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal("Kafka configuration validation failed", "error", err)
	}
	cfg.LogConfiguration(log)

	return cfg
}

func splitBrokers(raw string) []string {
	var brokers []string
	for _, broker := range strings.Split(raw, ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	return brokers
}

// Validate reports every invalid field at once.
func (cfg *Config) Validate() error {
	if err := validation.Struct(validation.New(), cfg); err != nil {
		return fmt.Errorf("kafka config: %w", err)
	}
	if cfg.Producer.Async {
		return fmt.Errorf("kafka config: producer_async is not supported for booking events")
	}
	return nil
}

func (cfg *Config) LogConfiguration(log *logger.Logger) {
	log.Info("Kafka configuration loaded successfully",
		"brokers", cfg.Brokers,
		"client_id", cfg.ClientID,
		"producer", cfg.Producer,
		"consumer", cfg.Consumer,
		"enable_middleware", cfg.EnableMiddleware,
	)
}
