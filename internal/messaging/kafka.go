package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Aidin1998/usersapi/pkg/metrics"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaConfig contains configuration for Kafka connection
type KafkaConfig struct {
	Brokers      []string      `json:"brokers"`
	Topic        string        `json:"topic"`
	WriteTimeout time.Duration `json:"write_timeout"`
	BatchTimeout time.Duration `json:"batch_timeout"`
	RequiredAcks int           `json:"required_acks"`
	RetryMax     int           `json:"retry_max"`
	Compression  string        `json:"compression"`
}

// DefaultKafkaConfig returns the default producer configuration
func DefaultKafkaConfig() *KafkaConfig {
	return &KafkaConfig{
		Brokers:      []string{"localhost:9092"},
		Topic:        "users.events",
		WriteTimeout: 5 * time.Second,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: 1,
		RetryMax:     3,
		Compression:  "snappy",
	}
}

// Publisher publishes user events
type Publisher interface {
	Publish(ctx context.Context, event *UserEventMessage) error
	Close() error
}

// MessageWriter is the subset of *kafka.Writer used by the producer
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducer implements Publisher on top of a kafka writer.
// Messages are keyed by user id so that events of one user stay ordered within a partition.
type KafkaProducer struct {
	writer MessageWriter
	logger *zap.Logger
}

// NewKafkaProducer creates a new Kafka producer
func NewKafkaProducer(config *KafkaConfig, logger *zap.Logger) (*KafkaProducer, error) {
	if config == nil {
		config = DefaultKafkaConfig()
	}
	if len(config.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: no brokers configured")
	}
	if config.Topic == "" {
		return nil, fmt.Errorf("kafka: no topic configured")
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(config.Brokers...),
		Topic:                  config.Topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           config.BatchTimeout,
		WriteTimeout:           config.WriteTimeout,
		RequiredAcks:           kafka.RequiredAcks(config.RequiredAcks),
		MaxAttempts:            config.RetryMax,
		AllowAutoTopicCreation: true,
	}

	switch config.Compression {
	case "gzip":
		writer.Compression = kafka.Gzip
	case "lz4":
		writer.Compression = kafka.Lz4
	case "zstd":
		writer.Compression = kafka.Zstd
	case "none":
	default:
		writer.Compression = kafka.Snappy
	}

	return NewKafkaProducerWithWriter(writer, logger), nil
}

// NewKafkaProducerWithWriter creates a producer over an existing writer
func NewKafkaProducerWithWriter(writer MessageWriter, logger *zap.Logger) *KafkaProducer {
	return &KafkaProducer{writer: writer, logger: logger}
}

// Publish publishes a single user event
func (p *KafkaProducer) Publish(ctx context.Context, event *UserEventMessage) error {
	data, err := json.Marshal(event)
	if err != nil {
		metrics.EventsPublished.WithLabelValues(string(event.Type), "error").Inc()
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.UserID),
		Value: data,
		Time:  event.Timestamp,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		metrics.EventsPublished.WithLabelValues(string(event.Type), "error").Inc()
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	metrics.EventsPublished.WithLabelValues(string(event.Type), "ok").Inc()
	p.logger.Debug("Published user event",
		zap.String("type", string(event.Type)),
		zap.String("user_id", event.UserID))
	return nil
}

// Close closes the underlying writer
func (p *KafkaProducer) Close() error {
	if err := p.writer.Close(); err != nil {
		p.logger.Error("Failed to close writer", zap.Error(err))
		return err
	}
	return nil
}

// NopPublisher drops every event. Used when kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *UserEventMessage) error { return nil }
func (NopPublisher) Close() error                                      { return nil }
