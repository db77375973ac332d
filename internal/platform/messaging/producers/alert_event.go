package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/fraudlens-risk-platform/internal/config"
	"github.com/segmentio/kafka-go"
)

// AlertEventProducer publishes fraud alert events to the alerts topic so
// downstream consumers (case management, dashboards) see flagged
// transactions as they are committed.
type AlertEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewAlertEventProducer creates the alerts producer and ensures the topic exists
func NewAlertEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*AlertEventProducer, error) {
	if cfg.AlertTopic == "" {
		return nil, fmt.Errorf("kafka alert topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for alert producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.AlertTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure alert topic %s exists: %w", cfg.AlertTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.AlertTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true, // Alerts are advisory; never block the ingestion path
		WriteTimeout: cfg.MaxWait,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to write alert events asynchronously", "topic", cfg.AlertTopic, "error", err, "count", len(messages))
			} else {
				logger.Debug("Successfully wrote alert events asynchronously", "topic", cfg.AlertTopic, "count", len(messages))
			}
		},
	}

	return &AlertEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.AlertTopic,
	}, nil
}

// Publish sends one alert event keyed by transaction identifier
func (p *AlertEventProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal alert event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish alert event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish alert event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published alert event",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

// Close shuts down the underlying kafka writer
func (p *AlertEventProducer) Close() error {
	p.logger.Info("Closing alert event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
