package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"github.com/transaction-importer/internal/config"
)

// ImportJobProducer publishes import job messages for the worker.
// Writes are synchronous so that a nil error means the broker acknowledged the job.
type ImportJobProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewImportJobProducer creates the producer and ensures the job topic exists
func NewImportJobProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*ImportJobProducer, error) {
	if cfg.ImportJobTopic == "" {
		return nil, fmt.Errorf("kafka import job topic is not configured")
	}

	if err := dialAndEnsureTopic(cfg.BrokerList(), cfg.ImportJobTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger); err != nil {
		return nil, fmt.Errorf("failed to ensure import job topic %s exists: %w", cfg.ImportJobTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.BrokerList()...),
		Topic:        cfg.ImportJobTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: cfg.MaxWait,
	}

	return &ImportJobProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.ImportJobTopic,
	}, nil
}

// Publish marshals value to JSON and writes it under key.
// json.RawMessage values are written as they are.
func (p *ImportJobProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal import job message: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish import job",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish import job to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published import job",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *ImportJobProducer) Close() error {
	p.logger.Info("Closing import job producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close import job writer for topic %s: %w", p.topic, err)
	}
	return nil
}
