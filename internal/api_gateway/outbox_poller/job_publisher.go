package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/transaction-importer/internal/domain/outbox"
	"github.com/transaction-importer/internal/domain/shared"
	"github.com/transaction-importer/internal/platform/messaging/producers"
)

// JobPublisher dispatches one outbox message to the import job topic
type JobPublisher interface {
	PublishJob(ctx context.Context, message *outbox.Message) error
}

// ImportJobPublisher implements JobPublisher on top of a Kafka producer
type ImportJobPublisher struct {
	outboxRepo outbox.Repository
	producer   producers.MessagePublisher
	logger     *slog.Logger
}

func NewImportJobPublisher(
	outboxRepo outbox.Repository,
	producer producers.MessagePublisher,
	logger *slog.Logger,
) JobPublisher {
	return &ImportJobPublisher{
		outboxRepo: outboxRepo,
		producer:   producer,
		logger:     logger,
	}
}

// PublishJob writes the job keyed by its import request id and marks the message PROCESSED.
// A payload that cannot be decoded is marked FAILED_TO_PUBLISH right away.
func (p *ImportJobPublisher) PublishJob(ctx context.Context, message *outbox.Message) error {
	job, err := message.ImportJob()
	if err != nil {
		p.logger.Error("Failed to unmarshal import job from outbox payload",
			"outbox_id", message.ID, "import_request_id", message.ImportRequestID, "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after unmarshal error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	logger := p.logger
	if job.CorrelationID != "" {
		logger = p.logger.With("correlation_id", job.CorrelationID)
	}

	if err := p.producer.Publish(ctx, job.ImportRequestID.String(), job); err != nil {
		return fmt.Errorf("failed to publish import job %s: %w", job.ImportRequestID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "import_request_id", job.ImportRequestID, "error", err,
		)
		return fmt.Errorf("import job %s published, but failed to mark outbox %d as PROCESSED: %w", job.ImportRequestID, message.ID, err)
	}

	logger.Info("Import job published", "outbox_id", message.ID, "import_request_id", job.ImportRequestID)
	return nil
}
