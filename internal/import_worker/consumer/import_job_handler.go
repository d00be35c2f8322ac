package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/transaction-importer/internal/domain/importrequest"
	"github.com/transaction-importer/internal/domain/shared"
	"github.com/transaction-importer/internal/import_worker/service"
	"github.com/transaction-importer/internal/platform/messaging/producers"
)

// ErrJobInProgress is returned for a job whose claim is held elsewhere while its request is not completed
var ErrJobInProgress = errors.New("import job is claimed by another run and not completed")

// JobClaimer reserves a job id for a single run
type JobClaimer interface {
	Claim(ctx context.Context, id uuid.UUID) (bool, error)
	Release(ctx context.Context, id uuid.UUID) error
	KeepAlive(ctx context.Context, id uuid.UUID) (stop func())
}

// RequestLookup reads the current state of an import request
type RequestLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*importrequest.ImportRequest, error)
}

// ImportJobHandler handles import job messages from Kafka
type ImportJobHandler struct {
	importService service.ImportService
	requests      RequestLookup
	claimer       JobClaimer
	producer      producers.DeadLetterPublisher
	logger        *slog.Logger
}

// NewImportJobHandler creates a new handler. claimer and producer may be nil.
// requests is consulted only when a claim is already held.
func NewImportJobHandler(
	logger *slog.Logger,
	importService service.ImportService,
	requests RequestLookup,
	claimer JobClaimer,
	producer producers.DeadLetterPublisher,
) *ImportJobHandler {
	return &ImportJobHandler{
		importService: importService,
		requests:      requests,
		claimer:       claimer,
		producer:      producer,
		logger:        logger,
	}
}

// HandleMessage runs the import named by msg. A nil return commits the offset.
func (h *ImportJobHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var job shared.ImportJobMessage
	if err := json.Unmarshal(msg.Value, &job); err != nil {
		h.logger.Error("Failed to unmarshal import job message", "error", err, "message_key", string(msg.Key))
		return h.deadLetter(ctx, h.logger, msg, "undecodable import job message: "+err.Error(), err)
	}
	if job.ImportRequestID == uuid.Nil {
		err := errors.New("import job message has no import_request_id")
		h.logger.Error("Invalid import job message", "error", err, "message_key", string(msg.Key))
		return h.deadLetter(ctx, h.logger, msg, err.Error(), err)
	}

	logger := h.logger.With("import_request_id", job.ImportRequestID.String())
	if job.CorrelationID != "" {
		logger = logger.With("correlation_id", job.CorrelationID)
	}

	if h.claimer != nil {
		claimed, err := h.claimer.Claim(ctx, job.ImportRequestID)
		if err != nil {
			return err
		}
		if !claimed {
			return h.claimHeld(ctx, logger, msg, job.ImportRequestID)
		}
	}

	logger.Info("Received import job", "requested_at", job.RequestedAt)

	err := h.run(ctx, job.ImportRequestID)
	if err == nil {
		logger.Info("Import job finished")
		return nil
	}

	h.release(logger, job.ImportRequestID)

	if errors.Is(err, importrequest.ErrImportRequestNotFound{}) {
		logger.Error("Import job references an unknown import request", "error", err)
		return h.deadLetter(ctx, logger, msg, err.Error(), err)
	}

	logger.Error("Failed to run import job", "error", err)
	return fmt.Errorf("import job %s failed: %w", job.ImportRequestID, err)
}

// run executes the import while keeping its claim alive
func (h *ImportJobHandler) run(ctx context.Context, id uuid.UUID) error {
	if h.claimer != nil {
		stop := h.claimer.KeepAlive(ctx, id)
		defer stop()
	}
	return h.importService.RunImport(ctx, id)
}

// claimHeld acks a duplicate delivery only once the request has completed.
// Otherwise the message is retried, which also covers a claim left behind by a
// worker that died mid-import: its lease expires and a later attempt claims it.
func (h *ImportJobHandler) claimHeld(ctx context.Context, logger *slog.Logger, msg kafka.Message, id uuid.UUID) error {
	if h.requests == nil {
		return fmt.Errorf("import job %s: %w", id, ErrJobInProgress)
	}

	request, err := h.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, importrequest.ErrImportRequestNotFound{}) {
			logger.Error("Claimed import job references an unknown import request", "error", err)
			return h.deadLetter(ctx, logger, msg, err.Error(), err)
		}
		return fmt.Errorf("failed to check claimed import job %s: %w", id, err)
	}

	if request.Status.IsTerminal() {
		logger.Info("Import job already completed by another delivery, skipping", "status", request.Status)
		return nil
	}

	logger.Warn("Import job claimed elsewhere and not completed yet", "status", request.Status)
	return fmt.Errorf("import job %s: %w", id, ErrJobInProgress)
}

// release frees the claim so a redelivery can run the job again
func (h *ImportJobHandler) release(logger *slog.Logger, id uuid.UUID) {
	if h.claimer == nil {
		return
	}
	if err := h.claimer.Release(context.Background(), id); err != nil {
		logger.Warn("Failed to release import job claim", "error", err)
	}
}

// deadLetter parks msg on the DLQ. When that is impossible cause is returned so the message is retried.
func (h *ImportJobHandler) deadLetter(ctx context.Context, logger *slog.Logger, msg kafka.Message, reason string, cause error) error {
	if h.producer == nil {
		return fmt.Errorf("unprocessable import job message: %w", cause)
	}

	if err := h.producer.PublishToDLQ(ctx, msg, reason); err != nil {
		logger.Error("Failed to publish message to DLQ",
			"dlq_error", err,
			"original_error", cause,
			"message_key", string(msg.Key),
		)
		return fmt.Errorf("unprocessable import job message: %w", cause)
	}

	logger.Info("Published unprocessable message to DLQ", "message_key", string(msg.Key), "reason", reason)
	return nil
}
