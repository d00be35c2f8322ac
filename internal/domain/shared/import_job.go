package shared

import (
	"time"

	"github.com/google/uuid"
)

// ImportJobMessage defines the Kafka message that dispatches one import request to a worker
type ImportJobMessage struct {
	ImportRequestID uuid.UUID `json:"import_request_id"`
	CorrelationID   string    `json:"correlation_id,omitempty"`
	RequestedAt     time.Time `json:"requested_at"`
}
