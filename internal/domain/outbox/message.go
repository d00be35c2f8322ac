package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/transaction-importer/internal/domain/shared"
)

// Message holds an import job dispatch until it has been published to Kafka
type Message struct {
	ID              int64               `json:"id"`
	ImportRequestID uuid.UUID           `json:"import_request_id"`
	Payload         json.RawMessage     `json:"payload"`
	Status          shared.OutboxStatus `json:"status"`
	Attempts        int                 `json:"attempts"`
	CreatedAt       time.Time           `json:"created_at"`
	LastAttemptAt   *time.Time          `json:"last_attempt_at,omitempty"`
}

func NewMessage(job *shared.ImportJobMessage) (*Message, error) {
	payload, err := json.Marshal(job)
	if err != nil {
		return nil, err
	}

	return &Message{
		ImportRequestID: job.ImportRequestID,
		Payload:         payload,
		Status:          shared.OutboxStatusPending,
		Attempts:        0,
		CreatedAt:       time.Now(),
	}, nil
}

func (m *Message) IncrementAttempts() {
	m.Attempts++
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsProcessed() {
	m.Status = shared.OutboxStatusProcessed
	now := time.Now()
	m.LastAttemptAt = &now
}

func (m *Message) MarkAsFailed() {
	m.Status = shared.OutboxStatusFailedToPublish
	now := time.Now()
	m.LastAttemptAt = &now
}

// ImportJob extracts the dispatched job from the payload
func (m *Message) ImportJob() (*shared.ImportJobMessage, error) {
	var job shared.ImportJobMessage
	if err := json.Unmarshal(m.Payload, &job); err != nil {
		return nil, err
	}
	return &job, nil
}
